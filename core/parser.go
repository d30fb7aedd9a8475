package core

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// ReferenceResolver resolves indirect references. The parser uses it for
// indirect stream lengths.
type ReferenceResolver interface {
	ResolveReference(ref IndirectRef) (Object, error)
}

// errKeyword is returned by ParseObject when the next token is a bare
// keyword; content-stream parsing treats that as an operator.
var errKeyword = errors.New("keyword is not an object")

// Parser builds PDF objects from the tokens of a Lexer
type Parser struct {
	lexer    *Lexer
	resolver ReferenceResolver
}

// NewParser creates a parser reading data from offset 0
func NewParser(data []byte) *Parser {
	return &Parser{lexer: NewLexer(data)}
}

// NewParserAt creates a parser positioned at offset
func NewParserAt(data []byte, offset int) *Parser {
	p := NewParser(data)
	p.lexer.SetPos(offset)
	return p
}

// SetReferenceResolver sets the resolver used for indirect /Length values
func (p *Parser) SetReferenceResolver(r ReferenceResolver) {
	p.resolver = r
}

// Lexer exposes the underlying lexer
func (p *Parser) Lexer() *Lexer { return p.lexer }

// IsKeyword reports whether err came from ParseObject meeting a keyword.
func IsKeyword(err error) bool {
	return errors.Is(err, errKeyword)
}

// ParseObject parses the next direct object or reference. At a keyword
// other than true, false or null it leaves the lexer on that keyword and
// returns an error for which IsKeyword is true.
func (p *Parser) ParseObject() (Object, error) {
	tok, err := p.lexer.Next()
	if err != nil {
		return nil, err
	}
	return p.objectFrom(tok)
}

func (p *Parser) objectFrom(tok Token) (Object, error) {
	switch tok.Type {
	case TokenEOF:
		return nil, fmt.Errorf("object at offset %d: %w", tok.Pos, ErrUnexpectedEOF)
	case TokenKeyword:
		switch string(tok.Value) {
		case "null":
			return Null{}, nil
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		p.lexer.SetPos(tok.Pos)
		return nil, fmt.Errorf("%w: %q at offset %d", errKeyword, tok.Value, tok.Pos)
	case TokenInteger:
		return p.parseInteger(tok)
	case TokenReal:
		f, err := strconv.ParseFloat(string(tok.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid real %q at offset %d", tok.Value, tok.Pos)
		}
		return Real(f), nil
	case TokenString, TokenHexString:
		return String(tok.Value), nil
	case TokenName:
		return Name(tok.Value), nil
	case TokenArrayStart:
		return p.parseArray(tok.Pos)
	case TokenDictStart:
		return p.parseDict(tok.Pos)
	}
	return nil, fmt.Errorf("unexpected token %s", tok)
}

// parseInteger recognises "num gen R" by looking two tokens ahead and
// rewinding when the pattern does not match.
func (p *Parser) parseInteger(tok Token) (Object, error) {
	n, err := strconv.ParseInt(string(tok.Value), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(tok.Value), 64)
		if ferr != nil {
			return nil, fmt.Errorf("invalid integer %q at offset %d", tok.Value, tok.Pos)
		}
		return Real(f), nil
	}
	mark := p.lexer.Pos()
	gen, err := p.lexer.Next()
	if err == nil && gen.Type == TokenInteger {
		r, err := p.lexer.Next()
		if err == nil && r.Type == TokenKeyword && string(r.Value) == "R" {
			g, _ := strconv.Atoi(string(gen.Value))
			return IndirectRef{Number: int(n), Generation: g}, nil
		}
	}
	p.lexer.SetPos(mark)
	return Int(n), nil
}

func (p *Parser) parseArray(start int) (Object, error) {
	arr := Array{}
	for {
		tok, err := p.lexer.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case TokenArrayEnd:
			return arr, nil
		case TokenEOF:
			return nil, fmt.Errorf("array at offset %d: %w", start, ErrUnexpectedEOF)
		}
		obj, err := p.objectFrom(tok)
		if err != nil {
			return nil, fmt.Errorf("array element: %w", err)
		}
		arr = append(arr, obj)
	}
}

func (p *Parser) parseDict(start int) (Object, error) {
	dict := Dict{}
	for {
		tok, err := p.lexer.Next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case TokenDictEnd:
			return dict, nil
		case TokenEOF:
			return nil, fmt.Errorf("dictionary at offset %d: %w", start, ErrUnexpectedEOF)
		case TokenName:
		default:
			return nil, fmt.Errorf("dictionary key must be a name, got %s", tok)
		}
		key := string(tok.Value)
		next, err := p.lexer.Next()
		if err != nil {
			return nil, err
		}
		if next.Type == TokenDictEnd {
			// odd number of entries; a key without value reads as null
			dict[key] = Null{}
			return dict, nil
		}
		value, err := p.objectFrom(next)
		if err != nil {
			return nil, fmt.Errorf("dictionary value for /%s: %w", key, err)
		}
		dict[key] = value
	}
}

// ParseIndirectObject parses "num gen obj <object> endobj", including an
// attached stream.
func (p *Parser) ParseIndirectObject() (*IndirectObject, error) {
	numTok, err := p.lexer.Next()
	if err != nil {
		return nil, err
	}
	genTok, err := p.lexer.Next()
	if err != nil {
		return nil, err
	}
	objTok, err := p.lexer.Next()
	if err != nil {
		return nil, err
	}
	if numTok.Type != TokenInteger || genTok.Type != TokenInteger ||
		objTok.Type != TokenKeyword || string(objTok.Value) != "obj" {
		return nil, fmt.Errorf("expected 'num gen obj' at offset %d", numTok.Pos)
	}
	num, _ := strconv.Atoi(string(numTok.Value))
	gen, _ := strconv.Atoi(string(genTok.Value))
	ref := IndirectRef{Number: num, Generation: gen}

	obj, err := p.ParseObject()
	if err != nil {
		if !IsKeyword(err) {
			return nil, fmt.Errorf("object %s: %w", ref, err)
		}
		// "n g obj endobj" is an empty object
		obj = Null{}
	}

	mark := p.lexer.Pos()
	tok, err := p.lexer.Next()
	if err == nil && tok.Type == TokenKeyword && string(tok.Value) == "stream" {
		dict, ok := obj.(Dict)
		if !ok {
			return nil, fmt.Errorf("object %s: stream keyword after %s", ref, obj.Type())
		}
		stream, err := p.parseStream(dict)
		if err != nil {
			return nil, fmt.Errorf("object %s: %w", ref, err)
		}
		obj = stream
	} else {
		p.lexer.SetPos(mark)
	}
	// endobj is optional in practice; a missing one is tolerated.
	return &IndirectObject{Ref: ref, Object: obj}, nil
}

// parseStream reads stream data after the "stream" keyword. When /Length
// is missing or wrong the data runs to the next "endstream".
func (p *Parser) parseStream(dict Dict) (*Stream, error) {
	p.lexer.SkipStreamEOL()
	start := p.lexer.Pos()
	data := p.lexer.Data()

	length := -1
	switch v := dict.Get("Length").(type) {
	case Int:
		length = int(v)
	case IndirectRef:
		if p.resolver != nil {
			if resolved, err := p.resolver.ResolveReference(v); err == nil {
				if n, ok := resolved.(Int); ok {
					length = int(n)
				}
			}
		}
	}

	if length >= 0 && start+length <= len(data) && endstreamFollows(data[start+length:]) {
		p.lexer.SetPos(start + length)
	} else {
		idx := bytes.Index(data[start:], []byte("endstream"))
		if idx < 0 {
			return nil, fmt.Errorf("stream at offset %d: %w", start, ErrUnexpectedEOF)
		}
		end := start + idx
		// drop the EOL that precedes endstream
		if end > start && data[end-1] == '\n' {
			end--
		}
		if end > start && data[end-1] == '\r' {
			end--
		}
		length = end - start
		p.lexer.SetPos(start + idx)
	}

	tok, err := p.lexer.Next()
	if err != nil || tok.Type != TokenKeyword || string(tok.Value) != "endstream" {
		return nil, fmt.Errorf("stream at offset %d: missing endstream", start)
	}
	return &Stream{Dict: dict, Data: data[start : start+length]}, nil
}

func endstreamFollows(b []byte) bool {
	i := 0
	for i < len(b) && IsWhitespace(b[i]) {
		i++
	}
	return bytes.HasPrefix(b[i:], []byte("endstream"))
}
