package contentstream

import (
	"errors"
	"fmt"
	"io"

	"github.com/dimdasci/pdfs-api/core"
)

// ErrTruncated reports a content stream that ends inside a string, array,
// dictionary or inline image. The rest of the page cannot be interpreted.
var ErrTruncated = errors.New("content stream truncated")

// maxOperands bounds the operand stack so garbage cannot grow it without limit
const maxOperands = 4096

// Operation represents a single content stream operation
type Operation struct {
	Operator string
	Operands []core.Object

	// Index is the 0-based position of the operator in the stream.
	Index int
	// Pos is the byte offset of the operator keyword.
	Pos int

	// Data holds the raw sample bytes of an inline image. Inline images
	// are reported as a single "BI" operation whose only operand is the
	// image dictionary.
	Data []byte
}

// SyntaxError is a recoverable problem: the parser has skipped the bad
// input and the next call to Next continues after it.
type SyntaxError struct {
	Pos int
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %v", e.Pos, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Parser reads operations one at a time from a decoded content stream
type Parser struct {
	data     []byte
	parser   *core.Parser
	lexer    *core.Lexer
	index    int
	operands []core.Object
}

// NewParser creates a new content stream parser
func NewParser(data []byte) *Parser {
	p := core.NewParser(data)
	return &Parser{data: data, parser: p, lexer: p.Lexer()}
}

// Reset rewinds the parser to the start of the stream
func (p *Parser) Reset() {
	p.lexer.SetPos(0)
	p.index = 0
	p.operands = nil
}

// Next returns the next operation. It returns io.EOF at the end of the
// stream, a *SyntaxError for input it skipped, and an error wrapping
// ErrTruncated when the stream stops in the middle of an object.
func (p *Parser) Next() (Operation, error) {
	for {
		tok, err := p.lexer.Next()
		if err != nil {
			return Operation{}, p.fail(tok.Pos, err)
		}
		switch tok.Type {
		case core.TokenEOF:
			p.operands = nil
			return Operation{}, io.EOF
		case core.TokenKeyword:
			switch string(tok.Value) {
			case "true", "false", "null":
			default:
				return p.operation(string(tok.Value), tok.Pos)
			}
		case core.TokenArrayEnd, core.TokenDictEnd:
			p.operands = nil
			return Operation{}, &SyntaxError{Pos: tok.Pos, Err: fmt.Errorf("unbalanced %q", tok.Value)}
		}

		p.lexer.SetPos(tok.Pos)
		obj, err := p.parser.ParseObject()
		if err != nil {
			if p.lexer.Pos() <= tok.Pos {
				// always make progress past the offending token
				p.lexer.Next()
			}
			return Operation{}, p.fail(tok.Pos, err)
		}
		if len(p.operands) >= maxOperands {
			p.operands = p.operands[1:]
		}
		p.operands = append(p.operands, obj)
	}
}

func (p *Parser) fail(pos int, err error) error {
	p.operands = nil
	if errors.Is(err, core.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return &SyntaxError{Pos: pos, Err: err}
}

func (p *Parser) operation(op string, pos int) (Operation, error) {
	out := Operation{Operator: op, Operands: p.operands, Index: p.index, Pos: pos}
	p.operands = nil
	if op == "BI" {
		dict, data, err := p.inlineImage(pos)
		if err != nil {
			return Operation{}, err
		}
		out.Operands = []core.Object{dict}
		out.Data = data
	}
	p.index++
	return out, nil
}

// inlineImage reads "key value ... ID <data> EI" following a BI keyword
func (p *Parser) inlineImage(start int) (core.Dict, []byte, error) {
	dict := core.Dict{}
	for {
		tok, err := p.lexer.Next()
		if err != nil {
			return nil, nil, p.fail(tok.Pos, err)
		}
		if tok.Type == core.TokenEOF {
			return nil, nil, fmt.Errorf("%w: inline image at offset %d has no ID", ErrTruncated, start)
		}
		if tok.Type == core.TokenKeyword && string(tok.Value) == "ID" {
			break
		}
		if tok.Type != core.TokenName {
			return nil, nil, p.skipInlineImage(start, fmt.Errorf("inline image key %s", tok))
		}
		val, err := p.parser.ParseObject()
		if err != nil {
			if errors.Is(err, core.ErrUnexpectedEOF) {
				return nil, nil, p.fail(tok.Pos, err)
			}
			return nil, nil, p.skipInlineImage(start, err)
		}
		dict[string(tok.Value)] = val
	}

	// a single whitespace byte separates ID from the data
	pos := p.lexer.Pos()
	if pos < len(p.data) && core.IsWhitespace(p.data[pos]) {
		pos++
	}
	end, next := findEI(p.data, pos, lengthHint(dict))
	if end < 0 {
		return nil, nil, fmt.Errorf("%w: inline image at offset %d has no EI", ErrTruncated, start)
	}
	p.lexer.SetPos(next)
	return dict, p.data[pos:end], nil
}

// skipInlineImage drops a malformed inline image up to its EI
func (p *Parser) skipInlineImage(start int, cause error) error {
	_, next := findEI(p.data, p.lexer.Pos(), -1)
	if next < 0 {
		return fmt.Errorf("%w: inline image at offset %d has no EI", ErrTruncated, start)
	}
	p.lexer.SetPos(next)
	return &SyntaxError{Pos: start, Err: cause}
}

func lengthHint(dict core.Dict) int {
	for _, key := range []string{"L", "Length"} {
		if n, ok := dict.GetInt(key); ok && n >= 0 {
			return int(n)
		}
	}
	return -1
}

// findEI locates the EI that ends inline image data starting at pos. It
// returns the end of the data and the offset just past EI, or -1, -1. A
// declared length is trusted when EI follows it.
func findEI(data []byte, pos, hint int) (end, next int) {
	if hint >= 0 && pos+hint <= len(data) {
		i := pos + hint
		for i < len(data) && core.IsWhitespace(data[i]) {
			i++
		}
		if isEI(data, i) {
			return pos + hint, i + 2
		}
	}
	for i := pos; i+1 < len(data); i++ {
		if i > pos && core.IsWhitespace(data[i-1]) && isEI(data, i) {
			return i - 1, i + 2
		}
	}
	return -1, -1
}

func isEI(data []byte, i int) bool {
	if i+1 >= len(data) || data[i] != 'E' || data[i+1] != 'I' {
		return false
	}
	return i+2 == len(data) || core.IsWhitespace(data[i+2]) || core.IsDelimiter(data[i+2])
}

// Parse reads the whole stream. Syntax errors are skipped; truncation
// stops parsing and is returned with the operations read so far.
func (p *Parser) Parse() ([]Operation, error) {
	var ops []Operation
	for {
		op, err := p.Next()
		if err == io.EOF {
			return ops, nil
		}
		var syn *SyntaxError
		if errors.As(err, &syn) {
			continue
		}
		if err != nil {
			return ops, err
		}
		ops = append(ops, op)
	}
}
