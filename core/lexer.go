package core

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrUnexpectedEOF is returned when input ends inside a string, hex string,
// array or dictionary.
var ErrUnexpectedEOF = errors.New("unexpected end of data")

// TokenType represents the type of token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenKeyword     // true, obj, endobj, stream, content operators
	TokenInteger     // 123
	TokenReal        // 3.14
	TokenString      // (hello)
	TokenHexString   // <48656C6C6F>, Value holds the decoded bytes
	TokenName        // /Type, Value holds the unescaped name
	TokenArrayStart  // [
	TokenArrayEnd    // ]
	TokenDictStart   // <<
	TokenDictEnd     // >>
)

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value []byte
	Pos   int
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	return fmt.Sprintf("%q@%d", t.Value, t.Pos)
}

// Lexer tokenizes PDF syntax from an in-memory buffer. Comments are skipped.
// A Lexer is not safe for concurrent use but many lexers may share data.
type Lexer struct {
	data []byte
	pos  int
}

// NewLexer creates a lexer positioned at the start of data
func NewLexer(data []byte) *Lexer {
	return &Lexer{data: data}
}

// Pos returns the current byte offset
func (l *Lexer) Pos() int { return l.pos }

// SetPos moves the lexer to an absolute offset
func (l *Lexer) SetPos(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(l.data) {
		pos = len(l.data)
	}
	l.pos = pos
}

// Data returns the underlying buffer
func (l *Lexer) Data() []byte { return l.data }

// AtEOF reports whether only whitespace and comments remain.
func (l *Lexer) AtEOF() bool {
	l.skipSpace()
	return l.pos >= len(l.data)
}

// Next returns the next token
func (l *Lexer) Next() (Token, error) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}
	start := l.pos
	c := l.data[l.pos]
	switch c {
	case '[':
		l.pos++
		return Token{Type: TokenArrayStart, Value: l.data[start:l.pos], Pos: start}, nil
	case ']':
		l.pos++
		return Token{Type: TokenArrayEnd, Value: l.data[start:l.pos], Pos: start}, nil
	case '(':
		return l.readString()
	case '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			return Token{Type: TokenDictStart, Value: l.data[start:l.pos], Pos: start}, nil
		}
		return l.readHexString()
	case '>':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
			l.pos += 2
			return Token{Type: TokenDictEnd, Value: l.data[start:l.pos], Pos: start}, nil
		}
		l.pos++
		return Token{}, fmt.Errorf("unexpected '>' at offset %d", start)
	case '/':
		return l.readName()
	case ')', '{', '}':
		l.pos++
		return Token{}, fmt.Errorf("unexpected %q at offset %d", c, start)
	}
	if isDigit(c) || c == '-' || c == '+' || c == '.' {
		if tok, ok := l.readNumber(); ok {
			return tok, nil
		}
	}
	return l.readKeyword(), nil
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		if !IsWhitespace(c) {
			return
		}
		l.pos++
	}
}

func (l *Lexer) readString() (Token, error) {
	start := l.pos
	l.pos++
	var buf bytes.Buffer
	depth := 1
	for {
		if l.pos >= len(l.data) {
			return Token{}, fmt.Errorf("string at offset %d: %w", start, ErrUnexpectedEOF)
		}
		c := l.data[l.pos]
		l.pos++
		switch c {
		case '(':
			depth++
			buf.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return Token{Type: TokenString, Value: buf.Bytes(), Pos: start}, nil
			}
			buf.WriteByte(c)
		case '\r':
			// EOL inside a literal string is always read as LF
			if l.pos < len(l.data) && l.data[l.pos] == '\n' {
				l.pos++
			}
			buf.WriteByte('\n')
		case '\\':
			if l.pos >= len(l.data) {
				return Token{}, fmt.Errorf("string at offset %d: %w", start, ErrUnexpectedEOF)
			}
			l.readEscape(&buf)
		default:
			buf.WriteByte(c)
		}
	}
}

func (l *Lexer) readEscape(buf *bytes.Buffer) {
	c := l.data[l.pos]
	l.pos++
	switch c {
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case 'b':
		buf.WriteByte('\b')
	case 'f':
		buf.WriteByte('\f')
	case '\r':
		if l.pos < len(l.data) && l.data[l.pos] == '\n' {
			l.pos++
		}
	case '\n':
	default:
		if c >= '0' && c <= '7' {
			v := int(c - '0')
			for i := 0; i < 2 && l.pos < len(l.data); i++ {
				d := l.data[l.pos]
				if d < '0' || d > '7' {
					break
				}
				v = v*8 + int(d-'0')
				l.pos++
			}
			buf.WriteByte(byte(v))
			return
		}
		buf.WriteByte(c)
	}
}

func (l *Lexer) readHexString() (Token, error) {
	start := l.pos
	l.pos++
	var out []byte
	var hi byte
	half := false
	for {
		if l.pos >= len(l.data) {
			return Token{}, fmt.Errorf("hex string at offset %d: %w", start, ErrUnexpectedEOF)
		}
		c := l.data[l.pos]
		l.pos++
		if c == '>' {
			break
		}
		if IsWhitespace(c) {
			continue
		}
		v, ok := hexValue(c)
		if !ok {
			return Token{}, fmt.Errorf("invalid hex digit %q at offset %d", c, l.pos-1)
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return Token{Type: TokenHexString, Value: out, Pos: start}, nil
}

func (l *Lexer) readName() (Token, error) {
	start := l.pos
	l.pos++
	var buf bytes.Buffer
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if IsWhitespace(c) || IsDelimiter(c) {
			break
		}
		l.pos++
		if c == '#' && l.pos+1 < len(l.data) {
			h, ok1 := hexValue(l.data[l.pos])
			lo, ok2 := hexValue(l.data[l.pos+1])
			if ok1 && ok2 {
				buf.WriteByte(h<<4 | lo)
				l.pos += 2
				continue
			}
		}
		buf.WriteByte(c)
	}
	return Token{Type: TokenName, Value: buf.Bytes(), Pos: start}, nil
}

// readNumber accepts PDF numbers such as 12, -3, +.5, 4. and tolerates a
// doubled sign ("--5") that some producers emit. It reports false when the
// run of characters is not a number so the caller can lex a keyword.
func (l *Lexer) readNumber() (Token, bool) {
	start := l.pos
	i := l.pos
	for i < len(l.data) && (l.data[i] == '-' || l.data[i] == '+') {
		i++
	}
	digits, dot := 0, false
	for ; i < len(l.data); i++ {
		c := l.data[i]
		if isDigit(c) {
			digits++
			continue
		}
		if c == '.' && !dot {
			dot = true
			continue
		}
		break
	}
	if digits == 0 {
		return Token{}, false
	}
	if i < len(l.data) && !IsWhitespace(l.data[i]) && !IsDelimiter(l.data[i]) {
		return Token{}, false
	}
	l.pos = i
	value := l.data[start:i]
	// collapse a doubled leading sign
	for len(value) > 1 && (value[0] == '-' || value[0] == '+') && (value[1] == '-' || value[1] == '+') {
		value = value[1:]
	}
	typ := TokenInteger
	if dot {
		typ = TokenReal
	}
	return Token{Type: typ, Value: value, Pos: start}, true
}

func (l *Lexer) readKeyword() Token {
	start := l.pos
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if IsWhitespace(c) || IsDelimiter(c) {
			break
		}
		l.pos++
	}
	if l.pos == start {
		l.pos++
	}
	return Token{Type: TokenKeyword, Value: l.data[start:l.pos], Pos: start}
}

// SkipStreamEOL consumes the end-of-line marker that follows the stream
// keyword: CRLF or LF, and a lone CR from sloppy writers.
func (l *Lexer) SkipStreamEOL() {
	for l.pos < len(l.data) && (l.data[l.pos] == ' ' || l.data[l.pos] == '\t') {
		l.pos++
	}
	if l.pos < len(l.data) && l.data[l.pos] == '\r' {
		l.pos++
	}
	if l.pos < len(l.data) && l.data[l.pos] == '\n' {
		l.pos++
	}
}

// ReadBytes returns the next n bytes without copying
func (l *Lexer) ReadBytes(n int) ([]byte, error) {
	if n < 0 || l.pos+n > len(l.data) {
		return nil, fmt.Errorf("read %d bytes at offset %d: %w", n, l.pos, ErrUnexpectedEOF)
	}
	b := l.data[l.pos : l.pos+n]
	l.pos += n
	return b, nil
}

// IsWhitespace reports PDF whitespace: space, tab, LF, CR, FF and NUL
func IsWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

// IsDelimiter reports the PDF delimiter characters
func IsDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func hexValue(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
