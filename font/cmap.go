package font

import (
	"fmt"
	"sort"
	"strconv"
	"unicode/utf16"

	"github.com/dimdasci/pdfs-api/core"
)

// CMap maps character codes to Unicode text (ToUnicode maps) or to CIDs
// (embedded encoding CMaps). It also records the codespace ranges that
// decide how many bytes each code in a string takes.
type CMap struct {
	codespaces []codespace

	// bf mappings: code -> unicode
	chars  map[uint32]string
	ranges []CMapRange

	// cid mappings: code -> CID
	cids      map[uint32]int
	cidRanges []cidRange
}

// CMapRange maps a contiguous run of codes onto consecutive Unicode values
type CMapRange struct {
	StartCode uint32
	EndCode   uint32
	Start     []rune
}

type cidRange struct {
	lo, hi uint32
	cid    int
}

type codespace struct {
	n      int
	lo, hi uint32
}

// NewCMap creates an empty CMap
func NewCMap() *CMap {
	return &CMap{chars: map[uint32]string{}, cids: map[uint32]int{}}
}

// ParseCMapStream decodes and parses a CMap stream
func ParseCMapStream(stream *core.Stream) (*CMap, error) {
	if stream == nil {
		return nil, fmt.Errorf("stream is nil")
	}
	data, err := stream.Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode cmap: %w", err)
	}
	return ParseCMap(data)
}

// ParseCMap reads codespace, bfchar, bfrange, cidchar and cidrange
// sections. Unrecognised PostScript around them is ignored.
func ParseCMap(data []byte) (*CMap, error) {
	cm := NewCMap()
	lex := core.NewLexer(data)
	for {
		tok, err := lex.Next()
		if err != nil {
			return cm, fmt.Errorf("cmap: %w", err)
		}
		if tok.Type == core.TokenEOF {
			break
		}
		if tok.Type != core.TokenKeyword {
			continue
		}
		switch string(tok.Value) {
		case "begincodespacerange":
			cm.readCodespaces(lex)
		case "beginbfchar":
			cm.readBfChar(lex)
		case "beginbfrange":
			cm.readBfRange(lex)
		case "begincidchar":
			cm.readCIDChar(lex)
		case "begincidrange":
			cm.readCIDRange(lex)
		}
	}

	sort.Slice(cm.ranges, func(i, j int) bool { return cm.ranges[i].StartCode < cm.ranges[j].StartCode })
	return cm, nil
}

// section collects tokens up to the named end keyword
func section(lex *core.Lexer, end string) []core.Token {
	var toks []core.Token
	for {
		tok, err := lex.Next()
		if err != nil || tok.Type == core.TokenEOF {
			return toks
		}
		if tok.Type == core.TokenKeyword && string(tok.Value) == end {
			return toks
		}
		toks = append(toks, tok)
	}
}

func codeOf(tok core.Token) (uint32, int, bool) {
	if tok.Type != core.TokenHexString && tok.Type != core.TokenString {
		return 0, 0, false
	}
	if len(tok.Value) == 0 || len(tok.Value) > 4 {
		return 0, 0, false
	}
	var v uint32
	for _, b := range tok.Value {
		v = v<<8 | uint32(b)
	}
	return v, len(tok.Value), true
}

func intOf(tok core.Token) (int, bool) {
	if tok.Type != core.TokenInteger {
		return 0, false
	}
	n, err := strconv.Atoi(string(tok.Value))
	return n, err == nil
}

func (cm *CMap) readCodespaces(lex *core.Lexer) {
	toks := section(lex, "endcodespacerange")
	for i := 0; i+1 < len(toks); i += 2 {
		lo, n, ok1 := codeOf(toks[i])
		hi, _, ok2 := codeOf(toks[i+1])
		if ok1 && ok2 {
			cm.codespaces = append(cm.codespaces, codespace{n: n, lo: lo, hi: hi})
		}
	}
}

func (cm *CMap) readBfChar(lex *core.Lexer) {
	toks := section(lex, "endbfchar")
	for i := 0; i+1 < len(toks); i += 2 {
		code, _, ok := codeOf(toks[i])
		if !ok {
			continue
		}
		switch toks[i+1].Type {
		case core.TokenHexString, core.TokenString:
			cm.chars[code] = utf16String(toks[i+1].Value)
		case core.TokenName:
			if s, ok := glyphToUnicode(string(toks[i+1].Value)); ok {
				cm.chars[code] = s
			}
		}
	}
}

func (cm *CMap) readBfRange(lex *core.Lexer) {
	toks := section(lex, "endbfrange")
	for i := 0; i+2 < len(toks); {
		lo, _, ok1 := codeOf(toks[i])
		hi, _, ok2 := codeOf(toks[i+1])
		dst := toks[i+2]
		i += 3
		if dst.Type == core.TokenArrayStart {
			// <lo> <hi> [<u1> <u2> ...]
			code := lo
			for ; i < len(toks) && toks[i].Type != core.TokenArrayEnd; i++ {
				if ok1 && ok2 && code <= hi {
					cm.chars[code] = utf16String(toks[i].Value)
				}
				code++
			}
			i++
			continue
		}
		if !ok1 || !ok2 || hi < lo {
			continue
		}
		start := []rune(utf16String(dst.Value))
		if len(start) == 0 {
			continue
		}
		cm.ranges = append(cm.ranges, CMapRange{StartCode: lo, EndCode: hi, Start: start})
	}
}

func (cm *CMap) readCIDChar(lex *core.Lexer) {
	toks := section(lex, "endcidchar")
	for i := 0; i+1 < len(toks); i += 2 {
		code, _, ok := codeOf(toks[i])
		cid, ok2 := intOf(toks[i+1])
		if ok && ok2 {
			cm.cids[code] = cid
		}
	}
}

func (cm *CMap) readCIDRange(lex *core.Lexer) {
	toks := section(lex, "endcidrange")
	for i := 0; i+2 < len(toks); i += 3 {
		lo, _, ok1 := codeOf(toks[i])
		hi, _, ok2 := codeOf(toks[i+1])
		cid, ok3 := intOf(toks[i+2])
		if ok1 && ok2 && ok3 {
			cm.cidRanges = append(cm.cidRanges, cidRange{lo: lo, hi: hi, cid: cid})
		}
	}
}

// utf16String reads ToUnicode destination bytes, which are UTF-16BE.
// A single byte is taken as Latin-1.
func utf16String(b []byte) string {
	if len(b) == 1 {
		return string(rune(b[0]))
	}
	if len(b)%2 == 1 {
		b = append([]byte{0}, b...)
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return string(utf16.Decode(units))
}

// Lookup returns the Unicode text for code, or "" when unmapped.
func (cm *CMap) Lookup(code uint32) string {
	if cm == nil {
		return ""
	}
	if s, ok := cm.chars[code]; ok {
		return s
	}
	for _, r := range cm.ranges {
		if code >= r.StartCode && code <= r.EndCode {
			out := append([]rune{}, r.Start...)
			out[len(out)-1] += rune(code - r.StartCode)
			return string(out)
		}
	}
	return ""
}

// CID returns the CID for code from cidchar/cidrange mappings.
func (cm *CMap) CID(code uint32) (int, bool) {
	if cid, ok := cm.cids[code]; ok {
		return cid, true
	}
	for _, r := range cm.cidRanges {
		if code >= r.lo && code <= r.hi {
			return r.cid + int(code-r.lo), true
		}
	}
	return 0, false
}

// HasCodespace reports whether codespace ranges were declared
func (cm *CMap) HasCodespace() bool { return cm != nil && len(cm.codespaces) > 0 }

// NextCode splits the next code off s using the codespace ranges. Without a
// matching range one byte is consumed.
func (cm *CMap) NextCode(s []byte) (code uint32, n int) {
	for _, cs := range cm.codespaces {
		if cs.n > len(s) {
			continue
		}
		if inBytes(s[:cs.n], cs) {
			var v uint32
			for _, b := range s[:cs.n] {
				v = v<<8 | uint32(b)
			}
			return v, cs.n
		}
	}
	if len(s) == 0 {
		return 0, 0
	}
	return uint32(s[0]), 1
}

// inBytes checks each byte against the range bounds byte-wise, which is how
// multi-byte codespaces are defined.
func inBytes(code []byte, cs codespace) bool {
	lo := make([]byte, cs.n)
	hi := make([]byte, cs.n)
	for i := cs.n - 1; i >= 0; i-- {
		shift := uint(8 * (cs.n - 1 - i))
		lo[i] = byte(cs.lo >> shift)
		hi[i] = byte(cs.hi >> shift)
	}
	for i, b := range code {
		if b < lo[i] || b > hi[i] {
			return false
		}
	}
	return true
}

// LookupString decodes a whole string through the codespace ranges.
func (cm *CMap) LookupString(data []byte) string {
	var out []rune
	for len(data) > 0 {
		code, n := cm.NextCode(data)
		if n == 0 {
			break
		}
		data = data[n:]
		out = append(out, []rune(cm.Lookup(code))...)
	}
	return string(out)
}
