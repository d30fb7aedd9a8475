package filters

import (
	"fmt"
)

// ASCIIHexDecode decodes hex pairs up to the '>' end marker. Whitespace is
// ignored and an odd final digit is padded with zero.
func ASCIIHexDecode(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data)/2)
	var hi byte
	half := false
	for _, c := range data {
		if c == '>' {
			break
		}
		if isSpace(c) {
			continue
		}
		v, ok := hexNibble(c)
		if !ok {
			return nil, fmt.Errorf("asciihex: invalid character %q", c)
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
	return out, nil
}

// ASCII85Decode decodes base-85 data, with 'z' for four zero bytes and an
// optional <~ ~> wrapper.
func ASCII85Decode(data []byte) ([]byte, error) {
	if len(data) >= 2 && data[0] == '<' && data[1] == '~' {
		data = data[2:]
	}
	out := make([]byte, 0, len(data)*4/5)
	var group [5]byte
	n := 0
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c == '~' {
			break
		}
		if isSpace(c) {
			continue
		}
		if c == 'z' {
			if n != 0 {
				return nil, fmt.Errorf("ascii85: 'z' inside a group")
			}
			out = append(out, 0, 0, 0, 0)
			continue
		}
		if c < '!' || c > 'u' {
			return nil, fmt.Errorf("ascii85: invalid character %q", c)
		}
		group[n] = c - '!'
		n++
		if n == 5 {
			out = appendBase85(out, group, 4)
			n = 0
		}
	}
	if n == 1 {
		return nil, fmt.Errorf("ascii85: dangling single character")
	}
	if n > 1 {
		for i := n; i < 5; i++ {
			group[i] = 'u' - '!'
		}
		out = appendBase85(out, group, n-1)
	}
	return out, nil
}

func appendBase85(out []byte, g [5]byte, keep int) []byte {
	var v uint32
	for _, d := range g {
		v = v*85 + uint32(d)
	}
	b := [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	return append(out, b[:keep]...)
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == 0
}
