package core

import (
	"bytes"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var utf16BOM = []byte{0xFE, 0xFF}

// DecodeTextString decodes a PDF text string: UTF-16BE when it starts with
// a byte order mark, UTF-8 with its BOM, otherwise a single-byte encoding.
// PDFDocEncoding is read as Latin-1, which agrees on printable characters.
func DecodeTextString(s String) string {
	b := []byte(s)
	switch {
	case bytes.HasPrefix(b, utf16BOM):
		out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(b)
		if err == nil {
			return string(out)
		}
	case bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}):
		return string(b[3:])
	}
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
