package font

import (
	"strconv"
	"strings"

	"github.com/dimdasci/pdfs-api/core"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Encoding maps single-byte codes of a simple font to Unicode
type Encoding [256]rune

func fromCharmap(cm *charmap.Charmap) *Encoding {
	var e Encoding
	for i := 0; i < 256; i++ {
		e[i] = cm.DecodeByte(byte(i))
	}
	return &e
}

var (
	winAnsi  = fromCharmap(charmap.Windows1252)
	macRoman = fromCharmap(charmap.Macintosh)
	latin1   = fromCharmap(charmap.ISO8859_1)
	standard = standardEncoding()
)

// standardEncoding is Adobe StandardEncoding: ASCII with curly quotes at
// 0x27 and 0x60 and typographic symbols in the upper half.
func standardEncoding() *Encoding {
	var e Encoding
	for i := 0x20; i < 0x7f; i++ {
		e[i] = rune(i)
	}
	e[0x27] = '’'
	e[0x60] = '‘'
	upper := map[int]rune{
		0xa1: '¡', 0xa2: '¢', 0xa3: '£', 0xa4: '⁄', 0xa5: '¥', 0xa6: 'ƒ', 0xa7: '§',
		0xa8: '¤', 0xa9: '\'', 0xaa: '“', 0xab: '«', 0xac: '‹', 0xad: '›',
		0xae: 'ﬁ', 0xaf: 'ﬂ', 0xb1: '–', 0xb2: '†', 0xb3: '‡',
		0xb4: '·', 0xb6: '¶', 0xb7: '•', 0xb8: '‚', 0xb9: '„', 0xba: '”',
		0xbb: '»', 0xbc: '…', 0xbd: '‰', 0xbf: '¿', 0xc1: '`', 0xc2: '´',
		0xc3: 'ˆ', 0xc4: '˜', 0xc5: '¯', 0xc6: '˘', 0xc7: '˙', 0xc8: '¨', 0xca: '˚',
		0xcb: '¸', 0xcd: '˝', 0xce: '˛', 0xcf: 'ˇ', 0xd0: '—', 0xe1: 'Æ', 0xe3: 'ª',
		0xe8: 'Ł', 0xe9: 'Ø', 0xea: 'Œ', 0xeb: 'º', 0xf1: 'æ', 0xf5: 'ı', 0xf8: 'ł',
		0xf9: 'ø', 0xfa: 'œ', 0xfb: 'ß',
	}
	for k, v := range upper {
		e[k] = v
	}
	return &e
}

// NamedEncoding returns a predefined simple-font encoding
func NamedEncoding(name string) (*Encoding, bool) {
	switch name {
	case "WinAnsiEncoding":
		return winAnsi, true
	case "MacRomanEncoding", "MacExpertEncoding":
		return macRoman, true
	case "StandardEncoding":
		return standard, true
	case "PDFDocEncoding":
		return latin1, true
	}
	return nil, false
}

var glyphNames = map[string]string{
	"space": " ", "exclam": "!", "quotedbl": "\"", "numbersign": "#", "dollar": "$",
	"percent": "%", "ampersand": "&", "quotesingle": "'", "quoteright": "’",
	"quoteleft": "‘", "parenleft": "(", "parenright": ")", "asterisk": "*",
	"plus": "+", "comma": ",", "hyphen": "-", "period": ".", "slash": "/",
	"zero": "0", "one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9", "colon": ":",
	"semicolon": ";", "less": "<", "equal": "=", "greater": ">", "question": "?",
	"at": "@", "bracketleft": "[", "backslash": "\\", "bracketright": "]",
	"asciicircum": "^", "underscore": "_", "grave": "`", "braceleft": "{",
	"bar": "|", "braceright": "}", "asciitilde": "~", "bullet": "•",
	"endash": "–", "emdash": "—", "ellipsis": "…",
	"quotedblleft": "“", "quotedblright": "”", "quotesinglbase": "‚",
	"quotedblbase": "„", "guillemotleft": "«", "guillemotright": "»",
	"guilsinglleft": "‹", "guilsinglright": "›", "dagger": "†",
	"daggerdbl": "‡", "perthousand": "‰", "trademark": "™",
	"copyright": "©", "registered": "®", "degree": "°", "section": "§",
	"paragraph": "¶", "periodcentered": "·", "multiply": "×", "divide": "÷",
	"minus": "−", "plusminus": "±", "fi": "ﬁ", "fl": "ﬂ",
	"ff": "ﬀ", "ffi": "ﬃ", "ffl": "ﬄ", "germandbls": "ß",
	"ae": "æ", "AE": "Æ", "oe": "œ", "OE": "Œ", "oslash": "ø", "Oslash": "Ø",
	"lslash": "ł", "Lslash": "Ł", "dotlessi": "ı", "eth": "ð", "Eth": "Ð",
	"thorn": "þ", "Thorn": "Þ", "sterling": "£", "yen": "¥", "Euro": "€",
	"cent": "¢", "currency": "¤", "florin": "ƒ", "exclamdown": "¡",
	"questiondown": "¿", "ordfeminine": "ª", "ordmasculine": "º",
	"onehalf": "½", "onequarter": "¼", "threequarters": "¾", "mu": "µ",
	"nbspace": "\u00a0", "sfthyphen": "\u00ad", "brokenbar": "¦",
	"logicalnot": "¬", "dieresis": "¨", "macron": "¯", "acute": "´",
	"cedilla": "¸", "circumflex": "ˆ", "tilde": "˜", "fraction": "⁄",
}

var accents = []struct {
	suffix string
	mark   rune
}{
	{"acute", '\u0301'}, {"grave", '\u0300'}, {"circumflex", '\u0302'},
	{"tilde", '\u0303'}, {"dieresis", '\u0308'}, {"ring", '\u030A'},
	{"cedilla", '\u0327'}, {"caron", '\u030C'}, {"macron", '\u0304'},
	{"breve", '\u0306'}, {"ogonek", '\u0328'}, {"dotaccent", '\u0307'},
	{"hungarumlaut", '\u030B'}, {"commaaccent", '\u0326'},
}

// glyphToUnicode maps an Adobe glyph name to text. It understands the
// common Latin names, uniXXXX and uXXXX forms, and letter+accent names
// such as "eacute", composed with NFC.
func glyphToUnicode(name string) (string, bool) {
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	if s, ok := glyphNames[name]; ok {
		return s, true
	}
	if len(name) == 1 {
		return name, true
	}
	if strings.HasPrefix(name, "uni") && len(name) >= 7 {
		var out []rune
		for i := 3; i+4 <= len(name); i += 4 {
			v, err := strconv.ParseUint(name[i:i+4], 16, 32)
			if err != nil {
				return "", false
			}
			out = append(out, rune(v))
		}
		return string(out), true
	}
	if name[0] == 'u' && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return string(rune(v)), true
		}
	}
	for _, a := range accents {
		if len(name) == len(a.suffix)+1 && strings.HasSuffix(name, a.suffix) {
			return norm.NFC.String(name[:1] + string(a.mark)), true
		}
	}
	return "", false
}

// withDifferences copies base and applies a /Differences array given as
// alternating codes and glyph names.
func withDifferences(base *Encoding, diffs core.Array) *Encoding {
	e := *base
	code := 0
	for _, d := range diffs {
		switch v := d.(type) {
		case core.Int:
			code = int(v)
		case core.Name:
			if code >= 0 && code < 256 {
				if s, ok := glyphToUnicode(string(v)); ok {
					r := []rune(s)
					e[code] = r[0]
				}
			}
			code++
		}
	}
	return &e
}
