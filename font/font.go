package font

import (
	"fmt"

	"github.com/dimdasci/pdfs-api/core"
	"github.com/dimdasci/pdfs-api/model"
)

// Resolver follows indirect references
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Font carries what is needed to lay out glyphs of a shown string: code
// splitting, advances, vertical extent and a best-effort Unicode mapping.
type Font struct {
	BaseFont string
	Subtype  string

	composite bool
	vertical  bool
	encoding  *Encoding
	cmap      *CMap // composite fonts: code -> CID
	toUnicode *CMap

	firstChar    int
	widths       []float64
	cidWidths    map[int]float64
	defaultWidth float64
	missingWidth float64
	standard     *standardMetrics

	// Vertical metrics from /DW2; only used by vertical composite fonts.
	vAdvance float64

	ascent, descent float64
	// fontMatrix scales glyph space to text space; 0.001 except for Type3.
	fontMatrix model.Matrix
}

// Glyph is one character code of a shown string
type Glyph struct {
	Code  uint32
	Bytes int
	// Width is the horizontal advance in glyph space units (1/1000 em for
	// all but Type3 fonts).
	Width float64
	Text  string
	// Space is true for the single-byte code 32, which Tw applies to.
	Space bool
}

// Default returns Helvetica with WinAnsiEncoding, used when a text operator
// runs without a usable font.
func Default() *Font {
	m := standardFonts["Helvetica"]
	return &Font{
		BaseFont:     "Helvetica",
		Subtype:      "Type1",
		encoding:     winAnsi,
		standard:     &m,
		ascent:       m.ascent,
		descent:      m.descent,
		defaultWidth: 500,
		fontMatrix:   model.Scale(0.001, 0.001),
	}
}

// Load builds a Font from a font dictionary
func Load(dict core.Dict, r Resolver) (*Font, error) {
	f := &Font{
		defaultWidth: 1000,
		fontMatrix:   model.Scale(0.001, 0.001),
	}
	if n, ok := dict.GetName("Subtype"); ok {
		f.Subtype = string(n)
	}
	if n, ok := dict.GetName("BaseFont"); ok {
		f.BaseFont = string(n)
	}

	if s, ok := resolveStream(r, dict.Get("ToUnicode")); ok {
		if cm, err := ParseCMapStream(s); err == nil {
			f.toUnicode = cm
		}
	}

	var err error
	switch f.Subtype {
	case "Type0":
		err = f.loadComposite(dict, r)
	case "Type1", "MMType1", "TrueType", "Type3", "":
		err = f.loadSimple(dict, r)
	default:
		return nil, fmt.Errorf("unsupported font subtype /%s", f.Subtype)
	}
	if err != nil {
		return nil, err
	}
	if f.ascent == 0 && f.descent == 0 {
		f.ascent, f.descent = 750, -250
	}
	return f, nil
}

func (f *Font) loadSimple(dict core.Dict, r Resolver) error {
	if m, ok := lookupStandard(f.BaseFont); ok {
		f.standard = &m
		f.ascent, f.descent = m.ascent, m.descent
	}
	f.defaultWidth = 500

	if f.Subtype == "Type3" {
		if arr, ok := resolveArray(r, dict.Get("FontMatrix")); ok {
			if nums, ok := arr.Numbers(); ok && len(nums) == 6 {
				f.fontMatrix = model.Matrix{nums[0], nums[1], nums[2], nums[3], nums[4], nums[5]}
			}
		}
		if arr, ok := resolveArray(r, dict.Get("FontBBox")); ok {
			if nums, ok := arr.Numbers(); ok && len(nums) == 4 && nums[3] > nums[1] {
				f.ascent, f.descent = nums[3], nums[1]
			}
		}
	}

	f.encoding = standard
	if f.standard == nil || f.BaseFont == "Symbol" || f.BaseFont == "ZapfDingbats" {
		f.encoding = latin1
	}
	if f.Subtype == "TrueType" {
		f.encoding = winAnsi
	}
	enc, err := resolve(r, dict.Get("Encoding"))
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	switch e := enc.(type) {
	case core.Name:
		if named, ok := NamedEncoding(string(e)); ok {
			f.encoding = named
		}
	case core.Dict:
		if base, ok := e.GetName("BaseEncoding"); ok {
			if named, ok := NamedEncoding(string(base)); ok {
				f.encoding = named
			}
		}
		if diffs, ok := resolveArray(r, e.Get("Differences")); ok {
			f.encoding = withDifferences(f.encoding, diffs)
		}
	}

	if fc, ok := dict.GetInt("FirstChar"); ok {
		f.firstChar = int(fc)
	}
	if arr, ok := resolveArray(r, dict.Get("Widths")); ok {
		f.widths = make([]float64, len(arr))
		for i, w := range arr {
			if v, ok := resolveNumber(r, w); ok {
				f.widths[i] = v
			}
		}
	}
	f.readDescriptor(dict, r)
	return nil
}

func (f *Font) loadComposite(dict core.Dict, r Resolver) error {
	f.composite = true
	f.defaultWidth = 1000
	f.vAdvance = -1000

	enc, err := resolve(r, dict.Get("Encoding"))
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	switch e := enc.(type) {
	case core.Name:
		name := string(e)
		f.vertical = len(name) > 2 && name[len(name)-2:] == "-V"
	case *core.Stream:
		cm, err := ParseCMapStream(e)
		if err != nil {
			return fmt.Errorf("encoding cmap: %w", err)
		}
		f.cmap = cm
		if wm, ok := e.Dict.GetInt("WMode"); ok && wm == 1 {
			f.vertical = true
		}
	}

	kids, ok := resolveArray(r, dict.Get("DescendantFonts"))
	if !ok || len(kids) == 0 {
		return fmt.Errorf("Type0 font without descendant")
	}
	desc, ok := resolveDict(r, kids[0])
	if !ok {
		return fmt.Errorf("descendant font is not a dictionary")
	}
	if dw, ok := resolveNumber(r, desc.Get("DW")); ok {
		f.defaultWidth = dw
	}
	if arr, ok := resolveArray(r, desc.Get("DW2")); ok {
		if v, ok := resolveNumber(r, arr.Get(1)); ok {
			f.vAdvance = v
		}
	}
	if arr, ok := resolveArray(r, desc.Get("W")); ok {
		f.cidWidths = parseW(r, arr)
	}
	f.readDescriptor(desc, r)
	return nil
}

// parseW reads a CIDFont /W array: "c [w1 w2 ...]" or "cfirst clast w".
func parseW(r Resolver, arr core.Array) map[int]float64 {
	out := map[int]float64{}
	for i := 0; i < len(arr); {
		start, ok := resolveNumber(r, arr[i])
		if !ok || i+1 >= len(arr) {
			break
		}
		next, _ := resolve(r, arr[i+1])
		if ws, ok := next.(core.Array); ok {
			for j, w := range ws {
				if v, ok := resolveNumber(r, w); ok {
					out[int(start)+j] = v
				}
			}
			i += 2
			continue
		}
		if i+2 >= len(arr) {
			break
		}
		end, _ := resolveNumber(r, next)
		w, _ := resolveNumber(r, arr[i+2])
		// guard against absurd ranges in broken files
		if end-start <= 65535 {
			for c := int(start); c <= int(end); c++ {
				out[c] = w
			}
		}
		i += 3
	}
	return out
}

func (f *Font) readDescriptor(dict core.Dict, r Resolver) {
	fd, ok := resolveDict(r, dict.Get("FontDescriptor"))
	if !ok {
		return
	}
	if v, ok := resolveNumber(r, fd.Get("MissingWidth")); ok {
		f.missingWidth = v
	}
	asc, okA := resolveNumber(r, fd.Get("Ascent"))
	desc, okD := resolveNumber(r, fd.Get("Descent"))
	if okA && okD && asc > desc && asc != 0 {
		f.ascent, f.descent = asc, desc
		return
	}
	if arr, ok := resolveArray(r, fd.Get("FontBBox")); ok {
		if nums, ok := arr.Numbers(); ok && len(nums) == 4 && nums[3] > nums[1] {
			f.ascent, f.descent = nums[3], nums[1]
		}
	}
}

// Composite reports a Type0 font with multi-byte codes
func (f *Font) Composite() bool { return f.composite }

// Vertical reports vertical writing mode
func (f *Font) Vertical() bool { return f.vertical }

// FontMatrix maps glyph space to text space
func (f *Font) FontMatrix() model.Matrix { return f.fontMatrix }

// Ascent and Descent are in glyph space units, Descent is negative.
func (f *Font) Ascent() float64  { return f.ascent }
func (f *Font) Descent() float64 { return f.descent }

// VerticalAdvance is the glyph-space displacement of vertical fonts (negative)
func (f *Font) VerticalAdvance() float64 { return f.vAdvance }

// Glyphs splits a shown string into glyphs.
func (f *Font) Glyphs(s []byte) []Glyph {
	var out []Glyph
	for len(s) > 0 {
		code, n := f.nextCode(s)
		if n == 0 {
			break
		}
		g := Glyph{Code: code, Bytes: n, Space: n == 1 && code == 32}
		g.Width = f.width(code)
		g.Text = f.text(code)
		out = append(out, g)
		s = s[n:]
	}
	return out
}

func (f *Font) nextCode(s []byte) (uint32, int) {
	if !f.composite {
		return uint32(s[0]), 1
	}
	if f.cmap.HasCodespace() {
		return f.cmap.NextCode(s)
	}
	if f.toUnicode.HasCodespace() {
		return f.toUnicode.NextCode(s)
	}
	if len(s) < 2 {
		return uint32(s[0]), 1
	}
	return uint32(s[0])<<8 | uint32(s[1]), 2
}

func (f *Font) width(code uint32) float64 {
	if f.composite {
		cid := int(code)
		if f.cmap != nil {
			if c, ok := f.cmap.CID(code); ok {
				cid = c
			}
		}
		if w, ok := f.cidWidths[cid]; ok {
			return w
		}
		return f.defaultWidth
	}

	i := int(code) - f.firstChar
	if i >= 0 && i < len(f.widths) {
		return f.widths[i]
	}
	if f.standard != nil {
		r := f.encoding[code&0xff]
		if w := f.standard.width(r); w > 0 {
			return w
		}
	}
	if f.missingWidth > 0 {
		return f.missingWidth
	}
	return f.defaultWidth
}

func (f *Font) text(code uint32) string {
	if s := f.toUnicode.Lookup(code); s != "" {
		return s
	}
	if f.composite {
		return ""
	}
	if r := f.encoding[code&0xff]; r != 0 {
		return string(r)
	}
	return ""
}

// Text decodes a whole shown string
func (f *Font) Text(s []byte) string {
	var out []byte
	for _, g := range f.Glyphs(s) {
		out = append(out, g.Text...)
	}
	return string(out)
}

func resolve(r Resolver, obj core.Object) (core.Object, error) {
	if obj == nil {
		return nil, nil
	}
	return r.Resolve(obj)
}

func resolveStream(r Resolver, obj core.Object) (*core.Stream, bool) {
	v, err := resolve(r, obj)
	if err != nil {
		return nil, false
	}
	s, ok := v.(*core.Stream)
	return s, ok
}

func resolveArray(r Resolver, obj core.Object) (core.Array, bool) {
	v, err := resolve(r, obj)
	if err != nil {
		return nil, false
	}
	a, ok := v.(core.Array)
	return a, ok
}

func resolveDict(r Resolver, obj core.Object) (core.Dict, bool) {
	v, err := resolve(r, obj)
	if err != nil {
		return nil, false
	}
	switch d := v.(type) {
	case core.Dict:
		return d, true
	case *core.Stream:
		return d.Dict, true
	}
	return nil, false
}

func resolveNumber(r Resolver, obj core.Object) (float64, bool) {
	v, err := resolve(r, obj)
	if err != nil {
		return 0, false
	}
	return core.Number(v)
}
