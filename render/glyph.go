package render

import (
	"image"
	"unicode/utf8"

	"github.com/dimdasci/pdfs-api/interpreter"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// glyphCache holds rendered masks by text within one render call
type glyphCache map[string]*image.Alpha

func (gc glyphCache) mask(text string) *image.Alpha {
	if m, ok := gc[text]; ok {
		return m
	}
	n := max(1, utf8.RuneCountInString(text))
	m := image.NewAlpha(image.Rect(0, 0, face.Advance*n, face.Height))
	dr := font.Drawer{
		Dst:  m,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	dr.DrawString(text)
	gc[text] = m
	return m
}

// drawGlyph scales the bitmap of ev.Text onto the glyph quad. Quad corners
// are bottom-left, bottom-right, top-right, top-left in page space.
func drawGlyph(d device, dst *image.RGBA, clip image.Rectangle, ev interpreter.PaintEvent, glyphs glyphCache) {
	c := ev.State.FillColor()
	if ev.State.Text.RenderingMode == 1 {
		c = ev.State.StrokeColor()
	}
	if c.A == 0 {
		return
	}
	mask := glyphs.mask(ev.Text)
	src := tint(mask, c)
	w, h := float32(mask.Bounds().Dx()), float32(mask.Bounds().Dy())

	blx, bly := d.point(ev.Quad[0])
	trx, try := d.point(ev.Quad[2])
	tlx, tly := d.point(ev.Quad[3])
	aff := f64.Aff3{
		float64((trx - tlx) / w), float64((blx - tlx) / h), float64(tlx),
		float64((try - tly) / w), float64((bly - tly) / h), float64(tly),
	}
	sub := dst.SubImage(clip).(*image.RGBA)
	draw.ApproxBiLinear.Transform(sub, aff, src, src.Bounds(), draw.Over, nil)
}
