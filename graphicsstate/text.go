package graphicsstate

import (
	"github.com/dimdasci/pdfs-api/font"
	"github.com/dimdasci/pdfs-api/model"
)

// TextObject holds the text and text line matrices of a BT ... ET block.
// They are not part of the saved graphics state.
type TextObject struct {
	Matrix     model.Matrix
	LineMatrix model.Matrix
	Open       bool
}

// Begin resets both matrices (BT operator)
func (t *TextObject) Begin() {
	t.Matrix = model.Identity()
	t.LineMatrix = model.Identity()
	t.Open = true
}

// End closes the text object (ET operator)
func (t *TextObject) End() {
	t.Open = false
}

// SetMatrix sets the text matrix (Tm operator)
func (t *TextObject) SetMatrix(m model.Matrix) {
	t.Matrix = m
	t.LineMatrix = m
}

// Translate starts a new line offset from the current one (Td operator)
func (t *TextObject) Translate(tx, ty float64) {
	t.LineMatrix = model.Translate(tx, ty).Multiply(t.LineMatrix)
	t.Matrix = t.LineMatrix
}

// Advance moves the text matrix along the baseline by a text-space offset
func (t *TextObject) Advance(tx, ty float64) {
	t.Matrix = model.Translate(tx, ty).Multiply(t.Matrix)
}

// RenderingMatrix maps text space to page space for ts under ctm
func (t *TextObject) RenderingMatrix(ts TextState, ctm model.Matrix) model.Matrix {
	th := ts.HorizontalScaling / 100
	params := model.Matrix{ts.FontSize * th, 0, 0, ts.FontSize, 0, ts.Rise}
	return params.Multiply(t.Matrix).Multiply(ctm)
}

// GlyphQuad returns the page-space corners of a glyph drawn at the current
// text position: its advance box from descent to ascent.
func (t *TextObject) GlyphQuad(f *font.Font, g font.Glyph, ts TextState, ctm model.Matrix) [4]model.Point {
	m := f.FontMatrix().Multiply(t.RenderingMatrix(ts, ctm))
	var x0, x1, y0, y1 float64
	if f.Vertical() {
		x0, x1 = -g.Width/2, g.Width/2
		y0, y1 = f.VerticalAdvance(), 0
	} else {
		x0, x1 = 0, g.Width
		y0, y1 = f.Descent(), f.Ascent()
	}
	return [4]model.Point{
		m.Transform(model.Point{X: x0, Y: y0}),
		m.Transform(model.Point{X: x1, Y: y0}),
		m.Transform(model.Point{X: x1, Y: y1}),
		m.Transform(model.Point{X: x0, Y: y1}),
	}
}

// GlyphAdvance returns the text-space displacement after showing g:
// tx = ((w0 - adjust/1000) * size + Tc + Tw) * Th for horizontal writing.
func GlyphAdvance(f *font.Font, g font.Glyph, ts TextState) (tx, ty float64) {
	spacing := ts.CharSpacing
	if g.Space {
		spacing += ts.WordSpacing
	}
	if f.Vertical() {
		w1 := f.VerticalAdvance() * f.FontMatrix()[3]
		return 0, w1*ts.FontSize + spacing
	}
	w0 := g.Width * f.FontMatrix()[0]
	return (w0*ts.FontSize + spacing) * ts.HorizontalScaling / 100, 0
}

// Kern returns the displacement of a TJ number adjustment
func Kern(f *font.Font, adjust float64, ts TextState) (tx, ty float64) {
	d := -adjust / 1000 * ts.FontSize
	if f.Vertical() {
		return 0, d
	}
	return d * ts.HorizontalScaling / 100, 0
}

// NextLine moves to the start of the next line (T* operator)
func (t *TextObject) NextLine(ts TextState) {
	t.Translate(0, -ts.Leading)
}
