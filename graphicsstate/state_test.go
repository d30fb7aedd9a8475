package graphicsstate

import (
	"errors"
	"math"
	"testing"

	"github.com/dimdasci/pdfs-api/font"
	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/reader"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

// TestNewState tests initial state
func TestNewState(t *testing.T) {
	s := New(model.Rect{X1: 612, Y1: 792})

	if s.LineWidth != 1.0 {
		t.Errorf("expected line width 1.0, got %f", s.LineWidth)
	}
	if s.Text.FontSize != 12.0 {
		t.Errorf("expected font size 12.0, got %f", s.Text.FontSize)
	}
	if s.Text.HorizontalScaling != 100.0 {
		t.Errorf("expected horizontal scaling 100.0, got %f", s.Text.HorizontalScaling)
	}
	if !s.CTM.IsIdentity() {
		t.Error("expected CTM to be identity matrix")
	}
	if c := s.FillColor(); c.R != 0 || c.A != 255 {
		t.Errorf("expected opaque black fill, got %v", c)
	}
}

// TestSnapshotsAreIndependent tests that modified copies leave the original alone
func TestSnapshotsAreIndependent(t *testing.T) {
	base := New(model.Rect{X1: 100, Y1: 100})
	var st Stack
	st.Push(base)

	changed := base.WithLineWidth(5).Concat(model.Translate(10, 0)).ClipTo(model.Rect{X1: 50, Y1: 50})
	if base.LineWidth != 1 || !base.CTM.IsIdentity() || base.Clip.X1 != 100 {
		t.Errorf("original snapshot was modified: %+v", base)
	}
	if changed.Clip != (model.Rect{X1: 50, Y1: 50}) {
		t.Errorf("expected clipped rect, got %v", changed.Clip)
	}

	restored, err := st.Pop()
	if err != nil {
		t.Fatal(err)
	}
	if restored.LineWidth != 1 {
		t.Errorf("expected saved line width 1, got %f", restored.LineWidth)
	}
	if _, err := st.Pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("expected underflow, got %v", err)
	}
}

// TestConcatOrder tests cm semantics: the new matrix applies before the CTM
func TestConcatOrder(t *testing.T) {
	s := New(model.Rect{}).Concat(model.Translate(100, 0)).Concat(model.Scale(2, 2))
	p := s.CTM.Transform(model.Point{X: 1, Y: 1})
	if !near(p.X, 102) || !near(p.Y, 2) {
		t.Errorf("expected (102,2), got %v", p)
	}
	if !near(s.DeviceLineWidth(), 2) {
		t.Errorf("expected device line width 2, got %f", s.DeviceLineWidth())
	}
}

// TestStackTruncate tests discarding unbalanced saves
func TestStackTruncate(t *testing.T) {
	var st Stack
	s := New(model.Rect{})
	st.Push(s)
	st.Push(s)
	st.Push(s)
	st.Truncate(1)
	if st.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", st.Depth())
	}
}

// TestPaintAlpha tests alpha from ExtGState
func TestPaintAlpha(t *testing.T) {
	s := New(model.Rect{}).WithFill(NewPaint(reader.DeviceRGB, []float64{1, 0, 0}))
	s.FillAlpha = 0.5
	c := s.FillColor()
	if c.R != 255 || c.A != 127 {
		t.Errorf("expected half-transparent red, got %v", c)
	}
}

// TestTextMatrices tests Td, T* and glyph advance
func TestTextMatrices(t *testing.T) {
	var tobj TextObject
	tobj.Begin()
	tobj.Translate(72, 700)
	ts := TextState{FontSize: 10, HorizontalScaling: 100, Leading: 12}
	tobj.NextLine(ts)
	if !near(tobj.Matrix[4], 72) || !near(tobj.Matrix[5], 688) {
		t.Errorf("expected (72,688), got (%f,%f)", tobj.Matrix[4], tobj.Matrix[5])
	}

	f := font.Default()
	g := f.Glyphs([]byte("H"))[0]
	tx, ty := GlyphAdvance(f, g, ts)
	if !near(tx, 7.22) || ty != 0 {
		t.Errorf("expected advance 7.22, got (%f,%f)", tx, ty)
	}

	quad := tobj.GlyphQuad(f, g, ts, model.Identity())
	box := model.RectFromPoints(quad[:]...)
	if !near(box.X0, 72) || !near(box.X1, 79.22) {
		t.Errorf("unexpected glyph box %v", box)
	}
	if box.Y0 >= 688 || box.Y1 <= 688 {
		t.Errorf("glyph box should straddle the baseline, got %v", box)
	}

	ts.WordSpacing = 3
	ts.HorizontalScaling = 50
	space := f.Glyphs([]byte(" "))[0]
	tx, _ = GlyphAdvance(f, space, ts)
	if !near(tx, (2.78+3)*0.5) {
		t.Errorf("expected scaled space advance, got %f", tx)
	}
	tx, _ = Kern(f, 1000, ts)
	if !near(tx, -5) {
		t.Errorf("expected kern -5, got %f", tx)
	}
}
