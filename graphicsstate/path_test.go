package graphicsstate

import (
	"testing"

	"github.com/dimdasci/pdfs-api/model"
)

func pt(x, y float64) model.Point { return model.Point{X: x, Y: y} }

// TestPathBounds tests the control-hull bounding box
func TestPathBounds(t *testing.T) {
	p := NewPath()
	p.MoveTo(pt(0, 0))
	p.CurveTo(pt(10, 20), pt(30, -5), pt(40, 0))
	got := p.Bounds()
	if got != (model.Rect{X0: 0, Y0: -5, X1: 40, Y1: 20}) {
		t.Errorf("unexpected bounds %v", got)
	}
}

// TestLineToWithoutCurrentPoint tests the implicit moveto
func TestLineToWithoutCurrentPoint(t *testing.T) {
	p := NewPath()
	p.LineTo(pt(5, 5))
	if len(p.Segments) != 1 || p.Segments[0].Type != PathMoveTo {
		t.Errorf("expected a moveto, got %+v", p.Segments)
	}
	p2 := NewPath()
	p2.CurveToV(pt(1, 1), pt(2, 2))
	if !p2.IsEmpty() {
		t.Error("v without current point should be ignored")
	}
}

// TestRectangle tests re under a transform
func TestRectangle(t *testing.T) {
	p := NewPath()
	p.Rectangle(model.Translate(100, 200), 0, 0, 50, -10)
	r, ok := p.IsRectangle()
	if !ok {
		t.Fatal("expected a rectangle")
	}
	if r != (model.Rect{X0: 100, Y0: 190, X1: 150, Y1: 200}) {
		t.Errorf("unexpected rectangle %v", r)
	}
	cur, _ := p.Current()
	if cur != pt(100, 200) {
		t.Errorf("closepath should return to the start, got %v", cur)
	}
}

// TestSubpaths tests flattening and closing
func TestSubpaths(t *testing.T) {
	p := NewPath()
	p.MoveTo(pt(0, 0))
	p.LineTo(pt(10, 0))
	p.LineTo(pt(10, 10))
	p.ClosePath()
	p.MoveTo(pt(20, 20))
	p.CurveTo(pt(20, 30), pt(30, 30), pt(30, 20))

	subs := p.Subpaths(1)
	if len(subs) != 2 {
		t.Fatalf("expected 2 subpaths, got %d", len(subs))
	}
	first := subs[0]
	if len(first) != 4 || first[3] != pt(0, 0) {
		t.Errorf("closed subpath should end at its start, got %v", first)
	}
	last := subs[1][len(subs[1])-1]
	if !near(last.X, 30) || !near(last.Y, 20) {
		t.Errorf("curve should end at (30,20), got %v", last)
	}
	if len(subs[1]) < 4 {
		t.Errorf("curve should be flattened into several points, got %d", len(subs[1]))
	}
}

// TestCloneIsDeep tests that clones do not share points
func TestCloneIsDeep(t *testing.T) {
	p := NewPath()
	p.MoveTo(pt(1, 1))
	c := p.Clone()
	p.Segments[0].Points[0] = pt(9, 9)
	if c.Segments[0].Points[0] != pt(1, 1) {
		t.Error("clone shares point storage")
	}
}

// TestIsRectangleRejectsDiagonal tests non-axis-aligned quads
func TestIsRectangleRejectsDiagonal(t *testing.T) {
	p := NewPath()
	p.MoveTo(pt(0, 0))
	p.LineTo(pt(10, 10))
	p.LineTo(pt(0, 20))
	p.LineTo(pt(-10, 10))
	p.ClosePath()
	if _, ok := p.IsRectangle(); ok {
		t.Error("diamond is not an axis-aligned rectangle")
	}
}
