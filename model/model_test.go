package model

import (
	"encoding/json"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestNewRectNormalizes tests corner ordering
func TestNewRectNormalizes(t *testing.T) {
	r := NewRect(10, 20, 0, 5)
	if r != (Rect{0, 5, 10, 20}) {
		t.Errorf("expected normalized rect, got %v", r)
	}
	if !r.Valid() {
		t.Error("normalized rect should be valid")
	}
	if r.Area() != 150 {
		t.Errorf("expected area 150, got %f", r.Area())
	}
}

// TestRectIntersect tests overlapping and disjoint rectangles
func TestRectIntersect(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	got, ok := a.Intersect(Rect{5, 5, 20, 20})
	if !ok || got != (Rect{5, 5, 10, 10}) {
		t.Errorf("expected [5 5 10 10], got %v (%v)", got, ok)
	}
	got, ok = a.Intersect(Rect{20, 20, 30, 30})
	if ok {
		t.Error("disjoint rectangles should not intersect")
	}
	if !got.Valid() || got.Area() != 0 {
		t.Errorf("disjoint intersection should be a valid empty rect, got %v", got)
	}
}

// TestRectTransform tests bounding boxes under rotation
func TestRectTransform(t *testing.T) {
	r := Rect{0, 0, 2, 1}.Transform(Rotate(math.Pi / 2))
	want := Rect{-1, 0, 0, 2}
	if !almostEqual(r.X0, want.X0) || !almostEqual(r.Y0, want.Y0) ||
		!almostEqual(r.X1, want.X1) || !almostEqual(r.Y1, want.Y1) {
		t.Errorf("expected %v, got %v", want, r)
	}
}

// TestMatrixMultiplyOrder tests that Multiply applies the receiver first
func TestMatrixMultiplyOrder(t *testing.T) {
	m := Scale(2, 2).Multiply(Translate(10, 0))
	p := m.Transform(Point{1, 1})
	if p != (Point{12, 2}) {
		t.Errorf("expected scale then translate to give (12,2), got %v", p)
	}
}

// TestMatrixInvert tests round-tripping a point
func TestMatrixInvert(t *testing.T) {
	m := Matrix{2, 1, -1, 3, 5, 7}
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("matrix should be invertible")
	}
	p := inv.Transform(m.Transform(Point{3, -4}))
	if !almostEqual(p.X, 3) || !almostEqual(p.Y, -4) {
		t.Errorf("expected (3,-4), got %v", p)
	}
	if _, ok := (Matrix{1, 2, 2, 4, 0, 0}).Invert(); ok {
		t.Error("singular matrix should not invert")
	}
}

// TestRectJSON tests the four-element array form
func TestRectJSON(t *testing.T) {
	b, err := json.Marshal(Object{ID: "p1-o1", Type: TypeText, BBox: Rect{1, 2, 3, 4}, ZIndex: 1})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"p1-o1","type":"text","bbox":[1,2,3,4],"z_index":1}`
	if string(b) != want {
		t.Errorf("expected %s, got %s", want, b)
	}
	var o Object
	if err := json.Unmarshal(b, &o); err != nil {
		t.Fatal(err)
	}
	if o.Type != TypeText || o.BBox != (Rect{1, 2, 3, 4}) {
		t.Errorf("unexpected decoded object %+v", o)
	}
}

// TestParseObjectType tests type names
func TestParseObjectType(t *testing.T) {
	for _, typ := range ObjectTypes {
		got, err := ParseObjectType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseObjectType(%q) = %v, %v", typ, got, err)
		}
	}
	if _, err := ParseObjectType("shade"); err == nil {
		t.Error("expected error for unknown type")
	}
}

// TestFormatWarnings tests warning rendering
func TestFormatWarnings(t *testing.T) {
	got := FormatWarnings([]Warning{
		{Page: 1, Op: 3, Operator: "xx", Message: "unknown operator"},
		{Page: 2, Op: -1, Message: "missing font"},
	})
	want := "page 1: op 3 (xx): unknown operator\npage 2: missing font"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
