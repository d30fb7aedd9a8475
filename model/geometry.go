package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle with X0 <= X1 and Y0 <= Y1.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// NewRect returns the normalized rectangle spanned by two corners
func NewRect(x0, y0, x1, y1 float64) Rect {
	return Rect{
		X0: math.Min(x0, x1), Y0: math.Min(y0, y1),
		X1: math.Max(x0, x1), Y1: math.Max(y0, y1),
	}
}

// RectFromPoints returns the bounding rectangle of pts. It returns the zero
// Rect for no points.
func RectFromPoints(pts ...Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	r := Rect{X0: pts[0].X, Y0: pts[0].Y, X1: pts[0].X, Y1: pts[0].Y}
	for _, p := range pts[1:] {
		r.X0 = math.Min(r.X0, p.X)
		r.Y0 = math.Min(r.Y0, p.Y)
		r.X1 = math.Max(r.X1, p.X)
		r.Y1 = math.Max(r.Y1, p.Y)
	}
	return r
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Area is width times height
func (r Rect) Area() float64 { return r.Width() * r.Height() }

// Center returns the center point
func (r Rect) Center() Point {
	return Point{X: (r.X0 + r.X1) / 2, Y: (r.Y0 + r.Y1) / 2}
}

// Union returns the smallest rectangle containing both
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X0: math.Min(r.X0, o.X0), Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1), Y1: math.Max(r.Y1, o.Y1),
	}
}

// Intersect returns the overlap of two rectangles. When they are disjoint
// the result collapses to a zero-area rectangle on r's nearest edge and ok
// is false.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	out := Rect{
		X0: math.Max(r.X0, o.X0), Y0: math.Max(r.Y0, o.Y0),
		X1: math.Min(r.X1, o.X1), Y1: math.Min(r.Y1, o.Y1),
	}
	ok := true
	if out.X1 < out.X0 {
		out.X1 = out.X0
		ok = false
	}
	if out.Y1 < out.Y0 {
		out.Y1 = out.Y0
		ok = false
	}
	return out, ok
}

// Expand grows the rectangle by d on every side
func (r Rect) Expand(d float64) Rect {
	return NewRect(r.X0-d, r.Y0-d, r.X1+d, r.Y1+d)
}

// Transform returns the bounding box of r's four corners under m
func (r Rect) Transform(m Matrix) Rect {
	return RectFromPoints(
		m.Transform(Point{r.X0, r.Y0}),
		m.Transform(Point{r.X1, r.Y0}),
		m.Transform(Point{r.X0, r.Y1}),
		m.Transform(Point{r.X1, r.Y1}),
	)
}

// Valid reports finite, normalized coordinates
func (r Rect) Valid() bool {
	for _, v := range []float64{r.X0, r.Y0, r.X1, r.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.X0 <= r.X1 && r.Y0 <= r.Y1
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g %g %g %g]", r.X0, r.Y0, r.X1, r.Y1)
}

// MarshalJSON writes [x0, y0, x1, y1]
func (r Rect) MarshalJSON() ([]byte, error) {
	return json.Marshal([4]float64{r.X0, r.Y0, r.X1, r.Y1})
}

// UnmarshalJSON reads [x0, y0, x1, y1]
func (r *Rect) UnmarshalJSON(b []byte) error {
	var v [4]float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = NewRect(v[0], v[1], v[2], v[3])
	return nil
}

// Matrix is a PDF affine matrix [a b c d e f] mapping (x, y) to
// (a*x + c*y + e, b*x + d*y + f).
type Matrix [6]float64

// Identity returns an identity matrix
func Identity() Matrix {
	return Matrix{1, 0, 0, 1, 0, 0}
}

// Transform applies the matrix transformation to a point
func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Multiply returns the matrix that applies m first and then other. The
// content-stream cm operator is therefore ctm = m.Multiply(ctm).
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		m[0]*other[0] + m[1]*other[2],
		m[0]*other[1] + m[1]*other[3],
		m[2]*other[0] + m[3]*other[2],
		m[2]*other[1] + m[3]*other[3],
		m[4]*other[0] + m[5]*other[2] + other[4],
		m[4]*other[1] + m[5]*other[3] + other[5],
	}
}

// Translate creates a translation matrix
func Translate(tx, ty float64) Matrix {
	return Matrix{1, 0, 0, 1, tx, ty}
}

// Scale creates a scaling matrix
func Scale(sx, sy float64) Matrix {
	return Matrix{sx, 0, 0, sy, 0, 0}
}

// Rotate creates a counter-clockwise rotation (angle in radians)
func Rotate(angle float64) Matrix {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// IsIdentity returns true if the matrix is an identity matrix
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// ScaleFactor is the geometric mean of the axis scales; it maps a length in
// user space to device space for line widths.
func (m Matrix) ScaleFactor() float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}

// Invert returns the inverse matrix. ok is false for singular matrices.
func (m Matrix) Invert() (Matrix, bool) {
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 || math.IsNaN(det) {
		return Matrix{}, false
	}
	a, b, c, d := m[3]/det, -m[1]/det, -m[2]/det, m[0]/det
	return Matrix{a, b, c, d, -(m[4]*a + m[5]*c), -(m[4]*b + m[5]*d)}, true
}
