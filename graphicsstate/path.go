package graphicsstate

import (
	"math"

	"github.com/dimdasci/pdfs-api/model"
)

// PathSegmentType defines the type of path segment
type PathSegmentType int

const (
	// PathMoveTo starts a new subpath
	PathMoveTo PathSegmentType = iota
	// PathLineTo draws a line to a point
	PathLineTo
	// PathCurveTo draws a cubic Bézier curve
	PathCurveTo
	// PathClosePath closes the current subpath
	PathClosePath
)

// PathSegment represents a single segment of a path. MoveTo and LineTo
// carry one point, CurveTo two control points and the end point.
type PathSegment struct {
	Type   PathSegmentType
	Points []model.Point
}

// Path is a path under construction. Its points are already in page space:
// callers transform user-space coordinates by the CTM in effect when each
// segment is added.
type Path struct {
	Segments []PathSegment

	current, start model.Point
	hasCurrent     bool
}

// NewPath creates a new empty path
func NewPath() *Path {
	return &Path{}
}

// MoveTo starts a new subpath (m operator)
func (p *Path) MoveTo(pt model.Point) {
	p.Segments = append(p.Segments, PathSegment{Type: PathMoveTo, Points: []model.Point{pt}})
	p.current, p.start = pt, pt
	p.hasCurrent = true
}

// LineTo appends a line segment (l operator). Without a current point it
// starts a subpath instead.
func (p *Path) LineTo(pt model.Point) {
	if !p.hasCurrent {
		p.MoveTo(pt)
		return
	}
	p.Segments = append(p.Segments, PathSegment{Type: PathLineTo, Points: []model.Point{pt}})
	p.current = pt
}

// CurveTo appends a cubic Bézier curve (c operator)
func (p *Path) CurveTo(c1, c2, end model.Point) {
	if !p.hasCurrent {
		p.MoveTo(c1)
	}
	p.Segments = append(p.Segments, PathSegment{Type: PathCurveTo, Points: []model.Point{c1, c2, end}})
	p.current = end
}

// CurveToV appends a curve whose first control point is the current point (v operator)
func (p *Path) CurveToV(c2, end model.Point) {
	if !p.hasCurrent {
		return
	}
	p.CurveTo(p.current, c2, end)
}

// CurveToY appends a curve whose second control point is the end point (y operator)
func (p *Path) CurveToY(c1, end model.Point) {
	if !p.hasCurrent {
		return
	}
	p.CurveTo(c1, end, end)
}

// ClosePath closes the current subpath (h operator)
func (p *Path) ClosePath() {
	if !p.hasCurrent {
		return
	}
	p.Segments = append(p.Segments, PathSegment{Type: PathClosePath})
	p.current = p.start
}

// Rectangle appends a closed rectangle given in user space (re operator)
func (p *Path) Rectangle(ctm model.Matrix, x, y, width, height float64) {
	p.MoveTo(ctm.Transform(model.Point{X: x, Y: y}))
	p.LineTo(ctm.Transform(model.Point{X: x + width, Y: y}))
	p.LineTo(ctm.Transform(model.Point{X: x + width, Y: y + height}))
	p.LineTo(ctm.Transform(model.Point{X: x, Y: y + height}))
	p.ClosePath()
}

// Current returns the current point
func (p *Path) Current() (model.Point, bool) {
	return p.current, p.hasCurrent
}

// IsEmpty returns true if the path has no segments
func (p *Path) IsEmpty() bool {
	return len(p.Segments) == 0
}

// Bounds is the union of all segment points. Curves are bounded by their
// control hull, which contains the curve.
func (p *Path) Bounds() model.Rect {
	var pts []model.Point
	for _, seg := range p.Segments {
		pts = append(pts, seg.Points...)
	}
	return model.RectFromPoints(pts...)
}

// Subpaths flattens the path into polylines, one per subpath. Curves are
// approximated with tolerance in page units. Closed subpaths repeat their
// first point at the end.
func (p *Path) Subpaths(tolerance float64) [][]model.Point {
	var out [][]model.Point
	var cur []model.Point
	flush := func() {
		if len(cur) > 1 {
			out = append(out, cur)
		}
		cur = nil
	}
	for _, seg := range p.Segments {
		switch seg.Type {
		case PathMoveTo:
			flush()
			cur = []model.Point{seg.Points[0]}
		case PathLineTo:
			cur = append(cur, seg.Points[0])
		case PathCurveTo:
			if len(cur) == 0 {
				cur = []model.Point{seg.Points[0]}
			}
			cur = flattenCubic(cur, cur[len(cur)-1], seg.Points[0], seg.Points[1], seg.Points[2], tolerance)
		case PathClosePath:
			if len(cur) > 0 {
				cur = append(cur, cur[0])
				start := cur[0]
				flush()
				cur = []model.Point{start}
			}
		}
	}
	if len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

func flattenCubic(dst []model.Point, p0, p1, p2, p3 model.Point, tolerance float64) []model.Point {
	hull := math.Hypot(p1.X-p0.X, p1.Y-p0.Y) + math.Hypot(p2.X-p1.X, p2.Y-p1.Y) + math.Hypot(p3.X-p2.X, p3.Y-p2.Y)
	if tolerance <= 0 {
		tolerance = 0.5
	}
	n := int(math.Ceil(hull / tolerance))
	n = max(1, min(n, 64))
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		u := 1 - t
		dst = append(dst, model.Point{
			X: u*u*u*p0.X + 3*u*u*t*p1.X + 3*u*t*t*p2.X + t*t*t*p3.X,
			Y: u*u*u*p0.Y + 3*u*u*t*p1.Y + 3*u*t*t*p2.Y + t*t*t*p3.Y,
		})
	}
	return dst
}

// Clone returns a copy that shares no segment storage with p
func (p *Path) Clone() *Path {
	c := &Path{current: p.current, start: p.start, hasCurrent: p.hasCurrent}
	c.Segments = make([]PathSegment, len(p.Segments))
	for i, seg := range p.Segments {
		c.Segments[i] = PathSegment{Type: seg.Type, Points: append([]model.Point(nil), seg.Points...)}
	}
	return c
}

// IsRectangle reports whether the path is a single axis-aligned rectangle
// and returns it.
func (p *Path) IsRectangle() (model.Rect, bool) {
	segs := p.Segments
	if len(segs) < 4 || segs[0].Type != PathMoveTo {
		return model.Rect{}, false
	}
	corners := []model.Point{segs[0].Points[0]}
	for _, seg := range segs[1:] {
		switch seg.Type {
		case PathLineTo:
			corners = append(corners, seg.Points[0])
		case PathClosePath:
		default:
			return model.Rect{}, false
		}
	}
	if len(corners) == 5 && pointsEqual(corners[0], corners[4], 0.1) {
		corners = corners[:4]
	}
	if len(corners) != 4 {
		return model.Rect{}, false
	}
	for i := 0; i < 4; i++ {
		a, b := corners[i], corners[(i+1)%4]
		if math.Abs(a.X-b.X) > 0.01 && math.Abs(a.Y-b.Y) > 0.01 {
			return model.Rect{}, false
		}
	}
	return model.RectFromPoints(corners...), true
}

// pointsEqual checks if two points are approximately equal
func pointsEqual(a, b model.Point, tolerance float64) bool {
	return math.Abs(a.X-b.X) < tolerance && math.Abs(a.Y-b.Y) < tolerance
}
