package anomaly

import (
	"math"
	"sort"

	"github.com/dimdasci/pdfs-api/model"
)

// RepeatedConfig holds configuration for repeated-pattern detection
type RepeatedConfig struct {
	// MinPageFraction is the share of pages a cluster must appear on.
	// Default: 0.5, inclusive
	MinPageFraction float64

	// Tolerance is the largest difference in points allowed on each
	// edge offset and on width and height.
	// Default: 2
	Tolerance float64

	// UseContent adds the content fingerprint to the signature.
	// Default: true
	UseContent bool

	// MinPages is the fewest distinct pages a cluster needs.
	// Default: 2
	MinPages int
}

// DefaultRepeatedConfig returns the defaults
func DefaultRepeatedConfig() RepeatedConfig {
	return RepeatedConfig{
		MinPageFraction: 0.5,
		Tolerance:       2,
		UseContent:      true,
		MinPages:        2,
	}
}

// PageObjects is one analysed page: its 1-based number, its crop box and
// its objects in z order.
type PageObjects struct {
	Page    int
	Box     model.Rect
	Objects []model.Object
}

type edge int

const (
	edgeLeft edge = iota
	edgeRight
	edgeBottom
	edgeTop
	// the box is equally far from both edges of an axis
	edgeMiddle
)

// signature locates an object relative to the page edges nearest to it
type signature struct {
	typ         model.ObjectType
	fingerprint string
	hEdge       edge
	hOff        float64
	vEdge       edge
	vOff        float64
	width       float64
	height      float64

	// distances to all four edges, for region classification
	left, right, bottom, top float64
}

func signatureOf(obj model.Object, box model.Rect, useContent bool, tol float64) signature {
	s := signature{
		typ:    obj.Type,
		width:  obj.BBox.Width(),
		height: obj.BBox.Height(),
		left:   obj.BBox.X0 - box.X0,
		right:  box.X1 - obj.BBox.X1,
		bottom: obj.BBox.Y0 - box.Y0,
		top:    box.Y1 - obj.BBox.Y1,
	}
	if useContent {
		s.fingerprint = obj.Fingerprint
	}
	s.hEdge, s.hOff = nearest(s.left, s.right, edgeLeft, edgeRight, tol)
	s.vEdge, s.vOff = nearest(s.bottom, s.top, edgeBottom, edgeTop, tol)
	return s
}

// nearest picks the closer of two opposite edges. Offsets within tol of
// each other count as centered, measured from the low edge.
func nearest(low, high float64, lowEdge, highEdge edge, tol float64) (edge, float64) {
	switch {
	case math.Abs(low-high) <= tol:
		return edgeMiddle, low
	case high < low:
		return highEdge, high
	}
	return lowEdge, low
}

// key is the exact part of a signature. Edges are compared with
// tolerance in near: an object close to the middle of an axis may pick a
// different edge on each page.
type key struct {
	typ         model.ObjectType
	fingerprint string
}

func (s signature) key() key {
	return key{typ: s.typ, fingerprint: s.fingerprint}
}

func (s signature) near(o signature, tol float64) bool {
	return axisNear(s.hEdge, o.hEdge, s.hOff, o.hOff, [2]float64{s.left, s.right}, [2]float64{o.left, o.right}, tol) &&
		axisNear(s.vEdge, o.vEdge, s.vOff, o.vOff, [2]float64{s.bottom, s.top}, [2]float64{o.bottom, o.top}, tol) &&
		math.Abs(s.width-o.width) <= tol &&
		math.Abs(s.height-o.height) <= tol
}

// axisNear compares two positions on one axis. Boxes anchored to the same
// edge compare their offsets from it; otherwise the offsets from both
// edges must agree.
func axisNear(e1, e2 edge, off1, off2 float64, d1, d2 [2]float64, tol float64) bool {
	if e1 == e2 {
		return math.Abs(off1-off2) <= tol
	}
	return math.Abs(d1[0]-d2[0]) <= tol && math.Abs(d1[1]-d2[1]) <= tol
}

// region names the page edge the box is closest to
func (s signature) region() model.Region {
	horizontal := math.Min(s.top, s.bottom)
	vertical := math.Min(s.left, s.right)
	switch {
	case vertical < horizontal:
		return model.RegionOther
	case s.top < s.bottom:
		return model.RegionHeader
	case s.bottom < s.top:
		return model.RegionFooter
	}
	return model.RegionOther
}

type cluster struct {
	anchor  signature
	members []model.ObjectRef
	pages   map[int]bool
}

// RepeatedPatterns clusters objects that recur at the same edge-relative
// position across pages and reports the clusters that appear on enough of
// them. Each object joins the first cluster whose anchor it matches.
func RepeatedPatterns(pages []PageObjects, cfg RepeatedConfig) []model.Finding {
	if cfg.MinPages < 2 {
		cfg.MinPages = 2
	}
	if len(pages) < cfg.MinPages {
		return nil
	}
	sorted := make([]PageObjects, len(pages))
	copy(sorted, pages)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Page < sorted[j].Page })

	var clusters []*cluster
	byKey := map[key][]*cluster{}
	for _, p := range sorted {
		for _, obj := range p.Objects {
			sig := signatureOf(obj, p.Box, cfg.UseContent, cfg.Tolerance)
			ref := model.ObjectRef{Page: p.Page, ID: obj.ID}

			var into *cluster
			for _, c := range byKey[sig.key()] {
				if c.anchor.near(sig, cfg.Tolerance) {
					into = c
					break
				}
			}
			if into == nil {
				into = &cluster{anchor: sig, pages: map[int]bool{}}
				clusters = append(clusters, into)
				byKey[sig.key()] = append(byKey[sig.key()], into)
			}
			into.members = append(into.members, ref)
			into.pages[p.Page] = true
		}
	}

	var out []model.Finding
	total := float64(len(pages))
	for _, c := range clusters {
		n := len(c.pages)
		ratio := float64(n) / total
		if n < cfg.MinPages || ratio < cfg.MinPageFraction {
			continue
		}
		nums := make([]int, 0, n)
		for pg := range c.pages {
			nums = append(nums, pg)
		}
		sort.Ints(nums)
		out = append(out, model.Finding{
			Kind:       model.KindRepeatedPattern,
			Severity:   model.SeverityInfo,
			Confidence: math.Min(ratio*0.9+0.1, 1),
			Objects:    c.members,
			Pages:      nums,
			Region:     c.anchor.region(),
		})
	}
	return out
}

// ForPage returns the findings that reference an object on page
func ForPage(findings []model.Finding, page int) []model.Finding {
	var out []model.Finding
	for _, f := range findings {
		if f.Touches(page) {
			out = append(out, f)
		}
	}
	return out
}
