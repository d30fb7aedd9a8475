package interpreter

import (
	"image/color"
	"math"

	"github.com/dimdasci/pdfs-api/core"
	"github.com/dimdasci/pdfs-api/graphicsstate"
	"github.com/dimdasci/pdfs-api/model"
)

// Kind is the kind of drawing a PaintEvent records
type Kind int

const (
	ShowText Kind = iota
	DrawImage
	PaintPath
	Shade
	InlineImage
)

func (k Kind) String() string {
	switch k {
	case ShowText:
		return "ShowText"
	case DrawImage:
		return "DrawImage"
	case PaintPath:
		return "PaintPath"
	case Shade:
		return "Shade"
	case InlineImage:
		return "InlineImage"
	}
	return "Unknown"
}

// PaintEvent is one primitive drawing observed while interpreting a page.
// BBox is in page space, clipped to the clip region in effect. State is the
// graphics state snapshot active when the event was emitted.
type PaintEvent struct {
	Kind Kind
	// Group is the sequence number of the operator that produced the
	// event. All glyphs of one show operator share it.
	Group    int
	Operator string
	BBox     model.Rect
	State    graphicsstate.State
	// Clipped is set when the drawing lies wholly outside the clip. BBox
	// is then an empty box on the clip's edge.
	Clipped bool

	// PaintPath
	Path    *graphicsstate.Path
	Fill    bool
	Stroke  bool
	EvenOdd bool

	// DrawImage and InlineImage. Matrix maps the unit square to page space.
	Matrix     model.Matrix
	Name       string
	Image      *core.Stream
	Inline     core.Dict
	InlineData []byte
	Resources  core.Dict

	// ShowText
	Text      string
	Quad      [4]model.Point
	Invisible bool

	// Shade
	ShadeColor color.NRGBA
}

// Bounds returns the event's page-space bounding box
func (e PaintEvent) Bounds() model.Rect { return e.BBox }

// unitSquare is image space
var unitSquare = model.Rect{X0: 0, Y0: 0, X1: 1, Y1: 1}

// clipBox intersects box with clip. A box outside the clip collapses to
// the nearest point of the clip and reports false.
func clipBox(box, clip model.Rect) (model.Rect, bool) {
	out, ok := box.Intersect(clip)
	if ok {
		return out, true
	}
	x := math.Min(math.Max(out.X0, clip.X0), clip.X1)
	y := math.Min(math.Max(out.Y0, clip.Y0), clip.Y1)
	return model.Rect{X0: x, Y0: y, X1: x, Y1: y}, false
}
