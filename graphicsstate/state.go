package graphicsstate

import (
	"errors"
	"image/color"

	"github.com/dimdasci/pdfs-api/font"
	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/reader"
)

// ErrStackUnderflow is returned by Pop on an empty stack
var ErrStackUnderflow = errors.New("graphics state stack underflow")

// Paint is a fill or stroke color. Components is never modified after the
// Paint is built, so snapshots may share it.
type Paint struct {
	Space      *reader.ColorSpace
	Components []float64
	// Pattern names the pattern resource when Space is a Pattern space.
	Pattern string
	RGBA    color.NRGBA
}

// NewPaint evaluates components in space
func NewPaint(space *reader.ColorSpace, components []float64) Paint {
	return Paint{Space: space, Components: components, RGBA: space.RGBA(components)}
}

// Black is the initial paint
func Black() Paint {
	return NewPaint(reader.DeviceGray, []float64{0})
}

// TextState holds the text parameters saved by q and restored by Q
type TextState struct {
	Font     *font.Font
	FontName string
	FontSize float64

	CharSpacing float64
	WordSpacing float64
	// HorizontalScaling is a percentage (Tz), 100 by default.
	HorizontalScaling float64
	Leading           float64
	RenderingMode     int
	Rise              float64
}

// State is one immutable snapshot of the graphics state. It is passed by
// value; the With and Concat helpers return modified copies.
type State struct {
	CTM model.Matrix
	// Clip is the current clipping region as a page-space rectangle.
	Clip model.Rect

	LineWidth   float64
	Fill        Paint
	Stroke      Paint
	FillAlpha   float64
	StrokeAlpha float64

	Text TextState
}

// New returns the initial state for a page whose visible area is clip
func New(clip model.Rect) State {
	return State{
		CTM:         model.Identity(),
		Clip:        clip,
		LineWidth:   1.0,
		Fill:        Black(),
		Stroke:      Black(),
		FillAlpha:   1,
		StrokeAlpha: 1,
		Text: TextState{
			FontSize:          12.0,
			HorizontalScaling: 100.0,
		},
	}
}

// Concat applies m in front of the CTM (cm operator)
func (s State) Concat(m model.Matrix) State {
	s.CTM = m.Multiply(s.CTM)
	return s
}

// ClipTo intersects the clip with a page-space rectangle
func (s State) ClipTo(r model.Rect) State {
	s.Clip, _ = s.Clip.Intersect(r)
	return s
}

// WithLineWidth sets the line width (w operator)
func (s State) WithLineWidth(w float64) State {
	s.LineWidth = w
	return s
}

// WithFill sets the fill paint
func (s State) WithFill(p Paint) State {
	s.Fill = p
	return s
}

// WithStroke sets the stroke paint
func (s State) WithStroke(p Paint) State {
	s.Stroke = p
	return s
}

// WithText replaces the text state
func (s State) WithText(t TextState) State {
	s.Text = t
	return s
}

// DeviceLineWidth is the line width in page units. A zero width is the
// thinnest line the device can draw, taken as 0.
func (s State) DeviceLineWidth() float64 {
	return s.LineWidth * s.CTM.ScaleFactor()
}

// FillColor is the fill paint with the fill alpha applied
func (s State) FillColor() color.NRGBA {
	c := s.Fill.RGBA
	c.A = uint8(float64(c.A) * clampUnit(s.FillAlpha))
	return c
}

// StrokeColor is the stroke paint with the stroke alpha applied
func (s State) StrokeColor() color.NRGBA {
	c := s.Stroke.RGBA
	c.A = uint8(float64(c.A) * clampUnit(s.StrokeAlpha))
	return c
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Stack holds saved snapshots for q and Q
type Stack struct {
	saved []State
}

// Push saves s (q operator)
func (st *Stack) Push(s State) {
	st.saved = append(st.saved, s)
}

// Pop returns the most recently saved state (Q operator)
func (st *Stack) Pop() (State, error) {
	if len(st.saved) == 0 {
		return State{}, ErrStackUnderflow
	}
	s := st.saved[len(st.saved)-1]
	st.saved = st.saved[:len(st.saved)-1]
	return s, nil
}

// Depth returns the number of saved states
func (st *Stack) Depth() int { return len(st.saved) }

// Truncate drops saved states above depth. Form XObjects use it to discard
// unbalanced q operators when they end.
func (st *Stack) Truncate(depth int) {
	if depth < len(st.saved) {
		st.saved = st.saved[:depth]
	}
}
