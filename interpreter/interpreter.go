package interpreter

import (
	"errors"
	"fmt"
	"io"

	"github.com/dimdasci/pdfs-api/contentstream"
	"github.com/dimdasci/pdfs-api/core"
	"github.com/dimdasci/pdfs-api/font"
	"github.com/dimdasci/pdfs-api/graphicsstate"
	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/pages"
	"github.com/dimdasci/pdfs-api/pdferr"
	"github.com/dimdasci/pdfs-api/reader"
	"github.com/dimdasci/pdfs-api/resolver"
)

// Document is what the interpreter needs from a loaded PDF.
// *reader.Document implements it.
type Document interface {
	Resolve(obj core.Object) (core.Object, error)
	ColorSpace(obj core.Object, resources core.Dict) (*reader.ColorSpace, error)
}

type options struct {
	maxDepth int
}

// Option configures an Interpreter
type Option func(*options)

// WithMaxDepth limits the nesting of form XObjects
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// Interpreter walks the content stream of one page. An Interpreter and
// the sequences it returns are used from one goroutine.
type Interpreter struct {
	doc  Document
	page *pages.Page
	opts options

	fonts map[core.IndirectRef]*font.Font
}

// New creates an interpreter for page
func New(doc Document, page *pages.Page, opts ...Option) *Interpreter {
	o := options{maxDepth: 32}
	for _, opt := range opts {
		opt(&o)
	}
	return &Interpreter{doc: doc, page: page, opts: o, fonts: map[core.IndirectRef]*font.Font{}}
}

// Events returns a lazy sequence of the page's paint events. Nothing is
// interpreted until Next is called.
func (in *Interpreter) Events() *Sequence {
	s := &Sequence{in: in}
	s.Reset()
	return s
}

// frame is one content stream being interpreted: the page or a form
type frame struct {
	parser    *contentstream.Parser
	resources core.Dict
	form      bool
	ref       core.IndirectRef
	// saved is the caller's state, restored when a form ends; base is the
	// caller's stack depth, below which Q may not pop.
	saved graphicsstate.State
	base  int
}

// Sequence yields paint events in paint order
type Sequence struct {
	in *Interpreter

	frames []*frame
	state  graphicsstate.State
	// base is the page's default CTM, which pattern matrices are relative to
	base   model.Matrix
	stack  graphicsstate.Stack
	text   graphicsstate.TextObject
	path   *graphicsstate.Path
	clip   bool
	compat int
	guard  *resolver.Guard

	group    int
	queue    []PaintEvent
	warnings []model.Warning
	err      error
	started  bool
	done     bool
}

// Reset rewinds the sequence to the first operator with a fresh state
func (s *Sequence) Reset() {
	in := s.in
	*s = Sequence{in: in, path: graphicsstate.NewPath(), guard: resolver.NewGuard(in.opts.maxDepth)}
}

// Next returns the next event. It returns false at the end of the page or
// after a page-level failure, which Err then reports.
func (s *Sequence) Next() (PaintEvent, bool) {
	for len(s.queue) == 0 {
		if s.done {
			return PaintEvent{}, false
		}
		s.step()
	}
	ev := s.queue[0]
	s.queue = s.queue[1:]
	return ev, true
}

// Err returns the error that stopped the sequence, a PageDecodeError
func (s *Sequence) Err() error { return s.err }

// Warnings returns the operator anomalies met so far
func (s *Sequence) Warnings() []model.Warning {
	return append([]model.Warning(nil), s.warnings...)
}

// Collect drains seq
func Collect(seq *Sequence) ([]PaintEvent, []model.Warning, error) {
	var events []PaintEvent
	for {
		ev, ok := seq.Next()
		if !ok {
			break
		}
		events = append(events, ev)
	}
	return events, seq.Warnings(), seq.Err()
}

func (s *Sequence) pageNumber() int { return s.in.page.Index + 1 }

func (s *Sequence) fail(err error) {
	s.err = pdferr.ForPage(pdferr.PageDecodeError, s.in.page.Index, err)
	s.done = true
	s.queue = nil
}

func (s *Sequence) warn(group int, operator string, err error) {
	s.warnings = append(s.warnings, model.Warning{
		Page:     s.pageNumber(),
		Op:       group,
		Operator: operator,
		Message:  err.Error(),
	})
}

func (s *Sequence) start() {
	s.started = true
	data, err := s.in.page.Contents()
	if err != nil {
		s.fail(err)
		return
	}
	s.state = graphicsstate.New(s.in.page.CropBox)
	s.base = s.state.CTM
	s.frames = []*frame{{
		parser:    contentstream.NewParser(data),
		resources: s.in.page.Resources,
	}}
}

func (s *Sequence) step() {
	if !s.started {
		s.start()
		return
	}
	if len(s.frames) == 0 {
		s.done = true
		return
	}
	f := s.frames[len(s.frames)-1]
	op, err := f.parser.Next()
	var syn *contentstream.SyntaxError
	switch {
	case err == io.EOF:
		s.popFrame()
		return
	case errors.As(err, &syn):
		s.warn(s.group, "", syn)
		return
	case err != nil:
		s.fail(err)
		return
	}

	group := s.group
	s.group++
	if err := s.exec(f, op, group); err != nil {
		if errors.Is(err, errUnknown) && s.compat > 0 {
			return
		}
		s.warn(group, op.Operator, err)
	}
}

func (s *Sequence) popFrame() {
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	if f.form {
		s.stack.Truncate(f.base)
		s.state = f.saved
		s.guard.Leave(f.ref)
	}
	if len(s.frames) == 0 {
		s.done = true
	}
}

func (s *Sequence) emit(ev PaintEvent) {
	s.queue = append(s.queue, ev)
}

func (s *Sequence) exec(f *frame, op contentstream.Operation, group int) error {
	args := op.Operands
	switch op.Operator {
	case "q":
		s.stack.Push(s.state)
	case "Q":
		if s.stack.Depth() <= f.base {
			return graphicsstate.ErrStackUnderflow
		}
		st, err := s.stack.Pop()
		if err != nil {
			return err
		}
		s.state = st
	case "cm":
		v, err := numbers(args, 6)
		if err != nil {
			return err
		}
		s.state = s.state.Concat(matrixOf(v))
	case "w":
		v, err := numbers(args, 1)
		if err != nil {
			return err
		}
		s.state = s.state.WithLineWidth(v[0])
	case "J", "j", "M", "i", "ri", "d":
		// line style and rendering intent do not change geometry
	case "gs":
		return s.extGState(f, args)

	case "g", "G", "rg", "RG", "k", "K", "cs", "CS", "sc", "SC", "scn", "SCN":
		return s.color(f, op.Operator, args)

	case "m", "l", "c", "v", "y", "h", "re":
		return s.construct(op.Operator, args)
	case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*", "n":
		return s.paintPath(f, op.Operator, group)
	case "W", "W*":
		s.clip = true

	case "BT", "ET", "Tc", "Tw", "Tz", "TL", "Tf", "Tr", "Ts", "Td", "TD", "Tm", "T*", "Tj", "TJ", "'", "\"":
		return s.textOp(f, op.Operator, args, group)

	case "Do":
		return s.do(f, args, group)
	case "BI":
		s.inlineImage(f, op, group)
	case "sh":
		return s.shade(f, args, group)

	case "BMC", "BDC", "EMC", "MP", "DP", "d0", "d1":
		// marked content and Type3 glyph metrics
	case "BX":
		s.compat++
	case "EX":
		if s.compat > 0 {
			s.compat--
		}
	default:
		return fmt.Errorf("%w %q", errUnknown, op.Operator)
	}
	return nil
}

// resource looks up name in a resource category of the current frame and
// returns the raw entry (possibly a reference) and its resolved value.
func (s *Sequence) resource(f *frame, category, name string) (core.Object, core.Object, error) {
	cat, err := s.in.doc.Resolve(f.resources.Get(category))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", category, err)
	}
	dict, ok := cat.(core.Dict)
	if !ok || dict.Get(name) == nil {
		return nil, nil, fmt.Errorf("%w: /%s /%s", errResource, category, name)
	}
	raw := dict.Get(name)
	v, err := s.in.doc.Resolve(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("/%s /%s: %w", category, name, err)
	}
	if _, null := v.(core.Null); null || v == nil {
		return nil, nil, fmt.Errorf("%w: /%s /%s", errResource, category, name)
	}
	return raw, v, nil
}

func (s *Sequence) dictOf(obj core.Object) (core.Dict, bool) {
	v, err := s.in.doc.Resolve(obj)
	if err != nil {
		return nil, false
	}
	switch d := v.(type) {
	case core.Dict:
		return d, true
	case *core.Stream:
		return d.Dict, true
	}
	return nil, false
}

func (s *Sequence) numberOf(obj core.Object) (float64, bool) {
	v, err := s.in.doc.Resolve(obj)
	if err != nil {
		return 0, false
	}
	return core.Number(v)
}

func (s *Sequence) extGState(f *frame, args []core.Object) error {
	name, err := nameOperand(args)
	if err != nil {
		return err
	}
	_, v, err := s.resource(f, "ExtGState", name)
	if err != nil {
		return err
	}
	gs, ok := v.(core.Dict)
	if !ok {
		return fmt.Errorf("%w: ExtGState /%s is %s", errOperands, name, v.Type())
	}
	st := s.state
	if lw, ok := s.numberOf(gs.Get("LW")); ok {
		st.LineWidth = lw
	}
	if a, ok := s.numberOf(gs.Get("CA")); ok {
		st.StrokeAlpha = a
	}
	if a, ok := s.numberOf(gs.Get("ca")); ok {
		st.FillAlpha = a
	}
	s.state = st
	if arr, ok := gs.Get("Font").(core.Array); ok && len(arr) == 2 {
		if size, ok := core.Number(arr[1]); ok {
			ft, err := s.loadFont(arr[0])
			ts := s.state.Text
			ts.Font, ts.FontSize = ft, size
			s.state = s.state.WithText(ts)
			return err
		}
	}
	return nil
}

func (s *Sequence) color(f *frame, operator string, args []core.Object) error {
	stroke := operator == "G" || operator == "RG" || operator == "K" || operator == "CS" ||
		operator == "SC" || operator == "SCN"
	var paint graphicsstate.Paint
	switch operator {
	case "g", "G", "rg", "RG", "k", "K":
		space := map[string]*reader.ColorSpace{
			"g": reader.DeviceGray, "G": reader.DeviceGray,
			"rg": reader.DeviceRGB, "RG": reader.DeviceRGB,
			"k": reader.DeviceCMYK, "K": reader.DeviceCMYK,
		}[operator]
		v, err := numbers(args, space.N)
		if err != nil {
			return err
		}
		paint = graphicsstate.NewPaint(space, v)
	case "cs", "CS":
		name, err := nameOperand(args)
		if err != nil {
			return err
		}
		space, err := s.in.doc.ColorSpace(core.Name(name), f.resources)
		if err != nil {
			return err
		}
		paint = graphicsstate.NewPaint(space, space.Initial())
	default:
		current := s.state.Fill
		if stroke {
			current = s.state.Stroke
		}
		space := current.Space
		comps := args
		var pattern string
		if n, ok := lastName(args); ok {
			pattern = n
			comps = args[:len(args)-1]
		}
		v, err := allNumbers(comps)
		if err != nil {
			return err
		}
		if pattern == "" && len(v) < space.N {
			return fmt.Errorf("%w: %s space takes %d components, got %d", errOperands, space.Family, space.N, len(v))
		}
		paint = graphicsstate.NewPaint(space, v)
		paint.Pattern = pattern
	}
	if stroke {
		s.state = s.state.WithStroke(paint)
	} else {
		s.state = s.state.WithFill(paint)
	}
	return nil
}

func lastName(args []core.Object) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	n, ok := args[len(args)-1].(core.Name)
	return string(n), ok
}

func (s *Sequence) pt(x, y float64) model.Point {
	return s.state.CTM.Transform(model.Point{X: x, Y: y})
}

func (s *Sequence) construct(operator string, args []core.Object) error {
	want := map[string]int{"m": 2, "l": 2, "c": 6, "v": 4, "y": 4, "h": 0, "re": 4}[operator]
	v, err := numbers(args, want)
	if err != nil {
		return err
	}
	p := s.path
	switch operator {
	case "m":
		p.MoveTo(s.pt(v[0], v[1]))
	case "l":
		p.LineTo(s.pt(v[0], v[1]))
	case "c":
		p.CurveTo(s.pt(v[0], v[1]), s.pt(v[2], v[3]), s.pt(v[4], v[5]))
	case "v":
		p.CurveToV(s.pt(v[0], v[1]), s.pt(v[2], v[3]))
	case "y":
		p.CurveToY(s.pt(v[0], v[1]), s.pt(v[2], v[3]))
	case "h":
		p.ClosePath()
	case "re":
		p.Rectangle(s.state.CTM, v[0], v[1], v[2], v[3])
	}
	return nil
}

func (s *Sequence) paintPath(f *frame, operator string, group int) error {
	path := s.path
	s.path = graphicsstate.NewPath()
	if path.IsEmpty() {
		s.clip = false
		return nil
	}
	switch operator {
	case "s", "b", "b*":
		path.ClosePath()
	}
	fill := operator != "S" && operator != "s" && operator != "n"
	stroke := operator == "S" || operator == "s" || operator == "B" || operator == "B*" || operator == "b" || operator == "b*"

	var cell *tiling
	var err error
	var box model.Rect
	visible := false
	if fill || stroke {
		st := s.state
		if fill && st.Fill.Pattern != "" {
			var paint graphicsstate.Paint
			paint, cell, err = s.pattern(f, st.Fill)
			st = st.WithFill(paint)
		}
		box = path.Bounds()
		if stroke {
			box = box.Expand(s.state.DeviceLineWidth() / 2)
		}
		box, visible = clipBox(box, s.state.Clip)
		s.emit(PaintEvent{
			Kind:     PaintPath,
			Group:    group,
			Operator: operator,
			BBox:     box,
			State:    st,
			Clipped:  !visible,
			Path:     path,
			Fill:     fill,
			Stroke:   stroke,
			EvenOdd:  operator == "f*" || operator == "B*" || operator == "b*",
		})
	}
	if s.clip {
		s.state = s.state.ClipTo(path.Bounds())
		s.clip = false
	}
	if err != nil {
		return err
	}
	if cell != nil && visible {
		return s.pushPattern(f, cell, box)
	}
	return nil
}
