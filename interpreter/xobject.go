package interpreter

import (
	"fmt"
	"image/color"

	"github.com/dimdasci/pdfs-api/contentstream"
	"github.com/dimdasci/pdfs-api/core"
	"github.com/dimdasci/pdfs-api/graphicsstate"
	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/reader"
)

func (s *Sequence) do(f *frame, args []core.Object, group int) error {
	name, err := nameOperand(args)
	if err != nil {
		return err
	}
	raw, v, err := s.resource(f, "XObject", name)
	if err != nil {
		return err
	}
	stream, ok := v.(*core.Stream)
	if !ok {
		return fmt.Errorf("%w: XObject /%s is %s", errOperands, name, v.Type())
	}
	subtype, _ := stream.Dict.GetName("Subtype")
	switch subtype {
	case "Image":
		box, visible := clipBox(unitSquare.Transform(s.state.CTM), s.state.Clip)
		s.emit(PaintEvent{
			Kind:      DrawImage,
			Group:     group,
			Operator:  "Do",
			BBox:      box,
			State:     s.state,
			Clipped:   !visible,
			Matrix:    s.state.CTM,
			Name:      name,
			Image:     stream,
			Resources: f.resources,
		})
		return nil
	case "Form":
		ref, _ := raw.(core.IndirectRef)
		return s.pushForm(f, name, ref, stream)
	case "PS":
		return nil
	}
	return fmt.Errorf("XObject /%s has unsupported subtype /%s", name, subtype)
}

// pushForm starts interpreting a form XObject with a copy of the current
// state, its matrix applied and clipped to its BBox.
func (s *Sequence) pushForm(f *frame, name string, ref core.IndirectRef, stream *core.Stream) error {
	st := s.state
	if arr, ok := stream.Dict.Get("Matrix").(core.Array); ok {
		if v, ok := arr.Numbers(); ok && len(v) == 6 {
			st = st.Concat(matrixOf(v))
		}
	}
	if arr, ok := stream.Dict.Get("BBox").(core.Array); ok {
		if v, ok := arr.Numbers(); ok && len(v) == 4 {
			bbox := model.NewRect(v[0], v[1], v[2], v[3])
			st = st.ClipTo(bbox.Transform(st.CTM))
		}
	}
	if err := s.push(f, ref, stream, st); err != nil {
		return fmt.Errorf("form /%s: %w", name, err)
	}
	return nil
}

// push starts interpreting a nested content stream in state st. The
// caller's state and stack depth come back when the stream ends.
func (s *Sequence) push(f *frame, ref core.IndirectRef, stream *core.Stream, st graphicsstate.State) error {
	if err := s.guard.Enter(ref); err != nil {
		return err
	}
	data, err := stream.Decode()
	if err != nil {
		s.guard.Leave(ref)
		return err
	}
	resources := f.resources
	if res, ok := s.dictOf(stream.Dict.Get("Resources")); ok {
		resources = res
	}
	s.frames = append(s.frames, &frame{
		parser:    contentstream.NewParser(data),
		resources: resources,
		form:      true,
		ref:       ref,
		saved:     s.state,
		base:      s.stack.Depth(),
	})
	s.state = st
	return nil
}

// tiling is a tiling pattern to interpret over the path it fills
type tiling struct {
	name      string
	ref       core.IndirectRef
	stream    *core.Stream
	uncolored bool
}

// pattern resolves the pattern a fill paint names. A shading pattern gives
// the paint the shading's representative color; a tiling pattern is
// returned for its cell to be interpreted.
func (s *Sequence) pattern(f *frame, paint graphicsstate.Paint) (graphicsstate.Paint, *tiling, error) {
	name := paint.Pattern
	raw, v, err := s.resource(f, "Pattern", name)
	if err != nil {
		return paint, nil, err
	}
	dict, ok := s.dictOf(v)
	if !ok {
		return paint, nil, fmt.Errorf("%w: pattern /%s is %s", errOperands, name, v.Type())
	}
	switch t, _ := dict.GetInt("PatternType"); t {
	case 1:
		stream, ok := v.(*core.Stream)
		if !ok {
			return paint, nil, fmt.Errorf("%w: tiling pattern /%s is not a stream", errOperands, name)
		}
		ref, _ := raw.(core.IndirectRef)
		kind, _ := dict.GetInt("PaintType")
		return paint, &tiling{name: name, ref: ref, stream: stream, uncolored: kind == 2}, nil
	case 2:
		if sh, ok := s.dictOf(dict.Get("Shading")); ok {
			paint.RGBA = s.shadeColor(f, sh)
		}
		return paint, nil, nil
	default:
		return paint, nil, fmt.Errorf("%w: pattern /%s has type %d", errOperands, name, t)
	}
}

// pushPattern interprets one cell of a tiling pattern. The cell inherits
// the current state with the pattern matrix applied to the page's default
// space and is clipped to box, the area the pattern fills. Uncolored cells
// paint in the color given with the pattern name; colored cells start
// from black.
func (s *Sequence) pushPattern(f *frame, p *tiling, box model.Rect) error {
	st := s.state
	st.CTM = s.base
	if arr, ok := p.stream.Dict.Get("Matrix").(core.Array); ok {
		if v, ok := arr.Numbers(); ok && len(v) == 6 {
			st = st.Concat(matrixOf(v))
		}
	}
	st = st.ClipTo(box)
	paint := graphicsstate.Black()
	if p.uncolored {
		paint = s.state.Fill
		paint.Pattern = ""
	}
	st = st.WithFill(paint).WithStroke(paint)
	if err := s.push(f, p.ref, p.stream, st); err != nil {
		return fmt.Errorf("pattern /%s: %w", p.name, err)
	}
	return nil
}

func (s *Sequence) inlineImage(f *frame, op contentstream.Operation, group int) {
	dict, _ := op.Operands[0].(core.Dict)
	box, visible := clipBox(unitSquare.Transform(s.state.CTM), s.state.Clip)
	s.emit(PaintEvent{
		Kind:       InlineImage,
		Group:      group,
		Operator:   "BI",
		BBox:       box,
		State:      s.state,
		Clipped:    !visible,
		Matrix:     s.state.CTM,
		Inline:     reader.ExpandInlineImageDict(dict),
		InlineData: op.Data,
		Resources:  f.resources,
	})
}

// shade paints a shading over the current clip (sh operator)
func (s *Sequence) shade(f *frame, args []core.Object, group int) error {
	name, err := nameOperand(args)
	if err != nil {
		return err
	}
	_, v, err := s.resource(f, "Shading", name)
	if err != nil {
		return err
	}
	dict, ok := s.dictOf(v)
	if !ok {
		return fmt.Errorf("%w: shading /%s is %s", errOperands, name, v.Type())
	}
	box, visible := s.state.Clip, true
	if arr, ok := dict.Get("BBox").(core.Array); ok {
		if b, ok := arr.Numbers(); ok && len(b) == 4 {
			box, visible = clipBox(model.NewRect(b[0], b[1], b[2], b[3]).Transform(s.state.CTM), s.state.Clip)
		}
	}
	s.emit(PaintEvent{
		Kind:       Shade,
		Group:      group,
		Operator:   "sh",
		BBox:       box,
		State:      s.state,
		Clipped:    !visible,
		Name:       name,
		ShadeColor: s.shadeColor(f, dict),
	})
	return nil
}

// shadeColor picks one representative color for a shading: the midpoint
// of its exponential functions, or the space's initial color.
func (s *Sequence) shadeColor(f *frame, dict core.Dict) color.NRGBA {
	space, err := s.in.doc.ColorSpace(dict.Get("ColorSpace"), f.resources)
	if err != nil {
		space = reader.DeviceGray
	}
	comps := s.functionMidpoint(dict.Get("Function"), 0)
	if len(comps) < space.N {
		comps = space.Initial()
	}
	return space.RGBA(comps)
}

func (s *Sequence) functionMidpoint(obj core.Object, depth int) []float64 {
	v, err := s.in.doc.Resolve(obj)
	if err != nil || depth > 2 {
		return nil
	}
	if arr, ok := v.(core.Array); ok {
		var out []float64
		for _, fn := range arr {
			out = append(out, s.functionMidpoint(fn, depth+1)...)
		}
		return out
	}
	fn, ok := s.dictOf(v)
	if !ok {
		return nil
	}
	if t, _ := fn.GetInt("FunctionType"); t != 2 {
		return nil
	}
	c0, c1 := []float64{0}, []float64{1}
	if a, ok := fn.Get("C0").(core.Array); ok {
		if n, ok := a.Numbers(); ok {
			c0 = n
		}
	}
	if a, ok := fn.Get("C1").(core.Array); ok {
		if n, ok := a.Numbers(); ok {
			c1 = n
		}
	}
	out := make([]float64, min(len(c0), len(c1)))
	for i := range out {
		out[i] = (c0[i] + c1[i]) / 2
	}
	return out
}
