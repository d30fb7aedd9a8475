package interpreter

import (
	"errors"
	"fmt"

	"github.com/dimdasci/pdfs-api/core"
	"github.com/dimdasci/pdfs-api/font"
	"github.com/dimdasci/pdfs-api/graphicsstate"
	"github.com/dimdasci/pdfs-api/model"
)

var errNoText = errors.New("text operator outside BT/ET")

func (s *Sequence) textOp(f *frame, operator string, args []core.Object, group int) error {
	ts := s.state.Text
	set := func(fn func(v float64)) error {
		v, err := numbers(args, 1)
		if err != nil {
			return err
		}
		fn(v[0])
		s.state = s.state.WithText(ts)
		return nil
	}

	switch operator {
	case "BT":
		s.text.Begin()
		return nil
	case "ET":
		s.text.End()
		return nil
	case "Tc":
		return set(func(v float64) { ts.CharSpacing = v })
	case "Tw":
		return set(func(v float64) { ts.WordSpacing = v })
	case "Tz":
		return set(func(v float64) { ts.HorizontalScaling = v })
	case "TL":
		return set(func(v float64) { ts.Leading = v })
	case "Ts":
		return set(func(v float64) { ts.Rise = v })
	case "Tr":
		return set(func(v float64) { ts.RenderingMode = int(v) })
	case "Tf":
		if len(args) < 2 {
			return fmt.Errorf("%w: Tf wants a name and a size", errOperands)
		}
		name, err := nameOperand(args[:len(args)-1])
		if err != nil {
			return err
		}
		size, err := numbers(args, 1)
		if err != nil {
			return err
		}
		ts.FontName, ts.FontSize = name, size[0]
		ft, ferr := s.fontResource(f, name)
		ts.Font = ft
		s.state = s.state.WithText(ts)
		return ferr
	}

	if !s.text.Open {
		return errNoText
	}
	switch operator {
	case "Td", "TD":
		v, err := numbers(args, 2)
		if err != nil {
			return err
		}
		if operator == "TD" {
			ts.Leading = -v[1]
			s.state = s.state.WithText(ts)
		}
		s.text.Translate(v[0], v[1])
	case "Tm":
		v, err := numbers(args, 6)
		if err != nil {
			return err
		}
		s.text.SetMatrix(matrixOf(v))
	case "T*":
		s.text.NextLine(ts)
	case "Tj":
		str, err := stringOperand(args)
		if err != nil {
			return err
		}
		s.show(str, operator, group)
	case "'":
		str, err := stringOperand(args)
		if err != nil {
			return err
		}
		s.text.NextLine(ts)
		s.show(str, operator, group)
	case "\"":
		if len(args) < 3 {
			return fmt.Errorf("%w: \" wants two numbers and a string", errOperands)
		}
		v, err := numbers(args[:len(args)-1], 2)
		if err != nil {
			return err
		}
		str, err := stringOperand(args)
		if err != nil {
			return err
		}
		ts.WordSpacing, ts.CharSpacing = v[0], v[1]
		s.state = s.state.WithText(ts)
		s.text.NextLine(ts)
		s.show(str, operator, group)
	case "TJ":
		if len(args) == 0 {
			return fmt.Errorf("%w: TJ wants an array", errOperands)
		}
		arr, ok := args[len(args)-1].(core.Array)
		if !ok {
			return fmt.Errorf("%w: TJ wants an array, got %s", errOperands, args[len(args)-1].Type())
		}
		ft := s.font()
		for _, el := range arr {
			switch v := el.(type) {
			case core.String:
				s.show([]byte(v), operator, group)
			default:
				if n, ok := core.Number(v); ok {
					s.text.Advance(graphicsstate.Kern(ft, n, s.state.Text))
				}
			}
		}
	}
	return nil
}

func (s *Sequence) font() *font.Font {
	if s.state.Text.Font != nil {
		return s.state.Text.Font
	}
	return font.Default()
}

// show emits one ShowText event per glyph and advances the text matrix
func (s *Sequence) show(str []byte, operator string, group int) {
	ft := s.font()
	ts := s.state.Text
	mode := ts.RenderingMode
	for _, g := range ft.Glyphs(str) {
		quad := s.text.GlyphQuad(ft, g, ts, s.state.CTM)
		box, visible := clipBox(model.RectFromPoints(quad[:]...), s.state.Clip)
		s.emit(PaintEvent{
			Kind:      ShowText,
			Group:     group,
			Operator:  operator,
			BBox:      box,
			State:     s.state,
			Clipped:   !visible,
			Text:      g.Text,
			Quad:      quad,
			Invisible: mode == 3 || mode == 7,
		})
		s.text.Advance(graphicsstate.GlyphAdvance(ft, g, ts))
	}
}

// fontResource loads the font named in the current frame's resources. When
// it cannot be loaded the default font is returned with the error.
func (s *Sequence) fontResource(f *frame, name string) (*font.Font, error) {
	raw, _, err := s.resource(f, "Font", name)
	if err != nil {
		return font.Default(), err
	}
	return s.loadFont(raw)
}

func (s *Sequence) loadFont(raw core.Object) (*font.Font, error) {
	ref, isRef := raw.(core.IndirectRef)
	if isRef {
		if ft, ok := s.in.fonts[ref]; ok {
			return ft, nil
		}
	}
	dict, ok := s.dictOf(raw)
	if !ok {
		return font.Default(), fmt.Errorf("%w: font is not a dictionary", errResource)
	}
	ft, err := font.Load(dict, s.in.doc)
	if err != nil {
		return font.Default(), err
	}
	if isRef {
		s.in.fonts[ref] = ft
	}
	return ft, nil
}
