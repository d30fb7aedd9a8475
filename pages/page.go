package pages

import (
	"bytes"
	"fmt"

	"github.com/dimdasci/pdfs-api/core"
	"github.com/dimdasci/pdfs-api/model"
)

// US Letter, used when no MediaBox is found anywhere up the tree
var defaultMediaBox = model.Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}

// Page is one leaf of the page tree with its inherited attributes resolved
type Page struct {
	Index int
	Ref   core.IndirectRef
	Dict  core.Dict

	MediaBox model.Rect
	CropBox  model.Rect
	BleedBox model.Rect
	TrimBox  model.Rect
	ArtBox   model.Rect

	// Rotate is normalized to 0, 90, 180 or 270.
	Rotate    int
	Resources core.Dict
	UserUnit  float64

	resolver ObjectResolver
}

func newPage(index int, ref core.IndirectRef, dict core.Dict, in inherited, r ObjectResolver) *Page {
	p := &Page{Index: index, Ref: ref, Dict: dict, UserUnit: 1, resolver: r}

	p.MediaBox = boxOf(r, in.mediaBox, defaultMediaBox)
	crop := boxOf(r, in.cropBox, p.MediaBox)
	if c, ok := crop.Intersect(p.MediaBox); ok && c.Area() > 0 {
		crop = c
	} else {
		crop = p.MediaBox
	}
	p.CropBox = crop
	p.BleedBox = boxOf(r, dict.Get("BleedBox"), crop)
	p.TrimBox = boxOf(r, dict.Get("TrimBox"), crop)
	p.ArtBox = boxOf(r, dict.Get("ArtBox"), crop)

	if v, ok := numberOf(r, in.rotate); ok {
		rot := int(v) % 360
		if rot < 0 {
			rot += 360
		}
		p.Rotate = rot / 90 * 90
	}
	if res, err := dictOf(r, in.resources); err == nil && res != nil {
		p.Resources = res
	} else {
		p.Resources = core.Dict{}
	}
	if u, ok := numberOf(r, dict.Get("UserUnit")); ok && u > 0 {
		p.UserUnit = u
	}
	return p
}

func boxOf(r ObjectResolver, obj core.Object, fallback model.Rect) model.Rect {
	arr, err := arrayOf(r, obj)
	if err != nil || len(arr) != 4 {
		return fallback
	}
	v := make([]float64, 4)
	for i, o := range arr {
		n, ok := numberOf(r, o)
		if !ok {
			return fallback
		}
		v[i] = n
	}
	box := model.NewRect(v[0], v[1], v[2], v[3])
	if box.Area() <= 0 {
		return fallback
	}
	return box
}

func numberOf(r ObjectResolver, obj core.Object) (float64, bool) {
	if obj == nil {
		return 0, false
	}
	v, err := r.Resolve(obj)
	if err != nil {
		return 0, false
	}
	return core.Number(v)
}

// Width returns the crop box width in points
func (p *Page) Width() float64 { return p.CropBox.Width() }

// Height returns the crop box height in points
func (p *Page) Height() float64 { return p.CropBox.Height() }

// Contents decodes and concatenates the page's content streams. Streams
// are joined with a newline so that tokens never fuse across boundaries.
func (p *Page) Contents() ([]byte, error) {
	obj, err := p.resolver.Resolve(p.Dict.Get("Contents"))
	if err != nil {
		return nil, fmt.Errorf("page contents: %w", err)
	}
	var parts []core.Object
	switch v := obj.(type) {
	case nil, core.Null:
		return nil, nil
	case *core.Stream:
		parts = []core.Object{v}
	case core.Array:
		parts = v
	default:
		return nil, fmt.Errorf("page contents is %s", obj.Type())
	}

	var buf bytes.Buffer
	for i, part := range parts {
		resolved, err := p.resolver.Resolve(part)
		if err != nil {
			return nil, fmt.Errorf("content stream %d: %w", i, err)
		}
		s, ok := resolved.(*core.Stream)
		if !ok {
			continue
		}
		data, err := s.Decode()
		if err != nil {
			return nil, fmt.Errorf("content stream %d: %w", i, err)
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}
