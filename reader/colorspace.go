package reader

import (
	"fmt"
	"image/color"
	"math"

	"github.com/dimdasci/pdfs-api/core"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorSpace converts color components to device RGB.
type ColorSpace struct {
	Family string
	N      int

	base   *ColorSpace
	hival  int
	lookup []byte

	// Separation and DeviceN tint transforms, when they are exponential
	// functions; other function types fall back to a gray ramp.
	c0, c1 []float64
	exp    float64
}

var (
	DeviceGray = &ColorSpace{Family: "DeviceGray", N: 1}
	DeviceRGB  = &ColorSpace{Family: "DeviceRGB", N: 3}
	DeviceCMYK = &ColorSpace{Family: "DeviceCMYK", N: 4}
)

const maxColorSpaceDepth = 8

// ColorSpace resolves a color space operand or dictionary entry. Names other
// than the device families are looked up in the resources' /ColorSpace.
func (d *Document) ColorSpace(obj core.Object, resources core.Dict) (*ColorSpace, error) {
	return d.colorSpace(obj, resources, 0)
}

func (d *Document) colorSpace(obj core.Object, resources core.Dict, depth int) (*ColorSpace, error) {
	if depth > maxColorSpaceDepth {
		return nil, fmt.Errorf("color space nesting exceeds %d", maxColorSpaceDepth)
	}
	obj, err := d.resolver.Resolve(obj)
	if err != nil {
		return nil, err
	}

	switch v := obj.(type) {
	case core.Name:
		switch v {
		case "DeviceGray", "G", "CalGray":
			return DeviceGray, nil
		case "DeviceRGB", "RGB", "CalRGB":
			return DeviceRGB, nil
		case "DeviceCMYK", "CMYK":
			return DeviceCMYK, nil
		case "Pattern":
			return &ColorSpace{Family: "Pattern"}, nil
		}
		named, ok, err := d.resolver.Dict(resources.Get("ColorSpace"))
		if err != nil || !ok || !named.Has(string(v)) {
			return nil, fmt.Errorf("color space /%s not found", v)
		}
		return d.colorSpace(named.Get(string(v)), resources, depth+1)
	case core.Array:
		return d.colorSpaceArray(v, resources, depth)
	case nil, core.Null:
		return nil, fmt.Errorf("missing color space")
	}
	return nil, fmt.Errorf("color space is %s", obj.Type())
}

func (d *Document) colorSpaceArray(arr core.Array, resources core.Dict, depth int) (*ColorSpace, error) {
	family, ok := arr.GetName(0)
	if !ok {
		return nil, fmt.Errorf("color space array without family")
	}
	switch family {
	case "DeviceGray", "CalGray", "G":
		return DeviceGray, nil
	case "DeviceRGB", "CalRGB", "RGB":
		return DeviceRGB, nil
	case "DeviceCMYK", "CMYK":
		return DeviceCMYK, nil
	case "Lab":
		return &ColorSpace{Family: "Lab", N: 3}, nil
	case "ICCBased":
		s, err := d.resolver.Resolve(arr.Get(1))
		if err != nil {
			return nil, err
		}
		stream, ok := s.(*core.Stream)
		if !ok {
			return nil, fmt.Errorf("ICCBased without profile stream")
		}
		if alt := stream.Dict.Get("Alternate"); alt != nil {
			if cs, err := d.colorSpace(alt, resources, depth+1); err == nil {
				return cs, nil
			}
		}
		n, _ := stream.Dict.GetInt("N")
		switch n {
		case 1:
			return DeviceGray, nil
		case 4:
			return DeviceCMYK, nil
		default:
			return DeviceRGB, nil
		}
	case "Indexed", "I":
		if len(arr) < 4 {
			return nil, fmt.Errorf("indexed color space needs 4 entries")
		}
		base, err := d.colorSpace(arr.Get(1), resources, depth+1)
		if err != nil {
			return nil, err
		}
		hival, _ := d.resolver.Number(arr.Get(2))
		lookup, err := d.lookupTable(arr.Get(3))
		if err != nil {
			return nil, err
		}
		return &ColorSpace{Family: "Indexed", N: 1, base: base, hival: int(hival), lookup: lookup}, nil
	case "Pattern":
		cs := &ColorSpace{Family: "Pattern"}
		if len(arr) > 1 {
			if base, err := d.colorSpace(arr.Get(1), resources, depth+1); err == nil {
				cs.base = base
				cs.N = base.N
			}
		}
		return cs, nil
	case "Separation", "DeviceN":
		return d.tintSpace(family, arr, resources, depth)
	}
	return nil, fmt.Errorf("unsupported color space /%s", family)
}

func (d *Document) tintSpace(family core.Name, arr core.Array, resources core.Dict, depth int) (*ColorSpace, error) {
	if len(arr) < 4 {
		return nil, fmt.Errorf("/%s needs 4 entries", family)
	}
	cs := &ColorSpace{Family: string(family), N: 1}
	if family == "DeviceN" {
		names, _, _ := d.resolver.Array(arr.Get(1))
		cs.N = max(len(names), 1)
	}
	if alt, err := d.colorSpace(arr.Get(2), resources, depth+1); err == nil {
		cs.base = alt
	}

	fn, err := d.resolver.Resolve(arr.Get(3))
	if err != nil {
		return cs, nil
	}
	var fd core.Dict
	switch f := fn.(type) {
	case core.Dict:
		fd = f
	case *core.Stream:
		fd = f.Dict
	}
	if t, _ := fd.GetInt("FunctionType"); t == 2 && cs.base != nil {
		cs.c0 = numbersOr(d, fd.Get("C0"), []float64{0})
		cs.c1 = numbersOr(d, fd.Get("C1"), []float64{1})
		cs.exp, _ = fd.GetNumber("N")
	}
	return cs, nil
}

func numbersOr(d *Document, obj core.Object, fallback []float64) []float64 {
	arr, ok, _ := d.resolver.Array(obj)
	if !ok {
		return fallback
	}
	nums, ok := arr.Numbers()
	if !ok {
		return fallback
	}
	return nums
}

func (d *Document) lookupTable(obj core.Object) ([]byte, error) {
	obj, err := d.resolver.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch v := obj.(type) {
	case core.String:
		return []byte(v), nil
	case *core.Stream:
		return v.Decode()
	}
	return nil, fmt.Errorf("indexed lookup is %s", obj.Type())
}

// Components returns the operand count of sc/scn for this space
func (cs *ColorSpace) Components() int { return cs.N }

// Initial returns the color a space starts with after cs/CS.
func (cs *ColorSpace) Initial() []float64 {
	switch cs.Family {
	case "DeviceCMYK":
		return []float64{0, 0, 0, 1}
	case "Separation", "DeviceN":
		out := make([]float64, cs.N)
		for i := range out {
			out[i] = 1
		}
		return out
	}
	return make([]float64, cs.N)
}

// DecodeDefault is the default /Decode range of component i at bpc.
func (cs *ColorSpace) DecodeDefault(i, bpc int) (float64, float64) {
	switch {
	case cs.Family == "Indexed":
		return 0, float64(int(1)<<bpc - 1)
	case cs.Family == "Lab" && i == 0:
		return 0, 100
	case cs.Family == "Lab":
		return -100, 100
	}
	return 0, 1
}

// RGBA converts components to an opaque color.
func (cs *ColorSpace) RGBA(c []float64) color.NRGBA {
	at := func(i int) float64 {
		if i < len(c) {
			return c[i]
		}
		return 0
	}
	switch cs.Family {
	case "DeviceGray":
		g := unit(at(0))
		return opaque(g, g, g)
	case "DeviceRGB":
		return opaque(unit(at(0)), unit(at(1)), unit(at(2)))
	case "DeviceCMYK":
		r, g, b := color.CMYKToRGB(unit(at(0)), unit(at(1)), unit(at(2)), unit(at(3)))
		return opaque(r, g, b)
	case "Lab":
		col := colorful.Lab(at(0)/100, at(1)/100, at(2)/100).Clamped()
		r, g, b := col.RGB255()
		return opaque(r, g, b)
	case "Indexed":
		return cs.indexed(int(math.Round(at(0))))
	case "Separation", "DeviceN":
		if cs.c0 != nil {
			t := at(0)
			if cs.N > 1 {
				for i := 1; i < cs.N; i++ {
					t = math.Max(t, at(i))
				}
			}
			out := make([]float64, len(cs.c0))
			for i := range out {
				hi := 1.0
				if i < len(cs.c1) {
					hi = cs.c1[i]
				}
				out[i] = cs.c0[i] + math.Pow(t, cs.exp)*(hi-cs.c0[i])
			}
			return cs.base.RGBA(out)
		}
		var t float64
		for i := 0; i < cs.N; i++ {
			t = math.Max(t, at(i))
		}
		g := unit(1 - t)
		return opaque(g, g, g)
	case "Pattern":
		if cs.base != nil && cs.N > 0 && len(c) >= cs.N {
			return cs.base.RGBA(c)
		}
		return opaque(128, 128, 128)
	}
	return opaque(0, 0, 0)
}

func (cs *ColorSpace) indexed(i int) color.NRGBA {
	if cs.base == nil {
		return opaque(0, 0, 0)
	}
	i = max(0, min(i, cs.hival))
	n := cs.base.N
	off := i * n
	if off+n > len(cs.lookup) {
		return opaque(0, 0, 0)
	}
	comps := make([]float64, n)
	for k := 0; k < n; k++ {
		comps[k] = float64(cs.lookup[off+k]) / 255
	}
	if cs.base.Family == "Lab" {
		lo := []float64{0, -100, -100}
		span := []float64{100, 200, 200}
		for k := range comps {
			comps[k] = lo[k] + comps[k]*span[k]
		}
	}
	return cs.base.RGBA(comps)
}

func unit(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func opaque(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
