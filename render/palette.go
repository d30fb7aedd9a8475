package render

import (
	"context"
	"image"
	"image/color"

	"github.com/dimdasci/pdfs-api/model"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette is the fixed outline color per object type
var Palette = map[model.ObjectType]color.NRGBA{
	model.TypeText:  paletteColor("#ffd000"),
	model.TypeImage: paletteColor("#1f5fff"),
	model.TypePath:  paletteColor("#e000e0"),
	model.TypeOther: paletteColor("#00b050"),
}

func paletteColor(hex string) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// ColorOf returns the palette color of t
func ColorOf(t model.ObjectType) color.NRGBA {
	if c, ok := Palette[t]; ok {
		return c
	}
	return Palette[model.TypeOther]
}

// RenderOutline strokes every object's box in its type color over a
// transparent background. Objects are drawn layer by layer so that later
// layers sit on top.
func (r *Renderer) RenderOutline(ctx context.Context, box model.Rect, objects []model.Object, layers []model.Layer) (*image.RGBA, error) {
	d := r.device(box)
	dst := image.NewRGBA(image.Rectangle{Max: d.size})
	for _, l := range layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := ColorOf(l.Type)
		for _, i := range l.Objects {
			strokeRect(dst, d.bounds(objects[i].BBox), c)
		}
	}
	return dst, nil
}

func strokeRect(dst *image.RGBA, r image.Rectangle, c color.NRGBA) {
	r.Max.X = max(r.Max.X, r.Min.X+1)
	r.Max.Y = max(r.Max.Y, r.Min.Y+1)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), c)
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), c)
	fillRect(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), c)
}
