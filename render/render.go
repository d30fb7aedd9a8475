// Package render rasterizes classified page objects.
//
// The device maps the page's crop box to an image of Scale pixels per
// point, with y pointing down. A full raster has a white background; an
// overlay has a transparent one and only the selected objects, so overlays
// stacked over an empty page in layer order give back the full raster.
//
// Rendering is approximate. Paths are filled with the nonzero rule and
// stroked as one quad per segment; text is drawn with a bitmap face scaled
// into each glyph box.
package render

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/dimdasci/pdfs-api/core"
	"github.com/dimdasci/pdfs-api/interpreter"
	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/reader"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"
)

// Images decodes the image objects of a document
type Images interface {
	LoadImage(s *core.Stream, resources core.Dict) (*reader.Image, error)
	LoadInlineImage(dict core.Dict, data []byte, resources core.Dict) (*reader.Image, error)
}

// Renderer draws objects of one document
type Renderer struct {
	Scale  float64
	images Images
}

// Option configures a Renderer
type Option func(*Renderer)

// WithScale sets pixels per point. 1.0 is 72 dpi.
func WithScale(scale float64) Option {
	return func(r *Renderer) {
		if scale > 0 {
			r.Scale = scale
		}
	}
}

// New returns a renderer. images may be nil, in which case image objects
// are drawn as gray boxes.
func New(images Images, opts ...Option) *Renderer {
	r := &Renderer{Scale: 1, images: images}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// device maps page space to pixel space
type device struct {
	box   model.Rect
	scale float64
	size  image.Point
}

func (r *Renderer) device(box model.Rect) device {
	return device{
		box:   box,
		scale: r.Scale,
		size: image.Pt(
			max(1, int(math.Ceil(box.Width()*r.Scale))),
			max(1, int(math.Ceil(box.Height()*r.Scale))),
		),
	}
}

func (d device) point(p model.Point) (float32, float32) {
	return float32((p.X - d.box.X0) * d.scale), float32((d.box.Y1 - p.Y) * d.scale)
}

// bounds returns the pixel rectangle covering a page-space rect
func (d device) bounds(r model.Rect) image.Rectangle {
	x0, y1 := d.point(model.Point{X: r.X0, Y: r.Y0})
	x1, y0 := d.point(model.Point{X: r.X1, Y: r.Y1})
	return image.Rect(
		int(math.Floor(float64(x0))), int(math.Floor(float64(y0))),
		int(math.Ceil(float64(x1))), int(math.Ceil(float64(y1))),
	)
}

// rect is bounds clipped to the device
func (d device) rect(r model.Rect) image.Rectangle {
	return d.bounds(r).Intersect(image.Rectangle{Max: d.size})
}

// imageTransform maps image pixel space (y down) through the unit square
// and m to pixel space.
func (d device) imageTransform(m model.Matrix, w, h int) f64.Aff3 {
	s := d.scale
	fw, fh := float64(w), float64(h)
	a, b, c, dd, e, f := m[0], m[1], m[2], m[3], m[4], m[5]
	return f64.Aff3{
		s * a / fw, -s * c / fh, s * (c + e - d.box.X0),
		-s * b / fw, s * dd / fh, s * (d.box.Y1 - dd - f),
	}
}

// RenderPage draws every object over a white background
func (r *Renderer) RenderPage(ctx context.Context, box model.Rect, objects []model.Object) (*image.RGBA, error) {
	d := r.device(box)
	dst := image.NewRGBA(image.Rectangle{Max: d.size})
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	return dst, r.drawObjects(ctx, d, dst, objects, nil)
}

// RenderOverlay draws the objects selected by pred over a transparent
// background. A nil pred selects everything.
func (r *Renderer) RenderOverlay(ctx context.Context, box model.Rect, objects []model.Object, pred Predicate) (*image.RGBA, error) {
	d := r.device(box)
	dst := image.NewRGBA(image.Rectangle{Max: d.size})
	return dst, r.drawObjects(ctx, d, dst, objects, pred)
}

func (r *Renderer) drawObjects(ctx context.Context, d device, dst *image.RGBA, objects []model.Object, pred Predicate) error {
	glyphs := glyphCache{}
	for i, obj := range objects {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if pred != nil && !pred(i, obj) {
			continue
		}
		for _, sh := range obj.Shapes {
			ev, ok := sh.(interpreter.PaintEvent)
			if !ok {
				continue
			}
			r.drawEvent(d, dst, ev, glyphs)
		}
	}
	return nil
}

func (r *Renderer) drawEvent(d device, dst *image.RGBA, ev interpreter.PaintEvent, glyphs glyphCache) {
	clip := d.rect(ev.State.Clip)
	if clip.Empty() {
		return
	}
	switch ev.Kind {
	case interpreter.PaintPath:
		if ev.Path == nil {
			return
		}
		tol := 0.25 / d.scale
		subpaths := ev.Path.Subpaths(tol)
		if ev.Fill {
			fillPolygons(d, dst, clip, subpaths, ev.State.FillColor())
		}
		if ev.Stroke {
			width := max(ev.State.DeviceLineWidth()*d.scale, 1)
			strokePolylines(d, dst, clip, subpaths, width, ev.State.StrokeColor())
		}
	case interpreter.Shade:
		fillRect(dst, d.rect(ev.BBox), ev.ShadeColor)
	case interpreter.DrawImage, interpreter.InlineImage:
		r.drawImage(d, dst, clip, ev)
	case interpreter.ShowText:
		if ev.Invisible || ev.Text == "" {
			return
		}
		drawGlyph(d, dst, clip, ev, glyphs)
	}
}

func (r *Renderer) drawImage(d device, dst *image.RGBA, clip image.Rectangle, ev interpreter.PaintEvent) {
	var img *reader.Image
	var err error
	switch {
	case r.images == nil:
	case ev.Kind == interpreter.DrawImage && ev.Image != nil:
		img, err = r.images.LoadImage(ev.Image, ev.Resources)
	case ev.Kind == interpreter.InlineImage:
		img, err = r.images.LoadInlineImage(ev.Inline, ev.InlineData, ev.Resources)
	}
	if img == nil || err != nil || img.Width == 0 || img.Height == 0 {
		fillRect(dst, d.rect(ev.BBox).Intersect(clip), placeholder)
		return
	}
	src := img.Img
	if img.Stencil {
		if mask, ok := img.Img.(*image.Alpha); ok {
			src = tint(mask, ev.State.FillColor())
		}
	}
	sub := dst.SubImage(clip).(*image.RGBA)
	draw.BiLinear.Transform(sub, d.imageTransform(ev.Matrix, img.Width, img.Height), src, src.Bounds(), draw.Over, nil)
}

var placeholder = color.NRGBA{R: 200, G: 200, B: 200, A: 255}

// rasterizer returns a vector rasterizer covering clip with a function that
// adds page points relative to it.
func rasterizer(d device, clip image.Rectangle) (*vector.Rasterizer, func(model.Point) (float32, float32)) {
	z := vector.NewRasterizer(clip.Dx(), clip.Dy())
	ox, oy := float32(clip.Min.X), float32(clip.Min.Y)
	return z, func(p model.Point) (float32, float32) {
		x, y := d.point(p)
		return x - ox, y - oy
	}
}

func fillPolygons(d device, dst *image.RGBA, clip image.Rectangle, subpaths [][]model.Point, c color.NRGBA) {
	if c.A == 0 || len(subpaths) == 0 {
		return
	}
	z, at := rasterizer(d, clip)
	for _, sp := range subpaths {
		z.MoveTo(at(sp[0]))
		for _, p := range sp[1:] {
			z.LineTo(at(p))
		}
		z.ClosePath()
	}
	z.Draw(dst, clip, image.NewUniform(c), image.Point{})
}

func strokePolylines(d device, dst *image.RGBA, clip image.Rectangle, subpaths [][]model.Point, width float64, c color.NRGBA) {
	if c.A == 0 || len(subpaths) == 0 {
		return
	}
	z, at := rasterizer(d, clip)
	half := float32(width / 2)
	for _, sp := range subpaths {
		for i := 1; i < len(sp); i++ {
			x0, y0 := at(sp[i-1])
			x1, y1 := at(sp[i])
			dx, dy := x1-x0, y1-y0
			n := float32(math.Hypot(float64(dx), float64(dy)))
			if n == 0 {
				continue
			}
			nx, ny := -dy/n*half, dx/n*half
			z.MoveTo(x0+nx, y0+ny)
			z.LineTo(x1+nx, y1+ny)
			z.LineTo(x1-nx, y1-ny)
			z.LineTo(x0-nx, y0-ny)
			z.ClosePath()
		}
	}
	z.Draw(dst, clip, image.NewUniform(c), image.Point{})
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.NRGBA) {
	if r.Empty() || c.A == 0 {
		return
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// tint colors an alpha mask
func tint(mask *image.Alpha, c color.NRGBA) *image.NRGBA {
	b := mask.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := mask.AlphaAt(x, y).A
			if a == 0 {
				continue
			}
			out.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(uint16(a) * uint16(c.A) / 255)})
		}
	}
	return out
}
