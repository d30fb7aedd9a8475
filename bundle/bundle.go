// Package bundle composes the per-page outputs into a PageBundle.
package bundle

import (
	"fmt"

	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/pdferr"
)

// RasterChecker reports whether a raster ref resolves. The raster store
// implements it.
type RasterChecker interface {
	Has(ref string) bool
}

// Input is everything known about one analysed page. Page is 1-based.
type Input struct {
	DocumentID string
	Page       int
	Width      float64
	Height     float64
	Rotation   int
	Raster     string
	Outline    string
	Layers     []model.Layer
	Objects    []model.Object
	Findings   []model.Finding
	Warnings   []model.Warning
}

// Assemble checks that every raster is present and returns a bundle that
// shares no slices with in. A nil checker only checks refs are non-empty.
func Assemble(in Input, rasters RasterChecker) (*model.PageBundle, error) {
	if err := checkRaster(in.Raster, "page", rasters); err != nil {
		return nil, pdferr.ForPage(pdferr.IncompletePageBundle, in.Page-1, err)
	}
	if err := checkRaster(in.Outline, "outline", rasters); err != nil {
		return nil, pdferr.ForPage(pdferr.IncompletePageBundle, in.Page-1, err)
	}
	for _, l := range in.Layers {
		if err := checkRaster(l.Raster, "layer "+l.Key(), rasters); err != nil {
			return nil, pdferr.ForPage(pdferr.IncompletePageBundle, in.Page-1, err)
		}
	}

	b := &model.PageBundle{
		DocumentID: in.DocumentID,
		Page:       in.Page,
		Width:      in.Width,
		Height:     in.Height,
		Rotation:   in.Rotation,
		Raster:     in.Raster,
		Outline:    in.Outline,
		Layers:     make([]model.Layer, len(in.Layers)),
		Objects:    make([]model.Object, len(in.Objects)),
		Findings:   make([]model.Finding, len(in.Findings)),
		Warnings:   append([]model.Warning(nil), in.Warnings...),
		Status:     model.StatusOK,
	}
	for i, l := range in.Layers {
		l.Objects = append([]int(nil), l.Objects...)
		b.Layers[i] = l
	}
	for i, obj := range in.Objects {
		obj.Shapes = append([]model.Shape(nil), obj.Shapes...)
		b.Objects[i] = obj
	}
	for i, f := range in.Findings {
		f.Objects = append([]model.ObjectRef(nil), f.Objects...)
		f.Pages = append([]int(nil), f.Pages...)
		b.Findings[i] = f
	}
	return b, nil
}

// Failed returns the bundle of a page that could not be analysed
func Failed(documentID string, page int, err error) *model.PageBundle {
	return &model.PageBundle{
		DocumentID: documentID,
		Page:       page,
		Layers:     []model.Layer{},
		Objects:    []model.Object{},
		Findings:   []model.Finding{},
		Status:     model.StatusFailed,
		ErrorKind:  pdferr.KindOf(err).String(),
		Error:      err.Error(),
	}
}

func checkRaster(ref, what string, rasters RasterChecker) error {
	if ref == "" {
		return fmt.Errorf("%s raster missing", what)
	}
	if rasters != nil && !rasters.Has(ref) {
		return fmt.Errorf("%s raster %q not in store", what, ref)
	}
	return nil
}
