package pdfs

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/dimdasci/pdfs-api/anomaly"
	"github.com/dimdasci/pdfs-api/bundle"
	"github.com/dimdasci/pdfs-api/classify"
	"github.com/dimdasci/pdfs-api/interpreter"
	"github.com/dimdasci/pdfs-api/layers"
	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/ocr"
	"github.com/dimdasci/pdfs-api/pdferr"
	"github.com/dimdasci/pdfs-api/rasterstore"
	"github.com/dimdasci/pdfs-api/reader"
	"github.com/dimdasci/pdfs-api/render"
)

// pageResult is the outcome of one page task. index is 0-based.
type pageResult struct {
	index int
	box   model.Rect
	in    bundle.Input
	err   error
}

// analyser holds what the page tasks of one document share
type analyser struct {
	p            *Processor
	doc          *reader.Document
	docID        string
	log          logrus.FieldLogger
	renderer     *render.Renderer
	classify     []classify.Option
	layerWorkers int
	ocr          *ocr.Client
}

func (p *Processor) newAnalyser(doc *reader.Document, docID string, log logrus.FieldLogger, layerWorkers int) *analyser {
	a := &analyser{
		p:            p,
		doc:          doc,
		docID:        docID,
		log:          log,
		renderer:     render.New(doc, render.WithScale(p.cfg.RenderScale)),
		layerWorkers: layerWorkers,
	}
	if p.cfg.OCR {
		client, err := ocr.New()
		if err == nil {
			err = client.SetLanguage(p.cfg.OCRLanguage)
		}
		if err != nil {
			log.WithError(err).Warn("OCR unavailable, images are fingerprinted by their bytes")
			client.Close()
		} else {
			a.ocr = client
			a.classify = append(a.classify, classify.WithImageFingerprint(a.recognize))
		}
	}
	return a
}

func (a *analyser) close() {
	if a.ocr != nil {
		a.ocr.Close()
	}
}

// recognize fingerprints an image by the text Tesseract finds in it
func (a *analyser) recognize(ev interpreter.PaintEvent) (string, bool) {
	var img *reader.Image
	var err error
	switch {
	case ev.Kind == interpreter.DrawImage && ev.Image != nil:
		img, err = a.doc.LoadImage(ev.Image, ev.Resources)
	case ev.Kind == interpreter.InlineImage:
		img, err = a.doc.LoadInlineImage(ev.Inline, ev.InlineData, ev.Resources)
	default:
		return "", false
	}
	if err != nil {
		return "", false
	}
	fp, ok, err := ocr.Fingerprint(a.ocr, img.Img)
	if err != nil {
		a.log.WithError(err).WithField("image", ev.Name).Debug("OCR failed")
		return "", false
	}
	return fp, ok
}

// page runs the single-page pipeline. It never panics; a panic while
// analysing becomes a PageDecodeError.
func (a *analyser) page(ctx context.Context, index int) (res *pageResult) {
	pageNo := index + 1
	log := a.log.WithField("page", pageNo)
	defer func() {
		if r := recover(); r != nil {
			log.WithField("stack", string(debug.Stack())).Error("panic while analysing page")
			res = &pageResult{index: index, err: pdferr.ForPage(pdferr.PageDecodeError, index, fmt.Errorf("panic: %v", r))}
		}
	}()
	fail := func(err error) *pageResult {
		var perr *pdferr.Error
		if !errors.As(err, &perr) {
			err = pdferr.ForPage(pdferr.PageDecodeError, index, err)
		}
		return &pageResult{index: index, err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	page, err := a.doc.Page(index)
	if err != nil {
		return fail(err)
	}

	seq := interpreter.New(a.doc, page).Events()
	objects, warnings, err := classify.FromSequence(pageNo, seq, a.classify...)
	if len(warnings) > 0 {
		log.WithField("warnings", len(warnings)).Debug("operator anomalies")
	}
	if err != nil {
		return fail(err)
	}
	ls := layers.Partition(objects, a.p.cfg.Policy())

	box := page.CropBox
	full, err := a.renderer.RenderPage(ctx, box, objects)
	if err != nil {
		return fail(fmt.Errorf("render page: %w", err))
	}
	overlays, err := a.renderer.RenderLayers(ctx, box, objects, ls, a.layerWorkers)
	if err != nil {
		return fail(fmt.Errorf("render layers: %w", err))
	}
	outline, err := a.renderer.RenderOutline(ctx, box, objects, ls)
	if err != nil {
		return fail(fmt.Errorf("render outline: %w", err))
	}

	incomplete := func(err error) *pageResult {
		return fail(pdferr.ForPage(pdferr.IncompletePageBundle, index, err))
	}
	raster, err := a.p.store.Put(ctx, rasterstore.PageKey(a.docID, pageNo), full)
	if err != nil {
		return incomplete(fmt.Errorf("store page raster: %w", err))
	}
	outlineRef, err := a.p.store.Put(ctx, rasterstore.OutlineKey(a.docID, pageNo), outline)
	if err != nil {
		return incomplete(fmt.Errorf("store outline raster: %w", err))
	}
	for i, img := range overlays {
		ref, err := a.p.store.Put(ctx, rasterstore.LayerKey(a.docID, pageNo, i), img)
		if err != nil {
			return incomplete(fmt.Errorf("store layer %s raster: %w", ls[i].Key(), err))
		}
		ls[i].Raster = ref
	}

	findings := anomaly.ZeroArea(pageNo, objects, a.p.cfg.ZeroAreaEpsilon)
	log.WithFields(logrus.Fields{
		"objects":  len(objects),
		"layers":   len(ls),
		"findings": len(findings),
	}).Debug("page analysed")

	return &pageResult{
		index: index,
		box:   box,
		in: bundle.Input{
			DocumentID: a.docID,
			Page:       pageNo,
			Width:      page.Width(),
			Height:     page.Height(),
			Rotation:   page.Rotate,
			Raster:     raster,
			Outline:    outlineRef,
			Layers:     ls,
			Objects:    objects,
			Findings:   findings,
			Warnings:   warnings,
		},
	}
}
