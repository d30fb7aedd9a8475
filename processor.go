// Package pdfs analyses the visual structure of PDF pages.
//
// A Processor loads a document, analyses its pages in parallel and, once
// every page is done, looks for patterns repeated across pages:
//
//	p, err := pdfs.New(config.Default())
//	if err != nil {
//	    // handle error
//	}
//	res, err := p.ProcessDocument(ctx, "", data)
//	if err != nil {
//	    // CorruptDocument, Encrypted or PageLimitExceeded
//	}
//	for _, b := range res.Pages {
//	    fmt.Println(b.Page, b.Status, len(b.Objects))
//	}
//
// Each page yields a model.PageBundle: its objects in paint order, the
// layers they are grouped into, raster refs for the full page and for each
// layer overlay, findings and interpreter warnings. A page that cannot be
// analysed gets a bundle with status failed; its siblings are unaffected.
package pdfs

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dimdasci/pdfs-api/anomaly"
	"github.com/dimdasci/pdfs-api/bundle"
	"github.com/dimdasci/pdfs-api/config"
	"github.com/dimdasci/pdfs-api/internal/logging"
	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/pdferr"
	"github.com/dimdasci/pdfs-api/rasterstore"
	"github.com/dimdasci/pdfs-api/reader"
)

// Processor runs the page analysis pipeline. It is safe for concurrent use.
type Processor struct {
	cfg     config.Config
	log     logrus.FieldLogger
	store   rasterstore.Store
	workers int
}

// Result is the outcome of ProcessDocument
type Result struct {
	DocumentID string              `json:"document_id"`
	Metadata   reader.Metadata     `json:"metadata"`
	Pages      []*model.PageBundle `json:"pages"`
	// Findings holds the repeated patterns found across pages. Each is
	// also attached to the bundles of the pages it touches.
	Findings []model.Finding `json:"findings"`
}

// Failed returns the 1-based numbers of the pages that could not be analysed
func (r *Result) Failed() []int {
	var out []int
	for _, b := range r.Pages {
		if b.Failed() {
			out = append(out, b.Page)
		}
	}
	return out
}

// New validates cfg and returns a Processor
func New(cfg config.Config, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	p := &Processor{cfg: cfg, workers: cfg.Workers}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logging.Discard()
	}
	if p.store == nil {
		p.store = rasterstore.NewMemory(cfg.Format())
	}
	if p.workers <= 0 {
		p.workers = runtime.NumCPU()
	}
	return p, nil
}

// Store returns the raster store bundles refer to
func (p *Processor) Store() rasterstore.Store { return p.store }

func (p *Processor) load(data []byte) (*reader.Document, error) {
	return reader.Load(data,
		reader.WithMaxPages(p.cfg.MaxPages),
		reader.WithStrictValidation(p.cfg.StrictValidation))
}

// ProcessDocument analyses every page of data. An empty docID is replaced
// by a generated one.
//
// Document-level failures are returned with a nil Result. When ctx is
// cancelled the pages not yet analysed are marked failed and the partial
// Result is returned together with ctx.Err().
func (p *Processor) ProcessDocument(ctx context.Context, docID string, data []byte) (*Result, error) {
	if docID == "" {
		docID = uuid.New().String()
	}
	log := p.log.WithField("document", docID)

	doc, err := p.load(data)
	if err != nil {
		log.WithError(err).Warn("document rejected")
		return nil, err
	}
	defer doc.Close()

	n := doc.PageCount()
	log.WithFields(logrus.Fields{"pages": n, "version": doc.Version()}).Info("document loaded")

	a := p.newAnalyser(doc, docID, log, p.layerWorkers(n))
	defer a.close()

	results := make([]*pageResult, n)
	p.fanOut(ctx, n, func(i int) {
		results[i] = a.page(ctx, i)
	})

	// Every page task has finished here.
	var analysed []anomaly.PageObjects
	for i, r := range results {
		if r == nil {
			err := fmt.Errorf("page not analysed: %w", context.Cause(ctx))
			results[i] = &pageResult{index: i, err: pdferr.ForPage(pdferr.PageDecodeError, i, err)}
			continue
		}
		if r.err == nil {
			analysed = append(analysed, anomaly.PageObjects{Page: i + 1, Box: r.box, Objects: r.in.Objects})
		}
	}

	cfg := anomaly.RepeatedConfig{
		MinPageFraction: p.cfg.RepeatedMinPageFraction,
		Tolerance:       p.cfg.RepeatedTolerance,
		UseContent:      p.cfg.RepeatedUseContent,
		MinPages:        2,
	}
	repeated := anomaly.RepeatedPatterns(analysed, cfg)
	log.WithField("findings", len(repeated)).Debug("cross-page patterns detected")

	res := &Result{
		DocumentID: docID,
		Metadata:   doc.Metadata(),
		Pages:      make([]*model.PageBundle, n),
		Findings:   repeated,
	}
	if res.Findings == nil {
		res.Findings = []model.Finding{}
	}
	for i, r := range results {
		if r.err == nil {
			r.in.Findings = append(r.in.Findings, anomaly.ForPage(repeated, i+1)...)
		}
		res.Pages[i], _ = p.assemble(log, docID, r)
	}

	if failed := res.Failed(); len(failed) > 0 {
		log.WithField("failed_pages", failed).Warn("some pages could not be analysed")
	}
	return res, ctx.Err()
}

// ProcessPage analyses the page at the 0-based index without the
// cross-page step. A page that fails yields its failed bundle and the
// page error.
func (p *Processor) ProcessPage(ctx context.Context, docID string, data []byte, index int) (*model.PageBundle, error) {
	if docID == "" {
		docID = uuid.New().String()
	}
	log := p.log.WithField("document", docID)

	doc, err := p.load(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	if index < 0 || index >= doc.PageCount() {
		return nil, fmt.Errorf("page index %d out of range [0, %d)", index, doc.PageCount())
	}

	a := p.newAnalyser(doc, docID, log, p.workers)
	defer a.close()

	return p.assemble(log, docID, a.page(ctx, index))
}

// fanOut calls task for page indexes [0, n) on the worker pool and returns
// when all started tasks are done. No new task starts once ctx is done.
func (p *Processor) fanOut(ctx context.Context, n int, task func(i int)) {
	workers := min(p.workers, n)
	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				task(i)
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case indexes <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(indexes)
	wg.Wait()
}

// layerWorkers splits the pool between pages and the overlays of a page
func (p *Processor) layerWorkers(pages int) int {
	return max(1, p.workers/max(1, min(p.workers, pages)))
}

// assemble returns the bundle of r, a failed one together with the page
// error when the page could not be analysed.
func (p *Processor) assemble(log logrus.FieldLogger, docID string, r *pageResult) (*model.PageBundle, error) {
	page := r.index + 1
	log = log.WithField("page", page)
	if r.err != nil {
		log.WithError(r.err).Warn("page failed")
		return bundle.Failed(docID, page, r.err), r.err
	}
	b, err := bundle.Assemble(r.in, p.store)
	if err != nil {
		log.WithError(err).Warn("page bundle incomplete")
		return bundle.Failed(docID, page, err), err
	}
	return b, nil
}
