package reader

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/dimdasci/pdfs-api/core"
	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/pages"
	"github.com/dimdasci/pdfs-api/pdferr"
	"github.com/dimdasci/pdfs-api/resolver"
)

var headerPattern = regexp.MustCompile(`%PDF-(\d)\.(\d)`)

type options struct {
	maxPages int
	strict   bool
	maxDepth int
}

// Option configures Load
type Option func(*options)

// WithMaxPages sets the page ceiling; n <= 0 disables it
func WithMaxPages(n int) Option {
	return func(o *options) { o.maxPages = n }
}

// WithStrictValidation runs a full structural validation before parsing
func WithStrictValidation(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithMaxDepth bounds reference chains and nested resources
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// Document is a loaded PDF
type Document struct {
	data     []byte
	version  string
	xref     *core.XRefTable
	resolver *resolver.ObjectResolver
	catalog  *pages.Catalog
	tree     *pages.Tree
	repaired bool

	mu         sync.RWMutex
	cache      map[int]core.Object
	objStreams map[int]*core.ObjectStream
	images     map[*core.Stream]*Image
}

// Load parses data as a PDF document
func Load(data []byte, opts ...Option) (*Document, error) {
	o := options{maxDepth: 64}
	for _, opt := range opts {
		opt(&o)
	}

	loc := headerPattern.FindSubmatchIndex(data[:min(len(data), 1024)])
	if loc == nil {
		return nil, pdferr.Newf(pdferr.CorruptDocument, "no %%PDF header")
	}
	version := fmt.Sprintf("%s.%s", data[loc[2]:loc[3]], data[loc[4]:loc[5]])
	// Offsets in the file are relative to the header when junk precedes it.
	data = data[loc[0]:]

	d := &Document{
		data:       data,
		version:    version,
		cache:      map[int]core.Object{},
		objStreams: map[int]*core.ObjectStream{},
		images:     map[*core.Stream]*Image{},
	}
	d.resolver = resolver.NewResolver(d, resolver.WithMaxDepth(o.maxDepth))

	xref, err := core.LoadXRef(data)
	if err != nil {
		rebuilt, rerr := core.Reconstruct(data)
		if rerr != nil {
			return nil, pdferr.New(pdferr.CorruptDocument, fmt.Errorf("cross-reference: %w; reconstruction: %v", err, rerr))
		}
		xref = rebuilt
		d.repaired = true
	}
	d.xref = xref

	if xref.Trailer.Has("Encrypt") {
		return nil, pdferr.New(pdferr.Encrypted, d.describeEncryption())
	}

	if o.strict {
		if err := validate(data); err != nil {
			return nil, pdferr.New(pdferr.CorruptDocument, err)
		}
	}

	rootDict, ok, err := d.resolver.Dict(xref.Trailer.Get("Root"))
	if err != nil || !ok {
		return nil, pdferr.Newf(pdferr.CorruptDocument, "catalog: %v", errOr(err, "not a dictionary"))
	}
	d.catalog = pages.NewCatalog(rootDict, d.resolver)
	if v := d.catalog.Version(); v > d.version {
		d.version = v
	}

	tree, err := pages.LoadTree(d.catalog)
	if err != nil {
		return nil, pdferr.New(pdferr.CorruptDocument, fmt.Errorf("page tree: %w", err))
	}
	if tree.Count() == 0 {
		return nil, pdferr.Newf(pdferr.CorruptDocument, "document has no pages")
	}
	if o.maxPages > 0 && tree.Count() > o.maxPages {
		return nil, pdferr.Newf(pdferr.PageLimitExceeded, "%d pages exceeds the limit of %d", tree.Count(), o.maxPages)
	}
	d.tree = tree
	return d, nil
}

func errOr(err error, msg string) string {
	if err != nil {
		return err.Error()
	}
	return msg
}

// ResolveReference loads an indirect object, from the cache when possible
func (d *Document) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	d.mu.RLock()
	obj, ok := d.cache[ref.Number]
	d.mu.RUnlock()
	if ok {
		return obj, nil
	}

	obj, err := d.loadObject(ref)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	if cached, ok := d.cache[ref.Number]; ok {
		obj = cached
	} else {
		d.cache[ref.Number] = obj
	}
	d.mu.Unlock()
	return obj, nil
}

func (d *Document) loadObject(ref core.IndirectRef) (core.Object, error) {
	entry, ok := d.xref.Entries[ref.Number]
	if !ok || entry.Kind == core.EntryFree {
		// references to missing objects read as null
		return core.Null{}, nil
	}
	if entry.Kind == core.EntryCompressed {
		stm, err := d.objectStream(entry.StreamObj)
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", ref.Number, err)
		}
		if obj, num, err := stm.ObjectAt(entry.StreamIndex); err == nil && num == ref.Number {
			return obj, nil
		}
		return stm.Object(ref.Number)
	}

	if entry.Offset < 0 || entry.Offset >= int64(len(d.data)) {
		return nil, fmt.Errorf("object %d: offset %d outside file", ref.Number, entry.Offset)
	}
	p := core.NewParserAt(d.data, int(entry.Offset))
	p.SetReferenceResolver(d)
	obj, err := p.ParseIndirectObject()
	if err != nil {
		return nil, fmt.Errorf("object %d: %w", ref.Number, err)
	}
	if obj.Ref.Number != ref.Number {
		return nil, fmt.Errorf("object %d: offset points at object %d", ref.Number, obj.Ref.Number)
	}
	return obj.Object, nil
}

func (d *Document) objectStream(num int) (*core.ObjectStream, error) {
	d.mu.RLock()
	stm, ok := d.objStreams[num]
	d.mu.RUnlock()
	if ok {
		return stm, nil
	}
	obj, err := d.ResolveReference(core.IndirectRef{Number: num})
	if err != nil {
		return nil, err
	}
	s, ok := obj.(*core.Stream)
	if !ok {
		return nil, fmt.Errorf("object stream %d is %s", num, obj.Type())
	}
	stm, err = core.NewObjectStream(s)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.objStreams[num] = stm
	d.mu.Unlock()
	return stm, nil
}

// Resolve follows indirect references
func (d *Document) Resolve(obj core.Object) (core.Object, error) {
	return d.resolver.Resolve(obj)
}

// Resolver returns the document's shared resolver
func (d *Document) Resolver() *resolver.ObjectResolver { return d.resolver }

// Version returns the PDF version, e.g. "1.7"
func (d *Document) Version() string { return d.version }

// Repaired reports whether the cross-reference data had to be rebuilt
func (d *Document) Repaired() bool { return d.repaired }

// Trailer returns the merged trailer dictionary
func (d *Document) Trailer() core.Dict { return d.xref.Trailer }

// PageCount returns the number of pages
func (d *Document) PageCount() int { return d.tree.Count() }

// Page returns the page at 0-based index
func (d *Document) Page(index int) (*pages.Page, error) {
	return d.tree.Page(index)
}

// PageSizes returns each page's crop box
func (d *Document) PageSizes() []model.Rect {
	out := make([]model.Rect, d.tree.Count())
	for i, p := range d.tree.Pages() {
		out[i] = p.CropBox
	}
	return out
}

// Close drops cached objects. The document must not be used afterwards.
func (d *Document) Close() error {
	d.mu.Lock()
	d.cache = nil
	d.objStreams = nil
	d.images = nil
	d.mu.Unlock()
	return nil
}

// Size returns the input length in bytes
func (d *Document) Size() int { return len(d.data) }
