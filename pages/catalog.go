package pages

import (
	"fmt"

	"github.com/dimdasci/pdfs-api/core"
)

// ObjectResolver resolves indirect references
type ObjectResolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

// Catalog represents the PDF document catalog (root of document structure)
type Catalog struct {
	dict     core.Dict
	resolver ObjectResolver
}

// NewCatalog creates a new catalog from a dictionary
func NewCatalog(dict core.Dict, resolver ObjectResolver) *Catalog {
	return &Catalog{dict: dict, resolver: resolver}
}

// Dict returns the raw catalog dictionary
func (c *Catalog) Dict() core.Dict { return c.dict }

// Pages returns the page tree root
func (c *Catalog) Pages() (core.Dict, error) {
	d, err := dictOf(c.resolver, c.dict.Get("Pages"))
	if err != nil {
		return nil, fmt.Errorf("catalog /Pages: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("catalog has no /Pages dictionary")
	}
	return d, nil
}

// Version returns the /Version override, which wins over the header
func (c *Catalog) Version() string {
	if n, ok := c.dict.GetName("Version"); ok {
		return string(n)
	}
	return ""
}

// Tagged reports /MarkInfo /Marked true
func (c *Catalog) Tagged() bool {
	mi, err := dictOf(c.resolver, c.dict.Get("MarkInfo"))
	if err != nil || mi == nil {
		return false
	}
	b, _ := mi.GetBool("Marked")
	return bool(b)
}

func dictOf(r ObjectResolver, obj core.Object) (core.Dict, error) {
	if obj == nil {
		return nil, nil
	}
	v, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch d := v.(type) {
	case core.Dict:
		return d, nil
	case *core.Stream:
		return d.Dict, nil
	}
	return nil, nil
}

func arrayOf(r ObjectResolver, obj core.Object) (core.Array, error) {
	if obj == nil {
		return nil, nil
	}
	v, err := r.Resolve(obj)
	if err != nil {
		return nil, err
	}
	a, _ := v.(core.Array)
	return a, nil
}
