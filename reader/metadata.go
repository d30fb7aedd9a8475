package reader

import (
	"github.com/dimdasci/pdfs-api/core"
	"github.com/dimdasci/pdfs-api/pages"
)

// Metadata describes the document as a whole
type Metadata struct {
	Version    string            `json:"version"`
	PageCount  int               `json:"page_count"`
	Info       map[string]string `json:"info,omitempty"`
	Tagged     bool              `json:"tagged"`
	PageLabels []string          `json:"page_labels,omitempty"`
	Repaired   bool              `json:"repaired"`
}

// Metadata collects the Info dictionary, tagging and page labels.
func (d *Document) Metadata() Metadata {
	m := Metadata{
		Version:   d.version,
		PageCount: d.tree.Count(),
		Tagged:    d.catalog.Tagged(),
		Repaired:  d.repaired,
	}
	if info, ok, _ := d.resolver.Dict(d.xref.Trailer.Get("Info")); ok {
		m.Info = map[string]string{}
		for _, k := range info.Keys() {
			v, err := d.resolver.Resolve(info.Get(k))
			if err != nil {
				continue
			}
			switch s := v.(type) {
			case core.String:
				m.Info[k] = core.DecodeTextString(s)
			case core.Name:
				m.Info[k] = string(s)
			}
		}
	}
	if d.catalog.Dict().Has("PageLabels") {
		m.PageLabels = pages.Labels(d.catalog, m.PageCount)
	}
	return m
}
