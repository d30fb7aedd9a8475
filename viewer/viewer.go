// Package viewer writes a self-contained HTML page that stacks each page's
// layer overlays on its raster and lists objects and findings.
package viewer

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dimdasci/pdfs-api/model"
	"github.com/dimdasci/pdfs-api/render"
)

const style = `body{font-family:sans-serif;margin:2em}
.stack{position:relative;border:1px solid #ccc;margin-bottom:1em}
.stack img{position:absolute;left:0;top:0;width:100%;height:100%}
table{border-collapse:collapse;font-size:small}
td,th{border:1px solid #ddd;padding:2px 6px;text-align:left}
.failed{color:#b00}
.swatch{display:inline-block;width:1em;height:1em;vertical-align:middle;margin-right:4px}`

type options struct {
	scale float64
	title string
}

// Option configures Write
type Option func(*options)

// WithScale sets the pixels per point the rasters were rendered at
func WithScale(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.scale = s
		}
	}
}

// WithTitle sets the document title
func WithTitle(t string) Option {
	return func(o *options) { o.title = t }
}

// Write renders bundles of one document as HTML. Raster refs are used as
// image URLs as they are.
func Write(w io.Writer, bundles []*model.PageBundle, opts ...Option) error {
	o := options{scale: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.title == "" && len(bundles) > 0 {
		o.title = bundles[0].DocumentID
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := el("html")
	doc.AppendChild(root)

	head := el("head")
	head.AppendChild(el("meta", attr("charset", "utf-8")))
	head.AppendChild(withText(el("title"), o.title))
	head.AppendChild(withText(el("style"), style))
	root.AppendChild(head)

	body := el("body")
	body.AppendChild(withText(el("h1"), o.title))
	body.AppendChild(legend())
	for _, b := range bundles {
		body.AppendChild(page(b, o.scale))
	}
	root.AppendChild(body)

	return html.Render(w, doc)
}

func legend() *html.Node {
	p := el("p")
	for _, t := range model.ObjectTypes {
		c := render.ColorOf(t)
		p.AppendChild(el("span", attr("class", "swatch"),
			attr("style", fmt.Sprintf("background:#%02x%02x%02x", c.R, c.G, c.B))))
		p.AppendChild(text(t.String() + " "))
	}
	return p
}

func page(b *model.PageBundle, scale float64) *html.Node {
	sec := el("section", attr("id", fmt.Sprintf("page-%d", b.Page)))
	sec.AppendChild(withText(el("h2"), fmt.Sprintf("Page %d", b.Page)))
	if b.Failed() {
		sec.AppendChild(withText(el("p", attr("class", "failed")), b.ErrorKind+": "+b.Error))
		return sec
	}

	stack := el("div", attr("class", "stack"), attr("style",
		fmt.Sprintf("width:%.0fpx;height:%.0fpx", b.Width*scale, b.Height*scale)))
	stack.AppendChild(el("img", attr("src", b.Raster), attr("alt", "page"), attr("id", toggleID(b.Page, "page"))))
	toggles := el("p")
	toggles.AppendChild(toggle(b.Page, "page", true))
	if b.Outline != "" {
		stack.AppendChild(el("img", attr("src", b.Outline), attr("alt", "outline"),
			attr("id", toggleID(b.Page, "outline"))))
		toggles.AppendChild(toggle(b.Page, "outline", true))
	}
	for _, l := range b.Layers {
		stack.AppendChild(el("img", attr("src", l.Raster), attr("alt", l.Key()),
			attr("id", toggleID(b.Page, l.Key())), attr("hidden", "")))
		toggles.AppendChild(toggle(b.Page, l.Key(), false))
	}
	sec.AppendChild(toggles)
	sec.AppendChild(stack)

	sec.AppendChild(withText(el("h3"), "Layers"))
	sec.AppendChild(table([]string{"layer", "objects", "raster"}, len(b.Layers), func(i int) []string {
		l := b.Layers[i]
		return []string{l.Key(), fmt.Sprint(l.ObjectCount), l.Raster}
	}))

	sec.AppendChild(withText(el("h3"), "Objects"))
	sec.AppendChild(table([]string{"id", "type", "bbox", "z", "content"}, len(b.Objects), func(i int) []string {
		obj := b.Objects[i]
		return []string{obj.ID, obj.Type.String(), obj.BBox.String(), fmt.Sprint(obj.ZIndex), obj.Content}
	}))

	if len(b.Findings) > 0 {
		sec.AppendChild(withText(el("h3"), "Findings"))
		ul := el("ul")
		for _, f := range b.Findings {
			ul.AppendChild(withText(el("li"), describe(f)))
		}
		sec.AppendChild(ul)
	}
	if len(b.Warnings) > 0 {
		sec.AppendChild(withText(el("h3"), "Warnings"))
		sec.AppendChild(withText(el("pre"), model.FormatWarnings(b.Warnings)))
	}
	return sec
}

func toggleID(page int, key string) string {
	return fmt.Sprintf("p%d-%s", page, key)
}

// toggle is a checkbox showing or hiding one raster of the stack
func toggle(page int, key string, checked bool) *html.Node {
	label := el("label")
	box := el("input", attr("type", "checkbox"),
		attr("onchange", fmt.Sprintf("document.getElementById(%q).hidden=!this.checked", toggleID(page, key))))
	if checked {
		box.Attr = append(box.Attr, attr("checked", ""))
	}
	label.AppendChild(box)
	label.AppendChild(text(key + " "))
	return label
}

func describe(f model.Finding) string {
	ids := make([]string, len(f.Objects))
	for i, r := range f.Objects {
		ids[i] = r.ID
	}
	s := fmt.Sprintf("%s (%s, %.2f): %s", f.Kind, f.Severity, f.Confidence, strings.Join(ids, ", "))
	if f.Kind == model.KindRepeatedPattern {
		s += fmt.Sprintf(" %s on pages %v", f.Region, f.Pages)
	}
	return s
}

func table(header []string, rows int, row func(int) []string) *html.Node {
	t := el("table")
	tr := el("tr")
	for _, h := range header {
		tr.AppendChild(withText(el("th"), h))
	}
	t.AppendChild(tr)
	for i := 0; i < rows; i++ {
		tr := el("tr")
		for _, cell := range row(i) {
			tr.AppendChild(withText(el("td"), cell))
		}
		t.AppendChild(tr)
	}
	return t
}

func el(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag)), Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(text(s))
	return n
}
