// Package testpdf writes small, valid PDF files for tests.
package testpdf

import (
	"bytes"
	"fmt"
	"strings"
)

// Builder accumulates numbered objects and serializes them with a
// cross-reference section.
type Builder struct {
	objs [][]byte

	// Root is the catalog object number.
	Root int
	// TrailerExtra is appended inside the trailer dictionary.
	TrailerExtra string
	// XRefStream writes a PDF 1.5 cross-reference stream instead of a table.
	XRefStream bool
	// CatalogExtra is appended inside the catalog built by DocumentWith.
	CatalogExtra string
}

// New returns an empty builder
func New() *Builder {
	return &Builder{}
}

// Reserve allocates an object number to be filled with Set.
func (b *Builder) Reserve() int {
	b.objs = append(b.objs, nil)
	return len(b.objs)
}

// Add appends an object body such as "<< /Type /Catalog >>".
func (b *Builder) Add(body string) int {
	n := b.Reserve()
	b.Set(n, body)
	return n
}

// Set replaces the body of object num.
func (b *Builder) Set(num int, body string) {
	b.objs[num-1] = []byte(body)
}

// AddStream appends a stream object. dict is the dictionary body without
// the surrounding << >> and without /Length.
func (b *Builder) AddStream(dict string, data []byte) int {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<< %s /Length %d >>\nstream\n", dict, len(data))
	buf.Write(data)
	buf.WriteString("\nendstream")
	n := b.Reserve()
	b.objs[n-1] = buf.Bytes()
	return n
}

// Bytes serializes the file.
func (b *Builder) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(b.objs)+1)
	for i, body := range b.objs {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		if body == nil {
			buf.WriteString("null")
		} else {
			buf.Write(body)
		}
		buf.WriteString("\nendobj\n")
	}

	xrefAt := buf.Len()
	if b.XRefStream {
		num := len(b.objs) + 1
		var rows bytes.Buffer
		rows.Write([]byte{0, 0, 0, 0, 0xff})
		for i := 1; i <= len(b.objs); i++ {
			writeRow(&rows, offsets[i])
		}
		writeRow(&rows, xrefAt)
		data := rows.Bytes()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /XRef /Size %d /W [1 3 1] /Root %d 0 R %s /Length %d >>\nstream\n",
			num, num+1, b.Root, b.TrailerExtra, len(data))
		buf.Write(data)
		buf.WriteString("\nendstream\nendobj\n")
	} else {
		fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f\r\n", len(b.objs)+1)
		for i := 1; i <= len(b.objs); i++ {
			fmt.Fprintf(&buf, "%010d 00000 n\r\n", offsets[i])
		}
		fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R %s >>\n", len(b.objs)+1, b.Root, b.TrailerExtra)
	}
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xrefAt)
	return buf.Bytes()
}

// Page describes one page for Document.
type Page struct {
	Content string
	// Resources is the body of the /Resources dictionary without << >>.
	// When empty a Helvetica font named F1 is provided.
	Resources string
	// MediaBox defaults to US Letter.
	MediaBox string
	Extra    string
}

// DefaultResources names Helvetica as /F1.
const DefaultResources = "/Font << /F1 << /Type /Font /Subtype /Type1 /BaseFont /Helvetica >> >>"

// Document builds a complete file with one page per entry.
func Document(pages ...Page) []byte {
	return DocumentWith(New(), pages...)
}

// DocumentWith builds pages into b, letting the caller add objects first.
func DocumentWith(b *Builder, pages ...Page) []byte {
	catalog := b.Reserve()
	tree := b.Reserve()
	var kids []string
	for _, p := range pages {
		content := b.AddStream("", []byte(p.Content))
		res := p.Resources
		if res == "" {
			res = DefaultResources
		}
		box := p.MediaBox
		if box == "" {
			box = "[0 0 612 792]"
		}
		page := b.Add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox %s /Resources << %s >> /Contents %d 0 R %s >>",
			tree, box, res, content, p.Extra))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}
	b.Set(tree, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	b.Set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R %s >>", tree, b.CatalogExtra))
	b.Root = catalog
	return b.Bytes()
}

// Pages builds a document whose pages carry the given content streams.
func Pages(contents ...string) []byte {
	pages := make([]Page, len(contents))
	for i, c := range contents {
		pages[i] = Page{Content: c}
	}
	return Document(pages...)
}

func writeRow(w *bytes.Buffer, off int) {
	w.Write([]byte{1, byte(off >> 16), byte(off >> 8), byte(off), 0})
}
