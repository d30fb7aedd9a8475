package pages

import (
	"fmt"

	"github.com/dimdasci/pdfs-api/core"
)

const maxTreeDepth = 64

// inherited carries the attributes a node passes to its descendants
type inherited struct {
	resources core.Object
	mediaBox  core.Object
	cropBox   core.Object
	rotate    core.Object
}

func (in inherited) with(node core.Dict) inherited {
	if v := node.Get("Resources"); v != nil {
		in.resources = v
	}
	if v := node.Get("MediaBox"); v != nil {
		in.mediaBox = v
	}
	if v := node.Get("CropBox"); v != nil {
		in.cropBox = v
	}
	if v := node.Get("Rotate"); v != nil {
		in.rotate = v
	}
	return in
}

// Tree is the flattened page tree
type Tree struct {
	pages []*Page
}

// LoadTree walks the page tree from the catalog's /Pages node
func LoadTree(c *Catalog) (*Tree, error) {
	root, err := c.Pages()
	if err != nil {
		return nil, err
	}
	t := &Tree{}
	visited := map[core.IndirectRef]bool{}
	if ref, ok := c.dict.Get("Pages").(core.IndirectRef); ok {
		visited[ref] = true
	}
	if err := t.walk(c.resolver, root, core.IndirectRef{}, inherited{}, visited, 0); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tree) walk(r ObjectResolver, node core.Dict, ref core.IndirectRef, in inherited, visited map[core.IndirectRef]bool, depth int) error {
	if depth > maxTreeDepth {
		return fmt.Errorf("page tree deeper than %d levels", maxTreeDepth)
	}
	in = in.with(node)

	typ, _ := node.GetName("Type")
	if typ == "Page" || (typ != "Pages" && !node.Has("Kids")) {
		t.pages = append(t.pages, newPage(len(t.pages), ref, node, in, r))
		return nil
	}

	kids, err := arrayOf(r, node.Get("Kids"))
	if err != nil {
		return fmt.Errorf("page tree /Kids: %w", err)
	}
	for i, kid := range kids {
		kidRef, isRef := kid.(core.IndirectRef)
		if isRef {
			if visited[kidRef] {
				return fmt.Errorf("page tree cycle at %s", kidRef)
			}
			visited[kidRef] = true
		}
		d, err := dictOf(r, kid)
		if err != nil {
			return fmt.Errorf("page tree kid %d: %w", i, err)
		}
		if d == nil {
			// null or non-dictionary kids are skipped
			continue
		}
		if err := t.walk(r, d, kidRef, in, visited, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of leaf pages
func (t *Tree) Count() int { return len(t.pages) }

// Page returns the page at 0-based index
func (t *Tree) Page(index int) (*Page, error) {
	if index < 0 || index >= len(t.pages) {
		return nil, fmt.Errorf("page index %d out of range [0,%d)", index, len(t.pages))
	}
	return t.pages[index], nil
}

// Pages returns all pages in document order
func (t *Tree) Pages() []*Page {
	return t.pages
}
