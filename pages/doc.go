// Package pages reads the document catalog and page tree.
//
// The page tree is flattened once into an ordered list of [Page] values.
// Inheritable attributes (Resources, MediaBox, CropBox, Rotate) are taken
// from the nearest ancestor that defines them, however deep the tree is.
//
//	tree, err := pages.LoadTree(catalog, resolver)
//	page, err := tree.Page(0)
//	fmt.Println(page.Width(), page.Height())
//
// [Labels] evaluates the /PageLabels number tree into display labels.
package pages
