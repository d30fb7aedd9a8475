// Package model defines the page-structure types exchanged between the
// analysis stages and returned to callers.
//
// Geometry is in PDF page space: points, origin at the lower-left corner of
// the page, y growing upwards. A [Rect] is always normalized so X0 <= X1 and
// Y0 <= Y1, and it serializes as a four-element array.
//
// An [Object] is one classified drawing operation. Its ZIndex is the 1-based
// paint order within the page, which is also the stacking order. A [Layer]
// names a subset of a page's objects by index; the layers of one page
// partition its object list. A [Finding] flags anomalies without touching
// the objects it references. A [PageBundle] is the assembled result for one
// page.
package model
