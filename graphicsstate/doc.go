// Package graphicsstate provides PDF graphics state management.
//
// A [State] is an immutable snapshot: the CTM, the clip rectangle, fill and
// stroke paints, line width and the text state. Operators that change the
// state produce a new value, and q/Q push and pop whole snapshots on a
// [Stack], so a saved state can never be changed through an alias:
//
//	var st graphicsstate.Stack
//	s := graphicsstate.New(page.CropBox)
//	st.Push(s)                      // q
//	s = s.Concat(m)                 // cm
//	s, err = st.Pop()               // Q
//
// A [TextObject] tracks the text and text line matrices of a BT ... ET
// block and computes glyph quads and advances from font metrics.
//
// A [Path] collects segments in page space. Its bounds use the control
// hull of curves, and Subpaths flattens it into polylines for rendering.
package graphicsstate
