// Package font loads the font resources that text operators refer to.
//
// Only layout matters here: how a shown string splits into character codes,
// how far each glyph advances, how tall glyphs are, and what Unicode text
// they stand for. Glyph outlines are never read.
//
// Simple fonts (Type1, TrueType, Type3) use one byte per code, widths from
// /Widths or the standard 14 metrics, and an encoding built from the named
// base encoding plus /Differences. Composite (Type0) fonts split codes by
// their CMap codespace ranges and take widths from the descendant's /W and
// /DW entries.
//
//	f, err := font.Load(fontDict, resolver)
//	for _, g := range f.Glyphs(shown) {
//		advance := g.Width * f.FontMatrix()[0] * fontSize
//	}
package font
