// Package filters decodes PDF stream filters.
//
// Decode dispatches on the filter name found in a stream dictionary:
//
//	out, err := filters.Decode("FlateDecode", data, filters.Params{Predictor: 12, Columns: 5})
//
// Supported filters are FlateDecode, LZWDecode, ASCIIHexDecode, ASCII85Decode,
// RunLengthDecode and CCITTFaxDecode. Image codecs that are decoded later by
// an image library (DCTDecode, JPXDecode, JBIG2Decode) pass through unchanged.
//
// FlateDecode and LZWDecode honour the Predictor parameter:
//   - 1: no prediction (default)
//   - 2: TIFF Predictor 2
//   - 10-15: PNG predictors (None, Sub, Up, Average, Paeth)
package filters
