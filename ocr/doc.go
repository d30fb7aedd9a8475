// Package ocr recognizes text in image objects so that scanned content can
// be fingerprinted by what it says rather than by its bytes.
//
// The Tesseract client (gosseract) is only compiled with the ocr build tag:
//
//	go build -tags ocr ./...
//
// Without it New returns ErrOCRNotEnabled and callers fall back to hashing
// the image stream.
package ocr
