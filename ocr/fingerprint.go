package ocr

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrOCRNotEnabled is returned when OCR functions are called but OCR support
// was not compiled in. Rebuild with -tags ocr to enable OCR support.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// Recognizer turns encoded image bytes into text
type Recognizer interface {
	RecognizeImage(data []byte) (string, error)
}

// Prefix marks fingerprints derived from recognized text
const Prefix = "ocr:"

// Fingerprint recognizes the text in img and hashes it. It returns false
// when no text was found.
func Fingerprint(r Recognizer, img image.Image) (string, bool, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", false, fmt.Errorf("encode image: %w", err)
	}
	text, err := r.RecognizeImage(buf.Bytes())
	if err != nil {
		return "", false, err
	}
	fp, ok := TextFingerprint(text)
	return fp, ok, nil
}

// TextFingerprint hashes text after NFKC normalization, case folding and
// whitespace collapsing, so small recognition differences in spacing do
// not matter.
func TextFingerprint(text string) (string, bool) {
	s := strings.Join(strings.Fields(strings.ToLower(norm.NFKC.String(text))), " ")
	if s == "" {
		return "", false
	}
	sum := sha256.Sum256([]byte(s))
	return Prefix + hex.EncodeToString(sum[:]), true
}
