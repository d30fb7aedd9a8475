package filters

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// FlateDecode inflates zlib data and reverses any predictor.
//
// Truncated streams are common in the wild; whatever was inflated before the
// error is kept as long as something was recovered.
func FlateDecode(data []byte, params Params) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("flate: %w", err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, zr); err != nil && buf.Len() == 0 {
		return nil, fmt.Errorf("flate: %w", err)
	}
	return unpredict(buf.Bytes(), params)
}
