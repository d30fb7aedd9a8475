package filters

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"
)

// LZWDecode decodes LZW data. EarlyChange defaults to 1 as in PDF.
func LZWDecode(data []byte, params Params) ([]byte, error) {
	early := true
	if params.EarlyChange != nil {
		early = *params.EarlyChange != 0
	}
	rc := lzw.NewReader(bytes.NewReader(data), early)
	defer rc.Close()

	out, err := io.ReadAll(rc)
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("lzw: %w", err)
	}
	return unpredict(out, params)
}
