package filters

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/image/ccitt"
)

// CCITTFaxDecode decodes Group 3 or Group 4 fax data into packed 1-bit rows
// where 1 is white unless BlackIs1 is set.
func CCITTFaxDecode(data []byte, params Params) ([]byte, error) {
	columns := params.Columns
	if columns <= 0 {
		columns = 1728
	}
	rows := params.Rows
	if rows <= 0 {
		rows = ccitt.AutoDetectHeight
	}
	sf := ccitt.Group3
	if params.K < 0 {
		sf = ccitt.Group4
	}

	r := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, rows, &ccitt.Options{
		Align:  params.EncodedByteAlign,
		Invert: params.BlackIs1,
	})
	out, err := io.ReadAll(r)
	if err != nil && len(out) == 0 {
		return nil, fmt.Errorf("ccittfax: %w", err)
	}
	return out, nil
}
