package filters

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFilter is returned by Decode for filter names it does not know.
var ErrUnsupportedFilter = errors.New("unsupported filter")

// Params carries the subset of /DecodeParms entries the filters understand.
// Zero values mean "not set"; the filters apply PDF defaults.
type Params struct {
	Predictor        int
	Colors           int
	BitsPerComponent int
	Columns          int

	// EarlyChange is a pointer because 0 is meaningful for LZWDecode.
	EarlyChange *int

	K                int
	Rows             int
	BlackIs1         bool
	EncodedByteAlign bool
}

func (p Params) colors() int {
	if p.Colors <= 0 {
		return 1
	}
	return p.Colors
}

func (p Params) bpc() int {
	if p.BitsPerComponent <= 0 {
		return 8
	}
	return p.BitsPerComponent
}

func (p Params) columns() int {
	if p.Columns <= 0 {
		return 1
	}
	return p.Columns
}

// Passthrough reports whether name is an image codec left for the consumer.
func Passthrough(name string) bool {
	switch name {
	case "DCTDecode", "DCT", "JPXDecode", "JBIG2Decode":
		return true
	}
	return false
}

// Decode applies the named filter. Abbreviated inline-image names are
// accepted as well.
func Decode(name string, data []byte, params Params) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return FlateDecode(data, params)
	case "LZWDecode", "LZW":
		return LZWDecode(data, params)
	case "ASCIIHexDecode", "AHx":
		return ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return ASCII85Decode(data)
	case "RunLengthDecode", "RL":
		return RunLengthDecode(data)
	case "CCITTFaxDecode", "CCF":
		return CCITTFaxDecode(data, params)
	}
	if Passthrough(name) {
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFilter, name)
}
