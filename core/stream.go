package core

import (
	"fmt"

	"github.com/dimdasci/pdfs-api/internal/filters"
)

// Filters returns the filter chain of a stream or inline image dictionary
// together with the matching decode parameters.
func Filters(dict Dict) ([]string, []filters.Params) {
	filterKey, parmsKey := "Filter", "DecodeParms"
	if !dict.Has(filterKey) && dict.Has("F") {
		filterKey = "F"
	}
	if !dict.Has(parmsKey) && dict.Has("DP") {
		parmsKey = "DP"
	}

	var names []string
	switch f := dict.Get(filterKey).(type) {
	case Name:
		names = []string{string(f)}
	case Array:
		for _, o := range f {
			if n, ok := o.(Name); ok {
				names = append(names, string(n))
			}
		}
	}

	params := make([]filters.Params, len(names))
	switch dp := dict.Get(parmsKey).(type) {
	case Dict:
		if len(params) > 0 {
			params[0] = paramsFromDict(dp)
		}
	case Array:
		for i := 0; i < len(params) && i < len(dp); i++ {
			if d, ok := dp[i].(Dict); ok {
				params[i] = paramsFromDict(d)
			}
		}
	}
	return names, params
}

func paramsFromDict(d Dict) filters.Params {
	p := filters.Params{}
	if v, ok := d.GetInt("Predictor"); ok {
		p.Predictor = int(v)
	}
	if v, ok := d.GetInt("Colors"); ok {
		p.Colors = int(v)
	}
	if v, ok := d.GetInt("BitsPerComponent"); ok {
		p.BitsPerComponent = int(v)
	}
	if v, ok := d.GetInt("Columns"); ok {
		p.Columns = int(v)
	}
	if v, ok := d.GetInt("EarlyChange"); ok {
		ec := int(v)
		p.EarlyChange = &ec
	}
	if v, ok := d.GetInt("K"); ok {
		p.K = int(v)
	}
	if v, ok := d.GetInt("Rows"); ok {
		p.Rows = int(v)
	}
	if v, ok := d.GetBool("BlackIs1"); ok {
		p.BlackIs1 = bool(v)
	}
	if v, ok := d.GetBool("EncodedByteAlign"); ok {
		p.EncodedByteAlign = bool(v)
	}
	return p
}

// Decode applies the stream's filter chain. Image codecs such as DCTDecode
// are left encoded; see DecodeUntilImage.
func (s *Stream) Decode() ([]byte, error) {
	data, _, err := s.DecodeUntilImage()
	return data, err
}

// DecodeUntilImage runs the filter chain up to the first image codec and
// returns that codec's name ("" when the chain fully decoded).
func (s *Stream) DecodeUntilImage() ([]byte, string, error) {
	return DecodeWith(s.Dict, s.Data)
}

// DecodeWith decodes data using the filters named in dict.
func DecodeWith(dict Dict, data []byte) ([]byte, string, error) {
	names, params := Filters(dict)
	for i, name := range names {
		if filters.Passthrough(name) {
			return data, name, nil
		}
		out, err := filters.Decode(name, data, params[i])
		if err != nil {
			return nil, "", fmt.Errorf("filter %d (%s): %w", i, name, err)
		}
		data = out
	}
	return data, "", nil
}
