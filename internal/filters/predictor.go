package filters

import "fmt"

// unpredict reverses the TIFF or PNG predictor named in params.
func unpredict(data []byte, params Params) ([]byte, error) {
	switch p := params.Predictor; {
	case p <= 1:
		return data, nil
	case p == 2:
		return tiffPredictor(data, params)
	case p >= 10 && p <= 15:
		return pngPredictor(data, params)
	default:
		return nil, fmt.Errorf("unsupported predictor %d", p)
	}
}

// rowBytes is the byte width of one sample row without the PNG tag byte.
func rowBytes(params Params) int {
	return (params.columns()*params.colors()*params.bpc() + 7) / 8
}

// pixelBytes is the distance to the corresponding byte of the left pixel.
func pixelBytes(params Params) int {
	n := (params.colors()*params.bpc() + 7) / 8
	if n < 1 {
		return 1
	}
	return n
}

func tiffPredictor(data []byte, params Params) ([]byte, error) {
	if params.bpc() != 8 {
		return nil, fmt.Errorf("tiff predictor: %d bits per component not supported", params.bpc())
	}
	stride := rowBytes(params)
	colors := params.colors()
	out := make([]byte, len(data))
	copy(out, data)
	for start := 0; start+stride <= len(out); start += stride {
		row := out[start : start+stride]
		for i := colors; i < len(row); i++ {
			row[i] += row[i-colors]
		}
	}
	return out, nil
}

func pngPredictor(data []byte, params Params) ([]byte, error) {
	stride := rowBytes(params)
	bpp := pixelBytes(params)
	rows := len(data) / (stride + 1)
	if rows == 0 && len(data) > 0 {
		return nil, fmt.Errorf("png predictor: %d bytes shorter than one row of %d", len(data), stride+1)
	}

	out := make([]byte, rows*stride)
	prev := make([]byte, stride)
	for r := 0; r < rows; r++ {
		in := data[r*(stride+1):]
		tag := in[0]
		src := in[1 : stride+1]
		cur := out[r*stride : (r+1)*stride]
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]
			switch tag {
			case 0:
				cur[i] = src[i]
			case 1:
				cur[i] = src[i] + left
			case 2:
				cur[i] = src[i] + up
			case 3:
				cur[i] = src[i] + byte((int(left)+int(up))/2)
			case 4:
				cur[i] = src[i] + paeth(left, up, upLeft)
			default:
				return nil, fmt.Errorf("png predictor: unknown row filter %d in row %d", tag, r)
			}
		}
		prev = cur
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
