package reader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	"github.com/dimdasci/pdfs-api/core"
)

// ErrUnsupportedImage is returned for image codecs that are recognised but
// not decoded (JPX, JBIG2).
var ErrUnsupportedImage = errors.New("unsupported image encoding")

// Image is a decoded image XObject or inline image.
type Image struct {
	Width  int
	Height int
	// Stencil images paint the current fill color; Img is then an
	// *image.Alpha whose opaque pixels are painted.
	Stencil bool
	Img     image.Image
	// Raw holds the stream bytes before decoding, used for fingerprints.
	Raw []byte
}

// LoadImage decodes an image XObject. Results are cached per stream.
func (d *Document) LoadImage(s *core.Stream, resources core.Dict) (*Image, error) {
	d.mu.RLock()
	img, ok := d.images[s]
	d.mu.RUnlock()
	if ok {
		return img, nil
	}

	img, err := d.decodeImage(s.Dict, s.Data, resources)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	if d.images != nil {
		d.images[s] = img
	}
	d.mu.Unlock()
	return img, nil
}

// LoadInlineImage decodes the dictionary and data of a BI/ID/EI sequence.
func (d *Document) LoadInlineImage(dict core.Dict, data []byte, resources core.Dict) (*Image, error) {
	return d.decodeImage(ExpandInlineImageDict(dict), data, resources)
}

var inlineKeys = map[string]string{
	"BPC": "BitsPerComponent",
	"CS":  "ColorSpace",
	"D":   "Decode",
	"DP":  "DecodeParms",
	"F":   "Filter",
	"H":   "Height",
	"IM":  "ImageMask",
	"I":   "Interpolate",
	"W":   "Width",
}

var inlineNames = map[core.Name]core.Name{
	"AHx": "ASCIIHexDecode",
	"A85": "ASCII85Decode",
	"LZW": "LZWDecode",
	"Fl":  "FlateDecode",
	"RL":  "RunLengthDecode",
	"CCF": "CCITTFaxDecode",
	"DCT": "DCTDecode",
}

// ExpandInlineImageDict rewrites abbreviated inline image keys and filter
// names to their full forms.
func ExpandInlineImageDict(dict core.Dict) core.Dict {
	out := make(core.Dict, len(dict))
	for k, v := range dict {
		if full, ok := inlineKeys[k]; ok {
			k = full
		}
		if k == "Filter" {
			v = expandFilterNames(v)
		}
		out[k] = v
	}
	return out
}

func expandFilterNames(v core.Object) core.Object {
	switch f := v.(type) {
	case core.Name:
		if full, ok := inlineNames[f]; ok {
			return full
		}
	case core.Array:
		out := make(core.Array, len(f))
		for i, o := range f {
			out[i] = expandFilterNames(o)
		}
		return out
	}
	return v
}

func (d *Document) decodeImage(dict core.Dict, raw []byte, resources core.Dict) (*Image, error) {
	w, _ := dict.GetInt("Width")
	h, _ := dict.GetInt("Height")
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image size %dx%d", w, h)
	}
	if int64(w)*int64(h) > 1<<28 {
		return nil, fmt.Errorf("image size %dx%d too large", w, h)
	}

	data, codec, err := core.DecodeWith(dict, raw)
	if err != nil {
		return nil, err
	}
	img := &Image{Width: int(w), Height: int(h), Raw: raw}

	if mask, _ := dict.GetBool("ImageMask"); mask {
		img.Stencil = true
		invert := false
		if dec, ok := dict.GetArray("Decode"); ok {
			if v, ok := dec.GetNumber(0); ok && v == 1 {
				invert = true
			}
		}
		img.Img = stencilMask(data, img.Width, img.Height, invert)
		return img, nil
	}

	switch codec {
	case "":
	case "DCTDecode", "DCT":
		decoded, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("DCTDecode: %w", err)
		}
		img.Img = decoded
		return d.applySoftMask(img, dict)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, codec)
	}

	cs := DeviceGray
	if obj := dict.Get("ColorSpace"); obj != nil {
		if cs, err = d.ColorSpace(obj, resources); err != nil {
			return nil, err
		}
	}
	if cs.Family == "Pattern" || cs.N == 0 {
		return nil, fmt.Errorf("image with %s color space", cs.Family)
	}

	bpc := 8
	if v, ok := dict.GetInt("BitsPerComponent"); ok {
		bpc = int(v)
	}
	switch bpc {
	case 1, 2, 4, 8, 16:
	default:
		return nil, fmt.Errorf("unsupported bits per component: %d", bpc)
	}

	decode := make([]float64, 0, 2*cs.N)
	if arr, ok := dict.GetArray("Decode"); ok {
		if nums, ok := arr.Numbers(); ok && len(nums) >= 2*cs.N {
			decode = nums[:2*cs.N]
		}
	}
	if len(decode) == 0 {
		for i := 0; i < cs.N; i++ {
			lo, hi := cs.DecodeDefault(i, bpc)
			decode = append(decode, lo, hi)
		}
	}

	img.Img, err = samplesToImage(data, img.Width, img.Height, bpc, cs, decode)
	if err != nil {
		return nil, err
	}
	return d.applySoftMask(img, dict)
}

// samplesToImage unpacks row-aligned samples of any supported depth.
func samplesToImage(data []byte, w, h, bpc int, cs *ColorSpace, decode []float64) (*image.NRGBA, error) {
	n := cs.N
	rowBytes := (w*n*bpc + 7) / 8
	if len(data) < rowBytes*h {
		// tolerate short streams; missing rows stay transparent
		h = len(data) / rowBytes
		if h == 0 {
			return nil, fmt.Errorf("insufficient image data: got %d bytes, need %d per row", len(data), rowBytes)
		}
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	maxVal := float64(int(1)<<bpc - 1)
	comps := make([]float64, n)
	// palette lookups dominate for 8-bit gray and indexed images
	cache := map[uint64]color.NRGBA{}

	for y := 0; y < h; y++ {
		row := data[y*rowBytes : (y+1)*rowBytes]
		bit := 0
		for x := 0; x < w; x++ {
			var key uint64
			for k := 0; k < n; k++ {
				v := readBits(row, bit, bpc)
				bit += bpc
				key = key<<16 | uint64(v)
				lo, hi := decode[2*k], decode[2*k+1]
				comps[k] = lo + float64(v)*(hi-lo)/maxVal
			}
			c, ok := cache[key]
			if !ok || n > 4 {
				c = cs.RGBA(comps)
				if n <= 4 && len(cache) < 1<<16 {
					cache[key] = c
				}
			}
			i := out.PixOffset(x, y)
			out.Pix[i+0] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			out.Pix[i+3] = 255
		}
	}
	return out, nil
}

func readBits(row []byte, bit, n int) uint32 {
	switch n {
	case 8:
		return uint32(row[bit/8])
	case 16:
		return uint32(row[bit/8])<<8 | uint32(row[bit/8+1])
	}
	b := row[bit/8]
	shift := 8 - n - bit%8
	return uint32(b>>uint(shift)) & (1<<uint(n) - 1)
}

func stencilMask(data []byte, w, h int, invert bool) *image.Alpha {
	out := image.NewAlpha(image.Rect(0, 0, w, h))
	rowBytes := (w + 7) / 8
	for y := 0; y < h && (y+1)*rowBytes <= len(data); y++ {
		row := data[y*rowBytes:]
		for x := 0; x < w; x++ {
			bit := row[x/8]>>(7-uint(x%8))&1 == 1
			// sample 0 paints unless /Decode is [1 0]
			if bit == invert {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// applySoftMask multiplies a same-sized /SMask into the image alpha.
func (d *Document) applySoftMask(img *Image, dict core.Dict) (*Image, error) {
	obj, err := d.resolver.Resolve(dict.Get("SMask"))
	if err != nil {
		return img, nil
	}
	s, ok := obj.(*core.Stream)
	if !ok {
		return img, nil
	}
	mask, err := d.decodeImage(s.Dict, s.Data, nil)
	if err != nil || mask.Width != img.Width || mask.Height != img.Height {
		return img, nil
	}

	b := img.Img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.Img.At(x, y)).(color.NRGBA)
			g := color.GrayModel.Convert(mask.Img.At(x, y)).(color.Gray)
			c.A = uint8(math.Round(float64(c.A) * float64(g.Y) / 255))
			out.SetNRGBA(x, y, c)
		}
	}
	img.Img = out
	return img, nil
}
