package render

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/tiff"
)

// Format is a raster file format
type Format string

const (
	PNG  Format = "png"
	TIFF Format = "tiff"
)

// ParseFormat accepts png, tiff and tif
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "png":
		return PNG, nil
	case "tiff", "tif":
		return TIFF, nil
	}
	return "", fmt.Errorf("unknown raster format %q", s)
}

// Ext is the file extension without the dot
func (f Format) Ext() string { return string(f) }

// Encode writes img to w in format f
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG, "":
		return png.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unknown raster format %q", f)
}
