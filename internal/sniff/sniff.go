// Package sniff names the kind of a file from its leading bytes, so the CLI
// can say what it was given when the input is not a PDF.
package sniff

import (
	"archive/zip"
	"bytes"
	"strings"
)

// Kind is a recognised file kind
type Kind int

const (
	Unknown Kind = iota
	PDF
	DOCX
	ODT
	XLSX
	PPTX
	HTML
	PNG
	JPEG
	TIFF
)

func (k Kind) String() string {
	switch k {
	case PDF:
		return "PDF"
	case DOCX:
		return "DOCX"
	case ODT:
		return "ODT"
	case XLSX:
		return "XLSX"
	case PPTX:
		return "PPTX"
	case HTML:
		return "HTML"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case TIFF:
		return "TIFF"
	}
	return "Unknown"
}

// headerWindow matches how far the loader looks for the %PDF header
const headerWindow = 1024

// Detect inspects data. A %PDF header anywhere in the first kilobyte counts,
// as junk before the header is tolerated by the loader.
func Detect(data []byte) Kind {
	if bytes.Contains(data[:min(len(data), headerWindow)], []byte("%PDF-")) {
		return PDF
	}
	switch {
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return zipKind(data)
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return JPEG
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFF
	case looksLikeHTML(data):
		return HTML
	}
	return Unknown
}

func looksLikeHTML(data []byte) bool {
	head := strings.ToUpper(strings.TrimSpace(string(data[:min(len(data), 512)])))
	if strings.HasPrefix(head, "<!DOCTYPE HTML") || strings.HasPrefix(head, "<HTML") {
		return true
	}
	return strings.HasPrefix(head, "<?XML") && strings.Contains(head, "<HTML")
}

// zipKind tells office formats apart by the entries of the archive
func zipKind(data []byte) Kind {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Unknown
	}
	for _, f := range zr.File {
		if f.Name != "mimetype" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			break
		}
		buf := make([]byte, 256)
		n, _ := rc.Read(buf)
		rc.Close()
		if strings.Contains(string(buf[:n]), "application/vnd.oasis.opendocument.text") {
			return ODT
		}
	}
	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX
		}
	}
	return Unknown
}
