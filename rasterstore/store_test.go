package rasterstore

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/dimdasci/pdfs-api/render"
)

func TestMemory(t *testing.T) {
	m := NewMemory(render.PNG)
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	a, err := m.Put(context.Background(), PageKey("doc", 1), img)
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Put(context.Background(), LayerKey("doc", 1, 0), img)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("refs must be unique")
	}
	if !m.Has(a) || !m.Has(b) || m.Has("missing") {
		t.Error("unexpected Has result")
	}
	if data, ok := m.Get(a); !ok || len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Error("expected PNG bytes")
	}
	if k, ok := m.KeyOf(b); !ok || k.Layer != 0 || k.Page != 1 {
		t.Errorf("unexpected key %+v", k)
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 rasters, got %d", m.Len())
	}
}

func TestDir(t *testing.T) {
	root := t.TempDir()
	d := NewDir(root, render.TIFF)
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))

	ref, err := d.Put(context.Background(), LayerKey("doc", 3, 7), img)
	if err != nil {
		t.Fatal(err)
	}
	if ref != "doc/pages/p003/l007.tiff" {
		t.Errorf("unexpected ref %q", ref)
	}
	if _, err := os.Stat(filepath.Join(root, "doc", "pages", "p003", "l007.tiff")); err != nil {
		t.Errorf("raster not written: %v", err)
	}
	if !d.Has(ref) || d.Has("doc/pages/p003/page.tiff") || d.Has("") {
		t.Error("unexpected Has result")
	}

	ref, err = d.Put(context.Background(), PageKey("doc", 3), img)
	if err != nil || ref != "doc/pages/p003/page.tiff" {
		t.Errorf("unexpected page ref %q, %v", ref, err)
	}
	ref, err = d.Put(context.Background(), OutlineKey("doc", 3), img)
	if err != nil || ref != "doc/pages/p003/outline.tiff" {
		t.Errorf("unexpected outline ref %q, %v", ref, err)
	}
}

func TestPutCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	if _, err := NewMemory(render.PNG).Put(ctx, PageKey("d", 1), img); err == nil {
		t.Error("expected a context error")
	}
	if _, err := NewDir(t.TempDir(), render.PNG).Put(ctx, PageKey("d", 1), img); err == nil {
		t.Error("expected a context error")
	}
}
