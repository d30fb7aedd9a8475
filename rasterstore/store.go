// Package rasterstore is where rendered rasters are handed off. A store
// encodes each image and returns a ref that bundles point at.
package rasterstore

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/dimdasci/pdfs-api/render"
)

// Key names a raster. Page is 1-based; Layer is the layer index, or
// PageLayer or OutlineLayer for the two page-wide rasters.
type Key struct {
	DocumentID string
	Page       int
	Layer      int
}

const (
	PageLayer    = -1
	OutlineLayer = -2
)

// PageKey is the key of a full page raster
func PageKey(doc string, page int) Key {
	return Key{DocumentID: doc, Page: page, Layer: PageLayer}
}

// OutlineKey is the key of the page's object outlines
func OutlineKey(doc string, page int) Key {
	return Key{DocumentID: doc, Page: page, Layer: OutlineLayer}
}

// LayerKey is the key of a layer overlay
func LayerKey(doc string, page, layer int) Key {
	return Key{DocumentID: doc, Page: page, Layer: layer}
}

// Store accepts rasters
type Store interface {
	Put(ctx context.Context, key Key, img image.Image) (string, error)
	Has(ref string) bool
}

// Memory keeps encoded rasters in memory under random refs
type Memory struct {
	format render.Format

	mu   sync.RWMutex
	data map[string][]byte
	keys map[string]Key
}

// NewMemory returns an empty in-memory store
func NewMemory(format render.Format) *Memory {
	return &Memory{format: format, data: map[string][]byte{}, keys: map[string]Key{}}
}

func (m *Memory) Put(ctx context.Context, key Key, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := render.Encode(&buf, img, m.format); err != nil {
		return "", fmt.Errorf("encode raster: %w", err)
	}
	ref := uuid.New().String()
	m.mu.Lock()
	m.data[ref] = buf.Bytes()
	m.keys[ref] = key
	m.mu.Unlock()
	return ref, nil
}

func (m *Memory) Has(ref string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[ref]
	return ok
}

// Get returns the encoded bytes behind ref
func (m *Memory) Get(ref string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[ref]
	return b, ok
}

// KeyOf returns the key ref was stored under
func (m *Memory) KeyOf(ref string) (Key, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k, ok := m.keys[ref]
	return k, ok
}

// Len returns the number of stored rasters
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Dir writes rasters below a root directory as
// <doc>/pages/p001/page.png, <doc>/pages/p001/outline.png and
// <doc>/pages/p001/l000.png. Refs are paths relative to the root.
type Dir struct {
	Root   string
	format render.Format
}

// NewDir returns a store rooted at root
func NewDir(root string, format render.Format) *Dir {
	return &Dir{Root: root, format: format}
}

// Path returns the relative path of key
func (d *Dir) Path(key Key) string {
	name := "page"
	switch {
	case key.Layer == OutlineLayer:
		name = "outline"
	case key.Layer >= 0:
		name = fmt.Sprintf("l%03d", key.Layer)
	}
	return filepath.Join(key.DocumentID, "pages", fmt.Sprintf("p%03d", key.Page), name+"."+d.format.Ext())
}

func (d *Dir) Put(ctx context.Context, key Key, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := d.Path(key)
	full := filepath.Join(d.Root, ref)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create raster dir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create raster: %w", err)
	}
	if err := render.Encode(f, img, d.format); err != nil {
		f.Close()
		return "", fmt.Errorf("encode raster %s: %w", ref, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write raster %s: %w", ref, err)
	}
	return filepath.ToSlash(ref), nil
}

func (d *Dir) Has(ref string) bool {
	if ref == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(d.Root, filepath.FromSlash(ref)))
	return err == nil && !info.IsDir()
}
