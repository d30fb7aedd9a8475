package render

import (
	"context"
	"image"
	"runtime"
	"sync"

	"github.com/dimdasci/pdfs-api/model"
)

// RenderLayers draws one overlay per layer using up to workers goroutines.
// The result is indexed like layers.
func (r *Renderer) RenderLayers(ctx context.Context, box model.Rect, objects []model.Object, layers []model.Layer, workers int) ([]*image.RGBA, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]*image.RGBA, len(layers))
	errs := make([]error, len(layers))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(workers, len(layers)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for li := range jobs {
				out[li], errs[li] = r.RenderOverlay(ctx, box, objects, ByLayer(layers[li]))
			}
		}()
	}

feed:
	for li := range layers {
		select {
		case jobs <- li:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
