// Package layers partitions a page's objects into renderable layers.
//
// A layer is keyed by (type, bucket). Buckets follow paint order so that
// stacking the layers bottom to top reproduces the page.
package layers

import (
	"fmt"

	"github.com/dimdasci/pdfs-api/model"
)

// Kind selects how z-indices are bucketed
type Kind int

const (
	// PerTypeRun starts a new bucket at every type change in paint order
	PerTypeRun Kind = iota
	// FixedWidth buckets by (z-1)/Width and splits each bucket by type
	FixedWidth
)

func (k Kind) String() string {
	if k == FixedWidth {
		return "fixed-width"
	}
	return "per-type-run"
}

// ParseKind reads the config spelling of a policy kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "per-type-run":
		return PerTypeRun, nil
	case "fixed-width":
		return FixedWidth, nil
	}
	return PerTypeRun, fmt.Errorf("unknown bucket policy %q", s)
}

// Policy configures Partition
type Policy struct {
	Kind  Kind
	Width int
}

// DefaultWidth is the fixed-width bucket size when Policy.Width is unset
const DefaultWidth = 10

// Partition assigns every object to exactly one layer. Objects must be in z
// order. Layers come back ordered by their lowest z-index.
func Partition(objects []model.Object, policy Policy) []model.Layer {
	var out []model.Layer
	index := map[[2]int]int{}
	bucket := 0
	for i, obj := range objects {
		switch policy.Kind {
		case FixedWidth:
			w := policy.Width
			if w <= 0 {
				w = DefaultWidth
			}
			bucket = (obj.ZIndex - 1) / w
		default:
			if i > 0 && obj.Type != objects[i-1].Type {
				bucket++
			}
		}

		key := [2]int{bucket, int(obj.Type)}
		li, ok := index[key]
		if !ok {
			li = len(out)
			index[key] = li
			out = append(out, model.Layer{Type: obj.Type, Bucket: bucket})
		}
		out[li].Objects = append(out[li].Objects, i)
		out[li].ObjectCount++
	}
	return out
}

// Of returns the layer containing object index i, or -1
func Of(layers []model.Layer, i int) int {
	for li, l := range layers {
		for _, oi := range l.Objects {
			if oi == i {
				return li
			}
		}
	}
	return -1
}
