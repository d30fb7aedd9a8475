package resolver

import (
	"errors"
	"fmt"

	"github.com/dimdasci/pdfs-api/core"
)

var (
	// ErrCycle reports an indirect reference that leads back to itself
	ErrCycle = errors.New("circular reference")
	// ErrMaxDepth reports nesting deeper than the configured limit
	ErrMaxDepth = errors.New("maximum depth exceeded")
)

// ObjectReader loads indirect objects
type ObjectReader interface {
	ResolveReference(ref core.IndirectRef) (core.Object, error)
}

// ObjectResolver follows indirect references. It keeps no per-call state,
// so one resolver may be shared by concurrent page workers.
type ObjectResolver struct {
	reader   ObjectReader
	maxDepth int
}

// Option configures the resolver
type Option func(*ObjectResolver)

// WithMaxDepth sets the maximum recursion depth (default: 100)
func WithMaxDepth(depth int) Option {
	return func(r *ObjectResolver) {
		r.maxDepth = depth
	}
}

// NewResolver creates a new object resolver
func NewResolver(reader ObjectReader, opts ...Option) *ObjectResolver {
	r := &ObjectResolver{reader: reader, maxDepth: 100}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxDepth returns the configured depth limit
func (r *ObjectResolver) MaxDepth() int { return r.maxDepth }

// Resolve follows obj while it is an indirect reference, including chains
// of references to references. Other objects are returned unchanged.
func (r *ObjectResolver) Resolve(obj core.Object) (core.Object, error) {
	seen := map[core.IndirectRef]bool{}
	for {
		ref, ok := obj.(core.IndirectRef)
		if !ok {
			return obj, nil
		}
		if seen[ref] {
			return nil, fmt.Errorf("%w: %s", ErrCycle, ref)
		}
		if len(seen) >= r.maxDepth {
			return nil, fmt.Errorf("%w resolving %s", ErrMaxDepth, ref)
		}
		seen[ref] = true
		next, err := r.reader.ResolveReference(ref)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", ref, err)
		}
		obj = next
	}
}

// ResolveDeep expands every reference inside dictionaries, arrays and
// stream dictionaries. A reference that appears again on its own path is a
// cycle; the same object reached by two branches is fine.
func (r *ObjectResolver) ResolveDeep(obj core.Object) (core.Object, error) {
	return r.deep(obj, map[core.IndirectRef]bool{}, 0)
}

func (r *ObjectResolver) deep(obj core.Object, path map[core.IndirectRef]bool, depth int) (core.Object, error) {
	if depth > r.maxDepth {
		return nil, ErrMaxDepth
	}
	switch v := obj.(type) {
	case core.IndirectRef:
		if path[v] {
			return nil, fmt.Errorf("%w: %s", ErrCycle, v)
		}
		resolved, err := r.reader.ResolveReference(v)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", v, err)
		}
		path[v] = true
		defer delete(path, v)
		return r.deep(resolved, path, depth+1)
	case core.Dict:
		out := make(core.Dict, len(v))
		for key, value := range v {
			rv, err := r.deep(value, path, depth+1)
			if err != nil {
				return nil, fmt.Errorf("/%s: %w", key, err)
			}
			out[key] = rv
		}
		return out, nil
	case core.Array:
		out := make(core.Array, len(v))
		for i, elem := range v {
			rv, err := r.deep(elem, path, depth+1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = rv
		}
		return out, nil
	case *core.Stream:
		d, err := r.deep(v.Dict, path, depth+1)
		if err != nil {
			return nil, err
		}
		return &core.Stream{Dict: d.(core.Dict), Data: v.Data}, nil
	}
	return obj, nil
}

// Dict resolves obj and requires a dictionary. A stream yields its
// dictionary. Null and missing values give (nil, false, nil).
func (r *ObjectResolver) Dict(obj core.Object) (core.Dict, bool, error) {
	if obj == nil {
		return nil, false, nil
	}
	v, err := r.Resolve(obj)
	if err != nil {
		return nil, false, err
	}
	switch d := v.(type) {
	case core.Dict:
		return d, true, nil
	case *core.Stream:
		return d.Dict, true, nil
	}
	return nil, false, nil
}

// Array resolves obj and requires an array
func (r *ObjectResolver) Array(obj core.Object) (core.Array, bool, error) {
	if obj == nil {
		return nil, false, nil
	}
	v, err := r.Resolve(obj)
	if err != nil {
		return nil, false, err
	}
	a, ok := v.(core.Array)
	return a, ok, nil
}

// Number resolves obj and requires an Int or Real
func (r *ObjectResolver) Number(obj core.Object) (float64, bool) {
	if obj == nil {
		return 0, false
	}
	v, err := r.Resolve(obj)
	if err != nil {
		return 0, false
	}
	return core.Number(v)
}

// Guard tracks nested resources, such as form XObjects being interpreted,
// to stop self-referencing or runaway nesting.
type Guard struct {
	max    int
	active map[core.IndirectRef]bool
	depth  int
}

// NewGuard allows up to max nested entries
func NewGuard(max int) *Guard {
	return &Guard{max: max, active: map[core.IndirectRef]bool{}}
}

// Enter registers ref as open. It fails if ref is already open or the
// depth limit is reached. A zero ref (direct object) only counts depth.
func (g *Guard) Enter(ref core.IndirectRef) error {
	if g.depth >= g.max {
		return fmt.Errorf("%w (%d)", ErrMaxDepth, g.max)
	}
	if ref != (core.IndirectRef{}) {
		if g.active[ref] {
			return fmt.Errorf("%w: %s", ErrCycle, ref)
		}
		g.active[ref] = true
	}
	g.depth++
	return nil
}

// Leave closes ref
func (g *Guard) Leave(ref core.IndirectRef) {
	delete(g.active, ref)
	if g.depth > 0 {
		g.depth--
	}
}

// Depth returns the current nesting depth
func (g *Guard) Depth() int { return g.depth }
