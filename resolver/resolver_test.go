package resolver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dimdasci/pdfs-api/core"
)

type mapReader map[int]core.Object

func (m mapReader) ResolveReference(ref core.IndirectRef) (core.Object, error) {
	if o, ok := m[ref.Number]; ok {
		return o, nil
	}
	return nil, fmt.Errorf("object %d not found", ref.Number)
}

func ref(n int) core.IndirectRef { return core.IndirectRef{Number: n} }

// TestResolveChain tests references to references
func TestResolveChain(t *testing.T) {
	r := NewResolver(mapReader{1: ref(2), 2: core.Int(7)})
	got, err := r.Resolve(ref(1))
	if err != nil || got != core.Int(7) {
		t.Errorf("expected 7, got %v (%v)", got, err)
	}
	got, err = r.Resolve(core.Name("X"))
	if err != nil || got != core.Name("X") {
		t.Errorf("direct objects should pass through, got %v", got)
	}
}

// TestResolveCycle tests a self-referencing chain
func TestResolveCycle(t *testing.T) {
	r := NewResolver(mapReader{1: ref(2), 2: ref(1)})
	if _, err := r.Resolve(ref(1)); !errors.Is(err, ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
}

// TestResolveDeep tests expansion and shared branches
func TestResolveDeep(t *testing.T) {
	shared := core.Dict{"V": core.Int(1)}
	r := NewResolver(mapReader{1: shared, 2: core.Dict{"Self": ref(2)}})

	got, err := r.ResolveDeep(core.Array{ref(1), ref(1)})
	if err != nil {
		t.Fatalf("ResolveDeep failed: %v", err)
	}
	arr := got.(core.Array)
	if arr[1].(core.Dict)["V"] != core.Int(1) {
		t.Errorf("unexpected expansion %v", arr)
	}

	if _, err := r.ResolveDeep(ref(2)); !errors.Is(err, ErrCycle) {
		t.Errorf("expected ErrCycle for self reference, got %v", err)
	}
}

// TestResolveMaxDepth tests the depth option
func TestResolveMaxDepth(t *testing.T) {
	objs := mapReader{}
	for i := 1; i < 10; i++ {
		objs[i] = ref(i + 1)
	}
	objs[10] = core.Null{}
	r := NewResolver(objs, WithMaxDepth(5))
	if _, err := r.Resolve(ref(1)); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("expected ErrMaxDepth, got %v", err)
	}
}

// TestTypedHelpers tests Dict, Array and Number
func TestTypedHelpers(t *testing.T) {
	r := NewResolver(mapReader{
		1: core.Dict{"A": core.Int(1)},
		2: &core.Stream{Dict: core.Dict{"B": core.Int(2)}},
		3: core.Array{core.Int(1)},
		4: core.Real(2.5),
	})
	if d, ok, err := r.Dict(ref(1)); err != nil || !ok || d["A"] != core.Int(1) {
		t.Errorf("Dict(1) = %v %v %v", d, ok, err)
	}
	if d, ok, _ := r.Dict(ref(2)); !ok || d["B"] != core.Int(2) {
		t.Errorf("Dict(2) should return the stream dictionary, got %v", d)
	}
	if _, ok, _ := r.Dict(ref(3)); ok {
		t.Error("Dict on an array should report false")
	}
	if a, ok, _ := r.Array(ref(3)); !ok || len(a) != 1 {
		t.Errorf("Array(3) = %v", a)
	}
	if v, ok := r.Number(ref(4)); !ok || v != 2.5 {
		t.Errorf("Number(4) = %v %v", v, ok)
	}
	if _, ok, err := r.Dict(nil); ok || err != nil {
		t.Error("Dict(nil) should be empty without error")
	}
}

// TestGuard tests nesting and cycles
func TestGuard(t *testing.T) {
	g := NewGuard(2)
	if err := g.Enter(ref(1)); err != nil {
		t.Fatal(err)
	}
	if err := g.Enter(ref(1)); !errors.Is(err, ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
	if err := g.Enter(ref(2)); err != nil {
		t.Fatal(err)
	}
	if err := g.Enter(ref(3)); !errors.Is(err, ErrMaxDepth) {
		t.Errorf("expected ErrMaxDepth, got %v", err)
	}
	g.Leave(ref(2))
	g.Leave(ref(1))
	if g.Depth() != 0 {
		t.Errorf("expected depth 0, got %d", g.Depth())
	}
}
