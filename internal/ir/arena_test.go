package ir_test

import (
	"testing"

	"cinder/internal/ir"
)

func TestArenaAllocGet(t *testing.T) {
	a := ir.NewArena[int](4)

	r1 := a.Alloc(10)
	r2 := a.Alloc(20)

	v1, ok := a.Get(r1)
	if !ok || *v1 != 10 {
		t.Fatalf("Get(r1) = %v, %v; want 10, true", v1, ok)
	}
	v2, ok := a.Get(r2)
	if !ok || *v2 != 20 {
		t.Fatalf("Get(r2) = %v, %v; want 20, true", v2, ok)
	}
	if a.Len() != 2 {
		t.Fatalf("Len() = %d; want 2", a.Len())
	}
}

func TestArenaZeroRefIsNull(t *testing.T) {
	a := ir.NewArena[int](0)
	a.Alloc(1)

	var zero ir.Ref
	if zero.Valid() {
		t.Fatal("zero Ref reports Valid")
	}
	if _, ok := a.Get(zero); ok {
		t.Fatal("Get(zero) succeeded")
	}
	if _, ok := a.Dealloc(zero); ok {
		t.Fatal("Dealloc(zero) succeeded")
	}
}

func TestArenaDeallocAbsentIsDeterministic(t *testing.T) {
	a := ir.NewArena[int](0)
	r := a.Alloc(42)

	v, ok := a.Dealloc(r)
	if !ok || v != 42 {
		t.Fatalf("first Dealloc = %v, %v; want 42, true", v, ok)
	}

	// Every later attempt reports absent; none may panic or return data.
	for k := 0; k < 3; k++ {
		v, ok := a.Dealloc(r)
		if ok || v != 0 {
			t.Fatalf("Dealloc #%d = %v, %v; want 0, false", k+2, v, ok)
		}
		if _, ok := a.Get(r); ok {
			t.Fatalf("Get after Dealloc #%d succeeded", k+2)
		}
	}
}

func TestArenaGenerationBlocksStaleHandles(t *testing.T) {
	a := ir.NewArena[string](0)

	old := a.Alloc("old")
	if _, ok := a.Dealloc(old); !ok {
		t.Fatal("Dealloc(old) failed")
	}

	// The freed slot is reused under a new generation.
	fresh := a.Alloc("fresh")
	if fresh.Index() != old.Index() {
		t.Fatalf("slot not reused: old index %d, fresh index %d", old.Index(), fresh.Index())
	}

	if _, ok := a.Get(old); ok {
		t.Fatal("stale handle resolved to reused slot")
	}
	v, ok := a.Get(fresh)
	if !ok || *v != "fresh" {
		t.Fatalf("Get(fresh) = %v, %v; want fresh, true", v, ok)
	}
}

func TestArenaAllocWithSeesOwnHandle(t *testing.T) {
	a := ir.NewArena[ir.Ref](0)

	r := a.AllocWith(func(self ir.Ref) ir.Ref { return self })

	v, ok := a.Get(r)
	if !ok || *v != r {
		t.Fatalf("self handle mismatch: stored %v, handle %v", v, r)
	}
}
