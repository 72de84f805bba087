package ir

import "fortio.org/safecast"

// Ref is a generational handle into one of the Context arenas.
// The zero Ref is the null handle; generations start at 1, so a Ref
// that was never allocated can never dereference successfully.
type Ref struct {
	index uint32
	gen   uint32
}

// Valid reports whether r is a non-null handle. It says nothing about
// whether the slot is still live; ask the owning arena for that.
func (r Ref) Valid() bool { return r.gen != 0 }

// Index returns the slot index. Used for debug labels only.
func (r Ref) Index() uint32 { return r.index }

type slot[T any] struct {
	value T
	gen   uint32
	live  bool
}

// Arena is generational slot storage. Deallocated slots go on a free
// list and are reused under a bumped generation, so handles to the old
// occupant keep missing instead of resolving to unrelated data.
type Arena[T any] struct {
	slots []slot[T]
	free  []uint32
}

// NewArena returns an arena whose backing storage is preallocated for
// capHint slots; zero is allowed.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{
		slots: make([]slot[T], 0, capHint),
	}
}

// AllocWith allocates a slot and initializes it with fn. fn receives
// the handle of the slot being created, so self-referential values can
// be built in one step.
func (a *Arena[T]) AllocWith(fn func(Ref) T) Ref {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.gen++
		s.live = true
		r := Ref{index: idx, gen: s.gen}
		s.value = fn(r)
		return r
	}
	idx, err := safecast.Conv[uint32](len(a.slots))
	if err != nil {
		panic("ir: arena index overflow")
	}
	r := Ref{index: idx, gen: 1}
	a.slots = append(a.slots, slot[T]{gen: 1, live: true})
	a.slots[idx].value = fn(r)
	return r
}

// Alloc allocates a slot holding value.
func (a *Arena[T]) Alloc(value T) Ref {
	return a.AllocWith(func(Ref) T { return value })
}

// Get returns the payload for r. The second result is false when the
// slot is absent: never allocated, already deallocated, or reused under
// a newer generation.
func (a *Arena[T]) Get(r Ref) (*T, bool) {
	if !r.Valid() || int(r.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[r.index]
	if !s.live || s.gen != r.gen {
		return nil, false
	}
	return &s.value, true
}

// Dealloc releases r's slot and returns the removed payload. An absent
// slot reports (zero, false) deterministically on every call; double
// deallocation is a defined no-op.
func (a *Arena[T]) Dealloc(r Ref) (T, bool) {
	var zero T
	if !r.Valid() || int(r.index) >= len(a.slots) {
		return zero, false
	}
	s := &a.slots[r.index]
	if !s.live || s.gen != r.gen {
		return zero, false
	}
	v := s.value
	s.value = zero
	s.live = false
	a.free = append(a.free, r.index)
	return v, true
}

// Valid reports whether r currently resolves to a live slot.
func (a *Arena[T]) Valid(r Ref) bool {
	_, ok := a.Get(r)
	return ok
}

// Len returns the number of live slots.
func (a *Arena[T]) Len() int {
	return len(a.slots) - len(a.free)
}
