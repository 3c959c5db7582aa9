package arena

import (
	"fmt"

	"fortio.org/safecast"
)

// Store keeps values of one type in a compact slice owned by an arena.
// Index 0 is reserved so the zero Ref is always invalid.
type Store[T any] struct {
	arena *Arena
	data  []T
}

// NewStore creates a store bound to the arena with an optional capacity hint.
func NewStore[T any](a *Arena, capacity uint32) *Store[T] {
	if capacity == 0 {
		capacity = 64
	}
	s := &Store[T]{
		arena: a,
		data:  make([]T, 1, capacity+1), // index 0 reserved for the invalid Ref
	}
	a.Register(s.truncate)
	return s
}

// Ref is a generation-checked handle into a Store.
type Ref[T any] struct {
	index uint32
	gen   Generation
}

// IsValid reports whether the ref was ever issued by a store.
func (r Ref[T]) IsValid() bool { return r.index != 0 }

// Alloc copies the value into the store and returns its handle.
func (s *Store[T]) Alloc(v T) Ref[T] {
	idx, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("arena store overflow: %w", err))
	}
	s.data = append(s.data, v)
	return Ref[T]{index: idx, gen: s.arena.gen}
}

// Get returns a pointer to the stored value, or nil for the zero ref, an
// out-of-range index, or a ref issued before the last Reset. The pointer is
// valid until the next Alloc on the same store.
func (s *Store[T]) Get(r Ref[T]) *T {
	if r.index == 0 || r.gen != s.arena.gen || int(r.index) >= len(s.data) {
		return nil
	}
	return &s.data[r.index]
}

// Len reports the number of stored values excluding the sentinel.
func (s *Store[T]) Len() int { return len(s.data) - 1 }

// Slice is a generation-checked view of a contiguous run of values.
type Slice[T any] struct {
	off    uint32
	length uint32
	gen    Generation
}

// Len reports the number of values in the view.
func (s Slice[T]) Len() int { return int(s.length) }

// AllocSlice copies the items into the store back to back and returns a
// borrowed view over them.
func (s *Store[T]) AllocSlice(items []T) Slice[T] {
	off, err := safecast.Conv[uint32](len(s.data))
	if err != nil {
		panic(fmt.Errorf("arena store overflow: %w", err))
	}
	n, err := safecast.Conv[uint32](len(items))
	if err != nil {
		panic(fmt.Errorf("arena slice overflow: %w", err))
	}
	s.data = append(s.data, items...)
	return Slice[T]{off: off, length: n, gen: s.arena.gen}
}

// View resolves a slice handle. Returns nil for views issued before the
// last Reset. The returned slice aliases store memory; callers must not
// hold it across a Reset.
func (s *Store[T]) View(sl Slice[T]) []T {
	if sl.gen != s.arena.gen || int(sl.off)+int(sl.length) > len(s.data) {
		return nil
	}
	if sl.length == 0 {
		return []T{}
	}
	return s.data[sl.off : sl.off+sl.length : sl.off+sl.length]
}

func (s *Store[T]) truncate() {
	// Keep the backing memory; only the contents are discarded.
	clear(s.data[1:])
	s.data = s.data[:1]
}
