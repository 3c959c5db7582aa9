package arena

import "testing"

func TestStoreAllocGet(t *testing.T) {
	a := New()
	s := NewStore[int](a, 0)
	r := s.Alloc(41)
	if !r.IsValid() {
		t.Fatalf("ref should be valid")
	}
	p := s.Get(r)
	if p == nil || *p != 41 {
		t.Fatalf("expected 41, got %v", p)
	}
}

func TestZeroRefIsInvalid(t *testing.T) {
	a := New()
	s := NewStore[string](a, 0)
	var zero Ref[string]
	if zero.IsValid() {
		t.Fatalf("zero ref must be invalid")
	}
	if s.Get(zero) != nil {
		t.Fatalf("zero ref must not resolve")
	}
}

func TestResetInvalidatesRefs(t *testing.T) {
	a := New()
	s := NewStore[int](a, 0)
	r := s.Alloc(7)
	a.Reset()
	if s.Get(r) != nil {
		t.Fatalf("stale ref resolved after reset")
	}
	// A fresh allocation at the same index must not be reachable through
	// the stale handle either.
	r2 := s.Alloc(8)
	if s.Get(r) != nil {
		t.Fatalf("stale ref aliased a new allocation")
	}
	if p := s.Get(r2); p == nil || *p != 8 {
		t.Fatalf("new ref should resolve after reset")
	}
}

func TestResetInvalidatesSlices(t *testing.T) {
	a := New()
	s := NewStore[byte](a, 0)
	sl := s.AllocSlice([]byte{1, 2, 3})
	if got := s.View(sl); len(got) != 3 || got[1] != 2 {
		t.Fatalf("unexpected view %v", got)
	}
	a.Reset()
	if s.View(sl) != nil {
		t.Fatalf("stale slice resolved after reset")
	}
}

func TestEmptySlice(t *testing.T) {
	a := New()
	s := NewStore[int](a, 0)
	sl := s.AllocSlice(nil)
	if sl.Len() != 0 {
		t.Fatalf("expected empty slice")
	}
	if got := s.View(sl); got == nil || len(got) != 0 {
		t.Fatalf("empty view should resolve to a zero-length slice")
	}
}

func TestResetTruncatesAllStores(t *testing.T) {
	a := New()
	ints := NewStore[int](a, 0)
	strs := NewStore[string](a, 0)
	ints.Alloc(1)
	strs.Alloc("x")
	a.Reset()
	if ints.Len() != 0 || strs.Len() != 0 {
		t.Fatalf("reset should empty every registered store")
	}
}
