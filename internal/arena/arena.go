package arena

// Arena owns every store registered against it and frees them together.
// A whole declaration batch is allocated out of one arena; nothing in it
// is ever freed individually, and nothing in it runs cleanup logic when
// the arena is dropped or reset.
type Arena struct {
	gen    Generation
	stores []func()
}

// Generation distinguishes allocations made before and after a Reset.
// Handles minted under an older generation are rejected on access.
type Generation uint32

// New creates an empty arena. Generation starts at 1 so that the zero
// value of a handle never matches a live allocation.
func New() *Arena {
	return &Arena{gen: 1}
}

// Generation returns the current generation.
func (a *Arena) Generation() Generation { return a.gen }

// Register attaches a truncation hook to the arena's reset cycle.
func (a *Arena) Register(truncate func()) {
	a.stores = append(a.stores, truncate)
}

// Reset bulk-frees the arena: every registered store is truncated and the
// generation advances, invalidating all previously issued handles. Cost is
// proportional to the number of stores, never to the number of values.
func (a *Arena) Reset() {
	a.gen++
	for _, truncate := range a.stores {
		truncate()
	}
}
