package ty

import (
	"fmt"

	"fortio.org/safecast"

	"declgraph/internal/arena"
)

// Store holds all type nodes of one declaration batch in a compact slice.
// Index 0 is reserved for NoTyID. No structural deduplication is applied:
// every node carries its own reason position, so equal content is shared
// only when the producer hands out the same TyID.
type Store struct {
	nodes []Node
}

// NewStore creates a store registered with the batch arena, with an
// optional capacity hint.
func NewStore(a *arena.Arena, capacity uint32) *Store {
	if capacity == 0 {
		capacity = 128
	}
	s := &Store{
		nodes: make([]Node, 1, capacity+1),
	}
	a.Register(func() { s.nodes = s.nodes[:1] })
	return s
}

// New allocates a node and returns its TyID.
func (s *Store) New(n Node) TyID {
	if n.Kind == KindInvalid {
		return NoTyID
	}
	value, err := safecast.Conv[uint32](len(s.nodes))
	if err != nil {
		panic(fmt.Errorf("ty store overflow: %w", err))
	}
	id := TyID(value)
	s.nodes = append(s.nodes, n)
	return id
}

// Lookup returns the node for a TyID.
func (s *Store) Lookup(id TyID) (Node, bool) {
	if id == NoTyID || int(id) >= len(s.nodes) {
		return Node{}, false
	}
	return s.nodes[id], true
}

// MustLookup panics when id is invalid.
func (s *Store) MustLookup(id TyID) Node {
	n, ok := s.Lookup(id)
	if !ok {
		panic("ty: invalid TyID")
	}
	return n
}

// Len reports the number of nodes excluding the sentinel.
func (s *Store) Len() int { return len(s.nodes) - 1 }
