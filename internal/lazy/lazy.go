// Package lazy provides memoized deferred computations for declaration
// fields that are expensive to resolve and often never read.
package lazy

import "sync"

// Cell is either an already-resolved value or a suspended producer forced
// at most once. Forcing is idempotent and safe from any number of
// concurrent readers: the first Force runs the producer exactly once and
// every reader observes the same final value. A Cell must not be copied
// after first use.
type Cell[T any] struct {
	once sync.Once
	fn   func() T
	v    T
}

// Of returns a pre-forced cell holding v.
func Of[T any](v T) *Cell[T] {
	c := &Cell[T]{v: v}
	c.once.Do(func() {})
	return c
}

// Defer returns a suspended cell. The producer must not force the cell it
// populates, directly or transitively; that would deadlock.
func Defer[T any](fn func() T) *Cell[T] {
	return &Cell[T]{fn: fn}
}

// Force resolves the cell, running the producer on first use.
func (c *Cell[T]) Force() T {
	c.once.Do(c.run)
	return c.v
}

func (c *Cell[T]) run() {
	c.v = c.fn()
	c.fn = nil
}
