// Package decl is the in-memory model of declared (not yet folded or
// resolved) program entities: classes, typedefs, constants, functions,
// records and their members. A Unit owns one arena per compilation batch;
// every entity in the graph lives in that arena, is immutable once built,
// and is discarded only by dropping or resetting the whole unit.
//
// Cross-entity back-edges are recorded by name, never by direct reference,
// so the graph stays acyclic at the allocation level. Lazily-forced member
// fields are the only shared-mutable state; see the lazy package.
package decl
