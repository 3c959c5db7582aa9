package decl

import (
	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// ClassConstFromKind tags the origin side of a class-constant reference.
type ClassConstFromKind uint8

const (
	// ConstFromSelf marks a self::X reference.
	ConstFromSelf ClassConstFromKind = iota
	// ConstFromClass marks a C::X reference to a named class.
	ConstFromClass
)

// ClassConstFrom records which class a constant initializer read a
// constant from: the declaring class itself, or a named class.
type ClassConstFrom struct {
	Kind  ClassConstFromKind
	Class source.StringID // set for ConstFromClass
}

// FromSelf builds a self:: origin.
func FromSelf() ClassConstFrom {
	return ClassConstFrom{Kind: ConstFromSelf}
}

// FromClass builds an origin naming another class.
func FromClass(class source.StringID) ClassConstFrom {
	return ClassConstFrom{Kind: ConstFromClass, Class: class}
}

// ClassConstRef names one constant read by a constant initializer.
//
// Recording these per constant is what lets cycle detection work without
// re-walking initializer expressions:
//
//	class C { const int A = D::A; }
//	class D { const int A = C::A; }
//
// C::A carries a ref to D::A and vice versa; an external pass can walk the
// refs alone to find the cycle.
type ClassConstRef struct {
	From ClassConstFrom
	Name source.StringID
}

// ConstDecl is a free (file-level) constant.
type ConstDecl struct {
	Pos  source.Pos
	Type ty.TyID
}

// ClassConst is a class-level constant.
type ClassConst struct {
	// Synthesized constants were introduced by the compiler, not written
	// in source.
	Synthesized bool
	// Abstract constants are declared without a value.
	Abstract bool
	Pos      source.Pos
	Type     ty.TyID
	// Origin names the class that originally declared the constant,
	// distinguishing inherited from locally-declared constants.
	Origin source.StringID
	// Refs lists every constant transitively read by the initializer
	// within the same batch.
	Refs []ClassConstRef
}
