package decl

import (
	"fmt"

	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// Variance of a type parameter.
type Variance uint8

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

func (v Variance) String() string {
	switch v {
	case Invariant:
		return "invariant"
	case Covariant:
		return "covariant"
	case Contravariant:
		return "contravariant"
	default:
		return fmt.Sprintf("Variance(%d)", v)
	}
}

// ConstraintKind relates a type parameter (or where-clause side) to a type.
type ConstraintKind uint8

const (
	ConstraintAs ConstraintKind = iota
	ConstraintSuper
	ConstraintEq
)

func (k ConstraintKind) String() string {
	switch k {
	case ConstraintAs:
		return "as"
	case ConstraintSuper:
		return "super"
	case ConstraintEq:
		return "="
	default:
		return fmt.Sprintf("ConstraintKind(%d)", k)
	}
}

// TparamConstraint bounds a type parameter.
type TparamConstraint struct {
	Kind ConstraintKind
	Type ty.TyID
}

// Tparam is one generic parameter of a class, typedef or function.
type Tparam struct {
	Variance    Variance
	Name        source.PosID
	Constraints []TparamConstraint
	Reified     bool
}

// WhereConstraint is a class-level constraint between two types.
type WhereConstraint struct {
	Left  ty.TyID
	Kind  ConstraintKind
	Right ty.TyID
}

// Requirement records a require extends/implements constraint: the
// position of the hint that introduced it and the required type.
type Requirement struct {
	Pos  source.Pos
	Type ty.TyID
}
