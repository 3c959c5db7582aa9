// Package ty models the structural type expressions referenced by
// declarations. Nodes are arena-backed and identified by TyID; the graph
// is a DAG (children are allocated before parents) and is never mutated
// after construction.
package ty

import (
	"fmt"

	"declgraph/internal/source"
)

// TyID identifies a type node inside one Store.
type TyID uint32

// NoTyID marks the absence of a type.
const NoTyID TyID = 0

// Phase distinguishes the resolution phase a node belongs to. Declaration
// graphs hold decl-phase nodes only; locl-phase nodes exist during type
// checking and are rejected by the wire codec when a decl node is expected.
type Phase uint8

const (
	PhaseDecl Phase = iota
	PhaseLocl
)

func (p Phase) String() string {
	switch p {
	case PhaseDecl:
		return "decl"
	case PhaseLocl:
		return "locl"
	default:
		return fmt.Sprintf("Phase(%d)", p)
	}
}

// Kind enumerates the supported shapes of type expressions.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindPrim
	KindApply
	KindOption
	KindLike
	KindTuple
	KindFun
	KindGeneric
	KindUnion
	KindIntersection
	KindAny
	KindMixed
	KindNothing
	KindThis
	KindAccess
)

func (k Kind) String() string {
	switch k {
	case KindPrim:
		return "prim"
	case KindApply:
		return "apply"
	case KindOption:
		return "option"
	case KindLike:
		return "like"
	case KindTuple:
		return "tuple"
	case KindFun:
		return "fun"
	case KindGeneric:
		return "generic"
	case KindUnion:
		return "union"
	case KindIntersection:
		return "intersection"
	case KindAny:
		return "any"
	case KindMixed:
		return "mixed"
	case KindNothing:
		return "nothing"
	case KindThis:
		return "this"
	case KindAccess:
		return "access"
	default:
		return "invalid"
	}
}

// Prim enumerates primitive types.
type Prim uint8

const (
	PrimNull Prim = iota
	PrimVoid
	PrimInt
	PrimBool
	PrimFloat
	PrimString
	PrimArraykey
	PrimNum
	PrimResource
)

func (p Prim) String() string {
	switch p {
	case PrimNull:
		return "null"
	case PrimVoid:
		return "void"
	case PrimInt:
		return "int"
	case PrimBool:
		return "bool"
	case PrimFloat:
		return "float"
	case PrimString:
		return "string"
	case PrimArraykey:
		return "arraykey"
	case PrimNum:
		return "num"
	case PrimResource:
		return "resource"
	default:
		return fmt.Sprintf("Prim(%d)", p)
	}
}

// Node is one type expression. Reason records where the type was written
// and is excluded from position-insensitive identity. Payload fields are
// used per kind:
//
//	prim:         Prim
//	apply:        Name (class/alias name), Args
//	option, like: Elem
//	tuple:        Args (elements, in order)
//	fun:          Args (parameters, in order), Ret
//	generic:      Name
//	union, intersection: Args (members)
//	access:       Elem (root type), Name (type constant name)
type Node struct {
	Kind   Kind
	Phase  Phase
	Reason source.Pos
	Prim   Prim
	Name   source.StringID
	Elem   TyID
	Args   []TyID
	Ret    TyID
}
