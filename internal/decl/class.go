package decl

import (
	"fmt"

	"declgraph/internal/arena"
	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// ClassKind separates the class-like declaration forms.
type ClassKind uint8

const (
	KindClass ClassKind = iota
	KindInterface
	KindTrait
	KindEnum
)

func (k ClassKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindTrait:
		return "trait"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("ClassKind(%d)", k)
	}
}

// ConsistentKind records how constructor consistency was established.
type ConsistentKind uint8

const (
	Inconsistent ConsistentKind = iota
	ConsistentConstruct
	FinalClass
)

func (k ConsistentKind) String() string {
	switch k {
	case Inconsistent:
		return "inconsistent"
	case ConsistentConstruct:
		return "consistent_construct"
	case FinalClass:
		return "final_class"
	default:
		return fmt.Sprintf("ConsistentKind(%d)", k)
	}
}

// Construct is the optional constructor paired with its consistency marker.
// Elt is the zero ref when the class declares no constructor.
type Construct struct {
	Elt         arena.Ref[ClassElt]
	Consistency ConsistentKind
}

// XhpEnumValueKind tags the payload of an xhp attribute enum value.
type XhpEnumValueKind uint8

const (
	XhpValueInt XhpEnumValueKind = iota
	XhpValueString
)

// XhpEnumValue is one allowed value of an xhp attribute enum.
type XhpEnumValue struct {
	Kind XhpEnumValueKind
	Int  int64
	Str  source.StringID
}

// DeclError is an error accumulated while declaring the class.
type DeclError struct {
	Pos source.Pos
	Msg source.StringID
}

// NameSet is a set of interned names. Iteration order carries no meaning.
type NameSet map[source.StringID]struct{}

// Has reports membership.
func (s NameSet) Has(id source.StringID) bool {
	_, ok := s[id]
	return ok
}

// EnumType is the enum-specific metadata on an enum class declaration.
// Constraint is NoTyID when absent.
type EnumType struct {
	Base       ty.TyID
	Constraint ty.TyID
	Includes   []ty.TyID
	EnumClass  bool
}

// ClassType is the aggregate declaration of a class, interface, trait or
// enum. Member maps are keyed by interned member name; iteration order is
// not meaningful. Refs into member stores resolve through the owning Unit.
type ClassType struct {
	NeedInit bool
	// MembersFullyKnown is false when at least one ancestor could not be
	// found, so the accessible member set is incomplete.
	MembersFullyKnown bool
	Abstract          bool
	Final             bool
	Const             bool
	// DeferredInitMembers may be non-empty for abstract classes and
	// traits, where protected member initialization can be delayed.
	DeferredInitMembers NameSet
	Kind                ClassKind
	IsXHP               bool
	HasXHPKeyword       bool
	IsDisposable        bool
	Name                source.StringID
	Pos                 source.Pos
	Tparams             []Tparam
	WhereConstraints    []WhereConstraint

	Consts     map[source.StringID]arena.Ref[ClassConst]
	Typeconsts map[source.StringID]arena.Ref[TypeconstType]
	Props      map[source.StringID]arena.Ref[ClassElt]
	SProps     map[source.StringID]arena.Ref[ClassElt]
	Methods    map[source.StringID]arena.Ref[ClassElt]
	SMethods   map[source.StringID]arena.Ref[ClassElt]
	Construct  Construct

	// Ancestors maps every transitive parent (classes, interfaces, used
	// traits) to its instantiated type.
	Ancestors          map[source.StringID]ty.TyID
	SupportDynamicType bool
	ReqAncestors       []Requirement
	// ReqAncestorsExtends is the extends-closure of ReqAncestors.
	ReqAncestorsExtends NameSet
	Extends             NameSet

	// Enum is the zero ref except on enum declarations.
	Enum arena.Ref[EnumType]
	// SealedWhitelist is nil when the class is not sealed; an empty
	// non-nil set seals the class to no subtypes.
	SealedWhitelist NameSet
	XhpEnumValues   map[source.StringID][]XhpEnumValue
	DeclErrors      []DeclError
}
