package decl

import (
	"fmt"

	"declgraph/internal/lazy"
	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// VisibilityKind enumerates member visibility levels.
type VisibilityKind uint8

const (
	VisPublic VisibilityKind = iota
	VisPrivate
	VisProtected
	VisInternal
)

func (k VisibilityKind) String() string {
	switch k {
	case VisPublic:
		return "public"
	case VisPrivate:
		return "private"
	case VisProtected:
		return "protected"
	case VisInternal:
		return "internal"
	default:
		return fmt.Sprintf("VisibilityKind(%d)", k)
	}
}

// Visibility is a member's access level. Scope names the class the member
// is private/protected to, or the module for internal members; it is
// NoStringID for public members.
type Visibility struct {
	Kind  VisibilityKind
	Scope source.StringID
}

// Public is the unrestricted visibility.
func Public() Visibility { return Visibility{Kind: VisPublic} }

// PrivateTo restricts the member to the named class.
func PrivateTo(class source.StringID) Visibility {
	return Visibility{Kind: VisPrivate, Scope: class}
}

// ProtectedTo restricts the member to the named class and its subtypes.
func ProtectedTo(class source.StringID) Visibility {
	return Visibility{Kind: VisProtected, Scope: class}
}

// InternalTo restricts the member to the named module.
func InternalTo(module source.StringID) Visibility {
	return Visibility{Kind: VisInternal, Scope: module}
}

// EltFlags is the bit-packed facts word on a class member.
type EltFlags uint32

const (
	EltAbstract EltFlags = 1 << iota
	EltFinal
	EltOverride
	EltLSB
	EltSynthesized
	EltConst
	EltLateInit
	EltDynamicallyCallable
	EltReadonlyProp
	EltSupportDynamicType
	EltNeedsInit
)

// Has reports whether all bits in mask are set.
func (f EltFlags) Has(mask EltFlags) bool { return f&mask == mask }

// Strings returns textual labels for set flags, in declaration order.
func (f EltFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	for _, fl := range [...]struct {
		bit  EltFlags
		name string
	}{
		{EltAbstract, "abstract"},
		{EltFinal, "final"},
		{EltOverride, "override"},
		{EltLSB, "lsb"},
		{EltSynthesized, "synthesized"},
		{EltConst, "const"},
		{EltLateInit, "lateinit"},
		{EltDynamicallyCallable, "dynamicallycallable"},
		{EltReadonlyProp, "readonly"},
		{EltSupportDynamicType, "support_dynamic_type"},
		{EltNeedsInit, "needs_init"},
	} {
		if f&fl.bit != 0 {
			labels = append(labels, fl.name)
		}
	}
	return labels
}

// ClassElt is a property or method of a class. Type and Pos are lazily
// forced: member types can require upstream ancestor resolution and many
// members are never queried by a given checker run. Deprecated is
// NoStringID when the member carries no deprecation message.
type ClassElt struct {
	Visibility Visibility
	Type       *lazy.Cell[ty.TyID]
	// Origin names the class the member was originally declared in.
	Origin     source.StringID
	Deprecated source.StringID
	Pos        *lazy.Cell[source.Pos]
	Flags      EltFlags
}

// FunElt is a free function's declared signature.
type FunElt struct {
	Deprecated source.StringID
	Type       ty.TyID
	Pos        source.Pos
	// StdLib marks functions from the legacy standard library surface.
	StdLib bool
	// SupportDynamicType marks functions callable under dynamic coercion.
	SupportDynamicType bool
}
