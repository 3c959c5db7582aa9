package decl

import (
	"fmt"

	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// Typeconst is the closed set of type-constant shapes. The three variants
// below are the only implementations; matching on them must be exhaustive,
// and adding a variant is a wire-schema change on both sides of the
// interchange boundary.
type Typeconst interface {
	isTypeconst()
}

// AbstractTypeconst is a type constant with no assigned type: optional
// upper/lower bounds and an optional default. NoTyID marks an absent part.
type AbstractTypeconst struct {
	AsConstraint    ty.TyID
	SuperConstraint ty.TyID
	Default         ty.TyID
}

// ConcreteTypeconst is a fully assigned type constant.
type ConcreteTypeconst struct {
	Type ty.TyID
}

// PartiallyAbstractTypeconst carries both a constraint and an assigned
// type.
type PartiallyAbstractTypeconst struct {
	Constraint ty.TyID
	Type       ty.TyID
}

func (AbstractTypeconst) isTypeconst()          {}
func (ConcreteTypeconst) isTypeconst()          {}
func (PartiallyAbstractTypeconst) isTypeconst() {}

// EnforceMode selects how typeconst enforceability was composed upstream.
type EnforceMode uint8

const (
	// ModeShallow: the enforceable pair reflects only this declaration's
	// own attribute.
	ModeShallow EnforceMode = iota
	// ModeLegacy: the pair may also reflect an attribute inherited from an
	// overridden parent typeconst, with the position pointing at the
	// parent declaration.
	ModeLegacy
)

func (m EnforceMode) String() string {
	switch m {
	case ModeShallow:
		return "shallow"
	case ModeLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("EnforceMode(%d)", m)
	}
}

// TypeconstType wraps a Typeconst with its declaration identity.
type TypeconstType struct {
	Synthesized bool
	Name        source.PosID
	Kind        Typeconst
	// Origin names the class that originally declared the typeconst.
	Origin source.StringID
	// enforceable is (position of the enforceability attribute, flag).
	// Its meaning depends on the mode the producer composed decls under;
	// read it through Enforced/EnforcedShallow/EnforcedLegacy, never
	// directly. Kept unexported for exactly that reason.
	enforceablePos  source.Pos
	enforceableAttr bool
	// Reifiable is the attribute position, or None when absent.
	Reifiable   source.Pos
	Concretized bool
	IsCtx       bool
}

// SetEnforceable records the raw enforceability pair. The flag may only be
// true with a None position when the producer composed under ModeLegacy
// (inherited attribute); codecs pass the pair through unchanged.
func (t *TypeconstType) SetEnforceable(pos source.Pos, attr bool) {
	t.enforceablePos = pos
	t.enforceableAttr = attr
}

// RawEnforceable exposes the stored pair for codecs and structural
// comparison. Callers deciding override-aware enforceability must use
// Enforced with the mode in effect instead.
func (t *TypeconstType) RawEnforceable() (source.Pos, bool) {
	return t.enforceablePos, t.enforceableAttr
}

// EnforcedShallow interprets the pair under shallow composition: the flag
// counts only when this declaration itself carried the attribute, i.e. the
// position is a real source location.
func (t *TypeconstType) EnforcedShallow() (source.Pos, bool) {
	if t.enforceableAttr && !t.enforceablePos.IsNone() {
		return t.enforceablePos, true
	}
	return source.None, false
}

// EnforcedLegacy interprets the pair under legacy composition: the flag is
// trusted as stored, and may have been inherited from a parent typeconst
// (the position then points at the parent declaration).
func (t *TypeconstType) EnforcedLegacy() (source.Pos, bool) {
	return t.enforceablePos, t.enforceableAttr
}

// Enforced dispatches on the composition mode. The caller owns the choice;
// this layer cannot know which pipeline produced the batch.
func (t *TypeconstType) Enforced(mode EnforceMode) (source.Pos, bool) {
	if mode == ModeLegacy {
		return t.EnforcedLegacy()
	}
	return t.EnforcedShallow()
}
