package declhash

import (
	"testing"

	"declgraph/internal/arena"
	"declgraph/internal/decl"
	"declgraph/internal/lazy"
	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// buildClass constructs the same class in a fresh unit, with every
// position derived from line so tests can rewrite locations wholesale.
// reverse controls interning order, to prove StringIDs never leak into
// identity.
func buildClass(line uint32, reverse bool) (*decl.Unit, *decl.ClassType) {
	u := decl.NewUnit()
	in := u.Strings()

	names := []string{"Container", "get", "count", "LIMIT", "TKey"}
	if reverse {
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
	}
	for _, n := range names {
		in.Intern(n)
	}

	pos := func(start uint32) source.Pos {
		return source.Pos{File: in.Intern("container.src"), Span: source.Span{Start: start, End: start + 4}, Line: line}
	}

	container := in.Intern("Container")
	intTy := u.Tys().New(ty.MakePrim(ty.PrimInt, pos(1)))
	keyTy := u.Tys().New(ty.MakeGeneric(in.Intern("TKey"), pos(2)))
	getTy := u.Tys().New(ty.MakeFun([]ty.TyID{keyTy}, intTy, pos(3)))

	get := u.AddElt(decl.ClassElt{
		Visibility: decl.Public(),
		Type:       lazy.Of(getTy),
		Origin:     container,
		Pos:        lazy.Of(pos(4)),
		Flags:      decl.EltFinal,
	})
	count := u.AddElt(decl.ClassElt{
		Visibility: decl.ProtectedTo(container),
		Type:       lazy.Of(intTy),
		Origin:     container,
		Pos:        lazy.Of(pos(5)),
	})
	limit := u.AddClassConst(decl.ClassConst{
		Pos:    pos(6),
		Type:   intTy,
		Origin: container,
	})
	tc := decl.TypeconstType{
		Name:   source.PosID{Pos: pos(7), Name: in.Intern("TKey")},
		Kind:   decl.AbstractTypeconst{AsConstraint: intTy},
		Origin: container,
	}
	tc.SetEnforceable(pos(8), true)
	tkey := u.AddTypeconst(tc)

	c := decl.ClassType{
		MembersFullyKnown: true,
		Kind:              decl.KindClass,
		Name:              container,
		Pos:               pos(0),
		Tparams: []decl.Tparam{{
			Variance:    decl.Covariant,
			Name:        source.PosID{Pos: pos(9), Name: in.Intern("TKey")},
			Constraints: []decl.TparamConstraint{{Kind: decl.ConstraintAs, Type: intTy}},
		}},
		Consts:     map[source.StringID]arena.Ref[decl.ClassConst]{in.Intern("LIMIT"): limit},
		Typeconsts: map[source.StringID]arena.Ref[decl.TypeconstType]{in.Intern("TKey"): tkey},
		Methods: map[source.StringID]arena.Ref[decl.ClassElt]{
			in.Intern("get"): get,
		},
		Props: map[source.StringID]arena.Ref[decl.ClassElt]{
			in.Intern("count"): count,
		},
		Ancestors: map[source.StringID]ty.TyID{in.Intern("Base"): intTy},
		Extends:   decl.NameSet{in.Intern("Base"): {}},
	}
	r := u.AddClass(c)
	return u, u.ClassAt(r)
}

func TestHashIgnoresPositions(t *testing.T) {
	u1, c1 := buildClass(10, false)
	u2, c2 := buildClass(999, false)
	if HashClass(u1, c1) != HashClass(u2, c2) {
		t.Fatalf("hash changed under a position-only rewrite")
	}
}

func TestHashIgnoresInterningOrder(t *testing.T) {
	u1, c1 := buildClass(10, false)
	u2, c2 := buildClass(10, true)
	if HashClass(u1, c1) != HashClass(u2, c2) {
		t.Fatalf("hash depends on StringID assignment order")
	}
}

func TestHashSeesRealChanges(t *testing.T) {
	u1, c1 := buildClass(10, false)
	u2, c2 := buildClass(10, false)
	c2.Final = true
	if HashClass(u1, c1) == HashClass(u2, c2) {
		t.Fatalf("hash missed a flag change")
	}
}

func TestEqualityDisciplines(t *testing.T) {
	u1, c1 := buildClass(10, false)
	u2, c2 := buildClass(500, false)

	if !EqualClass(u1, c1, u2, c2, Options{}) {
		t.Fatalf("position-insensitive equality rejected a position-only rewrite")
	}
	if EqualClass(u1, c1, u2, c2, Options{IncludePositions: true}) {
		t.Fatalf("exact equality accepted differing positions")
	}

	u3, c3 := buildClass(10, false)
	if !EqualClass(u1, c1, u3, c3, Options{IncludePositions: true}) {
		t.Fatalf("exact equality rejected identical classes")
	}

	c3.SupportDynamicType = true
	if EqualClass(u1, c1, u3, c3, Options{}) {
		t.Fatalf("equality missed a semantic change")
	}
}

func TestEnforceableAttributeIsIdentity(t *testing.T) {
	u1, c1 := buildClass(10, false)
	u2, c2 := buildClass(10, false)
	tc, _ := u2.TypeconstIn(c2, "TKey")
	tc.SetEnforceable(source.None, false)
	if HashClass(u1, c1) == HashClass(u2, c2) {
		t.Fatalf("hash must include the enforceable flag")
	}
	if EqualClass(u1, c1, u2, c2, Options{}) {
		t.Fatalf("equality must include the enforceable flag")
	}
}

func TestReifiableAttributeIsIdentity(t *testing.T) {
	u1, c1 := buildClass(10, false)
	u2, c2 := buildClass(10, false)
	tc2, _ := u2.TypeconstIn(c2, "TKey")
	tc2.Reifiable = source.Pos{File: u2.Strings().Intern("container.src"), Span: source.Span{Start: 40, End: 44}, Line: 10}
	if HashClass(u1, c1) == HashClass(u2, c2) {
		t.Fatalf("hash must include reifiability")
	}
	if EqualClass(u1, c1, u2, c2, Options{}) {
		t.Fatalf("equality must include reifiability")
	}

	// Moving the attribute without removing it is still the same class
	// under the position-insensitive discipline.
	u3, c3 := buildClass(10, false)
	tc3, _ := u3.TypeconstIn(c3, "TKey")
	tc3.Reifiable = source.Pos{File: u3.Strings().Intern("container.src"), Span: source.Span{Start: 90, End: 94}, Line: 77}
	if HashClass(u2, c2) != HashClass(u3, c3) {
		t.Fatalf("hash changed when only the attribute location moved")
	}
	if !EqualClass(u2, c2, u3, c3, Options{}) {
		t.Fatalf("position-insensitive equality rejected an attribute move")
	}
	if EqualClass(u2, c2, u3, c3, Options{IncludePositions: true}) {
		t.Fatalf("exact equality accepted a moved attribute")
	}
}

func TestHashToleratesStaleMemberRefs(t *testing.T) {
	u1, c1 := buildClass(10, false)
	u2, c2 := buildClass(10, false)
	c2.Consts[u2.Strings().Intern("LIMIT")] = arena.Ref[decl.ClassConst]{}
	c2.Typeconsts[u2.Strings().Intern("TKey")] = arena.Ref[decl.TypeconstType]{}

	if HashClass(u1, c1) == HashClass(u2, c2) {
		t.Fatalf("hash treated unresolved members as resolved")
	}
	if EqualClass(u1, c1, u2, c2, Options{}) {
		t.Fatalf("equality treated unresolved members as resolved")
	}

	u3, c3 := buildClass(10, false)
	c3.Consts[u3.Strings().Intern("LIMIT")] = arena.Ref[decl.ClassConst]{}
	c3.Typeconsts[u3.Strings().Intern("TKey")] = arena.Ref[decl.TypeconstType]{}
	if HashClass(u2, c2) != HashClass(u3, c3) {
		t.Fatalf("two classes with the same unresolved members hash apart")
	}
	if !EqualClass(u2, c2, u3, c3, Options{IncludePositions: true}) {
		t.Fatalf("two classes with the same unresolved members compare unequal")
	}
}

func TestHashUnitStableAcrossPositions(t *testing.T) {
	u1, _ := buildClass(10, false)
	u2, _ := buildClass(77, true)
	if HashUnit(u1) != HashUnit(u2) {
		t.Fatalf("unit hash changed under position rewrite")
	}
}

func TestEqualUnit(t *testing.T) {
	u1, _ := buildClass(10, false)
	u2, _ := buildClass(10, false)
	if !EqualUnit(u1, u2, Options{IncludePositions: true}) {
		t.Fatalf("identical units compare unequal")
	}
	u2.AddFun(u2.Strings().Intern("extra"), decl.FunElt{})
	if EqualUnit(u1, u2, Options{}) {
		t.Fatalf("extra declaration went unnoticed")
	}
}
