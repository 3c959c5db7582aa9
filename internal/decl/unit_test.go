package decl

import (
	"testing"

	"declgraph/internal/arena"
	"declgraph/internal/lazy"
	"declgraph/internal/source"
	"declgraph/internal/ty"
)

func buildFooUnit(t *testing.T) *Unit {
	t.Helper()
	u := NewUnit()
	in := u.Strings()

	foo := in.Intern("Foo")
	intTy := u.Tys().New(ty.MakePrim(ty.PrimInt, source.None))
	funTy := u.Tys().New(ty.MakeFun(nil, intTy, source.None))

	bar := u.AddElt(ClassElt{
		Visibility: Public(),
		Type:       lazy.Of(funTy),
		Origin:     foo,
		Pos:        lazy.Of(source.None),
	})

	u.AddClass(ClassType{
		MembersFullyKnown: true,
		Kind:              KindClass,
		Name:              foo,
		Methods: map[source.StringID]arena.Ref[ClassElt]{
			in.Intern("bar"): bar,
		},
	})
	return u
}

func TestClassLookupAndMemberOrigin(t *testing.T) {
	u := buildFooUnit(t)
	c, ok := u.Class("Foo")
	if !ok {
		t.Fatalf("class Foo not found")
	}
	m, ok := u.Method(c, "bar")
	if !ok {
		t.Fatalf("method bar not found")
	}
	if got := u.Strings().MustLookup(m.Origin); got != "Foo" {
		t.Fatalf("origin = %q, want Foo", got)
	}
	if m.Flags != 0 {
		t.Fatalf("flags = %v, want 0", m.Flags)
	}
}

func TestLookupUnknownName(t *testing.T) {
	u := buildFooUnit(t)
	if _, ok := u.Class("Missing"); ok {
		t.Fatalf("unknown class resolved")
	}
	c, _ := u.Class("Foo")
	if _, ok := u.Method(c, "missing"); ok {
		t.Fatalf("unknown method resolved")
	}
}

func TestResetInvalidatesGraph(t *testing.T) {
	u := buildFooUnit(t)
	c, _ := u.Class("Foo")
	var ref arena.Ref[ClassElt]
	for _, r := range c.Methods {
		ref = r
	}
	u.Reset()
	if u.Elt(ref) != nil {
		t.Fatalf("stale member ref resolved after reset")
	}
	if _, ok := u.Class("Foo"); ok {
		t.Fatalf("class index survived reset")
	}
	if u.Tys().Len() != 0 {
		t.Fatalf("ty store survived reset")
	}
}

func TestClassConstRefsRecordCycleEdges(t *testing.T) {
	u := NewUnit()
	in := u.Strings()
	cName, dName, aName := in.Intern("C"), in.Intern("D"), in.Intern("A")
	intTy := u.Tys().New(ty.MakePrim(ty.PrimInt, source.None))

	// class C { const int A = D::A; } / class D { const int A = C::A; }
	ca := u.AddClassConst(ClassConst{
		Type:   intTy,
		Origin: cName,
		Refs:   []ClassConstRef{{From: FromClass(dName), Name: aName}},
	})
	da := u.AddClassConst(ClassConst{
		Type:   intTy,
		Origin: dName,
		Refs:   []ClassConstRef{{From: FromClass(cName), Name: aName}},
	})
	u.AddClass(ClassType{Kind: KindClass, Name: cName,
		Consts: map[source.StringID]arena.Ref[ClassConst]{aName: ca}})
	u.AddClass(ClassType{Kind: KindClass, Name: dName,
		Consts: map[source.StringID]arena.Ref[ClassConst]{aName: da}})

	c, _ := u.Class("C")
	cc, ok := u.ConstIn(c, "A")
	if !ok {
		t.Fatalf("C::A not found")
	}
	if len(cc.Refs) != 1 || cc.Refs[0].From.Kind != ConstFromClass ||
		cc.Refs[0].From.Class != dName || cc.Refs[0].Name != aName {
		t.Fatalf("C::A refs do not name D::A: %+v", cc.Refs)
	}
	d, _ := u.Class("D")
	dc, _ := u.ConstIn(d, "A")
	if len(dc.Refs) != 1 || dc.Refs[0].From.Class != cName {
		t.Fatalf("D::A refs do not name C::A: %+v", dc.Refs)
	}
}

func TestSortedNameLists(t *testing.T) {
	u := NewUnit()
	in := u.Strings()
	u.AddClass(ClassType{Kind: KindClass, Name: in.Intern("Zeta")})
	u.AddClass(ClassType{Kind: KindClass, Name: in.Intern("Alpha")})
	got := u.ClassNames()
	if len(got) != 2 || got[0] != "Alpha" || got[1] != "Zeta" {
		t.Fatalf("names not sorted: %v", got)
	}
}
