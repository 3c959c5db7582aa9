package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"declgraph/internal/arena"
	"declgraph/internal/decl"
	"declgraph/internal/declhash"
	"declgraph/internal/lazy"
	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// buildUnit populates a unit exercising every wire construct, with all
// positions derived from line so tests can rewrite locations wholesale.
func buildUnit(line uint32) *decl.Unit {
	u := decl.NewUnit()
	in := u.Strings()

	pos := func(start uint32) source.Pos {
		return source.Pos{File: in.Intern("foo.src"), Span: source.Span{Start: start, End: start + 4}, Line: line}
	}

	foo := in.Intern("Foo")
	intTy := u.Tys().New(ty.MakePrim(ty.PrimInt, pos(1)))
	strTy := u.Tys().New(ty.MakePrim(ty.PrimString, pos(2)))
	keyTy := u.Tys().New(ty.MakeGeneric(in.Intern("TKey"), pos(3)))
	barTy := u.Tys().New(ty.MakeFun([]ty.TyID{keyTy, strTy}, u.Tys().New(ty.MakeOption(intTy, pos(4))), pos(5)))
	baseTy := u.Tys().New(ty.MakeApply(in.Intern("Base"), []ty.TyID{intTy}, pos(6)))

	bar := u.AddElt(decl.ClassElt{
		Visibility: decl.Public(),
		Type:       lazy.Of(barTy),
		Origin:     foo,
		Pos:        lazy.Of(pos(7)),
		Flags:      decl.EltFinal | decl.EltOverride,
	})
	count := u.AddElt(decl.ClassElt{
		Visibility: decl.PrivateTo(foo),
		Type:       lazy.Of(intTy),
		Origin:     foo,
		Deprecated: in.Intern("use size()"),
		Pos:        lazy.Of(pos(8)),
	})
	limit := u.AddClassConst(decl.ClassConst{
		Pos:    pos(9),
		Type:   intTy,
		Origin: foo,
		Refs: []decl.ClassConstRef{
			{From: decl.FromSelf(), Name: in.Intern("CAP")},
			{From: decl.FromClass(in.Intern("Base")), Name: in.Intern("MAX")},
		},
	})
	tc := decl.TypeconstType{
		Name:   source.PosID{Pos: pos(10), Name: in.Intern("TKey")},
		Kind:   decl.AbstractTypeconst{AsConstraint: intTy},
		Origin: foo,
	}
	tc.SetEnforceable(pos(11), true)
	tkey := u.AddTypeconst(tc)
	ctor := u.AddElt(decl.ClassElt{
		Visibility: decl.Public(),
		Type:       lazy.Of(barTy),
		Origin:     foo,
		Pos:        lazy.Of(pos(12)),
	})

	u.AddClass(decl.ClassType{
		MembersFullyKnown: true,
		Kind:              decl.KindClass,
		Name:              foo,
		Pos:               pos(0),
		Tparams: []decl.Tparam{{
			Variance:    decl.Covariant,
			Name:        source.PosID{Pos: pos(13), Name: in.Intern("TKey")},
			Constraints: []decl.TparamConstraint{{Kind: decl.ConstraintAs, Type: intTy}},
			Reified:     true,
		}},
		WhereConstraints: []decl.WhereConstraint{{Left: keyTy, Kind: decl.ConstraintEq, Right: intTy}},
		Consts:           map[source.StringID]arena.Ref[decl.ClassConst]{in.Intern("LIMIT"): limit},
		Typeconsts:       map[source.StringID]arena.Ref[decl.TypeconstType]{in.Intern("TKey"): tkey},
		Props:            map[source.StringID]arena.Ref[decl.ClassElt]{in.Intern("count"): count},
		Methods:          map[source.StringID]arena.Ref[decl.ClassElt]{in.Intern("bar"): bar},
		Construct:        decl.Construct{Elt: ctor, Consistency: decl.ConsistentConstruct},
		Ancestors:        map[source.StringID]ty.TyID{in.Intern("Base"): baseTy},
		ReqAncestors:     []decl.Requirement{{Pos: pos(14), Type: baseTy}},
		Extends:          decl.NameSet{in.Intern("Base"): {}},
		SealedWhitelist:  decl.NameSet{in.Intern("FooChild"): {}},
		DeclErrors:       []decl.DeclError{{Pos: pos(15), Msg: in.Intern("cyclic class")}},
	})

	u.AddTypedef(decl.TypedefType{
		Name:       in.Intern("FooAlias"),
		Pos:        pos(16),
		Vis:        decl.Opaque,
		Constraint: intTy,
		Type:       u.Tys().New(ty.MakeLike(strTy, pos(17))),
	})
	u.AddConst(in.Intern("FOO_MAX"), decl.ConstDecl{Pos: pos(18), Type: intTy})
	u.AddFun(in.Intern("foo_of"), decl.FunElt{
		Type:               barTy,
		Pos:                pos(19),
		StdLib:             true,
		SupportDynamicType: true,
	})
	u.AddRecord(decl.RecordDefType{
		Name:       source.PosID{Pos: pos(20), Name: in.Intern("FooRec")},
		Extends:    source.PosID{Pos: pos(21), Name: in.Intern("BaseRec")},
		HasExtends: true,
		Fields: []decl.RecordField{
			{Name: source.PosID{Pos: pos(22), Name: in.Intern("id")}, Req: decl.ValueRequired},
			{Name: source.PosID{Pos: pos(23), Name: in.Intern("note")}, Req: decl.HasDefaultValue},
		},
		Abstract: true,
		Pos:      pos(24),
	})
	u.AddDep(decl.DeclReference{Kind: decl.RefType, Name: foo})
	u.AddDep(decl.DeclReference{Kind: decl.RefFunction, Name: in.Intern("foo_of")})
	u.AddComment(decl.Comment{Kind: decl.CommentLine, Text: in.Intern("owned by the runtime team")})
	return u
}

func TestEncodeDeterministic(t *testing.T) {
	u := buildUnit(3)
	a, err := Encode(u)
	require.NoError(t, err)
	b, err := Encode(u)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestRoundTrip(t *testing.T) {
	u := buildUnit(3)
	data, err := Encode(u)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.True(t, declhash.EqualUnit(u, got, declhash.Options{IncludePositions: true}),
		"decoded unit differs from the original")

	// Re-encoding the decoded unit reproduces the bytes exactly.
	again, err := Encode(got)
	require.NoError(t, err)
	require.Equal(t, data, again)
}

func TestRoundTripKeepsConstRefCycles(t *testing.T) {
	u := decl.NewUnit()
	in := u.Strings()
	intTy := u.Tys().New(ty.MakePrim(ty.PrimInt, source.None))
	addClass := func(name, other string) {
		id := in.Intern(name)
		a := u.AddClassConst(decl.ClassConst{
			Type:   intTy,
			Origin: id,
			Refs:   []decl.ClassConstRef{{From: decl.FromClass(in.Intern(other)), Name: in.Intern("A")}},
		})
		u.AddClass(decl.ClassType{
			Kind:   decl.KindClass,
			Name:   id,
			Consts: map[source.StringID]arena.Ref[decl.ClassConst]{in.Intern("A"): a},
		})
	}
	addClass("C", "D")
	addClass("D", "C")

	data, err := Encode(u)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)

	c, ok := got.Class("C")
	require.True(t, ok)
	cc, ok := got.ConstIn(c, "A")
	require.True(t, ok)
	require.Len(t, cc.Refs, 1)
	require.Equal(t, decl.ConstFromClass, cc.Refs[0].From.Kind)
	require.Equal(t, "D", got.Strings().MustLookup(cc.Refs[0].From.Class))
	require.Equal(t, "A", got.Strings().MustLookup(cc.Refs[0].Name))
}

// The end-to-end shape consumers rely on: declare Foo with method bar,
// ship it through the codec, force the member type on the far side, and
// check identity is position-insensitive.
func TestFooBarAcrossCodec(t *testing.T) {
	u1 := buildUnit(3)
	u2 := buildUnit(400)

	d1, err := Encode(u1)
	require.NoError(t, err)
	d2, err := Encode(u2)
	require.NoError(t, err)
	require.NotEqual(t, d1, d2, "positions must be carried on the wire")

	g1, err := Decode(d1)
	require.NoError(t, err)
	g2, err := Decode(d2)
	require.NoError(t, err)

	foo, ok := g1.Class("Foo")
	require.True(t, ok)
	bar, ok := g1.Method(foo, "bar")
	require.True(t, ok)
	require.Equal(t, "(function(TKey, string): ?int)", RenderTy(g1, bar.Type.Force()))
	require.Equal(t, uint32(3), bar.Pos.Force().Line)

	require.Equal(t, declhash.HashUnit(g1), declhash.HashUnit(g2))
	require.True(t, declhash.EqualUnit(g1, g2, declhash.Options{}))
	require.False(t, declhash.EqualUnit(g1, g2, declhash.Options{IncludePositions: true}))
}

// encodeConstOnly writes the unit framing with a single free constant,
// leaving its type payload to the caller.
func encodeConstOnly(t *testing.T, writeTy func(e *msgpack.Encoder)) []byte {
	t.Helper()
	var buf bytes.Buffer
	e := msgpack.NewEncoder(&buf)
	require.NoError(t, e.EncodeArrayLen(arityUnit))
	require.NoError(t, e.EncodeArrayLen(0)) // classes
	require.NoError(t, e.EncodeArrayLen(0)) // typedefs
	require.NoError(t, e.EncodeArrayLen(1)) // consts
	require.NoError(t, e.EncodeArrayLen(arityFreeConst))
	require.NoError(t, e.EncodeString("BAD"))
	require.NoError(t, e.EncodeNil()) // pos
	writeTy(e)
	require.NoError(t, e.EncodeArrayLen(0)) // funs
	require.NoError(t, e.EncodeArrayLen(0)) // records
	require.NoError(t, e.EncodeArrayLen(arityPair))
	require.NoError(t, e.EncodeArrayLen(0)) // deps
	require.NoError(t, e.EncodeArrayLen(0)) // comments
	return buf.Bytes()
}

func TestDecodeRejectsUnknownTag(t *testing.T) {
	data := encodeConstOnly(t, func(e *msgpack.Encoder) {
		require.NoError(t, e.EncodeArrayLen(3))
		require.NoError(t, e.EncodeUint8(0x33)) // no such ty tag
		require.NoError(t, e.EncodeUint8(tagPhaseDecl))
		require.NoError(t, e.EncodeNil())
	})
	_, err := Decode(data)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrMalformed, kind)
}

func TestDecodeRejectsUnknownTypeconstTag(t *testing.T) {
	var buf bytes.Buffer
	e := msgpack.NewEncoder(&buf)
	require.NoError(t, e.EncodeArrayLen(arityUnit))
	require.NoError(t, e.EncodeArrayLen(1)) // classes
	require.NoError(t, e.EncodeArrayLen(arityClass))
	require.NoError(t, e.EncodeBool(false)) // need_init
	require.NoError(t, e.EncodeBool(true))  // members_fully_known
	require.NoError(t, e.EncodeBool(false)) // abstract
	require.NoError(t, e.EncodeBool(false)) // final
	require.NoError(t, e.EncodeBool(false)) // const
	require.NoError(t, e.EncodeArrayLen(0)) // deferred_init_members
	require.NoError(t, e.EncodeUint8(uint8(decl.KindClass)))
	require.NoError(t, e.EncodeBool(false)) // is_xhp
	require.NoError(t, e.EncodeBool(false)) // has_xhp_keyword
	require.NoError(t, e.EncodeBool(false)) // is_disposable
	require.NoError(t, e.EncodeString("Broken"))
	require.NoError(t, e.EncodeNil())       // pos
	require.NoError(t, e.EncodeArrayLen(0)) // tparams
	require.NoError(t, e.EncodeArrayLen(0)) // where_constraints
	require.NoError(t, e.EncodeArrayLen(0)) // consts
	require.NoError(t, e.EncodeArrayLen(1)) // typeconsts
	require.NoError(t, e.EncodeArrayLen(arityPair))
	require.NoError(t, e.EncodeString("T"))
	require.NoError(t, e.EncodeArrayLen(arityTypeconst))
	require.NoError(t, e.EncodeBool(false)) // synthesized
	require.NoError(t, e.EncodeArrayLen(arityPosID))
	require.NoError(t, e.EncodeNil())
	require.NoError(t, e.EncodeString("T"))
	require.NoError(t, e.EncodeArrayLen(arityPair))
	require.NoError(t, e.EncodeUint8(9)) // no such typeconst kind

	_, err := Decode(buf.Bytes())
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrMalformed, kind)
	require.Contains(t, err.Error(), "typeconst")
}

func TestDecodeRejectsLoclPhase(t *testing.T) {
	data := encodeConstOnly(t, func(e *msgpack.Encoder) {
		require.NoError(t, e.EncodeArrayLen(4))
		require.NoError(t, e.EncodeUint8(uint8(ty.KindPrim)))
		require.NoError(t, e.EncodeUint8(tagPhaseLocl))
		require.NoError(t, e.EncodeNil())
		require.NoError(t, e.EncodeUint8(uint8(ty.PrimInt)))
	})
	_, err := Decode(data)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrWrongPhase, kind)
}

func TestDecodeRejectsInferenceVars(t *testing.T) {
	data := encodeConstOnly(t, func(e *msgpack.Encoder) {
		require.NoError(t, e.EncodeArrayLen(3))
		require.NoError(t, e.EncodeUint8(tagTyVar))
		require.NoError(t, e.EncodeUint8(tagPhaseLocl))
		require.NoError(t, e.EncodeUint32(7))
	})
	_, err := Decode(data)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrNotSupported, kind)
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	data, err := Encode(buildUnit(3))
	require.NoError(t, err)
	_, err = Decode(data[:len(data)/2])
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrMalformed, kind)
}

func TestDecodeRejectsWrongArity(t *testing.T) {
	var buf bytes.Buffer
	e := msgpack.NewEncoder(&buf)
	require.NoError(t, e.EncodeArrayLen(2))
	require.NoError(t, e.EncodeArrayLen(0))
	require.NoError(t, e.EncodeArrayLen(0))
	_, err := Decode(buf.Bytes())
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrMalformed, kind)
}

func TestDumpStable(t *testing.T) {
	u1 := buildUnit(3)
	u2 := buildUnit(900)

	var a, b bytes.Buffer
	require.NoError(t, Dump(&a, u1, DumpOptions{Mode: decl.ModeShallow}))
	require.NoError(t, Dump(&b, u2, DumpOptions{Mode: decl.ModeShallow}))
	require.Equal(t, a.String(), b.String(), "position-free dumps must match")

	out := a.String()
	require.Contains(t, out, "class Foo<+reify TKey as int>")
	require.Contains(t, out, "public method bar: (function(TKey, string): ?int)")
	require.Contains(t, out, "abstract typeconst TKey as int [enforceable]")
	require.Contains(t, out, "typedef FooAlias newtype ~string as int")
	require.Contains(t, out, "record FooRec extends BaseRec [abstract]")

	var c bytes.Buffer
	require.NoError(t, Dump(&c, u1, DumpOptions{Mode: decl.ModeShallow, Positions: true}))
	require.Contains(t, c.String(), "foo.src")
}
