package wire

import (
	"bytes"
	"io"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"declgraph/internal/arena"
	"declgraph/internal/decl"
	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// Encode serializes the unit to wire bytes. Encoding is a pure function of
// the graph: name-keyed maps are emitted in sorted name order, so two
// structurally identical units produce identical bytes.
func Encode(u *decl.Unit) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeTo(&buf, u); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo streams the unit's wire form into w.
func EncodeTo(w io.Writer, u *decl.Unit) error {
	e := &encoder{e: msgpack.NewEncoder(w), u: u}
	e.unit()
	return e.err
}

type encoder struct {
	e   *msgpack.Encoder
	u   *decl.Unit
	err error
}

func (e *encoder) check(err error) {
	if e.err == nil {
		e.err = err
	}
}

func (e *encoder) arr(n int)     { e.check(e.e.EncodeArrayLen(n)) }
func (e *encoder) boolean(v bool) { e.check(e.e.EncodeBool(v)) }
func (e *encoder) u8(v uint8)    { e.check(e.e.EncodeUint8(v)) }
func (e *encoder) u32(v uint32)  { e.check(e.e.EncodeUint32(v)) }
func (e *encoder) i64(v int64)   { e.check(e.e.EncodeInt64(v)) }
func (e *encoder) nilv()         { e.check(e.e.EncodeNil()) }

func (e *encoder) str(id source.StringID) {
	e.check(e.e.EncodeString(e.u.Strings().MustLookup(id)))
}

func (e *encoder) rawStr(s string) { e.check(e.e.EncodeString(s)) }

// optStr writes nil for the absent string.
func (e *encoder) optStr(id source.StringID) {
	if id == source.NoStringID {
		e.nilv()
		return
	}
	e.str(id)
}

func (e *encoder) pos(p source.Pos) {
	if p.IsNone() {
		e.nilv()
		return
	}
	e.arr(arityPos)
	e.str(p.File)
	e.u32(p.Span.Start)
	e.u32(p.Span.End)
	e.u32(p.Line)
}

func (e *encoder) posID(p source.PosID) {
	e.arr(arityPosID)
	e.pos(p.Pos)
	e.str(p.Name)
}

func tyTag(k ty.Kind) uint8 {
	// Wire tags track ty.Kind for supported kinds; see tags.go.
	return uint8(k)
}

func (e *encoder) tyID(id ty.TyID) {
	if id == ty.NoTyID {
		e.nilv()
		return
	}
	n := e.u.Tys().MustLookup(id)
	switch n.Kind {
	case ty.KindPrim:
		e.arr(4)
		e.u8(tyTag(n.Kind))
		e.u8(uint8(n.Phase))
		e.pos(n.Reason)
		e.u8(uint8(n.Prim))
	case ty.KindApply:
		e.arr(5)
		e.u8(tyTag(n.Kind))
		e.u8(uint8(n.Phase))
		e.pos(n.Reason)
		e.str(n.Name)
		e.tyList(n.Args)
	case ty.KindOption, ty.KindLike:
		e.arr(4)
		e.u8(tyTag(n.Kind))
		e.u8(uint8(n.Phase))
		e.pos(n.Reason)
		e.tyID(n.Elem)
	case ty.KindTuple, ty.KindUnion, ty.KindIntersection:
		e.arr(4)
		e.u8(tyTag(n.Kind))
		e.u8(uint8(n.Phase))
		e.pos(n.Reason)
		e.tyList(n.Args)
	case ty.KindFun:
		e.arr(5)
		e.u8(tyTag(n.Kind))
		e.u8(uint8(n.Phase))
		e.pos(n.Reason)
		e.tyList(n.Args)
		e.tyID(n.Ret)
	case ty.KindGeneric:
		e.arr(4)
		e.u8(tyTag(n.Kind))
		e.u8(uint8(n.Phase))
		e.pos(n.Reason)
		e.str(n.Name)
	case ty.KindAny, ty.KindMixed, ty.KindNothing, ty.KindThis:
		e.arr(3)
		e.u8(tyTag(n.Kind))
		e.u8(uint8(n.Phase))
		e.pos(n.Reason)
	case ty.KindAccess:
		e.arr(5)
		e.u8(tyTag(n.Kind))
		e.u8(uint8(n.Phase))
		e.pos(n.Reason)
		e.tyID(n.Elem)
		e.str(n.Name)
	default:
		e.check(malformedf("cannot encode ty kind %v", n.Kind))
	}
}

func (e *encoder) tyList(ids []ty.TyID) {
	e.arr(len(ids))
	for _, id := range ids {
		e.tyID(id)
	}
}

func (e *encoder) nameSet(s decl.NameSet) {
	names := make([]string, 0, len(s))
	for id := range s {
		names = append(names, e.u.Strings().MustLookup(id))
	}
	sort.Strings(names)
	e.arr(len(names))
	for _, n := range names {
		e.rawStr(n)
	}
}

func sortedKeys[T any](u *decl.Unit, m map[source.StringID]T) []source.StringID {
	ids := make([]source.StringID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return u.Strings().MustLookup(ids[i]) < u.Strings().MustLookup(ids[j])
	})
	return ids
}

func (e *encoder) visibility(v decl.Visibility) {
	e.arr(arityVis)
	e.u8(uint8(v.Kind))
	e.optStr(v.Scope)
}

func (e *encoder) elt(r arena.Ref[decl.ClassElt]) {
	el := e.u.Elt(r)
	if el == nil {
		e.nilv()
		return
	}
	e.arr(arityElt)
	e.visibility(el.Visibility)
	e.tyID(el.Type.Force())
	e.str(el.Origin)
	e.optStr(el.Deprecated)
	e.pos(el.Pos.Force())
	e.u32(uint32(el.Flags))
}

func (e *encoder) classConst(r arena.Ref[decl.ClassConst]) {
	c := e.u.ClassConstAt(r)
	e.arr(arityConst)
	e.boolean(c.Synthesized)
	e.boolean(c.Abstract)
	e.pos(c.Pos)
	e.tyID(c.Type)
	e.str(c.Origin)
	e.arr(len(c.Refs))
	for _, ref := range c.Refs {
		e.arr(arityPair)
		e.arr(arityPair)
		if ref.From.Kind == decl.ConstFromSelf {
			e.u8(tagConstFromSelf)
			e.nilv()
		} else {
			e.u8(tagConstFromClass)
			e.str(ref.From.Class)
		}
		e.str(ref.Name)
	}
}

func (e *encoder) typeconst(r arena.Ref[decl.TypeconstType]) {
	t := e.u.TypeconstAt(r)
	e.arr(arityTypeconst)
	e.boolean(t.Synthesized)
	e.posID(t.Name)
	switch k := t.Kind.(type) {
	case decl.AbstractTypeconst:
		e.arr(arityPair)
		e.u8(tagTCAbstract)
		e.arr(3)
		e.tyID(k.AsConstraint)
		e.tyID(k.SuperConstraint)
		e.tyID(k.Default)
	case decl.ConcreteTypeconst:
		e.arr(arityPair)
		e.u8(tagTCConcrete)
		e.arr(1)
		e.tyID(k.Type)
	case decl.PartiallyAbstractTypeconst:
		e.arr(arityPair)
		e.u8(tagTCPartiallyAbstract)
		e.arr(2)
		e.tyID(k.Constraint)
		e.tyID(k.Type)
	default:
		e.check(malformedf("cannot encode typeconst variant %T", t.Kind))
	}
	e.str(t.Origin)
	pos, attr := t.RawEnforceable()
	e.arr(arityPair)
	e.pos(pos)
	e.boolean(attr)
	e.pos(t.Reifiable)
	e.boolean(t.Concretized)
	e.boolean(t.IsCtx)
}

func (e *encoder) tparams(ps []decl.Tparam) {
	e.arr(len(ps))
	for _, p := range ps {
		e.arr(arityTparam)
		e.u8(uint8(p.Variance))
		e.posID(p.Name)
		e.arr(len(p.Constraints))
		for _, c := range p.Constraints {
			e.arr(arityPair)
			e.u8(uint8(c.Kind))
			e.tyID(c.Type)
		}
		e.boolean(p.Reified)
	}
}

func (e *encoder) class(c *decl.ClassType) {
	e.arr(arityClass)
	e.boolean(c.NeedInit)
	e.boolean(c.MembersFullyKnown)
	e.boolean(c.Abstract)
	e.boolean(c.Final)
	e.boolean(c.Const)
	e.nameSet(c.DeferredInitMembers)
	e.u8(uint8(c.Kind))
	e.boolean(c.IsXHP)
	e.boolean(c.HasXHPKeyword)
	e.boolean(c.IsDisposable)
	e.str(c.Name)
	e.pos(c.Pos)
	e.tparams(c.Tparams)
	e.arr(len(c.WhereConstraints))
	for _, w := range c.WhereConstraints {
		e.arr(arityWhere)
		e.tyID(w.Left)
		e.u8(uint8(w.Kind))
		e.tyID(w.Right)
	}
	refMapEncode(e, c.Consts, e.classConst)
	refMapEncode(e, c.Typeconsts, e.typeconst)
	refMapEncode(e, c.Props, e.elt)
	refMapEncode(e, c.SProps, e.elt)
	refMapEncode(e, c.Methods, e.elt)
	refMapEncode(e, c.SMethods, e.elt)
	e.arr(arityConstruct)
	e.elt(c.Construct.Elt)
	e.u8(uint8(c.Construct.Consistency))
	ancestorIDs := sortedKeys(e.u, c.Ancestors)
	e.arr(len(ancestorIDs))
	for _, id := range ancestorIDs {
		e.arr(arityPair)
		e.str(id)
		e.tyID(c.Ancestors[id])
	}
	e.boolean(c.SupportDynamicType)
	e.arr(len(c.ReqAncestors))
	for _, r := range c.ReqAncestors {
		e.arr(arityReq)
		e.pos(r.Pos)
		e.tyID(r.Type)
	}
	e.nameSet(c.ReqAncestorsExtends)
	e.nameSet(c.Extends)
	if en := e.u.EnumAt(c.Enum); en != nil {
		e.arr(arityEnum)
		e.tyID(en.Base)
		e.tyID(en.Constraint)
		e.tyList(en.Includes)
		e.boolean(en.EnumClass)
	} else {
		e.nilv()
	}
	if c.SealedWhitelist == nil {
		e.nilv()
	} else {
		e.nameSet(c.SealedWhitelist)
	}
	xhpIDs := sortedKeys(e.u, c.XhpEnumValues)
	e.arr(len(xhpIDs))
	for _, id := range xhpIDs {
		e.arr(arityPair)
		e.str(id)
		vals := c.XhpEnumValues[id]
		e.arr(len(vals))
		for _, v := range vals {
			e.arr(arityXhpValue)
			e.u8(uint8(v.Kind))
			e.i64(v.Int)
			e.optStr(v.Str)
		}
	}
	e.arr(len(c.DeclErrors))
	for _, de := range c.DeclErrors {
		e.arr(arityDeclError)
		e.pos(de.Pos)
		e.str(de.Msg)
	}
}

func refMapEncode[T any](e *encoder, m map[source.StringID]T, one func(T)) {
	ids := sortedKeys(e.u, m)
	e.arr(len(ids))
	for _, id := range ids {
		e.arr(arityPair)
		e.str(id)
		one(m[id])
	}
}

func (e *encoder) unit() {
	u := e.u
	e.arr(arityUnit)

	classNames := u.ClassNames()
	e.arr(len(classNames))
	for _, name := range classNames {
		c, _ := u.Class(name)
		e.class(c)
	}

	typedefNames := u.TypedefNames()
	e.arr(len(typedefNames))
	for _, name := range typedefNames {
		t, _ := u.Typedef(name)
		e.arr(arityTypedef)
		e.str(t.Name)
		e.pos(t.Pos)
		e.u8(uint8(t.Vis))
		e.tparams(t.Tparams)
		e.tyID(t.Constraint)
		e.tyID(t.Type)
	}

	constNames := u.ConstNames()
	e.arr(len(constNames))
	for _, name := range constNames {
		c, _ := u.Const(name)
		e.arr(arityFreeConst)
		e.rawStr(name)
		e.pos(c.Pos)
		e.tyID(c.Type)
	}

	funNames := u.FunNames()
	e.arr(len(funNames))
	for _, name := range funNames {
		f, _ := u.Fun(name)
		e.arr(arityFun)
		e.rawStr(name)
		e.optStr(f.Deprecated)
		e.tyID(f.Type)
		e.pos(f.Pos)
		e.boolean(f.StdLib)
		e.boolean(f.SupportDynamicType)
	}

	recordNames := u.RecordNames()
	e.arr(len(recordNames))
	for _, name := range recordNames {
		r, _ := u.Record(name)
		e.arr(arityRecord)
		e.posID(r.Name)
		if r.HasExtends {
			e.posID(r.Extends)
		} else {
			e.nilv()
		}
		e.arr(len(r.Fields))
		for _, f := range r.Fields {
			e.arr(arityPair)
			e.posID(f.Name)
			e.u8(uint8(f.Req))
		}
		e.boolean(r.Abstract)
		e.pos(r.Pos)
	}

	e.arr(arityPair)
	e.arr(len(u.Deps()))
	for _, d := range u.Deps() {
		e.arr(arityPair)
		e.u8(uint8(d.Kind))
		e.str(d.Name)
	}
	e.arr(len(u.Comments()))
	for _, c := range u.Comments() {
		e.arr(arityPair)
		e.u8(uint8(c.Kind))
		e.str(c.Text)
	}
}
