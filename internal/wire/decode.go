package wire

import (
	"bytes"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"declgraph/internal/arena"
	"declgraph/internal/decl"
	"declgraph/internal/lazy"
	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// Decode reconstructs a declaration unit from wire bytes. The graph is
// built into a fresh arena; on any failure no unit is returned (decode is
// all-or-nothing per root).
func Decode(data []byte) (*decl.Unit, error) {
	return DecodeFrom(bytes.NewReader(data))
}

// DecodeFrom reads one unit's wire form from r.
func DecodeFrom(r io.Reader) (*decl.Unit, error) {
	u := decl.NewUnit()
	d := &decoder{d: msgpack.NewDecoder(r), u: u}
	if err := d.unit(); err != nil {
		return nil, err
	}
	return u, nil
}

type decoder struct {
	d *msgpack.Decoder
	u *decl.Unit
}

func (d *decoder) arrayLen(what string) (int, error) {
	n, err := d.d.DecodeArrayLen()
	if err != nil {
		return 0, malformedf("%s: %v", what, err)
	}
	if n < 0 {
		return 0, malformedf("%s: nil where an array is required", what)
	}
	return n, nil
}

func (d *decoder) expect(arity int, what string) error {
	n, err := d.arrayLen(what)
	if err != nil {
		return err
	}
	if n != arity {
		return malformedf("%s: arity %d, want %d", what, n, arity)
	}
	return nil
}

func (d *decoder) isNil() (bool, error) {
	code, err := d.d.PeekCode()
	if err != nil {
		return false, malformedf("peek: %v", err)
	}
	if code != msgpcode.Nil {
		return false, nil
	}
	return true, d.d.DecodeNil()
}

func (d *decoder) str(what string) (source.StringID, error) {
	b, err := d.d.DecodeBytes()
	if err != nil {
		return source.NoStringID, malformedf("%s: %v", what, err)
	}
	return d.u.Strings().InternBytes(b), nil
}

func (d *decoder) optStr(what string) (source.StringID, error) {
	if ok, err := d.isNil(); err != nil || ok {
		return source.NoStringID, err
	}
	return d.str(what)
}

func (d *decoder) u8(what string) (uint8, error) {
	v, err := d.d.DecodeUint8()
	if err != nil {
		return 0, malformedf("%s: %v", what, err)
	}
	return v, nil
}

func (d *decoder) u32(what string) (uint32, error) {
	v, err := d.d.DecodeUint32()
	if err != nil {
		return 0, malformedf("%s: %v", what, err)
	}
	return v, nil
}

func (d *decoder) i64(what string) (int64, error) {
	v, err := d.d.DecodeInt64()
	if err != nil {
		return 0, malformedf("%s: %v", what, err)
	}
	return v, nil
}

func (d *decoder) boolean(what string) (bool, error) {
	v, err := d.d.DecodeBool()
	if err != nil {
		return false, malformedf("%s: %v", what, err)
	}
	return v, nil
}

func (d *decoder) pos(what string) (source.Pos, error) {
	if ok, err := d.isNil(); err != nil || ok {
		return source.None, err
	}
	if err := d.expect(arityPos, what); err != nil {
		return source.None, err
	}
	file, err := d.str(what + " file")
	if err != nil {
		return source.None, err
	}
	start, err := d.u32(what + " start")
	if err != nil {
		return source.None, err
	}
	end, err := d.u32(what + " end")
	if err != nil {
		return source.None, err
	}
	line, err := d.u32(what + " line")
	if err != nil {
		return source.None, err
	}
	return source.Pos{File: file, Span: source.Span{Start: start, End: end}, Line: line}, nil
}

func (d *decoder) posID(what string) (source.PosID, error) {
	if err := d.expect(arityPosID, what); err != nil {
		return source.PosID{}, err
	}
	pos, err := d.pos(what + " pos")
	if err != nil {
		return source.PosID{}, err
	}
	name, err := d.str(what + " name")
	if err != nil {
		return source.PosID{}, err
	}
	return source.PosID{Pos: pos, Name: name}, nil
}

// tyOpt decodes nil-or-type.
func (d *decoder) tyOpt(what string) (ty.TyID, error) {
	if ok, err := d.isNil(); err != nil || ok {
		return ty.NoTyID, err
	}
	return d.ty(what)
}

// ty decodes one type node, rejecting locl-phase input: declaration
// graphs carry decl-phase types only.
func (d *decoder) ty(what string) (ty.TyID, error) {
	n, err := d.arrayLen(what)
	if err != nil {
		return ty.NoTyID, err
	}
	if n < 3 {
		return ty.NoTyID, malformedf("%s: ty arity %d, want at least 3", what, n)
	}
	tag, err := d.u8(what + " tag")
	if err != nil {
		return ty.NoTyID, err
	}
	phase, err := d.u8(what + " phase")
	if err != nil {
		return ty.NoTyID, err
	}
	if tag == tagTyVar {
		return ty.NoTyID, notSupportedf("%s: inference variables cannot be rebuilt from the wire", what)
	}
	if tag < tagTyPrim || tag > tagTyAccess {
		return ty.NoTyID, malformedf("%s: unknown ty tag %d", what, tag)
	}
	if phase == tagPhaseLocl {
		return ty.NoTyID, wrongPhasef("%s: locl-phase %v where a decl-phase type is required", what, ty.Kind(tag))
	}
	if phase != tagPhaseDecl {
		return ty.NoTyID, malformedf("%s: unknown phase %d", what, phase)
	}
	pos, err := d.pos(what + " reason")
	if err != nil {
		return ty.NoTyID, err
	}

	kind := ty.Kind(tag)
	node := ty.Node{Kind: kind, Phase: ty.PhaseDecl, Reason: pos}
	arity := map[ty.Kind]int{
		ty.KindPrim: 4, ty.KindApply: 5, ty.KindOption: 4, ty.KindLike: 4,
		ty.KindTuple: 4, ty.KindFun: 5, ty.KindGeneric: 4, ty.KindUnion: 4,
		ty.KindIntersection: 4, ty.KindAny: 3, ty.KindMixed: 3,
		ty.KindNothing: 3, ty.KindThis: 3, ty.KindAccess: 5,
	}[kind]
	if n != arity {
		return ty.NoTyID, malformedf("%s: %v arity %d, want %d", what, kind, n, arity)
	}

	switch kind {
	case ty.KindPrim:
		p, err := d.u8(what + " prim")
		if err != nil {
			return ty.NoTyID, err
		}
		if p > uint8(ty.PrimResource) {
			return ty.NoTyID, malformedf("%s: unknown prim %d", what, p)
		}
		node.Prim = ty.Prim(p)
	case ty.KindApply:
		if node.Name, err = d.str(what + " name"); err != nil {
			return ty.NoTyID, err
		}
		if node.Args, err = d.tyList(what + " args"); err != nil {
			return ty.NoTyID, err
		}
	case ty.KindOption, ty.KindLike:
		if node.Elem, err = d.tyOpt(what + " elem"); err != nil {
			return ty.NoTyID, err
		}
	case ty.KindTuple, ty.KindUnion, ty.KindIntersection:
		if node.Args, err = d.tyList(what + " members"); err != nil {
			return ty.NoTyID, err
		}
	case ty.KindFun:
		if node.Args, err = d.tyList(what + " params"); err != nil {
			return ty.NoTyID, err
		}
		if node.Ret, err = d.tyOpt(what + " ret"); err != nil {
			return ty.NoTyID, err
		}
	case ty.KindGeneric:
		if node.Name, err = d.str(what + " name"); err != nil {
			return ty.NoTyID, err
		}
	case ty.KindAccess:
		if node.Elem, err = d.tyOpt(what + " root"); err != nil {
			return ty.NoTyID, err
		}
		if node.Name, err = d.str(what + " member"); err != nil {
			return ty.NoTyID, err
		}
	}
	return d.u.Tys().New(node), nil
}

func (d *decoder) tyList(what string) ([]ty.TyID, error) {
	n, err := d.arrayLen(what)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]ty.TyID, n)
	for i := range out {
		if out[i], err = d.tyOpt(what); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *decoder) nameSet(what string) (decl.NameSet, error) {
	n, err := d.arrayLen(what)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	s := make(decl.NameSet, n)
	for range n {
		id, err := d.str(what)
		if err != nil {
			return nil, err
		}
		s[id] = struct{}{}
	}
	return s, nil
}

func (d *decoder) visibility(what string) (decl.Visibility, error) {
	if err := d.expect(arityVis, what); err != nil {
		return decl.Visibility{}, err
	}
	kind, err := d.u8(what + " kind")
	if err != nil {
		return decl.Visibility{}, err
	}
	if kind > uint8(decl.VisInternal) {
		return decl.Visibility{}, malformedf("%s: unknown visibility %d", what, kind)
	}
	scope, err := d.optStr(what + " scope")
	if err != nil {
		return decl.Visibility{}, err
	}
	return decl.Visibility{Kind: decl.VisibilityKind(kind), Scope: scope}, nil
}

// elt decodes nil-or-member; nil yields the zero ref.
func (d *decoder) elt(what string) (arena.Ref[decl.ClassElt], error) {
	var zero arena.Ref[decl.ClassElt]
	if ok, err := d.isNil(); err != nil || ok {
		return zero, err
	}
	if err := d.expect(arityElt, what); err != nil {
		return zero, err
	}
	vis, err := d.visibility(what + " visibility")
	if err != nil {
		return zero, err
	}
	typ, err := d.tyOpt(what + " type")
	if err != nil {
		return zero, err
	}
	origin, err := d.str(what + " origin")
	if err != nil {
		return zero, err
	}
	deprecated, err := d.optStr(what + " deprecated")
	if err != nil {
		return zero, err
	}
	pos, err := d.pos(what + " pos")
	if err != nil {
		return zero, err
	}
	flags, err := d.u32(what + " flags")
	if err != nil {
		return zero, err
	}
	return d.u.AddElt(decl.ClassElt{
		Visibility: vis,
		Type:       lazy.Of(typ),
		Origin:     origin,
		Deprecated: deprecated,
		Pos:        lazy.Of(pos),
		Flags:      decl.EltFlags(flags),
	}), nil
}

func (d *decoder) classConst(what string) (arena.Ref[decl.ClassConst], error) {
	var zero arena.Ref[decl.ClassConst]
	if err := d.expect(arityConst, what); err != nil {
		return zero, err
	}
	var c decl.ClassConst
	var err error
	if c.Synthesized, err = d.boolean(what + " synthesized"); err != nil {
		return zero, err
	}
	if c.Abstract, err = d.boolean(what + " abstract"); err != nil {
		return zero, err
	}
	if c.Pos, err = d.pos(what + " pos"); err != nil {
		return zero, err
	}
	if c.Type, err = d.tyOpt(what + " type"); err != nil {
		return zero, err
	}
	if c.Origin, err = d.str(what + " origin"); err != nil {
		return zero, err
	}
	n, err := d.arrayLen(what + " refs")
	if err != nil {
		return zero, err
	}
	for range n {
		if err := d.expect(arityPair, what+" ref"); err != nil {
			return zero, err
		}
		if err := d.expect(arityPair, what+" ref origin"); err != nil {
			return zero, err
		}
		fromKind, err := d.u8(what + " ref origin kind")
		if err != nil {
			return zero, err
		}
		var from decl.ClassConstFrom
		switch fromKind {
		case tagConstFromSelf:
			ok, err := d.isNil()
			if err != nil {
				return zero, err
			}
			if !ok {
				return zero, malformedf("%s: self origin carries no class", what)
			}
			from = decl.FromSelf()
		case tagConstFromClass:
			cls, err := d.str(what + " ref origin class")
			if err != nil {
				return zero, err
			}
			from = decl.FromClass(cls)
		default:
			return zero, malformedf("%s: unknown const origin tag %d", what, fromKind)
		}
		name, err := d.str(what + " ref name")
		if err != nil {
			return zero, err
		}
		c.Refs = append(c.Refs, decl.ClassConstRef{From: from, Name: name})
	}
	return d.u.AddClassConst(c), nil
}

func (d *decoder) typeconst(what string) (arena.Ref[decl.TypeconstType], error) {
	var zero arena.Ref[decl.TypeconstType]
	if err := d.expect(arityTypeconst, what); err != nil {
		return zero, err
	}
	var t decl.TypeconstType
	var err error
	if t.Synthesized, err = d.boolean(what + " synthesized"); err != nil {
		return zero, err
	}
	if t.Name, err = d.posID(what + " name"); err != nil {
		return zero, err
	}
	if err := d.expect(arityPair, what+" kind"); err != nil {
		return zero, err
	}
	tag, err := d.u8(what + " kind tag")
	if err != nil {
		return zero, err
	}
	switch tag {
	case tagTCAbstract:
		if err := d.expect(3, what+" abstract payload"); err != nil {
			return zero, err
		}
		var k decl.AbstractTypeconst
		if k.AsConstraint, err = d.tyOpt(what + " as"); err != nil {
			return zero, err
		}
		if k.SuperConstraint, err = d.tyOpt(what + " super"); err != nil {
			return zero, err
		}
		if k.Default, err = d.tyOpt(what + " default"); err != nil {
			return zero, err
		}
		t.Kind = k
	case tagTCConcrete:
		if err := d.expect(1, what+" concrete payload"); err != nil {
			return zero, err
		}
		var k decl.ConcreteTypeconst
		if k.Type, err = d.tyOpt(what + " type"); err != nil {
			return zero, err
		}
		t.Kind = k
	case tagTCPartiallyAbstract:
		if err := d.expect(2, what+" partial payload"); err != nil {
			return zero, err
		}
		var k decl.PartiallyAbstractTypeconst
		if k.Constraint, err = d.tyOpt(what + " constraint"); err != nil {
			return zero, err
		}
		if k.Type, err = d.tyOpt(what + " type"); err != nil {
			return zero, err
		}
		t.Kind = k
	default:
		return zero, malformedf("%s: unknown typeconst tag %d", what, tag)
	}
	if t.Origin, err = d.str(what + " origin"); err != nil {
		return zero, err
	}
	if err := d.expect(arityPair, what+" enforceable"); err != nil {
		return zero, err
	}
	ePos, err := d.pos(what + " enforceable pos")
	if err != nil {
		return zero, err
	}
	eAttr, err := d.boolean(what + " enforceable attr")
	if err != nil {
		return zero, err
	}
	t.SetEnforceable(ePos, eAttr)
	if t.Reifiable, err = d.pos(what + " reifiable"); err != nil {
		return zero, err
	}
	if t.Concretized, err = d.boolean(what + " concretized"); err != nil {
		return zero, err
	}
	if t.IsCtx, err = d.boolean(what + " is_ctx"); err != nil {
		return zero, err
	}
	return d.u.AddTypeconst(t), nil
}

func (d *decoder) tparams(what string) ([]decl.Tparam, error) {
	n, err := d.arrayLen(what)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]decl.Tparam, n)
	for i := range out {
		if err := d.expect(arityTparam, what); err != nil {
			return nil, err
		}
		variance, err := d.u8(what + " variance")
		if err != nil {
			return nil, err
		}
		if variance > uint8(decl.Contravariant) {
			return nil, malformedf("%s: unknown variance %d", what, variance)
		}
		out[i].Variance = decl.Variance(variance)
		if out[i].Name, err = d.posID(what + " name"); err != nil {
			return nil, err
		}
		cn, err := d.arrayLen(what + " constraints")
		if err != nil {
			return nil, err
		}
		for range cn {
			if err := d.expect(arityPair, what+" constraint"); err != nil {
				return nil, err
			}
			kind, err := d.u8(what + " constraint kind")
			if err != nil {
				return nil, err
			}
			if kind > uint8(decl.ConstraintEq) {
				return nil, malformedf("%s: unknown constraint kind %d", what, kind)
			}
			typ, err := d.tyOpt(what + " constraint type")
			if err != nil {
				return nil, err
			}
			out[i].Constraints = append(out[i].Constraints, decl.TparamConstraint{
				Kind: decl.ConstraintKind(kind), Type: typ,
			})
		}
		if out[i].Reified, err = d.boolean(what + " reified"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func decodeRefMap[T any](d *decoder, what string, one func(string) (T, error)) (map[source.StringID]T, error) {
	n, err := d.arrayLen(what)
	if err != nil {
		return nil, err
	}
	m := make(map[source.StringID]T, n)
	for range n {
		if err := d.expect(arityPair, what+" entry"); err != nil {
			return nil, err
		}
		name, err := d.str(what + " entry name")
		if err != nil {
			return nil, err
		}
		v, err := one(what)
		if err != nil {
			return nil, err
		}
		m[name] = v
	}
	return m, nil
}

func (d *decoder) class() error {
	what := "class"
	if err := d.expect(arityClass, what); err != nil {
		return err
	}
	var c decl.ClassType
	var err error
	if c.NeedInit, err = d.boolean(what + " need_init"); err != nil {
		return err
	}
	if c.MembersFullyKnown, err = d.boolean(what + " members_fully_known"); err != nil {
		return err
	}
	if c.Abstract, err = d.boolean(what + " abstract"); err != nil {
		return err
	}
	if c.Final, err = d.boolean(what + " final"); err != nil {
		return err
	}
	if c.Const, err = d.boolean(what + " const"); err != nil {
		return err
	}
	if c.DeferredInitMembers, err = d.nameSet(what + " deferred_init_members"); err != nil {
		return err
	}
	kind, err := d.u8(what + " kind")
	if err != nil {
		return err
	}
	if kind > uint8(decl.KindEnum) {
		return malformedf("%s: unknown class kind %d", what, kind)
	}
	c.Kind = decl.ClassKind(kind)
	if c.IsXHP, err = d.boolean(what + " is_xhp"); err != nil {
		return err
	}
	if c.HasXHPKeyword, err = d.boolean(what + " has_xhp_keyword"); err != nil {
		return err
	}
	if c.IsDisposable, err = d.boolean(what + " is_disposable"); err != nil {
		return err
	}
	if c.Name, err = d.str(what + " name"); err != nil {
		return err
	}
	if c.Pos, err = d.pos(what + " pos"); err != nil {
		return err
	}
	if c.Tparams, err = d.tparams(what + " tparams"); err != nil {
		return err
	}
	wn, err := d.arrayLen(what + " where_constraints")
	if err != nil {
		return err
	}
	for range wn {
		if err := d.expect(arityWhere, what+" where"); err != nil {
			return err
		}
		var w decl.WhereConstraint
		if w.Left, err = d.tyOpt(what + " where left"); err != nil {
			return err
		}
		kind, err := d.u8(what + " where kind")
		if err != nil {
			return err
		}
		if kind > uint8(decl.ConstraintEq) {
			return malformedf("%s: unknown constraint kind %d", what, kind)
		}
		w.Kind = decl.ConstraintKind(kind)
		if w.Right, err = d.tyOpt(what + " where right"); err != nil {
			return err
		}
		c.WhereConstraints = append(c.WhereConstraints, w)
	}
	if c.Consts, err = decodeRefMap(d, what+" consts", d.classConst); err != nil {
		return err
	}
	if c.Typeconsts, err = decodeRefMap(d, what+" typeconsts", d.typeconst); err != nil {
		return err
	}
	if c.Props, err = decodeRefMap(d, what+" props", d.elt); err != nil {
		return err
	}
	if c.SProps, err = decodeRefMap(d, what+" sprops", d.elt); err != nil {
		return err
	}
	if c.Methods, err = decodeRefMap(d, what+" methods", d.elt); err != nil {
		return err
	}
	if c.SMethods, err = decodeRefMap(d, what+" smethods", d.elt); err != nil {
		return err
	}
	if err := d.expect(arityConstruct, what+" construct"); err != nil {
		return err
	}
	if c.Construct.Elt, err = d.elt(what + " construct elt"); err != nil {
		return err
	}
	ck, err := d.u8(what + " construct consistency")
	if err != nil {
		return err
	}
	if ck > uint8(decl.FinalClass) {
		return malformedf("%s: unknown consistency %d", what, ck)
	}
	c.Construct.Consistency = decl.ConsistentKind(ck)
	an, err := d.arrayLen(what + " ancestors")
	if err != nil {
		return err
	}
	c.Ancestors = make(map[source.StringID]ty.TyID, an)
	for range an {
		if err := d.expect(arityPair, what+" ancestor"); err != nil {
			return err
		}
		name, err := d.str(what + " ancestor name")
		if err != nil {
			return err
		}
		typ, err := d.tyOpt(what + " ancestor type")
		if err != nil {
			return err
		}
		c.Ancestors[name] = typ
	}
	if c.SupportDynamicType, err = d.boolean(what + " support_dynamic_type"); err != nil {
		return err
	}
	rn, err := d.arrayLen(what + " req_ancestors")
	if err != nil {
		return err
	}
	for range rn {
		if err := d.expect(arityReq, what+" requirement"); err != nil {
			return err
		}
		var r decl.Requirement
		if r.Pos, err = d.pos(what + " requirement pos"); err != nil {
			return err
		}
		if r.Type, err = d.tyOpt(what + " requirement type"); err != nil {
			return err
		}
		c.ReqAncestors = append(c.ReqAncestors, r)
	}
	if c.ReqAncestorsExtends, err = d.nameSet(what + " req_ancestors_extends"); err != nil {
		return err
	}
	if c.Extends, err = d.nameSet(what + " extends"); err != nil {
		return err
	}
	if ok, err := d.isNil(); err != nil {
		return err
	} else if !ok {
		if err := d.expect(arityEnum, what+" enum"); err != nil {
			return err
		}
		var en decl.EnumType
		if en.Base, err = d.tyOpt(what + " enum base"); err != nil {
			return err
		}
		if en.Constraint, err = d.tyOpt(what + " enum constraint"); err != nil {
			return err
		}
		if en.Includes, err = d.tyList(what + " enum includes"); err != nil {
			return err
		}
		if en.EnumClass, err = d.boolean(what + " enum_class"); err != nil {
			return err
		}
		c.Enum = d.u.AddEnum(en)
	}
	if ok, err := d.isNil(); err != nil {
		return err
	} else if !ok {
		s, err := d.nameSet(what + " sealed_whitelist")
		if err != nil {
			return err
		}
		if s == nil {
			s = decl.NameSet{}
		}
		c.SealedWhitelist = s
	}
	xn, err := d.arrayLen(what + " xhp_enum_values")
	if err != nil {
		return err
	}
	if xn > 0 {
		c.XhpEnumValues = make(map[source.StringID][]decl.XhpEnumValue, xn)
	}
	for range xn {
		if err := d.expect(arityPair, what+" xhp attr"); err != nil {
			return err
		}
		name, err := d.str(what + " xhp attr name")
		if err != nil {
			return err
		}
		vn, err := d.arrayLen(what + " xhp values")
		if err != nil {
			return err
		}
		vals := make([]decl.XhpEnumValue, vn)
		for i := range vals {
			if err := d.expect(arityXhpValue, what+" xhp value"); err != nil {
				return err
			}
			kind, err := d.u8(what + " xhp value kind")
			if err != nil {
				return err
			}
			if kind > uint8(decl.XhpValueString) {
				return malformedf("%s: unknown xhp value tag %d", what, kind)
			}
			vals[i].Kind = decl.XhpEnumValueKind(kind)
			if vals[i].Int, err = d.i64(what + " xhp value int"); err != nil {
				return err
			}
			if vals[i].Str, err = d.optStr(what + " xhp value str"); err != nil {
				return err
			}
		}
		c.XhpEnumValues[name] = vals
	}
	en, err := d.arrayLen(what + " decl_errors")
	if err != nil {
		return err
	}
	for range en {
		if err := d.expect(arityDeclError, what+" decl_error"); err != nil {
			return err
		}
		var de decl.DeclError
		if de.Pos, err = d.pos(what + " decl_error pos"); err != nil {
			return err
		}
		if de.Msg, err = d.str(what + " decl_error msg"); err != nil {
			return err
		}
		c.DeclErrors = append(c.DeclErrors, de)
	}
	d.u.AddClass(c)
	return nil
}

func (d *decoder) unit() error {
	if err := d.expect(arityUnit, "unit"); err != nil {
		return err
	}
	cn, err := d.arrayLen("classes")
	if err != nil {
		return err
	}
	for range cn {
		if err := d.class(); err != nil {
			return err
		}
	}
	tn, err := d.arrayLen("typedefs")
	if err != nil {
		return err
	}
	for range tn {
		if err := d.typedef(); err != nil {
			return err
		}
	}
	fcn, err := d.arrayLen("consts")
	if err != nil {
		return err
	}
	for range fcn {
		if err := d.expect(arityFreeConst, "const"); err != nil {
			return err
		}
		name, err := d.str("const name")
		if err != nil {
			return err
		}
		var c decl.ConstDecl
		if c.Pos, err = d.pos("const pos"); err != nil {
			return err
		}
		if c.Type, err = d.tyOpt("const type"); err != nil {
			return err
		}
		d.u.AddConst(name, c)
	}
	fn, err := d.arrayLen("funs")
	if err != nil {
		return err
	}
	for range fn {
		if err := d.expect(arityFun, "fun"); err != nil {
			return err
		}
		name, err := d.str("fun name")
		if err != nil {
			return err
		}
		var f decl.FunElt
		if f.Deprecated, err = d.optStr("fun deprecated"); err != nil {
			return err
		}
		if f.Type, err = d.tyOpt("fun type"); err != nil {
			return err
		}
		if f.Pos, err = d.pos("fun pos"); err != nil {
			return err
		}
		if f.StdLib, err = d.boolean("fun std_lib"); err != nil {
			return err
		}
		if f.SupportDynamicType, err = d.boolean("fun support_dynamic_type"); err != nil {
			return err
		}
		d.u.AddFun(name, f)
	}
	rn, err := d.arrayLen("records")
	if err != nil {
		return err
	}
	for range rn {
		if err := d.record(); err != nil {
			return err
		}
	}
	if err := d.expect(arityPair, "meta"); err != nil {
		return err
	}
	dn, err := d.arrayLen("deps")
	if err != nil {
		return err
	}
	for range dn {
		if err := d.expect(arityPair, "dep"); err != nil {
			return err
		}
		kind, err := d.u8("dep kind")
		if err != nil {
			return err
		}
		if kind > uint8(decl.RefType) {
			return malformedf("dep: unknown reference tag %d", kind)
		}
		name, err := d.str("dep name")
		if err != nil {
			return err
		}
		d.u.AddDep(decl.DeclReference{Kind: decl.DeclRefKind(kind), Name: name})
	}
	cmn, err := d.arrayLen("comments")
	if err != nil {
		return err
	}
	for range cmn {
		if err := d.expect(arityPair, "comment"); err != nil {
			return err
		}
		kind, err := d.u8("comment kind")
		if err != nil {
			return err
		}
		if kind > uint8(decl.CommentBlock) {
			return malformedf("comment: unknown tag %d", kind)
		}
		text, err := d.str("comment text")
		if err != nil {
			return err
		}
		d.u.AddComment(decl.Comment{Kind: decl.CommentKind(kind), Text: text})
	}
	return nil
}

func (d *decoder) typedef() error {
	what := "typedef"
	if err := d.expect(arityTypedef, what); err != nil {
		return err
	}
	var t decl.TypedefType
	var err error
	if t.Name, err = d.str(what + " name"); err != nil {
		return err
	}
	if t.Pos, err = d.pos(what + " pos"); err != nil {
		return err
	}
	vis, err := d.u8(what + " vis")
	if err != nil {
		return err
	}
	if vis > uint8(decl.Opaque) {
		return malformedf("%s: unknown visibility %d", what, vis)
	}
	t.Vis = decl.TypedefVisibility(vis)
	if t.Tparams, err = d.tparams(what + " tparams"); err != nil {
		return err
	}
	if t.Constraint, err = d.tyOpt(what + " constraint"); err != nil {
		return err
	}
	if t.Type, err = d.tyOpt(what + " type"); err != nil {
		return err
	}
	d.u.AddTypedef(t)
	return nil
}

func (d *decoder) record() error {
	what := "record"
	if err := d.expect(arityRecord, what); err != nil {
		return err
	}
	var r decl.RecordDefType
	var err error
	if r.Name, err = d.posID(what + " name"); err != nil {
		return err
	}
	if ok, err := d.isNil(); err != nil {
		return err
	} else if !ok {
		if r.Extends, err = d.posID(what + " extends"); err != nil {
			return err
		}
		r.HasExtends = true
	}
	fn, err := d.arrayLen(what + " fields")
	if err != nil {
		return err
	}
	for range fn {
		if err := d.expect(arityPair, what+" field"); err != nil {
			return err
		}
		var f decl.RecordField
		if f.Name, err = d.posID(what + " field name"); err != nil {
			return err
		}
		req, err := d.u8(what + " field req")
		if err != nil {
			return err
		}
		if req > uint8(decl.HasDefaultValue) {
			return malformedf("%s: unknown field req %d", what, req)
		}
		f.Req = decl.RecordFieldReq(req)
		r.Fields = append(r.Fields, f)
	}
	if r.Abstract, err = d.boolean(what + " abstract"); err != nil {
		return err
	}
	if r.Pos, err = d.pos(what + " pos"); err != nil {
		return err
	}
	d.u.AddRecord(r)
	return nil
}
