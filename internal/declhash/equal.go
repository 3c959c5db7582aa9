package declhash

import (
	"declgraph/internal/arena"
	"declgraph/internal/decl"
	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// Options selects the equality discipline. The zero value compares
// position-insensitively, matching the hash; IncludePositions gives the
// exact structural comparison used by round-trip tests.
type Options struct {
	IncludePositions bool
}

type cmp struct {
	ua, ub *decl.Unit
	pos    bool
}

func (c *cmp) str(a, b source.StringID) bool {
	return c.ua.Strings().MustLookup(a) == c.ub.Strings().MustLookup(b)
}

func (c *cmp) position(a, b source.Pos) bool {
	if !c.pos {
		return true
	}
	if a.IsNone() != b.IsNone() {
		return false
	}
	if a.IsNone() {
		return true
	}
	// Spans and lines compare directly; file paths by content.
	return a.Span == b.Span && a.Line == b.Line && c.str(a.File, b.File)
}

func (c *cmp) posID(a, b source.PosID) bool {
	return c.str(a.Name, b.Name) && c.position(a.Pos, b.Pos)
}

func (c *cmp) tyID(a, b ty.TyID) bool {
	if (a == ty.NoTyID) != (b == ty.NoTyID) {
		return false
	}
	if a == ty.NoTyID {
		return true
	}
	na := c.ua.Tys().MustLookup(a)
	nb := c.ub.Tys().MustLookup(b)
	if na.Kind != nb.Kind || na.Phase != nb.Phase || na.Prim != nb.Prim {
		return false
	}
	if !c.str(na.Name, nb.Name) || !c.position(na.Reason, nb.Reason) {
		return false
	}
	if !c.tyID(na.Elem, nb.Elem) || !c.tyID(na.Ret, nb.Ret) {
		return false
	}
	if len(na.Args) != len(nb.Args) {
		return false
	}
	for i := range na.Args {
		if !c.tyID(na.Args[i], nb.Args[i]) {
			return false
		}
	}
	return true
}

func (c *cmp) nameSet(a, b decl.NameSet) bool {
	if len(a) != len(b) {
		return false
	}
	bNames := make(map[string]struct{}, len(b))
	for id := range b {
		bNames[c.ub.Strings().MustLookup(id)] = struct{}{}
	}
	for id := range a {
		if _, ok := bNames[c.ua.Strings().MustLookup(id)]; !ok {
			return false
		}
	}
	return true
}

func (c *cmp) elt(ra arena.Ref[decl.ClassElt], rb arena.Ref[decl.ClassElt]) bool {
	ea, eb := c.ua.Elt(ra), c.ub.Elt(rb)
	if (ea == nil) != (eb == nil) {
		return false
	}
	if ea == nil {
		return true
	}
	if ea.Visibility.Kind != eb.Visibility.Kind || !c.str(ea.Visibility.Scope, eb.Visibility.Scope) {
		return false
	}
	if !c.tyID(ea.Type.Force(), eb.Type.Force()) {
		return false
	}
	if !c.str(ea.Origin, eb.Origin) || !c.str(ea.Deprecated, eb.Deprecated) {
		return false
	}
	if !c.position(ea.Pos.Force(), eb.Pos.Force()) {
		return false
	}
	return ea.Flags == eb.Flags
}

func (c *cmp) classConst(ra arena.Ref[decl.ClassConst], rb arena.Ref[decl.ClassConst]) bool {
	ca, cb := c.ua.ClassConstAt(ra), c.ub.ClassConstAt(rb)
	if (ca == nil) != (cb == nil) {
		return false
	}
	if ca == nil {
		return true
	}
	if ca.Synthesized != cb.Synthesized || ca.Abstract != cb.Abstract {
		return false
	}
	if !c.position(ca.Pos, cb.Pos) || !c.tyID(ca.Type, cb.Type) || !c.str(ca.Origin, cb.Origin) {
		return false
	}
	if len(ca.Refs) != len(cb.Refs) {
		return false
	}
	for i := range ca.Refs {
		fa, fb := ca.Refs[i], cb.Refs[i]
		if fa.From.Kind != fb.From.Kind || !c.str(fa.From.Class, fb.From.Class) || !c.str(fa.Name, fb.Name) {
			return false
		}
	}
	return true
}

func (c *cmp) typeconst(ra arena.Ref[decl.TypeconstType], rb arena.Ref[decl.TypeconstType]) bool {
	ta, tb := c.ua.TypeconstAt(ra), c.ub.TypeconstAt(rb)
	if (ta == nil) != (tb == nil) {
		return false
	}
	if ta == nil {
		return true
	}
	if ta.Synthesized != tb.Synthesized || !c.posID(ta.Name, tb.Name) || !c.str(ta.Origin, tb.Origin) {
		return false
	}
	switch ka := ta.Kind.(type) {
	case decl.AbstractTypeconst:
		kb, ok := tb.Kind.(decl.AbstractTypeconst)
		if !ok || !c.tyID(ka.AsConstraint, kb.AsConstraint) ||
			!c.tyID(ka.SuperConstraint, kb.SuperConstraint) || !c.tyID(ka.Default, kb.Default) {
			return false
		}
	case decl.ConcreteTypeconst:
		kb, ok := tb.Kind.(decl.ConcreteTypeconst)
		if !ok || !c.tyID(ka.Type, kb.Type) {
			return false
		}
	case decl.PartiallyAbstractTypeconst:
		kb, ok := tb.Kind.(decl.PartiallyAbstractTypeconst)
		if !ok || !c.tyID(ka.Constraint, kb.Constraint) || !c.tyID(ka.Type, kb.Type) {
			return false
		}
	default:
		return false
	}
	pa, aa := ta.RawEnforceable()
	pb, ab := tb.RawEnforceable()
	if aa != ab || !c.position(pa, pb) {
		return false
	}
	// Presence of the reifiability attribute is identity in both
	// disciplines; only its location is position-exempt.
	if ta.Reifiable.IsNone() != tb.Reifiable.IsNone() {
		return false
	}
	if !c.position(ta.Reifiable, tb.Reifiable) {
		return false
	}
	return ta.Concretized == tb.Concretized && ta.IsCtx == tb.IsCtx
}

func (c *cmp) tparams(a, b []decl.Tparam) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		pa, pb := a[i], b[i]
		if pa.Variance != pb.Variance || !c.posID(pa.Name, pb.Name) || pa.Reified != pb.Reified {
			return false
		}
		if len(pa.Constraints) != len(pb.Constraints) {
			return false
		}
		for j := range pa.Constraints {
			if pa.Constraints[j].Kind != pb.Constraints[j].Kind ||
				!c.tyID(pa.Constraints[j].Type, pb.Constraints[j].Type) {
				return false
			}
		}
	}
	return true
}

func eqMap[T any](c *cmp, ma, mb map[source.StringID]T, eq func(a, b T) bool) bool {
	if len(ma) != len(mb) {
		return false
	}
	byName := make(map[string]T, len(mb))
	for id, v := range mb {
		byName[c.ub.Strings().MustLookup(id)] = v
	}
	for id, va := range ma {
		vb, ok := byName[c.ua.Strings().MustLookup(id)]
		if !ok || !eq(va, vb) {
			return false
		}
	}
	return true
}

// EqualClass compares two classes, possibly across units.
func EqualClass(ua *decl.Unit, a *decl.ClassType, ub *decl.Unit, b *decl.ClassType, opts Options) bool {
	c := &cmp{ua: ua, ub: ub, pos: opts.IncludePositions}
	return c.class(a, b)
}

func (c *cmp) class(a, b *decl.ClassType) bool {
	if a.NeedInit != b.NeedInit || a.MembersFullyKnown != b.MembersFullyKnown ||
		a.Abstract != b.Abstract || a.Final != b.Final || a.Const != b.Const ||
		a.Kind != b.Kind || a.IsXHP != b.IsXHP || a.HasXHPKeyword != b.HasXHPKeyword ||
		a.IsDisposable != b.IsDisposable || a.SupportDynamicType != b.SupportDynamicType {
		return false
	}
	if !c.str(a.Name, b.Name) || !c.position(a.Pos, b.Pos) {
		return false
	}
	if !c.nameSet(a.DeferredInitMembers, b.DeferredInitMembers) {
		return false
	}
	if !c.tparams(a.Tparams, b.Tparams) {
		return false
	}
	if len(a.WhereConstraints) != len(b.WhereConstraints) {
		return false
	}
	for i := range a.WhereConstraints {
		wa, wb := a.WhereConstraints[i], b.WhereConstraints[i]
		if wa.Kind != wb.Kind || !c.tyID(wa.Left, wb.Left) || !c.tyID(wa.Right, wb.Right) {
			return false
		}
	}
	if !eqMap(c, a.Consts, b.Consts, c.classConst) ||
		!eqMap(c, a.Typeconsts, b.Typeconsts, c.typeconst) ||
		!eqMap(c, a.Props, b.Props, c.elt) ||
		!eqMap(c, a.SProps, b.SProps, c.elt) ||
		!eqMap(c, a.Methods, b.Methods, c.elt) ||
		!eqMap(c, a.SMethods, b.SMethods, c.elt) {
		return false
	}
	if !c.elt(a.Construct.Elt, b.Construct.Elt) || a.Construct.Consistency != b.Construct.Consistency {
		return false
	}
	if !eqMap(c, a.Ancestors, b.Ancestors, c.tyID) {
		return false
	}
	if len(a.ReqAncestors) != len(b.ReqAncestors) {
		return false
	}
	for i := range a.ReqAncestors {
		if !c.position(a.ReqAncestors[i].Pos, b.ReqAncestors[i].Pos) ||
			!c.tyID(a.ReqAncestors[i].Type, b.ReqAncestors[i].Type) {
			return false
		}
	}
	if !c.nameSet(a.ReqAncestorsExtends, b.ReqAncestorsExtends) || !c.nameSet(a.Extends, b.Extends) {
		return false
	}
	ea, eb := c.ua.EnumAt(a.Enum), c.ub.EnumAt(b.Enum)
	if (ea == nil) != (eb == nil) {
		return false
	}
	if ea != nil {
		if ea.EnumClass != eb.EnumClass || !c.tyID(ea.Base, eb.Base) || !c.tyID(ea.Constraint, eb.Constraint) {
			return false
		}
		if len(ea.Includes) != len(eb.Includes) {
			return false
		}
		for i := range ea.Includes {
			if !c.tyID(ea.Includes[i], eb.Includes[i]) {
				return false
			}
		}
	}
	if (a.SealedWhitelist == nil) != (b.SealedWhitelist == nil) ||
		!c.nameSet(a.SealedWhitelist, b.SealedWhitelist) {
		return false
	}
	if !eqMap(c, a.XhpEnumValues, b.XhpEnumValues, func(va, vb []decl.XhpEnumValue) bool {
		if len(va) != len(vb) {
			return false
		}
		for i := range va {
			if va[i].Kind != vb[i].Kind || va[i].Int != vb[i].Int || !c.str(va[i].Str, vb[i].Str) {
				return false
			}
		}
		return true
	}) {
		return false
	}
	if len(a.DeclErrors) != len(b.DeclErrors) {
		return false
	}
	for i := range a.DeclErrors {
		if !c.position(a.DeclErrors[i].Pos, b.DeclErrors[i].Pos) ||
			!c.str(a.DeclErrors[i].Msg, b.DeclErrors[i].Msg) {
			return false
		}
	}
	return true
}

// EqualTypedef compares two aliases, possibly across units.
func EqualTypedef(ua *decl.Unit, a *decl.TypedefType, ub *decl.Unit, b *decl.TypedefType, opts Options) bool {
	c := &cmp{ua: ua, ub: ub, pos: opts.IncludePositions}
	return c.str(a.Name, b.Name) && c.position(a.Pos, b.Pos) && a.Vis == b.Vis &&
		c.tparams(a.Tparams, b.Tparams) && c.tyID(a.Constraint, b.Constraint) && c.tyID(a.Type, b.Type)
}

// EqualFun compares two function declarations, possibly across units.
func EqualFun(ua *decl.Unit, a *decl.FunElt, ub *decl.Unit, b *decl.FunElt, opts Options) bool {
	c := &cmp{ua: ua, ub: ub, pos: opts.IncludePositions}
	return c.str(a.Deprecated, b.Deprecated) && c.tyID(a.Type, b.Type) &&
		c.position(a.Pos, b.Pos) && a.StdLib == b.StdLib &&
		a.SupportDynamicType == b.SupportDynamicType
}

// EqualConst compares two free constants, possibly across units.
func EqualConst(ua *decl.Unit, a *decl.ConstDecl, ub *decl.Unit, b *decl.ConstDecl, opts Options) bool {
	c := &cmp{ua: ua, ub: ub, pos: opts.IncludePositions}
	return c.position(a.Pos, b.Pos) && c.tyID(a.Type, b.Type)
}

// EqualRecord compares two records, possibly across units.
func EqualRecord(ua *decl.Unit, a *decl.RecordDefType, ub *decl.Unit, b *decl.RecordDefType, opts Options) bool {
	c := &cmp{ua: ua, ub: ub, pos: opts.IncludePositions}
	if !c.posID(a.Name, b.Name) || a.HasExtends != b.HasExtends || a.Abstract != b.Abstract {
		return false
	}
	if a.HasExtends && !c.posID(a.Extends, b.Extends) {
		return false
	}
	if !c.position(a.Pos, b.Pos) || len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		if !c.posID(a.Fields[i].Name, b.Fields[i].Name) || a.Fields[i].Req != b.Fields[i].Req {
			return false
		}
	}
	return true
}

// EqualUnit compares whole batches declaration by declaration.
func EqualUnit(ua, ub *decl.Unit, opts Options) bool {
	c := &cmp{ua: ua, ub: ub, pos: opts.IncludePositions}
	names := ua.ClassNames()
	if len(names) != len(ub.ClassNames()) {
		return false
	}
	for _, n := range names {
		a, _ := ua.Class(n)
		b, ok := ub.Class(n)
		if !ok || !c.class(a, b) {
			return false
		}
	}
	if !eqNamespace(ua.TypedefNames(), ub.TypedefNames(), func(n string) bool {
		a, _ := ua.Typedef(n)
		b, ok := ub.Typedef(n)
		return ok && EqualTypedef(ua, a, ub, b, opts)
	}) {
		return false
	}
	if !eqNamespace(ua.ConstNames(), ub.ConstNames(), func(n string) bool {
		a, _ := ua.Const(n)
		b, ok := ub.Const(n)
		return ok && EqualConst(ua, a, ub, b, opts)
	}) {
		return false
	}
	if !eqNamespace(ua.FunNames(), ub.FunNames(), func(n string) bool {
		a, _ := ua.Fun(n)
		b, ok := ub.Fun(n)
		return ok && EqualFun(ua, a, ub, b, opts)
	}) {
		return false
	}
	if !eqNamespace(ua.RecordNames(), ub.RecordNames(), func(n string) bool {
		a, _ := ua.Record(n)
		b, ok := ub.Record(n)
		return ok && EqualRecord(ua, a, ub, b, opts)
	}) {
		return false
	}
	da, db := ua.Deps(), ub.Deps()
	if len(da) != len(db) {
		return false
	}
	for i := range da {
		if da[i].Kind != db[i].Kind || !c.str(da[i].Name, db[i].Name) {
			return false
		}
	}
	ca, cb := ua.Comments(), ub.Comments()
	if len(ca) != len(cb) {
		return false
	}
	for i := range ca {
		if ca[i].Kind != cb[i].Kind || !c.str(ca[i].Text, cb[i].Text) {
			return false
		}
	}
	return true
}

func eqNamespace(a, b []string, eq func(name string) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for _, n := range a {
		if !eq(n) {
			return false
		}
	}
	return true
}
