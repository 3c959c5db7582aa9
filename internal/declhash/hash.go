// Package declhash implements the position-insensitive identity
// discipline over declaration entities: a hash suitable as an incremental
// cache key, and structural equality in both position-insensitive and
// exact (position-sensitive) forms.
//
// The hash folds fields in a fixed, type-stable order into an xxhash
// digest. Every field whose declared type is a source position contributes
// nothing to the stream, so rewriting positions never changes the hash.
// Variable-length data is length-prefixed and union variants are tagged,
// keeping the stream unambiguous. The hash is a sound proxy for "same
// declaration, ignoring where it was written": unequal hashes imply the
// declarations differ.
package declhash

import (
	"encoding/binary"
	"sort"

	"github.com/cespare/xxhash/v2"

	"declgraph/internal/arena"
	"declgraph/internal/decl"
	"declgraph/internal/source"
	"declgraph/internal/ty"
)

type folder struct {
	u   *decl.Unit
	d   *xxhash.Digest
	buf [8]byte
}

func newFolder(u *decl.Unit) *folder {
	return &folder{u: u, d: xxhash.New()}
}

func (f *folder) sum() uint64 { return f.d.Sum64() }

func (f *folder) u64(v uint64) {
	binary.LittleEndian.PutUint64(f.buf[:], v)
	f.d.Write(f.buf[:])
}

func (f *folder) u32(v uint32) {
	binary.LittleEndian.PutUint32(f.buf[:4], v)
	f.d.Write(f.buf[:4])
}

func (f *folder) byte(v byte) {
	f.buf[0] = v
	f.d.Write(f.buf[:1])
}

func (f *folder) boolean(v bool) {
	if v {
		f.byte(1)
	} else {
		f.byte(0)
	}
}

// str folds interned content, not the ID: two units interning the same
// names in different orders must still agree.
func (f *folder) str(id source.StringID) {
	s := f.u.Strings().MustLookup(id)
	f.u32(uint32(len(s)))
	f.d.WriteString(s)
}

// posID folds the name only; the position half is identity-exempt.
func (f *folder) posID(p source.PosID) {
	f.str(p.Name)
}

func (f *folder) tyID(id ty.TyID) {
	if id == ty.NoTyID {
		f.byte(0)
		return
	}
	f.byte(1)
	n := f.u.Tys().MustLookup(id)
	f.byte(byte(n.Kind))
	f.byte(byte(n.Phase))
	f.byte(byte(n.Prim))
	f.str(n.Name)
	f.tyID(n.Elem)
	f.u32(uint32(len(n.Args)))
	for _, a := range n.Args {
		f.tyID(a)
	}
	f.tyID(n.Ret)
}

func (f *folder) nameSet(s decl.NameSet) {
	names := f.sortedSet(s)
	f.u32(uint32(len(names)))
	for _, n := range names {
		f.u32(uint32(len(n)))
		f.d.WriteString(n)
	}
}

func (f *folder) sortedSet(s decl.NameSet) []string {
	names := make([]string, 0, len(s))
	for id := range s {
		names = append(names, f.u.Strings().MustLookup(id))
	}
	sort.Strings(names)
	return names
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

func (f *folder) visibility(v decl.Visibility) {
	f.byte(byte(v.Kind))
	f.str(v.Scope)
}

func (f *folder) elt(r arena.Ref[decl.ClassElt]) {
	e := f.u.Elt(r)
	if e == nil {
		f.byte(0)
		return
	}
	f.byte(1)
	f.visibility(e.Visibility)
	f.tyID(e.Type.Force())
	f.str(e.Origin)
	f.str(e.Deprecated)
	// e.Pos is position-typed: neither forced nor folded.
	f.u32(uint32(e.Flags))
}

func (f *folder) classConst(r arena.Ref[decl.ClassConst]) {
	c := f.u.ClassConstAt(r)
	if c == nil {
		f.byte(0)
		return
	}
	f.byte(1)
	f.boolean(c.Synthesized)
	f.boolean(c.Abstract)
	f.tyID(c.Type)
	f.str(c.Origin)
	f.u32(uint32(len(c.Refs)))
	for _, ref := range c.Refs {
		f.byte(byte(ref.From.Kind))
		f.str(ref.From.Class)
		f.str(ref.Name)
	}
}

func (f *folder) typeconst(r arena.Ref[decl.TypeconstType]) {
	t := f.u.TypeconstAt(r)
	if t == nil {
		f.byte(0)
		return
	}
	f.byte(1)
	f.boolean(t.Synthesized)
	f.posID(t.Name)
	switch k := t.Kind.(type) {
	case decl.AbstractTypeconst:
		f.byte(0)
		f.tyID(k.AsConstraint)
		f.tyID(k.SuperConstraint)
		f.tyID(k.Default)
	case decl.ConcreteTypeconst:
		f.byte(1)
		f.tyID(k.Type)
	case decl.PartiallyAbstractTypeconst:
		f.byte(2)
		f.tyID(k.Constraint)
		f.tyID(k.Type)
	}
	f.str(t.Origin)
	_, attr := t.RawEnforceable()
	f.boolean(attr)
	// Reifiability is identity; only the attribute's location is exempt.
	f.boolean(!t.Reifiable.IsNone())
	f.boolean(t.Concretized)
	f.boolean(t.IsCtx)
}

func (f *folder) tparams(ps []decl.Tparam) {
	f.u32(uint32(len(ps)))
	for _, p := range ps {
		f.byte(byte(p.Variance))
		f.posID(p.Name)
		f.u32(uint32(len(p.Constraints)))
		for _, c := range p.Constraints {
			f.byte(byte(c.Kind))
			f.tyID(c.Type)
		}
		f.boolean(p.Reified)
	}
}

// HashClass returns the position-insensitive cache key of a class.
func HashClass(u *decl.Unit, c *decl.ClassType) uint64 {
	f := newFolder(u)
	f.class(c)
	return f.sum()
}

func (f *folder) class(c *decl.ClassType) {
	f.boolean(c.NeedInit)
	f.boolean(c.MembersFullyKnown)
	f.boolean(c.Abstract)
	f.boolean(c.Final)
	f.boolean(c.Const)
	f.nameSet(c.DeferredInitMembers)
	f.byte(byte(c.Kind))
	f.boolean(c.IsXHP)
	f.boolean(c.HasXHPKeyword)
	f.boolean(c.IsDisposable)
	f.str(c.Name)
	f.tparams(c.Tparams)
	f.u32(uint32(len(c.WhereConstraints)))
	for _, w := range c.WhereConstraints {
		f.tyID(w.Left)
		f.byte(byte(w.Kind))
		f.tyID(w.Right)
	}
	f.u32(uint32(len(c.Consts)))
	for _, id := range sortedKeys(f.u, c.Consts) {
		f.str(id)
		f.classConst(c.Consts[id])
	}
	f.u32(uint32(len(c.Typeconsts)))
	for _, id := range sortedKeys(f.u, c.Typeconsts) {
		f.str(id)
		f.typeconst(c.Typeconsts[id])
	}
	for _, m := range []map[source.StringID]arena.Ref[decl.ClassElt]{
		c.Props, c.SProps, c.Methods, c.SMethods,
	} {
		f.u32(uint32(len(m)))
		for _, id := range sortedKeys(f.u, m) {
			f.str(id)
			f.elt(m[id])
		}
	}
	f.elt(c.Construct.Elt)
	f.byte(byte(c.Construct.Consistency))
	f.u32(uint32(len(c.Ancestors)))
	for _, id := range sortedKeys(f.u, c.Ancestors) {
		f.str(id)
		f.tyID(c.Ancestors[id])
	}
	f.boolean(c.SupportDynamicType)
	f.u32(uint32(len(c.ReqAncestors)))
	for _, r := range c.ReqAncestors {
		f.tyID(r.Type)
	}
	f.nameSet(c.ReqAncestorsExtends)
	f.nameSet(c.Extends)
	if e := f.u.EnumAt(c.Enum); e != nil {
		f.byte(1)
		f.tyID(e.Base)
		f.tyID(e.Constraint)
		f.u32(uint32(len(e.Includes)))
		for _, inc := range e.Includes {
			f.tyID(inc)
		}
		f.boolean(e.EnumClass)
	} else {
		f.byte(0)
	}
	f.boolean(c.SealedWhitelist != nil)
	f.nameSet(c.SealedWhitelist)
	f.u32(uint32(len(c.XhpEnumValues)))
	for _, id := range sortedKeys(f.u, c.XhpEnumValues) {
		f.str(id)
		vals := c.XhpEnumValues[id]
		f.u32(uint32(len(vals)))
		for _, v := range vals {
			f.byte(byte(v.Kind))
			f.u64(uint64(v.Int))
			f.str(v.Str)
		}
	}
	f.u32(uint32(len(c.DeclErrors)))
	for _, e := range c.DeclErrors {
		f.str(e.Msg)
	}
}

// HashTypedef returns the position-insensitive cache key of an alias.
func HashTypedef(u *decl.Unit, t *decl.TypedefType) uint64 {
	f := newFolder(u)
	f.typedef(t)
	return f.sum()
}

func (f *folder) typedef(t *decl.TypedefType) {
	f.str(t.Name)
	f.byte(byte(t.Vis))
	f.tparams(t.Tparams)
	f.tyID(t.Constraint)
	f.tyID(t.Type)
}

// HashFun returns the position-insensitive cache key of a function.
func HashFun(u *decl.Unit, fn *decl.FunElt) uint64 {
	f := newFolder(u)
	f.fun(fn)
	return f.sum()
}

func (f *folder) fun(fn *decl.FunElt) {
	f.str(fn.Deprecated)
	f.tyID(fn.Type)
	f.boolean(fn.StdLib)
	f.boolean(fn.SupportDynamicType)
}

// HashConst returns the position-insensitive cache key of a free constant.
func HashConst(u *decl.Unit, c *decl.ConstDecl) uint64 {
	f := newFolder(u)
	f.tyID(c.Type)
	return f.sum()
}

// HashRecord returns the position-insensitive cache key of a record.
func HashRecord(u *decl.Unit, r *decl.RecordDefType) uint64 {
	f := newFolder(u)
	f.record(r)
	return f.sum()
}

func (f *folder) record(r *decl.RecordDefType) {
	f.posID(r.Name)
	f.boolean(r.HasExtends)
	if r.HasExtends {
		f.posID(r.Extends)
	}
	f.u32(uint32(len(r.Fields)))
	for _, fd := range r.Fields {
		f.posID(fd.Name)
		f.byte(byte(fd.Req))
	}
	f.boolean(r.Abstract)
}

// HashUnit folds every declaration of the batch, each namespace in sorted
// name order, into one digest.
func HashUnit(u *decl.Unit) uint64 {
	f := newFolder(u)
	for _, name := range u.ClassNames() {
		c, _ := u.Class(name)
		f.class(c)
	}
	for _, name := range u.TypedefNames() {
		t, _ := u.Typedef(name)
		f.typedef(t)
	}
	for _, name := range u.ConstNames() {
		c, _ := u.Const(name)
		id, _ := u.Strings().Find(name)
		f.str(id)
		f.tyID(c.Type)
	}
	for _, name := range u.FunNames() {
		fn, _ := u.Fun(name)
		id, _ := u.Strings().Find(name)
		f.str(id)
		f.fun(fn)
	}
	for _, name := range u.RecordNames() {
		r, _ := u.Record(name)
		f.record(r)
	}
	f.u32(uint32(len(u.Deps())))
	for _, d := range u.Deps() {
		f.byte(byte(d.Kind))
		f.str(d.Name)
	}
	f.u32(uint32(len(u.Comments())))
	for _, c := range u.Comments() {
		f.byte(byte(c.Kind))
		f.str(c.Text)
	}
	return f.sum()
}
