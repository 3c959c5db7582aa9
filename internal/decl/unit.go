package decl

import (
	"sort"

	"declgraph/internal/arena"
	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// Unit is the declaration graph of one compilation batch. It owns the
// arena, the string table and the type store; every entity reachable from
// it lives in that arena. After construction a unit is read-only and safe
// to share across any number of reader goroutines (lazily-forced member
// cells synchronize internally).
type Unit struct {
	arena   *arena.Arena
	strings *source.Interner
	tys     *ty.Store

	elts        *arena.Store[ClassElt]
	classConsts *arena.Store[ClassConst]
	typeconsts  *arena.Store[TypeconstType]
	enums       *arena.Store[EnumType]
	classes     *arena.Store[ClassType]
	typedefs    *arena.Store[TypedefType]
	consts      *arena.Store[ConstDecl]
	funs        *arena.Store[FunElt]
	records     *arena.Store[RecordDefType]

	classIdx   map[source.StringID]arena.Ref[ClassType]
	typedefIdx map[source.StringID]arena.Ref[TypedefType]
	constIdx   map[source.StringID]arena.Ref[ConstDecl]
	funIdx     map[source.StringID]arena.Ref[FunElt]
	recordIdx  map[source.StringID]arena.Ref[RecordDefType]

	deps     []DeclReference
	comments []Comment
}

// NewUnit creates an empty unit with a fresh arena.
func NewUnit() *Unit {
	a := arena.New()
	u := &Unit{
		arena:       a,
		strings:     source.NewInterner(),
		tys:         ty.NewStore(a, 0),
		elts:        arena.NewStore[ClassElt](a, 0),
		classConsts: arena.NewStore[ClassConst](a, 0),
		typeconsts:  arena.NewStore[TypeconstType](a, 0),
		enums:       arena.NewStore[EnumType](a, 8),
		classes:     arena.NewStore[ClassType](a, 16),
		typedefs:    arena.NewStore[TypedefType](a, 8),
		consts:      arena.NewStore[ConstDecl](a, 8),
		funs:        arena.NewStore[FunElt](a, 16),
		records:     arena.NewStore[RecordDefType](a, 8),
		classIdx:    make(map[source.StringID]arena.Ref[ClassType]),
		typedefIdx:  make(map[source.StringID]arena.Ref[TypedefType]),
		constIdx:    make(map[source.StringID]arena.Ref[ConstDecl]),
		funIdx:      make(map[source.StringID]arena.Ref[FunElt]),
		recordIdx:   make(map[source.StringID]arena.Ref[RecordDefType]),
	}
	a.Register(u.strings.Reset)
	a.Register(func() {
		clear(u.classIdx)
		clear(u.typedefIdx)
		clear(u.constIdx)
		clear(u.funIdx)
		clear(u.recordIdx)
		u.deps = nil
		u.comments = nil
	})
	return u
}

// Arena returns the owning arena.
func (u *Unit) Arena() *arena.Arena { return u.arena }

// Strings returns the unit's string table.
func (u *Unit) Strings() *source.Interner { return u.strings }

// Tys returns the unit's type store.
func (u *Unit) Tys() *ty.Store { return u.tys }

// Reset bulk-frees the whole graph. Previously issued refs, views and
// names become invalid; external coordination must ensure no reader still
// holds them.
func (u *Unit) Reset() { u.arena.Reset() }

// Builders -------------------------------------------------------------

// AddClass stores the class and indexes it by name.
func (u *Unit) AddClass(c ClassType) arena.Ref[ClassType] {
	r := u.classes.Alloc(c)
	u.classIdx[c.Name] = r
	return r
}

// AddTypedef stores the alias and indexes it by name.
func (u *Unit) AddTypedef(t TypedefType) arena.Ref[TypedefType] {
	r := u.typedefs.Alloc(t)
	u.typedefIdx[t.Name] = r
	return r
}

// AddConst stores a free constant under the given name.
func (u *Unit) AddConst(name source.StringID, c ConstDecl) arena.Ref[ConstDecl] {
	r := u.consts.Alloc(c)
	u.constIdx[name] = r
	return r
}

// AddFun stores a function declaration under the given name.
func (u *Unit) AddFun(name source.StringID, f FunElt) arena.Ref[FunElt] {
	r := u.funs.Alloc(f)
	u.funIdx[name] = r
	return r
}

// AddRecord stores the record and indexes it by name.
func (u *Unit) AddRecord(rec RecordDefType) arena.Ref[RecordDefType] {
	r := u.records.Alloc(rec)
	u.recordIdx[rec.Name.Name] = r
	return r
}

// AddElt stores a class member.
func (u *Unit) AddElt(e ClassElt) arena.Ref[ClassElt] {
	return u.elts.Alloc(e)
}

// AddClassConst stores a class constant.
func (u *Unit) AddClassConst(c ClassConst) arena.Ref[ClassConst] {
	return u.classConsts.Alloc(c)
}

// AddTypeconst stores a type constant.
func (u *Unit) AddTypeconst(t TypeconstType) arena.Ref[TypeconstType] {
	return u.typeconsts.Alloc(t)
}

// AddEnum stores enum metadata.
func (u *Unit) AddEnum(e EnumType) arena.Ref[EnumType] {
	return u.enums.Alloc(e)
}

// AddDep records a declaration the unit's bodies reference.
func (u *Unit) AddDep(d DeclReference) { u.deps = append(u.deps, d) }

// AddComment retains a source comment with the batch.
func (u *Unit) AddComment(c Comment) { u.comments = append(u.comments, c) }

// Resolvers ------------------------------------------------------------

// Elt resolves a member ref; nil for invalid or stale refs.
func (u *Unit) Elt(r arena.Ref[ClassElt]) *ClassElt { return u.elts.Get(r) }

// ClassConstAt resolves a class-constant ref.
func (u *Unit) ClassConstAt(r arena.Ref[ClassConst]) *ClassConst { return u.classConsts.Get(r) }

// TypeconstAt resolves a typeconst ref.
func (u *Unit) TypeconstAt(r arena.Ref[TypeconstType]) *TypeconstType { return u.typeconsts.Get(r) }

// EnumAt resolves enum metadata.
func (u *Unit) EnumAt(r arena.Ref[EnumType]) *EnumType { return u.enums.Get(r) }

// ClassAt resolves a class ref.
func (u *Unit) ClassAt(r arena.Ref[ClassType]) *ClassType { return u.classes.Get(r) }

// Lookup by name -------------------------------------------------------

// Class looks a class up by source name.
func (u *Unit) Class(name string) (*ClassType, bool) {
	id, ok := u.strings.Find(name)
	if !ok {
		return nil, false
	}
	r, ok := u.classIdx[id]
	if !ok {
		return nil, false
	}
	c := u.classes.Get(r)
	return c, c != nil
}

// Typedef looks an alias up by name.
func (u *Unit) Typedef(name string) (*TypedefType, bool) {
	id, ok := u.strings.Find(name)
	if !ok {
		return nil, false
	}
	r, ok := u.typedefIdx[id]
	if !ok {
		return nil, false
	}
	t := u.typedefs.Get(r)
	return t, t != nil
}

// Const looks a free constant up by name.
func (u *Unit) Const(name string) (*ConstDecl, bool) {
	id, ok := u.strings.Find(name)
	if !ok {
		return nil, false
	}
	r, ok := u.constIdx[id]
	if !ok {
		return nil, false
	}
	c := u.consts.Get(r)
	return c, c != nil
}

// Fun looks a function up by name.
func (u *Unit) Fun(name string) (*FunElt, bool) {
	id, ok := u.strings.Find(name)
	if !ok {
		return nil, false
	}
	r, ok := u.funIdx[id]
	if !ok {
		return nil, false
	}
	f := u.funs.Get(r)
	return f, f != nil
}

// Record looks a record up by name.
func (u *Unit) Record(name string) (*RecordDefType, bool) {
	id, ok := u.strings.Find(name)
	if !ok {
		return nil, false
	}
	r, ok := u.recordIdx[id]
	if !ok {
		return nil, false
	}
	rec := u.records.Get(r)
	return rec, rec != nil
}

// Member helpers -------------------------------------------------------

func (u *Unit) memberElt(m map[source.StringID]arena.Ref[ClassElt], name string) (*ClassElt, bool) {
	id, ok := u.strings.Find(name)
	if !ok {
		return nil, false
	}
	r, ok := m[id]
	if !ok {
		return nil, false
	}
	e := u.elts.Get(r)
	return e, e != nil
}

// Method finds an instance method by name.
func (u *Unit) Method(c *ClassType, name string) (*ClassElt, bool) {
	return u.memberElt(c.Methods, name)
}

// SMethod finds a static method by name.
func (u *Unit) SMethod(c *ClassType, name string) (*ClassElt, bool) {
	return u.memberElt(c.SMethods, name)
}

// Prop finds an instance property by name.
func (u *Unit) Prop(c *ClassType, name string) (*ClassElt, bool) {
	return u.memberElt(c.Props, name)
}

// SProp finds a static property by name.
func (u *Unit) SProp(c *ClassType, name string) (*ClassElt, bool) {
	return u.memberElt(c.SProps, name)
}

// ConstIn finds a class constant by name.
func (u *Unit) ConstIn(c *ClassType, name string) (*ClassConst, bool) {
	id, ok := u.strings.Find(name)
	if !ok {
		return nil, false
	}
	r, ok := c.Consts[id]
	if !ok {
		return nil, false
	}
	cc := u.classConsts.Get(r)
	return cc, cc != nil
}

// TypeconstIn finds a type constant by name.
func (u *Unit) TypeconstIn(c *ClassType, name string) (*TypeconstType, bool) {
	id, ok := u.strings.Find(name)
	if !ok {
		return nil, false
	}
	r, ok := c.Typeconsts[id]
	if !ok {
		return nil, false
	}
	tc := u.typeconsts.Get(r)
	return tc, tc != nil
}

// Enumeration ----------------------------------------------------------

func (u *Unit) sortedNames(ids func(yield func(source.StringID) bool)) []string {
	var names []string
	ids(func(id source.StringID) bool {
		names = append(names, u.strings.MustLookup(id))
		return true
	})
	sort.Strings(names)
	return names
}

// ClassNames returns every class name in lexicographic order.
func (u *Unit) ClassNames() []string {
	return u.sortedNames(func(yield func(source.StringID) bool) {
		for id := range u.classIdx {
			yield(id)
		}
	})
}

// TypedefNames returns every alias name in lexicographic order.
func (u *Unit) TypedefNames() []string {
	return u.sortedNames(func(yield func(source.StringID) bool) {
		for id := range u.typedefIdx {
			yield(id)
		}
	})
}

// ConstNames returns every free constant name in lexicographic order.
func (u *Unit) ConstNames() []string {
	return u.sortedNames(func(yield func(source.StringID) bool) {
		for id := range u.constIdx {
			yield(id)
		}
	})
}

// FunNames returns every function name in lexicographic order.
func (u *Unit) FunNames() []string {
	return u.sortedNames(func(yield func(source.StringID) bool) {
		for id := range u.funIdx {
			yield(id)
		}
	})
}

// RecordNames returns every record name in lexicographic order.
func (u *Unit) RecordNames() []string {
	return u.sortedNames(func(yield func(source.StringID) bool) {
		for id := range u.recordIdx {
			yield(id)
		}
	})
}

// Deps returns the recorded declaration references.
func (u *Unit) Deps() []DeclReference { return u.deps }

// Comments returns the retained comments.
func (u *Unit) Comments() []Comment { return u.comments }
