package wire

import (
	"fmt"
	"io"
	"strings"

	"declgraph/internal/decl"
	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// DumpOptions controls text rendering.
type DumpOptions struct {
	// Mode selects how typeconst enforceability is interpreted.
	Mode decl.EnforceMode
	// Positions includes source positions in the output. Off by default so
	// that dumps of structurally identical units compare equal.
	Positions bool
}

// Dump writes a stable human-readable rendering of the unit. Entities and
// name-keyed members come out in lexicographic order, so the output is a
// pure function of the graph.
func Dump(w io.Writer, u *decl.Unit, opts DumpOptions) error {
	p := &printer{w: w, u: u, opts: opts}
	for _, name := range u.ClassNames() {
		c, _ := u.Class(name)
		p.class(c)
	}
	for _, name := range u.TypedefNames() {
		t, _ := u.Typedef(name)
		p.typedef(t)
	}
	for _, name := range u.ConstNames() {
		c, _ := u.Const(name)
		p.printf("const %s: %s%s\n", name, RenderTy(u, c.Type), p.at(c.Pos))
	}
	for _, name := range u.FunNames() {
		f, _ := u.Fun(name)
		p.fun(name, f)
	}
	for _, name := range u.RecordNames() {
		r, _ := u.Record(name)
		p.record(r)
	}
	for _, d := range u.Deps() {
		p.printf("dep %s %s\n", d.Kind, p.str(d.Name))
	}
	return p.err
}

type printer struct {
	w    io.Writer
	u    *decl.Unit
	opts DumpOptions
	err  error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) str(id source.StringID) string {
	if id == source.NoStringID {
		return ""
	}
	return p.u.Strings().MustLookup(id)
}

// at renders a trailing position annotation, or nothing in the default
// position-free mode.
func (p *printer) at(pos source.Pos) string {
	if !p.opts.Positions || pos.IsNone() {
		return ""
	}
	return " @ " + pos.Format(p.u.Strings())
}

func (p *printer) class(c *decl.ClassType) {
	u := p.u
	var attrs []string
	if c.Abstract {
		attrs = append(attrs, "abstract")
	}
	if c.Final {
		attrs = append(attrs, "final")
	}
	if c.Const {
		attrs = append(attrs, "const")
	}
	if c.IsXHP {
		attrs = append(attrs, "xhp")
	}
	if c.SupportDynamicType {
		attrs = append(attrs, "support_dynamic_type")
	}
	suffix := ""
	if len(attrs) > 0 {
		suffix = " [" + strings.Join(attrs, " ") + "]"
	}
	p.printf("%s %s%s%s%s\n", c.Kind, p.str(c.Name), renderTparams(u, c.Tparams), suffix, p.at(c.Pos))

	if names := sortedNameSet(u, c.Extends); len(names) > 0 {
		p.printf("  extends: %s\n", strings.Join(names, ", "))
	}
	ancestorIDs := sortedKeys(u, c.Ancestors)
	for _, id := range ancestorIDs {
		p.printf("  ancestor %s = %s\n", p.str(id), RenderTy(u, c.Ancestors[id]))
	}
	for _, r := range c.ReqAncestors {
		p.printf("  require %s%s\n", RenderTy(u, r.Type), p.at(r.Pos))
	}
	for _, w := range c.WhereConstraints {
		p.printf("  where %s %s %s\n", RenderTy(u, w.Left), w.Kind, RenderTy(u, w.Right))
	}
	if en := u.EnumAt(c.Enum); en != nil {
		p.printf("  enum base %s", RenderTy(u, en.Base))
		if en.Constraint != ty.NoTyID {
			p.printf(" as %s", RenderTy(u, en.Constraint))
		}
		if en.EnumClass {
			p.printf(" [enum_class]")
		}
		p.printf("\n")
	}

	for _, id := range sortedKeys(u, c.Consts) {
		cc := u.ClassConstAt(c.Consts[id])
		abs := ""
		if cc.Abstract {
			abs = " [abstract]"
		}
		p.printf("  const %s: %s%s (origin %s)%s\n",
			p.str(id), RenderTy(u, cc.Type), abs, p.str(cc.Origin), p.at(cc.Pos))
		for _, ref := range cc.Refs {
			if ref.From.Kind == decl.ConstFromSelf {
				p.printf("    ref self::%s\n", p.str(ref.Name))
			} else {
				p.printf("    ref %s::%s\n", p.str(ref.From.Class), p.str(ref.Name))
			}
		}
	}
	for _, id := range sortedKeys(u, c.Typeconsts) {
		p.typeconst(p.str(id), u.TypeconstAt(c.Typeconsts[id]))
	}
	for _, id := range sortedKeys(u, c.Props) {
		p.elt("prop", p.str(id), u.Elt(c.Props[id]))
	}
	for _, id := range sortedKeys(u, c.SProps) {
		p.elt("sprop", p.str(id), u.Elt(c.SProps[id]))
	}
	for _, id := range sortedKeys(u, c.Methods) {
		p.elt("method", p.str(id), u.Elt(c.Methods[id]))
	}
	for _, id := range sortedKeys(u, c.SMethods) {
		p.elt("smethod", p.str(id), u.Elt(c.SMethods[id]))
	}
	if ctor := u.Elt(c.Construct.Elt); ctor != nil {
		p.elt("construct", "__construct", ctor)
	}
	for _, de := range c.DeclErrors {
		p.printf("  error: %s%s\n", p.str(de.Msg), p.at(de.Pos))
	}
}

func (p *printer) typeconst(name string, t *decl.TypeconstType) {
	u := p.u
	switch k := t.Kind.(type) {
	case decl.AbstractTypeconst:
		p.printf("  abstract typeconst %s", name)
		if k.AsConstraint != ty.NoTyID {
			p.printf(" as %s", RenderTy(u, k.AsConstraint))
		}
		if k.SuperConstraint != ty.NoTyID {
			p.printf(" super %s", RenderTy(u, k.SuperConstraint))
		}
		if k.Default != ty.NoTyID {
			p.printf(" = %s", RenderTy(u, k.Default))
		}
	case decl.ConcreteTypeconst:
		p.printf("  typeconst %s = %s", name, RenderTy(u, k.Type))
	case decl.PartiallyAbstractTypeconst:
		p.printf("  typeconst %s as %s = %s", name, RenderTy(u, k.Constraint), RenderTy(u, k.Type))
	}
	if _, ok := t.Enforced(p.opts.Mode); ok {
		p.printf(" [enforceable]")
	}
	if !t.Reifiable.IsNone() {
		p.printf(" [reifiable]")
	}
	if t.IsCtx {
		p.printf(" [ctx]")
	}
	p.printf(" (origin %s)%s\n", p.str(t.Origin), p.at(t.Name.Pos))
}

func (p *printer) elt(role, name string, e *decl.ClassElt) {
	flags := ""
	if labels := e.Flags.Strings(); len(labels) > 0 {
		flags = " [" + strings.Join(labels, " ") + "]"
	}
	dep := ""
	if e.Deprecated != source.NoStringID {
		dep = " (deprecated: " + p.str(e.Deprecated) + ")"
	}
	p.printf("  %s %s %s: %s%s (origin %s)%s%s\n",
		e.Visibility.Kind, role, name, RenderTy(p.u, e.Type.Force()), flags,
		p.str(e.Origin), dep, p.at(e.Pos.Force()))
}

func (p *printer) typedef(t *decl.TypedefType) {
	eq := "="
	if t.Vis == decl.Opaque {
		eq = "newtype"
	}
	p.printf("typedef %s%s %s %s", p.str(t.Name), renderTparams(p.u, t.Tparams), eq, RenderTy(p.u, t.Type))
	if t.Constraint != ty.NoTyID {
		p.printf(" as %s", RenderTy(p.u, t.Constraint))
	}
	p.printf("%s\n", p.at(t.Pos))
}

func (p *printer) fun(name string, f *decl.FunElt) {
	var attrs []string
	if f.StdLib {
		attrs = append(attrs, "std_lib")
	}
	if f.SupportDynamicType {
		attrs = append(attrs, "support_dynamic_type")
	}
	suffix := ""
	if len(attrs) > 0 {
		suffix = " [" + strings.Join(attrs, " ") + "]"
	}
	dep := ""
	if f.Deprecated != source.NoStringID {
		dep = " (deprecated: " + p.str(f.Deprecated) + ")"
	}
	p.printf("fun %s: %s%s%s%s\n", name, RenderTy(p.u, f.Type), suffix, dep, p.at(f.Pos))
}

func (p *printer) record(r *decl.RecordDefType) {
	abs := ""
	if r.Abstract {
		abs = " [abstract]"
	}
	ext := ""
	if r.HasExtends {
		ext = " extends " + p.str(r.Extends.Name)
	}
	p.printf("record %s%s%s%s\n", p.str(r.Name.Name), ext, abs, p.at(r.Pos))
	for _, f := range r.Fields {
		req := ""
		if f.Req == decl.ValueRequired {
			req = " [required]"
		}
		p.printf("  field %s%s\n", p.str(f.Name.Name), req)
	}
}

func renderTparams(u *decl.Unit, ps []decl.Tparam) string {
	if len(ps) == 0 {
		return ""
	}
	parts := make([]string, len(ps))
	for i, tp := range ps {
		var b strings.Builder
		switch tp.Variance {
		case decl.Covariant:
			b.WriteByte('+')
		case decl.Contravariant:
			b.WriteByte('-')
		}
		if tp.Reified {
			b.WriteString("reify ")
		}
		b.WriteString(u.Strings().MustLookup(tp.Name.Name))
		for _, c := range tp.Constraints {
			b.WriteByte(' ')
			b.WriteString(c.Kind.String())
			b.WriteByte(' ')
			b.WriteString(RenderTy(u, c.Type))
		}
		parts[i] = b.String()
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func sortedNameSet(u *decl.Unit, s decl.NameSet) []string {
	out := sortedKeys(u, map[source.StringID]struct{}(s))
	names := make([]string, len(out))
	for i, id := range out {
		names[i] = u.Strings().MustLookup(id)
	}
	return names
}

// RenderTy renders a type into source-like notation.
func RenderTy(u *decl.Unit, id ty.TyID) string {
	if id == ty.NoTyID {
		return "_"
	}
	n := u.Tys().MustLookup(id)
	switch n.Kind {
	case ty.KindPrim:
		return n.Prim.String()
	case ty.KindApply:
		name := u.Strings().MustLookup(n.Name)
		if len(n.Args) == 0 {
			return name
		}
		return name + "<" + renderTyList(u, n.Args, ", ") + ">"
	case ty.KindOption:
		return "?" + RenderTy(u, n.Elem)
	case ty.KindLike:
		return "~" + RenderTy(u, n.Elem)
	case ty.KindTuple:
		return "(" + renderTyList(u, n.Args, ", ") + ")"
	case ty.KindFun:
		return "(function(" + renderTyList(u, n.Args, ", ") + "): " + RenderTy(u, n.Ret) + ")"
	case ty.KindGeneric:
		return u.Strings().MustLookup(n.Name)
	case ty.KindUnion:
		return "(" + renderTyList(u, n.Args, " | ") + ")"
	case ty.KindIntersection:
		return "(" + renderTyList(u, n.Args, " & ") + ")"
	case ty.KindAny:
		return "any"
	case ty.KindMixed:
		return "mixed"
	case ty.KindNothing:
		return "nothing"
	case ty.KindThis:
		return "this"
	case ty.KindAccess:
		return RenderTy(u, n.Elem) + "::" + u.Strings().MustLookup(n.Name)
	default:
		return fmt.Sprintf("<%v>", n.Kind)
	}
}

func renderTyList(u *decl.Unit, ids []ty.TyID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = RenderTy(u, id)
	}
	return strings.Join(parts, sep)
}
