package ty

import "declgraph/internal/source"

// Descriptor helpers; all produce decl-phase nodes.

// MakePrim describes a primitive type.
func MakePrim(p Prim, pos source.Pos) Node {
	return Node{Kind: KindPrim, Phase: PhaseDecl, Reason: pos, Prim: p}
}

// MakeApply describes a class, interface or alias application.
func MakeApply(name source.StringID, args []TyID, pos source.Pos) Node {
	return Node{Kind: KindApply, Phase: PhaseDecl, Reason: pos, Name: name, Args: args}
}

// MakeOption describes a nullable type.
func MakeOption(elem TyID, pos source.Pos) Node {
	return Node{Kind: KindOption, Phase: PhaseDecl, Reason: pos, Elem: elem}
}

// MakeLike describes a like-type (dynamic-coercible view of elem).
func MakeLike(elem TyID, pos source.Pos) Node {
	return Node{Kind: KindLike, Phase: PhaseDecl, Reason: pos, Elem: elem}
}

// MakeTuple describes a fixed-arity tuple.
func MakeTuple(elems []TyID, pos source.Pos) Node {
	return Node{Kind: KindTuple, Phase: PhaseDecl, Reason: pos, Args: elems}
}

// MakeFun describes a function type with positional parameters.
func MakeFun(params []TyID, ret TyID, pos source.Pos) Node {
	return Node{Kind: KindFun, Phase: PhaseDecl, Reason: pos, Args: params, Ret: ret}
}

// MakeGeneric describes a reference to a type parameter.
func MakeGeneric(name source.StringID, pos source.Pos) Node {
	return Node{Kind: KindGeneric, Phase: PhaseDecl, Reason: pos, Name: name}
}

// MakeUnion describes a union of member types.
func MakeUnion(members []TyID, pos source.Pos) Node {
	return Node{Kind: KindUnion, Phase: PhaseDecl, Reason: pos, Args: members}
}

// MakeIntersection describes an intersection of member types.
func MakeIntersection(members []TyID, pos source.Pos) Node {
	return Node{Kind: KindIntersection, Phase: PhaseDecl, Reason: pos, Args: members}
}

// MakeAny describes the unsafe any type.
func MakeAny(pos source.Pos) Node {
	return Node{Kind: KindAny, Phase: PhaseDecl, Reason: pos}
}

// MakeMixed describes the top type.
func MakeMixed(pos source.Pos) Node {
	return Node{Kind: KindMixed, Phase: PhaseDecl, Reason: pos}
}

// MakeNothing describes the bottom type.
func MakeNothing(pos source.Pos) Node {
	return Node{Kind: KindNothing, Phase: PhaseDecl, Reason: pos}
}

// MakeThis describes the late-bound this type.
func MakeThis(pos source.Pos) Node {
	return Node{Kind: KindThis, Phase: PhaseDecl, Reason: pos}
}

// MakeAccess describes a type-constant projection root::Name.
func MakeAccess(root TyID, name source.StringID, pos source.Pos) Node {
	return Node{Kind: KindAccess, Phase: PhaseDecl, Reason: pos, Elem: root, Name: name}
}
