package wire

// The wire form is a self-describing tagged-value tree: every union
// variant is a fixed-arity msgpack array starting with its tag, optional
// values are nil-or-value, and name-keyed maps travel as name-sorted
// [name, value] pairs so that structurally identical graphs encode to
// identical bytes. There is no version field; both sides of the boundary
// evolve in lockstep, and any tag added below is a breaking schema change.

// Type node tags. Values track ty.Kind for the supported kinds; tags past
// the supported range name shapes the host runtime can produce but this
// side cannot rebuild.
const (
	tagTyPrim uint8 = iota + 1
	tagTyApply
	tagTyOption
	tagTyLike
	tagTyTuple
	tagTyFun
	tagTyGeneric
	tagTyUnion
	tagTyIntersection
	tagTyAny
	tagTyMixed
	tagTyNothing
	tagTyThis
	tagTyAccess

	// tagTyVar is a locl-phase inference variable. Recognized, never
	// reconstructible: the variable's binding state is not serialized.
	tagTyVar uint8 = 0x7f
)

// Phase tags.
const (
	tagPhaseDecl uint8 = 0
	tagPhaseLocl uint8 = 1
)

// Typeconst variant tags.
const (
	tagTCAbstract uint8 = iota
	tagTCConcrete
	tagTCPartiallyAbstract
)

// ClassConstFrom variant tags.
const (
	tagConstFromSelf uint8 = iota
	tagConstFromClass
)

// Fixed arities of the composite shapes.
const (
	arityPos       = 4
	arityPosID     = 2
	arityVis       = 2
	arityElt       = 6
	arityConst     = 6
	arityTypeconst = 8
	arityTparam    = 4
	arityWhere     = 3
	arityReq       = 2
	arityEnum      = 4
	arityConstruct = 2
	arityXhpValue  = 3
	arityDeclError = 2
	arityPair      = 2
	arityClass     = 30
	arityTypedef   = 6
	arityFreeConst = 3
	arityFun       = 6
	arityRecord    = 5
	arityUnit      = 6
)
