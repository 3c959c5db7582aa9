package decl

import (
	"fmt"

	"declgraph/internal/source"
	"declgraph/internal/ty"
)

// TypedefVisibility controls whether an alias is transparent to subtyping
// or opaque outside its defining file.
type TypedefVisibility uint8

const (
	Transparent TypedefVisibility = iota
	Opaque
)

func (v TypedefVisibility) String() string {
	switch v {
	case Transparent:
		return "transparent"
	case Opaque:
		return "opaque"
	default:
		return fmt.Sprintf("TypedefVisibility(%d)", v)
	}
}

// TypedefType is a type alias declaration. Constraint is NoTyID when the
// alias has no as-constraint.
type TypedefType struct {
	Name       source.StringID
	Pos        source.Pos
	Vis        TypedefVisibility
	Tparams    []Tparam
	Constraint ty.TyID
	Type       ty.TyID
}

// RecordFieldReq tags a record field as required or defaulted.
type RecordFieldReq uint8

const (
	ValueRequired RecordFieldReq = iota
	HasDefaultValue
)

func (r RecordFieldReq) String() string {
	switch r {
	case ValueRequired:
		return "required"
	case HasDefaultValue:
		return "has_default"
	default:
		return fmt.Sprintf("RecordFieldReq(%d)", r)
	}
}

// RecordField is one field of a record, in declaration order.
type RecordField struct {
	Name source.PosID
	Req  RecordFieldReq
}

// RecordDefType is a record declaration. Fields preserve declaration
// order; HasExtends is false when the record has no parent.
type RecordDefType struct {
	Name       source.PosID
	Extends    source.PosID
	HasExtends bool
	Fields     []RecordField
	Abstract   bool
	Pos        source.Pos
}
