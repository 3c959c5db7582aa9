package source

import "fmt"

// Span is a half-open byte range within one file.
type Span struct {
	Start uint32 // inclusive
	End   uint32 // exclusive
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Len returns the number of bytes covered.
func (s Span) Len() uint32 {
	return s.End - s.Start
}

// Cover extends the span to include other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Pos is a declaration-site source location: interned file path, byte span
// and 1-based starting line. The zero value is the "no position" sentinel
// used for synthesized declarations.
//
// Positions are metadata only: the position-insensitive hash and equality
// disciplines ignore every Pos-typed field.
type Pos struct {
	File StringID
	Span Span
	Line uint32
}

// None is the absent position.
var None = Pos{}

// IsNone reports whether the position is the absent sentinel.
func (p Pos) IsNone() bool {
	return p == None
}

// Format renders the position using the interner owning p.File.
func (p Pos) Format(in *Interner) string {
	if p.IsNone() {
		return "<no position>"
	}
	file, _ := in.Lookup(p.File)
	return fmt.Sprintf("%s:%d:%d-%d", file, p.Line, p.Span.Start, p.Span.End)
}

// PosID pairs an identifier with its declaration site. Used pervasively as
// the key part of named declarations.
type PosID struct {
	Pos  Pos
	Name StringID
}
