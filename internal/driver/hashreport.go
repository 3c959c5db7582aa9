package driver

import (
	"sort"

	"declgraph/internal/decl"
	"declgraph/internal/declhash"
)

// HashEntry is one declaration's position-insensitive cache key.
type HashEntry struct {
	Kind string
	Name string
	Hash uint64
}

// HashReport computes a cache key per top-level declaration, in a stable
// order: by kind, then by name.
func HashReport(u *decl.Unit) []HashEntry {
	var out []HashEntry
	for _, name := range u.ClassNames() {
		c, _ := u.Class(name)
		out = append(out, HashEntry{Kind: "class", Name: name, Hash: declhash.HashClass(u, c)})
	}
	for _, name := range u.ConstNames() {
		c, _ := u.Const(name)
		out = append(out, HashEntry{Kind: "const", Name: name, Hash: declhash.HashConst(u, c)})
	}
	for _, name := range u.FunNames() {
		f, _ := u.Fun(name)
		out = append(out, HashEntry{Kind: "fun", Name: name, Hash: declhash.HashFun(u, f)})
	}
	for _, name := range u.RecordNames() {
		r, _ := u.Record(name)
		out = append(out, HashEntry{Kind: "record", Name: name, Hash: declhash.HashRecord(u, r)})
	}
	for _, name := range u.TypedefNames() {
		t, _ := u.Typedef(name)
		out = append(out, HashEntry{Kind: "typedef", Name: name, Hash: declhash.HashTypedef(u, t)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func unitsEqual(a, b *decl.Unit) bool {
	return declhash.EqualUnit(a, b, declhash.Options{IncludePositions: true})
}
