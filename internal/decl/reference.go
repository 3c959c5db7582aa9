package decl

import (
	"fmt"

	"declgraph/internal/source"
)

// DeclRefKind tags the namespace a declaration reference points into.
type DeclRefKind uint8

const (
	RefGlobalConstant DeclRefKind = iota
	RefFunction
	RefType
)

func (k DeclRefKind) String() string {
	switch k {
	case RefGlobalConstant:
		return "global_constant"
	case RefFunction:
		return "function"
	case RefType:
		return "type"
	default:
		return fmt.Sprintf("DeclRefKind(%d)", k)
	}
}

// DeclReference names one declaration a unit depends on. The incremental
// driver uses these to decide what to invalidate when a name changes.
type DeclReference struct {
	Kind DeclRefKind
	Name source.StringID
}

// CommentKind tags the syntactic form of a comment.
type CommentKind uint8

const (
	CommentLine CommentKind = iota
	CommentBlock
)

func (k CommentKind) String() string {
	switch k {
	case CommentLine:
		return "line"
	case CommentBlock:
		return "block"
	default:
		return fmt.Sprintf("CommentKind(%d)", k)
	}
}

// Comment is a source comment retained with the batch for tooling.
type Comment struct {
	Kind CommentKind
	Text source.StringID
}
