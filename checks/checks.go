// Package checks provides the built-in checks.
//
// Each check is registered under its type name by NewRegistry. Properties
// are decoded from configuration into the exported fields tagged with
// mapstructure; Init validates them and compiles patterns once per
// instance.
package checks

import (
	"strings"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/tree"
)

// NewRegistry returns a check registry holding every built-in check.
func NewRegistry() *check.Registry {
	r := check.NewRegistry()
	r.MustRegister("LineLength", func() check.Check { return NewLineLength() })
	r.MustRegister("FallThrough", func() check.Check { return NewFallThrough() })
	r.MustRegister("NestedTryDepth", func() check.Check { return NewNestedTryDepth() })
	r.MustRegister("NestedIfDepth", func() check.Check { return NewNestedIfDepth() })
	r.MustRegister("MultipleStringLiterals", func() check.Check { return NewMultipleStringLiterals() })
	r.MustRegister("EmptyStatement", func() check.Check { return &EmptyStatement{} })
	r.MustRegister("TodoComment", func() check.Check { return NewTodoComment() })
	r.MustRegister("NewlineAtEndOfFile", func() check.Check { return NewNewlineAtEndOfFile() })
	r.MustRegister("Script", func() check.Check { return &Script{} })
	return r
}

// commentBody strips the comment delimiters from a comment token's text.
func commentBody(tok tree.Token) string {
	if tok.Kind == tree.BlockCommentBegin {
		return strings.TrimSuffix(strings.TrimPrefix(tok.Text, "/*"), "*/")
	}
	return strings.TrimPrefix(tok.Text, "//")
}

func nextNonComment(n tree.Node) tree.Node {
	n = n.NextSibling()
	for !n.IsNil() && n.Kind().IsComment() {
		n = n.NextSibling()
	}
	return n
}

func prevNonComment(n tree.Node) tree.Node {
	n = n.PreviousSibling()
	for !n.IsNil() && n.Kind().IsComment() {
		n = n.PreviousSibling()
	}
	return n
}
