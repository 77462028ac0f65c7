// Package parser turns Java source text into a tree.Tree. Lexing and
// parsing are done by the tree-sitter Java grammar; the grammar's concrete
// tree is then normalised into the kind vocabulary checks are written
// against.
package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/tree"
)

// Options control how a file is parsed.
type Options struct {
	// TabWidth is the column width of a tab. Zero means tree.DefaultTabWidth.
	TabWidth int
	// Charset is the encoding of the raw bytes. Empty means UTF-8.
	Charset string
	// CommentNodes adds comments to the tree as leaves. Comments are
	// always present in the token stream.
	CommentNodes bool
}

// Parse decodes, parses and builds the tree for one file. Grammar
// violations fail the whole file with a *check.SyntaxError; decoding
// failures and cancellation fail it with a *check.FileError.
func Parse(ctx context.Context, path string, raw []byte, opts Options) (*tree.Tree, error) {
	src, err := Decode(raw, opts.Charset)
	if err != nil {
		return nil, &check.FileError{Path: path, Op: "decode", Err: err}
	}
	lines := tree.NewLines(src, opts.TabWidth)

	if err := ctx.Err(); err != nil {
		return nil, &check.FileError{Path: path, Op: "parse", Err: err}
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(grammar())

	cst, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &check.FileError{Path: path, Op: "parse", Err: err}
	}
	defer cst.Close()

	root := cst.RootNode()
	if root.HasError() {
		return nil, syntaxError(path, root, src, lines)
	}

	t, err := build(ctx, root, src, lines, opts.CommentNodes)
	if err != nil {
		return nil, &check.FileError{Path: path, Op: "build tree", Err: err}
	}
	return t, nil
}

// syntaxError locates the first ERROR or missing node in document order.
func syntaxError(path string, root *sitter.Node, src []byte, lines *tree.Lines) error {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	line, col := lines.Position(int(bad.StartByte()))
	if line == 0 {
		line = 1
	}
	var msg string
	switch {
	case bad.IsMissing():
		msg = fmt.Sprintf("missing %q", bad.Type())
	case bad.Type() == "ERROR":
		msg = fmt.Sprintf("unexpected %s", snippet(bad.Content(src)))
	default:
		msg = "invalid syntax"
	}
	return &check.SyntaxError{Path: path, Line: line, Column: col, Message: msg}
}

func firstError(root *sitter.Node) *sitter.Node {
	c := sitter.NewTreeCursor(root)
	defer c.Close()
	for {
		n := c.CurrentNode()
		if n.Type() == "ERROR" || n.IsMissing() {
			return n
		}
		if n.HasError() && c.GoToFirstChild() {
			continue
		}
		for !c.GoToNextSibling() {
			if !c.GoToParent() {
				return nil
			}
		}
	}
}

const snippetMax = 40

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "end of input"
	}
	if utf8.RuneCountInString(s) > snippetMax {
		r := []rune(s)
		s = string(r[:snippetMax]) + "..."
	}
	return fmt.Sprintf("%q", s)
}

// IsSyntaxError reports whether err is a grammar violation.
func IsSyntaxError(err error) bool {
	var se *check.SyntaxError
	return errors.As(err, &se)
}
