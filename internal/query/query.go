// Package query evaluates XPath 1.0 expressions over a syntax tree.
//
// The document root stands for the compilation unit, so its element
// children are the file's top-level nodes (PACKAGE_DEF, IMPORT,
// CLASS_DEF, ...). Element names are kind names. Nodes that carry token
// text other than their kind name expose it as the text attribute:
//
//	//METHOD_DEF[./IDENT[@text='main']]
package query

import (
	"fmt"

	"github.com/antchfx/xpath"

	"github.com/jward/checkwalk/tree"
)

const textAttr = "text"

// Navigator implements xpath.NodeNavigator over a tree.Tree.
type Navigator struct {
	t    *tree.Tree
	cur  tree.Node // nil at the document root
	attr bool
}

var _ xpath.NodeNavigator = (*Navigator)(nil)

// NewNavigator returns a navigator positioned at the document root of t.
func NewNavigator(t *tree.Tree) *Navigator {
	return &Navigator{t: t}
}

// Node returns the element the navigator is on, or a nil Node at the
// document root.
func (n *Navigator) Node() tree.Node { return n.cur }

func (n *Navigator) NodeType() xpath.NodeType {
	switch {
	case n.cur.IsNil():
		return xpath.RootNode
	case n.attr:
		return xpath.AttributeNode
	default:
		return xpath.ElementNode
	}
}

func (n *Navigator) LocalName() string {
	switch {
	case n.cur.IsNil():
		return ""
	case n.attr:
		return textAttr
	default:
		return n.cur.Kind().String()
	}
}

func (n *Navigator) Prefix() string { return "" }

func (n *Navigator) Value() string {
	if n.cur.IsNil() {
		return ""
	}
	return n.cur.Text()
}

func (n *Navigator) Copy() xpath.NodeNavigator {
	c := *n
	return &c
}

func (n *Navigator) MoveToRoot() {
	n.cur = tree.Node{}
	n.attr = false
}

func (n *Navigator) MoveToParent() bool {
	if n.attr {
		n.attr = false
		return true
	}
	if n.cur.IsNil() {
		return false
	}
	p := n.cur.Parent()
	if p.ID() == n.t.Root().ID() {
		p = tree.Node{}
	}
	n.cur = p
	return true
}

func (n *Navigator) MoveToNextAttribute() bool {
	if n.attr || n.cur.IsNil() || !hasText(n.cur) {
		return false
	}
	n.attr = true
	return true
}

func (n *Navigator) MoveToChild() bool {
	if n.attr {
		return false
	}
	var c tree.Node
	if n.cur.IsNil() {
		c = n.t.Root().FirstChild()
	} else {
		c = n.cur.FirstChild()
	}
	if c.IsNil() {
		return false
	}
	n.cur = c
	return true
}

func (n *Navigator) MoveToFirst() bool {
	if n.attr || n.cur.IsNil() {
		return false
	}
	f := n.cur
	for p := f.PreviousSibling(); !p.IsNil(); p = p.PreviousSibling() {
		f = p
	}
	if f.ID() == n.cur.ID() {
		return false
	}
	n.cur = f
	return true
}

func (n *Navigator) MoveToNext() bool {
	if n.attr || n.cur.IsNil() {
		return false
	}
	s := n.cur.NextSibling()
	if s.IsNil() {
		return false
	}
	n.cur = s
	return true
}

func (n *Navigator) MoveToPrevious() bool {
	if n.attr || n.cur.IsNil() {
		return false
	}
	s := n.cur.PreviousSibling()
	if s.IsNil() {
		return false
	}
	n.cur = s
	return true
}

func (n *Navigator) MoveTo(other xpath.NodeNavigator) bool {
	o, ok := other.(*Navigator)
	if !ok || o.t != n.t {
		return false
	}
	n.cur = o.cur
	n.attr = o.attr
	return true
}

func hasText(nd tree.Node) bool {
	return nd.Text() != nd.Kind().String()
}

// Query is a compiled path expression. It is safe for concurrent use.
type Query struct {
	src  string
	expr *xpath.Expr
}

// Compile parses expr.
func Compile(expr string) (*Query, error) {
	e, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("query: compile %q: %w", expr, err)
	}
	return &Query{src: expr, expr: e}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(expr string) *Query {
	q, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return q
}

func (q *Query) String() string { return q.src }

// Select returns the elements selected in t, in document order as
// produced by the evaluator. Selected attributes yield their element.
func (q *Query) Select(t *tree.Tree) []tree.Node {
	var out []tree.Node
	it := q.expr.Select(NewNavigator(t))
	for it.MoveNext() {
		nav, ok := it.Current().(*Navigator)
		if !ok || nav.cur.IsNil() {
			continue
		}
		out = append(out, nav.cur)
	}
	return out
}

// Matches reports whether some selected element starts at line and col.
func (q *Query) Matches(t *tree.Tree, line, col int) bool {
	for _, n := range q.Select(t) {
		if n.Line() == line && n.Column() == col {
			return true
		}
	}
	return false
}
