package tree

import (
	"fmt"
	"iter"
)

// Node is a handle to one node of a Tree. The zero Node is nil; navigation
// from a nil Node yields nil Nodes.
type Node struct {
	t  *Tree
	id int32
}

func (n Node) data() *nodeData { return &n.t.nodes[n.id] }

func (n Node) at(id int32) Node {
	if id == none {
		return Node{}
	}
	return Node{t: n.t, id: id}
}

// IsNil reports whether n refers to no node.
func (n Node) IsNil() bool { return n.t == nil }

// ID returns the arena handle of n, or -1 for a nil Node.
func (n Node) ID() int {
	if n.IsNil() {
		return -1
	}
	return int(n.id)
}

// Tree returns the tree n belongs to.
func (n Node) Tree() *Tree { return n.t }

// Kind returns the node kind, Invalid for a nil Node.
func (n Node) Kind() Kind {
	if n.IsNil() {
		return Invalid
	}
	return n.data().kind
}

// Text returns the anchoring token text, or the kind name for nodes
// without an anchoring token.
func (n Node) Text() string {
	if n.IsNil() {
		return ""
	}
	return n.data().text
}

// Line returns the 1-based start line.
func (n Node) Line() int {
	if n.IsNil() {
		return 0
	}
	return int(n.data().line)
}

// Column returns the 0-based, tab-expanded start column.
func (n Node) Column() int {
	if n.IsNil() {
		return 0
	}
	return int(n.data().col)
}

// EndLine returns the line on which the node's last token ends.
func (n Node) EndLine() int {
	if n.IsNil() {
		return 0
	}
	return int(n.data().endLine)
}

// EndColumn returns the column just past the node's last token.
func (n Node) EndColumn() int {
	if n.IsNil() {
		return 0
	}
	return int(n.data().endCol)
}

func (n Node) Parent() Node {
	if n.IsNil() {
		return Node{}
	}
	return n.at(n.data().parent)
}

func (n Node) FirstChild() Node {
	if n.IsNil() {
		return Node{}
	}
	return n.at(n.data().firstChild)
}

func (n Node) LastChild() Node {
	if n.IsNil() {
		return Node{}
	}
	return n.at(n.data().lastChild)
}

func (n Node) NextSibling() Node {
	if n.IsNil() {
		return Node{}
	}
	return n.at(n.data().next)
}

func (n Node) PreviousSibling() Node {
	if n.IsNil() {
		return Node{}
	}
	return n.at(n.data().prev)
}

// ChildCount returns the number of direct children.
func (n Node) ChildCount() int {
	if n.IsNil() {
		return 0
	}
	return int(n.data().childCount)
}

// HasChildren reports whether n has at least one child.
func (n Node) HasChildren() bool { return n.ChildCount() > 0 }

// Children iterates over the direct children of n.
func (n Node) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for c := n.FirstChild(); !c.IsNil(); c = c.NextSibling() {
			if !yield(c) {
				return
			}
		}
	}
}

// FindFirst returns the first direct child of kind k.
func (n Node) FindFirst(k Kind) Node {
	for c := n.FirstChild(); !c.IsNil(); c = c.NextSibling() {
		if c.Kind() == k {
			return c
		}
	}
	return Node{}
}

// Ancestor returns the nearest proper ancestor of kind k.
func (n Node) Ancestor(k Kind) Node {
	for p := n.Parent(); !p.IsNil(); p = p.Parent() {
		if p.Kind() == k {
			return p
		}
	}
	return Node{}
}

// Depth returns the number of ancestors of n.
func (n Node) Depth() int {
	d := 0
	for p := n.Parent(); !p.IsNil(); p = p.Parent() {
		d++
	}
	return d
}

// FirstToken returns the first token of the node's span.
func (n Node) FirstToken() (Token, bool) {
	if n.IsNil() || n.data().firstTok == none {
		return Token{}, false
	}
	return n.t.tokens[n.data().firstTok], true
}

// LastToken returns the last token of the node's span.
func (n Node) LastToken() (Token, bool) {
	if n.IsNil() || n.data().lastTok == none {
		return Token{}, false
	}
	return n.t.tokens[n.data().lastTok], true
}

// Covers reports whether the position lies within the node's span, from
// its first token to the end of its last token.
func (n Node) Covers(line, col int) bool {
	first, ok := n.FirstToken()
	if !ok {
		return false
	}
	if line < first.Line || (line == first.Line && col < first.Column) {
		return false
	}
	end, endCol := n.EndLine(), n.EndColumn()
	return line < end || (line == end && col <= endCol)
}

func (n Node) String() string {
	if n.IsNil() {
		return "<nil>"
	}
	return fmt.Sprintf("%s -> %s [%d:%d]", n.Kind(), n.Text(), n.Line(), n.Column())
}
