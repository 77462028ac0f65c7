// Package tree holds the abstract syntax tree of one source file: an arena
// of nodes addressed by integer handles, the token stream including the
// hidden channel, the line table, and a per-kind node index.
//
// Trees are immutable once built. A Node is a small value (tree pointer plus
// index) and is safe to copy; parent, child and sibling links are arena
// indices, so navigation never allocates.
package tree

const none int32 = -1

type nodeData struct {
	kind Kind
	text string

	anchor   int32 // token giving the node its position and text, or none
	firstTok int32
	lastTok  int32

	parent     int32
	firstChild int32
	lastChild  int32
	next       int32
	prev       int32
	childCount int32

	line, col       int32
	endLine, endCol int32
}

// Tree is the abstract syntax tree of one file.
type Tree struct {
	src      []byte
	lines    *Lines
	nodes    []nodeData
	order    []int32
	byKind   [kindCount][]int32
	tokens   []Token
	comments []Token
}

// Root returns the COMPILATION_UNIT node.
func (t *Tree) Root() Node { return Node{t: t, id: 0} }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given handle, or a nil Node when out of
// range.
func (t *Tree) Node(id int) Node {
	if id < 0 || id >= len(t.nodes) {
		return Node{}
	}
	return Node{t: t, id: int32(id)}
}

// Source returns the decoded source text.
func (t *Tree) Source() []byte { return t.src }

// Lines returns the line table.
func (t *Tree) Lines() *Lines { return t.lines }

// Tokens returns every token in document order, hidden channel included.
func (t *Tree) Tokens() []Token { return t.tokens }

// Comments returns the comment tokens in document order.
func (t *Tree) Comments() []Token { return t.comments }

// NodesOfKind returns all nodes of kind k in pre-order.
func (t *Tree) NodesOfKind(k Kind) []Node {
	if k >= kindCount {
		return nil
	}
	ids := t.byKind[k]
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = Node{t: t, id: id}
	}
	return out
}

// CountOfKind returns the number of nodes of kind k without allocating.
func (t *Tree) CountOfKind(k Kind) int {
	if k >= kindCount {
		return 0
	}
	return len(t.byKind[k])
}

// PreOrder returns every node in depth-first pre-order.
func (t *Tree) PreOrder() []Node {
	out := make([]Node, len(t.order))
	for i, id := range t.order {
		out[i] = Node{t: t, id: id}
	}
	return out
}

// Builder assembles a Tree. Nodes are appended as last children of an
// existing node; positions and spans are derived from the tokens attached
// to each node when Finish is called. Tokens must arrive in document order.
type Builder struct {
	t   *Tree
	pos *Cursor
}

// NewBuilder starts a tree over src with a root COMPILATION_UNIT node.
func NewBuilder(src []byte, lines *Lines) *Builder {
	b := &Builder{t: &Tree{src: src, lines: lines}, pos: lines.NewCursor()}
	b.t.nodes = append(b.t.nodes, newNodeData(CompilationUnit, none))
	return b
}

func newNodeData(k Kind, parent int32) nodeData {
	return nodeData{
		kind:       k,
		anchor:     none,
		firstTok:   none,
		lastTok:    none,
		parent:     parent,
		firstChild: none,
		lastChild:  none,
		next:       none,
		prev:       none,
	}
}

// Root returns the handle of the root node.
func (b *Builder) Root() int32 { return 0 }

// Add appends a node of kind k as the last child of parent.
func (b *Builder) Add(parent int32, k Kind) int32 {
	id := int32(len(b.t.nodes))
	b.t.nodes = append(b.t.nodes, newNodeData(k, parent))
	p := &b.t.nodes[parent]
	if p.lastChild == none {
		p.firstChild = id
	} else {
		b.t.nodes[p.lastChild].next = id
		b.t.nodes[id].prev = p.lastChild
	}
	p.lastChild = id
	p.childCount++
	return id
}

// AddLeaf appends a node anchored on tok.
func (b *Builder) AddLeaf(parent int32, k Kind, tok int32) int32 {
	id := b.Add(parent, k)
	b.Anchor(id, tok)
	return id
}

// Kind returns the current kind of node id.
func (b *Builder) Kind(id int32) Kind { return b.t.nodes[id].kind }

// SetKind replaces the kind of node id.
func (b *Builder) SetKind(id int32, k Kind) { b.t.nodes[id].kind = k }

// ChildCount returns the number of children added to id so far.
func (b *Builder) ChildCount(id int32) int { return int(b.t.nodes[id].childCount) }

// LastChild returns the last child added to id, or -1.
func (b *Builder) LastChild(id int32) int32 { return b.t.nodes[id].lastChild }

// Anchor makes tok the node's position and text, and attaches it.
func (b *Builder) Anchor(id, tok int32) {
	b.t.nodes[id].anchor = tok
	b.Attach(id, tok)
}

// Anchored reports whether id already has an anchor token.
func (b *Builder) Anchored(id int32) bool { return b.t.nodes[id].anchor != none }

// Attach extends the span of node id to cover tok.
func (b *Builder) Attach(id, tok int32) {
	n := &b.t.nodes[id]
	if n.firstTok == none || tok < n.firstTok {
		n.firstTok = tok
	}
	if n.lastTok == none || tok > n.lastTok {
		n.lastTok = tok
	}
}

// AddToken appends a token to the stream and returns its index. Tokens must
// be added in document order; Line and Column are computed here from the
// byte offsets.
func (b *Builder) AddToken(tok Token) int32 {
	tok.Line, tok.Column = b.pos.Position(tok.Start)
	tok.EndLine, tok.EndColumn = b.pos.Position(tok.End)
	b.t.tokens = append(b.t.tokens, tok)
	return int32(len(b.t.tokens) - 1)
}

// Finish computes spans and positions, inserts whitespace tokens into the
// hidden channel and builds the per-kind index. The Builder must not be
// used afterwards.
func (b *Builder) Finish() *Tree {
	t := b.t
	b.t = nil

	remap := t.insertWhitespace()

	for i := range t.nodes {
		n := &t.nodes[i]
		if n.anchor != none {
			n.anchor = remap[n.anchor]
		}
		if n.firstTok != none {
			n.firstTok = remap[n.firstTok]
			n.lastTok = remap[n.lastTok]
		}
	}

	// Children always have larger handles than their parents, so a reverse
	// sweep sees every child before its parent.
	for i := len(t.nodes) - 1; i > 0; i-- {
		n := &t.nodes[i]
		if n.firstTok == none {
			continue
		}
		p := &t.nodes[n.parent]
		if p.firstTok == none || n.firstTok < p.firstTok {
			p.firstTok = n.firstTok
		}
		if p.lastTok == none || n.lastTok > p.lastTok {
			p.lastTok = n.lastTok
		}
	}

	for i := range t.nodes {
		n := &t.nodes[i]
		start := n.anchor
		if start == none {
			start = n.firstTok
		}
		if start == none {
			// Empty nodes, such as MODIFIERS of an unmodified declaration,
			// sit where the next sibling starts.
			n.line, n.col = 1, 0
			if tok := t.followingToken(int32(i)); tok != none {
				n.line, n.col = int32(t.tokens[tok].Line), int32(t.tokens[tok].Column)
			}
			n.endLine, n.endCol = n.line, n.col
		} else {
			tok := t.tokens[start]
			n.line, n.col = int32(tok.Line), int32(tok.Column)
			last := t.tokens[n.lastTok]
			n.endLine, n.endCol = int32(last.EndLine), int32(last.EndColumn)
		}
		if n.anchor != none {
			n.text = t.tokens[n.anchor].Text
		} else {
			n.text = n.kind.String()
		}
	}

	t.index()
	for _, tok := range t.tokens {
		if tok.Channel == ChannelComment {
			t.comments = append(t.comments, tok)
		}
	}
	return t
}

// followingToken returns the position token of the first later sibling of
// id that has one.
func (t *Tree) followingToken(id int32) int32 {
	for s := t.nodes[id].next; s != none; s = t.nodes[s].next {
		if a := t.nodes[s].anchor; a != none {
			return a
		}
		if f := t.nodes[s].firstTok; f != none {
			return f
		}
	}
	return none
}

// insertWhitespace fills every gap between tokens with a whitespace token
// and returns the mapping from old to new token indices.
func (t *Tree) insertWhitespace() []int32 {
	remap := make([]int32, len(t.tokens))
	out := make([]Token, 0, len(t.tokens)*2+1)
	pos := 0
	cur := t.lines.NewCursor()
	gap := func(end int) {
		if end <= pos {
			return
		}
		ws := Token{Text: string(t.src[pos:end]), Channel: ChannelWhitespace, Start: pos, End: end}
		ws.Line, ws.Column = cur.Position(ws.Start)
		ws.EndLine, ws.EndColumn = cur.Position(ws.End)
		out = append(out, ws)
	}
	for i, tok := range t.tokens {
		gap(tok.Start)
		remap[i] = int32(len(out))
		out = append(out, tok)
		if tok.End > pos {
			pos = tok.End
		}
	}
	gap(len(t.src))
	t.tokens = out
	return remap
}

// index records pre-order and the per-kind lists with an explicit stack.
func (t *Tree) index() {
	t.order = make([]int32, 0, len(t.nodes))
	stack := []int32{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.order = append(t.order, id)
		k := t.nodes[id].kind
		t.byKind[k] = append(t.byKind[k], id)
		for c := t.nodes[id].lastChild; c != none; c = t.nodes[c].prev {
			stack = append(stack, c)
		}
	}
}
