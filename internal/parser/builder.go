package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/checkwalk/tree"
)

const none int32 = -1

// pollEvery is how many grammar nodes are converted between context checks.
const pollEvery = 1024

// frame is one grammar node whose children are being converted.
type frame struct {
	cst  string
	ast  int32 // node receiving children
	node int32 // node created for this grammar node, or none for splices
	wrap []tree.Kind

	adopt     int32
	adoptWrap tree.Kind

	caseGroup bool
	slist     int32
	label     int32
	pending   int32 // label-only CASE_GROUP that takes the next group's children

	// modifiers is set until the first child of a declaration is seen; an
	// empty MODIFIERS node is added if that child is not one.
	modifiers bool

	group int32 // last ANNOTATIONS wrapper, reused for consecutive annotations
}

type astBuilder struct {
	b            *tree.Builder
	src          []byte
	commentNodes bool
	stack        []frame
}

// build converts the grammar tree under root into a tree.Tree. The walk
// uses one cursor and an explicit frame stack.
func build(ctx context.Context, root *sitter.Node, src []byte, lines *tree.Lines, commentNodes bool) (*tree.Tree, error) {
	ab := &astBuilder{
		b:            tree.NewBuilder(src, lines),
		src:          src,
		commentNodes: commentNodes,
	}
	ab.push(frame{cst: root.Type(), ast: ab.b.Root(), node: ab.b.Root()})

	c := sitter.NewTreeCursor(root)
	defer c.Close()

	if !c.GoToFirstChild() {
		return ab.b.Finish(), nil
	}
	steps := 0
	for {
		steps++
		if steps%pollEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if ab.visit(c.CurrentNode(), c.CurrentFieldName()) {
			if c.GoToFirstChild() {
				continue
			}
			ab.pop()
		}
		for !c.GoToNextSibling() {
			c.GoToParent()
			if len(ab.stack) == 1 {
				return ab.b.Finish(), nil
			}
			ab.pop()
		}
	}
}

func (ab *astBuilder) push(f frame) {
	f.adopt, f.slist, f.label, f.pending, f.group = none, none, none, none, none
	ab.stack = append(ab.stack, f)
}

// pop closes the top frame. A case group that ended before any statement
// (the grammar splits "case 1: case 2:" into two groups) is remembered so
// the next group continues it.
func (ab *astBuilder) pop() {
	done := ab.stack[len(ab.stack)-1]
	ab.stack = ab.stack[:len(ab.stack)-1]
	if done.caseGroup && done.slist == none && len(ab.stack) > 0 {
		ab.top().pending = done.node
	}
}

func (ab *astBuilder) top() *frame { return &ab.stack[len(ab.stack)-1] }

// visit converts one grammar node and reports whether a frame was pushed
// for its children.
func (ab *astBuilder) visit(n *sitter.Node, field string) bool {
	f := ab.top()
	typ := n.Type()

	if commentTypes[typ] {
		ab.comment(n, f)
		return false
	}

	if f.modifiers {
		f.modifiers = false
		if typ != "modifiers" {
			ab.b.Add(f.ast, tree.Modifiers)
		}
	}

	parent := ab.route(f, typ, n.IsNamed())

	if !n.IsNamed() {
		ab.token(n, f, parent, field, tokenKinds[typ], true)
		return false
	}

	r, ok := nodeRules[typ]
	if !ok {
		if n.ChildCount() == 0 {
			r = plainLeaf(tree.Other)
		} else {
			r = node(tree.Other)
		}
	}
	wraps, hasWraps := ab.wrapsFor(f, typ, field)

	if r.act == actSplice {
		nf := frame{cst: typ, ast: parent, node: none, wrap: r.wrap}
		if hasWraps && len(wraps) > 0 {
			// The parentheses around a statement's condition belong to the
			// statement; any other pair sits inside the EXPR.
			if typ == "parenthesized_expression" && parenStatements[f.cst] {
				nf.wrap = wraps
			} else {
				nf.ast = ab.wrapIn(f, parent, wraps)
			}
		}
		ab.push(nf)
		return true
	}

	if hasWraps {
		parent = ab.wrapIn(f, parent, wraps)
	}

	if r.act == actLeaf {
		kind := r.kind
		if r.classify != nil {
			kind = r.classify(n.Content(ab.src))
		}
		ab.token(n, f, parent, field, kind, !r.plain)
		return false
	}

	var id int32
	if r.caseGroup && f.pending != none {
		id = f.pending
	} else {
		id = ab.b.Add(parent, r.kind)
	}
	f.pending = none
	if f.caseGroup && typ == "switch_label" {
		f.label = id
	}
	ab.push(frame{cst: typ, ast: id, node: id, caseGroup: r.caseGroup, modifiers: hasModifiers[typ]})
	return true
}

// route picks the node that receives the next child of f, consuming a
// pending adoption.
func (ab *astBuilder) route(f *frame, typ string, named bool) int32 {
	if f.adopt != none {
		p := f.adopt
		f.adopt = none
		if named && f.adoptWrap != tree.Invalid && !noWrap[typ] {
			p = ab.b.Add(p, f.adoptWrap)
		}
		return p
	}
	if f.caseGroup {
		switch typ {
		case "switch_label", "->":
			return f.ast
		case ":":
			if f.label != none {
				return f.label
			}
			return f.ast
		}
		if f.slist == none {
			f.slist = ab.b.Add(f.ast, tree.SList)
		}
		return f.slist
	}
	return f.ast
}

// wrapsFor returns the wrapper kinds for a named child. The boolean is
// false when no rule applies.
func (ab *astBuilder) wrapsFor(f *frame, typ, field string) ([]tree.Kind, bool) {
	if f.wrap != nil {
		return f.wrap, true
	}
	if m, ok := wrapChild[f.cst]; ok {
		if w, ok := m["#"+typ]; ok {
			return w, true
		}
		if field != "" {
			if w, ok := m[field]; ok {
				return w, true
			}
		}
		if w, ok := m["*"]; ok {
			return w, true
		}
	}
	if field == "type" && !noTypeWrap[f.cst] {
		return []tree.Kind{tree.Type}, true
	}
	return nil, false
}

func (ab *astBuilder) wrapIn(f *frame, parent int32, wraps []tree.Kind) int32 {
	if len(wraps) == 1 && wraps[0] == tree.Annotations {
		if f.group != none && ab.b.LastChild(parent) == f.group {
			return f.group
		}
		f.group = ab.b.Add(parent, tree.Annotations)
		return f.group
	}
	for _, k := range wraps {
		parent = ab.b.Add(parent, k)
	}
	return parent
}

// token adds a leaf token. lookup enables anchors, retags, adoption and
// context kinds for keywords and punctuation.
func (ab *astBuilder) token(n *sitter.Node, f *frame, parent int32, field string, kind tree.Kind, lookup bool) {
	text := n.Content(ab.src)
	tok := tree.Token{
		Kind:    kind,
		Text:    text,
		Channel: tree.ChannelSyntax,
		Start:   int(n.StartByte()),
		End:     int(n.EndByte()),
	}
	if !lookup {
		ab.b.AddLeaf(parent, kind, ab.b.AddToken(tok))
		return
	}

	if f.node != none && !ab.b.Anchored(f.node) {
		if k, ok := anchors[f.cst][text]; ok {
			tok.Kind = k
			ab.b.SetKind(f.node, k)
			ab.b.Anchor(f.node, ab.b.AddToken(tok))
			return
		}
		if f.cst == "update_expression" && (text == "++" || text == "--") {
			tok.Kind = updateKind(text, ab.b.ChildCount(f.node) == 0)
			ab.b.SetKind(f.node, tok.Kind)
			ab.b.Anchor(f.node, ab.b.AddToken(tok))
			return
		}
	}
	if k, ok := retags[f.cst][text]; ok && f.node != none {
		ab.b.SetKind(f.node, k)
	}
	if ad, ok := adopters[f.cst][text]; ok {
		tok.Kind = ad.kind
		f.adopt = ab.b.AddLeaf(parent, ad.kind, ab.b.AddToken(tok))
		f.adoptWrap = ad.wrap
		return
	}
	if k, ok := contextKinds[f.cst][text]; ok {
		kind = k
	}
	if text == ";" && (f.caseGroup || emptyStatParents[f.cst] || statementFields[field]) {
		kind = tree.EmptyStat
	}
	tok.Kind = kind
	id := ab.b.AddToken(tok)
	if kind == tree.Invalid {
		ab.b.Attach(parent, id)
		return
	}
	ab.b.AddLeaf(parent, kind, id)
}

func updateKind(op string, prefix bool) tree.Kind {
	switch {
	case op == "++" && prefix:
		return tree.Inc
	case op == "++":
		return tree.PostInc
	case prefix:
		return tree.Dec
	default:
		return tree.PostDec
	}
}

func (ab *astBuilder) comment(n *sitter.Node, f *frame) {
	text := n.Content(ab.src)
	kind := tree.SingleLineComment
	if strings.HasPrefix(text, "/*") {
		kind = tree.BlockCommentBegin
	}
	id := ab.b.AddToken(tree.Token{
		Kind:    kind,
		Text:    text,
		Channel: tree.ChannelComment,
		Start:   int(n.StartByte()),
		End:     int(n.EndByte()),
	})
	if ab.commentNodes {
		ab.b.AddLeaf(f.ast, kind, id)
	}
}
