package runtime

import (
	"context"
	"fmt"

	"github.com/risor-io/risor/object"
	"go.uber.org/zap"

	"github.com/jward/checkwalk/internal/query"
	"github.com/jward/checkwalk/tree"
)

// Host is one file as seen by a script, plus the sinks its reports go to.
type Host struct {
	Path string
	Tree *tree.Tree
	// Visited are the nodes of the configured kinds, in walk order.
	Visited []tree.Node
	Logger  *zap.Logger

	Report   func(n tree.Node, msg string)
	ReportAt func(line, col int, msg string)
}

// globals constructs the full set of globals exposed to a script.
func (h *Host) globals() map[string]any {
	logger := h.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lines := h.Tree.Lines()
	lineObjs := make([]object.Object, lines.Count())
	for i := range lineObjs {
		lineObjs[i] = object.NewString(lines.Text(i + 1))
	}

	return map[string]any{
		"file_path": object.NewString(h.Path),
		"lines":     object.NewList(lineObjs),
		"root":      nodeObject(h.Tree.Root()),
		"visited":   nodeList(h.Visited),
		"nodes":     makeNodesFn(h.Tree),
		"select":    makeSelectFn(h.Tree),
		"parent":    makeParentFn(h.Tree),
		"children":  makeChildrenFn(h.Tree),
		"ancestor":  makeAncestorFn(h.Tree),
		"node_text": makeNodeTextFn(h.Tree),
		"report":    makeReportFn(h),
		"report_at": makeReportAtFn(h),
		"log":       mustProxy(&logObject{logger: logger.With(zap.String("path", h.Path))}),
	}
}

// nodeObject converts a node into the map scripts see. A nil node becomes
// nil.
func nodeObject(n tree.Node) object.Object {
	if n.IsNil() {
		return object.Nil
	}
	return object.NewMap(map[string]object.Object{
		"id":         object.NewInt(int64(n.ID())),
		"kind":       object.NewString(n.Kind().String()),
		"text":       object.NewString(n.Text()),
		"line":       object.NewInt(int64(n.Line())),
		"column":     object.NewInt(int64(n.Column())),
		"end_line":   object.NewInt(int64(n.EndLine())),
		"end_column": object.NewInt(int64(n.EndColumn())),
	})
}

func nodeList(ns []tree.Node) object.Object {
	out := make([]object.Object, len(ns))
	for i, n := range ns {
		out[i] = nodeObject(n)
	}
	return object.NewList(out)
}

// nodeArg resolves a node map, or a bare node id, back to its node.
func nodeArg(t *tree.Tree, obj object.Object) (tree.Node, error) {
	var id int64
	switch v := obj.(type) {
	case *object.Map:
		raw, ok := v.Value()["id"]
		if !ok {
			return tree.Node{}, fmt.Errorf("expected node, got map without id")
		}
		var err error
		if id, err = toInt64(raw); err != nil {
			return tree.Node{}, fmt.Errorf("node id: %w", err)
		}
	case *object.Int:
		id = v.Value()
	default:
		return tree.Node{}, fmt.Errorf("expected node, got %s", obj.Type())
	}
	n := t.Node(int(id))
	if n.IsNil() {
		return tree.Node{}, fmt.Errorf("no node with id %d", id)
	}
	return n, nil
}

// makeNodesFn creates the "nodes" host function.
//
// nodes(kind) → []node, in pre-order
func makeNodesFn(t *tree.Tree) *object.Builtin {
	return object.NewBuiltin("nodes", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("nodes", 1, len(args))
		}
		name, err := toString(args[0])
		if err != nil {
			return object.Errorf("nodes: kind: %v", err)
		}
		k, ok := tree.ParseKind(name)
		if !ok {
			return object.Errorf("nodes: unknown kind %q", name)
		}
		return nodeList(t.NodesOfKind(k))
	})
}

// makeSelectFn creates the "select" host function.
//
// select(path) → []node matching the path query
func makeSelectFn(t *tree.Tree) *object.Builtin {
	return object.NewBuiltin("select", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("select", 1, len(args))
		}
		expr, err := toString(args[0])
		if err != nil {
			return object.Errorf("select: path: %v", err)
		}
		q, err := query.Compile(expr)
		if err != nil {
			return object.Errorf("select: %v", err)
		}
		return nodeList(q.Select(t))
	})
}

// makeParentFn creates "parent", returning nil at the root.
//
// parent(node) → node or nil
func makeParentFn(t *tree.Tree) *object.Builtin {
	return object.NewBuiltin("parent", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("parent", 1, len(args))
		}
		n, err := nodeArg(t, args[0])
		if err != nil {
			return object.Errorf("parent: %v", err)
		}
		return nodeObject(n.Parent())
	})
}

// makeChildrenFn creates the "children" host function.
//
// children(node) → []node
func makeChildrenFn(t *tree.Tree) *object.Builtin {
	return object.NewBuiltin("children", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("children", 1, len(args))
		}
		n, err := nodeArg(t, args[0])
		if err != nil {
			return object.Errorf("children: %v", err)
		}
		out := make([]object.Object, 0, n.ChildCount())
		for c := range n.Children() {
			out = append(out, nodeObject(c))
		}
		return object.NewList(out)
	})
}

// makeAncestorFn creates the "ancestor" host function.
//
// ancestor(node, kind) → nearest enclosing node of kind, or nil
func makeAncestorFn(t *tree.Tree) *object.Builtin {
	return object.NewBuiltin("ancestor", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("ancestor", 2, len(args))
		}
		n, err := nodeArg(t, args[0])
		if err != nil {
			return object.Errorf("ancestor: %v", err)
		}
		name, err := toString(args[1])
		if err != nil {
			return object.Errorf("ancestor: kind: %v", err)
		}
		k, ok := tree.ParseKind(name)
		if !ok {
			return object.Errorf("ancestor: unknown kind %q", name)
		}
		return nodeObject(n.Ancestor(k))
	})
}

// makeNodeTextFn creates "node_text", the source text a node spans.
//
// node_text(node) → string
func makeNodeTextFn(t *tree.Tree) *object.Builtin {
	return object.NewBuiltin("node_text", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("node_text", 1, len(args))
		}
		n, err := nodeArg(t, args[0])
		if err != nil {
			return object.Errorf("node_text: %v", err)
		}
		first, ok := n.FirstToken()
		if !ok {
			return object.NewString("")
		}
		last, _ := n.LastToken()
		return object.NewString(string(t.Source()[first.Start:last.End]))
	})
}

// makeReportFn creates the "report" host function.
//
// report(node, message)
func makeReportFn(h *Host) *object.Builtin {
	return object.NewBuiltin("report", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("report", 2, len(args))
		}
		n, err := nodeArg(h.Tree, args[0])
		if err != nil {
			return object.Errorf("report: %v", err)
		}
		msg, err := toString(args[1])
		if err != nil {
			return object.Errorf("report: message: %v", err)
		}
		if h.Report != nil {
			h.Report(n, msg)
		}
		return object.Nil
	})
}

// makeReportAtFn creates "report_at" for positions not tied to a node.
//
// report_at(line, column, message)
func makeReportAtFn(h *Host) *object.Builtin {
	return object.NewBuiltin("report_at", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 3 {
			return object.NewArgsError("report_at", 3, len(args))
		}
		line, err := toInt64(args[0])
		if err != nil {
			return object.Errorf("report_at: line: %v", err)
		}
		col, err := toInt64(args[1])
		if err != nil {
			return object.Errorf("report_at: column: %v", err)
		}
		msg, err := toString(args[2])
		if err != nil {
			return object.Errorf("report_at: message: %v", err)
		}
		if line < 1 || col < 0 {
			return object.Errorf("report_at: position %d:%d out of range", line, col)
		}
		if h.ReportAt != nil {
			h.ReportAt(int(line), int(col), msg)
		}
		return object.Nil
	})
}

func toInt64(obj object.Object) (int64, error) {
	if i, ok := obj.(*object.Int); ok {
		return i.Value(), nil
	}
	if f, ok := obj.(*object.Float); ok {
		return int64(f.Value()), nil
	}
	return 0, fmt.Errorf("expected int, got %s", obj.Type())
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

// logObject provides log.Info/Warn/Error methods for scripts.
type logObject struct {
	logger *zap.Logger
}

func (l *logObject) Info(msg string) { l.logger.Info(msg) }

func (l *logObject) Warn(msg string) { l.logger.Warn(msg) }

func (l *logObject) Error(msg string) { l.logger.Error(msg) }
