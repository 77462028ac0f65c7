package check

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jward/checkwalk/tree"
)

// pollEvery is how many nodes are visited between context checks.
const pollEvery = 256

// Walker runs one worker's check instances over files. It is not safe for
// concurrent use; build one per worker.
type Walker struct {
	set    *Set
	checks []Check
	logger *zap.Logger
}

// NewWalker instantiates the checks of set.
func NewWalker(set *Set, logger *zap.Logger) (*Walker, error) {
	checks, err := set.Instantiate()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{set: set, checks: checks, logger: logger}, nil
}

// Walk runs every check over f and returns the sorted violations. A
// panicking or failing check abandons the file with a *CheckError; a
// cancelled ctx abandons it with a *FileError.
func (w *Walker) Walk(ctx context.Context, f *File) (vs []Violation, err error) {
	acc := &Accumulator{}
	ctxs := make([]*Context, len(w.checks))
	for i := range w.checks {
		ctxs[i] = &Context{std: ctx, file: f, module: &w.set.modules[i], order: i, acc: acc, base: w.logger}
	}

	cur := -1
	defer func() {
		if r := recover(); r != nil {
			vs = nil
			if cur < 0 {
				err = &FileError{Path: f.Path, Op: "walk", Err: fmt.Errorf("panic: %v", r)}
				return
			}
			err = w.checkError(f, cur, fmt.Errorf("panic: %v", r))
			w.logger.Error("check panicked",
				zap.String("path", f.Path),
				zap.String("check", w.set.modules[cur].Name),
				zap.Any("panic", r))
		}
	}()

	for i, c := range w.checks {
		cur = i
		c.BeginTree(ctxs[i])
		if ctxs[i].failed != nil {
			return nil, w.checkError(f, i, ctxs[i].failed)
		}
	}

	if d := w.set.dispatch; !d.Empty() {
		if i, err := w.walkTree(ctx, f, d, ctxs, &cur); err != nil {
			if i < 0 {
				return nil, &FileError{Path: f.Path, Op: "walk", Err: err}
			}
			return nil, w.checkError(f, i, err)
		}
	}

	for i, c := range w.checks {
		cur = i
		c.FinishTree(ctxs[i])
		if ctxs[i].failed != nil {
			return nil, w.checkError(f, i, ctxs[i].failed)
		}
	}
	return acc.Drain(), nil
}

// walkTree does one pre-order pass calling Visit and Leave. It follows
// sibling and parent links, so it needs no stack. On failure it returns
// the index of the failing check, or -1 for cancellation.
func (w *Walker) walkTree(ctx context.Context, f *File, d *DispatchTable, ctxs []*Context, cur *int) (int, error) {
	call := func(n tree.Node, leave bool) (int, error) {
		for _, i := range d.Handlers(n.Kind()) {
			*cur = i
			if leave {
				w.checks[i].Leave(ctxs[i], n)
			} else {
				w.checks[i].Visit(ctxs[i], n)
			}
			if ctxs[i].failed != nil {
				return i, ctxs[i].failed
			}
		}
		return 0, nil
	}

	root := f.Tree.Root()
	n := root
	steps := 0
	for {
		steps++
		if steps%pollEvery == 0 {
			if err := ctx.Err(); err != nil {
				return -1, err
			}
		}
		if i, err := call(n, false); err != nil {
			return i, err
		}
		if c := n.FirstChild(); !c.IsNil() {
			n = c
			continue
		}
		for {
			if i, err := call(n, true); err != nil {
				return i, err
			}
			if n.ID() == root.ID() {
				return 0, nil
			}
			if s := n.NextSibling(); !s.IsNil() {
				n = s
				break
			}
			n = n.Parent()
		}
	}
}

func (w *Walker) checkError(f *File, i int, err error) *CheckError {
	m := w.set.modules[i]
	return &CheckError{Path: f.Path, Check: m.Name, ModuleID: m.ID, Err: err}
}
