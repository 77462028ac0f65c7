package check

import (
	"context"

	"go.uber.org/zap"

	"github.com/jward/checkwalk/tree"
)

// Context is handed to one check for one file.
type Context struct {
	std    context.Context
	file   *File
	module *Module
	order  int
	acc    *Accumulator
	base   *zap.Logger
	logger *zap.Logger
	failed error
}

// File returns the file being walked.
func (c *Context) File() *File { return c.file }

// Ctx returns the context the file is analysed under. Checks that block,
// such as scripted ones, must honour its cancellation.
func (c *Context) Ctx() context.Context {
	if c.std == nil {
		return context.Background()
	}
	return c.std
}

// Tree returns the file's tree.
func (c *Context) Tree() *tree.Tree { return c.file.Tree }

// Severity returns the configured severity of the check.
func (c *Context) Severity() Severity { return c.module.Severity }

// Report records a violation at n's position.
func (c *Context) Report(n tree.Node, key string, args ...any) {
	c.record(n.Line(), n.Column(), n.Kind(), key, args)
}

// ReportAt records a violation at a line and column that is not tied to a
// node.
func (c *Context) ReportAt(line, col int, key string, args ...any) {
	c.record(line, col, tree.Invalid, key, args)
}

func (c *Context) record(line, col int, kind tree.Kind, key string, args []any) {
	msg := key
	if tmpl, ok := c.module.Messages[key]; ok {
		msg = FormatMessage(tmpl, args...)
	}
	c.acc.Record(Violation{
		Path:      c.file.Path,
		Line:      line,
		Column:    col,
		Kind:      kind,
		CheckName: c.module.Name,
		ModuleID:  c.module.ID,
		Key:       key,
		Message:   msg,
		Severity:  c.module.Severity,
		order:     c.order,
	})
}

// Fail aborts the walk of the current file. The file fails with a
// *CheckError wrapping err.
func (c *Context) Fail(err error) {
	if c.failed == nil {
		c.failed = err
	}
}

// Logger returns a logger tagged with the check name and file path.
func (c *Context) Logger() *zap.Logger {
	if c.logger == nil {
		c.logger = c.base.With(zap.String("check", c.module.Name), zap.String("path", c.file.Path))
	}
	return c.logger
}
