package checks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/internal/runtime"
	"github.com/jward/checkwalk/scripts"
	"github.com/jward/checkwalk/tree"
)

// Script runs a Risor script once per file. The script sees the file's
// tree through host functions and reports with report(node, message) or
// report_at(line, column, message). Nodes of the configured tokens are
// collected during the walk and handed over as the visited list.
//
// The script is given inline, as a file, or as the name of a built-in rule
// from package scripts.
type Script struct {
	check.Base
	Source  string `mapstructure:"script"`
	File    string `mapstructure:"file"`
	Builtin string `mapstructure:"builtin"`
	LibDir  string `mapstructure:"libDir"`

	rt      *runtime.Runtime
	src     string
	label   string
	visited []tree.Node
}

func (c *Script) Init() error {
	set := 0
	for _, s := range []string{c.Source, c.File, c.Builtin} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return errors.New("exactly one of script, file or builtin is required")
	}
	if c.Builtin != "" {
		return c.initBuiltin()
	}
	c.rt = runtime.New(runtime.WithLibDir(c.LibDir))
	if c.Source != "" {
		c.src, c.label = c.Source, "<inline>"
		return nil
	}
	src, err := c.rt.LoadScript(c.File)
	if err != nil {
		return err
	}
	c.src, c.label = src, c.File
	return nil
}

func (c *Script) initBuiltin() error {
	if !scripts.Has(c.Builtin) {
		return fmt.Errorf("unknown builtin rule %q, have %s", c.Builtin, strings.Join(scripts.Names(), ", "))
	}
	c.rt = runtime.New(runtime.WithFS(scripts.Rules()))
	src, err := c.rt.LoadScript(scripts.File(c.Builtin))
	if err != nil {
		return err
	}
	c.src, c.label = src, "builtin:"+c.Builtin
	return nil
}

func (c *Script) AcceptableTokens() []tree.Kind { return tree.AllKinds() }

func (c *Script) Messages() map[string]string {
	return map[string]string{"script.violation": "{0}"}
}

func (c *Script) BeginTree(*check.Context) { c.visited = c.visited[:0] }

func (c *Script) Visit(_ *check.Context, n tree.Node) { c.visited = append(c.visited, n) }

func (c *Script) FinishTree(ctx *check.Context) {
	h := &runtime.Host{
		Path:    ctx.File().Path,
		Tree:    ctx.Tree(),
		Visited: c.visited,
		Logger:  ctx.Logger(),
		Report: func(n tree.Node, msg string) {
			ctx.Report(n, "script.violation", msg)
		},
		ReportAt: func(line, col int, msg string) {
			ctx.ReportAt(line, col, "script.violation", msg)
		},
	}
	if err := c.rt.Run(ctx.Ctx(), c.src, c.label, h); err != nil {
		ctx.Fail(err)
	}
}
