package checks

import (
	"fmt"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/tree"
)

// NestedTryDepth reports try statements nested more than Max deep. The
// outermost try has depth 0.
type NestedTryDepth struct {
	check.Base
	Max int `mapstructure:"max"`

	depth int
}

func NewNestedTryDepth() *NestedTryDepth { return &NestedTryDepth{Max: 1} }

func (c *NestedTryDepth) Init() error { return validateMax(c.Max) }

func (c *NestedTryDepth) DefaultTokens() []tree.Kind  { return []tree.Kind{tree.LiteralTry} }
func (c *NestedTryDepth) RequiredTokens() []tree.Kind { return []tree.Kind{tree.LiteralTry} }

func (c *NestedTryDepth) Messages() map[string]string {
	return map[string]string{"nested.try.depth": "Nested try depth is {0} (max allowed is {1})."}
}

func (c *NestedTryDepth) BeginTree(*check.Context) { c.depth = 0 }

func (c *NestedTryDepth) Visit(ctx *check.Context, n tree.Node) {
	if c.depth > c.Max {
		ctx.Report(n, "nested.try.depth", c.depth, c.Max)
	}
	c.depth++
}

func (c *NestedTryDepth) Leave(*check.Context, tree.Node) { c.depth-- }

// NestedIfDepth reports if statements nested more than Max deep. An else-if
// continues its chain and does not add a level.
type NestedIfDepth struct {
	check.Base
	Max int `mapstructure:"max"`

	depth int
}

func NewNestedIfDepth() *NestedIfDepth { return &NestedIfDepth{Max: 1} }

func (c *NestedIfDepth) Init() error { return validateMax(c.Max) }

func (c *NestedIfDepth) DefaultTokens() []tree.Kind  { return []tree.Kind{tree.LiteralIf} }
func (c *NestedIfDepth) RequiredTokens() []tree.Kind { return []tree.Kind{tree.LiteralIf} }

func (c *NestedIfDepth) Messages() map[string]string {
	return map[string]string{"nested.if.depth": "Nested if-else depth is {0} (max allowed is {1})."}
}

func (c *NestedIfDepth) BeginTree(*check.Context) { c.depth = 0 }

func (c *NestedIfDepth) Visit(ctx *check.Context, n tree.Node) {
	if isElseIf(n) {
		return
	}
	if c.depth > c.Max {
		ctx.Report(n, "nested.if.depth", c.depth, c.Max)
	}
	c.depth++
}

func (c *NestedIfDepth) Leave(_ *check.Context, n tree.Node) {
	if !isElseIf(n) {
		c.depth--
	}
}

func isElseIf(n tree.Node) bool { return n.Parent().Kind() == tree.LiteralElse }

func validateMax(n int) error {
	if n < 0 {
		return fmt.Errorf("max must not be negative, got %d", n)
	}
	return nil
}
