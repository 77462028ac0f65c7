package checks

import (
	"fmt"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/internal/pattern"
	"github.com/jward/checkwalk/tree"
)

// LineLength reports lines longer than Max, measured with tabs expanded.
// Lines matching IgnorePattern are skipped.
type LineLength struct {
	check.Base
	Max           int    `mapstructure:"max"`
	IgnorePattern string `mapstructure:"ignorePattern"`

	ignore *pattern.Pattern
}

func NewLineLength() *LineLength {
	return &LineLength{Max: 80, IgnorePattern: `^(package|import) .*`}
}

func (c *LineLength) Init() error {
	if err := validateMax(c.Max); err != nil {
		return err
	}
	if c.IgnorePattern == "" {
		return nil
	}
	re, err := pattern.Compile(c.IgnorePattern)
	if err != nil {
		return fmt.Errorf("ignorePattern: %w", err)
	}
	c.ignore = re
	return nil
}

func (c *LineLength) Messages() map[string]string {
	return map[string]string{"maxLineLen": "Line is longer than {0} characters (found {1})."}
}

func (c *LineLength) BeginTree(ctx *check.Context) {
	lines := ctx.File().Lines()
	for i := 1; i <= lines.Count(); i++ {
		text := lines.Text(i)
		n := tree.ExpandedLength(text, lines.TabWidth())
		if n <= c.Max {
			continue
		}
		if c.ignore != nil && c.ignore.MatchString(text) {
			continue
		}
		ctx.ReportAt(i, 0, "maxLineLen", c.Max, n)
	}
}
