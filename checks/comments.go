package checks

import (
	"fmt"
	"strings"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/internal/pattern"
)

// TodoComment reports comments whose text matches Format. Comments are
// read from the token stream, so no comment nodes are needed.
type TodoComment struct {
	check.Base
	Format string `mapstructure:"format"`

	format *pattern.Pattern
}

func NewTodoComment() *TodoComment { return &TodoComment{Format: "TODO:"} }

func (c *TodoComment) Init() error {
	re, err := pattern.Compile(c.Format)
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	c.format = re
	return nil
}

func (c *TodoComment) Messages() map[string]string {
	return map[string]string{"todo.match": "Comment matches to-do format ''{0}''."}
}

// BeginTree reports once per matching comment line, at the start of the
// comment's content.
func (c *TodoComment) BeginTree(ctx *check.Context) {
	for _, tok := range ctx.Tree().Comments() {
		for _, line := range strings.Split(commentBody(tok), "\n") {
			if c.format.MatchString(line) {
				ctx.ReportAt(tok.Line, tok.Column+2, "todo.match", c.Format)
			}
		}
	}
}
