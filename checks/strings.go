package checks

import (
	"fmt"
	"strings"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/internal/pattern"
	"github.com/jward/checkwalk/tree"
)

// MultipleStringLiterals reports string literals that occur more than
// AllowedDuplicates+1 times in a file. Every occurrence past the allowed
// count is reported at its own position.
type MultipleStringLiterals struct {
	check.Base
	AllowedDuplicates       int      `mapstructure:"allowedDuplicates"`
	IgnoreStringsRegexp     string   `mapstructure:"ignoreStringsRegexp"`
	IgnoreOccurrenceContext []string `mapstructure:"ignoreOccurrenceContext"`

	ignore   *pattern.Pattern
	contexts map[tree.Kind]bool

	order []string
	seen  map[string][]tree.Node
}

func NewMultipleStringLiterals() *MultipleStringLiterals {
	return &MultipleStringLiterals{
		AllowedDuplicates:       1,
		IgnoreStringsRegexp:     `^""$`,
		IgnoreOccurrenceContext: []string{"ANNOTATION"},
	}
}

func (c *MultipleStringLiterals) Init() error {
	if c.AllowedDuplicates < 0 {
		return fmt.Errorf("allowedDuplicates must not be negative, got %d", c.AllowedDuplicates)
	}
	if c.IgnoreStringsRegexp != "" {
		re, err := pattern.Compile(c.IgnoreStringsRegexp)
		if err != nil {
			return fmt.Errorf("ignoreStringsRegexp: %w", err)
		}
		c.ignore = re
	}
	c.contexts = make(map[tree.Kind]bool, len(c.IgnoreOccurrenceContext))
	for _, name := range c.IgnoreOccurrenceContext {
		if strings.TrimSpace(name) == "" {
			continue
		}
		k, ok := tree.ParseKind(name)
		if !ok {
			return fmt.Errorf("ignoreOccurrenceContext: unknown token %q", name)
		}
		c.contexts[k] = true
	}
	return nil
}

func (c *MultipleStringLiterals) DefaultTokens() []tree.Kind {
	return []tree.Kind{tree.StringLiteral, tree.TextBlockLiteralBegin}
}

func (c *MultipleStringLiterals) Messages() map[string]string {
	return map[string]string{"multiple.string.literal": "The String {0} appears {1} times in the file."}
}

func (c *MultipleStringLiterals) BeginTree(*check.Context) {
	c.order = c.order[:0]
	c.seen = make(map[string][]tree.Node)
}

func (c *MultipleStringLiterals) Visit(_ *check.Context, n tree.Node) {
	if c.inIgnoredContext(n) {
		return
	}
	text := n.Text()
	if n.Kind() == tree.TextBlockLiteralBegin {
		text = `"` + stripTextBlock(text) + `"`
	}
	if c.ignore != nil && c.ignore.MatchString(text) {
		return
	}
	if _, ok := c.seen[text]; !ok {
		c.order = append(c.order, text)
	}
	c.seen[text] = append(c.seen[text], n)
}

func (c *MultipleStringLiterals) FinishTree(ctx *check.Context) {
	for _, text := range c.order {
		hits := c.seen[text]
		if len(hits) <= c.AllowedDuplicates {
			continue
		}
		for _, n := range hits[c.AllowedDuplicates:] {
			ctx.Report(n, "multiple.string.literal", text, len(hits))
		}
	}
}

func (c *MultipleStringLiterals) inIgnoredContext(n tree.Node) bool {
	if len(c.contexts) == 0 {
		return false
	}
	for p := n; !p.Parent().IsNil(); p = p.Parent() {
		if c.contexts[p.Kind()] {
			return true
		}
	}
	return false
}

// stripTextBlock returns the content of a text block with the opening line
// dropped and the common indentation and trailing spaces removed, the way
// the compiler sees it.
func stripTextBlock(lit string) string {
	body := strings.TrimSuffix(strings.TrimPrefix(lit, `"""`), `"""`)
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	}
	body = strings.ReplaceAll(body, "\r\n", "\n")
	lines := strings.Split(body, "\n")

	indent := -1
	for i, l := range lines {
		blank := strings.TrimSpace(l) == ""
		// The closing delimiter line counts even when blank.
		if blank && i != len(lines)-1 {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			l = l[indent:]
		} else if strings.TrimSpace(l) == "" {
			l = ""
		}
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Join(lines, "\n")
}

// EmptyStatement reports standalone semicolons.
type EmptyStatement struct {
	check.Base
}

func (c *EmptyStatement) DefaultTokens() []tree.Kind  { return []tree.Kind{tree.EmptyStat} }
func (c *EmptyStatement) RequiredTokens() []tree.Kind { return []tree.Kind{tree.EmptyStat} }

func (c *EmptyStatement) Messages() map[string]string {
	return map[string]string{"empty.statement": "Empty statement."}
}

func (c *EmptyStatement) Visit(ctx *check.Context, n tree.Node) {
	ctx.Report(n, "empty.statement")
}
