// Package pattern compiles the regular expressions found in check and
// filter properties. Configurations are written for Checkstyle, whose
// patterns use the Java dialect: lookarounds, backreferences and lazy
// quantifiers all appear in real configurations, so patterns are compiled
// with regexp2 rather than RE2.
package pattern

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single match. A backtracking pattern that runs
// longer is treated as not matching.
const matchTimeout = 5 * time.Second

// Pattern is a compiled expression. It is safe for concurrent use.
type Pattern struct {
	re *regexp2.Regexp
}

// Compile parses expr.
func Compile(expr string) (*Pattern, error) {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("pattern: compile %q: %w", expr, err)
	}
	re.MatchTimeout = matchTimeout
	return &Pattern{re: re}, nil
}

// MustCompile is Compile for expressions known to be valid.
func MustCompile(expr string) *Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) String() string { return p.re.String() }

// MatchString reports whether s contains a match, like Java's find().
func (p *Pattern) MatchString(s string) bool {
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

// FindString returns the text of the first match in s.
func (p *Pattern) FindString(s string) (string, bool) {
	m, err := p.re.FindStringMatch(s)
	if err != nil || m == nil {
		return "", false
	}
	return m.String(), true
}

// FindAllSubmatch returns every match in s. Element n of each row is the
// text of group n, empty when the group did not take part.
func (p *Pattern) FindAllSubmatch(s string) [][]string {
	numbers := p.re.GetGroupNumbers()
	width := 0
	for _, n := range numbers {
		width = max(width, n+1)
	}

	var out [][]string
	m, err := p.re.FindStringMatch(s)
	for err == nil && m != nil {
		row := make([]string, width)
		for _, n := range numbers {
			if g := m.GroupByNumber(n); g != nil && len(g.Captures) > 0 {
				row[n] = g.String()
			}
		}
		out = append(out, row)
		m, err = p.re.FindNextMatch(m)
	}
	return out
}
