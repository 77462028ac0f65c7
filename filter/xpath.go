package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/internal/pattern"
	"github.com/jward/checkwalk/internal/query"
	"github.com/jward/checkwalk/tree"
)

// element is one suppression entry. Nil or empty fields match anything.
type element struct {
	files   *pattern.Pattern
	checks  *pattern.Pattern
	message *pattern.Pattern
	id      string
	lines   ranges
	columns ranges
	query   *query.Query
}

// elementSpec is the textual form of an element, shared by filter
// properties and suppressions files.
type elementSpec struct {
	Files   string
	Checks  string
	Message string
	ID      string
	Lines   string
	Columns string
	Query   string
}

func (s elementSpec) compile() (*element, error) {
	e := &element{id: s.ID}
	var err error
	if e.files, err = optionalRegexp("files", s.Files); err != nil {
		return nil, err
	}
	if e.checks, err = optionalRegexp("checks", s.Checks); err != nil {
		return nil, err
	}
	if e.message, err = optionalRegexp("message", s.Message); err != nil {
		return nil, err
	}
	if e.lines, err = parseRanges("lines", s.Lines); err != nil {
		return nil, err
	}
	if e.columns, err = parseRanges("columns", s.Columns); err != nil {
		return nil, err
	}
	if s.Query != "" {
		if e.query, err = query.Compile(s.Query); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func optionalRegexp(name, format string) (*pattern.Pattern, error) {
	if format == "" {
		return nil, nil
	}
	return compile(name, format)
}

func (e *element) matches(v check.Violation, f *check.File) bool {
	switch {
	case e.files != nil && !e.files.MatchString(v.Path):
		return false
	case e.checks != nil && !e.checks.MatchString(v.CheckName):
		return false
	case e.id != "" && e.id != v.ModuleID:
		return false
	case e.message != nil && !e.message.MatchString(v.Message):
		return false
	case !e.lines.contains(v.Line), !e.columns.contains(v.Column):
		return false
	}
	return e.query == nil || e.queryMatches(v, f)
}

// queryMatches reports whether the query selects the node the violation
// was reported on. Violations not tied to a node match on position alone.
func (e *element) queryMatches(v check.Violation, f *check.File) bool {
	key := fmt.Sprintf("query:%p", e.query)
	nodes := f.Memo(key, func() any { return e.query.Select(f.Tree) })
	for _, n := range nodes.([]tree.Node) {
		if n.Line() == v.Line && n.Column() == v.Column && (!v.Kind.Valid() || n.Kind() == v.Kind) {
			return true
		}
	}
	return false
}

// ranges is a comma-separated list of integers and inclusive a-b spans.
// A nil ranges contains every value.
type ranges [][2]int

func parseRanges(name, s string) (ranges, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out ranges
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isSpan := strings.Cut(part, "-")
		a, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("%s: bad value %q", name, part)
		}
		b := a
		if isSpan {
			if b, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil || b < a {
				return nil, fmt.Errorf("%s: bad range %q", name, part)
			}
		}
		out = append(out, [2]int{a, b})
	}
	return out, nil
}

func (r ranges) contains(n int) bool {
	if r == nil {
		return true
	}
	for _, span := range r {
		if n >= span[0] && n <= span[1] {
			return true
		}
	}
	return false
}

// SuppressionXpathSingle suppresses violations matching every given
// pattern and sitting on a node selected by Query.
type SuppressionXpathSingle struct {
	Files   string `mapstructure:"files"`
	Checks  string `mapstructure:"checks"`
	Message string `mapstructure:"message"`
	ID      string `mapstructure:"id"`
	Query   string `mapstructure:"query"`

	elem *element
}

func (s *SuppressionXpathSingle) Init() error {
	var err error
	s.elem, err = elementSpec{
		Files:   s.Files,
		Checks:  s.Checks,
		Message: s.Message,
		ID:      s.ID,
		Query:   s.Query,
	}.compile()
	return err
}

func (s *SuppressionXpathSingle) ReferencedIDs() []string {
	if s.ID == "" {
		return nil
	}
	return []string{s.ID}
}

func (s *SuppressionXpathSingle) Decide(v check.Violation, f *check.File) Decision {
	if s.elem.matches(v, f) {
		return Reject
	}
	return Neutral
}
