package filter

import (
	"fmt"
	"strings"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/tree"
)

const (
	checkstylePrefix = "checkstyle:"
	matchAll         = "all"
)

// SuppressWarnings suppresses violations inside declarations annotated
// with @SuppressWarnings naming the check. A value matches a check when it
// is "all", the check's alias, the check's default alias or the module
// id. Values may carry a "checkstyle:" prefix.
type SuppressWarnings struct {
	// AliasList entries have the form "CheckType=alias".
	AliasList []string `mapstructure:"aliasList"`

	aliases map[string]string
}

// NewSuppressWarnings returns the filter with no aliases.
func NewSuppressWarnings() *SuppressWarnings {
	return &SuppressWarnings{}
}

func (s *SuppressWarnings) Init() error {
	s.aliases = make(map[string]string, len(s.AliasList))
	for _, item := range s.AliasList {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, alias, ok := strings.Cut(item, "=")
		if !ok || name == "" {
			return fmt.Errorf("aliasList: '=' expected in %q", item)
		}
		s.aliases[name] = alias
	}
	return nil
}

// DefaultAlias returns the lower-cased check name without a "check"
// suffix or package qualifier.
func DefaultAlias(name string) string {
	lower := strings.ToLower(name)
	lower = strings.TrimSuffix(lower, "check")
	if i := strings.LastIndexByte(lower, '.'); i >= 0 {
		lower = lower[i+1:]
	}
	return lower
}

func (s *SuppressWarnings) alias(name string) string {
	if a, ok := s.aliases[name]; ok {
		return a
	}
	if a, ok := s.aliases[strings.TrimSuffix(name, "Check")]; ok {
		return a
	}
	return DefaultAlias(name)
}

// warningRange is the span of one annotated declaration and one value of
// its @SuppressWarnings.
type warningRange struct {
	value               string
	firstLine, firstCol int
	lastLine, lastCol   int
}

func (r warningRange) covers(line, col int) bool {
	if line < r.firstLine || (line == r.firstLine && col < r.firstCol) {
		return false
	}
	return line < r.lastLine || (line == r.lastLine && col <= r.lastCol)
}

func (s *SuppressWarnings) ranges(f *check.File) []warningRange {
	return f.Memo(memoKey(s), func() any {
		var out []warningRange
		for _, ann := range f.Tree.NodesOfKind(tree.Annotation) {
			name := strings.TrimPrefix(annotationName(ann), "java.lang.")
			if name != "SuppressWarnings" {
				continue
			}
			target := annotationTarget(ann)
			if target.IsNil() {
				continue
			}
			first, ok := target.FirstToken()
			if !ok {
				continue
			}
			for _, v := range annotationValues(ann) {
				out = append(out, warningRange{
					value:     strings.TrimPrefix(v, checkstylePrefix),
					firstLine: first.Line,
					firstCol:  first.Column,
					lastLine:  target.EndLine(),
					lastCol:   target.EndColumn(),
				})
			}
		}
		return out
	}).([]warningRange)
}

func (s *SuppressWarnings) Decide(v check.Violation, f *check.File) Decision {
	ranges := s.ranges(f)
	if len(ranges) == 0 {
		return Neutral
	}
	alias := s.alias(v.CheckName)
	for _, r := range ranges {
		if !r.covers(v.Line, v.Column) {
			continue
		}
		if r.value == matchAll ||
			strings.EqualFold(r.value, alias) ||
			strings.EqualFold(DefaultAlias(r.value), alias) ||
			strings.EqualFold(DefaultAlias(v.CheckName), r.value) ||
			(v.ModuleID != "" && r.value == v.ModuleID) {
			return Reject
		}
	}
	return Neutral
}

// annotationName returns the dotted name following the @ of ann.
func annotationName(ann tree.Node) string {
	at := ann.FindFirst(tree.At)
	if at.IsNil() {
		return ""
	}
	n := at.NextSibling()
	if n.Kind() == tree.Ident {
		return n.Text()
	}
	var parts []string
	collectIdents(n, &parts)
	return strings.Join(parts, ".")
}

func collectIdents(n tree.Node, out *[]string) {
	if n.Kind() == tree.Ident {
		*out = append(*out, n.Text())
		return
	}
	for c := range n.Children() {
		collectIdents(c, out)
	}
}

// annotationTarget returns the declaration ann applies to, or a nil Node
// when it annotates something that is not a declaration.
func annotationTarget(ann tree.Node) tree.Node {
	p := ann.Parent()
	switch p.Kind() {
	case tree.Modifiers, tree.Annotations, tree.Annotation, tree.AnnotationMemberValuePair:
		return p.Parent()
	case tree.AnnotationArrayInit:
		return annotationTarget(p)
	default:
		return tree.Node{}
	}
}

// annotationValues returns the string values of the annotation's single
// element, whether given bare, as value = ..., or as an array.
func annotationValues(ann tree.Node) []string {
	lp := ann.FindFirst(tree.LParen)
	if lp.IsNil() {
		return nil
	}
	arg := lp.NextSibling()
	if arg.Kind() == tree.AnnotationMemberValuePair {
		arg = arg.LastChild()
	}
	switch arg.Kind() {
	case tree.Expr:
		return []string{exprString(arg)}
	case tree.AnnotationArrayInit:
		var out []string
		for c := range arg.Children() {
			if c.Kind() == tree.Expr {
				out = append(out, exprString(c))
			}
		}
		return out
	default:
		return nil
	}
}

func exprString(expr tree.Node) string {
	n := expr.FirstChild()
	switch n.Kind() {
	case tree.StringLiteral:
		return unquote(n.Text())
	case tree.Ident:
		return n.Text()
	case tree.Dot:
		return n.LastChild().Text()
	case tree.TextBlockLiteralBegin:
		s := strings.TrimSuffix(strings.TrimPrefix(n.Text(), `"""`), `"""`)
		return strings.Join(strings.Fields(s), "")
	default:
		return ""
	}
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
