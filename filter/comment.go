package filter

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/internal/pattern"
	"github.com/jward/checkwalk/tree"
)

// expand replaces $n in template with capture group n of every match of
// re in text. Higher group numbers are replaced first so $1 does not eat
// the prefix of $10.
func expand(template string, re *pattern.Pattern, text string) string {
	out := template
	for _, m := range re.FindAllSubmatch(text) {
		for i := len(m) - 1; i >= 0; i-- {
			out = strings.ReplaceAll(out, "$"+strconv.Itoa(i), m[i])
		}
	}
	return out
}

var groupRef = pattern.MustCompile(`\$\d`)

// compileTemplate validates a format at configuration time. Formats that
// refer to capture groups can only be compiled once expanded.
func compileTemplate(name, format string) error {
	if format == "" || groupRef.MatchString(format) {
		return nil
	}
	if _, err := pattern.Compile(format); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func validateFormats(checkFmt, messageFmt, idFmt string) error {
	if err := compileTemplate("checkFormat", checkFmt); err != nil {
		return err
	}
	if err := compileTemplate("messageFormat", messageFmt); err != nil {
		return err
	}
	return compileTemplate("idFormat", idFmt)
}

func compile(name, format string) (*pattern.Pattern, error) {
	re, err := pattern.Compile(format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return re, nil
}

// matcher is the expanded check, message and id patterns of one tag.
type matcher struct {
	check   *pattern.Pattern
	message *pattern.Pattern // nil matches any message
	id      *pattern.Pattern // nil matches any module
}

// newMatcher expands the three formats against text. ok is false when an
// expanded format is not a valid pattern; such tags are ignored.
func newMatcher(checkFmt, messageFmt, idFmt string, re *pattern.Pattern, text string) (m matcher, ok bool) {
	var err error
	if m.check, err = pattern.Compile(expand(checkFmt, re, text)); err != nil {
		return m, false
	}
	if messageFmt != "" {
		if m.message, err = pattern.Compile(expand(messageFmt, re, text)); err != nil {
			return m, false
		}
	}
	if idFmt != "" {
		if m.id, err = pattern.Compile(expand(idFmt, re, text)); err != nil {
			return m, false
		}
	}
	return m, true
}

func (m matcher) matches(v check.Violation) bool {
	if !m.check.MatchString(v.CheckName) {
		return false
	}
	if m.id != nil && (v.ModuleID == "" || !m.id.MatchString(v.ModuleID)) {
		return false
	}
	return m.message == nil || m.message.MatchString(v.Message)
}

// commentLine is one physical line of a comment.
type commentLine struct {
	line, col int
	text      string
}

// commentLines splits the comments of t into lines. The first line of a
// comment keeps its column; continuation lines start at column 0.
func commentLines(t *tree.Tree, block, single bool) []commentLine {
	var out []commentLine
	for _, c := range t.Comments() {
		if (c.IsBlockComment() && !block) || (c.IsLineComment() && !single) {
			continue
		}
		for i, text := range splitLines(c.Text) {
			cl := commentLine{line: c.Line + i, text: text}
			if i == 0 {
				cl.col = c.Column
			}
			out = append(out, cl)
		}
	}
	return out
}

// toggle looks for the off marker, then the on marker, in line. It
// returns the pattern that matched and the matched text.
func toggle(off, on *pattern.Pattern, line string) (re *pattern.Pattern, isOff bool, text string, found bool) {
	if m, ok := off.FindString(line); ok {
		return off, true, m, true
	}
	if m, ok := on.FindString(line); ok {
		return on, false, m, true
	}
	return nil, false, "", false
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(s, "\n")
}

// SuppressionComment suppresses violations between an off comment and
// the next on comment. The nearest preceding tag whose patterns match the
// violation decides.
type SuppressionComment struct {
	OffCommentFormat string `mapstructure:"offCommentFormat"`
	OnCommentFormat  string `mapstructure:"onCommentFormat"`
	CheckFormat      string `mapstructure:"checkFormat"`
	MessageFormat    string `mapstructure:"messageFormat"`
	IDFormat         string `mapstructure:"idFormat"`
	CheckC           bool   `mapstructure:"checkC"`
	CheckCPP         bool   `mapstructure:"checkCPP"`

	off, on *pattern.Pattern
}

// NewSuppressionComment returns the filter with its default formats.
func NewSuppressionComment() *SuppressionComment {
	return &SuppressionComment{
		OffCommentFormat: "CHECKSTYLE:OFF",
		OnCommentFormat:  "CHECKSTYLE:ON",
		CheckFormat:      ".*",
		CheckC:           true,
		CheckCPP:         true,
	}
}

func (s *SuppressionComment) Init() error {
	var err error
	if s.off, err = compile("offCommentFormat", s.OffCommentFormat); err != nil {
		return err
	}
	if s.on, err = compile("onCommentFormat", s.OnCommentFormat); err != nil {
		return err
	}
	return validateFormats(s.CheckFormat, s.MessageFormat, s.IDFormat)
}

type toggleTag struct {
	line, col int
	off       bool
	matcher
}

func (s *SuppressionComment) tags(f *check.File) []toggleTag {
	return f.Memo(memoKey(s), func() any {
		var tags []toggleTag
		for _, cl := range commentLines(f.Tree, s.CheckC, s.CheckCPP) {
			re, off, text, found := toggle(s.off, s.on, cl.text)
			if !found {
				continue
			}
			m, ok := newMatcher(s.CheckFormat, s.MessageFormat, s.IDFormat, re, text)
			if !ok {
				continue
			}
			tags = append(tags, toggleTag{line: cl.line, col: cl.col, off: off, matcher: m})
		}
		slices.SortStableFunc(tags, func(a, b toggleTag) int {
			if c := cmp.Compare(a.line, b.line); c != 0 {
				return c
			}
			return cmp.Compare(a.col, b.col)
		})
		return tags
	}).([]toggleTag)
}

func (s *SuppressionComment) Decide(v check.Violation, f *check.File) Decision {
	var nearest *toggleTag
	tags := s.tags(f)
	for i := range tags {
		t := &tags[i]
		if t.line > v.Line || (t.line == v.Line && t.col > v.Column) {
			break
		}
		if t.matches(v) {
			nearest = t
		}
	}
	if nearest != nil && nearest.off {
		return Reject
	}
	return Neutral
}

// SuppressWithNearbyComment suppresses violations on lines near a
// directive comment. The influence is a line count: positive reaches
// forward, negative reaches back.
type SuppressWithNearbyComment struct {
	CommentFormat   string `mapstructure:"commentFormat"`
	CheckFormat     string `mapstructure:"checkFormat"`
	MessageFormat   string `mapstructure:"messageFormat"`
	IDFormat        string `mapstructure:"idFormat"`
	InfluenceFormat string `mapstructure:"influenceFormat"`
	CheckC          bool   `mapstructure:"checkC"`
	CheckCPP        bool   `mapstructure:"checkCPP"`

	comment *pattern.Pattern
}

// NewSuppressWithNearbyComment returns the filter with its default
// formats.
func NewSuppressWithNearbyComment() *SuppressWithNearbyComment {
	return &SuppressWithNearbyComment{
		CommentFormat:   `SUPPRESS CHECKSTYLE (\w+)`,
		CheckFormat:     ".*",
		InfluenceFormat: "0",
		CheckC:          true,
		CheckCPP:        true,
	}
}

func (s *SuppressWithNearbyComment) Init() error {
	var err error
	if s.comment, err = compile("commentFormat", s.CommentFormat); err != nil {
		return err
	}
	if err := validateFormats(s.CheckFormat, s.MessageFormat, s.IDFormat); err != nil {
		return err
	}
	return validateInfluence("influenceFormat", s.InfluenceFormat)
}

// validateInfluence checks that a line count without group references is
// an integer.
func validateInfluence(name, format string) error {
	if groupRef.MatchString(format) {
		return nil
	}
	if _, err := strconv.Atoi(format); err != nil {
		return fmt.Errorf("%s: %q is not a line count", name, format)
	}
	return nil
}

// nearby describes directives that suppress the lines around them.
type nearby struct {
	directive                   *pattern.Pattern
	checkFmt, messageFmt, idFmt string
	influenceFmt                string
}

type rangeTag struct {
	first, last int
	matcher
}

// tag builds the range of a directive found on line. ok is false when text
// holds no directive or an expanded format is unusable.
func (n nearby) tag(line int, text string) (rangeTag, bool) {
	if !n.directive.MatchString(text) {
		return rangeTag{}, false
	}
	m, ok := newMatcher(n.checkFmt, n.messageFmt, n.idFmt, n.directive, text)
	if !ok {
		return rangeTag{}, false
	}
	infl, err := strconv.Atoi(expand(n.influenceFmt, n.directive, text))
	if err != nil {
		return rangeTag{}, false
	}
	t := rangeTag{first: line + infl, last: line, matcher: m}
	if infl >= 1 {
		t.first, t.last = line, line+infl
	}
	return t, true
}

func decideRanges(tags []rangeTag, v check.Violation) Decision {
	for _, t := range tags {
		if v.Line >= t.first && v.Line <= t.last && t.matches(v) {
			return Reject
		}
	}
	return Neutral
}

func (s *SuppressWithNearbyComment) tags(f *check.File) []rangeTag {
	return f.Memo(memoKey(s), func() any {
		n := nearby{s.comment, s.CheckFormat, s.MessageFormat, s.IDFormat, s.InfluenceFormat}
		var tags []rangeTag
		for _, cl := range commentLines(f.Tree, s.CheckC, s.CheckCPP) {
			if t, ok := n.tag(cl.line, cl.text); ok {
				tags = append(tags, t)
			}
		}
		return tags
	}).([]rangeTag)
}

func (s *SuppressWithNearbyComment) Decide(v check.Violation, f *check.File) Decision {
	return decideRanges(s.tags(f), v)
}

// SuppressWithNearbyText is SuppressWithNearbyComment over raw source
// lines: the directive may appear anywhere on a line, comment or not.
type SuppressWithNearbyText struct {
	NearbyTextPattern string `mapstructure:"nearbyTextPattern"`
	CheckPattern      string `mapstructure:"checkPattern"`
	MessagePattern    string `mapstructure:"messagePattern"`
	IDPattern         string `mapstructure:"idPattern"`
	LineRange         string `mapstructure:"lineRange"`

	directive *pattern.Pattern
}

// NewSuppressWithNearbyText returns the filter with its default patterns.
func NewSuppressWithNearbyText() *SuppressWithNearbyText {
	return &SuppressWithNearbyText{
		NearbyTextPattern: `SUPPRESS CHECKSTYLE (\w+)`,
		CheckPattern:      ".*",
		LineRange:         "0",
	}
}

func (s *SuppressWithNearbyText) Init() error {
	var err error
	if s.directive, err = compile("nearbyTextPattern", s.NearbyTextPattern); err != nil {
		return err
	}
	if err := compileTemplate("checkPattern", s.CheckPattern); err != nil {
		return err
	}
	if err := compileTemplate("messagePattern", s.MessagePattern); err != nil {
		return err
	}
	if err := compileTemplate("idPattern", s.IDPattern); err != nil {
		return err
	}
	return validateInfluence("lineRange", s.LineRange)
}

func (s *SuppressWithNearbyText) tags(f *check.File) []rangeTag {
	return f.Memo(memoKey(s), func() any {
		n := nearby{s.directive, s.CheckPattern, s.MessagePattern, s.IDPattern, s.LineRange}
		var tags []rangeTag
		lines := f.Lines()
		for i := 1; i <= lines.Count(); i++ {
			if t, ok := n.tag(i, lines.Text(i)); ok {
				tags = append(tags, t)
			}
		}
		return tags
	}).([]rangeTag)
}

func (s *SuppressWithNearbyText) Decide(v check.Violation, f *check.File) Decision {
	return decideRanges(s.tags(f), v)
}

// SuppressWithPlainTextComment works like SuppressionComment but scans
// raw source lines, so the markers need not be comments the grammar
// recognises. A line holding both markers counts as off.
type SuppressWithPlainTextComment struct {
	OffCommentFormat string `mapstructure:"offCommentFormat"`
	OnCommentFormat  string `mapstructure:"onCommentFormat"`
	CheckFormat      string `mapstructure:"checkFormat"`
	MessageFormat    string `mapstructure:"messageFormat"`
	IDFormat         string `mapstructure:"idFormat"`

	off, on *pattern.Pattern
}

// NewSuppressWithPlainTextComment returns the filter with its default
// formats.
func NewSuppressWithPlainTextComment() *SuppressWithPlainTextComment {
	return &SuppressWithPlainTextComment{
		OffCommentFormat: "// CHECKSTYLE:OFF",
		OnCommentFormat:  "// CHECKSTYLE:ON",
		CheckFormat:      ".*",
	}
}

func (s *SuppressWithPlainTextComment) Init() error {
	var err error
	if s.off, err = compile("offCommentFormat", s.OffCommentFormat); err != nil {
		return err
	}
	if s.on, err = compile("onCommentFormat", s.OnCommentFormat); err != nil {
		return err
	}
	return validateFormats(s.CheckFormat, s.MessageFormat, s.IDFormat)
}

func (s *SuppressWithPlainTextComment) tags(f *check.File) []toggleTag {
	return f.Memo(memoKey(s), func() any {
		var tags []toggleTag
		lines := f.Lines()
		for n := 1; n <= lines.Count(); n++ {
			re, off, text, found := toggle(s.off, s.on, lines.Text(n))
			if !found {
				continue
			}
			m, ok := newMatcher(s.CheckFormat, s.MessageFormat, s.IDFormat, re, text)
			if !ok {
				continue
			}
			tags = append(tags, toggleTag{line: n, off: off, matcher: m})
		}
		return tags
	}).([]toggleTag)
}

func (s *SuppressWithPlainTextComment) Decide(v check.Violation, f *check.File) Decision {
	var nearest *toggleTag
	tags := s.tags(f)
	for i := range tags {
		t := &tags[i]
		if t.line > v.Line {
			break
		}
		if t.matches(v) {
			nearest = t
		}
	}
	if nearest != nil && nearest.off {
		return Reject
	}
	return Neutral
}
