package check

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/checkwalk/tree"
)

// newTestFile builds the tree for "if (a) { b; }" by hand.
func newTestFile(t *testing.T) *File {
	t.Helper()
	src := []byte("if (a) { b; }")
	b := tree.NewBuilder(src, tree.NewLines(src, 8))
	tok := func(k tree.Kind, start, end int) int32 {
		return b.AddToken(tree.Token{Kind: k, Text: string(src[start:end]), Start: start, End: end})
	}
	ifNode := b.Add(b.Root(), tree.LiteralIf)
	b.Anchor(ifNode, tok(tree.LiteralIf, 0, 2))
	b.AddLeaf(ifNode, tree.LParen, tok(tree.LParen, 3, 4))
	expr := b.Add(ifNode, tree.Expr)
	b.AddLeaf(expr, tree.Ident, tok(tree.Ident, 4, 5))
	b.AddLeaf(ifNode, tree.RParen, tok(tree.RParen, 5, 6))
	slist := b.Add(ifNode, tree.SList)
	b.Anchor(slist, tok(tree.LCurly, 7, 8))
	e2 := b.Add(slist, tree.Expr)
	b.AddLeaf(e2, tree.Ident, tok(tree.Ident, 9, 10))
	b.AddLeaf(slist, tree.Semi, tok(tree.Semi, 10, 11))
	b.AddLeaf(slist, tree.RCurly, tok(tree.RCurly, 12, 13))
	return NewFile("Test.java", b.Finish())
}

// recorder logs every callback and reports on every visited node.
type recorder struct {
	Base
	Max     int    `mapstructure:"max"`
	Pattern string `mapstructure:"pattern"`

	tag     string
	events  *[]string
	panicAt tree.Kind
	failAt  tree.Kind
}

func (r *recorder) DefaultTokens() []tree.Kind { return []tree.Kind{tree.LiteralIf, tree.Ident} }

func (r *recorder) AcceptableTokens() []tree.Kind {
	return []tree.Kind{tree.LiteralIf, tree.Ident, tree.SList}
}

func (r *recorder) RequiredTokens() []tree.Kind { return []tree.Kind{tree.LiteralIf} }

func (r *recorder) Messages() map[string]string {
	return map[string]string{"seen": "{0} seen by {1}"}
}

func (r *recorder) log(s string) {
	if r.events != nil {
		*r.events = append(*r.events, r.tag+":"+s)
	}
}

func (r *recorder) BeginTree(*Context) { r.log("begin") }

func (r *recorder) Visit(ctx *Context, n tree.Node) {
	r.log("visit " + n.Text())
	if n.Kind() == r.panicAt {
		panic("boom")
	}
	if n.Kind() == r.failAt {
		ctx.Fail(errors.New("gave up"))
		return
	}
	ctx.Report(n, "seen", n.Text(), r.tag)
}

func (r *recorder) Leave(_ *Context, n tree.Node) { r.log("leave " + n.Text()) }

func (r *recorder) FinishTree(*Context) { r.log("finish") }

func recorderFactory(tag string, events *[]string) Factory {
	return func() Check { return &recorder{tag: tag, events: events} }
}

func newTestRegistry(t *testing.T, events *[]string) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register("A", recorderFactory("A", events)))
	require.NoError(t, r.Register("B", recorderFactory("B", events)))
	return r
}

func TestFormatMessage(t *testing.T) {
	t.Parallel()
	tests := []struct {
		tmpl string
		args []any
		want string
	}{
		{"plain", nil, "plain"},
		{"Line is longer than {1} characters (found {0}).", []any{95, 80}, "Line is longer than 80 characters (found 95)."},
		{"{0}{0}", []any{"x"}, "xx"},
		{"missing {3}", []any{1}, "missing {3}"},
		{"not {a} index", nil, "not {a} index"},
		{"it''s", nil, "it's"},
		{"open {", nil, "open {"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMessage(tt.tmpl, tt.args...), tt.tmpl)
	}
}

func TestParseSeverity(t *testing.T) {
	t.Parallel()
	s, err := ParseSeverity("")
	require.NoError(t, err)
	assert.Equal(t, SeverityError, s)

	s, err = ParseSeverity(" Warning ")
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, s)
	assert.Equal(t, "warning", s.String())

	_, err = ParseSeverity("fatal")
	require.Error(t, err)

	var v Severity
	require.NoError(t, v.UnmarshalText([]byte("info")))
	assert.Equal(t, SeverityInfo, v)
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, nil)
	assert.Error(t, r.Register("A", recorderFactory("A", nil)))
	assert.Equal(t, []string{"A", "B"}, r.Names())
	assert.Panics(t, func() { r.MustRegister("B", recorderFactory("B", nil)) })
}

func TestRegistry_BuildDecodesProperties(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, nil)
	set, err := r.Build([]ModuleConfig{{
		Type:       "A",
		ID:         "first",
		Severity:   "warning",
		Tokens:     []string{"SLIST"},
		Properties: map[string]any{"max": "3", "pattern": "x+"},
		Messages:   map[string]string{"seen": "custom {0}"},
	}})
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	m := set.Module(0)
	assert.Equal(t, "A", m.Name)
	assert.Equal(t, SeverityWarning, m.Severity)
	// Required tokens are always added; the list is ordered by kind.
	assert.Equal(t, []tree.Kind{tree.SList, tree.LiteralIf}, m.Tokens)
	assert.True(t, slices.IsSorted(m.Tokens))
	assert.Equal(t, "custom {0}", m.Messages["seen"])
	assert.True(t, set.HasID("first"))
	assert.False(t, set.HasID("second"))

	checks, err := set.Instantiate()
	require.NoError(t, err)
	rec := checks[0].(*recorder)
	assert.Equal(t, 3, rec.Max)
	assert.Equal(t, "x+", rec.Pattern)

	again, err := set.Instantiate()
	require.NoError(t, err)
	assert.NotSame(t, checks[0], again[0], "each call returns fresh instances")
}

func TestRegistry_BuildCollectsEveryProblem(t *testing.T) {
	t.Parallel()
	r := newTestRegistry(t, nil)
	_, err := r.Build([]ModuleConfig{
		{Type: "Missing"},
		{Type: "A", Properties: map[string]any{"nope": 1}},
		{Type: "A", Tokens: []string{"NOT_A_KIND", "LITERAL_TRY"}},
		{Type: "B", Severity: "loud"},
		{Type: "B", Messages: map[string]string{"other": "x"}},
	})
	require.Error(t, err)
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Len(t, ce.Problems(), 5)
	msg := ce.Error()
	for _, want := range []string{"Missing", "nope", "NOT_A_KIND", "LITERAL_TRY", "loud", "other"} {
		assert.Contains(t, msg, want)
	}
}

func TestWalker_OrderOfCallbacks(t *testing.T) {
	t.Parallel()
	var events []string
	set, err := newTestRegistry(t, &events).Build([]ModuleConfig{{Type: "A"}, {Type: "B", Tokens: []string{"LITERAL_IF"}}})
	require.NoError(t, err)
	w, err := NewWalker(set, nil)
	require.NoError(t, err)

	vs, err := w.Walk(context.Background(), newTestFile(t))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"A:begin", "B:begin",
		"A:visit if", "B:visit if",
		"A:visit a", "A:leave a",
		"A:visit b", "A:leave b",
		"A:leave if", "B:leave if",
		"A:finish", "B:finish",
	}, events)

	require.Len(t, vs, 4)
	// Same position: registration order decides.
	assert.Equal(t, "A", vs[0].CheckName)
	assert.Equal(t, "B", vs[1].CheckName)
	assert.Equal(t, "if seen by A", vs[0].Message)
	assert.Equal(t, tree.LiteralIf, vs[0].Kind)
	assert.Equal(t, "a", strings.SplitN(vs[2].Message, " ", 2)[0])
	assert.Equal(t, 4, vs[2].Column)
	assert.Equal(t, 9, vs[3].Column)
}

func TestWalker_PanicBecomesCheckError(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	r.MustRegister("Ok", recorderFactory("ok", nil))
	r.MustRegister("Bad", func() Check { return &recorder{tag: "bad", panicAt: tree.Ident} })
	set, err := r.Build([]ModuleConfig{{Type: "Ok"}, {Type: "Bad", ID: "b1"}})
	require.NoError(t, err)
	w, err := NewWalker(set, nil)
	require.NoError(t, err)

	vs, err := w.Walk(context.Background(), newTestFile(t))
	assert.Nil(t, vs)
	var ce *CheckError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "Bad", ce.Check)
	assert.Equal(t, "b1", ce.ModuleID)
	assert.Contains(t, ce.Error(), "boom")
	assert.True(t, IsFileLevel(err))

	// The walker stays usable for the next file.
	_, err = w.Walk(context.Background(), newTestFile(t))
	require.Error(t, err)
}

func TestWalker_FailAbortsFile(t *testing.T) {
	t.Parallel()
	var events []string
	r := NewRegistry()
	r.MustRegister("Quitter", func() Check { return &recorder{tag: "q", events: &events, failAt: tree.Ident} })
	set, err := r.Build([]ModuleConfig{{Type: "Quitter"}})
	require.NoError(t, err)
	w, err := NewWalker(set, nil)
	require.NoError(t, err)

	_, err = w.Walk(context.Background(), newTestFile(t))
	var ce *CheckError
	require.True(t, errors.As(err, &ce))
	assert.EqualError(t, ce.Err, "gave up")
	assert.NotContains(t, events, "q:finish")
}

func TestWalker_Cancelled(t *testing.T) {
	t.Parallel()
	src := []byte(strings.Repeat("x", 600))
	b := tree.NewBuilder(src, tree.NewLines(src, 8))
	for i := 0; i < 600; i++ {
		id := b.AddToken(tree.Token{Kind: tree.Ident, Text: "x", Start: i, End: i + 1})
		b.AddLeaf(b.Root(), tree.Ident, id)
	}
	f := NewFile("Big.java", b.Finish())

	set, err := newTestRegistry(t, nil).Build([]ModuleConfig{{Type: "A"}})
	require.NoError(t, err)
	w, err := NewWalker(set, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = w.Walk(ctx, f)
	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalker_NoListenersSkipsTree(t *testing.T) {
	t.Parallel()
	var events []string
	r := NewRegistry()
	r.MustRegister("Lines", func() Check { return &lineOnly{events: &events} })
	set, err := r.Build([]ModuleConfig{{Type: "Lines"}})
	require.NoError(t, err)
	assert.True(t, set.Dispatch().Empty())

	w, err := NewWalker(set, nil)
	require.NoError(t, err)
	vs, err := w.Walk(context.Background(), newTestFile(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"begin", "finish"}, events)
	require.Len(t, vs, 1)
	assert.Equal(t, tree.Invalid, vs[0].Kind)
	assert.Equal(t, "line 1", vs[0].Message)
}

type lineOnly struct {
	Base
	events *[]string
}

func (l *lineOnly) BeginTree(*Context) { *l.events = append(*l.events, "begin") }

func (l *lineOnly) FinishTree(ctx *Context) {
	*l.events = append(*l.events, "finish")
	ctx.ReportAt(1, 0, "line", ctx.File().Lines().Count())
}

func (l *lineOnly) Messages() map[string]string { return map[string]string{"line": "line {0}"} }

func TestAccumulator_StableSort(t *testing.T) {
	t.Parallel()
	var a Accumulator
	add := func(line, col, order int, msg string) {
		a.Record(Violation{Line: line, Column: col, Message: msg, order: order})
	}
	add(3, 0, 0, "late line")
	add(1, 5, 1, "second check")
	add(1, 5, 0, "first check")
	add(1, 5, 0, "first check again")
	add(1, 2, 1, "early column")
	require.Equal(t, 5, a.Len())

	got := a.Drain()
	var msgs []string
	for _, v := range got {
		msgs = append(msgs, v.Message)
	}
	assert.Equal(t, []string{"early column", "first check", "first check again", "second check", "late line"}, msgs)
	assert.Zero(t, a.Len())
}

func TestFile_Memo(t *testing.T) {
	t.Parallel()
	f := newTestFile(t)
	calls := 0
	get := func() any {
		return f.Memo("k", func() any { calls++; return fmt.Sprint("v", calls) })
	}
	assert.Equal(t, "v1", get())
	assert.Equal(t, "v1", get())
	assert.Equal(t, 1, calls)
}
