package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/checkwalk/internal/parser"
	"github.com/jward/checkwalk/tree"
)

const src = `package demo;

public class Greeter {
    void hello() {
        if (ready) {
            say("hi");
        }
    }

    int main() {
        return 1;
    }
}
`

func parse(t *testing.T) *tree.Tree {
	t.Helper()
	tr, err := parser.Parse(context.Background(), "Greeter.java", []byte(src), parser.Options{})
	require.NoError(t, err)
	return tr
}

func kinds(nodes []tree.Node) []tree.Kind {
	out := make([]tree.Kind, len(nodes))
	for i, n := range nodes {
		out[i] = n.Kind()
	}
	return out
}

func TestSelect(t *testing.T) {
	t.Parallel()
	tr := parse(t)

	tests := []struct {
		name  string
		expr  string
		kinds []tree.Kind
		lines []int
	}{
		{"top level", "/CLASS_DEF", []tree.Kind{tree.ClassDef}, []int{3}},
		{"descendants", "//METHOD_DEF", []tree.Kind{tree.MethodDef, tree.MethodDef}, []int{4, 10}},
		{"text predicate", "//METHOD_DEF[./IDENT[@text='main']]", []tree.Kind{tree.MethodDef}, []int{10}},
		{"nested", "//METHOD_DEF[./IDENT[@text='hello']]//LITERAL_IF", []tree.Kind{tree.LiteralIf}, []int{5}},
		{"attribute selects element", "//IDENT[@text='ready']/@text", []tree.Kind{tree.Ident}, []int{5}},
		{"no match", "//LITERAL_WHILE", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q, err := Compile(tt.expr)
			require.NoError(t, err)
			got := q.Select(tr)
			if tt.kinds == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.kinds, kinds(got))
			for i, n := range got {
				assert.Equal(t, tt.lines[i], n.Line())
			}
		})
	}
}

func TestSelect_ParentAxis(t *testing.T) {
	t.Parallel()
	tr := parse(t)

	got := MustCompile("//LITERAL_RETURN/../..").Select(tr)
	require.Len(t, got, 1)
	assert.Equal(t, tree.MethodDef, got[0].Kind())

	// The parent of a top-level node is the document itself.
	assert.Empty(t, MustCompile("/CLASS_DEF/..").Select(tr))
}

func TestSelect_Siblings(t *testing.T) {
	t.Parallel()
	tr := parse(t)

	got := MustCompile("/PACKAGE_DEF/following-sibling::*").Select(tr)
	assert.Equal(t, []tree.Kind{tree.ClassDef}, kinds(got))

	got = MustCompile("//METHOD_DEF[./IDENT[@text='main']]/preceding-sibling::METHOD_DEF").Select(tr)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Line())
}

func TestSelect_Count(t *testing.T) {
	t.Parallel()
	tr := parse(t)

	expr := MustCompile("//SLIST")
	assert.Len(t, expr.Select(tr), 3)
}

func TestMatches(t *testing.T) {
	t.Parallel()
	tr := parse(t)

	q := MustCompile("//LITERAL_IF")
	assert.True(t, q.Matches(tr, 5, 8))
	assert.False(t, q.Matches(tr, 5, 9))
	assert.False(t, q.Matches(tr, 6, 8))
}

func TestCompile_Invalid(t *testing.T) {
	t.Parallel()
	_, err := Compile("//METHOD_DEF[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query: compile")
	assert.Panics(t, func() { MustCompile("[[") })
}

func TestNavigator_Attributes(t *testing.T) {
	t.Parallel()
	tr := parse(t)

	nav := NewNavigator(tr)
	assert.False(t, nav.MoveToNextAttribute())
	require.True(t, nav.MoveToChild())
	assert.Equal(t, "PACKAGE_DEF", nav.LocalName())
	// PACKAGE_DEF is anchored on the package keyword.
	require.True(t, nav.MoveToNextAttribute())
	assert.Equal(t, "text", nav.LocalName())
	assert.Equal(t, "package", nav.Value())
	assert.False(t, nav.MoveToNextAttribute())
	require.True(t, nav.MoveToParent())
	assert.Equal(t, "PACKAGE_DEF", nav.LocalName())

	cp := nav.Copy()
	require.True(t, nav.MoveToNext())
	assert.Equal(t, "CLASS_DEF", nav.LocalName())
	require.True(t, nav.MoveTo(cp))
	assert.Equal(t, "PACKAGE_DEF", nav.LocalName())

	nav.MoveToRoot()
	assert.Equal(t, "", nav.LocalName())
	assert.True(t, nav.Node().IsNil())
}
