package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/tree"
)

const nestedIfs = `class A {
    void legacy() {
        if (a) { if (b) {} }
    }
    void modern() {
        if (a) { if (b) {} }
    }
}
`

func kindViol(line, col int, checkName string, k tree.Kind) check.Violation {
	v := viol(line, col, checkName)
	v.Kind = k
	return v
}

func TestSuppressionXpathSingle(t *testing.T) {
	t.Parallel()
	f := parseFile(t, nestedIfs)
	c := buildChain(t, check.ModuleConfig{Type: "SuppressionXpathSingle", Properties: map[string]any{
		"files":  `Test\.java$`,
		"checks": "NestedIfDepth",
		"query":  "//METHOD_DEF[./IDENT[@text='legacy']]//LITERAL_IF",
	}})

	got := kept(c, f,
		kindViol(3, 17, "NestedIfDepth", tree.LiteralIf),
		kindViol(3, 17, "NestedIfDepth", tree.Ident), // kind differs from the selected node
		viol(3, 17, "NestedIfDepth"),                 // no kind: position decides
		kindViol(3, 17, "LineLength", tree.LiteralIf),
		kindViol(6, 17, "NestedIfDepth", tree.LiteralIf),
	)
	assert.Equal(t, []string{"NestedIfDepth@3:17", "LineLength@3:17", "NestedIfDepth@6:17"}, got)
}

func TestSuppressionXpathSingle_FilesAndID(t *testing.T) {
	t.Parallel()
	f := parseFile(t, nestedIfs)
	c, err := NewRegistry().Build([]check.ModuleConfig{{
		Type:       "SuppressionXpathSingle",
		Properties: map[string]any{"files": `Other\.java$`, "id": "deep"},
	}, {
		Type:       "SuppressionXpathSingle",
		Properties: map[string]any{"id": "deep", "message": "^nested"},
	}}, func(id string) bool { return id == "deep" })
	require.NoError(t, err)

	deep := viol(3, 8, "NestedIfDepth")
	deep.ModuleID = "deep"
	deep.Message = "nested if depth is 2"
	otherMsg := deep
	otherMsg.Message = "too deep"
	noID := viol(3, 8, "NestedIfDepth")

	assert.Equal(t, []string{"NestedIfDepth@3:8", "NestedIfDepth@3:8"}, kept(c, f, deep, otherMsg, noID))
}

func TestSuppressionXpathSingle_BadQuery(t *testing.T) {
	t.Parallel()
	_, err := NewRegistry().Build([]check.ModuleConfig{{
		Type:       "SuppressionXpathSingle",
		Properties: map[string]any{"query": "//LITERAL_IF["},
	}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query: compile")
}

func writeSuppressions(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suppressions.xml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSuppression_File(t *testing.T) {
	t.Parallel()
	path := writeSuppressions(t, `<?xml version="1.0"?>
<!DOCTYPE suppressions PUBLIC
    "-//Checkstyle//DTD SuppressionFilter Configuration 1.2//EN"
    "https://checkstyle.org/dtds/suppressions_1_2.dtd">
<suppressions>
  <suppress files="Test\.java$" checks="LineLength" lines="1-2,5"/>
  <suppress checks="TodoComment" columns="0"/>
  <suppress id="strict"/>
  <suppress-xpath checks="NestedIfDepth" query="//METHOD_DEF[./IDENT[@text='modern']]//LITERAL_IF"/>
</suppressions>
`)
	f := parseFile(t, nestedIfs)
	c, err := NewRegistry().Build([]check.ModuleConfig{{
		Type:       "Suppression",
		Properties: map[string]any{"file": path},
	}}, func(id string) bool { return id == "strict" })
	require.NoError(t, err)

	strict := viol(7, 4, "MagicNumber")
	strict.ModuleID = "strict"

	got := kept(c, f,
		viol(1, 0, "LineLength"),
		viol(3, 8, "LineLength"),
		viol(5, 4, "LineLength"),
		viol(4, 0, "TodoComment"),
		viol(4, 4, "TodoComment"),
		strict,
		kindViol(3, 17, "NestedIfDepth", tree.LiteralIf),
		kindViol(6, 17, "NestedIfDepth", tree.LiteralIf),
	)
	assert.Equal(t, []string{"LineLength@3:8", "TodoComment@4:4", "NestedIfDepth@3:17"}, got)
}

func TestSuppression_Optional(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "absent.xml")

	c, err := NewRegistry().Build([]check.ModuleConfig{{
		Type:       "Suppression",
		Properties: map[string]any{"file": missing, "optional": true},
	}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = NewRegistry().Build([]check.ModuleConfig{{
		Type:       "Suppression",
		Properties: map[string]any{"file": missing},
	}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open suppressions")
}

func TestSuppression_InvalidEntries(t *testing.T) {
	t.Parallel()
	path := writeSuppressions(t, `<suppressions>
  <suppress files="x"/>
  <suppress checks="A" lines="9-3"/>
  <suppress checks="(" />
  <suppress-xpath checks="A" lines="1"/>
  <suppress id="ghost"/>
</suppressions>
`)
	_, err := NewRegistry().Build([]check.ModuleConfig{{
		Type:       "Suppression",
		Properties: map[string]any{"file": path},
	}}, nil)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "suppress[0]: checks, message or id is required")
	assert.Contains(t, msg, `suppress[1]: lines: bad range "9-3"`)
	assert.Contains(t, msg, "suppress[2]: checks")
	assert.Contains(t, msg, "suppress-xpath[0]: lines and columns belong on suppress")
	assert.NotContains(t, msg, "ghost", "ids are only checked once the file loads")
}

func TestSuppression_UnknownID(t *testing.T) {
	t.Parallel()
	path := writeSuppressions(t, `<suppressions><suppress id="ghost"/></suppressions>`)
	_, err := NewRegistry().Build([]check.ModuleConfig{{
		Type:       "Suppression",
		Properties: map[string]any{"file": path},
	}}, func(string) bool { return false })
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown check id "ghost"`)
}

func TestParseRanges(t *testing.T) {
	t.Parallel()
	r, err := parseRanges("lines", " 3, 10-12 ")
	require.NoError(t, err)
	assert.True(t, r.contains(3))
	assert.True(t, r.contains(11))
	assert.False(t, r.contains(4))
	assert.False(t, r.contains(13))

	var all ranges
	assert.True(t, all.contains(-5))

	_, err = parseRanges("lines", "a")
	assert.Error(t, err)
}
