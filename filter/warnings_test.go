package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/checkwalk/check"
)

const annotated = `class A {
    @SuppressWarnings("checkstyle:linelength")
    void m() {
        int x;
    }
    @SuppressWarnings({"unchecked", "all"})
    void n() {
    }
    @java.lang.SuppressWarnings(value = "deepif")
    void o() {
        int y;
    }
    @SuppressWarnings("legacy")
    int field;
    void p() {
    }
}
`

func TestSuppressWarnings(t *testing.T) {
	t.Parallel()
	f := parseFile(t, annotated)
	c := buildChain(t, check.ModuleConfig{Type: "SuppressWarnings", Properties: map[string]any{
		"aliasList": []string{"NestedIfDepth=deepif"},
	}})

	byID := viol(14, 4, "MagicNumber")
	byID.ModuleID = "legacy"

	got := kept(c, f,
		viol(4, 8, "LineLength"),      // default alias
		viol(4, 8, "LineLengthCheck"), // "check" suffix dropped
		viol(4, 8, "FallThrough"),     // not listed
		viol(2, 4, "LineLength"),      // the annotation itself is inside the declaration
		viol(7, 4, "Anything"),        // "all"
		viol(11, 8, "NestedIfDepth"),
		viol(11, 8, "NestedTryDepth"),
		byID,
		viol(14, 4, "MagicNumber"),
		viol(15, 4, "LineLength"),
	)
	assert.Equal(t, []string{
		"FallThrough@4:8",
		"NestedTryDepth@11:8",
		"MagicNumber@14:4",
		"LineLength@15:4",
	}, got)
}

func TestSuppressWarnings_BadAlias(t *testing.T) {
	t.Parallel()
	_, err := NewRegistry().Build([]check.ModuleConfig{{
		Type:       "SuppressWarnings",
		Properties: map[string]any{"aliasList": "NoEquals"},
	}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'=' expected")
}

func TestSuppressWarnings_IgnoresTypeUse(t *testing.T) {
	t.Parallel()
	f := parseFile(t, `class A {
    java.util.List<@SuppressWarnings("all") String> xs;
}
`)
	c := buildChain(t, check.ModuleConfig{Type: "SuppressWarnings"})
	// A type-use annotation covers only its type.
	assert.Equal(t, []string{"X@2:4"}, kept(c, f, viol(2, 4, "X")))
}

func TestDefaultAlias(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "linelength", DefaultAlias("LineLength"))
	assert.Equal(t, "linelength", DefaultAlias("LineLengthCheck"))
	assert.Equal(t, "fallthrough", DefaultAlias("com.example.FallThroughCheck"))
}
