package tree

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLines_Endings(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		src     string
		texts   []string
		endings []LineEnding
	}{
		{"empty", "", nil, nil},
		{"lf", "a\nb\n", []string{"a", "b"}, []LineEnding{EndingLF, EndingLF}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}, []LineEnding{EndingCRLF, EndingCRLF}},
		{"cr", "a\rb", []string{"a", "b"}, []LineEnding{EndingCR, EndingNone}},
		{"mixed", "a\nb\r\nc\rd", []string{"a", "b", "c", "d"}, []LineEnding{EndingLF, EndingCRLF, EndingCR, EndingNone}},
		{"blank lines", "\n\n", []string{"", ""}, []LineEnding{EndingLF, EndingLF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l := NewLines([]byte(tt.src), 0)
			require.Equal(t, len(tt.texts), l.Count())
			for i := range tt.texts {
				assert.Equal(t, tt.texts[i], l.Text(i+1))
				assert.Equal(t, tt.endings[i], l.Ending(i+1))
			}
		})
	}
}

func TestLines_OutOfRange(t *testing.T) {
	t.Parallel()
	l := NewLines([]byte("x\n"), 4)
	assert.Equal(t, "", l.Text(0))
	assert.Equal(t, "", l.Text(2))
	assert.Equal(t, EndingNone, l.Ending(5))
	assert.Equal(t, 4, l.TabWidth())
}

func TestExpandedColumn_Tabs(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 8, ExpandedColumn([]byte("\t"), 8))
	assert.Equal(t, 16, ExpandedColumn([]byte("\t\t"), 8))
	assert.Equal(t, 8, ExpandedColumn([]byte("ab\t"), 8))
	assert.Equal(t, 9, ExpandedColumn([]byte("ab\tc"), 8))
	assert.Equal(t, 4, ExpandedColumn([]byte("\t"), 4))
	// Code points, not bytes.
	assert.Equal(t, 3, ExpandedColumn([]byte("héé"), 8))
	assert.Equal(t, 1, ExpandedColumn([]byte("\U0001F600"), 8))
}

func TestLines_Position(t *testing.T) {
	t.Parallel()
	src := "class A {\n\tint x;\r\n}\r"
	l := NewLines([]byte(src), 8)

	line, col := l.Position(0)
	assert.Equal(t, 1, line)
	assert.Equal(t, 0, col)

	// "int" after a tab on line 2.
	line, col = l.Position(11)
	assert.Equal(t, 2, line)
	assert.Equal(t, 8, col)

	// "}" on line 3.
	line, col = l.Position(19)
	assert.Equal(t, 3, line)
	assert.Equal(t, 0, col)

	// End of file stays on the last line.
	line, col = l.Position(len(src))
	assert.Equal(t, 3, line)
	assert.Equal(t, 1, col)
}

func TestExpandedLength(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, ExpandedLength("", 8))
	assert.Equal(t, 12, ExpandedLength("\tabcd", 8))
}

func TestCursor_MatchesPosition(t *testing.T) {
	t.Parallel()
	src := []byte("a\tb\r\n\tcé d\rx\n\nlast")
	l := NewLines(src, 4)

	cur := l.NewCursor()
	for off := 0; off <= len(src)+2; off++ {
		if off < len(src) && !utf8.RuneStart(src[off]) {
			continue
		}
		wantLine, wantCol := l.Position(off)
		line, col := cur.Position(off)
		assert.Equal(t, wantLine, line, "line at %d", off)
		assert.Equal(t, wantCol, col, "column at %d", off)
	}

	// Going backwards restarts from the start of the line.
	line, col := cur.Position(7)
	wantLine, wantCol := l.Position(7)
	assert.Equal(t, wantLine, line)
	assert.Equal(t, wantCol, col)
}

func TestCursor_LongLine(t *testing.T) {
	t.Parallel()
	const fields = 20000
	src := []byte(strings.Repeat("int x; ", fields))
	l := NewLines(src, 8)

	cur := l.NewCursor()
	for i := 0; i < fields; i++ {
		_, col := cur.Position(i * 7)
		require.Equal(t, i*7, col)
	}
	line, col := cur.Position(len(src))
	assert.Equal(t, 1, line)
	assert.Equal(t, len(src), col)
}
