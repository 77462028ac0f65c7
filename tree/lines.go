package tree

import (
	"sort"
	"unicode/utf8"
)

// DefaultTabWidth is the tab width used when none is configured.
const DefaultTabWidth = 8

// LineEnding identifies the terminator of a single source line.
type LineEnding uint8

const (
	// EndingNone marks a final line without a terminator.
	EndingNone LineEnding = iota
	EndingLF
	EndingCRLF
	EndingCR
)

func (e LineEnding) String() string {
	switch e {
	case EndingLF:
		return "LF"
	case EndingCRLF:
		return "CRLF"
	case EndingCR:
		return "CR"
	default:
		return "NONE"
	}
}

// Lines is the line table of a source file. Terminators are recorded per
// line exactly as found: "\n", "\r\n" and a bare "\r" each end a line.
type Lines struct {
	src      []byte
	starts   []int // byte offset of the first byte of each line
	ends     []int // byte offset just past the content, before the terminator
	endings  []LineEnding
	tabWidth int
}

// NewLines scans src for line terminators. A trailing terminator does not
// open an extra empty line, so "a\nb\n" has two lines and "" has none.
func NewLines(src []byte, tabWidth int) *Lines {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	l := &Lines{src: src, tabWidth: tabWidth}
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			l.add(start, i, EndingLF)
			start = i + 1
		case '\r':
			if i+1 < len(src) && src[i+1] == '\n' {
				l.add(start, i, EndingCRLF)
				i++
			} else {
				l.add(start, i, EndingCR)
			}
			start = i + 1
		}
	}
	if start < len(src) {
		l.add(start, len(src), EndingNone)
	}
	return l
}

func (l *Lines) add(start, end int, e LineEnding) {
	l.starts = append(l.starts, start)
	l.ends = append(l.ends, end)
	l.endings = append(l.endings, e)
}

// Count returns the number of lines.
func (l *Lines) Count() int { return len(l.starts) }

// TabWidth returns the tab width used for column computation.
func (l *Lines) TabWidth() int { return l.tabWidth }

// Text returns line n (1-based) without its terminator. Out-of-range lines
// yield "".
func (l *Lines) Text(n int) string {
	if n < 1 || n > len(l.starts) {
		return ""
	}
	return string(l.src[l.starts[n-1]:l.ends[n-1]])
}

// Ending returns the terminator of line n (1-based).
func (l *Lines) Ending(n int) LineEnding {
	if n < 1 || n > len(l.endings) {
		return EndingNone
	}
	return l.endings[n-1]
}

// Position converts a byte offset into a 1-based line and a 0-based,
// tab-expanded column counted in code points.
func (l *Lines) Position(offset int) (line, col int) {
	if len(l.starts) == 0 {
		return 1, 0
	}
	if offset < 0 {
		offset = 0
	}
	if offset > len(l.src) {
		offset = len(l.src)
	}
	i := l.lineIndex(offset)
	end := min(offset, l.ends[i])
	return i + 1, ExpandedColumn(l.src[l.starts[i]:end], l.tabWidth)
}

// lineIndex returns the 0-based index of the last line starting at or
// before offset.
func (l *Lines) lineIndex(offset int) int {
	i := sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset }) - 1
	return max(i, 0)
}

// Cursor converts byte offsets to positions like Lines.Position, resuming
// from the previous offset when offsets ascend within a line. A sequence of
// ascending offsets costs time linear in the source length. A Cursor is not
// safe for concurrent use.
type Cursor struct {
	l    *Lines
	line int // 0-based, or -1 before the first call
	off  int // byte offset the column was computed up to
	col  int
}

// NewCursor returns a Cursor positioned before the first line.
func (l *Lines) NewCursor() *Cursor { return &Cursor{l: l, line: -1} }

// Position is Lines.Position for the cursor's table.
func (c *Cursor) Position(offset int) (line, col int) {
	l := c.l
	if len(l.starts) == 0 {
		return 1, 0
	}
	offset = min(max(offset, 0), len(l.src))
	i := c.line
	if i < 0 || offset < c.off || (i+1 < len(l.starts) && offset >= l.starts[i+1]) {
		i = l.lineIndex(offset)
		c.line, c.off, c.col = i, l.starts[i], 0
	}
	if end := min(offset, l.ends[i]); end > c.off {
		c.col = advanceColumn(c.col, l.src[c.off:end], l.tabWidth)
		c.off = end
	}
	return i + 1, c.col
}

// ExpandedColumn returns the column reached after reading prefix: a tab
// advances to the next multiple of tabWidth and every other code point
// advances by one.
func ExpandedColumn(prefix []byte, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	return advanceColumn(0, prefix, tabWidth)
}

func advanceColumn(col int, prefix []byte, tabWidth int) int {
	for len(prefix) > 0 {
		r, size := utf8.DecodeRune(prefix)
		prefix = prefix[size:]
		if r == '\t' {
			col += tabWidth - col%tabWidth
		} else {
			col++
		}
	}
	return col
}

// ExpandedLength is ExpandedColumn for a string, i.e. the display length of
// a whole line.
func ExpandedLength(s string, tabWidth int) int {
	return ExpandedColumn([]byte(s), tabWidth)
}
