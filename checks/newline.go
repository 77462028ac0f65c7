package checks

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/tree"
)

// Line separators accepted by NewlineAtEndOfFile.
const (
	SeparatorLF       = "lf"
	SeparatorCR       = "cr"
	SeparatorCRLF     = "crlf"
	SeparatorAny      = "lf_cr_crlf"
	SeparatorPlatform = "system"
)

// NewlineAtEndOfFile reports files whose last line is not terminated by
// LineSeparator. Empty files pass.
type NewlineAtEndOfFile struct {
	check.Base
	LineSeparator string `mapstructure:"lineSeparator"`

	want string
}

func NewNewlineAtEndOfFile() *NewlineAtEndOfFile {
	return &NewlineAtEndOfFile{LineSeparator: SeparatorAny}
}

func (c *NewlineAtEndOfFile) Init() error {
	sep := strings.ToLower(strings.TrimSpace(c.LineSeparator))
	switch sep {
	case SeparatorLF, SeparatorCR, SeparatorCRLF, SeparatorAny:
	case SeparatorPlatform:
		sep = SeparatorLF
		if runtime.GOOS == "windows" {
			sep = SeparatorCRLF
		}
	default:
		return fmt.Errorf("lineSeparator: unknown value %q", c.LineSeparator)
	}
	c.want = sep
	return nil
}

func (c *NewlineAtEndOfFile) Messages() map[string]string {
	return map[string]string{
		"noNewlineAtEOF": "File does not end with a newline.",
		"wrong.line.end": "Wrong line ending character.",
	}
}

func (c *NewlineAtEndOfFile) BeginTree(ctx *check.Context) {
	lines := ctx.File().Lines()
	if lines.Count() == 0 {
		return
	}
	end := lines.Ending(lines.Count())
	if c.want == SeparatorLF && end == tree.EndingCRLF {
		ctx.ReportAt(1, 0, "wrong.line.end")
		return
	}
	var ok bool
	switch c.want {
	case SeparatorLF:
		ok = end == tree.EndingLF
	case SeparatorCR:
		ok = end == tree.EndingCR
	case SeparatorCRLF:
		ok = end == tree.EndingCRLF
	default:
		ok = end != tree.EndingNone
	}
	if !ok {
		ctx.ReportAt(1, 0, "noNewlineAtEOF")
	}
}
