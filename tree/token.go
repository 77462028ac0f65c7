package tree

// Channel separates grammar tokens from the hidden channel.
type Channel uint8

const (
	ChannelSyntax Channel = iota
	ChannelComment
	ChannelWhitespace
)

func (c Channel) String() string {
	switch c {
	case ChannelComment:
		return "comment"
	case ChannelWhitespace:
		return "whitespace"
	default:
		return "syntax"
	}
}

// Token is a lexical unit with its exact text and span. Lines are 1-based,
// columns 0-based and tab-expanded. Start and End are byte offsets.
type Token struct {
	Kind      Kind
	Text      string
	Channel   Channel
	Line      int
	Column    int
	EndLine   int
	EndColumn int
	Start     int
	End       int
}

// Hidden reports whether t is on the hidden channel.
func (t Token) Hidden() bool { return t.Channel != ChannelSyntax }

// IsBlockComment reports whether t is a /* */ comment.
func (t Token) IsBlockComment() bool {
	return t.Channel == ChannelComment && t.Kind == BlockCommentBegin
}

// IsLineComment reports whether t is a // comment.
func (t Token) IsLineComment() bool {
	return t.Channel == ChannelComment && t.Kind == SingleLineComment
}
