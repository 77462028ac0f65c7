// Package check defines the contract between checks and the tree walker:
// the Check interface, the registry that builds configured check sets, the
// dispatch table, the walker itself and the per-file violation accumulator.
package check

import (
	"fmt"
	"strings"

	"github.com/jward/checkwalk/tree"
)

// Check inspects one file's tree. A fresh set of instances is built for
// every worker, so a Check may keep per-file state between BeginTree and
// FinishTree without locking.
type Check interface {
	// DefaultTokens are the kinds visited when configuration names none.
	DefaultTokens() []tree.Kind
	// AcceptableTokens bound what configuration may request. Nil means any
	// kind in DefaultTokens.
	AcceptableTokens() []tree.Kind
	// RequiredTokens are always visited, whatever configuration says.
	RequiredTokens() []tree.Kind

	BeginTree(ctx *Context)
	Visit(ctx *Context, n tree.Node)
	Leave(ctx *Context, n tree.Node)
	FinishTree(ctx *Context)

	// Messages maps message keys to default templates.
	Messages() map[string]string
}

// Initializer is implemented by checks that validate or compile their
// properties after decoding.
type Initializer interface {
	Init() error
}

// CommentNodesRequirer is implemented by checks that need comments present
// as tree nodes.
type CommentNodesRequirer interface {
	NeedsCommentNodes() bool
}

// Base provides no-op implementations of every Check method.
type Base struct{}

func (Base) DefaultTokens() []tree.Kind    { return nil }
func (Base) AcceptableTokens() []tree.Kind { return nil }
func (Base) RequiredTokens() []tree.Kind   { return nil }
func (Base) BeginTree(*Context)            {}
func (Base) Visit(*Context, tree.Node)     {}
func (Base) Leave(*Context, tree.Node)     {}
func (Base) FinishTree(*Context)           {}
func (Base) Messages() map[string]string   { return nil }

// Factory returns a new check with default property values.
type Factory func() Check

// ModuleConfig configures one check or filter.
type ModuleConfig struct {
	Type       string            `koanf:"type" json:"type"`
	ID         string            `koanf:"id" json:"id,omitempty"`
	Tokens     []string          `koanf:"tokens" json:"tokens,omitempty"`
	Severity   string            `koanf:"severity" json:"severity,omitempty"`
	Properties map[string]any    `koanf:"properties" json:"properties,omitempty"`
	Messages   map[string]string `koanf:"messages" json:"messages,omitempty"`
}

// Name returns the type, qualified by the id when one is set.
func (m ModuleConfig) Name() string {
	if m.ID != "" {
		return m.Type + "[" + m.ID + "]"
	}
	return m.Type
}

// Severity is the level attached to a violation.
type Severity int

const (
	SeverityIgnore Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{
	SeverityIgnore:  "ignore",
	SeverityInfo:    "info",
	SeverityWarning: "warning",
	SeverityError:   "error",
}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// ParseSeverity parses a severity name. The empty string means error.
func ParseSeverity(name string) (Severity, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return SeverityError, nil
	}
	for i, n := range severityNames {
		if n == name {
			return Severity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", name)
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
