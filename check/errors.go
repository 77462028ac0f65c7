package check

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// SyntaxError reports that a file does not conform to the grammar. The
// location is the first offending construct in document order.
type SyntaxError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error: %s", e.Path, e.Line, e.Column, e.Message)
}

// CheckError reports that a check failed while walking a file, either by
// panicking or by calling Context.Fail. The file's walk is abandoned.
type CheckError struct {
	Path     string
	Check    string
	ModuleID string
	Err      error
}

func (e *CheckError) Error() string {
	name := e.Check
	if e.ModuleID != "" {
		name = e.Check + "[" + e.ModuleID + "]"
	}
	return fmt.Sprintf("%s: check %s failed: %v", e.Path, name, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// FileError reports a failure to read, decode or finish a file in time.
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// ConfigError aggregates every problem found while building checks and
// filters from configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	errs := multierr.Errors(e.Err)
	if len(errs) == 1 {
		return "config: " + errs[0].Error()
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("config: %d problems: %s", len(errs), strings.Join(msgs, "; "))
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Problems returns the individual configuration problems.
func (e *ConfigError) Problems() []error { return multierr.Errors(e.Err) }

// NewConfigError wraps err, or returns nil when err is nil.
func NewConfigError(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce
	}
	return &ConfigError{Err: err}
}

// IsFileLevel reports whether err is confined to a single file.
func IsFileLevel(err error) bool {
	var se *SyntaxError
	var ce *CheckError
	var fe *FileError
	return errors.As(err, &se) || errors.As(err, &ce) || errors.As(err, &fe)
}
