// Package filter implements the suppression chain applied to a file's
// violations after the walk.
//
// A filter looks at one violation and the file it was found in and
// returns a Decision. The chain drops a violation as soon as one filter
// rejects it; any other outcome keeps it. Filters are configured once and
// then shared by all workers, so Decide must not mutate the filter.
// Per-file state is derived lazily and cached on the check.File.
package filter

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"go.uber.org/multierr"

	"github.com/jward/checkwalk/check"
)

// Decision is a filter's verdict on one violation.
type Decision int

const (
	Neutral Decision = iota
	Accept
	Reject
)

func (d Decision) String() string {
	switch d {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "neutral"
	}
}

// Filter decides whether a violation survives.
type Filter interface {
	Decide(v check.Violation, f *check.File) Decision
}

// Initializer is implemented by filters that validate or compile their
// properties after decoding.
type Initializer interface {
	Init() error
}

// IDReferrer is implemented by filters that name check ids. Every id must
// belong to a configured check.
type IDReferrer interface {
	ReferencedIDs() []string
}

// Factory returns a filter with default properties.
type Factory func() Filter

// Registry maps filter type names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in filters.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.MustRegister("SuppressionComment", func() Filter { return NewSuppressionComment() })
	r.MustRegister("SuppressWithNearbyComment", func() Filter { return NewSuppressWithNearbyComment() })
	r.MustRegister("SuppressWithPlainTextComment", func() Filter { return NewSuppressWithPlainTextComment() })
	r.MustRegister("SuppressWithNearbyText", func() Filter { return NewSuppressWithNearbyText() })
	r.MustRegister("SuppressWarnings", func() Filter { return NewSuppressWarnings() })
	r.MustRegister("SuppressionXpathSingle", func() Filter { return &SuppressionXpathSingle{} })
	r.MustRegister("Suppression", func() Filter { return &Suppression{} })
	r.MustRegister("SeverityMatch", func() Filter { return NewSeverityMatch() })
	return r
}

// Register adds a factory. Registering a name twice is an error.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return errors.New("filter: register: empty name")
	}
	if _, dup := r.factories[name]; dup {
		return fmt.Errorf("filter: register: %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Build configures a chain from configs, in order. knownID reports
// whether a check id is configured; it may be nil when no checks carry
// ids. Every problem found is reported in one *check.ConfigError.
func (r *Registry) Build(configs []check.ModuleConfig, knownID func(string) bool) (*Chain, error) {
	c := &Chain{}
	var errs error
	for i, cfg := range configs {
		f, err := r.filter(cfg, knownID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("filters[%d] %s: %w", i, cfg.Name(), err))
			continue
		}
		c.filters = append(c.filters, f)
		c.names = append(c.names, cfg.Name())
	}
	if errs != nil {
		return nil, check.NewConfigError(errs)
	}
	return c, nil
}

func (r *Registry) filter(cfg check.ModuleConfig, knownID func(string) bool) (Filter, error) {
	factory, ok := r.factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown filter type %q", cfg.Type)
	}
	if len(cfg.Tokens) > 0 {
		return nil, errors.New("filters take no tokens")
	}
	if len(cfg.Messages) > 0 {
		return nil, errors.New("filters take no messages")
	}
	f := factory()
	if err := check.DecodeProperties(cfg.Properties, f); err != nil {
		return nil, err
	}
	if in, ok := f.(Initializer); ok {
		if err := in.Init(); err != nil {
			return nil, err
		}
	}
	if ref, ok := f.(IDReferrer); ok {
		var errs error
		for _, id := range ref.ReferencedIDs() {
			if knownID == nil || !knownID(id) {
				errs = multierr.Append(errs, fmt.Errorf("unknown check id %q", id))
			}
		}
		if errs != nil {
			return nil, errs
		}
	}
	return f, nil
}

// Chain applies filters in configuration order.
type Chain struct {
	filters []Filter
	names   []string
}

// NewChain returns a chain of already configured filters.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{filters: filters, names: make([]string, len(filters))}
	for i, f := range filters {
		c.names[i] = fmt.Sprintf("%T", f)
	}
	return c
}

// Len returns the number of filters.
func (c *Chain) Len() int {
	if c == nil {
		return 0
	}
	return len(c.filters)
}

// Names returns the configured filter names in order.
func (c *Chain) Names() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.names)
}

// Apply returns the violations no filter rejects, in their original
// order. vs is not modified.
func (c *Chain) Apply(vs []check.Violation, f *check.File) []check.Violation {
	out := make([]check.Violation, 0, len(vs))
	for _, v := range vs {
		if !c.rejects(v, f) {
			out = append(out, v)
		}
	}
	return out
}

func (c *Chain) rejects(v check.Violation, f *check.File) bool {
	if c == nil {
		return false
	}
	for _, flt := range c.filters {
		if flt.Decide(v, f) == Reject {
			return true
		}
	}
	return false
}

// memoKey returns a cache key unique to one filter instance.
func memoKey(f Filter) string {
	return fmt.Sprintf("filter:%T:%p", f, f)
}
