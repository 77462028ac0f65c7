package check

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/multierr"

	"github.com/jward/checkwalk/tree"
)

// Registry maps check type names to factories. It is built explicitly and
// passed to the engine; there is no process-wide registry.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory. Registering a name twice is an error.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return errors.New("check: register: empty name")
	}
	if _, dup := r.factories[name]; dup {
		return fmt.Errorf("check: register: %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister is Register that panics on error. For use while wiring
// built-in registries.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory for name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered type names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Module is a check configuration after validation.
type Module struct {
	Name     string
	ID       string
	Severity Severity
	Tokens   []tree.Kind // sorted, duplicates removed
	Messages map[string]string

	factory      Factory
	props        map[string]any
	commentNodes bool
}

// Set is an ordered, validated list of checks and their dispatch table.
// It is immutable and shared by all workers; each worker calls
// Instantiate to get its own check instances.
type Set struct {
	modules  []Module
	dispatch *DispatchTable
	comments bool
}

// Build validates configs and returns the check set. Every problem found
// is reported; the result is a *ConfigError.
func (r *Registry) Build(configs []ModuleConfig) (*Set, error) {
	s := &Set{}
	var errs error
	for i, cfg := range configs {
		m, err := r.module(cfg)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("checks[%d] %s: %w", i, cfg.Name(), err))
			continue
		}
		s.modules = append(s.modules, m)
		if m.commentNodes {
			s.comments = true
		}
	}
	if errs != nil {
		return nil, NewConfigError(errs)
	}
	s.dispatch = newDispatchTable(s.modules)
	return s, nil
}

func (r *Registry) module(cfg ModuleConfig) (Module, error) {
	f, ok := r.factories[cfg.Type]
	if !ok {
		return Module{}, fmt.Errorf("unknown check type %q", cfg.Type)
	}
	c, err := instantiate(f, cfg.Properties)
	if err != nil {
		return Module{}, err
	}

	m := Module{
		Name:    cfg.Type,
		ID:      cfg.ID,
		factory: f,
		props:   cfg.Properties,
	}
	var errs error
	if m.Severity, err = ParseSeverity(cfg.Severity); err != nil {
		errs = multierr.Append(errs, err)
	}
	if m.Tokens, err = resolveTokens(c, cfg.Tokens); err != nil {
		errs = multierr.Append(errs, err)
	}
	if m.Messages, err = mergeMessages(c.Messages(), cfg.Messages); err != nil {
		errs = multierr.Append(errs, err)
	}
	if cn, ok := c.(CommentNodesRequirer); ok {
		m.commentNodes = cn.NeedsCommentNodes()
	}
	return m, errs
}

// instantiate builds a check and applies its properties.
func instantiate(f Factory, props map[string]any) (Check, error) {
	c := f()
	if err := DecodeProperties(props, c); err != nil {
		return nil, err
	}
	if in, ok := c.(Initializer); ok {
		if err := in.Init(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DecodeProperties applies configuration properties to the exported
// fields of target, keyed by their mapstructure tags. Unknown properties
// are an error. Strings are split on commas into slices and parsed into
// durations and TextUnmarshaler fields.
func DecodeProperties(props map[string]any, target any) error {
	if len(props) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("properties: %w", err)
	}
	if err := dec.Decode(props); err != nil {
		return fmt.Errorf("properties: %w", err)
	}
	return nil
}

func resolveTokens(c Check, names []string) ([]tree.Kind, error) {
	var kinds []tree.Kind
	if len(names) == 0 {
		kinds = slices.Clone(c.DefaultTokens())
	} else {
		acceptable := c.AcceptableTokens()
		if acceptable == nil {
			acceptable = c.DefaultTokens()
		}
		var errs error
		for _, name := range names {
			k, ok := tree.ParseKind(name)
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("unknown token %q", name))
				continue
			}
			if !slices.Contains(acceptable, k) {
				errs = multierr.Append(errs, fmt.Errorf("token %s is not acceptable", k))
				continue
			}
			kinds = append(kinds, k)
		}
		if errs != nil {
			return nil, errs
		}
	}
	for _, k := range c.RequiredTokens() {
		if !slices.Contains(kinds, k) {
			kinds = append(kinds, k)
		}
	}
	slices.Sort(kinds)
	return slices.Compact(kinds), nil
}

func mergeMessages(defaults, overrides map[string]string) (map[string]string, error) {
	out := maps.Clone(defaults)
	if out == nil {
		out = make(map[string]string)
	}
	var errs error
	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		if _, ok := defaults[key]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("unknown message key %q", key))
			continue
		}
		out[key] = overrides[key]
	}
	return out, errs
}

// Len returns the number of checks.
func (s *Set) Len() int { return len(s.modules) }

// Module returns the i-th check configuration, in registration order.
func (s *Set) Module(i int) Module { return s.modules[i] }

// Dispatch returns the shared dispatch table.
func (s *Set) Dispatch() *DispatchTable { return s.dispatch }

// NeedsCommentNodes reports whether any check asked for comment nodes.
func (s *Set) NeedsCommentNodes() bool { return s.comments }

// HasID reports whether a check with the given id is configured.
func (s *Set) HasID(id string) bool {
	for _, m := range s.modules {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Instantiate returns fresh check instances in registration order.
func (s *Set) Instantiate() ([]Check, error) {
	out := make([]Check, len(s.modules))
	for i, m := range s.modules {
		c, err := instantiate(m.factory, m.props)
		if err != nil {
			return nil, fmt.Errorf("check: instantiate %s: %w", m.Name, err)
		}
		out[i] = c
	}
	return out, nil
}
