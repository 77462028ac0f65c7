package checkwalk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/checks"
	"github.com/jward/checkwalk/filter"
	"github.com/jward/checkwalk/internal/parser"
	"github.com/jward/checkwalk/internal/store"
)

// DefaultFileTimeout bounds parsing and walking of a single file.
const DefaultFileTimeout = 30 * time.Second

// Engine runs a fixed configuration of checks and filters over files. It
// is immutable after New and safe for concurrent use.
type Engine struct {
	cfg     Config
	checks  *check.Set
	filters *filter.Chain
	logger  *zap.Logger

	workers     int
	fileTimeout time.Duration

	checkRegistry  *check.Registry
	filterRegistry *filter.Registry

	cachePath  string
	store      *store.Store
	configHash string

	// walkers holds idle walkers; each is used by one goroutine at a time.
	walkers chan *check.Walker
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWorkers bounds how many files are analysed at once. Zero or less
// means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithFileTimeout bounds the parse and walk of each file. Zero disables
// the bound.
func WithFileTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.fileTimeout = d
	}
}

// WithCache keeps a SQLite result cache at dbPath. Files that passed with
// the same content and configuration are skipped on later runs.
func WithCache(dbPath string) Option {
	return func(e *Engine) {
		e.cachePath = dbPath
	}
}

// WithCheckRegistry replaces the built-in check registry, for custom checks.
func WithCheckRegistry(r *check.Registry) Option {
	return func(e *Engine) {
		e.checkRegistry = r
	}
}

// WithFilterRegistry replaces the built-in filter registry.
func WithFilterRegistry(r *filter.Registry) Option {
	return func(e *Engine) {
		e.filterRegistry = r
	}
}

// New builds an Engine. Every configuration problem is reported at once in
// a *check.ConfigError; cache failures are returned as plain errors.
func New(cfg Config, opts ...Option) (*Engine, error) {
	e := &Engine{
		cfg:         cfg,
		logger:      zap.NewNop(),
		fileTimeout: DefaultFileTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.checkRegistry == nil {
		e.checkRegistry = checks.NewRegistry()
	}
	if e.filterRegistry == nil {
		e.filterRegistry = filter.NewRegistry()
	}
	e.workers = workerCount(e.workers)

	var problems error
	if cfg.TabWidth < 0 {
		problems = multierr.Append(problems, fmt.Errorf("tabWidth must not be negative, got %d", cfg.TabWidth))
	}
	if !parser.ValidCharset(cfg.Charset) {
		problems = multierr.Append(problems, fmt.Errorf("unknown charset %q", cfg.Charset))
	}
	set, err := e.checkRegistry.Build(cfg.Checks)
	problems = multierr.Append(problems, configProblems(err))
	// Without a check set, filter ids cannot be validated; accept them so
	// only genuine filter problems are reported.
	knownID := func(string) bool { return true }
	if set != nil {
		knownID = set.HasID
	}
	chain, err := e.filterRegistry.Build(cfg.Filters, knownID)
	problems = multierr.Append(problems, configProblems(err))
	if problems != nil {
		return nil, check.NewConfigError(problems)
	}
	e.checks = set
	e.filters = chain
	e.walkers = make(chan *check.Walker, e.workers)

	if e.cachePath != "" {
		if err := e.openCache(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// configProblems unwraps a *check.ConfigError so its problems merge flat.
func configProblems(err error) error {
	var ce *check.ConfigError
	if errors.As(err, &ce) {
		return ce.Err
	}
	return err
}

func (e *Engine) openCache() error {
	s, err := store.NewStore(e.cachePath)
	if err != nil {
		return fmt.Errorf("checkwalk: open cache: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return fmt.Errorf("checkwalk: migrate cache: %w", err)
	}
	if e.configHash, err = e.computeConfigHash(); err != nil {
		s.Close()
		return fmt.Errorf("checkwalk: cache: %w", err)
	}
	reset, err := s.ResetIfConfigChanged(e.configHash)
	if err != nil {
		s.Close()
		return fmt.Errorf("checkwalk: cache: %w", err)
	}
	if reset {
		e.logger.Info("result cache reset", zap.String("path", e.cachePath))
	}
	e.store = s
	return nil
}

// computeConfigHash covers the configuration plus the content of every
// file it points at: Script check sources (resolved against libDir the way
// the check loads them) and suppressions files. Editing any of them
// invalidates the cache.
func (e *Engine) computeConfigHash() (string, error) {
	data, err := json.Marshal(e.cfg)
	if err != nil {
		return "", fmt.Errorf("hashing config: %w", err)
	}
	parts := []string{string(data)}
	addFile := func(p string) {
		if src, err := os.ReadFile(p); err == nil {
			parts = append(parts, p, string(src))
		}
	}
	for _, m := range e.cfg.Checks {
		if m.Type != "Script" {
			continue
		}
		p, _ := m.Properties["file"].(string)
		if p == "" {
			continue
		}
		if lib, _ := m.Properties["libDir"].(string); lib != "" && !filepath.IsAbs(p) {
			p = filepath.Join(lib, p)
		}
		addFile(p)
	}
	for _, m := range e.cfg.Filters {
		if p, _ := m.Properties["file"].(string); m.Type == "Suppression" && p != "" {
			addFile(p)
		}
	}
	return store.ConfigHash(parts...), nil
}

// Close releases the cache database, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Checks returns the configured check set.
func (e *Engine) Checks() *check.Set { return e.checks }

// AnalyzeFile analyses one file's bytes. An empty charset means the
// configured one. The cache is neither read nor written.
func (e *Engine) AnalyzeFile(ctx context.Context, path string, src []byte, charset string) FileResult {
	if charset == "" {
		charset = e.cfg.Charset
	}
	vs, err := e.analyze(ctx, path, src, charset)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}
	return FileResult{Path: path, Violations: vs}
}

// analyze is the per-file pipeline: parse, walk, filter, drop ignored.
func (e *Engine) analyze(ctx context.Context, path string, src []byte, charset string) ([]Violation, error) {
	if e.fileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.fileTimeout)
		defer cancel()
	}

	t, err := parser.Parse(ctx, path, src, parser.Options{
		TabWidth:     e.cfg.TabWidth,
		Charset:      charset,
		CommentNodes: e.checks.NeedsCommentNodes(),
	})
	if err != nil {
		return nil, err
	}

	w, err := e.walker()
	if err != nil {
		return nil, &check.FileError{Path: path, Op: "walk", Err: err}
	}
	f := check.NewFile(path, t)
	vs, err := w.Walk(ctx, f)
	if err != nil {
		// A failed check may hold partial state; build a fresh walker next time.
		return nil, err
	}
	e.release(w)

	vs = e.filters.Apply(vs, f)
	kept := vs[:0]
	for _, v := range vs {
		if v.Severity != check.SeverityIgnore {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	return kept, nil
}

// walker returns an idle walker or builds a new one.
func (e *Engine) walker() (*check.Walker, error) {
	select {
	case w := <-e.walkers:
		return w, nil
	default:
		return check.NewWalker(e.checks, e.logger)
	}
}

func (e *Engine) release(w *check.Walker) {
	select {
	case e.walkers <- w:
	default:
	}
}
