package checkwalk

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/internal/parser"
	"github.com/jward/checkwalk/internal/store"
)

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	"build":        true,
	"target":       true,
	"out":          true,
	"node_modules": true,
}

func workerCount(n int) int {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return max(n, 1)
}

// AnalyzeFiles analyses paths using a three-phase pipeline:
//
//	Phase A (serial):   Deduplicate and sort paths, open a cache batch.
//	Phase B (parallel): Read, cache lookup, parse, walk and filter on a bounded worker pool.
//	Phase C (serial):   Commit cache updates and the run record in one transaction.
//
// File-level failures land in the FileResult; the returned error is only
// for cancellation and cache I/O.
func (e *Engine) AnalyzeFiles(ctx context.Context, paths []string) (*Report, error) {
	started := time.Now().UTC()

	// ---- Phase A: Serial preparation ----
	paths = slices.Clone(paths)
	slices.Sort(paths)
	paths = slices.Compact(paths)

	var batch *store.BatchedStore
	if e.store != nil {
		batch = store.NewBatchedStore(e.store)
	}

	// ---- Phase B: Parallel analysis ----
	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(e.workers, max(len(paths), 1)))
	for i, path := range paths {
		g.Go(func() error {
			results[i] = e.analyzePath(gctx, path, batch)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.Err != nil {
			e.logger.Warn("file failed", zap.String("path", r.Path), zap.Error(r.Err))
		}
	}

	report := &Report{Files: results, Summary: Summarize(results)}
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("checkwalk: analysis cancelled: %w", err)
	}

	// ---- Phase C: Serial commit ----
	if batch != nil {
		report.RunID = uuid.NewString()
		run := &store.Run{
			ID:              report.RunID,
			ConfigHash:      e.configHash,
			StartedAt:       started,
			FinishedAt:      time.Now().UTC(),
			FilesProcessed:  report.Summary.FilesProcessed,
			FilesCached:     report.Summary.FilesCached,
			FilesWithErrors: report.Summary.FilesWithErrors,
		}
		if err := e.store.CommitBatch(batch, run); err != nil {
			return report, fmt.Errorf("checkwalk: commit cache: %w", err)
		}
	}

	e.logger.Info("analysis finished",
		zap.Int("files", len(paths)),
		zap.Int("processed", report.Summary.FilesProcessed),
		zap.Int("cached", report.Summary.FilesCached),
		zap.Int("failed", report.Summary.FilesWithErrors),
		zap.Duration("elapsed", time.Since(started)))
	return report, nil
}

// analyzePath does Phase B work for one file. A file passes the cache only
// when it produced no violations at all.
func (e *Engine) analyzePath(ctx context.Context, path string, batch *store.BatchedStore) FileResult {
	src, err := os.ReadFile(path)
	if err != nil {
		if batch != nil {
			batch.Evict(path)
		}
		return FileResult{Path: path, Err: &check.FileError{Path: path, Op: "read", Err: err}}
	}

	var hash string
	if batch != nil {
		hash = store.ContentHash(src)
		ok, err := batch.Cached(path, hash)
		if err != nil {
			e.logger.Warn("cache lookup failed", zap.String("path", path), zap.Error(err))
		} else if ok {
			e.logger.Debug("cache hit", zap.String("path", path))
			return FileResult{Path: path, Cached: true}
		}
	}

	res := e.AnalyzeFile(ctx, path, src, "")
	if batch != nil {
		if res.Err == nil && len(res.Violations) == 0 {
			batch.MarkPassed(path, hash)
		} else {
			batch.Evict(path)
		}
	}
	return res
}

// AnalyzeDirectory analyses every file under root with a configured
// extension. Inside a git work tree, git's ignore rules apply; otherwise
// the tree is walked, skipping hidden and build directories.
func (e *Engine) AnalyzeDirectory(ctx context.Context, root string) (*Report, error) {
	paths, err := e.gitListFiles(ctx, root)
	if err != nil {
		e.logger.Debug("git listing unavailable, walking", zap.String("root", root), zap.Error(err))
		paths, err = e.walkListFiles(root)
		if err != nil {
			return nil, err
		}
	}
	return e.AnalyzeFiles(ctx, paths)
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) files under root.
func (e *Engine) gitListFiles(ctx context.Context, root string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		path := filepath.Join(root, line)
		if parser.Accepts(path, e.cfg.FileExtensions) {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// walkListFiles discovers files by walking the file system.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if parser.Accepts(path, e.cfg.FileExtensions) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("checkwalk: walk directory: %w", err)
	}
	return paths, nil
}
