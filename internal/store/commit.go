package store

import (
	"fmt"
)

// CommitBatch writes every buffered update of batch, plus the run record,
// within a single transaction. Evictions are applied before passes, so a
// path present in both ends up cached.
func (s *Store) CommitBatch(batch *BatchedStore, run *Run) error {
	batch.mu.Lock()
	defer batch.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	for _, path := range batch.Evicted {
		if _, err := tx.Exec("DELETE FROM files WHERE path = ?", path); err != nil {
			return fmt.Errorf("commit batch: evict %s: %w", path, err)
		}
	}

	for _, f := range batch.Passed {
		if _, err := tx.Exec(
			`INSERT INTO files (path, hash, checked_at) VALUES (?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash, checked_at = excluded.checked_at`,
			f.Path, f.Hash, f.CheckedAt,
		); err != nil {
			return fmt.Errorf("commit batch: file %s: %w", f.Path, err)
		}
	}

	if run != nil {
		if _, err := tx.Exec(
			`INSERT INTO runs (id, config_hash, started_at, finished_at, files_processed, files_cached, files_with_errors)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.ConfigHash, run.StartedAt, run.FinishedAt, run.FilesProcessed, run.FilesCached, run.FilesWithErrors,
		); err != nil {
			return fmt.Errorf("commit batch: run %s: %w", run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: commit: %w", err)
	}
	batch.Passed = nil
	batch.Evicted = nil
	return nil
}
