package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ConfigHashKey is the metadata key holding the hash of the configuration
// the cached results were produced with.
const ConfigHashKey = "config_hash"

// Store is the SQLite data access layer for the result cache.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the cache tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  path            TEXT NOT NULL UNIQUE,
  hash            TEXT NOT NULL,
  checked_at      TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
  id                TEXT PRIMARY KEY,
  config_hash       TEXT NOT NULL,
  started_at        TIMESTAMP,
  finished_at       TIMESTAMP,
  files_processed   INTEGER DEFAULT 0,
  files_cached      INTEGER DEFAULT 0,
  files_with_errors INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_files_hash ON files(hash);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// --- Metadata ---

// GetMetadata returns the value stored under key, or "" when unset.
func (s *Store) GetMetadata(key string) (string, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return v, nil
}

// SetMetadata stores value under key, replacing any previous value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}

// ResetIfConfigChanged empties the files table when configHash differs
// from the stored one and records the new hash. It reports whether the
// cache was reset. A database with no stored hash counts as changed.
func (s *Store) ResetIfConfigChanged(configHash string) (bool, error) {
	stored, err := s.GetMetadata(ConfigHashKey)
	if err != nil {
		return false, err
	}
	if stored == configHash {
		return false, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("reset cache: begin: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec("DELETE FROM files"); err != nil {
		return false, fmt.Errorf("reset cache: delete files: %w", err)
	}
	if _, err := tx.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		ConfigHashKey, configHash,
	); err != nil {
		return false, fmt.Errorf("reset cache: store config hash: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("reset cache: commit: %w", err)
	}
	return true, nil
}

// --- File operations ---

// FileByPath returns the cached entry for path, or nil when none exists.
func (s *Store) FileByPath(path string) (*File, error) {
	f := &File{}
	err := s.db.QueryRow(
		"SELECT id, path, hash, checked_at FROM files WHERE path = ?", path,
	).Scan(&f.ID, &f.Path, &f.Hash, &f.CheckedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("file by path: %w", err)
	}
	return f, nil
}

// Passed reports whether path is cached with exactly this content hash.
func (s *Store) Passed(path, hash string) (bool, error) {
	f, err := s.FileByPath(path)
	if err != nil {
		return false, err
	}
	return f != nil && f.Hash == hash, nil
}

// Files returns every cached file ordered by path.
func (s *Store) Files() ([]*File, error) {
	rows, err := s.db.Query("SELECT id, path, hash, checked_at FROM files ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("files: %w", err)
	}
	defer rows.Close()
	var files []*File
	for rows.Next() {
		f := &File{}
		if err := rows.Scan(&f.ID, &f.Path, &f.Hash, &f.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// --- Runs ---

// RunByID returns the run with the given id, or nil when none exists.
func (s *Store) RunByID(id string) (*Run, error) {
	r := &Run{}
	err := s.db.QueryRow(
		`SELECT id, config_hash, started_at, finished_at, files_processed, files_cached, files_with_errors
		 FROM runs WHERE id = ?`, id,
	).Scan(&r.ID, &r.ConfigHash, &r.StartedAt, &r.FinishedAt, &r.FilesProcessed, &r.FilesCached, &r.FilesWithErrors)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("run by id: %w", err)
	}
	return r, nil
}
