package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

// commitPassed commits a batch marking each path as passed with hash "h-"+path.
func commitPassed(t *testing.T, s *Store, paths ...string) {
	t.Helper()
	b := NewBatchedStore(s)
	for _, p := range paths {
		b.MarkPassed(p, "h-"+p)
	}
	require.NoError(t, s.CommitBatch(b, nil))
}

// =============================================================================
// Schema & Lifecycle
// =============================================================================

func TestMigrate_AllTablesExist(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, table := range []string{"files", "metadata", "runs"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	require.NoError(t, s.Migrate())
}

func TestNewStore_WALMode(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestNewStore_BadPath(t *testing.T) {
	t.Parallel()
	_, err := NewStore(filepath.Join(t.TempDir(), "missing", "dir", "x.db"))
	require.Error(t, err)
}

// =============================================================================
// Metadata
// =============================================================================

func TestMetadata_RoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	v, err := s.GetMetadata("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetMetadata("k", "one"))
	require.NoError(t, s.SetMetadata("k", "two"))
	v, err = s.GetMetadata("k")
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}

func TestResetIfConfigChanged(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	reset, err := s.ResetIfConfigChanged("cfg-1")
	require.NoError(t, err)
	assert.True(t, reset, "empty database has no stored hash")

	commitPassed(t, s, "/a.java")

	reset, err = s.ResetIfConfigChanged("cfg-1")
	require.NoError(t, err)
	assert.False(t, reset)
	ok, err := s.Passed("/a.java", "h-/a.java")
	require.NoError(t, err)
	assert.True(t, ok, "same config keeps the cache")

	reset, err = s.ResetIfConfigChanged("cfg-2")
	require.NoError(t, err)
	assert.True(t, reset)
	files, err := s.Files()
	require.NoError(t, err)
	assert.Empty(t, files)

	v, err := s.GetMetadata(ConfigHashKey)
	require.NoError(t, err)
	assert.Equal(t, "cfg-2", v)
}

// =============================================================================
// Files & Commit
// =============================================================================

func TestPassed(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	commitPassed(t, s, "/a.java")

	tests := []struct {
		name string
		path string
		hash string
		want bool
	}{
		{"same hash", "/a.java", "h-/a.java", true},
		{"changed content", "/a.java", "other", false},
		{"unknown path", "/b.java", "h-/b.java", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := s.Passed(tt.path, tt.hash)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestFileByPath_Missing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	f, err := s.FileByPath("/nope.java")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestCommitBatch_UpsertAndEvict(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	commitPassed(t, s, "/a.java", "/b.java")

	b := NewBatchedStore(s)
	b.MarkPassed("/a.java", "new-hash")
	b.Evict("/b.java")
	b.Evict("/c.java")
	b.MarkPassed("/c.java", "h-c")
	require.Equal(t, 4, b.Len())
	require.NoError(t, s.CommitBatch(b, nil))
	assert.Zero(t, b.Len(), "commit drains the batch")

	files, err := s.Files()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "/a.java", files[0].Path)
	assert.Equal(t, "new-hash", files[0].Hash)
	assert.False(t, files[0].CheckedAt.IsZero())
	assert.Equal(t, "/c.java", files[1].Path, "a pass wins over an eviction in the same batch")
}

func TestCommitBatch_RecordsRun(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	start := time.Now().UTC().Truncate(time.Second)
	run := &Run{
		ID:              uuid.NewString(),
		ConfigHash:      "cfg",
		StartedAt:       start,
		FinishedAt:      start.Add(2 * time.Second),
		FilesProcessed:  3,
		FilesCached:     1,
		FilesWithErrors: 1,
	}
	require.NoError(t, s.CommitBatch(NewBatchedStore(s), run))

	got, err := s.RunByID(run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.FilesProcessed)
	assert.Equal(t, 1, got.FilesCached)
	assert.Equal(t, 1, got.FilesWithErrors)
	assert.True(t, got.StartedAt.Equal(start))

	missing, err := s.RunByID("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCommitBatch_DuplicateRunRollsBack(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	run := &Run{ID: "fixed", ConfigHash: "cfg"}
	require.NoError(t, s.CommitBatch(NewBatchedStore(s), run))

	b := NewBatchedStore(s)
	b.MarkPassed("/a.java", "h")
	require.Error(t, s.CommitBatch(b, run))

	f, err := s.FileByPath("/a.java")
	require.NoError(t, err)
	assert.Nil(t, f, "failed commit leaves no partial writes")
}

// =============================================================================
// Hashing
// =============================================================================

func TestContentHash(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ContentHash([]byte("class A {}")), ContentHash([]byte("class A {}")))
	assert.NotEqual(t, ContentHash([]byte("class A {}")), ContentHash([]byte("class B {}")))
	assert.Len(t, ContentHash(nil), 64)
}

func TestConfigHash_PartBoundaries(t *testing.T) {
	t.Parallel()
	assert.NotEqual(t, ConfigHash("ab", "c"), ConfigHash("a", "bc"))
	assert.Equal(t, ConfigHash("a", "b"), ConfigHash("a", "b"))
}
