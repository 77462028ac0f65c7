package store

import (
	"sync"
	"time"
)

// BatchedStore buffers cache updates from parallel workers in memory so the
// SQLite writes happen in one serial commit after the worker pool finishes.
//
// Thread safety: the mutex protects the buffers. Passed reads go straight
// to the underlying Store, which is safe for concurrent reads.
type BatchedStore struct {
	store *Store
	mu    sync.Mutex

	// Files that passed in this run.
	Passed []File
	// Paths whose cached entry must go: they changed and now fail, or
	// could not be analysed.
	Evicted []string
}

// NewBatchedStore creates a BatchedStore backed by s for reads.
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{store: s}
}

// MarkPassed buffers path as passing with the given content hash.
func (b *BatchedStore) MarkPassed(path, hash string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Passed = append(b.Passed, File{Path: path, Hash: hash, CheckedAt: time.Now().UTC().Truncate(time.Second)})
}

// Evict buffers the removal of path's cached entry.
func (b *BatchedStore) Evict(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Evicted = append(b.Evicted, path)
}

// Cached passes through to the underlying Store.
func (b *BatchedStore) Cached(path, hash string) (bool, error) {
	return b.store.Passed(path, hash)
}

// Len returns the number of buffered updates.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Passed) + len(b.Evicted)
}
