package store

import "time"

// Cache domain types

// File is a source file that passed every check with no violations at
// any severity above ignore. Hash is the content hash it passed with.
type File struct {
	ID        int64
	Path      string
	Hash      string
	CheckedAt time.Time
}

// Run records one engine invocation that used the cache.
type Run struct {
	ID              string
	ConfigHash      string
	StartedAt       time.Time
	FinishedAt      time.Time
	FilesProcessed  int
	FilesCached     int
	FilesWithErrors int
}
