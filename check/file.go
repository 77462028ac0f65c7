package check

import (
	"sync"

	"github.com/jward/checkwalk/tree"
)

// File is a parsed file as seen by checks and filters.
type File struct {
	Path string
	Tree *tree.Tree

	mu   sync.Mutex
	memo map[string]any
}

// NewFile wraps a parsed tree.
func NewFile(path string, t *tree.Tree) *File {
	return &File{Path: path, Tree: t}
}

// Lines returns the file's line table.
func (f *File) Lines() *tree.Lines { return f.Tree.Lines() }

// Memo returns the value cached under key, computing it on first use.
// Filters use it to share per-file precomputation.
func (f *File) Memo(key string, compute func() any) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.memo[key]; ok {
		return v
	}
	if f.memo == nil {
		f.memo = make(map[string]any)
	}
	v := compute()
	f.memo[key] = v
	return v
}
