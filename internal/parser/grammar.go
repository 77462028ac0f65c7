package parser

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// DefaultExtensions are the file extensions analysed when none are
// configured.
var DefaultExtensions = []string{".java"}

// The grammar is loaded once on first use.
var (
	javaGrammar *sitter.Language
	grammarOnce sync.Once
)

func grammar() *sitter.Language {
	grammarOnce.Do(func() {
		javaGrammar = java.GetLanguage()
	})
	return javaGrammar
}

// Accepts reports whether path has one of the given extensions. An empty
// list means DefaultExtensions. Comparison ignores case and a missing dot.
func Accepts(path string, extensions []string) bool {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if ext == e {
			return true
		}
	}
	return false
}
