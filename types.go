package checkwalk

import (
	"github.com/jward/checkwalk/check"
)

// Public type aliases for the check package types that appear in results.
// These are Go type aliases (=), so no conversion is needed.

type Violation = check.Violation
type Severity = check.Severity
type ModuleConfig = check.ModuleConfig

// Config is the configuration of an Engine.
type Config struct {
	// TabWidth is the column width of a tab. Zero means 8.
	TabWidth int
	// Charset is the encoding of source files. Empty means UTF-8.
	Charset string
	// FileExtensions selects the files AnalyzeDirectory picks up. Empty
	// means .java.
	FileExtensions []string
	Checks         []ModuleConfig
	Filters        []ModuleConfig
}

// FileResult is the outcome of analysing one file. Err is a
// *check.SyntaxError, *check.CheckError or *check.FileError; Violations is
// nil when Err is set.
type FileResult struct {
	Path       string
	Violations []Violation
	Err        error
	// Cached is true when the file was skipped because it passed before
	// with the same content and configuration.
	Cached bool
}

// Summary aggregates a run.
type Summary struct {
	// FilesProcessed counts files analysed without a file-level error,
	// cache hits included.
	FilesProcessed   int
	FilesWithErrors  int
	FilesCached      int
	CountsBySeverity map[Severity]int
}

// Report is the result of analysing a set of files, ordered by path.
type Report struct {
	// RunID identifies the run in the result cache. Empty without a cache.
	RunID   string
	Files   []FileResult
	Summary Summary
}

// Violations returns every violation of the report in file order.
func (r *Report) Violations() []Violation {
	var out []Violation
	for _, f := range r.Files {
		out = append(out, f.Violations...)
	}
	return out
}

// HasErrors reports whether any file failed or any violation has error
// severity.
func (r *Report) HasErrors() bool {
	return r.Summary.FilesWithErrors > 0 || r.Summary.CountsBySeverity[check.SeverityError] > 0
}

// Summarize aggregates file results, for callers that combine reports.
func Summarize(files []FileResult) Summary {
	s := Summary{CountsBySeverity: make(map[Severity]int)}
	for _, f := range files {
		if f.Err != nil {
			s.FilesWithErrors++
			continue
		}
		s.FilesProcessed++
		if f.Cached {
			s.FilesCached++
		}
		for _, v := range f.Violations {
			s.CountsBySeverity[v.Severity]++
		}
	}
	return s
}
