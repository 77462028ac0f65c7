package main

// CLIReport is the JSON form of a run.
type CLIReport struct {
	RunID   string     `json:"run_id,omitempty"`
	Files   []CLIFile  `json:"files"`
	Summary CLISummary `json:"summary"`
}

// CLIFile is the JSON form of one file's result.
type CLIFile struct {
	Path       string         `json:"path"`
	Cached     bool           `json:"cached,omitempty"`
	Error      string         `json:"error,omitempty"`
	Violations []CLIViolation `json:"violations,omitempty"`
}

// CLIViolation is a JSON-friendly violation. Column is 0-based.
type CLIViolation struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity string `json:"severity"`
	Check    string `json:"check"`
	ModuleID string `json:"module_id,omitempty"`
	Key      string `json:"key"`
	Message  string `json:"message"`
}

// CLISummary is the JSON form of the run summary.
type CLISummary struct {
	FilesProcessed  int            `json:"files_processed"`
	FilesCached     int            `json:"files_cached"`
	FilesWithErrors int            `json:"files_with_errors"`
	Severities      map[string]int `json:"severities"`
}
