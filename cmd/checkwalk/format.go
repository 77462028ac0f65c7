package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/jward/checkwalk"
	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/tree"
)

// severityLabels are the tags of text output lines.
var severityLabels = map[check.Severity]string{
	check.SeverityInfo:    "INFO",
	check.SeverityWarning: "WARN",
	check.SeverityError:   "ERROR",
}

// validFormats lists accepted values for --format.
var validFormats = []string{"text", "json"}

func writeReport(w io.Writer, format string, r *checkwalk.Report) error {
	switch format {
	case "json":
		return writeJSON(w, r)
	case "text":
		writeText(w, r)
		writeSummary(w, r.Summary)
		return nil
	default:
		return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
	}
}

// writeText prints one line per violation or failed file:
//
//	[WARN] src/A.java:12:5: Empty statement. [EmptyStatement]
//
// Columns are printed 1-based and left out for line-level violations.
func writeText(w io.Writer, r *checkwalk.Report) {
	for _, f := range r.Files {
		if f.Err != nil {
			fmt.Fprintf(w, "[ERROR] %s\n", f.Err)
			continue
		}
		for _, v := range f.Violations {
			fmt.Fprintf(w, "[%s] %s: %s [%s]\n", severityLabel(v.Severity), location(v), v.Message, checkLabel(v))
		}
	}
}

func severityLabel(s check.Severity) string {
	if l, ok := severityLabels[s]; ok {
		return l
	}
	return strings.ToUpper(s.String())
}

func location(v checkwalk.Violation) string {
	if v.Kind == tree.Invalid && v.Column == 0 {
		return fmt.Sprintf("%s:%d", v.Path, v.Line)
	}
	return fmt.Sprintf("%s:%d:%d", v.Path, v.Line, v.Column+1)
}

func checkLabel(v checkwalk.Violation) string {
	if v.ModuleID != "" {
		return v.ModuleID
	}
	return v.CheckName
}

// writeSummary renders the run totals as a table.
func writeSummary(w io.Writer, s checkwalk.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Files", "Cached", "Failed", "Errors", "Warnings", "Info"})
	t.AppendRow(table.Row{
		s.FilesProcessed,
		s.FilesCached,
		s.FilesWithErrors,
		s.CountsBySeverity[check.SeverityError],
		s.CountsBySeverity[check.SeverityWarning],
		s.CountsBySeverity[check.SeverityInfo],
	})
	t.Render()
}

func writeJSON(w io.Writer, r *checkwalk.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toCLIReport(r))
}

func toCLIReport(r *checkwalk.Report) CLIReport {
	out := CLIReport{
		RunID: r.RunID,
		Files: make([]CLIFile, 0, len(r.Files)),
		Summary: CLISummary{
			FilesProcessed:  r.Summary.FilesProcessed,
			FilesCached:     r.Summary.FilesCached,
			FilesWithErrors: r.Summary.FilesWithErrors,
			Severities:      make(map[string]int, len(r.Summary.CountsBySeverity)),
		},
	}
	for sev, n := range r.Summary.CountsBySeverity {
		out.Summary.Severities[sev.String()] = n
	}
	for _, f := range r.Files {
		cf := CLIFile{Path: f.Path, Cached: f.Cached}
		if f.Err != nil {
			cf.Error = f.Err.Error()
		}
		for _, v := range f.Violations {
			cf.Violations = append(cf.Violations, CLIViolation{
				Line:     v.Line,
				Column:   v.Column,
				Severity: v.Severity.String(),
				Check:    v.CheckName,
				ModuleID: v.ModuleID,
				Key:      v.Key,
				Message:  v.Message,
			})
		}
		out.Files = append(out.Files, cf)
	}
	return out
}
