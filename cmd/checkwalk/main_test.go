package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jward/checkwalk"
	"github.com/jward/checkwalk/check"
	"github.com/jward/checkwalk/internal/config"
	"github.com/jward/checkwalk/tree"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func sampleReport() *checkwalk.Report {
	files := []checkwalk.FileResult{
		{Path: "src/A.java", Violations: []checkwalk.Violation{
			{Path: "src/A.java", Line: 1, Kind: tree.Invalid, CheckName: "NewlineAtEndOfFile", Key: "noNewlineAtEOF", Message: "File does not end with a newline.", Severity: check.SeverityInfo},
			{Path: "src/A.java", Line: 3, Column: 8, Kind: tree.EmptyStat, CheckName: "EmptyStatement", Key: "empty.statement", Message: "Empty statement.", Severity: check.SeverityWarning},
			{Path: "src/A.java", Line: 4, Column: 0, Kind: tree.Invalid, CheckName: "LineLength", ModuleID: "long", Key: "maxLineLen", Message: "Line is longer than 80 characters (found 91).", Severity: check.SeverityError},
		}},
		{Path: "src/B.java", Err: &check.SyntaxError{Path: "src/B.java", Line: 2, Column: 4, Message: "unexpected \"}\""}},
		{Path: "src/C.java", Cached: true},
	}
	return &checkwalk.Report{RunID: "run-1", Files: files, Summary: checkwalk.Summarize(files)}
}

func TestWriteText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	writeText(&buf, sampleReport())
	assert.Equal(t, strings.Join([]string{
		"[INFO] src/A.java:1: File does not end with a newline. [NewlineAtEndOfFile]",
		"[WARN] src/A.java:3:9: Empty statement. [EmptyStatement]",
		"[ERROR] src/A.java:4: Line is longer than 80 characters (found 91). [long]",
		`[ERROR] src/B.java:2:4: syntax error: unexpected "}"`,
	}, "\n")+"\n", buf.String())
}

func TestWriteReport_TextSummary(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, "text", sampleReport()))
	out := buf.String()
	// The table style prints headers in upper case.
	assert.Contains(t, out, "FILES")
	assert.Contains(t, out, "WARNINGS")
	// Files processed, cached, failed, then one per severity.
	assert.Regexp(t, `2\s*│\s*1\s*│\s*1\s*│\s*1\s*│\s*1\s*│\s*1`, out)
}

func TestWriteReport_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, "json", sampleReport()))

	var got CLIReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "run-1", got.RunID)
	require.Len(t, got.Files, 3)
	require.Len(t, got.Files[0].Violations, 3)
	assert.Equal(t, CLIViolation{
		Line: 3, Column: 8, Severity: "warning", Check: "EmptyStatement", Key: "empty.statement", Message: "Empty statement.",
	}, got.Files[0].Violations[1])
	assert.Equal(t, "long", got.Files[0].Violations[2].ModuleID)
	assert.Contains(t, got.Files[1].Error, "syntax error")
	assert.True(t, got.Files[2].Cached)
	assert.Equal(t, CLISummary{
		FilesProcessed:  2,
		FilesCached:     1,
		FilesWithErrors: 1,
		Severities:      map[string]int{"info": 1, "warning": 1, "error": 1},
	}, got.Summary)
}

func TestWriteReport_BadFormat(t *testing.T) {
	t.Parallel()
	err := writeReport(&bytes.Buffer{}, "xml", sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestAnalyze_DirectoriesAndFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "checkwalk.yaml"), `
checks:
  - type: EmptyStatement
    severity: warning
  - type: LineLength
    properties:
      max: 30
filters:
  - type: SuppressionComment
`)
	writeFile(t, filepath.Join(dir, "src", "A.java"), "class A {\n    void m() { ; }\n}\n")
	writeFile(t, filepath.Join(dir, "src", "Off.java"), "// CHECKSTYLE:OFF\nclass Off {\n    void m() { ; }\n}\n")
	other := filepath.Join(dir, "extra", "B.jav")
	writeFile(t, other, "class B { void m() { ; } }\n")

	cfg, err := config.LoadFrom(dir, "", nil)
	require.NoError(t, err)
	report, err := analyze(context.Background(), cfg, zap.NewNop(), []string{filepath.Join(dir, "src"), other})
	require.NoError(t, err)

	require.Len(t, report.Files, 3)
	assert.Equal(t, "A.java", filepath.Base(report.Files[0].Path))
	assert.Len(t, report.Files[0].Violations, 1)
	assert.Equal(t, "Off.java", filepath.Base(report.Files[1].Path))
	assert.Empty(t, report.Files[1].Violations)
	assert.Equal(t, other, report.Files[2].Path, "files named directly are checked whatever their extension")
	assert.Len(t, report.Files[2].Violations, 1)

	assert.Equal(t, 3, report.Summary.FilesProcessed)
	assert.Equal(t, 2, report.Summary.CountsBySeverity[check.SeverityWarning])
	assert.False(t, report.HasErrors())
}

func TestAnalyze_ConfigProblems(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{TabWidth: 8, Checks: []check.ModuleConfig{{Type: "Nope"}}}
	_, err := analyze(context.Background(), cfg, zap.NewNop(), []string{t.TempDir()})
	var ce *check.ConfigError
	require.True(t, errors.As(err, &ce))
}

func TestAnalyze_MissingPath(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{TabWidth: 8}
	_, err := analyze(context.Background(), cfg, zap.NewNop(), []string{filepath.Join(t.TempDir(), "gone")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path not found")
}

// TestCheckCommand drives the command end to end; it mutates the shared
// command tree, so it does not run in parallel.
func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rules.yaml")
	writeFile(t, cfgPath, `
checks:
  - type: LineLength
    properties:
      max: 20
`)
	writeFile(t, filepath.Join(dir, "B.java"), "class B { void m() { ; } }\n")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"check", "--config", cfgPath, "--format", "json", "--workers", "2", dir})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	require.ErrorIs(t, err, errFailed)

	var got CLIReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got.Files, 1)
	require.Len(t, got.Files[0].Violations, 1)
	assert.Equal(t, "LineLength", got.Files[0].Violations[0].Check)
	assert.Equal(t, "error", got.Files[0].Violations[0].Severity)
}

func TestWriteKinds(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	writeKinds(&buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, len(tree.AllKinds()))
	assert.Contains(t, lines, "LITERAL_IF")
	assert.Contains(t, lines, "CASE_GROUP")
	assert.NotContains(t, lines, tree.Invalid.String())
}

func TestDumpTree(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "A.java")
	writeFile(t, path, "class A {\n    // note\n    int x;\n}\n")

	var buf bytes.Buffer
	require.NoError(t, dumpTree(context.Background(), &buf, path))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "COMPILATION_UNIT"), out)
	assert.Regexp(t, `(?m)^  CLASS_DEF -> `, out)
	assert.Regexp(t, `(?m)^\s+VARIABLE_DEF -> `, out)
	assert.Contains(t, out, "SINGLE_LINE_COMMENT")
}

func TestDumpTree_SyntaxError(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "A.java")
	writeFile(t, path, "class A {\n")

	err := dumpTree(context.Background(), &bytes.Buffer{}, path)
	var se *check.SyntaxError
	require.True(t, errors.As(err, &se))
}
