package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
tab_width: 4
file_extensions: [".java", "jav"]
cache: .checkwalk/cache.db
checks:
  - type: LineLength
    severity: warning
    properties:
      max: 100
  - type: FallThrough
    id: ft
    messages:
      fall.through: "Missing break."
  - type: Script
    properties:
      file: rules/no_print.risor
      libDir: rules
filters:
  - type: Suppression
    properties:
      file: suppressions.xml
      optional: true
  - type: SuppressWarnings
`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// newFlags mirrors the flags the check command registers.
func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("tab-width", DefaultTabWidth, "")
	fs.Int("workers", 0, "")
	fs.Duration("timeout", DefaultTimeout, "")
	fs.String("format", DefaultFormat, "")
	fs.String("cache", "", "")
	fs.StringSlice("file-extensions", nil, "")
	fs.Bool("verbose", false, "")
	fs.String("config", "", "")
	return fs
}

func TestLoadFrom_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := LoadFrom(t.TempDir(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultTabWidth, cfg.TabWidth)
	assert.Equal(t, DefaultCharset, cfg.Charset)
	assert.Equal(t, []string{".java"}, cfg.FileExtensions)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, "text", cfg.Format)
	assert.Empty(t, cfg.ConfigFile)
	assert.Empty(t, cfg.Checks)
}

func TestLoadFrom_File(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := writeConfig(t, dir, "checkwalk.yaml", sampleYAML)

	cfg, err := LoadFrom(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, 4, cfg.TabWidth)
	assert.Equal(t, []string{".java", ".jav"}, cfg.FileExtensions)
	assert.Equal(t, filepath.Join(dir, ".checkwalk", "cache.db"), cfg.Cache)

	require.Len(t, cfg.Checks, 3)
	assert.Equal(t, "LineLength", cfg.Checks[0].Type)
	assert.Equal(t, "warning", cfg.Checks[0].Severity)
	assert.EqualValues(t, 100, cfg.Checks[0].Properties["max"])
	assert.Equal(t, "ft", cfg.Checks[1].ID)
	assert.Equal(t, "Missing break.", cfg.Checks[1].Messages["fall.through"])
	assert.Equal(t, filepath.Join(dir, "rules", "no_print.risor"), cfg.Checks[2].Properties["file"])
	assert.Equal(t, filepath.Join(dir, "rules"), cfg.Checks[2].Properties["libDir"])

	require.Len(t, cfg.Filters, 2)
	assert.Equal(t, filepath.Join(dir, "suppressions.xml"), cfg.Filters[0].Properties["file"])
	assert.Equal(t, true, cfg.Filters[0].Properties["optional"])
	assert.Equal(t, "SuppressWarnings", cfg.Filters[1].Type)
}

func TestLoadFrom_SearchesUpward(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	path := writeConfig(t, root, "checkwalk.yml", "tab_width: 2\n")
	nested := filepath.Join(root, "src", "main", "java")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	cfg, err := LoadFrom(nested, "", nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, root, cfg.BaseDir)
	assert.Equal(t, 2, cfg.TabWidth)
}

func TestLoadFrom_ExplicitRelativeFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeConfig(t, dir, "conf/strict.yaml", "workers: 3\ncache: cache.db\n")

	cfg, err := LoadFrom(dir, "conf/strict.yaml", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, filepath.Join(dir, "conf", "cache.db"), cfg.Cache, "paths resolve against the file's directory")
}

func TestLoadFrom_MissingExplicitFile(t *testing.T) {
	t.Parallel()
	_, err := LoadFrom(t.TempDir(), "nope.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: reading")
}

func TestLoadFrom_FlagsOverrideFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeConfig(t, dir, "checkwalk.yaml", sampleYAML)

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--tab-width=3", "--timeout=5s", "--format=json", "--config=ignored.yaml"}))

	cfg, err := LoadFrom(dir, "", fs)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TabWidth)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{".java", ".jav"}, cfg.FileExtensions, "unset flags keep file values")
}

func TestLoadFrom_EnvOverridesFileButNotFlags(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "checkwalk.yaml", sampleYAML)
	t.Setenv("CHECKWALK_TAB_WIDTH", "6")
	t.Setenv("CHECKWALK_WORKERS", "2")
	t.Setenv("CHECKWALK_FILE_EXTENSIONS", ".java, .jav ,")

	cfg, err := LoadFrom(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.TabWidth)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, []string{".java", ".jav"}, cfg.FileExtensions)

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--workers=5"}))
	cfg, err = LoadFrom(dir, "", fs)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, 6, cfg.TabWidth)
}

func TestLoadFrom_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		errSub  string
	}{
		{"tab width", "tab_width: 0\n", "tab_width must be positive"},
		{"workers", "workers: -1\n", "workers must not be negative"},
		{"format", "format: xml\n", "format must be text or json"},
		{"timeout", "timeout: -1s\n", "timeout must not be negative"},
		{"bad yaml", "checks: [\n", "config: reading"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			writeConfig(t, dir, "checkwalk.yaml", tt.content)
			_, err := LoadFrom(dir, "", nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSub)
		})
	}
}
