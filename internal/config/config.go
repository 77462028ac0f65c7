// Package config loads the checkwalk configuration from defaults, a YAML
// file, CHECKWALK_ environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"time"

	"github.com/jward/checkwalk/check"
)

// File names searched for when no configuration file is given.
var FileNames = []string{"checkwalk.yaml", "checkwalk.yml"}

// EnvPrefix prefixes environment overrides: CHECKWALK_TAB_WIDTH -> tab_width.
const EnvPrefix = "CHECKWALK_"

// maxUpwardSearchLevels limits how far up the directory tree to search for
// a configuration file.
const maxUpwardSearchLevels = 10

// Defaults.
const (
	DefaultTabWidth = 8
	DefaultCharset  = "UTF-8"
	DefaultTimeout  = 30 * time.Second
	DefaultFormat   = "text"
)

// Config is the whole configuration of a run.
type Config struct {
	TabWidth       int                  `koanf:"tab_width"`
	Charset        string               `koanf:"charset"`
	FileExtensions []string             `koanf:"file_extensions"`
	Workers        int                  `koanf:"workers"`
	Timeout        time.Duration        `koanf:"timeout"`
	Cache          string               `koanf:"cache"`
	Format         string               `koanf:"format"`
	Verbose        bool                 `koanf:"verbose"`
	Checks         []check.ModuleConfig `koanf:"checks"`
	Filters        []check.ModuleConfig `koanf:"filters"`

	// ConfigFile is the file that was loaded, empty when none was found.
	ConfigFile string `koanf:"-"`
	// BaseDir anchors relative paths: the config file's directory, or the
	// search directory when no file was loaded.
	BaseDir string `koanf:"-"`
}

// pathProperties lists module properties holding file system paths. They
// are resolved against BaseDir so a config file works from any directory.
var pathProperties = map[string][]string{
	"Script":      {"file", "libDir"},
	"Suppression": {"file"},
}
