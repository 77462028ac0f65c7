package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Load searches upward from the working directory for a config file unless
// cfgFile names one, then layers env vars and changed flags on top.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: working directory: %w", err)
	}
	return LoadFrom(cwd, cfgFile, flags)
}

// LoadFrom is Load with an explicit search directory.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func LoadFrom(dir, cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"tab_width":       DefaultTabWidth,
		"charset":         DefaultCharset,
		"file_extensions": []string{".java"},
		"workers":         0,
		"timeout":         DefaultTimeout.String(),
		"cache":           "",
		"format":          DefaultFormat,
		"verbose":         false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	// 2. Config file
	baseDir := dir
	used := cfgFile
	if used == "" {
		used = findConfigUpward(dir)
	} else if !filepath.IsAbs(used) {
		used = filepath.Join(dir, used)
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", used, err)
		}
		baseDir = filepath.Dir(used)
	}

	// 3. Environment: CHECKWALK_FILE_EXTENSIONS=.java,.jav -> file_extensions
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if key == "file_extensions" {
			return key, splitList(value)
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("config: load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set.
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, ok := flagKeys[key]; !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.ConfigFile = used
	cfg.BaseDir = baseDir
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flagKeys are the config keys a flag may set. Other flags (--config)
// belong to the command, not to the configuration.
var flagKeys = map[string]struct{}{
	"tab_width":       {},
	"charset":         {},
	"file_extensions": {},
	"workers":         {},
	"timeout":         {},
	"cache":           {},
	"format":          {},
	"verbose":         {},
}

// normalize validates scalar settings and anchors relative paths.
func (c *Config) normalize() error {
	if c.TabWidth < 1 {
		return fmt.Errorf("config: tab_width must be positive, got %d", c.TabWidth)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: timeout must not be negative, got %s", c.Timeout)
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: format must be text or json, got %q", c.Format)
	}
	for i, ext := range c.FileExtensions {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			c.FileExtensions[i] = "." + ext
		}
	}

	c.Cache = resolvePathRelativeTo(c.Cache, c.BaseDir)
	for i := range c.Checks {
		c.resolveModulePaths(c.Checks[i].Type, c.Checks[i].Properties)
	}
	for i := range c.Filters {
		c.resolveModulePaths(c.Filters[i].Type, c.Filters[i].Properties)
	}
	return nil
}

func (c *Config) resolveModulePaths(typ string, props map[string]any) {
	for _, key := range pathProperties[typ] {
		if v, ok := props[key].(string); ok {
			props[key] = resolvePathRelativeTo(v, c.BaseDir)
		}
	}
}

// findConfigUpward searches startDir and its parents for a config file.
// Returns "" if none is found within maxUpwardSearchLevels.
func findConfigUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
