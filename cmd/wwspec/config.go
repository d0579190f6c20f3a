package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/wwspec/pkg/util"
)

// configPath is the project config location relative to the working directory.
var configPath = filepath.Join(".wwspec", "config.yaml")

// ProjectConfig holds the contents of .wwspec/config.yaml.
type ProjectConfig struct {
	Version    string `yaml:"version"`
	CatalogDir string `yaml:"catalog_dir"`
	Locale     string `yaml:"locale"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	MCPLog     string `yaml:"mcp_log"`
}

// loadProjectConfig reads .wwspec/config.yaml from the current directory.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig() (*ProjectConfig, error) {
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// commonFlags are accepted by every command that touches the catalog.
type commonFlags struct {
	catalogDir string
	locale     string
	logLevel   string
	logFormat  string
}

func (f *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.catalogDir, "catalog-dir", "", "directory of descriptor files loaded next to the builtin catalog")
	fs.StringVar(&f.locale, "locale", "", "label locale (default en)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (default info)")
	fs.StringVar(&f.logFormat, "log-format", "", "text or json (default text)")
}

// pick applies the fallback chain:
//  1. Explicit flag value (non-empty override)
//  2. Value from .wwspec/config.yaml
//  3. Default
func pick(flagValue, configValue, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if configValue != "" {
		return configValue
	}
	return def
}

// resolveCatalogDir returns the descriptor directory to load. Empty means
// only the builtin catalog is served.
func resolveCatalogDir(flagValue string, cfg *ProjectConfig) string {
	var fromConfig string
	if cfg != nil {
		fromConfig = cfg.CatalogDir
	}
	return pick(flagValue, fromConfig, "")
}

// resolveLocale returns the label locale used for human output.
func resolveLocale(flagValue string, cfg *ProjectConfig) string {
	var fromConfig string
	if cfg != nil {
		fromConfig = cfg.Locale
	}
	return pick(flagValue, fromConfig, "en")
}

// resolveMCPLog returns the tool-call log path, empty when disabled.
func resolveMCPLog(flagValue string, cfg *ProjectConfig) string {
	var fromConfig string
	if cfg != nil {
		fromConfig = cfg.MCPLog
	}
	return pick(flagValue, fromConfig, "")
}

// resolveLogger builds the diagnostic logger from flags and config.
func resolveLogger(f commonFlags, cfg *ProjectConfig) (*slog.Logger, error) {
	var level, format string
	if cfg != nil {
		level, format = cfg.LogLevel, cfg.LogFormat
	}
	lc := util.DefaultLoggerConfig()
	var err error
	if lc.Level, err = util.ParseLogLevel(pick(f.logLevel, level, string(lc.Level))); err != nil {
		return nil, err
	}
	if lc.Format, err = util.ParseLogFormat(pick(f.logFormat, format, string(lc.Format))); err != nil {
		return nil, err
	}
	return util.NewLogger(lc), nil
}
