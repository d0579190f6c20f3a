package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".wwspec"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, configPath), []byte(content), 0o644))
}

func TestLoadProjectConfig_Missing(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := loadProjectConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadProjectConfig_Fields(t *testing.T) {
	writeProjectConfig(t, `version: "1"
catalog_dir: components
locale: fr
log_level: debug
log_format: json
mcp_log: .wwspec/mcp.jsonl
`)
	cfg, err := loadProjectConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "components", cfg.CatalogDir)
	assert.Equal(t, "fr", cfg.Locale)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, ".wwspec/mcp.jsonl", cfg.MCPLog)
}

func TestLoadProjectConfig_Invalid(t *testing.T) {
	writeProjectConfig(t, "catalog_dir: [unterminated")
	_, err := loadProjectConfig()
	assert.Error(t, err)
}

func TestResolveFallbackChain(t *testing.T) {
	cfg := &ProjectConfig{CatalogDir: "from-config", Locale: "fr", MCPLog: "log.jsonl"}

	assert.Equal(t, "from-flag", resolveCatalogDir("from-flag", cfg))
	assert.Equal(t, "from-config", resolveCatalogDir("", cfg))
	assert.Equal(t, "", resolveCatalogDir("", nil))

	assert.Equal(t, "de", resolveLocale("de", cfg))
	assert.Equal(t, "fr", resolveLocale("", cfg))
	assert.Equal(t, "en", resolveLocale("", nil))

	assert.Equal(t, "log.jsonl", resolveMCPLog("", cfg))
	assert.Equal(t, "", resolveMCPLog("", &ProjectConfig{}))
}

func TestResolveLogger(t *testing.T) {
	logger, err := resolveLogger(commonFlags{}, &ProjectConfig{LogLevel: "warn", LogFormat: "json"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = resolveLogger(commonFlags{logLevel: "loud"}, nil)
	assert.ErrorContains(t, err, "invalid log level")

	_, err = resolveLogger(commonFlags{}, &ProjectConfig{LogFormat: "xml"})
	assert.ErrorContains(t, err, "invalid log format")
}
