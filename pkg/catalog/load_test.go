package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/wwspec/pkg/importer"
	"github.com/gnana997/wwspec/pkg/parser"
)

const toggleBoxYAML = `
editor:
  label: {en: Yaml Box}
  customStylePropertiesOrder: [look]
  customSettingsPropertiesOrder: []
triggerEvents: []
properties:
  enabled: {label: {en: Enabled}, type: Boolean, section: look, defaultValue: false}
`

const toggleBoxJS = `export default {
  editor: { label: { en: "Script Box" }, customStylePropertiesOrder: ["look"], customSettingsPropertiesOrder: [] },
  triggerEvents: [],
  properties: {
    enabled: { label: { en: "Enabled" }, type: "Boolean", section: "look", defaultValue: true },
    size: { label: { en: "Size" }, type: "Number", section: "look", hidden: c => !c.enabled },
  },
};
`

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	parsers := parser.NewManager(testLogger())
	t.Cleanup(func() { _ = parsers.Close() })
	return NewLoader(importer.New(parsers, testLogger()), DefaultLoadOptions(), testLogger())
}

func TestComponentName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"descriptors/toggle-box.json", "toggle-box"},
		{"descriptors/nested/card.yaml", "card"},
		{"components/email-composer/ww-config.js", "email-composer"},
		{"components/email-composer/ww-config.ts", "email-composer"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComponentName(filepath.FromSlash(tt.path)), tt.path)
	}
}

func TestLoadDir_AllFormats(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "box.json", toggleBoxJSON)
	writeFile(t, dir, "nested/yaml-box.yml", toggleBoxYAML)
	writeFile(t, dir, "script-box/ww-config.js", toggleBoxJS)
	writeFile(t, dir, "node_modules/pkg/ignored.json", toggleBoxJSON)
	writeFile(t, dir, "README.md", "# not a descriptor")

	cat := New()
	n, err := newTestLoader(t).LoadDir(cat, dir)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.ElementsMatch(t, []string{"box", "yaml-box", "script-box"}, cat.Names())

	e, ok := cat.Get("script-box")
	require.True(t, ok)
	p, ok := e.Descriptor.Property("size")
	require.True(t, ok)
	require.NotNil(t, p.Hidden)
	assert.Equal(t, "enabled", p.Hidden.Property)
}

func TestLoadDir_CollectsErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", toggleBoxJSON)
	writeFile(t, dir, "bad.json", `{"editor": {}}`)
	writeFile(t, dir, "broken.jsonc", `{ "editor": `)

	cat := New()
	n, err := newTestLoader(t).LoadDir(cat, dir)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, err.Error(), "editor: label is required")
	assert.Contains(t, err.Error(), "failed to parse descriptor JSON")
	assert.Equal(t, []string{"good"}, cat.Names())
}

func TestLoadDir_DuplicateComponentName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/box.json", toggleBoxJSON)
	writeFile(t, dir, "b/box.json", toggleBoxJSON)

	cat := New()
	n, err := newTestLoader(t).LoadDir(cat, dir)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, err.Error(), `component "box": defined by both`)
}

func TestLoadDir_WithoutImporterSkipsSources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "box.json", toggleBoxJSON)
	writeFile(t, dir, "script-box/ww-config.js", toggleBoxJS)

	cat := New()
	n, err := NewLoader(nil, DefaultLoadOptions(), testLogger()).LoadDir(cat, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"box"}, cat.Names())
}

func TestDiscover_InvalidPattern(t *testing.T) {
	l := NewLoader(nil, LoadOptions{Include: []string{"[unterminated"}}, testLogger())
	_, err := l.Discover(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestLoader_LoadFileUnsupported(t *testing.T) {
	path := writeFile(t, t.TempDir(), "box.txt", "x")
	_, err := newTestLoader(t).LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported descriptor file extension")
}
