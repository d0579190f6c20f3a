package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/wwspec/catalogs"
	"github.com/gnana997/wwspec/pkg/descriptor"
)

func newTestResolver(t *testing.T, size int) (*Catalog, *Resolver) {
	t.Helper()
	cat := NewBuiltin()
	r, err := NewResolver(cat, size, testLogger())
	require.NoError(t, err)
	return cat, r
}

func sectionNames(layout []descriptor.SectionLayout) []string {
	var out []string
	for _, s := range layout {
		out = append(out, s.Section)
	}
	return out
}

func TestResolver_LayoutHidesDisabledSections(t *testing.T) {
	_, r := newTestResolver(t, 0)

	layout, err := r.Layout(catalogs.EmailComposerName, descriptor.PanelStyle, descriptor.Values{
		"enableAttachments": descriptor.Bool(false),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"emailSettings", "recipientSettings", "templateSettings", "attachmentSettings", "uiSettings"}, sectionNames(layout))
	assert.Equal(t, []string{"enableAttachments"}, layout[3].Properties)

	settings, err := r.Layout(catalogs.EmailComposerName, descriptor.PanelSettings, nil)
	require.NoError(t, err)
	assert.Empty(t, settings)
}

func TestResolver_CachesOnDependencies(t *testing.T) {
	_, r := newTestResolver(t, 0)

	_, err := r.Layout(catalogs.EmailComposerName, descriptor.PanelStyle, descriptor.Values{"fromName": descriptor.String("a")})
	require.NoError(t, err)
	_, err = r.Layout(catalogs.EmailComposerName, descriptor.PanelStyle, descriptor.Values{"fromName": descriptor.String("b")})
	require.NoError(t, err)

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Hits)

	// An explicit value equal to the default resolves to the same key.
	_, err = r.Layout(catalogs.EmailComposerName, descriptor.PanelStyle, descriptor.Values{"enableTemplates": descriptor.Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.Stats().Hits)

	_, err = r.Layout(catalogs.EmailComposerName, descriptor.PanelStyle, descriptor.Values{"enableTemplates": descriptor.Bool(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.Stats().Misses)
	assert.Equal(t, 2, r.Stats().Entries)

	r.Purge()
	assert.Equal(t, 0, r.Stats().Entries)
}

func TestResolver_ReturnsCopies(t *testing.T) {
	_, r := newTestResolver(t, 0)

	first, err := r.Layout(catalogs.EmailComposerName, descriptor.PanelStyle, nil)
	require.NoError(t, err)
	first[0].Properties[0] = "mutated"

	second, err := r.Layout(catalogs.EmailComposerName, descriptor.PanelStyle, nil)
	require.NoError(t, err)
	assert.Equal(t, "emailProvider", second[0].Properties[0])
}

func TestResolver_ReplacedDescriptorIsNotServedFromCache(t *testing.T) {
	cat, r := newTestResolver(t, 0)
	require.NoError(t, cat.Register("box", "box.json", toggleBox(t)))

	layout, err := r.Layout("box", descriptor.PanelStyle, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"enabled", "size"}, layout[0].Properties)

	d := toggleBox(t)
	p, _ := d.Property("size")
	p.Hidden = descriptor.HiddenWhen("enabled")
	_, err = cat.Put("box", "box.json", d)
	require.NoError(t, err)

	layout, err = r.Layout("box", descriptor.PanelStyle, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"enabled"}, layout[0].Properties)
}

func TestResolver_Errors(t *testing.T) {
	_, r := newTestResolver(t, 0)

	_, err := r.Layout("missing", descriptor.PanelStyle, nil)
	assert.ErrorContains(t, err, "not found")

	_, err = r.Layout(catalogs.EmailComposerName, descriptor.Panel("sidebar"), nil)
	assert.ErrorContains(t, err, `unknown panel "sidebar"`)

	_, err = r.Visibility("missing", nil)
	assert.Error(t, err)
}

func TestResolver_Visibility(t *testing.T) {
	_, r := newTestResolver(t, 0)

	vis, err := r.Visibility(catalogs.EmailComposerName, descriptor.Values{"enableMergeFields": descriptor.Bool(false)})
	require.NoError(t, err)
	assert.Len(t, vis, 24)
	assert.False(t, vis["mergeFieldsDataSources"])
	assert.True(t, vis["templatesDataSource"])
}

func TestResolver_EvictsAtCapacity(t *testing.T) {
	_, r := newTestResolver(t, 1)
	for _, enabled := range []bool{true, false} {
		_, err := r.Layout(catalogs.EmailComposerName, descriptor.PanelStyle, descriptor.Values{"enableTemplates": descriptor.Bool(enabled)})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, r.Stats().Entries)
}
