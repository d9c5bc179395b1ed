package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const councilsFixture = `councils:
  - slug: merton
    name: Merton Council
    waste_url: https://fixmystreet.merton.gov.uk/waste/4259013
  - slug: example-ics
    name: Example Borough Council
    waste_url: https://waste.example.gov.uk/property/100023336956/
    source: ics
  - slug: example-lookup
    name: Lookup District Council
    waste_url: https://bins.lookup.gov.uk/waste
    source: html
    anchor_phrase: Recycling
    needs_postcode: true
    postcode: SM4 5DX
`

func writeCouncils(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "councils.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	reg, err := Load(writeCouncils(t, councilsFixture))
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())

	merton, ok := reg.Get("merton")
	require.True(t, ok)
	assert.Equal(t, "Merton Council", merton.Name)
	assert.Equal(t, "auto", merton.Source)
	assert.Equal(t, "https://fixmystreet.merton.gov.uk/waste/4259013", merton.WasteURL)

	ics, ok := reg.Get("example-ics")
	require.True(t, ok)
	assert.Equal(t, "ics", ics.Source)
	// Trailing slash from the file is normalized away.
	assert.Equal(t, "https://waste.example.gov.uk/property/100023336956", ics.WasteURL)

	lookup, ok := reg.Get("example-lookup")
	require.True(t, ok)
	assert.True(t, lookup.NeedsPostcode)
	assert.Equal(t, "Recycling", lookup.AnchorPhrase)
}

func TestLoadSlugLookupIsCaseInsensitive(t *testing.T) {
	reg, err := Load(writeCouncils(t, councilsFixture))
	require.NoError(t, err)

	_, ok := reg.Get("  MERTON ")
	assert.True(t, ok)
}

func TestAllOrderedBySlug(t *testing.T) {
	reg, err := Load(writeCouncils(t, councilsFixture))
	require.NoError(t, err)

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, "example-ics", all[0].Slug)
	assert.Equal(t, "example-lookup", all[1].Slug)
	assert.Equal(t, "merton", all[2].Slug)
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing slug",
			content: `councils:
  - name: No Slug Council
    waste_url: https://example.gov.uk/waste
`,
		},
		{
			name: "duplicate slug",
			content: `councils:
  - slug: merton
    name: Merton Council
    waste_url: https://example.gov.uk/waste
  - slug: merton
    name: Merton Again
    waste_url: https://example.gov.uk/waste
`,
		},
		{
			name: "missing waste url",
			content: `councils:
  - slug: merton
    name: Merton Council
`,
		},
		{
			name: "unknown source kind",
			content: `councils:
  - slug: merton
    name: Merton Council
    waste_url: https://example.gov.uk/waste
    source: rss
`,
		},
		{
			name:    "not yaml",
			content: `{{{`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCouncils(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
