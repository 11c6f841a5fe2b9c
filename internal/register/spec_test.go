package register

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBySlug(t *testing.T) {
	short, err := BySlug("shortpos")
	require.NoError(t, err)
	assert.Equal(t, "net short position", short.PositionNoun)

	holdings, err := BySlug("holdings")
	require.NoError(t, err)
	assert.Contains(t, holdings.PercentKeywords, "kapitaalbelang")

	_, err = BySlug("nope")
	assert.Error(t, err)
}

func TestLoadSpecFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "register.yaml")
	content := `
slug: custom
name: Custom register
url: https://example.org/register
percent_keywords: ["blootstelling"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	spec, err := LoadSpecFile(path)

	require.NoError(t, err)
	assert.Equal(t, "custom", spec.Slug)
	assert.Equal(t, "https://example.org/register", spec.URL)
	assert.Equal(t, []string{"blootstelling"}, spec.PercentKeywords)
	// Unset fields keep usable defaults.
	assert.NotEmpty(t, spec.DateKeywords)
}

func TestLoadSpecFileMissingSlug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "register.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: No slug"), 0o644))

	_, err := LoadSpecFile(path)
	assert.Error(t, err)
}
