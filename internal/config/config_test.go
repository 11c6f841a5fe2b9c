package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "shortpos", cfg.Register.Slug)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 2, cfg.Fetch.Retries)
	assert.Equal(t, 2*time.Second, cfg.Fetch.Backoff)
	assert.False(t, cfg.Filter.Enabled)
	assert.Equal(t, 775, cfg.WordPress.CategoryID)
	assert.Equal(t, "publish", cfg.WordPress.Status)
	assert.Equal(t, 10, cfg.WordPress.MaxPosts)
	assert.Equal(t, 400*time.Millisecond, cfg.WordPress.Delay)
	assert.Equal(t, "data/seen.json", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AFM_REGISTER_SLUG", "holdings")
	t.Setenv("AFM_FETCH_RETRIES", "5")
	t.Setenv("AFM_WP_BASE_URL", "https://blog.example.org")
	t.Setenv("AFM_WP_PUBLISH_STATUS", "draft")
	t.Setenv("AFM_FILTER_DENY_ISSUERS", "acme,shell")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "holdings", cfg.Register.Slug)
	assert.Equal(t, 5, cfg.Fetch.Retries)
	assert.Equal(t, "https://blog.example.org", cfg.WordPress.BaseURL)
	assert.Equal(t, "draft", cfg.WordPress.Status)
	assert.Equal(t, []string{"acme", "shell"}, cfg.Filter.DenyIssuers)
}

func TestLoadYAMLOverridesEnvironment(t *testing.T) {
	t.Setenv("AFM_REGISTER_SLUG", "holdings")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
register:
  slug: shortpos
wordpress:
  max_posts: 3
`), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "shortpos", cfg.Register.Slug)
	assert.Equal(t, 3, cfg.WordPress.MaxPosts)
	// Untouched sections keep their defaults.
	assert.Equal(t, 2, cfg.Fetch.Retries)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadRejectsInvalidStatus(t *testing.T) {
	t.Setenv("AFM_WP_PUBLISH_STATUS", "pending")

	_, err := Load("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestLoadRejectsInvalidURL(t *testing.T) {
	t.Setenv("AFM_REGISTER_URL", "not a url")

	_, err := Load("")

	assert.Error(t, err)
}

func TestPublishingConfigured(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.PublishingConfigured())

	cfg.WordPress.BaseURL = "https://blog.example.org"
	cfg.WordPress.Username = "automation"
	assert.False(t, cfg.PublishingConfigured())

	cfg.WordPress.AppPassword = "secret"
	assert.True(t, cfg.PublishingConfigured())
}
