// Package config loads the scraper's configuration from environment
// variables (prefix AFM), optionally overlaid by a YAML file, with struct
// tag defaults and validation.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Register  RegisterConfig  `yaml:"register" envconfig:"REGISTER"`
	Fetch     FetchConfig     `yaml:"fetch" envconfig:"FETCH"`
	Filter    FilterConfig    `yaml:"filter" envconfig:"FILTER"`
	WordPress WordPressConfig `yaml:"wordpress" envconfig:"WP"`
	Store     StoreConfig     `yaml:"store" envconfig:"STORE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
}

// RegisterConfig selects which register to scrape and lets deployments pin
// or override the source.
type RegisterConfig struct {
	Slug string `yaml:"slug" envconfig:"SLUG" default:"shortpos" validate:"required"`
	// URL overrides the register page URL baked into the register spec.
	URL string `yaml:"url" envconfig:"URL" validate:"omitempty,url"`
	// SpecFile points at a YAML register spec overriding the built-ins.
	SpecFile string `yaml:"spec_file" envconfig:"SPEC_FILE"`
}

// FetchConfig controls the outbound HTTP boundary.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
	Retries   int           `yaml:"retries" envconfig:"RETRIES" default:"2" validate:"min=0,max=10"`
	Backoff   time.Duration `yaml:"backoff" envconfig:"BACKOFF" default:"2s"`
	UserAgent string        `yaml:"user_agent" envconfig:"USER_AGENT"`
}

// FilterConfig is the optional company approval filter surface.
type FilterConfig struct {
	Enabled      bool     `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	AllowISINs   []string `yaml:"allow_isins" envconfig:"ALLOW_ISINS"`
	AllowIssuers []string `yaml:"allow_issuers" envconfig:"ALLOW_ISSUERS"`
	DenyIssuers  []string `yaml:"deny_issuers" envconfig:"DENY_ISSUERS"`
}

// WordPressConfig holds the publishing credentials and policy.
type WordPressConfig struct {
	BaseURL     string        `yaml:"base_url" envconfig:"BASE_URL" validate:"omitempty,url"`
	Username    string        `yaml:"username" envconfig:"USERNAME"`
	AppPassword string        `yaml:"app_password" envconfig:"APP_PASSWORD"`
	CategoryID  int           `yaml:"category_id" envconfig:"CATEGORY_ID" default:"775" validate:"min=0"`
	Status      string        `yaml:"status" envconfig:"PUBLISH_STATUS" default:"publish" validate:"oneof=draft publish"`
	MaxPosts    int           `yaml:"max_posts" envconfig:"MAX_POSTS_PER_RUN" default:"10" validate:"min=1"`
	Delay       time.Duration `yaml:"delay" envconfig:"DELAY" default:"400ms"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"45s"`
}

// StoreConfig locates the cross-run seen-ID store.
type StoreConfig struct {
	Path string `yaml:"path" envconfig:"PATH" default:"data/seen.json"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/afmwatch.log"`
}

// Load builds the configuration: defaults and environment first, then an
// optional YAML file overlay (file values win, mirroring explicit operator
// intent), then validation. An empty path skips the file step.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("AFM", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration's structural constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// PublishingConfigured reports whether the run can reach WordPress at all;
// without credentials the pipeline still scrapes but only dry-runs.
func (c *Config) PublishingConfigured() bool {
	return c.WordPress.BaseURL != "" && c.WordPress.Username != "" && c.WordPress.AppPassword != ""
}
