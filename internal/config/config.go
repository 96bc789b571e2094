// Package config loads the sitepipe build configuration from YAML with an
// environment overlay.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	sperrors "git.home.luguber.info/inful/sitepipe/internal/errors"
	"git.home.luguber.info/inful/sitepipe/internal/redirects"
)

// Environment variables consumed by the pipeline. TargetLanguage and the
// markdown mirror directory can also be set in the config file; the
// environment wins when both are present.
const (
	EnvDisable        = "SITEPIPE_DISABLE"
	EnvTargetLanguage = "TARGET_LANGUAGE"
	EnvMirrorDir      = "MD_OUTPUT_PATH"
)

// Config is the top-level build configuration.
type Config struct {
	DocsDir   string `yaml:"docs_dir"`
	SiteDir   string `yaml:"site_dir"`
	SiteTitle string `yaml:"site_title"`

	// MirrorDir, when set, receives the fully transformed markdown of every
	// page, mirroring the page's source-relative path.
	MirrorDir string `yaml:"mirror_dir"`

	UseDirectoryURLs   *bool  `yaml:"use_directory_urls"`
	TargetLanguage     string `yaml:"target_language"`
	AddAPIReferences   *bool  `yaml:"add_api_references"`
	RemoveBase64Images bool   `yaml:"remove_base64_images"`

	// Disabled short-circuits the whole per-page pipeline; pages pass
	// through untransformed. Environment only.
	Disabled bool `yaml:"-"`

	Redirects redirects.Table `yaml:"redirects"`

	APIReferences []APIReference  `yaml:"api_references"`
	Analytics     AnalyticsConfig `yaml:"analytics"`
	Watch         WatchConfig     `yaml:"watch"`
	Metrics       MetricsConfig   `yaml:"metrics"`
	Events        EventsConfig    `yaml:"events"`
	History       HistoryConfig   `yaml:"history"`
}

// APIReference maps an import prefix to its reference documentation base URL.
type APIReference struct {
	Prefix  string `yaml:"prefix"`
	BaseURL string `yaml:"base_url"`
}

// AnalyticsConfig controls the analytics snippet injected into rendered pages.
type AnalyticsConfig struct {
	ContainerID string `yaml:"container_id"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	DebounceSeconds int `yaml:"debounce_seconds"`
	// RebuildMinutes schedules an unconditional full rebuild; 0 disables it.
	RebuildMinutes int `yaml:"rebuild_minutes"`
}

// MetricsConfig controls the Prometheus endpoint exposed in watch mode.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// EventsConfig controls build-completed event publishing over NATS.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// HistoryConfig locates the SQLite build history database used in watch mode.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Load reads the configuration file, applies .env overlays, defaults, and the
// environment, and validates the result.
func Load(path string) (*Config, error) {
	// Missing .env files are fine; existing process env always wins.
	_ = godotenv.Load(".env", ".env.local")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sperrors.Wrap(err, sperrors.CategoryConfig, sperrors.SeverityFatal, "read configuration file")
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, sperrors.Wrap(err, sperrors.CategoryConfig, sperrors.SeverityFatal, "parse configuration file")
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with all defaults applied and no file read.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DocsDir == "" {
		c.DocsDir = "docs"
	}
	if c.SiteDir == "" {
		c.SiteDir = "site"
	}
	if c.SiteTitle == "" {
		c.SiteTitle = "Documentation"
	}
	if c.UseDirectoryURLs == nil {
		c.UseDirectoryURLs = boolPtr(true)
	}
	if c.TargetLanguage == "" {
		c.TargetLanguage = "python"
	}
	if c.AddAPIReferences == nil {
		c.AddAPIReferences = boolPtr(true)
	}
	if c.Watch.DebounceSeconds <= 0 {
		c.Watch.DebounceSeconds = 2
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = ":9190"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "sitepipe.build.completed"
	}
	if c.History.Path == "" {
		c.History.Path = "sitepipe-history.db"
	}
}

func (c *Config) applyEnv() {
	switch os.Getenv(EnvDisable) {
	case "1", "true", "True":
		c.Disabled = true
	}
	if v := os.Getenv(EnvTargetLanguage); v != "" {
		c.TargetLanguage = v
	}
	if v := os.Getenv(EnvMirrorDir); v != "" {
		c.MirrorDir = v
	}
}

func (c *Config) validate() error {
	if c.TargetLanguage != "python" && c.TargetLanguage != "js" {
		return sperrors.ConfigError(fmt.Sprintf("target_language must be python or js, got %q", c.TargetLanguage))
	}
	for _, ref := range c.APIReferences {
		if ref.Prefix == "" || ref.BaseURL == "" {
			return sperrors.ConfigError("api_references entries need both prefix and base_url")
		}
	}
	if c.Events.Enabled && c.Events.URL == "" {
		return sperrors.ConfigError("events.url is required when events are enabled")
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
