// Package config defines the service configuration and its loading order:
// defaults, then an optional YAML file, then environment variables.
package config

import (
	"time"

	"github.com/fortuna/victoria/internal/model"
)

// GroupConfig is one competition group to crawl.
type GroupConfig struct {
	ID    int    `koanf:"id"`
	Label string `koanf:"label"`
}

// Config contains process configuration.
type Config struct {
	// DataDir receives the persisted artifacts (match lists, enriched
	// matches, standings, leaderboards).
	DataDir string `koanf:"data_dir"`

	// CacheDir holds the raw markup cache. Empty means DataDir/cache.
	CacheDir string `koanf:"cache_dir"`

	// BaseURL of the competition site.
	BaseURL string `koanf:"base_url"`

	// Groups lists the competitions to process.
	Groups []GroupConfig `koanf:"groups"`

	// Concurrency bounds in-flight acta fetches.
	Concurrency int `koanf:"concurrency"`

	// PacingMS is the pause after each network fetch, in milliseconds.
	PacingMS int `koanf:"pacing_ms"`

	// NavTimeoutSec bounds one browser navigation plus its waits.
	NavTimeoutSec int `koanf:"nav_timeout_sec"`

	// RedisURL switches the resource cache to Redis when set.
	RedisURL string `koanf:"redis_url"`

	// PostgresDSN enables mirroring artifacts into Postgres when set.
	PostgresDSN string `koanf:"postgres_dsn"`

	// ServeAddr is the artifacts API listen address for -serve.
	ServeAddr string `koanf:"serve_addr"`
}

// New returns the defaults: the two configured groups, crawl ceiling 4,
// one second of pacing.
func New() *Config {
	return &Config{
		DataDir: "./data",
		BaseURL: "https://competicion.fatm.eu",
		Groups: []GroupConfig{
			{ID: 14110, Label: "Grupo 6"},
			{ID: 14109, Label: "Grupo 7"},
		},
		Concurrency:   4,
		PacingMS:      1000,
		NavTimeoutSec: 60,
		ServeAddr:     ":8090",
	}
}

// Pacing returns the pacing pause as a duration.
func (c *Config) Pacing() time.Duration {
	return time.Duration(c.PacingMS) * time.Millisecond
}

// NavTimeout returns the browser navigation bound as a duration.
func (c *Config) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSec) * time.Second
}

// ModelGroups converts the configured groups to domain values.
func (c *Config) ModelGroups() []model.Group {
	groups := make([]model.Group, 0, len(c.Groups))
	for _, g := range c.Groups {
		groups = append(groups, model.Group{CompetitionID: g.ID, Label: g.Label})
	}
	return groups
}
