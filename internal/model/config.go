package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SourceConfig controls a single source adapter.
type SourceConfig struct {
	// Type identifies the source kind (one of the SourceType values).
	Type string `mapstructure:"type" yaml:"type"`

	// Enabled controls whether this source participates in aggregation.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// FeedConfig holds tuning for the aggregation and caching layers.
type FeedConfig struct {
	// FetchLimit bounds how many records each adapter fetches per pass.
	FetchLimit int `mapstructure:"fetch_limit" yaml:"fetch_limit"`

	// AdapterTimeoutSec bounds a single adapter fetch; an adapter that
	// does not answer in time contributes zero records to that pass.
	AdapterTimeoutSec int `mapstructure:"adapter_timeout_sec" yaml:"adapter_timeout_sec"`

	// CacheTTLSec is the staleness window for cached feed snapshots.
	CacheTTLSec int `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`

	// RefreshIntervalSec is the periodic fallback invalidation interval
	// used when realtime delivery is delayed or dropped.
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`
}

// RealtimeConfig holds settings for the websocket change-event feed.
type RealtimeConfig struct {
	// URL is the websocket endpoint delivering change events. Empty
	// disables the realtime subscriber; the periodic fallback still runs.
	URL string `mapstructure:"url" yaml:"url"`

	// ReconnectSec is the backoff between reconnect attempts.
	ReconnectSec int `mapstructure:"reconnect_sec" yaml:"reconnect_sec"`
}

// AppConfig is the top-level configuration.
type AppConfig struct {
	Sources  []SourceConfig `mapstructure:"sources" yaml:"sources"`
	Feed     FeedConfig     `mapstructure:"feed" yaml:"feed"`
	Realtime RealtimeConfig `mapstructure:"realtime" yaml:"realtime"`
}

// SourceEnabled reports whether the given source type is enabled. Sources
// absent from the configuration default to enabled.
func (c *AppConfig) SourceEnabled(st SourceType) bool {
	for _, src := range c.Sources {
		if src.Type == string(st) {
			return src.Enabled
		}
	}
	return true
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/unified-inbox/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "unified-inbox", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Sources: []SourceConfig{},
		Feed: FeedConfig{
			FetchLimit:         50,
			AdapterTimeoutSec:  10,
			CacheTTLSec:        15,
			RefreshIntervalSec: 30,
		},
		Realtime: RealtimeConfig{
			ReconnectSec: 5,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("feed.fetch_limit", 50)
	v.SetDefault("feed.adapter_timeout_sec", 10)
	v.SetDefault("feed.cache_ttl_sec", 15)
	v.SetDefault("feed.refresh_interval_sec", 30)
	v.SetDefault("realtime.reconnect_sec", 5)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Viper unmarshals missing bools as false; treat an absent enabled
	// key as true so listing a source never silently disables it.
	for i := range cfg.Sources {
		key := fmt.Sprintf("sources.%d.enabled", i)
		if !cfg.Sources[i].Enabled && !v.IsSet(key) {
			cfg.Sources[i].Enabled = true
		}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("sources", cfg.Sources)
	v.Set("feed", cfg.Feed)
	v.Set("realtime", cfg.Realtime)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
