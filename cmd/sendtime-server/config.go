package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// duration wraps time.Duration so YAML values like "10m" parse.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = duration(parsed)
	return nil
}

func (d duration) Std() time.Duration { return time.Duration(d) }

// Config is the server configuration, loaded from an optional YAML file with
// flags layered on top.
type Config struct {
	Listen           string   `yaml:"listen"`
	DefaultCountry   string   `yaml:"default_country"`
	CacheDir         string   `yaml:"cache_dir"`
	MinFutureBuffer  duration `yaml:"min_future_buffer"`
	MaxLookaheadDays int      `yaml:"max_lookahead_days"`

	Holiday struct {
		BaseURL  string   `yaml:"base_url"`
		CacheTTL duration `yaml:"cache_ttl"`
		Disabled bool     `yaml:"disabled"`
	} `yaml:"holiday"`

	RateLimit struct {
		PerSecond float64 `yaml:"per_second"`
		Burst     int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Batch struct {
		Workers     int `yaml:"workers"`
		MaxContacts int `yaml:"max_contacts"`
	} `yaml:"batch"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.Listen = ":8080"
	cfg.RateLimit.PerSecond = 25
	cfg.RateLimit.Burst = 50
	cfg.Batch.Workers = 8
	cfg.Batch.MaxContacts = 1000
	return cfg
}

// loadConfig reads the YAML file at path over the defaults. An empty path
// returns the defaults unchanged.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	if cfg.RateLimit.PerSecond <= 0 {
		cfg.RateLimit.PerSecond = 25
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 50
	}
	if cfg.Batch.Workers <= 0 {
		cfg.Batch.Workers = 8
	}
	if cfg.Batch.MaxContacts <= 0 {
		cfg.Batch.MaxContacts = 1000
	}
	return cfg, nil
}
