// Package config loads service configuration by layering defaults, an
// optional YAML file, and environment variables.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/icco/statlines/lib/statsapi"
)

// Config holds everything the service needs at startup.
type Config struct {
	Addr          string `koanf:"addr"`
	DBPath        string `koanf:"db_path"`
	DataDir       string `koanf:"data_dir"`
	LockDir       string `koanf:"lock_dir"`
	StatsAPIURL   string `koanf:"statsapi_url"`
	CurrentSeason int    `koanf:"current_season"`
	ChartStyle    string `koanf:"chart_style"`
	OpenAIKey     string `koanf:"openai_key"`
	LogLevel      string `koanf:"log_level"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		Addr:          ":8080",
		DBPath:        "statlines.db",
		DataDir:       "data/raw",
		StatsAPIURL:   statsapi.DefaultBaseURL,
		CurrentSeason: time.Now().Year(),
		LogLevel:      "info",
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if STATLINES_CONFIG is set
//  3. env (prefix STATLINES_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("STATLINES_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: STATLINES_ADDR, STATLINES_DB_PATH, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("STATLINES_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "statlines_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.CurrentSeason < 1901 {
		return nil, errors.New("current_season is before the modern era")
	}
	return &cfg, nil
}
