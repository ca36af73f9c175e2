package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

// Config is the full process configuration, parsed from environment
// variables. Load .env first (main does) so local runs pick up defaults.
type Config struct {
	Env  string `env:"ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	// Timezone used for every "today" computation: gating, snapshots,
	// archival. "Local" resolves to the host zone.
	Timezone string `env:"APP_TIMEZONE" envDefault:"Local"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath  string `env:"LOG_PATH"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Hour of day (0-23) the scheduler fires the archival sweep. The sweep
	// itself still carries its once-per-day guard.
	ArchivalHour int `env:"ARCHIVAL_HOUR" envDefault:"0"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	RateLimitMax    int `env:"RATE_LIMIT_MAX" envDefault:"200"`
	RateLimitWindow int `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
