// Package config loads the server configuration from defaults, an optional
// TOML file and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the process-wide configuration. It is built once at start-up and
// treated as read-only afterwards.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	TMDB     TMDBConfig     `toml:"tmdb"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port    string `toml:"port"`
	SiteURL string `toml:"site_url"` // public base URL of the web app, used for invite links
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// AuthConfig contains token settings.
type AuthConfig struct {
	JWTSecret string   `toml:"jwt_secret"`
	TokenTTL  Duration `toml:"token_ttl"`
}

// TMDBConfig contains movie catalog settings. An empty APIKey is allowed at
// start-up; catalog requests then fail as unconfigured.
type TMDBConfig struct {
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
	Language string `toml:"language"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration decodes TOML strings like "24h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    "8080",
			SiteURL: "http://localhost:3000",
		},
		Database: DatabaseConfig{
			Path: "filmmates.db",
		},
		Auth: AuthConfig{
			// Development only - set JWT_SECRET in production
			JWTSecret: "filmmates-dev-secret-change-in-production",
			TokenTTL:  Duration{24 * time.Hour},
		},
		TMDB: TMDBConfig{
			BaseURL:  "https://api.themoviedb.org/3",
			Language: "ru-RU",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds a Config. path may be empty or point at a missing file, in
// which case only defaults and environment variables apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Server.Port, "PORT", "FILMMATES_PORT")
	setFromEnv(&cfg.Server.SiteURL, "SITE_URL")
	setFromEnv(&cfg.Database.Path, "FILMMATES_DB_PATH")
	setFromEnv(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setFromEnv(&cfg.TMDB.APIKey, "TMDB_API_KEY")
	setFromEnv(&cfg.TMDB.BaseURL, "TMDB_BASE_URL")
	setFromEnv(&cfg.TMDB.Language, "TMDB_LANGUAGE")
	setFromEnv(&cfg.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = Duration{d}
		}
	}
}

// setFromEnv assigns non-empty variables in order, so later keys win.
func setFromEnv(dst *string, keys ...string) {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("%w: server port is required", ErrInvalidConfig)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database path is required", ErrInvalidConfig)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: jwt secret is required", ErrInvalidConfig)
	}
	if c.Auth.TokenTTL.Duration <= 0 {
		return fmt.Errorf("%w: token ttl must be positive", ErrInvalidConfig)
	}
	return nil
}
