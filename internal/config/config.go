// Package config resolves server settings from defaults, an optional YAML
// file and ATTENTIVE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const envPrefix = "ATTENTIVE_"

type Config struct {
	Addr          string        `yaml:"addr" env:"ADDR"`
	Driver        string        `yaml:"driver" env:"DB_DRIVER"`
	DBPath        string        `yaml:"db_path" env:"DB_PATH"`
	MigrationsDir string        `yaml:"migrations_dir" env:"MIGRATIONS_DIR"`
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL      time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
	LogLevel      string        `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat     string        `yaml:"log_format" env:"LOG_FORMAT"`
	OTELEndpoint  string        `yaml:"otel_endpoint" env:"OTEL_ENDPOINT"`
	CORSOrigins   []string      `yaml:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	// Front-end serving: StaticDir wins over DevFrontendURL.
	StaticDir      string `yaml:"static_dir" env:"STATIC_DIR"`
	DevFrontendURL string `yaml:"dev_frontend_url" env:"DEV_FRONTEND_URL"`
	Commit         string `yaml:"-" env:"COMMIT"`
	BuildTime      string `yaml:"-" env:"BUILD_TIME"`
}

func Default() Config {
	return Config{
		Addr:      ":8080",
		Driver:    "sqlite",
		DBPath:    filepath.Join("data", "attentive.db"),
		TokenTTL:  30 * 24 * time.Hour,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds the effective configuration. path may be empty; a missing
// file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Driver {
	case "sqlite", "sqlite3", "memory":
	default:
		return fmt.Errorf("unknown db driver %q", c.Driver)
	}
	if c.Driver != "memory" && strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path is required for sqlite drivers")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}
