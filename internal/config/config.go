package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Config is read from YAML and then overridden by environment variables, so the same
// file works locally and in containers.
type Config struct {
	App      App      `yaml:"app"`
	Server   Server   `yaml:"server"`
	Redis    Redis    `yaml:"redis"`
	Postgres Postgres `yaml:"postgres"`
	Catalog  Catalog  `yaml:"catalog"`
	Game     Game     `yaml:"game"`
}

type App struct {
	Name     string `yaml:"name" env:"APP_NAME"`
	Env      string `yaml:"env" env:"APP_ENV"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
}

type Server struct {
	Port            string   `yaml:"port" env:"PORT"`
	ReadTimeout     string   `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    string   `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout string   `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	CORSOrigins     []string `yaml:"cors_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// Redis enables the shared stores when Addr is set.
type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// Postgres enables the durable stores when URL is set.
type Postgres struct {
	URL      string `yaml:"url" env:"DATABASE_URL"`
	MaxConns int32  `yaml:"max_conns" env:"PG_MAX_CONNS"`
}

type Catalog struct {
	CacheTTL    string `yaml:"cache_ttl" env:"CATALOG_CACHE_TTL"`
	SeedOnStart bool   `yaml:"seed_on_start" env:"CATALOG_SEED_ON_START"`
	Seed        int64  `yaml:"seed" env:"CATALOG_RANDOM_SEED"`
}

type Game struct {
	PointsPerCorrect int `yaml:"points_per_correct" env:"GAME_POINTS_PER_CORRECT"`
	TxRetries        int `yaml:"tx_retries" env:"GAME_TX_RETRIES"`
}

// Default returns the configuration used when neither file nor environment says otherwise.
func Default() Config {
	return Config{
		App:     App{Name: "gincana", Env: "development", LogLevel: "info"},
		Server:  Server{Port: "8080", ReadTimeout: "15s", WriteTimeout: "15s", ShutdownTimeout: "5s"},
		Catalog: Catalog{CacheTTL: "5m"},
		Game:    Game{PointsPerCorrect: 10, TxRetries: 10},
	}
}

// Load reads YAML config from path on top of Default and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
