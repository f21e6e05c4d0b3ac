package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Watchlist struct {
		Symbols []string `yaml:"symbols"`
		Count   int      `yaml:"count"`
	} `yaml:"watchlist"`
	Source struct {
		PrimaryBase  string `yaml:"primary_base"`
		FallbackBase string `yaml:"fallback_base"`
	} `yaml:"source"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Cache struct {
		Backend       string `yaml:"backend"` // sqlite | redis | memory
		SQLitePath    string `yaml:"sqlite_path"`
		RedisAddr     string `yaml:"redis_addr"`
		RedisPassword string `yaml:"redis_password"`
		RedisDB       int    `yaml:"redis_db"`
	} `yaml:"cache"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("WATCHLIST_SYMBOLS"); v != "" {
		cfg.Watchlist.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("WATCHLIST_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Watchlist.Count = n
		}
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	// Defaults
	if cfg.Watchlist.Count == 0 {
		cfg.Watchlist.Count = 250
	}
	if cfg.Schedule.RefreshCron == "" {
		// Weekdays after the Korean market close.
		cfg.Schedule.RefreshCron = "0 10 18 * * 1-5"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "sqlite"
	}
	if cfg.Cache.SQLitePath == "" {
		cfg.Cache.SQLitePath = "data/stockscope.db"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	return cfg, nil
}

// Validate checks that all required fields are consistent.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("cache.backend must be sqlite, redis or memory, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}
	if c.Watchlist.Count <= 0 {
		return fmt.Errorf("watchlist.count must be positive")
	}
	return nil
}

func splitSymbols(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
