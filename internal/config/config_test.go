package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load with missing file must fall back to defaults: %v", err)
	}
	if cfg.Watchlist.Count != 250 {
		t.Errorf("default count: got %d", cfg.Watchlist.Count)
	}
	if cfg.Schedule.RefreshCron != "0 10 18 * * 1-5" {
		t.Errorf("default cron: got %q", cfg.Schedule.RefreshCron)
	}
	if cfg.Cache.Backend != "sqlite" || cfg.Cache.SQLitePath != "data/stockscope.db" {
		t.Errorf("default cache: got %q %q", cfg.Cache.Backend, cfg.Cache.SQLitePath)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("default addr: got %q", cfg.Server.Addr)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
watchlist:
  symbols: ["005930", "000660"]
  count: 120
schedule:
  refresh_cron: "0 0 19 * * 1-5"
cache:
  backend: memory
server:
  addr: ":9090"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Watchlist.Symbols, []string{"005930", "000660"}) {
		t.Errorf("symbols: got %v", cfg.Watchlist.Symbols)
	}
	if cfg.Watchlist.Count != 120 {
		t.Errorf("count: got %d", cfg.Watchlist.Count)
	}
	if cfg.Schedule.RefreshCron != "0 0 19 * * 1-5" {
		t.Errorf("cron: got %q", cfg.Schedule.RefreshCron)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("backend: got %q", cfg.Cache.Backend)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr: got %q", cfg.Server.Addr)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
watchlist:
  symbols: ["005930"]
  count: 120
cache:
  backend: sqlite
`)
	t.Setenv("WATCHLIST_SYMBOLS", "035720, 000660 ,")
	t.Setenv("WATCHLIST_COUNT", "90")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(cfg.Watchlist.Symbols, []string{"035720", "000660"}) {
		t.Errorf("env symbols must be split and trimmed, got %v", cfg.Watchlist.Symbols)
	}
	if cfg.Watchlist.Count != 90 {
		t.Errorf("env count: got %d", cfg.Watchlist.Count)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("env cache: got %q %q", cfg.Cache.Backend, cfg.Cache.RedisAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("overridden config must validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Watchlist.Count = 250
		cfg.Cache.Backend = "memory"
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	bad := base()
	bad.Cache.Backend = "etcd"
	if err := bad.Validate(); err == nil {
		t.Error("unknown cache backend must be rejected")
	}

	bad = base()
	bad.Cache.Backend = "redis"
	if err := bad.Validate(); err == nil {
		t.Error("redis backend without an address must be rejected")
	}

	bad = base()
	bad.Watchlist.Count = 0
	if err := bad.Validate(); err == nil {
		t.Error("non-positive count must be rejected")
	}
}
