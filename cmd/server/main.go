package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"StockScope/internal/api"
	"StockScope/internal/config"
	"StockScope/internal/fetch"
	"StockScope/internal/metrics"
	"StockScope/internal/refresh"
	"StockScope/internal/relay"
	"StockScope/internal/scheduler"
	"StockScope/internal/source"
	"StockScope/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockScope starting...")

	// Optional .env for local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	m := metrics.New()

	// Init cache store
	var st store.Store
	switch cfg.Cache.Backend {
	case "redis":
		rs, err := store.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Fatalf("[FATAL] init redis cache: %v", err)
		}
		st = rs
	case "memory":
		st = store.NewMemoryStore()
	default:
		ss, err := store.NewSQLiteStore(cfg.Cache.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite cache failed, using memory: %v", err)
			st = store.NewMemoryStore()
		} else {
			st = ss
		}
	}
	defer st.Close()

	// Init upstream clients
	rc := relay.NewClient(relay.DefaultProviders())
	rc.Metrics = m
	src := source.NewClient(rc)
	if cfg.Source.PrimaryBase != "" {
		src.PrimaryBase = cfg.Source.PrimaryBase
	}
	if cfg.Source.FallbackBase != "" {
		src.FallbackBase = cfg.Source.FallbackBase
	}

	rec := fetch.NewReconciler(src, st)
	rec.Metrics = m

	ref := refresh.NewRefresher(rec)
	ref.Metrics = m
	ref.OnProgress = func(done, total int) {
		log.Printf("[INFO] refresh progress: %d / %d", done, total)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, ref, cfg.Watchlist.Symbols, cfg.Watchlist.Count)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// HTTP surface for downstream consumers
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewServer(rec, cfg.Watchlist.Count).Routes(),
	}
	go func() {
		log.Printf("[INFO] http listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing refresh now")
		go sched.RunRefreshNow()
	}

	log.Println("[INFO] StockScope is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] StockScope stopped")
}
