package scheduler

import (
	"context"
	"fmt"
	"log"

	"StockScope/internal/model"
	"StockScope/internal/refresh"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic watchlist refresh.
type Scheduler struct {
	Cron      *cron.Cron
	Refresher *refresh.Refresher
	Symbols   []string
	Count     int
	Ctx       context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, r *refresh.Refresher, symbols []string, count int) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Refresher: r,
		Symbols:   symbols,
		Count:     count,
		Ctx:       ctx,
	}
}

// RegisterAll registers the refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	if len(s.Symbols) == 0 {
		log.Println("[INFO] refresh skipped: empty watchlist")
		return
	}
	date := model.Today()
	log.Printf("[INFO] refreshing %d watchlist symbols as of %s", len(s.Symbols), date)

	results := s.Refresher.RefreshAll(s.Ctx, s.Symbols, date, s.Count)

	var okCount, failCount int
	for _, res := range results {
		if res.Err != nil {
			failCount++
			log.Printf("[ERROR] refresh %s: %v", res.Symbol, res.Err)
			continue
		}
		okCount++
	}
	log.Printf("[INFO] watchlist refresh done: %d ok, %d failed", okCount, failCount)
}
