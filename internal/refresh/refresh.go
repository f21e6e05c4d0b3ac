package refresh

import (
	"context"
	"sync"
	"time"

	"StockScope/internal/metrics"
	"StockScope/internal/model"
)

// Reconciler is the per-symbol fetch operation the refresher fans out.
type Reconciler interface {
	Reconcile(ctx context.Context, symbol, referenceDate string, desiredCount int) (model.Series, error)
}

// Result is the settled outcome for one symbol. A failed symbol carries its
// error here instead of aborting the batch.
type Result struct {
	Symbol string
	Series model.Series
	Err    error
}

const (
	defaultBatchSize = 8
	defaultPause     = time.Second
)

// Refresher fetches many symbols in fixed-size concurrent batches with a
// pause between batches to respect upstream rate limits.
type Refresher struct {
	Reconciler Reconciler
	BatchSize  int
	Pause      time.Duration
	Metrics    *metrics.Metrics

	// OnProgress, when set, is called after each batch settles with the
	// number of symbols processed so far.
	OnProgress func(done, total int)
}

// NewRefresher creates a refresher with the default batch size and pause.
func NewRefresher(rec Reconciler) *Refresher {
	return &Refresher{
		Reconciler: rec,
		BatchSize:  defaultBatchSize,
		Pause:      defaultPause,
	}
}

// RefreshAll reconciles every symbol, deduplicated in first-seen order.
// Batches run to full settlement once launched; cancellation is only
// honored between batches, where the remaining symbols are marked with the
// context error.
func (r *Refresher) RefreshAll(ctx context.Context, symbols []string, referenceDate string, desiredCount int) []Result {
	unique := dedupe(symbols)
	results := make([]Result, len(unique))

	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	pause := r.Pause
	if pause < 0 {
		pause = 0
	}

	start := time.Now()
	for off := 0; off < len(unique); off += batchSize {
		if err := ctx.Err(); err != nil {
			for i := off; i < len(unique); i++ {
				results[i] = Result{Symbol: unique[i], Err: err}
			}
			break
		}

		end := off + batchSize
		if end > len(unique) {
			end = len(unique)
		}

		var wg sync.WaitGroup
		for i := off; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				sym := unique[idx]
				series, err := r.Reconciler.Reconcile(ctx, sym, referenceDate, desiredCount)
				results[idx] = Result{Symbol: sym, Series: series, Err: err}
			}(i)
		}
		wg.Wait()

		if r.OnProgress != nil {
			r.OnProgress(end, len(unique))
		}
		if end < len(unique) && pause > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(pause):
			}
		}
	}
	if r.Metrics != nil {
		r.Metrics.RefreshDur.Observe(time.Since(start).Seconds())
	}
	return results
}

func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
