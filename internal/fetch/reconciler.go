package fetch

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"StockScope/internal/indicator"
	"StockScope/internal/metrics"
	"StockScope/internal/model"
	"StockScope/internal/store"
)

// Source retrieves raw daily rows for a symbol.
type Source interface {
	FetchDaily(ctx context.Context, symbol, startDate string, count int) ([]model.PricePoint, error)
}

// Reconciler decides between full and incremental fetches, merges upstream
// rows with the cached series, recomputes indicators over the full merged
// series and writes the result through to the cache.
type Reconciler struct {
	Source  Source
	Store   store.Store
	Metrics *metrics.Metrics
}

// NewReconciler creates a reconciler over the given source and cache store.
func NewReconciler(src Source, st store.Store) *Reconciler {
	return &Reconciler{Source: src, Store: st}
}

// Reconcile returns the indicator-annotated series for symbol as of
// referenceDate, holding up to desiredCount most recent trading days.
func (r *Reconciler) Reconcile(ctx context.Context, symbol, referenceDate string, desiredCount int) (model.Series, error) {
	sym := strings.TrimSpace(symbol)
	if sym == "" {
		return nil, ErrInvalidSymbol
	}
	sym = NormalizeSymbol(sym)

	if r.Metrics != nil {
		r.Metrics.FetchTotal.Inc()
	}

	cached, ok, err := r.Store.Get(ctx, sym)
	if err != nil {
		log.Printf("[WARN] cache read failed for %s: %v", sym, err)
		cached, ok = nil, false
	}
	if ok {
		// Cached series is stored sorted, but the fetch decision depends on
		// the last date, so sort defensively.
		sort.Slice(cached, func(i, j int) bool { return cached[i].Date < cached[j].Date })
	}
	if r.Metrics != nil {
		if ok {
			r.Metrics.CacheHits.Inc()
		} else {
			r.Metrics.CacheMisses.Inc()
		}
	}

	fetchCount, incremental := decideFetch(cached, ok, referenceDate, desiredCount)

	rows, err := r.Source.FetchDaily(ctx, sym, referenceDate, fetchCount)
	if err != nil {
		if r.Metrics != nil {
			r.Metrics.FetchErrors.Inc()
		}
		return nil, &DataUnavailableError{Symbol: sym, Last: err}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w (%s)", ErrDataEmpty, sym)
	}

	merged := rows
	if incremental && len(cached) > 0 {
		merged = mergeByDate(cached.Points(), rows)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date < merged[j].Date })
	if len(merged) > model.MaxSeriesLen {
		merged = merged[len(merged)-model.MaxSeriesLen:]
	}

	// Indicators are never patched incrementally: EMA seeds and Wilder
	// smoothing state make the formulas non-composable across prefixes.
	start := time.Now()
	series := indicator.Compute(merged)
	if r.Metrics != nil {
		r.Metrics.ComputeDur.Observe(time.Since(start).Seconds())
	}

	if err := r.Store.Put(ctx, sym, series); err != nil {
		log.Printf("[WARN] cache write failed for %s: %v", sym, err)
	}
	return series, nil
}

// NormalizeSymbol zero-left-pads numeric symbols shorter than 6 digits.
func NormalizeSymbol(symbol string) string {
	if len(symbol) >= 6 {
		return symbol
	}
	for _, c := range symbol {
		if c < '0' || c > '9' {
			return symbol
		}
	}
	return strings.Repeat("0", 6-len(symbol)) + symbol
}

// decideFetch implements the cache-driven fetch-size rules. The branch order
// mirrors the deployed behavior exactly, including the full refetch when the
// reference date sits inside the cached range.
func decideFetch(cached model.Series, ok bool, referenceDate string, desiredCount int) (count int, incremental bool) {
	if !ok || len(cached) == 0 {
		return desiredCount, false
	}
	if desiredCount > 50 && len(cached) < 240 {
		return desiredCount, false
	}
	last := cached.LastDate()
	if referenceDate > last {
		if gap := model.DaysBetween(referenceDate, last); gap < 100 {
			return gap + 10, true
		}
		return desiredCount, false
	}
	if referenceDate == last {
		return 5, true
	}
	return desiredCount, false
}

// mergeByDate overlays new rows on cached rows keyed by date; new rows win,
// cached rows outside the fetch window are retained.
func mergeByDate(cached, fresh []model.PricePoint) []model.PricePoint {
	byDate := make(map[string]model.PricePoint, len(cached)+len(fresh))
	for _, p := range cached {
		byDate[p.Date] = p
	}
	for _, p := range fresh {
		byDate[p.Date] = p
	}
	out := make([]model.PricePoint, 0, len(byDate))
	for _, p := range byDate {
		out = append(out, p)
	}
	return out
}
