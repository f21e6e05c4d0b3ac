package fetch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"StockScope/internal/indicator"
	"StockScope/internal/model"
	"StockScope/internal/store"
)

type fetchCall struct {
	symbol string
	start  string
	count  int
}

type fakeSource struct {
	calls []fetchCall
	rows  []model.PricePoint
	err   error
}

func (f *fakeSource) FetchDaily(_ context.Context, symbol, startDate string, count int) ([]model.PricePoint, error) {
	f.calls = append(f.calls, fetchCall{symbol: symbol, start: startDate, count: count})
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func tradingDate(i int) string {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, i).Format("20060102")
}

func dailyPoints(n int) []model.PricePoint {
	pts := make([]model.PricePoint, n)
	for i := range pts {
		pts[i] = model.PricePoint{
			Date:   tradingDate(i),
			Open:   100,
			High:   101,
			Low:    99,
			Close:  100 + float64(i%7),
			Volume: int64(1000 + i),
		}
	}
	return pts
}

func seedCache(t *testing.T, st store.Store, symbol string, n int) model.Series {
	t.Helper()
	series := indicator.Compute(dailyPoints(n))
	if err := st.Put(context.Background(), symbol, series); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	return series
}

func TestReconcileRejectsBlankSymbol(t *testing.T) {
	src := &fakeSource{}
	rec := NewReconciler(src, store.NewMemoryStore())
	for _, sym := range []string{"", "   "} {
		_, err := rec.Reconcile(context.Background(), sym, tradingDate(0), 250)
		if !errors.Is(err, ErrInvalidSymbol) {
			t.Errorf("symbol %q: expected ErrInvalidSymbol, got %v", sym, err)
		}
	}
	if len(src.calls) != 0 {
		t.Fatalf("blank symbols must be rejected before any network activity, got %d calls", len(src.calls))
	}
}

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct{ in, want string }{
		{"5930", "005930"},
		{"660", "000660"},
		{"005930", "005930"},
		{"1234567", "1234567"},
		{"AAPL", "AAPL"},
		{"12a", "12a"},
	}
	for _, tt := range tests {
		if got := NormalizeSymbol(tt.in); got != tt.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReconcilePadsSymbolForLookup(t *testing.T) {
	src := &fakeSource{rows: dailyPoints(30)}
	st := store.NewMemoryStore()
	rec := NewReconciler(src, st)

	if _, err := rec.Reconcile(context.Background(), "5930", tradingDate(29), 250); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if src.calls[0].symbol != "005930" {
		t.Errorf("upstream call used %q, want padded symbol", src.calls[0].symbol)
	}
	if _, ok, _ := st.Get(context.Background(), "005930"); !ok {
		t.Error("cache must be keyed by the padded symbol")
	}
}

func TestDecideFetchRules(t *testing.T) {
	big := indicator.Compute(dailyPoints(250))
	small := indicator.Compute(dailyPoints(100))
	last := big.LastDate() // tradingDate(249)

	tests := []struct {
		name      string
		cached    model.Series
		ok        bool
		refDate   string
		desired   int
		wantCount int
		wantIncr  bool
	}{
		{"no cache full fetch", nil, false, last, 250, 250, false},
		{"thin cache full history request", small, true, last, 250, 250, false},
		{"thin cache small request refresh", small, true, small.LastDate(), 30, 5, true},
		{"gap ahead incremental", big, true, tradingDate(254), 250, 15, true},
		{"same date small refresh", big, true, last, 250, 5, true},
		{"huge gap full fetch", big, true, tradingDate(360), 250, 250, false},
		{"reference inside range full fetch", big, true, tradingDate(100), 250, 250, false},
	}
	for _, tt := range tests {
		count, incr := decideFetch(tt.cached, tt.ok, tt.refDate, tt.desired)
		if count != tt.wantCount || incr != tt.wantIncr {
			t.Errorf("%s: got (%d, %v), want (%d, %v)", tt.name, count, incr, tt.wantCount, tt.wantIncr)
		}
	}
}

func TestReconcileIncrementalMergeRetainsHistory(t *testing.T) {
	st := store.NewMemoryStore()
	seedCache(t, st, "005930", 250)

	// Five fresh rows continuing the cached range.
	fresh := make([]model.PricePoint, 0, 5)
	for i := 250; i < 255; i++ {
		fresh = append(fresh, model.PricePoint{Date: tradingDate(i), Close: 200, Volume: 1})
	}
	src := &fakeSource{rows: fresh}
	rec := NewReconciler(src, st)

	series, err := rec.Reconcile(context.Background(), "005930", tradingDate(254), 250)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(src.calls) != 1 || src.calls[0].count != 15 {
		t.Fatalf("expected one incremental fetch of gap+10=15 rows, got %+v", src.calls)
	}
	if len(series) != 255 {
		t.Fatalf("merged series length: expected 255, got %d", len(series))
	}
	if series[0].Date != tradingDate(0) {
		t.Errorf("cached history outside the fetch window must be retained, first date %s", series[0].Date)
	}
	if series.LastDate() != tradingDate(254) {
		t.Errorf("last date: expected %s, got %s", tradingDate(254), series.LastDate())
	}
}

func TestReconcileMergeIsIdempotent(t *testing.T) {
	st := store.NewMemoryStore()
	cached := seedCache(t, st, "005930", 250)

	// Refetching the exact same rows must reproduce the cached series.
	src := &fakeSource{rows: dailyPoints(250)}
	rec := NewReconciler(src, st)

	series, err := rec.Reconcile(context.Background(), "005930", cached.LastDate(), 250)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !reflect.DeepEqual(series, cached) {
		t.Fatal("merging a series with itself must be idempotent")
	}
}

func TestReconcileIncrementalOverwritesSharedDates(t *testing.T) {
	st := store.NewMemoryStore()
	seedCache(t, st, "005930", 250)

	amended := model.PricePoint{Date: tradingDate(249), Close: 777, Volume: 9}
	src := &fakeSource{rows: []model.PricePoint{amended}}
	rec := NewReconciler(src, st)

	series, err := rec.Reconcile(context.Background(), "005930", tradingDate(249), 250)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := series[len(series)-1].Close; got != 777 {
		t.Errorf("fresh rows must overwrite cached rows sharing a date, close=%v", got)
	}
}

func TestReconcileTruncatesToCap(t *testing.T) {
	st := store.NewMemoryStore()
	seedCache(t, st, "005930", 298)

	fresh := make([]model.PricePoint, 0, 7)
	for i := 298; i < 305; i++ {
		fresh = append(fresh, model.PricePoint{Date: tradingDate(i), Close: 100, Volume: 1})
	}
	src := &fakeSource{rows: fresh}
	rec := NewReconciler(src, st)

	series, err := rec.Reconcile(context.Background(), "005930", tradingDate(304), 250)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(series) != model.MaxSeriesLen {
		t.Fatalf("expected cap at %d, got %d", model.MaxSeriesLen, len(series))
	}
	if series[0].Date != tradingDate(5) {
		t.Errorf("oldest points must be evicted first, first date %s", series[0].Date)
	}
}

func TestReconcileWritesThrough(t *testing.T) {
	st := store.NewMemoryStore()
	src := &fakeSource{rows: dailyPoints(60)}
	rec := NewReconciler(src, st)

	series, err := rec.Reconcile(context.Background(), "005930", tradingDate(59), 250)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	cached, ok, err := st.Get(context.Background(), "005930")
	if err != nil || !ok {
		t.Fatalf("expected cache entry after reconcile (ok=%v, err=%v)", ok, err)
	}
	if !reflect.DeepEqual(cached, series) {
		t.Fatal("cache entry must equal the returned series")
	}
}

func TestReconcileDataEmpty(t *testing.T) {
	src := &fakeSource{rows: nil}
	rec := NewReconciler(src, store.NewMemoryStore())
	_, err := rec.Reconcile(context.Background(), "005930", tradingDate(0), 250)
	if !errors.Is(err, ErrDataEmpty) {
		t.Fatalf("expected ErrDataEmpty, got %v", err)
	}
}

func TestReconcileDataUnavailable(t *testing.T) {
	cause := fmt.Errorf("all relay providers failed: boom")
	src := &fakeSource{err: cause}
	rec := NewReconciler(src, store.NewMemoryStore())
	_, err := rec.Reconcile(context.Background(), "005930", tradingDate(0), 250)

	var unavailable *DataUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected DataUnavailableError, got %v", err)
	}
	if unavailable.Symbol != "005930" {
		t.Errorf("error symbol: got %q", unavailable.Symbol)
	}
	if !errors.Is(err, cause) {
		t.Error("the last underlying error must be preserved for diagnostics")
	}
}
