// Package api exposes the reconciled series and mined patterns as read-only
// JSON endpoints for downstream consumers (dashboard, exporters).
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"StockScope/internal/fetch"
	"StockScope/internal/metrics"
	"StockScope/internal/miner"
	"StockScope/internal/model"
)

// Server wires the HTTP handlers.
type Server struct {
	Reconciler   *fetch.Reconciler
	DefaultCount int
}

// NewServer creates an API server with the given default history length.
func NewServer(rec *fetch.Reconciler, defaultCount int) *Server {
	if defaultCount <= 0 {
		defaultCount = 250
	}
	return &Server{Reconciler: rec, DefaultCount: defaultCount}
}

// Routes sets up the HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/series", s.handleSeries)
	mux.HandleFunc("/api/v1/patterns", s.handlePatterns)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	series, ok := s.reconcileFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	series, ok := s.reconcileFromQuery(w, r)
	if !ok {
		return
	}
	results := miner.Mine(series)
	if results == nil {
		results = []model.LearningResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) reconcileFromQuery(w http.ResponseWriter, r *http.Request) (model.Series, bool) {
	q := r.URL.Query()
	symbol := q.Get("symbol")
	date := q.Get("date")
	if date == "" {
		date = model.Today()
	}
	count := s.DefaultCount
	if v := q.Get("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}

	series, err := s.Reconciler.Reconcile(r.Context(), symbol, date, count)
	if err != nil {
		writeError(w, symbol, err)
		return nil, false
	}
	return series, true
}

func writeError(w http.ResponseWriter, symbol string, err error) {
	status := http.StatusInternalServerError
	var unavailable *fetch.DataUnavailableError
	switch {
	case errors.Is(err, fetch.ErrInvalidSymbol):
		status = http.StatusBadRequest
	case errors.Is(err, fetch.ErrDataEmpty), errors.As(err, &unavailable):
		status = http.StatusBadGateway
	}
	log.Printf("[WARN] api error for %q: %v", symbol, err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}
