package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"StockScope/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists one JSON payload per symbol in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent reads while the refresher writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite cache opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS series_cache (
			symbol     TEXT PRIMARY KEY,
			updated_at INTEGER NOT NULL,
			payload    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_series_updated ON series_cache(updated_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:30], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, symbol string) (model.Series, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM series_cache WHERE symbol = ?`, symbol).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select series %s: %w", symbol, err)
	}

	var series model.Series
	if err := json.Unmarshal([]byte(payload), &series); err != nil {
		return nil, false, fmt.Errorf("decode series %s: %w", symbol, err)
	}
	return series, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, symbol string, series model.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(series)
	if err != nil {
		return fmt.Errorf("encode series %s: %w", symbol, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO series_cache (symbol, updated_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT(symbol) DO UPDATE SET updated_at = excluded.updated_at, payload = excluded.payload`,
		symbol, time.Now().Unix(), string(payload))
	if err != nil {
		return fmt.Errorf("upsert series %s: %w", symbol, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite cache")
	return s.db.Close()
}
