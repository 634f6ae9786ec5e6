package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteRateCache keeps exchange rates in a local SQLite database file.
type SQLiteRateCache struct {
	db *sql.DB
}

// NewSQLiteRateCache opens (or creates) the database at dbPath.
func NewSQLiteRateCache(dbPath string) (*SQLiteRateCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("sqlite: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS rate_cache (
			cache_key  TEXT PRIMARY KEY,
			rate       REAL NOT NULL,
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	return &SQLiteRateCache{db: db}, nil
}

func (sc *SQLiteRateCache) Lookup(ctx context.Context, key string) (float64, bool, error) {
	var rate float64
	err := sc.db.QueryRowContext(ctx,
		`SELECT rate FROM rate_cache WHERE cache_key = ?`, key).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("sqlite: lookup %q: %w", key, err)
	}
	return rate, true, nil
}

func (sc *SQLiteRateCache) Store(ctx context.Context, key string, rate float64) error {
	_, err := sc.db.ExecContext(ctx, `
		INSERT INTO rate_cache (cache_key, rate, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (cache_key) DO UPDATE SET rate = excluded.rate, updated_at = CURRENT_TIMESTAMP
	`, key, rate)
	if err != nil {
		return fmt.Errorf("sqlite: store %q: %w", key, err)
	}
	return nil
}

func (sc *SQLiteRateCache) Close() error {
	return sc.db.Close()
}
