package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresRateCache keeps exchange rates in a PostgreSQL table so several
// machines can share one cache.
type PostgresRateCache struct {
	db *sql.DB
}

// NewPostgresRateCache opens a connection, waits for the server to answer
// and creates the cache table if it does not exist.
func NewPostgresRateCache(dsn string) (*PostgresRateCache, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pc := &PostgresRateCache{db: db}
	if err := pc.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pc, nil
}

func (pc *PostgresRateCache) migrate() error {
	_, err := pc.db.Exec(`
		CREATE TABLE IF NOT EXISTS rate_cache (
			cache_key  TEXT             PRIMARY KEY,
			rate       DOUBLE PRECISION NOT NULL,
			updated_at TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (pc *PostgresRateCache) Lookup(ctx context.Context, key string) (float64, bool, error) {
	var rate float64
	err := pc.db.QueryRowContext(ctx,
		`SELECT rate FROM rate_cache WHERE cache_key = $1`, key).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("postgres: lookup %q: %w", key, err)
	}
	return rate, true, nil
}

func (pc *PostgresRateCache) Store(ctx context.Context, key string, rate float64) error {
	_, err := pc.db.ExecContext(ctx, `
		INSERT INTO rate_cache (cache_key, rate, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (cache_key) DO UPDATE SET rate = EXCLUDED.rate, updated_at = NOW()
	`, key, rate)
	if err != nil {
		return fmt.Errorf("postgres: store %q: %w", key, err)
	}
	return nil
}

func (pc *PostgresRateCache) Close() error {
	return pc.db.Close()
}
