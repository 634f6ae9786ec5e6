package storage

import (
	"context"
	"errors"

	"personal-data-assistant/models"
)

// ErrSourceUnavailable wraps any failure to open or read an input file.
var ErrSourceUnavailable = errors.New("input source unavailable")

// ExpenseWriter persists the partitioned expense rows.
type ExpenseWriter interface {
	WriteCleaned(expenses []models.ValidatedExpense) error
	WriteRejected(rows []models.RejectedRow) error
}

// RateStore is the persistence side of the exchange-rate cache. It is
// satisfied by FileRateCache, PostgresRateCache and SQLiteRateCache.
type RateStore interface {
	Lookup(ctx context.Context, key string) (float64, bool, error)
	Store(ctx context.Context, key string, rate float64) error
	Close() error
}

var (
	_ ExpenseWriter = (*CSVWriter)(nil)

	_ RateStore = (*FileRateCache)(nil)
	_ RateStore = (*PostgresRateCache)(nil)
	_ RateStore = (*SQLiteRateCache)(nil)
)
