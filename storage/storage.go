package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/sqlite"

	"github.com/blockedge-co/gash-miniapp/rates"
	"github.com/blockedge-co/gash-miniapp/swap"
)

// Storage is the sqlite-backed audit store. It journals rate refreshes and
// completed swaps for operations; the in-memory ledger remains the store of
// record for reads.
type Storage struct {
	db *sql.DB
}

// ErrDSNRequired is returned when the backing store DSN is missing.
var ErrDSNRequired = errors.New("storage DSN must be configured")

// Open initialises the backing store using a sqlite-compatible DSN.
func Open(dsn string) (*Storage, error) {
	trimmed := strings.TrimSpace(dsn)
	if trimmed == "" {
		return nil, ErrDSNRequired
	}
	db, err := sql.Open("sqlite", trimmed)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close releases database resources.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRateSample persists one refreshed conversion rate.
func (s *Storage) RecordRateSample(ctx context.Context, sample rates.Rate) error {
	if s == nil {
		return fmt.Errorf("storage not configured")
	}
	if sample.Rate <= 0 {
		return fmt.Errorf("sample missing rate")
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO rate_samples(rate, source, observed_at, recorded_at)
        VALUES(?, ?, ?, ?)
    `, sample.Rate, strings.ToLower(sample.Source), sample.UpdatedAt.UTC().Unix(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert rate sample: %w", err)
	}
	return nil
}

// RateSample is one journalled rate refresh.
type RateSample struct {
	Rate           float64
	Source         string
	ObservedAtUnix int64
	RecordedAt     time.Time
}

// RecentRateSamples returns up to limit samples, newest first.
func (s *Storage) RecentRateSamples(ctx context.Context, limit int) ([]RateSample, error) {
	if s == nil {
		return nil, fmt.Errorf("storage not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT rate, source, observed_at, recorded_at
        FROM rate_samples
        ORDER BY id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("query rate samples: %w", err)
	}
	defer rows.Close()
	samples := make([]RateSample, 0, limit)
	for rows.Next() {
		var sample RateSample
		if err := rows.Scan(&sample.Rate, &sample.Source, &sample.ObservedAtUnix, &sample.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan rate sample: %w", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rate samples: %w", err)
	}
	return samples, nil
}

// RecordSwap journals a settled swap transaction.
func (s *Storage) RecordSwap(ctx context.Context, tx swap.Transaction) error {
	if s == nil {
		return fmt.Errorf("storage not configured")
	}
	if strings.TrimSpace(tx.ID) == "" {
		return fmt.Errorf("swap event missing id")
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO swap_events(id, user_id, tx_hash, amount_wld, gash_out, bonus_out, rate, status, occurred_at)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO NOTHING
    `, tx.ID, tx.UserID, tx.TxHash, tx.AmountWLD, tx.AmountGASH, tx.BonusGASH, tx.Rate, string(tx.Status), tx.Timestamp.UTC().Unix())
	if err != nil {
		return fmt.Errorf("insert swap event: %w", err)
	}
	return nil
}

// SwapEvent is one journalled swap.
type SwapEvent struct {
	ID             string
	UserID         string
	TxHash         string
	AmountWLD      float64
	GashOut        float64
	BonusOut       float64
	Rate           float64
	Status         string
	OccurredAtUnix int64
}

// SwapEvents returns the journalled swaps for a user in insertion order.
func (s *Storage) SwapEvents(ctx context.Context, userID string) ([]SwapEvent, error) {
	if s == nil {
		return nil, fmt.Errorf("storage not configured")
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, tx_hash, amount_wld, gash_out, bonus_out, rate, status, occurred_at
        FROM swap_events
        WHERE user_id = ?
        ORDER BY occurred_at ASC, id ASC
    `, strings.TrimSpace(userID))
	if err != nil {
		return nil, fmt.Errorf("query swap events: %w", err)
	}
	defer rows.Close()
	events := make([]SwapEvent, 0)
	for rows.Next() {
		var event SwapEvent
		if err := rows.Scan(&event.ID, &event.UserID, &event.TxHash, &event.AmountWLD, &event.GashOut, &event.BonusOut, &event.Rate, &event.Status, &event.OccurredAtUnix); err != nil {
			return nil, fmt.Errorf("scan swap event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap events: %w", err)
	}
	return events, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS rate_samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    rate REAL NOT NULL,
    source TEXT NOT NULL,
    observed_at INTEGER NOT NULL,
    recorded_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rate_samples_observed ON rate_samples(observed_at);

CREATE TABLE IF NOT EXISTS swap_events (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    tx_hash TEXT NOT NULL UNIQUE,
    amount_wld REAL NOT NULL,
    gash_out REAL NOT NULL,
    bonus_out REAL NOT NULL,
    rate REAL NOT NULL,
    status TEXT NOT NULL,
    occurred_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_swap_events_user ON swap_events(user_id, occurred_at);
`
