package swap

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ledger is an in-memory append-only per-user transaction store. Entries are
// held in insertion order and returned newest-first for display. There is no
// update or delete operation; once appended, a transaction's numeric fields
// never change.
type Ledger struct {
	mu     sync.RWMutex
	byUser map[string][]Transaction
	ids    map[string]struct{}
	hashes map[string]struct{}
}

// NewLedger constructs an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		byUser: make(map[string][]Transaction),
		ids:    make(map[string]struct{}),
		hashes: make(map[string]struct{}),
	}
}

// Append records the transaction, enforcing id and hash uniqueness across the
// whole ledger.
func (l *Ledger) Append(tx Transaction) error {
	if l == nil {
		return fmt.Errorf("ledger not initialised")
	}
	id := strings.TrimSpace(tx.ID)
	if id == "" {
		return fmt.Errorf("ledger: transaction id required")
	}
	userID := strings.TrimSpace(tx.UserID)
	if userID == "" {
		return fmt.Errorf("ledger: user id required")
	}
	hash := strings.TrimSpace(tx.TxHash)
	if hash == "" {
		return fmt.Errorf("ledger: tx hash required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.ids[id]; exists {
		return fmt.Errorf("ledger: transaction %s already exists", id)
	}
	if _, exists := l.hashes[hash]; exists {
		return fmt.Errorf("ledger: tx hash %s already recorded", hash)
	}
	l.ids[id] = struct{}{}
	l.hashes[hash] = struct{}{}
	l.byUser[userID] = append(l.byUser[userID], tx)
	return nil
}

// List returns the user's transactions newest-first. Callers receive copies
// and cannot mutate ledger state through the result.
func (l *Ledger) List(userID string) []Transaction {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	stored := l.byUser[strings.TrimSpace(userID)]
	out := make([]Transaction, len(stored))
	for i, tx := range stored {
		out[len(stored)-1-i] = tx
	}
	return out
}

// Count reports the number of transactions recorded for the user.
func (l *Ledger) Count(userID string) int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byUser[strings.TrimSpace(userID)])
}

// NewTransactionID returns a unique ledger identifier.
func NewTransactionID() string {
	return uuid.NewString()
}

// NewTxHash returns a 0x-prefixed 64 hex character reference generated from a
// cryptographically strong source.
func NewTxHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate tx hash: %w", err)
	}
	return "0x" + hex.EncodeToString(buf), nil
}

// SeedDemo loads the sample history for the demo user so the vault screen has
// data on a fresh start.
func (l *Ledger) SeedDemo(now time.Time) error {
	if l == nil {
		return fmt.Errorf("ledger not initialised")
	}
	samples := []Transaction{
		{
			ID:         "tx1",
			UserID:     "user1",
			Type:       TypeSwap,
			AmountWLD:  10,
			AmountGASH: 100,
			BonusGASH:  5,
			Rate:       10,
			TxHash:     "0x1a2b3c4d5e6f7890abcdef1234567890abcdef12",
			Status:     StatusCompleted,
			Timestamp:  now.Add(-24 * time.Hour),
		},
		{
			ID:         "tx2",
			UserID:     "user1",
			Type:       TypeSwap,
			AmountWLD:  5,
			AmountGASH: 50,
			BonusGASH:  0,
			Rate:       10,
			TxHash:     "0x2b3c4d5e6f7890abcdef1234567890abcdef1234",
			Status:     StatusCompleted,
			Timestamp:  now.Add(-48 * time.Hour),
		},
		{
			ID:         "tx3",
			UserID:     "user1",
			Type:       TypeSwap,
			AmountWLD:  15,
			AmountGASH: 150,
			BonusGASH:  7.5,
			Rate:       10,
			TxHash:     "0x3c4d5e6f7890abcdef1234567890abcdef123456",
			Status:     StatusCompleted,
			Timestamp:  now.Add(-72 * time.Hour),
		},
	}
	for i := len(samples) - 1; i >= 0; i-- {
		if err := l.Append(samples[i]); err != nil {
			return err
		}
	}
	return nil
}
