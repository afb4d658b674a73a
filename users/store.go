package users

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// User is the external identity the swap core reads balances from. The core
// never mutates these fields directly; ApplySwap is called by the HTTP layer
// after a swap settles.
type User struct {
	ID                 string    `json:"id"`
	WorldID            string    `json:"worldId"`
	WalletAddress      string    `json:"walletAddress,omitempty"`
	WLDBalance         float64   `json:"wldBalance"`
	GASHBalance        float64   `json:"gashBalance"`
	TotalSwaps         int       `json:"totalSwaps"`
	FirstSwapCompleted bool      `json:"firstSwapCompleted"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Demo account balances issued to identities the directory has not seen.
const (
	defaultWLDBalance  = 1000
	defaultGASHBalance = 500
)

// Directory is the in-memory user store backing the demo. Identities are
// created lazily with the stock demo balances so any caller can exercise the
// swap flow.
type Directory struct {
	mu    sync.Mutex
	users map[string]*User
	clock func() time.Time
}

// NewDirectory constructs an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		users: make(map[string]*User),
		clock: time.Now,
	}
}

// WithClock overrides the time source for deterministic tests.
func (d *Directory) WithClock(clock func() time.Time) {
	if d == nil || clock == nil {
		return
	}
	d.mu.Lock()
	d.clock = clock
	d.mu.Unlock()
}

// SeedDemo registers the stock demo identity used by the mini app onboarding.
func (d *Directory) SeedDemo() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.clock().UTC()
	d.users["mock-user-123"] = &User{
		ID:          "mock-user-123",
		WorldID:     "mock-world-id-456",
		WLDBalance:  defaultWLDBalance,
		GASHBalance: defaultGASHBalance,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Get returns a copy of the user, reporting whether the identity was already
// known.
func (d *Directory) Get(id string) (User, bool) {
	if d == nil {
		return User{}, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[strings.TrimSpace(id)]
	if !ok {
		return User{}, false
	}
	return *user, true
}

// WLDBalance resolves the spendable WLD balance for the identity, creating it
// with the demo defaults when unseen. Implements the swap engine's
// BalanceSource contract.
func (d *Directory) WLDBalance(id string) (float64, bool) {
	if d == nil {
		return 0, false
	}
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return 0, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ensure(trimmed).WLDBalance, true
}

// ApplySwap debits the spent WLD, credits the received GASH, and advances the
// swap counters. Returns the updated user.
func (d *Directory) ApplySwap(id string, wldSpent, gashReceived float64) (User, error) {
	if d == nil {
		return User{}, fmt.Errorf("directory not initialised")
	}
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return User{}, fmt.Errorf("users: id required")
	}
	if wldSpent < 0 || gashReceived < 0 {
		return User{}, fmt.Errorf("users: negative swap amounts")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	user := d.ensure(trimmed)
	if user.WLDBalance < wldSpent {
		return User{}, fmt.Errorf("users: balance below spent amount")
	}
	user.WLDBalance -= wldSpent
	user.GASHBalance += gashReceived
	user.TotalSwaps++
	user.FirstSwapCompleted = true
	user.UpdatedAt = d.clock().UTC()
	return *user, nil
}

// ensure must be called with the directory mutex held.
func (d *Directory) ensure(id string) *User {
	user, ok := d.users[id]
	if !ok {
		now := d.clock().UTC()
		user = &User{
			ID:          id,
			WLDBalance:  defaultWLDBalance,
			GASHBalance: defaultGASHBalance,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		d.users[id] = user
	}
	return user
}
