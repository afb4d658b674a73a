package swap

import (
	"sync"
	"time"
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// Limiter enforces a fixed-window ceiling per identity. Entries are created
// lazily on first use and reset in place once the window elapses; the
// check-and-increment is atomic under the limiter mutex.
type Limiter struct {
	mu      sync.Mutex
	ceiling int
	window  time.Duration
	clock   func() time.Time
	entries map[string]*windowEntry
}

// NewLimiter constructs a limiter admitting up to ceiling events per identity
// within each window.
func NewLimiter(ceiling int, window time.Duration) *Limiter {
	return &Limiter{
		ceiling: ceiling,
		window:  window,
		clock:   time.Now,
		entries: make(map[string]*windowEntry),
	}
}

// WithClock overrides the time source for deterministic tests.
func (l *Limiter) WithClock(clock func() time.Time) {
	if l == nil || clock == nil {
		return
	}
	l.mu.Lock()
	l.clock = clock
	l.mu.Unlock()
}

// Allow reports whether the identity may proceed, counting the event when it
// does not exceed the ceiling.
func (l *Limiter) Allow(identity string) bool {
	if l == nil || l.ceiling <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	entry, ok := l.entries[identity]
	if !ok {
		entry = &windowEntry{resetAt: now.Add(l.window)}
		l.entries[identity] = entry
	}
	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(l.window)
	}
	if entry.count >= l.ceiling {
		return false
	}
	entry.count++
	return true
}

// Remaining reports how many events the identity has left in the current
// window without consuming one.
func (l *Limiter) Remaining(identity string) int {
	if l == nil || l.ceiling <= 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[identity]
	if !ok || l.clock().After(entry.resetAt) {
		return l.ceiling
	}
	remaining := l.ceiling - entry.count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Purge drops entries whose window has already elapsed so the identity map
// does not grow without bound across many distinct callers.
func (l *Limiter) Purge() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	dropped := 0
	for identity, entry := range l.entries {
		if now.After(entry.resetAt) {
			delete(l.entries, identity)
			dropped++
		}
	}
	return dropped
}
