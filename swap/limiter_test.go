package swap

import (
	"testing"
	"time"
)

type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1700000000, 0).UTC()}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func TestLimiterAdmitsUpToCeiling(t *testing.T) {
	clock := newTestClock()
	limiter := NewLimiter(5, time.Hour)
	limiter.WithClock(clock.Now)

	for i := 0; i < 5; i++ {
		if !limiter.Allow("user1") {
			t.Fatalf("request %d unexpectedly rejected", i+1)
		}
	}
	if limiter.Allow("user1") {
		t.Fatalf("sixth request admitted past ceiling")
	}
}

func TestLimiterResetsAfterWindow(t *testing.T) {
	clock := newTestClock()
	limiter := NewLimiter(5, time.Hour)
	limiter.WithClock(clock.Now)

	for i := 0; i < 5; i++ {
		limiter.Allow("user1")
	}
	if limiter.Allow("user1") {
		t.Fatalf("request admitted past ceiling")
	}

	clock.Advance(time.Hour + time.Second)
	if !limiter.Allow("user1") {
		t.Fatalf("request rejected after window elapsed")
	}
}

func TestLimiterIsolatesIdentities(t *testing.T) {
	clock := newTestClock()
	limiter := NewLimiter(1, time.Hour)
	limiter.WithClock(clock.Now)

	if !limiter.Allow("user1") {
		t.Fatalf("first identity rejected")
	}
	if !limiter.Allow("user2") {
		t.Fatalf("second identity rejected")
	}
	if limiter.Allow("user1") {
		t.Fatalf("first identity admitted past ceiling")
	}
}

func TestLimiterRemaining(t *testing.T) {
	clock := newTestClock()
	limiter := NewLimiter(5, time.Hour)
	limiter.WithClock(clock.Now)

	if got := limiter.Remaining("user1"); got != 5 {
		t.Fatalf("remaining before use: got %d want 5", got)
	}
	limiter.Allow("user1")
	limiter.Allow("user1")
	if got := limiter.Remaining("user1"); got != 3 {
		t.Fatalf("remaining after two: got %d want 3", got)
	}
}

func TestLimiterPurge(t *testing.T) {
	clock := newTestClock()
	limiter := NewLimiter(5, time.Hour)
	limiter.WithClock(clock.Now)

	limiter.Allow("user1")
	limiter.Allow("user2")
	clock.Advance(2 * time.Hour)
	limiter.Allow("user3")

	if dropped := limiter.Purge(); dropped != 2 {
		t.Fatalf("purge dropped %d entries, want 2", dropped)
	}
}

func TestLimiterZeroCeilingAdmitsAll(t *testing.T) {
	limiter := NewLimiter(0, time.Hour)
	for i := 0; i < 10; i++ {
		if !limiter.Allow("user1") {
			t.Fatalf("disabled limiter rejected request %d", i+1)
		}
	}
}
