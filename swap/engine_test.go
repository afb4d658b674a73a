package swap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blockedge-co/gash-miniapp/rates"
)

type fixedRates struct {
	rate rates.Rate
	err  error
}

func (f fixedRates) Current(ctx context.Context) (rates.Rate, error) {
	if f.err != nil {
		return rates.Rate{}, f.err
	}
	return f.rate, nil
}

type fixedBalances map[string]float64

func (f fixedBalances) WLDBalance(userID string) (float64, bool) {
	balance, ok := f[userID]
	return balance, ok
}

type captureRecorder struct {
	recorded []Transaction
	err      error
}

func (c *captureRecorder) RecordSwap(ctx context.Context, tx Transaction) error {
	if c.err != nil {
		return c.err
	}
	c.recorded = append(c.recorded, tx)
	return nil
}

func newTestEngine(t *testing.T, limiter *Limiter, source RateSource, balances BalanceSource, recorder Recorder) (*Engine, *Ledger) {
	t.Helper()
	ledger := NewLedger()
	engine, err := NewEngine(Policy{
		MinAmount:         0.1,
		FirstSwapBonusPct: 5,
		MaxSwaps:          5,
		Window:            time.Hour,
	}, limiter, source, balances, ledger, recorder)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine, ledger
}

func TestEngineExecuteHappyPath(t *testing.T) {
	clock := newTestClock()
	limiter := NewLimiter(5, time.Hour)
	limiter.WithClock(clock.Now)
	recorder := &captureRecorder{}
	source := fixedRates{rate: rates.Rate{Rate: 10, UpdatedAt: clock.Now(), Source: rates.SourceMock}}
	engine, ledger := newTestEngine(t, limiter, source, fixedBalances{"user1": 1000}, recorder)
	engine.WithClock(clock.Now)

	receipt, err := engine.Execute(context.Background(), Intent{
		UserID:        "user1",
		AmountWLD:     10,
		BonusEligible: true,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if receipt.GashReceived != 105 {
		t.Fatalf("gash received: got %v want 105", receipt.GashReceived)
	}
	if receipt.BonusReceived != 5 {
		t.Fatalf("bonus: got %v want 5", receipt.BonusReceived)
	}
	if receipt.Rate != 10 {
		t.Fatalf("rate: got %v want 10", receipt.Rate)
	}
	if !strings.HasPrefix(receipt.TxHash, "0x") || len(receipt.TxHash) != 66 {
		t.Fatalf("malformed tx hash %q", receipt.TxHash)
	}

	txs := ledger.List("user1")
	if len(txs) != 1 {
		t.Fatalf("ledger has %d transactions, want 1", len(txs))
	}
	tx := txs[0]
	if tx.AmountGASH != 100 || tx.BonusGASH != 5 {
		t.Fatalf("transaction amounts wrong: base %v bonus %v", tx.AmountGASH, tx.BonusGASH)
	}
	if tx.Status != StatusCompleted {
		t.Fatalf("status: got %s want %s", tx.Status, StatusCompleted)
	}
	if len(recorder.recorded) != 1 || recorder.recorded[0].ID != tx.ID {
		t.Fatalf("recorder did not observe the committed transaction")
	}
}

func TestEngineExecuteNoBonusWhenIneligible(t *testing.T) {
	limiter := NewLimiter(5, time.Hour)
	source := fixedRates{rate: rates.Rate{Rate: 10, Source: rates.SourceMock}}
	engine, _ := newTestEngine(t, limiter, source, fixedBalances{"user1": 1000}, nil)

	receipt, err := engine.Execute(context.Background(), Intent{UserID: "user1", AmountWLD: 10})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if receipt.GashReceived != 100 || receipt.BonusReceived != 0 {
		t.Fatalf("expected flat conversion, got total %v bonus %v", receipt.GashReceived, receipt.BonusReceived)
	}
}

func TestEngineExecuteSwapLimit(t *testing.T) {
	clock := newTestClock()
	limiter := NewLimiter(5, time.Hour)
	limiter.WithClock(clock.Now)
	source := fixedRates{rate: rates.Rate{Rate: 10, Source: rates.SourceMock}}
	engine, ledger := newTestEngine(t, limiter, source, fixedBalances{"user1": 1000}, nil)
	engine.WithClock(clock.Now)

	for i := 0; i < 5; i++ {
		if _, err := engine.Execute(context.Background(), Intent{UserID: "user1", AmountWLD: 1}); err != nil {
			t.Fatalf("swap %d: %v", i+1, err)
		}
	}
	_, err := engine.Execute(context.Background(), Intent{UserID: "user1", AmountWLD: 1})
	if !errors.Is(err, ErrSwapLimitExceeded) {
		t.Fatalf("expected limit error, got %v", err)
	}
	if ledger.Count("user1") != 5 {
		t.Fatalf("ledger count after rejection: got %d want 5", ledger.Count("user1"))
	}

	clock.Advance(time.Hour + time.Second)
	if _, err := engine.Execute(context.Background(), Intent{UserID: "user1", AmountWLD: 1}); err != nil {
		t.Fatalf("swap after window: %v", err)
	}
}

func TestEngineExecuteValidationFailure(t *testing.T) {
	limiter := NewLimiter(5, time.Hour)
	source := fixedRates{rate: rates.Rate{Rate: 10, Source: rates.SourceMock}}
	engine, ledger := newTestEngine(t, limiter, source, fixedBalances{"user1": 1000}, nil)

	_, err := engine.Execute(context.Background(), Intent{UserID: "user1", AmountWLD: 2000})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !containsMessage(vErr.Errors, "Insufficient WLD balance") {
		t.Fatalf("missing balance error, got %v", vErr.Errors)
	}
	if ledger.Count("user1") != 0 {
		t.Fatalf("rejected intent must not touch the ledger")
	}
}

func TestEngineExecuteUnknownUser(t *testing.T) {
	limiter := NewLimiter(5, time.Hour)
	source := fixedRates{rate: rates.Rate{Rate: 10, Source: rates.SourceMock}}
	engine, _ := newTestEngine(t, limiter, source, fixedBalances{}, nil)

	_, err := engine.Execute(context.Background(), Intent{UserID: "ghost", AmountWLD: 1})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestEngineExecuteRateUnavailable(t *testing.T) {
	limiter := NewLimiter(5, time.Hour)
	source := fixedRates{err: errors.New("feed down")}
	engine, ledger := newTestEngine(t, limiter, source, fixedBalances{"user1": 1000}, nil)

	_, err := engine.Execute(context.Background(), Intent{UserID: "user1", AmountWLD: 1})
	if !errors.Is(err, ErrRateUnavailable) {
		t.Fatalf("expected rate error, got %v", err)
	}
	if ledger.Count("user1") != 0 {
		t.Fatalf("failed pricing must not touch the ledger")
	}
}

func TestEngineExecuteEmptyUser(t *testing.T) {
	limiter := NewLimiter(5, time.Hour)
	source := fixedRates{rate: rates.Rate{Rate: 10, Source: rates.SourceMock}}
	engine, _ := newTestEngine(t, limiter, source, fixedBalances{"user1": 1000}, nil)

	_, err := engine.Execute(context.Background(), Intent{UserID: "  ", AmountWLD: 1})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEngineRecorderFailureDoesNotFailSwap(t *testing.T) {
	limiter := NewLimiter(5, time.Hour)
	source := fixedRates{rate: rates.Rate{Rate: 10, Source: rates.SourceMock}}
	recorder := &captureRecorder{err: errors.New("journal closed")}
	engine, ledger := newTestEngine(t, limiter, source, fixedBalances{"user1": 1000}, recorder)

	if _, err := engine.Execute(context.Background(), Intent{UserID: "user1", AmountWLD: 1}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if ledger.Count("user1") != 1 {
		t.Fatalf("ledger commit missing after recorder failure")
	}
}
