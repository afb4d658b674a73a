package swap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/blockedge-co/gash-miniapp/observability"
	"github.com/blockedge-co/gash-miniapp/rates"
)

var (
	// ErrSwapLimitExceeded is returned when the per-user fixed window is exhausted.
	ErrSwapLimitExceeded = errors.New("swap: daily swap limit exceeded")
	// ErrUserNotFound is returned when the balance source does not know the identity.
	ErrUserNotFound = errors.New("swap: user not found")
	// ErrRateUnavailable is returned when no conversion rate can be fetched.
	ErrRateUnavailable = errors.New("swap: conversion rate unavailable")
)

// ValidationError carries the rule messages for a rejected intent. The
// messages are user-facing and surfaced verbatim.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return "swap: invalid intent"
	}
	return strings.Join(e.Errors, "; ")
}

// RateSource supplies the current conversion rate.
type RateSource interface {
	Current(ctx context.Context) (rates.Rate, error)
}

// BalanceSource resolves a user's spendable WLD balance. The engine only ever
// reads through this interface; balance mutation stays with the owning
// collaborator.
type BalanceSource interface {
	WLDBalance(userID string) (float64, bool)
}

// Recorder journals completed swaps for reconciliation. Implementations must
// tolerate being called after the ledger commit; failures are logged, never
// retried, and never fail the swap.
type Recorder interface {
	RecordSwap(ctx context.Context, tx Transaction) error
}

// Engine drives a swap intent through admission, validation, pricing, and the
// single ledger commit.
type Engine struct {
	policy   Policy
	limiter  *Limiter
	rates    RateSource
	balances BalanceSource
	ledger   *Ledger
	recorder Recorder
	clock    func() time.Time
	logger   *slog.Logger
	metrics  *observability.SwapMetrics
	tracer   trace.Tracer
}

// NewEngine wires the swap pipeline. The recorder may be nil.
func NewEngine(policy Policy, limiter *Limiter, rateSource RateSource, balances BalanceSource, ledger *Ledger, recorder Recorder) (*Engine, error) {
	if limiter == nil {
		return nil, fmt.Errorf("limiter required")
	}
	if rateSource == nil {
		return nil, fmt.Errorf("rate source required")
	}
	if balances == nil {
		return nil, fmt.Errorf("balance source required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	if policy.MinAmount <= 0 {
		policy.MinAmount = 0.1
	}
	return &Engine{
		policy:   policy,
		limiter:  limiter,
		rates:    rateSource,
		balances: balances,
		ledger:   ledger,
		recorder: recorder,
		clock:    time.Now,
		logger:   slog.Default(),
		metrics:  observability.Swap(),
		tracer:   otel.Tracer("gashd/swap"),
	}, nil
}

// WithClock overrides the engine clock for deterministic tests.
func (e *Engine) WithClock(clock func() time.Time) {
	if e == nil || clock == nil {
		return
	}
	e.clock = clock
}

// Execute runs one swap intent to completion. Nothing is persisted unless
// every earlier step succeeds; the ledger append is the single commit point.
func (e *Engine) Execute(ctx context.Context, intent Intent) (Receipt, error) {
	if e == nil {
		return Receipt{}, fmt.Errorf("engine not configured")
	}
	start := e.clock()
	ctx, span := e.tracer.Start(ctx, "swap.execute", trace.WithAttributes(
		attribute.Float64("swap.amount_wld", intent.AmountWLD),
		attribute.Bool("swap.bonus_eligible", intent.BonusEligible),
	))
	defer span.End()

	receipt, err := e.execute(ctx, intent)
	e.metrics.Observe("execute", e.clock().Sub(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Receipt{}, err
	}
	span.SetAttributes(attribute.String("swap.tx_hash", receipt.TxHash))
	return receipt, nil
}

func (e *Engine) execute(ctx context.Context, intent Intent) (Receipt, error) {
	userID := strings.TrimSpace(intent.UserID)
	if userID == "" {
		return Receipt{}, &ValidationError{Errors: []string{"Invalid request parameters"}}
	}

	if !e.limiter.Allow(userID) {
		e.metrics.Reject("swap_limit")
		return Receipt{}, ErrSwapLimitExceeded
	}

	balance, ok := e.balances.WLDBalance(userID)
	if !ok {
		return Receipt{}, ErrUserNotFound
	}
	validation := ValidateAmount(intent.AmountWLD, balance, e.policy.MinAmount)
	if !validation.Valid {
		e.metrics.Reject("validation")
		return Receipt{}, &ValidationError{Errors: validation.Errors, Warnings: validation.Warnings}
	}

	rate, err := e.rates.Current(ctx)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}

	bonusPercent := 0.0
	if intent.BonusEligible {
		bonusPercent = e.policy.FirstSwapBonusPct
	}
	amounts := Calculate(intent.AmountWLD, rate.Rate, bonusPercent)

	txHash, err := NewTxHash()
	if err != nil {
		return Receipt{}, err
	}
	now := e.clock().UTC()
	tx := Transaction{
		ID:         NewTransactionID(),
		UserID:     userID,
		Type:       TypeSwap,
		AmountWLD:  intent.AmountWLD,
		AmountGASH: amounts.Base,
		BonusGASH:  amounts.Bonus,
		Rate:       rate.Rate,
		TxHash:     txHash,
		Status:     StatusCompleted,
		Timestamp:  now,
	}
	if err := e.ledger.Append(tx); err != nil {
		return Receipt{}, fmt.Errorf("append transaction: %w", err)
	}

	if e.recorder != nil {
		if err := e.recorder.RecordSwap(ctx, tx); err != nil {
			e.logger.Warn("journal swap", "tx", tx.ID, "error", err)
		}
	}

	return Receipt{
		Transaction:   tx,
		TxHash:        txHash,
		GashReceived:  amounts.Total,
		BonusReceived: amounts.Bonus,
		Timestamp:     now,
		Rate:          rate.Rate,
	}, nil
}
