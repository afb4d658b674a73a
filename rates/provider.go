package rates

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"
)

// Rate sources mirrored in the API payload.
const (
	SourceMock   = "mock"
	SourceOracle = "oracle"
)

// Rate is one conversion rate observation, GASH per 1 WLD. Issued rates are
// immutable; a refresh supersedes the cached value rather than mutating it.
type Rate struct {
	Rate      float64   `json:"rate"`
	UpdatedAt time.Time `json:"updatedAt"`
	Source    string    `json:"source"`
}

// Recorder persists refreshed rate samples for inspection. A nil recorder
// disables sampling.
type Recorder interface {
	RecordRateSample(ctx context.Context, sample Rate) error
}

// Provider produces the current conversion rate, caching each computed value
// for a fixed TTL. Within the TTL every caller observes the identical cached
// Rate; refresh replaces the cache wholesale under the provider mutex so
// concurrent callers never compute redundantly.
type Provider struct {
	mu        sync.Mutex
	base      float64
	variation float64
	floor     float64
	ttl       time.Duration
	random    func() float64
	clock     func() time.Time
	recorder  Recorder
	logger    *slog.Logger

	cached    Rate
	refreshed time.Time
}

// Option configures a Provider.
type Option func(*Provider)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(p *Provider) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithRandom overrides the uniform [0,1) source used for jitter.
func WithRandom(random func() float64) Option {
	return func(p *Provider) {
		if random != nil {
			p.random = random
		}
	}
}

// WithRecorder installs a sample recorder.
func WithRecorder(recorder Recorder) Option {
	return func(p *Provider) {
		p.recorder = recorder
	}
}

// NewProvider constructs a provider around the supplied curve: the refreshed
// rate is base plus uniform jitter in [-variation/2, +variation/2], clamped to
// floor and rounded to 2 decimals.
func NewProvider(base, variation, floor float64, ttl time.Duration, opts ...Option) *Provider {
	p := &Provider{
		base:      base,
		variation: variation,
		floor:     floor,
		ttl:       ttl,
		random:    rand.Float64,
		clock:     time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Current returns the cached rate, refreshing it first when the cache is
// empty or older than the TTL.
func (p *Provider) Current(ctx context.Context) (Rate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.clock()
	if p.cached.Source != "" && now.Sub(p.refreshed) <= p.ttl {
		return p.cached, nil
	}

	jitter := (p.random() - 0.5) * p.variation
	value := p.base + jitter
	if value < p.floor {
		value = p.floor
	}
	p.cached = Rate{
		Rate:      math.Round(value*100) / 100,
		UpdatedAt: now.UTC(),
		Source:    SourceMock,
	}
	p.refreshed = now

	if p.recorder != nil {
		if err := p.recorder.RecordRateSample(ctx, p.cached); err != nil {
			p.logger.Warn("record rate sample", "error", err)
		}
	}
	return p.cached, nil
}
