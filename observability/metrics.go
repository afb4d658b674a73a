package observability

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	swapMetricsOnce sync.Once
	swapMetricsReg  *SwapMetrics
)

// SwapMetrics captures counters and latency for the swap pipeline.
type SwapMetrics struct {
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	rejections *prometheus.CounterVec
}

// Swap returns the singleton metrics registry for the swap endpoints.
func Swap() *SwapMetrics {
	swapMetricsOnce.Do(func() {
		swapMetricsReg = &SwapMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "gash",
				Subsystem: "swap",
				Name:      "requests_total",
				Help:      "Count of swap pipeline operations segmented by operation and outcome.",
			}, []string{"operation", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "gash",
				Subsystem: "swap",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for swap pipeline operations.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"operation"}),
			rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "gash",
				Subsystem: "swap",
				Name:      "rejections_total",
				Help:      "Count of swap requests rejected before execution, segmented by reason.",
			}, []string{"reason"}),
		}
		prometheus.MustRegister(
			swapMetricsReg.requests,
			swapMetricsReg.latency,
			swapMetricsReg.rejections,
		)
	})
	return swapMetricsReg
}

// Observe records the outcome and duration of one pipeline operation.
func (m *SwapMetrics) Observe(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	operation = normalizeLabel(operation)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(operation, outcome).Inc()
	m.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

// Reject counts a rejected swap by reason (validation, swap_limit, request_limit).
func (m *SwapMetrics) Reject(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
