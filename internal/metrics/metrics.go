package metrics

import (
	"context"
	"errors"
	"time"

	"commercetools-gateway/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gateway"

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Calls to external platforms by operation and outcome.",
	}, []string{"platform", "operation", "outcome"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of calls to external platforms.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"platform", "operation"})

	socialOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "social",
		Name:      "reconciliations_total",
		Help:      "Social identity reconciliation results by branch.",
	}, []string{"outcome"})

	guestOrderPatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "guest_orders",
		Name:      "patches_total",
		Help:      "Guest order customer-id patches by outcome.",
	}, []string{"outcome"})
)

// ObserveUpstream records one external call.
func ObserveUpstream(platform, operation string, err error, elapsed time.Duration) {
	upstreamRequests.WithLabelValues(platform, operation, Outcome(err)).Inc()
	upstreamDuration.WithLabelValues(platform, operation).Observe(elapsed.Seconds())
}

// SocialOutcome counts one reconciliation branch taken.
func SocialOutcome(outcome string) {
	socialOutcomes.WithLabelValues(outcome).Inc()
}

// GuestOrderPatch counts one guest order patch attempt.
func GuestOrderPatch(err error) {
	guestOrderPatches.WithLabelValues(Outcome(err)).Inc()
}

// Outcome maps an error to a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	switch domain.KindOf(err) {
	case domain.ErrConflict:
		return "conflict"
	case domain.ErrNotFound:
		return "not_found"
	case domain.ErrUnauthenticated:
		return "unauthenticated"
	case domain.ErrValidation:
		return "validation"
	case domain.ErrAlreadyExists:
		return "already_exists"
	case domain.ErrUpstream:
		return "upstream"
	}
	return "error"
}
