package tickets_api

import (
	stderrors "errors"

	"github.com/BearBump/TicketBox/internal/services/lookup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ticketbox_lookups_total",
		Help: "Ticket lookups by transport and outcome",
	}, []string{"transport", "outcome"})
	lookupDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ticketbox_lookup_duration_seconds",
		Help:    "Ticket lookup latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"transport"})
	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ticketbox_lookups_rate_limited_total",
		Help: "Lookups rejected by the rate limiter",
	})
)

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "found"
	case stderrors.Is(err, lookup.ErrInvalidInput):
		return "invalid_input"
	case stderrors.Is(err, lookup.ErrNotFound):
		return "not_found"
	default:
		return "transport_failure"
	}
}
