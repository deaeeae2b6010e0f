package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_transitions_total",
			Help: "Bookings entering each status",
		},
		[]string{"status"},
	)
	BookingRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_rejections_total",
			Help: "Refused booking operations by reason",
		},
		[]string{"reason"},
	)
	LedgerMovements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_movements_total",
			Help: "Credits moved through the ledger by kind",
		},
		[]string{"kind"},
	)
	SlotsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slots_expired_total",
			Help: "Slots deactivated by the expiry sweep",
		},
	)
)

// NormalizePath keeps the first path segment below /api so the path label
// stays low-cardinality.
func NormalizePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimPrefix(p, "api/")
	if idx := strings.Index(p, "/"); idx >= 0 {
		p = p[:idx]
	}
	if p == "" {
		return "root"
	}
	return p
}

func ObserveTransition(status string) {
	BookingTransitions.WithLabelValues(status).Inc()
}

func ObserveRejection(reason string) {
	BookingRejections.WithLabelValues(reason).Inc()
}

// ObserveLedger adds amount credits under kind ("debit" or "credit").
func ObserveLedger(kind string, amount int64) {
	LedgerMovements.WithLabelValues(kind).Add(float64(amount))
}
