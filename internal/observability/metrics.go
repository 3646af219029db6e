package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "darsa_http_requests_total",
			Help: "Total number of HTTP requests handled, labelled by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "darsa_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds, labelled by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	approvalDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "darsa_approval_decisions_total",
			Help: "Student approval decisions, labelled by outcome.",
		},
		[]string{"outcome"},
	)

	pendingAccountsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "darsa_pending_accounts_expired_total",
			Help: "Pending student accounts removed by the expiry sweep.",
		},
	)
)

// ObserveHTTPRequest records one handled request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveApprovalDecision counts an approve or reject outcome.
func ObserveApprovalDecision(outcome string) {
	approvalDecisionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveExpiredPending adds to the expiry sweep counter.
func ObserveExpiredPending(count int64) {
	if count > 0 {
		pendingAccountsExpired.Add(float64(count))
	}
}
