package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "notes"

// Auth failure reasons
const (
	ReasonMissingToken       = "missing_token"
	ReasonInvalidSignature   = "invalid_signature"
	ReasonExpired            = "expired"
	ReasonMalformed          = "malformed"
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonThrottled          = "throttled"
	ReasonForbidden          = "forbidden"
)

var (
	// HTTPRequests counts requests by route pattern, method and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPDuration observes request latency
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// AuthFailures counts rejected authentication and authorization attempts
	AuthFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Total number of authentication and authorization failures by reason",
		},
		[]string{"reason"},
	)

	// TokensIssued counts successful logins
	TokensIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Total number of access tokens issued",
		},
	)

	// QuotaRejections counts note creations denied by the free plan limit
	QuotaRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_rejections_total",
			Help:      "Total number of note creations rejected by plan quota",
		},
	)

	// TenantUpgrades counts plan changes to pro
	TenantUpgrades = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_upgrades_total",
			Help:      "Total number of tenants upgraded to the pro plan",
		},
	)

	// NoteOperations counts successful note operations
	NoteOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "note_operations_total",
			Help:      "Total number of note operations by type",
		},
		[]string{"operation"}, // create, update, delete
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequests,
		HTTPDuration,
		AuthFailures,
		TokensIssued,
		QuotaRejections,
		TenantUpgrades,
		NoteOperations,
	)
}

// RecordAuthFailure increments the auth failure counter for reason
func RecordAuthFailure(reason string) {
	AuthFailures.WithLabelValues(reason).Inc()
}

// ObserveRequest records one served HTTP request
func ObserveRequest(route, method, status string, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(route, method, status).Inc()
	HTTPDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
