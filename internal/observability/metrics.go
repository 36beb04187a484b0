// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scan metrics
	ScanRunsTotal      *prometheus.CounterVec
	ScanDuration       prometheus.Histogram
	ListingsFetched    *prometheus.CounterVec
	ListingFetchErrors *prometheus.CounterVec
	TokensScored       *prometheus.CounterVec

	// Provider metrics
	ProviderOutcomes *prometheus.CounterVec

	// HTTP metrics
	HTTPAttemptLatency *prometheus.HistogramVec
	HTTPRetries        *prometheus.CounterVec

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Server metrics
	WSClients          prometheus.Gauge
	LastSuccessfulScan prometheus.Gauge
	LastScanTokenCount prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered
// on reg. A nil reg registers on the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "token_risk_scanner"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ScanRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "runs_total",
			Help:      "Total number of scans by final state",
		}, []string{"state"}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Full scan duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		ListingsFetched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "listings_fetched_total",
			Help:      "Listings kept for enrichment by network",
		}, []string{"network"}),
		ListingFetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "listing_fetch_errors_total",
			Help:      "Listing fetch failures by network",
		}, []string{"network"}),
		TokensScored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scan",
			Name:      "tokens_scored_total",
			Help:      "Tokens scored by verdict",
		}, []string{"verdict"}),

		ProviderOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "outcomes_total",
			Help:      "Risk provider call outcomes",
		}, []string{"provider", "status", "reason"}),

		HTTPAttemptLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "attempt_latency_seconds",
			Help:      "Latency of single HTTP attempts in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "outcome"}),
		HTTPRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "retries_total",
			Help:      "Total number of HTTP retries",
		}, []string{"provider"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by result (hit, miss, expired)",
		}, []string{"result"}),

		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "ws_clients",
			Help:      "Connected WebSocket clients",
		}),
		LastSuccessfulScan: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_scan_timestamp",
			Help:      "Unix timestamp of last successful scan",
		}),
		LastScanTokenCount: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_scan_tokens",
			Help:      "Number of tokens returned by the last scan",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordScan records a finished scan.
func RecordScan(state string, durationSeconds float64, tokens int, finishedUnix int64) {
	DefaultMetrics.ScanRunsTotal.WithLabelValues(state).Inc()
	DefaultMetrics.ScanDuration.Observe(durationSeconds)
	if state == "done" {
		DefaultMetrics.LastSuccessfulScan.Set(float64(finishedUnix))
		DefaultMetrics.LastScanTokenCount.Set(float64(tokens))
	}
}

// RecordListings records listings kept for one network.
func RecordListings(network string, n int) {
	DefaultMetrics.ListingsFetched.WithLabelValues(network).Add(float64(n))
}

// RecordListingError records a failed listing fetch.
func RecordListingError(network string) {
	DefaultMetrics.ListingFetchErrors.WithLabelValues(network).Inc()
}

// RecordTokenScored records one scored token.
func RecordTokenScored(verdict string) {
	DefaultMetrics.TokensScored.WithLabelValues(verdict).Inc()
}

// RecordProviderOutcome records a risk provider outcome.
func RecordProviderOutcome(provider, status, reason string) {
	DefaultMetrics.ProviderOutcomes.WithLabelValues(provider, status, reason).Inc()
}

// RecordHTTPAttempt records a single HTTP attempt.
func RecordHTTPAttempt(provider string, seconds float64, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	DefaultMetrics.HTTPAttemptLatency.WithLabelValues(provider, outcome).Observe(seconds)
}

// RecordHTTPRetry records a retry.
func RecordHTTPRetry(provider string) {
	DefaultMetrics.HTTPRetries.WithLabelValues(provider).Inc()
}

// RecordCacheLookup records a cache lookup result.
func RecordCacheLookup(result string) {
	DefaultMetrics.CacheLookups.WithLabelValues(result).Inc()
}

// SetWSClients updates the connected WebSocket clients gauge.
func SetWSClients(n int) {
	DefaultMetrics.WSClients.Set(float64(n))
}
