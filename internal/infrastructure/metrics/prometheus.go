package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the coin dashboard service
var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_dash_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coin_dash_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPResponseSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coin_dash_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	// Store Metrics
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_dash_store_operations_total",
			Help: "Total number of expiring store operations",
		},
		[]string{"operation", "result"}, // operation: read/read_any/write, result: hit/miss/stale/success/error
	)

	// Upstream Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_dash_upstream_requests_total",
			Help: "Total number of market data provider requests",
		},
		[]string{"service", "endpoint", "status_code"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coin_dash_upstream_request_duration_seconds",
			Help:    "Market data provider request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
		[]string{"service", "endpoint"},
	)

	UpstreamRateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_dash_upstream_rate_limited_total",
			Help: "Number of upstream responses with HTTP 429",
		},
		[]string{"endpoint"},
	)

	// Query family Metrics
	FamilyTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_dash_family_transitions_total",
			Help: "Published state transitions per query family",
		},
		[]string{"family", "status"},
	)

	SupersededResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_dash_superseded_results_total",
			Help: "Fetch results discarded because a newer request superseded them",
		},
		[]string{"family"},
	)

	FallbackActivationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_dash_fallback_activations_total",
			Help: "Stale entries served after a failed live fetch",
		},
		[]string{"family", "reason"}, // reason: rate_limited/upstream
	)

	FeaturedRotationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coin_dash_featured_rotations_total",
			Help: "Number of featured coin samples published",
		},
	)

	StreamSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coin_dash_stream_subscribers",
			Help: "Connected WebSocket subscribers",
		},
	)

	// Rate Limiting Metrics
	RateLimitRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coin_dash_rate_limit_requests_total",
			Help: "Total number of requests processed by the inbound rate limiter",
		},
		[]string{"result"}, // result: allowed/blocked
	)

	// Application Metrics
	ApplicationInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coin_dash_application_info",
			Help: "Application information",
		},
		[]string{"version", "store_backend", "go_version"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, path string, statusCode int, duration float64, responseSize int64) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)

	if responseSize > 0 {
		HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordStoreOperation records expiring store operation metrics
func RecordStoreOperation(operation, result string) {
	StoreOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordUpstreamCall records upstream call metrics; duration in milliseconds
func RecordUpstreamCall(service, endpoint string, statusCode int, durationMs float64) {
	UpstreamRequestsTotal.WithLabelValues(service, endpoint, strconv.Itoa(statusCode)).Inc()
	UpstreamRequestDuration.WithLabelValues(service, endpoint).Observe(durationMs / 1000)
	if statusCode == 429 {
		UpstreamRateLimitedTotal.WithLabelValues(endpoint).Inc()
	}
}

// RecordFamilyTransition records a published family state
func RecordFamilyTransition(family, status string) {
	FamilyTransitionsTotal.WithLabelValues(family, status).Inc()
}

// RecordSupersededResult records a discarded stale completion
func RecordSupersededResult(family string) {
	SupersededResultsTotal.WithLabelValues(family).Inc()
}

// RecordFallbackActivation records when a stale entry replaced a failed fetch
func RecordFallbackActivation(family, reason string) {
	FallbackActivationsTotal.WithLabelValues(family, reason).Inc()
}

// RecordFeaturedRotation records one featured sample
func RecordFeaturedRotation() {
	FeaturedRotationsTotal.Inc()
}

// UpdateStreamSubscribers sets the current subscriber count
func UpdateStreamSubscribers(n int) {
	StreamSubscribers.Set(float64(n))
}

// RecordRateLimitResult records rate limiting results
func RecordRateLimitResult(allowed bool) {
	result := "blocked"
	if allowed {
		result = "allowed"
	}
	RateLimitRequestsTotal.WithLabelValues(result).Inc()
}

// SetApplicationInfo sets application information
func SetApplicationInfo(version, storeBackend, goVersion string) {
	ApplicationInfo.WithLabelValues(version, storeBackend, goVersion).Set(1)
}
