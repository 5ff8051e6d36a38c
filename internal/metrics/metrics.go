package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Query cache reads, by family
	QueryCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_query_cache_hits_total",
			Help: "Total number of query cache reads served without a fetch",
		},
		[]string{"family"},
	)

	QueryCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_query_cache_misses_total",
			Help: "Total number of query cache reads that ran a fetch",
		},
		[]string{"family"},
	)

	QueryCacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_query_cache_invalidations_total",
			Help: "Total number of keys dropped by invalidation",
		},
		[]string{"family"},
	)

	// Secondary local cache, by tier (memory, persisted)
	LocalCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_local_cache_hits_total",
			Help: "Total number of local cache hits",
		},
		[]string{"tier"},
	)

	LocalCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_local_cache_misses_total",
			Help: "Total number of local cache misses",
		},
	)

	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_storage_errors_total",
			Help: "Total number of swallowed persisted storage failures",
		},
		[]string{"operation"},
	)

	// API traffic
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_api_request_duration_seconds",
			Help:    "Duration of API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	TokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_token_refreshes_total",
			Help: "Total number of access token refresh attempts",
		},
		[]string{"result"},
	)
)

// RecordQueryHit records a query cache hit for family
func RecordQueryHit(family string) {
	QueryCacheHits.WithLabelValues(family).Inc()
}

// RecordQueryMiss records a query cache miss for family
func RecordQueryMiss(family string) {
	QueryCacheMisses.WithLabelValues(family).Inc()
}

// RecordInvalidation records n keys dropped from family
func RecordInvalidation(family string, n int) {
	if n <= 0 {
		return
	}
	QueryCacheInvalidations.WithLabelValues(family).Add(float64(n))
}

// RecordLocalHit records a local cache hit served from tier
func RecordLocalHit(tier string) {
	LocalCacheHits.WithLabelValues(tier).Inc()
}

// RecordLocalMiss records a local cache miss
func RecordLocalMiss() {
	LocalCacheMisses.Inc()
}

// RecordStorageError records a persisted storage failure that was logged and dropped
func RecordStorageError(operation string) {
	StorageErrors.WithLabelValues(operation).Inc()
}

// RecordAPIRequest records an API round trip. status is 0 when no response arrived.
func RecordAPIRequest(method string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	APIRequestDuration.WithLabelValues(method, label).Observe(duration.Seconds())
}

// RecordTokenRefresh records the outcome of a refresh attempt
func RecordTokenRefresh(ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	TokenRefreshes.WithLabelValues(result).Inc()
}
