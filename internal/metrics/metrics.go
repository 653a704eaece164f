// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "center_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "center_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "center_cache_evictions_total",
			Help: "Entries removed to stay within capacity",
		},
		[]string{"cache"},
	)

	CacheExpirations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "center_cache_expirations_total",
			Help: "Entries removed because their TTL elapsed",
		},
		[]string{"cache"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "center_cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache"},
	)

	// Distance provider
	DistanceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "center_distance_requests_total",
			Help: "Distance provider calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	DistanceRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "center_distance_request_duration_seconds",
			Help:    "Distance Matrix API call latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "center_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Recommendations
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "center_recommendation_duration_seconds",
			Help:    "Time to compute a recommendation list on cache miss",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	ReactionChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "center_reaction_changes_total",
			Help: "Like/dislike state changes",
		},
		[]string{"reaction"},
	)

	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "center_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "center_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "center_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)
