// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LikeToggles counts toggle calls by target kind and outcome
	// (liked, unliked or an error code).
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamestore_like_toggles_total",
		Help: "Like toggle calls by target kind and outcome",
	}, []string{"kind", "outcome"})

	// LikeCountersRepaired counts targets whose like counter was rewritten by reconciliation.
	LikeCountersRepaired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamestore_like_counters_repaired_total",
		Help: "Targets whose denormalized like counter drifted and was repaired",
	}, []string{"kind"})

	// RecommendationLatency records how long ranking requests take, by endpoint.
	RecommendationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gamestore_recommendation_latency_seconds",
		Help:    "Recommendation computation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// HTTPRequests counts handled requests by route and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gamestore_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
)

// ObserveRecommendation returns a func that records latency when called (e.g. defer).
func ObserveRecommendation(endpoint string) func() {
	start := time.Now()
	return func() {
		RecommendationLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

// Middleware counts requests per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
