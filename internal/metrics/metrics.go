// Package metrics holds the Prometheus collectors of the API.
//
// Usage:
//
//	metrics.RecordHTTPRequest("GET", "/api/recipes/:id", 200, 12*time.Millisecond)
//	metrics.RecordShoppingListDownload(len(list.Items))
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks request latency by method and route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ShoppingListDownloadsTotal counts generated shopping lists.
	ShoppingListDownloadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Total number of shopping list downloads",
		},
	)

	// ShoppingListItems observes the number of distinct lines per shopping list.
	ShoppingListItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "foodgram_shopping_list_items",
			Help:    "Distinct ingredient lines per shopping list",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)

	// RateLimitedTotal counts requests rejected by a rate limiter.
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_rate_limited_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"limiter"},
	)
)

// RecordHTTPRequest records one served request. path is the route pattern,
// not the raw URL, to keep label cardinality bounded.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordShoppingListDownload(items int) {
	ShoppingListDownloadsTotal.Inc()
	ShoppingListItems.Observe(float64(items))
}

func RecordRateLimited(limiter string) {
	RateLimitedTotal.WithLabelValues(limiter).Inc()
}
