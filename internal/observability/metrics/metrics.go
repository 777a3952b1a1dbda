package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storeinventory_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storeinventory_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	productOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storeinventory_product_operations_total",
		Help: "Count of product mutations by operation and result",
	}, []string{"operation", "result"})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storeinventory_auth_attempts_total",
		Help: "Count of authentication attempts by result",
	}, []string{"result"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storeinventory_cache_lookups_total",
		Help: "Catalog cache lookups by result",
	}, []string{"result"})

	lowStockProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storeinventory_low_stock_products",
		Help: "Number of available products below the low-stock threshold",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveProductOperation counts a create/update/delete attempt with its result.
func ObserveProductOperation(operation, result string) {
	productOperations.WithLabelValues(operation, result).Inc()
}

// ObserveAuthAttempt counts a login attempt with its result.
func ObserveAuthAttempt(result string) {
	authAttempts.WithLabelValues(result).Inc()
}

// ObserveCacheHit counts a catalog cache hit.
func ObserveCacheHit() {
	cacheLookups.WithLabelValues("hit").Inc()
}

// ObserveCacheMiss counts a catalog cache miss.
func ObserveCacheMiss() {
	cacheLookups.WithLabelValues("miss").Inc()
}

// SetLowStock sets the low-stock gauge to the latest scan result.
func SetLowStock(count int) {
	if count < 0 {
		count = 0
	}
	lowStockProducts.Set(float64(count))
}
