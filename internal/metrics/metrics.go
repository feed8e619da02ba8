// Package metrics defines the Prometheus collectors exported by the
// invoices service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "invoices"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	InvoicesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Invoices created.",
	})

	InvoicesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deleted_total",
		Help:      "Invoices deleted.",
	})

	// AmountBilled sums grand totals of created invoices.
	AmountBilled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "amount_billed_total",
		Help:      "Sum of grand totals of created invoices.",
	})

	StatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_changes_total",
		Help:      "Invoice status changes by new status.",
	}, []string{"status"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by key family and result.",
	}, []string{"key", "result"})

	PDFExports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pdf_exports_total",
		Help:      "PDF exports by result.",
	}, []string{"result"})

	PaymentEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_events_total",
		Help:      "Consumed payment events by type.",
	}, []string{"type"})
)

// Middleware records request counts and latencies. Routes are labelled
// with their gin pattern so path parameters do not explode cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CacheResult records a cache hit or miss for a key family.
func CacheResult(key string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(key, result).Inc()
}
