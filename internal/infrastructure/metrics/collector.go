package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector aggregates the service metrics exposed to Prometheus.
type Collector struct {
	checksTotal   *prometheus.CounterVec
	checkDuration prometheus.Histogram
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewCollector creates a new Collector and registers its metrics with the
// default Prometheus registry.
func NewCollector() *Collector {
	return &Collector{
		checksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "torii_permission_checks_total",
			Help: "Total number of permission checks, partitioned by outcome",
		}, []string{"allowed"}),
		checkDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "torii_permission_check_duration_seconds",
			Help:    "Latency of permission resolution",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "torii_http_requests_total",
			Help: "Total number of HTTP requests, partitioned by method and status",
		}, []string{"method", "status"}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "torii_http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// ObserveCheck records the outcome and latency of one permission check
func (c *Collector) ObserveCheck(allowed bool, duration time.Duration) {
	c.checksTotal.WithLabelValues(strconv.FormatBool(allowed)).Inc()
	c.checkDuration.Observe(duration.Seconds())
}

// ObserveRequest records one completed HTTP request
func (c *Collector) ObserveRequest(method string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method).Observe(duration.Seconds())
}
