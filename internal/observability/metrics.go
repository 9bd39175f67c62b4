package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	extractions  *prometheus.CounterVec
	extractLat   prometheus.Histogram
	cacheLookups *prometheus.CounterVec
	results      *prometheus.HistogramVec
	filterNotes  *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laptopfinder",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "laptopfinder",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		extractions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laptopfinder",
			Subsystem: "extractor",
			Name:      "requests_total",
			Help:      "Specification extractions by outcome: ok, cached, failure, parse_error",
		}, []string{"outcome"}),
		extractLat: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "laptopfinder",
			Subsystem: "extractor",
			Name:      "latency_seconds",
			Help:      "Latency of the language model extraction call",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laptopfinder",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Extraction cache lookups by result",
		}, []string{"result"}),
		results: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "laptopfinder",
			Subsystem: "pipeline",
			Name:      "results",
			Help:      "Number of laptops returned per request",
			Buckets:   []float64{0, 1, 3, 5, 10, 20},
		}, []string{"pipeline"}),
		filterNotes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laptopfinder",
			Subsystem: "pipeline",
			Name:      "filter_messages_total",
			Help:      "Filter explanation messages emitted per pipeline",
		}, []string{"pipeline"}),
	}
}

// RecordExtraction counts one extraction attempt. elapsed is ignored for cached results.
func (m *Metrics) RecordExtraction(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome).Inc()
	if outcome != "cached" {
		m.extractLat.Observe(elapsed.Seconds())
	}
}

// RecordCacheLookup counts an extraction cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RecordResults observes the result count and filter messages of one pipeline run.
func (m *Metrics) RecordResults(pipeline string, results, messages int) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(pipeline).Observe(float64(results))
	m.filterNotes.WithLabelValues(pipeline).Add(float64(messages))
}

// Middleware records request counts and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpLatency.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
