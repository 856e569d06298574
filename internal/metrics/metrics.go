// Package metrics exposes Prometheus collectors for the HTTP layer and the
// review domain. Collectors live on a private registry so tests can build as
// many instances as they like.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service records to.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge

	ratingFolds     prometheus.Counter
	commentsAdded   prometheus.Counter
	reviewsCreated  prometheus.Counter
	photosStored    prometheus.Counter
	upstreamFailure *prometheus.CounterVec
}

// New creates a Metrics instance under namespace. Process and Go runtime
// collectors are registered alongside.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "travel_review"
	}

	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	m.inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Requests currently being served",
	})

	m.ratingFolds = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reviews",
		Name:      "rating_folds_total",
		Help:      "Ratings folded into review means",
	})
	m.commentsAdded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reviews",
		Name:      "comments_total",
		Help:      "Comments appended to reviews",
	})
	m.reviewsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reviews",
		Name:      "created_total",
		Help:      "Reviews created",
	})
	m.photosStored = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "photos",
		Name:      "stored_total",
		Help:      "Photos written to the photo store",
	})
	m.upstreamFailure = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "failures_total",
			Help:      "Failed calls to third-party services",
		},
		[]string{"upstream"},
	)

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.inFlight,
		m.ratingFolds,
		m.commentsAdded,
		m.reviewsCreated,
		m.photosStored,
		m.upstreamFailure,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordHTTPRequest(method, route, status string, d time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func (m *Metrics) IncrementInFlight() { m.inFlight.Inc() }
func (m *Metrics) DecrementInFlight() { m.inFlight.Dec() }

// The domain recorders below are safe to call on a nil *Metrics so services
// can run without instrumentation.

func (m *Metrics) RatingFolded() {
	if m != nil {
		m.ratingFolds.Inc()
	}
}

func (m *Metrics) CommentAdded() {
	if m != nil {
		m.commentsAdded.Inc()
	}
}

func (m *Metrics) ReviewCreated() {
	if m != nil {
		m.reviewsCreated.Inc()
	}
}

func (m *Metrics) PhotosStored(n int) {
	if m != nil {
		m.photosStored.Add(float64(n))
	}
}

func (m *Metrics) UpstreamFailed(upstream string) {
	if m != nil {
		m.upstreamFailure.WithLabelValues(upstream).Inc()
	}
}
