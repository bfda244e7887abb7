package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors: generic HTTP server
// metrics plus search-specific counters.
type Metrics struct {
	service  string
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchesTotal  *prometheus.CounterVec
	searchHits     *prometheus.HistogramVec
	searchDuration *prometheus.HistogramVec
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querygate",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "querygate",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "querygate",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querygate",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total executed searches by endpoint.",
		},
		[]string{"service", "endpoint"},
	)
	searchHits := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "querygate",
			Subsystem: "search",
			Name:      "hits",
			Help:      "Hit counts of executed searches.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"service", "endpoint"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "querygate",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Elasticsearch round-trip duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchesTotal,
		searchHits,
		searchDuration,
	)

	return &Metrics{
		service:         service,
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		searchesTotal:   searchesTotal,
		searchHits:      searchHits,
		searchDuration:  searchDuration,
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, path string, status int, took time.Duration) {
	m.requestTotal.WithLabelValues(m.service, method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(m.service, method, path).Observe(took.Seconds())
}

func (m *Metrics) RequestStarted() {
	m.requestInFlight.Inc()
}

func (m *Metrics) RequestFinished() {
	m.requestInFlight.Dec()
}

func (m *Metrics) ObserveSearch(endpoint string, hits int, took time.Duration) {
	m.searchesTotal.WithLabelValues(m.service, endpoint).Inc()
	m.searchHits.WithLabelValues(m.service, endpoint).Observe(float64(hits))
	m.searchDuration.WithLabelValues(m.service, endpoint).Observe(took.Seconds())
}
