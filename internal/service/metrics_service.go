package service

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates the Prometheus collectors for the roster
// API: the HTTP surface plus the capture pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	placements      *prometheus.CounterVec
	ingested        prometheus.Counter
	purged          prometheus.Counter
	compressed      prometheus.Counter
	sweepDuration   prometheus.Histogram
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_placements_total",
		Help: "Seating operations by outcome",
	}, []string{"outcome"})

	ingested := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_screenshots_ingested_total",
		Help: "Screenshots accepted from capture agents",
	})

	purged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_screenshots_purged_total",
		Help: "Screenshots removed by the retention sweep",
	})

	compressed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_screenshots_compressed_total",
		Help: "Screenshots recompressed by the retention sweep",
	})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roster_retention_sweep_seconds",
		Help:    "Duration of retention sweeps",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, placements, ingested, purged, compressed, sweepDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		placements:      placements,
		ingested:        ingested,
		purged:          purged,
		compressed:      compressed,
		sweepDuration:   sweepDuration,
	}
}

// Handler serves the scrape endpoint.
func (s *MetricsService) Handler() http.Handler { return s.handler }

// ObserveHTTPRequest records one finished request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": http.StatusText(status)}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// CountPlacement records a seating operation outcome: placed, denied or
// removed.
func (s *MetricsService) CountPlacement(outcome string) {
	s.placements.WithLabelValues(outcome).Inc()
}

// CountIngest records one accepted screenshot.
func (s *MetricsService) CountIngest() { s.ingested.Inc() }

// ObserveSweep records the result of one retention sweep.
func (s *MetricsService) ObserveSweep(res RetentionResult, duration time.Duration) {
	s.purged.Add(float64(res.Deleted))
	s.compressed.Add(float64(res.Compressed))
	s.sweepDuration.Observe(duration.Seconds())
}
