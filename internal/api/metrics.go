package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dunamismax/pixelpro/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the host's prometheus registry. It also observes the editor
// so ingest, render and export timings show up next to request metrics.
type Metrics struct {
	registry        *prometheus.Registry
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ingestTotal     *prometheus.CounterVec
	ingestBytes     prometheus.Histogram
	ingestDuration  prometheus.Histogram
	renderDuration  prometheus.Histogram
	renderPixels    prometheus.Histogram
	exportTotal     *prometheus.CounterVec
	exportBytes     *prometheus.HistogramVec
	exportDuration  *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpro_http_requests_total",
			Help: "Total HTTP requests handled by the editor host.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pixelpro_http_request_duration_seconds",
			Help:    "Editor host request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		ingestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpro_ingest_total",
			Help: "Total files submitted for ingestion by outcome.",
		}, []string{"outcome"}),
		ingestBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pixelpro_ingest_bytes",
			Help:    "Size of successfully ingested files in bytes.",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
		}),
		ingestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pixelpro_ingest_duration_seconds",
			Help:    "Time spent validating and decoding files.",
			Buckets: prometheus.DefBuckets,
		}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pixelpro_render_duration_seconds",
			Help:    "Time spent redrawing the surface from the source image.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		renderPixels: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pixelpro_render_pixels",
			Help:    "Area of rendered surfaces in pixels.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		exportTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelpro_export_total",
			Help: "Total export requests by format and outcome.",
		}, []string{"format", "outcome"}),
		exportBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pixelpro_export_bytes",
			Help:    "Size of encoded exports in bytes.",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
		}, []string{"format"}),
		exportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pixelpro_export_duration_seconds",
			Help:    "Time spent encoding exports.",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
	}
	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.ingestTotal,
		m.ingestBytes,
		m.ingestDuration,
		m.renderDuration,
		m.renderPixels,
		m.exportTotal,
		m.exportBytes,
		m.exportDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveIngest(outcome string, bytes int64, elapsed time.Duration) {
	m.ingestTotal.WithLabelValues(outcome).Inc()
	m.ingestDuration.Observe(elapsed.Seconds())
	if bytes > 0 {
		m.ingestBytes.Observe(float64(bytes))
	}
}

func (m *Metrics) ObserveRender(width, height int, elapsed time.Duration) {
	m.renderDuration.Observe(elapsed.Seconds())
	m.renderPixels.Observe(float64(width) * float64(height))
}

func (m *Metrics) ObserveExport(format domain.Format, outcome string, bytes int, elapsed time.Duration) {
	m.exportTotal.WithLabelValues(string(format), outcome).Inc()
	m.exportDuration.WithLabelValues(string(format)).Observe(elapsed.Seconds())
	if bytes > 0 {
		m.exportBytes.WithLabelValues(string(format)).Observe(float64(bytes))
	}
}

func (m *Metrics) withHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := routeLabel(r.URL.Path)
		status := statusLabel(recorder.status)

		m.requestTotal.WithLabelValues(r.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

func statusLabel(status int) string {
	return strconv.Itoa(status)
}

// routeLabel keeps label cardinality bounded for unknown paths.
func routeLabel(path string) string {
	path = strings.TrimSuffix(path, "/")
	switch path {
	case routeHealthz, routeMetrics, routeSession, routeSessionFile, routeAdjustments,
		routeAdjustmentsReset, routeAdjustmentsAuto, routePreset, routeDimensions,
		routeResetImage, routePreview, routeExport:
		return path
	default:
		return "other"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
