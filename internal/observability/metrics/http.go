package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	service  string
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	analysisStepDuration *prometheus.HistogramVec
	analysisStepTotal    *prometheus.CounterVec
	entitiesTotal        *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idu",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "idu",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "idu",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	analysisStepDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "idu",
			Subsystem: "analysis",
			Name:      "step_duration_seconds",
			Help:      "Model step duration in seconds.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"service", "step"},
	)
	analysisStepTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idu",
			Subsystem: "analysis",
			Name:      "steps_total",
			Help:      "Model steps by outcome.",
		},
		[]string{"service", "step", "status"},
	)
	entitiesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "idu",
			Subsystem: "analysis",
			Name:      "entities_total",
			Help:      "Tagger spans kept or dropped by the label policy.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		analysisStepDuration,
		analysisStepTotal,
		entitiesTotal,
	)

	return &HTTPServerMetrics{
		service:              service,
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		analysisStepDuration: analysisStepDuration,
		analysisStepTotal:    analysisStepTotal,
		entitiesTotal:        entitiesTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency. Paths outside knownPaths are
// reported as "other" to bound label cardinality.
func (m *HTTPServerMetrics) Middleware(knownPaths ...string) func(http.Handler) http.Handler {
	known := make(map[string]struct{}, len(knownPaths))
	for _, p := range knownPaths {
		known[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path
			if _, ok := known[path]; !ok {
				path = "other"
			}
			recorder := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			m.requestInFlight.Inc()
			defer m.requestInFlight.Dec()

			next.ServeHTTP(recorder, r)

			m.requestTotal.WithLabelValues(
				m.service,
				r.Method,
				path,
				strconv.Itoa(recorder.statusCode),
			).Inc()
			m.requestDuration.WithLabelValues(m.service, r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

func (m *HTTPServerMetrics) ObserveAnalysisStep(step string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.analysisStepTotal.WithLabelValues(m.service, step, status).Inc()
	m.analysisStepDuration.WithLabelValues(m.service, step).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) ObserveEntities(kept, dropped int) {
	if kept > 0 {
		m.entitiesTotal.WithLabelValues(m.service, "kept").Add(float64(kept))
	}
	if dropped > 0 {
		m.entitiesTotal.WithLabelValues(m.service, "dropped").Add(float64(dropped))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
