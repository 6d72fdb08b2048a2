// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes for ocr_requests_total.
const (
	OutcomeSuccess     = "success"
	OutcomeClientError = "client_error"
	OutcomeTooLarge    = "too_large"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Metrics holds the collectors on a private registry so tests can create as
// many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	engineDuration  *prometheus.HistogramVec
	engineFailures  *prometheus.CounterVec
	textRegions     prometheus.Histogram
	engineAvailable prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ocr_requests_total",
			Help: "OCR requests by outcome.",
		}, []string{"outcome"}),
		engineDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ocr_engine_duration_seconds",
			Help:    "Time spent in the OCR engine per image.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"engine"}),
		engineFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ocr_engine_failures_total",
			Help: "OCR engine calls that returned an error.",
		}, []string{"engine"}),
		textRegions: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ocr_text_regions",
			Help:    "Text regions detected per image.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
		}),
		engineAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ocr_engine_initialized",
			Help: "1 when the OCR engine initialized at startup, 0 otherwise.",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.engineDuration,
		m.engineFailures,
		m.textRegions,
		m.engineAvailable,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(outcome string) {
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetEngineInitialized(ok bool) {
	if ok {
		m.engineAvailable.Set(1)
		return
	}
	m.engineAvailable.Set(0)
}

// ObserveRecognition records one engine call. Region counts are only
// observed for successful calls.
func (m *Metrics) ObserveRecognition(engine string, elapsed time.Duration, regions int, err error) {
	m.engineDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
	if err != nil {
		m.engineFailures.WithLabelValues(engine).Inc()
		return
	}
	m.textRegions.Observe(float64(regions))
}
