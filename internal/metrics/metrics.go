package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "interview_helper"

// Metrics holds the service registry. It implements services.Observer.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal      *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	requestInFlight   prometheus.Gauge
	llmCallsTotal     *prometheus.CounterVec
	llmCallDuration   *prometheus.HistogramVec
	analysisFallbacks *prometheus.CounterVec
	transcriptions    *prometheus.CounterVec
	transcribeSeconds prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests processed.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		requestInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "in_flight_requests",
				Help:      "Number of in-flight HTTP requests.",
			},
		),
		llmCallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "calls_total",
				Help:      "LLM completion calls by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		llmCallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "llm",
				Name:      "call_duration_seconds",
				Help:      "LLM completion latency in seconds.",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),
		analysisFallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "analysis",
				Name:      "fallbacks_total",
				Help:      "Analysis replies replaced by a default value.",
			},
			[]string{"operation"},
		),
		transcriptions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "transcription",
				Name:      "jobs_total",
				Help:      "Transcription jobs by outcome.",
			},
			[]string{"outcome"},
		),
		transcribeSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "transcription",
				Name:      "duration_seconds",
				Help:      "Transcription latency in seconds, queueing included.",
				Buckets:   []float64{1, 2, 5, 10, 30, 60, 120, 300},
			},
		),
	}

	registry.MustRegister(
		m.requestTotal,
		m.requestDuration,
		m.requestInFlight,
		m.llmCallsTotal,
		m.llmCallDuration,
		m.analysisFallbacks,
		m.transcriptions,
		m.transcribeSeconds,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware records count, latency and in-flight requests per route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.requestTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

func (m *Metrics) ObserveLLMCall(provider, outcome string, elapsed time.Duration) {
	m.llmCallsTotal.WithLabelValues(provider, outcome).Inc()
	m.llmCallDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveAnalysisFallback(operation string) {
	m.analysisFallbacks.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveTranscription(outcome string, elapsed time.Duration) {
	m.transcriptions.WithLabelValues(outcome).Inc()
	m.transcribeSeconds.Observe(elapsed.Seconds())
}
