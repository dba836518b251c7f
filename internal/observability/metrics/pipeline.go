package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics covers the worker side: one assessment per consumed
// application event.
type PipelineMetrics struct {
	registry *prometheus.Registry

	assessTotal    *prometheus.CounterVec
	assessDuration *prometheus.HistogramVec
	assessInFlight prometheus.Gauge
	decisionsTotal *prometheus.CounterVec
	queueLag       *prometheus.HistogramVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	assessTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssa",
			Subsystem: "pipeline",
			Name:      "assessments_total",
			Help:      "Total processed applications by status.",
		},
		[]string{"service", "status"},
	)
	assessDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ssa",
			Subsystem: "pipeline",
			Name:      "assessment_duration_seconds",
			Help:      "Application assessment duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	assessInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ssa",
			Subsystem: "pipeline",
			Name:      "assessments_in_flight",
			Help:      "Number of in-flight application assessments.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	decisionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssa",
			Subsystem: "pipeline",
			Name:      "decisions_total",
			Help:      "Terminal decisions by outcome.",
		},
		[]string{"service", "decision"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ssa",
			Subsystem: "pipeline",
			Name:      "queue_lag_seconds",
			Help:      "Delay between application submission and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(assessTotal, assessDuration, assessInFlight, decisionsTotal, queueLag)

	return &PipelineMetrics{
		registry:       registry,
		assessTotal:    assessTotal,
		assessDuration: assessDuration,
		assessInFlight: assessInFlight,
		decisionsTotal: decisionsTotal,
		queueLag:       queueLag,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) StartAssessment() {
	m.assessInFlight.Inc()
}

func (m *PipelineMetrics) FinishAssessment(service string, duration time.Duration, err error) {
	m.assessInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.assessTotal.WithLabelValues(service, status).Inc()
	m.assessDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) RecordDecision(service, decision string) {
	if decision == "" {
		decision = "unknown"
	}
	m.decisionsTotal.WithLabelValues(service, decision).Inc()
}

func (m *PipelineMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
