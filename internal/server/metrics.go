package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	pipelineRuns     *prometheus.CounterVec
	providerFailures prometheus.Counter
	requestDuration  *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		pipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "utilization_pipeline_runs_total",
			Help: "Utilization pipeline runs by view and outcome.",
		}, []string{"view", "outcome"}),
		providerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "utilization_provider_failures_total",
			Help: "Requests that failed because a source table could not be loaded.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "utilization_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
	reg.MustRegister(m.pipelineRuns, m.providerFailures, m.requestDuration)
	return m
}

func (m *Metrics) observeRun(view string, empty bool) {
	outcome := "ok"
	if empty {
		outcome = "empty"
	}
	m.pipelineRuns.WithLabelValues(view, outcome).Inc()
}

func (m *Metrics) observeRequest(route string, status int, elapsed time.Duration) {
	m.requestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
