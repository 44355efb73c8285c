package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricRequestsTotal   = "trec_requests_total"
	MetricRequestDuration = "trec_request_duration_seconds"
	MetricRunsEvaluated   = "trec_runs_evaluated_total"
)

// Operation labels.
const (
	OpEvaluate = "evaluate"
	OpFuse     = "fuse"
	OpPool     = "pool"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics counts API operations. All methods are safe for concurrent use.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	runsEvaluated   prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRequestsTotal,
				Help: "Total number of evaluation API operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRequestDuration,
				Help:    "Histogram of evaluation API operation duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"operation"},
		),
		runsEvaluated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricRunsEvaluated,
				Help: "Total number of runs scored against qrels",
			},
		),
	}
}

func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) Observe(op, status string, seconds float64) {
	m.requestsTotal.WithLabelValues(op, status).Inc()
	m.requestDuration.WithLabelValues(op).Observe(seconds)
}

func (m *Metrics) AddRunsEvaluated(n int) {
	m.runsEvaluated.Add(float64(n))
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requestsTotal,
		m.requestDuration,
		m.runsEvaluated,
	}
}
