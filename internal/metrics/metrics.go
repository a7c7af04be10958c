// Package metrics exposes Prometheus counters and histograms for pricing work.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ivcalc"

// Operation labels.
const (
	OpPrice           = "price"
	OpImpliedVol      = "implied_volatility"
	OutcomeOK         = "ok"
	OutcomeInvalid    = "invalid_input"
	OutcomeNoConverge = "non_convergence"
	OutcomeError      = "error"
)

// Metrics is the collector set shared by the batch processor and the HTTP server.
type Metrics struct {
	// Calculations counts evaluations by operation, method and outcome.
	Calculations *prometheus.CounterVec
	// Duration tracks how long each evaluation took.
	Duration *prometheus.HistogramVec
	// BatchRecords counts records seen by batch runs.
	BatchRecords prometheus.Counter
	// HTTPRequests counts API requests by route and status.
	HTTPRequests *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is handy in tests.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Total option calculations",
		}, []string{"operation", "method", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Option calculation duration in seconds",
			Buckets:   []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2},
		}, []string{"operation", "method"}),
		BatchRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_records_total",
			Help:      "Total records processed in batches",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP API requests",
		}, []string{"route", "status"}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Calculations, m.Duration, m.BatchRecords, m.HTTPRequests} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveCalculation records one evaluation. It is a no-op on a nil receiver.
func (m *Metrics) ObserveCalculation(operation, method, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Calculations.WithLabelValues(operation, method, outcome).Inc()
	m.Duration.WithLabelValues(operation, method).Observe(elapsed.Seconds())
}

// ObserveBatch adds n to the batch record counter.
func (m *Metrics) ObserveBatch(n int) {
	if m == nil {
		return
	}
	m.BatchRecords.Add(float64(n))
}

// ObserveRequest counts one HTTP request.
func (m *Metrics) ObserveRequest(route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
}
