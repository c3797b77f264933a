// Package metrics exposes the service's Prometheus instrumentation:
// per-method request counters, per-lane queue-depth gauges, and
// reconciler tick counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	LabelMethod  = "method"
	LabelOutcome = "outcome"
	LabelLane    = "lane"

	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	laneQueueDepth  *prometheus.GaugeVec
	reconcileTotal  *prometheus.CounterVec

	registered bool
}

// New creates and, if registry is non-nil, registers the service's
// metrics. A nil registry builds unregistered collectors, useful in
// tests that don't want a shared default registry.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wsd",
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total JSON-RPC requests handled, by method and outcome",
			},
			[]string{LabelMethod, LabelOutcome},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "wsd",
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "JSON-RPC request handling time, by method",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{LabelMethod},
		),
		laneQueueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "wsd",
				Subsystem: "lane",
				Name:      "queue_depth",
				Help:      "Number of jobs currently queued on a concurrency lane",
			},
			[]string{LabelLane},
		),
		reconcileTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wsd",
				Subsystem: "reconciler",
				Name:      "ticks_total",
				Help:      "Total pending-upload reconciler poll ticks, by outcome",
			},
			[]string{LabelOutcome},
		),
	}

	if registry != nil {
		registry.MustRegister(m.requestTotal, m.requestDuration, m.laneQueueDepth, m.reconcileTotal)
		m.registered = true
	}
	return m
}

// ObserveRequest records one JSON-RPC request's outcome and duration.
func (m *Metrics) ObserveRequest(method string, success bool, seconds float64) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeError
	}
	m.requestTotal.WithLabelValues(method, outcome).Inc()
	m.requestDuration.WithLabelValues(method).Observe(seconds)
}

// SetLaneQueueDepth publishes a lane's current queue depth.
func (m *Metrics) SetLaneQueueDepth(lane string, depth int) {
	m.laneQueueDepth.WithLabelValues(lane).Set(float64(depth))
}

// ObserveReconcileTick records a reconciler poll tick's outcome.
func (m *Metrics) ObserveReconcileTick(success bool) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeError
	}
	m.reconcileTotal.WithLabelValues(outcome).Inc()
}
