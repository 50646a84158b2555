package refsync

import "github.com/prometheus/client_golang/prometheus"

const (
	metricsNamespace = "contextref"
	metricsSubsystem = "refsync"
)

// Patch outcomes.
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// Move outcomes.
const (
	moveCompleted = "completed"
	moveAborted   = "aborted"
	moveDiverged  = "diverged"
)

// Metrics counts parent patches and move outcomes. A nil *Metrics records
// nothing.
type Metrics struct {
	patches *prometheus.CounterVec
	moves   *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		patches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "patches_total",
				Help:      "Back-reference patches issued against parent documents.",
			},
			[]string{"operation", "outcome"},
		),
		moves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "moves_total",
				Help:      "Context moves by final outcome.",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.patches, m.moves)
	}
	return m
}

func (m *Metrics) patch(op Operation, outcome string) {
	if m == nil {
		return
	}
	m.patches.WithLabelValues(op.String(), outcome).Inc()
}

func (m *Metrics) move(outcome string) {
	if m == nil {
		return
	}
	m.moves.WithLabelValues(outcome).Inc()
}
