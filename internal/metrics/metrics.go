// Package metrics exposes Prometheus instrumentation for solve runs, in the
// same collector-plus-global-registry shape the rest of the stack's
// dependency pack uses for optional metrics: a nil Registry means metrics
// are disabled and every Record call becomes a no-op.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "berthplan"
	subsystem = "solver"
)

var (
	// Registry is the global Prometheus registry. Left nil until InitRegistry
	// is called, so a berthplan binary that never wires a /metrics endpoint
	// pays no instrumentation cost.
	Registry *prometheus.Registry

	global *SolveCollector
)

// InitRegistry creates the global registry and the solve collector, and
// registers the collector's metrics with it. Call once at startup before any
// Record* call, typically gated behind a --metrics flag.
func InitRegistry() error {
	Registry = prometheus.NewRegistry()
	global = NewSolveCollector()
	return global.Register(Registry)
}

// IsEnabled reports whether InitRegistry has run.
func IsEnabled() bool {
	return Registry != nil
}

// SolveCollector holds every metric emitted by one solve driver.
type SolveCollector struct {
	attemptsTotal *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	objectiveValue *prometheus.HistogramVec
	vesselsPlanned prometheus.Counter
	nodesExplored prometheus.Histogram
}

// NewSolveCollector builds a collector; call Register before recording.
func NewSolveCollector() *SolveCollector {
	return &SolveCollector{
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "attempts_total",
				Help:      "Total number of solve attempts by final status",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "duration_seconds",
				Help:      "Wall-clock time spent inside the fdsolver search, by final status",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"status"},
		),
		objectiveValue: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "objective_value",
				Help:      "Objective value of solutions returned, by status",
				Buckets:   prometheus.ExponentialBuckets(100, 4, 10),
			},
			[]string{"status"},
		),
		vesselsPlanned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "vessels_planned_total",
				Help:      "Total number of vessel assignments extracted from OPTIMAL/FEASIBLE solutions",
			},
		),
		nodesExplored: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "search_nodes_explored",
				Help:      "Search tree nodes explored per solve attempt",
				Buckets:   prometheus.ExponentialBuckets(10, 4, 10),
			},
		),
	}
}

// Register registers every metric in c with reg.
func (c *SolveCollector) Register(reg *prometheus.Registry) error {
	collectors := []prometheus.Collector{
		c.attemptsTotal,
		c.duration,
		c.objectiveValue,
		c.vesselsPlanned,
		c.nodesExplored,
	}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// RecordAttempt records one completed solve attempt: its terminal status,
// how long the search ran, the objective value of the returned solution (if
// any), how many vessels it assigned, and how many search nodes the monitor
// counted.
func (c *SolveCollector) RecordAttempt(status string, d time.Duration, objectiveValue int, vesselsPlanned int, nodesExplored int64) {
	c.attemptsTotal.WithLabelValues(status).Inc()
	c.duration.WithLabelValues(status).Observe(d.Seconds())
	if vesselsPlanned > 0 {
		c.objectiveValue.WithLabelValues(status).Observe(float64(objectiveValue))
		c.vesselsPlanned.Add(float64(vesselsPlanned))
	}
	c.nodesExplored.Observe(float64(nodesExplored))
}

// RecordAttempt records against the global collector. It is a no-op until
// InitRegistry has run.
func RecordAttempt(status string, d time.Duration, objectiveValue int, vesselsPlanned int, nodesExplored int64) {
	if global == nil {
		return
	}
	global.RecordAttempt(status, d, objectiveValue, vesselsPlanned, nodesExplored)
}
