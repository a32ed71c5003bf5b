// Package metrics exposes solver progress as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/CodeStranger-Fred/dynaprog/dp"
)

const namespace = "dynaprog"

// Collector implements dp.Observer on top of a Prometheus registry. It is
// safe to share between solvers running concurrently.
type Collector struct {
	registry *prometheus.Registry

	sweepsTotal       *prometheus.CounterVec
	maxDelta          *prometheus.GaugeVec
	improvementsTotal *prometheus.CounterVec
	policyChanges     *prometheus.GaugeVec
	solveSweeps       *prometheus.GaugeVec
	solvesTotal       *prometheus.CounterVec
}

var _ dp.Observer = (*Collector)(nil)

// NewCollector registers the solver metrics on registry. A nil registry gets
// a fresh one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		sweepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "sweeps_total",
			Help:      "Backup sweeps performed over all states.",
		}, []string{"method"}),
		maxDelta: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "max_delta",
			Help:      "Max-norm value change of the latest sweep.",
		}, []string{"method"}),
		improvementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "improvements_total",
			Help:      "Greedy policy improvement rounds.",
		}, []string{"method"}),
		policyChanges: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "policy_changes",
			Help:      "States whose greedy action changed in the latest improvement.",
		}, []string{"method"}),
		solveSweeps: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "solve_sweeps",
			Help:      "Sweeps taken by the latest completed solve.",
		}, []string{"method"}),
		solvesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "solves_total",
			Help:      "Completed solves by outcome.",
		}, []string{"method", "outcome"}),
	}

	registry.MustRegister(
		c.sweepsTotal,
		c.maxDelta,
		c.improvementsTotal,
		c.policyChanges,
		c.solveSweeps,
		c.solvesTotal,
	)
	return c
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Sweep(method dp.Method, _ int, maxDelta float64) {
	c.sweepsTotal.WithLabelValues(string(method)).Inc()
	c.maxDelta.WithLabelValues(string(method)).Set(maxDelta)
}

func (c *Collector) Improvement(method dp.Method, _ int, changed int) {
	c.improvementsTotal.WithLabelValues(string(method)).Inc()
	c.policyChanges.WithLabelValues(string(method)).Set(float64(changed))
}

func (c *Collector) Done(method dp.Method, sweeps int, err error) {
	c.solveSweeps.WithLabelValues(string(method)).Set(float64(sweeps))
	c.solvesTotal.WithLabelValues(string(method), Outcome(err)).Inc()
}

// Outcome classifies the error returned by a solve.
func Outcome(err error) string {
	var cerr *dp.ConvergenceError
	switch {
	case err == nil:
		return "converged"
	case errors.As(err, &cerr):
		return "not_converged"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

// WriteTextfile writes every registered metric to path in the Prometheus
// text format, for pickup by a node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}
