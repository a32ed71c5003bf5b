package metrics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeStranger-Fred/dynaprog/dp"
	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

func twoState(t *testing.T) *mdp.MDP {
	t.Helper()
	m, err := mdp.Parse([]byte(`
gamma: 0.9
tran_prob:
  a: {stay: [1, 0], go: [0, 1]}
  b: {stay: [0, 1]}
rewards:
  a: {stay: [0, 0], go: [0, 1]}
  b: {stay: [0, 1]}
`))
	require.NoError(t, err)
	return m
}

func TestCollectorObservesSolve(t *testing.T) {
	c := NewCollector(nil)
	cfg := dp.DefaultConfig()
	cfg.Observer = c

	pi, err := dp.NewPolicyIteration(twoState(t), cfg)
	require.NoError(t, err)
	res, err := pi.Solve(context.Background())
	require.NoError(t, err)

	method := string(dp.MethodPolicyIteration)
	assert.Equal(t, float64(res.Sweeps), testutil.ToFloat64(c.sweepsTotal.WithLabelValues(method)))
	assert.Equal(t, float64(res.Sweeps), testutil.ToFloat64(c.solveSweeps.WithLabelValues(method)))
	assert.Equal(t, float64(res.Improvements), testutil.ToFloat64(c.improvementsTotal.WithLabelValues(method)))
	assert.Zero(t, testutil.ToFloat64(c.policyChanges.WithLabelValues(method)))
	assert.LessOrEqual(t, testutil.ToFloat64(c.maxDelta.WithLabelValues(method)), cfg.Threshold)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.solvesTotal.WithLabelValues(method, "converged")))
}

func TestCollectorCountsNotConverged(t *testing.T) {
	c := NewCollector(nil)
	cfg := dp.DefaultConfig()
	cfg.Observer = c
	cfg.MaxSweeps = 3

	vi, err := dp.NewValueIteration(twoState(t), cfg)
	require.NoError(t, err)
	_, err = vi.Solve(context.Background())
	require.Error(t, err)

	method := string(dp.MethodValueIteration)
	assert.Equal(t, 3.0, testutil.ToFloat64(c.sweepsTotal.WithLabelValues(method)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.solvesTotal.WithLabelValues(method, "not_converged")))
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "converged"},
		{&dp.ConvergenceError{Method: dp.MethodValueIteration}, "not_converged"},
		{fmt.Errorf("stopped: %w", context.Canceled), "cancelled"},
		{context.DeadlineExceeded, "cancelled"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestWriteTextfile(t *testing.T) {
	c := NewCollector(nil)
	c.Sweep(dp.MethodValueIteration, 1, 0.25)
	c.Done(dp.MethodValueIteration, 1, nil)

	path := filepath.Join(t.TempDir(), "dynaprog.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `dynaprog_solver_sweeps_total{method="value_iteration"} 1`)
	assert.Contains(t, text, `dynaprog_solver_max_delta{method="value_iteration"} 0.25`)
	assert.Contains(t, text, `dynaprog_solver_solves_total{method="value_iteration",outcome="converged"} 1`)

	assert.Error(t, c.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
