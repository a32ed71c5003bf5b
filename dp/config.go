package dp

import (
	"fmt"
	"log/slog"
	"math"
)

// Method names a solver.
type Method string

const (
	MethodPolicyIteration Method = "policy_iteration"
	MethodValueIteration  Method = "value_iteration"
)

// ParseMethod accepts the long names and the short forms "pi" and "vi".
func ParseMethod(s string) (Method, error) {
	switch s {
	case "pi", string(MethodPolicyIteration):
		return MethodPolicyIteration, nil
	case "vi", string(MethodValueIteration):
		return MethodValueIteration, nil
	}
	return "", fmt.Errorf("unknown solver method %q (want pi or vi)", s)
}

type Config struct {
	// Threshold is the largest per-state change between sweeps that still
	// counts as converged.
	Threshold float64

	// TieTolerance widens the argmax in greedy improvement; see GreedyFromQ.
	TieTolerance float64

	// MaxSweeps caps the total number of backups a solver runs. Zero means
	// no cap.
	MaxSweeps int

	Observer Observer
	Logger   *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Threshold:    DefaultThreshold,
		TieTolerance: DefaultTieTolerance,
	}
}

func (c Config) validate() error {
	switch {
	case math.IsNaN(c.Threshold) || c.Threshold < 0:
		return fmt.Errorf("dp: threshold %v must be a non-negative number", c.Threshold)
	case math.IsNaN(c.TieTolerance) || c.TieTolerance < 0:
		return fmt.Errorf("dp: tie tolerance %v must be a non-negative number", c.TieTolerance)
	case c.MaxSweeps < 0:
		return fmt.Errorf("dp: max sweeps %d must not be negative", c.MaxSweeps)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Observer == nil {
		c.Observer = nopObserver{}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Observer receives progress from a running solver. Calls happen on the
// solving goroutine.
type Observer interface {
	// Sweep is called after every backup sweep with the running sweep count.
	Sweep(method Method, sweep int, maxDelta float64)
	// Improvement is called after each greedy improvement of policy
	// iteration with the number of states whose action changed.
	Improvement(method Method, round int, changed int)
	// Done is called once when Solve returns.
	Done(method Method, sweeps int, err error)
}

type nopObserver struct{}

func (nopObserver) Sweep(Method, int, float64)   {}
func (nopObserver) Improvement(Method, int, int) {}
func (nopObserver) Done(Method, int, error)      {}

// ConvergenceError is returned when a solver hits Config.MaxSweeps before the
// value function settles.
type ConvergenceError struct {
	Method    Method
	Sweeps    int
	MaxDelta  float64
	Threshold float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s did not converge after %d sweeps: max delta %g > threshold %g",
		e.Method, e.Sweeps, e.MaxDelta, e.Threshold)
}
