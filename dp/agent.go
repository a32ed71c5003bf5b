package dp

import (
	"context"
	"fmt"
	"slices"

	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

// Solver is implemented by *PolicyIteration and *ValueIteration.
type Solver interface {
	Solve(ctx context.Context) (*Result, error)
	History() []ValueTable
}

// New returns the solver for method.
func New(method Method, m *mdp.MDP, cfg Config) (Solver, error) {
	switch method {
	case MethodPolicyIteration:
		return NewPolicyIteration(m, cfg)
	case MethodValueIteration:
		return NewValueIteration(m, cfg)
	}
	return nil, fmt.Errorf("dp: unknown method %q", method)
}

// Result is what a solver hands back. History entries are shared with the
// solver and must be treated as read-only.
type Result struct {
	Method       Method
	Policy       PolicyTable
	Values       ValueTable
	Q            QTable
	History      []ValueTable
	Sweeps       int
	Improvements int
}

// Actions returns the greedy action of every non-terminal state.
func (r *Result) Actions(m *mdp.MDP) map[mdp.State]mdp.Action {
	return r.Policy.Actions(m)
}

// agent owns the v, q and pi tables and the history of one solver.
type agent struct {
	model   *mdp.MDP
	cfg     Config
	method  Method
	v       ValueTable
	q       QTable
	pi      PolicyTable
	history []ValueTable
	sweeps  int
}

func newAgent(m *mdp.MDP, cfg Config, method Method) (*agent, error) {
	if m == nil {
		return nil, fmt.Errorf("dp: nil model")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	v := NewValueTable(m)
	return &agent{
		model:   m,
		cfg:     cfg.withDefaults(),
		method:  method,
		v:       v,
		q:       QFromV(m, v),
		pi:      UniformPolicy(m),
		history: []ValueTable{v},
	}, nil
}

// sweepUntilStable applies backup to the current values until NotConverged
// says stop, appending every new table to the history.
func (ag *agent) sweepUntilStable(ctx context.Context, backup func(ValueTable) ValueTable) error {
	log := ag.cfg.Logger
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s interrupted after %d sweeps: %w", ag.method, ag.sweeps, err)
		}
		next := backup(ag.v)
		delta := MaxDelta(ag.v, next)
		cont := delta > ag.cfg.Threshold

		ag.sweeps++
		ag.history = append(ag.history, next)
		ag.v = next
		ag.cfg.Observer.Sweep(ag.method, ag.sweeps, delta)
		log.Debug("sweep", "method", ag.method, "sweep", ag.sweeps, "max_delta", delta)

		if !cont {
			return nil
		}
		if ag.cfg.MaxSweeps > 0 && ag.sweeps >= ag.cfg.MaxSweeps {
			return &ConvergenceError{
				Method:    ag.method,
				Sweeps:    ag.sweeps,
				MaxDelta:  delta,
				Threshold: ag.cfg.Threshold,
			}
		}
	}
}

func (ag *agent) improve() PolicyTable {
	ag.q = QFromV(ag.model, ag.v)
	return GreedyFromQ(ag.q, ag.cfg.TieTolerance)
}

func (ag *agent) finish(err error) {
	ag.cfg.Observer.Done(ag.method, ag.sweeps, err)
	if err != nil {
		ag.cfg.Logger.Warn("solver stopped", "method", ag.method, "sweeps", ag.sweeps, "error", err)
		return
	}
	ag.cfg.Logger.Info("solver converged", "method", ag.method, "sweeps", ag.sweeps, "history", len(ag.history))
}

func (ag *agent) result(improvements int) *Result {
	return &Result{
		Method:       ag.method,
		Policy:       ag.pi.Clone(),
		Values:       ag.v.Clone(),
		Q:            slices.Clone(ag.q),
		History:      slices.Clone(ag.history),
		Sweeps:       ag.sweeps,
		Improvements: improvements,
	}
}

func (ag *agent) History() []ValueTable {
	return slices.Clone(ag.history)
}

func (ag *agent) Values() ValueTable {
	return ag.v.Clone()
}

func (ag *agent) Policy() PolicyTable {
	return ag.pi.Clone()
}
