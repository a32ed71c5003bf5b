// Package sim samples episodes from a solved policy on a known model. It is a
// check on solver output, not a learner: nothing here updates a policy.
package sim

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"

	"github.com/CodeStranger-Fred/dynaprog/dp"
	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

type Transition struct {
	State0 mdp.State
	Action mdp.Action
	State1 mdp.State
	Reward mdp.Reward
}

type Episode struct {
	History []Transition
	// Return is the discounted sum of rewards.
	Return     float64
	Terminated bool
}

func (e *Episode) step(t Transition) {
	e.History = append(e.History, t)
}

// Rollout follows pi from start for at most horizon steps, stopping early at
// a terminal state.
func Rollout(m *mdp.MDP, pi dp.PolicyTable, start mdp.State, horizon int, rng *rand.Rand) (Episode, error) {
	s, err := m.StateIndex(start)
	if err != nil {
		return Episode{}, err
	}
	if len(pi) != m.NumStates() {
		return Episode{}, fmt.Errorf("sim: policy covers %d states, model has %d", len(pi), m.NumStates())
	}

	var ep Episode
	discount := 1.0
	for t := 0; t < horizon; t++ {
		n := m.NumActions(s)
		if n == 0 {
			ep.Terminated = true
			return ep, nil
		}
		apdf := actionPdf(pi[s])
		if len(pi[s]) != n {
			return ep, fmt.Errorf("sim: policy row for state %q has %d entries, want %d", m.StateAt(s), len(pi[s]), n)
		}
		if err := apdf.Check(); err != nil {
			return ep, fmt.Errorf("policy row for state %q: %w", m.StateAt(s), err)
		}
		a := apdf.Choose(rng)
		next := successorPdf(m, s, a).Choose(rng)
		r := m.RewardAt(s, a, next)

		ep.step(Transition{
			State0: m.StateAt(s),
			Action: m.ActionAt(s, a),
			State1: m.StateAt(next),
			Reward: mdp.Reward(r),
		})
		ep.Return += discount * r
		discount *= m.Gamma()
		s = next
	}
	ep.Terminated = m.NumActions(s) == 0
	return ep, nil
}

func actionPdf(row []float64) DiscretePdf[int] {
	pdf := DiscretePdf[int]{Outcomes: make([]int, len(row)), Probs: row}
	for a := range row {
		pdf.Outcomes[a] = a
	}
	return pdf
}

func successorPdf(m *mdp.MDP, s, a int) DiscretePdf[int] {
	n := m.NumStates()
	pdf := DiscretePdf[int]{Outcomes: make([]int, n), Probs: make([]float64, n)}
	for next := 0; next < n; next++ {
		pdf.Outcomes[next] = next
		pdf.Probs[next] = m.ProbAt(s, a, next)
	}
	return pdf
}

type Config struct {
	Episodes int
	Horizon  int
	Seed     uint64
}

type Stats struct {
	Episodes   int
	Terminated int
	MeanReturn float64
	StdDev     float64
	// StdErr is the standard error of MeanReturn.
	StdErr float64
}

// Evaluate estimates the expected discounted return of pi from start by
// averaging cfg.Episodes independent rollouts.
func Evaluate(m *mdp.MDP, pi dp.PolicyTable, start mdp.State, cfg Config) (Stats, error) {
	if cfg.Episodes < 1 || cfg.Horizon < 1 {
		return Stats{}, fmt.Errorf("sim: need at least one episode and one step, got %d and %d", cfg.Episodes, cfg.Horizon)
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	returns := make([]float64, cfg.Episodes)
	stats := Stats{Episodes: cfg.Episodes}
	for i := range returns {
		ep, err := Rollout(m, pi, start, cfg.Horizon, rng)
		if err != nil {
			return Stats{}, err
		}
		returns[i] = ep.Return
		if ep.Terminated {
			stats.Terminated++
		}
	}
	stats.MeanReturn, stats.StdDev = stat.MeanStdDev(returns, nil)
	if cfg.Episodes == 1 {
		stats.StdDev = 0
	}
	stats.StdErr = stats.StdDev / math.Sqrt(float64(cfg.Episodes))
	return stats, nil
}
