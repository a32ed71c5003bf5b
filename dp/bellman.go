package dp

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

const (
	DefaultThreshold    = 1e-6
	DefaultTieTolerance = 1e-9
)

// UniformPolicy gives each of the n actions of a state probability 1/n.
// Terminal states get an empty row.
func UniformPolicy(m *mdp.MDP) PolicyTable {
	pi := make(PolicyTable, m.NumStates())
	for s := range pi {
		n := m.NumActions(s)
		pi[s] = make([]float64, n)
		for a := range pi[s] {
			pi[s][a] = 1 / float64(n)
		}
	}
	return pi
}

// QFromV is the one-step expectation backup
//
//	q(s,a) = sum_s' P(s,a,s') * (R(s,a,s') + gamma*v(s'))
//
// It returns a fresh table and does not modify v.
func QFromV(m *mdp.MDP, v ValueTable) QTable {
	q := make(QTable, m.NumStates())
	for s := range q {
		q[s] = make([]float64, m.NumActions(s))
		for a := range q[s] {
			q[s][a] = actionValue(m, v, s, a)
		}
	}
	return q
}

func actionValue(m *mdp.MDP, v ValueTable, s, a int) float64 {
	gamma := m.Gamma()
	var total float64
	for next := range v {
		p := m.ProbAt(s, a, next)
		if p == 0 {
			continue
		}
		total += p * (m.RewardAt(s, a, next) + gamma*v[next])
	}
	return total
}

// GreedyPolicy derives the deterministic greedy policy with respect to v.
// See GreedyFromQ for the tie rule.
func GreedyPolicy(m *mdp.MDP, v ValueTable, tieTolerance float64) PolicyTable {
	return GreedyFromQ(QFromV(m, v), tieTolerance)
}

// GreedyFromQ puts probability 1 on the lowest-indexed action whose q-value
// is within tieTolerance of the row maximum.
func GreedyFromQ(q QTable, tieTolerance float64) PolicyTable {
	pi := make(PolicyTable, len(q))
	for s, row := range q {
		pi[s] = make([]float64, len(row))
		if len(row) == 0 {
			continue
		}
		best := floats.Max(row)
		for a, val := range row {
			if val >= best-tieTolerance {
				pi[s][a] = 1
				break
			}
		}
	}
	return pi
}

// MaxDelta returns max_s |next(s) - v(s)|.
func MaxDelta(v, next ValueTable) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Distance(next, v, math.Inf(1))
}

// NotConverged reports whether another sweep is needed: true when some state
// moved by more than threshold between v and next.
func NotConverged(v, next ValueTable, threshold float64) bool {
	return MaxDelta(v, next) > threshold
}

// ExpectationBackup performs one synchronous sweep of the fixed-policy backup
//
//	v'(s) = sum_a pi(s,a) * q(s,a)
//
// Terminal states stay at 0.
func ExpectationBackup(m *mdp.MDP, v ValueTable, pi PolicyTable) ValueTable {
	next := make(ValueTable, len(v))
	for s := range next {
		for a, p := range pi[s] {
			if p == 0 {
				continue
			}
			next[s] += p * actionValue(m, v, s, a)
		}
	}
	return next
}

// OptimalityBackup performs one synchronous sweep of
//
//	v'(s) = max_a q(s,a)
//
// Terminal states stay at 0.
func OptimalityBackup(m *mdp.MDP, v ValueTable) ValueTable {
	next := make(ValueTable, len(v))
	for s := range next {
		n := m.NumActions(s)
		if n == 0 {
			continue
		}
		best := math.Inf(-1)
		for a := 0; a < n; a++ {
			best = max(best, actionValue(m, v, s, a))
		}
		next[s] = best
	}
	return next
}
