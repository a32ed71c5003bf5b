package dp

import (
	"slices"

	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

// ValueTable holds v(s) at the model's canonical state index.
type ValueTable []float64

// QTable holds q(s, a) by canonical state index, then canonical action index.
type QTable [][]float64

// PolicyTable holds pi(s, a) with the same shape as QTable. Rows of terminal
// states are empty; every other row sums to 1.
type PolicyTable [][]float64

func NewValueTable(m *mdp.MDP) ValueTable {
	return make(ValueTable, m.NumStates())
}

func (v ValueTable) Clone() ValueTable {
	return slices.Clone(v)
}

func (v ValueTable) ByState(m *mdp.MDP) map[mdp.State]float64 {
	out := make(map[mdp.State]float64, len(v))
	for s, val := range v {
		out[m.StateAt(s)] = val
	}
	return out
}

func (q QTable) ByState(m *mdp.MDP) map[mdp.State]map[mdp.Action]float64 {
	return byState(m, q)
}

func (pi PolicyTable) Clone() PolicyTable {
	out := make(PolicyTable, len(pi))
	for s, row := range pi {
		out[s] = slices.Clone(row)
	}
	return out
}

// Equal reports whether both tables assign identical probabilities everywhere.
func (pi PolicyTable) Equal(other PolicyTable) bool {
	return pi.Changed(other) == 0
}

// Changed counts the states whose rows differ between pi and other.
func (pi PolicyTable) Changed(other PolicyTable) int {
	n := 0
	for s := range pi {
		if s >= len(other) || !slices.Equal(pi[s], other[s]) {
			n++
		}
	}
	return n + max(0, len(other)-len(pi))
}

// Best returns the canonical index of the most probable action in state s,
// the lowest index on ties, or -1 for a terminal state.
func (pi PolicyTable) Best(s int) int {
	best := -1
	for a, p := range pi[s] {
		if best < 0 || p > pi[s][best] {
			best = a
		}
	}
	return best
}

// Actions maps every non-terminal state to its most probable action.
func (pi PolicyTable) Actions(m *mdp.MDP) map[mdp.State]mdp.Action {
	out := make(map[mdp.State]mdp.Action, len(pi))
	for s := range pi {
		if a := pi.Best(s); a >= 0 {
			out[m.StateAt(s)] = m.ActionAt(s, a)
		}
	}
	return out
}

func (pi PolicyTable) ByState(m *mdp.MDP) map[mdp.State]map[mdp.Action]float64 {
	return byState(m, pi)
}

func byState(m *mdp.MDP, t [][]float64) map[mdp.State]map[mdp.Action]float64 {
	out := make(map[mdp.State]map[mdp.Action]float64, len(t))
	for s, row := range t {
		r := make(map[mdp.Action]float64, len(row))
		for a, val := range row {
			r[m.ActionAt(s, a)] = val
		}
		out[m.StateAt(s)] = r
	}
	return out
}
