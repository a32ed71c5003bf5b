package mdp

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

// New validates def and builds an immutable model from it. Any violation is
// reported as a *ConfigurationError and no model is returned.
func New(def Definition) (*MDP, error) {
	if math.IsNaN(def.Gamma) || def.Gamma < 0 || def.Gamma > 1 {
		return nil, configErrorf("gamma", "discount factor %v outside [0,1]", def.Gamma)
	}
	n := len(def.States)
	if n == 0 {
		return nil, configErrorf("tran_prob", "no states defined")
	}

	m := &MDP{
		gamma:   def.Gamma,
		states:  make([]State, n),
		index:   make(map[State]int, n),
		actions: make([][]Action, n),
		aindex:  make([]map[Action]int, n),
		trans:   make([][][]float64, n),
		rewards: make([][][]float64, n),
	}
	for i, sd := range def.States {
		if _, dup := m.index[sd.ID]; dup {
			return nil, configErrorf("tran_prob["+string(sd.ID)+"]", "duplicate state")
		}
		m.states[i] = sd.ID
		m.index[sd.ID] = i
	}

	for i, sd := range def.States {
		m.actions[i] = make([]Action, len(sd.Actions))
		m.aindex[i] = make(map[Action]int, len(sd.Actions))
		m.trans[i] = make([][]float64, len(sd.Actions))
		m.rewards[i] = make([][]float64, len(sd.Actions))
		for j, ad := range sd.Actions {
			if _, dup := m.aindex[i][ad.ID]; dup {
				return nil, configErrorf(field("tran_prob", sd.ID, ad.ID), "duplicate action")
			}
			if err := checkTransitions(sd.ID, ad, n); err != nil {
				return nil, err
			}
			if err := checkRewards(sd.ID, ad, n); err != nil {
				return nil, err
			}
			m.actions[i][j] = ad.ID
			m.aindex[i][ad.ID] = j
			m.trans[i][j] = slices.Clone(ad.Transitions)
			m.rewards[i][j] = slices.Clone(ad.Rewards)
		}
	}
	return m, nil
}

func checkTransitions(s State, ad ActionDefinition, n int) error {
	f := field("tran_prob", s, ad.ID)
	if len(ad.Transitions) != n {
		return configErrorf(f, "expected %d successor probabilities, got %d", n, len(ad.Transitions))
	}
	for k, p := range ad.Transitions {
		if math.IsNaN(p) || p < 0 {
			return configErrorf(f, "probability %v at position %d is not a valid probability", p, k)
		}
	}
	sum := floats.Sum(ad.Transitions)
	if !scalar.EqualWithinAbs(sum, 1, ProbabilityTolerance) {
		return configErrorf(f, "transition probabilities sum to %v, want 1", sum)
	}
	return nil
}

func checkRewards(s State, ad ActionDefinition, n int) error {
	f := field("rewards", s, ad.ID)
	if len(ad.Rewards) != n {
		return configErrorf(f, "expected %d rewards, got %d", n, len(ad.Rewards))
	}
	for k, r := range ad.Rewards {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return configErrorf(f, "reward %v at position %d is not finite", r, k)
		}
	}
	return nil
}

func field(root string, s State, a Action) string {
	return root + "[" + string(s) + "][" + string(a) + "]"
}

// Definition returns a deep copy of the definition the model was built from.
func (m *MDP) Definition() Definition {
	def := Definition{
		Gamma:  m.gamma,
		States: make([]StateDefinition, len(m.states)),
	}
	for i, s := range m.states {
		sd := StateDefinition{ID: s, Actions: make([]ActionDefinition, len(m.actions[i]))}
		for j, a := range m.actions[i] {
			sd.Actions[j] = ActionDefinition{
				ID:          a,
				Transitions: slices.Clone(m.trans[i][j]),
				Rewards:     slices.Clone(m.rewards[i][j]),
			}
		}
		def.States[i] = sd
	}
	return def
}
