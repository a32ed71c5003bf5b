// Package mdp holds an immutable, validated model of a finite Markov decision
// process: a canonically ordered state set, per-state action lists, transition
// probabilities over the full state set and rewards keyed by
// (state, action, successor).
//
// States are ordered as they appear in the definition; actions are ordered per
// state the same way. Solvers index the model by those positions. A state with
// no actions is a terminal sink.
//
// An *MDP is never mutated after New returns and can be shared by any number of
// readers.
package mdp

import "slices"

type State string

type Action string

type Reward float64

type Probability float64

// ProbabilityTolerance bounds how far a transition row may sum away from 1.
const ProbabilityTolerance = 1e-9

// Outcome is one entry of a transition distribution.
type Outcome struct {
	State       State
	Probability Probability
}

type MDP struct {
	gamma   float64
	states  []State
	index   map[State]int
	actions [][]Action
	aindex  []map[Action]int
	// trans[s][a][s'] and rewards[s][a][s'] use canonical indices.
	trans   [][][]float64
	rewards [][][]float64
}

func (m *MDP) Gamma() float64 {
	return m.gamma
}

// States returns the states in canonical order.
func (m *MDP) States() []State {
	return slices.Clone(m.states)
}

// Actions returns the actions available at s in canonical order. Terminal
// states return an empty slice.
func (m *MDP) Actions(s State) ([]Action, error) {
	i, err := m.lookupState("Actions", s)
	if err != nil {
		return nil, err
	}
	return slices.Clone(m.actions[i]), nil
}

// T returns the distribution over every state, zero-probability successors
// included, for taking a in s.
func (m *MDP) T(s State, a Action) ([]Outcome, error) {
	i, j, err := m.lookup("T", s, a)
	if err != nil {
		return nil, err
	}
	out := make([]Outcome, len(m.states))
	for k, p := range m.trans[i][j] {
		out[k] = Outcome{State: m.states[k], Probability: Probability(p)}
	}
	return out, nil
}

func (m *MDP) R(s State, a Action, next State) (Reward, error) {
	i, j, err := m.lookup("R", s, a)
	if err != nil {
		return 0, err
	}
	k, ok := m.index[next]
	if !ok {
		return 0, &QueryError{Op: "R", State: next, Err: ErrUnknownState}
	}
	return Reward(m.rewards[i][j][k]), nil
}

func (m *MDP) IsTerminal(s State) (bool, error) {
	i, err := m.lookupState("IsTerminal", s)
	if err != nil {
		return false, err
	}
	return len(m.actions[i]) == 0, nil
}

func (m *MDP) StateIndex(s State) (int, error) {
	return m.lookupState("StateIndex", s)
}

func (m *MDP) ActionIndex(s State, a Action) (int, error) {
	_, j, err := m.lookup("ActionIndex", s, a)
	return j, err
}

// Index-level accessors. They take canonical positions and panic when out of
// range, like slice indexing.

func (m *MDP) NumStates() int {
	return len(m.states)
}

func (m *MDP) NumActions(s int) int {
	return len(m.actions[s])
}

func (m *MDP) StateAt(s int) State {
	return m.states[s]
}

func (m *MDP) ActionAt(s, a int) Action {
	return m.actions[s][a]
}

func (m *MDP) ProbAt(s, a, next int) float64 {
	return m.trans[s][a][next]
}

func (m *MDP) RewardAt(s, a, next int) float64 {
	return m.rewards[s][a][next]
}

func (m *MDP) lookupState(op string, s State) (int, error) {
	i, ok := m.index[s]
	if !ok {
		return 0, &QueryError{Op: op, State: s, Err: ErrUnknownState}
	}
	return i, nil
}

func (m *MDP) lookup(op string, s State, a Action) (int, int, error) {
	i, err := m.lookupState(op, s)
	if err != nil {
		return 0, 0, err
	}
	j, ok := m.aindex[i][a]
	if !ok {
		return 0, 0, &QueryError{Op: op, State: s, Action: a, Err: ErrUnknownAction}
	}
	return i, j, nil
}
