// Package gridworld generates stochastic windy gridworld MDPs.
//
// Cells are numbered row-major from the top-left corner and named by that
// number ("0", "1", ...). The top-left and bottom-right cells are terminal.
// Every move costs -1. After a move the wind in the destination column pushes
// the agent up by BaseWind, BaseWind+1 or not at all, with probabilities
// Wind1, Wind2 and Wind0.
package gridworld

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

var Actions = []mdp.Action{"left", "right", "up", "down"}

const StepReward = -1.0

type StochasticWindyGridWorld struct {
	Rows     int
	Cols     int
	BaseWind []int
	Wind0    float64
	Wind1    float64
	Wind2    float64
}

func (w StochasticWindyGridWorld) Check() error {
	if w.Rows < 1 || w.Cols < 1 || w.Rows*w.Cols < 2 {
		return fmt.Errorf("gridworld: %dx%d grid needs at least two cells", w.Rows, w.Cols)
	}
	if len(w.BaseWind) != w.Cols {
		return fmt.Errorf("gridworld: %d base wind values for %d columns", len(w.BaseWind), w.Cols)
	}
	for c, b := range w.BaseWind {
		if b < 0 {
			return fmt.Errorf("gridworld: negative wind %d in column %d", b, c)
		}
	}
	probs := []float64{w.Wind0, w.Wind1, w.Wind2}
	for _, p := range probs {
		if math.IsNaN(p) || p < 0 {
			return fmt.Errorf("gridworld: bad wind probability %v", p)
		}
	}
	if !scalar.EqualWithinAbs(floats.Sum(probs), 1, mdp.ProbabilityTolerance) {
		return fmt.Errorf("gridworld: wind probabilities sum to %v, want 1", floats.Sum(probs))
	}
	return nil
}

// Definition builds the MDP definition with discount gamma.
func (w StochasticWindyGridWorld) Definition(gamma float64) (mdp.Definition, error) {
	if err := w.Check(); err != nil {
		return mdp.Definition{}, err
	}
	n := w.Rows * w.Cols
	def := mdp.Definition{Gamma: gamma, States: make([]mdp.StateDefinition, n)}
	for s := 0; s < n; s++ {
		sd := mdp.StateDefinition{ID: w.State(w.coordinates(s))}
		if !w.IsTerminal(s) {
			for _, a := range Actions {
				sd.Actions = append(sd.Actions, mdp.ActionDefinition{
					ID:          a,
					Transitions: w.transition(s, a),
					Rewards:     constant(n, StepReward),
				})
			}
		}
		def.States[s] = sd
	}
	return def, nil
}

func (w StochasticWindyGridWorld) MDP(gamma float64) (*mdp.MDP, error) {
	def, err := w.Definition(gamma)
	if err != nil {
		return nil, err
	}
	return mdp.New(def)
}

func (w StochasticWindyGridWorld) IsTerminal(s int) bool {
	return s == 0 || s == w.Rows*w.Cols-1
}

func (w StochasticWindyGridWorld) State(r, c int) mdp.State {
	return mdp.State(strconv.Itoa(r*w.Cols + c))
}

func (w StochasticWindyGridWorld) transition(s int, a mdp.Action) []float64 {
	p := make([]float64, w.Rows*w.Cols)
	r1, c1 := w.shift(s, a)
	wind := w.BaseWind[c1]
	p[w.index(r1, c1)] += w.Wind0
	p[w.index(w.clipRow(r1-wind), c1)] += w.Wind1
	p[w.index(w.clipRow(r1-wind-1), c1)] += w.Wind2
	return p
}

func (w StochasticWindyGridWorld) shift(s int, a mdp.Action) (int, int) {
	r, c := w.coordinates(s)
	switch a {
	case "up":
		r--
	case "down":
		r++
	case "right":
		c++
	case "left":
		c--
	}
	return w.clipRow(r), w.clipCol(c)
}

func (w StochasticWindyGridWorld) coordinates(s int) (int, int) {
	return s / w.Cols, s % w.Cols
}

func (w StochasticWindyGridWorld) index(r, c int) int {
	return r*w.Cols + c
}

func (w StochasticWindyGridWorld) clipRow(r int) int {
	return min(max(r, 0), w.Rows-1)
}

func (w StochasticWindyGridWorld) clipCol(c int) int {
	return min(max(c, 0), w.Cols-1)
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
