package gridworld

import (
	"bytes"
	"strings"
	"testing"

	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

func TestCheck(t *testing.T) {
	ok := StochasticWindyGridWorld{Rows: 2, Cols: 3, BaseWind: []int{0, 1, 0}, Wind0: 0.2, Wind1: 0.7, Wind2: 0.1}
	require.NoError(t, ok.Check())
	ok.Wind2 += 5e-10
	require.NoError(t, ok.Check())

	bad := []StochasticWindyGridWorld{
		{Rows: 1, Cols: 1, BaseWind: []int{0}, Wind0: 1},
		{Rows: 2, Cols: 3, BaseWind: []int{0, 1}, Wind0: 1},
		{Rows: 2, Cols: 2, BaseWind: []int{0, -1}, Wind0: 1},
		{Rows: 2, Cols: 2, BaseWind: []int{0, 0}, Wind0: 0.5, Wind1: 0.4},
		{Rows: 2, Cols: 2, BaseWind: []int{0, 0}, Wind0: 1.5, Wind1: -0.5},
		{Rows: 2, Cols: 2, BaseWind: []int{0, 0}, Wind0: 0.5, Wind1: 0.5 + 2e-9},
	}
	for _, w := range bad {
		assert.Error(t, w.Check(), "%+v", w)
	}
}

func TestDefinition(t *testing.T) {
	w := StochasticWindyGridWorld{Rows: 3, Cols: 3, BaseWind: []int{0, 1, 0}, Wind0: 0.1, Wind1: 0.8, Wind2: 0.1}
	m, err := w.MDP(0.9)
	require.NoError(t, err)

	assert.Equal(t, 9, m.NumStates())
	assert.Equal(t, 0.9, m.Gamma())
	for _, s := range []mdp.State{"0", "8"} {
		term, err := m.IsTerminal(s)
		require.NoError(t, err)
		assert.True(t, term)
	}
	acts, err := m.Actions("4")
	require.NoError(t, err)
	assert.Equal(t, Actions, acts)

	// From the centre, "down" lands on (2,1); the column wind of 1 lifts it
	// to (1,1) with 0.8 and to (0,1) with 0.1.
	out, err := m.T("4", "down")
	require.NoError(t, err)
	probs := map[mdp.State]mdp.Probability{}
	for _, o := range out {
		if o.Probability > 0 {
			probs[o.State] = o.Probability
		}
	}
	assert.InDelta(t, 0.1, float64(probs["7"]), 1e-12)
	assert.InDelta(t, 0.8, float64(probs["4"]), 1e-12)
	assert.InDelta(t, 0.1, float64(probs["1"]), 1e-12)

	r, err := m.R("4", "down", "7")
	require.NoError(t, err)
	assert.Equal(t, mdp.Reward(StepReward), r)
}

func TestWindClipsAtTopRow(t *testing.T) {
	w := StochasticWindyGridWorld{Rows: 2, Cols: 2, BaseWind: []int{0, 3}, Wind0: 0, Wind1: 0.5, Wind2: 0.5}
	m, err := w.MDP(1)
	require.NoError(t, err)
	out, err := m.T("2", "right")
	require.NoError(t, err)
	// (1,0) -> (1,1) which is terminal; the wind pushes it all the way to (0,1).
	assert.Equal(t, mdp.Probability(1), out[1].Probability)
}

func TestPrint(t *testing.T) {
	w := StochasticWindyGridWorld{Rows: 2, Cols: 2, BaseWind: []int{0, 0}, Wind0: 1}
	au := aurora.NewAurora(false)

	var buf bytes.Buffer
	w.PrintValues(&buf, au, []float64{0, -1, -1.5, 0})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, " 00.00| -01.00|", lines[0])
	assert.Equal(t, " -01.50| 00.00|", lines[1])

	buf.Reset()
	w.PrintPolicy(&buf, au, map[mdp.State]mdp.Action{"1": "down", "2": "right"})
	assert.Equal(t, "  ■ |  ↓ |\n  → |  ■ |\n", buf.String())
}
