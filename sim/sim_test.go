package sim

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeStranger-Fred/dynaprog/dp"
	"github.com/CodeStranger-Fred/dynaprog/gridworld"
	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

func solved(t *testing.T, m *mdp.MDP) *dp.Result {
	t.Helper()
	vi, err := dp.NewValueIteration(m, dp.DefaultConfig())
	require.NoError(t, err)
	res, err := vi.Solve(context.Background())
	require.NoError(t, err)
	return res
}

func TestChooseRespectsZeroProbabilities(t *testing.T) {
	pdf := DiscretePdf[string]{Outcomes: []string{"a", "b", "c"}, Probs: []float64{0, 1, 0}}
	require.NoError(t, pdf.Check())
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		assert.Equal(t, "b", pdf.Choose(rng))
	}
}

func TestChooseFrequencies(t *testing.T) {
	pdf := DiscretePdf[int]{Outcomes: []int{0, 1}, Probs: []float64{0.25, 0.75}}
	rng := rand.New(rand.NewPCG(7, 7))
	counts := [2]int{}
	for i := 0; i < 20000; i++ {
		counts[pdf.Choose(rng)]++
	}
	assert.InDelta(t, 0.25, float64(counts[0])/20000, 0.02)
}

func TestCheck(t *testing.T) {
	assert.Error(t, DiscretePdf[int]{}.Check())
	assert.Error(t, DiscretePdf[int]{Outcomes: []int{1}, Probs: []float64{0.5}}.Check())
	assert.Error(t, DiscretePdf[int]{Outcomes: []int{1, 2}, Probs: []float64{1}}.Check())
	assert.Error(t, DiscretePdf[int]{Outcomes: []int{1, 2}, Probs: []float64{0.5, 0.5 + 2e-9}}.Check())
	assert.NoError(t, DiscretePdf[int]{Outcomes: []int{1, 2}, Probs: []float64{0.5, 0.5 + 5e-10}}.Check())
}

func TestRolloutSelfLoop(t *testing.T) {
	m, err := mdp.New(mdp.Definition{
		Gamma: 0.9,
		States: []mdp.StateDefinition{
			{ID: "0", Actions: []mdp.ActionDefinition{{ID: "stay", Transitions: []float64{1}, Rewards: []float64{5}}}},
		},
	})
	require.NoError(t, err)

	ep, err := Rollout(m, dp.UniformPolicy(m), "0", 10, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)
	assert.Len(t, ep.History, 10)
	assert.False(t, ep.Terminated)
	assert.InDelta(t, 5*(1-math.Pow(0.9, 10))/0.1, ep.Return, 1e-9)
	assert.Equal(t, Transition{State0: "0", Action: "stay", State1: "0", Reward: 5}, ep.History[0])
}

func TestRolloutStopsAtTerminal(t *testing.T) {
	w := gridworld.StochasticWindyGridWorld{Rows: 4, Cols: 4, BaseWind: []int{0, 0, 0, 0}, Wind0: 1}
	m, err := w.MDP(1)
	require.NoError(t, err)
	res := solved(t, m)

	ep, err := Rollout(m, res.Policy, "5", 100, rand.New(rand.NewPCG(3, 3)))
	require.NoError(t, err)
	assert.True(t, ep.Terminated)
	assert.Len(t, ep.History, 2)
	assert.Equal(t, -2.0, ep.Return)
	assert.Equal(t, mdp.State("0"), ep.History[1].State1)
}

func TestRolloutErrors(t *testing.T) {
	w := gridworld.StochasticWindyGridWorld{Rows: 1, Cols: 3, BaseWind: []int{0, 0, 0}, Wind0: 1}
	m, err := w.MDP(1)
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(1, 1))

	_, err = Rollout(m, dp.UniformPolicy(m), "nowhere", 5, rng)
	assert.ErrorIs(t, err, mdp.ErrUnknownState)

	_, err = Rollout(m, dp.PolicyTable{{}}, "1", 5, rng)
	assert.Error(t, err)

	broken := dp.UniformPolicy(m)
	broken[1] = []float64{0, 0, 0, 0}
	_, err = Rollout(m, broken, "1", 5, rng)
	assert.Error(t, err)
}

func TestEvaluateMatchesSolvedValue(t *testing.T) {
	w := gridworld.StochasticWindyGridWorld{
		Rows: 4, Cols: 5, BaseWind: []int{0, 1, 2, 1, 0}, Wind0: 0.1, Wind1: 0.8, Wind2: 0.1,
	}
	m, err := w.MDP(0.9)
	require.NoError(t, err)
	res := solved(t, m)

	start := mdp.State("12")
	s, err := m.StateIndex(start)
	require.NoError(t, err)

	stats, err := Evaluate(m, res.Policy, start, Config{Episodes: 4000, Horizon: 500, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, 4000, stats.Episodes)
	assert.GreaterOrEqual(t, stats.Terminated, 3990)
	assert.InDelta(t, res.Values[s], stats.MeanReturn, 5*stats.StdErr+1e-6)

	again, err := Evaluate(m, res.Policy, start, Config{Episodes: 4000, Horizon: 500, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, stats, again)
}

func TestEvaluateRejectsEmptyRuns(t *testing.T) {
	w := gridworld.StochasticWindyGridWorld{Rows: 1, Cols: 2, BaseWind: []int{0, 0}, Wind0: 1}
	m, err := w.MDP(1)
	require.NoError(t, err)
	_, err = Evaluate(m, dp.UniformPolicy(m), "0", Config{Episodes: 0, Horizon: 1})
	assert.Error(t, err)
}
