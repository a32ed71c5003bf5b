package dp

import (
	"context"

	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

// ValueIteration applies the Bellman optimality backup until the values
// settle, then reads off one greedy policy.
type ValueIteration struct {
	*agent
}

func NewValueIteration(m *mdp.MDP, cfg Config) (*ValueIteration, error) {
	ag, err := newAgent(m, cfg, MethodValueIteration)
	if err != nil {
		return nil, err
	}
	return &ValueIteration{agent: ag}, nil
}

func (vi *ValueIteration) Solve(ctx context.Context) (res *Result, err error) {
	defer func() { vi.finish(err) }()
	err = vi.sweepUntilStable(ctx, func(v ValueTable) ValueTable {
		return OptimalityBackup(vi.model, v)
	})
	if err != nil {
		return nil, err
	}
	vi.pi = vi.improve()
	return vi.result(0), nil
}
