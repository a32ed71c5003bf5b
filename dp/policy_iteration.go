package dp

import (
	"context"

	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

// PolicyIteration alternates iterative policy evaluation with greedy
// improvement, starting from the uniform random policy, until the policy
// stops changing.
type PolicyIteration struct {
	*agent
	rounds int
}

func NewPolicyIteration(m *mdp.MDP, cfg Config) (*PolicyIteration, error) {
	ag, err := newAgent(m, cfg, MethodPolicyIteration)
	if err != nil {
		return nil, err
	}
	return &PolicyIteration{agent: ag}, nil
}

// Evaluate runs fixed-policy backups for pi from the current values until
// they converge and returns the converged values. The first call starts from
// zero; later calls start where the previous evaluation stopped.
func (p *PolicyIteration) Evaluate(ctx context.Context, pi PolicyTable) (ValueTable, error) {
	err := p.sweepUntilStable(ctx, func(v ValueTable) ValueTable {
		return ExpectationBackup(p.model, v, pi)
	})
	if err != nil {
		return nil, err
	}
	return p.v.Clone(), nil
}

// Solve runs policy iteration to a stable policy.
func (p *PolicyIteration) Solve(ctx context.Context) (res *Result, err error) {
	defer func() { p.finish(err) }()
	for {
		if _, err := p.Evaluate(ctx, p.pi); err != nil {
			return nil, err
		}
		next := p.improve()
		changed := p.pi.Changed(next)
		p.rounds++
		p.cfg.Observer.Improvement(p.method, p.rounds, changed)
		p.cfg.Logger.Debug("policy improvement", "round", p.rounds, "changed", changed)
		if changed == 0 {
			return p.result(p.rounds), nil
		}
		p.pi = next
	}
}
