package sim

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/CodeStranger-Fred/dynaprog/mdp"
)

// DiscretePdf is a finite distribution whose outcomes keep a fixed order, so
// sampling with a seeded source is reproducible.
type DiscretePdf[Category comparable] struct {
	Outcomes []Category
	Probs    []float64
}

func (p DiscretePdf[Category]) Check() error {
	if len(p.Outcomes) != len(p.Probs) {
		return fmt.Errorf("sim: %d outcomes but %d probabilities", len(p.Outcomes), len(p.Probs))
	}
	if len(p.Probs) == 0 {
		return fmt.Errorf("sim: empty distribution")
	}
	if sum := floats.Sum(p.Probs); !scalar.EqualWithinAbs(sum, 1, mdp.ProbabilityTolerance) {
		return fmt.Errorf("sim: probabilities sum to %v", sum)
	}
	return nil
}

// Choose samples one outcome. Rounding slack at the top end falls on the last
// outcome with non-zero probability.
func (p DiscretePdf[Category]) Choose(rng *rand.Rand) Category {
	u := rng.Float64()
	cumulative := 0.0
	last := -1
	for i, prob := range p.Probs {
		if prob == 0 {
			continue
		}
		cumulative += prob
		last = i
		if u < cumulative {
			return p.Outcomes[i]
		}
	}
	return p.Outcomes[last]
}
