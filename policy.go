package pomdp

import (
	"fmt"
	"math/rand/v2"

	"github.com/sw965/omw/mathx/randx"
)

// Policy chooses an action for a belief. rng is the caller's random source;
// deterministic policies ignore it.
type Policy[S, A comparable] interface {
	SelectAction(Belief[S], *rand.Rand) (A, error)
}

type PolicyFunc[S, A comparable] func(Belief[S], *rand.Rand) (A, error)

func (f PolicyFunc[S, A]) SelectAction(b Belief[S], rng *rand.Rand) (A, error) {
	return f(b, rng)
}

// RandomPolicy picks an action uniformly at random regardless of the belief.
// It drives belief-point collection.
type RandomPolicy[S, A comparable] struct {
	Actions []A
}

func NewRandomPolicy[S, A comparable](actions []A) RandomPolicy[S, A] {
	return RandomPolicy[S, A]{Actions: actions}
}

func (p RandomPolicy[S, A]) SelectAction(_ Belief[S], rng *rand.Rand) (A, error) {
	if len(p.Actions) == 0 {
		var zero A
		return zero, fmt.Errorf("%w: random policy has no actions", ErrEmptyDomain)
	}
	return randx.Choice(p.Actions, rng)
}
