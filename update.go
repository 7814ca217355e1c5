package pomdp

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// predictedMass returns O(s'|a, o) · Σ_s T(s, a, s') · b(s) for every s' in model order.
func predictedMass[S, A, O comparable](m Model[S, A, O], b Belief[S], a A, o O) ([]float64, float64) {
	masses := make([]float64, len(m.States))
	var normalizer float64
	for i, next := range m.States {
		pObs := m.ObservationFunc(next, a, o)
		if pObs == 0 {
			continue
		}
		var reach float64
		for j, s := range b.states {
			reach += m.TransitionFunc(s, a, next) * b.probs[j]
		}
		masses[i] = pObs * reach
		normalizer += masses[i]
	}
	return masses, normalizer
}

// Update is the Bayesian filter: it returns the successor of b after taking action a
// and observing o. It fails with ErrImpossibleObservation when Pr(o|a, b) < Epsilon.
func Update[S, A, O comparable](m Model[S, A, O], b Belief[S], a A, o O) (Belief[S], error) {
	masses, normalizer := predictedMass(m, b, a, o)
	if normalizer < Epsilon {
		return Belief[S]{}, fmt.Errorf("%w: action=%v observation=%v Pr(o|a,b)=%.3g", ErrImpossibleObservation, a, o, normalizer)
	}

	next := NewBeliefBuilder[S](len(m.States))
	for i, mass := range masses {
		if mass > 0 {
			next.Add(m.States[i], mass/normalizer)
		}
	}
	return next.Build(), nil
}

// ObservationProbability is Pr(o|a, b), the normalizer of Update.
func ObservationProbability[S, A, O comparable](m Model[S, A, O], b Belief[S], a A, o O) float64 {
	_, normalizer := predictedMass(m, b, a, o)
	return normalizer
}

func ExpectedReward[S, A, O comparable](m Model[S, A, O], b Belief[S], a A) float64 {
	var sum float64
	for i, s := range b.states {
		sum += b.probs[i] * m.RewardFunc(s, a)
	}
	return sum
}

// SampleState draws a state with probability proportional to its mass.
func SampleState[S comparable](b Belief[S], rng *rand.Rand) (S, error) {
	idx, err := weightedIndex(len(b.states), func(i int) float64 {
		return b.probs[i]
	}, rng)
	if errors.Is(err, errNoMass) {
		var zero S
		return zero, ErrEmptyBelief
	}
	if err != nil {
		var zero S
		return zero, err
	}
	return b.states[idx], nil
}

// SampleObservation draws o with probability Pr(o|a, b), weighting the
// observations in model order.
func SampleObservation[S, A, O comparable](m Model[S, A, O], b Belief[S], a A, rng *rand.Rand) (O, error) {
	idx, err := weightedIndex(len(m.Observations), func(i int) float64 {
		return ObservationProbability(m, b, a, m.Observations[i])
	}, rng)
	if errors.Is(err, errNoMass) {
		var zero O
		return zero, fmt.Errorf("%w: no observation is possible after action %v", ErrImpossibleObservation, a)
	}
	if err != nil {
		var zero O
		return zero, err
	}
	return m.Observations[idx], nil
}
