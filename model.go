// Package pomdp provides the building blocks of a discrete partially observable
// Markov decision process: the problem model, belief states with their Bayesian
// update, alpha vectors and the policy capability.
package pomdp

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sw965/omw/mathx/randx"
	"gonum.org/v1/gonum/floats"
)

type TransitionFunc[S, A comparable] func(S, A, S) float64
type ObservationFunc[S, A, O comparable] func(S, A, O) float64
type RewardFunc[S, A comparable] func(S, A) float64
type IsGoalFunc[S comparable] func(S) bool

// Model is the capability set a concrete POMDP instance provides.
// TransitionFunc is T(s, a, s'), ObservationFunc is O(s'|a, o) and RewardFunc is R(s, a).
// The enumeration order of States, Actions and Observations is the iteration
// order of every sum and every sampling operation.
type Model[S, A, O comparable] struct {
	States       []S
	Actions      []A
	Observations []O

	TransitionFunc  TransitionFunc[S, A]
	ObservationFunc ObservationFunc[S, A, O]
	RewardFunc      RewardFunc[S, A]
	// nil means the model has no goal states.
	IsGoalFunc IsGoalFunc[S]

	Discount float64
	Initial  Belief[S]
}

func (m Model[S, A, O]) Validate() error {
	if len(m.States) == 0 {
		return fmt.Errorf("%w: no states", ErrEmptyDomain)
	}
	if len(m.Actions) == 0 {
		return fmt.Errorf("%w: no actions", ErrEmptyDomain)
	}
	if len(m.Observations) == 0 {
		return fmt.Errorf("%w: no observations", ErrEmptyDomain)
	}

	if _, err := NewIndex(m.States); err != nil {
		return fmt.Errorf("states: %w", err)
	}
	if _, err := NewIndex(m.Actions); err != nil {
		return fmt.Errorf("actions: %w", err)
	}
	if _, err := NewIndex(m.Observations); err != nil {
		return fmt.Errorf("observations: %w", err)
	}

	if m.TransitionFunc == nil {
		return fmt.Errorf("%w: TransitionFunc", ErrNilModelFunc)
	}
	if m.ObservationFunc == nil {
		return fmt.Errorf("%w: ObservationFunc", ErrNilModelFunc)
	}
	if m.RewardFunc == nil {
		return fmt.Errorf("%w: RewardFunc", ErrNilModelFunc)
	}

	if !(m.Discount > 0 && m.Discount <= 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidDiscount, m.Discount)
	}

	if m.Initial.Len() == 0 {
		return fmt.Errorf("initial belief: %w", ErrEmptyBelief)
	}
	return nil
}

// CheckDistributions verifies that every T(s, a, ·) and every O(·|a, s') row is a
// probability distribution within eps. It is not part of Validate because it
// evaluates |A|·|S|·(|S|+|O|) model calls.
func (m Model[S, A, O]) CheckDistributions(eps float64) error {
	for _, a := range m.Actions {
		for _, s := range m.States {
			var sum float64
			for _, next := range m.States {
				p := m.TransitionFunc(s, a, next)
				if p < 0 || math.IsNaN(p) {
					return fmt.Errorf("%w: T(%v, %v, %v) = %v", ErrInvalidDistribution, s, a, next, p)
				}
				sum += p
			}
			if math.Abs(sum-1) > eps {
				return fmt.Errorf("%w: sum of T(%v, %v, ·) = %v", ErrInvalidDistribution, s, a, sum)
			}

			sum = 0
			for _, o := range m.Observations {
				p := m.ObservationFunc(s, a, o)
				if p < 0 || math.IsNaN(p) {
					return fmt.Errorf("%w: O(%v|%v, %v) = %v", ErrInvalidDistribution, s, a, o, p)
				}
				sum += p
			}
			if math.Abs(sum-1) > eps {
				return fmt.Errorf("%w: sum of O(%v|%v, ·) = %v", ErrInvalidDistribution, s, a, sum)
			}
		}
	}
	return nil
}

func (m Model[S, A, O]) IsGoal(s S) bool {
	if m.IsGoalFunc == nil {
		return false
	}
	return m.IsGoalFunc(s)
}

// RewardBounds returns the smallest and largest R(s, a) over the whole model.
func (m Model[S, A, O]) RewardBounds() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range m.States {
		for _, a := range m.Actions {
			r := m.RewardFunc(s, a)
			lo = min(lo, r)
			hi = max(hi, r)
		}
	}
	return lo, hi
}

var errNoMass = errors.New("no positive weight")

// weightedIndex draws i in [0, n) with probability proportional to weight(i).
// Entries with a non-positive weight are never drawn. The weights are scaled by
// their maximum before narrowing, so tiny but positive masses survive.
func weightedIndex(n int, weight func(int) float64, rng *rand.Rand) (int, error) {
	idxs := make([]int, 0, n)
	raw := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if w := weight(i); w > 0 {
			idxs = append(idxs, i)
			raw = append(raw, w)
		}
	}
	if len(idxs) == 0 {
		return -1, errNoMass
	}

	top := floats.Max(raw)
	ws := make([]float32, len(raw))
	for i, w := range raw {
		ws[i] = float32(w / top)
	}
	k, err := randx.IntByWeights(ws, rng)
	if err != nil {
		return -1, err
	}
	return idxs[k], nil
}

// SampleNextState applies action a to the true state s.
func SampleNextState[S, A, O comparable](m Model[S, A, O], s S, a A, rng *rand.Rand) (S, error) {
	idx, err := weightedIndex(len(m.States), func(i int) float64 {
		return m.TransitionFunc(s, a, m.States[i])
	}, rng)
	if errors.Is(err, errNoMass) {
		var zero S
		return zero, fmt.Errorf("%w: T(%v, %v, ·) has no mass", ErrInvalidDistribution, s, a)
	}
	if err != nil {
		var zero S
		return zero, err
	}
	return m.States[idx], nil
}

// SampleStateObservation draws an observation emitted on arriving in next after action a.
func SampleStateObservation[S, A, O comparable](m Model[S, A, O], next S, a A, rng *rand.Rand) (O, error) {
	idx, err := weightedIndex(len(m.Observations), func(i int) float64 {
		return m.ObservationFunc(next, a, m.Observations[i])
	}, rng)
	if errors.Is(err, errNoMass) {
		var zero O
		return zero, fmt.Errorf("%w: O(·|%v, %v) has no mass", ErrInvalidDistribution, a, next)
	}
	if err != nil {
		var zero O
		return zero, err
	}
	return m.Observations[idx], nil
}
