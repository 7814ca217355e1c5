package pomdp

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"
)

// Belief is an immutable sparse probability distribution over states.
// Entries keep the order in which they were first added, so iteration (and every
// floating point sum over it) is deterministic. A state that was never stored has
// probability exactly 0.
type Belief[S comparable] struct {
	states []S
	probs  []float64
	pos    map[S]int
}

// NewBelief pairs states[i] with probs[i]. Repeated states accumulate.
func NewBelief[S comparable](states []S, probs []float64) (Belief[S], error) {
	if len(states) != len(probs) {
		return Belief[S]{}, fmt.Errorf("%w: %d states but %d probabilities", ErrInvalidBelief, len(states), len(probs))
	}
	bb := NewBeliefBuilder[S](len(states))
	for i, s := range states {
		bb.Add(s, probs[i])
	}
	return bb.Build(), nil
}

// Uniform spreads the mass evenly over states.
func Uniform[S comparable](states []S) Belief[S] {
	bb := NewBeliefBuilder[S](len(states))
	if len(states) == 0 {
		return bb.Build()
	}
	p := 1.0 / float64(len(states))
	for _, s := range states {
		bb.Add(s, p)
	}
	return bb.Build()
}

func PointMass[S comparable](s S) Belief[S] {
	bb := NewBeliefBuilder[S](1)
	bb.Add(s, 1.0)
	return bb.Build()
}

func (b Belief[S]) Prob(s S) float64 {
	i, ok := b.pos[s]
	if !ok {
		return 0.0
	}
	return b.probs[i]
}

func (b Belief[S]) Len() int {
	return len(b.states)
}

func (b Belief[S]) States() []S {
	return slices.Clone(b.states)
}

func (b Belief[S]) All() iter.Seq2[S, float64] {
	return func(yield func(S, float64) bool) {
		for i, s := range b.states {
			if !yield(s, b.probs[i]) {
				return
			}
		}
	}
}

// Support yields the entries whose mass is at least minMass.
func (b Belief[S]) Support(minMass float64) iter.Seq2[S, float64] {
	return func(yield func(S, float64) bool) {
		for i, s := range b.states {
			if b.probs[i] < minMass {
				continue
			}
			if !yield(s, b.probs[i]) {
				return
			}
		}
	}
}

func (b Belief[S]) Sum() float64 {
	var sum float64
	for _, p := range b.probs {
		sum += p
	}
	return sum
}

// Validate reports ErrInvalidBelief for a negative or NaN mass, or for a total that
// differs from 1 by more than Epsilon. Construction never validates, since beliefs
// are assembled incrementally.
func (b Belief[S]) Validate() error {
	if len(b.states) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidBelief, ErrEmptyBelief)
	}
	for i, p := range b.probs {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: state %v has mass %v", ErrInvalidBelief, b.states[i], p)
		}
	}
	if sum := b.Sum(); math.Abs(sum-1) > Epsilon {
		return fmt.Errorf("%w: total mass %v", ErrInvalidBelief, sum)
	}
	return nil
}

// ApproxEqual compares the masses of both beliefs state by state within tol.
func (b Belief[S]) ApproxEqual(other Belief[S], tol float64) bool {
	for i, s := range b.states {
		if math.Abs(b.probs[i]-other.Prob(s)) > tol {
			return false
		}
	}
	for i, s := range other.states {
		if math.Abs(other.probs[i]-b.Prob(s)) > tol {
			return false
		}
	}
	return true
}

func (b Belief[S]) String() string {
	var sb strings.Builder
	sb.WriteString("<")
	for i, s := range b.states {
		if b.probs[i] > 0.01 {
			fmt.Fprintf(&sb, "%v=%.2f,", s, b.probs[i])
		}
	}
	sb.WriteString(">")
	return sb.String()
}

// BeliefBuilder accumulates mass per state and freezes it into a Belief.
// A Belief handed out by Build never shares storage with the builder.
type BeliefBuilder[S comparable] struct {
	states []S
	probs  []float64
	pos    map[S]int
}

func NewBeliefBuilder[S comparable](capacity int) *BeliefBuilder[S] {
	return &BeliefBuilder[S]{
		states: make([]S, 0, capacity),
		probs:  make([]float64, 0, capacity),
		pos:    make(map[S]int, capacity),
	}
}

func (bb *BeliefBuilder[S]) Add(s S, mass float64) {
	if i, ok := bb.pos[s]; ok {
		bb.probs[i] += mass
		return
	}
	bb.pos[s] = len(bb.states)
	bb.states = append(bb.states, s)
	bb.probs = append(bb.probs, mass)
}

func (bb *BeliefBuilder[S]) Total() float64 {
	var sum float64
	for _, p := range bb.probs {
		sum += p
	}
	return sum
}

// Build drops entries whose accumulated mass is exactly zero.
func (bb *BeliefBuilder[S]) Build() Belief[S] {
	b := Belief[S]{
		states: make([]S, 0, len(bb.states)),
		probs:  make([]float64, 0, len(bb.probs)),
		pos:    make(map[S]int, len(bb.states)),
	}
	for i, s := range bb.states {
		p := bb.probs[i]
		if p == 0 {
			continue
		}
		b.pos[s] = len(b.states)
		b.states = append(b.states, s)
		b.probs = append(b.probs, p)
	}
	return b
}
