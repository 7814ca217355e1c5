package pbvi

import (
	"fmt"

	"github.com/sw965/pomdp"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// space is the model compiled into dense tables, indexed by enumeration position.
//
//	transitions[a]      |S|×|S|, row s,  column s'
//	observationProbs[a] |S|×|O|, row s', column o
//	rewards[a]          length |S|
type space[S, A, O comparable] struct {
	states       *pomdp.Index[S]
	actions      []A
	observations []O

	transitions      []*mat.Dense
	observationProbs []*mat.Dense
	rewards          [][]float64
	discount         float64
}

func compile[S, A, O comparable](m pomdp.Model[S, A, O]) (*space[S, A, O], error) {
	states, err := pomdp.NewIndex(m.States)
	if err != nil {
		return nil, fmt.Errorf("states: %w", err)
	}

	nS, nA, nO := len(m.States), len(m.Actions), len(m.Observations)
	sp := &space[S, A, O]{
		states:           states,
		actions:          m.Actions,
		observations:     m.Observations,
		transitions:      make([]*mat.Dense, nA),
		observationProbs: make([]*mat.Dense, nA),
		rewards:          make([][]float64, nA),
		discount:         m.Discount,
	}

	for ai, a := range m.Actions {
		t := mat.NewDense(nS, nS, nil)
		z := mat.NewDense(nS, nO, nil)
		r := make([]float64, nS)
		for si, s := range m.States {
			for ni, next := range m.States {
				t.Set(si, ni, m.TransitionFunc(s, a, next))
			}
			for oi, o := range m.Observations {
				z.Set(si, oi, m.ObservationFunc(s, a, o))
			}
			r[si] = m.RewardFunc(s, a)
		}
		sp.transitions[ai] = t
		sp.observationProbs[ai] = z
		sp.rewards[ai] = r
	}
	return sp, nil
}

func (sp *space[S, A, O]) numStates() int       { return sp.states.Len() }
func (sp *space[S, A, O]) numActions() int      { return len(sp.actions) }
func (sp *space[S, A, O]) numObservations() int { return len(sp.observations) }

// dense lays b out in state-index order. Mass on states outside the model is dropped.
func (sp *space[S, A, O]) dense(b pomdp.Belief[S]) []float64 {
	d := make([]float64, sp.numStates())
	for s, p := range b.All() {
		if i, ok := sp.states.Pos(s); ok {
			d[i] += p
		}
	}
	return d
}

// transform computes g[a, o, α](s) = Σ_s' O(s'|a, o)·T(s, a, s')·α(s'),
// i.e. T_a · (α ⊙ O_a[:, o]).
func (sp *space[S, A, O]) transform(a, o int, av pomdp.AlphaVector[S, A]) pomdp.AlphaVector[S, A] {
	nS := sp.numStates()
	w := mat.Col(nil, o, sp.observationProbs[a])
	floats.Mul(w, av.RawValues())

	g := mat.NewVecDense(nS, nil)
	g.MulVec(sp.transitions[a], mat.NewVecDense(nS, w))

	out, err := pomdp.NewAlphaVector(sp.states, sp.actions[a], g.RawVector().Data)
	if err != nil {
		panic(fmt.Sprintf("BUG: %v", err))
	}
	return out
}

// lowerBound is one constant vector per action.
func (sp *space[S, A, O]) lowerBound(v float64) []pomdp.AlphaVector[S, A] {
	vs := make([]pomdp.AlphaVector[S, A], len(sp.actions))
	for i, a := range sp.actions {
		vs[i] = pomdp.NewConstantAlphaVector(sp.states, a, v)
	}
	return vs
}

func (sp *space[S, A, O]) minReward() float64 {
	lo := floats.Min(sp.rewards[0])
	for _, r := range sp.rewards[1:] {
		lo = min(lo, floats.Min(r))
	}
	return lo
}
