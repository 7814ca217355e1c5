package pbvi

import (
	"fmt"
	"math"
	"slices"

	"github.com/sw965/pomdp"
	"gonum.org/v1/gonum/floats"
)

// actionCandidate is step 2 of the backup: for each observation take the cached
// transform that scores best at b (first in snapshot order on ties), sum them,
// discount, and add R(·, a).
func actionCandidate[S, A, O comparable](sp *space[S, A, O], cache *gCache[S, A], a int, bd []float64) pomdp.AlphaVector[S, A] {
	sum := make([]float64, sp.numStates())
	for o := 0; o < sp.numObservations(); o++ {
		row := cache.row(a, o)
		best := 0
		bestValue := math.Inf(-1)
		for v, g := range row {
			if d := floats.Dot(g.RawValues(), bd); d > bestValue {
				best, bestValue = v, d
			}
		}
		floats.Add(sum, row[best].RawValues())
	}
	floats.Scale(sp.discount, sum)
	floats.Add(sum, sp.rewards[a])

	av, err := pomdp.NewAlphaVector(sp.states, sp.actions[a], sum)
	if err != nil {
		panic(fmt.Sprintf("BUG: %v", err))
	}
	return av
}

// backup is step 3: the best action candidate at b (first action on ties).
func backup[S, A, O comparable](sp *space[S, A, O], cache *gCache[S, A], bd []float64) (pomdp.AlphaVector[S, A], float64) {
	var best pomdp.AlphaVector[S, A]
	bestValue := math.Inf(-1)
	for a := 0; a < sp.numActions(); a++ {
		cand := actionCandidate(sp, cache, a, bd)
		if v := floats.Dot(cand.RawValues(), bd); v > bestValue {
			best, bestValue = cand, v
		}
	}
	return best, bestValue
}

// argmax returns the vector of vs that scores best at bd (first on ties).
func argmax[S, A comparable](vs []pomdp.AlphaVector[S, A], bd []float64) (pomdp.AlphaVector[S, A], float64) {
	best := 0
	bestValue := math.Inf(-1)
	for i, av := range vs {
		if v := floats.Dot(av.RawValues(), bd); v > bestValue {
			best, bestValue = i, v
		}
	}
	return vs[best], bestValue
}

// Backup applies one point-based Bellman backup to b against the value function
// vectors of model m. It builds its own G-cache and shares nothing with a Solver.
func Backup[S, A, O comparable](m pomdp.Model[S, A, O], vectors []pomdp.AlphaVector[S, A], b pomdp.Belief[S]) (pomdp.AlphaVector[S, A], error) {
	if err := m.Validate(); err != nil {
		return pomdp.AlphaVector[S, A]{}, err
	}
	if len(vectors) == 0 {
		return pomdp.AlphaVector[S, A]{}, pomdp.ErrNoVectorsAvailable
	}

	sp, err := compile(m)
	if err != nil {
		return pomdp.AlphaVector[S, A]{}, err
	}
	vs, err := reindex(sp, vectors)
	if err != nil {
		return pomdp.AlphaVector[S, A]{}, err
	}
	cache, err := newGCache(sp, vs, 1)
	if err != nil {
		return pomdp.AlphaVector[S, A]{}, err
	}
	av, _ := backup(sp, cache, sp.dense(b))
	return av, nil
}

// reindex moves caller-built vectors onto the state index of sp. Vectors built over
// a different index must list the same states in the same order.
func reindex[S, A, O comparable](sp *space[S, A, O], vectors []pomdp.AlphaVector[S, A]) ([]pomdp.AlphaVector[S, A], error) {
	out := make([]pomdp.AlphaVector[S, A], len(vectors))
	for i, av := range vectors {
		if av.Len() != sp.numStates() {
			return nil, fmt.Errorf("%w: vector %d has %d values, model has %d states", pomdp.ErrIndexMismatch, i, av.Len(), sp.numStates())
		}
		if idx := av.Index(); idx != sp.states && !slices.Equal(idx.Keys(), sp.states.Keys()) {
			return nil, fmt.Errorf("%w: vector %d orders states differently", pomdp.ErrIndexMismatch, i)
		}
		v, err := pomdp.NewAlphaVector(sp.states, av.Action, av.RawValues())
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
