package pbvi

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sw965/pomdp"
)

// toyModel has two states, "stay" keeps the state and "swap" exchanges it, and
// the same noisy sensor after either action.
func toyModel() pomdp.Model[string, string, string] {
	sensor := map[string]map[string]float64{
		"s0": {"o0": 0.8, "o1": 0.2},
		"s1": {"o0": 0.3, "o1": 0.7},
	}
	reward := map[string]map[string]float64{
		"stay": {"s0": 1, "s1": 0},
		"swap": {"s0": 0, "s1": 2},
	}
	return pomdp.Model[string, string, string]{
		States:       []string{"s0", "s1"},
		Actions:      []string{"stay", "swap"},
		Observations: []string{"o0", "o1"},
		TransitionFunc: func(s, a, next string) float64 {
			if (a == "stay") == (s == next) {
				return 1
			}
			return 0
		},
		ObservationFunc: func(next, a, o string) float64 {
			return sensor[next][o]
		},
		RewardFunc: func(s, a string) float64 {
			return reward[a][s]
		},
		Discount: 0.5,
		Initial:  pomdp.Uniform([]string{"s0", "s1"}),
	}
}

// constantModel has a single state, action and observation with reward r.
func constantModel(r, discount float64) pomdp.Model[string, string, string] {
	return pomdp.Model[string, string, string]{
		States:          []string{"only"},
		Actions:         []string{"wait"},
		Observations:    []string{"silence"},
		TransitionFunc:  func(s, a, next string) float64 { return 1 },
		ObservationFunc: func(next, a, o string) float64 { return 1 },
		RewardFunc:      func(s, a string) float64 { return r },
		Discount:        discount,
		Initial:         pomdp.PointMass("only"),
	}
}

func toyVectors(t *testing.T, ix *pomdp.Index[string]) []pomdp.AlphaVector[string, string] {
	t.Helper()
	stay, err := pomdp.NewAlphaVector(ix, "stay", []float64{2, 0})
	require.NoError(t, err)
	swap, err := pomdp.NewAlphaVector(ix, "swap", []float64{0, 4})
	require.NoError(t, err)
	return []pomdp.AlphaVector[string, string]{stay, swap}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Parallelism = 4
	return cfg
}

func mustBelief(t *testing.T, states []string, probs []float64) pomdp.Belief[string] {
	t.Helper()
	b, err := pomdp.NewBelief(states, probs)
	require.NoError(t, err)
	return b
}
