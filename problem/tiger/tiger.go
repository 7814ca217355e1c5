// Package tiger is the classic two-door tiger problem.
// A tiger hides behind the left or the right door. Listening costs a little and
// reports the tiger's side correctly with probability ListenAccuracy; opening the
// tiger's door is heavily penalized, opening the other door is rewarded, and
// either opening resets the problem with the tiger placed uniformly at random.
//
// Package tiger は古典的な虎問題です。
// 扉を開けると問題はリセットされ、虎は一様ランダムに再配置されます。
package tiger

import (
	"github.com/sw965/pomdp"
	"github.com/sw965/pomdp/tabular"
)

const (
	TigerLeft  = "tiger-left"
	TigerRight = "tiger-right"

	Listen    = "listen"
	OpenLeft  = "open-left"
	OpenRight = "open-right"

	HearLeft  = "hear-left"
	HearRight = "hear-right"
)

type Params struct {
	Discount       float64
	ListenAccuracy float64
	ListenCost     float64
	// reward for opening the door without the tiger
	Treasure float64
	// reward for opening the tiger's door
	Penalty float64
}

func DefaultParams() Params {
	return Params{
		Discount:       0.95,
		ListenAccuracy: 0.85,
		ListenCost:     -1,
		Treasure:       10,
		Penalty:        -100,
	}
}

// Spec writes the problem as tables.
func Spec(p Params) tabular.Spec {
	acc := p.ListenAccuracy
	stay := [][]float64{{1, 0}, {0, 1}}
	reset := [][]float64{{0.5, 0.5}, {0.5, 0.5}}
	noisy := [][]float64{{acc, 1 - acc}, {1 - acc, acc}}

	return tabular.Spec{
		Discount:     p.Discount,
		States:       []string{TigerLeft, TigerRight},
		Actions:      []string{Listen, OpenLeft, OpenRight},
		Observations: []string{HearLeft, HearRight},
		Initial:      map[string]float64{TigerLeft: 0.5, TigerRight: 0.5},
		Transitions: map[string][][]float64{
			Listen:    stay,
			OpenLeft:  reset,
			OpenRight: reset,
		},
		ObservationProbs: map[string][][]float64{
			Listen:    noisy,
			OpenLeft:  reset,
			OpenRight: reset,
		},
		Rewards: map[string][]float64{
			Listen:    {p.ListenCost, p.ListenCost},
			OpenLeft:  {p.Penalty, p.Treasure},
			OpenRight: {p.Treasure, p.Penalty},
		},
	}
}

func New(p Params) (*tabular.Table, error) {
	return tabular.New(Spec(p))
}

// Model is the default tiger problem.
func Model() pomdp.Model[string, string, string] {
	t, err := New(DefaultParams())
	if err != nil {
		panic("BUG: " + err.Error())
	}
	return t.Model()
}

// Belief puts mass pLeft on TigerLeft and the rest on TigerRight.
func Belief(pLeft float64) pomdp.Belief[string] {
	b, err := pomdp.NewBelief([]string{TigerLeft, TigerRight}, []float64{pLeft, 1 - pLeft})
	if err != nil {
		panic("BUG: " + err.Error())
	}
	return b
}
