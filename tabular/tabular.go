// Package tabular builds a POMDP from explicit probability and reward tables,
// typically read from YAML.
//
//	discount: 0.95
//	states: [tiger-left, tiger-right]
//	actions: [listen, open-left, open-right]
//	observations: [hear-left, hear-right]
//	initial: {tiger-left: 0.5, tiger-right: 0.5}
//	transitions:          # per action, rows s, columns s'
//	  listen: [[1, 0], [0, 1]]
//	observation_probs:    # per action, rows s', columns o
//	  listen: [[0.85, 0.15], [0.15, 0.85]]
//	rewards:              # per action, one entry per state
//	  listen: [-1, -1]
package tabular

import (
	"errors"
	"fmt"
	"os"

	"github.com/sw965/pomdp"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

var ErrShapeMismatch = errors.New("table shape mismatch")

type Spec struct {
	Discount         float64                `yaml:"discount"`
	States           []string               `yaml:"states"`
	Actions          []string               `yaml:"actions"`
	Observations     []string               `yaml:"observations"`
	Initial          map[string]float64     `yaml:"initial,omitempty"`
	Goals            []string               `yaml:"goals,omitempty"`
	Transitions      map[string][][]float64 `yaml:"transitions"`
	ObservationProbs map[string][][]float64 `yaml:"observation_probs"`
	Rewards          map[string][]float64   `yaml:"rewards"`
}

// Table is a validated Spec laid out as gonum matrices.
type Table struct {
	spec   Spec
	state  map[string]int
	action map[string]int
	obs    map[string]int
	goals  map[string]bool

	// per action
	transitions  []*mat.Dense
	observations []*mat.Dense
	// rows s, columns a
	rewards *mat.Dense

	initial pomdp.Belief[string]
}

func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Table, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	return New(spec)
}

func indexOf(kind string, names []string) (map[string]int, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no %s", pomdp.ErrEmptyDomain, kind)
	}
	m := make(map[string]int, len(names))
	for i, n := range names {
		if _, ok := m[n]; ok {
			return nil, fmt.Errorf("%s: %w: %q", kind, pomdp.ErrDuplicateElement, n)
		}
		m[n] = i
	}
	return m, nil
}

func denseFrom(kind, action string, rows [][]float64, r, c int) (*mat.Dense, error) {
	if len(rows) != r {
		return nil, fmt.Errorf("%w: %s[%s] has %d rows, want %d", ErrShapeMismatch, kind, action, len(rows), r)
	}
	d := mat.NewDense(r, c, nil)
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("%w: %s[%s] row %d has %d columns, want %d", ErrShapeMismatch, kind, action, i, len(row), c)
		}
		d.SetRow(i, row)
	}
	return d, nil
}

// New checks the shapes and names of spec and lays the tables out. It does not
// check that rows are distributions; see Validate.
func New(spec Spec) (*Table, error) {
	state, err := indexOf("states", spec.States)
	if err != nil {
		return nil, err
	}
	action, err := indexOf("actions", spec.Actions)
	if err != nil {
		return nil, err
	}
	obs, err := indexOf("observations", spec.Observations)
	if err != nil {
		return nil, err
	}

	nS, nA, nO := len(spec.States), len(spec.Actions), len(spec.Observations)
	t := &Table{
		spec:         spec,
		state:        state,
		action:       action,
		obs:          obs,
		goals:        make(map[string]bool, len(spec.Goals)),
		transitions:  make([]*mat.Dense, nA),
		observations: make([]*mat.Dense, nA),
		rewards:      mat.NewDense(nS, nA, nil),
	}

	for ai, a := range spec.Actions {
		tr, err := denseFrom("transitions", a, spec.Transitions[a], nS, nS)
		if err != nil {
			return nil, err
		}
		t.transitions[ai] = tr

		ob, err := denseFrom("observation_probs", a, spec.ObservationProbs[a], nS, nO)
		if err != nil {
			return nil, err
		}
		t.observations[ai] = ob

		r, ok := spec.Rewards[a]
		if !ok || len(r) != nS {
			return nil, fmt.Errorf("%w: rewards[%s] has %d entries, want %d", ErrShapeMismatch, a, len(r), nS)
		}
		t.rewards.SetCol(ai, r)
	}

	if err := checkActionKeys("transitions", spec.Transitions, t.action); err != nil {
		return nil, err
	}
	if err := checkActionKeys("observation_probs", spec.ObservationProbs, t.action); err != nil {
		return nil, err
	}
	if err := checkActionKeys("rewards", spec.Rewards, t.action); err != nil {
		return nil, err
	}

	for _, g := range spec.Goals {
		if _, ok := state[g]; !ok {
			return nil, fmt.Errorf("goals: %w: state %q", pomdp.ErrUnknownElement, g)
		}
		t.goals[g] = true
	}

	if len(spec.Initial) == 0 {
		t.initial = pomdp.Uniform(spec.States)
	} else {
		for s := range spec.Initial {
			if _, ok := state[s]; !ok {
				return nil, fmt.Errorf("initial: %w: state %q", pomdp.ErrUnknownElement, s)
			}
		}
		bb := pomdp.NewBeliefBuilder[string](nS)
		for _, s := range spec.States {
			if p, ok := spec.Initial[s]; ok {
				bb.Add(s, p)
			}
		}
		t.initial = bb.Build()
	}
	return t, nil
}

func checkActionKeys[V any](table string, entries map[string]V, action map[string]int) error {
	for a := range entries {
		if _, ok := action[a]; !ok {
			return fmt.Errorf("%s: %w: action %q", table, pomdp.ErrUnknownElement, a)
		}
	}
	return nil
}

// Validate runs the model checks and CheckDistributions over the tables, then
// checks the initial belief.
func (t *Table) Validate(eps float64) error {
	m := t.Model()
	if err := m.Validate(); err != nil {
		return err
	}
	if err := m.CheckDistributions(eps); err != nil {
		return err
	}
	return t.initial.Validate()
}

func (t *Table) Spec() Spec {
	return t.spec
}

func (t *Table) Initial() pomdp.Belief[string] {
	return t.initial
}

// Model exposes the tables through the pomdp capability set. Names outside the
// tables have probability and reward 0.
func (t *Table) Model() pomdp.Model[string, string, string] {
	action := t.action
	return pomdp.Model[string, string, string]{
		States:       t.spec.States,
		Actions:      t.spec.Actions,
		Observations: t.spec.Observations,
		TransitionFunc: func(s, a, next string) float64 {
			si, ok1 := t.state[s]
			ai, ok2 := action[a]
			ni, ok3 := t.state[next]
			if !ok1 || !ok2 || !ok3 {
				return 0
			}
			return t.transitions[ai].At(si, ni)
		},
		ObservationFunc: func(next, a, o string) float64 {
			ni, ok1 := t.state[next]
			ai, ok2 := action[a]
			oi, ok3 := t.obs[o]
			if !ok1 || !ok2 || !ok3 {
				return 0
			}
			return t.observations[ai].At(ni, oi)
		},
		RewardFunc: func(s, a string) float64 {
			si, ok1 := t.state[s]
			ai, ok2 := action[a]
			if !ok1 || !ok2 {
				return 0
			}
			return t.rewards.At(si, ai)
		},
		IsGoalFunc: func(s string) bool {
			return t.goals[s]
		},
		Discount: t.spec.Discount,
		Initial:  t.initial,
	}
}
