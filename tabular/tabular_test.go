package tabular_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/pomdp"
	"github.com/sw965/pomdp/problem/tiger"
	"github.com/sw965/pomdp/tabular"
)

func TestLoad(t *testing.T) {
	table, err := tabular.Load("testdata/tiger.yaml")
	require.NoError(t, err)
	require.NoError(t, table.Validate(pomdp.Epsilon))

	got := table.Model()
	want := tiger.Model()
	require.NoError(t, got.Validate())
	assert.Equal(t, want.States, got.States)
	assert.Equal(t, want.Discount, got.Discount)

	for _, s := range want.States {
		for _, a := range want.Actions {
			assert.InDelta(t, want.RewardFunc(s, a), got.RewardFunc(s, a), 1e-12, "R(%s, %s)", s, a)
			for _, next := range want.States {
				assert.InDelta(t, want.TransitionFunc(s, a, next), got.TransitionFunc(s, a, next), 1e-12, "T(%s, %s, %s)", s, a, next)
			}
			for _, o := range want.Observations {
				assert.InDelta(t, want.ObservationFunc(s, a, o), got.ObservationFunc(s, a, o), 1e-12, "O(%s|%s, %s)", o, a, s)
			}
		}
	}
	assert.True(t, got.Initial.ApproxEqual(want.Initial, 1e-12))
}

func TestModelUnknownNames(t *testing.T) {
	m := tiger.Model()
	assert.Equal(t, 0.0, m.TransitionFunc("nowhere", tiger.Listen, tiger.TigerLeft))
	assert.Equal(t, 0.0, m.ObservationFunc(tiger.TigerLeft, "dance", tiger.HearLeft))
	assert.Equal(t, 0.0, m.RewardFunc(tiger.TigerLeft, "dance"))
	assert.False(t, m.IsGoal(tiger.TigerLeft))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *tabular.Spec)
		wantErr error
	}{
		{
			name:   "正常",
			modify: func(s *tabular.Spec) {},
		},
		{
			name:   "正常_初期信念省略は一様",
			modify: func(s *tabular.Spec) { s.Initial = nil },
		},
		{
			name:    "異常_状態なし",
			modify:  func(s *tabular.Spec) { s.States = nil },
			wantErr: pomdp.ErrEmptyDomain,
		},
		{
			name:    "異常_観測重複",
			modify:  func(s *tabular.Spec) { s.Observations = []string{"a", "a"} },
			wantErr: pomdp.ErrDuplicateElement,
		},
		{
			name:    "異常_遷移の行数",
			modify:  func(s *tabular.Spec) { s.Transitions[tiger.Listen] = [][]float64{{1, 0}} },
			wantErr: tabular.ErrShapeMismatch,
		},
		{
			name:    "異常_観測の列数",
			modify:  func(s *tabular.Spec) { s.ObservationProbs[tiger.Listen] = [][]float64{{1}, {1}} },
			wantErr: tabular.ErrShapeMismatch,
		},
		{
			name:    "異常_報酬なし",
			modify:  func(s *tabular.Spec) { delete(s.Rewards, tiger.OpenLeft) },
			wantErr: tabular.ErrShapeMismatch,
		},
		{
			name:    "異常_未知の行動",
			modify:  func(s *tabular.Spec) { s.Rewards["dance"] = []float64{0, 0} },
			wantErr: pomdp.ErrUnknownElement,
		},
		{
			name:    "異常_未知のゴール",
			modify:  func(s *tabular.Spec) { s.Goals = []string{"tiger-up"} },
			wantErr: pomdp.ErrUnknownElement,
		},
		{
			name:    "異常_初期信念に未知の状態",
			modify:  func(s *tabular.Spec) { s.Initial = map[string]float64{"tiger-up": 1} },
			wantErr: pomdp.ErrUnknownElement,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := tiger.Spec(tiger.DefaultParams())
			tc.modify(&spec)
			table, err := tabular.New(spec)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, table.Validate(pomdp.Epsilon))
			assert.InDelta(t, 0.5, table.Initial().Prob(tiger.TigerLeft), 1e-12)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *tabular.Spec)
		wantErr error
	}{
		{
			name:    "遷移の合計が1でない",
			modify:  func(s *tabular.Spec) { s.Transitions[tiger.Listen] = [][]float64{{0.5, 0.4}, {0, 1}} },
			wantErr: pomdp.ErrInvalidDistribution,
		},
		{
			name:    "観測が負",
			modify:  func(s *tabular.Spec) { s.ObservationProbs[tiger.Listen] = [][]float64{{1.5, -0.5}, {0, 1}} },
			wantErr: pomdp.ErrInvalidDistribution,
		},
		{
			name:    "観測の合計が1でない",
			modify:  func(s *tabular.Spec) { s.ObservationProbs[tiger.OpenLeft] = [][]float64{{0.5, 0.5}, {0.5, 0.6}} },
			wantErr: pomdp.ErrInvalidDistribution,
		},
		{
			name:    "初期信念の合計が1でない",
			modify:  func(s *tabular.Spec) { s.Initial = map[string]float64{tiger.TigerLeft: 0.3} },
			wantErr: pomdp.ErrInvalidBelief,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := tiger.Spec(tiger.DefaultParams())
			tc.modify(&spec)
			table, err := tabular.New(spec)
			require.NoError(t, err)
			err = table.Validate(pomdp.Epsilon)
			assert.ErrorIs(t, err, tc.wantErr)
			// 表の検証はモデルの検証と同じ判定をする
			if tc.wantErr == pomdp.ErrInvalidDistribution {
				assert.ErrorIs(t, table.Model().CheckDistributions(pomdp.Epsilon), tc.wantErr)
			}
		})
	}

	spec := tiger.Spec(tiger.DefaultParams())
	spec.Discount = 0
	table, err := tabular.New(spec)
	require.NoError(t, err)
	assert.ErrorIs(t, table.Validate(pomdp.Epsilon), pomdp.ErrInvalidDiscount)
}

func TestParse(t *testing.T) {
	_, err := tabular.Parse([]byte("states: [a\n"))
	assert.Error(t, err)

	table, err := tabular.Parse([]byte(`
discount: 1
states: [a, b]
actions: [go]
observations: [ping]
goals: [b]
transitions:
  go: [[0, 1], [0, 1]]
observation_probs:
  go: [[1], [1]]
rewards:
  go: [-1, 0]
`))
	require.NoError(t, err)
	require.NoError(t, table.Validate(pomdp.Epsilon))

	m := table.Model()
	assert.True(t, m.IsGoal("b"))
	assert.False(t, m.IsGoal("a"))
	assert.InDelta(t, 0.5, m.Initial.Prob("a"), 1e-12)
	assert.Equal(t, []string{"b"}, table.Spec().Goals)
}
