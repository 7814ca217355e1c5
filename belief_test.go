package pomdp_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sw965/pomdp"
)

func TestBeliefProb(t *testing.T) {
	b, err := pomdp.NewBelief([]string{"a", "b"}, []float64{0.25, 0.75})
	require.NoError(t, err)

	assert.Equal(t, 0.25, b.Prob("a"))
	assert.Equal(t, 0.75, b.Prob("b"))
	// 保持していない状態は0
	assert.Equal(t, 0.0, b.Prob("c"))
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []string{"a", "b"}, b.States())
}

func TestNewBelief(t *testing.T) {
	tests := []struct {
		name    string
		states  []string
		probs   []float64
		want    map[string]float64
		wantLen int
		wantErr error
	}{
		{
			name:    "正常",
			states:  []string{"a", "b"},
			probs:   []float64{0.4, 0.6},
			want:    map[string]float64{"a": 0.4, "b": 0.6},
			wantLen: 2,
		},
		{
			name:    "正常_重複は加算",
			states:  []string{"a", "b", "a"},
			probs:   []float64{0.2, 0.6, 0.2},
			want:    map[string]float64{"a": 0.4, "b": 0.6},
			wantLen: 2,
		},
		{
			name:    "正常_質量0は保持しない",
			states:  []string{"a", "b"},
			probs:   []float64{1, 0},
			want:    map[string]float64{"a": 1, "b": 0},
			wantLen: 1,
		},
		{
			name:    "異常_長さ不一致",
			states:  []string{"a", "b"},
			probs:   []float64{1},
			wantErr: pomdp.ErrInvalidBelief,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := pomdp.NewBelief(tc.states, tc.probs)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantLen, b.Len())
			for s, p := range tc.want {
				assert.InDelta(t, p, b.Prob(s), 1e-12, "state %s", s)
			}
		})
	}
}

func TestBeliefValidate(t *testing.T) {
	tests := []struct {
		name    string
		belief  pomdp.Belief[string]
		wantErr []error
	}{
		{
			name:   "正常_一様",
			belief: pomdp.Uniform([]string{"a", "b", "c"}),
		},
		{
			name:   "正常_一点",
			belief: pomdp.PointMass("a"),
		},
		{
			name:   "正常_許容誤差内",
			belief: mustBelief(t, []string{"a", "b"}, []float64{0.5, 0.5 + 5e-7}),
		},
		{
			name:    "異常_負の質量",
			belief:  mustBelief(t, []string{"a", "b"}, []float64{1.5, -0.5}),
			wantErr: []error{pomdp.ErrInvalidBelief},
		},
		{
			name:    "異常_合計が1でない",
			belief:  mustBelief(t, []string{"a", "b"}, []float64{0.5, 0.4}),
			wantErr: []error{pomdp.ErrInvalidBelief},
		},
		{
			name:    "異常_NaN",
			belief:  mustBelief(t, []string{"a", "b"}, []float64{math.NaN(), 1}),
			wantErr: []error{pomdp.ErrInvalidBelief},
		},
		{
			name:    "異常_空",
			belief:  pomdp.Uniform([]string{}),
			wantErr: []error{pomdp.ErrInvalidBelief, pomdp.ErrEmptyBelief},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.belief.Validate()
			if len(tc.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tc.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestBeliefBuilder(t *testing.T) {
	bb := pomdp.NewBeliefBuilder[string](2)
	bb.Add("a", 0.1)
	bb.Add("b", 0.3)
	bb.Add("a", 0.2)
	bb.Add("c", 0)
	assert.InDelta(t, 0.6, bb.Total(), 1e-12)

	b := bb.Build()
	assert.Equal(t, []string{"a", "b"}, b.States())
	assert.InDelta(t, 0.3, b.Prob("a"), 1e-12)

	// Build後の追加は発行済みの信念に影響しない
	bb.Add("a", 10)
	assert.InDelta(t, 0.3, b.Prob("a"), 1e-12)
}

func TestBeliefSupport(t *testing.T) {
	b := mustBelief(t, []string{"a", "b", "c"}, []float64{0.7, 0.2999, 0.0001})

	got := map[string]float64{}
	for s, p := range b.Support(0.01) {
		got[s] = p
	}
	assert.Equal(t, map[string]float64{"a": 0.7, "b": 0.2999}, got)

	var order []string
	for s := range b.All() {
		order = append(order, s)
	}
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestBeliefApproxEqual(t *testing.T) {
	a := mustBelief(t, []string{"x", "y"}, []float64{0.5, 0.5})
	b := mustBelief(t, []string{"y", "x"}, []float64{0.5 + 1e-9, 0.5})
	c := mustBelief(t, []string{"x"}, []float64{1})

	assert.True(t, a.ApproxEqual(b, 1e-6))
	assert.False(t, a.ApproxEqual(c, 1e-6))
	assert.False(t, c.ApproxEqual(a, 1e-6))
}

func TestBeliefString(t *testing.T) {
	b := mustBelief(t, []string{"a", "b", "c"}, []float64{0.75, 0.25, 0.005})
	assert.Equal(t, "<a=0.75,b=0.25,>", b.String())
}

func mustBelief(t *testing.T, states []string, probs []float64) pomdp.Belief[string] {
	t.Helper()
	b, err := pomdp.NewBelief(states, probs)
	require.NoError(t, err)
	return b
}
