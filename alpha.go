package pomdp

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// AlphaVector is a linear function over the belief simplex, stored densely in the
// order of its state Index and tagged with the action it recommends.
// Vectors are values: every operation returns a new vector.
type AlphaVector[S, A comparable] struct {
	Action A
	index  *Index[S]
	values []float64
}

func NewAlphaVector[S, A comparable](index *Index[S], action A, values []float64) (AlphaVector[S, A], error) {
	if index.Len() != len(values) {
		return AlphaVector[S, A]{}, fmt.Errorf("%w: index has %d states but %d values were given", ErrIndexMismatch, index.Len(), len(values))
	}
	return AlphaVector[S, A]{Action: action, index: index, values: slices.Clone(values)}, nil
}

func NewAlphaVectorFromMap[S, A comparable](index *Index[S], action A, values map[S]float64) (AlphaVector[S, A], error) {
	dense := make([]float64, index.Len())
	for s, v := range values {
		i, ok := index.Pos(s)
		if !ok {
			return AlphaVector[S, A]{}, fmt.Errorf("%w: state %v", ErrUnknownElement, s)
		}
		dense[i] = v
	}
	return AlphaVector[S, A]{Action: action, index: index, values: dense}, nil
}

// NewConstantAlphaVector assigns v to every state.
func NewConstantAlphaVector[S, A comparable](index *Index[S], action A, v float64) AlphaVector[S, A] {
	values := make([]float64, index.Len())
	floats.AddConst(v, values)
	return AlphaVector[S, A]{Action: action, index: index, values: values}
}

func (av AlphaVector[S, A]) Index() *Index[S] {
	return av.index
}

func (av AlphaVector[S, A]) Len() int {
	return len(av.values)
}

func (av AlphaVector[S, A]) Value(s S) float64 {
	i, ok := av.index.Pos(s)
	if !ok {
		return 0.0
	}
	return av.values[i]
}

func (av AlphaVector[S, A]) Values() []float64 {
	return slices.Clone(av.values)
}

// RawValues exposes the backing slice. Callers must not modify it.
func (av AlphaVector[S, A]) RawValues() []float64 {
	return av.values
}

// Dot is the value of the vector at belief b: Σ_s b(s)·α(s) over the states that
// carry mass in b. States outside the index contribute nothing.
func (av AlphaVector[S, A]) Dot(b Belief[S]) float64 {
	var sum float64
	for i, s := range b.states {
		p := b.probs[i]
		if p == 0 {
			continue
		}
		j, ok := av.index.Pos(s)
		if !ok {
			continue
		}
		sum += p * av.values[j]
	}
	return sum
}

// Add returns the pointwise sum. The action of a sum is ambiguous, so the caller names it.
func (av AlphaVector[S, A]) Add(other AlphaVector[S, A], action A) (AlphaVector[S, A], error) {
	if av.index != other.index || len(av.values) != len(other.values) {
		return AlphaVector[S, A]{}, ErrIndexMismatch
	}
	values := make([]float64, len(av.values))
	floats.AddTo(values, av.values, other.values)
	return AlphaVector[S, A]{Action: action, index: av.index, values: values}, nil
}

func (av AlphaVector[S, A]) Scale(c float64) AlphaVector[S, A] {
	values := make([]float64, len(av.values))
	floats.ScaleTo(values, c, av.values)
	return AlphaVector[S, A]{Action: av.Action, index: av.index, values: values}
}

// AlphaKey identifies an alpha vector by content: two vectors with the same action
// and bit-identical values have equal keys.
type AlphaKey[A comparable] struct {
	action A
	bits   string
}

func (av AlphaVector[S, A]) Key() AlphaKey[A] {
	buf := make([]byte, 0, 8*len(av.values))
	for _, v := range av.values {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}
	return AlphaKey[A]{action: av.Action, bits: string(buf)}
}

func (av AlphaVector[S, A]) Equal(other AlphaVector[S, A]) bool {
	return av.Action == other.Action && floats.Equal(av.values, other.values)
}

func (av AlphaVector[S, A]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%v[", av.Action)
	for i, v := range av.values {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%v=%.4f", av.index.At(i), v)
	}
	sb.WriteString("]")
	return sb.String()
}
