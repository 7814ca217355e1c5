package pomdp

import (
	"fmt"
	"slices"
)

// Index fixes an enumeration order over a finite set of comparable elements.
// Alpha vectors share the state Index of the model they were built for.
type Index[K comparable] struct {
	keys []K
	pos  map[K]int
}

func NewIndex[K comparable](keys []K) (*Index[K], error) {
	pos := make(map[K]int, len(keys))
	for i, k := range keys {
		if _, ok := pos[k]; ok {
			return nil, fmt.Errorf("%w: %v", ErrDuplicateElement, k)
		}
		pos[k] = i
	}
	return &Index[K]{keys: slices.Clone(keys), pos: pos}, nil
}

func (ix *Index[K]) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.keys)
}

func (ix *Index[K]) At(i int) K {
	return ix.keys[i]
}

// Keys returns a copy of the keys in index order.
func (ix *Index[K]) Keys() []K {
	if ix == nil {
		return nil
	}
	return slices.Clone(ix.keys)
}

func (ix *Index[K]) Pos(k K) (int, bool) {
	if ix == nil {
		return 0, false
	}
	i, ok := ix.pos[k]
	return i, ok
}
