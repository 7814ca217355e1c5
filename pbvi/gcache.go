package pbvi

import (
	"github.com/sw965/omw/parallel"
	"github.com/sw965/pomdp"
)

// gCache holds g[a, o, α] for every vector of one frozen value-function snapshot.
// It is filled completely before the first backup and only read afterwards, so
// backups may share it without locking. A new snapshot needs a new cache.
type gCache[S, A comparable] struct {
	numObservations int
	pos             map[pomdp.AlphaKey[A]]int
	// entries[a*|O|+o][v] is the transform of the v-th snapshot vector.
	entries [][]pomdp.AlphaVector[S, A]
}

func newGCache[S, A, O comparable](sp *space[S, A, O], vectors []pomdp.AlphaVector[S, A], p int) (*gCache[S, A], error) {
	nO := sp.numObservations()
	pairs := sp.numActions() * nO

	pos := make(map[pomdp.AlphaKey[A]]int, len(vectors))
	for v, av := range vectors {
		pos[av.Key()] = v
	}

	entries := make([][]pomdp.AlphaVector[S, A], pairs)
	err := parallel.For(pairs, p, func(workerId, idx int) error {
		a, o := idx/nO, idx%nO
		row := make([]pomdp.AlphaVector[S, A], len(vectors))
		for v, av := range vectors {
			row[v] = sp.transform(a, o, av)
		}
		entries[idx] = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &gCache[S, A]{
		numObservations: nO,
		pos:             pos,
		entries:         entries,
	}, nil
}

func (c *gCache[S, A]) row(a, o int) []pomdp.AlphaVector[S, A] {
	return c.entries[a*c.numObservations+o]
}

// lookup finds g[a, o, av] by the content of av.
func (c *gCache[S, A]) lookup(a, o int, av pomdp.AlphaVector[S, A]) (pomdp.AlphaVector[S, A], bool) {
	v, ok := c.pos[av.Key()]
	if !ok {
		return pomdp.AlphaVector[S, A]{}, false
	}
	return c.row(a, o)[v], true
}

func (c *gCache[S, A]) size() int {
	n := 0
	for _, row := range c.entries {
		n += len(row)
	}
	return n
}
