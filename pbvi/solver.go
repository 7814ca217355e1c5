// Package pbvi implements Point-Based Value Iteration: the value function is a set
// of alpha vectors improved by Bellman backups at belief points sampled along
// random walks from the initial belief.
package pbvi

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/sw965/omw/parallel"
	"github.com/sw965/pomdp"
	"gonum.org/v1/gonum/floats"
)

type options struct {
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// Solver owns the value function V, its G-cache and the random source.
// It is not safe for concurrent use; internally it fans read-only work out over
// Config.Parallelism workers.
type Solver[S, A, O comparable] struct {
	model    pomdp.Model[S, A, O]
	space    *space[S, A, O]
	config   Config
	logger   *slog.Logger
	metrics  *Metrics
	rng      *rand.Rand
	explorer pomdp.Policy[S, A]

	vectors []pomdp.AlphaVector[S, A]
	cache   *gCache[S, A]
	points  []pomdp.Belief[S]
}

func New[S, A, O comparable](m pomdp.Model[S, A, O], config Config, opts ...Option) (*Solver[S, A, O], error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}

	sp, err := compile(m)
	if err != nil {
		return nil, err
	}

	return &Solver[S, A, O]{
		model:    m,
		space:    sp,
		config:   config,
		logger:   o.logger,
		metrics:  o.metrics,
		rng:      rand.New(rand.NewPCG(config.Seed, config.Seed)),
		explorer: pomdp.NewRandomPolicy[S](m.Actions),
	}, nil
}

// StateIndex is the index every vector of this solver is laid out in.
func (s *Solver[S, A, O]) StateIndex() *pomdp.Index[S] {
	return s.space.states
}

func (s *Solver[S, A, O]) Vectors() []pomdp.AlphaVector[S, A] {
	return slices.Clone(s.vectors)
}

// Points returns the retained point set B sampled by Init.
func (s *Solver[S, A, O]) Points() []pomdp.Belief[S] {
	return slices.Clone(s.points)
}

// InitVectors resets V to one constant lower-bound vector per action:
// R_min/(1-γ), or Config.InitialValue when set.
func (s *Solver[S, A, O]) InitVectors() error {
	var v float64
	rmin := s.space.minReward()
	switch {
	case s.config.InitialValue != nil:
		v = *s.config.InitialValue
	case s.space.discount < 1:
		v = rmin / (1 - s.space.discount)
	case rmin >= 0:
		v = 0
	default:
		return fmt.Errorf("%w: discount is 1 and the minimum reward %v is negative", ErrNoLowerBound, rmin)
	}
	return s.setVectors(s.space.lowerBound(v))
}

// SetVectors replaces V with caller-built vectors and rebuilds the G-cache.
func (s *Solver[S, A, O]) SetVectors(vectors []pomdp.AlphaVector[S, A]) error {
	vs, err := reindex(s.space, vectors)
	if err != nil {
		return err
	}
	return s.setVectors(dedup(vs))
}

func (s *Solver[S, A, O]) setVectors(vectors []pomdp.AlphaVector[S, A]) error {
	if len(vectors) == 0 {
		return pomdp.ErrNoVectorsAvailable
	}
	cache, err := newGCache(s.space, vectors, s.config.Parallelism)
	if err != nil {
		return err
	}
	s.vectors = vectors
	s.cache = cache
	s.metrics.observeCache(len(vectors))
	return nil
}

// dedup keeps the first vector of every distinct content.
func dedup[S, A comparable](vectors []pomdp.AlphaVector[S, A]) []pomdp.AlphaVector[S, A] {
	seen := make(map[pomdp.AlphaKey[A]]struct{}, len(vectors))
	out := make([]pomdp.AlphaVector[S, A], 0, len(vectors))
	for _, av := range vectors {
		k := av.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, av)
	}
	return out
}

// Transform returns the cached g[a, o, av] of the current snapshot.
func (s *Solver[S, A, O]) Transform(a A, o O, av pomdp.AlphaVector[S, A]) (pomdp.AlphaVector[S, A], error) {
	if s.cache == nil {
		return pomdp.AlphaVector[S, A]{}, pomdp.ErrNoVectorsAvailable
	}
	ai := slices.Index(s.space.actions, a)
	if ai < 0 {
		return pomdp.AlphaVector[S, A]{}, fmt.Errorf("%w: action %v", pomdp.ErrUnknownElement, a)
	}
	oi := slices.Index(s.space.observations, o)
	if oi < 0 {
		return pomdp.AlphaVector[S, A]{}, fmt.Errorf("%w: observation %v", pomdp.ErrUnknownElement, o)
	}
	g, ok := s.cache.lookup(ai, oi, av)
	if !ok {
		return pomdp.AlphaVector[S, A]{}, fmt.Errorf("%w: vector is not part of the current value function", pomdp.ErrUnknownElement)
	}
	return g, nil
}

// Backup applies one point-based Bellman backup at b against the current V.
func (s *Solver[S, A, O]) Backup(b pomdp.Belief[S]) (pomdp.AlphaVector[S, A], error) {
	if len(s.vectors) == 0 {
		return pomdp.AlphaVector[S, A]{}, pomdp.ErrNoVectorsAvailable
	}
	av, _ := backup(s.space, s.cache, s.space.dense(b))
	return av, nil
}

// Value is max over V of the vectors' values at b, with the maximizing vector.
func (s *Solver[S, A, O]) Value(b pomdp.Belief[S]) (float64, pomdp.AlphaVector[S, A], error) {
	if len(s.vectors) == 0 {
		return 0, pomdp.AlphaVector[S, A]{}, pomdp.ErrNoVectorsAvailable
	}
	av, v := argmax(s.vectors, s.space.dense(b))
	return v, av, nil
}

// GetAction is the policy: the action of the vector that is best at b.
func (s *Solver[S, A, O]) GetAction(b pomdp.Belief[S]) (A, error) {
	_, av, err := s.Value(b)
	if err != nil {
		var zero A
		return zero, err
	}
	return av.Action, nil
}

// SelectAction implements pomdp.Policy. The value function is deterministic, so rng is unused.
func (s *Solver[S, A, O]) SelectAction(b pomdp.Belief[S], _ *rand.Rand) (A, error) {
	return s.GetAction(b)
}

// Solve runs PointBasedVI with the configured budgets.
func (s *Solver[S, A, O]) Solve() error {
	return s.PointBasedVI(s.config.BeliefPoints, s.config.Iterations)
}

// PointBasedVI runs Init and then iterations rounds of Iterate.
func (s *Solver[S, A, O]) PointBasedVI(beliefPoints, iterations int) error {
	if beliefPoints < 1 || iterations < 1 {
		return fmt.Errorf("%w: belief points and iterations must be >= 1, got %d and %d", ErrInvalidConfig, beliefPoints, iterations)
	}
	s.logger.Info("starting point-based value iteration",
		"belief_points", beliefPoints,
		"iterations", iterations,
		"states", s.space.numStates(),
		"actions", s.space.numActions(),
		"observations", s.space.numObservations(),
		"seed", s.config.Seed,
	)

	if err := s.Init(beliefPoints); err != nil {
		return err
	}
	for it := 1; it <= iterations; it++ {
		stats, err := s.Iterate(beliefPoints)
		if err != nil {
			return err
		}
		s.logger.Info("iteration done",
			"iteration", it,
			"points", stats.Points,
			"backups", stats.Backups,
			"accepted", stats.Accepted,
			"vectors", len(s.vectors),
		)
	}
	return nil
}

// Init samples the retained point set B and resets V to the lower bound.
func (s *Solver[S, A, O]) Init(beliefPoints int) error {
	points, err := s.CollectBeliefs(beliefPoints)
	if err != nil {
		return err
	}
	s.points = points
	return s.InitVectors()
}

// Iterate samples a fresh point set B' and runs one improvement round over B
// followed by B'. The value at every point of B never decreases.
func (s *Solver[S, A, O]) Iterate(beliefPoints int) (ImproveStats, error) {
	if len(s.vectors) == 0 {
		return ImproveStats{}, pomdp.ErrNoVectorsAvailable
	}
	fresh, err := s.CollectBeliefs(beliefPoints)
	if err != nil {
		return ImproveStats{}, err
	}
	points := make([]pomdp.Belief[S], 0, len(s.points)+len(fresh))
	points = append(points, s.points...)
	points = append(points, fresh...)
	return s.Improve(points)
}

type ImproveStats struct {
	Points   int
	Backups  int
	Accepted int
}

// Improve runs one improvement round over points and replaces V with the result.
// For every point p the new value is at least the old one: a backed-up vector is
// accepted only if it does not lose at the point it was computed for, and it then
// retires every remaining point it also does not lose at; a point whose backup is
// worse keeps its old best vector.
func (s *Solver[S, A, O]) Improve(points []pomdp.Belief[S]) (ImproveStats, error) {
	stats := ImproveStats{Points: len(points)}
	if len(s.vectors) == 0 {
		return stats, pomdp.ErrNoVectorsAvailable
	}
	if len(points) == 0 {
		return stats, nil
	}

	n := len(points)
	dense := make([][]float64, n)
	baseline := make([]float64, n)
	err := parallel.For(n, s.config.Parallelism, func(workerId, idx int) error {
		dense[idx] = s.space.dense(points[idx])
		_, baseline[idx] = argmax(s.vectors, dense[idx])
		return nil
	})
	if err != nil {
		return stats, err
	}

	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	next := make([]pomdp.AlphaVector[S, A], 0, n)
	for len(remaining) > 0 {
		k := s.rng.IntN(len(remaining))
		i := remaining[k]

		av, value := backup(s.space, s.cache, dense[i])
		stats.Backups++

		if value >= baseline[i] {
			next = append(next, av)
			stats.Accepted++
			remaining = slices.DeleteFunc(remaining, func(j int) bool {
				return j == i || floats.Dot(av.RawValues(), dense[j]) >= baseline[j]
			})
			continue
		}

		remaining = slices.Delete(remaining, k, k+1)
		best, _ := argmax(s.vectors, dense[i])
		next = append(next, best)
	}

	s.metrics.observeIteration(stats.Backups, stats.Accepted)
	if err := s.setVectors(dedup(next)); err != nil {
		return stats, err
	}
	return stats, nil
}
