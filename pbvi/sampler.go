package pbvi

import (
	"fmt"

	"github.com/sw965/pomdp"
)

// simulateTrial walks the model from a state drawn from the initial belief, choosing
// actions with the explorer. It returns the successor beliefs in visiting order and
// stops at a goal state or after maxSteps beliefs.
func (s *Solver[S, A, O]) simulateTrial(maxSteps int) ([]pomdp.Belief[S], error) {
	b := s.model.Initial
	state, err := pomdp.SampleState(b, s.rng)
	if err != nil {
		return nil, fmt.Errorf("initial belief: %w", err)
	}

	beliefs := make([]pomdp.Belief[S], 0, maxSteps)
	for len(beliefs) < maxSteps && !s.model.IsGoal(state) {
		a, err := s.explorer.SelectAction(b, s.rng)
		if err != nil {
			return nil, err
		}

		next, err := pomdp.SampleNextState(s.model, state, a, s.rng)
		if err != nil {
			return nil, err
		}

		o, err := pomdp.SampleStateObservation(s.model, next, a, s.rng)
		if err != nil {
			return nil, err
		}

		b, err = pomdp.Update(s.model, b, a, o)
		if err != nil {
			return nil, err
		}
		beliefs = append(beliefs, b)
		state = next
	}
	return beliefs, nil
}

// CollectBeliefs samples a point set of exactly n beliefs (fewer only when every
// trial starts in a goal state). The initial belief is always the first point; the
// rest come from Config.Trials random walks of ⌈n/Trials⌉ steps, repeated until
// the set is full.
func (s *Solver[S, A, O]) CollectBeliefs(n int) ([]pomdp.Belief[S], error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: belief point budget must be >= 1, got %d", ErrInvalidConfig, n)
	}

	s.logger.Debug("collecting belief points", "target", n)
	points := make([]pomdp.Belief[S], 0, n)
	points = append(points, s.model.Initial)

	stepsPerTrial := max(1, (n+s.config.Trials-1)/s.config.Trials)
	// ゴール状態から始まる試行は信念点を生まない。全ての試行がそうなら打ち切る。
	emptyTrials := 0
	for len(points) < n && emptyTrials < n {
		trial, err := s.simulateTrial(stepsPerTrial)
		if err != nil {
			return nil, err
		}
		if len(trial) == 0 {
			emptyTrials++
			continue
		}
		points = append(points, trial...)
	}

	if len(points) > n {
		points = points[:n]
	}
	s.logger.Debug("collected belief points", "count", len(points))
	return points, nil
}
