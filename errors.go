package pomdp

import (
	"errors"
)

// Epsilon is the single tolerance used for every "near zero" and "sums to one" comparison.
const Epsilon = 1e-6

var (
	ErrEmptyDomain         = errors.New("empty domain")
	ErrNilModelFunc        = errors.New("model function is nil")
	ErrInvalidDiscount     = errors.New("discount factor must be in (0, 1]")
	ErrDuplicateElement    = errors.New("duplicate element")
	ErrUnknownElement      = errors.New("unknown element")
	ErrInvalidDistribution = errors.New("invalid probability distribution")

	ErrImpossibleObservation = errors.New("impossible observation")
	ErrInvalidBelief         = errors.New("invalid belief")
	ErrEmptyBelief           = errors.New("belief has no mass")

	ErrIndexMismatch      = errors.New("alpha vector index mismatch")
	ErrNoVectorsAvailable = errors.New("no alpha vectors available")
)
