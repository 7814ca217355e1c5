package pbvi

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("invalid solver config")
	ErrNoLowerBound  = errors.New("no lower bound for the initial value function")
)

const (
	DefaultBeliefPoints = 100
	DefaultIterations   = 30
	// DefaultTrials is the number of random walks a point set is collected from.
	DefaultTrials = 100
	DefaultSeed   = 1
)

type Config struct {
	BeliefPoints int    `yaml:"belief_points"`
	Iterations   int    `yaml:"iterations"`
	Trials       int    `yaml:"trials"`
	Parallelism  int    `yaml:"parallelism"`
	Seed         uint64 `yaml:"seed"`
	// InitialValue overrides R_min/(1-γ) as the value of the initial vectors.
	// Required when the discount is 1 and some reward is negative.
	InitialValue *float64 `yaml:"initial_value,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		BeliefPoints: DefaultBeliefPoints,
		Iterations:   DefaultIterations,
		Trials:       DefaultTrials,
		Parallelism:  runtime.NumCPU(),
		Seed:         DefaultSeed,
	}
}

func (c Config) Validate() error {
	if c.BeliefPoints < 1 {
		return fmt.Errorf("%w: belief_points must be >= 1, got %d", ErrInvalidConfig, c.BeliefPoints)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be >= 1, got %d", ErrInvalidConfig, c.Iterations)
	}
	if c.Trials < 1 {
		return fmt.Errorf("%w: trials must be >= 1, got %d", ErrInvalidConfig, c.Trials)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("%w: parallelism must be >= 1, got %d", ErrInvalidConfig, c.Parallelism)
	}
	return nil
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading solver config: %w", err)
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
