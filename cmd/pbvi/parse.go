package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sw965/pomdp"
)

// parseBelief reads "state=mass,state=mass" over the given states. The result
// must be a valid distribution.
func parseBelief(s string, states []string) (pomdp.Belief[string], error) {
	known := make(map[string]bool, len(states))
	for _, st := range states {
		known[st] = true
	}

	bb := pomdp.NewBeliefBuilder[string](len(states))
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, mass, ok := strings.Cut(entry, "=")
		if !ok {
			return pomdp.Belief[string]{}, fmt.Errorf("belief entry %q: want state=mass", entry)
		}
		name = strings.TrimSpace(name)
		if !known[name] {
			return pomdp.Belief[string]{}, fmt.Errorf("belief entry %q: %w: state %q", entry, pomdp.ErrUnknownElement, name)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(mass), 64)
		if err != nil {
			return pomdp.Belief[string]{}, fmt.Errorf("belief entry %q: %w", entry, err)
		}
		bb.Add(name, p)
	}

	b := bb.Build()
	if err := b.Validate(); err != nil {
		return pomdp.Belief[string]{}, fmt.Errorf("belief %q: %w", s, err)
	}
	return b, nil
}

type step struct {
	action      string
	observation string
}

func parseStep(s string) (step, error) {
	a, o, ok := strings.Cut(s, ":")
	a, o = strings.TrimSpace(a), strings.TrimSpace(o)
	if !ok || a == "" || o == "" {
		return step{}, fmt.Errorf("step %q: want action:observation", s)
	}
	return step{action: a, observation: o}, nil
}
