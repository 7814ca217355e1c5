package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/sw965/pomdp"
	"github.com/sw965/pomdp/pbvi"
	"github.com/sw965/pomdp/tabular"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type solveFlags struct {
	model      string
	config     string
	points     int
	iterations int
	trials     int
	seed       uint64
	beliefs    []string
}

func newSolveCmd(logger func(*cobra.Command) (*slog.Logger, error)) *cobra.Command {
	var f solveFlags

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Run PBVI on a YAML model and print the policy",
		Long: `Solve loads a tabular model, runs point-based value iteration and prints the
resulting alpha vectors followed by the chosen action at every --belief
(the model's initial belief when none is given).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger(cmd)
			if err != nil {
				return err
			}
			return runSolve(cmd, f, log)
		},
	}

	cmd.Flags().StringVar(&f.model, "model", "", "model YAML file")
	cmd.Flags().StringVar(&f.config, "config", "", "solver config YAML file")
	cmd.Flags().IntVar(&f.points, "points", pbvi.DefaultBeliefPoints, "belief points per iteration")
	cmd.Flags().IntVar(&f.iterations, "iterations", pbvi.DefaultIterations, "improvement iterations")
	cmd.Flags().IntVar(&f.trials, "trials", pbvi.DefaultTrials, "random walks per point set")
	cmd.Flags().Uint64Var(&f.seed, "seed", pbvi.DefaultSeed, "random seed")
	cmd.Flags().StringArrayVar(&f.beliefs, "belief", nil, `query belief "state=mass,..." (repeatable)`)
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

// solverConfig reads --config and lets explicitly set flags override it.
func solverConfig(cmd *cobra.Command, f solveFlags) (pbvi.Config, error) {
	cfg := pbvi.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = pbvi.LoadConfig(f.config); err != nil {
			return pbvi.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("points") {
		cfg.BeliefPoints = f.points
	}
	if flags.Changed("iterations") {
		cfg.Iterations = f.iterations
	}
	if flags.Changed("trials") {
		cfg.Trials = f.trials
	}
	if flags.Changed("seed") {
		cfg.Seed = f.seed
	}
	return cfg, cfg.Validate()
}

func runSolve(cmd *cobra.Command, f solveFlags, log *slog.Logger) error {
	table, err := tabular.Load(f.model)
	if err != nil {
		return err
	}
	if err := table.Validate(pomdp.Epsilon); err != nil {
		return err
	}
	m := table.Model()

	cfg, err := solverConfig(cmd, f)
	if err != nil {
		return err
	}

	queries := make([]pomdp.Belief[string], 0, len(f.beliefs))
	for _, s := range f.beliefs {
		b, err := parseBelief(s, m.States)
		if err != nil {
			return err
		}
		queries = append(queries, b)
	}
	if len(queries) == 0 {
		queries = append(queries, m.Initial)
	}

	reg := prometheus.NewRegistry()
	solver, err := pbvi.New(m, cfg, pbvi.WithLogger(log), pbvi.WithMetrics(pbvi.NewMetrics(reg)))
	if err != nil {
		return err
	}
	if err := solver.Solve(); err != nil {
		return err
	}
	logMetrics(log, reg)
	if err := logRetained(log, solver); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "alpha vectors (%d):\n", len(solver.Vectors()))
	for _, av := range solver.Vectors() {
		fmt.Fprintf(out, "  %v\n", av)
	}

	fmt.Fprintln(out, "policy:")
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  belief\taction\tvalue")
	for _, b := range queries {
		v, av, err := solver.Value(b)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %v\t%v\t%.4f\n", b, av.Action, v)
	}
	return w.Flush()
}

// logRetained reports V over the retained point set B.
func logRetained(log *slog.Logger, solver *pbvi.Solver[string, string, string]) error {
	points := solver.Points()
	values := make([]float64, len(points))
	for i, b := range points {
		v, _, err := solver.Value(b)
		if err != nil {
			return err
		}
		values[i] = v
	}
	log.Info("retained point set",
		"points", len(points),
		"min_value", floats.Min(values),
		"mean_value", stat.Mean(values, nil),
	)
	return nil
}

func logMetrics(log *slog.Logger, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		log.Warn("gathering solver metrics", "error", err)
		return
	}
	attrs := make([]any, 0, 2*len(families))
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				attrs = append(attrs, mf.GetName(), metric.GetCounter().GetValue())
			case metric.GetGauge() != nil:
				attrs = append(attrs, mf.GetName(), metric.GetGauge().GetValue())
			}
		}
	}
	log.Info("solver metrics", attrs...)
}
