package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sw965/pomdp"
	"github.com/sw965/pomdp/tabular"
)

func newBeliefCmd() *cobra.Command {
	var (
		model   string
		initial string
		steps   []string
	)

	cmd := &cobra.Command{
		Use:     "belief",
		Short:   "Run the belief filter over an action/observation history",
		Example: `  pbvi belief --model tiger.yaml --step listen:hear-left --step listen:hear-left`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := tabular.Load(model)
			if err != nil {
				return err
			}
			if err := table.Validate(pomdp.Epsilon); err != nil {
				return err
			}
			m := table.Model()

			b := m.Initial
			if initial != "" {
				if b, err = parseBelief(initial, m.States); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "start %v\n", b)
			for i, s := range steps {
				st, err := parseStep(s)
				if err != nil {
					return err
				}
				pObs := pomdp.ObservationProbability(m, b, st.action, st.observation)
				b, err = pomdp.Update(m, b, st.action, st.observation)
				if err != nil {
					return fmt.Errorf("step %d: %w", i+1, err)
				}
				fmt.Fprintf(out, "%d %s:%s Pr(o)=%.4f %v\n", i+1, st.action, st.observation, pObs, b)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model YAML file")
	cmd.Flags().StringVar(&initial, "initial", "", `starting belief "state=mass,..." (default: the model's)`)
	cmd.Flags().StringArrayVar(&steps, "step", nil, "action:observation (repeatable, in order)")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
