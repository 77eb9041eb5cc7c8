package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/mathsteps/formatter"
)

var assessJSONOutput bool

var assessCmd = &cobra.Command{
	Use:   "assess <from> <to>",
	Short: "Check a learner's step",
	Long: `Tells whether the step from -> to is valid and, when it is not, which mistake it shows.
Example) mathsteps assess "5+3*2" "16"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		return runWithTimeout(ctx, func() error {
			step, err := engine.Assess(args[0], args[1])
			if err != nil {
				return err
			}
			if !assessJSONOutput {
				fmt.Fprint(out, formatter.FormatAssessment(step))
				return nil
			}
			d, err := json.MarshalIndent(step, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(d))
			return nil
		})
	},
}

func init() {
	assessCmd.Flags().BoolVar(&assessJSONOutput, "json", false, "Output the assessment in JSON format")
}
