package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/mathsteps/formatter"
	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/types"
)

var (
	unknown         string
	solveJSONOutput bool
)

var solveCmd = &cobra.Command{
	Use:   "solve <equation>",
	Short: "Solve an equation step by step",
	Long: `Solves an equation for one unknown and prints the step log and the solutions.
Example) mathsteps solve "2x - 3 = 0"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		return runWithTimeout(ctx, func() error {
			eq, err := engine.Solve(args[0], unknown)
			if eq == nil {
				return err
			}
			if !solveJSONOutput {
				fmt.Fprint(out, formatter.FormatSolution(eq, err, notation()))
				return err
			}

			res := types.Result{Input: args[0], Kind: types.KindSolve, Final: eq.String(), Result: eq.Result()}
			for _, st := range eq.Steps {
				res.Steps = append(res.Steps, types.StepRecord{
					ID:         st.StepID,
					ChangeType: string(st.ChangeType),
					From:       st.From.String(),
					To:         st.To.String(),
				})
			}
			for _, s := range eq.Solutions {
				res.Solutions = append(res.Solutions, expr.String(s))
			}
			if err != nil {
				res.Error = err.Error()
			}
			d, jerr := json.MarshalIndent(res, "", "  ")
			if jerr != nil {
				return jerr
			}
			fmt.Fprintln(out, string(d))
			return err
		})
	},
}

func init() {
	solveCmd.Flags().StringVarP(&unknown, "unknown", "u", "", "Symbol to solve for (default: the first symbol)")
	solveCmd.Flags().BoolVar(&solveJSONOutput, "json", false, "Output the solution in JSON format")
}
