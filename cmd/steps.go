package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/mathsteps/formatter"
	"github.com/gnolang/mathsteps/internal/expr"
)

var stepsOptions bool

var stepsCmd = &cobra.Command{
	Use:   "steps <expression>",
	Short: "Simplify an expression step by step",
	Long: `Simplifies an expression one rewrite at a time and prints every step.
Example) mathsteps steps "2 * (4 + 1) - 3"`,
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
			if stepsOptions {
				steps, err := engine.Options(args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(out, formatter.FormatOptions(steps, notation()))
				return nil
			}

			final, steps, err := engine.Simplify(args[0])
			if final == nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatSteps(steps, notation()))
			if err != nil {
				return err
			}
			if notation() == formatter.LaTeX {
				fmt.Fprintf(out, "result: %s\n", expr.LaTeX(final))
			} else {
				fmt.Fprintf(out, "result: %s\n", expr.String(final))
			}
			return nil
		})
	},
}

func init() {
	stepsCmd.Flags().BoolVar(&stepsOptions, "options", false, "List the steps available from the expression instead of simplifying")
}
