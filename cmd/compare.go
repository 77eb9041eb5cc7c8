package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gnolang/mathsteps/formatter"
)

var compareCmd = &cobra.Command{
	Use:   "compare <a> <b>",
	Short: "Check whether two expressions or equations are equivalent",
	Long: `Compares two expressions by value, or two equations by the ratio of their sides.
Example) mathsteps compare "(x + 1)^2" "x^2 + 2x + 1"`,
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
			report, err := engine.Compare(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatComparison(report))
			return nil
		})
	},
}
