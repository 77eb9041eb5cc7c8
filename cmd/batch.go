package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/mathsteps/formatter"
	"github.com/gnolang/mathsteps/internal/types"
	"github.com/gnolang/mathsteps/stepper"
)

var (
	batchJSONOutput bool
	outPath         string
	workers         int
	showProgress    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <paths...>",
	Short: "Solve every problem of the given files",
	Long: `Reads one problem per line from each file, and from the .txt and .math files of each
directory, then simplifies or solves them concurrently.
Example) mathsteps batch --json -o results.json homework/`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return err
		}
		problems, err := stepper.ReadProblems(args)
		if err != nil {
			logger.Error("Error reading problems", zap.Error(err))
			return err
		}

		opts := stepper.Options{Workers: workers}
		if showProgress {
			opts.Progress = cmd.ErrOrStderr()
		}
		results, err := stepper.ProcessProblems(ctx, logger, engine, problems, opts)
		if err != nil {
			logger.Error("Error processing problems", zap.Error(err))
			return err
		}
		return printResults(cmd.OutOrStdout(), results, batchJSONOutput, outPath)
	},
}

func init() {
	batchCmd.Flags().BoolVar(&batchJSONOutput, "json", false, "Output results in JSON format")
	batchCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	batchCmd.Flags().IntVar(&workers, "workers", 0, "Problems solved at once (default: one per CPU)")
	batchCmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar")
}

func printResults(w io.Writer, results []types.Result, isJSON bool, jsonOutput string) error {
	if !isJSON {
		for _, r := range results {
			fmt.Fprintln(w, formatter.FormatResult(r))
		}
		return nil
	}

	d, err := json.Marshal(results)
	if err != nil {
		logger.Error("Error marshalling results to JSON", zap.Error(err))
		return err
	}
	if jsonOutput == "" {
		fmt.Fprintln(w, string(d))
		return nil
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		logger.Error("Error writing JSON output file", zap.Error(err))
		return err
	}
	fmt.Fprintf(w, "Results written to %s\n", jsonOutput)
	return nil
}
