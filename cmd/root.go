package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/mathsteps/formatter"
	"github.com/gnolang/mathsteps/internal"
	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/stepper"
)

const defaultTimeout = 5 * time.Minute

var ErrTimeout = errors.New("timed out")

var (
	cfgFile string
	timeout time.Duration
	verbose bool
	latex   bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "mathsteps [problem]",
	Short:         "mathsteps - step-by-step expression simplifier and equation solver",
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	// subcommands first
	TraverseChildren: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("error creating logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		// mathsteps <problem> solves equations and simplifies the rest
		problem := strings.Join(args, " ")
		if expr.IsEquation(problem) {
			return solveCmd.RunE(cmd, []string{problem})
		}
		return stepsCmd.RunE(cmd, []string{problem})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file (default "+stepper.DefaultConfigFile+")")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Set a timeout for the command")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&latex, "latex", false, "Print expressions as LaTeX")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(batchCmd)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return config.Build()
}

func notation() formatter.Notation {
	if latex {
		return formatter.LaTeX
	}
	return formatter.ASCII
}

func newEngine() (*internal.Engine, error) {
	engine, err := stepper.New(logger, cfgFile)
	if err != nil {
		logger.Error("Failed to initialize engine", zap.Error(err))
		return nil, err
	}
	return engine, nil
}

// runWithTimeout runs f and gives up when ctx is done first.
func runWithTimeout(ctx context.Context, f func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- f()
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	case err := <-done:
		return err
	}
}
