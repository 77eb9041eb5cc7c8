package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mathsteps/internal/assess"
	"github.com/gnolang/mathsteps/internal/rules"
	"github.com/gnolang/mathsteps/internal/types"
	"github.com/gnolang/mathsteps/stepper"
)

// execute runs the command tree with fresh flag values and returns what
// it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, timeout, verbose, latex = "", defaultTimeout, false, false
	stepsOptions, unknown, solveJSONOutput, assessJSONOutput = false, "", false, false
	batchJSONOutput, outPath, workers, showProgress = false, "", 0, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestStepsCommand(t *testing.T) {
	out, err := execute(t, "steps", "2 * (4 + 1) - 3")
	require.NoError(t, err)
	assert.Contains(t, out, string(rules.Distribute))
	assert.Contains(t, out, "result: 7\n")

	out, err = execute(t, "steps", "--options", "5x * 3x")
	require.NoError(t, err)
	assert.Contains(t, out, "15x^2")

	out, err = execute(t, "steps", "--latex", "x^2 + x^2")
	require.NoError(t, err)
	assert.Contains(t, out, "x^{2}")

	_, err = execute(t, "steps", "x +")
	assert.Error(t, err)
}

func TestSolveCommand(t *testing.T) {
	out, err := execute(t, "solve", "2x - 3 = 0")
	require.NoError(t, err)
	assert.Contains(t, out, "[1] ADD_TO_BOTH_SIDES (both)")
	assert.Contains(t, out, "result: x = 3/2\n")

	out, err = execute(t, "solve", "--json", "x^2 - 4 = 0")
	require.NoError(t, err)
	var res types.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"-2", "2"}, res.Solutions)
	assert.Equal(t, "x = [-2, 2]", res.Result)

	out, err = execute(t, "solve", "--unknown", "y", "y + 1 = 3")
	require.NoError(t, err)
	assert.Contains(t, out, "result: y = 2\n")

	out, err = execute(t, "solve", "sin(x) = 2")
	require.NoError(t, err)
	assert.Contains(t, out, "unsolved: no rule applies to sin(x) = 2\n")

	_, err = execute(t, "solve", "2x - 3")
	assert.Error(t, err)
}

func TestRootCommandDispatch(t *testing.T) {
	out, err := execute(t, "x + 5 = 2")
	require.NoError(t, err)
	assert.Contains(t, out, "result: x = -3\n")

	out, err = execute(t, "1 + 2")
	require.NoError(t, err)
	assert.Contains(t, out, "result: 3\n")

	out, err = execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
}

func TestAssessCommand(t *testing.T) {
	out, err := execute(t, "assess", "5+3*2", "16")
	require.NoError(t, err)
	assert.Contains(t, out, "mistake: PEMDAS__ADD_BEFORE_MULTIPLY\n")
	assert.Contains(t, out, "which gives 8")

	out, err = execute(t, "assess", "--json", "(2/x)=(10/13)", "26=10x")
	require.NoError(t, err)
	var step assess.AssessedStep
	require.NoError(t, json.Unmarshal([]byte(out), &step))
	assert.True(t, step.IsValid)
	assert.Equal(t, rules.CrossMultiply, step.ChangeType)

	_, err = execute(t, "assess", "x = 1", "x")
	assert.ErrorIs(t, err, assess.ErrMixedInput)
}

func TestCompareCommand(t *testing.T) {
	out, err := execute(t, "compare", "(x + 1)^2", "x^2 + 2x + 1")
	require.NoError(t, err)
	assert.Contains(t, out, "equivalent: same value at every sample point")

	out, err = execute(t, "compare", "x^2 = 4", "x = 2")
	require.NoError(t, err)
	assert.Contains(t, out, "not equivalent: ")

	_, err = execute(t, "compare", "x = 1", "x")
	assert.ErrorIs(t, err, assess.ErrMixedInput)
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "homework.txt")
	require.NoError(t, os.WriteFile(input, []byte("# week 1\n2x - 3 = 0\n1 + 2\nx +\n"), 0o644))

	out, err := execute(t, "batch", input)
	require.NoError(t, err)
	assert.Contains(t, out, "solve: 2x - 3 = 0")
	assert.Contains(t, out, "result: x = 3/2")
	assert.Contains(t, out, "simplify: x +\nerror: ")

	output := filepath.Join(dir, "results.json")
	out, err = execute(t, "batch", "--json", "--workers", "2", "-o", output, dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Results written to "+output)

	d, err := os.ReadFile(output)
	require.NoError(t, err)
	var results []types.Result
	require.NoError(t, json.Unmarshal(d, &results))
	require.Len(t, results, 3)
	assert.Equal(t, "x = 3/2", results[0].Result)
	assert.Equal(t, "3", results[1].Result)
	assert.NotEmpty(t, results[2].Error)

	_, err = execute(t, "batch", filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	out, err := execute(t, "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	config, err := stepper.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), config)
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tight.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxSolveSteps: 1\n"), 0o644))

	out, err := execute(t, "--config", path, "solve", "2x - 3 = 0")
	assert.Error(t, err)
	assert.Contains(t, out, "unsolved: ")
}

func TestRunWithTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	release := make(chan struct{})
	defer close(release)
	err := runWithTimeout(ctx, func() error {
		<-release
		return nil
	})
	assert.ErrorIs(t, err, ErrTimeout)

	err = runWithTimeout(context.Background(), func() error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}
