package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gnolang/mathsteps/internal/assess"
	"github.com/gnolang/mathsteps/internal/equiv"
	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/rules"
	"github.com/gnolang/mathsteps/internal/solver"
	"github.com/gnolang/mathsteps/internal/types"
)

// the expirable cache sweeps entries from a goroutine that lives as long
// as the process
var leakOptions = []goleak.Option{
	goleak.IgnoreAnyFunction("github.com/hashicorp/golang-lru/v2/expirable.NewLRU[...].func1"),
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, leakOptions...)
}

func newEngine(t *testing.T, config types.Config) *Engine {
	t.Helper()
	engine, err := NewEngine(nil, config)
	require.NoError(t, err)
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Parallel()
	engine := newEngine(t, types.Config{})
	assert.NotNil(t, engine.Cache())
	assert.Equal(t, types.DefaultConfig(), engine.Config())

	noCache := newEngine(t, types.Config{Cache: types.CacheConfig{Size: -1}})
	assert.Nil(t, noCache.Cache())
}

func TestNewEngineErrors(t *testing.T) {
	t.Parallel()
	_, err := NewEngine(nil, types.Config{Pools: map[string]types.PoolConfig{"nope": {Disabled: true}}})
	assert.ErrorIs(t, err, rules.ErrUnknownPool)

	_, err = NewEngine(nil, types.Config{RulesFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: cross\nrules:\n  - id: BROKEN\n    l: 'a +'\n    r: 'a'\n"), 0o644))
	_, err = NewEngine(nil, types.Config{RulesFile: bad})
	assert.ErrorIs(t, err, rules.ErrMalformedRule)
}

func TestEngineSimplify(t *testing.T) {
	t.Parallel()
	engine := newEngine(t, types.Config{})

	final, steps, err := engine.Simplify("2 * (4 + 1) - 3")
	require.NoError(t, err)
	assert.Equal(t, "7", expr.String(final))
	require.NotEmpty(t, steps)
	assert.Equal(t, rules.Distribute, steps[0].ChangeType)

	options, err := engine.Options("5x * 3x")
	require.NoError(t, err)
	var products []string
	for _, st := range options {
		if st.ChangeType == rules.SimplifyArithmeticMul {
			products = append(products, expr.String(st.To))
		}
	}
	assert.Contains(t, products, "15x^2")

	_, err = engine.Options("5x *")
	var syntaxErr *expr.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}

func TestEngineSolve(t *testing.T) {
	t.Parallel()
	engine := newEngine(t, types.Config{})

	eq, err := engine.Solve("2x - 3 = 0", "")
	require.NoError(t, err)
	assert.Equal(t, "x = 3/2", eq.String())

	eq, err = engine.Solve("y + 1 = 3", "y")
	require.NoError(t, err)
	assert.Equal(t, "y = 2", eq.Result())

	_, err = engine.Solve("2x - 3", "")
	assert.ErrorIs(t, err, expr.ErrInvalidEquation)

	tight := newEngine(t, types.Config{MaxSolveSteps: 1})
	eq, err = tight.Solve("2x - 3 = 0", "")
	assert.ErrorIs(t, err, solver.ErrTooManySteps)
	assert.Len(t, eq.Steps, 1)
}

func TestEngineDisabledPool(t *testing.T) {
	t.Parallel()
	engine := newEngine(t, types.Config{Pools: map[string]types.PoolConfig{rules.PoolCross: {Disabled: true}}})
	eq, _ := engine.Solve("2/x = 10/13", "")
	require.NotNil(t, eq)
	for _, st := range eq.Steps {
		assert.NotEqual(t, rules.CrossMultiply, st.ChangeType)
	}
}

func TestEngineRulesFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "cross.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: cross\nrules: []\n"), 0o644))

	engine := newEngine(t, types.Config{RulesFile: path})
	eq, _ := engine.Solve("2/x = 10/13", "")
	require.NotNil(t, eq)
	for _, st := range eq.Steps {
		assert.NotEqual(t, rules.CrossMultiply, st.ChangeType)
	}
}

func TestEngineAssess(t *testing.T) {
	t.Parallel()
	engine := newEngine(t, types.Config{})

	got, err := engine.Assess("5+3*2", "16")
	require.NoError(t, err)
	assert.False(t, got.IsValid)
	assert.Equal(t, rules.PemdasAddBeforeMultiply, got.MistakenChangeType)

	got, err = engine.Assess("(2/x)=(10/13)", "26=10x")
	require.NoError(t, err)
	assert.True(t, got.IsValid)
}

func TestEngineCompare(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		a, b   string
		result equiv.VerificationResult
		err    error
	}{
		{"expressions", "(x + 1)^2", "x^2 + 2x + 1", equiv.Equivalent, nil},
		{"different", "5 + 3 * 2", "16", equiv.NotEquivalent, nil},
		{"equations", "2x = 6", "x = 3", equiv.Equivalent, nil},
		{"mixed", "x = 3", "x", 0, assess.ErrMixedInput},
	}
	engine := newEngine(t, types.Config{})
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report, err := engine.Compare(tt.a, tt.b)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.result, report.Result, report.Detail)
		})
	}

	_, err := engine.Compare("x +", "x")
	var syntaxErr *expr.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)

	// the cache can be turned off
	uncached := newEngine(t, types.Config{Cache: types.CacheConfig{Size: -1}})
	report, err := uncached.Compare("2x + 3x", "5x")
	require.NoError(t, err)
	assert.Equal(t, equiv.Equivalent, report.Result)
}

func TestEngineSession(t *testing.T) {
	t.Parallel()
	engine := newEngine(t, types.Config{})
	c, err := engine.Session("x + 2 = 5")
	require.NoError(t, err)
	require.NoError(t, c.SetValue("x = 3"))
	assert.True(t, c.IsSolved())
}

func TestEngineRun(t *testing.T) {
	t.Parallel()
	engine := newEngine(t, types.Config{})
	ctx := context.Background()

	tests := []struct {
		problem  string
		expected types.Result
	}{
		{
			problem: "2x - 3 = 0",
			expected: types.Result{
				Input: "2x - 3 = 0", Kind: types.KindSolve,
				Final: "x = 3/2", Result: "x = 3/2", Solutions: []string{"3/2"},
				Steps: []types.StepRecord{
					{ID: "1", ChangeType: "ADD_TO_BOTH_SIDES", From: "2x - 3 = 0", To: "2x = 0 + 3"},
					{ID: "2", ChangeType: "SIMPLIFY_ARITHMETIC__ADD", From: "2x = 0 + 3", To: "2x = 3"},
					{ID: "3", ChangeType: "DIVIDE_BOTH_SIDES", From: "2x = 3", To: "x = 3/2"},
				},
			},
		},
		{
			problem: "  1 = 2 ",
			expected: types.Result{
				Input: "1 = 2", Kind: types.KindSolve,
				Final: "1 = 2", Result: "false", Solutions: []string{"false"},
			},
		},
		{
			problem: "x",
			expected: types.Result{
				Input: "x", Kind: types.KindSimplify, Final: "x", Result: "x",
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.problem, func(t *testing.T) {
			t.Parallel()
			got, err := engine.Run(ctx, tt.problem)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEngineRunErrors(t *testing.T) {
	t.Parallel()
	engine := newEngine(t, types.Config{})

	got, err := engine.Run(context.Background(), "x +")
	assert.Error(t, err)
	assert.NotEmpty(t, got.Error)
	assert.Empty(t, got.Final)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err = engine.Run(ctx, "1 + 1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, context.Canceled.Error(), got.Error)
}

func TestEngineRunUnsolvable(t *testing.T) {
	t.Parallel()
	engine := newEngine(t, types.Config{})

	got, err := engine.Run(context.Background(), "2^x = 8")
	require.NoError(t, err)
	assert.Equal(t, types.KindSolve, got.Kind)
	assert.Equal(t, "2^x = 8", got.Final)
	assert.Empty(t, got.Result)
	assert.Empty(t, got.Solutions)
	assert.Empty(t, got.Error)

	eq, err := engine.Solve("2x = 3y", "x")
	require.NoError(t, err)
	require.True(t, eq.IsSolved())
	require.Len(t, eq.Solutions, 1)
}
