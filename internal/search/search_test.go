package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mathsteps/internal/equiv"
	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/rules"
)

func mustParse(t *testing.T, input string) *expr.Node {
	t.Helper()
	n, err := expr.Parse(input)
	require.NoError(t, err)
	return n
}

func mustEquation(t *testing.T, input string) expr.Equation {
	t.Helper()
	e, err := expr.ParseEquation(input)
	require.NoError(t, err)
	return e
}

func results(steps []Step) []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = expr.String(s.To)
	}
	return out
}

func TestPositions(t *testing.T) {
	t.Parallel()
	n := mustParse(t, "x + 2 + 3(y - 1)")
	var got []string
	for _, p := range positions(n) {
		got = append(got, expr.String(nodeAt(n, p.path)))
	}
	expected := []string{"x + 2 + 3(y - 1)", "x", "2", "3(y - 1)", "3", "y - 1", "y", "1"}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAllNextStepOptions(t *testing.T) {
	t.Parallel()
	s := New(rules.MustBuiltin())

	tests := []struct {
		name     string
		input    string
		change   rules.ChangeType
		expected string
	}{
		{"multiply like terms", "5x * 3x", rules.SimplifyArithmeticMul, "15x^2"},
		{"add numbers", "x + 2 + 3", rules.SimplifyArithmeticAdd, "x + 5"},
		{"nested rewrite", "sqrt(4 + 5)", rules.SimplifyArithmeticAdd, "sqrt(9)"},
		{"distribute inside sum", "x + 3(y + 1)", rules.Distribute, "x + 3y + 3 * 1"},
		{"signs", "x + -3", "SIMPLIFY_SIGNS", "x - 3"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			steps := s.FindAllNextStepOptions(mustParse(t, tt.input), Context{})
			require.NotEmpty(t, steps)
			assert.Equal(t, tt.change, steps[0].ChangeType)
			assert.Equal(t, tt.expected, expr.String(steps[0].To))
			assert.Equal(t, tt.input, expr.String(steps[0].From))
		})
	}
}

func TestStepMetadata(t *testing.T) {
	t.Parallel()
	s := New(rules.MustBuiltin())
	steps := s.FindAllNextStepOptions(mustParse(t, "5x * 3x"), Context{})
	require.Greater(t, len(steps), 1)

	first := steps[0]
	require.NotNil(t, first.RemovedNumOp)
	assert.Equal(t, expr.OpMul, first.RemovedNumOp.Op)
	assert.Equal(t, "3", expr.String(first.RemovedNumOp.Number))
	assert.Contains(t, first.AvailableChangeTypes, rules.ChangeType("ADD_EXPONENT_OF_ONE"))
	for _, st := range steps {
		assert.Equal(t, first.AvailableChangeTypes, st.AvailableChangeTypes)
		assert.False(t, st.IsMistake)
	}
}

func TestFindAllNextStepOptionsDedupAndHistory(t *testing.T) {
	t.Parallel()
	s := New(rules.MustBuiltin())
	n := mustParse(t, "2 + 3 + 4")

	steps := s.FindAllNextStepOptions(n, Context{})
	got := results(steps)
	assert.Equal(t, "5 + 4", got[0])
	for i := range got {
		for j := i + 1; j < len(got); j++ {
			assert.NotEqual(t, got[i], got[j])
		}
	}

	filtered := s.FindAllNextStepOptions(n, Context{History: []string{"5 + 4"}})
	assert.NotContains(t, results(filtered), "5 + 4")
	assert.Equal(t, "2 + 3 + 4", expr.String(n), "input must not change")
}

func TestFindAllNextStepOptionsNormalForm(t *testing.T) {
	t.Parallel()
	s := New(rules.MustBuiltin())
	for _, input := range []string{"2x - 3", "x", "3/2", "x^2 - 4", "sqrt(2)"} {
		n := mustParse(t, input)
		assert.Empty(t, s.FindAllNextStepOptions(n, Context{}), input)
		assert.Empty(t, s.FindAllNextStepOptions(n, Context{}), "%s on the second call", input)
		assert.Equal(t, input, expr.String(n))
	}
}

func TestStepsPrintRoundTrip(t *testing.T) {
	t.Parallel()
	s := New(rules.MustBuiltin())
	inputs := []string{
		"2 * (4 + 1) - 3",
		"5x * 3x",
		"x + 2 + 3",
		"-(x - 3) + 2x",
		"1/2 + 1/3",
		"2/0.5 + x",
		"3 - -2 + 4/6",
	}
	for _, input := range inputs {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			n := mustParse(t, input)
			steps := s.FindAllNextStepOptions(n, Context{})
			_, chain, _ := s.Simplify(n, 50)
			steps = append(steps, chain...)
			for _, st := range steps {
				printed := expr.String(st.To)
				reparsed, err := expr.Parse(printed)
				require.NoError(t, err, printed)
				assert.True(t, equiv.Same(reparsed, st.To), "%s does not read back (%s)", printed, st.ChangeType)
			}
		})
	}
}

func TestFindEquationStepsForUnknown(t *testing.T) {
	t.Parallel()
	s := New(rules.MustBuiltin())
	eq := mustEquation(t, "x + y = 3")

	for _, st := range s.FindEquationSteps(eq, []string{rules.PoolLinear}) {
		assert.NotEqual(t, SideBoth, st.Side, st.To.String())
	}

	steps := s.FindEquationStepsFor(eq, "x", []string{rules.PoolLinear})
	require.Len(t, steps, 1)
	assert.Equal(t, rules.SubtractFromBothSides, steps[0].ChangeType)
	assert.Equal(t, "x = 3 - y", steps[0].To.String())
	require.NotNil(t, steps[0].AddedNumOp)
	assert.Equal(t, "y", expr.String(steps[0].AddedNumOp.Number))
}

func TestSimplify(t *testing.T) {
	t.Parallel()
	s := New(rules.MustBuiltin())

	out, steps, err := s.Simplify(mustParse(t, "2 * (4 + 1) - 3"), 20)
	require.NoError(t, err)
	assert.Equal(t, "7", expr.String(out))
	require.NotEmpty(t, steps)
	assert.Equal(t, rules.Distribute, steps[0].ChangeType)
	assert.Equal(t, "7", expr.String(steps[len(steps)-1].To))

	_, _, err = s.Simplify(mustParse(t, "1 + 2 + 3 + 4"), 1)
	assert.ErrorIs(t, err, ErrDepthExceeded)
}

func TestFindEquationSteps(t *testing.T) {
	t.Parallel()
	s := New(rules.MustBuiltin())

	steps := s.FindEquationSteps(mustEquation(t, "x + 2 + 3 = 7"), []string{rules.PoolLinear})
	require.NotEmpty(t, steps)
	assert.Equal(t, SideLeft, steps[0].Side)
	assert.Equal(t, "x + 5 = 7", steps[0].To.String())
	require.NotNil(t, steps[0].Substep)

	var move *EquationStep
	for i := range steps {
		if steps[i].Side == SideBoth {
			move = &steps[i]
			break
		}
	}
	require.NotNil(t, move)
	assert.Equal(t, rules.SubtractFromBothSides, move.ChangeType)
	assert.Equal(t, "x + 3 = 7 - 2", move.To.String())
	require.NotNil(t, move.AddedNumOp)
	assert.Equal(t, expr.OpSub, move.AddedNumOp.Op)
	assert.Equal(t, "2", expr.String(move.AddedNumOp.Number))

	right := s.FindEquationSteps(mustEquation(t, "x = 1 + 2"), nil)
	require.Len(t, right, 1)
	assert.Equal(t, SideRight, right[0].Side)
	assert.Equal(t, "x = 3", right[0].To.String())

	assert.Empty(t, s.FindEquationSteps(mustEquation(t, "x = 1 + 2"), nil, "x = 3"))
}

func TestSideString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "left", SideLeft.String())
	assert.Equal(t, "both", SideBoth.String())
	assert.Equal(t, "none", Side(42).String())
}
