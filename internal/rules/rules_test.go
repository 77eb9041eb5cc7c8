package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mathsteps/internal/expr"
)

func mustParse(t *testing.T, input string) *expr.Node {
	t.Helper()
	n, err := expr.Parse(input)
	require.NoError(t, err)
	return n
}

// firstRewrite returns the first rule of the pool that rewrites n at its root.
func firstRewrite(pool *Pool, n *expr.Node) (ChangeType, string) {
	for _, r := range pool.Rules {
		if out := r.Apply(n); len(out) > 0 {
			return r.ID, expr.String(out[0].Node)
		}
	}
	return NoChange, ""
}

func TestChangeTypeRoot(t *testing.T) {
	t.Parallel()
	assert.Equal(t, SimplifyArithmeticMul, ChangeType("SIMPLIFY_ARITHMETIC__MULTIPLY__CASE_2").Root())
	assert.Equal(t, Distribute, Distribute.Root())
}

func TestGroups(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		change   ChangeType
		expected []Group
	}{
		{"exact", SimplifyArithmeticAdd, []Group{AdditionRules}},
		{"case suffix", "ADD_FRACTIONS__CASE_2", []Group{FractionRules, AdditionRules}},
		{"pemdas", "PEMDAS__ADD_BEFORE_DIVIDE", []Group{MistakeRules, AdditionRules, DivisionRules}},
		{"arithmetic error", "ADD_ARITHMETIC_ERROR", []Group{MistakeRules, AdditionRules}},
		{"unknown", "SOMETHING_ELSE", []Group{OtherRules}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Groups(tt.change))
		})
	}
	assert.True(t, InGroup("MULTIPLY_BY_ZERO", IdentityRules))
	assert.False(t, InGroup("MULTIPLY_BY_ZERO", SignRules))
}

func TestBuiltinPoolsHaveGroups(t *testing.T) {
	t.Parallel()
	set, err := Builtin()
	require.NoError(t, err)
	assert.Equal(t, []string{PoolBalance, PoolCross, PoolFunction, PoolLinear, PoolSimplify}, set.Names())
	for _, name := range set.Names() {
		pool := set.Pool(name)
		require.NotEmpty(t, pool.Rules, name)
		for _, r := range pool.Rules {
			assert.True(t, HasExactGroup(r.ID), "%s in pool %s has no group", r.ID, name)
			assert.Equal(t, name != PoolSimplify, r.IsEquation(), r.ID)
		}
	}
}

func TestSimplifyRules(t *testing.T) {
	t.Parallel()
	pool := MustBuiltin().Pool(PoolSimplify)
	tests := []struct {
		input    string
		change   ChangeType
		expected string
	}{
		{"5x * 3x", SimplifyArithmeticMul, "15x^2"},
		{"x + 2 + 3", SimplifyArithmeticAdd, "x + 5"},
		{"5 - 3", SimplifyArithmeticSub, "2"},
		{"x - 2 - 3", SimplifyArithmeticSub, "x - 5"},
		{"6/4", "SIMPLIFY_FRACTION", "3/2"},
		{"8/4", SimplifyArithmeticDiv, "2"},
		{"2x + 3 + 4x", CollectLikeTerms, "6x + 3"},
		{"-(x + 1)", "DISTRIBUTE_NEGATIVE_ONE", "-x - 1"},
		{"3(x + 2)", Distribute, "3x + 3 * 2"},
		{"x - 0", "REMOVE_SUBTRACTING_ZERO", "x"},
		{"sqrt(16)", "SIMPLIFY_ARITHMETIC__SQRT", "4"},
		{"x * x", "ADD_EXPONENT_OF_ONE", "x^2"},
		{"1/2 + 1/3", "COMMON_DENOMINATOR", "3/6 + 2/6"},
		{"--x", "RESOLVE_DOUBLE_MINUS", "x"},
		{"x + -3", "SIMPLIFY_SIGNS", "x - 3"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			change, got := firstRewrite(pool, mustParse(t, tt.input))
			assert.Equal(t, tt.change, change)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSimplifyRulesLeaveNormalFormsAlone(t *testing.T) {
	t.Parallel()
	pool := MustBuiltin().Pool(PoolSimplify)
	for _, input := range []string{"2x - 3", "x^2 - 4", "3/2", "x", "15x^2", "x - 3"} {
		change, got := firstRewrite(pool, mustParse(t, input))
		assert.Equal(t, NoChange, change, "%s rewritten to %s", input, got)
	}
}

func TestEquationRules(t *testing.T) {
	t.Parallel()
	pool := MustBuiltin().Pool(PoolLinear)
	tests := []struct {
		input    string
		change   ChangeType
		expected string
	}{
		{"2x - 3 = 0", AddToBothSides, "2x = 0 + 3"},
		{"x + 5 = 2", SubtractFromBothSides, "x = 2 - 5"},
		{"2x = 3", DivideBothSides, "x = 3/2"},
		{"x/4 = 2", MultiplyBothSides, "x = 2 * 4"},
		{"-x = 4", MultiplyByNegativeOne, "x = -4"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			eq, err := expr.ParseEquation(tt.input)
			require.NoError(t, err)
			for _, r := range pool.Rules {
				if out, _, ok := r.ApplyEquation(eq); ok {
					assert.Equal(t, tt.change, r.ID)
					assert.Equal(t, tt.expected, out.String())
					return
				}
			}
			t.Fatalf("no rule applied to %s", tt.input)
		})
	}

	eq, err := expr.ParseEquation("x = 3/2")
	require.NoError(t, err)
	for _, r := range pool.Rules {
		_, _, ok := r.ApplyEquation(eq)
		assert.False(t, ok, r.ID)
	}
}

func TestEquationRulesForUnknown(t *testing.T) {
	t.Parallel()
	pool := MustBuiltin().Pool(PoolLinear)
	first := func(eq expr.Equation, unknown string) (ChangeType, expr.Equation) {
		for _, r := range pool.Rules {
			if out, _, ok := r.ApplyEquationFor(eq, unknown); ok {
				return r.ID, out
			}
		}
		return NoChange, expr.Equation{}
	}

	eq, err := expr.ParseEquation("x + y = 3")
	require.NoError(t, err)
	change, out := first(eq, "x")
	assert.Equal(t, SubtractFromBothSides, change)
	assert.Equal(t, "x = 3 - y", out.String())

	// without an unknown y is not a constant
	change, _ = first(eq, "")
	assert.Equal(t, NoChange, change)

	eq, err = expr.ParseEquation("2x = 3y")
	require.NoError(t, err)
	change, out = first(eq, "x")
	assert.Equal(t, DivideBothSides, change)
	assert.True(t, expr.Equal(mustParse(t, "x"), out.Left))
	assert.True(t, expr.Equal(mustParse(t, "3y/2"), out.Right), out.String())

	// solving for y moves the other way
	change, out = first(eq, "y")
	assert.Equal(t, NoChange, change, out.String())
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		spec RuleSpec
	}{
		{"missing id", RuleSpec{L: "e + 0", R: "e"}},
		{"unbound placeholder", RuleSpec{ID: "X", L: "e1 + e2", R: "e3"}},
		{"unknown guard", RuleSpec{ID: "X", L: "e1 + e2", R: "e1", When: "shiny(e1)"}},
		{"mixed kinds", RuleSpec{ID: "X", L: "fx = a", R: "fx"}},
		{"bad template", RuleSpec{ID: "X", L: "e1 +", R: "e1"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Compile(tt.spec)
			assert.Error(t, err)
		})
	}
	_, err := Compile(RuleSpec{ID: "X", L: "e1 + e2", R: "e1", When: "shiny(e1)"})
	assert.ErrorIs(t, err, ErrUnknownGuard)
	assert.ErrorIs(t, err, ErrMalformedRule)
}

func TestGuards(t *testing.T) {
	t.Parallel()
	r, err := Compile(RuleSpec{ID: "SIMPLIFY_ARITHMETIC__DIVIDE", L: "n1 / n2", R: "eval(n1 / n2)", When: "divisible(n1, n2)"})
	require.NoError(t, err)
	assert.Empty(t, r.Apply(mustParse(t, "7/2")))
	assert.Len(t, r.Apply(mustParse(t, "-8/2")), 1)

	// a decimal operand always divides out exactly
	for input, expected := range map[string]string{"2/0.5": "4", "1/0.3": "10/3", "0.75/3": "1/4"} {
		out := r.Apply(mustParse(t, input))
		require.Len(t, out, 1, input)
		assert.Equal(t, expected, expr.String(out[0].Node), input)
	}

	negated, err := Compile(RuleSpec{ID: "X", L: "e1 * e2", R: "e2 * e1", When: "!symbolic(e1) && symbolic(e2)"})
	require.NoError(t, err)
	out := negated.Apply(mustParse(t, "3 * x"))
	require.Len(t, out, 1)
	assert.Equal(t, "x * 3", expr.String(out[0].Node))
}

func TestSetOverrideAndDisable(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	data := []byte("name: linear\nrules:\n  - id: ADD_TO_BOTH_SIDES\n    l: 'fx - a = b'\n    r: 'fx = b + a'\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "linear.yaml"), data, 0o644))

	set, err := Builtin()
	require.NoError(t, err)
	require.NoError(t, set.Override(dir))
	assert.Len(t, set.Pool(PoolLinear).Rules, 1)

	require.NoError(t, set.Disable(PoolCross))
	assert.Empty(t, set.Pool(PoolCross).Rules)
	assert.ErrorIs(t, set.Disable("nope"), ErrUnknownPool)

	bad := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bad, "x.yaml"), []byte("name: nope\nrules: []\n"), 0o644))
	assert.ErrorIs(t, set.Override(bad), ErrUnknownPool)
}

func TestMatch(t *testing.T) {
	t.Parallel()
	pattern, err := expr.ParseTemplate("n1 + n2")
	require.NoError(t, err)

	matches := Match(pattern, mustParse(t, "x + 2 + 3"))
	require.NotEmpty(t, matches)
	assert.Equal(t, "2", expr.String(matches[0]["n1"]))
	assert.Equal(t, "3", expr.String(matches[0]["n2"]))

	assert.Empty(t, Match(pattern, mustParse(t, "x + y")))

	repeated, err := expr.ParseTemplate("e / e")
	require.NoError(t, err)
	assert.Len(t, Match(repeated, mustParse(t, "(x + 1)/(x + 1)")), 1)
	assert.Empty(t, Match(repeated, mustParse(t, "(x + 1)/(x + 2)")))

	absorbed, err := expr.ParseTemplate("fx + a")
	require.NoError(t, err)
	b, ok := match(absorbed, mustParse(t, "2x + y + 3"), Bindings{})
	require.True(t, ok)
	assert.Equal(t, "2x + y", expr.String(b["fx"]))
	assert.Equal(t, "3", expr.String(b["a"]))
}
