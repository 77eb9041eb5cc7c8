package expr

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input    string
		expected *big.Rat
	}{
		{"2 + 3 * 4", big.NewRat(14, 1)},
		{"2^-1", big.NewRat(1, 2)},
		{"(-2)^3", big.NewRat(-8, 1)},
		{"sqrt(16)", big.NewRat(4, 1)},
		{"sqrt(9/4)", big.NewRat(3, 2)},
		{"nthRoot(-8, 3)", big.NewRat(-2, 1)},
		{"8^(1/3)", big.NewRat(2, 1)},
		{"abs(-5)", big.NewRat(5, 1)},
		{"gcd(12, 18)", big.NewRat(6, 1)},
		{"lcm(4, 6)", big.NewRat(12, 1)},
		{"0.5 + 1/4", big.NewRat(3, 4)},
	}
	for _, tt := range tests {
		n, err := Parse(tt.input)
		require.NoError(t, err)
		got, err := Eval(n)
		require.NoError(t, err, tt.input)
		assert.Equal(t, 0, tt.expected.Cmp(got), "%s: got %s", tt.input, got.RatString())
	}
}

func TestEvalErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input string
		err   error
	}{
		{"1/0", ErrDivisionByZero},
		{"x + 1", ErrNotConstant},
		{"sqrt(2)", ErrNotExact},
		{"nthRoot(-4, 2)", ErrNotExact},
		{"2^(1/2)", ErrNotExact},
		{"sin(1)", ErrNotExact},
	}
	for _, tt := range tests {
		n, err := Parse(tt.input)
		require.NoError(t, err)
		_, err = Eval(n)
		assert.ErrorIs(t, err, tt.err, tt.input)
	}
}

func TestEvalFloat(t *testing.T) {
	t.Parallel()
	n, err := Parse("x^2 - 4 + sqrt(y)")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, EvalFloat(n, map[string]float64{"x": 1, "y": 25}), 1e-12)
	assert.True(t, math.IsNaN(EvalFloat(n, map[string]float64{"x": 1})))

	root, err := Parse("nthRoot(-27, 3)")
	require.NoError(t, err)
	assert.InDelta(t, -3.0, EvalFloat(root, nil), 1e-12)

	div, err := Parse("1/(x - 1)")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(EvalFloat(div, map[string]float64{"x": 1})))
}
