package assess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/rules"
	"github.com/gnolang/mathsteps/internal/search"
)

func newAssessor() *Assessor {
	return New(search.New(rules.MustBuiltin()))
}

func TestAssessUserStep(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		from, to  string
		valid     bool
		correct   bool
		change    rules.ChangeType
		mistake   rules.ChangeType
		attempted rules.ChangeType
		getTo     string
	}{
		{
			name: "expected step", from: "x + 2 + 3", to: "x + 5",
			valid: true, correct: true, change: rules.SimplifyArithmeticAdd,
		},
		{
			name: "reordered result", from: "x + 2 + 3", to: "5 + x",
			valid: true, correct: true, change: rules.SimplifyArithmeticAdd,
		},
		{
			name: "other valid step", from: "2 + 3 + 4", to: "2 + 7",
			valid: true, correct: true, change: rules.SimplifyArithmeticAdd,
		},
		{
			name: "off path", from: "2 + 3 + 4", to: "9",
			valid: true, change: rules.ValidStepOffPath,
		},
		{
			name: "add before multiply", from: "5+3*2", to: "16",
			mistake: rules.PemdasAddBeforeMultiply, attempted: rules.SimplifyArithmeticAdd, getTo: "8",
		},
		{
			name: "partial add before multiply", from: "5 + 3 * 2", to: "8 * 2",
			mistake: rules.PemdasAddBeforeMultiply, attempted: rules.SimplifyArithmeticAdd, getTo: "8",
		},
		{
			name: "added instead of subtracted", from: "5 - 3", to: "8",
			mistake: rules.AddedInsteadOfSubtracted, attempted: rules.SimplifyArithmeticSub, getTo: "2",
		},
		{
			name: "arithmetic error", from: "3 + 4", to: "8",
			mistake: "ADD_ARITHMETIC_ERROR", attempted: rules.SimplifyArithmeticAdd, getTo: "7",
		},
		{
			name: "subtract left to right", from: "10 - 3 + 2", to: "10 - 5",
			mistake: rules.PemdasSubtractLeftToRight, attempted: rules.SimplifyArithmeticSub, getTo: "1",
		},
		{
			name: "subtracted one too many", from: "5 - -3", to: "2",
			mistake: rules.SubtractedOneTooMany, attempted: rules.SimplifyArithmeticSub, getTo: "8",
		},
		{
			name: "unknown", from: "x + 1", to: "y",
			mistake: rules.Unknown,
		},
		{
			name: "no change", from: "5+3*2", to: "5 + 3 * 2",
			mistake: rules.NoChange,
		},
	}
	a := newAssessor()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := a.AssessUserStep(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, got.IsValid)
			assert.Equal(t, tt.correct, got.IsCorrect)
			if tt.valid {
				assert.Equal(t, tt.change, got.ChangeType)
				return
			}
			assert.Equal(t, tt.mistake, got.MistakenChangeType)
			assert.Equal(t, tt.attempted, got.AttemptedChangeType)
			assert.Equal(t, tt.getTo, got.AttemptedToGetTo)
		})
	}
}

func TestAssessEquationStep(t *testing.T) {
	t.Parallel()
	a := newAssessor()

	got, err := a.AssessUserStep("(2/x)=(10/13)", "26=10x")
	require.NoError(t, err)
	assert.True(t, got.IsValid)
	assert.True(t, got.IsCorrect)
	assert.Equal(t, rules.CrossMultiply, got.ChangeType)

	got, err = a.AssessUserStep("2x - 3 = 0", "2x = 3")
	require.NoError(t, err)
	assert.True(t, got.IsValid)
	assert.Equal(t, rules.AddToBothSides, got.ExpectedChangeType)

	got, err = a.AssessUserStep("x + 1 = 5", "5 = x + 1")
	require.NoError(t, err)
	assert.True(t, got.IsValid)
	assert.Equal(t, rules.SwapSides, got.ChangeType)

	got, err = a.AssessUserStep("x + 1 = 5", "x + 1 = 5")
	require.NoError(t, err)
	assert.False(t, got.IsValid)
	assert.Equal(t, rules.NoChange, got.MistakenChangeType)

	got, err = a.AssessUserStep("x = 5 - 3", "x = 8")
	require.NoError(t, err)
	assert.False(t, got.IsValid)
	assert.Equal(t, rules.AddedInsteadOfSubtracted, got.MistakenChangeType)
}

func TestAssessUserStepErrors(t *testing.T) {
	t.Parallel()
	a := newAssessor()
	_, err := a.AssessUserStep("x +", "x")
	var syntaxErr *expr.SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)

	_, err = a.AssessUserStep("x = 1", "x")
	assert.ErrorIs(t, err, ErrMixedInput)
}

func TestDetectCrossMultiplication(t *testing.T) {
	t.Parallel()
	tests := []struct {
		from, to string
		expected bool
	}{
		{"(2/x)=(10/13)", "26=10x", true},
		{"(2/x)=(10/13)", "10x = 2 * 13", true},
		{"(2/x)=(10/13)", "2x = 130", false},
		{"2x = 10", "2 = 10x", false},
		{"not an equation", "x = 1", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.from+" -> "+tt.to, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, DetectCrossMultiplication(tt.from, tt.to))
		})
	}
}
