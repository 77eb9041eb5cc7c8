package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/rules"
	"github.com/gnolang/mathsteps/internal/search"
	"github.com/gnolang/mathsteps/internal/solver"
)

func newCommander(t *testing.T, text string) *Commander {
	t.Helper()
	s := search.New(rules.MustBuiltin())
	c, err := New(text, s, solver.New(s, 0))
	require.NoError(t, err)
	return c
}

func TestHistory(t *testing.T) {
	t.Parallel()
	c := newCommander(t, "x + 2 = 5")
	assert.Equal(t, "x + 2 = 5", c.Value())
	assert.False(t, c.CanUndo())
	assert.False(t, c.CanRedo())
	assert.ErrorIs(t, c.Undo(), ErrNothingToUndo)

	require.NoError(t, c.SetValue("x = 5 - 2"))
	require.NoError(t, c.SetValue("x = 3"))
	assert.Equal(t, "x = 3", c.Value())

	require.NoError(t, c.Undo())
	require.NoError(t, c.Undo())
	assert.Equal(t, "x + 2 = 5", c.Value())
	assert.True(t, c.CanRedo())

	require.NoError(t, c.Redo())
	assert.Equal(t, "x = 5 - 2", c.Value())

	// a new value drops the redo branch
	require.NoError(t, c.SetValue("x = 3 + 0"))
	assert.False(t, c.CanRedo())
	assert.ErrorIs(t, c.Redo(), ErrNothingToRedo)
	require.NoError(t, c.Undo())
	assert.Equal(t, "x = 5 - 2", c.Value())
}

func TestSetValueInvalid(t *testing.T) {
	t.Parallel()
	c := newCommander(t, "x + 2 = 5")

	err := c.SetValue("x + 2")
	assert.ErrorIs(t, err, expr.ErrInvalidEquation)
	assert.Equal(t, "x + 2 = 5", c.Value())
	assert.False(t, c.CanUndo())
}

func TestNewInvalid(t *testing.T) {
	t.Parallel()
	s := search.New(rules.MustBuiltin())
	_, err := New("x +", s, solver.New(s, 0))
	assert.Error(t, err)
}

func TestUnsolvable(t *testing.T) {
	t.Parallel()
	c := newCommander(t, "sin(x) = 2")
	assert.Nil(t, c.Answer())
	require.NoError(t, c.SetValue("x = 2"))
	assert.False(t, c.IsSolved())
}

func TestSwap(t *testing.T) {
	t.Parallel()
	c := newCommander(t, "x + 2 = 5")
	require.NoError(t, c.Swap())
	assert.Equal(t, "5 = x + 2", c.Value())
	require.NoError(t, c.Undo())
	assert.Equal(t, "x + 2 = 5", c.Value())
}

func TestIsSolved(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		start  string
		values []string
		solved bool
	}{
		{"start", "x + 2 = 5", nil, false},
		{"solved", "x + 2 = 5", []string{"x = 3"}, true},
		{"solved swapped", "x + 2 = 5", []string{"3 = x"}, true},
		{"equivalent value", "x + 2 = 5", []string{"x = 6/2"}, true},
		{"wrong value", "x + 2 = 5", []string{"x = 4"}, false},
		{"unknown on both sides", "x + 2 = 5", []string{"x = 5 - x + x - 2"}, false},
		{"one of two roots", "x^2 - 4 = 0", []string{"x = -2"}, true},
		{"contradiction", "1 = 2", nil, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newCommander(t, tt.start)
			require.NotNil(t, c.Answer())
			for _, v := range tt.values {
				require.NoError(t, c.SetValue(v))
			}
			assert.Equal(t, tt.solved, c.IsSolved())
		})
	}
}

func TestMatches(t *testing.T) {
	t.Parallel()
	c := newCommander(t, "x + 2 = 5")

	matches := c.CurrentMatches()
	require.NotEmpty(t, matches)

	sub := c.MatchesForRule(rules.SubtractionRules)
	require.NotEmpty(t, sub)
	for _, st := range sub {
		assert.True(t, rules.InGroup(st.ChangeType, rules.SubtractionRules))
	}
	assert.Equal(t, rules.SubtractFromBothSides, sub[0].ChangeType)
	assert.Equal(t, "x = 5 - 2", sub[0].To.String())
	assert.LessOrEqual(t, len(sub), len(matches))

	require.NoError(t, c.Apply(sub[0]))
	assert.Equal(t, "x = 5 - 2", c.Value())
	assert.True(t, c.IsSolved())
	assert.True(t, c.CanUndo())
}
