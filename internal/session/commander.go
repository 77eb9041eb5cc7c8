package session

import (
	"errors"

	"github.com/gnolang/mathsteps/internal/equiv"
	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/rules"
	"github.com/gnolang/mathsteps/internal/search"
	"github.com/gnolang/mathsteps/internal/solver"
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// pools offered as moves on the current equation
var movePools = []string{rules.PoolLinear, rules.PoolFunction, rules.PoolCross, rules.PoolBalance}

// Commander drives an equation interactively: it keeps an undo history of
// the equation text and lists the steps that apply to the current value.
type Commander struct {
	searcher *search.Searcher
	answer   *solver.Equation

	history []string
	pos     int
}

// New starts a session on text. The answer is solved up front; an equation
// that cannot be solved is not an error, the session then never reports
// IsSolved.
func New(text string, searcher *search.Searcher, s *solver.Solver) (*Commander, error) {
	eq, err := expr.ParseEquation(text)
	if err != nil {
		return nil, err
	}
	c := &Commander{searcher: searcher, history: []string{eq.String()}}
	answer := solver.FromValue(eq.Clone(), "")
	if err := s.Solve(answer); err == nil && answer.IsSolved() {
		c.answer = answer
	}
	return c, nil
}

// Value returns the current equation text.
func (c *Commander) Value() string {
	return c.history[c.pos]
}

func (c *Commander) current() expr.Equation {
	eq, err := expr.ParseEquation(c.Value())
	if err != nil {
		// every entry was parsed before it was stored
		panic(err)
	}
	return eq
}

// SetValue replaces the current equation and drops the redo branch.
func (c *Commander) SetValue(text string) error {
	eq, err := expr.ParseEquation(text)
	if err != nil {
		return err
	}
	c.history = append(c.history[:c.pos+1], eq.String())
	c.pos++
	return nil
}

func (c *Commander) CanUndo() bool {
	return c.pos > 0
}

func (c *Commander) CanRedo() bool {
	return c.pos < len(c.history)-1
}

func (c *Commander) Undo() error {
	if !c.CanUndo() {
		return ErrNothingToUndo
	}
	c.pos--
	return nil
}

func (c *Commander) Redo() error {
	if !c.CanRedo() {
		return ErrNothingToRedo
	}
	c.pos++
	return nil
}

// Swap exchanges the sides of the current equation.
func (c *Commander) Swap() error {
	eq := c.current()
	return c.SetValue(expr.Equation{Left: eq.Right, Right: eq.Left}.String())
}

// CurrentMatches lists every step that applies to the current equation.
func (c *Commander) CurrentMatches() []search.EquationStep {
	return c.searcher.FindEquationSteps(c.current(), movePools)
}

// MatchesForRule keeps the current matches whose change type belongs to
// group.
func (c *Commander) MatchesForRule(group rules.Group) []search.EquationStep {
	var out []search.EquationStep
	for _, st := range c.CurrentMatches() {
		if rules.InGroup(st.ChangeType, group) {
			out = append(out, st)
		}
	}
	return out
}

// Apply makes the result of step the current equation.
func (c *Commander) Apply(step search.EquationStep) error {
	return c.SetValue(step.To.String())
}

// Answer returns the solved copy of the starting equation, or nil when it
// could not be solved.
func (c *Commander) Answer() *solver.Equation {
	return c.answer
}

// IsSolved reports whether the current equation states one of the
// solutions, or has the truth value of an identity or contradiction.
func (c *Commander) IsSolved() bool {
	if c.answer == nil || !c.answer.IsSolved() {
		return false
	}
	eq := c.current()
	x := c.answer.Unknown
	inLeft, inRight := expr.ContainsSymbol(eq.Left, x), expr.ContainsSymbol(eq.Right, x)

	var value *expr.Node
	switch {
	case !inLeft && !inRight:
		return c.constantMatches(eq)
	case expr.IsSymbol(eq.Left) && eq.Left.Name == x && !inRight:
		value = eq.Right
	case expr.IsSymbol(eq.Right) && eq.Right.Name == x && !inLeft:
		value = eq.Left
	default:
		return false
	}
	for _, s := range c.answer.Solutions {
		if s.Kind != expr.KindBool && equiv.ExpressionsEquivalent(value, s) {
			return true
		}
	}
	return false
}

func (c *Commander) constantMatches(eq expr.Equation) bool {
	sols := c.answer.Solutions
	if len(sols) != 1 || sols[0].Kind != expr.KindBool {
		return false
	}
	return equiv.ExpressionsEquivalent(eq.Left, eq.Right) == sols[0].Bool
}
