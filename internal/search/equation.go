package search

import (
	"github.com/gnolang/mathsteps/internal/equiv"
	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/rules"
)

// EquationStep is one rewrite of an equation. Side rewrites carry the
// expression step they were made of.
type EquationStep struct {
	From       expr.Equation
	To         expr.Equation
	ChangeType rules.ChangeType
	Side       Side
	StepID     string
	AddedNumOp *NumberOp
	Substep    *Step
}

// FindEquationSteps lists the rewrites of eq: simplifications of the left
// side, then of the right side, then matches of the equation rules of
// pools in the given order. Equations printed in history are skipped.
func (s *Searcher) FindEquationSteps(eq expr.Equation, pools []string, history ...string) []EquationStep {
	return s.FindEquationStepsFor(eq, "", pools, history...)
}

// FindEquationStepsFor is FindEquationSteps with the equation rules
// matched for unknown, so other symbols act as constants.
func (s *Searcher) FindEquationStepsFor(eq expr.Equation, unknown string, pools []string, history ...string) []EquationStep {
	var out []EquationStep
	add := func(step EquationStep) {
		if expr.Equal(step.To.Left, eq.Left) && expr.Equal(step.To.Right, eq.Right) {
			return
		}
		key := step.To.String()
		for _, h := range history {
			if h == key {
				return
			}
		}
		for _, prev := range out {
			if equiv.SameEquation(prev.To, step.To) {
				return
			}
		}
		out = append(out, step)
	}

	for _, side := range []Side{SideLeft, SideRight} {
		n, other := eq.Left, eq.Right
		if side == SideRight {
			n, other = eq.Right, eq.Left
		}
		for _, st := range s.FindAllNextStepOptions(n, Context{OtherSide: other, Side: side, History: history}) {
			st := st
			to := expr.Equation{Left: st.To, Right: other.Clone()}
			if side == SideRight {
				to = expr.Equation{Left: other.Clone(), Right: st.To}
			}
			add(EquationStep{From: eq.Clone(), To: to, ChangeType: st.ChangeType, Side: side, Substep: &st})
		}
	}

	for _, name := range pools {
		for _, r := range s.rules.Pool(name).Rules {
			to, b, ok := r.ApplyEquationFor(eq, unknown)
			if !ok {
				continue
			}
			add(EquationStep{From: eq.Clone(), To: to, ChangeType: r.ID, Side: SideBoth, AddedNumOp: addedNumOp(r.ID, b)})
		}
	}
	return out
}

// addedNumOp reports what a balanced move applied to both sides.
func addedNumOp(id rules.ChangeType, b rules.Bindings) *NumberOp {
	var op string
	names := []string{"a", "gx"}
	switch id.Root() {
	case rules.AddToBothSides:
		op = expr.OpAdd
	case rules.SubtractFromBothSides:
		op = expr.OpSub
	case rules.MultiplyBothSides:
		op = expr.OpMul
	case rules.DivideBothSides:
		op = expr.OpDiv
	case rules.MultiplyByDenominator:
		op, names = expr.OpMul, []string{"fx"}
	case rules.MultiplyByNegativeOne:
		return &NumberOp{Op: expr.OpMul, Number: expr.Neg(expr.Const(1))}
	default:
		return nil
	}
	for _, name := range names {
		if n, ok := b[name]; ok {
			return &NumberOp{Op: op, Number: n.Clone()}
		}
	}
	return nil
}
