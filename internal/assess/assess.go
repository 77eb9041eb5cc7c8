package assess

import (
	"errors"

	"github.com/gnolang/mathsteps/internal/equiv"
	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/rules"
	"github.com/gnolang/mathsteps/internal/search"
)

var ErrMixedInput = errors.New("cannot compare an equation with an expression")

// AssessedStep is the verdict on a learner's step.
type AssessedStep struct {
	From string `json:"from"`
	To   string `json:"to"`
	// IsValid is set when To follows from From.
	IsValid bool `json:"isValid"`
	// IsCorrect is set when To is the step the engine would take first.
	IsCorrect bool `json:"isCorrect"`
	// ChangeType is the rewrite the learner performed, when recognized.
	ChangeType rules.ChangeType `json:"changeType,omitempty"`
	// ExpectedChangeType is the first step the engine would take.
	ExpectedChangeType rules.ChangeType `json:"expectedChangeType,omitempty"`
	// MistakenChangeType classifies an invalid step.
	MistakenChangeType rules.ChangeType `json:"mistakenChangeType,omitempty"`
	// AttemptedChangeType and AttemptedToGetTo describe the operation the
	// learner tried and its correct result, when it could be inferred.
	AttemptedChangeType rules.ChangeType `json:"attemptedChangeType,omitempty"`
	AttemptedToGetTo    string           `json:"attemptedToGetTo,omitempty"`
}

// equationPools are searched for balanced moves when assessing equations.
var equationPools = []string{rules.PoolLinear, rules.PoolFunction, rules.PoolCross, rules.PoolBalance}

// Assessor checks learner steps against the steps the engine can take.
type Assessor struct {
	searcher *search.Searcher
}

// New creates an assessor on top of a searcher.
func New(searcher *search.Searcher) *Assessor {
	return &Assessor{searcher: searcher}
}

// AssessUserStep classifies the step from -> to. It only fails when one
// of the texts does not parse or when an equation is compared with an
// expression.
func (a *Assessor) AssessUserStep(from, to string) (AssessedStep, error) {
	out := AssessedStep{From: from, To: to}
	switch fromEq, toEq := expr.IsEquation(from), expr.IsEquation(to); {
	case fromEq && toEq:
		f, err := expr.ParseEquation(from)
		if err != nil {
			return out, err
		}
		t, err := expr.ParseEquation(to)
		if err != nil {
			return out, err
		}
		a.assessEquation(&out, f, t)
		return out, nil
	case fromEq != toEq:
		return out, ErrMixedInput
	}

	f, err := expr.Parse(from)
	if err != nil {
		return out, err
	}
	t, err := expr.Parse(to)
	if err != nil {
		return out, err
	}
	a.assessExpression(&out, f, t)
	return out, nil
}

func (a *Assessor) assessExpression(out *AssessedStep, from, to *expr.Node) {
	// rewriting nothing is not a step
	if equiv.Same(from, to) {
		out.mistake(mistake{change: rules.NoChange})
		return
	}
	steps := a.searcher.FindAllNextStepOptions(from, search.Context{})
	if len(steps) > 0 {
		out.ExpectedChangeType = steps[0].ChangeType
	}
	for _, st := range steps {
		if equiv.Same(st.To, to) {
			out.valid(st.ChangeType)
			return
		}
	}
	if equiv.ExpressionsEquivalent(from, to) {
		out.valid(rules.ValidStepOffPath)
		return
	}
	out.mistake(inferMistake(out.From, out.To))
}

func (a *Assessor) assessEquation(out *AssessedStep, from, to expr.Equation) {
	if equiv.SameEquation(from, to) {
		out.mistake(mistake{change: rules.NoChange})
		return
	}
	steps := a.searcher.FindEquationSteps(from, equationPools)
	if len(steps) > 0 {
		out.ExpectedChangeType = steps[0].ChangeType
	}
	for _, st := range steps {
		if equiv.SameEquation(st.To, to) {
			out.valid(st.ChangeType)
			return
		}
	}
	if equiv.SameEquation(expr.Equation{Left: from.Right, Right: from.Left}, to) {
		out.valid(rules.SwapSides)
		return
	}
	if detectCrossMultiplication(from, to) {
		out.valid(rules.CrossMultiply)
		return
	}
	if equiv.EquationsEquivalent(from, to) {
		out.valid(rules.ValidStepOffPath)
		return
	}

	// one side kept: judge the rewrite of the other side
	switch {
	case equiv.Same(from.Left, to.Left):
		out.mistake(inferMistake(expr.String(from.Right), expr.String(to.Right)))
	case equiv.Same(from.Right, to.Right):
		out.mistake(inferMistake(expr.String(from.Left), expr.String(to.Left)))
	default:
		out.mistake(mistake{change: rules.Unknown})
	}
}

func (s *AssessedStep) valid(change rules.ChangeType) {
	s.IsValid = true
	s.ChangeType = change
	s.IsCorrect = change != rules.ValidStepOffPath && s.ExpectedChangeType != "" &&
		change.Root() == s.ExpectedChangeType.Root()
}

func (s *AssessedStep) mistake(m mistake) {
	s.MistakenChangeType = m.change
	s.AttemptedChangeType = m.attempted
	s.AttemptedToGetTo = m.attemptedToGetTo
}
