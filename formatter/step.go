package formatter

import (
	"strconv"
	"strings"

	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/search"
	"github.com/gnolang/mathsteps/internal/solver"
	"github.com/gnolang/mathsteps/internal/types"
)

type ExpressionStepFormatter struct{}

func (f *ExpressionStepFormatter) StepTemplate() string {
	return `{{header .ID .ChangeType ""}}{{from .Padding .From}}{{to .Padding .To}}{{note .Padding .Note}}`
}

type EquationStepFormatter struct{}

func (f *EquationStepFormatter) StepTemplate() string {
	return `{{header .ID .ChangeType .Side}}{{from .Padding .From}}{{to .Padding .To}}{{note .Padding .Note}}`
}

func numOpNote(label string, op *search.NumberOp, notation Notation) string {
	if op == nil || op.Number == nil {
		return ""
	}
	return label + " " + op.Op + " " + notation.node(op.Number)
}

// FormatSteps renders expression steps numbered from 1.
func FormatSteps(steps []search.Step, notation Notation) string {
	var builder strings.Builder
	for i, st := range steps {
		data := newStepData(strconv.Itoa(i+1), string(st.ChangeType))
		data.From = notation.node(st.From)
		data.To = notation.node(st.To)
		data.Note = numOpNote("operand", st.RemovedNumOp, notation)
		builder.WriteString(buildStep(data, &ExpressionStepFormatter{}))
	}
	return builder.String()
}

// FormatOptions renders the steps available from one expression, each
// on a line of its own.
func FormatOptions(steps []search.Step, notation Notation) string {
	if len(steps) == 0 {
		return noteStyle.Sprintln("no step applies")
	}
	var builder strings.Builder
	for i, st := range steps {
		builder.WriteString(lineStyle.Sprintf("%d. ", i+1))
		builder.WriteString(changeStyle.Sprintf("%s ", st.ChangeType))
		builder.WriteString(exprStyle.Sprintf("%s\n", notation.node(st.To)))
	}
	return builder.String()
}

// FormatEquationSteps renders solver steps under their step IDs.
func FormatEquationSteps(steps []search.EquationStep, notation Notation) string {
	var builder strings.Builder
	for _, st := range steps {
		data := newStepData(st.StepID, string(st.ChangeType))
		if st.Side != search.SideNone {
			data.Side = st.Side.String()
		}
		data.From = notation.equation(st.From)
		data.To = notation.equation(st.To)
		data.Note = numOpNote("both sides", st.AddedNumOp, notation)
		builder.WriteString(buildStep(data, &EquationStepFormatter{}))
	}
	return builder.String()
}

// FormatSolution renders the steps of a solved equation and its result.
// err is the error Solve returned, if any.
func FormatSolution(eq *solver.Equation, err error, notation Notation) string {
	var builder strings.Builder
	builder.WriteString(FormatEquationSteps(eq.Steps, notation))
	if err != nil {
		builder.WriteString(errorStyle.Sprint("unsolved: "))
		builder.WriteString(noteStyle.Sprintf("%v\n", err))
		return builder.String()
	}
	if !eq.IsSolved() {
		builder.WriteString(errorStyle.Sprint("unsolved: "))
		builder.WriteString(noteStyle.Sprintf("no rule applies to %s\n", notation.equation(eq.Value())))
		return builder.String()
	}
	builder.WriteString(headlineStyle.Sprint("result: "))
	builder.WriteString(resultStyle.Sprintf("%s\n", solutionText(eq, notation)))
	return builder.String()
}

func solutionText(eq *solver.Equation, notation Notation) string {
	if notation == ASCII {
		return eq.Result()
	}
	switch {
	case len(eq.Solutions) == 1 && eq.Solutions[0].Kind == expr.KindBool:
		return expr.String(eq.Solutions[0])
	case len(eq.Solutions) == 1:
		return eq.Unknown + " = " + expr.LaTeX(eq.Solutions[0])
	}
	values := make([]string, len(eq.Solutions))
	for i, s := range eq.Solutions {
		values[i] = expr.LaTeX(s)
	}
	return eq.Unknown + ` \in \left\{` + strings.Join(values, ", ") + `\right\}`
}

// FormatResult renders one batch result as text.
func FormatResult(r types.Result) string {
	var builder strings.Builder
	builder.WriteString(headlineStyle.Sprintf("%s: ", r.Kind))
	builder.WriteString(exprStyle.Sprintf("%s\n", r.Input))

	formatter := stepFormatter(&ExpressionStepFormatter{})
	if r.Kind == types.KindSolve {
		formatter = &EquationStepFormatter{}
	}
	for _, st := range r.Steps {
		data := newStepData(st.ID, st.ChangeType)
		data.From = st.From
		data.To = st.To
		builder.WriteString(buildStep(data, formatter))
	}

	if r.Error != "" {
		builder.WriteString(errorStyle.Sprint("error: "))
		builder.WriteString(noteStyle.Sprintf("%s\n", r.Error))
		return builder.String()
	}
	if r.Kind == types.KindSolve && r.Result == "" {
		builder.WriteString(errorStyle.Sprint("unsolved: "))
		builder.WriteString(noteStyle.Sprintf("no rule applies to %s\n", r.Final))
		return builder.String()
	}
	builder.WriteString(headlineStyle.Sprint("result: "))
	builder.WriteString(resultStyle.Sprintf("%s\n", r.Result))
	return builder.String()
}
