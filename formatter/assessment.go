package formatter

import (
	"strings"
	"text/template"

	"github.com/gnolang/mathsteps/internal/assess"
	"github.com/gnolang/mathsteps/internal/equiv"
)

type AssessmentData struct {
	From      string
	To        string
	Verdict   string
	Change    string
	Expected  string
	Attempted string
	GetTo     string
}

const assessmentTemplate = `{{from "" .From}}{{to "" .To}}{{verdict .Verdict .Change .Expected}}
{{- if .Attempted}}{{attempt .Attempted .GetTo}}{{end}}`

// FormatAssessment renders the verdict on a learner's step.
func FormatAssessment(a assess.AssessedStep) string {
	data := AssessmentData{
		From:     a.From,
		To:       a.To,
		Expected: string(a.ExpectedChangeType),
	}
	switch {
	case a.IsCorrect:
		data.Verdict, data.Change = "correct", string(a.ChangeType)
	case a.IsValid:
		data.Verdict, data.Change = "valid", string(a.ChangeType)
	default:
		data.Verdict, data.Change = "mistake", string(a.MistakenChangeType)
		data.Attempted, data.GetTo = string(a.AttemptedChangeType), a.AttemptedToGetTo
	}

	var builder strings.Builder
	funcs := template.FuncMap{"verdict": verdict, "attempt": attempt}
	for k, v := range funcMap {
		funcs[k] = v
	}
	if err := executeTemplate(&builder, assessmentTemplate, funcs, data); err != nil {
		return "Error formatting assessment: " + err.Error()
	}
	return builder.String()
}

func verdict(v, change, expected string) string {
	style := validStyle
	if v == "mistake" {
		style = mistakeStyle
	}
	out := style.Sprintf("%s: ", v) + changeStyle.Sprint(change)
	if v == "valid" && expected != "" {
		out += noteStyle.Sprintf(" (expected %s)", expected)
	}
	return out + "\n"
}

func attempt(change, getTo string) string {
	out := lineStyle.Sprint("= ") + noteStyle.Sprintf("attempted %s", change)
	if getTo != "" {
		out += noteStyle.Sprintf(", which gives %s", getTo)
	}
	return out + "\n"
}

// FormatComparison renders an equivalence report, with the witness point
// when the sides differ.
func FormatComparison(r equiv.VerificationReport) string {
	var out string
	switch r.Result {
	case equiv.Equivalent:
		out = validStyle.Sprint("equivalent: ")
	case equiv.NotEquivalent:
		out = mistakeStyle.Sprint("not equivalent: ")
	default:
		out = mistakeStyle.Sprint("undecided: ")
	}
	out += noteStyle.Sprint(r.Reason.String()) + "\n"
	if r.Detail != "" {
		out += lineStyle.Sprint("= ") + noteStyle.Sprint(r.Detail) + "\n"
	}
	return out
}
