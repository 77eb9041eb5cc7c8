package formatter

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnolang/mathsteps/internal/expr"
)

var (
	errorStyle    = color.New(color.FgRed, color.Bold)
	changeStyle   = color.New(color.FgYellow, color.Bold)
	lineStyle     = color.New(color.FgHiBlue, color.Bold)
	exprStyle     = color.New(color.FgCyan)
	resultStyle   = color.New(color.FgGreen, color.Bold)
	noteStyle     = color.New(color.FgWhite)
	validStyle    = color.New(color.FgGreen)
	mistakeStyle  = color.New(color.FgRed)
	headlineStyle = color.New(color.Bold)
)

// Notation selects how expressions are printed.
type Notation int

const (
	ASCII Notation = iota
	LaTeX
)

func (n Notation) node(e *expr.Node) string {
	if n == LaTeX {
		return expr.LaTeX(e)
	}
	return expr.String(e)
}

func (n Notation) equation(e expr.Equation) string {
	if n == LaTeX {
		return expr.EquationLaTeX(e)
	}
	return e.String()
}

// stepFormatter is the interface that wraps the StepTemplate method.
// Implementations render one kind of step from StepData.
type stepFormatter interface {
	StepTemplate() string
}

/***** Step Formatter Builder *****/

type StepData struct {
	ID         string
	Padding    string
	ChangeType string
	Side       string
	From       string
	To         string
	Note       string
}

func newStepData(id, change string) StepData {
	return StepData{
		ID:         id,
		ChangeType: change,
		Padding:    strings.Repeat(" ", len(id)+2),
	}
}

var funcMap = template.FuncMap{
	"header": header,
	"from":   from,
	"to":     to,
	"note":   note,
}

func buildStep(data StepData, formatter stepFormatter) string {
	tmpl := template.Must(template.New("step").Funcs(funcMap).Parse(formatter.StepTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting step: %v", err)
	}
	return buf.String()
}

func executeTemplate(w io.Writer, text string, funcs template.FuncMap, data any) error {
	tmpl, err := template.New("").Funcs(funcs).Parse(text)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, data)
}

// utils functions used in the text templates

func header(id, change, side string) string {
	out := lineStyle.Sprintf("[%s] ", id)
	out += changeStyle.Sprint(change)
	if side != "" {
		out += noteStyle.Sprintf(" (%s)", side)
	}
	return out + "\n"
}

func from(padding, text string) string {
	return lineStyle.Sprintf("%s| ", padding) + exprStyle.Sprintf("%s\n", text)
}

func to(padding, text string) string {
	return lineStyle.Sprintf("%s> ", padding) + exprStyle.Sprintf("%s\n", text)
}

func note(padding, text string) string {
	if text == "" {
		return ""
	}
	return lineStyle.Sprintf("%s= ", padding) + noteStyle.Sprintf("%s\n", text)
}
