package solver

import (
	"fmt"
	"strings"

	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/search"
)

// DefaultUnknown is solved for when an equation has no symbol to pick.
const DefaultUnknown = "x"

// Equation is an equation being solved. Solve rewrites it in place and
// records the steps taken.
type Equation struct {
	Left       *expr.Node
	Right      *expr.Node
	Comparator string
	Unknown    string
	Steps      []search.EquationStep
	// Solutions is nil until the equation is solved. A single true or
	// false node marks an identity or a contradiction.
	Solutions []*expr.Node
}

// Parse reads an equation. The unknown is the first symbol of the left
// side, then of the right side.
func Parse(text string) (*Equation, error) {
	e, err := expr.ParseEquation(text)
	if err != nil {
		return nil, err
	}
	return FromValue(e, ""), nil
}

// FromValue wraps a parsed equation. An empty unknown is inferred.
func FromValue(e expr.Equation, unknown string) *Equation {
	if unknown == "" {
		unknown = inferUnknown(e)
	}
	return &Equation{Left: e.Left, Right: e.Right, Comparator: "=", Unknown: unknown}
}

func inferUnknown(e expr.Equation) string {
	for _, side := range []*expr.Node{e.Left, e.Right} {
		if names := expr.Symbols(side); len(names) > 0 {
			return names[0]
		}
	}
	return DefaultUnknown
}

// Value returns the current sides.
func (e *Equation) Value() expr.Equation {
	return expr.Equation{Left: e.Left, Right: e.Right}
}

func (e *Equation) String() string {
	return e.Value().String()
}

// IsSolved reports whether Solve reached a solution set.
func (e *Equation) IsSolved() bool {
	return e.Solutions != nil
}

// Result renders the solutions as "x = v" or "x = [v1, v2]". An identity
// or a contradiction renders as "true" or "false".
func (e *Equation) Result() string {
	switch {
	case e.Solutions == nil:
		return ""
	case len(e.Solutions) == 1 && e.Solutions[0].Kind == expr.KindBool:
		return expr.String(e.Solutions[0])
	case len(e.Solutions) == 1:
		return fmt.Sprintf("%s = %s", e.Unknown, expr.String(e.Solutions[0]))
	}
	values := make([]string, len(e.Solutions))
	for i, s := range e.Solutions {
		values[i] = expr.String(s)
	}
	return fmt.Sprintf("%s = [%s]", e.Unknown, strings.Join(values, ", "))
}
