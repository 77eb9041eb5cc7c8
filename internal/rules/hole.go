package rules

import (
	"regexp"

	"github.com/gnolang/mathsteps/internal/expr"
)

// HoleType defines what a template placeholder may bind to.
type HoleType int

const (
	HoleAny      HoleType = iota // e, e1
	HoleNumber                   // n, n1
	HoleConstant                 // a, b, c
	HoleSymbolic                 // fx, gx, hx, kx
	HoleSymbol                   // x
)

func (h HoleType) String() string {
	switch h {
	case HoleAny:
		return "any"
	case HoleNumber:
		return "number"
	case HoleConstant:
		return "constant"
	case HoleSymbolic:
		return "symbolic"
	case HoleSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

var (
	holeNumber   = regexp.MustCompile(`^n\d*$`)
	holeConstant = regexp.MustCompile(`^[abc]\d*$`)
	holeSymbolic = regexp.MustCompile(`^[fghk]x\d*$`)
	holeAny      = regexp.MustCompile(`^e\d*$`)
)

// holeOf reports the placeholder type of a template symbol name.
func holeOf(name string) (HoleType, bool) {
	switch {
	case name == "x":
		return HoleSymbol, true
	case holeNumber.MatchString(name):
		return HoleNumber, true
	case holeConstant.MatchString(name):
		return HoleConstant, true
	case holeSymbolic.MatchString(name):
		return HoleSymbolic, true
	case holeAny.MatchString(name):
		return HoleAny, true
	}
	return 0, false
}

// accepts reports whether n may bind to a hole of type h. When unknown is
// set, other symbols count as constants.
func (h HoleType) accepts(n *expr.Node, unknown string) bool {
	switch h {
	case HoleNumber:
		return expr.IsNumber(n)
	case HoleConstant:
		if n.Kind == expr.KindBool {
			return false
		}
		if unknown != "" {
			return !expr.ContainsSymbol(n, unknown)
		}
		return expr.IsConstant(n)
	case HoleSymbolic:
		return expr.ContainsSymbol(n, unknown)
	case HoleSymbol:
		return expr.IsSymbol(n)
	}
	return true
}

// isHole reports whether the template node is a placeholder.
func isHole(n *expr.Node) (string, HoleType, bool) {
	if n.Kind != expr.KindSymbol {
		return "", 0, false
	}
	h, ok := holeOf(n.Name)
	return n.Name, h, ok
}

// absorbing reports whether a chain item can take several leftover terms.
func absorbing(item expr.Term) bool {
	if item.Sub {
		return false
	}
	_, h, ok := isHole(item.Node)
	return ok && (h == HoleSymbolic || h == HoleAny)
}
