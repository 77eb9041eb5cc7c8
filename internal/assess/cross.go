package assess

import (
	"github.com/gnolang/mathsteps/internal/equiv"
	"github.com/gnolang/mathsteps/internal/expr"
)

// DetectCrossMultiplication reports whether to is from with both sides
// cross multiplied, i.e. from is "a/b = c/d" and to is "a*d = c*b" up to
// evaluation and side order. Unparsable input is never a match.
func DetectCrossMultiplication(from, to string) bool {
	f, err := expr.ParseEquation(from)
	if err != nil {
		return false
	}
	t, err := expr.ParseEquation(to)
	if err != nil {
		return false
	}
	return detectCrossMultiplication(f, t)
}

func detectCrossMultiplication(from, to expr.Equation) bool {
	l, r := expr.StripParens(from.Left), expr.StripParens(from.Right)
	if !l.IsOp(expr.OpDiv) || !r.IsOp(expr.OpDiv) {
		return false
	}
	left := expr.Mul(l.Left(), r.Right())
	right := expr.Mul(r.Left(), l.Right())
	matches := func(a, b *expr.Node) bool {
		return equiv.ExpressionsEquivalent(a, to.Left) && equiv.ExpressionsEquivalent(b, to.Right)
	}
	return matches(left, right) || matches(right, left)
}
