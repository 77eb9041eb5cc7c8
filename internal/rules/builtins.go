package rules

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/gnolang/mathsteps/internal/expr"
)

var (
	ErrUnknownGuard   = errors.New("unknown guard")
	ErrNotApplicable  = errors.New("rewrite not applicable")
	errBuiltinArgs    = errors.New("wrong number of arguments")
	errUnlikeOperands = errors.New("operands are not like terms")
)

// builtin is a function evaluated while a replacement is instantiated.
type builtin func(args []*expr.Node) (*expr.Node, error)

var builtins = map[string]builtin{
	"eval":        evalBuiltin,
	"neg":         negBuiltin,
	"combine":     combineBuiltin,
	"distribute":  distributeBuiltin,
	"negateTerms": negateTermsBuiltin,
}

func evalBuiltin(args []*expr.Node) (*expr.Node, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("eval: %w", errBuiltinArgs)
	}
	v, err := expr.Eval(args[0])
	if err != nil {
		return nil, err
	}
	return expr.Num(v), nil
}

func negBuiltin(args []*expr.Node) (*expr.Node, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("neg: %w", errBuiltinArgs)
	}
	return expr.Negate(args[0]), nil
}

// combineBuiltin adds two like terms, e.g. 2x and -5x into -3x.
func combineBuiltin(args []*expr.Node) (*expr.Node, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("combine: %w", errBuiltinArgs)
	}
	c1, f1 := expr.SplitCoefficient(args[0])
	c2, f2 := expr.SplitCoefficient(args[1])
	if f1 == nil || f2 == nil || !expr.Equal(f1, f2) {
		return nil, errUnlikeOperands
	}
	return expr.ScaleTerm(new(big.Rat).Add(c1, c2), f1), nil
}

// distributeBuiltin multiplies a factor into every operand of a sum.
func distributeBuiltin(args []*expr.Node) (*expr.Node, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("distribute: %w", errBuiltinArgs)
	}
	terms := expr.Flatten(args[1])
	for i, t := range terms {
		terms[i] = expr.Term{Node: expr.Mul(args[0].Clone(), t.Node), Sub: t.Sub}
	}
	return expr.Unflatten(expr.OpAdd, terms), nil
}

// negateTermsBuiltin flips the sign of every operand of a sum.
func negateTermsBuiltin(args []*expr.Node) (*expr.Node, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("negateTerms: %w", errBuiltinArgs)
	}
	terms := expr.Flatten(args[0])
	for i, t := range terms {
		if !t.Sub && t.Node.Kind == expr.KindUnaryMinus {
			terms[i] = expr.Term{Node: t.Node.Args[0]}
			continue
		}
		terms[i] = expr.Term{Node: t.Node, Sub: !t.Sub}
	}
	return expr.Unflatten(expr.OpAdd, terms), nil
}

// guard is a compiled `when` condition.
type guard struct {
	name   string
	negate bool
	args   []*expr.Node
}

type guardFunc func(args []*expr.Node) bool

var guards = map[string]guardFunc{
	"divisible":   divisible,
	"reducible":   reducible,
	"nonzero":     func(a []*expr.Node) bool { return len(a) == 1 && !expr.IsZero(a[0]) },
	"notOne":      func(a []*expr.Node) bool { return len(a) == 1 && !expr.IsOne(a[0]) },
	"scalable":    func(a []*expr.Node) bool { return len(a) == 1 && !expr.IsZero(a[0]) && !expr.IsOne(a[0]) },
	"like":        like,
	"integer":     func(a []*expr.Node) bool { return len(a) == 1 && isInteger(a[0]) },
	"even":        func(a []*expr.Node) bool { return len(a) == 1 && parity(a[0]) == 0 },
	"odd":         func(a []*expr.Node) bool { return len(a) == 1 && parity(a[0]) == 1 },
	"symbolic":    func(a []*expr.Node) bool { return len(a) == 1 && expr.ContainsSymbol(a[0], "") },
	"different":   func(a []*expr.Node) bool { return len(a) == 2 && !expr.Equal(a[0], a[1]) },
	"nonnegative": func(a []*expr.Node) bool { return len(a) == 1 && !expr.IsNegative(a[0]) && expr.IsConstant(a[0]) },
	"fraction":    func(a []*expr.Node) bool { return len(a) == 1 && expr.IsFraction(a[0]) },
	"sum":         func(a []*expr.Node) bool { return len(a) == 1 && expr.ChainOp(a[0]) == expr.OpAdd },
}

// parseGuards compiles a condition such as "divisible(n1, n2) && !like(e1, e2)".
func parseGuards(when string) ([]guard, error) {
	if strings.TrimSpace(when) == "" {
		return nil, nil
	}
	var out []guard
	for _, part := range strings.Split(when, "&&") {
		part = strings.TrimSpace(part)
		g := guard{}
		if strings.HasPrefix(part, "!") {
			g.negate = true
			part = strings.TrimSpace(part[1:])
		}
		n, err := expr.ParseTemplate(part)
		if err != nil {
			return nil, fmt.Errorf("guard %q: %w", part, err)
		}
		if n.Kind != expr.KindFunction {
			return nil, fmt.Errorf("guard %q: expected a call", part)
		}
		if _, ok := guards[n.Name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownGuard, n.Name)
		}
		g.name = n.Name
		g.args = n.Args
		out = append(out, g)
	}
	return out, nil
}

func (g guard) holds(b Bindings) bool {
	args := make([]*expr.Node, len(g.args))
	for i, a := range g.args {
		v, err := substitute(a, b)
		if err != nil {
			return false
		}
		args[i] = v
	}
	return guards[g.name](args) != g.negate
}

func intValue(n *expr.Node) (*big.Int, bool) {
	if !expr.IsConstant(n) {
		return nil, false
	}
	v, err := expr.Eval(n)
	if err != nil || !v.IsInt() {
		return nil, false
	}
	return v.Num(), true
}

func isInteger(n *expr.Node) bool {
	_, ok := intValue(n)
	return ok
}

func parity(n *expr.Node) int {
	v, ok := intValue(n)
	if !ok {
		return -1
	}
	return int(new(big.Int).Abs(v).Bit(0))
}

func ratValue(n *expr.Node) (*big.Rat, bool) {
	if !expr.IsConstant(n) {
		return nil, false
	}
	v, err := expr.Eval(n)
	return v, err == nil
}

// divisible reports whether a[0]/a[1] evaluates to a plain number: an
// integer quotient, or any quotient with a decimal operand.
func divisible(a []*expr.Node) bool {
	if len(a) != 2 {
		return false
	}
	x, ok1 := ratValue(a[0])
	y, ok2 := ratValue(a[1])
	if !ok1 || !ok2 || y.Sign() == 0 {
		return false
	}
	if !x.IsInt() || !y.IsInt() {
		return true
	}
	return new(big.Int).Rem(x.Num(), y.Num()).Sign() == 0
}

// reducible reports whether the integer fraction a[0]/a[1] shares a factor.
func reducible(a []*expr.Node) bool {
	if len(a) != 2 {
		return false
	}
	x, ok1 := intValue(a[0])
	y, ok2 := intValue(a[1])
	if !ok1 || !ok2 || y.Sign() == 0 {
		return false
	}
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(x), new(big.Int).Abs(y))
	return g.Cmp(big.NewInt(1)) > 0
}

func like(a []*expr.Node) bool {
	if len(a) != 2 {
		return false
	}
	_, err := combineBuiltin(a)
	return err == nil
}
