package expr

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

var (
	ErrNotConstant    = errors.New("expression is not constant")
	ErrNotExact       = errors.New("no exact rational value")
	ErrDivisionByZero = errors.New("division by zero")
)

// exponents beyond this bound are not folded exactly
const maxExactExponent = 256

// Eval folds a constant expression into an exact rational.
func Eval(n *Node) (*big.Rat, error) {
	switch n.Kind {
	case KindConstant:
		return new(big.Rat).Set(n.Value), nil
	case KindParen:
		return Eval(n.Args[0])
	case KindUnaryMinus:
		v, err := Eval(n.Args[0])
		if err != nil {
			return nil, err
		}
		return v.Neg(v), nil
	case KindOperator:
		l, err := Eval(n.Args[0])
		if err != nil {
			return nil, err
		}
		r, err := Eval(n.Args[1])
		if err != nil {
			return nil, err
		}
		return evalOp(n.Op, l, r)
	case KindFunction:
		return evalFunc(n)
	case KindSymbol:
		return nil, fmt.Errorf("%w: symbol %s", ErrNotConstant, n.Name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotConstant, n.Kind)
	}
}

func evalOp(op string, l, r *big.Rat) (*big.Rat, error) {
	switch op {
	case OpAdd:
		return new(big.Rat).Add(l, r), nil
	case OpSub:
		return new(big.Rat).Sub(l, r), nil
	case OpMul:
		return new(big.Rat).Mul(l, r), nil
	case OpDiv:
		if r.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		return new(big.Rat).Quo(l, r), nil
	case OpPow:
		return ratPow(l, r)
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}

func ratPow(base, exp *big.Rat) (*big.Rat, error) {
	if !exp.IsInt() {
		// base^(p/q) is exact only when the q-th root is
		q := exp.Denom()
		if !q.IsInt64() || q.Int64() > maxExactExponent {
			return nil, ErrNotExact
		}
		root, err := RatRoot(base, int(q.Int64()))
		if err != nil {
			return nil, err
		}
		return ratPow(root, new(big.Rat).SetInt(exp.Num()))
	}
	e := exp.Num()
	if !e.IsInt64() || e.Int64() > maxExactExponent || e.Int64() < -maxExactExponent {
		return nil, ErrNotExact
	}
	k := e.Int64()
	if k < 0 {
		if base.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		base = new(big.Rat).Inv(base)
		k = -k
	}
	num := new(big.Int).Exp(base.Num(), big.NewInt(k), nil)
	den := new(big.Int).Exp(base.Denom(), big.NewInt(k), nil)
	return new(big.Rat).SetFrac(num, den), nil
}

// RatRoot returns the exact n-th root of r.
func RatRoot(r *big.Rat, n int) (*big.Rat, error) {
	if n < 1 {
		return nil, ErrNotExact
	}
	neg := r.Sign() < 0
	if neg && n%2 == 0 {
		return nil, ErrNotExact
	}
	abs := new(big.Rat).Abs(r)
	num, ok := intRoot(abs.Num(), n)
	if !ok {
		return nil, ErrNotExact
	}
	den, ok := intRoot(abs.Denom(), n)
	if !ok {
		return nil, ErrNotExact
	}
	root := new(big.Rat).SetFrac(num, den)
	if neg {
		root.Neg(root)
	}
	return root, nil
}

func intRoot(x *big.Int, n int) (*big.Int, bool) {
	if n == 1 {
		return new(big.Int).Set(x), true
	}
	if n == 2 {
		s := new(big.Int).Sqrt(x)
		return s, new(big.Int).Mul(s, s).Cmp(x) == 0
	}
	f, _ := new(big.Float).SetInt(x).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(n))))
	for _, c := range []int64{guess - 1, guess, guess + 1} {
		if c < 0 {
			continue
		}
		cand := big.NewInt(c)
		if new(big.Int).Exp(cand, big.NewInt(int64(n)), nil).Cmp(x) == 0 {
			return cand, true
		}
	}
	return nil, false
}

func evalFunc(n *Node) (*big.Rat, error) {
	args := make([]*big.Rat, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	switch {
	case n.Name == "sqrt" && len(args) == 1:
		return RatRoot(args[0], 2)
	case n.Name == "nthRoot" && len(args) == 2:
		k, ok := smallInt(args[1])
		if !ok || k < 1 {
			return nil, ErrNotExact
		}
		return RatRoot(args[0], int(k))
	case n.Name == "nthRoot" && len(args) == 1:
		return RatRoot(args[0], 2)
	case n.Name == "abs" && len(args) == 1:
		return new(big.Rat).Abs(args[0]), nil
	case (n.Name == "gcd" || n.Name == "lcm") && len(args) == 2:
		if !args[0].IsInt() || !args[1].IsInt() {
			return nil, ErrNotExact
		}
		a := new(big.Int).Abs(args[0].Num())
		b := new(big.Int).Abs(args[1].Num())
		g := new(big.Int).GCD(nil, nil, a, b)
		if n.Name == "gcd" {
			return new(big.Rat).SetInt(g), nil
		}
		if g.Sign() == 0 {
			return new(big.Rat), nil
		}
		l := new(big.Int).Mul(a, b)
		return new(big.Rat).SetInt(l.Quo(l, g)), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotExact, n.Name)
}

func smallInt(r *big.Rat) (int64, bool) {
	if !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	return r.Num().Int64(), true
}

// EvalFloat evaluates n with the given symbol values. Unknown symbols and
// undefined operations produce NaN.
func EvalFloat(n *Node, env map[string]float64) float64 {
	switch n.Kind {
	case KindConstant:
		f, _ := n.Value.Float64()
		return f
	case KindSymbol:
		if v, ok := env[n.Name]; ok {
			return v
		}
		return math.NaN()
	case KindParen:
		return EvalFloat(n.Args[0], env)
	case KindUnaryMinus:
		return -EvalFloat(n.Args[0], env)
	case KindOperator:
		l, r := EvalFloat(n.Args[0], env), EvalFloat(n.Args[1], env)
		switch n.Op {
		case OpAdd:
			return l + r
		case OpSub:
			return l - r
		case OpMul:
			return l * r
		case OpDiv:
			if r == 0 {
				return math.NaN()
			}
			return l / r
		case OpPow:
			return math.Pow(l, r)
		}
	case KindFunction:
		args := make([]float64, len(n.Args))
		for i, a := range n.Args {
			args[i] = EvalFloat(a, env)
		}
		return evalFloatFunc(n.Name, args)
	}
	return math.NaN()
}

func evalFloatFunc(name string, args []float64) float64 {
	if len(args) == 0 {
		return math.NaN()
	}
	x := args[0]
	switch name {
	case "sqrt":
		return math.Sqrt(x)
	case "nthRoot":
		k := 2.0
		if len(args) > 1 {
			k = args[1]
		}
		if x < 0 && math.Mod(k, 2) == 1 {
			return -math.Pow(-x, 1/k)
		}
		return math.Pow(x, 1/k)
	case "abs":
		return math.Abs(x)
	case "sin":
		return math.Sin(x)
	case "cos":
		return math.Cos(x)
	case "tan":
		return math.Tan(x)
	case "log", "ln":
		if len(args) > 1 {
			return math.Log(x) / math.Log(args[1])
		}
		return math.Log(x)
	case "exp":
		return math.Exp(x)
	}
	return math.NaN()
}
