package expr

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNotPolynomial is returned when a tree is not a polynomial with
// numeric coefficients in the requested symbol.
var ErrNotPolynomial = errors.New("not a polynomial")

const maxPolyDegree = 32

// Coefficients returns the coefficients of n as a polynomial in x, indexed
// by degree. Trailing zero coefficients are trimmed.
func Coefficients(n *Node, x string) ([]*big.Rat, error) {
	c, err := coefficients(n, x)
	if err != nil {
		return nil, err
	}
	return trimPoly(c), nil
}

// Degree returns the degree of n in x, or -1 for the zero polynomial.
func Degree(n *Node, x string) (int, error) {
	c, err := Coefficients(n, x)
	if err != nil {
		return 0, err
	}
	return len(c) - 1, nil
}

func coefficients(n *Node, x string) ([]*big.Rat, error) {
	n = unparen(n)
	switch n.Kind {
	case KindSymbol:
		if n.Name == x {
			return []*big.Rat{new(big.Rat), big.NewRat(1, 1)}, nil
		}
		return nil, fmt.Errorf("%w: symbol %s", ErrNotPolynomial, n.Name)
	case KindUnaryMinus:
		c, err := coefficients(n.Args[0], x)
		if err != nil {
			return nil, err
		}
		return scalePoly(c, big.NewRat(-1, 1)), nil
	case KindOperator:
		switch n.Op {
		case OpAdd, OpSub:
			l, err := coefficients(n.Args[0], x)
			if err != nil {
				return nil, err
			}
			r, err := coefficients(n.Args[1], x)
			if err != nil {
				return nil, err
			}
			if n.Op == OpSub {
				r = scalePoly(r, big.NewRat(-1, 1))
			}
			return addPoly(l, r), nil
		case OpMul:
			l, err := coefficients(n.Args[0], x)
			if err != nil {
				return nil, err
			}
			r, err := coefficients(n.Args[1], x)
			if err != nil {
				return nil, err
			}
			return mulPoly(l, r)
		case OpDiv:
			l, err := coefficients(n.Args[0], x)
			if err != nil {
				return nil, err
			}
			if ContainsSymbol(n.Args[1], "") {
				return nil, fmt.Errorf("%w: symbol in denominator", ErrNotPolynomial)
			}
			d, err := Eval(n.Args[1])
			if err != nil {
				return nil, err
			}
			if d.Sign() == 0 {
				return nil, ErrDivisionByZero
			}
			return scalePoly(l, new(big.Rat).Inv(d)), nil
		case OpPow:
			if ContainsSymbol(n.Args[1], "") {
				return nil, fmt.Errorf("%w: symbolic exponent", ErrNotPolynomial)
			}
			e, err := Eval(n.Args[1])
			if err != nil {
				return nil, err
			}
			k, ok := smallInt(e)
			if !ok || k < 0 || k > maxPolyDegree {
				if !ContainsSymbol(n.Args[0], "") {
					break
				}
				return nil, fmt.Errorf("%w: exponent %s", ErrNotPolynomial, e.RatString())
			}
			base, err := coefficients(n.Args[0], x)
			if err != nil {
				return nil, err
			}
			acc := []*big.Rat{big.NewRat(1, 1)}
			for i := int64(0); i < k; i++ {
				if acc, err = mulPoly(acc, base); err != nil {
					return nil, err
				}
			}
			return acc, nil
		}
	}
	if ContainsSymbol(n, "") {
		return nil, fmt.Errorf("%w: %s", ErrNotPolynomial, String(n))
	}
	v, err := Eval(n)
	if err != nil {
		return nil, err
	}
	return []*big.Rat{v}, nil
}

func scalePoly(c []*big.Rat, k *big.Rat) []*big.Rat {
	out := make([]*big.Rat, len(c))
	for i, v := range c {
		out[i] = new(big.Rat).Mul(v, k)
	}
	return out
}

func addPoly(a, b []*big.Rat) []*big.Rat {
	out := make([]*big.Rat, max(len(a), len(b)))
	for i := range out {
		out[i] = new(big.Rat)
		if i < len(a) {
			out[i].Add(out[i], a[i])
		}
		if i < len(b) {
			out[i].Add(out[i], b[i])
		}
	}
	return out
}

func mulPoly(a, b []*big.Rat) ([]*big.Rat, error) {
	if len(a)+len(b)-2 > maxPolyDegree {
		return nil, fmt.Errorf("%w: degree above %d", ErrNotPolynomial, maxPolyDegree)
	}
	out := make([]*big.Rat, len(a)+len(b)-1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	for i, x := range a {
		for j, y := range b {
			out[i+j].Add(out[i+j], new(big.Rat).Mul(x, y))
		}
	}
	return out, nil
}

func trimPoly(c []*big.Rat) []*big.Rat {
	for len(c) > 0 && c[len(c)-1].Sign() == 0 {
		c = c[:len(c)-1]
	}
	return c
}

// FromCoefficients builds the polynomial with the given coefficients in
// descending degree order, skipping zero terms.
func FromCoefficients(c []*big.Rat, x string) *Node {
	var terms []Term
	for deg := len(c) - 1; deg >= 0; deg-- {
		v := c[deg]
		if v.Sign() == 0 {
			continue
		}
		var term *Node
		abs := new(big.Rat).Abs(v)
		switch {
		case deg == 0:
			term = Num(abs)
		case abs.Cmp(big.NewRat(1, 1)) == 0:
			term = monomial(x, deg)
		default:
			term = Mul(Num(abs), monomial(x, deg))
		}
		if v.Sign() < 0 {
			if len(terms) == 0 {
				term = Neg(term)
			} else {
				terms = append(terms, Term{Node: term, Sub: true})
				continue
			}
		}
		terms = append(terms, Term{Node: term})
	}
	return Unflatten(OpAdd, terms)
}

func monomial(x string, deg int) *Node {
	if deg == 1 {
		return Sym(x)
	}
	return Pow(Sym(x), Const(int64(deg)))
}

// Negate returns -n with obvious double negations and numeric signs folded.
func Negate(n *Node) *Node {
	n = unparen(n)
	switch {
	case n.Kind == KindUnaryMinus:
		return n.Args[0].Clone()
	case n.Kind == KindConstant && n.Value.Sign() == 0:
		return n.Clone()
	case n.IsOp(OpMul) && IsNumber(n.Args[0]):
		return Mul(Negate(n.Args[0]), n.Args[1].Clone())
	}
	return Neg(n.Clone())
}

// SplitCoefficient separates a term into its numeric coefficient and the
// remaining factor. The factor is nil when the term is a pure number.
func SplitCoefficient(n *Node) (*big.Rat, *Node) {
	n = unparen(n)
	switch {
	case n.Kind == KindUnaryMinus:
		c, rest := SplitCoefficient(n.Args[0])
		return c.Neg(c), rest
	case IsConstant(n):
		if v, err := Eval(n); err == nil {
			return v, nil
		}
		return big.NewRat(1, 1), n
	case n.IsOp(OpDiv) && !ContainsSymbol(n.Args[1], ""):
		d, err := Eval(n.Args[1])
		if err != nil || d.Sign() == 0 {
			return big.NewRat(1, 1), n
		}
		c, rest := SplitCoefficient(n.Args[0])
		return c.Quo(c, d), rest
	case n.IsOp(OpMul):
		coef := big.NewRat(1, 1)
		var rest []Term
		for _, t := range Flatten(n) {
			c, r := SplitCoefficient(t.Node)
			coef.Mul(coef, c)
			if r != nil {
				rest = append(rest, Term{Node: r})
			}
		}
		if len(rest) == 0 {
			return coef, nil
		}
		return coef, Unflatten(OpMul, rest)
	}
	return big.NewRat(1, 1), n
}

// ScaleTerm builds coef * factor in its simplest printed form.
func ScaleTerm(coef *big.Rat, factor *Node) *Node {
	if factor == nil {
		return Num(coef)
	}
	switch {
	case coef.Sign() == 0:
		return Const(0)
	case coef.Cmp(big.NewRat(1, 1)) == 0:
		return factor.Clone()
	case coef.Cmp(big.NewRat(-1, 1)) == 0:
		return Neg(factor.Clone())
	}
	return Mul(Num(coef), factor.Clone())
}
