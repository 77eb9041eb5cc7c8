package solver

import (
	"errors"
	"fmt"

	"github.com/gnolang/mathsteps/internal/expr"
)

var ErrUnhandledNodeTypes = errors.New("unhandled node types")

// TermKind classifies one side of an equation with respect to the unknown.
type TermKind int

const (
	// Constant does not contain the unknown.
	Constant TermKind = iota
	// Polynomial is a polynomial in the unknown with constant coefficients.
	Polynomial
	// Function is anything else containing the unknown.
	Function
)

func (k TermKind) String() string {
	switch k {
	case Constant:
		return "C"
	case Polynomial:
		return "P"
	case Function:
		return "F"
	default:
		return "?"
	}
}

// Term is a classified subtree. Degree is only meaningful for polynomials.
type Term struct {
	Kind   TermKind
	Degree int
	Node   *expr.Node
}

// Classify computes the kind of n as a term in unknown.
func Classify(n *expr.Node, unknown string) (Term, error) {
	switch n.Kind {
	case expr.KindConstant, expr.KindBool:
		return Term{Kind: Constant, Node: n}, nil
	case expr.KindSymbol:
		if n.Name == unknown {
			return Term{Kind: Polynomial, Degree: 1, Node: n}, nil
		}
		return Term{Kind: Constant, Node: n}, nil
	case expr.KindParen:
		t, err := Classify(n.Args[0], unknown)
		t.Node = n
		return t, err
	case expr.KindUnaryMinus:
		t, err := Classify(n.Args[0], unknown)
		t.Node = n
		return t, err
	case expr.KindFunction:
		if expr.ContainsSymbol(n, unknown) {
			return Term{Kind: Function, Node: n}, nil
		}
		return Term{Kind: Constant, Node: n}, nil
	case expr.KindOperator:
		l, err := Classify(n.Args[0], unknown)
		if err != nil {
			return Term{}, err
		}
		r, err := Classify(n.Args[1], unknown)
		if err != nil {
			return Term{}, err
		}
		t, err := Combine(n.Op, l, r)
		t.Node = n
		return t, err
	}
	return Term{}, fmt.Errorf("%w: %s", ErrUnhandledNodeTypes, n.Kind)
}

// Combine gives the kind of l op r.
func Combine(op string, l, r Term) (Term, error) {
	if l.Kind == Function || r.Kind == Function {
		switch op {
		case expr.OpAdd, expr.OpSub, expr.OpMul, expr.OpDiv, expr.OpPow:
			return Term{Kind: Function}, nil
		}
		return Term{}, fmt.Errorf("%w: %s %s %s", ErrUnhandledNodeTypes, l.Kind, op, r.Kind)
	}

	switch op {
	case expr.OpAdd, expr.OpSub:
		switch {
		case l.Kind == Constant && r.Kind == Constant:
			return Term{Kind: Constant}, nil
		case l.Kind == Polynomial && r.Kind == Polynomial:
			return Term{Kind: Polynomial, Degree: max(l.Degree, r.Degree)}, nil
		case l.Kind == Polynomial:
			return Term{Kind: Polynomial, Degree: l.Degree}, nil
		default:
			return Term{Kind: Polynomial, Degree: r.Degree}, nil
		}
	case expr.OpMul:
		switch {
		case l.Kind == Constant && r.Kind == Constant:
			return Term{Kind: Constant}, nil
		case l.Kind == Polynomial && r.Kind == Polynomial:
			return Term{Kind: Function}, nil
		case l.Kind == Polynomial:
			return Term{Kind: Polynomial, Degree: l.Degree}, nil
		default:
			return Term{Kind: Polynomial, Degree: r.Degree}, nil
		}
	case expr.OpDiv:
		switch {
		case l.Kind == Constant && r.Kind == Constant:
			return Term{Kind: Constant}, nil
		case l.Kind == Polynomial && r.Kind == Constant:
			return Term{Kind: Polynomial, Degree: l.Degree}, nil
		default:
			return Term{Kind: Function}, nil
		}
	case expr.OpPow:
		switch {
		case l.Kind == Constant && r.Kind == Constant:
			return Term{Kind: Constant}, nil
		case l.Kind == Polynomial && r.Kind == Constant:
			if n, ok := positiveInt(r.Node); ok && l.Degree == 1 && l.Node != nil && expr.IsSymbol(l.Node) {
				return Term{Kind: Polynomial, Degree: l.Degree * n}, nil
			}
			return Term{Kind: Function}, nil
		default:
			return Term{Kind: Function}, nil
		}
	}
	return Term{}, fmt.Errorf("%w: %s %s %s", ErrUnhandledNodeTypes, l.Kind, op, r.Kind)
}

func positiveInt(n *expr.Node) (int, bool) {
	if n == nil || n.Kind != expr.KindConstant || !n.Value.IsInt() {
		return 0, false
	}
	v := n.Value.Num()
	if v.Sign() <= 0 || !v.IsInt64() || v.Int64() > 1<<16 {
		return 0, false
	}
	return int(v.Int64()), true
}
