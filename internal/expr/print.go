package expr

import (
	"math/big"
	"strings"
)

// printing precedence levels
const (
	precAdd = iota + 1
	precMul
	precImplicit
	precUnary
	precPow
	precAtom
)

// String renders n as ASCII math. The output parses back into a tree
// that is the same as n up to sign placement.
func String(n *Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

func (n *Node) String() string {
	return String(n)
}

func precedence(n *Node) int {
	switch n.Kind {
	case KindConstant:
		if strings.Contains(RatString(n.Value), "/") {
			return precMul
		}
		return precAtom
	case KindUnaryMinus:
		arg := n.Args[0]
		if arg.IsOp(OpMul) || arg.IsOp(OpDiv) {
			return min(precUnary, precedence(arg))
		}
		return precUnary
	case KindOperator:
		switch n.Op {
		case OpAdd, OpSub:
			return precAdd
		case OpMul:
			if printsImplicit(n) {
				return precImplicit
			}
			return precMul
		case OpDiv:
			return precMul
		case OpPow:
			return precPow
		}
	}
	return precAtom
}

// printsImplicit reports whether a product is written without '*'.
func printsImplicit(n *Node) bool {
	l, r := unparen(n.Args[0]), unparen(n.Args[1])
	coef := l
	if coef.Kind == KindUnaryMinus {
		coef = unparen(coef.Args[0])
	}
	if coef.Kind != KindConstant || !coef.Value.IsInt() {
		return false
	}
	switch {
	case r.Kind == KindSymbol:
		return true
	case r.IsOp(OpPow) && unparen(r.Args[0]).Kind == KindSymbol:
		return true
	case n.Implicit && (r.Kind == KindFunction || r.IsOp(OpAdd) || r.IsOp(OpSub)):
		return true
	}
	return false
}

func writeWrapped(sb *strings.Builder, n *Node, wrap bool) {
	if wrap {
		sb.WriteByte('(')
		writeNode(sb, n)
		sb.WriteByte(')')
		return
	}
	writeNode(sb, n)
}

func writeNode(sb *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindConstant:
		sb.WriteString(RatString(n.Value))
	case KindSymbol:
		sb.WriteString(n.Name)
	case KindBool:
		if n.Bool {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindParen:
		writeWrapped(sb, n.Args[0], true)
	case KindFunction:
		sb.WriteString(n.Name)
		sb.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeNode(sb, a)
		}
		sb.WriteByte(')')
	case KindUnaryMinus:
		arg := unparen(n.Args[0])
		sb.WriteByte('-')
		switch {
		case arg.Kind == KindUnaryMinus:
			writeWrapped(sb, arg, true)
		case arg.IsOp(OpMul) || arg.IsOp(OpDiv):
			inner := String(arg)
			writeWrapped(sb, arg, strings.HasPrefix(inner, "-"))
		default:
			writeWrapped(sb, arg, precedence(arg) < precUnary)
		}
	case KindOperator:
		writeOperator(sb, n)
	}
}

func writeOperator(sb *strings.Builder, n *Node) {
	l, r := unparen(n.Args[0]), unparen(n.Args[1])
	switch n.Op {
	case OpAdd, OpSub:
		writeNode(sb, l)
		sb.WriteString(" " + n.Op + " ")
		writeWrapped(sb, r, precedence(r) <= precAdd)
	case OpMul:
		if printsImplicit(n) {
			writeNode(sb, l)
			writeWrapped(sb, r, r.IsOp(OpAdd) || r.IsOp(OpSub))
			return
		}
		writeWrapped(sb, l, precedence(l) < precMul)
		sb.WriteString(" * ")
		writeWrapped(sb, r, precedence(r) <= precMul)
	case OpDiv:
		writeWrapped(sb, l, precedence(l) < precMul)
		sb.WriteByte('/')
		writeWrapped(sb, r, precedence(r) <= precImplicit)
	case OpPow:
		writeWrapped(sb, l, precedence(l) <= precPow)
		sb.WriteByte('^')
		writeWrapped(sb, r, precedence(r) < precUnary)
	}
}

// RatString formats a rational as an integer, a terminating decimal or p/q.
func RatString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	if digits, ok := terminatingDigits(r.Denom()); ok {
		s := r.FloatString(digits)
		return strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return r.Num().String() + "/" + r.Denom().String()
}

// terminatingDigits reports how many decimal digits represent 1/d exactly.
func terminatingDigits(d *big.Int) (int, bool) {
	two, five := big.NewInt(2), big.NewInt(5)
	rest := new(big.Int).Set(d)
	twos, fives := 0, 0
	mod := new(big.Int)
	for {
		q, m := new(big.Int).QuoRem(rest, two, mod)
		if m.Sign() != 0 {
			break
		}
		rest, twos = q, twos+1
	}
	for {
		q, m := new(big.Int).QuoRem(rest, five, mod)
		if m.Sign() != 0 {
			break
		}
		rest, fives = q, fives+1
	}
	if rest.Cmp(big.NewInt(1)) != 0 {
		return 0, false
	}
	return max(twos, fives), true
}
