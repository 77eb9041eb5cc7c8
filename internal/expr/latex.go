package expr

import (
	"strings"
)

// LaTeX renders n as a LaTeX math fragment.
func LaTeX(n *Node) string {
	var sb strings.Builder
	writeLaTeX(&sb, n)
	return sb.String()
}

func writeLaTeXWrapped(sb *strings.Builder, n *Node, wrap bool) {
	if wrap {
		sb.WriteString(`\left(`)
		writeLaTeX(sb, n)
		sb.WriteString(`\right)`)
		return
	}
	writeLaTeX(sb, n)
}

func writeLaTeX(sb *strings.Builder, n *Node) {
	n = unparen(n)
	if n == nil {
		return
	}
	switch n.Kind {
	case KindConstant:
		if n.Value.IsInt() {
			sb.WriteString(n.Value.Num().String())
			return
		}
		sb.WriteString(`\frac{` + n.Value.Num().String() + `}{` + n.Value.Denom().String() + `}`)
	case KindSymbol:
		sb.WriteString(n.Name)
	case KindBool:
		if n.Bool {
			sb.WriteString(`\text{true}`)
		} else {
			sb.WriteString(`\text{false}`)
		}
	case KindFunction:
		writeLaTeXFunc(sb, n)
	case KindUnaryMinus:
		arg := unparen(n.Args[0])
		sb.WriteByte('-')
		writeLaTeXWrapped(sb, arg, arg.Kind == KindUnaryMinus || arg.IsOp(OpAdd) || arg.IsOp(OpSub))
	case KindOperator:
		l, r := unparen(n.Args[0]), unparen(n.Args[1])
		switch n.Op {
		case OpAdd, OpSub:
			writeLaTeX(sb, l)
			sb.WriteString(" " + n.Op + " ")
			writeLaTeXWrapped(sb, r, r.IsOp(OpAdd) || r.IsOp(OpSub))
		case OpMul:
			writeLaTeXWrapped(sb, l, l.IsOp(OpAdd) || l.IsOp(OpSub))
			if printsImplicit(n) {
				writeLaTeXWrapped(sb, r, r.IsOp(OpAdd) || r.IsOp(OpSub))
				return
			}
			sb.WriteString(` \cdot `)
			writeLaTeXWrapped(sb, r, precedence(r) <= precAdd || r.Kind == KindUnaryMinus)
		case OpDiv:
			sb.WriteString(`\frac{`)
			writeLaTeX(sb, l)
			sb.WriteString(`}{`)
			writeLaTeX(sb, r)
			sb.WriteString(`}`)
		case OpPow:
			writeLaTeXWrapped(sb, l, precedence(l) <= precPow || l.IsOp(OpDiv))
			sb.WriteString(`^{`)
			writeLaTeX(sb, r)
			sb.WriteString(`}`)
		}
	}
}

func writeLaTeXFunc(sb *strings.Builder, n *Node) {
	switch {
	case n.Name == "sqrt" && len(n.Args) == 1:
		sb.WriteString(`\sqrt{`)
		writeLaTeX(sb, n.Args[0])
		sb.WriteString(`}`)
	case n.Name == "nthRoot" && len(n.Args) == 2:
		sb.WriteString(`\sqrt[`)
		writeLaTeX(sb, n.Args[1])
		sb.WriteString(`]{`)
		writeLaTeX(sb, n.Args[0])
		sb.WriteString(`}`)
	case n.Name == "abs" && len(n.Args) == 1:
		sb.WriteString(`\left|`)
		writeLaTeX(sb, n.Args[0])
		sb.WriteString(`\right|`)
	default:
		sb.WriteString(`\mathrm{` + n.Name + `}\left(`)
		for i, a := range n.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeLaTeX(sb, a)
		}
		sb.WriteString(`\right)`)
	}
}

// EquationLaTeX renders both sides of an equation.
func EquationLaTeX(e Equation) string {
	return LaTeX(e.Left) + " = " + LaTeX(e.Right)
}
