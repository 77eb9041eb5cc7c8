package expr

import (
	"sort"
	"strings"
)

// CanonicalKey returns a string that is identical for trees that differ only
// in parentheses, operand order of sums and products, the spelling of
// subtraction and the placement of signs in products and quotients.
func CanonicalKey(n *Node) string {
	return signed(canon(n))
}

func signed(key string, neg bool) string {
	if neg {
		return "-" + key
	}
	return key
}

func canon(n *Node) (string, bool) {
	n = unparen(n)
	switch n.Kind {
	case KindConstant:
		return "c:" + n.Value.RatString(), false
	case KindSymbol:
		return "s:" + n.Name, false
	case KindBool:
		if n.Bool {
			return "b:true", false
		}
		return "b:false", false
	case KindUnaryMinus:
		key, neg := canon(n.Args[0])
		if key == "c:0" {
			return key, false
		}
		return key, !neg
	case KindFunction:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = CanonicalKey(a)
		}
		return "f:" + n.Name + "(" + strings.Join(args, ",") + ")", false
	case KindOperator:
		switch n.Op {
		case OpAdd, OpSub:
			terms := Flatten(n)
			items := make([]string, len(terms))
			for i, t := range terms {
				items[i] = CanonicalKey(t.Value())
			}
			sort.Strings(items)
			return "(+ " + strings.Join(items, " ") + ")", false
		case OpMul:
			terms := Flatten(n)
			items := make([]string, len(terms))
			neg := false
			for i, t := range terms {
				key, tneg := canon(t.Node)
				items[i] = key
				neg = neg != tneg
			}
			sort.Strings(items)
			return "(* " + strings.Join(items, " ") + ")", neg
		case OpDiv:
			lk, ln := canon(n.Args[0])
			rk, rn := canon(n.Args[1])
			return "(/ " + lk + " " + rk + ")", ln != rn
		case OpPow:
			return "(^ " + CanonicalKey(n.Args[0]) + " " + CanonicalKey(n.Args[1]) + ")", false
		}
	}
	return "?", false
}
