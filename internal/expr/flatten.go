package expr

// Term is one operand of a flattened associative chain. Sub marks an
// operand that is subtracted from the chain.
type Term struct {
	Node *Node
	Sub  bool
}

// Value returns the operand with its sign applied.
func (t Term) Value() *Node {
	if t.Sub {
		return Neg(t.Node)
	}
	return t.Node
}

// ChainOp returns the associative family of n: "+" for sums and
// differences, "*" for products, "" otherwise.
func ChainOp(n *Node) string {
	n = unparen(n)
	switch {
	case n.IsOp(OpAdd), n.IsOp(OpSub):
		return OpAdd
	case n.IsOp(OpMul):
		return OpMul
	}
	return ""
}

// Flatten returns the operands of the associative chain rooted at n.
// Subtraction is represented as a Sub term. A node outside any chain
// flattens to itself.
func Flatten(n *Node) []Term {
	op := ChainOp(n)
	if op == "" {
		return []Term{{Node: unparen(n)}}
	}
	var terms []Term
	flattenInto(&terms, unparen(n), op)
	return terms
}

func flattenInto(terms *[]Term, n *Node, op string) {
	n = unparen(n)
	switch {
	case op == OpAdd && n.IsOp(OpAdd):
		flattenInto(terms, n.Args[0], op)
		flattenInto(terms, n.Args[1], op)
	case op == OpAdd && n.IsOp(OpSub):
		flattenInto(terms, n.Args[0], op)
		*terms = append(*terms, Term{Node: unparen(n.Args[1]), Sub: true})
	case op == OpMul && n.IsOp(OpMul):
		flattenInto(terms, n.Args[0], op)
		flattenInto(terms, n.Args[1], op)
	default:
		*terms = append(*terms, Term{Node: n})
	}
}

// Unflatten rebuilds a left-associated binary tree from chain operands.
func Unflatten(op string, terms []Term) *Node {
	if len(terms) == 0 {
		if op == OpMul {
			return Const(1)
		}
		return Const(0)
	}
	acc := terms[0].Value()
	for _, t := range terms[1:] {
		switch {
		case op == OpMul:
			acc = Mul(acc, t.Node)
		case t.Sub:
			acc = Sub(acc, t.Node)
		default:
			acc = Add(acc, t.Node)
		}
	}
	return acc
}

// AppendTerms appends n to a chain under construction. Operands of the
// same family are spliced in and a negated addend after the first
// position becomes a subtraction.
func AppendTerms(terms []Term, op string, n *Node) []Term {
	n = unparen(n)
	if ChainOp(n) == op {
		for _, t := range Flatten(n) {
			if len(terms) > 0 && op == OpAdd && !t.Sub && t.Node.Kind == KindUnaryMinus {
				t = Term{Node: t.Node.Args[0], Sub: true}
			}
			terms = append(terms, t)
		}
		return terms
	}
	if op == OpAdd && len(terms) > 0 && n.Kind == KindUnaryMinus {
		return append(terms, Term{Node: n.Args[0], Sub: true})
	}
	return append(terms, Term{Node: n})
}

// Renormalize rebuilds the chain at n as a left-associated tree so that
// nested operands of the same family are spliced into it.
func Renormalize(n *Node) *Node {
	op := ChainOp(n)
	if op == "" {
		return n
	}
	return Unflatten(op, Flatten(n))
}
