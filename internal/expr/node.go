package expr

import (
	"math/big"
)

// Kind identifies the variant held by a Node.
type Kind int

const (
	KindConstant Kind = iota
	KindSymbol
	KindOperator
	KindUnaryMinus
	KindFunction
	KindParen
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "Constant"
	case KindSymbol:
		return "Symbol"
	case KindOperator:
		return "Operator"
	case KindUnaryMinus:
		return "UnaryMinus"
	case KindFunction:
		return "Function"
	case KindParen:
		return "Parenthesis"
	case KindBool:
		return "Boolean"
	default:
		return "Unknown"
	}
}

// Binary operators.
const (
	OpAdd = "+"
	OpSub = "-"
	OpMul = "*"
	OpDiv = "/"
	OpPow = "^"
)

// Node is a single expression tree node.
//
// Constants are always non-negative; a negative number is represented
// as UnaryMinus(Constant). Operator nodes carry exactly two arguments.
type Node struct {
	Kind     Kind
	Value    *big.Rat // Constant
	Name     string   // Symbol, Function
	Op       string   // Operator
	Args     []*Node
	Implicit bool // implicit multiplication, e.g. 2x
	Bool     bool
}

// Const returns a constant node for a non-negative integer.
func Const(v int64) *Node {
	return Num(new(big.Rat).SetInt64(v))
}

// Num returns a number node. Negative values are wrapped in a unary minus
// and non-integers become a quotient of two integer constants.
func Num(r *big.Rat) *Node {
	if r.Sign() < 0 {
		return Neg(Num(new(big.Rat).Neg(r)))
	}
	if !r.IsInt() {
		return Div(intConst(r.Num()), intConst(r.Denom()))
	}
	return &Node{Kind: KindConstant, Value: new(big.Rat).Set(r)}
}

func intConst(i *big.Int) *Node {
	return &Node{Kind: KindConstant, Value: new(big.Rat).SetInt(i)}
}

func Sym(name string) *Node {
	return &Node{Kind: KindSymbol, Name: name}
}

func Bool(v bool) *Node {
	return &Node{Kind: KindBool, Bool: v}
}

func Neg(arg *Node) *Node {
	return &Node{Kind: KindUnaryMinus, Args: []*Node{arg}}
}

func Paren(inner *Node) *Node {
	return &Node{Kind: KindParen, Args: []*Node{inner}}
}

func Fn(name string, args ...*Node) *Node {
	return &Node{Kind: KindFunction, Name: name, Args: args}
}

// Op builds a binary operator node.
func Op(op string, l, r *Node) *Node {
	return &Node{Kind: KindOperator, Op: op, Args: []*Node{l, r}}
}

func Add(l, r *Node) *Node { return Op(OpAdd, l, r) }
func Sub(l, r *Node) *Node { return Op(OpSub, l, r) }
func Div(l, r *Node) *Node { return Op(OpDiv, l, r) }
func Pow(l, r *Node) *Node { return Op(OpPow, l, r) }

func Mul(l, r *Node) *Node {
	return Op(OpMul, l, r)
}

// ImplicitMul builds a multiplication that was written without an operator.
func ImplicitMul(l, r *Node) *Node {
	n := Op(OpMul, l, r)
	n.Implicit = true
	return n
}

func (n *Node) IsOp(op string) bool {
	return n != nil && n.Kind == KindOperator && n.Op == op
}

func (n *Node) Left() *Node  { return n.Args[0] }
func (n *Node) Right() *Node { return n.Args[1] }

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Kind:     n.Kind,
		Name:     n.Name,
		Op:       n.Op,
		Implicit: n.Implicit,
		Bool:     n.Bool,
	}
	if n.Value != nil {
		c.Value = new(big.Rat).Set(n.Value)
	}
	if n.Args != nil {
		c.Args = make([]*Node, len(n.Args))
		for i, a := range n.Args {
			c.Args[i] = a.Clone()
		}
	}
	return c
}

// Equal reports whether a and b are structurally identical. Parentheses
// and the implicit multiplication flag are ignored.
func Equal(a, b *Node) bool {
	a, b = unparen(a), unparen(b)
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindConstant:
		return a.Value.Cmp(b.Value) == 0
	case KindSymbol:
		return a.Name == b.Name
	case KindBool:
		return a.Bool == b.Bool
	case KindOperator:
		if a.Op != b.Op {
			return false
		}
	case KindFunction:
		if a.Name != b.Name {
			return false
		}
	}
	if len(a.Args) != len(b.Args) {
		return false
	}
	for i := range a.Args {
		if !Equal(a.Args[i], b.Args[i]) {
			return false
		}
	}
	return true
}

func unparen(n *Node) *Node {
	for n != nil && n.Kind == KindParen {
		n = n.Args[0]
	}
	return n
}

// StripParens returns a copy of n without Parenthesis nodes.
func StripParens(n *Node) *Node {
	n = unparen(n)
	if n == nil {
		return nil
	}
	c := *n
	if n.Value != nil {
		c.Value = new(big.Rat).Set(n.Value)
	}
	if n.Args != nil {
		c.Args = make([]*Node, len(n.Args))
		for i, a := range n.Args {
			c.Args[i] = StripParens(a)
		}
	}
	return &c
}

// Walk calls fn for n and every descendant in pre-order. Returning false
// from fn skips the children of that node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, a := range n.Args {
		Walk(a, fn)
	}
}

// Symbols returns the distinct symbol names of n in order of appearance.
func Symbols(n *Node) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(n, func(m *Node) bool {
		if m.Kind == KindSymbol && !seen[m.Name] {
			seen[m.Name] = true
			names = append(names, m.Name)
		}
		return true
	})
	return names
}
