package expr

import (
	"math/big"
	"sync"
)

// IsNumber reports whether n is a numeric literal, possibly negated.
func IsNumber(n *Node) bool {
	n = unparen(n)
	if n.Kind == KindUnaryMinus {
		n = unparen(n.Args[0])
	}
	return n.Kind == KindConstant
}

// IsConstant reports whether n contains no symbols.
func IsConstant(n *Node) bool {
	constant := true
	Walk(n, func(m *Node) bool {
		if m.Kind == KindSymbol || m.Kind == KindBool {
			constant = false
		}
		return constant
	})
	return constant
}

// ContainsSymbol reports whether n mentions a symbol. An empty name
// matches any symbol.
func ContainsSymbol(n *Node, name string) bool {
	found := false
	Walk(n, func(m *Node) bool {
		if m.Kind == KindSymbol && (name == "" || m.Name == name) {
			found = true
		}
		return !found
	})
	return found
}

func IsSymbol(n *Node) bool {
	return unparen(n).Kind == KindSymbol
}

// IsFraction reports whether n is a quotient, possibly negated.
func IsFraction(n *Node) bool {
	n = unparen(n)
	if n.Kind == KindUnaryMinus {
		n = unparen(n.Args[0])
	}
	return n.IsOp(OpDiv)
}

// IsPolynomialTerm reports whether n has the shape c, x, x^k, c*x or c*x^k
// with a numeric coefficient c and a positive integer k.
func IsPolynomialTerm(n *Node) bool {
	n = unparen(n)
	if n.Kind == KindUnaryMinus {
		return IsPolynomialTerm(n.Args[0])
	}
	if n.IsOp(OpMul) && IsNumber(n.Args[0]) {
		n = unparen(n.Args[1])
	}
	switch {
	case n.Kind == KindSymbol:
		return true
	case n.IsOp(OpPow):
		if !IsSymbol(n.Args[0]) {
			return false
		}
		v, err := Eval(n.Args[1])
		return err == nil && v.IsInt() && v.Sign() > 0
	}
	return false
}

func sign(n *Node) (int, bool) {
	if !IsConstant(n) {
		return 0, false
	}
	v, err := Eval(n)
	if err != nil {
		return 0, false
	}
	return v.Sign(), true
}

// IsZero reports whether n is a constant equal to zero.
func IsZero(n *Node) bool {
	s, ok := sign(n)
	return ok && s == 0
}

func IsOne(n *Node) bool {
	if !IsConstant(n) {
		return false
	}
	v, err := Eval(n)
	return err == nil && v.Cmp(big.NewRat(1, 1)) == 0
}

func IsNegative(n *Node) bool {
	s, ok := sign(n)
	return ok && s < 0
}

func IsPositive(n *Node) bool {
	s, ok := sign(n)
	return ok && s > 0
}

type memoKey struct {
	node *Node
	name string
}

// SymbolMemo caches ContainsSymbol per node and symbol name. Nodes must not
// be mutated after they have been looked up.
type SymbolMemo struct {
	mu      sync.Mutex
	entries map[memoKey]bool
}

func NewSymbolMemo() *SymbolMemo {
	return &SymbolMemo{entries: make(map[memoKey]bool)}
}

func (m *SymbolMemo) Contains(n *Node, name string) bool {
	key := memoKey{node: n, name: name}
	m.mu.Lock()
	v, ok := m.entries[key]
	m.mu.Unlock()
	if ok {
		return v
	}
	v = ContainsSymbol(n, name)
	m.mu.Lock()
	m.entries[key] = v
	m.mu.Unlock()
	return v
}

func (m *SymbolMemo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
