package rules

import (
	"github.com/gnolang/mathsteps/internal/expr"
)

// maxMatches bounds the number of subset matches tried per chain.
const maxMatches = 32

// Bindings maps placeholder names to the subtrees they matched.
type Bindings map[string]*expr.Node

func (b Bindings) with(name string, n *expr.Node) Bindings {
	out := make(Bindings, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	out[name] = n
	return out
}

// matcher matches templates against trees. With an unknown set, constant
// placeholders bind anything free of it and symbolic placeholders need it.
type matcher struct {
	unknown string
}

func match(p, n *expr.Node, b Bindings) (Bindings, bool) {
	return matcher{}.match(p, n, b)
}

// match matches template p against n. Sums and products are matched
// regardless of operand order; everything else matches positionally.
func (m matcher) match(p, n *expr.Node, b Bindings) (Bindings, bool) {
	if name, h, ok := isHole(p); ok {
		if !h.accepts(n, m.unknown) {
			return nil, false
		}
		if prev, bound := b[name]; bound {
			if !expr.Equal(prev, n) {
				return nil, false
			}
			return b, true
		}
		return b.with(name, n), true
	}

	switch p.Kind {
	case expr.KindConstant:
		return b, n.Kind == expr.KindConstant && p.Value.Cmp(n.Value) == 0
	case expr.KindSymbol:
		return b, n.Kind == expr.KindSymbol && p.Name == n.Name
	case expr.KindBool:
		return b, n.Kind == expr.KindBool && p.Bool == n.Bool
	case expr.KindUnaryMinus:
		if n.Kind != expr.KindUnaryMinus {
			return nil, false
		}
		return m.match(p.Args[0], n.Args[0], b)
	case expr.KindFunction:
		if n.Kind != expr.KindFunction || n.Name != p.Name || len(n.Args) != len(p.Args) {
			return nil, false
		}
		return m.matchArgs(p.Args, n.Args, b)
	case expr.KindOperator:
		if op := expr.ChainOp(p); op != "" {
			return m.matchExact(p, n, b)
		}
		if !n.IsOp(p.Op) {
			return nil, false
		}
		return m.matchArgs(p.Args, n.Args, b)
	}
	return nil, false
}

func (m matcher) matchArgs(ps, ns []*expr.Node, b Bindings) (Bindings, bool) {
	var ok bool
	for i := range ps {
		if b, ok = m.match(ps[i], ns[i], b); !ok {
			return nil, false
		}
	}
	return b, true
}

// matchTerm matches one chain item against one chain operand, moving the
// sign between them when only one side is subtracted.
func (m matcher) matchTerm(item, term expr.Term, b Bindings) (Bindings, bool) {
	switch {
	case item.Sub == term.Sub:
		return m.match(item.Node, term.Node, b)
	case item.Sub:
		if term.Node.Kind != expr.KindUnaryMinus {
			return nil, false
		}
		return m.match(item.Node, term.Node.Args[0], b)
	default:
		// an explicitly negated item only matches an added negative
		if item.Node.Kind == expr.KindUnaryMinus {
			return nil, false
		}
		return m.match(item.Node, expr.Neg(term.Node), b)
	}
}

func chainTerms(op string, n *expr.Node) []expr.Term {
	if expr.ChainOp(n) == op {
		return expr.Flatten(n)
	}
	return []expr.Term{{Node: n}}
}

// matchExact matches a chain template against the whole chain at n. The
// last unsigned fx or e placeholder of the template takes every operand
// left over by the other items.
func (m matcher) matchExact(p, n *expr.Node, b Bindings) (Bindings, bool) {
	op := expr.ChainOp(p)
	items := expr.Flatten(p)
	terms := chainTerms(op, n)

	absorber := -1
	for i := len(items) - 1; i >= 0; i-- {
		if absorbing(items[i]) {
			absorber = i
			break
		}
	}
	if absorber < 0 && len(items) != len(terms) {
		return nil, false
	}
	if len(terms) < len(items) {
		return nil, false
	}

	used := make([]bool, len(terms))
	var assign func(i int, b Bindings) (Bindings, bool)
	assign = func(i int, b Bindings) (Bindings, bool) {
		if i == len(items) {
			if absorber < 0 {
				return b, true
			}
			var rest []expr.Term
			for j, t := range terms {
				if !used[j] {
					rest = append(rest, t)
				}
			}
			return m.match(items[absorber].Node, expr.Unflatten(op, rest), b)
		}
		if i == absorber {
			return assign(i+1, b)
		}
		for j, t := range terms {
			if used[j] {
				continue
			}
			nb, ok := m.matchTerm(items[i], t, b)
			if !ok {
				continue
			}
			used[j] = true
			if res, ok := assign(i+1, nb); ok {
				return res, true
			}
			used[j] = false
		}
		return nil, false
	}
	return assign(0, b)
}

// subsetMatch is one way of matching every template item to a distinct
// operand of a chain.
type subsetMatch struct {
	bindings Bindings
	used     []int // operand index per template item
}

// matchSubset enumerates matches of the template items against any subset
// of the chain operands, trying operands in ascending order.
func (m matcher) matchSubset(items, terms []expr.Term, limit int) []subsetMatch {
	if len(items) > len(terms) {
		return nil
	}
	var out []subsetMatch
	used := make([]bool, len(terms))
	idx := make([]int, len(items))

	var assign func(i int, b Bindings)
	assign = func(i int, b Bindings) {
		if len(out) >= limit {
			return
		}
		if i == len(items) {
			out = append(out, subsetMatch{bindings: b, used: append([]int(nil), idx...)})
			return
		}
		for j, t := range terms {
			if used[j] {
				continue
			}
			nb, ok := m.matchTerm(items[i], t, b)
			if !ok {
				continue
			}
			used[j] = true
			idx[i] = j
			assign(i+1, nb)
			used[j] = false
		}
	}
	assign(0, Bindings{})
	return out
}

// splice replaces the matched operands of a chain with repl, placed at the
// position of the first of them.
func splice(op string, terms []expr.Term, used []int, repl *expr.Node) *expr.Node {
	at := len(terms)
	matched := make(map[int]bool, len(used))
	for _, i := range used {
		matched[i] = true
		if i < at {
			at = i
		}
	}
	var out []expr.Term
	for i, t := range terms {
		switch {
		case i == at:
			out = expr.AppendTerms(out, op, repl)
		case matched[i]:
		default:
			out = append(out, t)
		}
	}
	return expr.Unflatten(op, out)
}

// Match matches a template against candidate and returns every set of
// bindings it admits. A sum or product template may match a subset of
// the candidate's operands.
func Match(pattern, candidate *expr.Node) []Bindings {
	if op := expr.ChainOp(pattern); op != "" && expr.ChainOp(candidate) == op {
		var out []Bindings
		for _, sm := range (matcher{}).matchSubset(expr.Flatten(pattern), expr.Flatten(candidate), maxMatches) {
			out = append(out, sm.bindings)
		}
		return out
	}
	if b, ok := match(pattern, candidate, Bindings{}); ok {
		return []Bindings{b}
	}
	return nil
}
