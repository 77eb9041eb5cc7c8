package search

import (
	"errors"

	"github.com/gnolang/mathsteps/internal/equiv"
	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/rules"
)

var ErrDepthExceeded = errors.New("simplification did not settle")

// NumberOp is a number moved by a step together with the operator that
// moved it, e.g. the 3 removed from "x + 3" or added to both sides.
type NumberOp struct {
	Op     string
	Number *expr.Node
}

// Step is one rewrite of an expression.
type Step struct {
	From                 *expr.Node
	To                   *expr.Node
	ChangeType           rules.ChangeType
	IsMistake            bool
	AvailableChangeTypes []rules.ChangeType
	AddedNumOp           *NumberOp
	RemovedNumOp         *NumberOp
}

// Side tells which part of an equation a step rewrote.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
	SideBoth
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideBoth:
		return "both"
	default:
		return "none"
	}
}

// Context narrows a search. When OtherSide is set the searched
// expression is the Side of an equation whose other side is OtherSide,
// and History holds equations; otherwise History holds expressions.
// History entries are printed forms.
type Context struct {
	OtherSide *expr.Node
	Side      Side
	History   []string
}

func (c Context) seen(to *expr.Node) bool {
	if len(c.History) == 0 {
		return false
	}
	key := expr.String(to)
	if c.OtherSide != nil {
		eq := expr.Equation{Left: to, Right: c.OtherSide}
		if c.Side == SideRight {
			eq = expr.Equation{Left: c.OtherSide, Right: to}
		}
		key = eq.String()
	}
	for _, h := range c.History {
		if h == key {
			return true
		}
	}
	return false
}

// Searcher enumerates next steps using a set of rule pools.
type Searcher struct {
	rules *rules.Set
}

// New creates a searcher over the given rule set.
func New(set *rules.Set) *Searcher {
	return &Searcher{rules: set}
}

// Rules returns the rule set the searcher uses.
func (s *Searcher) Rules() *rules.Set {
	return s.rules
}

// position is a subtree of the flattened view of an expression: a chain
// root or one of its operands, never an inner node of a chain.
type position struct {
	path  []int
	chain []int // enclosing chain root, nil when not a chain operand
}

func positions(root *expr.Node) []position {
	var out []position
	var walk func(n *expr.Node, path, chain []int, inner bool)
	walk = func(n *expr.Node, path, chain []int, inner bool) {
		if !inner {
			out = append(out, position{path: path, chain: chain})
		}
		op := expr.ChainOp(n)
		self := path
		if inner {
			self = chain
		}
		for i, a := range n.Args {
			childPath := append(append([]int(nil), path...), i)
			if op == "" {
				walk(a, childPath, nil, false)
				continue
			}
			childInner := expr.ChainOp(a) == op && (!n.IsOp(expr.OpSub) || i == 0)
			walk(a, childPath, self, childInner)
		}
	}
	walk(root, nil, nil, false)
	return out
}

func nodeAt(n *expr.Node, path []int) *expr.Node {
	for _, i := range path {
		n = n.Args[i]
	}
	return n
}

// replaceAt returns a copy of n with the subtree at path replaced. Nodes
// off the path are shared.
func replaceAt(n *expr.Node, path []int, repl *expr.Node) *expr.Node {
	if len(path) == 0 {
		return repl
	}
	c := *n
	c.Args = append([]*expr.Node(nil), n.Args...)
	c.Args[path[0]] = replaceAt(n.Args[path[0]], path[1:], repl)
	return &c
}

func rewriteAt(root *expr.Node, pos position, repl *expr.Node) *expr.Node {
	out := replaceAt(root, pos.path, repl)
	if pos.chain != nil {
		op := expr.ChainOp(nodeAt(out, pos.chain))
		if expr.ChainOp(repl) == op {
			out = replaceAt(out, pos.chain, expr.Renormalize(nodeAt(out, pos.chain)))
		}
	}
	return out.Clone()
}

var arithmeticOps = map[rules.ChangeType]string{
	rules.SimplifyArithmeticAdd: expr.OpAdd,
	rules.SimplifyArithmeticSub: expr.OpSub,
	rules.SimplifyArithmeticMul: expr.OpMul,
	rules.SimplifyArithmeticDiv: expr.OpDiv,
}

func removedNumOp(id rules.ChangeType, b rules.Bindings) *NumberOp {
	op, ok := arithmeticOps[id]
	if !ok || id.Root() != id {
		return nil
	}
	n, ok := b["n2"]
	if !ok {
		return nil
	}
	return &NumberOp{Op: op, Number: n.Clone()}
}

// FindAllNextStepOptions lists every rewrite of n by the simplify pool,
// ordered by position in pre-order and then by rule order. Results that
// are the same up to reordering are reported once.
func (s *Searcher) FindAllNextStepOptions(n *expr.Node, ctx Context) []Step {
	return s.findSteps(n, ctx, s.rules.Pool(rules.PoolSimplify))
}

func (s *Searcher) findSteps(n *expr.Node, ctx Context, pool *rules.Pool) []Step {
	var steps []Step
	for _, pos := range positions(n) {
		sub := nodeAt(n, pos.path)
		for _, r := range pool.Rules {
			for _, rw := range r.Apply(sub) {
				to := rewriteAt(n, pos, rw.Node)
				if expr.Equal(to, n) || ctx.seen(to) || containsSame(steps, to) {
					continue
				}
				steps = append(steps, Step{
					From:         n.Clone(),
					To:           to,
					ChangeType:   r.ID,
					RemovedNumOp: removedNumOp(r.ID, rw.Bindings),
				})
			}
		}
	}
	available := changeTypes(steps)
	for i := range steps {
		steps[i].AvailableChangeTypes = available
	}
	return steps
}

func containsSame(steps []Step, to *expr.Node) bool {
	for _, s := range steps {
		if equiv.Same(s.To, to) {
			return true
		}
	}
	return false
}

func changeTypes(steps []Step) []rules.ChangeType {
	var out []rules.ChangeType
	seen := make(map[rules.ChangeType]bool)
	for _, s := range steps {
		if !seen[s.ChangeType] {
			seen[s.ChangeType] = true
			out = append(out, s.ChangeType)
		}
	}
	return out
}

// Simplify applies the first available step until none is left and
// returns the final expression with the steps taken.
func (s *Searcher) Simplify(n *expr.Node, maxDepth int) (*expr.Node, []Step, error) {
	var taken []Step
	cur := n.Clone()
	history := []string{expr.String(cur)}
	for depth := 0; ; depth++ {
		steps := s.FindAllNextStepOptions(cur, Context{History: history})
		if len(steps) == 0 {
			return cur, taken, nil
		}
		if depth >= maxDepth {
			return cur, taken, ErrDepthExceeded
		}
		taken = append(taken, steps[0])
		cur = steps[0].To
		history = append(history, expr.String(cur))
	}
}
