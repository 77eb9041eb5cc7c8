package solver

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"

	"github.com/gnolang/mathsteps/internal/equiv"
	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/rules"
	"github.com/gnolang/mathsteps/internal/search"
)

var ErrTooManySteps = errors.New("too many steps")

// DefaultMaxSteps bounds the iterations of one branch of a solution.
const DefaultMaxSteps = 20

const tolerance = 1e-9

// Solver rewrites equations until the unknown stands alone.
type Solver struct {
	searcher *search.Searcher
	maxSteps int
}

// New creates a solver. A non-positive maxSteps uses DefaultMaxSteps.
func New(searcher *search.Searcher, maxSteps int) *Solver {
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Solver{searcher: searcher, maxSteps: maxSteps}
}

// fork is one branch of a split equation.
type fork struct {
	change rules.ChangeType
	eq     expr.Equation
}

// move is the outcome of a strategy: a step to record, branches to solve
// independently, or both.
type move struct {
	step  *search.EquationStep
	forks []fork
	split bool
}

type run struct {
	solver  *Solver
	unknown string
	steps   []search.EquationStep
}

// Solve solves eq in place. On success eq holds the last equation of the
// main branch, every step taken and the solution set. When no rule moves
// the equation further eq is left unsolved, which is not an error. Steps
// taken before a failure are kept.
func (s *Solver) Solve(eq *Equation) error {
	if eq.Unknown == "" {
		eq.Unknown = inferUnknown(eq.Value())
	}
	original := eq.Value().Clone()
	r := &run{solver: s, unknown: eq.Unknown}
	final, solutions, err := r.solve(original.Clone(), "", nil)
	eq.Steps = r.steps
	if err != nil {
		return err
	}
	eq.Left, eq.Right = final.Left, final.Right
	if solutions == nil {
		eq.Solutions = nil
		return nil
	}
	eq.Solutions = filterSolutions(original, eq.Unknown, solutions)
	return nil
}

func (r *run) solve(cur expr.Equation, prefix string, entry *search.EquationStep) (expr.Equation, []*expr.Node, error) {
	history := []string{cur.String()}
	n := 0
	record := func(step search.EquationStep) {
		n++
		step.StepID = prefix + strconv.Itoa(n)
		r.steps = append(r.steps, step)
		cur = step.To
		history = append(history, cur.String())
	}
	if entry != nil {
		record(*entry)
	}

	for i := 0; ; i++ {
		if i >= r.solver.maxSteps {
			return cur, nil, fmt.Errorf("%w: stopped at %s", ErrTooManySteps, cur)
		}

		if forks := r.zeroProduct(cur); forks != nil {
			return r.split(cur, prefix+strconv.Itoa(n+1), forks)
		}
		if steps := r.solver.searcher.FindEquationSteps(cur, nil, history...); len(steps) > 0 {
			record(steps[0])
			continue
		}

		inLeft := expr.ContainsSymbol(cur.Left, r.unknown)
		inRight := expr.ContainsSymbol(cur.Right, r.unknown)
		if !inLeft && inRight {
			record(search.EquationStep{
				From:       cur.Clone(),
				To:         expr.Equation{Left: cur.Right.Clone(), Right: cur.Left.Clone()},
				ChangeType: rules.SwapSides,
				Side:       search.SideBoth,
			})
			continue
		}

		left, err := Classify(cur.Left, r.unknown)
		if err != nil {
			return cur, nil, fmt.Errorf("left side of %s: %w", cur, err)
		}
		right, err := Classify(cur.Right, r.unknown)
		if err != nil {
			return cur, nil, fmt.Errorf("right side of %s: %w", cur, err)
		}

		if left.Kind == Constant && right.Kind == Constant {
			return cur, []*expr.Node{expr.Bool(holds(cur))}, nil
		}
		if isUnknown(cur.Left, r.unknown) && right.Kind == Constant {
			return cur, []*expr.Node{cur.Right.Clone()}, nil
		}

		m := r.strategy(cur, left, right, history)
		if m.step == nil && !m.split {
			// stuck: a valid equation this solver cannot take further
			return cur, nil, nil
		}
		if m.step != nil {
			record(*m.step)
		}
		if m.split {
			return r.split(cur, prefix+strconv.Itoa(n+1), m.forks)
		}
	}
}

// split solves every branch and unions their solutions. Branch b of fork
// id gets step IDs "id.b.k".
func (r *run) split(cur expr.Equation, id string, forks []fork) (expr.Equation, []*expr.Node, error) {
	var solutions []*expr.Node
	for b, f := range forks {
		entry := &search.EquationStep{
			From:       cur.Clone(),
			To:         f.eq,
			ChangeType: f.change,
			Side:       search.SideBoth,
		}
		_, got, err := r.solve(f.eq.Clone(), id+"."+strconv.Itoa(b+1)+".", entry)
		if err != nil {
			return cur, nil, err
		}
		if got == nil {
			return cur, nil, nil
		}
		solutions = append(solutions, got...)
	}
	if solutions == nil {
		solutions = []*expr.Node{}
	}
	return cur, solutions, nil
}

// strategy picks the next move. A zero move means nothing applies.
func (r *run) strategy(cur expr.Equation, left, right Term, history []string) move {
	switch {
	case left.Kind == Polynomial && right.Kind == Constant:
		if left.Degree == 2 {
			if forks, ok := r.quadratic(cur); ok {
				return move{forks: forks, split: true}
			}
		}
		if left.Degree > 2 {
			if m, ok := r.factor(cur); ok {
				return m
			}
			if forks, ok := r.evenRoot(cur); ok {
				return move{forks: forks, split: true}
			}
		}
		return r.pools(cur, history, rules.PoolLinear, rules.PoolFunction)

	case left.Kind == Function && right.Kind == Constant:
		if forks, ok := r.evenRoot(cur); ok {
			return move{forks: forks, split: true}
		}
		return r.pools(cur, history, rules.PoolLinear, rules.PoolFunction)
	}

	if expr.IsFraction(cur.Left) && expr.IsFraction(cur.Right) {
		return r.pools(cur, history, rules.PoolCross, rules.PoolBalance)
	}
	return r.pools(cur, history, rules.PoolBalance)
}

// pools takes the first equation rule of the given pools that applies.
func (r *run) pools(cur expr.Equation, history []string, names ...string) move {
	for _, st := range r.solver.searcher.FindEquationStepsFor(cur, r.unknown, names, history...) {
		if st.Side == search.SideBoth {
			st := st
			return move{step: &st}
		}
	}
	return move{}
}

// zeroProduct splits "f * g = 0" into "f = 0" and "g = 0" when at least
// two factors contain the unknown.
func (r *run) zeroProduct(cur expr.Equation) []fork {
	if !expr.IsZero(cur.Right) || expr.ChainOp(cur.Left) != expr.OpMul {
		return nil
	}
	var forks []fork
	for _, t := range expr.Flatten(cur.Left) {
		if expr.ContainsSymbol(t.Node, r.unknown) {
			forks = append(forks, fork{
				change: rules.SplitZeroProduct,
				eq:     expr.Equation{Left: t.Node.Clone(), Right: expr.Const(0)},
			})
		}
	}
	if len(forks) < 2 {
		return nil
	}
	return forks
}

func coefficients(cur expr.Equation, x string) ([]*big.Rat, bool) {
	c, err := expr.Coefficients(expr.Sub(cur.Left, cur.Right), x)
	return c, err == nil
}

// quadratic applies the quadratic formula to a degree two polynomial.
func (r *run) quadratic(cur expr.Equation) ([]fork, bool) {
	c, ok := coefficients(cur, r.unknown)
	if !ok || len(c) != 3 {
		return nil, false
	}
	a, b, k := c[2], c[1], c[0]
	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, k)))
	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	negB := new(big.Rat).Neg(b)

	x := expr.Sym(r.unknown)
	branch := func(root *expr.Node) fork {
		return fork{change: rules.QuadraticFormula, eq: expr.Equation{Left: x.Clone(), Right: root}}
	}
	switch disc.Sign() {
	case -1:
		return []fork{}, true
	case 0:
		return []fork{branch(expr.Num(new(big.Rat).Quo(negB, twoA)))}, true
	}
	if s, err := expr.RatRoot(disc, 2); err == nil {
		lo := new(big.Rat).Quo(new(big.Rat).Sub(negB, s), twoA)
		hi := new(big.Rat).Quo(new(big.Rat).Add(negB, s), twoA)
		if lo.Cmp(hi) > 0 {
			lo, hi = hi, lo
		}
		return []fork{branch(expr.Num(lo)), branch(expr.Num(hi))}, true
	}
	return []fork{
		branch(quadraticRoot(negB, twoA, disc, expr.OpSub)),
		branch(quadraticRoot(negB, twoA, disc, expr.OpAdd)),
	}, true
}

// quadraticRoot builds negB/twoA op c*sqrt(m), with the square factors of
// disc pulled out of the root.
func quadraticRoot(negB, twoA, disc *big.Rat, op string) *expr.Node {
	k, m := squareFactor(disc)
	c := new(big.Rat).Quo(k, twoA)
	c.Abs(c)

	root := expr.Fn("sqrt", expr.Num(new(big.Rat).SetInt(m)))
	if c.Num().Cmp(big.NewInt(1)) != 0 {
		root = expr.Mul(expr.Num(new(big.Rat).SetInt(c.Num())), root)
	}
	if !c.IsInt() {
		root = expr.Div(root, expr.Num(new(big.Rat).SetInt(c.Denom())))
	}

	center := new(big.Rat).Quo(negB, twoA)
	switch {
	case center.Sign() != 0:
		return expr.Op(op, expr.Num(center), root)
	case op == expr.OpSub:
		return expr.Neg(root)
	}
	return root
}

// maxTrialFactor bounds the trial division in squareFactor.
const maxTrialFactor = 1 << 16

// squareFactor writes a positive r as k^2 * m with m a square free integer
// (as far as trial division finds), returning k and m.
func squareFactor(r *big.Rat) (*big.Rat, *big.Int) {
	// sqrt(p/q) = sqrt(p*q)/q
	n := new(big.Int).Mul(r.Num(), r.Denom())
	k := big.NewInt(1)
	f, sq := big.NewInt(2), new(big.Int)
	rem, quo := new(big.Int), new(big.Int)
	for i := 0; i < maxTrialFactor; i++ {
		sq.Mul(f, f)
		if sq.Cmp(n) > 0 {
			break
		}
		for {
			quo.QuoRem(n, sq, rem)
			if rem.Sign() != 0 {
				break
			}
			n.Set(quo)
			k.Mul(k, f)
		}
		f.Add(f, big.NewInt(1))
	}
	return new(big.Rat).SetFrac(k, r.Denom()), n
}

// factor pulls the unknown out of a polynomial without a constant term and
// splits the product.
func (r *run) factor(cur expr.Equation) (move, bool) {
	c, ok := coefficients(cur, r.unknown)
	if !ok || len(c) < 3 || c[0].Sign() != 0 {
		return move{}, false
	}
	x := expr.Sym(r.unknown)
	rest := expr.FromCoefficients(c[1:], r.unknown)
	to := expr.Equation{Left: expr.Mul(x, rest), Right: expr.Const(0)}
	step := &search.EquationStep{From: cur.Clone(), To: to, ChangeType: rules.FactorSymbol, Side: search.SideLeft}
	return move{
		step: step,
		forks: []fork{
			{change: rules.SplitZeroProduct, eq: expr.Equation{Left: x.Clone(), Right: expr.Const(0)}},
			{change: rules.SplitZeroProduct, eq: expr.Equation{Left: rest.Clone(), Right: expr.Const(0)}},
		},
		split: true,
	}, true
}

// evenRoot splits "f^n = c" for even n into f = -root and f = root.
func (r *run) evenRoot(cur expr.Equation) ([]fork, bool) {
	if !cur.Left.IsOp(expr.OpPow) || !expr.ContainsSymbol(cur.Left.Left(), r.unknown) {
		return nil, false
	}
	n, ok := positiveInt(cur.Left.Right())
	if !ok || n%2 != 0 {
		return nil, false
	}
	v := expr.EvalFloat(cur.Right, nil)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	base := cur.Left.Left()
	branch := func(root *expr.Node) fork {
		return fork{change: rules.TakeEvenRoot, eq: expr.Equation{Left: base.Clone(), Right: root}}
	}
	switch {
	case v < 0:
		return []fork{}, true
	case v == 0:
		return []fork{branch(expr.Const(0))}, true
	}
	root := expr.Fn("sqrt", cur.Right.Clone())
	if n != 2 {
		root = expr.Fn("nthRoot", cur.Right.Clone(), expr.Const(int64(n)))
	}
	return []fork{branch(expr.Neg(root)), branch(root.Clone())}, true
}

func isUnknown(n *expr.Node, unknown string) bool {
	n = expr.StripParens(n)
	return n.Kind == expr.KindSymbol && n.Name == unknown
}

// holds reports whether a constant equation is true.
func holds(e expr.Equation) bool {
	diff := expr.Sub(e.Left, e.Right)
	if v, err := expr.Eval(diff); err == nil {
		return v.Sign() == 0
	}
	f := expr.EvalFloat(diff, nil)
	return !math.IsNaN(f) && math.Abs(f) <= tolerance
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// parameterSamples are the values tried for symbols other than the unknown.
var parameterSamples = []float64{0.5, 1.7, -2.3, 3.1, -0.7}

func others(unknown string, nodes ...*expr.Node) []string {
	var out []string
	seen := map[string]bool{unknown: true}
	for _, n := range nodes {
		for _, name := range expr.Symbols(n) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// satisfies reports whether candidate c solves original. Parameters are
// sampled; c must then hold at every point where both sides are defined.
func satisfies(original expr.Equation, unknown string, c *expr.Node, params []string) bool {
	points := 1
	if len(params) > 0 {
		points = len(parameterSamples)
	}
	evaluated := 0
	for k := 0; k < points; k++ {
		env := make(map[string]float64, len(params)+1)
		for i, p := range params {
			env[p] = parameterSamples[(k+i)%len(parameterSamples)]
		}
		v := expr.EvalFloat(c, env)
		if !finite(v) {
			continue
		}
		env[unknown] = v
		l, r := expr.EvalFloat(original.Left, env), expr.EvalFloat(original.Right, env)
		if !finite(l) || !finite(r) {
			continue
		}
		evaluated++
		if math.Abs(l-r) > tolerance*math.Max(1, math.Max(math.Abs(l), math.Abs(r))) {
			return false
		}
	}
	return evaluated > 0
}

// filterSolutions keeps the real candidates that satisfy the original
// equation. Numeric solutions come first, sorted ascending without
// duplicates, followed by solutions in terms of other symbols. An
// identity in any branch makes the whole equation an identity.
func filterSolutions(original expr.Equation, unknown string, candidates []*expr.Node) []*expr.Node {
	type solution struct {
		node  *expr.Node
		value float64
	}
	var kept []solution
	var parametric []*expr.Node
	for _, c := range candidates {
		if c.Kind == expr.KindBool {
			if c.Bool {
				return []*expr.Node{expr.Bool(true)}
			}
			continue
		}
		params := others(unknown, c, original.Left, original.Right)
		if !satisfies(original, unknown, c, params) {
			continue
		}
		if len(others(unknown, c)) > 0 {
			duplicate := false
			for _, p := range parametric {
				if equiv.Same(p, c) {
					duplicate = true
					break
				}
			}
			if !duplicate {
				parametric = append(parametric, c)
			}
			continue
		}
		v := expr.EvalFloat(c, nil)
		duplicate := false
		for _, k := range kept {
			if math.Abs(k.value-v) <= tolerance*math.Max(1, math.Abs(v)) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, solution{node: c, value: v})
		}
	}
	if len(kept) == 0 && len(parametric) == 0 {
		return []*expr.Node{expr.Bool(false)}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].value < kept[j].value })
	out := make([]*expr.Node, 0, len(kept)+len(parametric))
	for _, k := range kept {
		out = append(out, k.node)
	}
	return append(out, parametric...)
}
