package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnolang/mathsteps/internal/expr"
)

// RuleSpec is a rewrite rule as written in a pool file.
type RuleSpec struct {
	ID   string `yaml:"id"`
	L    string `yaml:"l"`
	R    string `yaml:"r"`
	When string `yaml:"when,omitempty"`
}

// Rule is a compiled rewrite. Expression rules rewrite a subtree,
// equation rules rewrite both sides of an equation at once.
type Rule struct {
	ID       ChangeType
	Source   RuleSpec
	equation bool

	lhs, rhs     *expr.Node
	eqLHS, eqRHS expr.Equation
	items        []expr.Term
	chainOp      string
	guards       []guard
}

var ErrMalformedRule = errors.New("malformed rule")

// Compile parses the templates of spec.
func Compile(spec RuleSpec) (*Rule, error) {
	r, err := compile(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedRule, err)
	}
	return r, nil
}

func compile(spec RuleSpec) (*Rule, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("rule %q: missing id", spec.L)
	}
	guards, err := parseGuards(spec.When)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", spec.ID, err)
	}
	r := &Rule{ID: ChangeType(spec.ID), Source: spec, guards: guards}

	if expr.IsEquation(spec.L) != expr.IsEquation(spec.R) {
		return nil, fmt.Errorf("rule %s: both templates must be equations or expressions", spec.ID)
	}
	if expr.IsEquation(spec.L) {
		r.equation = true
		if r.eqLHS, err = parseTemplateEquation(spec.L); err != nil {
			return nil, fmt.Errorf("rule %s: %w", spec.ID, err)
		}
		if r.eqRHS, err = parseTemplateEquation(spec.R); err != nil {
			return nil, fmt.Errorf("rule %s: %w", spec.ID, err)
		}
		if err := checkHoles(spec.ID, []*expr.Node{r.eqLHS.Left, r.eqLHS.Right}, r.eqRHS.Left, r.eqRHS.Right); err != nil {
			return nil, err
		}
		return r, nil
	}

	if r.lhs, err = expr.ParseTemplate(spec.L); err != nil {
		return nil, fmt.Errorf("rule %s: %w", spec.ID, err)
	}
	if r.rhs, err = expr.ParseTemplate(spec.R); err != nil {
		return nil, fmt.Errorf("rule %s: %w", spec.ID, err)
	}
	if err := checkHoles(spec.ID, []*expr.Node{r.lhs}, r.rhs); err != nil {
		return nil, err
	}
	if r.chainOp = expr.ChainOp(r.lhs); r.chainOp != "" {
		r.items = expr.Flatten(r.lhs)
	}
	return r, nil
}

func parseTemplateEquation(s string) (expr.Equation, error) {
	l, r, err := expr.SplitEquation(s)
	if err != nil {
		return expr.Equation{}, err
	}
	left, err := expr.ParseTemplate(l)
	if err != nil {
		return expr.Equation{}, err
	}
	right, err := expr.ParseTemplate(r)
	if err != nil {
		return expr.Equation{}, err
	}
	return expr.Equation{Left: left, Right: right}, nil
}

// checkHoles verifies that every placeholder used by a replacement or a
// guard is bound by the pattern.
func checkHoles(id string, patterns []*expr.Node, replacements ...*expr.Node) error {
	bound := make(map[string]bool)
	for _, p := range patterns {
		expr.Walk(p, func(n *expr.Node) bool {
			if name, _, ok := isHole(n); ok {
				bound[name] = true
			}
			return true
		})
	}
	var missing []string
	for _, r := range replacements {
		expr.Walk(r, func(n *expr.Node) bool {
			if name, _, ok := isHole(n); ok && !bound[name] {
				missing = append(missing, name)
			}
			return true
		})
	}
	if len(missing) > 0 {
		return fmt.Errorf("rule %s: unbound placeholders %s", id, strings.Join(missing, ", "))
	}
	return nil
}

// IsEquation reports whether the rule rewrites whole equations.
func (r *Rule) IsEquation() bool {
	return r.equation
}

func (r *Rule) guardsHold(b Bindings) bool {
	for _, g := range r.guards {
		if !g.holds(b) {
			return false
		}
	}
	return true
}

// Rewrite is one result of applying a rule, with the bindings that
// produced it.
type Rewrite struct {
	Node     *expr.Node
	Bindings Bindings
}

// Apply rewrites n at its root and returns every distinct result. When the
// pattern is a sum or product and n is a chain of the same family, the
// pattern may match any subset of its operands; the remaining operands
// are kept around the rewritten part.
func (r *Rule) Apply(n *expr.Node) []Rewrite {
	if r.equation {
		return nil
	}
	var out []Rewrite
	if r.chainOp != "" && expr.ChainOp(n) == r.chainOp {
		terms := expr.Flatten(n)
		for _, m := range (matcher{}).matchSubset(r.items, terms, maxMatches) {
			if !r.guardsHold(m.bindings) {
				continue
			}
			repl, err := substitute(r.rhs, m.bindings)
			if err != nil {
				continue
			}
			out = appendResult(out, n, Rewrite{Node: splice(r.chainOp, terms, m.used, repl), Bindings: m.bindings})
		}
		return out
	}
	b, ok := match(r.lhs, n, Bindings{})
	if !ok || !r.guardsHold(b) {
		return nil
	}
	repl, err := substitute(r.rhs, b)
	if err != nil {
		return nil
	}
	return appendResult(out, n, Rewrite{Node: repl, Bindings: b})
}

func appendResult(out []Rewrite, from *expr.Node, rw Rewrite) []Rewrite {
	if expr.Equal(from, rw.Node) {
		return out
	}
	for _, prev := range out {
		if expr.Equal(prev.Node, rw.Node) {
			return out
		}
	}
	return append(out, rw)
}

// ApplyEquation rewrites both sides of e at once.
func (r *Rule) ApplyEquation(e expr.Equation) (expr.Equation, Bindings, bool) {
	return r.ApplyEquationFor(e, "")
}

// ApplyEquationFor is ApplyEquation solving for unknown: symbols other
// than the unknown bind to constant placeholders.
func (r *Rule) ApplyEquationFor(e expr.Equation, unknown string) (expr.Equation, Bindings, bool) {
	if !r.equation {
		return expr.Equation{}, nil, false
	}
	m := matcher{unknown: unknown}
	b, ok := m.match(r.eqLHS.Left, e.Left, Bindings{})
	if !ok {
		return expr.Equation{}, nil, false
	}
	if b, ok = m.match(r.eqLHS.Right, e.Right, b); !ok {
		return expr.Equation{}, nil, false
	}
	if !r.guardsHold(b) {
		return expr.Equation{}, nil, false
	}
	left, err := substitute(r.eqRHS.Left, b)
	if err != nil {
		return expr.Equation{}, nil, false
	}
	right, err := substitute(r.eqRHS.Right, b)
	if err != nil {
		return expr.Equation{}, nil, false
	}
	out := expr.Equation{Left: left, Right: right}
	if expr.Equal(out.Left, e.Left) && expr.Equal(out.Right, e.Right) {
		return expr.Equation{}, nil, false
	}
	return out, b, true
}

// substitute instantiates a template with bound placeholders and runs the
// builtins it calls.
func substitute(t *expr.Node, b Bindings) (*expr.Node, error) {
	if name, _, ok := isHole(t); ok {
		v, bound := b[name]
		if !bound {
			return nil, fmt.Errorf("%w: %s is unbound", ErrNotApplicable, name)
		}
		return v.Clone(), nil
	}
	args := make([]*expr.Node, len(t.Args))
	for i, a := range t.Args {
		v, err := substitute(a, b)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	if t.Kind == expr.KindFunction {
		if fn, ok := builtins[t.Name]; ok {
			v, err := fn(args)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrNotApplicable, t.Name, err)
			}
			return v, nil
		}
	}
	c := t.Clone()
	c.Args = args
	if len(args) == 0 {
		c.Args = nil
	}
	return c, nil
}
