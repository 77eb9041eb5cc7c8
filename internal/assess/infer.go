package assess

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/gnolang/mathsteps/internal/equiv"
	"github.com/gnolang/mathsteps/internal/expr"
	"github.com/gnolang/mathsteps/internal/rules"
)

type mistake struct {
	change           rules.ChangeType
	attempted        rules.ChangeType
	attemptedToGetTo string
}

var (
	opNames   = map[string]string{"+": "ADD", "-": "SUBTRACT", "*": "MULTIPLY", "/": "DIVIDE", "^": "POWER"}
	pastNames = map[string]string{"+": "ADDED", "-": "SUBTRACTED", "*": "MULTIPLIED", "/": "DIVIDED"}
	opOrder   = []string{"+", "-", "*", "/"}
)

var attemptedTypes = map[string]rules.ChangeType{
	"+": rules.SimplifyArithmeticAdd,
	"-": rules.SimplifyArithmeticSub,
	"*": rules.SimplifyArithmeticMul,
	"/": rules.SimplifyArithmeticDiv,
	"^": rules.SimplifyArithmeticPow,
}

func precedence(op string) int {
	switch op {
	case "+", "-":
		return 1
	case "*", "/":
		return 2
	case "^":
		return 3
	}
	return 0
}

func pemdas(first, second string) rules.ChangeType {
	return rules.ChangeType("PEMDAS__" + opNames[first] + "_BEFORE_" + opNames[second])
}

// inferMistake guesses what went wrong between two expressions.
func inferMistake(from, to string) mistake {
	if m, ok := inferFromTokens(from, to); ok {
		return m
	}
	if m, ok := inferPemdas(from, to); ok {
		return m
	}
	return mistake{change: rules.Unknown}
}

// item is a token with a unary minus folded into the number after it.
type item struct {
	text  string
	op    string
	value *big.Rat
}

func (i item) isTerm() bool {
	return i.op == ""
}

func items(input string) ([]item, bool) {
	tokens, err := expr.Tokenize(input)
	if err != nil {
		return nil, false
	}
	var out []item
	for k := 0; k < len(tokens); k++ {
		tok := tokens[k]
		unary := tok.Type == expr.TokenOperator && tok.Value == "-" &&
			(k == 0 || tokens[k-1].Type != expr.TokenNumber && tokens[k-1].Type != expr.TokenIdent && tokens[k-1].Type != expr.TokenRParen)
		if unary && k+1 < len(tokens) && tokens[k+1].Type == expr.TokenNumber {
			v, ok := new(big.Rat).SetString(tokens[k+1].Value)
			if !ok {
				return nil, false
			}
			out = append(out, item{text: "-" + tokens[k+1].Value, value: v.Neg(v)})
			k++
			continue
		}
		switch tok.Type {
		case expr.TokenNumber:
			v, ok := new(big.Rat).SetString(tok.Value)
			if !ok {
				return nil, false
			}
			out = append(out, item{text: tok.Value, value: v})
		case expr.TokenOperator:
			out = append(out, item{text: tok.Value, op: tok.Value})
		default:
			out = append(out, item{text: tok.Value})
		}
	}
	return out, true
}

func apply(op string, a, b *big.Rat) (*big.Rat, bool) {
	switch op {
	case "+":
		return new(big.Rat).Add(a, b), true
	case "-":
		return new(big.Rat).Sub(a, b), true
	case "*":
		return new(big.Rat).Mul(a, b), true
	case "/":
		if b.Sign() == 0 {
			return nil, false
		}
		return new(big.Rat).Quo(a, b), true
	case "^":
		v, err := expr.Eval(expr.Pow(expr.Num(a), expr.Num(b)))
		return v, err == nil
	}
	return nil, false
}

func same(op string, a, b, v *big.Rat) bool {
	r, ok := apply(op, a, b)
	return ok && r.Cmp(v) == 0
}

func flip(op string) string {
	switch op {
	case "+":
		return "-"
	case "-":
		return "+"
	case "*":
		return "/"
	case "/":
		return "*"
	}
	return op
}

// inferFromTokens handles steps that replaced one "a op b" by a number,
// leaving the rest of the text alone.
func inferFromTokens(from, to string) (mistake, bool) {
	f, ok1 := items(from)
	t, ok2 := items(to)
	if !ok1 || !ok2 || len(t) == 0 {
		return mistake{}, false
	}
	p := 0
	for p < len(f) && p < len(t)-1 && f[p].text == t[p].text {
		p++
	}
	s := 0
	for s < len(f)-p && s < len(t)-p-1 && f[len(f)-1-s].text == t[len(t)-1-s].text {
		s++
	}
	mid, got := f[p:len(f)-s], t[p:len(t)-s]
	if len(mid) != 3 || len(got) != 1 {
		return mistake{}, false
	}
	a, op, b, v := mid[0], mid[1].op, mid[2], got[0]
	if !a.isTerm() || !b.isTerm() || !v.isTerm() || op == "" || a.value == nil || b.value == nil || v.value == nil {
		return mistake{}, false
	}
	var before, after string
	if p > 0 {
		before = f[p-1].op
	}
	if s > 0 {
		after = f[len(f)-s].op
	}

	// a leading minus or slash reverses the operation that should happen
	eff := op
	leftToRight := rules.ChangeType("")
	switch {
	case before == "-" && (op == "+" || op == "-"):
		eff, leftToRight = flip(op), rules.PemdasSubtractLeftToRight
	case before == "/" && (op == "*" || op == "/"):
		eff, leftToRight = flip(op), rules.PemdasDivideLeftToRight
	}
	should, ok := apply(eff, a.value, b.value)
	if !ok {
		return mistake{}, false
	}
	m := mistake{attempted: attemptedTypes[eff], attemptedToGetTo: expr.String(expr.Num(should))}

	switch {
	case precedence(after) > precedence(op):
		m.change = pemdas(op, after)
	case precedence(before) > precedence(op):
		m.change = pemdas(op, before)
	case leftToRight != "" && same(op, a.value, b.value, v.value):
		m.change = leftToRight
	case eff == "-" && b.value.Sign() < 0 && same("+", a.value, b.value, v.value):
		m.change = rules.SubtractedOneTooMany
	default:
		m.change = rules.ChangeType(opNames[eff] + "_ARITHMETIC_ERROR")
		for _, other := range opOrder {
			if other != eff && same(other, a.value, b.value, v.value) {
				m.change = rules.ChangeType(pastNames[other] + "_INSTEAD_OF_" + pastNames[eff])
				break
			}
		}
	}
	return m, true
}

const number = `(\d+(?:\.\d+)?)`

// pemdasPattern finds "a op1 b op2 c" evaluated in the wrong order.
type pemdasPattern struct {
	re *regexp.Regexp
	// leftFirst groups (a op1 b) op2 c, otherwise a op1 (b op2 c)
	leftFirst bool
	change    func(op1, op2 string) rules.ChangeType
}

var pemdasPatterns = []pemdasPattern{
	{
		re:        regexp.MustCompile(number + `([+\-])` + number + `([*/])` + number),
		leftFirst: true,
		change:    pemdas,
	},
	{
		re:        regexp.MustCompile(number + `([*/])` + number + `([+\-])` + number),
		leftFirst: false,
		change:    func(op1, op2 string) rules.ChangeType { return pemdas(op2, op1) },
	},
	{
		re:        regexp.MustCompile(number + `(/)` + number + `(\*)` + number),
		leftFirst: false,
		change:    func(string, string) rules.ChangeType { return rules.PemdasDivideLeftToRight },
	},
	{
		re:        regexp.MustCompile(number + `(-)` + number + `([+\-])` + number),
		leftFirst: false,
		change:    func(string, string) rules.ChangeType { return rules.PemdasSubtractLeftToRight },
	},
	{
		re:        regexp.MustCompile(number + `([*/])` + number + `(\^)` + number),
		leftFirst: true,
		change:    pemdas,
	},
}

// inferPemdas regroups every "a op1 b op2 c" of from and reports the
// first regrouping that evaluates to to.
func inferPemdas(from, to string) (mistake, bool) {
	target, err := expr.Parse(to)
	if err != nil {
		return mistake{}, false
	}
	compact := strings.Join(strings.Fields(from), "")
	for _, p := range pemdasPatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(compact, -1) {
			g := func(i int) string { return compact[loc[2*i]:loc[2*i+1]] }
			a, op1, b, op2, c := g(1), g(2), g(3), g(4), g(5)
			grouped, first := "("+a+op1+b+")"+op2+c, op1
			if !p.leftFirst {
				grouped, first = a+op1+"("+b+op2+c+")", op2
			}
			candidate, err := expr.Parse(compact[:loc[0]] + grouped + compact[loc[1]:])
			if err != nil || !equiv.ExpressionsEquivalent(candidate, target) {
				continue
			}
			m := mistake{change: p.change(op1, op2), attempted: attemptedTypes[first]}
			x, y := a, b
			if !p.leftFirst {
				x, y = b, c
			}
			if sub, err := expr.Parse(x + first + y); err == nil {
				if v, err := expr.Eval(sub); err == nil {
					m.attemptedToGetTo = expr.String(expr.Num(v))
				}
			}
			return m, true
		}
	}
	return mistake{}, false
}
