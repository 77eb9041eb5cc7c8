package expr

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrInvalidEquation is returned when equation text does not contain
// exactly one comparator.
var ErrInvalidEquation = errors.New("invalid equation")

// knownFunctions may be called in regular input. Any other identifier
// followed by '(' is an implicit multiplication.
var knownFunctions = map[string]bool{
	"sqrt":    true,
	"nthRoot": true,
	"abs":     true,
	"sin":     true,
	"cos":     true,
	"tan":     true,
	"log":     true,
	"ln":      true,
	"exp":     true,
}

// Equation is a parsed pair of expressions joined by '='.
type Equation struct {
	Left  *Node
	Right *Node
}

func (e Equation) Clone() Equation {
	return Equation{Left: e.Left.Clone(), Right: e.Right.Clone()}
}

func (e Equation) String() string {
	return String(e.Left) + " = " + String(e.Right)
}

type parser struct {
	tokens   []Token
	pos      int
	template bool
}

// Parse parses an expression and removes parentheses nodes.
func Parse(input string) (*Node, error) {
	n, err := ParseRaw(input)
	if err != nil {
		return nil, err
	}
	return StripParens(n), nil
}

// ParseRaw parses an expression keeping Parenthesis nodes.
func ParseRaw(input string) (*Node, error) {
	return parse(input, false)
}

// ParseTemplate parses a rule template. Every function name is accepted.
func ParseTemplate(input string) (*Node, error) {
	n, err := parse(input, true)
	if err != nil {
		return nil, err
	}
	return StripParens(n), nil
}

func parse(input string, template bool) (*Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	p := &parser{tokens: tokens, template: template}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected token %q", tok.Value)}
	}
	return n, nil
}

// SplitEquation splits equation text into its two sides.
func SplitEquation(input string) (string, string, error) {
	parts := strings.Split(input, "=")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: expected one '=' in %q", ErrInvalidEquation, input)
	}
	if strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("%w: empty side in %q", ErrInvalidEquation, input)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// ParseEquation parses "lhs = rhs".
func ParseEquation(input string) (Equation, error) {
	l, r, err := SplitEquation(input)
	if err != nil {
		return Equation{}, err
	}
	left, err := Parse(l)
	if err != nil {
		return Equation{}, fmt.Errorf("left side: %w", err)
	}
	right, err := Parse(r)
	if err != nil {
		return Equation{}, fmt.Errorf("right side: %w", err)
	}
	return Equation{Left: left, Right: right}, nil
}

// IsEquation reports whether the text contains a comparator.
func IsEquation(input string) bool {
	return strings.Contains(input, "=")
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF, Pos: p.end()}
	}
	return p.tokens[p.pos]
}

func (p *parser) end() int {
	if len(p.tokens) == 0 {
		return 0
	}
	last := p.tokens[len(p.tokens)-1]
	return last.Pos + len(last.Value)
}

func (p *parser) next() Token {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *parser) isOp(ops ...string) bool {
	tok := p.peek()
	if tok.Type != TokenOperator {
		return false
	}
	for _, op := range ops {
		if tok.Value == op {
			return true
		}
	}
	return false
}

// expr := term (('+' | '-') term)*
func (p *parser) parseExpr() (*Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp(OpAdd, OpSub) {
		op := p.next().Value
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = Op(op, left, right)
	}
	return left, nil
}

// term := implicit (('*' | '/') implicit)*
func (p *parser) parseTerm() (*Node, error) {
	left, err := p.parseImplicit()
	if err != nil {
		return nil, err
	}
	for p.isOp(OpMul, OpDiv) {
		op := p.next().Value
		right, err := p.parseImplicit()
		if err != nil {
			return nil, err
		}
		left = Op(op, left, right)
	}
	return left, nil
}

// implicit := unary power*
//
// Implicit multiplication binds tighter than '*' and '/', so 5x * 3x
// parses as (5x) * (3x).
func (p *parser) parseImplicit() (*Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Type != TokenIdent && tok.Type != TokenLParen {
			return left, nil
		}
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		left = ImplicitMul(left, right)
	}
}

// unary := '-' unary | '+' unary | power
func (p *parser) parseUnary() (*Node, error) {
	if p.isOp(OpSub) {
		p.next()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(arg), nil
	}
	if p.isOp(OpAdd) {
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

// power := primary ('^' unary)?
func (p *parser) parsePower() (*Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.isOp(OpPow) {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (*Node, error) {
	tok := p.next()
	switch tok.Type {
	case TokenNumber:
		r, ok := new(big.Rat).SetString(tok.Value)
		if !ok {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("invalid number %q", tok.Value)}
		}
		return &Node{Kind: KindConstant, Value: r}, nil
	case TokenIdent:
		if p.peek().Type == TokenLParen && (p.template || knownFunctions[tok.Value]) {
			return p.parseCall(tok.Value)
		}
		switch tok.Value {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}
		return Sym(tok.Value), nil
	case TokenLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.Type != TokenRParen {
			return nil, &SyntaxError{Pos: closing.Pos, Msg: "expected ')'"}
		}
		return Paren(inner), nil
	case TokenEOF:
		return nil, &SyntaxError{Pos: tok.Pos, Msg: "unexpected end of input"}
	default:
		return nil, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("unexpected token %q", tok.Value)}
	}
}

func (p *parser) parseCall(name string) (*Node, error) {
	p.next() // '('
	var args []*Node
	if p.peek().Type != TokenRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().Type != TokenComma {
				break
			}
			p.next()
		}
	}
	if closing := p.next(); closing.Type != TokenRParen {
		return nil, &SyntaxError{Pos: closing.Pos, Msg: fmt.Sprintf("expected ')' after arguments of %s", name)}
	}
	return Fn(name, args...), nil
}
