package expr

import (
	"fmt"
	"unicode"
)

type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenIdent
	TokenOperator
	TokenLParen
	TokenRParen
	TokenComma
	TokenEquals
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenNumber:
		return "Number"
	case TokenIdent:
		return "Ident"
	case TokenOperator:
		return "Operator"
	case TokenLParen:
		return "LParen"
	case TokenRParen:
		return "RParen"
	case TokenComma:
		return "Comma"
	case TokenEquals:
		return "Equals"
	default:
		return "Unknown"
	}
}

// Token is a lexical unit of an expression.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// IsTerm reports whether the token is a number or identifier.
func (t Token) IsTerm() bool {
	return t.Type == TokenNumber || t.Type == TokenIdent
}

// SyntaxError is returned for text that cannot be tokenized or parsed.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos, e.Msg)
}

// Tokenize splits the input into tokens. The trailing EOF token is omitted.
func Tokenize(input string) ([]Token, error) {
	var tokens []Token
	runes := []rune(input)
	pos := 0
	for pos < len(runes) {
		ch := runes[pos]
		switch {
		case unicode.IsSpace(ch):
			pos++
		case unicode.IsDigit(ch) || ch == '.':
			start := pos
			dot := false
			for pos < len(runes) && (unicode.IsDigit(runes[pos]) || runes[pos] == '.') {
				if runes[pos] == '.' {
					if dot {
						return nil, &SyntaxError{Pos: pos, Msg: "malformed number"}
					}
					dot = true
				}
				pos++
			}
			lit := string(runes[start:pos])
			if lit == "." {
				return nil, &SyntaxError{Pos: start, Msg: "malformed number"}
			}
			tokens = append(tokens, Token{Type: TokenNumber, Value: lit, Pos: start})
		case unicode.IsLetter(ch) || ch == '_':
			start := pos
			for pos < len(runes) && (unicode.IsLetter(runes[pos]) || unicode.IsDigit(runes[pos]) || runes[pos] == '_') {
				pos++
			}
			tokens = append(tokens, Token{Type: TokenIdent, Value: string(runes[start:pos]), Pos: start})
		case ch == '+' || ch == '-' || ch == '*' || ch == '/' || ch == '^':
			tokens = append(tokens, Token{Type: TokenOperator, Value: string(ch), Pos: pos})
			pos++
		case ch == '(' || ch == '[':
			tokens = append(tokens, Token{Type: TokenLParen, Value: "(", Pos: pos})
			pos++
		case ch == ')' || ch == ']':
			tokens = append(tokens, Token{Type: TokenRParen, Value: ")", Pos: pos})
			pos++
		case ch == ',':
			tokens = append(tokens, Token{Type: TokenComma, Value: ",", Pos: pos})
			pos++
		case ch == '=':
			tokens = append(tokens, Token{Type: TokenEquals, Value: "=", Pos: pos})
			pos++
		default:
			return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unexpected character %q", ch)}
		}
	}
	return tokens, nil
}
