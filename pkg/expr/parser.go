package expr

import "fmt"

// Parser is a recursive descent parser for Lox expressions.
//
// Precedence (low to high):
//
//	==, !=
//	>, >=, <, <=
//	-, +
//	/, *
//	unary !, unary -
//	literals, identifiers, ( expression )
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser creates a parser over tokens, normally the output of Scan.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a complete token sequence into a single expression.
func Parse(tokens []Token) (Expr, error) {
	return NewParser(tokens).Parse()
}

// ParseSource scans and parses source in one call.
func ParseSource(source string, opts ...ScanOption) (Expr, error) {
	tokens, err := Scan(source, opts...)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Parse parses one expression and requires that it spans every token up to
// EOF.
func (p *Parser) Parse() (Expr, error) {
	p.pos = 0
	node, err := p.expression()
	if err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Kind != EOF {
		return nil, newSyntaxError(UnexpectedToken, tok, fmt.Sprintf("unexpected %s after expression", tok.Kind))
	}
	return node, nil
}

// current returns the current token. Past the end of the slice it returns a
// synthetic EOF positioned after the last token.
func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		eof := Token{Kind: EOF, Line: 1}
		if n := len(p.tokens); n > 0 {
			last := p.tokens[n-1]
			eof.Line = last.Line
			eof.Column = last.Column + len([]rune(last.Lexeme))
		}
		return eof
	}
	return p.tokens[p.pos]
}

// advance consumes the current token and returns it. EOF is never consumed.
func (p *Parser) advance() Token {
	tok := p.current()
	if tok.Kind != EOF {
		p.pos++
	}
	return tok
}

// check reports whether the current token has kind k. EOF never matches.
func (p *Parser) check(k TokenKind) bool {
	tok := p.current()
	return tok.Kind != EOF && tok.Kind == k
}

// match consumes the current token if it has one of the given kinds.
func (p *Parser) match(kinds ...TokenKind) (Token, bool) {
	for _, k := range kinds {
		if p.check(k) {
			return p.advance(), true
		}
	}
	return Token{}, false
}

// expect consumes a token of the given kind or returns a syntax error.
func (p *Parser) expect(k TokenKind, kind SyntaxErrorKind, msg string) (Token, error) {
	if p.check(k) {
		return p.advance(), nil
	}
	return p.current(), newSyntaxError(kind, p.current(), msg)
}

func (p *Parser) expression() (Expr, error) {
	return p.equality()
}

func (p *Parser) equality() (Expr, error) {
	return p.binary(p.comparison, BangEqual, EqualEqual)
}

func (p *Parser) comparison() (Expr, error) {
	return p.binary(p.term, Greater, GreaterEqual, Less, LessEqual)
}

func (p *Parser) term() (Expr, error) {
	return p.binary(p.factor, Minus, Plus)
}

func (p *Parser) factor() (Expr, error) {
	return p.binary(p.unary, Slash, Star)
}

// binary parses a left-associative level: operand (op operand)*.
func (p *Parser) binary(operand func() (Expr, error), ops ...TokenKind) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.match(ops...)
		if !ok {
			return left, nil
		}
		op, ok := OperatorFromToken(tok.Kind)
		if !ok {
			panic(fmt.Sprintf("expr: %s is not a binary operator", tok.Kind))
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Operator: op, Right: right}
	}
}

func (p *Parser) unary() (Expr, error) {
	if tok, ok := p.match(Bang, Minus); ok {
		op, _ := UnaryOperatorFromToken(tok.Kind)
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Operator: op, Operand: operand}, nil
	}
	return p.primary()
}

func (p *Parser) primary() (Expr, error) {
	tok := p.current()

	switch {
	case p.check(False):
		p.advance()
		return &LiteralExpr{Value: BoolValue(false)}, nil
	case p.check(True):
		p.advance()
		return &LiteralExpr{Value: BoolValue(true)}, nil
	case p.check(Nil):
		p.advance()
		return &LiteralExpr{Value: NilValue{}}, nil
	case p.check(Number), p.check(String), p.check(Identifier):
		p.advance()
		if tok.Literal == nil {
			return nil, newSyntaxError(ExpectedExpression, tok, fmt.Sprintf("%s token carries no literal", tok.Kind))
		}
		return &LiteralExpr{Value: tok.Literal}, nil
	case p.check(LeftParen):
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RightParen, ExpectedRightParen, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return &GroupingExpr{Inner: inner}, nil
	default:
		return nil, newSyntaxError(ExpectedExpression, tok, "expected expression")
	}
}
