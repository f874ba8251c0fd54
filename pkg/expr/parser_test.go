package expr

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func num(v float64) *LiteralExpr { return &LiteralExpr{Value: NumberLiteral(v)} }

func TestParseEquality(t *testing.T) {
	tokens := []Token{
		{Kind: Number, Lexeme: "4", Literal: NumberLiteral(4), Line: 1, Column: 0},
		{Kind: EqualEqual, Lexeme: "==", Line: 1, Column: 2},
		{Kind: Number, Lexeme: "4", Literal: NumberLiteral(4), Line: 1, Column: 5},
		{Kind: EOF, Line: 1, Column: 6},
	}

	node, err := Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	bin, ok := node.(*BinaryExpr)
	if !ok {
		t.Fatalf("expected *BinaryExpr, got %T", node)
	}
	if bin.Operator != OpEqualEqual {
		t.Errorf("operator = %v, want ==", bin.Operator)
	}
	if diff := cmp.Diff(num(4), bin.Left); diff != "" {
		t.Errorf("left mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(num(4), bin.Right); diff != "" {
		t.Errorf("right mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLeftAssociative(t *testing.T) {
	node, err := ParseSource("1 - 2 - 3")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	want := &BinaryExpr{
		Left:     &BinaryExpr{Left: num(1), Operator: OpMinus, Right: num(2)},
		Operator: OpMinus,
		Right:    num(3),
	}
	if diff := cmp.Diff(Expr(want), node); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"1 * 2 + 3", "(+ (* 1 2) 3)"},
		{"8 / 4 / 2", "(/ (/ 8 4) 2)"},
		{"(1 + 2) * 3", "(* (group (+ 1 2)) 3)"},
		{"1 < 2 == 3 >= 4", "(== (< 1 2) (>= 3 4))"},
		{"1 != 2 == true", "(== (!= 1 2) true)"},
		{"-1 - -2", "(- (- 1) (- 2))"},
		{"!!true", "(! (! true))"},
		{"-x * y", "(* (- x) y)"},
		{"nil == false", "(== nil false)"},
		{`"a" + "b"`, "(+ a b)"},
		{"((1))", "(group (group 1))"},
		{"1 <= 2 > 3 < 4", "(< (> (<= 1 2) 3) 4)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := ParseSource(tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if got := PrintExpr(node); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseLiterals(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"true", BoolValue(true)},
		{"false", BoolValue(false)},
		{"nil", NilValue{}},
		{"42", NumberLiteral(42)},
		{`"hi"`, StringLiteral("hi")},
		{"answer", IdentifierLiteral("answer")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := ParseSource(tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			lit, ok := node.(*LiteralExpr)
			if !ok {
				t.Fatalf("expected *LiteralExpr, got %T", node)
			}
			if lit.Value != tt.want {
				t.Errorf("value = %#v, want %#v", lit.Value, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"", ErrExpectedExpression},
		{"1 +", ErrExpectedExpression},
		{"* 2", ErrExpectedExpression},
		{"(1 + 2", ErrExpectedRightParen},
		{"()", ErrExpectedExpression},
		{"1 2", ErrUnexpectedToken},
		{"1 + 2)", ErrUnexpectedToken},
		{"var", ErrExpectedExpression},
		{"1 = 2", ErrUnexpectedToken},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := ParseSource(tt.input)
			if err == nil {
				t.Fatalf("expected error, got %s", PrintExpr(node))
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want kind of %v", err, tt.want)
			}
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := ParseSource("1 +\n  )")
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}
	if synErr.Token.Kind != RightParen || synErr.Token.Line != 2 || synErr.Token.Column != 2 {
		t.Errorf("offending token = %v, want ')' at 2:2", synErr.Token)
	}
}

func TestParseWithoutTrailingEOF(t *testing.T) {
	tokens := []Token{
		{Kind: Number, Lexeme: "1", Literal: NumberLiteral(1), Line: 1},
		{Kind: Plus, Lexeme: "+", Line: 1, Column: 2},
	}
	_, err := Parse(tokens)
	var synErr *SyntaxError
	if !errors.As(err, &synErr) || synErr.Kind != ExpectedExpression {
		t.Fatalf("expected ExpectedExpression, got %v", err)
	}
	if synErr.Token.Kind != EOF || synErr.Token.Column != 3 {
		t.Errorf("synthetic EOF = %v, want column 3", synErr.Token)
	}
}

func TestParseLexicalErrorPassesThrough(t *testing.T) {
	_, err := ParseSource(`"open`)
	if !errors.Is(err, ErrUnterminatedString) {
		t.Fatalf("expected unterminated string, got %v", err)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	const src = `!(1 + 2) * 3 >= -4 / "x" != nil`
	tokens, err := Scan(src)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	first, err := Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	second, err := Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("reparse differs (-first +second):\n%s", diff)
	}
	third, err := ParseSource(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if diff := cmp.Diff(first, third); diff != "" {
		t.Errorf("parse from source differs (-first +third):\n%s", diff)
	}
}

func TestParserReuse(t *testing.T) {
	tokens, err := Scan("1 + 2")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	p := NewParser(tokens)
	a, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	b, err := p.Parse()
	if err != nil {
		t.Fatalf("second parse error: %v", err)
	}
	if PrintExpr(a) != PrintExpr(b) {
		t.Errorf("got %s then %s", PrintExpr(a), PrintExpr(b))
	}
}
