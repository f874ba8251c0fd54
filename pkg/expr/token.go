// Package expr implements the Lox expression front end: a scanner that turns
// source text into tokens, a recursive descent parser that builds an
// expression tree, and visitors that walk the tree (printer, tree encoder).
package expr

import (
	"fmt"
	"strconv"
)

// TokenKind represents the kind of a lexical token.
type TokenKind int

const (
	// Single-character tokens
	LeftParen  TokenKind = iota // (
	RightParen                  // )
	LeftBrace                   // {
	RightBrace                  // }
	Comma                       // ,
	Dot                         // .
	Minus                       // -
	Plus                        // +
	Semicolon                   // ;
	Slash                       // /
	Star                        // *

	// One or two character tokens
	Bang         // !
	BangEqual    // !=
	Equal        // =
	EqualEqual   // ==
	Greater      // >
	GreaterEqual // >=
	Less         // <
	LessEqual    // <=

	// Literals
	Identifier
	String
	Number

	// Keywords
	And
	Class
	Else
	False
	Fun
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	// Special
	EOF
)

var kindNames = [...]string{
	LeftParen:    "LeftParen",
	RightParen:   "RightParen",
	LeftBrace:    "LeftBrace",
	RightBrace:   "RightBrace",
	Comma:        "Comma",
	Dot:          "Dot",
	Minus:        "Minus",
	Plus:         "Plus",
	Semicolon:    "Semicolon",
	Slash:        "Slash",
	Star:         "Star",
	Bang:         "Bang",
	BangEqual:    "BangEqual",
	Equal:        "Equal",
	EqualEqual:   "EqualEqual",
	Greater:      "Greater",
	GreaterEqual: "GreaterEqual",
	Less:         "Less",
	LessEqual:    "LessEqual",
	Identifier:   "Identifier",
	String:       "String",
	Number:       "Number",
	And:          "And",
	Class:        "Class",
	Else:         "Else",
	False:        "False",
	Fun:          "Fun",
	For:          "For",
	If:           "If",
	Nil:          "Nil",
	Or:           "Or",
	Print:        "Print",
	Return:       "Return",
	Super:        "Super",
	This:         "This",
	True:         "True",
	Var:          "Var",
	While:        "While",
	EOF:          "EOF",
}

// String returns the Go name of the kind, e.g. "BangEqual".
func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText encodes the kind by name so it reads well in JSON and YAML.
func (k TokenKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *TokenKind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = TokenKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown token kind %q", b)
}

// keywords maps reserved words to their token kinds.
var keywords = map[string]TokenKind{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"for":    For,
	"fun":    Fun,
	"if":     If,
	"nil":    Nil,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

// LookupKeyword returns the keyword kind for word, or Identifier.
func LookupKeyword(word string) TokenKind {
	if k, ok := keywords[word]; ok {
		return k
	}
	return Identifier
}

// Value is anything a LiteralExpr can hold: a token Literal, a boolean or nil.
type Value interface {
	fmt.Stringer
	isValue()
}

// Literal is the payload a token carries. Implemented by NumberLiteral,
// StringLiteral and IdentifierLiteral only.
type Literal interface {
	Value
	isLiteral()
}

// NumberLiteral is the value of a Number token.
type NumberLiteral float64

// StringLiteral is the content of a String token, without quotes.
type StringLiteral string

// IdentifierLiteral is the name of an Identifier token. It is not a value
// literal; see IsValueLiteral.
type IdentifierLiteral string

// BoolValue is the value of the true and false keywords.
type BoolValue bool

// NilValue is the value of the nil keyword.
type NilValue struct{}

func (NumberLiteral) isValue()     {}
func (StringLiteral) isValue()     {}
func (IdentifierLiteral) isValue() {}
func (BoolValue) isValue()         {}
func (NilValue) isValue()          {}

func (NumberLiteral) isLiteral()     {}
func (StringLiteral) isLiteral()     {}
func (IdentifierLiteral) isLiteral() {}

func (n NumberLiteral) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

func (s StringLiteral) String() string     { return string(s) }
func (i IdentifierLiteral) String() string { return string(i) }

func (b BoolValue) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (NilValue) String() string { return "nil" }

// IsValueLiteral reports whether v is a genuine literal value (number or
// string) as opposed to an identifier name or a keyword marker.
func IsValueLiteral(v Value) bool {
	switch v.(type) {
	case NumberLiteral, StringLiteral:
		return true
	default:
		return false
	}
}

// Token is a classified unit of source text.
type Token struct {
	Kind    TokenKind
	Lexeme  string  // raw source text; empty for EOF
	Literal Literal // nil unless Kind is Number, String or Identifier
	Line    int     // 1-based
	Column  int     // 0-based rune offset of the lexeme within its line
}

// String returns a debug-friendly representation of the token.
func (t Token) String() string {
	if t.Literal != nil {
		return fmt.Sprintf("%s %q %v @%d:%d", t.Kind, t.Lexeme, t.Literal, t.Line, t.Column)
	}
	return fmt.Sprintf("%s %q @%d:%d", t.Kind, t.Lexeme, t.Line, t.Column)
}
