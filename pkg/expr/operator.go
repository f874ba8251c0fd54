package expr

import "fmt"

// UnaryOperator is a prefix operator.
type UnaryOperator int

const (
	UnaryMinus UnaryOperator = iota // -
	UnaryBang                       // !
)

// UnaryOperatorFromToken maps a token kind to its unary operator. It returns
// false for kinds that are not unary operators.
func UnaryOperatorFromToken(k TokenKind) (UnaryOperator, bool) {
	switch k {
	case Minus:
		return UnaryMinus, true
	case Bang:
		return UnaryBang, true
	default:
		return 0, false
	}
}

// Token returns the token kind the operator is spelled with.
func (op UnaryOperator) Token() TokenKind {
	if op == UnaryBang {
		return Bang
	}
	return Minus
}

// String returns the operator symbol.
func (op UnaryOperator) String() string {
	return symbols[op.Token()]
}

// MarshalText encodes the operator as its symbol.
func (op UnaryOperator) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// Operator is a binary operator.
type Operator int

const (
	OpPlus Operator = iota
	OpMinus
	OpStar
	OpSlash
	OpBang
	OpBangEqual
	OpEqual
	OpEqualEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
)

// operatorTokens is indexed by Operator; it is the single source of truth for
// both directions of the mapping.
var operatorTokens = [...]TokenKind{
	OpPlus:         Plus,
	OpMinus:        Minus,
	OpStar:         Star,
	OpSlash:        Slash,
	OpBang:         Bang,
	OpBangEqual:    BangEqual,
	OpEqual:        Equal,
	OpEqualEqual:   EqualEqual,
	OpGreater:      Greater,
	OpGreaterEqual: GreaterEqual,
	OpLess:         Less,
	OpLessEqual:    LessEqual,
}

var symbols = map[TokenKind]string{
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Bang:         "!",
	BangEqual:    "!=",
	Equal:        "=",
	EqualEqual:   "==",
	Greater:      ">",
	GreaterEqual: ">=",
	Less:         "<",
	LessEqual:    "<=",
}

// OperatorFromToken maps a token kind to its binary operator. It returns false
// for kinds that are not operators.
func OperatorFromToken(k TokenKind) (Operator, bool) {
	for op, tk := range operatorTokens {
		if tk == k {
			return Operator(op), true
		}
	}
	return 0, false
}

// Token returns the token kind the operator is spelled with.
func (op Operator) Token() TokenKind {
	if op < 0 || int(op) >= len(operatorTokens) {
		panic(fmt.Sprintf("expr: invalid Operator %d", int(op)))
	}
	return operatorTokens[op]
}

// String returns the operator symbol, e.g. "==".
func (op Operator) String() string {
	if op < 0 || int(op) >= len(operatorTokens) {
		return fmt.Sprintf("Operator(%d)", int(op))
	}
	return symbols[operatorTokens[op]]
}

// MarshalText encodes the operator as its symbol.
func (op Operator) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}
