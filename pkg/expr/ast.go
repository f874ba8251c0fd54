package expr

import "fmt"

// Expr is the interface for all expression AST nodes. The set of variants is
// closed: LiteralExpr, GroupingExpr, UnaryExpr and BinaryExpr.
type Expr interface {
	exprNode()
}

// LiteralExpr is a literal leaf: a number, string, identifier name, boolean
// or nil.
type LiteralExpr struct {
	Value Value
}

// GroupingExpr is a parenthesized sub-expression.
type GroupingExpr struct {
	Inner Expr
}

// UnaryExpr is a prefix operation, e.g. -x or !ok.
type UnaryExpr struct {
	Operator UnaryOperator
	Operand  Expr
}

// BinaryExpr is an infix operation, e.g. a + b or x == y.
type BinaryExpr struct {
	Left     Expr
	Operator Operator
	Right    Expr
}

func (*LiteralExpr) exprNode()  {}
func (*GroupingExpr) exprNode() {}
func (*UnaryExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}

// Visitor computes a result of type R for each node variant. Handlers for
// composite nodes recurse through Accept on the children.
type Visitor[R any] interface {
	VisitLiteral(e *LiteralExpr) R
	VisitGrouping(e *GroupingExpr) R
	VisitUnary(e *UnaryExpr) R
	VisitBinary(e *BinaryExpr) R
}

// Accept dispatches e to the visitor method matching its variant.
func Accept[R any](e Expr, v Visitor[R]) R {
	switch n := e.(type) {
	case *LiteralExpr:
		return v.VisitLiteral(n)
	case *GroupingExpr:
		return v.VisitGrouping(n)
	case *UnaryExpr:
		return v.VisitUnary(n)
	case *BinaryExpr:
		return v.VisitBinary(n)
	default:
		panic(fmt.Sprintf("expr: unknown node type %T", e))
	}
}
