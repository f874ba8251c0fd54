package expr

import "strings"

// PrintExpr renders e in parenthesized prefix form, e.g. "(* (group (+ 1 2)) 3)".
func PrintExpr(e Expr) string {
	return Accept[string](e, printer{})
}

// printer is the reference Visitor: it only composes the strings its
// children produce.
type printer struct{}

func (printer) VisitLiteral(e *LiteralExpr) string {
	if e.Value == nil {
		return "nil"
	}
	return e.Value.String()
}

func (p printer) VisitGrouping(e *GroupingExpr) string {
	return p.parenthesize("group", e.Inner)
}

func (p printer) VisitUnary(e *UnaryExpr) string {
	return p.parenthesize(e.Operator.String(), e.Operand)
}

func (p printer) VisitBinary(e *BinaryExpr) string {
	return p.parenthesize(e.Operator.String(), e.Left, e.Right)
}

func (p printer) parenthesize(name string, children ...Expr) string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(name)
	for _, child := range children {
		sb.WriteByte(' ')
		sb.WriteString(Accept[string](child, p))
	}
	sb.WriteByte(')')
	return sb.String()
}
