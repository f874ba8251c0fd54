package expr

// Tree is a serializable view of an expression, used for JSON and YAML output.
type Tree struct {
	Type      string  `json:"type" yaml:"type"`
	Operator  string  `json:"operator,omitempty" yaml:"operator,omitempty"`
	ValueKind string  `json:"valueKind,omitempty" yaml:"valueKind,omitempty"`
	Value     any     `json:"value,omitempty" yaml:"value,omitempty"`
	Children  []*Tree `json:"children,omitempty" yaml:"children,omitempty"`
}

// BuildTree converts e into a Tree.
func BuildTree(e Expr) *Tree {
	return Accept[*Tree](e, treeBuilder{})
}

type treeBuilder struct{}

func (treeBuilder) VisitLiteral(e *LiteralExpr) *Tree {
	t := &Tree{Type: "Literal"}
	switch v := e.Value.(type) {
	case NumberLiteral:
		t.ValueKind, t.Value = "number", float64(v)
	case StringLiteral:
		t.ValueKind, t.Value = "string", string(v)
	case IdentifierLiteral:
		t.ValueKind, t.Value = "identifier", string(v)
	case BoolValue:
		t.ValueKind, t.Value = "bool", bool(v)
	default:
		t.ValueKind = "nil"
	}
	return t
}

func (b treeBuilder) VisitGrouping(e *GroupingExpr) *Tree {
	return &Tree{Type: "Grouping", Children: []*Tree{Accept[*Tree](e.Inner, b)}}
}

func (b treeBuilder) VisitUnary(e *UnaryExpr) *Tree {
	return &Tree{
		Type:     "Unary",
		Operator: e.Operator.String(),
		Children: []*Tree{Accept[*Tree](e.Operand, b)},
	}
}

func (b treeBuilder) VisitBinary(e *BinaryExpr) *Tree {
	return &Tree{
		Type:     "Binary",
		Operator: e.Operator.String(),
		Children: []*Tree{Accept[*Tree](e.Left, b), Accept[*Tree](e.Right, b)},
	}
}
