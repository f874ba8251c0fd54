package expr

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestPrintHandBuiltTree(t *testing.T) {
	tree := &BinaryExpr{
		Left:     &UnaryExpr{Operator: UnaryMinus, Operand: num(123)},
		Operator: OpStar,
		Right:    &GroupingExpr{Inner: num(45.67)},
	}
	if got, want := PrintExpr(tree), "(* (- 123) (group 45.67))"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestPrintKeywordAndPrinterCoexist(t *testing.T) {
	tokens, err := Scan("print")
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if tokens[0].Kind != Print || Print.String() != "Print" {
		t.Fatalf("kind = %v, want Print", tokens[0].Kind)
	}
	if got := PrintExpr(&GroupingExpr{Inner: num(1)}); got != "(group 1)" {
		t.Errorf("PrintExpr = %q", got)
	}
}

func TestPrintLiterals(t *testing.T) {
	tests := []struct {
		value Value
		want  string
	}{
		{StringLiteral("hola"), "hola"},
		{NumberLiteral(4), "4"},
		{NumberLiteral(0.5), "0.5"},
		{IdentifierLiteral("x"), "x"},
		{BoolValue(false), "false"},
		{BoolValue(true), "true"},
		{NilValue{}, "nil"},
		{nil, "nil"},
	}
	for _, tt := range tests {
		if got := PrintExpr(&LiteralExpr{Value: tt.value}); got != tt.want {
			t.Errorf("PrintExpr(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

// depthCounter is a visitor with a non-string result.
type depthCounter struct{}

func (depthCounter) VisitLiteral(*LiteralExpr) int { return 1 }
func (d depthCounter) VisitGrouping(e *GroupingExpr) int {
	return 1 + Accept[int](e.Inner, d)
}
func (d depthCounter) VisitUnary(e *UnaryExpr) int { return 1 + Accept[int](e.Operand, d) }
func (d depthCounter) VisitBinary(e *BinaryExpr) int {
	return 1 + max(Accept[int](e.Left, d), Accept[int](e.Right, d))
}

func TestAcceptWithCustomVisitor(t *testing.T) {
	node, err := ParseSource("1 + (2 * -3)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if got := Accept[int](node, depthCounter{}); got != 5 {
		t.Errorf("depth = %d, want 5", got)
	}
}

func TestBuildTree(t *testing.T) {
	node, err := ParseSource(`-x == "s"`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	want := &Tree{
		Type:     "Binary",
		Operator: "==",
		Children: []*Tree{
			{Type: "Unary", Operator: "-", Children: []*Tree{
				{Type: "Literal", ValueKind: "identifier", Value: "x"},
			}},
			{Type: "Literal", ValueKind: "string", Value: "s"},
		},
	}
	if diff := cmp.Diff(want, BuildTree(node)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestTreeEncoding(t *testing.T) {
	node, err := ParseSource("(false)")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	tree := BuildTree(node)

	b, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	want := `{"type":"Grouping","children":[{"type":"Literal","valueKind":"bool","value":false}]}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}

	y, err := yaml.Marshal(tree)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var back Tree
	if err := yaml.Unmarshal(y, &back); err != nil {
		t.Fatalf("yaml decode: %v", err)
	}
	if back.Type != "Grouping" || len(back.Children) != 1 || back.Children[0].Value != false {
		t.Errorf("yaml round trip = %+v", back)
	}
}
