package visitor

import (
	"reflect"
	"testing"

	"github.com/freeeve/dplyrsql/ast"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }

func TestIdentifiersCollectsInTraversalOrder(t *testing.T) {
	expr := &ast.Binary{
		Left:  ident("a"),
		Op:    ast.OpAdd,
		Right: &ast.Call{Name: "mean", Args: []ast.Expr{ident("b"), ident("a")}},
	}
	got := Identifiers(expr)
	want := []string{"a", "b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestIdentifiersIgnoresLiterals(t *testing.T) {
	expr := &ast.Binary{Left: ident("x"), Op: ast.OpGt, Right: &ast.Literal{Kind: ast.LitNumber, Num: 18}}
	got := Identifiers(expr)
	want := []string{"x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFunctionCallsCollectsNestedCalls(t *testing.T) {
	expr := &ast.Call{Name: "round", Args: []ast.Expr{&ast.Call{Name: "mean", Args: []ast.Expr{ident("salary")}}}}
	got := FunctionCalls(expr)
	want := []string{"round", "mean"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalkStopsRecursionWhenVisitReturnsFalse(t *testing.T) {
	expr := &ast.Binary{Left: ident("a"), Op: ast.OpAnd, Right: ident("b")}
	var visited []ast.Expr
	Walk(WalkFunc(func(n ast.Expr) bool {
		visited = append(visited, n)
		_, isBinary := n.(*ast.Binary)
		return !isBinary
	}), expr)
	if len(visited) != 1 {
		t.Fatalf("expected recursion to stop at the root, visited %d nodes", len(visited))
	}
}

func TestWalkNilExprIsNoOp(t *testing.T) {
	calls := 0
	Walk(WalkFunc(func(ast.Expr) bool { calls++; return true }), nil)
	if calls != 0 {
		t.Errorf("expected no visits for a nil expr, got %d", calls)
	}
}
