// Package visitor provides depth-first traversal of expression trees.
// Unlike a full SQL AST, a dplyr Expr tree has no statement-level
// children to recurse into, so Walk only needs to know about Expr.
package visitor

import "github.com/freeeve/dplyrsql/ast"

// Visitor is called once per node visited. Returning false stops
// recursion into that node's children.
type Visitor interface {
	Visit(node ast.Expr) bool
}

// Walk traverses expr in depth-first order, calling v.Visit on each node.
func Walk(v Visitor, expr ast.Expr) {
	if expr == nil || !v.Visit(expr) {
		return
	}
	switch n := expr.(type) {
	case *ast.Binary:
		Walk(v, n.Left)
		Walk(v, n.Right)
	case *ast.Call:
		for _, arg := range n.Args {
			Walk(v, arg)
		}
	case *ast.Identifier, *ast.Literal:
		// leaves
	}
}

// WalkFunc wraps a plain function as a Visitor.
type WalkFunc func(ast.Expr) bool

func (f WalkFunc) Visit(node ast.Expr) bool { return f(node) }

// Identifiers returns the names of every Identifier referenced in expr,
// in traversal order, including duplicates.
func Identifiers(expr ast.Expr) []string {
	var names []string
	Walk(WalkFunc(func(n ast.Expr) bool {
		if id, ok := n.(*ast.Identifier); ok {
			names = append(names, id.Name)
		}
		return true
	}), expr)
	return names
}

// FunctionCalls returns the name of every function call referenced in
// expr, in traversal order, including duplicates.
func FunctionCalls(expr ast.Expr) []string {
	var names []string
	Walk(WalkFunc(func(n ast.Expr) bool {
		if call, ok := n.(*ast.Call); ok {
			names = append(names, call.Name)
		}
		return true
	}), expr)
	return names
}
