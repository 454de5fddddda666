// Package ast defines the abstract syntax tree produced by the parser:
// a Pipeline of verb Operations built from Expr trees.
package ast

import "github.com/freeeve/dplyrsql/token"

// Node is the base interface implemented by every AST node.
type Node interface {
	Pos() token.Pos
}

// Pipeline is the root of a parsed program: an optional data source
// followed by an ordered chain of verb operations.
type Pipeline struct {
	Source     string // empty when no bare identifier precedes the first verb
	HasSource  bool
	Operations []Operation
	Location   token.Pos
}

func (p *Pipeline) Pos() token.Pos { return p.Location }

// Operation is a single verb call in a pipeline.
type Operation interface {
	Node
	operationNode()
}

// ColumnExpr is a projected column: an expression with an optional alias.
type ColumnExpr struct {
	Expr  Expr
	Alias string // empty when unaliased
}

// OrderExpr is one column reference inside arrange(), with direction.
type OrderExpr struct {
	Column    string
	Direction SortDirection
}

// SortDirection is the sort direction desugared from arrange()/desc().
type SortDirection int

const (
	Asc SortDirection = iota
	Desc
)

// Select projects a list of columns, renaming via alias when given.
type Select struct {
	Columns  []ColumnExpr
	Location token.Pos
}

func (*Select) operationNode()   {}
func (s *Select) Pos() token.Pos { return s.Location }

// Filter keeps rows matching a boolean condition.
type Filter struct {
	Condition Expr
	Location  token.Pos
}

func (*Filter) operationNode()   {}
func (f *Filter) Pos() token.Pos { return f.Location }

// Assignment is one `column = expr` pair inside mutate().
type Assignment struct {
	Column string
	Expr   Expr
}

// Mutate adds or replaces columns, evaluated left to right so later
// assignments may reference earlier ones by name.
type Mutate struct {
	Assignments []Assignment
	Location    token.Pos
}

func (*Mutate) operationNode()   {}
func (m *Mutate) Pos() token.Pos { return m.Location }

// Rename is one `new_name = old_name` pair inside rename().
type Rename struct {
	Renames  []RenamePair
	Location token.Pos
}

// RenamePair is one `new = old` entry inside a Rename operation.
type RenamePair struct {
	NewName string
	OldName string
}

func (*Rename) operationNode()   {}
func (r *Rename) Pos() token.Pos { return r.Location }

// Arrange orders rows by the given columns and directions.
type Arrange struct {
	Columns  []OrderExpr
	Location token.Pos
}

func (*Arrange) operationNode()   {}
func (a *Arrange) Pos() token.Pos { return a.Location }

// GroupBy introduces grouping columns for a following Summarise.
type GroupBy struct {
	Columns  []string
	Location token.Pos
}

func (*GroupBy) operationNode()   {}
func (g *GroupBy) Pos() token.Pos { return g.Location }

// Aggregation is one `alias = fn(column)` entry inside summarise().
// Column is empty for the zero-argument n() aggregation.
type Aggregation struct {
	Function string
	Column   string
	Alias    string
}

// Summarise collapses grouped (or whole-table) rows into aggregates.
type Summarise struct {
	Aggregations []Aggregation
	Location     token.Pos
}

func (*Summarise) operationNode()   {}
func (s *Summarise) Pos() token.Pos { return s.Location }

// JoinType identifies which SQL join a Join operation compiles to.
type JoinType int

const (
	InnerJoin JoinType = iota
	LeftJoin
	RightJoin
	FullJoin
	SemiJoin
	AntiJoin
)

// JoinSpec names the right-hand table and the ON condition.
type JoinSpec struct {
	Table string
	On    Expr
}

// Join combines the pipeline's rows with a single right-hand table.
type Join struct {
	Kind     JoinType
	Spec     JoinSpec
	Location token.Pos
}

func (*Join) operationNode()   {}
func (j *Join) Pos() token.Pos { return j.Location }

// Expr is an expression node inside a verb's arguments.
type Expr interface {
	Node
	exprNode()
}

// LiteralKind identifies which of a Literal's Str, Num, or Bool fields
// holds its value (none for LitNull).
type LiteralKind int

const (
	LitString LiteralKind = iota
	LitNumber
	LitBool
	LitNull
)

// Identifier references a column by (possibly dotted) name.
type Identifier struct {
	Name     string
	Location token.Pos
}

func (*Identifier) exprNode()        {}
func (i *Identifier) Pos() token.Pos { return i.Location }

// Literal is a constant string, number, boolean, or null value.
type Literal struct {
	Kind     LiteralKind
	Str      string  // valid when Kind == LitString
	Num      float64 // valid when Kind == LitNumber
	Bool     bool    // valid when Kind == LitBool
	Location token.Pos
}

func (*Literal) exprNode()        {}
func (l *Literal) Pos() token.Pos { return l.Location }

// BinaryOp is an infix operator token.
type BinaryOp int

const (
	OpEq BinaryOp = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
)

// Binary is a two-operand expression: `left op right`.
type Binary struct {
	Left     Expr
	Op       BinaryOp
	Right    Expr
	Location token.Pos
}

func (*Binary) exprNode()        {}
func (b *Binary) Pos() token.Pos { return b.Location }

// Call is a function invocation, e.g. mean(salary), n(), desc(x).
type Call struct {
	Name     string
	Args     []Expr
	Location token.Pos
}

func (*Call) exprNode()        {}
func (c *Call) Pos() token.Pos { return c.Location }
