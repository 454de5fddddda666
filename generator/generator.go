// Package generator compiles a parsed dplyr pipeline into a single SQL
// statement for a target dialect, folding verb operations left to right
// over an accumulated set of query parts and wrapping in a derived table
// whenever a later verb can't be expressed by extending the current one.
package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/freeeve/dplyrsql/ast"
	"github.com/freeeve/dplyrsql/dialect"
	"github.com/freeeve/dplyrsql/visitor"
)

// ErrorKind classifies a generation failure, matching spec §4.3's taxonomy.
type ErrorKind int

const (
	UnsupportedOperation ErrorKind = iota
	InvalidExpression
	InvalidColumn
	UnknownAggregate
)

// GenerationError reports a failure turning the AST into SQL.
type GenerationError struct {
	Kind    ErrorKind
	Message string
}

func (e *GenerationError) Error() string { return e.Message }

func errUnsupported(format string, args ...any) error {
	return &GenerationError{Kind: UnsupportedOperation, Message: fmt.Sprintf(format, args...)}
}

func errInvalidExpr(format string, args ...any) error {
	return &GenerationError{Kind: InvalidExpression, Message: fmt.Sprintf(format, args...)}
}

func errUnknownAggregate(name string) error {
	return &GenerationError{Kind: UnknownAggregate, Message: fmt.Sprintf("unknown aggregate function %q", name)}
}

// selectItem is one projected column: an already-compiled SQL expression
// with an optional alias.
type selectItem struct {
	expr  string
	alias string
	// ref is the bare name a later verb can use to refer back to this
	// column: the alias when set, otherwise the source identifier name
	// for a plain column reference. Empty for unaliased expressions,
	// which can only be extended, never replaced or renamed.
	ref string
}

func (s selectItem) names() string {
	if s.ref != "" {
		return s.ref
	}
	if s.alias != "" {
		return s.alias
	}
	return s.expr
}

func (s selectItem) render(d dialect.Dialect) string {
	if s.alias != "" {
		return s.expr + " AS " + d.QuoteIdentifier(s.alias)
	}
	return s.expr
}

// state accumulates the pieces of the SQL statement under construction.
// star reports whether the projection is still the implicit `SELECT *`
// inherited from the source table.
type state struct {
	from    string
	star    bool
	columns []selectItem
	where   []string
	groupBy []string
	having  []string
	orderBy []string
	joins   []string
	limit   *int
	grouped bool // true once a Summarise has collapsed the rowset
}

func newState(from string) *state {
	return &state{from: from, star: true}
}

// knownNames lists the projected column/alias names currently in scope,
// used to detect a mutate assignment that shadows or reuses one of them.
func (s *state) knownNames() map[string]bool {
	names := make(map[string]bool, len(s.columns))
	for _, c := range s.columns {
		names[c.names()] = true
	}
	return names
}

// Generator compiles an ast.Pipeline into SQL text for one dialect.
type Generator struct {
	dialect dialect.Dialect
}

// New creates a Generator targeting d.
func New(d dialect.Dialect) *Generator {
	return &Generator{dialect: d}
}

// defaultSource names the implicit table a pipeline with no leading
// bare identifier is assumed to operate on.
const defaultSource = "data"

// Generate compiles pipe into a complete SQL statement.
func (g *Generator) Generate(pipe *ast.Pipeline) (string, error) {
	source := pipe.Source
	if !pipe.HasSource {
		source = defaultSource
	}
	st := newState(g.dialect.QuoteIdentifier(source))

	for _, op := range pipe.Operations {
		if err := g.apply(st, op); err != nil {
			return "", err
		}
	}
	return g.render(st), nil
}

func (g *Generator) apply(st *state, op ast.Operation) error {
	switch n := op.(type) {
	case *ast.Select:
		return g.applySelect(st, n)
	case *ast.Filter:
		return g.applyFilter(st, n)
	case *ast.Mutate:
		return g.applyMutate(st, n)
	case *ast.Rename:
		return g.applyRename(st, n)
	case *ast.Arrange:
		return g.applyArrange(st, n)
	case *ast.GroupBy:
		return g.applyGroupBy(st, n)
	case *ast.Summarise:
		return g.applySummarise(st, n)
	case *ast.Join:
		return g.applyJoin(st, n)
	default:
		return errUnsupported("unsupported operation %T", op)
	}
}

// wrap folds the accumulated state into a derived table and returns a
// fresh state selecting * from it. Any ORDER BY stays inside the derived
// table and the fresh state starts with none, so the row order is not
// carried across a wrap (SQL does not guarantee derived-table order).
func (g *Generator) wrap(st *state) *state {
	sql := g.render(st)
	return newState("(" + sql + ") AS t")
}

func (g *Generator) applySelect(st *state, n *ast.Select) error {
	if !st.star {
		*st = *g.wrap(st)
	}
	items := make([]selectItem, 0, len(n.Columns))
	for _, col := range n.Columns {
		expr, err := g.compileExpr(col.Expr)
		if err != nil {
			return err
		}
		ref := col.Alias
		if ref == "" {
			if id, ok := col.Expr.(*ast.Identifier); ok {
				ref = lastPart(id.Name)
			}
		}
		items = append(items, selectItem{expr: expr, alias: col.Alias, ref: ref})
	}
	st.columns = items
	st.star = false
	return nil
}

func (g *Generator) applyFilter(st *state, n *ast.Filter) error {
	cond, err := g.compileExpr(n.Condition)
	if err != nil {
		return err
	}
	if st.grouped {
		st.having = append(st.having, cond)
	} else {
		st.where = append(st.where, cond)
	}
	return nil
}

func (g *Generator) applyMutate(st *state, n *ast.Mutate) error {
	if st.grouped {
		*st = *g.wrap(st)
	}
	known := st.knownNames()
	for _, asn := range n.Assignments {
		for _, ref := range visitor.Identifiers(asn.Expr) {
			if known[ref] {
				// self-referencing mutate: an assignment reads a name this
				// same accumulated projection already defines. Materialize
				// it first so the reference resolves against real columns.
				*st = *g.wrap(st)
				known = st.knownNames()
				break
			}
		}
		expr, err := g.compileExpr(asn.Expr)
		if err != nil {
			return err
		}
		if st.star {
			st.columns = []selectItem{{expr: "*"}}
			st.star = false
		}
		replaced := false
		for i, c := range st.columns {
			if c.names() == asn.Column {
				st.columns[i] = selectItem{expr: expr, alias: asn.Column, ref: asn.Column}
				replaced = true
				break
			}
		}
		if !replaced {
			st.columns = append(st.columns, selectItem{expr: expr, alias: asn.Column, ref: asn.Column})
		}
		known[asn.Column] = true
	}
	return nil
}

func (g *Generator) applyRename(st *state, n *ast.Rename) error {
	if st.star {
		oldNames := make([]string, len(n.Renames))
		for i, r := range n.Renames {
			oldNames[i] = r.OldName
		}
		if excl, ok := g.dialect.SelectStarExclude(oldNames); ok {
			st.columns = []selectItem{{expr: excl}}
		} else {
			// No way to drop the renamed originals from a bare wildcard in
			// this dialect: both names survive in the result, a documented
			// limitation of renaming before any explicit select().
			st.columns = []selectItem{{expr: "*"}}
		}
		st.star = false
	}
	for _, r := range n.Renames {
		renamed := false
		for i, c := range st.columns {
			if c.names() == r.OldName {
				st.columns[i] = selectItem{expr: g.dialect.QuoteIdentifier(r.OldName), alias: r.NewName, ref: r.NewName}
				renamed = true
				break
			}
		}
		if !renamed {
			st.columns = append(st.columns, selectItem{expr: g.dialect.QuoteIdentifier(r.OldName), alias: r.NewName, ref: r.NewName})
		}
	}
	return nil
}

func (g *Generator) applyArrange(st *state, n *ast.Arrange) error {
	st.orderBy = st.orderBy[:0]
	for _, col := range n.Columns {
		clause := g.dialect.QuoteIdentifier(col.Column)
		if col.Direction == ast.Desc {
			clause += " DESC"
		}
		st.orderBy = append(st.orderBy, clause)
	}
	return nil
}

func (g *Generator) applyGroupBy(st *state, n *ast.GroupBy) error {
	if st.grouped {
		*st = *g.wrap(st)
	}
	st.groupBy = st.groupBy[:0]
	st.groupBy = append(st.groupBy, n.Columns...)
	return nil
}

func (g *Generator) applySummarise(st *state, n *ast.Summarise) error {
	items := make([]selectItem, 0, len(st.groupBy)+len(n.Aggregations))
	for _, col := range st.groupBy {
		items = append(items, selectItem{expr: g.dialect.QuoteIdentifier(col), ref: lastPart(col)})
	}
	for _, agg := range n.Aggregations {
		expr, err := g.compileAggregation(agg)
		if err != nil {
			return err
		}
		items = append(items, selectItem{expr: expr, alias: agg.Alias, ref: agg.Alias})
	}
	st.columns = items
	st.star = false
	st.grouped = true
	return nil
}

var joinKeyword = map[ast.JoinType]string{
	ast.InnerJoin: "INNER JOIN",
	ast.LeftJoin:  "LEFT JOIN",
	ast.RightJoin: "RIGHT JOIN",
	ast.FullJoin:  "FULL JOIN",
	ast.SemiJoin:  "INNER JOIN", // semi_join is a plain inner join; see applyJoin
	ast.AntiJoin:  "LEFT JOIN",  // anti_join is emulated with a NULL-filtering WHERE clause
}

func (g *Generator) applyJoin(st *state, n *ast.Join) error {
	kw, ok := joinKeyword[n.Kind]
	if !ok {
		return errUnsupported("unknown join kind %d", n.Kind)
	}
	table := g.dialect.QuoteIdentifier(n.Spec.Table)
	var on string
	if n.Spec.On != nil {
		cond, err := g.compileExpr(n.Spec.On)
		if err != nil {
			return err
		}
		on = cond
	} else {
		on = "TRUE"
	}
	st.joins = append(st.joins, fmt.Sprintf("%s %s ON %s", kw, table, on))
	switch n.Kind {
	case ast.SemiJoin:
		// Emitted as the inner join alone: the projection is not limited
		// to left-side columns and left rows matching several right rows
		// are not deduplicated; both are left to the caller.
	case ast.AntiJoin:
		st.where = append(st.where, fmt.Sprintf("%s IS NULL", g.firstColumnRef(n.Spec.On)))
	}
	return nil
}

// firstColumnRef extracts a right-hand-side column reference from a join
// condition for the anti_join NULL-filter idiom. When the condition is
// not a binary expression with an identifier on its right it falls back
// to the literal 1, so the emitted guard `1 IS NULL` is always false.
func (g *Generator) firstColumnRef(on ast.Expr) string {
	bin, ok := on.(*ast.Binary)
	if !ok {
		return "1"
	}
	if id, ok := bin.Right.(*ast.Identifier); ok {
		parts := strings.Split(id.Name, ".")
		return g.dialect.QuoteIdentifier(parts[len(parts)-1])
	}
	return "1"
}

func (g *Generator) compileAggregation(agg ast.Aggregation) (string, error) {
	if agg.Function == "n" && agg.Column == "" {
		return g.dialect.AggregateFunction("n"), nil
	}
	fn := g.dialect.AggregateFunction(agg.Function)
	if fn == "" {
		return "", errUnknownAggregate(agg.Function)
	}
	return fmt.Sprintf("%s(%s)", fn, g.dialect.QuoteIdentifier(agg.Column)), nil
}

var binaryOps = map[ast.BinaryOp]string{
	ast.OpEq:  "=",
	ast.OpNeq: "<>",
	ast.OpLt:  "<",
	ast.OpLte: "<=",
	ast.OpGt:  ">",
	ast.OpGte: ">=",
	ast.OpAnd: "AND",
	ast.OpOr:  "OR",
	ast.OpAdd: "+",
	ast.OpSub: "-",
	ast.OpMul: "*",
	ast.OpDiv: "/",
}

// lastPart returns the final segment of a dotted column reference, the
// name a bare `select(x)`/`group_by(x)` column is known by afterward.
func lastPart(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func (g *Generator) compileExpr(e ast.Expr) (string, error) {
	switch n := e.(type) {
	case *ast.Identifier:
		parts := strings.Split(n.Name, ".")
		for i, p := range parts {
			parts[i] = g.dialect.QuoteIdentifier(p)
		}
		return strings.Join(parts, "."), nil
	case *ast.Literal:
		return g.compileLiteral(n)
	case *ast.Binary:
		op, ok := binaryOps[n.Op]
		if !ok {
			return "", errInvalidExpr("unsupported operator %d", n.Op)
		}
		left, err := g.compileExpr(n.Left)
		if err != nil {
			return "", err
		}
		right, err := g.compileExpr(n.Right)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s)", left, op, right), nil
	case *ast.Call:
		return g.compileCall(n)
	default:
		return "", errInvalidExpr("unsupported expression node %T", e)
	}
}

func (g *Generator) compileLiteral(l *ast.Literal) (string, error) {
	switch l.Kind {
	case ast.LitString:
		return g.dialect.QuoteString(l.Str), nil
	case ast.LitNumber:
		return strconv.FormatFloat(l.Num, 'g', -1, 64), nil
	case ast.LitBool:
		if l.Bool {
			return "TRUE", nil
		}
		return "FALSE", nil
	case ast.LitNull:
		return "NULL", nil
	default:
		return "", errInvalidExpr("unknown literal kind %d", l.Kind)
	}
}

func (g *Generator) compileCall(c *ast.Call) (string, error) {
	args := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		compiled, err := g.compileExpr(a)
		if err != nil {
			return "", err
		}
		args = append(args, compiled)
	}
	if sql, ok := g.dialect.TranslateFunction(c.Name, args); ok {
		return sql, nil
	}
	return "", errUnsupported("unsupported function %q", c.Name)
}

func (g *Generator) render(st *state) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if st.star {
		b.WriteString("*")
	} else {
		rendered := make([]string, len(st.columns))
		for i, c := range st.columns {
			rendered[i] = c.render(g.dialect)
		}
		b.WriteString(strings.Join(rendered, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(st.from)
	for _, j := range st.joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	if len(st.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(st.where, " AND "))
	}
	if len(st.groupBy) > 0 {
		quoted := make([]string, len(st.groupBy))
		for i, col := range st.groupBy {
			quoted[i] = g.dialect.QuoteIdentifier(col)
		}
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(quoted, ", "))
	}
	if len(st.having) > 0 {
		b.WriteString(" HAVING ")
		b.WriteString(strings.Join(st.having, " AND "))
	}
	if len(st.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(st.orderBy, ", "))
	}
	if st.limit != nil {
		b.WriteString(" ")
		b.WriteString(g.dialect.LimitClause(*st.limit))
	}
	return b.String()
}
