// Package parser implements a recursive-descent parser that lowers a
// dplyr pipeline's token stream into an ast.Pipeline.
package parser

import (
	"fmt"
	"sync"

	"github.com/freeeve/dplyrsql/ast"
	"github.com/freeeve/dplyrsql/lexer"
	"github.com/freeeve/dplyrsql/token"
)

// ErrorKind classifies a parse failure, matching spec §4.2's taxonomy.
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	UnexpectedEOF
	InvalidPipeline
	MalformedArgument
	UnknownVerb
)

// ParseError reports a parse failure with position and a kind for
// downstream suggestion lookup (spec §7).
type ParseError struct {
	Kind     ErrorKind
	Expected string
	Found    string
	Name     string // set for UnknownVerb
	Pos      token.Pos
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case UnexpectedEOF:
		return fmt.Sprintf("line %d, column %d: unexpected end of input", e.Pos.Line, e.Pos.Column)
	case InvalidPipeline:
		return fmt.Sprintf("line %d, column %d: invalid pipeline: %s", e.Pos.Line, e.Pos.Column, e.Found)
	case MalformedArgument:
		return fmt.Sprintf("line %d, column %d: malformed argument: %s", e.Pos.Line, e.Pos.Column, e.Found)
	case UnknownVerb:
		return fmt.Sprintf("line %d, column %d: unknown verb %q", e.Pos.Line, e.Pos.Column, e.Name)
	default:
		return fmt.Sprintf("line %d, column %d: unexpected token %q, expected %s", e.Pos.Line, e.Pos.Column, e.Found, e.Expected)
	}
}

// Parser is a recursive-descent parser for one dplyr pipeline.
type Parser struct {
	lexer *lexer.Lexer
	cur   token.Item
	err   *ParseError
}

var parserPool = sync.Pool{
	New: func() any { return &Parser{} },
}

// New creates a Parser over source and primes the first token.
func New(source string) *Parser {
	p := &Parser{lexer: lexer.New(source)}
	p.advance()
	return p
}

// Get returns a pooled Parser for source. Call Put when done.
func Get(source string) *Parser {
	p := parserPool.Get().(*Parser)
	p.lexer = lexer.Get(source)
	p.cur = token.Item{}
	p.err = nil
	p.advance()
	return p
}

// Put returns p and its lexer to the pool.
func Put(p *Parser) {
	if p.lexer != nil {
		lexer.Put(p.lexer)
		p.lexer = nil
	}
	parserPool.Put(p)
}

func (p *Parser) advance() {
	if p.err != nil {
		return
	}
	item, err := p.lexer.Next()
	if err != nil {
		p.err = &ParseError{Kind: UnexpectedToken, Found: err.Error(), Pos: item.Pos}
		p.cur = item
		return
	}
	p.cur = item
}

func (p *Parser) curIs(t token.Token) bool { return p.cur.Type == t }

func (p *Parser) peek() token.Item {
	item, err := p.lexer.Peek()
	if err != nil {
		return token.Item{Type: token.ILLEGAL}
	}
	return item
}

func (p *Parser) fail(kind ErrorKind, expected string) {
	if p.err != nil {
		return
	}
	p.err = &ParseError{Kind: kind, Expected: expected, Found: p.cur.Value, Pos: p.cur.Pos}
	if p.cur.Type == token.EOF {
		p.err.Kind = UnexpectedEOF
	}
}

// expect consumes the current token if it matches t, else records a
// parse error and leaves the token stream positioned at the failure.
func (p *Parser) expect(t token.Token, desc string) bool {
	if p.err != nil {
		return false
	}
	if !p.curIs(t) {
		p.fail(UnexpectedToken, desc)
		return false
	}
	p.advance()
	return true
}

func (p *Parser) ok() bool { return p.err == nil }

// Parse parses the full program: Primary ('%>%' Verb)*.
func (p *Parser) Parse() (*ast.Pipeline, error) {
	if p.curIs(token.EOF) {
		return nil, &ParseError{Kind: InvalidPipeline, Found: "empty input", Pos: token.Pos{Line: 1, Column: 1}}
	}
	startPos := p.cur.Pos

	pipeline := &ast.Pipeline{Location: startPos}

	if p.curIs(token.IDENT) {
		pipeline.Source = p.cur.Value
		pipeline.HasSource = true
		p.advance()
		if p.curIs(token.EOF) {
			if p.err != nil {
				return nil, p.err
			}
			return pipeline, nil
		}
		if !p.expect(token.PIPE, "%>%") {
			return nil, p.err
		}
	}

	for {
		op := p.parseVerb()
		if !p.ok() {
			return nil, p.err
		}
		pipeline.Operations = append(pipeline.Operations, op)
		if p.curIs(token.PIPE) {
			p.advance()
			continue
		}
		break
	}

	if !p.curIs(token.EOF) {
		p.fail(UnexpectedToken, "end of input")
		return nil, p.err
	}
	if len(pipeline.Operations) == 0 && !pipeline.HasSource {
		return nil, &ParseError{Kind: InvalidPipeline, Found: "empty input", Pos: startPos}
	}
	return pipeline, nil
}

func (p *Parser) parseVerb() ast.Operation {
	switch p.cur.Type {
	case token.SELECT:
		return p.parseSelect()
	case token.FILTER:
		return p.parseFilter()
	case token.MUTATE:
		return p.parseMutate()
	case token.RENAME:
		return p.parseRename()
	case token.ARRANGE:
		return p.parseArrange()
	case token.GROUP_BY:
		return p.parseGroupBy()
	case token.SUMMARISE:
		return p.parseSummarise()
	case token.INNER_JOIN, token.LEFT_JOIN, token.RIGHT_JOIN, token.FULL_JOIN, token.SEMI_JOIN, token.ANTI_JOIN:
		return p.parseJoin()
	default:
		p.err = &ParseError{Kind: UnknownVerb, Name: p.cur.Value, Pos: p.cur.Pos}
		return nil
	}
}

func (p *Parser) parseSelect() ast.Operation {
	pos := p.cur.Pos
	p.advance()
	if !p.expect(token.LPAREN, "(") {
		return nil
	}
	var columns []ast.ColumnExpr
	for !p.curIs(token.RPAREN) && p.ok() {
		columns = append(columns, p.parseColumnExpr())
		if !p.ok() {
			return nil
		}
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if !p.expect(token.RPAREN, ")") {
		return nil
	}
	return &ast.Select{Columns: columns, Location: pos}
}

// parseColumnExpr parses either a bare identifier/expression, or an
// `alias = expr` named column.
func (p *Parser) parseColumnExpr() ast.ColumnExpr {
	if p.curIs(token.IDENT) && p.peek().Type == token.EQ {
		alias := p.cur.Value
		p.advance()
		p.advance() // consume '='
		expr := p.parseOr()
		return ast.ColumnExpr{Expr: expr, Alias: alias}
	}
	expr := p.parseOr()
	return ast.ColumnExpr{Expr: expr}
}

func (p *Parser) parseFilter() ast.Operation {
	pos := p.cur.Pos
	p.advance()
	if !p.expect(token.LPAREN, "(") {
		return nil
	}
	cond := p.parseOr()
	if !p.ok() {
		return nil
	}
	if !p.expect(token.RPAREN, ")") {
		return nil
	}
	return &ast.Filter{Condition: cond, Location: pos}
}

func (p *Parser) parseMutate() ast.Operation {
	pos := p.cur.Pos
	p.advance()
	if !p.expect(token.LPAREN, "(") {
		return nil
	}
	var assignments []ast.Assignment
	for {
		if !p.curIs(token.IDENT) {
			p.fail(MalformedArgument, "column = expr")
			return nil
		}
		col := p.cur.Value
		p.advance()
		if !p.expect(token.EQ, "=") {
			return nil
		}
		expr := p.parseOr()
		if !p.ok() {
			return nil
		}
		assignments = append(assignments, ast.Assignment{Column: col, Expr: expr})
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if len(assignments) == 0 {
		p.fail(MalformedArgument, "at least one assignment")
		return nil
	}
	if !p.expect(token.RPAREN, ")") {
		return nil
	}
	return &ast.Mutate{Assignments: assignments, Location: pos}
}

func (p *Parser) parseRename() ast.Operation {
	pos := p.cur.Pos
	p.advance()
	if !p.expect(token.LPAREN, "(") {
		return nil
	}
	var renames []ast.RenamePair
	for {
		if !p.curIs(token.IDENT) {
			p.fail(MalformedArgument, "new = old")
			return nil
		}
		newName := p.cur.Value
		p.advance()
		if !p.expect(token.EQ, "=") {
			return nil
		}
		if !p.curIs(token.IDENT) {
			p.fail(MalformedArgument, "identifier")
			return nil
		}
		oldName := p.cur.Value
		p.advance()
		renames = append(renames, ast.RenamePair{NewName: newName, OldName: oldName})
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if len(renames) == 0 {
		p.fail(MalformedArgument, "at least one rename pair")
		return nil
	}
	if !p.expect(token.RPAREN, ")") {
		return nil
	}
	return &ast.Rename{Renames: renames, Location: pos}
}

// parseArrange desugars desc(col) into a descending OrderExpr; any
// other bare identifier is ascending (spec §3).
func (p *Parser) parseArrange() ast.Operation {
	pos := p.cur.Pos
	p.advance()
	if !p.expect(token.LPAREN, "(") {
		return nil
	}
	var columns []ast.OrderExpr
	for !p.curIs(token.RPAREN) && p.ok() {
		columns = append(columns, p.parseOrderExpr())
		if !p.ok() {
			return nil
		}
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if !p.expect(token.RPAREN, ")") {
		return nil
	}
	return &ast.Arrange{Columns: columns, Location: pos}
}

func (p *Parser) parseOrderExpr() ast.OrderExpr {
	if p.curIs(token.DESC) {
		p.advance()
		if !p.expect(token.LPAREN, "(") {
			return ast.OrderExpr{}
		}
		if !p.curIs(token.IDENT) {
			p.fail(MalformedArgument, "identifier")
			return ast.OrderExpr{}
		}
		col := p.cur.Value
		p.advance()
		if !p.expect(token.RPAREN, ")") {
			return ast.OrderExpr{}
		}
		return ast.OrderExpr{Column: col, Direction: ast.Desc}
	}
	if p.curIs(token.ASC) {
		p.advance()
		if !p.expect(token.LPAREN, "(") {
			return ast.OrderExpr{}
		}
		if !p.curIs(token.IDENT) {
			p.fail(MalformedArgument, "identifier")
			return ast.OrderExpr{}
		}
		col := p.cur.Value
		p.advance()
		if !p.expect(token.RPAREN, ")") {
			return ast.OrderExpr{}
		}
		return ast.OrderExpr{Column: col, Direction: ast.Asc}
	}
	if !p.curIs(token.IDENT) {
		p.fail(MalformedArgument, "identifier, asc(...), or desc(...)")
		return ast.OrderExpr{}
	}
	col := p.cur.Value
	p.advance()
	return ast.OrderExpr{Column: col, Direction: ast.Asc}
}

func (p *Parser) parseGroupBy() ast.Operation {
	pos := p.cur.Pos
	p.advance()
	if !p.expect(token.LPAREN, "(") {
		return nil
	}
	var columns []string
	for {
		if !p.curIs(token.IDENT) {
			p.fail(MalformedArgument, "identifier")
			return nil
		}
		columns = append(columns, p.cur.Value)
		p.advance()
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if len(columns) == 0 {
		p.fail(MalformedArgument, "at least one column")
		return nil
	}
	if !p.expect(token.RPAREN, ")") {
		return nil
	}
	return &ast.GroupBy{Columns: columns, Location: pos}
}

func (p *Parser) parseSummarise() ast.Operation {
	pos := p.cur.Pos
	p.advance()
	if !p.expect(token.LPAREN, "(") {
		return nil
	}
	var aggs []ast.Aggregation
	for {
		agg := p.parseAggregation()
		if !p.ok() {
			return nil
		}
		aggs = append(aggs, agg)
		if p.curIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if len(aggs) == 0 {
		p.fail(MalformedArgument, "at least one aggregation")
		return nil
	}
	if !p.expect(token.RPAREN, ")") {
		return nil
	}
	return &ast.Summarise{Aggregations: aggs, Location: pos}
}

// parseAggregation parses `alias = fn(col)` or `alias = n()`.
func (p *Parser) parseAggregation() ast.Aggregation {
	if !p.curIs(token.IDENT) {
		p.fail(MalformedArgument, "alias = function(column)")
		return ast.Aggregation{}
	}
	alias := p.cur.Value
	p.advance()
	if !p.expect(token.EQ, "=") {
		return ast.Aggregation{}
	}
	if !p.curIs(token.IDENT) {
		p.fail(MalformedArgument, "function call")
		return ast.Aggregation{}
	}
	fn := p.cur.Value
	p.advance()
	if !p.expect(token.LPAREN, "(") {
		return ast.Aggregation{}
	}
	var col string
	if !p.curIs(token.RPAREN) {
		if !p.curIs(token.IDENT) {
			p.fail(MalformedArgument, "column")
			return ast.Aggregation{}
		}
		col = p.cur.Value
		p.advance()
	}
	if !p.expect(token.RPAREN, ")") {
		return ast.Aggregation{}
	}
	return ast.Aggregation{Function: fn, Column: col, Alias: alias}
}

var joinKinds = map[token.Token]ast.JoinType{
	token.INNER_JOIN: ast.InnerJoin,
	token.LEFT_JOIN:  ast.LeftJoin,
	token.RIGHT_JOIN: ast.RightJoin,
	token.FULL_JOIN:  ast.FullJoin,
	token.SEMI_JOIN:  ast.SemiJoin,
	token.ANTI_JOIN:  ast.AntiJoin,
}

// parseJoin parses `{kind}_join(table, by = expr)`.
func (p *Parser) parseJoin() ast.Operation {
	pos := p.cur.Pos
	kind := joinKinds[p.cur.Type]
	p.advance()
	if !p.expect(token.LPAREN, "(") {
		return nil
	}
	if !p.curIs(token.IDENT) {
		p.fail(MalformedArgument, "table name")
		return nil
	}
	table := p.cur.Value
	p.advance()
	var on ast.Expr
	if p.curIs(token.COMMA) {
		p.advance()
		if p.curIs(token.IDENT) && p.cur.Value == "by" {
			p.advance()
			if !p.expect(token.EQ, "=") {
				return nil
			}
		}
		on = p.parseOr()
		if !p.ok() {
			return nil
		}
	}
	if !p.expect(token.RPAREN, ")") {
		return nil
	}
	return &ast.Join{Kind: kind, Spec: ast.JoinSpec{Table: table, On: on}, Location: pos}
}
