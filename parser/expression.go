package parser

import (
	"strconv"

	"github.com/freeeve/dplyrsql/ast"
	"github.com/freeeve/dplyrsql/token"
)

// Expression grammar, precedence lowest to highest:
//
//	Or       := And ( '|' And )*
//	And      := Comp ( '&' Comp )*
//	Comp     := Sum ( ( '=='|'!='|'<'|'<='|'>'|'>=' ) Sum )?
//	Sum      := Product ( ( '+'|'-' ) Product )*
//	Product  := Unary ( ( '*'|'/' ) Unary )*
//	Unary    := '-' Unary | Primary
//	Primary  := Literal | Identifier | FunctionCall | '(' Or ')'

var compareOps = map[token.Token]ast.BinaryOp{
	token.EQEQ: ast.OpEq,
	token.NEQ:  ast.OpNeq,
	token.LT:   ast.OpLt,
	token.LTE:  ast.OpLte,
	token.GT:   ast.OpGt,
	token.GTE:  ast.OpGte,
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.ok() && p.curIs(token.OR) {
		pos := p.cur.Pos
		p.advance()
		right := p.parseAnd()
		if !p.ok() {
			return nil
		}
		left = &ast.Binary{Left: left, Op: ast.OpOr, Right: right, Location: pos}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseComp()
	for p.ok() && p.curIs(token.AND) {
		pos := p.cur.Pos
		p.advance()
		right := p.parseComp()
		if !p.ok() {
			return nil
		}
		left = &ast.Binary{Left: left, Op: ast.OpAnd, Right: right, Location: pos}
	}
	return left
}

func (p *Parser) parseComp() ast.Expr {
	left := p.parseSum()
	if !p.ok() {
		return nil
	}
	if op, isCompare := compareOps[p.cur.Type]; isCompare {
		pos := p.cur.Pos
		p.advance()
		right := p.parseSum()
		if !p.ok() {
			return nil
		}
		return &ast.Binary{Left: left, Op: op, Right: right, Location: pos}
	}
	return left
}

func (p *Parser) parseSum() ast.Expr {
	left := p.parseProduct()
	for p.ok() && (p.curIs(token.PLUS) || p.curIs(token.MINUS)) {
		op := ast.OpAdd
		if p.curIs(token.MINUS) {
			op = ast.OpSub
		}
		pos := p.cur.Pos
		p.advance()
		right := p.parseProduct()
		if !p.ok() {
			return nil
		}
		left = &ast.Binary{Left: left, Op: op, Right: right, Location: pos}
	}
	return left
}

func (p *Parser) parseProduct() ast.Expr {
	left := p.parseUnary()
	for p.ok() && (p.curIs(token.STAR) || p.curIs(token.SLASH)) {
		op := ast.OpMul
		if p.curIs(token.SLASH) {
			op = ast.OpDiv
		}
		pos := p.cur.Pos
		p.advance()
		right := p.parseUnary()
		if !p.ok() {
			return nil
		}
		left = &ast.Binary{Left: left, Op: op, Right: right, Location: pos}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.curIs(token.MINUS) {
		pos := p.cur.Pos
		p.advance()
		operand := p.parseUnary()
		if !p.ok() {
			return nil
		}
		if lit, isNum := operand.(*ast.Literal); isNum && lit.Kind == ast.LitNumber {
			lit.Num = -lit.Num
			lit.Location = pos
			return lit
		}
		return &ast.Binary{
			Left:     &ast.Literal{Kind: ast.LitNumber, Num: 0, Location: pos},
			Op:       ast.OpSub,
			Right:    operand,
			Location: pos,
		}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.cur.Type {
	case token.LPAREN:
		p.advance()
		inner := p.parseOr()
		if !p.ok() {
			return nil
		}
		if !p.expect(token.RPAREN, ")") {
			return nil
		}
		return inner
	case token.STRING:
		lit := &ast.Literal{Kind: ast.LitString, Str: p.cur.Value, Location: p.cur.Pos}
		p.advance()
		return lit
	case token.INT, token.FLOAT:
		n, err := strconv.ParseFloat(p.cur.Value, 64)
		if err != nil {
			p.fail(MalformedArgument, "numeric literal")
			return nil
		}
		lit := &ast.Literal{Kind: ast.LitNumber, Num: n, Location: p.cur.Pos}
		p.advance()
		return lit
	case token.TRUE:
		lit := &ast.Literal{Kind: ast.LitBool, Bool: true, Location: p.cur.Pos}
		p.advance()
		return lit
	case token.FALSE:
		lit := &ast.Literal{Kind: ast.LitBool, Bool: false, Location: p.cur.Pos}
		p.advance()
		return lit
	case token.NULL:
		lit := &ast.Literal{Kind: ast.LitNull, Location: p.cur.Pos}
		p.advance()
		return lit
	case token.IDENT:
		name := p.cur.Value
		pos := p.cur.Pos
		p.advance()
		if p.curIs(token.LPAREN) {
			return p.parseFunctionCall(name, pos)
		}
		return &ast.Identifier{Name: name, Location: pos}
	case token.DESC, token.ASC:
		// desc/asc always lex as keywords. Outside arrange() a desc/asc
		// followed by '(' parses as an ordinary function call, and a bare
		// desc/asc parses as a column of that name.
		name := p.cur.Value
		pos := p.cur.Pos
		p.advance()
		if p.curIs(token.LPAREN) {
			return p.parseFunctionCall(name, pos)
		}
		return &ast.Identifier{Name: name, Location: pos}
	default:
		p.fail(UnexpectedToken, "expression")
		return nil
	}
}

func (p *Parser) parseFunctionCall(name string, pos token.Pos) ast.Expr {
	p.advance() // consume '('
	var args []ast.Expr
	for !p.curIs(token.RPAREN) && p.ok() {
		args = append(args, p.parseOr())
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
	return &ast.Call{Name: name, Args: args, Location: pos}
}
