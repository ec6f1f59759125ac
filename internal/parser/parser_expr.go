package parser

import (
	"strconv"

	"github.com/relc-lang/relc/internal/ast"
	"github.com/relc-lang/relc/internal/errors"
	"github.com/relc-lang/relc/internal/lexer"
)

// parseExpr is the entry point of the expression precedence ladder:
// logical-or -> logical-and -> comparison -> term.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseLogicalOr()
}

func (p *Parser) parseLogicalOr() ast.Expr {
	pos := p.curPos()
	left := p.parseLogicalAnd()
	for p.at(lexer.OROR) {
		p.advance()
		right := p.parseLogicalAnd()
		left = &ast.BinaryOpExpr{Base: ast.Base{Pos: pos}, Left: left, Op: "||", Right: right}
	}
	return left
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	pos := p.curPos()
	left := p.parseComparison()
	for p.at(lexer.ANDAND) {
		p.advance()
		right := p.parseComparison()
		left = &ast.BinaryOpExpr{Base: ast.Base{Pos: pos}, Left: left, Op: "&&", Right: right}
	}
	return left
}

var comparisonOps = map[lexer.TokenType]string{
	lexer.EQ: "==", lexer.EQEQEQ: "===", lexer.NEQ: "!=", lexer.NEQEQ: "!==",
	lexer.LT: "<", lexer.LTE: "<=", lexer.GT: ">", lexer.GTE: ">=",
	lexer.TILDE: "~", lexer.NOTTILDE: "!~",
}

func (p *Parser) parseComparison() ast.Expr {
	pos := p.curPos()
	left := p.parseTerm()
	for {
		op, ok := comparisonOps[p.cur().Type]
		if !ok {
			return left
		}
		p.advance()
		right := p.parseTerm()
		left = &ast.BinaryOpExpr{Base: ast.Base{Pos: pos}, Left: left, Op: op, Right: right}
	}
}

var termOps = map[lexer.TokenType]string{
	lexer.PLUS: "+", lexer.MINUS: "-", lexer.STAR: "*", lexer.SLASH: "/", lexer.PERCENT: "%",
}

// parseTerm parses left-associative binary arithmetic over unary/postfix
// operands.
func (p *Parser) parseTerm() ast.Expr {
	pos := p.curPos()
	left := p.parseUnary()
	for {
		op, ok := termOps[p.cur().Type]
		if !ok {
			return left
		}
		p.advance()
		right := p.parseUnary()
		left = &ast.BinaryOpExpr{Base: ast.Base{Pos: pos}, Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	pos := p.curPos()
	if p.at(lexer.BANG) || p.at(lexer.MINUS) {
		op := p.advance().Lexeme
		operand := p.parseUnary()
		return &ast.UnaryOpExpr{Base: ast.Base{Pos: pos}, Op: op, Operand: operand}
	}
	return p.parsePostfix()
}

// parsePostfix handles `.field`/`.method(args)` chains and the `..` range
// operator trailing a primary expression.
func (p *Parser) parsePostfix() ast.Expr {
	pos := p.curPos()
	expr := p.parsePrimaryExpr()
	for {
		switch {
		case p.at(lexer.DOT):
			p.advance()
			name := p.expectIdentLike()
			if p.at(lexer.LPAREN) {
				p.advance()
				args := p.parseExprListUntil(lexer.RPAREN)
				p.expect(lexer.RPAREN)
				expr = &ast.MethodCallExpr{Base: ast.Base{Pos: pos}, ReceiverPath: pathOf(expr), Method: name, Args: args}
			} else {
				expr = &ast.FieldAccessExpr{Base: ast.Base{Pos: pos}, Path: append(pathOf(expr), name)}
			}
		case p.at(lexer.DOTDOT):
			p.advance()
			end := p.parsePrimaryExpr()
			expr = &ast.RangeExpr{Base: ast.Base{Pos: pos}, Start: expr, End: end}
		default:
			return expr
		}
	}
}

// pathOf extracts the dotted-path segments accumulated so far from an
// expression built by parsePostfix, so a following `.name` can extend it.
func pathOf(e ast.Expr) []string {
	switch n := e.(type) {
	case *ast.IdentifierExpr:
		return []string{n.Name}
	case *ast.VariableRef:
		return []string{"::" + n.Name}
	case *ast.FieldAccessExpr:
		out := make([]string, len(n.Path))
		copy(out, n.Path)
		return out
	default:
		return nil
	}
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	pos := p.curPos()
	tok := p.cur()

	switch tok.Type {
	case lexer.String:
		p.advance()
		return &ast.StringLit{Base: ast.Base{Pos: pos}, Value: tok.Lexeme}
	case lexer.RawString:
		p.advance()
		return &ast.RawStringLit{Base: ast.Base{Pos: pos}, Value: tok.Lexeme}
	case lexer.Number:
		p.advance()
		f, _ := strconv.ParseFloat(tok.Lexeme, 64)
		return &ast.NumberLit{Base: ast.Base{Pos: pos}, Value: f, Raw: tok.Lexeme}
	case lexer.Boolean:
		p.advance()
		return &ast.BoolLit{Base: ast.Base{Pos: pos}, Value: tok.Lexeme == "true"}
	case lexer.Null:
		p.advance()
		return &ast.NullLit{Base: ast.Base{Pos: pos}}
	case lexer.Undefined:
		p.advance()
		return &ast.UndefinedLit{Base: ast.Base{Pos: pos}}
	case lexer.DCOLON:
		p.advance()
		name := p.expectIdentLike()
		return &ast.VariableRef{Base: ast.Base{Pos: pos}, Name: name}
	case lexer.Identifier, lexer.TypeName, lexer.Constraint:
		name := tok.Lexeme
		p.advance()
		if p.at(lexer.LPAREN) {
			p.advance()
			args := p.parseExprListUntil(lexer.RPAREN)
			p.expect(lexer.RPAREN)
			return &ast.FunctionCallExpr{Base: ast.Base{Pos: pos}, Name: name, Args: args}
		}
		return &ast.IdentifierExpr{Base: ast.Base{Pos: pos}, Name: name}
	case lexer.LPAREN:
		p.advance()
		inner := p.parseExpr()
		p.expect(lexer.RPAREN)
		return &ast.GroupExpr{Base: ast.Base{Pos: pos}, Inner: inner}
	case lexer.LBRACKET:
		p.advance()
		elems := p.parseExprListUntil(lexer.RBRACKET)
		p.expect(lexer.RBRACKET)
		return &ast.ArrayExpr{Base: ast.Base{Pos: pos}, Elems: elems}
	case lexer.LBRACE:
		return p.parseObjectExpr()
	case lexer.MINUS:
		// Reached only when a unary minus wasn't consumed by parseUnary,
		// e.g. a stray '-' at a primary position; treat as unary.
		p.advance()
		operand := p.parsePrimaryExpr()
		return &ast.UnaryOpExpr{Base: ast.Base{Pos: pos}, Op: "-", Operand: operand}
	default:
		p.errorf(errors.PAR001, "expected an expression, found %s %q", tok.Type, tok.Lexeme)
		if !p.atSyncPoint() {
			p.advance()
		}
		return &ast.IdentifierExpr{Base: ast.Base{Pos: pos}, Name: "<error>"}
	}
}

func (p *Parser) parseObjectExpr() ast.Expr {
	pos := p.curPos()
	p.expect(lexer.LBRACE)
	var entries []ast.ObjectEntry
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		var key string
		if p.at(lexer.String) {
			key = p.cur().Lexeme
			p.advance()
		} else {
			key = p.expectIdentLike()
		}
		p.expect(lexer.COLON)
		val := p.parseExpr()
		entries = append(entries, ast.ObjectEntry{Key: key, Value: val})
		p.accept(lexer.COMMA)
	}
	p.expect(lexer.RBRACE)
	return &ast.ObjectExpr{Base: ast.Base{Pos: pos}, Entries: entries}
}

// parseExprListUntil parses a comma-separated expression list up to (but
// not consuming) the end token.
func (p *Parser) parseExprListUntil(end lexer.TokenType) []ast.Expr {
	var exprs []ast.Expr
	if p.at(end) {
		return exprs
	}
	exprs = append(exprs, p.parseExpr())
	for p.accept(lexer.COMMA) {
		if p.at(end) {
			break
		}
		exprs = append(exprs, p.parseExpr())
	}
	return exprs
}
