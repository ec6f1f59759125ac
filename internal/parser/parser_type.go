package parser

import (
	"github.com/relc-lang/relc/internal/ast"
	"github.com/relc-lang/relc/internal/errors"
	"github.com/relc-lang/relc/internal/lexer"
)

// corePrimitiveKinds maps the lexemes that have a dedicated PrimitiveKind
// onto that kind; every other built-in type name (email, uuid, int, …)
// keeps Kind as a don't-care value and is identified by Name instead.
var corePrimitiveKinds = map[string]ast.PrimitiveKind{
	"string":  ast.KString,
	"number":  ast.KNumber,
	"boolean": ast.KBoolean,
	"object":  ast.KObject,
	"any":     ast.KAny,
	"unknown": ast.KUnknown,
}

func primitiveFromTypeName(pos ast.Pos, name string) *ast.Primitive {
	kind, ok := corePrimitiveKinds[name]
	if !ok {
		kind = ast.KAny
	}
	return &ast.Primitive{Base: ast.Base{Pos: pos}, Kind: kind, Name: name}
}

// parseType is the entry point of the type-expression precedence ladder:
// union (`|`) -> postfix array (`[]`) -> postfix constraint chain (`&`) ->
// primary.
func (p *Parser) parseType() ast.Type {
	return p.parseUnionType()
}

func (p *Parser) parseUnionType() ast.Type {
	pos := p.curPos()
	first := p.parseArrayType()
	if !p.at(lexer.PIPE) {
		return first
	}
	types := []ast.Type{first}
	for p.accept(lexer.PIPE) {
		types = append(types, p.parseArrayType())
	}
	return &ast.UnionType{Base: ast.Base{Pos: pos}, Types: types}
}

func (p *Parser) parseArrayType() ast.Type {
	pos := p.curPos()
	base := p.parseConstrainedType()
	for p.at(lexer.LBRACKET) && p.peekAt(1).Type == lexer.RBRACKET {
		p.advance()
		p.advance()
		base = &ast.ArrayType{Base: ast.Base{Pos: pos}, Inner: base}
	}
	return base
}

func (p *Parser) parseConstrainedType() ast.Type {
	pos := p.curPos()
	if p.at(lexer.AMP) {
		var constraints []*ast.Constraint
		for p.accept(lexer.AMP) {
			constraints = append(constraints, p.parseConstraint())
		}
		if len(constraints) == 1 && constraints[0].Kind == ast.CLiteral {
			return &ast.LiteralType{Base: ast.Base{Pos: pos}, Value: constraints[0].Value}
		}
		return &ast.ConstrainedType{
			Base:        ast.Base{Pos: pos},
			BaseType:    primitiveFromTypeName(pos, "any"),
			Constraints: constraints,
		}
	}

	base := p.parsePrimaryType()
	if !p.at(lexer.AMP) {
		return base
	}
	var constraints []*ast.Constraint
	for p.accept(lexer.AMP) {
		constraints = append(constraints, p.parseConstraint())
	}
	return &ast.ConstrainedType{Base: ast.Base{Pos: pos}, BaseType: base, Constraints: constraints}
}

func (p *Parser) parsePrimaryType() ast.Type {
	pos := p.curPos()
	tok := p.cur()

	switch tok.Type {
	case lexer.ASSIGN:
		p.advance()
		return &ast.LiteralType{Base: ast.Base{Pos: pos}, Value: p.parseExpr()}
	case lexer.LBRACE:
		return p.parseInlineObjectType()
	case lexer.When:
		cond := p.parseConditionalBlock()
		return &ast.ConditionalType{Base: ast.Base{Pos: pos}, Conditional: cond}
	case lexer.Null:
		p.advance()
		return &ast.Primitive{Base: ast.Base{Pos: pos}, Kind: ast.KNull, Name: "null"}
	case lexer.Undefined:
		p.advance()
		return &ast.Primitive{Base: ast.Base{Pos: pos}, Kind: ast.KUndefined, Name: "undefined"}
	case lexer.Identifier, lexer.TypeName, lexer.Constraint:
		isTypeName := tok.Type == lexer.TypeName
		name := tok.Lexeme
		p.advance()
		if p.accept(lexer.LT) {
			args := p.parseGenericArgs()
			return &ast.GenericType{Base: ast.Base{Pos: pos}, Name: name, Args: args}
		}
		if p.at(lexer.LPAREN) {
			p.advance()
			args := p.parseTypeCallArgs()
			return &ast.FunctionCallType{Base: ast.Base{Pos: pos}, Name: name, Args: args}
		}
		if isTypeName {
			return primitiveFromTypeName(pos, name)
		}
		return &ast.TypeIdentifier{Base: ast.Base{Pos: pos}, Name: name}
	default:
		p.errorf(errors.PAR001, "expected a type, found %s %q", tok.Type, tok.Lexeme)
		if !p.atSyncPoint() {
			p.advance()
		}
		return primitiveFromTypeName(pos, "any")
	}
}

func (p *Parser) parseInlineObjectType() ast.Type {
	pos := p.curPos()
	p.expect(lexer.LBRACE)
	fields := p.parseFieldList(lexer.RBRACE)
	p.expect(lexer.RBRACE)
	return &ast.InlineObjectType{Base: ast.Base{Pos: pos}, Fields: fields}
}

func (p *Parser) parseGenericArgs() []ast.Type {
	var args []ast.Type
	if p.at(lexer.GT) {
		p.advance()
		return args
	}
	args = append(args, p.parseType())
	for p.accept(lexer.COMMA) {
		args = append(args, p.parseType())
	}
	p.expect(lexer.GT)
	return args
}

func (p *Parser) parseTypeCallArgs() []ast.Expr {
	var args []ast.Expr
	if p.at(lexer.RPAREN) {
		p.advance()
		return args
	}
	args = p.parseExprListUntil(lexer.RPAREN)
	p.expect(lexer.RPAREN)
	return args
}

// parseConstraint parses one link of a `&`-chained constraint list: a name
// drawn from the Identifier/TypeName/Constraint classes, with an optional
// parenthesized argument list.
func (p *Parser) parseConstraint() *ast.Constraint {
	pos := p.curPos()
	name := p.expectIdentLike()
	kind, ok := ast.LookupConstraintKind(name)
	if !ok {
		p.errorf(errors.PAR003, "unknown constraint %q", name)
	}

	var value ast.Expr
	if p.accept(lexer.LPAREN) {
		args := p.parseExprListUntil(lexer.RPAREN)
		p.expect(lexer.RPAREN)
		switch {
		case len(args) == 0:
			value = nil
		case len(args) == 1:
			value = args[0]
		case len(args) == 2 && kind == ast.CBetween:
			value = &ast.RangeExpr{Base: ast.Base{Pos: pos}, Start: args[0], End: args[1]}
		default:
			value = &ast.ArrayExpr{Base: ast.Base{Pos: pos}, Elems: args}
		}
	}

	return &ast.Constraint{Base: ast.Base{Pos: pos}, Kind: kind, Name: name, Value: value}
}
