package parser

import (
	"fmt"

	"github.com/relc-lang/relc/internal/ast"
	"github.com/relc-lang/relc/internal/errors"
	"github.com/relc-lang/relc/internal/lexer"
)

// parseSchema parses:
//
//	define Name (<G1, G2,...>)? (extends Parent)? (with M1, M2,...)? { body }
func (p *Parser) parseSchema() *ast.Schema {
	pos := p.curPos()
	p.expect(lexer.Define)
	name := p.expectIdentLike()

	var generics []string
	if p.accept(lexer.LT) {
		generics = append(generics, p.expectIdentLike())
		for p.accept(lexer.COMMA) {
			generics = append(generics, p.expectIdentLike())
		}
		p.expect(lexer.GT)
	}

	var extends string
	if p.accept(lexer.Extends) {
		extends = p.expectIdentLike()
	}

	var mixins []string
	if p.accept(lexer.With) {
		mixins = append(mixins, p.expectIdentLike())
		for p.accept(lexer.COMMA) {
			mixins = append(mixins, p.expectIdentLike())
		}
	}

	p.expect(lexer.LBRACE)
	fields, validations := p.parseSchemaBody()
	p.expect(lexer.RBRACE)

	return &ast.Schema{
		Base:        ast.Base{Pos: pos},
		Name:        name,
		Generics:    generics,
		Extends:     extends,
		Mixins:      mixins,
		Fields:      fields,
		Validations: validations,
	}
}

// parseSchemaBody parses the sequence of fields, leading `when` conditional
// blocks (which become synthetic "conditional_<index>" fields), and
// free-standing `validate` statements that make up a schema body.
func (p *Parser) parseSchemaBody() ([]*ast.Field, []*ast.Validation) {
	var fields []*ast.Field
	var validations []*ast.Validation
	condIdx := 0

	for !p.at(lexer.RBRACE) && !p.atEOF() {
		startPos := p.pos
		switch {
		case p.at(lexer.When):
			pos := p.curPos()
			cond := p.parseConditionalBlock()
			fields = append(fields, &ast.Field{
				Base: ast.Base{Pos: pos},
				Name: fmt.Sprintf("conditional_%d", condIdx),
				Type: &ast.ConditionalType{Base: ast.Base{Pos: pos}, Conditional: cond},
			})
			condIdx++
		case p.isValidateKeyword():
			validations = append(validations, p.parseValidationStmt())
		default:
			fields = append(fields, p.parseField(true))
		}
		p.accept(lexer.COMMA)
		if p.pos == startPos {
			// A derailed field made no progress; hand the stream back to
			// the top-level recovery loop.
			break
		}
	}
	return fields, validations
}

// parseFieldList parses a plain, comma-optional list of fields, used for
// inline-object type bodies and mixin bodies (no leading `when`/`validate`
// forms).
func (p *Parser) parseFieldList(end lexer.TokenType) []*ast.Field {
	var fields []*ast.Field
	for !p.at(end) && !p.atEOF() {
		startPos := p.pos
		fields = append(fields, p.parseField(false))
		p.accept(lexer.COMMA)
		if p.pos == startPos {
			break
		}
	}
	return fields
}

// parseField parses:
//
//	name: Type (?)? (= expr)? (when cond {…} (else … )?)* (validate …)*
//
// Inside a schema body (inSchemaBody), a trailing `when` attaches to the
// field only when it starts on the same line as the token before it; a
// `when` that begins a new line is left for parseSchemaBody, which turns it
// into a schema-level conditional_<n> block.
func (p *Parser) parseField(inSchemaBody bool) *ast.Field {
	pos := p.curPos()
	name := p.expectIdentLike()
	// The `?` may attach to the name (`name?: T`) or trail the type
	// (`name: T?`); both mark the field optional.
	optional := p.accept(lexer.QMARK)
	p.expect(lexer.COLON)
	typ := p.parseType()

	if p.accept(lexer.QMARK) {
		optional = true
	}

	var def ast.Expr
	if p.accept(lexer.ASSIGN) {
		def = p.parseExpr()
	}

	var conditionals []*ast.Conditional
	for p.at(lexer.When) {
		if inSchemaBody && p.pos > 0 && p.cur().Line != p.toks[p.pos-1].Line {
			break
		}
		conditionals = append(conditionals, p.parseConditionalBlock())
	}

	var validations []*ast.Validation
	for p.isValidateKeyword() {
		validations = append(validations, p.parseValidationStmt())
	}

	return &ast.Field{
		Base:         ast.Base{Pos: pos},
		Name:         name,
		Type:         typ,
		Optional:     optional,
		Default:      def,
		Conditionals: conditionals,
		Validations:  validations,
	}
}

func (p *Parser) isValidateKeyword() bool {
	return p.at(lexer.Identifier) && p.cur().Lexeme == "validate"
}

// parseValidationStmt parses `validate <expr> (, "message")?`.
func (p *Parser) parseValidationStmt() *ast.Validation {
	pos := p.curPos()
	p.advance() // "validate"
	rule := p.parseExpr()
	var message string
	if p.accept(lexer.COMMA) {
		if p.at(lexer.String) {
			message = p.cur().Lexeme
			p.advance()
		} else {
			p.errorf(errors.PAR001, "expected string message after ','")
		}
	}
	p.accept(lexer.SEMI)
	return &ast.Validation{Base: ast.Base{Pos: pos}, Rule: rule, Message: message}
}

// parseConditionalBlock parses:
//
//	when expr { fields… } (else when … | else { fields… })?
func (p *Parser) parseConditionalBlock() *ast.Conditional {
	pos := p.curPos()
	p.expect(lexer.When)
	cond := p.parseExpr()
	p.expect(lexer.LBRACE)
	thenFields := p.parseFieldList(lexer.RBRACE)
	p.expect(lexer.RBRACE)

	var elseType ast.Type
	var elseFields []*ast.Field
	if p.accept(lexer.Else) {
		if p.at(lexer.When) {
			nested := p.parseConditionalBlock()
			elseType = &ast.ConditionalType{Base: ast.Base{Pos: p.curPos()}, Conditional: nested}
		} else {
			p.expect(lexer.LBRACE)
			elseFields = p.parseFieldList(lexer.RBRACE)
			p.expect(lexer.RBRACE)
		}
	}

	var thenType ast.Type
	if len(thenFields) == 1 {
		thenType = thenFields[0].Type
	} else {
		thenType = &ast.Primitive{Base: ast.Base{Pos: pos}, Kind: ast.KObject, Name: "object"}
	}

	return &ast.Conditional{
		Base:       ast.Base{Pos: pos},
		Condition:  cond,
		ThenType:   thenType,
		ElseType:   elseType,
		ThenFields: thenFields,
		ElseFields: elseFields,
	}
}

// parseImport parses `import { a, b } from "path" (as alias)?`.
func (p *Parser) parseImport() *ast.Import {
	pos := p.curPos()
	p.expect(lexer.Import)
	p.expect(lexer.LBRACE)
	var items []string
	if !p.at(lexer.RBRACE) {
		items = append(items, p.expectIdentLike())
		for p.accept(lexer.COMMA) {
			items = append(items, p.expectIdentLike())
		}
	}
	p.expect(lexer.RBRACE)
	p.expect(lexer.From)
	path := ""
	if p.at(lexer.String) {
		path = p.cur().Lexeme
		p.advance()
	} else {
		p.errorf(errors.PAR005, "expected string path in import statement")
	}
	var alias string
	if p.accept(lexer.As) {
		alias = p.expectIdentLike()
	}
	p.accept(lexer.SEMI)
	return &ast.Import{Base: ast.Base{Pos: pos}, Path: path, Items: items, Alias: alias}
}

// parseExport parses `export A, B, C`.
func (p *Parser) parseExport() *ast.Export {
	pos := p.curPos()
	p.expect(lexer.Export)
	var items []string
	items = append(items, p.expectIdentLike())
	for p.accept(lexer.COMMA) {
		items = append(items, p.expectIdentLike())
	}
	p.accept(lexer.SEMI)
	return &ast.Export{Base: ast.Base{Pos: pos}, Items: items}
}

// parseEnum parses `enum Name { v1, v2, ... }`.
func (p *Parser) parseEnum() *ast.Enum {
	pos := p.curPos()
	p.expect(lexer.Enum)
	name := p.expectIdentLike()
	p.expect(lexer.LBRACE)
	var values []string
	for !p.at(lexer.RBRACE) && !p.atEOF() {
		if p.at(lexer.String) {
			values = append(values, p.cur().Lexeme)
			p.advance()
		} else {
			values = append(values, p.expectIdentLike())
		}
		p.accept(lexer.COMMA)
	}
	p.expect(lexer.RBRACE)
	return &ast.Enum{Base: ast.Base{Pos: pos}, Name: name, Values: values}
}

// parseTypeAliasTop parses the top-level `type Name = Type` form.
func (p *Parser) parseTypeAliasTop() *ast.TypeAlias {
	pos := p.curPos()
	p.expect(lexer.Type)
	name := p.expectIdentLike()
	p.expect(lexer.ASSIGN)
	typ := p.parseType()
	p.accept(lexer.SEMI)
	return &ast.TypeAlias{Base: ast.Base{Pos: pos}, Name: name, Type: typ}
}

// parseVariableTop parses the top-level `let name = expr` form.
func (p *Parser) parseVariableTop() *ast.Variable {
	pos := p.curPos()
	p.expect(lexer.Let)
	name := p.expectIdentLike()
	p.expect(lexer.ASSIGN)
	val := p.parseExpr()
	p.accept(lexer.SEMI)
	return &ast.Variable{Base: ast.Base{Pos: pos}, Name: name, Value: val}
}

// parseMixin parses `mixin Name { fields }`.
func (p *Parser) parseMixin() *ast.Mixin {
	pos := p.curPos()
	p.expect(lexer.Mixin)
	name := p.expectIdentLike()
	p.expect(lexer.LBRACE)
	fields := p.parseFieldList(lexer.RBRACE)
	p.expect(lexer.RBRACE)
	return &ast.Mixin{Base: ast.Base{Pos: pos}, Name: name, Fields: fields}
}

// parseDeclare parses `declare var name (: type)? = expr` or
// `declare type name = type`.
func (p *Parser) parseDeclare() ast.Stmt {
	pos := p.curPos()
	p.expect(lexer.Declare)
	switch {
	case p.accept(lexer.Var):
		name := p.expectIdentLike()
		var typ ast.Type
		if p.accept(lexer.COLON) {
			typ = p.parseType()
		}
		p.expect(lexer.ASSIGN)
		val := p.parseExpr()
		p.accept(lexer.SEMI)
		return &ast.DeclareVar{Base: ast.Base{Pos: pos}, Name: name, Type: typ, Value: val}
	case p.accept(lexer.Type):
		name := p.expectIdentLike()
		p.expect(lexer.ASSIGN)
		typ := p.parseType()
		p.accept(lexer.SEMI)
		return &ast.DeclareType{Base: ast.Base{Pos: pos}, Name: name, Type: typ}
	default:
		p.errorf(errors.PAR001, "expected 'var' or 'type' after 'declare'")
		p.synchronize()
		return nil
	}
}

// parseFunction parses:
//
//	@fn name(param: Type, …) -> type { (body statements …)? return type }
func (p *Parser) parseFunction() *ast.Function {
	pos := p.curPos()
	p.expect(lexer.AT)
	p.expect(lexer.Fn)
	name := p.expectIdentLike()
	p.expect(lexer.LPAREN)

	var params []ast.Param
	if !p.at(lexer.RPAREN) {
		params = append(params, p.parseParam())
		for p.accept(lexer.COMMA) {
			params = append(params, p.parseParam())
		}
	}
	p.expect(lexer.RPAREN)

	if !p.accept(lexer.ARROW) {
		p.accept(lexer.FARROW)
	}
	returnKind := p.parseType()

	p.expect(lexer.LBRACE)
	var body []ast.Stmt
	for !p.at(lexer.Return) && !p.at(lexer.RBRACE) && !p.atEOF() {
		switch {
		case p.at(lexer.Declare):
			if d := p.parseDeclare(); d != nil {
				body = append(body, d)
			}
		case p.at(lexer.Print):
			body = append(body, p.parsePrintStmt())
		case p.at(lexer.For):
			body = append(body, p.parseForLoop())
		default:
			p.errorf(errors.PAR008, "unexpected token %s in function body", p.cur().Type)
			p.advance()
		}
	}
	var bodyType ast.Type
	if p.accept(lexer.Return) {
		bodyType = p.parseType()
		p.accept(lexer.SEMI)
	}
	p.expect(lexer.RBRACE)

	return &ast.Function{
		Base:       ast.Base{Pos: pos},
		Name:       name,
		Params:     params,
		ReturnKind: returnKind,
		Body:       body,
		BodyType:   bodyType,
	}
}

func (p *Parser) parseParam() ast.Param {
	name := p.expectIdentLike()
	p.expect(lexer.COLON)
	typ := p.parseType()
	return ast.Param{Name: name, Type: typ}
}

// parseForLoop parses `for v in range { body_fields }`.
func (p *Parser) parseForLoop() *ast.ForLoop {
	pos := p.curPos()
	p.expect(lexer.For)
	v := p.expectIdentLike()
	p.expect(lexer.In)
	rng := p.parseExpr()
	p.expect(lexer.LBRACE)
	fields := p.parseFieldList(lexer.RBRACE)
	p.expect(lexer.RBRACE)
	return &ast.ForLoop{Base: ast.Base{Pos: pos}, Var: v, Range: rng, BodyFields: fields}
}

// parsePrintStmt parses `print(expr, …)`.
func (p *Parser) parsePrintStmt() *ast.Print {
	pos := p.curPos()
	p.expect(lexer.Print)
	p.expect(lexer.LPAREN)
	args := p.parseExprListUntil(lexer.RPAREN)
	p.expect(lexer.RPAREN)
	p.accept(lexer.SEMI)
	return &ast.Print{Base: ast.Base{Pos: pos}, Args: args}
}
