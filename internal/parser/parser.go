// Package parser implements the single-pass, recursive-descent parser for
// SDL (.rel) source, building the tagged-variant AST defined in
// internal/ast.
package parser

import (
	"fmt"

	"github.com/relc-lang/relc/internal/ast"
	"github.com/relc-lang/relc/internal/errors"
	"github.com/relc-lang/relc/internal/lexer"
)

// Parser holds the token stream and accumulated diagnostics for one file.
type Parser struct {
	toks []lexer.Token
	pos  int
	file string

	errs []*errors.Report
}

// New constructs a Parser over a token stream produced by the lexer.
// Tokenize's returned slice always ends in an Eof token.
func New(toks []lexer.Token, file string) *Parser {
	return &Parser{toks: toks, file: file}
}

// Parse runs the parser to completion. On a non-empty error list the
// returned *ast.File is whatever partial tree was built and must not be
// used downstream.
func (p *Parser) Parse() (*ast.File, []*errors.Report) {
	f := &ast.File{Base: ast.Base{Pos: p.pos0()}, Path: p.file}

	for !p.atEOF() {
		startPos := p.pos
		errsBefore := len(p.errs)
		p.parseTopLevel(f)
		if len(p.errs) > errsBefore {
			// After a failed production, skip forward to a semicolon or
			// the next top-level starter keyword before continuing.
			p.synchronize()
		}
		if p.pos == startPos {
			// Safety valve: parseTopLevel must always consume at least one
			// token, or a malformed stream would loop forever.
			p.advance()
		}
	}

	return f, p.errs
}

func (p *Parser) parseTopLevel(f *ast.File) {
	switch p.cur().Type {
	case lexer.Define:
		if s := p.parseSchema(); s != nil {
			f.Schemas = append(f.Schemas, s)
		}
	case lexer.Import:
		if im := p.parseImport(); im != nil {
			f.Imports = append(f.Imports, im)
		}
	case lexer.Export:
		if ex := p.parseExport(); ex != nil {
			f.Exports = append(f.Exports, ex)
		}
	case lexer.Enum:
		if e := p.parseEnum(); e != nil {
			f.Enums = append(f.Enums, e)
		}
	case lexer.Type:
		if a := p.parseTypeAliasTop(); a != nil {
			f.Aliases = append(f.Aliases, a)
		}
	case lexer.Let:
		if v := p.parseVariableTop(); v != nil {
			f.Vars = append(f.Vars, v)
		}
	case lexer.Mixin:
		if m := p.parseMixin(); m != nil {
			f.Mixins = append(f.Mixins, m)
		}
	case lexer.Declare:
		if d := p.parseDeclare(); d != nil {
			f.Decls = append(f.Decls, d)
		}
	case lexer.AT:
		if fn := p.parseFunction(); fn != nil {
			f.Decls = append(f.Decls, fn)
		}
	case lexer.Print:
		if pr := p.parsePrintStmt(); pr != nil {
			f.Decls = append(f.Decls, pr)
		}
	case lexer.Identifier:
		if p.cur().Lexeme == "validate" {
			if v := p.parseValidationStmt(); v != nil {
				f.Decls = append(f.Decls, v)
			}
			return
		}
		p.errorf(errors.PAR001, "unexpected identifier %q at top level", p.cur().Lexeme)
		p.synchronize()
	case lexer.EOF:
		// nothing to do
	default:
		p.errorf(errors.PAR001, "unexpected token %s at top level", p.cur().Type)
		p.synchronize()
	}
}

func (p *Parser) pos0() ast.Pos {
	if len(p.toks) == 0 {
		return ast.Pos{File: p.file, Line: 1, Column: 1}
	}
	return p.tokPos(p.toks[0])
}

func (p *Parser) tokPos(t lexer.Token) ast.Pos {
	return ast.Pos{File: p.file, Line: t.Line, Column: t.Column, Offset: t.Offset}
}

// ---- token stream helpers ----

func (p *Parser) cur() lexer.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) lexer.Token {
	idx := p.pos + n
	if idx >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[idx]
}

func (p *Parser) curPos() ast.Pos {
	return p.tokPos(p.cur())
}

func (p *Parser) atEOF() bool {
	return p.cur().Type == lexer.EOF
}

func (p *Parser) at(t lexer.TokenType) bool {
	return p.cur().Type == t
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if t.Type != lexer.EOF {
		p.pos++
	}
	return t
}

// accept consumes the current token if it matches t, reporting whether it did.
func (p *Parser) accept(t lexer.TokenType) bool {
	if p.at(t) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token, requiring it to be of type t. On
// mismatch it records a PAR001/PAR002 error and returns the current token
// without consuming it, so callers can keep making forward progress.
func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if p.at(t) {
		return p.advance()
	}
	code := errors.PAR001
	switch t {
	case lexer.RBRACE, lexer.RPAREN, lexer.RBRACKET:
		code = errors.PAR002
	}
	p.errorf(code, "expected %s, found %s %q", t, p.cur().Type, p.cur().Lexeme)
	return p.cur()
}

// expectIdentLike consumes a name drawn from the Identifier, TypeName, or
// Constraint token classes; `::name` and postfix access/method names may
// shadow built-in type and constraint names.
func (p *Parser) expectIdentLike() string {
	switch p.cur().Type {
	case lexer.Identifier, lexer.TypeName, lexer.Constraint:
		return p.advance().Lexeme
	default:
		p.errorf(errors.PAR001, "expected identifier, found %s %q", p.cur().Type, p.cur().Lexeme)
		if p.atSyncPoint() {
			return p.cur().Lexeme
		}
		return p.advance().Lexeme
	}
}

// atSyncPoint reports whether the current token is a recovery boundary:
// a top-level starter keyword, a closing brace, or end of input. Error
// paths must not consume these, so the enclosing production and the
// top-level recovery loop can resynchronize on them.
func (p *Parser) atSyncPoint() bool {
	switch p.cur().Type {
	case lexer.Define, lexer.Import, lexer.Export, lexer.Enum, lexer.Type, lexer.RBRACE, lexer.EOF:
		return true
	}
	return false
}

func (p *Parser) errorf(code, format string, args ...any) {
	pos := p.curPos()
	p.errs = append(p.errs, errors.New(errors.PhaseParser, code, fmt.Sprintf(format, args...), &pos))
}

// synchronize skips forward until a semicolon or one of the top-level
// starter keywords is seen.
func (p *Parser) synchronize() {
	for !p.atEOF() {
		if p.cur().Type == lexer.SEMI {
			p.advance()
			return
		}
		switch p.cur().Type {
		case lexer.Define, lexer.Import, lexer.Export, lexer.Enum, lexer.Type:
			return
		}
		p.advance()
	}
}
