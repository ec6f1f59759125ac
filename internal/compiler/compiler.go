// Package compiler exposes the core pipeline entry points (Tokenize,
// Parse, Resolve, Generate) plus a Compile convenience that runs the whole
// pipeline and halts at the first non-empty error batch.
package compiler

import (
	"github.com/relc-lang/relc/internal/ast"
	"github.com/relc-lang/relc/internal/errors"
	"github.com/relc-lang/relc/internal/generator"
	"github.com/relc-lang/relc/internal/lexer"
	"github.com/relc-lang/relc/internal/parser"
	"github.com/relc-lang/relc/internal/resolver"
	"github.com/relc-lang/relc/internal/validate"
)

// Tokenize normalizes and scans source into a token stream. The token list
// is returned even when errors accumulated, but a non-empty report list
// halts the pipeline at this boundary.
func Tokenize(source, file string) ([]lexer.Token, []*errors.Report) {
	normalized := lexer.Normalize([]byte(source))
	toks, lexErrs := lexer.New(string(normalized), file).Tokenize()
	var reps []*errors.Report
	for _, le := range lexErrs {
		pos := ast.Pos{File: le.File, Line: le.Line, Column: le.Column}
		reps = append(reps, errors.New(errors.PhaseLexer, le.Code, le.Message, &pos))
	}
	return toks, reps
}

// Parse builds a file's AST from its token stream. A non-empty report list
// means the partial AST must not be used downstream.
func Parse(toks []lexer.Token, file string) (*ast.File, []*errors.Report) {
	return parser.New(toks, file).Parse()
}

// Resolve loads entry and its transitive imports through loader, verifies
// cross-file semantics, and returns the merged AST.
func Resolve(entry string, loader resolver.Loader) (*ast.File, []*errors.Report) {
	r := resolver.New(loader)
	canon, order, errs := r.Resolve(entry)
	if len(errs) > 0 {
		return nil, errs
	}
	return resolver.Merge(order, r.Modules(), canon), nil
}

// Validate runs the post-parse AST checks over a merged file.
func Validate(merged *ast.File) []*errors.Report {
	return validate.File(merged)
}

// Generate emits the runtime-validator module text for a merged file.
func Generate(merged *ast.File) (string, []*errors.Report) {
	return generator.Generate(merged)
}

// Result is a successful compile's output.
type Result struct {
	// Output is the emitted module text.
	Output string
	// Prints holds compile-time print() output in execution order.
	Prints []string
}

// Compile runs resolve -> validate -> generate for entry. Each stage's
// error batch halts the pipeline; downstream stages never run with partial
// inputs.
func Compile(entry string, loader resolver.Loader) (*Result, []*errors.Report) {
	merged, errs := Resolve(entry, loader)
	if len(errs) > 0 {
		return nil, errs
	}
	if errs := Validate(merged); len(errs) > 0 {
		return nil, errs
	}
	g := generator.New(merged)
	out, errs := g.Emit(merged)
	if len(errs) > 0 {
		return nil, errs
	}
	return &Result{Output: out, Prints: g.Prints}, nil
}
