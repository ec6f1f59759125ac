// Package context builds and holds the compile-time environment the
// generator expands against: variables, type aliases, type-returning
// functions, the schema/enum/mixin tables, and the export set.
package context

import (
	"github.com/relc-lang/relc/internal/ast"
)

// Scope is a parent-linked variable binding frame: Get walks up to the
// parent on a miss, and a function call's parameter bindings live in a
// child frame that is discarded once expansion of that call completes.
type Scope struct {
	values map[string]ast.Expr
	parent *Scope
}

// NewScope creates a root scope with no parent.
func NewScope() *Scope {
	return &Scope{values: map[string]ast.Expr{}}
}

// Child creates a new scope chained to s, used to push a function call's
// parameter bindings without disturbing the enclosing variable map.
func (s *Scope) Child() *Scope {
	return &Scope{values: map[string]ast.Expr{}, parent: s}
}

// Set binds name to value in this scope frame.
func (s *Scope) Set(name string, value ast.Expr) {
	s.values[name] = value
}

// Get looks up name in this scope, falling back to ancestor scopes.
func (s *Scope) Get(name string) (ast.Expr, bool) {
	if v, ok := s.values[name]; ok {
		return v, true
	}
	if s.parent != nil {
		return s.parent.Get(name)
	}
	return nil, false
}

// Context is the compile-time environment built from a merged *ast.File in
// a first pass, before generation begins.
type Context struct {
	Vars    *Scope
	Aliases map[string]ast.Type
	Funcs   map[string]*ast.Function
	Schemas map[string]*ast.Schema
	Enums   map[string]*ast.Enum
	Mixins  map[string]*ast.Mixin
	Exports map[string]bool

	guard *ExpansionGuard
}

// Build populates a fresh Context from file's top-level declarations in a
// single pass: DeclareVar and top-level `let` contribute variables,
// `type`/`declare type` contribute aliases, `@fn` contributes functions,
// Schema/Enum/Mixin definitions populate their tables, and Export
// statements populate the export set.
func Build(file *ast.File) *Context {
	c := &Context{
		Vars:    NewScope(),
		Aliases: map[string]ast.Type{},
		Funcs:   map[string]*ast.Function{},
		Schemas: map[string]*ast.Schema{},
		Enums:   map[string]*ast.Enum{},
		Mixins:  map[string]*ast.Mixin{},
		Exports: map[string]bool{},
		guard:   NewExpansionGuard(),
	}

	for _, v := range file.Vars {
		c.Vars.Set(v.Name, v.Value)
	}
	for _, a := range file.Aliases {
		c.Aliases[a.Name] = a.Type
	}
	for _, s := range file.Schemas {
		c.Schemas[s.Name] = s
	}
	for _, e := range file.Enums {
		c.Enums[e.Name] = e
	}
	for _, m := range file.Mixins {
		c.Mixins[m.Name] = m
	}
	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.DeclareVar:
			c.Vars.Set(n.Name, n.Value)
		case *ast.DeclareType:
			c.Aliases[n.Name] = n.Type
		case *ast.Function:
			c.Funcs[n.Name] = n
		}
	}
	for _, exp := range file.Exports {
		for _, item := range exp.Items {
			c.Exports[item] = true
		}
	}

	return c
}

// Guard returns the Context's shared expansion guard, used to bound
// recursion through type aliases and function calls during generation.
func (c *Context) Guard() *ExpansionGuard {
	return c.guard
}

// ExpansionGuard tracks identifiers currently being expanded along the
// current path through type aliases / function return types, so a
// re-encountered identifier is cut rather than recursed into forever.
// Cycles are never an error: a cut identifier is emitted verbatim as a
// quoted descriptor by the caller.
type ExpansionGuard struct {
	active map[string]bool
}

// NewExpansionGuard creates an empty guard.
func NewExpansionGuard() *ExpansionGuard {
	return &ExpansionGuard{active: map[string]bool{}}
}

// Enter reports whether name may be expanded now; false means name is
// already on the current expansion path and must be cut. On true, the
// caller must call Exit(name) once expansion of name completes.
func (g *ExpansionGuard) Enter(name string) bool {
	if g.active[name] {
		return false
	}
	g.active[name] = true
	return true
}

// Exit removes name from the current expansion path.
func (g *ExpansionGuard) Exit(name string) {
	delete(g.active, name)
}
