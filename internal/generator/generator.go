// Package generator walks a merged AST and emits the runtime-validator
// module: one `export const Name = Interface({...})` per exported schema,
// with every field serialized as a type-descriptor string.
package generator

import (
	"fmt"
	"strings"

	"github.com/relc-lang/relc/internal/ast"
	"github.com/relc-lang/relc/internal/context"
	"github.com/relc-lang/relc/internal/errors"
)

// runtimeImport is the fixed first line of every emitted module.
const runtimeImport = "import { Interface } from 'reliant-type';"

// Generator serializes one merged AST. The compile-time context is built
// fresh per Generate call and discarded with it.
type Generator struct {
	ctx  *context.Context
	vars *context.Scope

	// evaluating tracks variable names on the current eval path, so
	// self- or mutually-referential bindings fold to the reference
	// itself instead of recursing forever.
	evaluating map[string]bool

	// Prints collects the output of compile-time print() statements for
	// the CLI shell to surface.
	Prints []string

	errs []*errors.Report
}

// New builds a Generator and its compile-time context from the merged file.
func New(file *ast.File) *Generator {
	ctx := context.Build(file)
	return &Generator{ctx: ctx, vars: ctx.Vars, evaluating: map[string]bool{}}
}

// Generate emits the module text for the merged file. It is a pure function
// of its input: equal merged ASTs yield byte-equal outputs.
func Generate(file *ast.File) (string, []*errors.Report) {
	return New(file).Emit(file)
}

// Emit runs top-level compile-time statements, then serializes every
// exported name in export order. Each schema chunk ends with `});` and a
// blank line separates consecutive chunks; the final chunk carries no
// trailing blank line.
func (g *Generator) Emit(file *ast.File) (string, []*errors.Report) {
	for _, d := range file.Decls {
		if pr, ok := d.(*ast.Print); ok {
			g.execStmt(pr)
		}
	}

	var chunks []string
	emitted := map[string]bool{}
	for _, exp := range file.Exports {
		for _, name := range exp.Items {
			if emitted[name] {
				continue
			}
			emitted[name] = true
			if chunk, ok := g.emitExport(name); ok {
				chunks = append(chunks, chunk)
			}
		}
	}

	return runtimeImport + "\n\n" + strings.Join(chunks, "\n"), g.errs
}

func (g *Generator) errorf(pos ast.Pos, format string, args ...any) {
	p := pos
	g.errs = append(g.errs, errors.New(errors.PhaseGenerator, errors.GEN001, fmt.Sprintf(format, args...), &p))
}

// emitExport serializes one exported name: a schema becomes an Interface
// constant, an enum becomes its |-joined union-of-values constant, and a
// type alias becomes a constant holding the aliased type's descriptor.
func (g *Generator) emitExport(name string) (string, bool) {
	if s, ok := g.ctx.Schemas[name]; ok {
		return g.emitSchema(s), true
	}
	if e, ok := g.ctx.Enums[name]; ok {
		return "export const " + e.Name + " = " + quoteDescriptor(strings.Join(e.Values, "|")) + ";\n", true
	}
	if alias, ok := g.ctx.Aliases[name]; ok {
		v := g.descriptorValue(alias)
		if strings.HasPrefix(v, "{") {
			return "export const " + name + " = Interface(" + v + ");\n", true
		}
		return "export const " + name + " = " + v + ";\n", true
	}
	g.errorf(ast.Pos{}, "exported name %q is not a schema, enum, or type alias", name)
	return "", false
}

func (g *Generator) emitSchema(s *ast.Schema) string {
	var b strings.Builder
	b.WriteString("export const " + s.Name + " = Interface({\n")
	for _, f := range g.schemaFields(s) {
		g.writeField(&b, f)
	}
	b.WriteString("});\n")
	return b.String()
}

// schemaFields flattens a schema's effective field list: the extends
// parent's fields first, then mixin fields in `with` order, then the
// schema's own fields. Extends cycles are cut by the expansion guard.
func (g *Generator) schemaFields(s *ast.Schema) []*ast.Field {
	var out []*ast.Field
	if s.Extends != "" {
		if parent, ok := g.ctx.Schemas[s.Extends]; ok && g.ctx.Guard().Enter("extends:"+s.Extends) {
			out = append(out, g.schemaFields(parent)...)
			g.ctx.Guard().Exit("extends:" + s.Extends)
		}
	}
	for _, name := range s.Mixins {
		if m, ok := g.ctx.Mixins[name]; ok {
			out = append(out, m.Fields...)
		}
	}
	return append(out, s.Fields...)
}

// writeField emits one schema-body entry. Synthetic conditional_<n>
// pseudo-fields and fields carrying attached `when` chains expand into one
// entry per branch field; everything else is a single
// `  name<?>: <descriptor>,` line.
func (g *Generator) writeField(b *strings.Builder, f *ast.Field) {
	emit := func(name string, optional bool, body string) {
		if optional {
			name += "?"
		}
		b.WriteString("  " + name + ": " + quoteDescriptor(body) + ",\n")
	}

	if ct, ok := f.Type.(*ast.ConditionalType); ok && strings.HasPrefix(f.Name, "conditional_") {
		g.emitConditional(ct.Conditional, map[string]bool{}, emit)
		return
	}
	if len(f.Conditionals) > 0 {
		skip := map[string]bool{}
		for _, c := range f.Conditionals {
			g.emitConditional(c, skip, emit)
		}
		return
	}

	name := f.Name
	if f.Optional {
		name += "?"
	}
	b.WriteString("  " + name + ": " + g.descriptorValue(f.Type) + ",\n")
}

// emitConditional produces one entry per branch field of a conditional
// block. Then-branch fields emit under the condition with the matching
// else-branch descriptor (or `any?` when the else side has no counterpart);
// fields present only in the else block emit under the negated condition;
// a chained `else when` recurses with already-emitted names skipped.
func (g *Generator) emitConditional(c *ast.Conditional, skip map[string]bool, emit func(name string, optional bool, body string)) {
	cond := g.exprString(c.Condition)
	for _, f := range c.ThenFields {
		if skip[f.Name] {
			continue
		}
		skip[f.Name] = true
		emit(f.Name, f.Optional, "when "+cond+" *? "+g.branchDesc(f)+" : "+g.elseDescFor(c, f.Name))
	}
	for _, f := range c.ElseFields {
		if skip[f.Name] {
			continue
		}
		skip[f.Name] = true
		emit(f.Name, f.Optional, "when !("+cond+") *? "+g.branchDesc(f)+" : any?")
	}
	if nested, ok := c.ElseType.(*ast.ConditionalType); ok {
		g.emitConditional(nested.Conditional, skip, emit)
	}
}

// elseDescFor finds the else-side descriptor for a then-branch field:
// the matching else field's descriptor, the nested `else when` chain's
// descriptor for that name, or the literal `any?`.
func (g *Generator) elseDescFor(c *ast.Conditional, name string) string {
	for _, f := range c.ElseFields {
		if f.Name == name {
			return g.branchDesc(f)
		}
	}
	if nested, ok := c.ElseType.(*ast.ConditionalType); ok {
		if desc, found := g.condDescFor(nested.Conditional, name); found {
			return desc
		}
	}
	return "any?"
}

// condDescFor renders the full `when ... *? ... : ...` descriptor a chained
// conditional assigns to name, recursing through further `else when` links.
func (g *Generator) condDescFor(c *ast.Conditional, name string) (string, bool) {
	for _, f := range c.ThenFields {
		if f.Name == name {
			return "when " + g.exprString(c.Condition) + " *? " + g.branchDesc(f) + " : " + g.elseDescFor(c, name), true
		}
	}
	if nested, ok := c.ElseType.(*ast.ConditionalType); ok {
		return g.condDescFor(nested.Conditional, name)
	}
	return "", false
}

// conditionalBody serializes a conditional used directly in type position
// (a field typed by a `when` block).
func (g *Generator) conditionalBody(c *ast.Conditional) string {
	cond := g.exprString(c.Condition)
	thenDesc := g.descriptorBody(c.ThenType)
	elseDesc := "any?"
	if nested, ok := c.ElseType.(*ast.ConditionalType); ok {
		elseDesc = g.conditionalBody(nested.Conditional)
	} else if len(c.ElseFields) == 1 {
		elseDesc = g.branchDesc(c.ElseFields[0])
	} else if c.ElseType != nil {
		elseDesc = g.descriptorBody(c.ElseType)
	}
	return "when " + cond + " *? " + thenDesc + " : " + elseDesc
}

// inlineObject expands a field list into a single-line nested object
// literal, used for inline-object types and inlined schema references.
func (g *Generator) inlineObject(fields []*ast.Field) string {
	var parts []string
	add := func(name string, optional bool, value string) {
		if optional {
			name += "?"
		}
		parts = append(parts, name+": "+value+",")
	}
	quoted := func(name string, optional bool, body string) {
		add(name, optional, quoteDescriptor(body))
	}

	for _, f := range fields {
		if ct, ok := f.Type.(*ast.ConditionalType); ok && strings.HasPrefix(f.Name, "conditional_") {
			g.emitConditional(ct.Conditional, map[string]bool{}, quoted)
			continue
		}
		if len(f.Conditionals) > 0 {
			skip := map[string]bool{}
			for _, c := range f.Conditionals {
				g.emitConditional(c, skip, quoted)
			}
			continue
		}
		add(f.Name, f.Optional, g.descriptorValue(f.Type))
	}

	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

// expandFunction resolves a type-returning function call: parameters bind
// to argument expressions in a child scope, body statements execute in
// order, and render runs over the function's body type under the enriched
// map before the previous variable map is restored. Returns false for
// unresolved names and for calls re-entered on the current expansion path.
func (g *Generator) expandFunction(fc *ast.FunctionCallType, render func(ast.Type) string) (string, bool) {
	fn, ok := g.ctx.Funcs[fc.Name]
	if !ok {
		return "", false
	}
	if !g.ctx.Guard().Enter("fn:" + fc.Name) {
		return "", false
	}
	defer g.ctx.Guard().Exit("fn:" + fc.Name)

	scope := g.vars.Child()
	for i, p := range fn.Params {
		if i < len(fc.Args) {
			scope.Set(p.Name, fc.Args[i])
		}
	}
	prev := g.vars
	g.vars = scope
	defer func() { g.vars = prev }()

	for _, st := range fn.Body {
		g.execStmt(st)
	}

	body := fn.BodyType
	if body == nil {
		body = fn.ReturnKind
	}
	return render(body), true
}

// execStmt runs one statement of the compile-time sub-language. `declare
// var` contributes a binding evaluated under the current map; `declare
// type` contributes an alias; print output is collected for the caller.
// Field-generating loops bind their variable per iteration but produce no
// entries outside a schema body.
func (g *Generator) execStmt(st ast.Stmt) {
	switch n := st.(type) {
	case *ast.DeclareVar:
		g.vars.Set(n.Name, g.eval(n.Value))
	case *ast.DeclareType:
		g.ctx.Aliases[n.Name] = n.Type
	case *ast.Print:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			parts[i] = strings.Trim(g.exprString(g.eval(a)), `"`)
		}
		g.Prints = append(g.Prints, strings.Join(parts, " "))
	case *ast.ForLoop:
		if rng, ok := g.eval(n.Range).(*ast.RangeExpr); ok {
			start, sok := g.eval(rng.Start).(*ast.NumberLit)
			end, eok := g.eval(rng.End).(*ast.NumberLit)
			if sok && eok {
				for i := start.Value; i <= end.Value; i++ {
					g.vars.Set(n.Var, &ast.NumberLit{Base: n.Base, Value: i})
				}
			}
		}
	}
}
