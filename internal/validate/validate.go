// Package validate runs the post-parse, pre-generation AST checks over a
// merged file: naming conventions, duplicate fields and enum values, and
// undefined type references. Violations accumulate as VAL### reports; any
// non-empty list aborts the compile.
package validate

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/relc-lang/relc/internal/ast"
	"github.com/relc-lang/relc/internal/errors"
	"github.com/relc-lang/relc/internal/lexer"
)

type checker struct {
	file *ast.File

	// defined holds every user-defined type name in the merged AST:
	// schemas, enums, aliases, and mixins.
	defined map[string]bool

	errs []*errors.Report
}

// File validates the merged AST and returns the accumulated reports.
func File(file *ast.File) []*errors.Report {
	c := &checker{file: file, defined: map[string]bool{}}

	for _, s := range file.Schemas {
		c.defined[s.Name] = true
	}
	for _, e := range file.Enums {
		c.defined[e.Name] = true
	}
	for _, a := range file.Aliases {
		c.defined[a.Name] = true
	}
	for _, m := range file.Mixins {
		c.defined[m.Name] = true
	}
	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.DeclareType:
			c.defined[n.Name] = true
		case *ast.Function:
			c.defined[n.Name] = true
		}
	}

	for _, s := range file.Schemas {
		c.checkSchema(s)
	}
	for _, e := range file.Enums {
		c.checkEnum(e)
	}
	for _, a := range file.Aliases {
		c.checkTypeName(a.Name, "type alias", a.Position())
		c.checkTypeRefs(a.Type, nil, a.Position())
	}
	for _, m := range file.Mixins {
		c.checkFields(m.Name, m.Fields, nil)
	}

	return c.errs
}

func (c *checker) errorf(code string, pos ast.Pos, format string, args ...any) {
	p := pos
	c.errs = append(c.errs, errors.New(errors.PhaseValidator, code, fmt.Sprintf(format, args...), &p))
}

// checkTypeName enforces the upper-camel naming rule for schema, enum, and
// type-alias names.
func (c *checker) checkTypeName(name, kind string, pos ast.Pos) {
	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsUpper(first) {
		c.errorf(errors.VAL001, pos, "%s name %q must begin with an uppercase letter", kind, name)
		return
	}
	if strings.ContainsAny(name, "_-") {
		c.errorf(errors.VAL001, pos, "%s name %q must not contain '_' or '-'", kind, name)
	}
}

func (c *checker) checkSchema(s *ast.Schema) {
	c.checkTypeName(s.Name, "schema", s.Position())

	generics := map[string]bool{}
	for _, g := range s.Generics {
		generics[g] = true
	}

	if s.Extends != "" && !c.resolves(s.Extends, generics) {
		c.errorf(errors.VAL005, s.Position(), "schema %q extends undefined type %q", s.Name, s.Extends)
	}
	for _, m := range s.Mixins {
		if !c.resolves(m, generics) {
			c.errorf(errors.VAL005, s.Position(), "schema %q uses undefined mixin %q", s.Name, m)
		}
	}

	c.checkFields(s.Name, s.Fields, generics)
}

// checkFields enforces field-name casing and uniqueness inside owner, then
// walks each field's type for undefined references. Synthetic
// conditional_<n> pseudo-fields only contribute their branch fields.
func (c *checker) checkFields(owner string, fields []*ast.Field, generics map[string]bool) {
	seen := map[string]bool{}
	for _, f := range fields {
		if strings.HasPrefix(f.Name, "conditional_") {
			c.checkTypeRefs(f.Type, generics, f.Position())
			continue
		}
		first, _ := utf8.DecodeRuneInString(f.Name)
		if !unicode.IsLower(first) {
			c.errorf(errors.VAL002, f.Position(), "field name %q in %q must begin with a lowercase letter", f.Name, owner)
		}
		if seen[f.Name] {
			c.errorf(errors.VAL003, f.Position(), "duplicate field %q in %q", f.Name, owner)
		}
		seen[f.Name] = true

		c.checkTypeRefs(f.Type, generics, f.Position())
		for _, cond := range f.Conditionals {
			c.checkConditional(cond, generics)
		}
	}
}

func (c *checker) checkEnum(e *ast.Enum) {
	c.checkTypeName(e.Name, "enum", e.Position())
	seen := map[string]bool{}
	for _, v := range e.Values {
		if seen[v] {
			c.errorf(errors.VAL004, e.Position(), "duplicate value %q in enum %q", v, e.Name)
		}
		seen[v] = true
	}
}

// resolves reports whether name is a legal type reference: a built-in type
// name, a user-defined schema/enum/alias/mixin, or a generic parameter of
// the enclosing schema.
func (c *checker) resolves(name string, generics map[string]bool) bool {
	return lexer.IsTypeName(name) || c.defined[name] || generics[name]
}

func (c *checker) checkTypeRefs(t ast.Type, generics map[string]bool, pos ast.Pos) {
	switch n := t.(type) {
	case nil:
	case *ast.TypeIdentifier:
		if !c.resolves(n.Name, generics) {
			c.errorf(errors.VAL005, n.Position(), "reference to undefined type %q", n.Name)
		}
	case *ast.ArrayType:
		c.checkTypeRefs(n.Inner, generics, pos)
	case *ast.UnionType:
		for _, sub := range n.Types {
			c.checkTypeRefs(sub, generics, pos)
		}
	case *ast.GenericType:
		if !c.resolves(n.Name, generics) {
			c.errorf(errors.VAL005, n.Position(), "reference to undefined type %q", n.Name)
		}
		for _, a := range n.Args {
			c.checkTypeRefs(a, generics, pos)
		}
	case *ast.ConstrainedType:
		c.checkTypeRefs(n.BaseType, generics, pos)
	case *ast.ConditionalType:
		c.checkConditional(n.Conditional, generics)
	case *ast.InlineObjectType:
		c.checkFields("inline object", n.Fields, generics)
	}
}

func (c *checker) checkConditional(cond *ast.Conditional, generics map[string]bool) {
	if cond == nil {
		return
	}
	c.checkFields("conditional block", cond.ThenFields, generics)
	c.checkFields("conditional block", cond.ElseFields, generics)
	if nested, ok := cond.ElseType.(*ast.ConditionalType); ok {
		c.checkConditional(nested.Conditional, generics)
	}
}
