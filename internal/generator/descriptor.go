package generator

import (
	"strings"

	"github.com/relc-lang/relc/internal/ast"
)

// descriptorValue serializes a field type into the value emitted after the
// field name: a quoted descriptor string, or a nested object literal
// expanded in place for schema references and inline objects.
func (g *Generator) descriptorValue(t ast.Type) string {
	switch n := t.(type) {
	case *ast.TypeIdentifier:
		if alias, ok := g.ctx.Aliases[n.Name]; ok {
			if g.ctx.Guard().Enter(n.Name) {
				defer g.ctx.Guard().Exit(n.Name)
				return g.descriptorValue(alias)
			}
			return quoteDescriptor(n.Name)
		}
		if schema, ok := g.ctx.Schemas[n.Name]; ok {
			if g.ctx.Guard().Enter(n.Name) {
				defer g.ctx.Guard().Exit(n.Name)
				return g.inlineObject(g.schemaFields(schema))
			}
			// Re-encountered on the current expansion path: cut recursion
			// and emit the identifier verbatim.
			return quoteDescriptor(n.Name)
		}
		return quoteDescriptor(g.descriptorBody(n))
	case *ast.InlineObjectType:
		return g.inlineObject(n.Fields)
	case *ast.FunctionCallType:
		if v, ok := g.expandFunction(n, g.descriptorValue); ok {
			return v
		}
		return quoteDescriptor(n.Name)
	default:
		return quoteDescriptor(g.descriptorBody(t))
	}
}

// descriptorBody serializes a type into the unquoted inner form used inside
// quoted descriptors: union arms, array elements, generic arguments, and
// conditional branches.
func (g *Generator) descriptorBody(t ast.Type) string {
	switch n := t.(type) {
	case *ast.Primitive:
		return primitiveName(n)
	case *ast.TypeIdentifier:
		if alias, ok := g.ctx.Aliases[n.Name]; ok {
			if g.ctx.Guard().Enter(n.Name) {
				defer g.ctx.Guard().Exit(n.Name)
				return g.descriptorBody(alias)
			}
			return n.Name
		}
		if e, ok := g.ctx.Enums[n.Name]; ok {
			return strings.Join(e.Values, "|")
		}
		return n.Name
	case *ast.ArrayType:
		return g.descriptorBody(n.Inner) + "[]"
	case *ast.UnionType:
		parts := make([]string, len(n.Types))
		for i, sub := range n.Types {
			parts[i] = g.descriptorBody(sub)
		}
		return strings.Join(parts, "|")
	case *ast.GenericType:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			parts[i] = g.descriptorBody(a)
		}
		return n.Name + "<" + strings.Join(parts, ",") + ">"
	case *ast.FunctionCallType:
		if v, ok := g.expandFunction(n, g.descriptorBody); ok {
			return v
		}
		// Unresolved function names fall back to the quoted identifier.
		return n.Name
	case *ast.ConstrainedType:
		return g.constrainedBody(n)
	case *ast.LiteralType:
		return "=" + g.exprString(n.Value)
	case *ast.ConditionalType:
		return g.conditionalBody(n.Conditional)
	case *ast.InlineObjectType:
		// An inline object has no string form; inside a quoted descriptor
		// it degrades to the plain object type.
		return "object"
	default:
		return "any"
	}
}

func primitiveName(p *ast.Primitive) string {
	if p.Name != "" {
		return p.Name
	}
	switch p.Kind {
	case ast.KString:
		return "string"
	case ast.KNumber:
		return "number"
	case ast.KBoolean:
		return "boolean"
	case ast.KObject:
		return "object"
	case ast.KNull:
		return "null"
	case ast.KUndefined:
		return "undefined"
	case ast.KUnknown:
		return "unknown"
	default:
		return "any"
	}
}

// constrainedBody applies the constraint-collapse rules in a single scan
// over the chain: a Positive/Negative/Integer/Float constraint
// replaces the base name; a Matches constraint emits its pattern as
// /pattern/ in parentheses; exactly one Literal constraint collapses the
// whole descriptor to "=value"; Min/Max (or MinLength/MaxLength) contribute
// a (min,max) bounds suffix where either side may be empty. Constraints not
// in the table are ignored without error.
func (g *Generator) constrainedBody(n *ast.ConstrainedType) string {
	base := g.descriptorBody(n.BaseType)

	var matchesPattern string
	var hasMatches bool
	var minStr, maxStr string
	var hasBounds bool
	var literals []*ast.Constraint

	for _, c := range n.Constraints {
		switch c.Kind {
		case ast.CPositive:
			base = "positive"
		case ast.CNegative:
			base = "negative"
		case ast.CInteger:
			base = "int"
		case ast.CFloat:
			base = "double"
		case ast.CMatches:
			hasMatches = true
			if raw, ok := c.Value.(*ast.RawStringLit); ok {
				matchesPattern = raw.Value
			} else if c.Value != nil {
				matchesPattern = g.exprString(c.Value)
			}
		case ast.CMin, ast.CMinLength:
			hasBounds = true
			if c.Value != nil {
				minStr = g.exprString(c.Value)
			}
		case ast.CMax, ast.CMaxLength:
			hasBounds = true
			if c.Value != nil {
				maxStr = g.exprString(c.Value)
			}
		case ast.CLiteral:
			literals = append(literals, c)
		}
	}

	if len(literals) == 1 {
		return "=" + g.exprString(literals[0].Value)
	}
	if hasMatches {
		return base + "(/" + matchesPattern + "/)"
	}
	if hasBounds {
		return base + "(" + minStr + "," + maxStr + ")"
	}
	return base
}

// branchDesc is the descriptor body used for one branch of a conditional
// entry: the field's descriptor with surrounding quotes removed, with `?`
// appended when the branch field is optional.
func (g *Generator) branchDesc(f *ast.Field) string {
	body := g.descriptorBody(f.Type)
	if f.Optional {
		body += "?"
	}
	return body
}

// quoteDescriptor wraps a descriptor body in double quotes, escaping
// backslashes and embedded quotes so the emitted module is valid source in
// the target language.
func quoteDescriptor(body string) string {
	escaped := strings.ReplaceAll(body, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
