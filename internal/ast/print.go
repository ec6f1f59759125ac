package ast

import (
	"encoding/json"
	"fmt"
)

// PrintNode produces a deterministic JSON representation of an AST node, used
// for golden snapshot testing. Instance-specific metadata (byte offsets,
// detailed positions, file paths) is omitted so that equivalent programs
// compare equal regardless of where they were parsed from.
func PrintNode(node Node) string {
	if node == nil {
		return "null"
	}
	data, err := json.MarshalIndent(simplify(node), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

// PrintFile prints a whole parsed file.
func PrintFile(f *File) string {
	if f == nil {
		return "null"
	}
	data, err := json.MarshalIndent(simplify(f), "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

// Compact prints a node as a single-line JSON value (used by parser tests
// that only need to assert on the node's "type" tag).
func Compact(node Node) string {
	if node == nil {
		return "null"
	}
	data, err := json.Marshal(simplify(node))
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(data)
}

func simplifyFields(fields []*Field) []interface{} {
	out := make([]interface{}, len(fields))
	for i, f := range fields {
		m := map[string]interface{}{
			"type":     "Field",
			"name":     f.Name,
			"optional": f.Optional,
			"fieldType": simplify(f.Type),
		}
		if f.Default != nil {
			m["default"] = simplify(f.Default)
		}
		if f.Computed != nil {
			m["computed"] = simplify(f.Computed)
		}
		if len(f.Validations) > 0 {
			m["validations"] = simplifyValidations(f.Validations)
		}
		if len(f.Conditionals) > 0 {
			conds := make([]interface{}, len(f.Conditionals))
			for j, c := range f.Conditionals {
				conds[j] = simplify(&ConditionalType{Conditional: c})
			}
			m["conditionals"] = conds
		}
		out[i] = m
	}
	return out
}

func simplifyValidations(vs []*Validation) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = map[string]interface{}{
			"type":    "Validation",
			"rule":    simplify(v.Rule),
			"message": v.Message,
		}
	}
	return out
}

func simplifyConstraints(cs []*Constraint) []interface{} {
	out := make([]interface{}, len(cs))
	for i, c := range cs {
		m := map[string]interface{}{"type": "Constraint", "name": c.Name}
		if c.Value != nil {
			m["value"] = simplify(c.Value)
		}
		out[i] = m
	}
	return out
}

func simplifyExprs(es []Expr) []interface{} {
	out := make([]interface{}, len(es))
	for i, e := range es {
		out[i] = simplify(e)
	}
	return out
}

func simplifyTypes(ts []Type) []interface{} {
	out := make([]interface{}, len(ts))
	for i, t := range ts {
		out[i] = simplify(t)
	}
	return out
}

// simplify converts an AST node to a plain JSON-serializable structure.
func simplify(node interface{}) interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *File:
		m := map[string]interface{}{"type": "File"}
		if len(n.Imports) > 0 {
			imps := make([]interface{}, len(n.Imports))
			for i, imp := range n.Imports {
				imps[i] = map[string]interface{}{"type": "Import", "path": imp.Path, "items": imp.Items, "alias": imp.Alias}
			}
			m["imports"] = imps
		}
		if len(n.Exports) > 0 {
			exps := make([]interface{}, len(n.Exports))
			for i, e := range n.Exports {
				exps[i] = map[string]interface{}{"type": "Export", "items": e.Items}
			}
			m["exports"] = exps
		}
		if len(n.Schemas) > 0 {
			schemas := make([]interface{}, len(n.Schemas))
			for i, s := range n.Schemas {
				schemas[i] = simplify(s)
			}
			m["schemas"] = schemas
		}
		if len(n.Enums) > 0 {
			enums := make([]interface{}, len(n.Enums))
			for i, e := range n.Enums {
				enums[i] = map[string]interface{}{"type": "Enum", "name": e.Name, "values": e.Values}
			}
			m["enums"] = enums
		}
		if len(n.Aliases) > 0 {
			aliases := make([]interface{}, len(n.Aliases))
			for i, a := range n.Aliases {
				aliases[i] = map[string]interface{}{"type": "TypeAlias", "name": a.Name, "aliasType": simplify(a.Type)}
			}
			m["aliases"] = aliases
		}
		if len(n.Mixins) > 0 {
			mixins := make([]interface{}, len(n.Mixins))
			for i, mx := range n.Mixins {
				mixins[i] = map[string]interface{}{"type": "Mixin", "name": mx.Name, "fields": simplifyFields(mx.Fields)}
			}
			m["mixins"] = mixins
		}
		return m

	case *Schema:
		m := map[string]interface{}{
			"type":   "Schema",
			"name":   n.Name,
			"fields": simplifyFields(n.Fields),
		}
		if len(n.Generics) > 0 {
			m["generics"] = n.Generics
		}
		if n.Extends != "" {
			m["extends"] = n.Extends
		}
		if len(n.Mixins) > 0 {
			m["mixins"] = n.Mixins
		}
		if len(n.Validations) > 0 {
			m["validations"] = simplifyValidations(n.Validations)
		}
		return m

	case *Primitive:
		names := []string{"string", "number", "boolean", "object", "null", "undefined", "any", "unknown"}
		kind := n.Name
		if kind == "" && int(n.Kind) < len(names) {
			kind = names[n.Kind]
		}
		return map[string]interface{}{"type": "Primitive", "name": kind}

	case *TypeIdentifier:
		return map[string]interface{}{"type": "TypeIdentifier", "name": n.Name}

	case *ArrayType:
		return map[string]interface{}{"type": "ArrayType", "inner": simplify(n.Inner)}

	case *UnionType:
		return map[string]interface{}{"type": "UnionType", "types": simplifyTypes(n.Types)}

	case *GenericType:
		return map[string]interface{}{"type": "GenericType", "name": n.Name, "args": simplifyTypes(n.Args)}

	case *FunctionCallType:
		return map[string]interface{}{"type": "FunctionCallType", "name": n.Name, "args": simplifyExprs(n.Args)}

	case *ConstrainedType:
		return map[string]interface{}{
			"type":        "ConstrainedType",
			"base":        simplify(n.BaseType),
			"constraints": simplifyConstraints(n.Constraints),
		}

	case *ConditionalType:
		c := n.Conditional
		m := map[string]interface{}{
			"type":       "Conditional",
			"condition":  simplify(c.Condition),
			"thenFields": simplifyFields(c.ThenFields),
		}
		if c.ThenType != nil {
			m["thenType"] = simplify(c.ThenType)
		}
		if len(c.ElseFields) > 0 {
			m["elseFields"] = simplifyFields(c.ElseFields)
		}
		if c.ElseType != nil {
			m["elseType"] = simplify(c.ElseType)
		}
		return m

	case *LiteralType:
		return map[string]interface{}{"type": "LiteralType", "value": simplify(n.Value)}

	case *InlineObjectType:
		return map[string]interface{}{"type": "InlineObjectType", "fields": simplifyFields(n.Fields)}

	case *StringLit:
		return map[string]interface{}{"type": "StringLit", "value": n.Value}
	case *RawStringLit:
		return map[string]interface{}{"type": "RawStringLit", "value": n.Value}
	case *NumberLit:
		return map[string]interface{}{"type": "NumberLit", "value": n.Value}
	case *BoolLit:
		return map[string]interface{}{"type": "BoolLit", "value": n.Value}
	case *NullLit:
		return map[string]interface{}{"type": "NullLit"}
	case *UndefinedLit:
		return map[string]interface{}{"type": "UndefinedLit"}
	case *IdentifierExpr:
		return map[string]interface{}{"type": "Identifier", "name": n.Name}
	case *VariableRef:
		return map[string]interface{}{"type": "VariableRef", "name": n.Name}
	case *FieldAccessExpr:
		return map[string]interface{}{"type": "FieldAccess", "path": n.Path}
	case *FunctionCallExpr:
		return map[string]interface{}{"type": "FunctionCall", "name": n.Name, "args": simplifyExprs(n.Args)}
	case *MethodCallExpr:
		return map[string]interface{}{"type": "MethodCall", "receiver": n.ReceiverPath, "method": n.Method, "args": simplifyExprs(n.Args)}
	case *BinaryOpExpr:
		return map[string]interface{}{"type": "BinaryOp", "op": n.Op, "left": simplify(n.Left), "right": simplify(n.Right)}
	case *UnaryOpExpr:
		return map[string]interface{}{"type": "UnaryOp", "op": n.Op, "operand": simplify(n.Operand)}
	case *GroupExpr:
		return map[string]interface{}{"type": "Group", "inner": simplify(n.Inner)}
	case *ArrayExpr:
		return map[string]interface{}{"type": "Array", "elems": simplifyExprs(n.Elems)}
	case *ObjectExpr:
		entries := make([]interface{}, len(n.Entries))
		for i, e := range n.Entries {
			entries[i] = map[string]interface{}{"key": e.Key, "value": simplify(e.Value)}
		}
		return map[string]interface{}{"type": "Object", "entries": entries}
	case *RangeExpr:
		return map[string]interface{}{"type": "Range", "start": simplify(n.Start), "end": simplify(n.End)}

	default:
		return fmt.Sprintf("<unprintable %T>", node)
	}
}
