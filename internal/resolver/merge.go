package resolver

import (
	"github.com/relc-lang/relc/internal/ast"
)

// collectTypeRefs walks t and every type nested inside it (array element,
// union arm, generic argument, constrained base, inline-object field,
// conditional branch), recording every TypeIdentifier/GenericType name it
// finds into out. Literal and primitive types contribute nothing; they
// never resolve to a user-defined schema or enum.
func collectTypeRefs(t ast.Type, out map[string]bool) {
	if t == nil {
		return
	}
	switch n := t.(type) {
	case *ast.TypeIdentifier:
		out[n.Name] = true
	case *ast.ArrayType:
		collectTypeRefs(n.Inner, out)
	case *ast.UnionType:
		for _, sub := range n.Types {
			collectTypeRefs(sub, out)
		}
	case *ast.GenericType:
		out[n.Name] = true
		for _, a := range n.Args {
			collectTypeRefs(a, out)
		}
	case *ast.ConstrainedType:
		collectTypeRefs(n.BaseType, out)
	case *ast.ConditionalType:
		collectConditionalTypeRefs(n.Conditional, out)
	case *ast.InlineObjectType:
		for _, f := range n.Fields {
			collectFieldTypeRefs(f, out)
		}
	}
}

func collectConditionalTypeRefs(c *ast.Conditional, out map[string]bool) {
	if c == nil {
		return
	}
	collectTypeRefs(c.ThenType, out)
	collectTypeRefs(c.ElseType, out)
	for _, f := range c.ThenFields {
		collectFieldTypeRefs(f, out)
	}
	for _, f := range c.ElseFields {
		collectFieldTypeRefs(f, out)
	}
}

func collectFieldTypeRefs(f *ast.Field, out map[string]bool) {
	collectTypeRefs(f.Type, out)
	for _, c := range f.Conditionals {
		collectConditionalTypeRefs(c, out)
	}
}

// collectSchemaTypeRefs returns every user-defined type name s's declaration
// depends on: its Extends parent plus every TypeIdentifier/GenericType
// reachable through its fields. Reachability walks type references, not
// just direct field types.
func collectSchemaTypeRefs(s *ast.Schema) []string {
	out := map[string]bool{}
	if s.Extends != "" {
		out[s.Extends] = true
	}
	for _, f := range s.Fields {
		collectFieldTypeRefs(f, out)
	}
	names := make([]string, 0, len(out))
	for name := range out {
		names = append(names, name)
	}
	return names
}

// collectAllTypeRefs returns every user-defined type name referenced
// anywhere in file (schemas, aliases, and compile-time functions), used by
// the resolver to flag unused imports (RES004).
func collectAllTypeRefs(file *ast.File) map[string]bool {
	out := map[string]bool{}
	for _, s := range file.Schemas {
		if s.Extends != "" {
			out[s.Extends] = true
		}
		for _, m := range s.Mixins {
			out[m] = true
		}
		for _, f := range s.Fields {
			collectFieldTypeRefs(f, out)
		}
	}
	for _, a := range file.Aliases {
		collectTypeRefs(a.Type, out)
	}
	for _, m := range file.Mixins {
		for _, f := range m.Fields {
			collectFieldTypeRefs(f, out)
		}
	}
	for _, d := range file.Decls {
		if fn, ok := d.(*ast.Function); ok {
			for _, p := range fn.Params {
				collectTypeRefs(p.Type, out)
			}
			collectTypeRefs(fn.ReturnKind, out)
			collectTypeRefs(fn.BodyType, out)
		}
	}
	return out
}

// Merge computes the merged AST rooted at the entry file: starting from
// entry's exported names, fixpoint-expand the set of
// required schema/enum names by walking type references, then for each
// file in dependency order keep only Schema/Enum nodes whose name is
// required (first occurrence wins), drop Import statements, keep Export
// only from the entry file, and keep every other declaration kind
// unconditionally.
func Merge(order []string, modules map[string]*ast.File, entry string) *ast.File {
	entryFile := modules[entry]

	required := map[string]bool{}
	for _, exp := range entryFile.Exports {
		for _, item := range exp.Items {
			required[item] = true
		}
	}

	deps := map[string][]string{}
	for _, path := range order {
		for _, s := range modules[path].Schemas {
			deps[s.Name] = collectSchemaTypeRefs(s)
		}
	}

	for changed := true; changed; {
		changed = false
		for name := range required {
			for _, dep := range deps[name] {
				if !required[dep] {
					required[dep] = true
					changed = true
				}
			}
		}
	}

	merged := &ast.File{Base: entryFile.Base, Path: entryFile.Path}
	seen := map[string]bool{}
	for _, path := range order {
		f := modules[path]
		for _, s := range f.Schemas {
			if required[s.Name] && !seen[s.Name] {
				merged.Schemas = append(merged.Schemas, s)
				seen[s.Name] = true
			}
		}
		for _, e := range f.Enums {
			if required[e.Name] && !seen[e.Name] {
				merged.Enums = append(merged.Enums, e)
				seen[e.Name] = true
			}
		}
		merged.Aliases = append(merged.Aliases, f.Aliases...)
		merged.Mixins = append(merged.Mixins, f.Mixins...)
		merged.Vars = append(merged.Vars, f.Vars...)
		merged.Decls = append(merged.Decls, f.Decls...)
	}
	merged.Exports = entryFile.Exports

	return merged
}
