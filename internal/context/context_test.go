package context

import (
	"testing"

	"github.com/relc-lang/relc/internal/ast"
)

func TestScopeChildShadowsAndRestores(t *testing.T) {
	root := NewScope()
	root.Set("x", &ast.NumberLit{Value: 1})

	child := root.Child()
	child.Set("x", &ast.NumberLit{Value: 2})
	child.Set("y", &ast.NumberLit{Value: 3})

	if v, _ := child.Get("x"); v.(*ast.NumberLit).Value != 2 {
		t.Errorf("child must shadow parent binding")
	}
	if _, ok := child.Get("missing"); ok {
		t.Errorf("unbound name must miss")
	}
	// Parent is untouched by child bindings.
	if v, _ := root.Get("x"); v.(*ast.NumberLit).Value != 1 {
		t.Errorf("parent binding clobbered")
	}
	if _, ok := root.Get("y"); ok {
		t.Errorf("child binding leaked into parent")
	}
}

func TestBuildPopulatesTables(t *testing.T) {
	file := &ast.File{
		Vars:    []*ast.Variable{{Name: "maxLen", Value: &ast.NumberLit{Value: 64}}},
		Aliases: []*ast.TypeAlias{{Name: "Uuid", Type: &ast.Primitive{Name: "uuid"}}},
		Schemas: []*ast.Schema{{Name: "User"}},
		Enums:   []*ast.Enum{{Name: "Role", Values: []string{"a"}}},
		Mixins:  []*ast.Mixin{{Name: "Stamped"}},
		Decls: []ast.Stmt{
			&ast.DeclareVar{Name: "n", Value: &ast.NumberLit{Value: 1}},
			&ast.DeclareType{Name: "Name", Type: &ast.Primitive{Name: "string"}},
			&ast.Function{Name: "bounded"},
		},
		Exports: []*ast.Export{{Items: []string{"User", "Role"}}},
	}

	c := Build(file)
	if _, ok := c.Vars.Get("maxLen"); !ok {
		t.Errorf("top-level let missing from variables")
	}
	if _, ok := c.Vars.Get("n"); !ok {
		t.Errorf("declare var missing from variables")
	}
	if _, ok := c.Aliases["Uuid"]; !ok {
		t.Errorf("type alias missing")
	}
	if _, ok := c.Aliases["Name"]; !ok {
		t.Errorf("declare type missing from aliases")
	}
	if _, ok := c.Funcs["bounded"]; !ok {
		t.Errorf("@fn missing from functions")
	}
	if _, ok := c.Schemas["User"]; !ok {
		t.Errorf("schema table missing")
	}
	if _, ok := c.Enums["Role"]; !ok {
		t.Errorf("enum table missing")
	}
	if _, ok := c.Mixins["Stamped"]; !ok {
		t.Errorf("mixin table missing")
	}
	if !c.Exports["User"] || !c.Exports["Role"] {
		t.Errorf("export set missing items: %v", c.Exports)
	}
}

func TestExpansionGuardCutsReentry(t *testing.T) {
	g := NewExpansionGuard()
	if !g.Enter("A") {
		t.Fatalf("first entry must succeed")
	}
	if g.Enter("A") {
		t.Fatalf("re-entry on the active path must be cut")
	}
	if !g.Enter("B") {
		t.Fatalf("unrelated names are unaffected")
	}
	g.Exit("A")
	if !g.Enter("A") {
		t.Fatalf("after Exit the name may expand again")
	}
}
