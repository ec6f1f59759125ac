package generator

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/relc-lang/relc/internal/ast"
	"github.com/relc-lang/relc/internal/lexer"
	"github.com/relc-lang/relc/internal/parser"
	"github.com/relc-lang/relc/internal/resolver"
)

// generate parses a single self-contained source and emits it.
func generate(t *testing.T, src string) string {
	t.Helper()
	toks, lexErrs := lexer.New(src, "test.rel").Tokenize()
	if len(lexErrs) != 0 {
		t.Fatalf("lex errors: %v", lexErrs)
	}
	file, parseErrs := parser.New(toks, "test.rel").Parse()
	if len(parseErrs) != 0 {
		t.Fatalf("parse errors: %v", parseErrs)
	}
	out, errs := Generate(file)
	if len(errs) != 0 {
		t.Fatalf("generate errors: %v", errs)
	}
	return out
}

func TestEmitBareSchema(t *testing.T) {
	got := generate(t, `define U {
  id: number
  email: string
}
export U`)
	want := `import { Interface } from 'reliant-type';

export const U = Interface({
  id: "number",
  email: "string",
});
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("emitted module (-want +got):\n%s", diff)
	}
}

func TestEmitConstraintCollapse(t *testing.T) {
	got := generate(t, `define P { age: number & positive & min(0) & max(120) }
export P`)
	if !strings.Contains(got, `  age: "positive(0,120)",`) {
		t.Errorf("constraint collapse failed:\n%s", got)
	}
}

func TestEmitRegexConstraint(t *testing.T) {
	got := generate(t, `define E { email: string & matches(r"^[^@]+@[^@]+$") }
export E`)
	if !strings.Contains(got, `  email: "string(/^[^@]+@[^@]+$/)",`) {
		t.Errorf("regex descriptor failed:\n%s", got)
	}
}

func TestEmitOptionalField(t *testing.T) {
	got := generate(t, `define O { name?: string }
export O`)
	if !strings.Contains(got, `  name?: "string",`) {
		t.Errorf("optional marker must attach to the field name:\n%s", got)
	}
}

func TestEmitConditionalField(t *testing.T) {
	got := generate(t, `define R {
  role: string
  when role == "admin" { perms: string } else { perms: any }
}
export R`)
	if !strings.Contains(got, `  perms: "when role === \"admin\" *? string : any",`) {
		t.Errorf("conditional descriptor failed:\n%s", got)
	}
}

func TestEmitConditionalWithoutElse(t *testing.T) {
	got := generate(t, `define R {
  role: string
  when role == "admin" { perms: string }
}
export R`)
	if !strings.Contains(got, `  perms: "when role === \"admin\" *? string : any?",`) {
		t.Errorf("missing-else branch must default to any?:\n%s", got)
	}
}

func TestEmitElseOnlyFieldNegatesCondition(t *testing.T) {
	got := generate(t, `define R {
  role: string
  when role == "admin" { perms: string } else { fallback: number }
}
export R`)
	if !strings.Contains(got, `  fallback: "when !(role === \"admin\") *? number : any?",`) {
		t.Errorf("else-only field must emit under the negated condition:\n%s", got)
	}
}

func TestEmitElseWhenChain(t *testing.T) {
	got := generate(t, `define R {
  role: string
  when role == "a" { x: string } else when role == "b" { x: number } else { x: any }
}
export R`)
	want := `  x: "when role === \"a\" *? string : when role === \"b\" *? number : any",`
	if !strings.Contains(got, want) {
		t.Errorf("else-when chain failed, want line %s in:\n%s", want, got)
	}
}

func TestEmitBoundsOneSided(t *testing.T) {
	got := generate(t, `define S {
  bio: string & minLength(2)
  score: number & max(100)
}
export S`)
	if !strings.Contains(got, `  bio: "string(2,)",`) {
		t.Errorf("min-only bounds:\n%s", got)
	}
	if !strings.Contains(got, `  score: "number(,100)",`) {
		t.Errorf("max-only bounds:\n%s", got)
	}
}

func TestEmitUnionArrayGeneric(t *testing.T) {
	got := generate(t, `define S {
  tags: string[]
  id: string | number
  lookup: record<string, number>
}
export S`)
	if !strings.Contains(got, `  tags: "string[]",`) {
		t.Errorf("array descriptor:\n%s", got)
	}
	if !strings.Contains(got, `  id: "string|number",`) {
		t.Errorf("union descriptor:\n%s", got)
	}
	if !strings.Contains(got, `  lookup: "record<string,number>",`) {
		t.Errorf("generic descriptor:\n%s", got)
	}
}

func TestEmitLiteralType(t *testing.T) {
	got := generate(t, `define S {
  kind: & literal("user")
  version: = 2
}
export S`)
	if !strings.Contains(got, `  kind: "=\"user\"",`) {
		t.Errorf("literal constraint collapse:\n%s", got)
	}
	if !strings.Contains(got, `  version: "=2",`) {
		t.Errorf("literal-valued type:\n%s", got)
	}
}

func TestEmitInlineObject(t *testing.T) {
	got := generate(t, `define S {
  geo: { lat: number, lng: number }
}
export S`)
	if !strings.Contains(got, `  geo: { lat: "number", lng: "number", },`) {
		t.Errorf("inline object expansion:\n%s", got)
	}
}

func TestEmitSchemaReferenceInlined(t *testing.T) {
	got := generate(t, `define Addr { street: string }
define User { addr: Addr }
export User`)
	if !strings.Contains(got, `  addr: { street: "string", },`) {
		t.Errorf("schema reference must inline:\n%s", got)
	}
	if strings.Contains(got, "export const Addr") {
		t.Errorf("unexported schema must not emit its own constant:\n%s", got)
	}
}

func TestEmitSelfReferenceCutsRecursion(t *testing.T) {
	got := generate(t, `define Node { next: Node }
export Node`)
	// One level inlines, the re-encountered identifier is emitted verbatim.
	if !strings.Contains(got, `"Node"`) {
		t.Errorf("recursive reference must cut to a quoted identifier:\n%s", got)
	}
}

func TestEmitEnumAndReference(t *testing.T) {
	got := generate(t, `enum Role { "admin", "user" }
define U { role: Role }
export U, Role`)
	if !strings.Contains(got, `  role: "admin|user",`) {
		t.Errorf("enum reference must expand to its value union:\n%s", got)
	}
	if !strings.Contains(got, `export const Role = "admin|user";`) {
		t.Errorf("exported enum must emit its union constant:\n%s", got)
	}
}

func TestEmitTypeAlias(t *testing.T) {
	got := generate(t, `type Username = string & minLength(2) & maxLength(64)
define U { name: Username }
export U`)
	if !strings.Contains(got, `  name: "string(2,64)",`) {
		t.Errorf("alias must resolve through to its descriptor:\n%s", got)
	}
}

func TestEmitMixinAndExtends(t *testing.T) {
	got := generate(t, `mixin Stamped { createdAt: date }
define Base { id: string }
define User extends Base with Stamped { name: string }
export User`)
	idx := func(s string) int { return strings.Index(got, s) }
	id, created, name := idx(`id: "string"`), idx(`createdAt: "date"`), idx(`name: "string"`)
	if id < 0 || created < 0 || name < 0 {
		t.Fatalf("missing inherited/mixin/own fields:\n%s", got)
	}
	if !(id < created && created < name) {
		t.Errorf("field order must be parent, mixins, own:\n%s", got)
	}
}

func TestEmitFunctionExpansion(t *testing.T) {
	got := generate(t, `@fn bounded(lo: number, hi: number) -> string {
  return string & minLength(::lo) & maxLength(::hi)
}
define U { name: bounded(2, 64) }
export U`)
	if !strings.Contains(got, `  name: "string(2,64)",`) {
		t.Errorf("function expansion with parameter substitution failed:\n%s", got)
	}
}

func TestEmitFunctionBodyDeclareVar(t *testing.T) {
	got := generate(t, `@fn padded(n: number) -> string {
  declare var upper = ::n + 10
  return string & maxLength(::upper)
}
define U { name: padded(5) }
export U`)
	if !strings.Contains(got, `  name: "string(,15)",`) {
		t.Errorf("declare var must evaluate under the enriched map:\n%s", got)
	}
}

func TestEmitUnresolvedFunctionFallsBack(t *testing.T) {
	got := generate(t, `define U { name: mystery(1) }
export U`)
	if !strings.Contains(got, `  name: "mystery",`) {
		t.Errorf("unresolved function call must emit the quoted identifier:\n%s", got)
	}
}

func TestEmitVariableSubstitutionInConstraint(t *testing.T) {
	got := generate(t, `let maxLen = 64
define U { name: string & maxLength(::maxLen) }
export U`)
	if !strings.Contains(got, `  name: "string(,64)",`) {
		t.Errorf("top-level let must bind for constraint arguments:\n%s", got)
	}
}

func TestEmitMultipleSchemasBlankLineSeparated(t *testing.T) {
	got := generate(t, `define A { x: string }
define B { y: number }
export A, B`)
	want := `import { Interface } from 'reliant-type';

export const A = Interface({
  x: "string",
});

export const B = Interface({
  y: "number",
});
`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("schema separation (-want +got):\n%s", diff)
	}
}

func TestEmitDeterministic(t *testing.T) {
	src := `enum Role { "a", "b" }
define U { id: string, role: Role, when role == "a" { x: string } }
export U, Role`
	first := generate(t, src)
	for i := 0; i < 3; i++ {
		if got := generate(t, src); got != first {
			t.Fatalf("generation is not deterministic:\n%s\nvs\n%s", first, got)
		}
	}
}

func TestEmitCrossFileInlineExpansion(t *testing.T) {
	loader := resolver.MapLoader{
		"/virtual/A.rel": `define Addr { street: string }
export Addr`,
		"/virtual/User.rel": `import { Addr } from "./A.rel"
define User { addr: Addr }
export User`,
	}
	r := resolver.New(loader)
	entry, order, errs := r.Resolve("/virtual/User.rel")
	if len(errs) != 0 {
		t.Fatalf("resolve errors: %v", errs)
	}
	merged := resolver.Merge(order, r.Modules(), entry)
	got, genErrs := Generate(merged)
	if len(genErrs) != 0 {
		t.Fatalf("generate errors: %v", genErrs)
	}
	if !strings.Contains(got, `  addr: { street: "string", },`) {
		t.Errorf("imported schema must inline at its use site:\n%s", got)
	}
	if strings.Count(got, "import") != 1 {
		t.Errorf("only the runtime import may appear:\n%s", got)
	}
	if !strings.Contains(got, "export const User = Interface({") {
		t.Errorf("entry export missing:\n%s", got)
	}
	if strings.Contains(got, "export const Addr") {
		t.Errorf("non-entry exports must not re-emit:\n%s", got)
	}
}

func TestCompileTimePrintCollected(t *testing.T) {
	toks, _ := lexer.New(`print("building", 2)
define U { id: string }
export U`, "test.rel").Tokenize()
	file, errs := parser.New(toks, "test.rel").Parse()
	if len(errs) != 0 {
		t.Fatalf("parse errors: %v", errs)
	}
	g := New(file)
	if _, genErrs := g.Emit(file); len(genErrs) != 0 {
		t.Fatalf("generate errors: %v", genErrs)
	}
	if len(g.Prints) != 1 || g.Prints[0] != "building 2" {
		t.Errorf("print output: %v", g.Prints)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{120, "120"},
		{0, "0"},
		{1.5, "1.5"},
		{-3, "-3"},
	}
	for _, c := range cases {
		if got := formatNumber(c.in); got != c.want {
			t.Errorf("formatNumber(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDescriptorBodyPrimitives(t *testing.T) {
	g := New(&ast.File{})
	cases := map[string]ast.Type{
		"email":     &ast.Primitive{Name: "email"},
		"uuid":      &ast.Primitive{Name: "uuid"},
		"undefined": &ast.Primitive{Kind: ast.KUndefined},
		"unknown":   &ast.Primitive{Kind: ast.KUnknown},
	}
	for want, typ := range cases {
		if got := g.descriptorBody(typ); got != want {
			t.Errorf("descriptorBody(%v) = %q, want %q", typ, got, want)
		}
	}
}
