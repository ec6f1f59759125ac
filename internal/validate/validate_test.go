package validate

import (
	"testing"

	"github.com/relc-lang/relc/internal/ast"
	"github.com/relc-lang/relc/internal/lexer"
	"github.com/relc-lang/relc/internal/parser"
)

func validateSource(t *testing.T, src string) []string {
	t.Helper()
	toks, lexErrs := lexer.New(src, "test.rel").Tokenize()
	if len(lexErrs) != 0 {
		t.Fatalf("lex errors: %v", lexErrs)
	}
	file, parseErrs := parser.New(toks, "test.rel").Parse()
	if len(parseErrs) != 0 {
		t.Fatalf("parse errors: %v", parseErrs)
	}
	var codes []string
	for _, r := range File(file) {
		codes = append(codes, r.Code)
	}
	return codes
}

func TestValidCleanFile(t *testing.T) {
	codes := validateSource(t, `
enum Role { "admin", "user" }
mixin Stamped { createdAt: date }
define Base { id: uuid }
define User extends Base with Stamped {
  name: string
  role: Role
  geo: { lat: number, lng: number }
}
export User`)
	if len(codes) != 0 {
		t.Fatalf("unexpected validation errors: %v", codes)
	}
}

func TestSchemaNameCasing(t *testing.T) {
	codes := validateSource(t, `define user { id: string }`)
	if len(codes) != 1 || codes[0] != "VAL001" {
		t.Fatalf("want VAL001, got %v", codes)
	}
}

func TestSchemaNameSeparators(t *testing.T) {
	for _, src := range []string{
		`define User_Profile { id: string }`,
		`enum My_Role { "a" }`,
	} {
		codes := validateSource(t, src)
		if len(codes) == 0 || codes[0] != "VAL001" {
			t.Errorf("%s: want VAL001, got %v", src, codes)
		}
	}
}

func TestFieldNameCasing(t *testing.T) {
	codes := validateSource(t, `define User { Name: string }`)
	if len(codes) != 1 || codes[0] != "VAL002" {
		t.Fatalf("want VAL002, got %v", codes)
	}
}

func TestDuplicateField(t *testing.T) {
	codes := validateSource(t, `define User { id: string, id: number }`)
	if len(codes) != 1 || codes[0] != "VAL003" {
		t.Fatalf("want VAL003, got %v", codes)
	}
}

func TestDuplicateEnumValue(t *testing.T) {
	codes := validateSource(t, `enum Role { "admin", "admin" }`)
	if len(codes) != 1 || codes[0] != "VAL004" {
		t.Fatalf("want VAL004, got %v", codes)
	}
}

func TestUndefinedTypeReference(t *testing.T) {
	codes := validateSource(t, `define User { addr: Address }`)
	if len(codes) != 1 || codes[0] != "VAL005" {
		t.Fatalf("want VAL005, got %v", codes)
	}
}

func TestBuiltinNamesResolve(t *testing.T) {
	codes := validateSource(t, `define User { mail: email, token: jwt, ver: semver }`)
	if len(codes) != 0 {
		t.Fatalf("built-in type names must resolve: %v", codes)
	}
}

func TestGenericParamResolves(t *testing.T) {
	codes := validateSource(t, `define Box<T> { value: T }`)
	if len(codes) != 0 {
		t.Fatalf("generic parameters must resolve inside their schema: %v", codes)
	}
}

func TestUndefinedTypeInsideNestedPositions(t *testing.T) {
	codes := validateSource(t, `define User {
  a: Missing[]
  b: string | Missing
  geo: { inner: Missing }
  when a == 1 { c: Missing }
}`)
	if len(codes) != 4 {
		t.Fatalf("want one VAL005 per nested position, got %v", codes)
	}
	for _, c := range codes {
		if c != "VAL005" {
			t.Fatalf("want VAL005, got %v", codes)
		}
	}
}

func TestDuplicateAllowedAcrossConditionalBranches(t *testing.T) {
	codes := validateSource(t, `define R {
  role: string
  when role == "a" { perms: string } else { perms: any }
}`)
	if len(codes) != 0 {
		t.Fatalf("then/else branches may repeat a field name: %v", codes)
	}
}

func TestUndefinedExtendsAndMixin(t *testing.T) {
	codes := validateSource(t, `define User extends Nothing with Nowhere { id: string }`)
	if len(codes) != 2 {
		t.Fatalf("want VAL005 for extends and mixin, got %v", codes)
	}
}

func TestValidationErrorsCarryPositions(t *testing.T) {
	toks, _ := lexer.New(`define user { id: string }`, "test.rel").Tokenize()
	file, _ := parser.New(toks, "test.rel").Parse()
	reps := File(file)
	if len(reps) != 1 {
		t.Fatalf("want 1 report, got %d", len(reps))
	}
	if reps[0].Pos == nil || reps[0].Pos.Line < 1 {
		t.Errorf("AST-level diagnostics must carry source positions, got %+v", reps[0].Pos)
	}
}

func TestEmptyFileIsValid(t *testing.T) {
	if reps := File(&ast.File{}); len(reps) != 0 {
		t.Fatalf("empty file must validate cleanly: %v", reps)
	}
}
