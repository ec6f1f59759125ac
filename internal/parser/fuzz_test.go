package parser

import (
	"testing"

	"github.com/relc-lang/relc/internal/lexer"
)

// FuzzParse fuzzes the whole parser: any input must either parse or return
// structured errors, never panic, and the driver loop must terminate.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"define User { id: number, email: string }",
		"define P { age: number & positive & min(0) & max(120) }",
		`define E { email: string & matches(r"^[^@]+@[^@]+$") }`,
		"define O { name?: string }",
		`define R { role: string
when role == "admin" { perms: string } else { perms: any } }`,
		`import { Addr } from "./a" as shapes`,
		"export A, B, C",
		`enum Role { "admin", "user" }`,
		"type Uuid = string",
		"mixin Stamped { createdAt: date }",
		"let maxLen = 64",
		"declare var n = 1 + 2 * 3",
		"declare type Name = string & minLength(2)",
		"@fn f(a: number) -> string { return string & maxLength(::a) }",
		`print("x", 1)`,
		`validate age >= 18, "adult"`,
		"define S { v: = 2, k: & literal(true) }",
		"define S { t: string[] | number, g: record<string, number> }",
		"define { broken",
		"&&&|||",
		"::",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("parser panicked on input %q: %v", input, r)
			}
		}()

		toks, _ := lexer.New(input, "fuzz.rel").Tokenize()
		file, errs := New(toks, "fuzz.rel").Parse()
		_ = file
		_ = errs
	})
}
