package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSingleFile(t *testing.T) {
	loader := MapLoader{
		"/virtual/main.rel": `
			define User {
				id: string
				name: string
			}
			export User
		`,
	}

	r := New(loader)
	entry, order, errs := r.Resolve("/virtual/main.rel")
	require.Empty(t, errs)
	require.Equal(t, []string{entry}, order)
	assert.Contains(t, r.Modules(), entry)
}

func TestResolveImportChain(t *testing.T) {
	loader := MapLoader{
		"/virtual/base.rel": `
			define Address {
				city: string
			}
			export Address
		`,
		"/virtual/main.rel": `
			import { Address } from "./base"
			define User {
				id: string
				address: Address
			}
			export User
		`,
	}

	r := New(loader)
	entry, order, errs := r.Resolve("/virtual/main.rel")
	require.Empty(t, errs)
	require.Len(t, order, 2)
	assert.Equal(t, "/virtual/base.rel", order[0], "dependencies must precede their importer")
	assert.Equal(t, entry, order[1])
}

func TestResolveDetectsCycle(t *testing.T) {
	loader := MapLoader{
		"/virtual/a.rel": `
			import { B } from "./b"
			define A { b: B }
			export A
		`,
		"/virtual/b.rel": `
			import { A } from "./a"
			define B { a: A }
			export B
		`,
	}

	r := New(loader)
	_, _, errs := r.Resolve("/virtual/a.rel")
	require.NotEmpty(t, errs)
	assert.Equal(t, "RES002", errs[0].Code)
}

func TestResolveReportsNoSuchExport(t *testing.T) {
	loader := MapLoader{
		"/virtual/base.rel": `
			define Address { city: string }
			export Address
		`,
		"/virtual/main.rel": `
			import { Missing } from "./base"
			define User { a: Missing }
			export User
		`,
	}

	r := New(loader)
	_, _, errs := r.Resolve("/virtual/main.rel")
	require.NotEmpty(t, errs)
	assert.Equal(t, "RES003", errs[0].Code)
}

func TestResolveReportsUnusedImport(t *testing.T) {
	loader := MapLoader{
		"/virtual/base.rel": `
			define Address { city: string }
			export Address
		`,
		"/virtual/main.rel": `
			import { Address } from "./base"
			define User { id: string }
			export User
		`,
	}

	r := New(loader)
	_, _, errs := r.Resolve("/virtual/main.rel")
	require.NotEmpty(t, errs)
	assert.Equal(t, "RES004", errs[0].Code)
}

func TestResolveIdempotentDiamond(t *testing.T) {
	loader := MapLoader{
		"/virtual/leaf.rel": `
			define Leaf { v: string }
			export Leaf
		`,
		"/virtual/left.rel": `
			import { Leaf } from "./leaf"
			define Left { leaf: Leaf }
			export Left
		`,
		"/virtual/right.rel": `
			import { Leaf } from "./leaf"
			define Right { leaf: Leaf }
			export Right
		`,
		"/virtual/main.rel": `
			import { Left } from "./left"
			import { Right } from "./right"
			define Main { left: Left, right: Right }
			export Main
		`,
	}

	r := New(loader)
	_, order, errs := r.Resolve("/virtual/main.rel")
	require.Empty(t, errs)
	assert.Len(t, order, 4, "leaf.rel must appear once despite being imported twice")
}

func TestMergeKeepsOnlyReachableSchemas(t *testing.T) {
	loader := MapLoader{
		"/virtual/base.rel": `
			define Address { city: string }
			define Unused { x: string }
			export Address
			export Unused
		`,
		"/virtual/main.rel": `
			import { Address } from "./base"
			define User { id: string, address: Address }
			export User
		`,
	}

	r := New(loader)
	entry, order, errs := r.Resolve("/virtual/main.rel")
	require.Empty(t, errs)

	merged := Merge(order, r.Modules(), entry)
	var names []string
	for _, s := range merged.Schemas {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"User", "Address"}, names)
}
