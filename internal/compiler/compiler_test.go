package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relc-lang/relc/internal/errors"
	"github.com/relc-lang/relc/internal/resolver"
)

func TestCompileEndToEnd(t *testing.T) {
	loader := resolver.MapLoader{
		"/virtual/A.rel": `define Addr { street: string }
export Addr`,
		"/virtual/User.rel": `import { Addr } from "./A.rel"
define User {
  id: number
  email: string
  addr: Addr
}
export User`,
	}

	result, errs := Compile("/virtual/User.rel", loader)
	require.Empty(t, errs)
	assert.Contains(t, result.Output, "import { Interface } from 'reliant-type';")
	assert.Contains(t, result.Output, "export const User = Interface({")
	assert.Contains(t, result.Output, `  addr: { street: "string", },`)
}

func TestCompileHaltsAtLexStage(t *testing.T) {
	loader := resolver.MapLoader{
		"/virtual/bad.rel": `define U { s: "unterminated }`,
	}
	result, errs := Compile("/virtual/bad.rel", loader)
	require.Nil(t, result)
	require.NotEmpty(t, errs)
	assert.Equal(t, errors.PhaseLexer, errs[0].Phase)
	assert.Equal(t, "tokenization failed", errors.StageLabel(errs[0].Phase))
}

func TestCompileHaltsAtParseStage(t *testing.T) {
	loader := resolver.MapLoader{
		"/virtual/bad.rel": `define U { : }`,
	}
	result, errs := Compile("/virtual/bad.rel", loader)
	require.Nil(t, result)
	require.NotEmpty(t, errs)
	assert.Equal(t, errors.PhaseParser, errs[0].Phase)
}

func TestCompileHaltsAtValidationStage(t *testing.T) {
	loader := resolver.MapLoader{
		"/virtual/bad.rel": `define lower { id: string }
export lower`,
	}
	result, errs := Compile("/virtual/bad.rel", loader)
	require.Nil(t, result)
	require.NotEmpty(t, errs)
	assert.Equal(t, errors.PhaseValidator, errs[0].Phase)
	assert.Equal(t, "VAL001", errs[0].Code)
}

func TestCompileReportsMissingEntry(t *testing.T) {
	result, errs := Compile("/virtual/nope.rel", resolver.MapLoader{})
	require.Nil(t, result)
	require.NotEmpty(t, errs)
	assert.Equal(t, "RES001", errs[0].Code)
}

func TestTokenizeClassifiesErrors(t *testing.T) {
	_, errs := Tokenize(`"oops`, "t.rel")
	require.Len(t, errs, 1)
	assert.Equal(t, "LEX001", errs[0].Code)

	_, errs = Tokenize("\x01", "t.rel")
	require.Len(t, errs, 1)
	assert.Equal(t, "LEX003", errs[0].Code)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("extension: .schema\nsearch_paths:\n  - ./shared\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ".schema", cfg.Extension)
	assert.Equal(t, []string{"./shared"}, cfg.SearchPaths)
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("out: dist/schemas.js\n"), 0644))

	cfg, found, err := FindConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ConfigFileName), found)
	assert.Equal(t, "dist/schemas.js", cfg.Out)
	assert.Equal(t, ".rel", cfg.Extension, "defaults apply to unset fields")
}

func TestFindConfigDefaultsWhenAbsent(t *testing.T) {
	cfg, found, err := FindConfig(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Equal(t, DefaultConfig(), cfg)
}
