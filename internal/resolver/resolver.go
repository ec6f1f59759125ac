package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/relc-lang/relc/internal/ast"
	"github.com/relc-lang/relc/internal/errors"
	"github.com/relc-lang/relc/internal/lexer"
	"github.com/relc-lang/relc/internal/parser"
)

const defaultExt = ".rel"

// Resolver walks a `.rel` entry file's import graph to a dependency-ordered
// module list. Files are parsed at most once into the modules cache; the
// processing set plus an ordered stack back cycle detection. Each import's
// items are verified against the target file's Export list (RES003) and
// imported-but-unused items are flagged (RES004).
type Resolver struct {
	loader Loader

	modules    map[string]*ast.File
	processing map[string]bool
	stack      []string

	errs []*errors.Report
}

// New constructs a Resolver over the given Loader.
func New(loader Loader) *Resolver {
	return &Resolver{
		loader:     loader,
		modules:    map[string]*ast.File{},
		processing: map[string]bool{},
	}
}

// Modules returns the canonical-path -> parsed-AST cache accumulated by
// Resolve. Valid only after a successful Resolve call.
func (r *Resolver) Modules() map[string]*ast.File {
	return r.modules
}

// Resolve canonicalizes entry, recursively loads and parses its transitive
// import graph, verifies per-import exports, and returns the
// dependency-ordered (imports-before-importer) canonical path list. A
// non-empty error list means resolution failed and the returned order must
// not be used downstream.
func (r *Resolver) Resolve(entry string) (string, []string, []*errors.Report) {
	canon := r.canonicalize(entry)
	order := r.resolveFile(canon)
	return canon, order, r.errs
}

func (r *Resolver) addErr(code, format string, args ...any) {
	r.errs = append(r.errs, errors.New(errors.PhaseResolver, code, fmt.Sprintf(format, args...), nil))
}

// canonicalize resolves path relative to the working directory and, when
// the file exists, defers to the OS's real path (following symlinks);
// otherwise it falls back to lexical Clean so that nonexistent paths still
// canonicalize deterministically for cycle/cache keying.
func (r *Resolver) canonicalize(path string) string {
	abs := path
	if !filepath.IsAbs(abs) {
		if wd, err := os.Getwd(); err == nil {
			abs = filepath.Join(wd, abs)
		}
	}
	abs = filepath.Clean(abs)
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// resolveImportPath resolves an import's string literal against the
// importing file's directory, appending the default .rel extension when the
// import path carries no extension of its own.
func (r *Resolver) resolveImportPath(importPath, fromFile string) string {
	path := importPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(fromFile), path)
	}
	if filepath.Ext(path) == "" {
		path += defaultExt
	}
	return path
}

// resolveFile loads, parses, and recursively resolves path (already
// canonical), returning the dependency-ordered path list rooted at path,
// or nil once a fatal error (I/O, cycle, or a broken file) is recorded.
func (r *Resolver) resolveFile(canon string) []string {
	if r.processing[canon] {
		r.reportCycle(canon)
		return nil
	}
	if _, ok := r.modules[canon]; ok {
		return []string{canon}
	}

	r.processing[canon] = true
	r.stack = append(r.stack, canon)
	defer func() {
		delete(r.processing, canon)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	src, err := r.loader.Load(canon)
	if err != nil {
		r.addErr(errors.RES001, "%v", err)
		return nil
	}

	normalized := lexer.Normalize([]byte(src))
	toks, lexErrs := lexer.New(string(normalized), canon).Tokenize()
	if len(lexErrs) > 0 {
		for _, le := range lexErrs {
			pos := ast.Pos{File: le.File, Line: le.Line, Column: le.Column}
			r.errs = append(r.errs, errors.New(errors.PhaseLexer, le.Code, le.Message, &pos))
		}
		return nil
	}

	file, parseErrs := parser.New(toks, canon).Parse()
	if len(parseErrs) > 0 {
		r.errs = append(r.errs, parseErrs...)
		return nil
	}

	var order []string
	seen := map[string]bool{}
	for _, imp := range file.Imports {
		target := r.resolveImportPath(imp.Path, canon)
		sub := r.resolveFile(r.canonicalize(target))
		for _, s := range sub {
			if !seen[s] {
				seen[s] = true
				order = append(order, s)
			}
		}
	}

	r.verifyImports(file, canon)

	r.modules[canon] = file
	order = append(order, canon)
	return order
}

// reportCycle records RES002, naming the cycle from its first occurrence on
// the current processing stack through to canon.
func (r *Resolver) reportCycle(canon string) {
	start := 0
	for i, p := range r.stack {
		if p == canon {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, r.stack[start:]...), canon)
	r.addErr(errors.RES002, "circular import: %v", cycle)
}

// verifyImports checks each of file's imports against its target's Export
// list (RES003) and flags imports whose items are never referenced
// anywhere in file (RES004). The target must already be in r.modules;
// resolveFile always resolves imports before calling this.
func (r *Resolver) verifyImports(file *ast.File, canon string) {
	used := collectAllTypeRefs(file)

	for _, imp := range file.Imports {
		target := r.canonicalize(r.resolveImportPath(imp.Path, canon))
		targetFile, ok := r.modules[target]
		if !ok {
			continue // target failed to resolve; already reported
		}
		exported := map[string]bool{}
		for _, exp := range targetFile.Exports {
			for _, item := range exp.Items {
				exported[item] = true
			}
		}
		avail := make([]string, 0, len(exported))
		for name := range exported {
			avail = append(avail, name)
		}
		sort.Strings(avail)

		for _, item := range imp.Items {
			if !exported[item] {
				r.addErr(errors.RES003, "%q imports %q, which %q does not export (available: %v)", canon, item, target, avail)
				continue
			}
			if !used[item] {
				r.addErr(errors.RES004, "%q imports %q but never references it", canon, item)
			}
		}
	}
}
