package cmd

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"strconv"
	"strings"

	"github.com/vippsas/thorn/translate"
)

// checkArities performs the compile-time half of "function calls verify
// arity against the function descriptor": for every FuncCallNode it can
// statically resolve a declared arity for in dir's own source, it rejects a
// mismatched argument count before any Go is generated. A descriptor it
// can't resolve this way (declared elsewhere, built dynamically, ...) is
// left to the generated code's runtime schema.Function.CheckArity call.
func checkArities(dir string, prog *translate.Program) error {
	for _, fc := range translate.CollectFuncCalls(prog.Nodes) {
		declared, ok := resolveArity(dir, fc.Ident)
		if !ok || declared == fc.Arity {
			continue
		}
		return translate.NewArityMismatchError(fc.Pos, fc.Ident, declared, fc.Arity)
	}
	return nil
}

// resolveArity statically searches dir's Go source for a package-level var
// declaration `recv = ...{ field: <descriptor> }` and extracts the declared
// arity from the descriptor expression, without type-checking the package:
// either the last argument of a `schema.NewFunction(...)` call or the
// `Arity` field of a `schema.Function{...}` composite literal. Generated
// `*_thorn.go` files are skipped since a re-run is about to replace them.
// Returns ok=false if no such declaration is found or its shape isn't one
// of those two forms.
func resolveArity(dir, ident string) (arity int, ok bool) {
	recv, field, ok := strings.Cut(ident, ".")
	if !ok {
		return 0, false
	}

	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, func(info fs.FileInfo) bool {
		return !strings.HasSuffix(info.Name(), "_thorn.go")
	}, 0)
	if err != nil {
		return 0, false
	}

	for _, pkg := range pkgs {
		for _, file := range pkg.Files {
			if n, ok := arityInFile(file, recv, field); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func arityInFile(file *ast.File, recv, field string) (int, bool) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.VAR {
			continue
		}
		for _, spec := range gen.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for i, name := range vs.Names {
				if name.Name != recv || i >= len(vs.Values) {
					continue
				}
				if n, ok := fieldArity(vs.Values[i], field); ok {
					return n, true
				}
			}
		}
	}
	return 0, false
}

// fieldArity finds field among a composite literal's keyed elements and
// extracts an arity from its value.
func fieldArity(expr ast.Expr, field string) (int, bool) {
	lit, ok := expr.(*ast.CompositeLit)
	if !ok {
		return 0, false
	}
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok || key.Name != field {
			continue
		}
		return arityFromDescriptor(kv.Value)
	}
	return 0, false
}

// arityFromDescriptor extracts a declared arity from a schema.Function
// descriptor expression: the final argument of a schema.NewFunction(...)
// call, or the Arity field of a schema.Function{...} composite literal.
func arityFromDescriptor(expr ast.Expr) (int, bool) {
	switch v := expr.(type) {
	case *ast.CallExpr:
		if len(v.Args) == 0 {
			return 0, false
		}
		return intLit(v.Args[len(v.Args)-1])
	case *ast.CompositeLit:
		for _, elt := range v.Elts {
			kv, ok := elt.(*ast.KeyValueExpr)
			if !ok {
				continue
			}
			key, ok := kv.Key.(*ast.Ident)
			if !ok || key.Name != "Arity" {
				continue
			}
			return intLit(kv.Value)
		}
	}
	return 0, false
}

func intLit(expr ast.Expr) (int, bool) {
	lit, ok := expr.(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return 0, false
	}
	n, err := strconv.Atoi(lit.Value)
	if err != nil {
		return 0, false
	}
	return n, true
}
