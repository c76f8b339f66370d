package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vippsas/thorn/translate"
)

func writeGoFile(t *testing.T, dir, name, src string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
}

func TestResolveArity_NewFunctionCall(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "tables.go", `package tables

import "github.com/vippsas/thorn/schema"

var Funcs = struct {
	SearchUsers schema.Function
}{
	SearchUsers: schema.NewFunction("public", "search_users", 2),
}
`)

	arity, ok := resolveArity(dir, "Funcs.SearchUsers")
	require.True(t, ok)
	assert.Equal(t, 2, arity)
}

func TestResolveArity_CompositeLiteral(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "tables.go", `package tables

import "github.com/vippsas/thorn/schema"

var Funcs = struct {
	Now schema.Function
}{
	Now: schema.Function{SchemaName: "public", FuncName: "now", Arity: 0},
}
`)

	arity, ok := resolveArity(dir, "Funcs.Now")
	require.True(t, ok)
	assert.Equal(t, 0, arity)
}

func TestResolveArity_UnresolvableReturnsNotOK(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "tables.go", `package tables

var Other = 42
`)

	_, ok := resolveArity(dir, "Missing.func")
	assert.False(t, ok)
}

func TestResolveArity_SkipsGeneratedThornFiles(t *testing.T) {
	dir := t.TempDir()
	// Only declared in a generated file that a re-run is about to replace;
	// resolveArity must not trust it.
	writeGoFile(t, dir, "query_thorn.go", `package tables

import "github.com/vippsas/thorn/schema"

var Funcs = struct {
	Stale schema.Function
}{
	Stale: schema.NewFunction("public", "stale", 9),
}
`)

	_, ok := resolveArity(dir, "Funcs.Stale")
	assert.False(t, ok)
}

func TestCheckArities_MismatchRaisesArityMismatchError(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "tables.go", `package tables

import "github.com/vippsas/thorn/schema"

var Funcs = struct {
	SearchUsers schema.Function
}{
	SearchUsers: schema.NewFunction("public", "search_users", 2),
}
`)

	prog := &translate.Program{
		Nodes: []translate.Node{
			translate.FuncCallNode{Ident: "Funcs.SearchUsers", Arity: 1},
		},
	}

	err := checkArities(dir, prog)
	require.Error(t, err)

	var compileErr *translate.Error
	require.ErrorAs(t, err, &compileErr)
}

func TestCheckArities_MatchingArityPasses(t *testing.T) {
	dir := t.TempDir()
	writeGoFile(t, dir, "tables.go", `package tables

import "github.com/vippsas/thorn/schema"

var Funcs = struct {
	SearchUsers schema.Function
}{
	SearchUsers: schema.NewFunction("public", "search_users", 2),
}
`)

	prog := &translate.Program{
		Nodes: []translate.Node{
			translate.FuncCallNode{Ident: "Funcs.SearchUsers", Arity: 2},
		},
	}

	assert.NoError(t, checkArities(dir, prog))
}

func TestCheckArities_UnresolvableDescriptorDefersToRuntime(t *testing.T) {
	dir := t.TempDir()

	prog := &translate.Program{
		Nodes: []translate.Node{
			translate.FuncCallNode{Ident: "Unknown.func", Arity: 3},
		},
	}

	assert.NoError(t, checkArities(dir, prog))
}
