// Package translate implements the Translator (T): the compile-time walker
// that consumes a .thorn source file, drives the Classifier to decide token
// roles, invokes schema metadata for identifier rewriting, and lowers
// control-flow constructs and literals into a linear IR of emitter calls
// and passthrough Go statements (translate/ir.go), which cmd/thorngen then
// serializes into a generated Go source file (translate/codegen.go).
//
// Go has no procedural-macro facility, so where the original ran this pass
// inside the compiler via a proc macro, here it runs as a standalone
// generator invoked once per .thorn file, directly analogous to how the
// teacher project's own CLI (cli/cmd/build.go) walks a directory of .sql
// files and emits an artifact — the directory-walk-plus-single-command
// shape is unchanged, only what gets produced differs.
package translate

import "fmt"

// FileRef names a .thorn source file for error reporting, mirroring
// sqlparser/sqldocument's FileRef convention in the teacher project.
type FileRef string

// Pos is a position within a source file: 1-based line and column.
type Pos struct {
	File FileRef
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}
