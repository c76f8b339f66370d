package schema

import (
	"errors"
	"fmt"
)

// ErrArityMismatch is returned by CheckArity when a call site's argument
// count disagrees with the function's declared arity. cmd/thorngen also
// statically resolves descriptors it can find in source and rejects a
// mismatch before generating code (translate.ErrArityMismatch); CheckArity
// is the runtime backstop for descriptors it couldn't resolve that way.
var ErrArityMismatch = errors.New("function call arity mismatch")

// Function is a descriptor for a callable SQL function or stored procedure:
// a fully qualified name and its declared arity. `.func(args)` call sites
// are checked against this, statically by cmd/thorngen where it can resolve
// the descriptor and always at runtime via CheckArity (spec.md §4.3,
// "Function calls verify arity against the function descriptor").
type Function struct {
	SchemaName string
	FuncName   string
	Arity      int
}

// NewFunction builds a Function descriptor.
func NewFunction(schemaName, funcName string, arity int) Function {
	return Function{SchemaName: schemaName, FuncName: funcName, Arity: arity}
}

// QualifiedName returns the function's schema-qualified, double-quoted SQL
// name, suitable for direct emission before an argument list.
func (f Function) QualifiedName() string {
	if f.SchemaName == "" {
		return fmt.Sprintf("%q", f.FuncName)
	}
	return fmt.Sprintf("%q.%q", f.SchemaName, f.FuncName)
}

// CheckArity returns an error if got does not match the function's declared
// arity.
func (f Function) CheckArity(got int) error {
	if got != f.Arity {
		return fmt.Errorf("%w: function %s: expected %d argument(s), got %d", ErrArityMismatch, f.QualifiedName(), f.Arity, got)
	}
	return nil
}
