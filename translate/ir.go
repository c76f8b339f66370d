package translate

// Node is one step of the linear program the translator lowers a .thorn
// file into: either a call against the runtime Emitter (emit.Builder) or a
// fragment of host Go control flow wrapping a nested run of Nodes. This is
// the "small IR, then serialize it" design spec.md §9 calls for instead of
// generating Go source text directly while parsing — this package's
// codegen.go is the only place that turns a Node into source text, so the
// parser in translate.go never deals with Go syntax itself.
//
// Unlike the original macro, which buffers consecutive literal tokens into
// one `stack` string and flushes it as a single write_str call, each Node
// here lowers to exactly one Builder call. Buffering is an optimization
// that would have to re-derive Builder's own trailing-punctuation rule at
// codegen time to stay correct; emitting one call per token is simpler and
// provably equivalent, at the cost of a larger generated function body.
type Node interface {
	node()
}

// WriteStr emits b.WriteStr(Str).
type WriteStrNode struct{ Str string }

// WriteLiteral emits b.WriteLiteral(Expr) where Expr is a Go expression
// producing an emit.Literal.
type WriteLiteralNode struct{ Expr string }

// WriteColumn emits b.WriteColumn(Col, Effective) — a schema-qualified
// column reference. Ident names the table binding it resolves against, for
// diagnostics only; Effective is the resolved snake_case table/alias name
// codegen writes as the literal second argument.
type WriteColumnNode struct {
	Ident     string
	Col       string
	Effective string
}

// WriteColumnName emits b.WriteColumnName(Col) — an unqualified column
// reference, the `Ident./Ident` shortcut's lowering target.
type WriteColumnNameNode struct{ Col string }

// WriteTable emits b.WriteTable(Schema, Relation, Alias) for the descriptor
// bound to Ident. Schema/Relation are resolved by codegen from the schema
// package descriptor variable named Ident; Alias is "" unless an `Ident AS
// Alias` form declared one upstream.
type WriteTableNode struct {
	Ident string
	Alias string
}

// Param emits b.Param(Expr, Type) (or b.ParamAt(Index, Expr, Type) when
// Index is nonzero), propagating any returned error.
type ParamNode struct {
	Expr  string
	Type  string
	Index int
}

// Cast emits the literal text "::TYPE" via WriteStrNode composition; kept as
// its own node only so codegen can apply the `_T` → `T_ARRAY` rewrite in one
// place (translate/cast.go) instead of scattering it through the parser.
type CastNode struct{ TypeName string }

// CastDynamic emits b.WriteStr("::" + Expr) where Expr yields the type name
// at runtime. Marks the emission dynamic.
type CastDynamicNode struct{ Expr string }

// RawInterp emits b.WriteStr(fmt.Sprint(Expr)) — the `@{ block }` raw,
// unescaped interpolation form. Marks the emission dynamic.
type RawInterpNode struct{ Expr string }

// LiteralInterp emits b.WriteLiteral(Expr) where Expr is a runtime value
// (not a literal token the parser saw directly) — the `{ block }` form.
// Marks the emission dynamic.
type LiteralInterpNode struct{ Expr string }

// Passthrough copies Code into the generated function body unchanged: the
// `${ block }` arbitrary-statement form, and `use`/`let`/`const`/macro-style
// statements encountered outside any recognized SQL form.
type PassthroughNode struct{ Code string }

// Export records that the most recently emitted column/literal should be
// added to the row accessor under Name, at its appearance ordinal.
type ExportNode struct{ Name string }

// FuncCall emits the arity check for the call and the function descriptor's
// qualified name. The parenthesized argument list is not part of this node:
// the parser lowers it into the nodes that follow, with WriteStrNode(",")
// between the arguments.
type FuncCallNode struct {
	Ident string
	Arity int
	Pos   Pos
}

// If lowers `if cond { ... } else if ... { ... } else { ... }` to a host Go
// if/else chain wrapping nested emissions. Marks the emission dynamic.
type IfNode struct {
	Cond     string
	Then     []Node
	ElseIfs  []ElseIf
	Else     []Node
	HasElse  bool
}

type ElseIf struct {
	Cond string
	Body []Node
}

// Match lowers `match expr { pat [if guard] => { ... }, ... }` to a host Go
// switch/type-switch-shaped statement. Marks the emission dynamic.
type MatchNode struct {
	Expr string
	Arms []MatchArm
}

type MatchArm struct {
	Pattern string
	Guard   string
	Body    []Node
}

// For lowers `for [join[(sep)]] pat in expr { ... }` to a host Go for loop.
// JoinSep is "" for a plain loop; otherwise it names the separator
// expression (default `","`) emitted between iterations via a
// first-iteration flag. Marks the emission dynamic.
type ForNode struct {
	Label   string
	JoinSep string
	HasJoin bool
	Pattern string
	Iter    string
	Body    []Node
}

func (WriteStrNode) node()        {}
func (WriteLiteralNode) node()    {}
func (WriteColumnNode) node()     {}
func (WriteColumnNameNode) node() {}
func (WriteTableNode) node()      {}
func (ParamNode) node()           {}
func (CastNode) node()            {}
func (CastDynamicNode) node()     {}
func (RawInterpNode) node()       {}
func (LiteralInterpNode) node()   {}
func (PassthroughNode) node()     {}
func (ExportNode) node()          {}
func (FuncCallNode) node()        {}
func (IfNode) node()              {}
func (MatchNode) node()           {}
func (ForNode) node()             {}

// Program is one emission's full lowered instruction sequence, plus the
// summary bits codegen needs beyond the Node list itself.
type Program struct {
	Nodes   []Node
	Dynamic bool
	Exports []string // export names in declaration order, index = row position
}

// CollectFuncCalls returns every FuncCallNode reachable from nodes, recursing
// into If/Match/For bodies, in first-appearance order. cmd/thorngen uses this
// to statically check call arity against the target package's function
// descriptors before generating code, ahead of the runtime
// schema.Function.CheckArity call codegen also emits.
func CollectFuncCalls(nodes []Node) []FuncCallNode {
	var out []FuncCallNode
	for _, n := range nodes {
		switch v := n.(type) {
		case FuncCallNode:
			out = append(out, v)
		case IfNode:
			out = append(out, CollectFuncCalls(v.Then)...)
			for _, ei := range v.ElseIfs {
				out = append(out, CollectFuncCalls(ei.Body)...)
			}
			out = append(out, CollectFuncCalls(v.Else)...)
		case MatchNode:
			for _, arm := range v.Arms {
				out = append(out, CollectFuncCalls(arm.Body)...)
			}
		case ForNode:
			out = append(out, CollectFuncCalls(v.Body)...)
		}
	}
	return out
}
