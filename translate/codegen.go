package translate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vippsas/thorn/schema"
)

// Generated holds one .thorn file's compiled output: the Go source text
// cmd/thorngen writes to a `_thorn.go` file, plus the row-field metadata it
// used to build the RowAccessor so callers (and tests) can inspect the
// export layout without re-parsing generated source.
type Generated struct {
	Source string
	Fields []RowField
}

// Generate turns a Program into the full `_thorn.go` source, under the
// given package name, for a single exported function named FuncName taking
// paramList as its raw Go parameter list (the text between the parens of a
// func declaration, e.g. `id int64, name string`; empty for an emission
// that references no call-scoped values). This mirrors cmd/thorngen's
// one-function-per-file granularity: each .thorn file declares exactly one
// emission, analogous to one `sql2! { ... }` macro invocation in the
// original, except the macro's surrounding Rust function signature has no
// Go equivalent to infer from, so the .thorn file states it explicitly via
// a `//thorn:func Name(params)` header line that cmd/thorngen parses
// (translate.ParseHeader) before calling Generate.
func Generate(pkg, funcName, paramList string, prog *Program) (*Generated, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "// Code generated by thorngen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	writeImports(&b, prog)

	fields := RowFields(prog.Exports)
	rowTypeName := funcName + "Row"
	writeRowAccessor(&b, rowTypeName, fields)

	if prog.Dynamic {
		writeDynamicFunc(&b, funcName, paramList, rowTypeName, prog)
	} else {
		writeStaticFunc(&b, funcName, paramList, rowTypeName, prog)
	}

	return &Generated{Source: b.String(), Fields: fields}, nil
}

// writeImports emits only the imports the generated body actually
// references: "sync" for a static emission's sync.OnceValue cache, "fmt"
// only if the emission contains a RawInterpNode (the only construct that
// lowers to fmt.Sprint), and "github.com/vippsas/thorn/emit" always, since
// every emission calls through a Builder.
func writeImports(b *strings.Builder, prog *Program) {
	var lines []string
	if !prog.Dynamic {
		lines = append(lines, `"sync"`)
	}
	if containsRawInterp(prog.Nodes) {
		lines = append(lines, `"fmt"`)
	}
	fmt.Fprintf(b, "import (\n")
	for _, l := range lines {
		fmt.Fprintf(b, "\t%s\n", l)
	}
	if len(lines) > 0 {
		fmt.Fprintf(b, "\n")
	}
	fmt.Fprintf(b, "\t\"github.com/vippsas/thorn/emit\"\n)\n\n")
}

// containsRawInterp reports whether nodes, recursed into every branch/loop
// body, contains a RawInterpNode.
func containsRawInterp(nodes []Node) bool {
	for _, n := range nodes {
		switch v := n.(type) {
		case RawInterpNode:
			return true
		case IfNode:
			if containsRawInterp(v.Then) || containsRawInterp(v.Else) {
				return true
			}
			for _, ei := range v.ElseIfs {
				if containsRawInterp(ei.Body) {
					return true
				}
			}
		case MatchNode:
			for _, arm := range v.Arms {
				if containsRawInterp(arm.Body) {
					return true
				}
			}
		case ForNode:
			if containsRawInterp(v.Body) {
				return true
			}
		}
	}
	return false
}

// ParseHeader extracts a leading `//thorn:func Name(params)` directive line
// from a .thorn file, returning the declared function name, its raw
// parameter list, and the remaining source to translate. If no directive
// line is present, funcName defaults to "Emit" and the whole input is
// returned as body.
func ParseHeader(src string) (funcName, paramList, body string) {
	const prefix = "//thorn:func "
	trimmed := strings.TrimLeft(src, " \t\r\n")
	if !strings.HasPrefix(trimmed, prefix) {
		return "Emit", "", src
	}
	nl := strings.IndexByte(trimmed, '\n')
	line := trimmed
	rest := ""
	if nl >= 0 {
		line = trimmed[:nl]
		rest = trimmed[nl+1:]
	}
	decl := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	open := strings.IndexByte(decl, '(')
	shut := strings.LastIndexByte(decl, ')')
	if open < 0 || shut < 0 || shut < open {
		return "Emit", "", src
	}
	return strings.TrimSpace(decl[:open]), strings.TrimSpace(decl[open+1 : shut]), rest
}

// writeRowAccessor emits the generated row-accessor type: one method per
// export, returning the scanned row value at its appearance ordinal as
// `any`; no type assertion or conversion is generated (SPEC_FULL.md §3,
// "Row accessor metadata").
func writeRowAccessor(b *strings.Builder, typeName string, fields []RowField) {
	fmt.Fprintf(b, "// %s exposes one accessor per exported column.\n", typeName)
	fmt.Fprintf(b, "type %s struct {\n\tvalues []any\n}\n\n", typeName)
	for _, f := range fields {
		methodName := exportMethodName(f.Name)
		fmt.Fprintf(b, "func (r %s) %s() (any, error) {\n", typeName, methodName)
		fmt.Fprintf(b, "\tif %d >= len(r.values) {\n\t\treturn nil, emit.ErrInvalidParameterIndex\n\t}\n", f.Index)
		fmt.Fprintf(b, "\treturn r.values[%d], nil\n}\n\n", f.Index)
	}
}

func exportMethodName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// writeStaticFunc emits the cached path for a call-site whose SQL text
// never varies between invocations: the builder program runs exactly once,
// lazily, behind sync.OnceValue, matching spec.md §4.4's caching contract.
// Only the parameter *values* are rebuilt per call (spec.md §4.4: "on
// subsequent calls only rebind the parameter value references") — a second,
// uncached pass collects just the value expressions in the same slot
// order the cached builder run used, without re-running any WriteStr/
// WriteColumn/WriteTable calls.
//
// The cached closure is a package-level sync.OnceValue body: it runs
// before any particular call's arguments exist, so it cannot reference a
// ParamNode's real expression (a call parameter like `id` is simply not in
// scope there). cacheSafeNodes substitutes each parameter's quoted source
// text as the Builder.Param ref instead — distinct expressions still
// produce distinct, comparable map keys for slot interning, and identical
// repeated expressions still collide onto one slot, the same dedup
// behavior the real per-call ref would produce, without requiring the
// literal expression to be evaluable at package-init time.
func writeStaticFunc(b *strings.Builder, funcName, paramList, rowType string, prog *Program) {
	cacheVar := "cached" + funcName + "SQL"
	fmt.Fprintf(b, "var %s = sync.OnceValue(func() (string, []string, error) {\n", cacheVar)
	fmt.Fprintf(b, "\tb := emit.NewBuilder()\n")
	writeNodes(b, "\t", cacheSafeNodes(prog.Nodes), `"", nil, err`)
	fmt.Fprintf(b, "\ttext, types, _ := b.Finish()\n")
	fmt.Fprintf(b, "\treturn text, types, nil\n")
	fmt.Fprintf(b, "})\n\n")

	fmt.Fprintf(b, "// %s returns the cached SQL text, the unified parameter types, and this\n", funcName)
	fmt.Fprintf(b, "// call's parameter values, plus a %s for reading the declared exports\n", rowType)
	fmt.Fprintf(b, "// off a scanned row.\n")
	fmt.Fprintf(b, "func %s(%s) (text string, types []string, values []any, err error) {\n", funcName, paramList)
	fmt.Fprintf(b, "\ttext, types, err = %s()\n", cacheVar)
	fmt.Fprintf(b, "\tif err != nil {\n\t\treturn \"\", nil, nil, err\n\t}\n")
	exprs := collectParamExprs(prog.Nodes)
	if len(exprs) == 0 {
		fmt.Fprintf(b, "\treturn text, types, nil, nil\n}\n\n")
	} else {
		fmt.Fprintf(b, "\tvalues = []any{%s}\n", strings.Join(exprs, ", "))
		fmt.Fprintf(b, "\treturn text, types, values, nil\n}\n\n")
	}

	fmt.Fprintf(b, "// New%s wraps row values for %s's exports.\n", rowType, funcName)
	fmt.Fprintf(b, "func New%s(values []any) %s {\n\treturn %s{values: values}\n}\n", rowType, rowType, rowType)
}

// cacheSafeNodes returns a shallow copy of nodes with every ParamNode's Expr
// replaced by its own quoted source text, so the cached sync.OnceValue
// closure can pass it to Builder.Param without the real call-scoped
// expression being in scope there. A static Program (the only kind
// writeStaticFunc ever sees) cannot contain If/Match/For, so ParamNode only
// ever appears at this flat top level — no recursion into branch bodies is
// needed.
func cacheSafeNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		if p, ok := n.(ParamNode); ok {
			p.Expr = strconv.Quote(p.Expr)
			out[i] = p
			continue
		}
		out[i] = n
	}
	return out
}

// collectParamExprs returns each ParamNode's value expression in the order
// the cached builder first bound it to a slot, deduplicating repeated
// expressions (a parameter referenced twice in the .thorn source shares one
// slot, per spec.md §3) so the rebuilt values slice lines up with the
// cached types slice index for index.
func collectParamExprs(nodes []Node) []string {
	var exprs []string
	seen := make(map[string]struct{})
	for _, n := range nodes {
		p, ok := n.(ParamNode)
		if !ok {
			continue
		}
		if _, dup := seen[p.Expr]; dup {
			continue
		}
		seen[p.Expr] = struct{}{}
		exprs = append(exprs, p.Expr)
	}
	return exprs
}

// writeDynamicFunc emits the rebuild-every-call path: the emission program
// runs in full on each invocation because it contains control flow,
// runtime interpolation, or a dynamic cast (spec.md §4.4).
func writeDynamicFunc(b *strings.Builder, funcName, paramList, rowType string, prog *Program) {
	fmt.Fprintf(b, "// %s builds the SQL text and parameters for this emission; its source\n", funcName)
	fmt.Fprintf(b, "// contains control flow or runtime interpolation, so it runs in full on\n")
	fmt.Fprintf(b, "// every call rather than being cached (spec.md's static/dynamic split).\n")
	fmt.Fprintf(b, "func %s(%s) (text string, types []string, values []any, err error) {\n", funcName, paramList)
	fmt.Fprintf(b, "\tb := emit.NewBuilder()\n")
	writeNodes(b, "\t", prog.Nodes, `"", nil, nil, err`)
	fmt.Fprintf(b, "\ttext, types, values = b.Finish()\n")
	fmt.Fprintf(b, "\treturn text, types, values, nil\n}\n\n")

	fmt.Fprintf(b, "// New%s wraps row values for %s's exports.\n", rowType, funcName)
	fmt.Fprintf(b, "func New%s(values []any) %s {\n\treturn %s{values: values}\n}\n", rowType, rowType, rowType)
}

// forFirstFlag names the per-nesting-level "is this the first iteration"
// flag emitted for a `for ... join ...` loop (scenario: a comma-joined
// WHERE IN list built from a slice, spec.md §4.3's for-with-join form).
// Nesting depth rather than a global counter keeps the name stable and
// collision-free without threading a counter value through every call.
func forFirstFlag(depth int) string {
	return fmt.Sprintf("thornFirstIter%d", depth)
}

func writeNodes(b *strings.Builder, indent string, nodes []Node, errReturn string) {
	writeNodesAt(b, indent, nodes, errReturn, 0)
}

func writeNodesAt(b *strings.Builder, indent string, nodes []Node, errReturn string, forDepth int) {
	for _, n := range nodes {
		writeNode(b, indent, n, errReturn, forDepth)
	}
}

// writeNode emits one IR node's Go source. errReturn is the full value list
// (minus the leading "return ") an early error return uses in the enclosing
// function — three zero values then err in a dynamic emission function,
// two zero values then err in the sync.OnceValue closure a static emission
// caches its builder run behind — so the same
// node-emission code works under either return arity. forDepth names the
// nearest enclosing for-loop's first-iteration flag for a nested for's join
// separator.
func writeNode(b *strings.Builder, indent string, n Node, errReturn string, forDepth int) {
	switch v := n.(type) {
	case WriteStrNode:
		fmt.Fprintf(b, "%sb.WriteStr(%s)\n", indent, strconv.Quote(v.Str))

	case WriteLiteralNode:
		fmt.Fprintf(b, "%sb.WriteLiteral(%s)\n", indent, v.Expr)

	case WriteColumnNode:
		fmt.Fprintf(b, "%sb.WriteColumn(%s, %s)\n", indent, strconv.Quote(schema.ToSnakeCase(v.Col)), v.Effective)

	case WriteColumnNameNode:
		fmt.Fprintf(b, "%sb.WriteColumnName(%s)\n", indent, strconv.Quote(schema.ToSnakeCase(v.Col)))

	case WriteTableNode:
		alias := `""`
		if v.Alias != "" {
			alias = strconv.Quote(v.Alias)
		}
		fmt.Fprintf(b, "%sb.WriteTable(%s.Schema(), %s.Relation(), %s)\n", indent, v.Ident, v.Ident, alias)

	case ParamNode:
		if v.Index == 0 {
			fmt.Fprintf(b, "%sif err := b.Param(%s, %s); err != nil {\n%s\treturn %s\n%s}\n", indent, v.Expr, strconv.Quote(v.Type), indent, errReturn, indent)
		} else {
			fmt.Fprintf(b, "%sif err := b.ParamAt(%d, %s, %s); err != nil {\n%s\treturn %s\n%s}\n", indent, v.Index, v.Expr, strconv.Quote(v.Type), indent, errReturn, indent)
		}

	case CastNode:
		fmt.Fprintf(b, "%sb.WriteStr(%s)\n", indent, strconv.Quote("::"+canonicalCastType(v.TypeName)))

	case CastDynamicNode:
		fmt.Fprintf(b, "%sb.WriteStr(\"::\" + %s)\n", indent, v.Expr)

	case RawInterpNode:
		fmt.Fprintf(b, "%sb.WriteStr(fmt.Sprint(%s))\n", indent, v.Expr)

	case LiteralInterpNode:
		fmt.Fprintf(b, "%sb.WriteLiteral(%s)\n", indent, v.Expr)

	case PassthroughNode:
		fmt.Fprintf(b, "%s%s\n", indent, v.Code)

	case ExportNode:
		fmt.Fprintf(b, "%s// export %s recorded at its appearance ordinal\n", indent, v.Name)

	case FuncCallNode:
		fmt.Fprintf(b, "%sif err := %s.CheckArity(%d); err != nil {\n%s\treturn %s\n%s}\n", indent, v.Ident, v.Arity, indent, errReturn, indent)
		fmt.Fprintf(b, "%sb.WriteStr(%s.QualifiedName())\n", indent, v.Ident)

	case IfNode:
		fmt.Fprintf(b, "%sif %s {\n", indent, v.Cond)
		writeNodesAt(b, indent+"\t", v.Then, errReturn, forDepth)
		for _, ei := range v.ElseIfs {
			fmt.Fprintf(b, "%s} else if %s {\n", indent, ei.Cond)
			writeNodesAt(b, indent+"\t", ei.Body, errReturn, forDepth)
		}
		if v.HasElse {
			fmt.Fprintf(b, "%s} else {\n", indent)
			writeNodesAt(b, indent+"\t", v.Else, errReturn, forDepth)
		}
		fmt.Fprintf(b, "%s}\n", indent)

	case MatchNode:
		fmt.Fprintf(b, "%sswitch %s {\n", indent, v.Expr)
		for _, arm := range v.Arms {
			if arm.Guard != "" {
				fmt.Fprintf(b, "%scase %s:\n%sif %s {\n", indent, arm.Pattern, indent+"\t", arm.Guard)
				writeNodesAt(b, indent+"\t\t", arm.Body, errReturn, forDepth)
				fmt.Fprintf(b, "%s}\n", indent+"\t")
				continue
			}
			fmt.Fprintf(b, "%scase %s:\n", indent, arm.Pattern)
			writeNodesAt(b, indent+"\t", arm.Body, errReturn, forDepth)
		}
		fmt.Fprintf(b, "%s}\n", indent)

	case ForNode:
		label := ""
		if v.Label != "" {
			label = v.Label + ": "
		}
		nextDepth := forDepth + 1
		flag := forFirstFlag(nextDepth)
		if v.HasJoin {
			fmt.Fprintf(b, "%s%s := true\n", indent, flag)
		}
		fmt.Fprintf(b, "%s%sfor _, %s := range %s {\n", indent, label, v.Pattern, v.Iter)
		if v.HasJoin {
			fmt.Fprintf(b, "%s\tif !%s {\n%s\t\tb.WriteStr(%s)\n%s\t}\n", indent, flag, indent, v.JoinSep, indent)
		}
		writeNodesAt(b, indent+"\t", v.Body, errReturn, nextDepth)
		if v.HasJoin {
			fmt.Fprintf(b, "%s\t%s = false\n", indent, flag)
		}
		fmt.Fprintf(b, "%s}\n", indent)

	default:
		fmt.Fprintf(b, "%s// unsupported node %T\n", indent, n)
	}
}
