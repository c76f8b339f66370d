package translate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func translateSrc(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := New(FileRef("test.thorn"), src).Translate()
	require.NoError(t, err)
	return prog
}

// Scenario 1: `SELECT 1 AS @One` -> `SELECT 1 AS "one"`; row accessor one at index 0.
func TestScenario1_LiteralExport(t *testing.T) {
	prog := translateSrc(t, `SELECT 1 AS @One`)

	assert.False(t, prog.Dynamic)
	assert.Equal(t, []string{"One"}, prog.Exports)

	require.Len(t, prog.Nodes, 5)
	assert.Equal(t, WriteStrNode{Str: "SELECT"}, prog.Nodes[0])
	assert.Equal(t, WriteLiteralNode{Expr: "emit.IntLiteral(1)"}, prog.Nodes[1])
	assert.Equal(t, WriteStrNode{Str: "AS"}, prog.Nodes[2])
	assert.Equal(t, WriteStrNode{Str: `"one"`}, prog.Nodes[3])
	assert.Equal(t, ExportNode{Name: "One"}, prog.Nodes[4])

	fields := RowFields(prog.Exports)
	require.Len(t, fields, 1)
	assert.Equal(t, "One", fields[0].Name)
	assert.Equal(t, 0, fields[0].Index)
}

// Scenario 2: a qualified WHERE clause with one typed parameter.
func TestScenario2_QualifiedColumnsAndParam(t *testing.T) {
	prog := translateSrc(t, `SELECT Users.Id, Users.Name FROM Users WHERE Users.Id = #{ &42_i64 as INT8 }`)

	assert.False(t, prog.Dynamic)
	assert.Empty(t, prog.Exports)

	var cols []WriteColumnNode
	var param *ParamNode
	for _, n := range prog.Nodes {
		switch v := n.(type) {
		case WriteColumnNode:
			cols = append(cols, v)
		case ParamNode:
			p := v
			param = &p
		}
	}
	require.Len(t, cols, 3) // Users.Id, Users.Name, Users.Id again in WHERE
	for _, c := range cols {
		assert.Equal(t, "Users", c.Ident)
		assert.Equal(t, "Users.Relation()", c.Effective)
	}
	assert.Equal(t, "Id", cols[0].Col)
	assert.Equal(t, "Name", cols[1].Col)
	assert.Equal(t, "Id", cols[2].Col)

	require.NotNil(t, param)
	assert.Equal(t, "&42_i64", param.Expr)
	assert.Equal(t, "INT8", param.Type)
	assert.Equal(t, 0, param.Index)

	var sawTable bool
	for _, n := range prog.Nodes {
		if tbl, ok := n.(WriteTableNode); ok {
			assert.Equal(t, "Users", tbl.Ident)
			sawTable = true
		}
	}
	assert.True(t, sawTable)
}

// Scenario 3: repeated parameter reference reuses one slot in the index
// table (named, not positional, reuse: `b` appears once in INSERT's VALUES
// and once in DO UPDATE's SET).
func TestScenario3_RepeatedParamReference(t *testing.T) {
	prog := translateSrc(t, `INSERT INTO Users (Id, Name) VALUES (#{a as INT8}, #{b as TEXT}) ON CONFLICT (Id) DO UPDATE Users SET (Name) = (#{b as TEXT})`)

	var params []ParamNode
	for _, n := range prog.Nodes {
		if p, ok := n.(ParamNode); ok {
			params = append(params, p)
		}
	}
	require.Len(t, params, 3)
	assert.Equal(t, "a", params[0].Expr)
	assert.Equal(t, "b", params[1].Expr)
	assert.Equal(t, "b", params[2].Expr)
	// The translator lowers every #{} occurrence to its own ParamNode;
	// slot reuse for a repeated value-reference is resolved at runtime by
	// emit.Builder.Param's interning (same ref -> same $N), not by the
	// translator deduplicating ParamNodes up front.
}

// Scenario 4: an alias declared upstream resolves a later dotted reference
// to the alias's quoted name rather than the original identifier's.
func TestScenario4_AliasResolution(t *testing.T) {
	prog := translateSrc(t, `Users AS Other Other.Id`)

	var tableNode *WriteTableNode
	var colNode *WriteColumnNode
	for _, n := range prog.Nodes {
		switch v := n.(type) {
		case WriteTableNode:
			tbl := v
			tableNode = &tbl
		case WriteColumnNode:
			col := v
			colNode = &col
		}
	}
	require.NotNil(t, tableNode)
	assert.Equal(t, "Users", tableNode.Ident)

	require.NotNil(t, colNode)
	assert.Equal(t, "Other", colNode.Ident)
	assert.Equal(t, "Id", colNode.Col)
	assert.Equal(t, `"other"`, colNode.Effective)
}

// Scenario 5: `for join("AND") cond in conditions { {cond} }` marks the
// emission dynamic and lowers to a ForNode carrying the join separator.
func TestScenario5_ForJoinIsDynamic(t *testing.T) {
	prog := translateSrc(t, `for join("AND") cond in conditions { {cond} }`)

	assert.True(t, prog.Dynamic)
	require.Len(t, prog.Nodes, 1)
	forNode, ok := prog.Nodes[0].(ForNode)
	require.True(t, ok)
	assert.True(t, forNode.HasJoin)
	assert.Equal(t, `"AND"`, forNode.JoinSep)
	assert.Equal(t, "cond", forNode.Pattern)
	assert.Equal(t, "conditions", forNode.Iter)

	require.Len(t, forNode.Body, 1)
	interp, ok := forNode.Body[0].(LiteralInterpNode)
	require.True(t, ok)
	assert.Equal(t, "cond", interp.Expr)
}

// Scenario 6: the `_T` array-cast naming convention rewrites to `T_ARRAY`.
func TestScenario6_ArrayCastRewrite(t *testing.T) {
	prog := translateSrc(t, `SELECT ARRAY[1,2,3]::_INT8`)

	var cast *CastNode
	for _, n := range prog.Nodes {
		if c, ok := n.(CastNode); ok {
			cast = &c
		}
	}
	require.NotNil(t, cast)
	assert.Equal(t, "_INT8", cast.TypeName)
	assert.Equal(t, "INT8_ARRAY", canonicalCastType(cast.TypeName))
}

// Boundary case: an empty argument list inside `.func()` lowers to an arity
// check requiring 0 arguments.
func TestBoundary_EmptyFuncCallArity(t *testing.T) {
	prog := translateSrc(t, `Foo.bar()`)

	require.Len(t, prog.Nodes, 3)
	call, ok := prog.Nodes[0].(FuncCallNode)
	require.True(t, ok)
	assert.Equal(t, "Foo.bar", call.Ident)
	assert.Equal(t, 0, call.Arity)
	assert.Equal(t, WriteStrNode{Str: "("}, prog.Nodes[1])
	assert.Equal(t, WriteStrNode{Str: ")"}, prog.Nodes[2])
}

// An `AS Name.Col` output-column reference inside a named CTE body, where
// Name matches the CTE's own name, lowers to an unqualified column-name
// write and is accepted.
func TestCTEBody_AsNameColMatchingCTENameAccepted(t *testing.T) {
	prog := translateSrc(t, `WITH Cte AS ( SELECT 1 AS Cte.Val ) SELECT Cte.Val FROM Cte`)

	var found bool
	for i, n := range prog.Nodes {
		if n == (WriteStrNode{Str: "AS"}) && i+1 < len(prog.Nodes) {
			if col, ok := prog.Nodes[i+1].(WriteColumnNameNode); ok && col.Col == "Val" {
				found = true
			}
		}
	}
	assert.True(t, found, "expected a WriteColumnNameNode{Col: \"Val\"} following AS")
}

// An `AS Name.Col` reference inside a named CTE body naming a different
// identifier than the enclosing CTE is rejected with ErrCTENameMismatch.
func TestCTEBody_AsNameColMismatchedNameRejected(t *testing.T) {
	_, err := New(FileRef("test.thorn"), `WITH Cte AS ( SELECT 1 AS Other.Val ) SELECT Cte.Val FROM Cte`).Translate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCTENameMismatch))
}

// Boundary case: `Table.Col AS @_` exports the concatenated table+column
// name, addressable at its appearance ordinal.
func TestBoundary_ColumnShortcutExport(t *testing.T) {
	prog := translateSrc(t, `Users.Id AS @_`)

	assert.Equal(t, []string{"UsersId"}, prog.Exports)
}

func TestTrailingCommaBeforeClosingParen(t *testing.T) {
	_, err := New(FileRef("test.thorn"), `Foo.bar(1, 2,)`).Translate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTrailingComma)
}

func TestTrailingCommaBeforeFrom(t *testing.T) {
	_, err := New(FileRef("test.thorn"), `SELECT Users.Id, FROM Users`).Translate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTrailingComma)
}

func TestDuplicateExportRejected(t *testing.T) {
	_, err := New(FileRef("test.thorn"), `SELECT 1 AS @One, 2 AS @One`).Translate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateExport)
}

func TestExportInsideBranchRejected(t *testing.T) {
	_, err := New(FileRef("test.thorn"), `if cond { SELECT 1 AS @One }`).Translate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExportInBranch)
}

func TestInsertColumnListRejectsQualifiedName(t *testing.T) {
	_, err := New(FileRef("test.thorn"), `INSERT INTO Users (Users.Id) VALUES (#{a as INT8})`).Translate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrQualifiedColumnInList)
}

func TestBareDoUpdateRejected(t *testing.T) {
	_, err := New(FileRef("test.thorn"), `INSERT INTO Users (Id) VALUES (#{a as INT8}) ON CONFLICT (Id) DO UPDATE SET (Name) = (#{b as TEXT})`).Translate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBareDoUpdate)
}

func TestBareUpdateAssignmentRejected(t *testing.T) {
	_, err := New(FileRef("test.thorn"), `UPDATE Users SET Id = #{a as INT8}`).Translate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBareUpdateAssignment)
}

func TestUnexpectedASRightHandSide(t *testing.T) {
	_, err := New(FileRef("test.thorn"), `Users AS 1`).Translate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedAS)
}

// Bool literals pass through as the bare SQL keyword, not a table reference.
func TestBoolLiteralPassthrough(t *testing.T) {
	prog := translateSrc(t, `SELECT true, false`)

	var strs []string
	for _, n := range prog.Nodes {
		if s, ok := n.(WriteStrNode); ok {
			strs = append(strs, s.Str)
		}
	}
	assert.Contains(t, strs, "TRUE")
	assert.Contains(t, strs, "FALSE")
}

// Static emissions with no control flow or dynamic interpolation must
// report Dynamic == false so codegen takes the cached sync.OnceValue path.
func TestStaticClassification(t *testing.T) {
	prog := translateSrc(t, `SELECT Users.Id FROM Users WHERE Users.Id = #{a as INT8}`)
	assert.False(t, prog.Dynamic)
}

func TestDynamicClassificationIf(t *testing.T) {
	prog := translateSrc(t, `SELECT 1 if cond { SELECT 2 }`)
	assert.True(t, prog.Dynamic)
}

func TestDynamicClassificationMatch(t *testing.T) {
	prog := translateSrc(t, `match x { 1 => { SELECT 1 } }`)
	assert.True(t, prog.Dynamic)
}
