package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SelectLiteralExport(t *testing.T) {
	b := NewBuilder()
	b.WriteStr("SELECT")
	b.WriteLiteral(IntLiteral(1))
	b.WriteStr("AS")
	b.WriteStr(`"one"`)

	text, types, values := b.Finish()
	assert.Equal(t, `SELECT 1 AS "one"`, text)
	assert.Empty(t, types)
	assert.Empty(t, values)
}

func TestBuilder_WriteColumnQualified(t *testing.T) {
	b := NewBuilder()
	b.WriteStr("SELECT")
	b.WriteColumn("id", "users")
	b.WriteStr(",")
	b.WriteColumn("name", "users")
	b.WriteStr("FROM")
	b.WriteTable("", "users", "")

	text, _, _ := b.Finish()
	assert.Equal(t, `SELECT "users"."id", "users"."name" FROM "users"`, text)
}

func TestBuilder_ParamReuseSharesSlot(t *testing.T) {
	b := NewBuilder()
	a, c := new(int), new(int)

	require.NoError(t, b.Param(a, "INT8"))
	require.NoError(t, b.Param(c, "TEXT"))
	require.NoError(t, b.Param(a, "INT8")) // reuse: same slot, same type

	text, types, values := b.Finish()
	assert.Equal(t, "$1 $2 $1", text)
	assert.Equal(t, []string{"INT8", "TEXT"}, types)
	assert.Equal(t, []any{a, c}, values)
}

func TestBuilder_ParamConflictingTypes(t *testing.T) {
	b := NewBuilder()
	ref := new(int)

	require.NoError(t, b.Param(ref, "INT8"))
	err := b.Param(ref, "TEXT")

	require.Error(t, err)
	var conflict *ConflictingParameterTypeError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.Index)
}

func TestBuilder_ParamUnknownSubsumedByConcrete(t *testing.T) {
	b := NewBuilder()
	ref := new(int)

	require.NoError(t, b.Param(ref, ""))
	require.NoError(t, b.Param(ref, "INT8"))

	_, types, _ := b.Finish()
	assert.Equal(t, []string{"INT8"}, types)
}

func TestBuilder_ParamInvalidExplicitIndex(t *testing.T) {
	b := NewBuilder()
	err := b.ParamAt(0, new(int), "INT8")
	assert.ErrorIs(t, err, ErrInvalidParameterIndex)
}

func TestBuilder_TrailingCommaAndParenRewrite(t *testing.T) {
	b := NewBuilder()
	b.WriteStr("INSERT")
	b.WriteStr("INTO")
	b.WriteTable("", "users", "")
	b.WriteStr("(")
	b.WriteColumnName("id")
	b.WriteStr(",")
	b.WriteColumnName("name")
	b.WriteStr(")")

	text, _, _ := b.Finish()
	assert.Equal(t, `INSERT INTO "users" ("id", "name")`, text)
}
