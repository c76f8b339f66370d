package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnDesc_Accessors(t *testing.T) {
	col := ColumnDesc{
		ColumnName:    "email",
		ColumnType:    ColumnType{PG: "TEXT", Nullable: false},
		ColumnComment: "primary contact address",
	}

	assert.Equal(t, "email", col.Name())
	assert.Equal(t, ColumnType{PG: "TEXT", Nullable: false}, col.Type())
	assert.False(t, col.Nullable())
	assert.Equal(t, "primary contact address", col.Comment())
}

func TestColumnDesc_NullableReflectsColumnType(t *testing.T) {
	nullable := ColumnDesc{ColumnName: "middle_name", ColumnType: ColumnType{PG: "TEXT"}.AsNullable()}
	assert.True(t, nullable.Nullable())

	notNullable := ColumnDesc{ColumnName: "id", ColumnType: ColumnType{PG: "INT8"}}
	assert.False(t, notNullable.Nullable())
}

func TestTableDesc_WithAlias(t *testing.T) {
	users := TableDesc{RelName: "users", ColumnList: []Column{
		ColumnDesc{ColumnName: "id", ColumnType: ColumnType{PG: "INT8"}},
	}}

	alias, ok := users.Alias()
	assert.Empty(t, alias)
	assert.False(t, ok)

	aliased := users.WithAlias("u")
	alias, ok = aliased.Alias()
	assert.Equal(t, "u", alias)
	assert.True(t, ok)

	// WithAlias returns a copy; the original is untouched.
	_, ok = users.Alias()
	assert.False(t, ok)
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Id":               "id",
		"UserID":           "user_id",
		"SearchUser":       "search_user",
		"HTTPStatus":       "http_status",
		"alreadySnakeLike": "already_snake_like",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToSnakeCase(in), "ToSnakeCase(%q)", in)
	}
}
