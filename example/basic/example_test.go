package example

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserByID_EmitsParameterizedSelect(t *testing.T) {
	var id int64 = 42
	text, types, values, err := GetUserByID(id)
	require.NoError(t, err)

	assert.Equal(t, `SELECT "users"."id", "users"."name" AS "name", "users"."email" AS "email" FROM "users" WHERE "users"."id" = $1`, text)
	assert.Equal(t, []string{"INT8"}, types)
	require.Len(t, values, 1)
	assert.Equal(t, &id, values[0])
}

func TestGetUserByID_CachesTextAcrossCalls(t *testing.T) {
	text1, _, _, err := GetUserByID(1)
	require.NoError(t, err)
	text2, _, _, err := GetUserByID(2)
	require.NoError(t, err)

	// the SQL text is cached behind sync.OnceValue; only the parameter
	// values differ between calls, never the text.
	assert.Equal(t, text1, text2)
}

func TestGetUserByIDRow_AccessorsReadByOrdinal(t *testing.T) {
	row := NewGetUserByIDRow([]any{"ada", "ada@example.com"})

	name, err := row.Name()
	require.NoError(t, err)
	assert.Equal(t, "ada", name)

	email, err := row.Email()
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", email)
}

func TestSearchUsersByIDs_JoinsOneParamPerElement(t *testing.T) {
	ids := []int64{1, 2, 3}
	text, types, values, err := SearchUsersByIDs(ids)
	require.NoError(t, err)

	assert.Equal(t, `SELECT "users"."id", "users"."name" FROM "users" WHERE "users"."id" IN ($1, $2, $3)`, text)
	assert.Equal(t, []string{"INT8", "INT8", "INT8"}, types)
	require.Len(t, values, 3)
	for i := range ids {
		assert.Equal(t, &ids[i], values[i])
	}
}

func TestSearchUsersByIDs_EmptySliceEmitsEmptyInList(t *testing.T) {
	text, types, values, err := SearchUsersByIDs(nil)
	require.NoError(t, err)

	assert.Equal(t, `SELECT "users"."id", "users"."name" FROM "users" WHERE "users"."id" IN ()`, text)
	assert.Empty(t, types)
	assert.Empty(t, values)
}
