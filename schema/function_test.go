package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunction_QualifiedName(t *testing.T) {
	unqualified := NewFunction("", "now", 0)
	assert.Equal(t, `"now"`, unqualified.QualifiedName())

	qualified := NewFunction("public", "search_users", 2)
	assert.Equal(t, `"public"."search_users"`, qualified.QualifiedName())
}

func TestFunction_CheckArity(t *testing.T) {
	fn := NewFunction("public", "search_users", 2)

	assert.NoError(t, fn.CheckArity(2))

	err := fn.CheckArity(1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrArityMismatch))
	assert.Contains(t, err.Error(), `"public"."search_users"`)
	assert.Contains(t, err.Error(), "expected 2 argument(s), got 1")
}
