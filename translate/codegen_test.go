package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The cached sync.OnceValue closure for a static emission runs at
// package-init time, before any call's arguments exist — it must never
// splice a real parameter expression (like a bound function parameter
// named `id`) into that closure, only a quoted, comparable placeholder.
// The real expression is only ever evaluated in the per-call rebuild.
func TestGenerateStaticFunc_CachedClosureDoesNotReferenceCallParams(t *testing.T) {
	prog := translateSrc(t, `SELECT Users.Id FROM Users WHERE Users.Id = #{ &id as INT8 }`)
	require.False(t, prog.Dynamic)

	gen, err := Generate("example", "GetUserByID", "id int64", prog)
	require.NoError(t, err)

	assert.Contains(t, gen.Source, `b.Param("&id", "INT8")`)
	assert.NotContains(t, gen.Source, `b.Param(&id, "INT8")`)
	// the per-call rebuild still binds the real expression
	assert.Contains(t, gen.Source, `values = []any{&id}`)
}

// A static emission with no RawInterpNode must not import "fmt" (nothing
// in its generated body calls fmt.Sprint), and a dynamic emission must not
// import "sync" (nothing in its generated body calls sync.OnceValue) —
// either would be an unused import, which does not compile.
func TestGenerateImports_OmittedWhenUnused(t *testing.T) {
	static := translateSrc(t, `SELECT Users.Id FROM Users WHERE Users.Id = #{ &id as INT8 }`)
	gen, err := Generate("example", "GetUserByID", "id int64", static)
	require.NoError(t, err)
	assert.Contains(t, gen.Source, `"sync"`)
	assert.NotContains(t, gen.Source, `"fmt"`)

	dynamic := translateSrc(t, `for join(",") id in ids { #{ &id as INT8 } }`)
	require.True(t, dynamic.Dynamic)
	gen, err = Generate("example", "SearchUsersByIDs", "ids []int64", dynamic)
	require.NoError(t, err)
	assert.NotContains(t, gen.Source, `"sync"`)
	assert.NotContains(t, gen.Source, `"fmt"`)
}

// A dynamic emission whose body contains a raw `@{...}` interpolation does
// need "fmt", since that lowers to a fmt.Sprint call.
func TestGenerateImports_FmtWhenRawInterpPresent(t *testing.T) {
	prog := translateSrc(t, `if cond { @{ note } }`)
	require.True(t, prog.Dynamic)

	gen, err := Generate("example", "Emit", "", prog)
	require.NoError(t, err)
	assert.Contains(t, gen.Source, `"fmt"`)
}

// Go's single-variable `for x := range slice` binds x to the index, not the
// element. A for/in emission must bind its pattern to each element's value,
// so the generated loop must discard the index with `for _, pat := range`.
func TestGenerateForNode_RangesOverValuesNotIndices(t *testing.T) {
	prog := translateSrc(t, `for join(",") id in ids { #{ &id as INT8 } }`)
	require.True(t, prog.Dynamic)

	gen, err := Generate("example", "SearchUsersByIDs", "ids []int64", prog)
	require.NoError(t, err)

	assert.Contains(t, gen.Source, `for _, id := range ids {`)
	assert.NotContains(t, gen.Source, `for id := range ids {`)
}

func TestParseHeader(t *testing.T) {
	funcName, paramList, body := ParseHeader("//thorn:func GetUserByID(id int64)\nSELECT 1\n")
	assert.Equal(t, "GetUserByID", funcName)
	assert.Equal(t, "id int64", paramList)
	assert.Equal(t, "SELECT 1\n", body)
}

func TestParseHeader_DefaultsWhenNoDirective(t *testing.T) {
	funcName, paramList, body := ParseHeader("SELECT 1\n")
	assert.Equal(t, "Emit", funcName)
	assert.Empty(t, paramList)
	assert.Equal(t, "SELECT 1\n", body)
}
