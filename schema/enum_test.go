package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnum_QualifiedName(t *testing.T) {
	unqualified := NewEnum("", "mood", "sad", "ok", "happy")
	assert.Equal(t, `"mood"`, unqualified.QualifiedName())

	qualified := NewEnum("public", "mood", "sad", "ok", "happy")
	assert.Equal(t, `"public"."mood"`, qualified.QualifiedName())
}

func TestEnum_FromOID_UnboundReturnsNotOK(t *testing.T) {
	e := NewEnum("public", "mood", "sad", "ok", "happy")

	_, ok := e.FromOID(12345)
	assert.False(t, ok)
}

func TestEnum_FromOID_BoundLookupSucceeds(t *testing.T) {
	e := NewEnum("public", "mood", "sad", "ok", "happy").WithOIDs(map[uint32]string{
		16401: "sad",
		16402: "ok",
		16403: "happy",
	})

	variant, ok := e.FromOID(16402)
	assert.True(t, ok)
	assert.Equal(t, "ok", variant)

	_, ok = e.FromOID(99999)
	assert.False(t, ok)
}
