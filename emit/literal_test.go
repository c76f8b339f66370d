package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringLiteralEscaping(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"hello", "'hello'"},
		{"it's", `E'it\'s'`},
		{"a\\b", `E'a\\b'`},
		{"a\"b", `E'a\"b'`},
		{"a\nb", `E'a\nb'`},
		{"a\tb", `E'a\tb'`},
		{"a\rb", `E'a\rb'`},
		{"a\x00b", `E'a\0b'`},
		{"a\bb", `E'a\bb'`},
		{"a\x1ab", `E'a\zb'`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatLiteral(StringLiteral(c.in)), "input %q", c.in)
	}
}

func TestBoolLiteral(t *testing.T) {
	assert.Equal(t, "TRUE", FormatLiteral(BoolLiteral(true)))
	assert.Equal(t, "FALSE", FormatLiteral(BoolLiteral(false)))
}

func TestArrayLiteralNesting(t *testing.T) {
	arr := ArrayLiteral{IntLiteral(1), IntLiteral(2), IntLiteral(3)}
	assert.Equal(t, "'{1, 2, 3}'", FormatLiteral(arr))

	nested := ArrayLiteral{
		ArrayLiteral{IntLiteral(1), IntLiteral(2)},
		ArrayLiteral{IntLiteral(3), IntLiteral(4)},
	}
	assert.Equal(t, "'{{1, 2}, {3, 4}}'", FormatLiteral(nested))
}

func TestArrayLiteralStringsAreDoubleQuotedWhenNested(t *testing.T) {
	arr := ArrayLiteral{StringLiteral("a"), StringLiteral("b")}
	assert.Equal(t, `'{"a", "b"}'`, FormatLiteral(arr))
}

func TestByteStringLiteralHexForm(t *testing.T) {
	assert.Equal(t, `'\x1a2b'`, FormatLiteral(ByteStringLiteral([]byte{0x1a, 0x2b})))
}

func TestNullLiteral(t *testing.T) {
	assert.Equal(t, "NULL", FormatLiteral(Null))
}

func TestStringArrayLiteralAgreesWithPQQuoting(t *testing.T) {
	values := []string{"a", "b", "c"}
	ours := FormatLiteral(StringArrayLiteral(values))

	pqForm, err := QuotePQArray(values)
	assert.NoError(t, err)

	assert.Equal(t, `'{"a", "b", "c"}'`, ours)
	assert.Equal(t, `{"a","b","c"}`, pqForm)
	assert.Equal(t, sanityStripOuterBraces(pqForm), `"a","b","c"`)
}
