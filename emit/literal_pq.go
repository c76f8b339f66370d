package emit

import (
	"strings"

	"github.com/lib/pq"
)

// StringArrayLiteral builds an ArrayLiteral of StringLiteral members from a
// plain []string, the shape `::{ block }`/`{ block }` interpolation most
// commonly produces for IN-list or ANY($1) style parameters.
func StringArrayLiteral(values []string) ArrayLiteral {
	items := make(ArrayLiteral, len(values))
	for i, v := range values {
		items[i] = StringLiteral(v)
	}
	return items
}

// QuotePQArray renders values the same way github.com/lib/pq's own
// StringArray.Value encodes a text[] for the wire, used as a cross-check in
// tests that the hand-rolled array literal writer above agrees with the
// driver library's own quoting rules for the non-nested case.
func QuotePQArray(values []string) (string, error) {
	val, err := pq.StringArray(values).Value()
	if err != nil {
		return "", err
	}
	s, _ := val.(string)
	return s, nil
}

// sanityStripOuterBraces is a tiny helper used only by literal_test.go
// to compare pq's `{a,b}` body against our own nested writer's `{…}` body
// without the surrounding quotes pq.Value() does not add.
func sanityStripOuterBraces(s string) string {
	return strings.Trim(s, "{}")
}
