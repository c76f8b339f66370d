package translate

import "strings"

// canonicalCastType rewrites a `::Ident` cast target into its emitted
// PostgreSQL type spelling: uppercase, with the `_T` naming convention
// ("an array-of-T spelled with a leading underscore", PostgreSQL's own
// `_int8` family of array type names) rewritten to the `T_ARRAY` form
// spec.md's scenario 6 requires (`ARRAY[1,2,3]::_INT8` → `...::INT8_ARRAY`).
func canonicalCastType(ident string) string {
	upper := strings.ToUpper(ident)
	if strings.HasPrefix(upper, "_") {
		return upper[1:] + "_ARRAY"
	}
	return upper
}
