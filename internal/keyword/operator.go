package keyword

// operators lists every multi-character PostgreSQL operator this classifier
// recognizes, longest first within each starting byte so the longest match
// always wins. Single-character operators are handled by the translator
// directly (they pass through as ordinary punctuation tokens); this table
// only needs to settle cases where a shorter prefix would otherwise be
// mistaken for a complete operator.
var operators = []string{
	"->>", "#>>",
	"||", "@@", "@>", "<@", "^@", "&&", "->", "#>", "<<", ">>", "<>", "!=", ">=", "<=",
}

// MatchOperator peeks up to three characters of s and returns the longest
// operator from the table that is a prefix of s, along with its length in
// bytes. It returns ("", 0) if no multi-character operator matches, in which
// case the caller should fall back to treating the leading byte as a
// single-character operator or ordinary punctuation.
func MatchOperator(s string) (string, int) {
	limit := 3
	if len(s) < limit {
		limit = len(s)
	}

	best := ""
	for _, op := range operators {
		if len(op) > limit {
			continue
		}
		if len(op) <= len(s) && s[:len(op)] == op && len(op) > len(best) {
			best = op
		}
	}
	if best == "" {
		return "", 0
	}
	return best, len(best)
}

// singleCharOperators is the set of one-byte arithmetic/bitwise/comparison
// operators and separators the translator passes straight through when no
// multi-character operator matches.
var singleCharOperators = map[byte]struct{}{
	'+': {}, '-': {}, '*': {}, '/': {}, '%': {}, '^': {},
	'<': {}, '>': {}, '=': {}, '&': {}, '|': {}, '#': {}, '~': {}, '@': {},
	',': {}, ';': {},
}

// IsSingleCharOperator reports whether b is a recognized one-byte SQL
// operator or separator.
func IsSingleCharOperator(b byte) bool {
	_, ok := singleCharOperators[b]
	return ok
}
