package keyword

import "testing"

func TestIsKeyword(t *testing.T) {
	cases := []struct {
		word string
		want bool
	}{
		{"SELECT", true},
		{"FROM", true},
		{"WHERE", true},
		{"INSERT", true},
		{"AS", true},
		{"Users", false},
		{"id", false},
		{"select", false}, // case-sensitive: only the canonical uppercase spelling matches
	}

	for _, c := range cases {
		if got := IsKeyword(c.word); got != c.want {
			t.Errorf("IsKeyword(%q) = %v, want %v", c.word, got, c.want)
		}
	}
}

func TestMatchOperator(t *testing.T) {
	cases := []struct {
		in      string
		wantOp  string
		wantLen int
	}{
		{"->>rest", "->>", 3},
		{"#>>rest", "#>>", 3},
		{"->rest", "->", 2},
		{"#>rest", "#>", 2},
		{"||rest", "||", 2},
		{"<>rest", "<>", 2},
		{"!=rest", "!=", 2},
		{">=rest", ">=", 2},
		{"<=rest", "<=", 2},
		{"<<rest", "<<", 2},
		{">>rest", ">>", 2},
		{"@@rest", "@@", 2},
		{"@>rest", "@>", 2},
		{"<@rest", "<@", 2},
		{"^@rest", "^@", 2},
		{"&&rest", "&&", 2},
		{"+rest", "", 0},
		{",rest", "", 0},
		{"", "", 0},
	}

	for _, c := range cases {
		op, n := MatchOperator(c.in)
		if op != c.wantOp || n != c.wantLen {
			t.Errorf("MatchOperator(%q) = (%q, %d), want (%q, %d)", c.in, op, n, c.wantOp, c.wantLen)
		}
	}
}

func TestIsSingleCharOperator(t *testing.T) {
	for _, b := range []byte{'+', '-', '*', '/', '<', '>', '=', ',', ';'} {
		if !IsSingleCharOperator(b) {
			t.Errorf("IsSingleCharOperator(%q) = false, want true", b)
		}
	}
	if IsSingleCharOperator('a') {
		t.Error("IsSingleCharOperator('a') = true, want false")
	}
}
