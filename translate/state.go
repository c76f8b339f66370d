package translate

// tableBinding records what a bare identifier was declared to mean once
// the parser has seen its declaring form (a bare table reference, an
// `Ident AS Alias`, or a CTE name) — the thing later `Ident.Col` /
// `Alias.Col` references are resolved against. Descriptors are looked up
// by reference, never copied by arena index (spec.md §9, "nested
// type-driven dispatch").
type tableBinding struct {
	declaredIdent string // original spelling, e.g. "Users" or "Other"
	effectiveName string // snake_case name write_column should qualify with
	isCTE         bool
}

// scope is the explicit, immutable-per-level context threaded through
// recursive translation. Re-architected per spec.md §9 ("ambient current-CTE
// state ... explicit context value threaded through recursive translation,
// never a global") — every recursive call that changes scope-local state
// does so by constructing a derived scope and passing it down, rather than
// mutating package-level state.
type scope struct {
	depth          int
	currentCTEName string // "" when not inside a CTE body
	topLevel       bool   // true only at the outermost scope of one emission; exports valid here
	inBranch       bool   // true inside if/match/for bodies; exports forbidden here
}

func rootScope() scope {
	return scope{depth: 0, topLevel: true}
}

// nested returns the scope for one level down inside `(` `[` or a CTE body;
// exports become invalid there unless the caller explicitly permits it
// (inserting/DO-UPDATE column lists are still "top level" for export
// purposes, so callers opt back in rather than this method guessing).
func (s scope) nested() scope {
	return scope{depth: s.depth + 1, currentCTEName: s.currentCTEName, topLevel: false, inBranch: s.inBranch}
}

// withCTE returns a scope recording that CTE name as current for its body.
func (s scope) withCTE(name string) scope {
	n := s.nested()
	n.currentCTEName = name
	return n
}

// branch returns the scope for the body of an if/match/for construct:
// exports are forbidden here (spec.md §4.7, "enter branch/loop/match body:
// ... any export attempt inside fails") even though the body text sits at
// the same brace depth an ordinary `(...)` would.
func (s scope) branch() scope {
	n := s.nested()
	n.inBranch = true
	return n
}

// bindings is the mutable per-emission symbol table: which identifiers have
// been declared as tables/aliases/CTE names so far. It is owned by the
// translator instance for one file, not by scope, since declarations
// persist across sibling scopes within the same emission (an `Ident AS
// Alias` declared in one clause is visible to a later clause of the same
// statement).
type bindings struct {
	tables map[string]tableBinding
}

func newBindings() *bindings {
	return &bindings{tables: make(map[string]tableBinding)}
}

func (b *bindings) declare(ident string, binding tableBinding) {
	b.tables[ident] = binding
}

func (b *bindings) lookup(ident string) (tableBinding, bool) {
	tb, ok := b.tables[ident]
	return tb, ok
}
