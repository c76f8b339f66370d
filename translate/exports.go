package translate

// exportSet accumulates the distinct output-column names declared by `AS
// @Name` and `Ident.Col AS @_` across one emission. Order of first
// appearance becomes the row's positional index (spec.md §4.6): "first
// exported name = 0, subsequent names increment".
type exportSet struct {
	order []string
	seen  map[string]struct{}
}

func newExportSet() *exportSet {
	return &exportSet{seen: make(map[string]struct{})}
}

// add records name, returning its row index. Returns ErrDuplicateExport if
// name was already declared in this emission.
func (e *exportSet) add(pos Pos, name string) (int, error) {
	if _, ok := e.seen[name]; ok {
		return 0, newError(pos, ErrDuplicateExport, "duplicate export %q", name)
	}
	e.seen[name] = struct{}{}
	e.order = append(e.order, name)
	return len(e.order) - 1, nil
}

func (e *exportSet) names() []string {
	return append([]string(nil), e.order...)
}

// RowField describes one generated RowAccessor method: its exported name
// and the row index a scan pulls it from. codegen.go turns one of these per
// export into a `func (r Row) Name() (any, error)` method returning the
// row value at Index as is; the value is not asserted to a Go type
// (SPEC_FULL.md §3, "Row accessor metadata").
type RowField struct {
	Name  string
	Index int
}

// RowFields converts an exportSet's accumulated names into the ordered
// field list codegen needs.
func RowFields(names []string) []RowField {
	fields := make([]RowField, len(names))
	for i, name := range names {
		fields[i] = RowField{Name: name, Index: i}
	}
	return fields
}

// exportNameFromColumnShortcut derives the export name for the `Ident.Col
// AS @_` shortcut form: concatenation of the table identifier and column
// name, e.g. `Users.Id AS @_` exports as `UsersId`. The translator emits
// the ToSnakeCase form (`"users_id"`) as the SQL column alias; codegen
// names the accessor method after the PascalCase form (`UsersId`).
func exportNameFromColumnShortcut(ident, col string) string {
	return ident + col
}
