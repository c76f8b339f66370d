// Package schema is the metadata contract (M) the translator and emitter
// consume: stable descriptors for tables, columns, enums and functions.
// Go has no procedural macros, so where the original builds these
// descriptors with a `tables! { ... }` macro expansion, here they are
// ordinary package-level values built once at init time — the caller writes
// the struct literal directly instead of a macro invocation expanding one
// for them.
package schema

import "strings"

// ColumnType describes a column's PostgreSQL type and nullability.
type ColumnType struct {
	// PG is the canonical uppercase PostgreSQL type name, e.g. "INT8",
	// "TEXT", "INT8_ARRAY".
	PG       string
	Nullable bool
}

// AsNullable returns a copy of t with Nullable set to true, mirroring the
// original's `Nullable<T>` wrapper type.
func (t ColumnType) AsNullable() ColumnType {
	t.Nullable = true
	return t
}

// Column is one column of a Table descriptor.
type Column interface {
	// Name is the column's snake_case SQL name.
	Name() string
	Type() ColumnType
	// Nullable reports whether the column may hold SQL NULL.
	Nullable() bool
	Comment() string
}

// Table is a stable descriptor for one relation: a schema, a relation name,
// an optional alias, and its ordered column list.
type Table interface {
	// Schema is the schema name this table lives in, or "" if none.
	Schema() string
	// Relation is the stable snake_case relation name.
	Relation() string
	// Alias is the table's declared alias, if any.
	Alias() (string, bool)
	Columns() []Column
	Comment() string
}

// ColumnDesc is the concrete Column implementation built by table
// declarations in this package's consumers.
type ColumnDesc struct {
	ColumnName    string
	ColumnType    ColumnType
	ColumnComment string
}

func (c ColumnDesc) Name() string     { return c.ColumnName }
func (c ColumnDesc) Type() ColumnType { return c.ColumnType }
func (c ColumnDesc) Nullable() bool   { return c.ColumnType.Nullable }
func (c ColumnDesc) Comment() string  { return c.ColumnComment }

// TableDesc is the concrete Table implementation. Build one package-level
// var per table; generated code refers to that var by the identifier the
// .thorn source spells (e.g. `Users.Relation()` for `Users`).
type TableDesc struct {
	SchemaName  string
	RelName     string
	AliasName   string
	HasAlias    bool
	ColumnList  []Column
	CommentText string
}

func (t TableDesc) Schema() string   { return t.SchemaName }
func (t TableDesc) Relation() string { return t.RelName }
func (t TableDesc) Alias() (string, bool) {
	return t.AliasName, t.HasAlias
}
func (t TableDesc) Columns() []Column { return t.ColumnList }
func (t TableDesc) Comment() string   { return t.CommentText }

// WithAlias returns a copy of t declared under the given alias, the
// descriptor-level analogue of the DSL's `Ident AS Alias` form registering a
// new compile-time alias bound to the same columns.
func (t TableDesc) WithAlias(alias string) TableDesc {
	t.AliasName = alias
	t.HasAlias = true
	return t
}

// ToSnakeCase converts a PascalCase/camelCase Go identifier into the
// snake_case spelling the translator uses for unqualified table and column
// names, mirroring heck::ToSnakeCase in the original macro.
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
				if prev != '_' && (prev < 'A' || prev > 'Z' || nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
