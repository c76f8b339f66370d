package emit

import (
	"strconv"
	"strings"
)

// Builder accumulates SQL text and parameters for one emission. Generated
// code constructs a fresh Builder per call (or, for a static call-site,
// once per process via sync.OnceValue — see the generated
// `sync.OnceValue`-wrapped static path); there is never shared mutable
// state between two emissions (spec.md §5).
type Builder struct {
	buf    strings.Builder
	params *params
}

// NewBuilder returns an empty Builder ready for writes.
func NewBuilder() *Builder {
	return &Builder{params: newParams()}
}

// WriteStr appends s verbatim. If s is a single-character token that hugs
// the previous token (`,`, `)`, `]`), the space left by the previous write
// is removed first. Afterwards a single trailing space is appended unless s
// ends in "(", "[", or "::" — matching the original macro's
// State::push_str spacing rule so identifiers, keywords and punctuation
// compose into readable SQL without a separate pretty-printing pass.
func (b *Builder) WriteStr(s string) {
	b.buf.WriteString(s)
	if len(s) == 1 {
		b.rewriteTrailingPunctuation()
	}
	if !strings.HasSuffix(s, "(") && !strings.HasSuffix(s, "[") && !strings.HasSuffix(s, "::") {
		b.buf.WriteString(" ")
	}
}

// WriteLiteral escapes v according to its literal kind and appends it with
// a trailing space.
func (b *Builder) WriteLiteral(v Literal) {
	v.WriteLiteral(&b.buf, 0)
	b.buf.WriteString(" ")
}

// WriteColumn appends "effectiveTable"."col", honoring an alias supplied by
// the caller when the effective table name differs from the column's
// declared table (e.g. after an `Ident AS Alias` rewrite).
func (b *Builder) WriteColumn(col string, effectiveTable string) {
	b.buf.WriteString(`"`)
	b.buf.WriteString(effectiveTable)
	b.buf.WriteString(`".`)
	b.WriteColumnName(col)
}

// WriteColumnName appends only "col", unqualified — the lowering target of
// the `Ident./Ident` shortcut form.
func (b *Builder) WriteColumnName(col string) {
	b.buf.WriteString(`"`)
	b.buf.WriteString(col)
	b.buf.WriteString(`" `)
}

// WriteTable appends "schema"."name", and "AS alias" when alias is
// non-empty.
func (b *Builder) WriteTable(schemaName, relation, alias string) {
	if schemaName != "" {
		b.buf.WriteString(`"`)
		b.buf.WriteString(schemaName)
		b.buf.WriteString(`".`)
	}
	b.buf.WriteString(`"`)
	b.buf.WriteString(relation)
	b.buf.WriteString(`" `)
	if alias != "" {
		b.buf.WriteString(`AS "`)
		b.buf.WriteString(alias)
		b.buf.WriteString(`" `)
	}
}

// Param interns value under declared type typ and appends "$N " for its
// 1-based index. Two calls with the same value (compared by the identity of
// the ref the caller passes in, typically a pointer) share a slot; their
// declared types are unified per spec.md §3.
func (b *Builder) Param(ref any, declaredType string) error {
	idx, err := b.params.intern(ref, declaredType)
	if err != nil {
		return err
	}
	b.buf.WriteString("$")
	b.buf.WriteString(strconv.Itoa(idx))
	b.buf.WriteString(" ")
	return nil
}

// ParamAt is like Param but the caller supplies the slot's 1-based index
// explicitly, rather than letting Builder assign the next one. Generated
// code calls it for a `#{expr as Type}` ParamNode whose Index is non-zero;
// the translator itself always leaves Index at 0. A non-positive index is a caller bug, reported as
// ErrInvalidParameterIndex rather than silently clamped.
func (b *Builder) ParamAt(index int, ref any, declaredType string) error {
	if index <= 0 {
		return ErrInvalidParameterIndex
	}
	if err := b.params.insertAt(index, ref, declaredType); err != nil {
		return err
	}
	b.buf.WriteString("$")
	b.buf.WriteString(strconv.Itoa(index))
	b.buf.WriteString(" ")
	return nil
}

// rewriteTrailingPunctuation strips the space that precedes a just-written
// single-character `,`, `)`, or `]` token, so output reads `a, b` / `f(a)`
// rather than `a , b` / `f(a )`. Must run after writing the token itself but
// before appending that token's own trailing space, matching the original
// macro's State::rewrite_spacing rule (checked against the buffer as
// "<previous token><space><new token>").
func (b *Builder) rewriteTrailingPunctuation() {
	s := b.buf.String()
	if len(s) < 2 {
		return
	}
	last := s[len(s)-1]
	if last != ',' && last != ')' && last != ']' {
		return
	}
	if s[len(s)-2] != ' ' {
		return
	}

	trimmed := s[:len(s)-2]
	b.buf.Reset()
	b.buf.WriteString(trimmed)
	b.buf.WriteByte(last)
}

// Finish returns the final SQL text, the unified parameter types in index
// order, and the borrowed parameter value references in index order.
func (b *Builder) Finish() (text string, types []string, values []any) {
	return strings.TrimSpace(b.buf.String()), b.params.Types(), b.params.Values()
}
