package schema

import "fmt"

// Enum is a descriptor for a PostgreSQL enum type: a schema, a canonical
// name, and its ordered variant list. Unlike Table, an Enum also exposes a
// lookup from a runtime OID to a variant name (FromOID), since enum OIDs
// are only known once the type is registered against a live connection.
type Enum struct {
	SchemaName  string
	EnumName    string
	Variants    []string
	oidVariants map[uint32]string
}

// NewEnum builds an Enum descriptor with no OID bindings yet.
func NewEnum(schemaName, enumName string, variants ...string) Enum {
	return Enum{SchemaName: schemaName, EnumName: enumName, Variants: variants}
}

// WithOIDs returns a copy of e with variant OIDs bound, as reported by a
// schema-introspection query (run by the out-of-scope companion tool, not by
// this package).
func (e Enum) WithOIDs(byOID map[uint32]string) Enum {
	e.oidVariants = byOID
	return e
}

// FromOID looks up the variant name bound to oid, returning ok=false if no
// binding was registered via WithOIDs or the OID is unknown.
func (e Enum) FromOID(oid uint32) (variant string, ok bool) {
	if e.oidVariants == nil {
		return "", false
	}
	variant, ok = e.oidVariants[oid]
	return variant, ok
}

// QualifiedName returns the enum's schema-qualified, double-quoted SQL name.
func (e Enum) QualifiedName() string {
	if e.SchemaName == "" {
		return fmt.Sprintf("%q", e.EnumName)
	}
	return fmt.Sprintf("%q.%q", e.SchemaName, e.EnumName)
}
