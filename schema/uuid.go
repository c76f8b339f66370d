package schema

import "github.com/gofrs/uuid"

// UUIDType is the ColumnType for a PostgreSQL UUID column.
var UUIDType = ColumnType{PG: "UUID"}

// ParseUUID parses a textual UUID as returned by a driver for a UUID
// column. Generated row accessors do not call it: they return the raw
// driver value.
func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.FromString(s)
}

// NewUUID generates a fresh version-4 UUID.
func NewUUID() (uuid.UUID, error) {
	return uuid.NewV4()
}
