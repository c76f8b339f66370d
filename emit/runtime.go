package emit

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Rows narrows pgx.Rows to the handful of methods a generated row
// accessor needs: advance, pull this row's column values, and report a
// terminal scan error. Kept as an interface (rather than importing
// *pgx.Rows directly into generated code) so the generator's output stays
// independent of which driver an application ultimately wires up.
type Rows interface {
	Next() bool
	Values() ([]any, error)
	Err() error
	Close()
}

// Execer is the contract a generated emission's (text, types, values)
// triple is run against: query it for zero or more rows, or execute it for
// its affected-row count. Out of scope here is anything beyond that one
// round trip — connection pooling, retries, transaction lifecycle, and
// prepared-statement caching on the wire belong to whatever Execer
// implementation the caller supplies, not to this package.
type Execer interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
}

// pgxConn is the subset of *pgx.Conn's, pgx.Tx's, and *pgxpool.Pool's
// method sets PgxExecer needs, so any of the three can be passed to
// NewPgxExecer without an adapter of their own.
type pgxConn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgxExecer adapts a pgx connection, transaction, or pool to Execer.
// pgx.Rows already satisfies Rows directly (Next/Values/Err/Close line up
// byte for byte), so Query needs no per-row translation — only the
// return-type widening from the concrete pgx.Rows to the narrower Rows
// interface.
type PgxExecer struct {
	conn pgxConn
}

// NewPgxExecer wraps conn for use as an Execer.
func NewPgxExecer(conn pgxConn) *PgxExecer {
	return &PgxExecer{conn: conn}
}

func (e *PgxExecer) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := e.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (e *PgxExecer) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	tag, err := e.conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
