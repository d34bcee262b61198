// Package duckdbtesting opens throwaway DuckDB databases for tests.
package duckdbtesting

import (
	"database/sql"
	"testing"
	"time"

	"evalstore/internal/duckdb"
	"evalstore/internal/testutil"
)

const defaultTimeout = 5 * time.Second

// Open opens a DuckDB database with the schema applied and closes it when
// the test ends.
func Open(t testing.TB, dsn string) *sql.DB {
	t.Helper()
	ctx := testutil.Context(t, defaultTimeout)
	db, err := duckdb.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open duckdb: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// QueryInt returns a single integer value from the database.
func QueryInt(t testing.TB, db *sql.DB, query string, args ...any) int {
	t.Helper()
	ctx := testutil.Context(t, defaultTimeout)
	var out int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&out); err != nil {
		t.Fatalf("query int %q: %v", query, err)
	}
	return out
}
