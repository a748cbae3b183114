// Package pgstore reads workspace records straight from a PostgreSQL
// production-tracking database through a pgx connection pool.
//
// It is read-only and satisfies snapshot.Source. Nested job data (BOM lines,
// packaging, planned outputs, stage lists) lives in jsonb columns.
package pgstore
