// Package store persists workspace records in SQLite so reports can run
// without reaching the production-tracking system.
//
// The schema is applied from embedded migrations on Open. Import writes a
// decoded dataset in a single transaction, upserting by record ID and stamping
// every row with the import batch. The read methods satisfy snapshot.Source.
package store
