// Package main hosts the stageflow CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration, opens the configured
// production data source (SQLite store, PostgreSQL, or a JSON export), and
// runs the reconciliation engine once per invocation. Reports render as
// tables for terminals or as JSON with --json. The serve command exposes the
// same reports over HTTP.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
