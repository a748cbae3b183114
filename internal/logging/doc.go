// Package logging assembles the slog loggers used by the stageflow CLI, the
// report server, and the reconciliation engine.
//
// It owns the console and JSON handlers, level parsing, and output routing,
// and exposes field-name constants plus helpers (NewComponentLogger,
// WarnWithContext) so every component emits the same structured shape. A no-op
// logger is provided for tests and for wiring code that cannot fail.
package logging
