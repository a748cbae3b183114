// Package api defines the wire-format types and the report service shared by
// the HTTP server and the CLI. It turns engine output into transport-friendly
// DTOs so consumers render reports without coupling to internal types.
//
// # Key Types
//
// ReportResponse: one engine report (occupancy, stuck, wip, bottlenecks) with
// the completion band it was evaluated against.
//
// JobPlanResponse: per-stage plan, authentic output, and threshold for one job
// plus any transfer lineage problems.
//
// ReportService: loads a fresh snapshot per call through a SnapshotLoader and
// runs the engine once over it.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
package api
