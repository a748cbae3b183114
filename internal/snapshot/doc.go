// Package snapshot assembles a self-consistent reconcile.Snapshot from a
// Source.
//
// Workspace listings (jobs, workflows, workcenters) are required; per-job run
// fetches fan out with bounded concurrency and degrade to an empty run list on
// failure so a single unreachable job never blocks a report.
package snapshot
