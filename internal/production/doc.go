// Package production defines the records the reconciliation engine reads:
// workflows and their ordered stages, jobs with planning data, immutable
// production runs, and workcenters.
//
// Source systems deliver these records loosely typed. Adapters (dataset,
// store, pgstore) convert them into the structs here exactly once, applying
// the default-value policies documented on each field, so downstream code never
// guesses at missing numbers or timestamp encodings.
package production
