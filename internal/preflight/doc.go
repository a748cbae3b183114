// Package preflight provides readiness checks for the configured production
// data source and the filesystem paths stageflow writes to.
//
// These checks run in two contexts:
//   - The CLI "stageflow check" command runs RunAll and renders every result.
//   - "stageflow serve" runs RunAll before taking the server lock and refuses
//     to start when the source check fails.
//
// Checks never mutate the source. The SQLite check skips a missing database
// instead of creating one.
package preflight
