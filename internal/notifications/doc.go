// Package notifications delivers reconciliation alerts via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Messages summarize stuck jobs and bottleneck stages so the floor
// sees where work is piling up without opening a report.
//
// Extend this package if you need alternative transports; callers depend only
// on the simple Service interface.
package notifications
