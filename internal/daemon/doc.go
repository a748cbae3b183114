// Package daemon runs the long-lived stageflow report server.
//
// It wires configuration, the report service, and the HTTP API into a single
// lifecycle with flock-based locking to prevent multiple instances on the same
// data directory. Each request loads a fresh snapshot and runs the engine once;
// the daemon itself keeps no report state between requests.
package daemon
