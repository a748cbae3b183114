// Package config loads, normalizes, and validates stageflow configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STAGEFLOW_DSN and STAGEFLOW_API_TOKEN. Always obtain settings through this
// package so downstream code receives sanitized paths, a known source driver,
// and clear validation errors.
package config
