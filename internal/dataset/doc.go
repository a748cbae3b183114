// Package dataset decodes workspace exports from the production-tracking
// system into production records.
//
// Exports are loosely typed: timestamps arrive as epoch-second objects,
// numbers, or date strings, and numeric fields may be absent, null, or quoted.
// Decoding applies one set of default policies (numberUp and pcsPerBox floor
// at 1, missing status becomes draft) so nothing downstream has to guess.
// A decoded Dataset also serves snapshot listings directly from memory.
package dataset
