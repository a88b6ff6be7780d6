// Package history keeps a SQLite journal of catalogue runs.
//
// Each pipeline run appends one row with its mode, outcome, and counts so
// `povcat history` can show how the catalogue evolved. The journal is
// diagnostic only; the catalogue never reads it back.
package history
