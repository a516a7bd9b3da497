// Package diag defines the diagnostic model shared by all pipeline phases.
//
// Diagnostic is the central record: severity, a stable numeric code, a
// message, a primary source span, optional secondary notes and an optional
// help string. Malformed recipe input is always reported through this
// package and never through Go errors or panics; the parser guarantees
// forward progress and a recoverable diagnostic for anything it cannot
// understand.
//
// Producers emit through a Reporter so storage stays decoupled. BagReporter
// aggregates into a Bag, which supports sorting, deduplication and merging.
// Rendering lives in internal/diagfmt.
package diag
