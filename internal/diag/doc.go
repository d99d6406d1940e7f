// Package diag defines the diagnostic model shared by all pipeline phases.
//
// Diagnostic is the central record: a Severity, a compact numeric Code with
// a stable string form (codes.go), a short human message, the Primary span
// pointing at the issue, and optional Notes with extra context. Every
// diagnostic carries a span; rendering a source excerpt must always be
// possible downstream.
//
// Phases emit through the Reporter interface so emission stays decoupled
// from storage. BagReporter aggregates into a Bag, which supports sorting,
// deduplication, and merging. Bag.Sort fixes the reporting order: source
// position first, then severity, then code — so a syntax error and a
// semantic syntax error on the same span always appear syntax-first.
//
// Package diag performs no formatting or IO. Rendering lives in
// internal/diagfmt; orchestration lives in internal/driver.
package diag
