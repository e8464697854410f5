// Package resolver holds the pure dependency-resolution functions used by the
// registrar and by user-facing diagnostics.
//
// Resolution evaluates candidate features in input order against the union of
// the already-active set and the candidates accepted earlier in the same pass,
// which allows forward activation chains: submitting A and B together, where B
// depends on A, accepts both in that order. A candidate with any unsatisfied
// dependency is rejected for the pass, and every unmet requirement is
// reported, never just the first.
//
// Both entry points are pure functions of their inputs: no I/O, no mutation
// of the candidates, and deterministic output for deterministic input order.
package resolver
