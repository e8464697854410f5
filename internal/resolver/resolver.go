package resolver

import (
	"fmt"
	"strings"

	"github.com/vk/opcycle/internal/feature"
)

// Result records the outcome of one candidate in a resolution pass. Accepted
// candidates carry an empty Failures slice.
type Result struct {
	Ref      feature.Ref
	Feature  feature.Feature
	Failures []feature.Failure
}

// Accepted reports whether the candidate resolved cleanly.
func (r Result) Accepted() bool { return len(r.Failures) == 0 }

// Resolve evaluates the candidates, in input order, against the union of the
// active set and the candidates accepted earlier in the same pass. It returns
// the accepted refs in resolution order alongside one Result per live
// candidate. Expired refs and candidates that are already active are skipped
// silently and produce no Result.
func Resolve(candidates []feature.Ref, active []feature.Feature, flags feature.FlagSet) ([]feature.Ref, []Result) {
	var (
		accepted      []feature.Ref
		acceptedFeats []feature.Feature
		results       []Result
	)

	isActive := func(f feature.Feature) bool {
		for _, a := range active {
			if a == f {
				return true
			}
		}
		for _, a := range acceptedFeats {
			if a == f {
				return true
			}
		}
		return false
	}

	for _, ref := range candidates {
		f := ref.Get()
		if f == nil {
			continue // owner dropped it; not a failure
		}
		if isActive(f) {
			continue // no duplicate active entries
		}

		failures := evaluate(f, isActive, flags)
		results = append(results, Result{Ref: ref, Feature: f, Failures: failures})
		if len(failures) == 0 {
			accepted = append(accepted, ref)
			acceptedFeats = append(acceptedFeats, f)
		}
	}

	return accepted, results
}

// Check evaluates every requested feature against the active set and flags
// and returns a single error aggregating every failure reason of every
// feature, or nil if all of them resolve. Forward chaining applies here too,
// so a set of features that would activate together checks clean. Check never
// mutates anything.
func Check(requested []feature.Feature, active []feature.Feature, flags feature.FlagSet) error {
	var satisfied []feature.Feature

	isActive := func(f feature.Feature) bool {
		for _, a := range active {
			if a == f {
				return true
			}
		}
		for _, a := range satisfied {
			if a == f {
				return true
			}
		}
		return false
	}

	var entries []Unresolved
	for _, f := range requested {
		if f == nil {
			continue
		}
		failures := evaluate(f, isActive, flags)
		if len(failures) == 0 {
			satisfied = append(satisfied, f)
			continue
		}
		entries = append(entries, Unresolved{
			Feature:  feature.Describe(f),
			Failures: failures,
		})
	}

	if len(entries) == 0 {
		return nil
	}
	return &UnresolvedError{Entries: entries}
}

// evaluate collects the failures of every declared dependency. Failures
// accumulate across dependencies; evaluation never short-circuits.
func evaluate(f feature.Feature, isActive func(feature.Feature) bool, flags feature.FlagSet) []feature.Failure {
	var failures []feature.Failure
	for _, dep := range f.Dependencies() {
		failures = append(failures, dep.Evaluate(isActive, flags)...)
	}
	return failures
}

// Unresolved pairs a feature's description with every reason it failed to
// resolve.
type Unresolved struct {
	Feature  string
	Failures []feature.Failure
}

// UnresolvedError aggregates every failure reason across every requested
// feature into one descriptive error. It is the single intentional
// user-facing error path of the resolution machinery.
type UnresolvedError struct {
	Entries []Unresolved
}

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d feature(s) could not be resolved:", len(e.Entries))
	for _, entry := range e.Entries {
		reasons := make([]string, len(entry.Failures))
		for i, f := range entry.Failures {
			reasons[i] = f.Detail
		}
		fmt.Fprintf(&b, "\n  %s: %s", entry.Feature, strings.Join(reasons, "; "))
	}
	return b.String()
}
