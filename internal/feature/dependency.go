package feature

import (
	"fmt"
	"strings"
)

// FailureKind tags the variant of a resolution failure.
type FailureKind int

const (
	// FailureMissingFeature means a required feature is not active.
	FailureMissingFeature FailureKind = iota
	// FailureMissingFlag means a required flag is absent from the cycle context.
	FailureMissingFlag
)

// Failure describes one unsatisfied dependency. Resolution accumulates one
// Failure per unmet requirement rather than stopping at the first.
type Failure struct {
	Kind   FailureKind
	Detail string
}

// String implements fmt.Stringer.
func (f Failure) String() string { return f.Detail }

// Dependency is a single declared requirement of a feature. Evaluate checks
// it against the current active set (via the membership test) and the cycle
// flags, returning one Failure per unmet requirement. A nil or empty result
// means the dependency is satisfied.
type Dependency interface {
	Evaluate(isActive func(Feature) bool, flags FlagSet) []Failure
}

// Describe renders a feature for diagnostics. Features may implement
// fmt.Stringer to control their name; otherwise the dynamic type is used.
func Describe(f Feature) string {
	if s, ok := f.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", f)
}

// Requires declares that the given feature instance must already be active
// (or accepted earlier in the same resolution pass).
func Requires(f Feature) Dependency { return featureDep{required: f} }

type featureDep struct{ required Feature }

func (d featureDep) Evaluate(isActive func(Feature) bool, _ FlagSet) []Failure {
	if isActive(d.required) {
		return nil
	}
	return []Failure{{
		Kind:   FailureMissingFeature,
		Detail: fmt.Sprintf("requires feature %s to be active", Describe(d.required)),
	}}
}

// RequiresFlag declares that the cycle context must carry the given flag.
func RequiresFlag(f Flag) Dependency { return RequiresAllFlags(f) }

// RequiresAllFlags declares that every listed flag must be present. Each
// missing flag contributes its own failure reason.
func RequiresAllFlags(flags ...Flag) Dependency { return allFlagsDep{flags: flags} }

type allFlagsDep struct{ flags []Flag }

func (d allFlagsDep) Evaluate(_ func(Feature) bool, present FlagSet) []Failure {
	var failures []Failure
	for _, f := range d.flags {
		if !present.Has(f) {
			failures = append(failures, Failure{
				Kind:   FailureMissingFlag,
				Detail: fmt.Sprintf("requires flag %q on the cycle context", f),
			})
		}
	}
	return failures
}

// RequiresOneOfFlags declares that exactly one of the listed flags must be
// present.
func RequiresOneOfFlags(flags ...Flag) Dependency { return oneOfFlagsDep{flags: flags} }

type oneOfFlagsDep struct{ flags []Flag }

func (d oneOfFlagsDep) Evaluate(_ func(Feature) bool, present FlagSet) []Failure {
	count := 0
	names := make([]string, len(d.flags))
	for i, f := range d.flags {
		names[i] = string(f)
		if present.Has(f) {
			count++
		}
	}
	if count == 1 {
		return nil
	}
	return []Failure{{
		Kind:   FailureMissingFlag,
		Detail: fmt.Sprintf("requires exactly one of flags [%s], found %d", strings.Join(names, ", "), count),
	}}
}

// Optional wraps a dependency so that it never blocks activation. The feature
// can still probe the wrapped requirement itself at hook time.
func Optional(d Dependency) Dependency { return optionalDep{inner: d} }

type optionalDep struct{ inner Dependency }

func (optionalDep) Evaluate(func(Feature) bool, FlagSet) []Failure { return nil }

// Unwrap exposes the wrapped dependency for probing.
func (d optionalDep) Unwrap() Dependency { return d.inner }
