package feature

import (
	"sort"
	"strings"
)

// Flag is a marker attached to the execution context that a feature may
// declare as a dependency. An OpMode advertises its flags once; the registrar
// snapshots them at cycle start.
type Flag string

// FlagSet is an unordered set of flags.
type FlagSet map[Flag]struct{}

// NewFlagSet builds a set from the given flags.
func NewFlagSet(flags ...Flag) FlagSet {
	s := make(FlagSet, len(flags))
	for _, f := range flags {
		s[f] = struct{}{}
	}
	return s
}

// Has reports whether the flag is present.
func (s FlagSet) Has(f Flag) bool {
	_, ok := s[f]
	return ok
}

// Clone returns an independent copy of the set.
func (s FlagSet) Clone() FlagSet {
	out := make(FlagSet, len(s))
	for f := range s {
		out[f] = struct{}{}
	}
	return out
}

// String renders the set in sorted order, for logs and error messages.
func (s FlagSet) String() string {
	names := make([]string, 0, len(s))
	for f := range s {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return "[" + strings.Join(names, ", ") + "]"
}
