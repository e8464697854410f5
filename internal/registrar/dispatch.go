package registrar

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/opcycle/internal/ctxlog"
	"github.com/vk/opcycle/internal/feature"
)

// Phase names one stage of the external execution cycle.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseInitLoop
	PhaseStart
	PhaseLoop
	PhaseStop
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseInitLoop:
		return "init_loop"
	case PhaseStart:
		return "start"
	case PhaseLoop:
		return "loop"
	case PhaseStop:
		return "stop"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Point distinguishes the hook fired before a phase's user code from the one
// fired after it.
type Point int

const (
	PointPre Point = iota
	PointPost
)

// String implements fmt.Stringer.
func (p Point) String() string {
	if p == PointPre {
		return "pre"
	}
	return "post"
}

// Dispatch fires one hook point of the cycle: it first resolves the pending
// registration queue, so features registered since the previous dispatch
// point are considered, then invokes the named hook on every live member of
// the active set in activation order. Expired references are skipped
// silently. Features deregistered from inside an earlier hook of the same
// dispatch are skipped too.
//
// The first hook error aborts dispatch: features after the failing one do not
// receive this hook point this cycle, and the error propagates to the host.
func (r *Registrar) Dispatch(ctx context.Context, c feature.Cycle, phase Phase, point Point) error {
	r.ResolveQueue(ctx)

	logger := ctxlog.FromContext(ctx).With("cycleID", r.cycleID)
	hook := hookFor(phase, point)

	// Snapshot so registrations from inside a hook batch to the next
	// dispatch point instead of extending this iteration.
	snapshot := slices.Clone(r.active)
	for _, ref := range snapshot {
		if !r.isActive(ref) {
			continue // deregistered by an earlier hook in this pass
		}
		f := ref.Get()
		if f == nil {
			continue
		}
		if err := hook(f, c); err != nil {
			logger.Error("Hook failed, aborting dispatch for this point.",
				"phase", phase.String(), "point", point.String(),
				"feature", feature.Describe(f))
			return fmt.Errorf("%s-%s hook of %s: %w", point, phase, feature.Describe(f), err)
		}
	}
	return nil
}

// hookFor maps a phase/point pair to the corresponding Feature method.
func hookFor(phase Phase, point Point) func(feature.Feature, feature.Cycle) error {
	pre := point == PointPre
	switch phase {
	case PhaseInit:
		if pre {
			return feature.Feature.PreInit
		}
		return feature.Feature.PostInit
	case PhaseInitLoop:
		if pre {
			return feature.Feature.PreInitLoop
		}
		return feature.Feature.PostInitLoop
	case PhaseStart:
		if pre {
			return feature.Feature.PreStart
		}
		return feature.Feature.PostStart
	case PhaseLoop:
		if pre {
			return feature.Feature.PreLoop
		}
		return feature.Feature.PostLoop
	case PhaseStop:
		if pre {
			return feature.Feature.PreStop
		}
		return feature.Feature.PostStop
	}
	return func(feature.Feature, feature.Cycle) error { return nil }
}
