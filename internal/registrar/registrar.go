package registrar

import (
	"context"

	"github.com/google/uuid"

	"github.com/vk/opcycle/internal/ctxlog"
	"github.com/vk/opcycle/internal/feature"
	"github.com/vk/opcycle/internal/resolver"
)

// Registrar holds the registered feature set, the pending registration queue,
// the active set, and the flags of the current cycle. The zero value is not
// usable; construct with New.
type Registrar struct {
	registered []feature.Ref
	queue      []feature.Ref
	active     []feature.Ref
	flags      feature.FlagSet

	cycleRunning bool
	cycleID      string
}

// New returns an empty registrar with no cycle running.
func New() *Registrar {
	return &Registrar{flags: feature.NewFlagSet()}
}

// Register adds a non-owning reference to the registered set and enqueues it
// for resolution at the next dispatch point. Registrations are batched, never
// resolved inline, so calling Register from inside a hook is safe. A ref that
// is already registered is not duplicated, but it is re-queued so a feature
// dropped from a previous cycle's active set can be submitted again.
func (r *Registrar) Register(ctx context.Context, ref feature.Ref) {
	logger := ctxlog.FromContext(ctx)

	if !containsRef(r.registered, ref) {
		r.registered = append(r.registered, ref)
	}
	if !containsRef(r.queue, ref) {
		r.queue = append(r.queue, ref)
		if f := ref.Get(); f != nil {
			logger.Debug("Feature queued for resolution.", "feature", feature.Describe(f), "cycleRunning", r.cycleRunning)
		}
	}
}

// RegisterFeature is a convenience wrapper that builds the weak ref and
// registers it in one call. It returns the ref so the owner can deregister
// later without rebuilding it.
func RegisterFeature[T any, F interface {
	*T
	feature.Feature
}](ctx context.Context, r *Registrar, f F) feature.Ref {
	ref := feature.NewRef[T, F](f)
	r.Register(ctx, ref)
	return ref
}

// Deregister removes every matching entry from the registered set, the
// pending queue, and the active set. It is silent when the feature is not
// found, and safe to call from inside a hook: the dispatcher re-checks active
// membership before invoking each feature.
func (r *Registrar) Deregister(ctx context.Context, ref feature.Ref) {
	logger := ctxlog.FromContext(ctx)

	before := len(r.registered)
	r.registered = removeRef(r.registered, ref)
	r.queue = removeRef(r.queue, ref)
	r.active = removeRef(r.active, ref)
	if len(r.registered) != before {
		logger.Debug("Feature deregistered.", "remaining", len(r.registered))
	}
}

// ResolveQueue drains the pending queue through one resolution pass. Every
// fully satisfied candidate is appended to the active set in resolution
// order; rejected candidates are dropped from the queue without automatic
// retry this cycle (they stay in the registered set and can be re-queued by
// a later Register call). Resolving an empty queue is a no-op.
func (r *Registrar) ResolveQueue(ctx context.Context) {
	if len(r.queue) == 0 {
		return
	}
	logger := ctxlog.FromContext(ctx).With("cycleID", r.cycleID)

	candidates := r.queue
	r.queue = nil

	accepted, results := resolver.Resolve(candidates, r.aliveActive(), r.flags)
	for _, res := range results {
		if res.Accepted() {
			continue
		}
		// Rejection is expected and silent at the user level; it only
		// surfaces through CheckFeatures.
		logger.Debug("Feature not resolved this pass.",
			"feature", feature.Describe(res.Feature),
			"reasons", len(res.Failures))
	}
	for _, ref := range accepted {
		if !containsRef(r.active, ref) {
			r.active = append(r.active, ref)
		}
	}
	if len(accepted) > 0 {
		logger.Debug("Resolution pass complete.", "accepted", len(accepted), "active", len(r.active))
	}
}

// CheckFeatures recomputes a full resolution of the given features against
// the context's flags and the current active set, and returns one aggregated
// error covering every failure reason of every requested feature. It mutates
// nothing and returns nil when everything resolves.
func (r *Registrar) CheckFeatures(c feature.Cycle, feats ...feature.Feature) error {
	return resolver.Check(feats, r.aliveActive(), c.Flags())
}

// OnCycleStart snapshots the context's flags, compacts dead references out of
// the registered set, drains the registration queue once, and marks the cycle
// as running. Flags stay fixed until OnCycleEnd.
func (r *Registrar) OnCycleStart(ctx context.Context, c feature.Cycle) {
	r.cycleID = uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("cycleID", r.cycleID)

	r.compact()
	r.flags = c.Flags().Clone()
	r.cycleRunning = true
	logger.Debug("Cycle started.", "opMode", c.Name(), "flags", r.flags.String(), "registered", len(r.registered))

	r.ResolveQueue(ctx)
}

// OnCycleEnd drains the queue one last time, then unconditionally clears the
// active set and flags and marks the cycle as ended. It is the only reset
// point; there is no mid-cycle cancellation.
func (r *Registrar) OnCycleEnd(ctx context.Context, c feature.Cycle) {
	logger := ctxlog.FromContext(ctx).With("cycleID", r.cycleID)

	r.ResolveQueue(ctx)
	r.active = nil
	r.flags = feature.NewFlagSet()
	r.cycleRunning = false
	logger.Debug("Cycle ended, active set and flags cleared.", "opMode", c.Name())
}

// CycleRunning reports whether a cycle is currently active.
func (r *Registrar) CycleRunning() bool { return r.cycleRunning }

// ActiveFeatures returns the live members of the active set, in activation
// order. Expired references are skipped.
func (r *Registrar) ActiveFeatures() []feature.Feature {
	return r.aliveActive()
}

// Flags returns the flag snapshot of the current cycle.
func (r *Registrar) Flags() feature.FlagSet { return r.flags }

// aliveActive dereferences the active set, skipping collected entries.
func (r *Registrar) aliveActive() []feature.Feature {
	out := make([]feature.Feature, 0, len(r.active))
	for _, ref := range r.active {
		if f := ref.Get(); f != nil {
			out = append(out, f)
		}
	}
	return out
}

// compact drops registered entries whose referent has been collected. Runs
// opportunistically at cycle start; collection is never guaranteed to be
// observed immediately.
func (r *Registrar) compact() {
	kept := r.registered[:0]
	for _, ref := range r.registered {
		if ref.Alive() {
			kept = append(kept, ref)
		}
	}
	r.registered = kept
}

func (r *Registrar) isActive(ref feature.Ref) bool {
	return containsRef(r.active, ref)
}

func containsRef(refs []feature.Ref, ref feature.Ref) bool {
	for _, other := range refs {
		if other.Same(ref) {
			return true
		}
	}
	return false
}

func removeRef(refs []feature.Ref, ref feature.Ref) []feature.Ref {
	kept := refs[:0]
	for _, other := range refs {
		if !other.Same(ref) {
			kept = append(kept, other)
		}
	}
	return kept
}
