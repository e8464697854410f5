package feature

import "weak"

// Ref is a non-owning reference to a feature. The registrar stores only Refs,
// so a feature's lifetime is controlled entirely by its owner: once the owner
// drops the last strong reference and the garbage collector runs, Get returns
// nil and the registrar skips the entry.
//
// Two Refs to the same underlying feature compare equal via Same, even after
// the feature has been collected.
type Ref struct {
	id  any
	get func() Feature
}

// NewRef builds a weak reference to a concrete feature. The type parameters
// pin f to a pointer type so the underlying object can be tracked without
// keeping it alive.
func NewRef[T any, F interface {
	*T
	Feature
}](f F) Ref {
	p := weak.Make((*T)(f))
	return Ref{
		id: p,
		get: func() Feature {
			if v := p.Value(); v != nil {
				return F(v)
			}
			return nil
		},
	}
}

// Get returns the referenced feature, or nil if it has been collected.
func (r Ref) Get() Feature {
	if r.get == nil {
		return nil
	}
	return r.get()
}

// Alive reports whether the referenced feature is still reachable.
func (r Ref) Alive() bool { return r.Get() != nil }

// Same reports whether both refs track the same underlying feature. Identity
// survives collection, so stale entries can still be matched for removal.
func (r Ref) Same(o Ref) bool { return r.id != nil && r.id == o.id }
