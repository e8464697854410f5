// Package registrar implements the feature scheduler/registry: it tracks
// every known feature through non-owning references, batches registrations
// into a pending queue, resolves the queue opportunistically at every hook
// dispatch point, and drives the ordered lifecycle hooks of the active set
// once per cycle phase transition.
//
// A Registrar instance is owned by the host-cycle driver and passed
// explicitly to every call site; there is no ambient global state. All
// methods expect to run on the host's single cycle-driving goroutine.
// Registration and deregistration are safe from inside a hook: they take
// effect at the next dispatch point rather than mid-iteration.
package registrar
