// Package fel implements the Future Event List: the structure that
// selects the globally earliest scheduled event across every
// particle's own Particle Event List (spec.md sec 3, sec 4.6).
//
// Two disciplines are provided behind the same [FEL] interface, chosen
// by configuration (Simulation/Scheduler/Sorter): [HeapFEL], a binary
// heap of particles keyed by head-event time, and [CalendarFEL], a
// bucketed calendar queue with O(1) amortised pop. Both satisfy the
// selection invariant: for every owner o with a non-empty PEL,
// Next().Time <= PEL_o.head().Time.
package fel

import "github.com/san-kum/edmd/internal/event"

// FEL is the contract every scheduler discipline implements. Owner ids
// are dense particle indices in [0, n).
type FEL interface {
	// Resize grows the FEL to manage n owners, discarding any prior
	// state (called once at simulation start).
	Resize(n int)
	// Push inserts e into owner's PEL.
	Push(owner int, e event.Event)
	// Next returns the globally earliest PEL head without removing
	// it. ok is false iff every PEL is empty.
	Next() (owner int, e event.Event, ok bool)
	// PopNextPELEvent removes the head of owner's PEL.
	PopNextPELEvent(owner int)
	// ClearPEL empties owner's PEL, used when a freshness-token bump
	// is about to make every one of its scheduled events stale.
	ClearPEL(owner int)
	// Stream is used only by time-rebased (calendar queue)
	// implementations; heap implementations may no-op it.
	Stream(dt float64)
	// Rebuild re-establishes the structure's invariant after bulk
	// insertion via Push calls made outside the normal event loop
	// (e.g. the initial prediction pass at t=0).
	Rebuild()
}
