// Package event defines the immutable scheduled-event record shared by
// the FEL, the cell grid, the interaction registry, and the event
// loop. Events are never mutated once pushed onto a Particle Event
// List; invalidation is expressed purely through freshness-token
// mismatch (spec.md sec 3).
package event

// Kind enumerates the event kinds spec.md sec 3 requires. The integer
// value doubles as the kind_ordinal used to break time ties (spec.md
// sec 5): lower ordinal wins when two events share a timestamp.
type Kind uint8

const (
	PairInteraction Kind = iota
	CellCross
	Thermostat
	Compression
	Halt
	Recalculate
)

func (k Kind) String() string {
	switch k {
	case PairInteraction:
		return "PairInteraction"
	case CellCross:
		return "CellCross"
	case Thermostat:
		return "Thermostat"
	case Compression:
		return "Compression"
	case Halt:
		return "Halt"
	case Recalculate:
		return "Recalculate"
	default:
		return "Unknown"
	}
}

// NoParticle is the sentinel value for Event.B on events with no
// secondary participant (cell crossings, thermostat firings, halt).
const NoParticle = -1

// Payload carries kind-specific data. Each Kind has exactly one
// concrete payload type; the event loop type-switches on Kind, not on
// Payload, so this is deliberately just `any` rather than a closed
// interface with a marker method.
type Payload any

// PairPayload is carried by PairInteraction events: the shell indices
// the pair is transitioning between (equal for a hard-core bounce).
type PairPayload struct {
	ShellFrom int
	ShellTo   int
	Outward   bool
}

// CellCrossPayload is carried by CellCross events: which of the six
// faces (+-x, +-y, +-z encoded 0..5) the particle is predicted to
// cross.
type CellCrossPayload struct {
	Face int
}

// RecalculatePayload is carried by Recalculate events scheduled after
// an OverlapError recovery (spec.md sec 7): the pair whose capture
// state must be reinitialised from geometry.
type RecalculatePayload struct {
	Reason string
}

// Event is a single scheduled occurrence. It is immutable once pushed:
// the freshness tokens captured at prediction time are compared
// against the particles' current tokens by the event loop, and a
// mismatch discards the event rather than mutating or removing it
// from anywhere but the owning PEL.
type Event struct {
	Time    float64
	Kind    Kind
	A       int
	B       int
	TokenA  uint64
	TokenB  uint64
	Payload Payload
}

// Less orders two events by (Time, then owner id, then kind ordinal),
// implementing the tie-break rule of spec.md sec 5 for events sharing
// an owner. FEL implementations use this to keep trajectories
// reproducible under a fixed RNG seed.
func Less(a, b Event, ownerA, ownerB int) bool {
	if a.Time != b.Time {
		return a.Time < b.Time
	}
	if ownerA != ownerB {
		return ownerA < ownerB
	}
	return a.Kind < b.Kind
}
