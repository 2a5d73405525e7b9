// Package interaction implements the per-pair-type predict/resolve
// registry of spec.md sec 4.3: hard spheres, stepped/square-well
// potentials, permanently bonded pairs, and a hard sphere with a
// growing diameter, looked up through a table keyed by species pair.
// The table holds Interaction interface values, so each predict and
// resolve call on the hot path is a dynamic interface call.
package interaction

import (
	"github.com/san-kum/edmd/internal/capture"
	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/vecmath"
)

// Interaction is implemented by every pair-type governing law.
type Interaction interface {
	// Predict returns the earliest positive-time event this
	// interaction predicts between a and b given their state streamed
	// to now, or ok=false if no event is geometrically possible
	// (grazing, receding with no captured shell to escape, etc).
	Predict(a, b *particle.Particle, now float64, cap *capture.Map, bnd vecmath.Boundary) (ev event.Event, ok bool)

	// Resolve applies the impulse for a pair event already streamed to
	// its execution time, using the shell transition recorded in pl.
	Resolve(a, b *particle.Particle, cap *capture.Map, bnd vecmath.Boundary, pl event.PairPayload)
}

// pairKey canonicalises a species pair so (A,B) and (B,A) look up the
// same registered interaction.
type pairKey struct {
	Lo, Hi particle.Species
}

func newPairKey(a, b particle.Species) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{Lo: a, Hi: b}
}

// DesyncChecker is implemented by interactions whose capture state can
// drift from geometry (stepped potentials). CheckCapture reports
// whether the pair's recorded capture record still agrees with its
// instantaneous separation, and the shell that separation actually
// falls within (-1 meaning uncaptured), so a caller can resynchronise
// the capture map via capture.Map.Resync without treating drift as
// fatal (spec.md sec 7's CaptureDesync recovery). Interactions with no
// capture state (HardSphere, BondedSquareWell) don't implement it.
type DesyncChecker interface {
	CheckCapture(a, b *particle.Particle, cap *capture.Map, bnd vecmath.Boundary) (ok bool, geometricShell int)
}

// Registry is the (typeA, typeB) -> Interaction lookup table: a map
// from canonical species pair to an Interaction interface value, with
// no per-pair-type specialised dispatch. It is built once at
// simulation setup and never mutated
// during the run (spec.md sec 5: "the registry of interactions is
// immutable for the duration of a run").
type Registry struct {
	table map[pairKey]Interaction
}

func NewRegistry() *Registry {
	return &Registry{table: make(map[pairKey]Interaction)}
}

// Register installs in for every pair of species (a,b) (and,
// symmetrically, (b,a)).
func (r *Registry) Register(a, b particle.Species, in Interaction) {
	r.table[newPairKey(a, b)] = in
}

// Lookup returns the interaction governing species a and b, or
// nil, false if the pair is uninteracting.
func (r *Registry) Lookup(a, b particle.Species) (Interaction, bool) {
	in, ok := r.table[newPairKey(a, b)]
	return in, ok
}
