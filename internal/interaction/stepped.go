package interaction

import (
	"github.com/san-kum/edmd/internal/capture"
	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/potential"
	"github.com/san-kum/edmd/internal/vecmath"
)

// Stepped is the square-well/stepped-Lennard-Jones interaction backed
// by a potential.ShellTable: shells are numbered outward-in starting
// at 0 (the outermost, at the table's cutoff), consulted lazily.
// Capture state (which shell the pair currently sits in, or
// uncaptured) lives in the shared capture.Map, not on the interaction
// itself, since a Registry is shared read-only across every pair of
// the same species (spec.md sec 5).
type Stepped struct {
	Table  *potential.ShellTable
	Cutoff float64
}

// radius returns the boundary radius between shell k and shell k+1
// (radius(-1) is the outermost cutoff, the boundary between
// uncaptured and shell 0; radius(k>=0) is the table's shell-k
// discontinuity radius, the boundary between shell k and shell k+1).
func (s *Stepped) radius(k int) float64 {
	if k < 0 {
		return s.Cutoff
	}
	return s.Table.Shell(k).R
}

// energy returns the cumulative energy at shell k, treating k<0 as
// zero (the reference energy beyond the cutoff).
func (s *Stepped) energy(k int) float64 {
	if k < 0 {
		return 0
	}
	return s.Table.Shell(k).E
}

func (s *Stepped) Predict(a, b *particle.Particle, now float64, cap *capture.Map, bnd vecmath.Boundary) (event.Event, bool) {
	ra, rb := a.PositionAt(now), b.PositionAt(now)
	dr, dv := bnd.Delta(ra, rb, now)
	v := a.Vel.Sub(b.Vel).Add(dv)

	curShell := -1
	if sh, ok := cap.Shell(a.ID, b.ID); ok {
		curShell = sh
	}

	found := false
	var bestT float64
	var bestFrom, bestTo int
	var bestOutward bool

	// Inward: crossing the boundary at the current shell index (-1
	// meaning the outer cutoff) moves the pair one shell deeper.
	if t, ok := solveApproach(dr, v, s.radius(curShell)); ok {
		bestT, bestFrom, bestTo, bestOutward, found = t, curShell, curShell+1, false, true
	}

	// Outward: crossing the boundary one shell further out (curShell-1)
	// releases the pair back to that shallower shell (or uncaptured,
	// at the cutoff, when curShell is 0).
	if curShell >= 0 {
		if t, ok := solveEscape(dr, v, s.radius(curShell-1)); ok && (!found || t < bestT) {
			bestT, bestFrom, bestTo, bestOutward, found = t, curShell, curShell-1, true, true
		}
	}

	if !found {
		return event.Event{}, false
	}
	return event.Event{
		Time: now + bestT, Kind: event.PairInteraction,
		A: a.ID, B: b.ID, TokenA: a.Token, TokenB: b.Token,
		Payload: event.PairPayload{ShellFrom: bestFrom, ShellTo: bestTo, Outward: bestOutward},
	}, true
}

// shellContaining returns the shell index whose range (radius(k),
// radius(k-1)] contains dist, or -1 if dist lies beyond the outermost
// cutoff. maxDesyncShells bounds the search so an unphysical overlap
// past the innermost (possibly hard-core-truncated) shell can't spin
// forever re-extending an already-truncated table.
const maxDesyncShells = 100000

func (s *Stepped) shellContaining(dist float64) int {
	if dist > s.Cutoff {
		return -1
	}
	k := 0
	for dist <= s.radius(k) && k < maxDesyncShells {
		k++
	}
	return k
}

// CheckCapture implements the DesyncChecker contract: it tests the
// pair's current separation against the bounds of its *recorded*
// capture shell (if any), and separately recomputes the shell that
// separation geometrically belongs to, for the caller to resync to on
// disagreement.
func (s *Stepped) CheckCapture(a, b *particle.Particle, cap *capture.Map, bnd vecmath.Boundary) (bool, int) {
	dr, _ := bnd.Delta(a.Pos, b.Pos, a.LastUpdate)
	dist := dr.Norm()
	geometricShell := s.shellContaining(dist)

	recorded, ok := cap.Shell(a.ID, b.ID)
	if !ok {
		return geometricShell < 0, geometricShell
	}
	rOuter := s.radius(recorded - 1)
	rInner := s.radius(recorded)
	agree := cap.Agreement(a.ID, b.ID, dist, rInner, rOuter, 1e-9)
	return agree, geometricShell
}

func (s *Stepped) Resolve(a, b *particle.Particle, cap *capture.Map, bnd vecmath.Boundary, pl event.PairPayload) {
	dr, dv := bnd.Delta(a.Pos, b.Pos, a.LastUpdate)
	n := dr.Normalized()
	v := a.Vel.Sub(b.Vel).Add(dv)
	vn := v.Dot(n)
	mu := a.Mass * b.Mass / (a.Mass + b.Mass)

	deltaE := s.energy(pl.ShellTo) - s.energy(pl.ShellFrom)

	vnPrime, reflected := impulse(vn, mu, deltaE)

	finalShell := pl.ShellTo
	if reflected {
		finalShell = pl.ShellFrom
	}

	applyImpulse(a, b, mu, n, vn, vnPrime)

	if finalShell < 0 {
		cap.Clear(a.ID, b.ID)
	} else {
		cap.Set(a.ID, b.ID, finalShell)
	}
}
