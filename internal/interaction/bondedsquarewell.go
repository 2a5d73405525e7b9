package interaction

import (
	"github.com/san-kum/edmd/internal/capture"
	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/vecmath"
)

// BondedSquareWell is a permanently captured pair (a chemical bond),
// grounded on the original DynamO ISquareBond interaction: the pair
// never escapes the outer bond-range shell, it only bounces between
// the inner hard core and the outer bond limit. Elasticity scales the
// rebound at both walls; 1.0 is perfectly elastic.
type BondedSquareWell struct {
	CoreDiameter  float64 // hard core, the bond's minimum extension
	RangeDiameter float64 // lambda * CoreDiameter, the bond's maximum extension
	Elasticity    float64
}

func (bw BondedSquareWell) Predict(a, b *particle.Particle, now float64, _ *capture.Map, bnd vecmath.Boundary) (event.Event, bool) {
	ra, rb := a.PositionAt(now), b.PositionAt(now)
	dr, dv := bnd.Delta(ra, rb, now)
	v := a.Vel.Sub(b.Vel).Add(dv)

	found := false
	var bestT float64
	var bestOutward bool

	if t, ok := solveApproach(dr, v, bw.CoreDiameter); ok {
		bestT, bestOutward, found = t, false, true
	}
	if t, ok := solveEscape(dr, v, bw.RangeDiameter); ok && (!found || t < bestT) {
		bestT, bestOutward, found = t, true, true
	}

	if !found {
		return event.Event{}, false
	}
	return event.Event{
		Time: now + bestT, Kind: event.PairInteraction,
		A: a.ID, B: b.ID, TokenA: a.Token, TokenB: b.Token,
		Payload: event.PairPayload{ShellFrom: 0, ShellTo: 0, Outward: bestOutward},
	}, true
}

// Resolve always reflects: the bond never breaks, so there is no
// escape to an uncaptured state, only a wall bounce at whichever
// radius (core or range) the pair reached.
func (bw BondedSquareWell) Resolve(a, b *particle.Particle, _ *capture.Map, bnd vecmath.Boundary, _ event.PairPayload) {
	dr, dv := bnd.Delta(a.Pos, b.Pos, a.LastUpdate)
	n := dr.Normalized()
	v := a.Vel.Sub(b.Vel).Add(dv)
	vn := v.Dot(n)
	mu := a.Mass * b.Mass / (a.Mass + b.Mass)

	applyImpulse(a, b, mu, n, vn, -bw.Elasticity*vn)
}
