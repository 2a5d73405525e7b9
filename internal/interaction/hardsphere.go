package interaction

import (
	"github.com/san-kum/edmd/internal/capture"
	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/vecmath"
)

// HardSphere is the simplest interaction: a single impenetrable shell
// at Diameter, perfectly elastic on contact (spec.md scenario A).
type HardSphere struct {
	Diameter float64
}

func (h HardSphere) Predict(a, b *particle.Particle, now float64, _ *capture.Map, bnd vecmath.Boundary) (event.Event, bool) {
	ra, rb := a.PositionAt(now), b.PositionAt(now)
	dr, dv := bnd.Delta(ra, rb, now)
	v := a.Vel.Sub(b.Vel).Add(dv)

	t, ok := solveApproach(dr, v, h.Diameter)
	if !ok {
		return event.Event{}, false
	}
	return event.Event{
		Time: now + t, Kind: event.PairInteraction,
		A: a.ID, B: b.ID, TokenA: a.Token, TokenB: b.Token,
		Payload: event.PairPayload{ShellFrom: 0, ShellTo: 0, Outward: false},
	}, true
}

func (h HardSphere) Resolve(a, b *particle.Particle, _ *capture.Map, bnd vecmath.Boundary, _ event.PairPayload) {
	dr, dv := bnd.Delta(a.Pos, b.Pos, a.LastUpdate)
	n := dr.Normalized()
	v := a.Vel.Sub(b.Vel).Add(dv)
	vn := v.Dot(n)
	mu := a.Mass * b.Mass / (a.Mass + b.Mass)

	applyImpulse(a, b, mu, n, vn, -vn)
}
