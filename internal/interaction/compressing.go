package interaction

import (
	"math"

	"github.com/san-kum/edmd/internal/capture"
	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/vecmath"
)

// Compressing is a hard-sphere interaction whose contact diameter
// grows linearly with absolute simulation time at rate Rate
// (spec.md sec 4.3, 4.5): sigma(T) = BaseDiameter + Rate*T. The
// contact condition |dr + v*t|^2 = sigma(now+t)^2 is no longer a
// fixed-radius quadratic, so it is solved by Newton iteration from a
// fixed-diameter initial guess, per spec.md's "Newton-iterated lowest
// positive root".
type Compressing struct {
	BaseDiameter float64
	Rate         float64
}

func (c *Compressing) diameterAt(absTime float64) float64 {
	return c.BaseDiameter + c.Rate*absTime
}

// DiameterAt exposes the time-dependent contact diameter so other
// components (cell-grid sizing, overlap checks) can consult the
// current effective hard-core size.
func (c *Compressing) DiameterAt(absTime float64) float64 {
	return c.diameterAt(absTime)
}

func (c *Compressing) Predict(a, b *particle.Particle, now float64, _ *capture.Map, bnd vecmath.Boundary) (event.Event, bool) {
	ra, rb := a.PositionAt(now), b.PositionAt(now)
	dr, dv := bnd.Delta(ra, rb, now)
	v := a.Vel.Sub(b.Vel).Add(dv)

	t, ok := c.solveGrowingContact(dr, v, now)
	if !ok {
		return event.Event{}, false
	}
	return event.Event{
		Time: now + t, Kind: event.PairInteraction,
		A: a.ID, B: b.ID, TokenA: a.Token, TokenB: b.Token,
		Payload: event.PairPayload{ShellFrom: 0, ShellTo: 0, Outward: false},
	}, true
}

func (c *Compressing) solveGrowingContact(r, v vecmath.Vec3, now float64) (float64, bool) {
	f := func(t float64) float64 {
		sig := c.diameterAt(now + t)
		d := r.AddScaled(v, t)
		return d.Dot(d) - sig*sig
	}
	fPrime := func(t float64) float64 {
		sig := c.diameterAt(now + t)
		d := r.AddScaled(v, t)
		return 2*d.Dot(v) - 2*sig*c.Rate
	}

	t := 0.0
	if t0, ok := solveApproach(r, v, c.diameterAt(now)); ok {
		t = t0
	} else if r.Norm() <= c.diameterAt(now) {
		// already overlapping the growing diameter: resolve immediately.
		return 0, true
	} else {
		return 0, false
	}

	for i := 0; i < 50; i++ {
		ft := f(t)
		if math.Abs(ft) < 1e-10 {
			break
		}
		df := fPrime(t)
		if df == 0 {
			return 0, false
		}
		next := t - ft/df
		if next < 0 {
			next = t / 2
		}
		t = next
	}

	if t < 0 || math.IsNaN(t) {
		return 0, false
	}
	return t, true
}

func (c *Compressing) Resolve(a, b *particle.Particle, _ *capture.Map, bnd vecmath.Boundary, _ event.PairPayload) {
	dr, dv := bnd.Delta(a.Pos, b.Pos, a.LastUpdate)
	n := dr.Normalized()
	v := a.Vel.Sub(b.Vel).Add(dv)
	vn := v.Dot(n)
	mu := a.Mass * b.Mass / (a.Mass + b.Mass)

	applyImpulse(a, b, mu, n, vn, -vn)
}
