package interaction

import (
	"math"

	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/vecmath"
)

// solveApproach finds the smallest positive t at which two particles
// separated by r and closing at relative velocity v reach separation
// rs, per spec.md sec 4.3: with b = r.v < 0 (approaching), the earlier
// (minus) root of the quadratic a*t^2 + 2*b*t + c = 0 is physical.
// b == 0 is treated as grazing and rejected, matching the spec's
// explicit numerically-degenerate case.
func solveApproach(r, v vecmath.Vec3, rs float64) (float64, bool) {
	b := r.Dot(v)
	if b >= 0 {
		return 0, false
	}
	a := v.Dot(v)
	if a == 0 {
		return 0, false
	}
	c := r.Dot(r) - rs*rs
	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	t := (-b - math.Sqrt(disc)) / a
	if t <= 0 {
		return 0, false
	}
	return t, true
}

// solveEscape finds the smallest positive t at which two particles
// currently inside radius rs, separating (b = r.v > 0), reach
// separation rs, using the plus root per spec.md sec 4.3.
func solveEscape(r, v vecmath.Vec3, rs float64) (float64, bool) {
	b := r.Dot(v)
	if b <= 0 {
		return 0, false
	}
	a := v.Dot(v)
	if a == 0 {
		return 0, false
	}
	c := r.Dot(r) - rs*rs
	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	t := (-b + math.Sqrt(disc)) / a
	if t <= 0 {
		return 0, false
	}
	return t, true
}

// impulse computes the post-event normal velocity for a shell
// transition with energy jump deltaE (E_to - E_from), given the
// current normal velocity vn and reduced mass mu, following spec.md
// sec 4.3's energy-conservation rule: the normal-channel kinetic
// energy must cover the magnitude of the shell's energy jump,
// whichever direction that jump runs (a positive climb crossed
// inward, or an attractive well's depth crossed outward on escape).
// reflect reports whether the pair lacked the kinetic energy to make
// the transition, in which case the caller must keep shellFrom
// instead of shellTo. Sign of vn is always preserved on a successful
// transition: the pair continues travelling the same radial direction
// it was.
func impulse(vn, mu, deltaE float64) (vnPrime float64, reflect bool) {
	ke := 0.5 * mu * vn * vn
	if ke < math.Abs(deltaE) {
		return -vn, true
	}
	inner := vn*vn - 2*deltaE/mu
	if inner < 0 {
		inner = 0
	}
	sign := 1.0
	if vn < 0 {
		sign = -1.0
	}
	return sign * math.Sqrt(inner), false
}

// applyImpulse mutates a and b's velocities for a normal-direction
// velocity change from vn to vnPrime along unit normal n, and bumps
// both particles' freshness tokens so every event referencing them is
// invalidated per spec.md sec 3's freshness-token contract.
func applyImpulse(a, b *particle.Particle, mu float64, n vecmath.Vec3, vn, vnPrime float64) {
	dp := n.Scale(mu * (vnPrime - vn))
	a.Vel = a.Vel.AddScaled(dp, 1/a.Mass)
	b.Vel = b.Vel.AddScaled(dp, -1/b.Mass)
	a.Bump()
	b.Bump()
}
