// Package particle defines the per-particle state that every other
// package reads or mutates: position, velocity, the last-update time
// that anchors the ballistic free-motion invariant of spec.md sec 3,
// and the freshness token used to detect stale scheduled events.
package particle

import "github.com/san-kum/edmd/internal/vecmath"

// Species identifies an immutable particle type: mass and interaction
// kind lookups are keyed on it.
type Species uint16

// Particle is one point mass in the simulation. Position and velocity
// are only valid at LastUpdate; callers must call Position(now) (via
// the owning Simulation, see internal/sim) to stream them forward.
type Particle struct {
	ID         int
	Species    Species
	Mass       float64
	Diameter   float64 // base hard-core diameter, sigma_0 under compression
	Pos        vecmath.Vec3
	Vel        vecmath.Vec3
	LastUpdate float64
	Token      uint64
	Cell       int // index into the owning cell grid, -1 if unassigned
}

// New constructs a particle at rest at the origin with the given
// identity; callers set Pos/Vel/Mass/Diameter before the run starts.
func New(id int, species Species) *Particle {
	return &Particle{ID: id, Species: species, Cell: -1}
}

// PositionAt streams the particle's position forward under free
// ballistic motion to time t, per the invariant r(t) = r_i + v*(t-t_i).
func (p *Particle) PositionAt(t float64) vecmath.Vec3 {
	return p.Pos.AddScaled(p.Vel, t-p.LastUpdate)
}

// Stream advances Pos to time t and updates LastUpdate. It does not
// bump Token: streaming alone doesn't invalidate scheduled events,
// only a change of velocity (an impulse) does.
func (p *Particle) Stream(t float64) {
	p.Pos = p.PositionAt(t)
	p.LastUpdate = t
}

// Bump increments the freshness token, marking every event referencing
// this particle stale.
func (p *Particle) Bump() { p.Token++ }
