// Package process implements the non-pair system events of spec.md
// sec 4.5: the Andersen thermostat, compression (a continuous
// parameter with no discrete event of its own), and the run's Halt
// sentinel.
package process

import (
	"math"
	"math/rand/v2"

	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/particle"
)

// SystemProcess is any process that schedules and executes its own,
// non-pair events against the particle set.
type SystemProcess interface {
	// NextEvent returns the next time this process fires and the
	// payload to carry, given the current simulation time now and the
	// current particle count n (consulted by rate-scaled processes
	// like the thermostat).
	NextEvent(now float64, n int) (t float64, kind event.Kind, payload event.Payload)

	// Execute applies the process's effect at event time now, given the
	// full particle set and the payload it scheduled. Implementations
	// are responsible for streaming any particle they mutate to now
	// before changing its velocity, since streaming after the fact would
	// retroactively apply the new velocity across the whole gap since
	// that particle's last update. It returns the ids of particles whose
	// kinematic state changed, so the caller knows which PELs need
	// repredicting.
	Execute(now float64, particles []*particle.Particle, payload event.Payload) (affected []int)
}

// AndersenThermostat resamples one randomly chosen particle's
// velocity from the Maxwell-Boltzmann distribution at temperature T
// whenever it fires, at a Poisson rate nu*N (spec.md sec 4.5). Only
// that particle's freshness token is bumped, invalidating just its
// own scheduled events.
type AndersenThermostat struct {
	Nu  float64 // per-particle collision rate
	T   float64 // target temperature (kT already, in reduced units)
	Rng *rand.Rand
}

func NewAndersenThermostat(nu, temperature float64, seed uint64) *AndersenThermostat {
	return &AndersenThermostat{
		Nu:  nu,
		T:   temperature,
		Rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// NextEvent draws the next Poisson-process firing time at aggregate
// rate nu*N, per spec.md sec 4.5. N is passed in payload-free since
// the thermostat doesn't yet know which particle it will hit; that is
// chosen at Execute time so the choice reflects the population as of
// firing, not as of scheduling.
func (th *AndersenThermostat) NextEvent(now float64, n int) (float64, event.Kind, event.Payload) {
	rate := th.Nu * float64(n)
	if rate <= 0 {
		return math.Inf(1), event.Thermostat, nil
	}
	// Inverse-CDF sampling of an exponential inter-arrival time.
	u := th.Rng.Float64()
	dt := -math.Log(1-u) / rate
	return now + dt, event.Thermostat, nil
}

// Execute resamples one uniformly chosen particle's velocity from
// Maxwell-Boltzmann at temperature T (component-wise Gaussian with
// variance T/mass), bumping only its token. The particle is streamed
// to now first so its position anchor reflects its old velocity up to
// the moment of resampling, not the new one retroactively.
func (th *AndersenThermostat) Execute(now float64, particles []*particle.Particle, _ event.Payload) []int {
	if len(particles) == 0 {
		return nil
	}
	p := particles[th.Rng.IntN(len(particles))]
	p.Stream(now)
	sigma := math.Sqrt(th.T / p.Mass)
	p.Vel.X = sigma * th.gaussian()
	p.Vel.Y = sigma * th.gaussian()
	p.Vel.Z = sigma * th.gaussian()
	p.Bump()
	return []int{p.ID}
}

// gaussian draws a standard-normal sample via the Box-Muller
// transform, using the same rand.Rand source as the Poisson draw so
// a fixed seed reproduces the whole run.
func (th *AndersenThermostat) gaussian() float64 {
	u1 := th.Rng.Float64()
	u2 := th.Rng.Float64()
	if u1 <= 0 {
		u1 = 1e-300
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Compression is a continuous parameter, not a discrete event source:
// it holds a growth rate. interaction.Compressing carries its own Rate
// field and does not read this type. Rate is gamma_c in spec.md
// sec 4.3/4.5.
type Compression struct {
	Rate float64
}

// Halt is the sentinel event terminating the run at t_end.
type Halt struct {
	EndTime float64
}

func (h Halt) NextEvent(_ float64, _ int) (float64, event.Kind, event.Payload) {
	return h.EndTime, event.Halt, nil
}

func (h Halt) Execute(_ float64, _ []*particle.Particle, _ event.Payload) []int { return nil }
