// Package sim drives the event-driven molecular dynamics loop of
// spec.md sec 5: pop the globally earliest event, discard it if either
// participant's freshness token has moved on, execute it, and
// repredict every particle whose trajectory the execution changed.
// Simulation owns no component it's given: particles, boundary, cell
// grid, FEL, interaction registry, and capture map are all constructed
// by internal/config and passed in, matching the non-owning-root shape
// of Design Notes sec 9 (no back-references between components).
package sim

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/edmd/internal/capture"
	"github.com/san-kum/edmd/internal/cellgrid"
	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/fel"
	"github.com/san-kum/edmd/internal/interaction"
	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/process"
	"github.com/san-kum/edmd/internal/vecmath"
)

// Hook observes an already-executed, already-streamed event: storage
// and the live monitor subscribe through OnEvent rather than the core
// knowing about either of them (spec.md sec 6).
type Hook func(now float64, owner int, ev event.Event)

// Config assembles every component a Simulation drives. Particles must
// already be inserted into Grid at their t=0 positions; wiring that up
// from a parsed configuration tree is internal/config's job.
type Config struct {
	Particles     []*particle.Particle
	Boundary      vecmath.Boundary
	Grid          *cellgrid.Grid
	FEL           fel.FEL
	Registry      *interaction.Registry
	Capture       *capture.Map
	Thermostat    *process.AndersenThermostat // nil disables the thermostat
	EndTime       float64
	EpsCap        float64 // capture/overlap geometric tolerance, spec.md sec 3
	OverlapSquash bool
}

// Simulation is the event loop's root.
type Simulation struct {
	particles     []*particle.Particle
	boundary      vecmath.Boundary
	grid          *cellgrid.Grid
	fel           fel.FEL
	registry      *interaction.Registry
	capture       *capture.Map
	thermostat    *process.AndersenThermostat
	halt          process.Halt
	epsCap        float64
	overlapSquash bool

	now   float64
	steps int
	hooks []Hook

	// systemOwner is the reserved pseudo-owner index, one past the
	// last real particle, that Thermostat and Halt events are pushed
	// under: the FEL contract requires every event to have an owner,
	// but these processes have no natural single-particle owner.
	systemOwner int
}

// New validates cfg and constructs a Simulation. It does not populate
// the FEL; call Init before Step/Run.
func New(cfg Config) (*Simulation, error) {
	if len(cfg.Particles) == 0 || cfg.Boundary == nil || cfg.Grid == nil ||
		cfg.FEL == nil || cfg.Registry == nil || cfg.Capture == nil {
		return nil, &RunError{Wrapped: ErrConfig}
	}
	if cfg.EndTime <= 0 {
		return nil, &RunError{Wrapped: ErrConfig}
	}
	return &Simulation{
		particles:     cfg.Particles,
		boundary:      cfg.Boundary,
		grid:          cfg.Grid,
		fel:           cfg.FEL,
		registry:      cfg.Registry,
		capture:       cfg.Capture,
		thermostat:    cfg.Thermostat,
		halt:          process.Halt{EndTime: cfg.EndTime},
		epsCap:        cfg.EpsCap,
		overlapSquash: cfg.OverlapSquash,
		systemOwner:   len(cfg.Particles),
	}, nil
}

// OnEvent registers a hook called after every executed event.
func (s *Simulation) OnEvent(h Hook) { s.hooks = append(s.hooks, h) }

func (s *Simulation) Time() float64                   { return s.now }
func (s *Simulation) Steps() int                      { return s.steps }
func (s *Simulation) Particles() []*particle.Particle { return s.particles }

// Init runs the one-time initial prediction warm-up: every particle's
// first candidate event is independent of every other particle's (no
// event has executed yet), so the predictions themselves run
// concurrently across an errgroup and only the resulting FEL
// insertion is serialised back onto the caller (spec.md sec 9's
// parallel-warm-up carve-out from the otherwise strictly serial event
// loop).
func (s *Simulation) Init(ctx context.Context) error {
	s.fel.Resize(s.systemOwner + 1)

	predicted := make([][]event.Event, len(s.particles))
	g, _ := errgroup.WithContext(ctx)
	for i := range s.particles {
		i := i
		g.Go(func() error {
			predicted[i] = s.predictEvents(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &RunError{Wrapped: err}
	}
	for owner, evs := range predicted {
		for _, ev := range evs {
			s.fel.Push(owner, ev)
		}
	}
	s.fel.Rebuild()

	s.fel.Push(s.systemOwner, event.Event{
		Time: s.halt.EndTime, Kind: event.Halt,
		A: event.NoParticle, B: event.NoParticle,
	})
	if s.thermostat != nil {
		s.scheduleThermostat()
	}
	return nil
}

// Run drives the event loop to completion (a Halt event firing) or
// until ctx is cancelled or a fatal error occurs.
func (s *Simulation) Run(ctx context.Context) error {
	if err := s.Init(ctx); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return &RunError{Step: s.steps, Time: s.now, Wrapped: ctx.Err()}
		default:
		}
		cont, err := s.Step()
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}

// Step pops and executes the single globally earliest fresh event,
// returning false (with a nil error) once a Halt event fires.
func (s *Simulation) Step() (bool, error) {
	owner, ev, ok := s.fel.Next()
	for ok && !s.isFresh(ev) {
		s.fel.PopNextPELEvent(owner)
		owner, ev, ok = s.fel.Next()
	}
	if !ok {
		return false, &RunError{Step: s.steps, Time: s.now, Wrapped: ErrNoEvents}
	}
	s.fel.PopNextPELEvent(owner)

	if math.IsNaN(ev.Time) || math.IsInf(ev.Time, 0) {
		return false, &RunError{Step: s.steps, Time: s.now, Wrapped: ErrNumerical}
	}

	s.fel.Stream(ev.Time - s.now)
	s.now = ev.Time
	s.steps++

	var affected []int
	var err error
	switch ev.Kind {
	case event.PairInteraction:
		affected, err = s.executePair(owner, ev)
	case event.CellCross:
		affected, err = s.executeCellCross(ev)
	case event.Thermostat:
		affected, err = s.executeThermostat(ev)
	case event.Recalculate:
		affected, err = s.executeRecalculate(ev)
	case event.Halt:
		s.notify(owner, ev)
		return false, nil
	default:
		return false, &RunError{Step: s.steps, Time: s.now, Wrapped: ErrConfig}
	}
	if err != nil {
		return false, err
	}

	s.notify(owner, ev)
	for _, id := range affected {
		s.predictFor(id)
	}
	return true, nil
}

// isFresh reports whether both of ev's captured tokens still match
// their particles' current tokens. System-process events (Thermostat,
// Halt, and any event carrying event.NoParticle in both slots) are
// trivially fresh: they carry no particle-token dependency.
func (s *Simulation) isFresh(ev event.Event) bool {
	if ev.A != event.NoParticle && s.particles[ev.A].Token != ev.TokenA {
		return false
	}
	if ev.B != event.NoParticle && s.particles[ev.B].Token != ev.TokenB {
		return false
	}
	return true
}

// contactMin is the minimum separation two particles may physically
// have, independent of which interaction governs them: the arithmetic
// mean of their base hard-core diameters. A pop that streams a pair
// closer than this (beyond epsCap) means prediction or accumulated
// floating-point drift produced a geometrically impossible event,
// spec.md sec 7's OverlapError.
func contactMin(a, b *particle.Particle) float64 {
	return (a.Diameter + b.Diameter) / 2
}

func (s *Simulation) executePair(owner int, ev event.Event) ([]int, error) {
	a, b := s.particles[ev.A], s.particles[ev.B]
	a.Stream(s.now)
	b.Stream(s.now)

	dr, _ := s.boundary.Delta(a.Pos, b.Pos, s.now)
	dist := dr.Norm()
	if dist < contactMin(a, b)-s.epsCap {
		if !s.overlapSquash {
			return nil, &RunError{Step: s.steps, Time: s.now, Wrapped: ErrOverlap}
		}
		s.fel.Push(owner, event.Event{
			Time: s.now, Kind: event.Recalculate,
			A: a.ID, B: b.ID, TokenA: a.Token, TokenB: b.Token,
			Payload: event.RecalculatePayload{Reason: "overlap"},
		})
		return nil, nil
	}

	in, ok := s.registry.Lookup(a.Species, b.Species)
	if !ok {
		return []int{a.ID, b.ID}, nil
	}

	if dc, ok := in.(interaction.DesyncChecker); ok {
		if agree, geomShell := dc.CheckCapture(a, b, s.capture, s.boundary); !agree {
			s.capture.Resync(a.ID, b.ID, geomShell)
			return []int{a.ID, b.ID}, nil
		}
	}

	in.Resolve(a, b, s.capture, s.boundary, ev.Payload.(event.PairPayload))

	if !a.Vel.IsValid() || !b.Vel.IsValid() {
		return nil, &RunError{Step: s.steps, Time: s.now, Wrapped: ErrNumerical}
	}
	return []int{a.ID, b.ID}, nil
}

// executeRecalculate implements the OverlapError recovery path: no
// impulse is applied (the pop that found the overlap already skipped
// Resolve), only the capture record is rebuilt from current geometry.
func (s *Simulation) executeRecalculate(ev event.Event) ([]int, error) {
	a, b := s.particles[ev.A], s.particles[ev.B]
	if in, ok := s.registry.Lookup(a.Species, b.Species); ok {
		if dc, ok := in.(interaction.DesyncChecker); ok {
			_, geomShell := dc.CheckCapture(a, b, s.capture, s.boundary)
			s.capture.Resync(a.ID, b.ID, geomShell)
		}
	}
	return []int{a.ID, b.ID}, nil
}

func (s *Simulation) executeCellCross(ev event.Event) ([]int, error) {
	p := s.particles[ev.A]
	p.Stream(s.now)
	p.Pos = s.boundary.Wrap(p.Pos, s.now)

	affected := []int{p.ID}
	// File the particle by a point a hair ahead along its velocity: a
	// particle exactly on a low face still maps to the cell it is leaving.
	probe := p.Pos
	if speed := p.Vel.Norm(); speed > 0 {
		size := s.grid.CellSize()
		probe = p.Pos.AddScaled(p.Vel, 1e-9*math.Min(size.X, math.Min(size.Y, size.Z))/speed)
	}
	if s.grid.Move(p.ID, probe) {
		affected = append(affected, s.grid.Neighbours(p.ID)...)
	}
	return affected, nil
}

func (s *Simulation) executeThermostat(ev event.Event) ([]int, error) {
	if s.thermostat == nil {
		return nil, nil
	}
	affected := s.thermostat.Execute(s.now, s.particles, ev.Payload)
	for _, id := range affected {
		s.capture.ClearAllInvolving(id)
	}
	s.scheduleThermostat()
	return affected, nil
}

func (s *Simulation) scheduleThermostat() {
	t, kind, pl := s.thermostat.NextEvent(s.now, len(s.particles))
	if math.IsInf(t, 1) {
		return
	}
	s.fel.Push(s.systemOwner, event.Event{
		Time: t, Kind: kind, A: event.NoParticle, B: event.NoParticle, Payload: pl,
	})
}

// predictFor discards owner's entire PEL and repopulates it from
// scratch: cheaper to recompute than to selectively invalidate, and
// correct regardless of how many stale entries the token bump left
// behind (spec.md sec 3).
func (s *Simulation) predictFor(owner int) {
	s.fel.ClearPEL(owner)
	for _, ev := range s.predictEvents(owner) {
		s.fel.Push(owner, ev)
	}
}

// predictEvents computes every candidate event owner i should have in
// its own PEL: one pair-interaction candidate per cell-neighbour
// governed by a registered interaction, plus the cell-crossing event.
// It only reads shared state (particles, grid, registry, capture),
// making it safe to call concurrently across distinct owners during
// Init's warm-up pass.
func (s *Simulation) predictEvents(i int) []event.Event {
	p := s.particles[i]
	var evs []event.Event

	for _, j := range s.grid.Neighbours(i) {
		q := s.particles[j]
		in, ok := s.registry.Lookup(p.Species, q.Species)
		if !ok {
			continue
		}
		if ev, ok := in.Predict(p, q, s.now, s.capture, s.boundary); ok {
			evs = append(evs, ev)
		}
	}

	if t, face := s.grid.CrossingTime(i, p.PositionAt(s.now), p.Vel, s.now); !math.IsInf(t, 1) {
		evs = append(evs, event.Event{
			Time: t, Kind: event.CellCross,
			A: i, B: event.NoParticle, TokenA: p.Token,
			Payload: event.CellCrossPayload{Face: int(face)},
		})
	}
	return evs
}

func (s *Simulation) notify(owner int, ev event.Event) {
	for _, h := range s.hooks {
		h(s.now, owner, ev)
	}
}
