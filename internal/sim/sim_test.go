package sim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/edmd/internal/capture"
	"github.com/san-kum/edmd/internal/cellgrid"
	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/fel"
	"github.com/san-kum/edmd/internal/interaction"
	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/process"
	"github.com/san-kum/edmd/internal/vecmath"
)

func newHardSphereSim(t *testing.T, endTime float64) (*Simulation, *particle.Particle, *particle.Particle) {
	t.Helper()

	a := particle.New(0, 0)
	a.Pos, a.Vel, a.Mass, a.Diameter = vecmath.Vec3{X: 0}, vecmath.Vec3{X: 1}, 1.0, 1.0
	b := particle.New(1, 0)
	b.Pos, b.Vel, b.Mass, b.Diameter = vecmath.Vec3{X: 2}, vecmath.Vec3{X: -1}, 1.0, 1.0
	particles := []*particle.Particle{a, b}

	grid := cellgrid.New(vecmath.Vec3{X: 20, Y: 20, Z: 20}, 2.0, 2)
	grid.Insert(0, a.Pos)
	grid.Insert(1, b.Pos)

	registry := interaction.NewRegistry()
	registry.Register(0, 0, interaction.HardSphere{Diameter: 1.0})

	s, err := New(Config{
		Particles: particles,
		Boundary:  vecmath.None{},
		Grid:      grid,
		FEL:       fel.NewHeapFEL(len(particles) + 1),
		Registry:  registry,
		Capture:   capture.NewMap(),
		EndTime:   endTime,
		EpsCap:    1e-9,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, a, b
}

func TestRunHeadOnHardSpheresSwapsVelocitiesAndHalts(t *testing.T) {
	s, a, b := newHardSphereSim(t, 10.0)

	var fired []event.Kind
	s.OnEvent(func(_ float64, _ int, ev event.Event) { fired = append(fired, ev.Kind) })

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if math.Abs(a.Vel.X-(-1)) > 1e-6 || math.Abs(b.Vel.X-1) > 1e-6 {
		t.Errorf("expected swapped velocities after collision, got a=%v b=%v", a.Vel, b.Vel)
	}

	sawPair := false
	for _, k := range fired {
		if k == event.PairInteraction {
			sawPair = true
		}
	}
	if !sawPair {
		t.Error("expected at least one PairInteraction event to have fired")
	}
	if fired[len(fired)-1] != event.Halt {
		t.Errorf("expected the run to terminate on a Halt event, last fired was %v", fired[len(fired)-1])
	}
}

func TestRunConservesMomentumAndEnergy(t *testing.T) {
	s, a, b := newHardSphereSim(t, 10.0)

	preP := a.Mass*a.Vel.X + b.Mass*b.Vel.X
	preE := 0.5*a.Mass*a.Vel.Norm2() + 0.5*b.Mass*b.Vel.Norm2()

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	postP := a.Mass*a.Vel.X + b.Mass*b.Vel.X
	postE := 0.5*a.Mass*a.Vel.Norm2() + 0.5*b.Mass*b.Vel.Norm2()

	if math.Abs(postP-preP) > 1e-9 {
		t.Errorf("momentum not conserved: pre=%v post=%v", preP, postP)
	}
	if math.Abs(postE-preE) > 1e-9 {
		t.Errorf("energy not conserved: pre=%v post=%v", preE, postE)
	}
}

func TestStepDiscardsStaleEventsByFreshnessToken(t *testing.T) {
	s, a, _ := newHardSphereSim(t, 10.0)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	// Bump a's token directly, as a resolved event elsewhere would,
	// without going through Step: every event already scheduled with
	// a's old token is now stale and must be skipped, not executed,
	// whenever it reaches the head of the FEL.
	a.Bump()

	cont, err := s.Step()
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !cont {
		t.Fatal("expected the run to continue past a discarded stale event")
	}
}

func TestTimeMonotonicAcrossSteps(t *testing.T) {
	s, _, _ := newHardSphereSim(t, 10.0)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	last := s.Time()
	for {
		cont, err := s.Step()
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if s.Time() < last-1e-12 {
			t.Fatalf("time went backwards: %v -> %v", last, s.Time())
		}
		last = s.Time()
		if !cont {
			break
		}
	}
}

func TestThermostatFiringRunsToHalt(t *testing.T) {
	s, _, _ := newHardSphereSim(t, 5.0)
	s.thermostat = process.NewAndersenThermostat(50.0, 1.0, 99)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Surviving to Halt without a numerical or overlap error, with a
	// live thermostat repeatedly resampling velocities and triggering
	// repredictions, is itself the property under test: the loop
	// never desyncs its own FEL bookkeeping.
}
