package interaction

import (
	"math"
	"testing"

	"github.com/san-kum/edmd/internal/capture"
	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/potential"
	"github.com/san-kum/edmd/internal/vecmath"
)

func newPair(posA, velA, posB, velB vecmath.Vec3, mass float64) (*particle.Particle, *particle.Particle) {
	a := particle.New(0, 0)
	a.Pos, a.Vel, a.Mass, a.Diameter = posA, velA, mass, 1.0
	b := particle.New(1, 0)
	b.Pos, b.Vel, b.Mass, b.Diameter = posB, velB, mass, 1.0
	return a, b
}

// TestScenarioAHeadOnHardSpheres reproduces spec.md sec 8 scenario A.
func TestScenarioAHeadOnHardSpheres(t *testing.T) {
	a, b := newPair(
		vecmath.Vec3{X: 0}, vecmath.Vec3{X: 1},
		vecmath.Vec3{X: 2}, vecmath.Vec3{X: -1},
		1.0,
	)
	hs := HardSphere{Diameter: 1.0}
	bnd := vecmath.None{}
	capMap := capture.NewMap()

	ev, ok := hs.Predict(a, b, 0, capMap, bnd)
	if !ok {
		t.Fatal("expected a predicted event")
	}
	if math.Abs(ev.Time-0.5) > 1e-9 {
		t.Fatalf("expected t=0.5, got %v", ev.Time)
	}

	a.Stream(ev.Time)
	b.Stream(ev.Time)
	hs.Resolve(a, b, capMap, bnd, ev.Payload.(event.PairPayload))

	if math.Abs(a.Vel.X-(-1)) > 1e-9 || math.Abs(b.Vel.X-1) > 1e-9 {
		t.Errorf("expected velocities to swap, got a.Vel=%v b.Vel=%v", a.Vel, b.Vel)
	}
}

// TestScenarioBSquareWellCapture reproduces spec.md sec 8 scenario B.
func TestScenarioBSquareWellCapture(t *testing.T) {
	a, b := newPair(
		vecmath.Vec3{X: 0}, vecmath.Vec3{X: 1},
		vecmath.Vec3{X: 2}, vecmath.Vec3{X: -1},
		1.0,
	)
	bnd := vecmath.None{}
	capMap := capture.NewMap()

	// A single-shell table: cutoff at r=1.5 (the capture boundary),
	// DeltaE = -1.0 on capture.
	lj := constantShellPotential{energy: -1.0}
	table := potential.NewShellTable(potential.Params{
		Pot: lj, Cutoff: 1.5, RMode: potential.DeltaR, EMode: potential.Midpoint, NAtt: 1,
	})
	sw := &Stepped{Table: table, Cutoff: 1.5}

	ev, ok := sw.Predict(a, b, 0, capMap, bnd)
	if !ok {
		t.Fatal("expected a predicted capture event")
	}
	if math.Abs(ev.Time-0.25) > 1e-9 {
		t.Fatalf("expected t=0.25, got %v", ev.Time)
	}

	preRelVel := a.Vel.Sub(b.Vel)
	preSpeed2 := preRelVel.Norm2()

	a.Stream(ev.Time)
	b.Stream(ev.Time)
	sw.Resolve(a, b, capMap, bnd, ev.Payload.(event.PairPayload))

	postRelVel := a.Vel.Sub(b.Vel)
	postSpeed2 := postRelVel.Norm2()

	// Falling into an attractive well (DeltaE=-1.0) must increase the
	// normal-channel kinetic energy by exactly |DeltaE|/mu per unit
	// reduced mass, i.e. postSpeed2 - preSpeed2 == -2*DeltaE/mu = 4.0
	// for this setup's mu=0.5.
	gained := postSpeed2 - preSpeed2
	if math.Abs(gained-4.0) > 1e-6 {
		t.Errorf("expected relative speed^2 to grow by 4.0 on capture, got %v", gained)
	}
	if shell, ok := capMap.Shell(a.ID, b.ID); !ok || shell != 0 {
		t.Errorf("expected the pair captured in shell 0, got shell=%d ok=%v", shell, ok)
	}
}

// TestScenarioCReflectionWhenTooSlow reproduces spec.md sec 8 scenario C.
func TestScenarioCReflectionWhenTooSlow(t *testing.T) {
	a, b := newPair(
		vecmath.Vec3{X: 0}, vecmath.Vec3{X: 0.1},
		vecmath.Vec3{X: 2}, vecmath.Vec3{X: -0.1},
		1.0,
	)
	bnd := vecmath.None{}
	capMap := capture.NewMap()

	lj := constantShellPotential{energy: -1.0}
	table := potential.NewShellTable(potential.Params{
		Pot: lj, Cutoff: 1.5, RMode: potential.DeltaR, EMode: potential.Midpoint, NAtt: 1,
	})
	sw := &Stepped{Table: table, Cutoff: 1.5}

	ev, ok := sw.Predict(a, b, 0, capMap, bnd)
	if !ok {
		t.Fatal("expected a predicted event at the capture boundary")
	}
	if math.Abs(ev.Time-2.5) > 1e-6 {
		t.Fatalf("expected t~=2.5, got %v", ev.Time)
	}

	a.Stream(ev.Time)
	b.Stream(ev.Time)
	preVel := a.Vel.Sub(b.Vel)
	sw.Resolve(a, b, capMap, bnd, ev.Payload.(event.PairPayload))
	postVel := a.Vel.Sub(b.Vel)

	if math.Abs(postVel.X+preVel.X) > 1e-9 {
		t.Errorf("expected reflection (velocity reversal), pre=%v post=%v", preVel, postVel)
	}
	if _, captured := capMap.Shell(a.ID, b.ID); captured {
		t.Error("a reflection must not leave the pair captured")
	}
}

// constantShellPotential is a test double standing in for a continuous
// potential whose single discretised shell has a fixed energy,
// independent of radius, isolating the geometric prediction/resolve
// arithmetic from the discretiser itself.
type constantShellPotential struct {
	energy float64
}

func (p constantShellPotential) U(r float64) float64 { return p.energy }
func (p constantShellPotential) Minimum() float64    { return 0.75 }
