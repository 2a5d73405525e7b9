package vecmath

import (
	"testing"

	. "github.com/onsi/gomega"
)

func TestNoneBoundary(t *testing.T) {
	g := NewWithT(t)
	var b Boundary = None{}

	dr, dv := b.Delta(Vec3{5, 0, 0}, Vec3{1, 0, 0}, 0)
	g.Expect(dr).To(Equal(Vec3{4, 0, 0}))
	g.Expect(dv).To(Equal(Vec3{}))
	g.Expect(b.Wrap(Vec3{100, -3, 7}, 0)).To(Equal(Vec3{100, -3, 7}))
}

func TestPeriodicMinimumImage(t *testing.T) {
	g := NewWithT(t)
	b := Periodic{L: Vec3{10, 10, 10}}

	// Particles at 0.5 and 9.5 are 1.0 apart through the wrap, not 9.0:
	// ra sits 1.0 beyond rb's image at -0.5, so ra-rb is +1.0.
	dr, dv := b.Delta(Vec3{0.5, 0, 0}, Vec3{9.5, 0, 0}, 0)
	g.Expect(dr.X).To(BeNumerically("~", 1.0, 1e-12))
	g.Expect(dv).To(Equal(Vec3{}))
}

func TestPeriodicWrap(t *testing.T) {
	g := NewWithT(t)
	b := Periodic{L: Vec3{10, 10, 10}}

	g.Expect(b.Wrap(Vec3{-1, 11, 5}, 0)).To(Equal(Vec3{9, 1, 5}))
}

// TestLeesEdwardsCrossing reproduces scenario D of spec.md sec 8: a
// particle crossing the sheared y-face should pick up a velocity
// offset of ShearRate*Ly on the x-component.
func TestLeesEdwardsCrossing(t *testing.T) {
	g := NewWithT(t)
	Ly := 10.0
	gammaDot := 0.5
	b := LeesEdwards{L: Vec3{10, Ly, 10}, ShearRate: gammaDot}

	// A separated far across the y boundary: ra just above 0, rb just
	// below Ly, so the raw displacement wraps by one image in y.
	ra := Vec3{5, 0.01, 0}
	rb := Vec3{5, Ly - 0.01, 0}

	dr, dv := b.Delta(ra, rb, 0)
	g.Expect(dr.Y).To(BeNumerically("~", 0.02, 1e-9))
	g.Expect(dv.X).To(BeNumerically("~", -gammaDot*Ly, 1e-9))
}

func TestLeesEdwardsNoCrossingNoOffset(t *testing.T) {
	g := NewWithT(t)
	b := LeesEdwards{L: Vec3{10, 10, 10}, ShearRate: 1.0}

	dr, dv := b.Delta(Vec3{5, 5, 5}, Vec3{4, 5, 5}, 3.0)
	g.Expect(dr).To(Equal(Vec3{1, 0, 0}))
	g.Expect(dv).To(Equal(Vec3{}))
}

func TestLeesEdwardsStrainAccumulates(t *testing.T) {
	g := NewWithT(t)
	b := LeesEdwards{L: Vec3{10, 10, 10}, ShearRate: 0.2}

	// At t=5, accumulated strain offset is 0.2*10*5=10 -> wraps to 0 mod Lx=10.
	off := b.strainOffset(5)
	g.Expect(off).To(BeNumerically("~", 0, 1e-9))
}
