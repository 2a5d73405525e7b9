package vecmath

import "math"

// Boundary is the abstract contract every interaction and cell-grid
// predict call goes through to turn two absolute positions into a
// minimum-image separation. Delta additionally returns a velocity
// correction: only Lees-Edwards shearing needs one (a wrap across the
// shearing face carries a velocity offset with it), but every
// implementation returns the pair so callers never special-case the
// boundary kind on the hot path.
type Boundary interface {
	// Delta returns the minimum-image displacement ra-rb and the
	// velocity correction that must be added to (va-vb) before it is
	// used in event prediction, evaluated at simulation time t.
	Delta(ra, rb Vec3, t float64) (dr, dv Vec3)
	// Wrap folds r into the primary image of the simulation cell.
	Wrap(r Vec3, t float64) Vec3
	// Lengths returns the box side lengths (zero components mean
	// unbounded in that dimension).
	Lengths() Vec3
}

// None is an unbounded, non-periodic boundary: Delta is a plain
// subtraction and Wrap is the identity.
type None struct{}

func (None) Delta(ra, rb Vec3, _ float64) (Vec3, Vec3) { return ra.Sub(rb), Vec3{} }
func (None) Wrap(r Vec3, _ float64) Vec3               { return r }
func (None) Lengths() Vec3                             { return Vec3{} }

// Periodic wraps all three axes independently to the nearest image.
type Periodic struct {
	L Vec3
}

func nearestImage(d, l float64) float64 {
	if l == 0 {
		return d
	}
	return d - l*math.Round(d/l)
}

func (p Periodic) Delta(ra, rb Vec3, _ float64) (Vec3, Vec3) {
	d := ra.Sub(rb)
	return Vec3{
		nearestImage(d.X, p.L.X),
		nearestImage(d.Y, p.L.Y),
		nearestImage(d.Z, p.L.Z),
	}, Vec3{}
}

func wrapComponent(x, l float64) float64 {
	if l == 0 {
		return x
	}
	x = math.Mod(x, l)
	if x < 0 {
		x += l
	}
	return x
}

func (p Periodic) Wrap(r Vec3, _ float64) Vec3 {
	return Vec3{wrapComponent(r.X, p.L.X), wrapComponent(r.Y, p.L.Y), wrapComponent(r.Z, p.L.Z)}
}

func (p Periodic) Lengths() Vec3 { return p.L }

// LeesEdwards is periodic in x and z and shears across the y boundary:
// crossing a y-image offsets x by the accumulated strain times Ly, and
// offsets the relative velocity used for prediction by ShearRate*Ly
// per crossing (spec.md sec 4.1). ShearRate is gamma-dot.
type LeesEdwards struct {
	L         Vec3
	ShearRate float64
}

// strainOffset is the accumulated x-displacement of the sheared image
// at simulation time t, wrapped into [0, Lx).
func (le LeesEdwards) strainOffset(t float64) float64 {
	if le.L.X == 0 {
		return 0
	}
	return math.Mod(le.ShearRate*le.L.Y*t, le.L.X)
}

func (le LeesEdwards) Delta(ra, rb Vec3, t float64) (Vec3, Vec3) {
	d := ra.Sub(rb)

	cy := 0.0
	if le.L.Y != 0 {
		cy = math.Round(d.Y / le.L.Y)
	}

	offset := le.strainOffset(t)
	d.X -= cy * offset
	d.X = nearestImage(d.X, le.L.X)
	d.Y -= cy * le.L.Y
	d.Z = nearestImage(d.Z, le.L.Z)

	dv := Vec3{X: cy * le.ShearRate * le.L.Y}
	return d, dv
}

func (le LeesEdwards) Wrap(r Vec3, t float64) Vec3 {
	if le.L.Y == 0 {
		return Vec3{nearestImage(r.X, le.L.X), r.Y, nearestImage(r.Z, le.L.Z)}
	}
	ny := math.Floor(r.Y / le.L.Y)
	r.Y -= ny * le.L.Y
	r.X -= ny * le.strainOffset(t)
	r.X = wrapComponent(r.X, le.L.X)
	r.Z = wrapComponent(r.Z, le.L.Z)
	return r
}

func (le LeesEdwards) Lengths() Vec3 { return le.L }
