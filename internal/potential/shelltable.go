package potential

import (
	"math"
	"sync"
	"sync/atomic"
)

// RadialMode selects how shell radii are spaced.
type RadialMode int

const (
	DeltaR RadialMode = iota // uniform radial spacing
	DeltaU                   // uniform energy spacing, found by bisection
)

// EnergyMode selects how the constant energy of each shell is assigned
// from the continuous potential across that shell's radial extent.
type EnergyMode int

const (
	Midpoint EnergyMode = iota
	Left
	Right
	Volume
	Virial
)

// Shell is one step of the stepped potential. A pair whose separation
// lies in (R, R of the previous shell] (the cutoff for shell 0) has
// the constant energy E that the EnergyMode assigns to that range
// (E=0 beyond the cutoff). DeltaE is E minus the previous shell's E
// (minus 0 for shell 0): the jump taken on crossing that outer
// boundary inward.
type Shell struct {
	R      float64
	E      float64
	DeltaE float64
	IsCore bool // true if this is a truncated hard core (terminal shell)
}

// Params configures a Builder. KT is only consulted by EnergyMode
// Virial.
type Params struct {
	Pot          Potential
	Cutoff       float64
	RMode        RadialMode
	EMode        EnergyMode
	NAtt         int     // attractive steps between cutoff and the well minimum (DeltaR)
	StepEnergy   float64 // energy spacing between successive shells (DeltaU)
	HardCoreDiam float64 // >0 truncates the inner shell sequence to a hard core
	KT           float64 // thermal energy scale for Virial energy assignment
}

// ShellTable is the lazily-extended, append-only ordered shell
// sequence described in spec.md sec 3/4.2 and Design Notes sec 9: a
// single writer (appendNext, called from Shell on a cache miss) appends
// under a mutex, while readers on the hot path only need to check the
// atomic highestValid index before indexing the backing slice without
// further synchronisation.
type ShellTable struct {
	p Params

	mu           sync.Mutex
	shells       []Shell
	highestValid atomic.Int64 // -1 means empty

	rMin      float64
	truncated bool
}

func NewShellTable(p Params) *ShellTable {
	t := &ShellTable{p: p}
	t.highestValid.Store(-1)
	t.rMin = p.Pot.Minimum()
	return t
}

// Shell returns the k'th shell (0-indexed from the cutoff inward),
// extending the table if necessary. Once a truncated hard core has
// been reached, every index at or beyond it returns that same
// terminal shell.
func (t *ShellTable) Shell(k int) Shell {
	if int64(k) <= t.highestValid.Load() {
		return t.shells[t.clampIndex(k)]
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for int64(k) > t.highestValid.Load() {
		if t.truncated {
			break
		}
		t.appendNext()
	}
	return t.shells[t.clampIndex(k)]
}

func (t *ShellTable) clampIndex(k int) int {
	if k < len(t.shells) {
		return k
	}
	return len(t.shells) - 1
}

// NumShells returns the number of shells materialised so far (not the
// eventual total, which for an untruncated potential is unbounded).
func (t *ShellTable) NumShells() int {
	return int(t.highestValid.Load() + 1)
}

func (t *ShellTable) appendNext() {
	idx := len(t.shells)

	var r float64
	switch t.p.RMode {
	case DeltaR:
		r = t.nextRadiusDeltaR(idx)
	case DeltaU:
		r = t.nextRadiusDeltaU(idx)
	}

	prevR := t.p.Cutoff
	prevE := 0.0
	if idx > 0 {
		prevR = t.shells[idx-1].R
		prevE = t.shells[idx-1].E
	}

	isCore := t.p.HardCoreDiam > 0 && r <= t.p.HardCoreDiam+1e-15
	if isCore {
		r = t.p.HardCoreDiam
	}

	e := t.assignEnergy(prevR, r)
	shell := Shell{R: r, E: e, DeltaE: e - prevE, IsCore: isCore}
	t.shells = append(t.shells, shell)
	t.highestValid.Store(int64(idx))

	if isCore {
		t.truncated = true
	}
}

// nextRadiusDeltaR implements spec.md sec 4.2's DeltaR mode: uniform
// spacing from the cutoff down to the well minimum over NAtt
// attractive steps, then halving the remaining distance to zero for
// the repulsive core (or truncating at HardCoreDiam if configured).
func (t *ShellTable) nextRadiusDeltaR(idx int) float64 {
	i := idx + 1 // shells are 1-indexed boundaries counted from the cutoff
	if i <= t.p.NAtt {
		step := (t.p.Cutoff - t.rMin) / float64(t.p.NAtt)
		return t.p.Cutoff - float64(i)*step
	}
	// Repulsive branch: halve the distance from the last radius toward
	// zero. Reaches r=0 only in the limit, per spec.md sec 4.2.
	prevR := t.rMin
	if idx > 0 {
		prevR = t.shells[idx-1].R
	}
	if t.p.HardCoreDiam > 0 {
		return t.p.HardCoreDiam
	}
	return prevR / 2
}

// nextRadiusDeltaU implements spec.md sec 4.2's DeltaU mode: shells
// are spaced by uniform energy increments StepEnergy from the well
// minimum, symmetric in energy about it, and located by bisection.
func (t *ShellTable) nextRadiusDeltaU(idx int) float64 {
	i := idx + 1
	eMin := t.p.Pot.U(t.rMin)
	target := 0.0 - float64(i)*t.p.StepEnergy // energies climb from ~0 at the cutoff down toward eMin

	if target >= eMin {
		// Still on the attractive (outer, r > rMin) branch.
		return solveForRadius(t.p.Pot, t.rMin, target, +1, t.tolerance())
	}

	if t.p.HardCoreDiam > 0 {
		return t.p.HardCoreDiam
	}
	// Repulsive (inner, r < rMin) branch: target energy now exceeds
	// what the attractive branch alone reached, continue past the
	// minimum symmetrically.
	overshoot := eMin - target
	innerTarget := eMin + overshoot
	return solveForRadius(t.p.Pot, t.rMin, innerTarget, -1, t.tolerance())
}

func (t *ShellTable) tolerance() float64 {
	tol := t.p.StepEnergy * 1e-15
	if tol <= 0 {
		tol = 1e-15
	}
	return tol
}

// solveForRadius finds r with pot.U(r) == target on the branch
// dir*(r-rMin) > 0, expanding a bracket geometrically from rMin and
// then bisecting to tolerance or 1000 iterations (spec.md sec 4.2).
func solveForRadius(pot Potential, rMin, target float64, dir int, tol float64) float64 {
	sign := func(x float64) float64 {
		if x < 0 {
			return -1
		}
		return 1
	}

	lo := rMin
	uLo := pot.U(lo)
	step := rMin * 0.5
	if step <= 0 {
		step = 0.5
	}
	hi := rMin + float64(dir)*step

	for i := 0; i < 1000; i++ {
		if dir < 0 && hi <= 1e-12 {
			hi = 1e-12
			break
		}
		if sign(pot.U(hi)-target) != sign(uLo-target) {
			break
		}
		step *= 2
		hi = rMin + float64(dir)*step
	}

	for i := 0; i < 1000; i++ {
		mid := (lo + hi) / 2
		diff := pot.U(mid) - target
		if math.Abs(diff) <= tol {
			return mid
		}
		if sign(diff) == sign(uLo-target) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// assignEnergy computes the energy E of the shell spanning (rInner, rOuter],
// rOuter > rInner, per the configured EnergyMode.
func (t *ShellTable) assignEnergy(rOuter, rInner float64) float64 {
	pot := t.p.Pot
	switch t.p.EMode {
	case Left:
		return pot.U(rInner)
	case Right:
		return pot.U(rOuter)
	case Volume:
		if va, ok := pot.(VolumeAverager); ok {
			return va.VolumeAverage(rInner, rOuter)
		}
		return volumeAverageNumeric(pot, rInner, rOuter, 2000)
	case Virial:
		return virialMatchedEnergy(pot, rInner, rOuter, t.p.KT)
	default: // Midpoint
		return pot.U((rInner + rOuter) / 2)
	}
}

// volumeAverageNumeric integrates U(r) r^2 over [r0,r1] by Simpson's
// rule for potentials without a closed-form VolumeAverage.
func volumeAverageNumeric(pot Potential, r0, r1 float64, n int) float64 {
	if n%2 != 0 {
		n++
	}
	h := (r1 - r0) / float64(n)
	sum := pot.U(r0)*r0*r0 + pot.U(r1)*r1*r1
	for i := 1; i < n; i++ {
		r := r0 + float64(i)*h
		w := 4.0
		if i%2 == 0 {
			w = 2.0
		}
		sum += w * pot.U(r) * r * r
	}
	integral := sum * h / 3
	shellVolume := (r1*r1*r1 - r0*r0*r0) / 3
	if shellVolume == 0 {
		return pot.U((r0 + r1) / 2)
	}
	return integral / shellVolume
}

// virialMatchedEnergy chooses DeltaE so the discretised shell's
// contribution to the second virial coefficient B2(T) matches the
// continuous potential's contribution over the same radial range, via
// trapezoidal integration with 100000 sub-intervals (spec.md sec 4.2).
func virialMatchedEnergy(pot Potential, r0, r1 float64, kT float64) float64 {
	if kT <= 0 {
		kT = 1
	}
	const nSub = 100000
	h := (r1 - r0) / float64(nSub)

	integrand := func(r float64) float64 {
		return (math.Exp(-pot.U(r)/kT) - 1) * r * r
	}

	sum := 0.5 * (integrand(r0) + integrand(r1))
	for i := 1; i < nSub; i++ {
		sum += integrand(r0 + float64(i)*h)
	}
	contInt := sum * h

	shellVolThird := (r1*r1*r1 - r0*r0*r0) / 3
	if shellVolThird == 0 {
		return pot.U((r0 + r1) / 2)
	}

	ratio := 1 + contInt/shellVolThird
	if ratio <= 0 {
		// Degenerate (extremely deep well): fall back to midpoint
		// rather than take log of a non-positive number.
		return pot.U((r0 + r1) / 2)
	}
	return -kT * math.Log(ratio)
}
