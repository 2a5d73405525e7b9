// Package capture tracks which particle pairs currently sit inside an
// attractive shell of a stepped potential (spec.md sec 3, sec 7): the
// capture map records the shell index each captured pair last crossed
// into, and self-corrects when floating-point drift lets the geometric
// separation disagree with the recorded shell beyond a tolerance.
package capture

// Key identifies an unordered particle pair by their canonical
// (lower, higher) index order so (a,b) and (b,a) hash identically.
type Key struct {
	A, B int
}

func NewKey(a, b int) Key {
	if a > b {
		a, b = b, a
	}
	return Key{A: a, B: b}
}

// Map is the capture bookkeeping table: pair -> shell index.
type Map struct {
	shells map[Key]int
}

func NewMap() *Map {
	return &Map{shells: make(map[Key]int)}
}

// Set records pair (a,b) as captured in shell.
func (m *Map) Set(a, b, shell int) {
	m.shells[NewKey(a, b)] = shell
}

// Clear removes any capture record for pair (a,b), used when the pair
// escapes past the outermost shell.
func (m *Map) Clear(a, b int) {
	delete(m.shells, NewKey(a, b))
}

// Shell reports the recorded shell index for pair (a,b), and whether
// the pair is currently captured at all.
func (m *Map) Shell(a, b int) (int, bool) {
	s, ok := m.shells[NewKey(a, b)]
	return s, ok
}

// ClearAllInvolving drops every capture record involving particle id,
// used when id's kinematic state changes in a way that invalidates
// its captures independently of the token bump (e.g. a thermostat
// resample discussed in spec.md sec 4.5, which invalidates id's events
// but leaves its capture geometry unchanged until the next check).
func (m *Map) ClearAllInvolving(id int) {
	for k := range m.shells {
		if k.A == id || k.B == id {
			delete(m.shells, k)
		}
	}
}

// Agreement reports whether the recorded shell for a captured pair is
// consistent with its current geometric separation dist, within
// epsCap, given the shell boundary radii [rInner, rOuter] (rOuter >
// rInner) that bound the recorded shell. A pair with no capture record
// trivially agrees.
func (m *Map) Agreement(a, b int, dist, rInner, rOuter, epsCap float64) bool {
	_, ok := m.Shell(a, b)
	if !ok {
		return true
	}
	return dist >= rInner-epsCap && dist <= rOuter+epsCap
}

// Resync implements the CaptureDesync recovery of spec.md sec 7: the
// pair's capture state is reinitialised from geometry rather than
// trusted from the stale record. Callers pass the shell index that
// geometrically matches the pair's current separation; passing -1
// clears the capture entirely (the pair has drifted outside every
// shell).
func (m *Map) Resync(a, b, geometricShell int) {
	if geometricShell < 0 {
		m.Clear(a, b)
		return
	}
	m.Set(a, b, geometricShell)
}

// Len reports the number of currently captured pairs.
func (m *Map) Len() int {
	return len(m.shells)
}
