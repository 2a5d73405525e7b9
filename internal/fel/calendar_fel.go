package fel

import (
	"math"

	"github.com/san-kum/edmd/internal/event"
)

// CalendarFEL is a bucketed calendar queue (Brown 1988): owners are
// filed into buckets by the time of their PEL head, buckets sized to
// the mean event rate so that popping the globally earliest event is
// O(1) amortised even as PELs accumulate stale entries between token
// bumps (spec.md sec 4.6). This is the second of the two accepted
// disciplines.
type CalendarFEL struct {
	pels     []pel
	buckets  [][]int
	width    float64
	nBuckets int

	current     int     // bucket index to start scanning from
	currentTime float64 // window-start time of `current`, same lap

	nScheduled int // owners with a non-empty PEL, for resize heuristics
	sinceResize int

	rebase float64 // Stream() accumulator, see Elapsed
}

// NewCalendarFEL builds a calendar queue for n owners. width is the
// initial bucket width; a reasonable starting estimate is the expected
// mean time between events for one particle. The queue resizes itself
// as it learns the actual event rate.
func NewCalendarFEL(n int, width float64) *CalendarFEL {
	c := &CalendarFEL{}
	c.width = width
	if c.width <= 0 {
		c.width = 1
	}
	c.Resize(n)
	return c
}

func (c *CalendarFEL) Resize(n int) {
	c.pels = make([]pel, n)
	for i := range c.pels {
		c.pels[i] = newPEL(i, 8)
	}
	nb := n
	if nb < 16 {
		nb = 16
	}
	c.nBuckets = nb
	c.buckets = make([][]int, c.nBuckets)
	c.current = 0
	c.currentTime = 0
	c.nScheduled = 0
	c.sinceResize = 0
}

func (c *CalendarFEL) bucketTimeStart(t float64) float64 {
	return math.Floor(t/c.width) * c.width
}

func (c *CalendarFEL) bucketIndex(t float64) int {
	lap := int64(math.Floor(t / c.width))
	idx := lap % int64(c.nBuckets)
	if idx < 0 {
		idx += int64(c.nBuckets)
	}
	return int(idx)
}

func (c *CalendarFEL) removeFromBucket(b, owner int) {
	s := c.buckets[b]
	for i, o := range s {
		if o == owner {
			s[i] = s[len(s)-1]
			c.buckets[b] = s[:len(s)-1]
			return
		}
	}
}

func (c *CalendarFEL) Push(owner int, e event.Event) {
	p := &c.pels[owner]
	wasEmpty := p.empty()
	if !wasEmpty {
		old := c.bucketIndex(p.head().Time)
		c.removeFromBucket(old, owner)
	}
	p.push(e)
	b := c.bucketIndex(p.head().Time)
	c.buckets[b] = append(c.buckets[b], owner)
	if wasEmpty {
		c.nScheduled++
	}
	c.sinceResize++
	c.maybeResize()
}

func (c *CalendarFEL) PopNextPELEvent(owner int) {
	p := &c.pels[owner]
	if p.empty() {
		return
	}
	removedTime := p.head().Time
	old := c.bucketIndex(removedTime)
	c.removeFromBucket(old, owner)
	p.pop()
	if p.empty() {
		c.nScheduled--
	} else {
		b := c.bucketIndex(p.head().Time)
		c.buckets[b] = append(c.buckets[b], owner)
	}
	// Resume scanning from where we just removed; keeps Next() close
	// to O(1) by not restarting from bucket 0 every time.
	c.current = old
	c.currentTime = c.bucketTimeStart(removedTime)
}

func (c *CalendarFEL) ClearPEL(owner int) {
	p := &c.pels[owner]
	if p.empty() {
		return
	}
	old := c.bucketIndex(p.head().Time)
	c.removeFromBucket(old, owner)
	p.clear()
	c.nScheduled--
}

// Stream accumulates a rebase offset; see Elapsed. Unlike HeapFEL,
// calendar-queue implementations historically track "now" relative to
// a moving baseline to keep bucket-index arithmetic well-scaled over
// long runs. Stored event times remain absolute (each is owned by a
// particle's PEL and read live), so this never needs to touch the
// bucket contents themselves.
func (c *CalendarFEL) Stream(dt float64) { c.rebase += dt }

// Elapsed returns the total time passed to Stream so far.
func (c *CalendarFEL) Elapsed() float64 { return c.rebase }

func (c *CalendarFEL) Next() (int, event.Event, bool) {
	if c.nScheduled == 0 {
		return 0, event.Event{}, false
	}

	i := c.current
	t := c.currentTime
	for lap := 0; lap < c.nBuckets; lap++ {
		if len(c.buckets[i]) > 0 {
			bestOwner, bestTime := -1, math.Inf(1)
			for _, o := range c.buckets[i] {
				// Equal times go to the lower owner id, as in HeapFEL.
				if ht := c.pels[o].head().Time; ht < bestTime || (ht == bestTime && o < bestOwner) {
					bestTime, bestOwner = ht, o
				}
			}
			if bestTime < t+c.width {
				return bestOwner, c.pels[bestOwner].head(), true
			}
		}
		i = (i + 1) % c.nBuckets
		t += c.width
	}

	// Fallback exhaustive scan: guards correctness if the width/bucket
	// sizing has gone stale relative to the event horizon. Rare in
	// steady state once maybeResize has converged.
	bestOwner, bestTime := -1, math.Inf(1)
	for o := range c.pels {
		if !c.pels[o].empty() {
			if ht := c.pels[o].head().Time; ht < bestTime {
				bestTime, bestOwner = ht, o
			}
		}
	}
	return bestOwner, c.pels[bestOwner].head(), true
}

func (c *CalendarFEL) Rebuild() {
	// Recompute a width estimate from the current spread of PEL heads
	// and rebucket everything; used after bulk insertion (sim start)
	// and periodically by maybeResize.
	n := 0
	minT, maxT := math.Inf(1), math.Inf(-1)
	for o := range c.pels {
		if c.pels[o].empty() {
			continue
		}
		n++
		ht := c.pels[o].head().Time
		if ht < minT {
			minT = ht
		}
		if ht > maxT {
			maxT = ht
		}
	}

	if n > 0 {
		span := maxT - minT
		if span <= 0 {
			span = c.width
		}
		target := span / float64(n) * 2 // aim for ~2 owners/bucket
		if target > 0 {
			c.width = target
		}
	}

	nb := n
	if nb < 16 {
		nb = 16
	}
	c.nBuckets = nb
	c.buckets = make([][]int, c.nBuckets)
	c.nScheduled = 0
	for o := range c.pels {
		if c.pels[o].empty() {
			continue
		}
		b := c.bucketIndex(c.pels[o].head().Time)
		c.buckets[b] = append(c.buckets[b], o)
		c.nScheduled++
	}
	c.current = 0
	if n > 0 {
		c.currentTime = c.bucketTimeStart(minT)
		c.current = c.bucketIndex(minT)
	}
	c.sinceResize = 0
}

// maybeResize triggers a full Rebuild once enough pushes have happened
// since the last one that the bucket width may have drifted far from
// the mean event rate (occupancy target ~2 owners/bucket).
func (c *CalendarFEL) maybeResize() {
	if c.nScheduled == 0 {
		return
	}
	if c.sinceResize < c.nScheduled*4 {
		return
	}
	avgOccupancy := float64(c.nScheduled) / float64(c.nBuckets)
	if avgOccupancy > 4 || avgOccupancy < 0.25 {
		c.Rebuild()
	} else {
		c.sinceResize = 0
	}
}
