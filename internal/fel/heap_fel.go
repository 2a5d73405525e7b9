package fel

import (
	"container/heap"

	"github.com/san-kum/edmd/internal/event"
)

// HeapFEL is a full binary heap of particles keyed by their PEL head
// time: one of the two disciplines spec.md sec 3/4.6 accepts. Stream
// is a no-op, as the spec allows for heap implementations that keep
// absolute event times throughout.
type HeapFEL struct {
	pels  []pel
	order []int // owner ids, heap-ordered by head time
	posOf []int // posOf[owner] = index into order, or -1 if absent
}

func NewHeapFEL(n int) *HeapFEL {
	h := &HeapFEL{}
	h.Resize(n)
	return h
}

func (h *HeapFEL) Resize(n int) {
	h.pels = make([]pel, n)
	for i := range h.pels {
		h.pels[i] = newPEL(i, 8)
	}
	h.order = make([]int, 0, n)
	h.posOf = make([]int, n)
	for i := range h.posOf {
		h.posOf[i] = -1
	}
}

// ownerOrder adapts HeapFEL.order to container/heap.Interface; kept
// as a distinct type because HeapFEL's own Push/Pop (the FEL contract
// methods) have a different signature than heap.Interface requires.
type ownerOrder struct{ h *HeapFEL }

func (o ownerOrder) Len() int { return len(o.h.order) }
func (o ownerOrder) Less(i, j int) bool {
	oa, ob := o.h.order[i], o.h.order[j]
	return event.Less(o.h.pels[oa].head(), o.h.pels[ob].head(), oa, ob)
}
func (o ownerOrder) Swap(i, j int) {
	h := o.h
	h.order[i], h.order[j] = h.order[j], h.order[i]
	h.posOf[h.order[i]] = i
	h.posOf[h.order[j]] = j
}
func (o ownerOrder) Push(x any) {
	owner := x.(int)
	o.h.posOf[owner] = len(o.h.order)
	o.h.order = append(o.h.order, owner)
}
func (o ownerOrder) Pop() any {
	h := o.h
	n := len(h.order)
	owner := h.order[n-1]
	h.order = h.order[:n-1]
	h.posOf[owner] = -1
	return owner
}

func (h *HeapFEL) order_() heap.Interface { return ownerOrder{h} }

func (h *HeapFEL) Push(owner int, e event.Event) {
	p := &h.pels[owner]
	wasEmpty := p.empty()
	p.push(e)
	if wasEmpty {
		heap.Push(h.order_(), owner)
	} else {
		heap.Fix(h.order_(), h.posOf[owner])
	}
}

func (h *HeapFEL) Next() (int, event.Event, bool) {
	if len(h.order) == 0 {
		return 0, event.Event{}, false
	}
	o := h.order[0]
	return o, h.pels[o].head(), true
}

func (h *HeapFEL) PopNextPELEvent(owner int) {
	p := &h.pels[owner]
	if p.empty() {
		return
	}
	p.pop()
	if p.empty() {
		heap.Remove(h.order_(), h.posOf[owner])
	} else {
		heap.Fix(h.order_(), h.posOf[owner])
	}
}

func (h *HeapFEL) ClearPEL(owner int) {
	p := &h.pels[owner]
	if p.empty() {
		return
	}
	p.clear()
	heap.Remove(h.order_(), h.posOf[owner])
}

// Stream is a no-op: HeapFEL keeps absolute event times throughout.
func (h *HeapFEL) Stream(dt float64) {}

func (h *HeapFEL) Rebuild() {
	h.order = h.order[:0]
	for o := range h.pels {
		if h.pels[o].empty() {
			h.posOf[o] = -1
		} else {
			h.posOf[o] = len(h.order)
			h.order = append(h.order, o)
		}
	}
	heap.Init(h.order_())
}
