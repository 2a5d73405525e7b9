package fel

import (
	"container/heap"

	"github.com/san-kum/edmd/internal/event"
)

// pel is one particle's bounded min-heap of scheduled events in which
// it is the primary participant. It implements container/heap.Interface
// directly: a PEL is small and short-lived enough that this is
// simpler than wrapping it.
type pel struct {
	owner int
	h     []event.Event
}

func newPEL(owner, capHint int) pel {
	return pel{owner: owner, h: make([]event.Event, 0, capHint)}
}

func (p *pel) Len() int { return len(p.h) }
func (p *pel) Less(i, j int) bool {
	return event.Less(p.h[i], p.h[j], p.owner, p.owner)
}
func (p *pel) Swap(i, j int) { p.h[i], p.h[j] = p.h[j], p.h[i] }

func (p *pel) Push(x any) { p.h = append(p.h, x.(event.Event)) }

func (p *pel) Pop() any {
	n := len(p.h)
	e := p.h[n-1]
	p.h = p.h[:n-1]
	return e
}

func (p *pel) empty() bool { return len(p.h) == 0 }

func (p *pel) head() event.Event { return p.h[0] }

func (p *pel) push(e event.Event) { heap.Push(p, e) }

func (p *pel) pop() event.Event { return heap.Pop(p).(event.Event) }

func (p *pel) clear() { p.h = p.h[:0] }
