package fel_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/fel"
)

// This suite exercises the FEL contract of spec.md sec 4.6 against
// both disciplines identically, so a regression in either the heap or
// the calendar-queue implementation of the shared selection invariant
// shows up here rather than only in a scenario test.
var _ = Describe("FEL", func() {
	for _, ctor := range []struct {
		name string
		new  func(n int) fel.FEL
	}{
		{"HeapFEL", func(n int) fel.FEL { return fel.NewHeapFEL(n) }},
		{"CalendarFEL", func(n int) fel.FEL { return fel.NewCalendarFEL(n, 1.0) }},
	} {
		ctor := ctor

		Describe(ctor.name, func() {
			var f fel.FEL

			BeforeEach(func() {
				f = ctor.new(4)
			})

			When("empty", func() {
				It("reports no next event", func() {
					_, _, ok := f.Next()
					Expect(ok).To(BeFalse())
				})
			})

			When("events are pushed out of time order", func() {
				BeforeEach(func() {
					f.Push(0, event.Event{Time: 10})
					f.Push(1, event.Event{Time: 3})
					f.Push(2, event.Event{Time: 7})
				})

				It("selects the globally earliest head", func() {
					owner, e, ok := f.Next()
					Expect(ok).To(BeTrue())
					Expect(owner).To(Equal(1))
					Expect(e.Time).To(Equal(3.0))
				})

				It("advances to the next earliest after a pop", func() {
					owner, _, _ := f.Next()
					f.PopNextPELEvent(owner)

					_, e, ok := f.Next()
					Expect(ok).To(BeTrue())
					Expect(e.Time).To(Equal(7.0))
				})

				It("removes an owner entirely on ClearPEL", func() {
					f.ClearPEL(1)

					_, e, ok := f.Next()
					Expect(ok).To(BeTrue())
					Expect(e.Time).To(Equal(7.0))
				})
			})

			It("breaks same-owner, same-time ties by kind ordinal", func() {
				f.Push(0, event.Event{Time: 1, Kind: event.Halt})
				f.Push(0, event.Event{Time: 1, Kind: event.PairInteraction})

				_, e, ok := f.Next()
				Expect(ok).To(BeTrue())
				Expect(e.Kind).To(Equal(event.PairInteraction))
			})
		})
	}
})
