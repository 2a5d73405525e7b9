package sim

import "errors"

// Domain errors for the event loop (spec.md sec 7).
var (
	// ErrConfig indicates a Simulation was constructed with missing or
	// inconsistent components; always fatal, always at startup.
	ErrConfig = errors.New("sim: invalid configuration")

	// ErrOverlap indicates two particles are separated by less than
	// their contact distance with no configured recovery; fatal unless
	// Config.OverlapSquash schedules a Recalculate event instead.
	ErrOverlap = errors.New("sim: unrecoverable particle overlap")

	// ErrNumerical indicates a resolved velocity or scheduled time
	// became non-finite; always fatal, returned wrapped in a RunError
	// carrying the step and time. No particle state is logged.
	ErrNumerical = errors.New("sim: numerical instability")

	// ErrNoEvents indicates the future event list emptied before a
	// Halt event fired, which should not happen in a correctly
	// configured run (a Halt event is always seeded at Init).
	ErrNoEvents = errors.New("sim: future event list exhausted before halt")
)

// RunError wraps a domain error with the step count and simulation
// time at which it occurred, mirroring the teacher's
// dynamo.SimulationError shape.
type RunError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *RunError) Error() string {
	return e.Wrapped.Error()
}

func (e *RunError) Unwrap() error {
	return e.Wrapped
}
