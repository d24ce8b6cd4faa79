// Package boundary holds the out-of-scope subsystem markers the server
// needs a concrete type for, without implementing the subsystems
// themselves. The collaborative sprint-room feature is gated entirely
// behind a flag; this package is its single point of truth so the
// gate's behavior isn't duplicated across handlers.
package boundary

// SprintGate reports whether the collaborative sprint-room subsystem is
// enabled. It never implements sprint rooms: a disabled gate answers
// every request under its path with 404, and an enabled gate still
// answers 501, since the subsystem itself is out of scope.
type SprintGate struct {
	Enabled bool
}

// NewSprintGate returns a gate reflecting the sprint_enabled config flag.
func NewSprintGate(enabled bool) SprintGate {
	return SprintGate{Enabled: enabled}
}

// Status is the response a request under the gated path should receive.
type Status struct {
	// HTTPCode is 404 when the subsystem is disabled, 501 when it is
	// enabled but unimplemented.
	HTTPCode int
	Message  string
}

// Check derives the Status for the current gate state.
func (g SprintGate) Check() Status {
	if g.Enabled {
		return Status{HTTPCode: 501, Message: "sprint rooms are not implemented by this core"}
	}
	return Status{HTTPCode: 404, Message: "sprint rooms are disabled"}
}
