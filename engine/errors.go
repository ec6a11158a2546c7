package engine

import "fmt"

// AlreadyInitializedError reports a second Initialize without an intervening
// Destroy. This is lifecycle misuse by the caller: fatal, fail-fast, meant
// to be caught in testing.
type AlreadyInitializedError struct {
	Op string
}

func (e *AlreadyInitializedError) Error() string {
	return fmt.Sprintf("operator %q: already initialized", e.Op)
}

// LifecycleError reports an operation invoked in a state that does not
// permit it (forward before initialize, anything after destroy).
type LifecycleError struct {
	Op     string
	State  LifecycleState
	Action string
}

func (e *LifecycleError) Error() string {
	return fmt.Sprintf("operator %q: cannot %s in state %s", e.Op, e.Action, e.State)
}
