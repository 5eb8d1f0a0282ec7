package listctl

// State is the lifecycle of a controller.
type State int

const (
	// StateUninitialized is the state before Activate.
	StateUninitialized State = iota
	// StateLoading is the state while a fetch is outstanding.
	StateLoading
	// StateReady is the steady state, including after a failed fetch.
	StateReady
	// StateUnmounted is terminal.
	StateUnmounted
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}
