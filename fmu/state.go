package fmu

// State is a component's position in the lifecycle machine. Transitions
// happen only through the matching native entry point; the wrapper never
// infers a state change, it records one after the native call returns a
// non-fatal status.
type State int

const (
	StateInstantiated State = iota
	StateInitializationMode
	StateStepMode
	StateEventMode
	StateContinuousTimeMode
	StateTerminated
	StateFreed
)

func (s State) String() string {
	switch s {
	case StateInstantiated:
		return "Instantiated"
	case StateInitializationMode:
		return "InitializationMode"
	case StateStepMode:
		return "StepMode"
	case StateEventMode:
		return "EventMode"
	case StateContinuousTimeMode:
		return "ContinuousTimeMode"
	case StateTerminated:
		return "Terminated"
	case StateFreed:
		return "Freed"
	default:
		return "Unknown"
	}
}
