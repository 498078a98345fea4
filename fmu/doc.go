// Package fmu provides the high-level API: loading a staged unit and
// driving instantiated components through the FMI 2.0 lifecycle.
//
// # Lifecycle
//
// A component moves through a fixed state machine:
//
//	Instantiated -> InitializationMode -> StepMode <-> EventMode      (co-simulation)
//	Instantiated -> InitializationMode -> EventMode <-> ContinuousTimeMode (model exchange)
//	... -> Terminated -> Freed
//
// Freed is terminal; every operation on a freed component fails before any
// native code runs. Wrappers record a state change only after the native
// call returns a non-fatal status.
//
// # Ownership
//
// The callback block passed to the native instantiate call is heap
// allocated with a stable address and referenced by the Component until the
// native free returns: host owns, native borrows for a component-scoped
// duration. The FMU's live-component registry is the only shared mutable
// state and is guarded against concurrent registration, not against
// concurrent native calls, which remain the caller's responsibility.
package fmu
