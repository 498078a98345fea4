package fmu

import (
	"unsafe"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
	"github.com/simbind/fmu-runtime/model"
	"github.com/simbind/fmu-runtime/native"
)

// Component is one instantiated unit. It owns the callback block for its
// entire lifetime (the native side borrows the address for an unbounded but
// component-scoped duration) and tracks the lifecycle state machine.
type Component struct {
	fmu    *FMU
	handle uintptr
	name   string
	kind   fmuruntime.Kind
	state  State
	fatal  bool

	envID uintptr
	block *callbackBlock

	onStepFinished func(fmuruntime.Status)
}

// InstantiateOptions adjusts component creation.
type InstantiateOptions struct {
	Visible   bool
	LoggingOn bool

	// OnStepFinished is invoked when the unit reports an asynchronous step
	// completion through the callback block.
	OnStepFinished func(fmuruntime.Status)
}

// Instantiate creates one component of the given simulation kind. The
// callback block is built before the native call and keeps a stable address
// until after the native free returns. A null handle from the native side
// is an InstantiationFailure, not a crash; a handle matching an existing
// live component returns that component instead of a duplicate.
func (f *FMU) Instantiate(name string, kind fmuruntime.Kind, opts *InstantiateOptions) (*Component, error) {
	switch kind {
	case fmuruntime.ModelExchange:
		if !f.Capabilities.HasModelExchange {
			return nil, errors.CapabilityMissing(errors.PhaseRuntime, "ModelExchange interface")
		}
	case fmuruntime.CoSimulation:
		if !f.Capabilities.HasCoSimulation {
			return nil, errors.CapabilityMissing(errors.PhaseRuntime, "CoSimulation interface")
		}
	}

	if opts == nil {
		opts = &InstantiateOptions{}
	}

	c := &Component{
		fmu:            f,
		name:           name,
		kind:           kind,
		state:          StateInstantiated,
		onStepFinished: opts.OnStepFinished,
	}
	c.envID = registerEnv(c)
	c.block = newCallbackBlock(c.envID)

	handle := f.Table.Instantiate(name, int32(kind), f.Index.GUID, f.resourceURI,
		unsafe.Pointer(c.block), boolToFmi(opts.Visible), boolToFmi(opts.LoggingOn))
	if handle == 0 {
		unregisterEnv(c.envID)
		return nil, errors.Instantiation(name)
	}
	c.handle = handle

	registered, fresh := f.registry.insert(c)
	if !fresh {
		// Native re-entrancy handed back a live handle.
		unregisterEnv(c.envID)
		return registered, nil
	}
	return c, nil
}

// Name returns the instance name used at creation.
func (c *Component) Name() string { return c.name }

// Handle returns the opaque native handle.
func (c *Component) Handle() uintptr { return c.handle }

// State returns the tracked lifecycle state.
func (c *Component) State() State { return c.state }

// Kind returns the simulation kind the component was instantiated for.
func (c *Component) Kind() fmuruntime.Kind { return c.kind }

// FMU returns the owning unit.
func (c *Component) FMU() *FMU { return c.fmu }

// Index returns the owning unit's model index.
func (c *Component) Index() *model.Index { return c.fmu.Index }

// Table returns the owning unit's symbol table.
func (c *Component) Table() *native.Table { return c.fmu.Table }

// Usable reports whether calls into the component are still permitted.
// Freed components and components that returned a fatal status reject all
// further native calls.
func (c *Component) Usable() error {
	if c.state == StateFreed {
		return errors.Freed(c.name)
	}
	if c.fatal {
		return errors.InvalidState("native call", "Fatal")
	}
	return nil
}

// Free deregisters the component first and only then invokes the native
// free, so a callback re-entering during free cannot observe a
// half-destroyed registry entry. Freed is terminal.
func (c *Component) Free() error {
	if c.state == StateFreed {
		return errors.Freed(c.name)
	}
	c.fmu.registry.remove(c.handle)
	c.fmu.Table.FreeInstance(c.handle)
	c.state = StateFreed
	unregisterEnv(c.envID)
	// The native free returned; the block may now be collected.
	c.block = nil
	return nil
}

// call guards a native invocation: freed/fatal components reject, state
// restrictions apply when given, and a fatal native status marks the
// component unusable.
func (c *Component) call(op string, fn func() int32, allowed ...State) (fmuruntime.Status, error) {
	if err := c.Usable(); err != nil {
		return fmuruntime.StatusError, err
	}
	if len(allowed) > 0 {
		ok := false
		for _, s := range allowed {
			if c.state == s {
				ok = true
				break
			}
		}
		if !ok {
			return fmuruntime.StatusError, errors.InvalidState(op, c.state.String())
		}
	}
	st := fmuruntime.Status(fn())
	if st == fmuruntime.StatusFatal {
		c.fatal = true
	}
	return st, nil
}

// transition performs a lifecycle call and records the new state only after
// the native call returns a non-fatal, non-error status.
func (c *Component) transition(op string, next State, fn func() int32, allowed ...State) (fmuruntime.Status, error) {
	st, err := c.call(op, fn, allowed...)
	if err != nil {
		return st, err
	}
	if !st.Bad() {
		c.state = next
	}
	return st, nil
}

// SetupExperiment communicates the experiment bounds before initialization.
func (c *Component) SetupExperiment(startTime float64, stopTime, tolerance *float64) (fmuruntime.Status, error) {
	return c.call("fmi2SetupExperiment", func() int32 {
		tolDefined, tol := int32(0), 0.0
		if tolerance != nil {
			tolDefined, tol = 1, *tolerance
		}
		stopDefined, stop := int32(0), 0.0
		if stopTime != nil {
			stopDefined, stop = 1, *stopTime
		}
		return c.fmu.Table.SetupExperiment(c.handle, tolDefined, tol, startTime, stopDefined, stop)
	}, StateInstantiated)
}

// EnterInitializationMode transitions Instantiated -> InitializationMode.
func (c *Component) EnterInitializationMode() (fmuruntime.Status, error) {
	return c.transition("fmi2EnterInitializationMode", StateInitializationMode, func() int32 {
		return c.fmu.Table.EnterInitializationMode(c.handle)
	}, StateInstantiated)
}

// ExitInitializationMode leaves initialization. Co-simulation components
// land in StepMode, model-exchange components in EventMode.
func (c *Component) ExitInitializationMode() (fmuruntime.Status, error) {
	next := StateStepMode
	if c.kind == fmuruntime.ModelExchange {
		next = StateEventMode
	}
	return c.transition("fmi2ExitInitializationMode", next, func() int32 {
		return c.fmu.Table.ExitInitializationMode(c.handle)
	}, StateInitializationMode)
}

// Terminate ends the simulation run.
func (c *Component) Terminate() (fmuruntime.Status, error) {
	return c.transition("fmi2Terminate", StateTerminated, func() int32 {
		return c.fmu.Table.Terminate(c.handle)
	}, StateInitializationMode, StateStepMode, StateEventMode, StateContinuousTimeMode)
}

// Reset returns the component to its freshly instantiated condition.
func (c *Component) Reset() (fmuruntime.Status, error) {
	return c.transition("fmi2Reset", StateInstantiated, func() int32 {
		return c.fmu.Table.Reset(c.handle)
	})
}

// SetDebugLogging toggles native logging for the given categories (all
// declared categories when none are passed).
func (c *Component) SetDebugLogging(on bool, categories ...string) (fmuruntime.Status, error) {
	return c.call("fmi2SetDebugLogging", func() int32 {
		cats := native.CStrings(categories)
		return c.fmu.Table.SetDebugLogging(c.handle, boolToFmi(on), uintptr(len(cats)), cats)
	})
}

// DoStep advances a co-simulation component by one communication step.
func (c *Component) DoStep(currentTime, stepSize float64, noSetPrior bool) (fmuruntime.Status, error) {
	if c.fmu.Table.DoStep == nil {
		return fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2DoStep")
	}
	return c.call("fmi2DoStep", func() int32 {
		return c.fmu.Table.DoStep(c.handle, currentTime, stepSize, boolToFmi(noSetPrior))
	}, StateStepMode)
}

// CancelStep aborts an asynchronous step in progress.
func (c *Component) CancelStep() (fmuruntime.Status, error) {
	if c.fmu.Table.CancelStep == nil {
		return fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2CancelStep")
	}
	return c.call("fmi2CancelStep", func() int32 {
		return c.fmu.Table.CancelStep(c.handle)
	}, StateStepMode)
}

// StatusKind selects which co-simulation status value to query.
type StatusKind int32

const (
	DoStepStatus       StatusKind = 0
	PendingStatus      StatusKind = 1
	LastSuccessfulTime StatusKind = 2
	TerminatedStatus   StatusKind = 3
)

// GetRealStatus queries a real-valued co-simulation status such as the last
// successful time.
func (c *Component) GetRealStatus(kind StatusKind) (float64, fmuruntime.Status, error) {
	if c.fmu.Table.GetRealStatus == nil {
		return 0, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2GetRealStatus")
	}
	var value float64
	st, err := c.call("fmi2GetRealStatus", func() int32 {
		return c.fmu.Table.GetRealStatus(c.handle, int32(kind), &value)
	})
	return value, st, err
}

// GetStatus queries a status-valued co-simulation status.
func (c *Component) GetStatus(kind StatusKind) (fmuruntime.Status, fmuruntime.Status, error) {
	if c.fmu.Table.GetStatus == nil {
		return 0, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2GetStatus")
	}
	var value int32
	st, err := c.call("fmi2GetStatus", func() int32 {
		return c.fmu.Table.GetStatus(c.handle, int32(kind), &value)
	})
	return fmuruntime.Status(value), st, err
}

// GetBooleanStatus queries a boolean-valued co-simulation status such as
// Terminated.
func (c *Component) GetBooleanStatus(kind StatusKind) (bool, fmuruntime.Status, error) {
	if c.fmu.Table.GetBooleanStatus == nil {
		return false, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2GetBooleanStatus")
	}
	var value int32
	st, err := c.call("fmi2GetBooleanStatus", func() int32 {
		return c.fmu.Table.GetBooleanStatus(c.handle, int32(kind), &value)
	})
	return value != 0, st, err
}

// GetIntegerStatus queries an integer-valued co-simulation status.
func (c *Component) GetIntegerStatus(kind StatusKind) (int32, fmuruntime.Status, error) {
	if c.fmu.Table.GetIntegerStatus == nil {
		return 0, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2GetIntegerStatus")
	}
	var value int32
	st, err := c.call("fmi2GetIntegerStatus", func() int32 {
		return c.fmu.Table.GetIntegerStatus(c.handle, int32(kind), &value)
	})
	return value, st, err
}

// GetStringStatus queries a string-valued co-simulation status.
func (c *Component) GetStringStatus(kind StatusKind) (string, fmuruntime.Status, error) {
	if c.fmu.Table.GetStringStatus == nil {
		return "", fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2GetStringStatus")
	}
	var value *byte
	st, err := c.call("fmi2GetStringStatus", func() int32 {
		return c.fmu.Table.GetStringStatus(c.handle, int32(kind), &value)
	})
	return native.GoString(value), st, err
}

// EnterEventMode switches a model-exchange component into event mode.
func (c *Component) EnterEventMode() (fmuruntime.Status, error) {
	if c.fmu.Table.EnterEventMode == nil {
		return fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2EnterEventMode")
	}
	return c.transition("fmi2EnterEventMode", StateEventMode, func() int32 {
		return c.fmu.Table.EnterEventMode(c.handle)
	}, StateContinuousTimeMode, StateEventMode)
}

// NewDiscreteStates runs one event iteration and reports the event info.
func (c *Component) NewDiscreteStates() (*native.EventInfo, fmuruntime.Status, error) {
	if c.fmu.Table.NewDiscreteStates == nil {
		return nil, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2NewDiscreteStates")
	}
	info := &native.EventInfo{}
	st, err := c.call("fmi2NewDiscreteStates", func() int32 {
		return c.fmu.Table.NewDiscreteStates(c.handle, unsafe.Pointer(info))
	}, StateEventMode)
	return info, st, err
}

// EnterContinuousTimeMode switches from event mode into continuous time.
func (c *Component) EnterContinuousTimeMode() (fmuruntime.Status, error) {
	if c.fmu.Table.EnterContinuousTimeMode == nil {
		return fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2EnterContinuousTimeMode")
	}
	return c.transition("fmi2EnterContinuousTimeMode", StateContinuousTimeMode, func() int32 {
		return c.fmu.Table.EnterContinuousTimeMode(c.handle)
	}, StateEventMode)
}

// CompletedIntegratorStep notifies the unit after an accepted integrator
// step and reports whether event mode must be entered or the simulation
// terminated.
func (c *Component) CompletedIntegratorStep(noSetPrior bool) (enterEventMode, terminate bool, st fmuruntime.Status, err error) {
	if c.fmu.Table.CompletedIntegratorStep == nil {
		return false, false, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2CompletedIntegratorStep")
	}
	var enter, term int32
	st, err = c.call("fmi2CompletedIntegratorStep", func() int32 {
		return c.fmu.Table.CompletedIntegratorStep(c.handle, boolToFmi(noSetPrior), &enter, &term)
	}, StateContinuousTimeMode)
	return enter != 0, term != 0, st, err
}

// SetTime sets the independent variable for a model-exchange component.
func (c *Component) SetTime(t float64) (fmuruntime.Status, error) {
	if c.fmu.Table.SetTime == nil {
		return fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2SetTime")
	}
	return c.call("fmi2SetTime", func() int32 {
		return c.fmu.Table.SetTime(c.handle, t)
	}, StateEventMode, StateContinuousTimeMode, StateInitializationMode)
}

// SetContinuousStates writes the full continuous state vector.
func (c *Component) SetContinuousStates(x []float64) (fmuruntime.Status, error) {
	if c.fmu.Table.SetContinuousStates == nil {
		return fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2SetContinuousStates")
	}
	return c.call("fmi2SetContinuousStates", func() int32 {
		return c.fmu.Table.SetContinuousStates(c.handle, x, uintptr(len(x)))
	}, StateContinuousTimeMode)
}

// GetContinuousStates reads the full continuous state vector.
func (c *Component) GetContinuousStates() ([]float64, fmuruntime.Status, error) {
	if c.fmu.Table.GetContinuousStates == nil {
		return nil, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2GetContinuousStates")
	}
	x := make([]float64, len(c.fmu.Index.States))
	st, err := c.call("fmi2GetContinuousStates", func() int32 {
		return c.fmu.Table.GetContinuousStates(c.handle, x, uintptr(len(x)))
	})
	return x, st, err
}

// GetDerivatives reads the state derivative vector.
func (c *Component) GetDerivatives() ([]float64, fmuruntime.Status, error) {
	if c.fmu.Table.GetDerivatives == nil {
		return nil, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2GetDerivatives")
	}
	dx := make([]float64, len(c.fmu.Index.Derivatives))
	st, err := c.call("fmi2GetDerivatives", func() int32 {
		return c.fmu.Table.GetDerivatives(c.handle, dx, uintptr(len(dx)))
	})
	return dx, st, err
}

// GetEventIndicators reads the event indicator vector.
func (c *Component) GetEventIndicators() ([]float64, fmuruntime.Status, error) {
	if c.fmu.Table.GetEventIndicators == nil {
		return nil, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2GetEventIndicators")
	}
	z := make([]float64, c.fmu.Index.NumberOfEventIndicators)
	st, err := c.call("fmi2GetEventIndicators", func() int32 {
		return c.fmu.Table.GetEventIndicators(c.handle, z, uintptr(len(z)))
	})
	return z, st, err
}

// GetNominalsOfContinuousStates reads the per-state nominal magnitudes.
func (c *Component) GetNominalsOfContinuousStates() ([]float64, fmuruntime.Status, error) {
	if c.fmu.Table.GetNominalsOfContinuousStates == nil {
		return nil, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2GetNominalsOfContinuousStates")
	}
	nom := make([]float64, len(c.fmu.Index.States))
	st, err := c.call("fmi2GetNominalsOfContinuousStates", func() int32 {
		return c.fmu.Table.GetNominalsOfContinuousStates(c.handle, nom, uintptr(len(nom)))
	})
	return nom, st, err
}

func boolToFmi(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
