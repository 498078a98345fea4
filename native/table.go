package native

import (
	"unsafe"
)

// Symbol names of the FMI 2.0 C API. The table resolves against these
// verbatim; the standard fixes both the names and the calling convention.
const (
	symGetTypesPlatform = "fmi2GetTypesPlatform"
	symGetVersion       = "fmi2GetVersion"
	symSetDebugLogging  = "fmi2SetDebugLogging"

	symInstantiate  = "fmi2Instantiate"
	symFreeInstance = "fmi2FreeInstance"

	symSetupExperiment         = "fmi2SetupExperiment"
	symEnterInitializationMode = "fmi2EnterInitializationMode"
	symExitInitializationMode  = "fmi2ExitInitializationMode"
	symTerminate               = "fmi2Terminate"
	symReset                   = "fmi2Reset"

	symGetReal    = "fmi2GetReal"
	symGetInteger = "fmi2GetInteger"
	symGetBoolean = "fmi2GetBoolean"
	symGetString  = "fmi2GetString"
	symSetReal    = "fmi2SetReal"
	symSetInteger = "fmi2SetInteger"
	symSetBoolean = "fmi2SetBoolean"
	symSetString  = "fmi2SetString"

	symGetFMUstate            = "fmi2GetFMUstate"
	symSetFMUstate            = "fmi2SetFMUstate"
	symFreeFMUstate           = "fmi2FreeFMUstate"
	symSerializedFMUstateSize = "fmi2SerializedFMUstateSize"
	symSerializeFMUstate      = "fmi2SerializeFMUstate"
	symDeSerializeFMUstate    = "fmi2DeSerializeFMUstate"

	symGetDirectionalDerivative = "fmi2GetDirectionalDerivative"

	symDoStep                   = "fmi2DoStep"
	symCancelStep               = "fmi2CancelStep"
	symSetRealInputDerivatives  = "fmi2SetRealInputDerivatives"
	symGetRealOutputDerivatives = "fmi2GetRealOutputDerivatives"
	symGetStatus                = "fmi2GetStatus"
	symGetRealStatus            = "fmi2GetRealStatus"
	symGetIntegerStatus         = "fmi2GetIntegerStatus"
	symGetBooleanStatus         = "fmi2GetBooleanStatus"
	symGetStringStatus          = "fmi2GetStringStatus"

	symEnterEventMode                 = "fmi2EnterEventMode"
	symNewDiscreteStates              = "fmi2NewDiscreteStates"
	symEnterContinuousTimeMode        = "fmi2EnterContinuousTimeMode"
	symCompletedIntegratorStep        = "fmi2CompletedIntegratorStep"
	symSetTime                        = "fmi2SetTime"
	symSetContinuousStates            = "fmi2SetContinuousStates"
	symGetContinuousStates            = "fmi2GetContinuousStates"
	symGetDerivatives                 = "fmi2GetDerivatives"
	symGetEventIndicators             = "fmi2GetEventIndicators"
	symGetNominalsOfContinuousStates  = "fmi2GetNominalsOfContinuousStates"
)

// EventInfo mirrors fmi2EventInfo. The layout must match the C struct
// exactly; the trailing padding aligns NextEventTime to 8 bytes.
type EventInfo struct {
	NewDiscreteStatesNeeded          int32
	TerminateSimulation              int32
	NominalsOfContinuousStatesChanged int32
	ValuesOfContinuousStatesChanged  int32
	NextEventTimeDefined             int32
	_                                [4]byte
	NextEventTime                    float64
}

// Table holds one resolved function per native entry point. Mandatory
// entries are always non-nil after a successful Resolve; optional entries
// stay nil when absent and every call site must check before invoking.
type Table struct {
	// Always resolved, fatal if missing.
	GetTypesPlatform func() string
	GetVersion       func() string
	SetDebugLogging  func(c uintptr, loggingOn int32, nCategories uintptr, categories []*byte) int32

	Instantiate func(instanceName string, fmuType int32, guid string,
		resourceLocation string, callbacks unsafe.Pointer, visible int32, loggingOn int32) uintptr
	FreeInstance func(c uintptr)

	SetupExperiment         func(c uintptr, toleranceDefined int32, tolerance float64, startTime float64, stopTimeDefined int32, stopTime float64) int32
	EnterInitializationMode func(c uintptr) int32
	ExitInitializationMode  func(c uintptr) int32
	Terminate               func(c uintptr) int32
	Reset                   func(c uintptr) int32

	GetReal    func(c uintptr, vr []uint32, nvr uintptr, value []float64) int32
	GetInteger func(c uintptr, vr []uint32, nvr uintptr, value []int32) int32
	GetBoolean func(c uintptr, vr []uint32, nvr uintptr, value []int32) int32
	SetReal    func(c uintptr, vr []uint32, nvr uintptr, value []float64) int32
	SetInteger func(c uintptr, vr []uint32, nvr uintptr, value []int32) int32
	SetBoolean func(c uintptr, vr []uint32, nvr uintptr, value []int32) int32

	// Optional regardless of declared capabilities: units without string
	// variables may omit the pair.
	GetString func(c uintptr, vr []uint32, nvr uintptr, value []*byte) int32
	SetString func(c uintptr, vr []uint32, nvr uintptr, value []*byte) int32

	// Gated by CanGetAndSetState.
	GetFMUstate  func(c uintptr, state *uintptr) int32
	SetFMUstate  func(c uintptr, state uintptr) int32
	FreeFMUstate func(c uintptr, state *uintptr) int32

	// Gated by CanSerializeState.
	SerializedFMUstateSize func(c uintptr, state uintptr, size *uintptr) int32
	SerializeFMUstate      func(c uintptr, state uintptr, data []byte, size uintptr) int32
	DeSerializeFMUstate    func(c uintptr, data []byte, size uintptr, state *uintptr) int32

	// Gated by ProvidesDirectionalDerivative.
	GetDirectionalDerivative func(c uintptr, vUnknown []uint32, nUnknown uintptr,
		vKnown []uint32, nKnown uintptr, dvKnown []float64, dvUnknown []float64) int32

	// Co-simulation family, resolved when the description declares it.
	DoStep                   func(c uintptr, currentCommunicationPoint, communicationStepSize float64, noSetFMUStatePriorToCurrentPoint int32) int32
	CancelStep               func(c uintptr) int32
	SetRealInputDerivatives  func(c uintptr, vr []uint32, nvr uintptr, order []int32, value []float64) int32
	GetRealOutputDerivatives func(c uintptr, vr []uint32, nvr uintptr, order []int32, value []float64) int32
	GetStatus                func(c uintptr, kind int32, value *int32) int32
	GetRealStatus            func(c uintptr, kind int32, value *float64) int32
	GetIntegerStatus         func(c uintptr, kind int32, value *int32) int32
	GetBooleanStatus         func(c uintptr, kind int32, value *int32) int32
	GetStringStatus          func(c uintptr, kind int32, value **byte) int32

	// Model-exchange family, resolved when the description declares it.
	EnterEventMode                func(c uintptr) int32
	NewDiscreteStates             func(c uintptr, eventInfo unsafe.Pointer) int32
	EnterContinuousTimeMode       func(c uintptr) int32
	CompletedIntegratorStep       func(c uintptr, noSetFMUStatePriorToCurrentPoint int32, enterEventMode *int32, terminateSimulation *int32) int32
	SetTime                       func(c uintptr, time float64) int32
	SetContinuousStates           func(c uintptr, x []float64, nx uintptr) int32
	GetContinuousStates           func(c uintptr, x []float64, nx uintptr) int32
	GetDerivatives                func(c uintptr, derivatives []float64, nx uintptr) int32
	GetEventIndicators            func(c uintptr, indicators []float64, ni uintptr) int32
	GetNominalsOfContinuousStates func(c uintptr, nominals []float64, nx uintptr) int32
}
