package native

import (
	"go.uber.org/zap"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
	"github.com/simbind/fmu-runtime/model"
)

// Resolve builds the symbol table for an opened library. Mandatory entry
// points missing is a hard failure. Optional entry points declared by a
// capability flag but absent from the binary downgrade the flag instead of
// failing the load: native libraries are not always faithful to their
// declared metadata. The returned capabilities reflect what the binary
// actually delivers.
func Resolve(lib fmuruntime.Library, caps model.Capabilities) (*Table, model.Capabilities, error) {
	t := &Table{}

	mandatory := []struct {
		symbol string
		target any
	}{
		{symGetTypesPlatform, &t.GetTypesPlatform},
		{symGetVersion, &t.GetVersion},
		{symSetDebugLogging, &t.SetDebugLogging},
		{symInstantiate, &t.Instantiate},
		{symFreeInstance, &t.FreeInstance},
		{symSetupExperiment, &t.SetupExperiment},
		{symEnterInitializationMode, &t.EnterInitializationMode},
		{symExitInitializationMode, &t.ExitInitializationMode},
		{symTerminate, &t.Terminate},
		{symReset, &t.Reset},
		{symGetReal, &t.GetReal},
		{symGetInteger, &t.GetInteger},
		{symGetBoolean, &t.GetBoolean},
		{symSetReal, &t.SetReal},
		{symSetInteger, &t.SetInteger},
		{symSetBoolean, &t.SetBoolean},
	}
	for _, m := range mandatory {
		if err := lib.Bind(m.symbol, m.target); err != nil {
			return nil, caps, errors.MissingSymbol(m.symbol, err)
		}
	}

	// String access is optional for every unit; absence is recorded, not
	// an error. Call sites reject uses of a nil entry.
	bindOptional(lib, symGetString, &t.GetString)
	bindOptional(lib, symSetString, &t.SetString)

	if caps.CanGetAndSetState {
		ok := bindOptional(lib, symGetFMUstate, &t.GetFMUstate) &&
			bindOptional(lib, symSetFMUstate, &t.SetFMUstate) &&
			bindOptional(lib, symFreeFMUstate, &t.FreeFMUstate)
		if !ok {
			downgrade("canGetAndSetFMUstate")
			caps.CanGetAndSetState = false
			t.GetFMUstate, t.SetFMUstate, t.FreeFMUstate = nil, nil, nil
		}
	}

	if caps.CanSerializeState {
		ok := bindOptional(lib, symSerializedFMUstateSize, &t.SerializedFMUstateSize) &&
			bindOptional(lib, symSerializeFMUstate, &t.SerializeFMUstate) &&
			bindOptional(lib, symDeSerializeFMUstate, &t.DeSerializeFMUstate)
		if !ok {
			downgrade("canSerializeFMUstate")
			caps.CanSerializeState = false
			t.SerializedFMUstateSize, t.SerializeFMUstate, t.DeSerializeFMUstate = nil, nil, nil
		}
	}

	if caps.ProvidesDirectionalDerivative {
		if !bindOptional(lib, symGetDirectionalDerivative, &t.GetDirectionalDerivative) {
			downgrade("providesDirectionalDerivative")
			caps.ProvidesDirectionalDerivative = false
		}
	}

	if caps.HasCoSimulation {
		cs := []struct {
			symbol string
			target any
		}{
			{symDoStep, &t.DoStep},
			{symCancelStep, &t.CancelStep},
			{symSetRealInputDerivatives, &t.SetRealInputDerivatives},
			{symGetRealOutputDerivatives, &t.GetRealOutputDerivatives},
			{symGetStatus, &t.GetStatus},
			{symGetRealStatus, &t.GetRealStatus},
			{symGetIntegerStatus, &t.GetIntegerStatus},
			{symGetBooleanStatus, &t.GetBooleanStatus},
			{symGetStringStatus, &t.GetStringStatus},
		}
		for _, m := range cs {
			if m.symbol == symDoStep {
				// The step entry is the co-simulation interface; its
				// absence contradicts the declaration fatally.
				if err := lib.Bind(m.symbol, m.target); err != nil {
					return nil, caps, errors.MissingSymbol(m.symbol, err)
				}
				continue
			}
			bindOptionalAny(lib, m.symbol, m.target)
		}
	}

	if caps.HasModelExchange {
		me := []struct {
			symbol string
			target any
		}{
			{symEnterEventMode, &t.EnterEventMode},
			{symNewDiscreteStates, &t.NewDiscreteStates},
			{symEnterContinuousTimeMode, &t.EnterContinuousTimeMode},
			{symCompletedIntegratorStep, &t.CompletedIntegratorStep},
			{symSetTime, &t.SetTime},
			{symSetContinuousStates, &t.SetContinuousStates},
			{symGetContinuousStates, &t.GetContinuousStates},
			{symGetDerivatives, &t.GetDerivatives},
			{symGetEventIndicators, &t.GetEventIndicators},
			{symGetNominalsOfContinuousStates, &t.GetNominalsOfContinuousStates},
		}
		for _, m := range me {
			if m.symbol == symGetDerivatives {
				if err := lib.Bind(m.symbol, m.target); err != nil {
					return nil, caps, errors.MissingSymbol(m.symbol, err)
				}
				continue
			}
			bindOptionalAny(lib, m.symbol, m.target)
		}
	}

	return t, caps, nil
}

func bindOptional[T any](lib fmuruntime.Library, symbol string, target *T) bool {
	if !lib.Has(symbol) {
		return false
	}
	return lib.Bind(symbol, target) == nil
}

func bindOptionalAny(lib fmuruntime.Library, symbol string, target any) {
	if !lib.Has(symbol) {
		fmuruntime.Logger().Warn("optional entry point absent",
			zap.String("symbol", symbol))
		return
	}
	if err := lib.Bind(symbol, target); err != nil {
		fmuruntime.Logger().Warn("optional entry point failed to bind",
			zap.String("symbol", symbol), zap.Error(err))
	}
}

func downgrade(flag string) {
	fmuruntime.Logger().Warn("declared capability not backed by the binary, downgrading",
		zap.String("capability", flag))
}
