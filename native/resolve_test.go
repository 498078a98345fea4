package native_test

import (
	stderrors "errors"
	"testing"

	"github.com/simbind/fmu-runtime/errors"
	"github.com/simbind/fmu-runtime/model"
	"github.com/simbind/fmu-runtime/native"
	"github.com/simbind/fmu-runtime/testbed"
)

func referenceCaps(t *testing.T) model.Capabilities {
	t.Helper()
	x, err := testbed.LoadIndex()
	if err != nil {
		t.Fatalf("load reference description: %v", err)
	}
	return x.Capabilities
}

func TestResolveFullTable(t *testing.T) {
	table, caps, err := native.Resolve(testbed.NewLibrary(), referenceCaps(t))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if table.GetVersion == nil || table.Instantiate == nil || table.GetReal == nil {
		t.Error("mandatory entries should be bound")
	}
	if table.GetString == nil || table.SetString == nil {
		t.Error("string access should be bound when present")
	}
	if table.GetFMUstate == nil || table.SerializeFMUstate == nil {
		t.Error("state entries should be bound for declared capabilities")
	}
	if table.GetDirectionalDerivative == nil {
		t.Error("directional derivative should be bound")
	}
	if table.DoStep == nil || table.GetDerivatives == nil {
		t.Error("interface families should be bound")
	}

	if !caps.CanGetAndSetState || !caps.CanSerializeState || !caps.ProvidesDirectionalDerivative {
		t.Errorf("capabilities should survive a full table: %+v", caps)
	}

	if got := table.GetVersion(); got != "2.0" {
		t.Errorf("GetVersion = %q", got)
	}
}

func TestResolveMandatoryMissing(t *testing.T) {
	for _, sym := range []string{"fmi2GetVersion", "fmi2Instantiate", "fmi2GetReal", "fmi2Reset"} {
		t.Run(sym, func(t *testing.T) {
			_, _, err := native.Resolve(testbed.NewLibrary(testbed.WithoutSymbol(sym)), referenceCaps(t))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			want := &errors.Error{Phase: errors.PhaseResolve, Kind: errors.KindMissingSymbol}
			if !stderrors.Is(err, want) {
				t.Errorf("error = %v, want missing_symbol", err)
			}
		})
	}
}

func TestResolveCapabilityDowngrade(t *testing.T) {
	t.Run("state access", func(t *testing.T) {
		lib := testbed.NewLibrary(testbed.WithoutSymbol("fmi2SetFMUstate"))
		table, caps, err := native.Resolve(lib, referenceCaps(t))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if caps.CanGetAndSetState {
			t.Error("canGetAndSetFMUstate should be downgraded")
		}
		if table.GetFMUstate != nil || table.SetFMUstate != nil || table.FreeFMUstate != nil {
			t.Error("a partial state triple should be cleared entirely")
		}
		// The serialization triple is independent and stays bound.
		if !caps.CanSerializeState || table.SerializeFMUstate == nil {
			t.Error("serialization should survive a state-access downgrade")
		}
	})

	t.Run("directional derivative", func(t *testing.T) {
		lib := testbed.NewLibrary(testbed.WithoutSymbol("fmi2GetDirectionalDerivative"))
		table, caps, err := native.Resolve(lib, referenceCaps(t))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if caps.ProvidesDirectionalDerivative || table.GetDirectionalDerivative != nil {
			t.Error("providesDirectionalDerivative should be downgraded")
		}
	})
}

func TestResolveStringAccessOptional(t *testing.T) {
	lib := testbed.NewLibrary(testbed.WithoutSymbol("fmi2GetString", "fmi2SetString"))
	table, _, err := native.Resolve(lib, referenceCaps(t))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if table.GetString != nil || table.SetString != nil {
		t.Error("absent string access should stay nil")
	}
}

func TestResolveInterfaceFamilies(t *testing.T) {
	t.Run("missing DoStep is fatal under CoSimulation", func(t *testing.T) {
		_, _, err := native.Resolve(testbed.NewLibrary(testbed.WithoutSymbol("fmi2DoStep")), referenceCaps(t))
		if err == nil {
			t.Fatal("expected error for missing fmi2DoStep")
		}
	})

	t.Run("missing GetDerivatives is fatal under ModelExchange", func(t *testing.T) {
		_, _, err := native.Resolve(testbed.NewLibrary(testbed.WithoutSymbol("fmi2GetDerivatives")), referenceCaps(t))
		if err == nil {
			t.Fatal("expected error for missing fmi2GetDerivatives")
		}
	})

	t.Run("other family members are optional", func(t *testing.T) {
		lib := testbed.NewLibrary(testbed.WithoutSymbol("fmi2CancelStep", "fmi2GetEventIndicators"))
		table, _, err := native.Resolve(lib, referenceCaps(t))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if table.CancelStep != nil || table.GetEventIndicators != nil {
			t.Error("absent optional family members should stay nil")
		}
		if table.DoStep == nil || table.GetDerivatives == nil {
			t.Error("present family members should be bound")
		}
	})

	t.Run("undeclared interface is not resolved", func(t *testing.T) {
		caps := referenceCaps(t)
		caps.HasModelExchange = false
		table, _, err := native.Resolve(testbed.NewLibrary(), caps)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if table.GetDerivatives != nil || table.SetTime != nil {
			t.Error("model-exchange entries should stay nil when undeclared")
		}
	})
}
