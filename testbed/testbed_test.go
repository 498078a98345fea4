package testbed_test

import (
	"math"
	"testing"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/fmu"
	"github.com/simbind/fmu-runtime/testbed"
	"github.com/simbind/fmu-runtime/values"
)

// TestDampedOscillation runs the reference unit through a full
// co-simulation and checks the physics: with positive damping and no input
// the oscillation amplitude must decay.
func TestDampedOscillation(t *testing.T) {
	f, lib, err := testbed.NewUnit()
	if err != nil {
		t.Fatalf("build unit: %v", err)
	}
	defer f.Close()

	c, err := f.Instantiate("osc", fmuruntime.CoSimulation, nil)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if lib.InstantiateCount != 1 {
		t.Fatalf("InstantiateCount = %d", lib.InstantiateCount)
	}

	stop := 10.0
	if st, err := c.SetupExperiment(0, &stop, nil); err != nil || st != fmuruntime.StatusOK {
		t.Fatalf("setup: %v, %v", st, err)
	}
	if st, err := c.EnterInitializationMode(); err != nil || st != fmuruntime.StatusOK {
		t.Fatalf("enter init: %v, %v", st, err)
	}
	if st, err := c.ExitInitializationMode(); err != nil || st != fmuruntime.StatusOK {
		t.Fatalf("exit init: %v, %v", st, err)
	}

	const h = 0.01
	peak := 0.0
	for step := 0; step < 1000; step++ {
		if st, err := c.DoStep(float64(step)*h, h, true); err != nil || st != fmuruntime.StatusOK {
			t.Fatalf("step %d: %v, %v", step, st, err)
		}
		if step > 500 {
			x, _, err := values.GetReals(c, []fmuruntime.ValueReference{testbed.VRX1})
			if err != nil {
				t.Fatalf("read x1: %v", err)
			}
			if a := math.Abs(x[0]); a > peak {
				peak = a
			}
		}
	}

	// The initial amplitude is 1; after five seconds of d/m = 1 damping
	// the envelope is far below half.
	if peak >= 0.5 {
		t.Errorf("late amplitude %v, oscillation should have decayed", peak)
	}

	last, st, err := c.GetRealStatus(fmu.LastSuccessfulTime)
	if err != nil || st != fmuruntime.StatusOK {
		t.Fatalf("status: %v, %v", st, err)
	}
	if math.Abs(last-10.0) > 1e-9 {
		t.Errorf("last successful time = %v, want 10", last)
	}
}

// TestInputDrivesSteadyState holds a constant force and checks the unit
// settles near the static deflection u/k.
func TestInputDrivesSteadyState(t *testing.T) {
	f, _, err := testbed.NewUnit()
	if err != nil {
		t.Fatalf("build unit: %v", err)
	}
	defer f.Close()

	c, err := f.Instantiate("osc", fmuruntime.CoSimulation, nil)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	if _, err := c.EnterInitializationMode(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.ExitInitializationMode(); err != nil {
		t.Fatal(err)
	}

	if st, err := values.SetReals(c, []fmuruntime.ValueReference{testbed.VRU}, []float64{5.0}); err != nil || st != fmuruntime.StatusOK {
		t.Fatalf("set u: %v, %v", st, err)
	}

	const h = 0.01
	for step := 0; step < 2000; step++ {
		if st, err := c.DoStep(float64(step)*h, h, true); err != nil || st != fmuruntime.StatusOK {
			t.Fatalf("step %d: %v, %v", step, st, err)
		}
	}

	y, _, err := values.GetReals(c, []fmuruntime.ValueReference{testbed.VRY})
	if err != nil {
		t.Fatalf("read y: %v", err)
	}
	// u/k = 5/10 = 0.5.
	if math.Abs(y[0]-0.5) > 0.02 {
		t.Errorf("settled position = %v, want about 0.5", y[0])
	}
}

func TestFakeLibrarySymbolSurface(t *testing.T) {
	lib := testbed.NewLibrary()
	for _, sym := range []string{"fmi2GetVersion", "fmi2DoStep", "fmi2GetDirectionalDerivative"} {
		if !lib.Has(sym) {
			t.Errorf("Has(%s) = false", sym)
		}
	}
	if lib.Has("fmi3GetFloat64") {
		t.Error("unexpected symbol resolves")
	}

	trimmed := testbed.NewLibrary(testbed.WithoutSymbol("fmi2DoStep"))
	if trimmed.Has("fmi2DoStep") {
		t.Error("WithoutSymbol should remove the symbol")
	}

	var fn func() string
	if err := lib.Bind("fmi2GetVersion", &fn); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if fn() != "2.0" {
		t.Errorf("version = %q", fn())
	}

	// Binding with a wrong signature is a hard failure.
	var wrong func() int32
	if err := lib.Bind("fmi2GetVersion", &wrong); err == nil {
		t.Error("expected error for mismatched signature")
	}
}
