package values_test

import (
	stderrors "errors"
	"testing"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
	"github.com/simbind/fmu-runtime/fmu"
	"github.com/simbind/fmu-runtime/testbed"
	"github.com/simbind/fmu-runtime/values"
)

func component(t *testing.T) *fmu.Component {
	t.Helper()
	f, _, err := testbed.NewUnit()
	if err != nil {
		t.Fatalf("build unit: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	c, err := f.Instantiate("osc", fmuruntime.CoSimulation, nil)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return c
}

func vrs(ids ...uint32) []fmuruntime.ValueReference {
	out := make([]fmuruntime.ValueReference, len(ids))
	for i, id := range ids {
		out[i] = fmuruntime.ValueReference(id)
	}
	return out
}

func TestGetMixedTypes(t *testing.T) {
	c := component(t)

	keys := vrs(testbed.VRX1, testbed.VRK, testbed.VRFlag, testbed.VRLabel)
	vals, statuses, err := values.Get(c, keys)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i, st := range statuses {
		if st != fmuruntime.StatusOK {
			t.Errorf("statuses[%d] = %v", i, st)
		}
	}

	want := []any{1.0, 10.0, true, "spring"}
	for i := range want {
		if vals[i] != want[i] {
			t.Errorf("vals[%d] = %v (%T), want %v", i, vals[i], vals[i], want[i])
		}
	}
}

func TestGetComputedValues(t *testing.T) {
	c := component(t)

	vals, _, err := values.Get(c, vrs(testbed.VRY, testbed.VRDerX2))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// y mirrors x1; der(x2) = (-k*1 - d*0)/m = -10 at the initial point.
	if vals[0] != 1.0 {
		t.Errorf("y = %v, want 1.0", vals[0])
	}
	if vals[1] != -10.0 {
		t.Errorf("der(x2) = %v, want -10", vals[1])
	}
}

func TestGetUnknownReference(t *testing.T) {
	c := component(t)

	vals, statuses, err := values.Get(c, vrs(999, testbed.VRX1))
	if err == nil {
		t.Fatal("expected aggregate error for unknown reference")
	}
	want := &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindUnknownIdentifier}
	if !stderrors.Is(err, want) {
		t.Errorf("error = %v, want unknown_identifier", err)
	}
	if statuses[0] != fmuruntime.StatusError {
		t.Errorf("statuses[0] = %v, want Error", statuses[0])
	}
	// The sibling key still resolves.
	if statuses[1] != fmuruntime.StatusOK || vals[1] != 1.0 {
		t.Errorf("sibling: status %v value %v", statuses[1], vals[1])
	}
}

func TestGetEnumerationDiscarded(t *testing.T) {
	c := component(t)

	_, statuses, err := values.Get(c, vrs(testbed.VREnum, testbed.VRK))
	want := &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindNotImplemented}
	if !stderrors.Is(err, want) {
		t.Errorf("error = %v, want not_implemented", err)
	}
	if statuses[0] != fmuruntime.StatusDiscard {
		t.Errorf("statuses[0] = %v, want Discard", statuses[0])
	}
	if statuses[1] != fmuruntime.StatusOK {
		t.Errorf("statuses[1] = %v, want OK", statuses[1])
	}
}

func TestSetThenGetRoundTrip(t *testing.T) {
	c := component(t)

	keys := vrs(testbed.VRX1, testbed.VRFlag, testbed.VRLabel, testbed.VRK)
	statuses, err := values.Set(c, keys, []any{2.5, false, "renamed", 20.0})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	for i, st := range statuses {
		if st != fmuruntime.StatusOK {
			t.Errorf("statuses[%d] = %v", i, st)
		}
	}

	vals, _, err := values.Get(c, keys)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := []any{2.5, false, "renamed", 20.0}
	for i := range want {
		if vals[i] != want[i] {
			t.Errorf("vals[%d] = %v, want %v", i, vals[i], want[i])
		}
	}
}

func TestSetTypeMismatchDoesNotAbortSiblings(t *testing.T) {
	c := component(t)

	keys := vrs(testbed.VRX1, testbed.VRLabel)
	statuses, err := values.Set(c, keys, []any{"not a float", "updated"})
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	want := &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindTypeMismatch}
	if !stderrors.Is(err, want) {
		t.Errorf("error = %v, want type_mismatch", err)
	}
	if statuses[0] != fmuruntime.StatusError {
		t.Errorf("statuses[0] = %v, want Error", statuses[0])
	}
	if statuses[1] != fmuruntime.StatusOK {
		t.Errorf("statuses[1] = %v, want OK", statuses[1])
	}

	vals, _, err := values.Get(c, vrs(testbed.VRX1, testbed.VRLabel))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if vals[0] != 1.0 {
		t.Errorf("x1 = %v, should be untouched by the failed key", vals[0])
	}
	if vals[1] != "updated" {
		t.Errorf("label = %v, sibling write should land", vals[1])
	}
}

func TestSetAcceptedGoTypes(t *testing.T) {
	c := component(t)

	// Widening conversions the layer accepts per payload tag.
	statuses, err := values.Set(c,
		vrs(testbed.VRX1, testbed.VRX2),
		[]any{float32(1.5), 0.5})
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	for i, st := range statuses {
		if st != fmuruntime.StatusOK {
			t.Errorf("statuses[%d] = %v", i, st)
		}
	}
}

func TestSetLengthMismatch(t *testing.T) {
	c := component(t)
	if _, err := values.Set(c, vrs(testbed.VRX1), []any{1.0, 2.0}); err == nil {
		t.Fatal("expected error for key/value length mismatch")
	}
}

func TestSetEnumerationRejected(t *testing.T) {
	c := component(t)

	statuses, err := values.Set(c, vrs(testbed.VREnum), []any{int32(2)})
	if err == nil {
		t.Fatal("expected error for enumeration write")
	}
	if statuses[0] != fmuruntime.StatusDiscard {
		t.Errorf("statuses[0] = %v, want Discard", statuses[0])
	}
}

func TestGetRealsHomogeneous(t *testing.T) {
	c := component(t)

	got, st, err := values.GetReals(c, vrs(testbed.VRX1, testbed.VRX2, testbed.VRK))
	if err != nil || st != fmuruntime.StatusOK {
		t.Fatalf("GetReals: %v, %v", st, err)
	}
	want := []float64{1.0, 0.0, 10.0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	// A non-Real key rejects the whole batch up front.
	if _, _, err := values.GetReals(c, vrs(testbed.VRX1, testbed.VRFlag)); err == nil {
		t.Error("expected type error for non-Real key")
	}

	// Empty batches succeed without touching the native side.
	got, st, err = values.GetReals(c, nil)
	if err != nil || st != fmuruntime.StatusOK || len(got) != 0 {
		t.Errorf("empty GetReals = %v, %v, %v", got, st, err)
	}
}

func TestSetRealsHomogeneous(t *testing.T) {
	c := component(t)

	st, err := values.SetReals(c, vrs(testbed.VRU), []float64{3.0})
	if err != nil || st != fmuruntime.StatusOK {
		t.Fatalf("SetReals: %v, %v", st, err)
	}
	got, _, err := values.GetReals(c, vrs(testbed.VRU))
	if err != nil || got[0] != 3.0 {
		t.Errorf("u = %v, %v", got, err)
	}

	if _, err := values.SetReals(c, vrs(testbed.VRU), []float64{1, 2}); err == nil {
		t.Error("expected error for length mismatch")
	}
}

func TestAccessAfterFree(t *testing.T) {
	c := component(t)
	if err := c.Free(); err != nil {
		t.Fatalf("free: %v", err)
	}

	want := &errors.Error{Phase: errors.PhaseRuntime, Kind: errors.KindFreed}
	if _, _, err := values.Get(c, vrs(testbed.VRX1)); !stderrors.Is(err, want) {
		t.Errorf("Get after free = %v, want freed", err)
	}
	if _, err := values.Set(c, vrs(testbed.VRX1), []any{1.0}); !stderrors.Is(err, want) {
		t.Errorf("Set after free = %v, want freed", err)
	}
}

func TestSetStringWithoutEntry(t *testing.T) {
	f, _, err := testbed.NewUnit(testbed.WithoutSymbol("fmi2SetString"))
	if err != nil {
		t.Fatalf("build unit: %v", err)
	}
	defer f.Close()
	c, err := f.Instantiate("osc", fmuruntime.CoSimulation, nil)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}

	keys := vrs(testbed.VRLabel, testbed.VRK, testbed.VRLabel)
	statuses, err := values.Set(c, keys, []any{"a", 12.0, "b"})
	want := &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindCapabilityMissing}
	if !stderrors.Is(err, want) {
		t.Errorf("error = %v, want capability_missing", err)
	}
	if statuses[0] != fmuruntime.StatusError || statuses[1] != fmuruntime.StatusOK ||
		statuses[2] != fmuruntime.StatusError {
		t.Errorf("statuses = %v", statuses)
	}

	// One error per failed key, matching the read path.
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("error %T does not unwrap to a list", err)
	}
	if n := len(joined.Unwrap()); n != 2 {
		t.Errorf("joined %d errors, want 2", n)
	}

	// The sibling real write still lands.
	got, st, err := values.GetReals(c, vrs(testbed.VRK))
	if err != nil || st.Bad() {
		t.Fatalf("read k: status %v, %v", st, err)
	}
	if got[0] != 12.0 {
		t.Errorf("k = %v, want 12", got[0])
	}
}

func TestGetStringWithoutEntry(t *testing.T) {
	f, _, err := testbed.NewUnit(testbed.WithoutSymbol("fmi2GetString", "fmi2SetString"))
	if err != nil {
		t.Fatalf("build unit: %v", err)
	}
	defer f.Close()
	c, err := f.Instantiate("osc", fmuruntime.CoSimulation, nil)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}

	_, statuses, err := values.Get(c, vrs(testbed.VRLabel, testbed.VRK))
	want := &errors.Error{Phase: errors.PhaseMarshal, Kind: errors.KindCapabilityMissing}
	if !stderrors.Is(err, want) {
		t.Errorf("error = %v, want capability_missing", err)
	}
	if statuses[0] != fmuruntime.StatusError || statuses[1] != fmuruntime.StatusOK {
		t.Errorf("statuses = %v", statuses)
	}
}
