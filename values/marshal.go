package values

import (
	stderrors "errors"
	"fmt"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
	"github.com/simbind/fmu-runtime/fmu"
	"github.com/simbind/fmu-runtime/model"
	"github.com/simbind/fmu-runtime/native"
)

// Get reads one value per key. Values come back as float64, int32, bool, or
// string according to the descriptor's payload tag. Statuses are reported
// per key; a bad status for one key never aborts its siblings, so callers
// inspect statuses[i] before trusting values[i]. The error aggregates the
// per-key failures (unknown references, enumeration access).
func Get(c *fmu.Component, vrs []fmuruntime.ValueReference) ([]any, []fmuruntime.Status, error) {
	if err := c.Usable(); err != nil {
		return nil, nil, err
	}

	n := len(vrs)
	out := make([]any, n)
	statuses := make([]fmuruntime.Status, n)
	var errs []error

	groups := groupByType(c.Index(), vrs, statuses, &errs)
	t := c.Table()

	if g := groups[model.TypeReal]; len(g.positions) > 0 {
		buf := make([]float64, len(g.positions))
		st := fmuruntime.Status(t.GetReal(c.Handle(), g.vrs, uintptr(len(g.vrs)), buf))
		for i, pos := range g.positions {
			out[pos] = buf[i]
			statuses[pos] = st
		}
	}
	if g := groups[model.TypeInteger]; len(g.positions) > 0 {
		buf := make([]int32, len(g.positions))
		st := fmuruntime.Status(t.GetInteger(c.Handle(), g.vrs, uintptr(len(g.vrs)), buf))
		for i, pos := range g.positions {
			out[pos] = buf[i]
			statuses[pos] = st
		}
	}
	if g := groups[model.TypeBoolean]; len(g.positions) > 0 {
		buf := make([]int32, len(g.positions))
		st := fmuruntime.Status(t.GetBoolean(c.Handle(), g.vrs, uintptr(len(g.vrs)), buf))
		for i, pos := range g.positions {
			out[pos] = buf[i] != 0
			statuses[pos] = st
		}
	}
	if g := groups[model.TypeString]; len(g.positions) > 0 {
		if t.GetString == nil {
			for _, pos := range g.positions {
				statuses[pos] = fmuruntime.StatusError
				errs = append(errs, errors.CapabilityMissing(errors.PhaseMarshal, "fmi2GetString"))
			}
		} else {
			buf := make([]*byte, len(g.positions))
			st := fmuruntime.Status(t.GetString(c.Handle(), g.vrs, uintptr(len(g.vrs)), buf))
			for i, pos := range g.positions {
				out[pos] = native.GoString(buf[i])
				statuses[pos] = st
			}
		}
	}

	return out, statuses, stderrors.Join(errs...)
}

// GetReals reads keys that must all be Real-typed, as one native batch.
func GetReals(c *fmu.Component, vrs []fmuruntime.ValueReference) ([]float64, fmuruntime.Status, error) {
	if err := c.Usable(); err != nil {
		return nil, fmuruntime.StatusError, err
	}
	for i, vr := range vrs {
		v := c.Index().ByReference(vr)
		if v == nil {
			return nil, fmuruntime.StatusError, errors.UnknownIdentifier(vr)
		}
		if v.Type() != model.TypeReal {
			return nil, fmuruntime.StatusError, errors.TypeMismatch(uint32(vr), i, "float64", v.Type().String())
		}
	}
	buf := make([]float64, len(vrs))
	if len(vrs) == 0 {
		return buf, fmuruntime.StatusOK, nil
	}
	st := fmuruntime.Status(c.Table().GetReal(c.Handle(), refs(vrs), uintptr(len(vrs)), buf))
	return buf, st, nil
}

// SetReals writes keys that must all be Real-typed, as one native batch.
func SetReals(c *fmu.Component, vrs []fmuruntime.ValueReference, vals []float64) (fmuruntime.Status, error) {
	if err := c.Usable(); err != nil {
		return fmuruntime.StatusError, err
	}
	if len(vrs) != len(vals) {
		return fmuruntime.StatusError, errors.New(errors.PhaseMarshal, errors.KindInvalidData).
			Detail("%d keys but %d values", len(vrs), len(vals)).Build()
	}
	if len(vrs) == 0 {
		return fmuruntime.StatusOK, nil
	}
	st := fmuruntime.Status(c.Table().SetReal(c.Handle(), refs(vrs), uintptr(len(vrs)), vals))
	return st, nil
}

// Set writes one value per key. The stored value's Go type must match the
// descriptor's payload tag exactly; a mismatch fails that key with a
// TypeMismatch identifying key and index while sibling keys proceed.
func Set(c *fmu.Component, vrs []fmuruntime.ValueReference, vals []any) ([]fmuruntime.Status, error) {
	if err := c.Usable(); err != nil {
		return nil, err
	}
	if len(vrs) != len(vals) {
		return nil, errors.New(errors.PhaseMarshal, errors.KindInvalidData).
			Detail("%d keys but %d values", len(vrs), len(vals)).Build()
	}

	n := len(vrs)
	statuses := make([]fmuruntime.Status, n)
	var errs []error

	var (
		realVRs []uint32
		realPos []int
		reals   []float64
		intVRs  []uint32
		intPos  []int
		ints    []int32
		boolVRs []uint32
		boolPos []int
		bools   []int32
		strVRs  []uint32
		strPos  []int
		strs    []string
	)

	for i, vr := range vrs {
		v := c.Index().ByReference(vr)
		if v == nil {
			statuses[i] = fmuruntime.StatusError
			errs = append(errs, errors.UnknownIdentifier(vr))
			continue
		}
		switch v.Type() {
		case model.TypeReal:
			f, ok := toFloat(vals[i])
			if !ok {
				statuses[i] = fmuruntime.StatusError
				errs = append(errs, errors.TypeMismatch(uint32(vr), i, fmt.Sprintf("%T", vals[i]), "Real"))
				continue
			}
			realVRs = append(realVRs, uint32(vr))
			realPos = append(realPos, i)
			reals = append(reals, f)
		case model.TypeInteger:
			iv, ok := toInt32(vals[i])
			if !ok {
				statuses[i] = fmuruntime.StatusError
				errs = append(errs, errors.TypeMismatch(uint32(vr), i, fmt.Sprintf("%T", vals[i]), "Integer"))
				continue
			}
			intVRs = append(intVRs, uint32(vr))
			intPos = append(intPos, i)
			ints = append(ints, iv)
		case model.TypeBoolean:
			b, ok := vals[i].(bool)
			if !ok {
				statuses[i] = fmuruntime.StatusError
				errs = append(errs, errors.TypeMismatch(uint32(vr), i, fmt.Sprintf("%T", vals[i]), "Boolean"))
				continue
			}
			boolVRs = append(boolVRs, uint32(vr))
			boolPos = append(boolPos, i)
			if b {
				bools = append(bools, 1)
			} else {
				bools = append(bools, 0)
			}
		case model.TypeString:
			s, ok := vals[i].(string)
			if !ok {
				statuses[i] = fmuruntime.StatusError
				errs = append(errs, errors.TypeMismatch(uint32(vr), i, fmt.Sprintf("%T", vals[i]), "String"))
				continue
			}
			strVRs = append(strVRs, uint32(vr))
			strPos = append(strPos, i)
			strs = append(strs, s)
		case model.TypeEnumeration:
			// Accepted for lookup, rejected for access: coercing an
			// enumeration through the integer entry would lose the
			// declared-type contract.
			statuses[i] = fmuruntime.StatusDiscard
			errs = append(errs, errors.NotImplemented(uint32(vr), "enumeration set"))
		}
	}

	t := c.Table()
	if len(realVRs) > 0 {
		st := fmuruntime.Status(t.SetReal(c.Handle(), realVRs, uintptr(len(realVRs)), reals))
		scatter(statuses, realPos, st)
	}
	if len(intVRs) > 0 {
		st := fmuruntime.Status(t.SetInteger(c.Handle(), intVRs, uintptr(len(intVRs)), ints))
		scatter(statuses, intPos, st)
	}
	if len(boolVRs) > 0 {
		st := fmuruntime.Status(t.SetBoolean(c.Handle(), boolVRs, uintptr(len(boolVRs)), bools))
		scatter(statuses, boolPos, st)
	}
	if len(strVRs) > 0 {
		if t.SetString == nil {
			for _, pos := range strPos {
				statuses[pos] = fmuruntime.StatusError
				errs = append(errs, errors.CapabilityMissing(errors.PhaseMarshal, "fmi2SetString"))
			}
		} else {
			st := fmuruntime.Status(t.SetString(c.Handle(), strVRs, uintptr(len(strVRs)), native.CStrings(strs)))
			scatter(statuses, strPos, st)
		}
	}

	return statuses, stderrors.Join(errs...)
}

type group struct {
	vrs       []uint32
	positions []int
}

// groupByType splits the request into one native batch per payload type.
// Unknown references and enumeration keys fail in place without touching
// their siblings.
func groupByType(x *model.Index, vrs []fmuruntime.ValueReference, statuses []fmuruntime.Status, errs *[]error) map[model.VariableType]*group {
	groups := map[model.VariableType]*group{
		model.TypeReal:    {},
		model.TypeInteger: {},
		model.TypeBoolean: {},
		model.TypeString:  {},
	}
	for i, vr := range vrs {
		v := x.ByReference(vr)
		if v == nil {
			statuses[i] = fmuruntime.StatusError
			*errs = append(*errs, errors.UnknownIdentifier(vr))
			continue
		}
		if v.Type() == model.TypeEnumeration {
			statuses[i] = fmuruntime.StatusDiscard
			*errs = append(*errs, errors.NotImplemented(uint32(vr), "enumeration get"))
			continue
		}
		g := groups[v.Type()]
		g.vrs = append(g.vrs, uint32(vr))
		g.positions = append(g.positions, i)
	}
	return groups
}

func scatter(statuses []fmuruntime.Status, positions []int, st fmuruntime.Status) {
	for _, pos := range positions {
		statuses[pos] = st
	}
}

func refs(vrs []fmuruntime.ValueReference) []uint32 {
	out := make([]uint32, len(vrs))
	for i, vr := range vrs {
		out[i] = uint32(vr)
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case float32:
		return float64(f), true
	}
	return 0, false
}

func toInt32(v any) (int32, bool) {
	switch i := v.(type) {
	case int32:
		return i, true
	case int:
		return int32(i), true
	case int64:
		return int32(i), true
	}
	return 0, false
}
