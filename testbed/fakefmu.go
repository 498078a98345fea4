// Package testbed provides an in-memory spring-damper unit implementing
// the native entry points behind the Library seam, so integration tests
// exercise the full binding stack without a compiled shared library.
package testbed

import (
	"bytes"
	"encoding/gob"
	"sync"
	"unsafe"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
	"github.com/simbind/fmu-runtime/native"
)

// Library is an in-memory fmuruntime.Library whose symbols are Go closures
// over the fake unit's state.
type Library struct {
	mu        sync.Mutex
	symbols   map[string]any
	instances map[uintptr]*instance
	snapshots map[uintptr][]byte
	nextComp  uintptr
	nextSnap  uintptr
	closed    bool

	// InstantiateCount counts native instantiate invocations for
	// re-entrancy assertions.
	InstantiateCount int
}

// Option adjusts the fake library before symbol resolution.
type Option func(*Library)

// WithoutSymbol removes a symbol so resolution sees it as absent.
func WithoutSymbol(names ...string) Option {
	return func(l *Library) {
		for _, n := range names {
			delete(l.symbols, n)
		}
	}
}

// NewLibrary builds the fake unit with its full symbol set.
func NewLibrary(opts ...Option) *Library {
	l := &Library{
		instances: map[uintptr]*instance{},
		snapshots: map[uintptr][]byte{},
	}
	l.symbols = l.buildSymbols()
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Bind populates fnptr with the fake implementation of symbol.
func (l *Library) Bind(symbol string, fnptr any) error {
	l.mu.Lock()
	impl, ok := l.symbols[symbol]
	l.mu.Unlock()
	if !ok {
		return errors.MissingSymbol(symbol, nil)
	}
	return assignFunc(fnptr, impl)
}

// Has reports whether the symbol exists in the fake table.
func (l *Library) Has(symbol string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.symbols[symbol]
	return ok
}

// Close marks the library unloaded.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Closed reports whether Close ran.
func (l *Library) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Live returns the number of fake instances not yet freed.
func (l *Library) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.instances)
}

// instance is one fake component's state.
type instance struct {
	name  string
	time  float64
	reals map[uint32]float64
	ints  map[uint32]int32
	bools map[uint32]int32
	strs  map[uint32]string
}

func newInstance(name string) *instance {
	return &instance{
		name: name,
		reals: map[uint32]float64{
			VRX1: 1.0, VRX2: 0.0, VRU: 0.0,
			VRK: 10.0, VRD: 1.0, VRMass: 1.0,
		},
		ints:  map[uint32]int32{VREnum: 1},
		bools: map[uint32]int32{VRFlag: 1},
		strs:  map[uint32]string{VRLabel: "spring"},
	}
}

// derivatives evaluates the spring-damper right-hand side at the current
// operating point.
func (i *instance) derivatives() (dx1, dx2 float64) {
	k, d, m := i.reals[VRK], i.reals[VRD], i.reals[VRMass]
	x1, x2, u := i.reals[VRX1], i.reals[VRX2], i.reals[VRU]
	return x2, (-k*x1 - d*x2 + u) / m
}

// partial returns the analytic partial derivative of unknown with respect
// to known.
func (i *instance) partial(unknown, known uint32) float64 {
	k, d, m := i.reals[VRK], i.reals[VRD], i.reals[VRMass]
	switch unknown {
	case VRDerX1:
		if known == VRX2 {
			return 1
		}
	case VRDerX2:
		switch known {
		case VRX1:
			return -k / m
		case VRX2:
			return -d / m
		case VRU:
			return 1 / m
		}
	case VRY:
		if known == VRX1 {
			return 1
		}
	}
	return 0
}

func (i *instance) getReal(vr uint32) float64 {
	switch vr {
	case VRDerX1:
		dx1, _ := i.derivatives()
		return dx1
	case VRDerX2:
		_, dx2 := i.derivatives()
		return dx2
	case VRY:
		return i.reals[VRX1]
	case VRTime:
		return i.time
	}
	return i.reals[vr]
}

func (l *Library) get(c uintptr) *instance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.instances[c]
}

const (
	statusOK    int32 = 0
	statusError int32 = 3
)

func (l *Library) buildSymbols() map[string]any {
	return map[string]any{
		"fmi2GetVersion":       func() string { return "2.0" },
		"fmi2GetTypesPlatform": func() string { return "default" },
		"fmi2SetDebugLogging": func(c uintptr, loggingOn int32, n uintptr, categories []*byte) int32 {
			if l.get(c) == nil {
				return statusError
			}
			return statusOK
		},

		"fmi2Instantiate": func(instanceName string, fmuType int32, guid string,
			resourceLocation string, callbacks unsafe.Pointer, visible int32, loggingOn int32) uintptr {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.InstantiateCount++
			if instanceName == "" || callbacks == nil {
				return 0
			}
			l.nextComp++
			l.instances[l.nextComp] = newInstance(instanceName)
			return l.nextComp
		},
		"fmi2FreeInstance": func(c uintptr) {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.instances, c)
		},

		"fmi2SetupExperiment": func(c uintptr, tolDefined int32, tol, start float64, stopDefined int32, stop float64) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			inst.time = start
			return statusOK
		},
		"fmi2EnterInitializationMode": l.statusOnly,
		"fmi2ExitInitializationMode":  l.statusOnly,
		"fmi2Terminate":               l.statusOnly,
		"fmi2Reset": func(c uintptr) int32 {
			l.mu.Lock()
			defer l.mu.Unlock()
			inst, ok := l.instances[c]
			if !ok {
				return statusError
			}
			l.instances[c] = newInstance(inst.name)
			return statusOK
		},

		"fmi2GetReal": func(c uintptr, vr []uint32, nvr uintptr, value []float64) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			for i := uintptr(0); i < nvr; i++ {
				value[i] = inst.getReal(vr[i])
			}
			return statusOK
		},
		"fmi2GetInteger": func(c uintptr, vr []uint32, nvr uintptr, value []int32) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			for i := uintptr(0); i < nvr; i++ {
				value[i] = inst.ints[vr[i]]
			}
			return statusOK
		},
		"fmi2GetBoolean": func(c uintptr, vr []uint32, nvr uintptr, value []int32) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			for i := uintptr(0); i < nvr; i++ {
				value[i] = inst.bools[vr[i]]
			}
			return statusOK
		},
		"fmi2GetString": func(c uintptr, vr []uint32, nvr uintptr, value []*byte) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			for i := uintptr(0); i < nvr; i++ {
				value[i] = native.CString(inst.strs[vr[i]])
			}
			return statusOK
		},
		"fmi2SetReal": func(c uintptr, vr []uint32, nvr uintptr, value []float64) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			for i := uintptr(0); i < nvr; i++ {
				inst.reals[vr[i]] = value[i]
			}
			return statusOK
		},
		"fmi2SetInteger": func(c uintptr, vr []uint32, nvr uintptr, value []int32) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			for i := uintptr(0); i < nvr; i++ {
				inst.ints[vr[i]] = value[i]
			}
			return statusOK
		},
		"fmi2SetBoolean": func(c uintptr, vr []uint32, nvr uintptr, value []int32) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			for i := uintptr(0); i < nvr; i++ {
				inst.bools[vr[i]] = value[i]
			}
			return statusOK
		},
		"fmi2SetString": func(c uintptr, vr []uint32, nvr uintptr, value []*byte) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			for i := uintptr(0); i < nvr; i++ {
				inst.strs[vr[i]] = native.GoString(value[i])
			}
			return statusOK
		},

		"fmi2GetFMUstate": func(c uintptr, state *uintptr) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			data, err := encodeInstance(inst)
			if err != nil {
				return statusError
			}
			l.mu.Lock()
			l.nextSnap++
			l.snapshots[l.nextSnap] = data
			*state = l.nextSnap
			l.mu.Unlock()
			return statusOK
		},
		"fmi2SetFMUstate": func(c uintptr, state uintptr) int32 {
			inst := l.get(c)
			l.mu.Lock()
			data, ok := l.snapshots[state]
			l.mu.Unlock()
			if inst == nil || !ok {
				return statusError
			}
			return decodeInto(inst, data)
		},
		"fmi2FreeFMUstate": func(c uintptr, state *uintptr) int32 {
			l.mu.Lock()
			delete(l.snapshots, *state)
			l.mu.Unlock()
			*state = 0
			return statusOK
		},
		"fmi2SerializedFMUstateSize": func(c uintptr, state uintptr, size *uintptr) int32 {
			l.mu.Lock()
			data, ok := l.snapshots[state]
			l.mu.Unlock()
			if !ok {
				return statusError
			}
			*size = uintptr(len(data))
			return statusOK
		},
		"fmi2SerializeFMUstate": func(c uintptr, state uintptr, data []byte, size uintptr) int32 {
			l.mu.Lock()
			src, ok := l.snapshots[state]
			l.mu.Unlock()
			if !ok || uintptr(len(data)) < uintptr(len(src)) {
				return statusError
			}
			copy(data, src)
			return statusOK
		},
		"fmi2DeSerializeFMUstate": func(c uintptr, data []byte, size uintptr, state *uintptr) int32 {
			buf := make([]byte, size)
			copy(buf, data)
			l.mu.Lock()
			l.nextSnap++
			l.snapshots[l.nextSnap] = buf
			*state = l.nextSnap
			l.mu.Unlock()
			return statusOK
		},

		"fmi2GetDirectionalDerivative": func(c uintptr, vUnknown []uint32, nUnknown uintptr,
			vKnown []uint32, nKnown uintptr, dvKnown []float64, dvUnknown []float64) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			for i := uintptr(0); i < nUnknown; i++ {
				sum := 0.0
				for j := uintptr(0); j < nKnown; j++ {
					sum += inst.partial(vUnknown[i], vKnown[j]) * dvKnown[j]
				}
				dvUnknown[i] = sum
			}
			return statusOK
		},

		"fmi2DoStep": func(c uintptr, t, h float64, noSetPrior int32) int32 {
			inst := l.get(c)
			if inst == nil || h <= 0 {
				return statusError
			}
			// Sub-stepped explicit Euler keeps the fake stable for the
			// step sizes the tests use.
			const sub = 16
			dt := h / sub
			for s := 0; s < sub; s++ {
				dx1, dx2 := inst.derivatives()
				inst.reals[VRX1] += dt * dx1
				inst.reals[VRX2] += dt * dx2
			}
			inst.time = t + h
			return statusOK
		},
		"fmi2CancelStep": l.statusOnly,
		"fmi2GetStatus": func(c uintptr, kind int32, value *int32) int32 {
			*value = statusOK
			return statusOK
		},
		"fmi2GetRealStatus": func(c uintptr, kind int32, value *float64) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			*value = inst.time
			return statusOK
		},
		"fmi2GetIntegerStatus": func(c uintptr, kind int32, value *int32) int32 {
			*value = 0
			return statusOK
		},
		"fmi2GetBooleanStatus": func(c uintptr, kind int32, value *int32) int32 {
			*value = 0
			return statusOK
		},
		"fmi2GetStringStatus": func(c uintptr, kind int32, value **byte) int32 {
			*value = native.CString("")
			return statusOK
		},
		"fmi2SetRealInputDerivatives": func(c uintptr, vr []uint32, nvr uintptr, order []int32, value []float64) int32 {
			return statusOK
		},
		"fmi2GetRealOutputDerivatives": func(c uintptr, vr []uint32, nvr uintptr, order []int32, value []float64) int32 {
			for i := range value {
				value[i] = 0
			}
			return statusOK
		},

		"fmi2EnterEventMode": l.statusOnly,
		"fmi2NewDiscreteStates": func(c uintptr, eventInfo unsafe.Pointer) int32 {
			info := (*native.EventInfo)(eventInfo)
			*info = native.EventInfo{}
			return statusOK
		},
		"fmi2EnterContinuousTimeMode": l.statusOnly,
		"fmi2CompletedIntegratorStep": func(c uintptr, noSetPrior int32, enterEventMode, terminate *int32) int32 {
			*enterEventMode = 0
			*terminate = 0
			return statusOK
		},
		"fmi2SetTime": func(c uintptr, t float64) int32 {
			inst := l.get(c)
			if inst == nil {
				return statusError
			}
			inst.time = t
			return statusOK
		},
		"fmi2SetContinuousStates": func(c uintptr, x []float64, nx uintptr) int32 {
			inst := l.get(c)
			if inst == nil || nx != 2 {
				return statusError
			}
			inst.reals[VRX1], inst.reals[VRX2] = x[0], x[1]
			return statusOK
		},
		"fmi2GetContinuousStates": func(c uintptr, x []float64, nx uintptr) int32 {
			inst := l.get(c)
			if inst == nil || nx != 2 {
				return statusError
			}
			x[0], x[1] = inst.reals[VRX1], inst.reals[VRX2]
			return statusOK
		},
		"fmi2GetDerivatives": func(c uintptr, dx []float64, nx uintptr) int32 {
			inst := l.get(c)
			if inst == nil || nx != 2 {
				return statusError
			}
			dx[0], dx[1] = inst.derivatives()
			return statusOK
		},
		"fmi2GetEventIndicators": func(c uintptr, z []float64, ni uintptr) int32 {
			return statusOK
		},
		"fmi2GetNominalsOfContinuousStates": func(c uintptr, nominals []float64, nx uintptr) int32 {
			for i := range nominals {
				nominals[i] = 1
			}
			return statusOK
		},
	}
}

func (l *Library) statusOnly(c uintptr) int32 {
	if l.get(c) == nil {
		return statusError
	}
	return statusOK
}

type encodedState struct {
	Time  float64
	Reals map[uint32]float64
	Ints  map[uint32]int32
	Bools map[uint32]int32
	Strs  map[uint32]string
}

func encodeInstance(i *instance) ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(encodedState{
		Time: i.time, Reals: i.reals, Ints: i.ints, Bools: i.bools, Strs: i.strs,
	})
	return buf.Bytes(), err
}

func decodeInto(i *instance, data []byte) int32 {
	var s encodedState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return statusError
	}
	i.time, i.reals, i.ints, i.bools, i.strs = s.Time, s.Reals, s.Ints, s.Bools, s.Strs
	return statusOK
}

var _ fmuruntime.Library = (*Library)(nil)
