package fmu

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/native"
)

// callbackBlock mirrors fmi2CallbackFunctions. The native side retains a
// bare pointer to this struct for the component's entire lifetime, so the
// block is heap allocated once per component and referenced from the
// Component until the native free call returns.
type callbackBlock struct {
	logger               uintptr
	allocateMemory       uintptr
	freeMemory           uintptr
	stepFinished         uintptr
	componentEnvironment uintptr
}

// envRegistry maps the opaque componentEnvironment value handed to the
// native side back to the owning Component. Trampoline creation is capped
// by purego, so the four callbacks are process-global and dispatch on the
// environment key.
var env struct {
	mu     sync.Mutex
	next   uintptr
	byID   map[uintptr]*Component
	allocs map[uintptr][]byte

	once      sync.Once
	callbacks callbackTrampolines
}

type callbackTrampolines struct {
	logger       uintptr
	allocate     uintptr
	free         uintptr
	stepFinished uintptr
}

func registerEnv(c *Component) uintptr {
	env.mu.Lock()
	defer env.mu.Unlock()
	if env.byID == nil {
		env.byID = map[uintptr]*Component{}
	}
	env.next++
	env.byID[env.next] = c
	return env.next
}

func unregisterEnv(id uintptr) {
	env.mu.Lock()
	defer env.mu.Unlock()
	delete(env.byID, id)
}

func lookupEnv(id uintptr) *Component {
	env.mu.Lock()
	defer env.mu.Unlock()
	return env.byID[id]
}

// trampolines builds the process-global callback entry points on first use.
func trampolines() callbackTrampolines {
	env.once.Do(func() {
		env.callbacks = callbackTrampolines{
			logger:       purego.NewCallback(loggerCallback),
			allocate:     purego.NewCallback(allocateCallback),
			free:         purego.NewCallback(freeCallback),
			stepFinished: purego.NewCallback(stepFinishedCallback),
		}
	})
	return env.callbacks
}

// loggerCallback forwards native log lines into zap. The native signature
// is printf-style varargs; only the format string is recoverable through a
// fixed trampoline, which matches what most units emit (pre-formatted
// messages). All parameters arrive as raw words.
func loggerCallback(envID, instanceName, status, category, message uintptr) uintptr {
	st := fmuruntime.Status(int32(status))
	emit := fmuruntime.Logger().Info
	switch st {
	case fmuruntime.StatusWarning, fmuruntime.StatusDiscard:
		emit = fmuruntime.Logger().Warn
	case fmuruntime.StatusError, fmuruntime.StatusFatal:
		emit = fmuruntime.Logger().Error
	}
	emit("fmu log",
		zap.String("status", st.String()),
		zap.String("category", native.GoStringAt(category)),
		zap.String("instance", native.GoStringAt(instanceName)),
		zap.String("message", native.GoStringAt(message)))
	return 0
}

// allocateCallback services fmi2CallbackAllocateMemory with zero-filled Go
// memory. The buffer is pinned by the allocs map until freed; the Go heap
// does not relocate, so the raw address stays valid.
func allocateCallback(nobj, size uintptr) uintptr {
	total := nobj * size
	if total == 0 {
		total = 1
	}
	buf := make([]byte, total)
	ptr := uintptr(unsafe.Pointer(&buf[0]))

	env.mu.Lock()
	if env.allocs == nil {
		env.allocs = map[uintptr][]byte{}
	}
	env.allocs[ptr] = buf
	env.mu.Unlock()
	return ptr
}

func freeCallback(ptr uintptr) uintptr {
	if ptr == 0 {
		return 0
	}
	env.mu.Lock()
	delete(env.allocs, ptr)
	env.mu.Unlock()
	return 0
}

func stepFinishedCallback(envID, status uintptr) uintptr {
	c := lookupEnv(envID)
	if c == nil {
		return 0
	}
	if fn := c.onStepFinished; fn != nil {
		fn(fmuruntime.Status(int32(status)))
	}
	return 0
}

// newCallbackBlock allocates the stable-address callback block for one
// component.
func newCallbackBlock(envID uintptr) *callbackBlock {
	tr := trampolines()
	return &callbackBlock{
		logger:               tr.logger,
		allocateMemory:       tr.allocate,
		freeMemory:           tr.free,
		stepFinished:         tr.stepFinished,
		componentEnvironment: envID,
	}
}
