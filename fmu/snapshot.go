package fmu

import (
	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
)

// Snapshot is an opaque captured FMU state. It stays owned by the native
// side until released through FreeSnapshot, and is only valid on the
// component that captured it.
type Snapshot struct {
	handle uintptr
	owner  *Component
}

func foreignSnapshot(s *Snapshot) error {
	return errors.New(errors.PhaseRuntime, errors.KindInvalidData).
		Detail("snapshot belongs to component %q", s.owner.name).Build()
}

// GetSnapshot captures the component's complete internal state. Requires
// the canGetAndSetFMUstate capability to have survived symbol resolution.
func (c *Component) GetSnapshot() (*Snapshot, fmuruntime.Status, error) {
	if c.fmu.Table.GetFMUstate == nil {
		return nil, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2GetFMUstate")
	}
	var handle uintptr
	st, err := c.call("fmi2GetFMUstate", func() int32 {
		return c.fmu.Table.GetFMUstate(c.handle, &handle)
	})
	if err != nil || st.Bad() {
		return nil, st, err
	}
	return &Snapshot{handle: handle, owner: c}, st, nil
}

// SetSnapshot restores a previously captured state.
func (c *Component) SetSnapshot(s *Snapshot) (fmuruntime.Status, error) {
	if c.fmu.Table.SetFMUstate == nil {
		return fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2SetFMUstate")
	}
	if s == nil || s.handle == 0 {
		return fmuruntime.StatusError, errors.New(errors.PhaseRuntime, errors.KindInvalidData).
			Detail("nil or released snapshot").Build()
	}
	if s.owner != c {
		return fmuruntime.StatusError, foreignSnapshot(s)
	}
	return c.call("fmi2SetFMUstate", func() int32 {
		return c.fmu.Table.SetFMUstate(c.handle, s.handle)
	})
}

// FreeSnapshot releases a captured state on the native side.
func (c *Component) FreeSnapshot(s *Snapshot) (fmuruntime.Status, error) {
	if c.fmu.Table.FreeFMUstate == nil {
		return fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2FreeFMUstate")
	}
	if s == nil || s.handle == 0 {
		return fmuruntime.StatusOK, nil
	}
	if s.owner != c {
		return fmuruntime.StatusError, foreignSnapshot(s)
	}
	st, err := c.call("fmi2FreeFMUstate", func() int32 {
		return c.fmu.Table.FreeFMUstate(c.handle, &s.handle)
	})
	s.handle = 0
	return st, err
}

// SerializeSnapshot converts a captured state into a portable byte slice.
// Requires the canSerializeFMUstate capability.
func (c *Component) SerializeSnapshot(s *Snapshot) ([]byte, fmuruntime.Status, error) {
	if c.fmu.Table.SerializedFMUstateSize == nil || c.fmu.Table.SerializeFMUstate == nil {
		return nil, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2SerializeFMUstate")
	}
	if s == nil || s.handle == 0 {
		return nil, fmuruntime.StatusError, errors.New(errors.PhaseRuntime, errors.KindInvalidData).
			Detail("nil or released snapshot").Build()
	}
	if s.owner != c {
		return nil, fmuruntime.StatusError, foreignSnapshot(s)
	}

	var size uintptr
	st, err := c.call("fmi2SerializedFMUstateSize", func() int32 {
		return c.fmu.Table.SerializedFMUstateSize(c.handle, s.handle, &size)
	})
	if err != nil || st.Bad() {
		return nil, st, err
	}

	data := make([]byte, size)
	st, err = c.call("fmi2SerializeFMUstate", func() int32 {
		return c.fmu.Table.SerializeFMUstate(c.handle, s.handle, data, size)
	})
	if err != nil || st.Bad() {
		return nil, st, err
	}
	return data, st, nil
}

// DeserializeSnapshot rebuilds a native state from serialized bytes.
func (c *Component) DeserializeSnapshot(data []byte) (*Snapshot, fmuruntime.Status, error) {
	if c.fmu.Table.DeSerializeFMUstate == nil {
		return nil, fmuruntime.StatusError, errors.CapabilityMissing(errors.PhaseRuntime, "fmi2DeSerializeFMUstate")
	}
	var handle uintptr
	st, err := c.call("fmi2DeSerializeFMUstate", func() int32 {
		return c.fmu.Table.DeSerializeFMUstate(c.handle, data, uintptr(len(data)), &handle)
	})
	if err != nil || st.Bad() {
		return nil, st, err
	}
	return &Snapshot{handle: handle, owner: c}, st, nil
}
