package testbed

import (
	"reflect"
	"strings"

	"github.com/simbind/fmu-runtime/errors"
	"github.com/simbind/fmu-runtime/fmu"
	"github.com/simbind/fmu-runtime/model"
	"github.com/simbind/fmu-runtime/xmltree"
)

// assignFunc stores impl into the function pointer fnptr. The fake's
// closures carry the exact signatures the symbol table declares, so a
// type mismatch here is a bug in the fake, not in the caller.
func assignFunc(fnptr, impl any) error {
	dst := reflect.ValueOf(fnptr)
	if dst.Kind() != reflect.Pointer || dst.Elem().Kind() != reflect.Func {
		return errors.New(errors.PhaseResolve, errors.KindInvalidData).
			Detail("bind target %T is not a function pointer", fnptr).Build()
	}
	src := reflect.ValueOf(impl)
	if src.Type() != dst.Elem().Type() {
		return errors.New(errors.PhaseResolve, errors.KindInvalidData).
			Detail("signature %v does not match %v", src.Type(), dst.Elem().Type()).Build()
	}
	dst.Elem().Set(src)
	return nil
}

// LoadIndex parses the embedded spring-damper description.
func LoadIndex() (*model.Index, error) {
	root, err := xmltree.Parse(strings.NewReader(Description))
	if err != nil {
		return nil, err
	}
	return model.Load(root)
}

// NewUnit builds a complete FMU over the fake library. Callers own the
// returned FMU and must Close it.
func NewUnit(opts ...Option) (*fmu.FMU, *Library, error) {
	index, err := LoadIndex()
	if err != nil {
		return nil, nil, err
	}
	lib := NewLibrary(opts...)
	f, err := fmu.NewWithLibrary(index, lib, "file:///tmp/springdamper/resources")
	if err != nil {
		return nil, nil, err
	}
	return f, lib, nil
}
