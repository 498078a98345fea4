//go:build linux || darwin

package native

import (
	"github.com/ebitengine/purego"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
)

// dlLibrary wraps a dlopen handle behind the Library interface.
type dlLibrary struct {
	handle uintptr
	path   string
}

// Open loads the unit's shared library from path.
func Open(path string) (fmuruntime.Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, errors.OpenFailed(path, err)
	}
	return &dlLibrary{handle: handle, path: path}, nil
}

func (l *dlLibrary) Bind(symbol string, fnptr any) error {
	if !l.Has(symbol) {
		return errors.MissingSymbol(symbol, nil)
	}
	purego.RegisterLibFunc(fnptr, l.handle, symbol)
	return nil
}

func (l *dlLibrary) Has(symbol string) bool {
	addr, err := purego.Dlsym(l.handle, symbol)
	return err == nil && addr != 0
}

func (l *dlLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindOpenFailed, err, "close "+l.path)
	}
	return nil
}
