//go:build windows

package native

import (
	"github.com/ebitengine/purego"
	"golang.org/x/sys/windows"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
)

// dlLibrary wraps a LoadLibrary handle behind the Library interface.
type dlLibrary struct {
	handle windows.Handle
	path   string
}

// Open loads the unit's shared library from path.
func Open(path string) (fmuruntime.Library, error) {
	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return nil, errors.OpenFailed(path, err)
	}
	return &dlLibrary{handle: handle, path: path}, nil
}

func (l *dlLibrary) Bind(symbol string, fnptr any) error {
	addr, err := windows.GetProcAddress(l.handle, symbol)
	if err != nil || addr == 0 {
		return errors.MissingSymbol(symbol, err)
	}
	purego.RegisterFunc(fnptr, addr)
	return nil
}

func (l *dlLibrary) Has(symbol string) bool {
	addr, err := windows.GetProcAddress(l.handle, symbol)
	return err == nil && addr != 0
}

func (l *dlLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := windows.FreeLibrary(l.handle)
	l.handle = 0
	if err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindOpenFailed, err, "close "+l.path)
	}
	return nil
}
