package fmu

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/model"
	"github.com/simbind/fmu-runtime/native"
	"github.com/simbind/fmu-runtime/xmltree"
)

// FMU is one loaded unit: its parsed description, its opened library, the
// resolved symbol table, and the registry of live components instantiated
// from it. All calls into one FMU's symbol table must be serialized by the
// caller.
type FMU struct {
	Dir   string
	Index *model.Index
	Table *native.Table

	// Capabilities after symbol resolution, which may have downgraded
	// flags the binary does not deliver.
	Capabilities model.Capabilities

	lib         fmuruntime.Library
	registry    *registry
	resourceURI string

	// cleanup removes the staged directory on Close; failures only warn.
	cleanup func() error
}

// Options adjusts how a unit is loaded.
type Options struct {
	// Library substitutes the dynamic-library collaborator; when nil the
	// platform loader opens the staged binary.
	Library fmuruntime.Library

	// ResourceURI overrides the resources location passed to instantiate.
	ResourceURI string

	// RemoveOnClose deletes the staged directory when the FMU closes.
	RemoveOnClose bool
}

// Load stages nothing itself: dir must already contain the unpacked unit
// (modelDescription.xml plus binaries/<platform>/). Parsing and symbol
// resolution failures are fatal; no partial FMU is returned.
func Load(dir string) (*FMU, error) {
	return LoadWith(dir, Options{})
}

// LoadWith loads a staged unit with explicit options.
func LoadWith(dir string, opts Options) (*FMU, error) {
	root, err := xmltree.ParseFile(filepath.Join(dir, "modelDescription.xml"))
	if err != nil {
		return nil, err
	}
	index, err := model.Load(root)
	if err != nil {
		return nil, err
	}

	lib := opts.Library
	if lib == nil {
		platform, err := native.CurrentPlatform()
		if err != nil {
			return nil, err
		}
		binPath, err := native.BinaryPath(dir, index.Capabilities.Identifier(), platform)
		if err != nil {
			return nil, err
		}
		if lib, err = native.Open(binPath); err != nil {
			return nil, err
		}
	}

	table, caps, err := native.Resolve(lib, index.Capabilities)
	if err != nil {
		closeErr := lib.Close()
		if closeErr != nil {
			fmuruntime.Logger().Warn("closing library after failed resolve", zap.Error(closeErr))
		}
		return nil, err
	}

	resourceURI := opts.ResourceURI
	if resourceURI == "" {
		resourceURI = resourcesURI(dir)
	}

	f := &FMU{
		Dir:          dir,
		Index:        index,
		Table:        table,
		Capabilities: caps,
		lib:          lib,
		registry:     newRegistry(),
		resourceURI:  resourceURI,
	}
	if opts.RemoveOnClose {
		f.cleanup = func() error { return os.RemoveAll(dir) }
	}
	return f, nil
}

// NewWithLibrary builds an FMU around an already-parsed index and an
// explicit library, bypassing the filesystem. Integration tests and
// embedders that stage units themselves use this entry.
func NewWithLibrary(index *model.Index, lib fmuruntime.Library, resourceURI string) (*FMU, error) {
	table, caps, err := native.Resolve(lib, index.Capabilities)
	if err != nil {
		return nil, err
	}
	return &FMU{
		Index:        index,
		Table:        table,
		Capabilities: caps,
		lib:          lib,
		registry:     newRegistry(),
		resourceURI:  resourceURI,
	}, nil
}

// Live returns the number of live components.
func (f *FMU) Live() int {
	return f.registry.len()
}

// Close force-frees every live component, closes the library, and runs the
// staged-directory cleanup. It is an invariant violation for a component to
// remain registered after the free pass.
func (f *FMU) Close() error {
	for _, c := range f.registry.snapshot() {
		if err := c.Free(); err != nil {
			fmuruntime.Logger().Warn("freeing component during unload",
				zap.String("instance", c.name), zap.Error(err))
		}
	}
	if n := f.registry.len(); n != 0 {
		panic("fmu: components still registered after unload free pass")
	}

	err := f.lib.Close()

	if f.cleanup != nil {
		if cleanupErr := f.cleanup(); cleanupErr != nil {
			fmuruntime.Logger().Warn("staged directory cleanup failed",
				zap.String("dir", f.Dir), zap.Error(cleanupErr))
		}
	}
	return err
}

// Version reports the native FMI version string.
func (f *FMU) Version() string {
	return f.Table.GetVersion()
}

// TypesPlatform reports the native types-platform token ("default" for
// standard builds).
func (f *FMU) TypesPlatform() string {
	return f.Table.GetTypesPlatform()
}

func resourcesURI(dir string) string {
	abs, err := filepath.Abs(filepath.Join(dir, "resources"))
	if err != nil {
		abs = filepath.Join(dir, "resources")
	}
	return "file://" + filepath.ToSlash(abs)
}
