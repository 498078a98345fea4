package native

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/simbind/fmu-runtime/errors"
)

// Platform describes where inside a staged FMU the native binary for the
// current host lives. Dir is the FMI 2.0 directory name; Alternates are the
// FMI 3 style names some packagers use instead; Ext is the shared-library
// extension without the dot.
type Platform struct {
	Dir        string
	Alternates []string
	Ext        string
}

// CurrentPlatform resolves the binary subdirectory and extension for the
// host. It is a pure function of operating system and pointer width; an
// unsupported combination fails before any library resolution is attempted.
func CurrentPlatform() (Platform, error) {
	return platformFor(runtime.GOOS, runtime.GOARCH)
}

func platformFor(goos, goarch string) (Platform, error) {
	switch goos {
	case "windows":
		switch goarch {
		case "amd64":
			return Platform{Dir: "win64", Alternates: []string{"x86_64-windows"}, Ext: "dll"}, nil
		case "386":
			return Platform{Dir: "win32", Alternates: []string{"i686-windows"}, Ext: "dll"}, nil
		}
	case "linux":
		switch goarch {
		case "amd64":
			return Platform{Dir: "linux64", Alternates: []string{"x86_64-linux"}, Ext: "so"}, nil
		case "386":
			return Platform{Dir: "linux32", Alternates: []string{"i686-linux"}, Ext: "so"}, nil
		case "arm64":
			return Platform{Dir: "linux64", Alternates: []string{"aarch64-linux"}, Ext: "so"}, nil
		}
	case "darwin":
		switch goarch {
		case "amd64":
			return Platform{Dir: "darwin64", Alternates: []string{"x86_64-darwin"}, Ext: "dylib"}, nil
		case "arm64":
			return Platform{Dir: "darwin64", Alternates: []string{"aarch64-darwin"}, Ext: "dylib"}, nil
		}
	}
	return Platform{}, errors.UnsupportedPlatform(goos, goarch)
}

// BinaryPath locates the unit's shared library under the staged directory,
// probing the canonical directory name first and any alternates second.
func BinaryPath(stagedDir, modelIdentifier string, p Platform) (string, error) {
	dirs := append([]string{p.Dir}, p.Alternates...)
	var tried []string
	for _, d := range dirs {
		path := filepath.Join(stagedDir, "binaries", d, modelIdentifier+"."+p.Ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		tried = append(tried, path)
	}
	return "", errors.New(errors.PhaseLoad, errors.KindOpenFailed).
		Detail("no binary for %s under %v", modelIdentifier, tried).
		Build()
}
