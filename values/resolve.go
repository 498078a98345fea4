package values

import (
	"go.uber.org/zap"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
	"github.com/simbind/fmu-runtime/model"
)

// Selector is a symbolic identifier resolved against the index's
// precomputed subsets.
type Selector string

const (
	States      Selector = "states"
	Derivatives Selector = "derivatives"
	Inputs      Selector = "inputs"
	Outputs     Selector = "outputs"
	All         Selector = "all"
	None        Selector = "none"
)

// Resolve turns a flexible identifier into canonical value references.
// Accepted forms: nil (empty result), a single value reference, a slice of
// value references, a single variable name, a slice of names (unresolvable
// names are warned and dropped, not fatal), or a symbolic Selector.
func Resolve(x *model.Index, identifier any) ([]fmuruntime.ValueReference, error) {
	switch id := identifier.(type) {
	case nil:
		return nil, nil
	case fmuruntime.ValueReference:
		return []fmuruntime.ValueReference{id}, nil
	case uint32:
		return []fmuruntime.ValueReference{fmuruntime.ValueReference(id)}, nil
	case int:
		if id < 0 {
			return nil, errors.UnknownIdentifier(id)
		}
		return []fmuruntime.ValueReference{fmuruntime.ValueReference(id)}, nil
	case []fmuruntime.ValueReference:
		out := make([]fmuruntime.ValueReference, len(id))
		copy(out, id)
		return out, nil
	case []uint32:
		out := make([]fmuruntime.ValueReference, len(id))
		for i, vr := range id {
			out[i] = fmuruntime.ValueReference(vr)
		}
		return out, nil
	case Selector:
		return resolveSelector(x, id)
	case string:
		return resolveNames(x, []string{id}), nil
	case []string:
		return resolveNames(x, id), nil
	}
	return nil, errors.UnknownIdentifier(identifier)
}

func resolveSelector(x *model.Index, sel Selector) ([]fmuruntime.ValueReference, error) {
	switch sel {
	case States:
		return clone(x.States), nil
	case Derivatives:
		return clone(x.Derivatives), nil
	case Inputs:
		return clone(x.Inputs), nil
	case Outputs:
		return clone(x.Outputs), nil
	case All:
		return x.AllReferences(), nil
	case None:
		return []fmuruntime.ValueReference{}, nil
	}
	return nil, errors.UnknownIdentifier(sel)
}

// resolveNames drops names that do not resolve; a dropped name is a warning
// because callers routinely probe optional variables.
func resolveNames(x *model.Index, names []string) []fmuruntime.ValueReference {
	out := make([]fmuruntime.ValueReference, 0, len(names))
	for _, name := range names {
		v := x.ByName(name)
		if v == nil {
			fmuruntime.Logger().Warn("dropping unresolvable variable name",
				zap.String("name", name))
			continue
		}
		out = append(out, v.ValueReference)
	}
	return out
}

func clone(vrs []fmuruntime.ValueReference) []fmuruntime.ValueReference {
	out := make([]fmuruntime.ValueReference, len(vrs))
	copy(out, vrs)
	return out
}
