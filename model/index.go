package model

import (
	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
)

// Index is the structured in-memory form of one unit's description: the
// ordered variable sequence plus the lookup structures and derived subsets
// every other subsystem joins against.
type Index struct {
	FMIVersion              string
	ModelName               string
	GUID                    string
	Description             string
	GenerationTool          string
	NumberOfEventIndicators int

	Variables []*VariableDescriptor

	Capabilities      Capabilities
	DefaultExperiment *DefaultExperiment
	LogCategories     []string
	TypeDefinitions   map[string]*SimpleType

	// States and Derivatives are position aligned: Derivatives[i] is the
	// derivative of States[i], in discovery order.
	States      []fmuruntime.ValueReference
	Derivatives []fmuruntime.ValueReference
	Inputs      []fmuruntime.ValueReference
	Outputs     []fmuruntime.ValueReference
	Parameters  []fmuruntime.ValueReference

	DerivativeDeps DependencySet
	InitialDeps    DependencySet
	OutputDeps     DependencySet

	byName      map[string]*VariableDescriptor
	byReference map[fmuruntime.ValueReference]*VariableDescriptor
}

// ByName returns the descriptor declared under name, or nil.
func (x *Index) ByName(name string) *VariableDescriptor {
	return x.byName[name]
}

// ByReference returns a descriptor for the value reference, or nil. When
// aliases share a reference the first declaration wins.
func (x *Index) ByReference(vr fmuruntime.ValueReference) *VariableDescriptor {
	return x.byReference[vr]
}

// ByOrdinal returns the descriptor at the 1-based document-order position.
func (x *Index) ByOrdinal(ordinal int) (*VariableDescriptor, error) {
	if ordinal < 1 || ordinal > len(x.Variables) {
		return nil, errors.OutOfRange(errors.PhaseParse, []string{"ModelStructure"}, ordinal, len(x.Variables))
	}
	return x.Variables[ordinal-1], nil
}

// AllReferences returns every variable's value reference in document order.
func (x *Index) AllReferences() []fmuruntime.ValueReference {
	out := make([]fmuruntime.ValueReference, len(x.Variables))
	for i, v := range x.Variables {
		out[i] = v.ValueReference
	}
	return out
}

// finish builds the lookup maps and derived subsets after all variables are
// parsed, then verifies the cross-reference invariants.
func (x *Index) finish() error {
	x.byName = make(map[string]*VariableDescriptor, len(x.Variables))
	x.byReference = make(map[fmuruntime.ValueReference]*VariableDescriptor, len(x.Variables))

	for _, v := range x.Variables {
		if _, dup := x.byName[v.Name]; dup {
			return errors.ParseFailed([]string{"ModelVariables", v.Name}, "duplicate variable name")
		}
		x.byName[v.Name] = v
		if _, ok := x.byReference[v.ValueReference]; !ok {
			x.byReference[v.ValueReference] = v
		}
	}

	// State/derivative discovery walks the document order once. A Real
	// variable carrying a derivative ordinal registers its target as a
	// state and itself as the paired derivative; callers downstream assume
	// the two sequences stay position aligned.
	for _, v := range x.Variables {
		real, ok := v.Payload.(*Real)
		if !ok || real.DerivativeOf == 0 {
			continue
		}
		state, err := x.ByOrdinal(real.DerivativeOf)
		if err != nil {
			return err
		}
		if _, ok := state.Payload.(*Real); !ok {
			return errors.ParseFailed([]string{"ModelVariables", v.Name}, "derivative target is not Real-typed")
		}
		x.States = append(x.States, state.ValueReference)
		x.Derivatives = append(x.Derivatives, v.ValueReference)
	}

	for _, v := range x.Variables {
		switch v.Causality {
		case CausalityInput:
			x.Inputs = append(x.Inputs, v.ValueReference)
		case CausalityOutput:
			x.Outputs = append(x.Outputs, v.ValueReference)
		case CausalityParameter, CausalityCalculatedParameter:
			x.Parameters = append(x.Parameters, v.ValueReference)
		}
	}

	return nil
}
