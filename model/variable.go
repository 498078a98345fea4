package model

import (
	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
)

// Causality is a variable's role in the model.
type Causality int

const (
	CausalityLocal Causality = iota
	CausalityInput
	CausalityOutput
	CausalityParameter
	CausalityCalculatedParameter
	CausalityIndependent
)

func (c Causality) String() string {
	switch c {
	case CausalityLocal:
		return "local"
	case CausalityInput:
		return "input"
	case CausalityOutput:
		return "output"
	case CausalityParameter:
		return "parameter"
	case CausalityCalculatedParameter:
		return "calculatedParameter"
	case CausalityIndependent:
		return "independent"
	default:
		return "unknown"
	}
}

func parseCausality(s string) (Causality, bool) {
	switch s {
	case "", "local":
		return CausalityLocal, true
	case "input":
		return CausalityInput, true
	case "output":
		return CausalityOutput, true
	case "parameter":
		return CausalityParameter, true
	case "calculatedParameter":
		return CausalityCalculatedParameter, true
	case "independent":
		return CausalityIndependent, true
	}
	return CausalityLocal, false
}

// Variability describes when a variable's value may change.
type Variability int

const (
	VariabilityContinuous Variability = iota
	VariabilityConstant
	VariabilityFixed
	VariabilityTunable
	VariabilityDiscrete
)

func (v Variability) String() string {
	switch v {
	case VariabilityContinuous:
		return "continuous"
	case VariabilityConstant:
		return "constant"
	case VariabilityFixed:
		return "fixed"
	case VariabilityTunable:
		return "tunable"
	case VariabilityDiscrete:
		return "discrete"
	default:
		return "unknown"
	}
}

func parseVariability(s string) (Variability, bool) {
	switch s {
	case "", "continuous":
		return VariabilityContinuous, true
	case "constant":
		return VariabilityConstant, true
	case "fixed":
		return VariabilityFixed, true
	case "tunable":
		return VariabilityTunable, true
	case "discrete":
		return VariabilityDiscrete, true
	}
	return VariabilityContinuous, false
}

// Initial is the initial-value policy of a variable.
type Initial int

const (
	InitialNone Initial = iota
	InitialExact
	InitialApprox
	InitialCalculated
)

func (i Initial) String() string {
	switch i {
	case InitialExact:
		return "exact"
	case InitialApprox:
		return "approx"
	case InitialCalculated:
		return "calculated"
	default:
		return "none"
	}
}

func parseInitial(s string) (Initial, bool) {
	switch s {
	case "":
		return InitialNone, true
	case "exact":
		return InitialExact, true
	case "approx":
		return InitialApprox, true
	case "calculated":
		return InitialCalculated, true
	}
	return InitialNone, false
}

// VariableType tags the payload variant of a descriptor.
type VariableType int

const (
	TypeReal VariableType = iota
	TypeInteger
	TypeBoolean
	TypeString
	TypeEnumeration
)

func (t VariableType) String() string {
	switch t {
	case TypeReal:
		return "Real"
	case TypeInteger:
		return "Integer"
	case TypeBoolean:
		return "Boolean"
	case TypeString:
		return "String"
	case TypeEnumeration:
		return "Enumeration"
	default:
		return "unknown"
	}
}

// Payload is the closed variant set of per-type variable attributes.
// Exactly one payload is populated per descriptor.
type Payload interface {
	isPayload()
	Type() VariableType
}

// Real carries the attributes of a Real-typed variable. DerivativeOf, when
// non-zero, is the 1-based document-order ordinal of the state variable this
// variable differentiates.
type Real struct {
	Start        *float64
	Min          *float64
	Max          *float64
	Nominal      *float64
	Unit         string
	DeclaredType string
	DerivativeOf int
	Reinit       bool
}

func (*Real) isPayload()         {}
func (*Real) Type() VariableType { return TypeReal }

// Integer carries the attributes of an Integer-typed variable.
type Integer struct {
	Start        *int32
	Min          *int32
	Max          *int32
	DeclaredType string
}

func (*Integer) isPayload()         {}
func (*Integer) Type() VariableType { return TypeInteger }

// Boolean carries the attributes of a Boolean-typed variable.
type Boolean struct {
	Start *bool
}

func (*Boolean) isPayload()         {}
func (*Boolean) Type() VariableType { return TypeBoolean }

// String carries the attributes of a String-typed variable.
type String struct {
	Start *string
}

func (*String) isPayload()         {}
func (*String) Type() VariableType { return TypeString }

// Enumeration carries the attributes of an Enumeration-typed variable.
type Enumeration struct {
	Start        *int32
	Min          *int32
	Max          *int32
	DeclaredType string
}

func (*Enumeration) isPayload()         {}
func (*Enumeration) Type() VariableType { return TypeEnumeration }

// VariableDescriptor is one declared model variable: its unique name, its
// canonical value reference, its roles, and exactly one type payload.
type VariableDescriptor struct {
	Name           string
	ValueReference fmuruntime.ValueReference
	Description    string
	Causality      Causality
	Variability    Variability
	Initial        Initial
	Payload        Payload

	// Ordinal is the dense 1-based document-order position used as the
	// join key for index-based dependency references.
	Ordinal int
}

// Type returns the payload's variant tag.
func (v *VariableDescriptor) Type() VariableType {
	return v.Payload.Type()
}

// validate enforces the causality/variability rules of the FMI 2.0
// standard that this layer depends on downstream.
func (v *VariableDescriptor) validate() error {
	path := []string{"ModelVariables", v.Name}

	switch v.Causality {
	case CausalityIndependent:
		if v.Variability != VariabilityContinuous {
			return errors.ParseFailed(path, "independent variable must have continuous variability")
		}
		if v.Initial != InitialNone {
			return errors.ParseFailed(path, "independent variable must not declare an initial policy")
		}
	case CausalityParameter:
		if v.Variability != VariabilityFixed && v.Variability != VariabilityTunable {
			return errors.ParseFailed(path, "parameter must have fixed or tunable variability")
		}
	case CausalityInput:
		if v.Variability != VariabilityDiscrete && v.Variability != VariabilityContinuous {
			return errors.ParseFailed(path, "input must have discrete or continuous variability")
		}
	}

	if v.Variability == VariabilityContinuous && v.Type() != TypeReal {
		return errors.ParseFailed(path, "only Real variables may be continuous")
	}

	return nil
}

// defaultInitial returns the standard's default initial policy for a
// causality/variability combination when the attribute is omitted.
func defaultInitial(c Causality, v Variability) Initial {
	switch c {
	case CausalityParameter:
		return InitialExact
	case CausalityCalculatedParameter:
		return InitialCalculated
	case CausalityInput, CausalityIndependent:
		return InitialNone
	}
	if v == VariabilityConstant {
		return InitialExact
	}
	return InitialCalculated
}
