package model

// Capabilities are the metadata-declared flags that gate optional native
// entry points. A flag being set is a claim, not a guarantee: symbol
// resolution may downgrade it when the binary does not deliver.
type Capabilities struct {
	HasModelExchange bool
	HasCoSimulation  bool

	// Model identifiers per simulation kind (binary base names).
	ModelExchangeIdentifier string
	CoSimulationIdentifier  string

	CanGetAndSetState             bool
	CanSerializeState             bool
	ProvidesDirectionalDerivative bool

	// Co-simulation specifics.
	CanHandleVariableStep     bool
	CanInterpolateInputs      bool
	MaxOutputDerivativeOrder  int
	CanRunAsynchronously      bool

	// Model-exchange specifics.
	CompletedIntegratorStepNotNeeded bool
}

// Identifier returns the binary base name for the given availability,
// preferring co-simulation when both interfaces are declared.
func (c Capabilities) Identifier() string {
	if c.HasCoSimulation {
		return c.CoSimulationIdentifier
	}
	return c.ModelExchangeIdentifier
}

// DefaultExperiment carries the description's suggested simulation window.
type DefaultExperiment struct {
	StartTime *float64
	StopTime  *float64
	Tolerance *float64
	StepSize  *float64
}

// SimpleType is a declared type from the TypeDefinitions section. Variables
// reference it by name through their declaredType attribute.
type SimpleType struct {
	Name     string
	Quantity string
	Unit     string
}
