package testbed

// Value references of the spring-damper reference unit. The unit has two
// states (position, velocity), one force input, one position output, three
// parameters, and one variable of each remaining payload type.
const (
	VRTime  = 100
	VRX1    = 1
	VRX2    = 2
	VRDerX1 = 10
	VRDerX2 = 11
	VRU     = 20
	VRY     = 30
	VRK     = 40
	VRD     = 41
	VRMass  = 42
	VRFlag  = 50
	VRLabel = 60
	VREnum  = 70
)

// Description is the reference unit's modelDescription document. The
// ModelStructure declares that der(x1) depends only on x2, which the
// sparsity tests rely on.
const Description = `<?xml version="1.0" encoding="UTF-8"?>
<fmiModelDescription fmiVersion="2.0" modelName="SpringDamper"
    guid="{8c4e810f-3df3-4a00-8276-176fa3c9f000}"
    description="Damped spring-mass oscillator with force input"
    generationTool="testbed" numberOfEventIndicators="0">
  <ModelExchange modelIdentifier="SpringDamper" providesDirectionalDerivative="true"/>
  <CoSimulation modelIdentifier="SpringDamper"
      canHandleVariableCommunicationStepSize="true"
      canGetAndSetFMUstate="true" canSerializeFMUstate="true"
      providesDirectionalDerivative="true"/>
  <LogCategories>
    <Category name="logEvents"/>
    <Category name="logStatusError"/>
  </LogCategories>
  <DefaultExperiment startTime="0.0" stopTime="10.0" tolerance="1e-6" stepSize="0.01"/>
  <ModelVariables>
    <ScalarVariable name="time" valueReference="100" causality="independent" variability="continuous">
      <Real/>
    </ScalarVariable>
    <ScalarVariable name="x1" valueReference="1" causality="local" variability="continuous" initial="exact">
      <Real start="1.0" unit="m"/>
    </ScalarVariable>
    <ScalarVariable name="x2" valueReference="2" causality="local" variability="continuous" initial="exact">
      <Real start="0.0" unit="m/s"/>
    </ScalarVariable>
    <ScalarVariable name="der(x1)" valueReference="10" causality="local" variability="continuous">
      <Real derivative="2"/>
    </ScalarVariable>
    <ScalarVariable name="der(x2)" valueReference="11" causality="local" variability="continuous">
      <Real derivative="3"/>
    </ScalarVariable>
    <ScalarVariable name="u" valueReference="20" causality="input" variability="continuous">
      <Real start="0.0" unit="N"/>
    </ScalarVariable>
    <ScalarVariable name="y" valueReference="30" causality="output" variability="continuous">
      <Real unit="m"/>
    </ScalarVariable>
    <ScalarVariable name="k" valueReference="40" causality="parameter" variability="fixed">
      <Real start="10.0" unit="N/m"/>
    </ScalarVariable>
    <ScalarVariable name="d" valueReference="41" causality="parameter" variability="fixed">
      <Real start="1.0"/>
    </ScalarVariable>
    <ScalarVariable name="m" valueReference="42" causality="parameter" variability="fixed">
      <Real start="1.0" unit="kg"/>
    </ScalarVariable>
    <ScalarVariable name="enabled" valueReference="50" causality="parameter" variability="fixed">
      <Boolean start="true"/>
    </ScalarVariable>
    <ScalarVariable name="label" valueReference="60" causality="parameter" variability="fixed">
      <String start="spring"/>
    </ScalarVariable>
    <ScalarVariable name="mode" valueReference="70" causality="local" variability="discrete">
      <Enumeration start="1" declaredType="Mode"/>
    </ScalarVariable>
  </ModelVariables>
  <ModelStructure>
    <Outputs>
      <Unknown index="7" dependencies="2" dependenciesKind="dependent"/>
    </Outputs>
    <Derivatives>
      <Unknown index="4" dependencies="3" dependenciesKind="dependent"/>
      <Unknown index="5" dependencies="2 3 6" dependenciesKind="dependent dependent dependent"/>
    </Derivatives>
  </ModelStructure>
</fmiModelDescription>
`
