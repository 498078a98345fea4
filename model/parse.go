package model

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
)

// Load walks the attributed tree of a modelDescription once and builds the
// Index. Unknown elements and attributes are warned and skipped; the
// mandatory root attributes (fmiVersion, modelName, guid) are fatal when
// absent. Dependency sections are parsed after all variables are indexed
// because their entries reference variables by document-order ordinal.
func Load(root fmuruntime.TreeReader) (*Index, error) {
	if root == nil {
		return nil, errors.ParseFailed(nil, "nil description root")
	}
	if root.Name() != "fmiModelDescription" {
		return nil, errors.ParseFailed(nil, "root element is not fmiModelDescription")
	}

	x := &Index{TypeDefinitions: map[string]*SimpleType{}}

	var err error
	if x.FMIVersion, err = requireAttr(root, "fmiVersion"); err != nil {
		return nil, err
	}
	if x.ModelName, err = requireAttr(root, "modelName"); err != nil {
		return nil, err
	}
	if x.GUID, err = requireAttr(root, "guid"); err != nil {
		return nil, err
	}
	x.Description, _ = root.Attr("description")
	x.GenerationTool, _ = root.Attr("generationTool")
	if s, ok := root.Attr("numberOfEventIndicators"); ok {
		if n, convErr := strconv.Atoi(s); convErr == nil {
			x.NumberOfEventIndicators = n
		} else {
			warnSkip("fmiModelDescription", "numberOfEventIndicators", s)
		}
	}

	var structure fmuruntime.TreeReader

	for _, child := range root.Children() {
		switch child.Name() {
		case "ModelExchange":
			parseModelExchange(child, &x.Capabilities)
		case "CoSimulation":
			parseCoSimulation(child, &x.Capabilities)
		case "ScheduledExecution":
			fmuruntime.Logger().Warn("ScheduledExecution interface is not supported, skipping",
				zap.String("model", x.ModelName))
		case "UnitDefinitions":
			// Units are carried as strings on the payloads; the unit
			// algebra itself is out of scope.
		case "TypeDefinitions":
			parseTypeDefinitions(child, x)
		case "LogCategories":
			parseLogCategories(child, x)
		case "DefaultExperiment":
			x.DefaultExperiment = parseDefaultExperiment(child)
		case "VendorAnnotations":
		case "ModelVariables":
			if err := parseVariables(child, x); err != nil {
				return nil, err
			}
		case "ModelStructure":
			// Deferred: dependency entries reference variables by ordinal,
			// so every variable must be indexed first.
			structure = child
		default:
			warnSkip("fmiModelDescription", "element", child.Name())
		}
	}

	if err := x.finish(); err != nil {
		return nil, err
	}

	if structure != nil {
		if err := parseStructure(structure, x); err != nil {
			return nil, err
		}
	}

	return x, nil
}

func requireAttr(node fmuruntime.TreeReader, name string) (string, error) {
	v, ok := node.Attr(name)
	if !ok || v == "" {
		return "", errors.FieldMissing([]string{node.Name()}, name)
	}
	return v, nil
}

func warnSkip(where, what, value string) {
	fmuruntime.Logger().Warn("skipping unrecognized description content",
		zap.String("in", where),
		zap.String(what, value))
}

func boolAttr(node fmuruntime.TreeReader, name string) bool {
	v, ok := node.Attr(name)
	return ok && v == "true"
}

func parseModelExchange(node fmuruntime.TreeReader, caps *Capabilities) {
	caps.HasModelExchange = true
	caps.ModelExchangeIdentifier, _ = node.Attr("modelIdentifier")
	caps.CompletedIntegratorStepNotNeeded = boolAttr(node, "completedIntegratorStepNotNeeded")
	mergeCommonCapabilities(node, caps)
}

func parseCoSimulation(node fmuruntime.TreeReader, caps *Capabilities) {
	caps.HasCoSimulation = true
	caps.CoSimulationIdentifier, _ = node.Attr("modelIdentifier")
	caps.CanHandleVariableStep = boolAttr(node, "canHandleVariableCommunicationStepSize")
	caps.CanInterpolateInputs = boolAttr(node, "canInterpolateInputs")
	caps.CanRunAsynchronously = boolAttr(node, "canRunAsynchronuously")
	if s, ok := node.Attr("maxOutputDerivativeOrder"); ok {
		if n, err := strconv.Atoi(s); err == nil {
			caps.MaxOutputDerivativeOrder = n
		}
	}
	mergeCommonCapabilities(node, caps)
}

// mergeCommonCapabilities ORs the flags both interface elements may carry,
// so declaring them on either interface enables the entry points.
func mergeCommonCapabilities(node fmuruntime.TreeReader, caps *Capabilities) {
	caps.CanGetAndSetState = caps.CanGetAndSetState || boolAttr(node, "canGetAndSetFMUstate")
	caps.CanSerializeState = caps.CanSerializeState || boolAttr(node, "canSerializeFMUstate")
	caps.ProvidesDirectionalDerivative = caps.ProvidesDirectionalDerivative || boolAttr(node, "providesDirectionalDerivative")
}

func parseTypeDefinitions(node fmuruntime.TreeReader, x *Index) {
	for _, st := range node.Children() {
		if st.Name() != "SimpleType" {
			warnSkip("TypeDefinitions", "element", st.Name())
			continue
		}
		name, ok := st.Attr("name")
		if !ok {
			warnSkip("TypeDefinitions", "attribute", "name")
			continue
		}
		def := &SimpleType{Name: name}
		if base := firstElement(st); base != nil {
			def.Quantity, _ = base.Attr("quantity")
			def.Unit, _ = base.Attr("unit")
		}
		x.TypeDefinitions[name] = def
	}
}

func parseLogCategories(node fmuruntime.TreeReader, x *Index) {
	for _, cat := range node.Children() {
		if cat.Name() != "Category" {
			continue
		}
		if name, ok := cat.Attr("name"); ok {
			x.LogCategories = append(x.LogCategories, name)
		}
	}
}

func parseDefaultExperiment(node fmuruntime.TreeReader) *DefaultExperiment {
	exp := &DefaultExperiment{}
	exp.StartTime = floatAttr(node, "startTime")
	exp.StopTime = floatAttr(node, "stopTime")
	exp.Tolerance = floatAttr(node, "tolerance")
	exp.StepSize = floatAttr(node, "stepSize")
	return exp
}

func floatAttr(node fmuruntime.TreeReader, name string) *float64 {
	s, ok := node.Attr(name)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		warnSkip(node.Name(), name, s)
		return nil
	}
	return &f
}

func parseVariables(node fmuruntime.TreeReader, x *Index) error {
	ordinal := 0
	for _, sv := range node.Children() {
		if sv.Name() != "ScalarVariable" {
			warnSkip("ModelVariables", "element", sv.Name())
			continue
		}
		ordinal++
		v, err := parseScalarVariable(sv, ordinal, x)
		if err != nil {
			return err
		}
		x.Variables = append(x.Variables, v)
	}
	return nil
}

func parseScalarVariable(node fmuruntime.TreeReader, ordinal int, x *Index) (*VariableDescriptor, error) {
	name, err := requireAttr(node, "name")
	if err != nil {
		return nil, err
	}
	path := []string{"ModelVariables", name}

	vrText, err := requireAttr(node, "valueReference")
	if err != nil {
		return nil, err
	}
	vr, err2 := strconv.ParseUint(vrText, 10, 32)
	if err2 != nil {
		return nil, errors.ParseFailed(path, "valueReference is not an unsigned integer: "+vrText)
	}

	v := &VariableDescriptor{
		Name:           name,
		ValueReference: fmuruntime.ValueReference(vr),
		Ordinal:        ordinal,
	}
	v.Description, _ = node.Attr("description")

	if s, ok := node.Attr("causality"); ok {
		c, known := parseCausality(s)
		if !known {
			warnSkip("ModelVariables/"+name, "causality", s)
		}
		v.Causality = c
	}
	if s, ok := node.Attr("variability"); ok {
		vv, known := parseVariability(s)
		if !known {
			warnSkip("ModelVariables/"+name, "variability", s)
		}
		v.Variability = vv
	}
	if s, ok := node.Attr("initial"); ok {
		ini, known := parseInitial(s)
		if !known {
			warnSkip("ModelVariables/"+name, "initial", s)
		}
		v.Initial = ini
	} else {
		v.Initial = defaultInitial(v.Causality, v.Variability)
	}

	typeNode := firstElement(node)
	if typeNode == nil {
		return nil, errors.ParseFailed(path, "scalar variable declares no type element")
	}
	payload, err := parsePayload(typeNode, path, x)
	if err != nil {
		return nil, err
	}
	v.Payload = payload

	if err := v.validate(); err != nil {
		return nil, err
	}
	return v, nil
}

func parsePayload(node fmuruntime.TreeReader, path []string, x *Index) (Payload, error) {
	switch node.Name() {
	case "Real":
		p := &Real{
			Start:   floatAttr(node, "start"),
			Min:     floatAttr(node, "min"),
			Max:     floatAttr(node, "max"),
			Nominal: floatAttr(node, "nominal"),
			Reinit:  boolAttr(node, "reinit"),
		}
		p.Unit, _ = node.Attr("unit")
		p.DeclaredType, _ = node.Attr("declaredType")
		if p.Unit == "" && p.DeclaredType != "" {
			if def, ok := x.TypeDefinitions[p.DeclaredType]; ok {
				p.Unit = def.Unit
			}
		}
		if s, ok := node.Attr("derivative"); ok {
			ord, err := strconv.Atoi(s)
			if err != nil || ord < 1 {
				return nil, errors.ParseFailed(path, "derivative attribute is not a positive ordinal: "+s)
			}
			p.DerivativeOf = ord
		}
		return p, nil
	case "Integer":
		return &Integer{
			Start:        intAttr(node, "start"),
			Min:          intAttr(node, "min"),
			Max:          intAttr(node, "max"),
			DeclaredType: attrOrEmpty(node, "declaredType"),
		}, nil
	case "Boolean":
		p := &Boolean{}
		if s, ok := node.Attr("start"); ok {
			b := s == "true"
			p.Start = &b
		}
		return p, nil
	case "String":
		p := &String{}
		if s, ok := node.Attr("start"); ok {
			p.Start = &s
		}
		return p, nil
	case "Enumeration":
		return &Enumeration{
			Start:        intAttr(node, "start"),
			Min:          intAttr(node, "min"),
			Max:          intAttr(node, "max"),
			DeclaredType: attrOrEmpty(node, "declaredType"),
		}, nil
	}
	return nil, errors.ParseFailed(path, "unknown variable type element "+node.Name())
}

func intAttr(node fmuruntime.TreeReader, name string) *int32 {
	s, ok := node.Attr(name)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		warnSkip(node.Name(), name, s)
		return nil
	}
	v := int32(n)
	return &v
}

func attrOrEmpty(node fmuruntime.TreeReader, name string) string {
	s, _ := node.Attr(name)
	return s
}

func firstElement(node fmuruntime.TreeReader) fmuruntime.TreeReader {
	children := node.Children()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

func parseStructure(node fmuruntime.TreeReader, x *Index) error {
	for _, section := range node.Children() {
		var target *DependencySet
		switch section.Name() {
		case "Outputs":
			target = &x.OutputDeps
		case "Derivatives":
			target = &x.DerivativeDeps
		case "InitialUnknowns":
			target = &x.InitialDeps
		default:
			warnSkip("ModelStructure", "element", section.Name())
			continue
		}
		set, err := parseDependencySection(section, x)
		if err != nil {
			return err
		}
		*target = set
	}
	return nil
}

func parseDependencySection(section fmuruntime.TreeReader, x *Index) (DependencySet, error) {
	set := DependencySet{}
	for _, unknown := range section.Children() {
		if unknown.Name() != "Unknown" {
			warnSkip(section.Name(), "element", unknown.Name())
			continue
		}
		entry, err := parseUnknown(unknown, section.Name(), x)
		if err != nil {
			return nil, err
		}
		set[entry.Dependent] = entry
	}
	return set, nil
}

func parseUnknown(node fmuruntime.TreeReader, section string, x *Index) (*DependencyEntry, error) {
	path := []string{"ModelStructure", section}

	idxText, err := requireAttr(node, "index")
	if err != nil {
		return nil, err
	}
	ord, convErr := strconv.Atoi(idxText)
	if convErr != nil {
		return nil, errors.ParseFailed(path, "index is not an integer: "+idxText)
	}
	dep, err := x.ByOrdinal(ord)
	if err != nil {
		return nil, err
	}

	entry := &DependencyEntry{Dependent: dep.ValueReference}

	depsText, hasDeps := node.Attr("dependencies")
	if !hasDeps {
		// Absent attribute: conservative full dependency.
		return entry, nil
	}

	fields := strings.Fields(depsText)
	entry.Independents = make([]fmuruntime.ValueReference, 0, len(fields))
	entry.Kinds = make([]DependencyKind, 0, len(fields))

	kindFields := strings.Fields(attrOrEmpty(node, "dependenciesKind"))
	if len(kindFields) > 0 && len(kindFields) != len(fields) {
		return nil, errors.ParseFailed(path, "dependenciesKind length does not match dependencies")
	}

	for i, f := range fields {
		ord, convErr := strconv.Atoi(f)
		if convErr != nil {
			return nil, errors.ParseFailed(path, "dependency ordinal is not an integer: "+f)
		}
		ind, err := x.ByOrdinal(ord)
		if err != nil {
			return nil, err
		}
		entry.Independents = append(entry.Independents, ind.ValueReference)

		kind := DependencyDependent
		if len(kindFields) > 0 {
			k, known := parseDependencyKind(kindFields[i])
			if !known {
				warnSkip(section, "dependenciesKind", kindFields[i])
			}
			kind = k
		}
		entry.Kinds = append(entry.Kinds, kind)
	}
	return entry, nil
}
