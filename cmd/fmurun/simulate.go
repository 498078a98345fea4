package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/fmu"
	"github.com/simbind/fmu-runtime/model"
	"github.com/simbind/fmu-runtime/values"
)

var csvOut bool

func runSimulate(cmd *cobra.Command, args []string) error {
	exp, err := loadExperiment(configFile)
	if err != nil {
		return fmt.Errorf("load experiment: %w", err)
	}

	f, err := fmu.Load(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if !f.Capabilities.HasCoSimulation {
		return fmt.Errorf("%s declares no co-simulation interface", f.Index.ModelName)
	}

	c, err := f.Instantiate(f.Index.ModelName, fmuruntime.CoSimulation, nil)
	if err != nil {
		return err
	}

	start, stop, step, tol := exp.resolveBounds(f.Index.DefaultExperiment)

	if st, err := c.SetupExperiment(start, &stop, tol); err != nil || st.Bad() {
		return fail("setup experiment", st, err)
	}
	if st, err := c.EnterInitializationMode(); err != nil || st.Bad() {
		return fail("enter initialization", st, err)
	}
	if err := applyByName(c, exp.Parameters); err != nil {
		return err
	}
	if err := applyByName(c, exp.Inputs); err != nil {
		return err
	}
	if st, err := c.ExitInitializationMode(); err != nil || st.Bad() {
		return fail("exit initialization", st, err)
	}

	outputs := exp.Outputs
	if len(outputs) == 0 {
		for _, vr := range f.Index.Outputs {
			outputs = append(outputs, f.Index.ByReference(vr).Name)
		}
	}
	keys, err := values.Resolve(f.Index, outputs)
	if err != nil {
		return err
	}

	every := exp.Every
	if every < 1 {
		every = 1
	}

	if csvOut {
		fmt.Printf("time,%s\n", strings.Join(outputs, ","))
	} else {
		fmt.Println(headerStyle.Render(fmt.Sprintf("%s  %g .. %g, step %g", f.Index.ModelName, start, stop, step)))
		fmt.Printf("%-12s %s\n", "time", strings.Join(outputs, " "))
	}

	printRow := func(tNow float64) error {
		row, statuses, err := values.Get(c, keys)
		if err != nil {
			return err
		}
		fields := make([]string, len(row))
		for i, v := range row {
			if statuses[i].Bad() {
				fields[i] = "?"
				continue
			}
			fields[i] = fmt.Sprintf("%v", v)
		}
		if csvOut {
			fmt.Printf("%g,%s\n", tNow, strings.Join(fields, ","))
			return nil
		}
		fmt.Printf("%-12.6g %s\n", tNow, strings.Join(fields, " "))
		return nil
	}

	if err := printRow(start); err != nil {
		return err
	}
	tNow := start
	for i := 0; tNow < stop; i++ {
		st, err := c.DoStep(tNow, step, true)
		if err != nil {
			return err
		}
		if st.Bad() {
			return fmt.Errorf("step at t=%g returned %v", tNow, st)
		}
		tNow += step
		if (i+1)%every == 0 {
			if err := printRow(tNow); err != nil {
				return err
			}
		}
	}

	if st, err := c.Terminate(); err != nil || st.Bad() {
		return fail("terminate", st, err)
	}
	return nil
}

// applyByName writes name/value pairs in a stable order, coercing YAML
// scalars to the Go type each variable's payload expects.
func applyByName(c *fmu.Component, assignments map[string]any) error {
	if len(assignments) == 0 {
		return nil
	}
	names := make([]string, 0, len(assignments))
	for name := range assignments {
		names = append(names, name)
	}
	sort.Strings(names)

	x := c.Index()
	keys := make([]fmuruntime.ValueReference, 0, len(names))
	vals := make([]any, 0, len(names))
	for _, name := range names {
		v := x.ByName(name)
		if v == nil {
			return fmt.Errorf("no variable named %q", name)
		}
		coerced, ok := coerce(assignments[name], v.Type())
		if !ok {
			return fmt.Errorf("%s: cannot use %T as %v", name, assignments[name], v.Type())
		}
		keys = append(keys, v.ValueReference)
		vals = append(vals, coerced)
	}

	statuses, err := values.Set(c, keys, vals)
	if err != nil {
		return err
	}
	for i, st := range statuses {
		if st.Bad() {
			return fmt.Errorf("set %s returned %v", names[i], st)
		}
	}
	return nil
}

func coerce(v any, t model.VariableType) (any, bool) {
	switch t {
	case model.TypeReal:
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		}
	case model.TypeInteger:
		if n, ok := v.(int); ok {
			return int32(n), true
		}
	case model.TypeBoolean:
		if b, ok := v.(bool); ok {
			return b, true
		}
	case model.TypeString:
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return nil, false
}

func fail(op string, st fmuruntime.Status, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s returned %v", op, st)
}
