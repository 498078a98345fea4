package main

import (
	"fmt"

	"github.com/spf13/cobra"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/fmu"
	"github.com/simbind/fmu-runtime/sensitivity"
	"github.com/simbind/fmu-runtime/values"
)

var forceNumeric bool

func runJacobian(cmd *cobra.Command, args []string) error {
	f, err := fmu.Load(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	kind := fmuruntime.CoSimulation
	if !f.Capabilities.HasCoSimulation {
		kind = fmuruntime.ModelExchange
	}
	c, err := f.Instantiate(f.Index.ModelName, kind, nil)
	if err != nil {
		return err
	}
	if st, err := c.EnterInitializationMode(); err != nil || st.Bad() {
		return fail("enter initialization", st, err)
	}
	if st, err := c.ExitInitializationMode(); err != nil || st.Bad() {
		return fail("exit initialization", st, err)
	}

	dependents, err := values.Resolve(f.Index, values.Derivatives)
	if err != nil {
		return err
	}
	states, err := values.Resolve(f.Index, values.States)
	if err != nil {
		return err
	}
	inputs, err := values.Resolve(f.Index, values.Inputs)
	if err != nil {
		return err
	}
	independents := append(states, inputs...)

	if len(dependents) == 0 || len(independents) == 0 {
		return fmt.Errorf("%s declares no states to differentiate", f.Index.ModelName)
	}

	m, err := sensitivity.Jacobian(c, dependents, independents,
		&sensitivity.Options{ForceNumeric: forceNumeric})
	if err != nil {
		return err
	}

	method := "directional derivatives"
	if forceNumeric || !f.Capabilities.ProvidesDirectionalDerivative {
		method = "central differences"
	}
	fmt.Println(headerStyle.Render(fmt.Sprintf("d(derivatives)/d(states, inputs) via %s", method)))

	fmt.Printf("%-14s", "")
	for _, vr := range independents {
		fmt.Printf(" %12s", f.Index.ByReference(vr).Name)
	}
	fmt.Println()
	for i, vr := range dependents {
		fmt.Printf("%-14s", f.Index.ByReference(vr).Name)
		for j := 0; j < m.Cols; j++ {
			fmt.Printf(" %12.6g", m.At(i, j))
		}
		fmt.Println()
	}
	return nil
}
