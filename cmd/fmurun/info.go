package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/simbind/fmu-runtime/fmu"
	"github.com/simbind/fmu-runtime/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func runInfo(cmd *cobra.Command, args []string) error {
	f, err := fmu.Load(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	x := f.Index
	fmt.Println(headerStyle.Render(x.ModelName))
	if x.Description != "" {
		fmt.Println(dimStyle.Render(x.Description))
	}
	fmt.Printf("FMI version:     %s\n", x.FMIVersion)
	fmt.Printf("GUID:            %s\n", x.GUID)
	if x.GenerationTool != "" {
		fmt.Printf("Generated by:    %s\n", x.GenerationTool)
	}
	fmt.Printf("Native version:  %s (%s)\n", f.Version(), f.TypesPlatform())

	fmt.Println()
	fmt.Println(headerStyle.Render("Interfaces"))
	if f.Capabilities.HasModelExchange {
		fmt.Printf("  ModelExchange   %s\n", f.Capabilities.ModelExchangeIdentifier)
	}
	if f.Capabilities.HasCoSimulation {
		fmt.Printf("  CoSimulation    %s\n", f.Capabilities.CoSimulationIdentifier)
	}
	fmt.Printf("  state snapshots: %v, serialization: %v, directional derivatives: %v\n",
		f.Capabilities.CanGetAndSetState, f.Capabilities.CanSerializeState,
		f.Capabilities.ProvidesDirectionalDerivative)

	if def := x.DefaultExperiment; def != nil {
		fmt.Println()
		fmt.Println(headerStyle.Render("Default experiment"))
		printBound := func(name string, v *float64) {
			if v != nil {
				fmt.Printf("  %-10s %g\n", name, *v)
			}
		}
		printBound("start", def.StartTime)
		printBound("stop", def.StopTime)
		printBound("step", def.StepSize)
		printBound("tolerance", def.Tolerance)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("Variables (%d, %d states)", len(x.Variables), len(x.States))))
	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  ord\tvr\tname\ttype\tcausality\tvariability\tstart")
	for _, v := range x.Variables {
		fmt.Fprintf(w, "  %d\t%d\t%s\t%v\t%v\t%v\t%s\n",
			v.Ordinal, v.ValueReference, v.Name, v.Type(), v.Causality, v.Variability, startOf(v))
	}
	return w.Flush()
}

func startOf(v *model.VariableDescriptor) string {
	switch p := v.Payload.(type) {
	case *model.Real:
		if p.Start != nil {
			return fmt.Sprintf("%g", *p.Start)
		}
	case *model.Integer:
		if p.Start != nil {
			return fmt.Sprintf("%d", *p.Start)
		}
	case *model.Boolean:
		if p.Start != nil {
			return fmt.Sprintf("%v", *p.Start)
		}
	case *model.String:
		if p.Start != nil {
			return *p.Start
		}
	case *model.Enumeration:
		if p.Start != nil {
			return fmt.Sprintf("%d", *p.Start)
		}
	}
	return ""
}
