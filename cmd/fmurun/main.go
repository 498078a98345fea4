// fmurun loads a staged FMU and drives it from the command line: inspect
// the model description, run a co-simulation experiment, or print the
// sensitivity matrix at the initial operating point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fmuruntime "github.com/simbind/fmu-runtime"
)

var (
	verbose    bool
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fmurun",
		Short: "FMI 2.0 co-simulation runner",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				return nil
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			fmuruntime.SetLogger(logger)
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log parser warnings and native log callbacks")

	infoCmd := &cobra.Command{
		Use:   "info [fmu-dir]",
		Short: "print the unit's description and resolved capabilities",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	simulateCmd := &cobra.Command{
		Use:   "simulate [fmu-dir]",
		Short: "run a co-simulation experiment",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulate,
	}
	simulateCmd.Flags().StringVarP(&configFile, "config", "c", "", "experiment config file (YAML)")
	simulateCmd.Flags().BoolVar(&csvOut, "csv", false, "emit comma-separated values without styling")

	jacobianCmd := &cobra.Command{
		Use:   "jacobian [fmu-dir]",
		Short: "print d(derivatives)/d(states, inputs) at the initial point",
		Args:  cobra.ExactArgs(1),
		RunE:  runJacobian,
	}
	jacobianCmd.Flags().BoolVar(&forceNumeric, "numeric", false, "central-difference even when the unit provides directional derivatives")

	rootCmd.AddCommand(infoCmd, simulateCmd, jacobianCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
