package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/simbind/fmu-runtime/model"
)

// Experiment is the YAML shape of one co-simulation run. Unset bounds fall
// back to the unit's DefaultExperiment, then to fixed defaults.
type Experiment struct {
	StartTime *float64 `yaml:"start_time"`
	StopTime  *float64 `yaml:"stop_time"`
	StepSize  *float64 `yaml:"step_size"`
	Tolerance *float64 `yaml:"tolerance"`

	// Parameters and Inputs are applied by variable name before leaving
	// initialization mode. Values are YAML scalars matched against the
	// variable's declared type.
	Parameters map[string]any `yaml:"parameters"`
	Inputs     map[string]any `yaml:"inputs"`

	// Outputs lists the variable names sampled each communication point.
	// Empty means the unit's declared outputs.
	Outputs []string `yaml:"outputs"`

	// Every is the sampling stride in communication steps.
	Every int `yaml:"every"`
}

func loadExperiment(path string) (*Experiment, error) {
	exp := &Experiment{}
	if path == "" {
		return exp, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// resolveBounds merges the config with the description's defaults.
func (e *Experiment) resolveBounds(def *model.DefaultExperiment) (start, stop, step float64, tol *float64) {
	start, stop, step = 0.0, 1.0, 0.01
	if def != nil {
		if def.StartTime != nil {
			start = *def.StartTime
		}
		if def.StopTime != nil {
			stop = *def.StopTime
		}
		if def.StepSize != nil {
			step = *def.StepSize
		}
		tol = def.Tolerance
	}
	if e.StartTime != nil {
		start = *e.StartTime
	}
	if e.StopTime != nil {
		stop = *e.StopTime
	}
	if e.StepSize != nil {
		step = *e.StepSize
	}
	if e.Tolerance != nil {
		tol = e.Tolerance
	}
	return start, stop, step, tol
}
