// Package fmuruntime provides a Go binding layer for FMI 2.0 Functional
// Mock-up Units.
//
// The library loads a staged (unpacked) FMU directory, parses its
// modelDescription.xml into a structured index, resolves the unit's native
// entry points from its shared library, and drives instantiated components
// through the FMI lifecycle: initialization, stepping or continuous-time
// integration, value exchange, and sensitivity queries.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	fmu-runtime/         Root package with Status codes and the TreeReader
//	                     and Library collaborator interfaces
//	├── fmu/             High-level API: FMU handle, Component lifecycle
//	├── model/           modelDescription.xml parsing into an Index
//	├── native/          Platform resolution and the capability-gated
//	                     symbol table over the unit's shared library
//	├── values/          Typed batched get/set and identifier resolution
//	├── sensitivity/     Jacobian construction (analytic and numeric)
//	├── xmltree/         etree-backed TreeReader adapter
//	├── errors/          Structured error types for debugging
//	└── testbed/         In-memory fake unit used by integration tests
//
// # Quick Start
//
// Load a staged FMU and step it:
//
//	unit, err := fmu.Load("spring_damper")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer unit.Close()
//
//	comp, err := unit.Instantiate("inst0", fmuruntime.CoSimulation, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer comp.Free()
//
//	stop, tol := 10.0, 1e-6
//	comp.SetupExperiment(0, &stop, &tol)
//	comp.EnterInitializationMode()
//	comp.ExitInitializationMode()
//	for t := 0.0; t < 10; t += 0.01 {
//	    comp.DoStep(t, 0.01, true)
//	}
//
// # Thread Safety
//
// Native units are not assumed re-entrant. All calls into one FMU's symbol
// table must be serialized by the caller; the binding layer adds no internal
// locking around native calls. Only the live-component registry is guarded,
// and only against itself.
package fmuruntime
