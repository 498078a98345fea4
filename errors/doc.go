// Package errors provides structured error types for the fmu-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/FMI type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseMarshal, errors.KindTypeMismatch).
//		Path("vr=42").
//		GoType("string").
//		FmiType("Real").
//		Detail("cannot convert string to Real").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(42, 0, "string", "Real")
//	err := errors.MissingSymbol("fmi2Instantiate", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
