package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // modelDescription parsing
	PhaseLoad     Phase = "load"     // library and platform resolution
	PhaseResolve  Phase = "resolve"  // symbol resolution
	PhaseRuntime  Phase = "runtime"  // lifecycle operations
	PhaseMarshal  Phase = "marshal"  // value get/set across the FFI boundary
	PhaseJacobian Phase = "jacobian" // sensitivity queries
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidData         Kind = "invalid_data"
	KindFieldMissing        Kind = "field_missing"
	KindOutOfRange          Kind = "out_of_range"
	KindUnsupportedPlatform Kind = "unsupported_platform"
	KindOpenFailed          Kind = "open_failed"
	KindMissingSymbol       Kind = "missing_symbol"
	KindInstantiation       Kind = "instantiation"
	KindInvalidState        Kind = "invalid_state"
	KindTypeMismatch        Kind = "type_mismatch"
	KindUnknownIdentifier   Kind = "unknown_identifier"
	KindNotImplemented      Kind = "not_implemented"
	KindCapabilityMissing   Kind = "capability_missing"
	KindStatus              Kind = "status"
	KindFreed               Kind = "freed"
)

// Error is the structured error type used throughout the binding layer
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	GoType  string
	FmiType string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.FmiType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.FmiType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", FMI type ")
			b.WriteString(e.FmiType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("FMI type ")
			b.WriteString(e.FmiType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.FmiType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// FmiType sets the FMI type name
func (b *Builder) FmiType(t string) *Builder {
	b.err.FmiType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// ParseFailed creates a metadata parsing error
func ParseFailed(path []string, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// FieldMissing creates a missing mandatory attribute error
func FieldMissing(path []string, fieldName string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required attribute %q not found", fieldName),
	}
}

// OutOfRange creates an out-of-range ordinal or index error
func OutOfRange(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of range (length %d)", index, length),
		Value:  index,
	}
}

// UnsupportedPlatform creates a platform resolution error
func UnsupportedPlatform(goos, goarch string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindUnsupportedPlatform,
		Detail: fmt.Sprintf("no FMI binary layout for %s/%s", goos, goarch),
	}
}

// OpenFailed creates a library open error
func OpenFailed(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindOpenFailed,
		Detail: fmt.Sprintf("open %s", path),
		Cause:  cause,
	}
}

// MissingSymbol creates a mandatory symbol resolution error
func MissingSymbol(symbol string, cause error) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindMissingSymbol,
		Detail: fmt.Sprintf("mandatory entry point %q", symbol),
		Cause:  cause,
	}
}

// Instantiation creates an instantiation failure (native returned a null handle)
func Instantiation(instanceName string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInstantiation,
		Detail: fmt.Sprintf("native instantiate returned a null handle for %q", instanceName),
	}
}

// InvalidState creates a lifecycle state violation error
func InvalidState(op, state string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindInvalidState,
		Detail: fmt.Sprintf("%s not valid in state %s", op, state),
	}
}

// Freed creates an error for operations on a freed component
func Freed(instanceName string) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindFreed,
		Detail: fmt.Sprintf("component %q has been freed", instanceName),
	}
}

// TypeMismatch creates a value marshaling type error scoped to one key
func TypeMismatch(vr uint32, index int, goType, fmiType string) *Error {
	return &Error{
		Phase:   PhaseMarshal,
		Kind:    KindTypeMismatch,
		Path:    []string{fmt.Sprintf("vr=%d", vr), fmt.Sprintf("index=%d", index)},
		GoType:  goType,
		FmiType: fmiType,
	}
}

// UnknownIdentifier creates an identifier resolution error
func UnknownIdentifier(value any) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindUnknownIdentifier,
		Detail: fmt.Sprintf("identifier %v does not resolve", value),
		Value:  value,
	}
}

// NotImplemented creates a per-key unsupported operation error
func NotImplemented(vr uint32, what string) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindNotImplemented,
		Path:   []string{fmt.Sprintf("vr=%d", vr)},
		Detail: what,
	}
}

// CapabilityMissing creates an error for calls into an absent entry point
func CapabilityMissing(phase Phase, symbol string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCapabilityMissing,
		Detail: fmt.Sprintf("entry point %q not resolved", symbol),
	}
}

// NativeStatus creates an error escalated from a native status code
func NativeStatus(op string, status fmt.Stringer) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindStatus,
		Detail: fmt.Sprintf("%s returned %s", op, status),
		Value:  status,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
