package fmuruntime

// Status mirrors the fmi2Status enum. Values match the C ABI and are
// propagated verbatim from native calls.
type Status int32

const (
	StatusOK      Status = 0
	StatusWarning Status = 1
	StatusDiscard Status = 2
	StatusError   Status = 3
	StatusFatal   Status = 4
	StatusPending Status = 5
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "Warning"
	case StatusDiscard:
		return "Discard"
	case StatusError:
		return "Error"
	case StatusFatal:
		return "Fatal"
	case StatusPending:
		return "Pending"
	default:
		return "Unknown"
	}
}

// Bad reports whether the status means subsequent values for the same key
// cannot be relied on.
func (s Status) Bad() bool {
	return s == StatusError || s == StatusFatal
}

// Kind selects which simulation interface of the unit to instantiate.
// Values match the fmi2Type enum.
type Kind int32

const (
	ModelExchange Kind = 0
	CoSimulation  Kind = 1
)

func (k Kind) String() string {
	switch k {
	case ModelExchange:
		return "ModelExchange"
	case CoSimulation:
		return "CoSimulation"
	default:
		return "Unknown"
	}
}

// ValueReference is the canonical numeric key identifying one variable
// inside a unit. It is not guaranteed unique across name aliases.
type ValueReference uint32

// TreeReader is the attributed-tree view of the unit's XML description.
// The concrete XML library is an external collaborator; see package xmltree
// for the default adapter.
type TreeReader interface {
	// Name returns the element tag.
	Name() string
	// Attr returns an attribute value and whether it was present.
	Attr(name string) (string, bool)
	// Children returns all child elements in document order.
	Children() []TreeReader
	// FirstChild returns the first child element with the given tag, or nil.
	FirstChild(name string) TreeReader
}

// Library is the dynamic-library collaborator the symbol table resolves
// against. The default implementation (package native) wraps dlopen; tests
// substitute an in-memory fake.
type Library interface {
	// Bind resolves a symbol and populates fnptr, which must be a pointer
	// to a function variable with the entry point's signature.
	Bind(symbol string, fnptr any) error
	// Has reports whether a symbol resolves without binding it.
	Has(symbol string) bool
	// Close unloads the library. No bound function may be called afterward.
	Close() error
}
