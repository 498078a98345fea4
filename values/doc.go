// Package values is the marshaling layer between host values and the
// unit's typed native entry points.
//
// Resolve accepts the flexible identifier forms callers actually use
// (references, names, symbolic selectors) and always produces canonical
// value references. Get and Set dispatch each key over its descriptor's
// payload tag, batch per native type, and report status per key: batches
// are independent per key, never all-or-nothing.
package values
