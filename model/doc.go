// Package model parses an FMU's modelDescription into a structured Index.
//
// Use Load with any TreeReader implementation (package xmltree provides the
// default) to walk the description once. Variables receive dense 1-based
// document-order ordinals; the ModelStructure dependency sections reference
// variables by those ordinals, so their parsing is deferred until every
// variable is indexed.
//
// The Index exposes two distinct lookup tables on purpose: ordinal to
// descriptor for dependency joins and value reference to descriptor for
// runtime marshaling. The two key spaces are not interchangeable.
package model
