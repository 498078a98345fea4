// Package native loads a unit's shared library and resolves its entry
// points into a capability-gated symbol table.
//
// Platform resolution (binary subdirectory, file extension) happens before
// any symbol work and fails fast on unsupported host combinations. Symbol
// resolution distinguishes three classes of entry points: mandatory
// lifecycle and typed-access entries whose absence fails the load, the
// optional string pair whose absence is merely recorded, and
// capability-gated entries where a declared-but-missing symbol downgrades
// the capability rather than failing, because binaries are not always
// faithful to their metadata.
//
// The default Library implementation wraps dlopen via purego on unix hosts
// and LoadLibrary on Windows; tests substitute the in-memory fake from
// package testbed.
package native
