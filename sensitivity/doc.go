// Package sensitivity builds Jacobian matrices from a live component.
//
// Two strategies exist: native directional derivatives when the unit
// provides them, and central-difference sampling otherwise. Both honor the
// description's dependency metadata to skip structurally independent cells,
// which is the dominant cost lever on large variable counts.
package sensitivity
