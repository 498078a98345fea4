package model

import (
	fmuruntime "github.com/simbind/fmu-runtime"
)

// DependencyKind tags one dependent/independent pair in a dependency entry.
type DependencyKind int

const (
	DependencyDependent DependencyKind = iota
	DependencyConstant
	DependencyFixed
	DependencyTunable
	DependencyDiscrete
)

func (k DependencyKind) String() string {
	switch k {
	case DependencyDependent:
		return "dependent"
	case DependencyConstant:
		return "constant"
	case DependencyFixed:
		return "fixed"
	case DependencyTunable:
		return "tunable"
	case DependencyDiscrete:
		return "discrete"
	default:
		return "unknown"
	}
}

func parseDependencyKind(s string) (DependencyKind, bool) {
	switch s {
	case "dependent":
		return DependencyDependent, true
	case "constant":
		return DependencyConstant, true
	case "fixed":
		return DependencyFixed, true
	case "tunable":
		return DependencyTunable, true
	case "discrete":
		return DependencyDiscrete, true
	}
	return DependencyDependent, false
}

// DependencyEntry states which independent variables one dependent variable
// structurally depends on. Independents == nil means the dependencies
// attribute was absent: the variable depends on everything.
type DependencyEntry struct {
	Dependent    fmuruntime.ValueReference
	Independents []fmuruntime.ValueReference
	Kinds        []DependencyKind
}

// Full reports whether the entry declares full (unknown) dependency.
func (e *DependencyEntry) Full() bool {
	return e.Independents == nil
}

// DependencySet indexes dependency entries by dependent value reference.
// One set exists for each of the three ModelStructure sections.
type DependencySet map[fmuruntime.ValueReference]*DependencyEntry

// DependsOn reports whether dep may vary with ind. A missing entry or an
// entry with an absent dependency list is the conservative full-dependency
// default. Pairs tagged constant do not count as a dependency.
func (s DependencySet) DependsOn(dep, ind fmuruntime.ValueReference) bool {
	entry, ok := s[dep]
	if !ok || entry.Full() {
		return true
	}
	for i, vr := range entry.Independents {
		if vr != ind {
			continue
		}
		return entry.Kinds[i] != DependencyConstant
	}
	return false
}
