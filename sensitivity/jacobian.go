package sensitivity

import (
	"math"

	fmuruntime "github.com/simbind/fmu-runtime"
	"github.com/simbind/fmu-runtime/errors"
	"github.com/simbind/fmu-runtime/fmu"
	"github.com/simbind/fmu-runtime/model"
	"github.com/simbind/fmu-runtime/values"
)

// Options adjusts Jacobian construction.
type Options struct {
	// Steps supplies an explicit perturbation step per independent
	// variable for the numeric path. Missing or zero entries fall back to
	// the default step.
	Steps []float64

	// ForceNumeric samples even when the unit provides analytic
	// directional derivatives. Used for cross-validation.
	ForceNumeric bool
}

// Jacobian builds the dense sensitivity matrix d(dependents)/d(independents)
// for the component's current operating point. The analytic path issues one
// native directional-derivative call per independent variable with a unit
// seed; the numeric path central-differences each independent and restores
// its original value before moving on, so perturbations never compound.
// Dependency metadata, when present for a dependent, prunes which rows are
// computed per column; pruned cells stay at the zero the fresh matrix
// carries. Zero-sized requests return a zero-dimension matrix without any
// native call.
func Jacobian(c *fmu.Component, dependents, independents []fmuruntime.ValueReference, opts *Options) (*Matrix, error) {
	m := NewMatrix(len(dependents), len(independents))
	if len(dependents) == 0 || len(independents) == 0 {
		return m, nil
	}
	if err := c.Usable(); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &Options{}
	}
	if len(opts.Steps) > 0 && len(opts.Steps) != len(independents) {
		return nil, errors.New(errors.PhaseJacobian, errors.KindInvalidData).
			Detail("%d steps for %d independents", len(opts.Steps), len(independents)).Build()
	}

	analytic := !opts.ForceNumeric &&
		c.FMU().Capabilities.ProvidesDirectionalDerivative &&
		c.Table().GetDirectionalDerivative != nil

	if analytic {
		return m, analyticColumns(c, m, dependents, independents)
	}
	return m, numericColumns(c, m, dependents, independents, opts.Steps)
}

// analyticColumns fills one column per independent via the native
// directional-derivative entry with a unit seed.
func analyticColumns(c *fmu.Component, m *Matrix, dependents, independents []fmuruntime.ValueReference) error {
	t := c.Table()
	seed := []float64{1.0}
	known := make([]uint32, 1)

	for j, ind := range independents {
		rows, rowVRs := activeRows(c.Index(), dependents, ind)
		if len(rows) == 0 {
			continue
		}
		known[0] = uint32(ind)
		col := make([]float64, len(rows))
		st := fmuruntime.Status(t.GetDirectionalDerivative(c.Handle(),
			rowVRs, uintptr(len(rowVRs)), known, 1, seed, col))
		if st.Bad() {
			return errors.Wrap(errors.PhaseJacobian, errors.KindStatus, nil,
				"fmi2GetDirectionalDerivative returned "+st.String())
		}
		for i, row := range rows {
			m.Set(row, j, col[i])
		}
	}
	return nil
}

// numericColumns fills one column per independent by central difference.
func numericColumns(c *fmu.Component, m *Matrix, dependents, independents []fmuruntime.ValueReference, steps []float64) error {
	for j, ind := range independents {
		rows, rowVRs := activeRows(c.Index(), dependents, ind)
		if len(rows) == 0 {
			continue
		}

		orig, st, err := values.GetReals(c, []fmuruntime.ValueReference{ind})
		if err != nil {
			return err
		}
		if st.Bad() {
			return errors.NativeStatus("fmi2GetReal", st)
		}

		h := 0.0
		if len(steps) > 0 {
			h = steps[j]
		}
		if h == 0 {
			h = defaultStep(orig[0])
		}

		plus, sampleErr := sampleAt(c, ind, orig[0]+h, rowVRs)
		var minus []float64
		if sampleErr == nil {
			minus, sampleErr = sampleAt(c, ind, orig[0]-h, rowVRs)
		}

		// Restore before the next column, and on failed samples too, so
		// perturbations never compound or leak into the operating point.
		// A failed sample keeps its own error over the restore's.
		if st, err := values.SetReals(c, []fmuruntime.ValueReference{ind}, orig); err != nil {
			if sampleErr == nil {
				sampleErr = err
			}
		} else if st.Bad() && sampleErr == nil {
			sampleErr = errors.NativeStatus("fmi2SetReal", st)
		}
		if sampleErr != nil {
			return sampleErr
		}

		for i, row := range rows {
			m.Set(row, j, (plus[i]-minus[i])/(2*h))
		}
	}
	return nil
}

func sampleAt(c *fmu.Component, ind fmuruntime.ValueReference, x float64, rowVRs []uint32) ([]float64, error) {
	if st, err := values.SetReals(c, []fmuruntime.ValueReference{ind}, []float64{x}); err != nil {
		return nil, err
	} else if st.Bad() {
		return nil, errors.NativeStatus("fmi2SetReal", st)
	}

	vrs := make([]fmuruntime.ValueReference, len(rowVRs))
	for i, vr := range rowVRs {
		vrs[i] = fmuruntime.ValueReference(vr)
	}
	out, st, err := values.GetReals(c, vrs)
	if err != nil {
		return nil, err
	}
	if st.Bad() {
		return nil, errors.NativeStatus("fmi2GetReal", st)
	}
	return out, nil
}

// activeRows prunes the dependent rows for one independent using the
// declared dependency metadata. A dependent without an entry in any
// dependency set keeps the conservative full-dependency default.
func activeRows(x *model.Index, dependents []fmuruntime.ValueReference, ind fmuruntime.ValueReference) ([]int, []uint32) {
	rows := make([]int, 0, len(dependents))
	vrs := make([]uint32, 0, len(dependents))
	for i, dep := range dependents {
		if dependsOn(x, dep, ind) {
			rows = append(rows, i)
			vrs = append(vrs, uint32(dep))
		}
	}
	return rows, vrs
}

func dependsOn(x *model.Index, dep, ind fmuruntime.ValueReference) bool {
	for _, set := range []model.DependencySet{x.DerivativeDeps, x.OutputDeps, x.InitialDeps} {
		if set == nil {
			continue
		}
		if _, ok := set[dep]; ok {
			return set.DependsOn(dep, ind)
		}
	}
	return true
}

// defaultStep is the empirical perturbation floor: twice the reduced
// precision spacing at the operating value, never below 1e-6. Sampling on
// very small or zero-valued states is unstable below that floor. Callers
// with better problem knowledge override it through Options.Steps.
func defaultStep(v float64) float64 {
	f := float32(v)
	ulp := float64(math.Nextafter32(float32(math.Abs(float64(f))), float32(math.Inf(1))) - float32(math.Abs(float64(f))))
	step := 2 * ulp
	if step < 1e-6 {
		step = 1e-6
	}
	return step
}
