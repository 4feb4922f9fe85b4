/*package gogrid resamples scattered field measurements onto regular grids.

The usual flow is

    s, err := sample.FromRecords(recs)
    g, err := geom.NewGrid(geom.Cartesian, axes...)
    f, err := gogrid.Resample(s, g, interpolate.InverseDistance{...})
    m, err := gogrid.Classify(f, 0.5)

Every grid cell of the resulting Field carries a value and a confidence in
[0, 1], and the Mask sorts cells into Valid, Extrapolated and Empty ones so
that callers know what they can trust.
*/
package gogrid

import (
	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/geom"
)

// Field is the result of resampling a sample.Set onto a geom.Grid. Values
// and confidences are indexed by the grid's row-major cell index. A Field is
// never modified after it has been returned.
type Field struct {
	grid  *geom.Grid
	comps int
	vals  []float64
	conf  []float64
}

func newField(g *geom.Grid, comps int) *Field {
	return &Field{
		grid: g, comps: comps,
		vals: make([]float64, g.Len()*comps),
		conf: make([]float64, g.Len()),
	}
}

// NewField wraps existing value and confidence planes. vals must contain
// comps values per cell, cell-major, and conf one confidence per cell. The
// slices are copied.
func NewField(g *geom.Grid, comps int, vals, conf []float64) (*Field, error) {
	if g == nil {
		return nil, errs.Validation("nil grid")
	} else if comps < 1 {
		return nil, errs.Validation("field needs at least one component, got %d", comps)
	} else if len(vals) != g.Len()*comps {
		return nil, errs.Validation(
			"%d values given for %d cells with %d components",
			len(vals), g.Len(), comps,
		)
	} else if len(conf) != g.Len() {
		return nil, errs.Validation(
			"%d confidences given for %d cells", len(conf), g.Len(),
		)
	}

	for i, c := range conf {
		if !(c >= 0 && c <= 1) {
			return nil, errs.Validation("confidence %d = %g outside [0, 1]", i, c)
		}
	}

	f := newField(g, comps)
	copy(f.vals, vals)
	copy(f.conf, conf)
	return f, nil
}

func (f *Field) Grid() *geom.Grid { return f.grid }
func (f *Field) Len() int         { return len(f.conf) }
func (f *Field) Components() int  { return f.comps }

// Value returns the value vector of cell idx. The slice is shared with the
// Field and must not be modified.
func (f *Field) Value(idx int) []float64 {
	return f.vals[idx*f.comps : (idx+1)*f.comps : (idx+1)*f.comps]
}

func (f *Field) Confidence(idx int) float64 { return f.conf[idx] }

// Component copies component c of every cell into out, which is allocated
// if not given.
func (f *Field) Component(c int, out ...[]float64) []float64 {
	var plane []float64
	if len(out) > 0 {
		plane = out[0]
	} else {
		plane = make([]float64, f.Len())
	}

	for i := range plane { plane[i] = f.vals[i*f.comps+c] }
	return plane
}

// Confidences copies the confidence of every cell into out, which is
// allocated if not given.
func (f *Field) Confidences(out ...[]float64) []float64 {
	var plane []float64
	if len(out) > 0 {
		plane = out[0]
	} else {
		plane = make([]float64, f.Len())
	}
	copy(plane, f.conf)
	return plane
}

// Covered returns the number of cells with a non-zero confidence.
func (f *Field) Covered() int {
	n := 0
	for _, c := range f.conf {
		if c > 0 { n++ }
	}
	return n
}

// MeanConfidence returns the average confidence over all cells.
func (f *Field) MeanConfidence() float64 {
	sum := 0.0
	for _, c := range f.conf { sum += c }
	return sum / float64(len(f.conf))
}
