package render

import (
	"math"

	"github.com/phil-mansfield/gogrid"
	"github.com/phil-mansfield/gogrid/errs"
)

// Profile is a line of grid cells running along one axis of a Field.
type Profile struct {
	Axis    int
	Coords  []float64
	Values  []float64
	Quality []gogrid.Quality
}

// NewProfile extracts component c of f along axis, through the cell given by
// the grid indices in cell. cell[axis] is ignored.
func NewProfile(
	f *gogrid.Field, m *gogrid.Mask, axis int, cell []int, c int,
) (*Profile, error) {
	g := f.Grid()
	if axis < 0 || axis >= g.Dims() {
		return nil, errs.Validation("axis %d of a %d-dimensional grid", axis, g.Dims())
	} else if len(cell) != g.Dims() {
		return nil, errs.Validation(
			"cell has %d indices, but the grid has %d axes", len(cell), g.Dims(),
		)
	} else if c < 0 || c >= f.Components() {
		return nil, errs.Validation(
			"component %d requested from a field with %d components",
			c, f.Components(),
		)
	} else if m.Len() != f.Len() {
		return nil, errs.Validation(
			"mask has %d cells, but the field has %d", m.Len(), f.Len(),
		)
	}

	a := g.Axis(axis)
	p := &Profile{
		Axis:    axis,
		Coords:  make([]float64, a.Count),
		Values:  make([]float64, a.Count),
		Quality: make([]gogrid.Quality, a.Count),
	}

	buf := append([]int(nil), cell...)
	for k := 0; k < a.Count; k++ {
		buf[axis] = k
		idx, ok := g.IdxCheck(buf)
		if !ok { return nil, errs.Validation("cell %v outside the grid", cell) }

		p.Coords[k] = a.Coord(k)
		p.Values[k] = f.Value(idx)[c]
		p.Quality[k] = m.At(idx)
	}
	return p, nil
}

// Select returns the coordinates and values of the cells with quality q.
func (p *Profile) Select(q gogrid.Quality) (xs, ys []float64) {
	for k := range p.Coords {
		if p.Quality[k] != q { continue }
		xs = append(xs, p.Coords[k])
		ys = append(ys, p.Values[k])
	}
	return xs, ys
}

// Curve draws a cubic spline through the Valid cells of the profile and
// evaluates it at n evenly spaced points between the first and last Valid
// cell. It returns an error wrapping errs.ErrEmptyInput if fewer than two
// cells are Valid.
func (p *Profile) Curve(n int) (xs, ys []float64, err error) {
	vx, vy := p.Select(gogrid.Valid)
	if len(vx) < 2 {
		return nil, nil, errs.EmptyInput(
			"profile has %d valid cells, at least 2 are needed", len(vx),
		)
	} else if n < 2 {
		return nil, nil, errs.Validation("curve needs at least 2 points, got %d", n)
	}

	sp, err := NewSpline(vx, vy)
	if err != nil { return nil, nil, err }

	lo, hi := vx[0], vx[len(vx)-1]
	xs = make([]float64, n)
	for i := range xs {
		xs[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	xs[n-1] = hi
	return xs, sp.EvalAll(xs), nil
}

// Range returns the smallest and largest finite value in the profile.
func (p *Profile) Range() (lo, hi float64) {
	lo, hi = math.Inf(+1), math.Inf(-1)
	for _, v := range p.Values {
		if math.IsNaN(v) { continue }
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	return lo, hi
}
