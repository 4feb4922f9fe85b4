package geom

import (
	"math"

	"github.com/phil-mansfield/gogrid/errs"
)

// Axis describes one linearly spaced grid axis.
type Axis struct {
	Name     string
	Min, Max float64
	Count    int
}

// Spacing returns the distance between neighboring points along the axis.
// Single-point axes have zero spacing.
func (a Axis) Spacing() float64 {
	if a.Count <= 1 { return 0 }
	return (a.Max - a.Min) / float64(a.Count-1)
}

// Coord returns the physical coordinate of the k-th point on the axis.
func (a Axis) Coord(k int) float64 {
	if a.Count <= 1 { return a.Min }
	if k == a.Count-1 { return a.Max }
	return a.Min + float64(k)*a.Spacing()
}

// Nearest returns the index of the axis point closest to x. Ties are broken
// toward the lower index and points outside the axis are clamped to its
// ends.
func (a Axis) Nearest(x float64) int {
	dx := a.Spacing()
	if dx == 0 { return 0 }

	// Clamp before converting: huge or infinite offsets overflow int.
	f := math.Ceil((x-a.Min)/dx - 0.5)
	if f <= 0 { return 0 }
	if f >= float64(a.Count-1) { return a.Count - 1 }
	return int(f)
}

// Grid is an immutable description of a regular N-dimensional grid. Cells
// are indexed in row-major order: the last axis varies fastest.
type Grid struct {
	axes    []Axis
	strides []int
	system  CoordSystem
	length  int
}

// NewGrid returns a new Grid with the given axes. An error wrapping
// errs.ErrInvalidGrid is returned if there are no axes, if an axis has a
// non-positive count, if min > max, or if the bounds do not make sense for
// the coordinate system.
func NewGrid(system CoordSystem, axes ...Axis) (*Grid, error) {
	if len(axes) == 0 {
		return nil, errs.InvalidGrid("grid needs at least one axis")
	}

	for i, a := range axes {
		if a.Count < 1 {
			return nil, errs.InvalidGrid(
				"axis %d has count %d, must be positive", i, a.Count,
			)
		} else if math.IsNaN(a.Min) || math.IsNaN(a.Max) ||
			math.IsInf(a.Min, 0) || math.IsInf(a.Max, 0) {
			return nil, errs.InvalidGrid(
				"axis %d has non-finite range [%g, %g]", i, a.Min, a.Max,
			)
		} else if a.Min > a.Max {
			return nil, errs.InvalidGrid(
				"axis %d has min %g > max %g", i, a.Min, a.Max,
			)
		} else if a.Count > 1 && a.Min == a.Max {
			// Every point would sit on the same coordinate.
			return nil, errs.InvalidGrid(
				"axis %d has %d points but zero width", i, a.Count,
			)
		}
	}
	if err := system.check(axes); err != nil { return nil, err }

	g := &Grid{system: system, length: 1}
	g.axes = append([]Axis(nil), axes...)
	g.strides = make([]int, len(axes))
	for i := len(axes) - 1; i >= 0; i-- {
		g.strides[i] = g.length
		g.length *= axes[i].Count
	}

	return g, nil
}

// Dims returns the number of axes.
func (g *Grid) Dims() int { return len(g.axes) }

// Len returns the total number of grid cells.
func (g *Grid) Len() int { return g.length }

// System returns the coordinate system tag of the grid.
func (g *Grid) System() CoordSystem { return g.system }

// Axis returns the i-th axis.
func (g *Grid) Axis(i int) Axis { return g.axes[i] }

// Shape returns the point count along each axis.
func (g *Grid) Shape() []int {
	shape := make([]int, len(g.axes))
	for i, a := range g.axes { shape[i] = a.Count }
	return shape
}

// Bounds returns the per-axis minimum and maximum coordinates.
func (g *Grid) Bounds() (min, max []float64) {
	min, max = make([]float64, len(g.axes)), make([]float64, len(g.axes))
	for i, a := range g.axes { min[i], max[i] = a.Min, a.Max }
	return min, max
}

// Idx returns the grid index corresponding to a set of per-axis indices.
func (g *Grid) Idx(cell []int) int {
	idx := 0
	for i, k := range cell { idx += k * g.strides[i] }
	return idx
}

// IdxCheck returns an index and true if the given cell is inside the grid
// and false otherwise.
func (g *Grid) IdxCheck(cell []int) (idx int, ok bool) {
	if len(cell) != len(g.axes) { return -1, false }
	for i, k := range cell {
		if k < 0 || k >= g.axes[i].Count { return -1, false }
	}
	return g.Idx(cell), true
}

// Cell returns the per-axis indices of a grid index. If an output array is
// given, the result is written to it.
func (g *Grid) Cell(idx int, out ...[]int) []int {
	if len(out) == 0 { out = [][]int{make([]int, len(g.axes))} }
	for i, s := range g.strides {
		out[0][i] = idx / s
		idx %= s
	}
	return out[0]
}

// CoordsOf returns the physical coordinates of a grid index. If an output
// array is given, the result is written to it (the array is still returned
// as a convenience).
func (g *Grid) CoordsOf(idx int, out ...[]float64) []float64 {
	if len(out) == 0 { out = [][]float64{make([]float64, len(g.axes))} }
	for i, s := range g.strides {
		out[0][i] = g.axes[i].Coord(idx / s)
		idx %= s
	}
	return out[0]
}

// NearestIndex returns the index of the grid point closest to pt along every
// axis, rounding ties toward the lower index. Points outside the grid are
// clamped to its edges.
func (g *Grid) NearestIndex(pt []float64) (int, error) {
	if len(pt) != len(g.axes) {
		return -1, errs.Validation(
			"point has %d coordinates, but grid has %d axes",
			len(pt), len(g.axes),
		)
	}

	idx := 0
	for i, x := range pt {
		if math.IsNaN(x) {
			return -1, errs.Validation("coordinate %d of point is NaN", i)
		}
		idx += g.axes[i].Nearest(x) * g.strides[i]
	}
	return idx, nil
}

// Near returns the index of the value in the sorted slice xs which is
// closest to target. Ties go to the lower index and targets outside the
// range of xs are clamped to its ends. Near panics if xs is empty.
func Near(xs []float64, target float64) int {
	if len(xs) == 0 { panic("Near() given an empty slice.") }
	if len(xs) == 1 { return 0 }

	lo, hi := 1, len(xs)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if xs[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	if target-xs[lo-1] <= xs[lo]-target { return lo - 1 }
	return lo
}
