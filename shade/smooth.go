package shade

import (
	"github.com/phil-mansfield/gogrid/errs"
)

// Smooth applies a separable 2D filter with a scale of sigma cells to a
// rows x cols plane and returns the smoothed copy. b decides how the plane
// is extended past its edges. A sigma of 0 returns an unsmoothed copy.
func Smooth(
	plane []float64, rows, cols int, sigma float64, f Filter, b BoundaryCondition,
) ([]float64, error) {
	if err := checkPlane(plane, rows, cols); err != nil { return nil, err }
	if !(sigma >= 0) {
		return nil, errs.Validation("smoothing sigma must be non-negative, got %g", sigma)
	}
	if err := b.check(); err != nil { return nil, err }

	out := append([]float64(nil), plane...)
	if sigma == 0 { return out, nil }

	k, err := f.Kernel(sigma)
	if err != nil { return nil, err }

	// Rows are contiguous.
	buf := make([]float64, cols)
	for r := 0; r < rows; r++ {
		row := out[r*cols : (r+1)*cols]
		copy(buf, row)
		k.ConvolveAt(buf, b, row)
	}

	// Columns are strided, so go through a scratch buffer.
	col, res := make([]float64, rows), make([]float64, rows)
	for c := 0; c < cols; c++ {
		for r := range col { col[r] = out[r*cols+c] }
		k.ConvolveAt(col, b, res)
		for r := range res { out[r*cols+c] = res[r] }
	}

	return out, nil
}

func checkPlane(plane []float64, rows, cols int) error {
	if rows < 1 || cols < 1 {
		return errs.Validation("plane must be at least 1 x 1, got %d x %d", rows, cols)
	} else if len(plane) != rows*cols {
		return errs.Validation(
			"plane has %d cells, but %d x %d = %d were expected",
			len(plane), rows, cols, rows*cols,
		)
	}
	return nil
}
