package render

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/interp"

	"github.com/phil-mansfield/gogrid/errs"
)

// Spline represents a 1D natural cubic spline which can be used to
// interpolate between points.
type Spline struct {
	nc       interp.NaturalCubic
	lo, hi   float64
	yLo, yHi float64
}

// NewSpline creates a spline based off a table of x and y values. The values
// must be strictly increasing or strictly decreasing in x.
func NewSpline(xs, ys []float64) (*Spline, error) {
	if len(xs) != len(ys) {
		return nil, errs.Validation(
			"spline table has len(xs) = %d but len(ys) = %d", len(xs), len(ys),
		)
	} else if len(xs) <= 1 {
		return nil, errs.Validation("spline table has length %d", len(xs))
	}

	incr := xs[0] < xs[1]
	for i := 0; i < len(xs)-1; i++ {
		if (xs[i+1] > xs[i]) != incr || xs[i+1] == xs[i] {
			return nil, errs.Validation("spline table not strictly sorted at %d", i)
		}
	}

	// NaturalCubic only accepts increasing tables.
	if !incr {
		xs, ys = reversed(xs), reversed(ys)
	}

	n := len(xs)
	sp := &Spline{lo: xs[0], hi: xs[n-1], yLo: ys[0], yHi: ys[n-1]}
	if err := sp.nc.Fit(xs, ys); err != nil {
		return nil, errors.Wrap(err, "fitting spline")
	}
	return sp, nil
}

// Eval interpolates the table of x and y values given in NewSpline to the
// point x. Points outside the table are clamped to its ends.
func (sp *Spline) Eval(x float64) float64 {
	if x <= sp.lo { return sp.yLo }
	if x >= sp.hi { return sp.yHi }
	return sp.nc.Predict(x)
}

// EvalAll evaluates the spline at all the given x values. If an output
// array is given, the output is written to that array.
func (sp *Spline) EvalAll(xs []float64, out ...[]float64) []float64 {
	if len(out) == 0 { out = [][]float64{make([]float64, len(xs))} }
	for i, x := range xs { out[0][i] = sp.Eval(x) }
	return out[0]
}

func reversed(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i := range xs { out[len(xs)-1-i] = xs[i] }
	return out
}
