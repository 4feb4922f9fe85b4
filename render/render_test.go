package render

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gogrid"
	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/geom"
)

func almostEq(x, y, eps float64) bool {
	return x+eps > y && x-eps < y
}

func TestSplineLinear(t *testing.T) {
	xs := []float64{0, 1, 1.5, 2, 3, 4, 5}
	ys := make([]float64, len(xs))
	for i, x := range xs { ys[i] = 2*x - 1 }

	sp, err := NewSpline(xs, ys)
	require.NoError(t, err)
	for x := 0.0; x <= 5; x += 0.05 {
		if y := sp.Eval(x); !almostEq(y, 2*x-1, 1e-10) {
			t.Errorf("Expected spline(%g) = %g, got %g.", x, 2*x-1, y)
		}
	}

	// Clamped outside the table.
	assert.Equal(t, -1.0, sp.Eval(-3))
	assert.Equal(t, 9.0, sp.Eval(8))
}

func TestSplineKnots(t *testing.T) {
	table := []struct {
		xs, ys []float64
	}{
		{[]float64{0, 1, 1.5, 2, 3, 4, 5}, []float64{2, 1, 1, 0, 2, 3, 1}},
		{[]float64{5, 4, 2, 0}, []float64{1, 0, 3, 2}},
		{[]float64{0, 1}, []float64{3, 5}},
	}
	for i, test := range table {
		sp, err := NewSpline(test.xs, test.ys)
		require.NoError(t, err)
		out := sp.EvalAll(test.xs)
		for j := range out {
			if !almostEq(out[j], test.ys[j], 1e-10) {
				t.Errorf("%d) Expected spline(%g) = %g, got %g.",
					i+1, test.xs[j], test.ys[j], out[j])
			}
		}
	}
}

func TestSplineErrors(t *testing.T) {
	table := []struct {
		xs, ys []float64
	}{
		{[]float64{0, 1}, []float64{0}},
		{[]float64{0}, []float64{0}},
		{[]float64{0, 1, 1, 2}, []float64{0, 1, 2, 3}},
		{[]float64{0, 2, 1}, []float64{0, 1, 2}},
	}
	for i, test := range table {
		if _, err := NewSpline(test.xs, test.ys); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("%d) Expected a validation error, got %v.", i+1, err)
		}
	}
}

func TestSplineNatural(t *testing.T) {
	// Through (0, 0), (1, 1), (2, 0) the natural spline is
	// 1.5 x - 0.5 x^3 on [0, 1], mirrored on [1, 2].
	table := []struct {
		xs, ys []float64
	}{
		{[]float64{0, 1, 2}, []float64{0, 1, 0}},
		{[]float64{2, 1, 0}, []float64{0, 1, 0}},
	}
	evals := []struct{ x, y float64 }{
		{0, 0}, {0.5, 0.6875}, {1, 1}, {1.5, 0.6875}, {2, 0},
		{0.25, 0.3671875}, {-1, 0}, {3, 0},
	}
	for i, test := range table {
		sp, err := NewSpline(test.xs, test.ys)
		require.NoError(t, err)
		for _, ev := range evals {
			if y := sp.Eval(ev.x); !almostEq(y, ev.y, 1e-12) {
				t.Errorf("%d) Expected spline(%g) = %g, got %g.", i+1, ev.x, ev.y, y)
			}
		}
	}
}

// testField is a 2 x 5 field whose values are 10 x0 + x1, with the cell at
// (1, 2) missing and the cell at (0, 4) extrapolated.
func testField(t *testing.T) (*gogrid.Field, *gogrid.Mask) {
	g, err := geom.NewGrid(geom.Cartesian,
		geom.Axis{Min: 0, Max: 1, Count: 2},
		geom.Axis{Min: 0, Max: 8, Count: 5},
	)
	require.NoError(t, err)

	vals, conf := make([]float64, g.Len()), make([]float64, g.Len())
	for i := range vals {
		x := g.CoordsOf(i)
		vals[i], conf[i] = x[1]+10*x[0], 1
	}
	missing := g.Idx([]int{1, 2})
	vals[missing], conf[missing] = math.NaN(), 0
	conf[g.Idx([]int{0, 4})] = 0.1

	f, err := gogrid.NewField(g, 1, vals, conf)
	require.NoError(t, err)
	m, err := gogrid.Classify(f, 0.5)
	require.NoError(t, err)
	return f, m
}

func TestProfile(t *testing.T) {
	f, m := testField(t)

	p, err := NewProfile(f, m, 1, []int{1, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4, 6, 8}, p.Coords)
	assert.Equal(t, gogrid.Empty, p.Quality[2])
	assert.True(t, math.IsNaN(p.Values[2]))

	xs, ys := p.Select(gogrid.Valid)
	assert.Equal(t, []float64{0, 2, 6, 8}, xs)
	assert.Equal(t, []float64{10, 12, 16, 18}, ys)

	lo, hi := p.Range()
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 18.0, hi)

	cx, cy, err := p.Curve(9)
	require.NoError(t, err)
	require.Len(t, cx, 9)
	assert.Equal(t, 8.0, cx[8])
	for i := range cx {
		if !almostEq(cy[i], cx[i]+10, 1e-10) {
			t.Errorf("%d) Expected curve(%g) = %g, got %g.", i+1, cx[i], cx[i]+10, cy[i])
		}
	}

	q, err := NewProfile(f, m, 1, []int{0, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, gogrid.Extrapolated, q.Quality[4])
	xs, _ = q.Select(gogrid.Extrapolated)
	assert.Equal(t, []float64{8}, xs)

	across, err := NewProfile(f, m, 0, []int{0, 3}, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 16}, across.Values)
}

func TestProfileErrors(t *testing.T) {
	f, m := testField(t)

	_, err := NewProfile(f, m, 2, []int{0, 0}, 0)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	_, err = NewProfile(f, m, 0, []int{0}, 0)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	_, err = NewProfile(f, m, 0, []int{0, 0}, 1)
	assert.True(t, errors.Is(err, errs.ErrValidation))
	_, err = NewProfile(f, m, 0, []int{0, 9}, 0)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	// Only one valid cell along the first axis at y = 4.
	p, err := NewProfile(f, m, 0, []int{0, 2}, 0)
	require.NoError(t, err)
	_, _, err = p.Curve(10)
	assert.True(t, errors.Is(err, errs.ErrEmptyInput))
}

func TestHist(t *testing.T) {
	f, m := testField(t)

	h, err := NewHist(f, m, 0, HistInfo{Min: 0, Max: 20, Bins: 4, Scale: "linear"})
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 7.5, 12.5, 17.5}, h.Centers)
	// Valid values: 0 2 4 | 6 | 10 12 | 16 18.
	assert.Equal(t, []int{3, 1, 2, 2}, h.Counts)
	assert.Equal(t, 8, h.Total())
	assert.Equal(t, 0, h.Under+h.Over)

	h, err = NewHist(f, m, 0, HistInfo{Min: 0.5, Max: 50, Bins: 2, Scale: "log"})
	require.NoError(t, err)
	assert.True(t, almostEq(h.Centers[0], math.Sqrt(2.5), 1e-12))
	assert.True(t, almostEq(h.Centers[1], math.Sqrt(250), 1e-12))
	// 0 | 2 4 | 6 10 12 16 18.
	assert.Equal(t, []int{2, 5}, h.Counts)
	assert.Equal(t, 1, h.Under)
	assert.Equal(t, 0, h.Over)

	xs, ys := h.Steps()
	assert.Equal(t, []float64{0.5, 5, 5, 50}, roundAll(xs))
	assert.Equal(t, []float64{2, 2, 5, 5}, ys)

	// Values at or above Max land in Over.
	h, err = NewHist(f, m, 0, HistInfo{Min: 2, Max: 12, Bins: 5})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 0, 1}, h.Counts)
	assert.Equal(t, 1, h.Under)
	assert.Equal(t, 3, h.Over)

	table := []HistInfo{
		{Min: 0, Max: 1, Bins: 0},
		{Min: 1, Max: 1, Bins: 3},
		{Min: 0, Max: 1, Bins: 3, Scale: "log"},
		{Min: 0, Max: 1, Bins: 3, Scale: "cubic"},
	}
	for i, info := range table {
		if _, err := NewHist(f, m, 0, info); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("%d) Expected a validation error, got %v.", i+1, err)
		}
	}
}

func roundAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs { out[i] = math.Round(x*1e9) / 1e9 }
	return out
}
