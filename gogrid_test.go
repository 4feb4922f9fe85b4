package gogrid

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/geom"
	"github.com/phil-mansfield/gogrid/interpolate"
	"github.com/phil-mansfield/gogrid/sample"
)

var quiet = &log.Logger{Handler: discard.New(), Level: log.DebugLevel}

func almostEq(x, y, eps float64) bool {
	return x+eps > y && x-eps < y
}

func lineGrid(t testing.TB) *geom.Grid {
	g, err := geom.NewGrid(geom.Cartesian,
		geom.Axis{Name: "x", Min: 0, Max: 10, Count: 11},
		geom.Axis{Name: "y", Min: 0, Max: 0, Count: 1},
	)
	require.NoError(t, err)
	return g
}

func twoPoints(t testing.TB) *sample.Set {
	s, err := sample.FromRecords([]sample.Record{
		sample.Point([]float64{0, 0}, 10),
		sample.Point([]float64{10, 0}, 20),
	})
	require.NoError(t, err)
	return s
}

func randomSet(t testing.TB, n int, seed int64) *sample.Set {
	rng := rand.New(rand.NewSource(seed))
	recs := make([]sample.Record, n)
	for i := range recs {
		x, y := 10*rng.Float64(), 10*rng.Float64()
		recs[i] = sample.Point([]float64{x, y}, math.Sin(x)+y, x*y)
	}
	s, err := sample.FromRecords(recs)
	require.NoError(t, err)
	return s
}

func squareGrid(t testing.TB, n int) *geom.Grid {
	g, err := geom.NewGrid(geom.Cartesian,
		geom.Axis{Min: -1, Max: 11, Count: n},
		geom.Axis{Min: -1, Max: 11, Count: n},
	)
	require.NoError(t, err)
	return g
}

func TestNearestScenario(t *testing.T) {
	f, err := Resample(twoPoints(t), lineGrid(t), interpolate.NearestNeighbor{MaxDistance: 1})
	require.NoError(t, err)
	require.Equal(t, 11, f.Len())
	require.Equal(t, 1, f.Components())

	assert.Equal(t, []float64{10}, f.Value(0))
	assert.Equal(t, 1.0, f.Confidence(0))
	assert.Equal(t, []float64{20}, f.Value(10))
	assert.Equal(t, 1.0, f.Confidence(10))
	assert.Equal(t, 0.0, f.Confidence(5))
	assert.True(t, math.IsNaN(f.Value(5)[0]))

	m, err := Classify(f, 0.5)
	require.NoError(t, err)
	assert.Equal(t, Valid, m.At(0))
	assert.Equal(t, Empty, m.At(5))
	assert.Equal(t, 4, m.Count(Valid))
	assert.Equal(t, 7, m.Count(Empty))
	assert.Equal(t, 0, m.Count(Extrapolated))
}

func TestInverseDistanceScenario(t *testing.T) {
	idw, err := interpolate.NewInverseDistance(1, 20)
	require.NoError(t, err)
	f, err := Resample(twoPoints(t), lineGrid(t), idw)
	require.NoError(t, err)

	assert.True(t, almostEq(f.Value(5)[0], 15, 1e-12), "got %g", f.Value(5)[0])
	assert.True(t, almostEq(f.Confidence(5), 0.5, 1e-12), "got %g", f.Confidence(5))

	m, err := Classify(f, 0.6)
	require.NoError(t, err)
	assert.Equal(t, Extrapolated, m.At(5))
	assert.Equal(t, Valid, m.At(0))
	assert.Equal(t, Valid, m.At(10))
}

func TestEmptySet(t *testing.T) {
	s, err := sample.FromRecords(nil)
	require.NoError(t, err)

	for _, intr := range []interpolate.Interpolator{
		interpolate.NearestNeighbor{MaxDistance: math.Inf(+1)},
		interpolate.InverseDistance{Power: 2, Radius: math.Inf(+1)},
		interpolate.LocalPolynomial{Order: 1, Bandwidth: 3},
	} {
		f, err := Resample(s, squareGrid(t, 9), intr)
		require.NoError(t, err)
		assert.Equal(t, 0, f.Covered(), intr.Kind().String())

		m, err := Classify(f, 0)
		require.NoError(t, err)
		assert.Equal(t, m.Len(), m.Count(Empty), intr.Kind().String())

		_, err = Summarize(f, m, 0)
		assert.True(t, errors.Is(err, errs.ErrEmptyInput))
	}
}

func TestChunkInvariance(t *testing.T) {
	s := randomSet(t, 300, 1)
	g := squareGrid(t, 23)

	for _, intr := range []interpolate.Interpolator{
		interpolate.NearestNeighbor{MaxDistance: 0.5},
		interpolate.InverseDistance{Power: 2, Radius: 1.5},
		interpolate.LocalPolynomial{Order: 1, Bandwidth: 2},
	} {
		ref, err := NewResampler(g, intr)
		require.NoError(t, err)
		ref.SetWorkers(1)
		ref.SetChunkSize(g.Len())
		ref.SetLogger(quiet)
		want, err := ref.Resample(s)
		require.NoError(t, err)

		table := []struct{ workers, chunk int }{
			{1, 1}, {3, 7}, {8, 64}, {4, 4096}, {2, g.Len() - 1},
			{2, math.MaxInt},
		}
		for i, test := range table {
			r, err := NewResampler(g, intr)
			require.NoError(t, err)
			r.SetWorkers(test.workers)
			r.SetChunkSize(test.chunk)
			r.SetLogger(quiet)

			got, err := r.Resample(s)
			require.NoError(t, err)

			opts := cmp.Options{cmpopts.EquateNaNs()}
			for c := 0; c < 2; c++ {
				if diff := cmp.Diff(want.Component(c), got.Component(c), opts); diff != "" {
					t.Errorf("%s %d) component %d differs (-want +got):\n%s",
						intr.Kind(), i+1, c, diff)
				}
			}
			if diff := cmp.Diff(want.Confidences(), got.Confidences()); diff != "" {
				t.Errorf("%s %d) confidences differ (-want +got):\n%s",
					intr.Kind(), i+1, diff)
			}
		}
	}
}

func TestOversizedChunk(t *testing.T) {
	g := lineGrid(t)
	table := []int{g.Len(), g.Len() + 1, 1 << 30, math.MaxInt}
	for i, size := range table {
		r, err := NewResampler(g, interpolate.NearestNeighbor{MaxDistance: 1})
		require.NoError(t, err)
		r.SetChunkSize(size)
		r.SetLogger(quiet)

		if r.ChunkSize() != g.Len() {
			t.Errorf("%d) Expected chunk size %d, got %d", i+1, g.Len(), r.ChunkSize())
		}
		if r.Chunks() != 1 {
			t.Errorf("%d) Expected 1 chunk, got %d", i+1, r.Chunks())
		}

		f, err := r.Resample(twoPoints(t))
		require.NoError(t, err)
		assert.Equal(t, []float64{10}, f.Value(0))
		assert.Equal(t, 1.0, f.Confidence(0))
		assert.Equal(t, []float64{20}, f.Value(10))
		assert.Equal(t, 1.0, f.Confidence(10))
	}
}

func TestReorderInvariance(t *testing.T) {
	s := randomSet(t, 200, 2)
	recs := s.Records()
	rand.New(rand.NewSource(3)).Shuffle(len(recs), func(i, j int) {
		recs[i], recs[j] = recs[j], recs[i]
	})
	shuffled, err := sample.FromRecords(recs)
	require.NoError(t, err)

	g := squareGrid(t, 17)
	intr := interpolate.InverseDistance{Power: 1, Radius: 2}
	a, err := Resample(s, g, intr)
	require.NoError(t, err)
	b, err := Resample(shuffled, g, intr)
	require.NoError(t, err)

	opt := cmp.Options{cmpopts.EquateNaNs(), cmpopts.EquateApprox(0, 1e-12)}
	assert.True(t, cmp.Equal(a.Component(0), b.Component(0), opt))
	assert.True(t, cmp.Equal(a.Confidences(), b.Confidences(), opt))
}

func TestResampleErrors(t *testing.T) {
	s := twoPoints(t)

	g3, err := geom.NewGrid(geom.Cartesian,
		geom.Axis{Min: 0, Max: 1, Count: 2},
		geom.Axis{Min: 0, Max: 1, Count: 2},
		geom.Axis{Min: 0, Max: 1, Count: 2},
	)
	require.NoError(t, err)

	f, err := Resample(s, g3, interpolate.NearestNeighbor{MaxDistance: 1})
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Nil(t, f)

	_, err = NewResampler(lineGrid(t), interpolate.InverseDistance{Power: -1, Radius: 1})
	assert.True(t, errors.Is(err, errs.ErrValidation))

	f, err = Resample(s, lineGrid(t), interpolate.LocalPolynomial{Order: 1, Bandwidth: 0})
	assert.True(t, errors.Is(err, errs.ErrValidation))
	assert.Nil(t, f)
}

func TestResampleCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, err := NewResampler(squareGrid(t, 50), interpolate.NearestNeighbor{MaxDistance: 1})
	require.NoError(t, err)
	r.SetChunkSize(10)
	r.SetLogger(quiet)

	f, err := r.ResampleContext(ctx, randomSet(t, 100, 4))
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Nil(t, f)
}

func TestResampleCancelMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, err := NewResampler(squareGrid(t, 40), interpolate.NearestNeighbor{MaxDistance: 1})
	require.NoError(t, err)
	r.SetWorkers(1)
	r.SetChunkSize(1)
	r.SetLogger(quiet)
	r.SetProgress(func(done, total int) {
		if done == 10 { cancel() }
	})

	f, err := r.ResampleContext(ctx, randomSet(t, 100, 5))
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	assert.Nil(t, f)
}

func TestProgress(t *testing.T) {
	g := squareGrid(t, 31)
	r, err := NewResampler(g, interpolate.InverseDistance{Power: 2, Radius: 1})
	require.NoError(t, err)
	r.SetWorkers(4)
	r.SetChunkSize(50)
	r.SetLogger(quiet)

	calls, last := 0, 0
	r.SetProgress(func(done, total int) {
		calls++
		if done <= last {
			t.Errorf("Expected progress to increase, got %d after %d.", done, last)
		}
		last = done
		assert.Equal(t, g.Len(), total)
	})

	_, err = r.Resample(randomSet(t, 100, 6))
	require.NoError(t, err)
	assert.Equal(t, r.Chunks(), calls)
	assert.Equal(t, g.Len(), last)
}

func TestGeographicResample(t *testing.T) {
	s, err := sample.FromRecords([]sample.Record{
		sample.Point([]float64{-179.95, 0}, 1),
		sample.Point([]float64{10, 45}, 2),
	})
	require.NoError(t, err)

	g, err := geom.NewGrid(geom.Geographic,
		geom.Axis{Name: "lon", Min: -180, Max: 180, Count: 361},
		geom.Axis{Name: "lat", Min: -90, Max: 90, Count: 181},
	)
	require.NoError(t, err)

	// 50 km around each sample.
	f, err := Resample(s, g, interpolate.NearestNeighbor{MaxDistance: 50})
	require.NoError(t, err)

	east, err := g.NearestIndex([]float64{180, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, f.Value(east))

	pt, err := g.NearestIndex([]float64{10, 45})
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, f.Value(pt))

	far, err := g.NearestIndex([]float64{100, -30})
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.Confidence(far))
}

func TestClassify(t *testing.T) {
	g, err := geom.NewGrid(geom.Cartesian, geom.Axis{Min: 0, Max: 4, Count: 5})
	require.NoError(t, err)
	f, err := NewField(g, 1,
		[]float64{1, 2, 3, math.NaN(), 5},
		[]float64{1, 0.5, 0.49, 0, 0.7},
	)
	require.NoError(t, err)

	table := []struct {
		minConf float64
		cells   []Quality
	}{
		{0.5, []Quality{Valid, Valid, Extrapolated, Empty, Valid}},
		{0, []Quality{Valid, Valid, Valid, Empty, Valid}},
		{1, []Quality{Valid, Extrapolated, Extrapolated, Empty, Extrapolated}},
	}
	for i, test := range table {
		m, err := Classify(f, test.minConf)
		require.NoError(t, err)
		if !assert.Equal(t, test.cells, m.Cells()) {
			t.Errorf("%d) Classification with minConf = %g failed.", i+1, test.minConf)
		}
	}

	for _, minConf := range []float64{-0.1, 1.1, math.NaN()} {
		_, err := Classify(f, minConf)
		assert.True(t, errors.Is(err, errs.ErrValidation), "minConf = %g", minConf)
	}

	assert.Equal(t, "extrapolated", Extrapolated.String())
}

func TestNewFieldErrors(t *testing.T) {
	g, err := geom.NewGrid(geom.Cartesian, geom.Axis{Min: 0, Max: 1, Count: 2})
	require.NoError(t, err)

	table := []struct {
		comps      int
		vals, conf []float64
	}{
		{0, []float64{}, []float64{0, 0}},
		{1, []float64{1}, []float64{0, 0}},
		{1, []float64{1, 2}, []float64{0}},
		{1, []float64{1, 2}, []float64{0, 2}},
		{2, []float64{1, 2}, []float64{0, 1}},
	}
	for i, test := range table {
		if _, err := NewField(g, test.comps, test.vals, test.conf); !errors.Is(err, errs.ErrValidation) {
			t.Errorf("%d) Expected a validation error, got %v.", i+1, err)
		}
	}

	_, err = NewMask(g, []Quality{Valid})
	assert.True(t, errors.Is(err, errs.ErrValidation))
	_, err = NewMask(g, []Quality{Valid, Quality(7)})
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestSummarize(t *testing.T) {
	g, err := geom.NewGrid(geom.Cartesian, geom.Axis{Min: 0, Max: 4, Count: 5})
	require.NoError(t, err)
	f, err := NewField(g, 2,
		[]float64{1, -1, 2, -2, 3, -3, 100, 100, math.NaN(), math.NaN()},
		[]float64{1, 1, 1, 0.1, 0},
	)
	require.NoError(t, err)
	m, err := Classify(f, 0.5)
	require.NoError(t, err)

	sum, err := Summarize(f, m, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, 1.0, sum.Min)
	assert.Equal(t, 3.0, sum.Max)
	assert.True(t, almostEq(sum.Mean, 2, 1e-12))
	assert.Equal(t, 2.0, sum.Median)
	assert.True(t, almostEq(sum.StdDev, math.Sqrt(2.0/3), 1e-12))
	assert.Equal(t, 3.0, sum.Percentile95)
	assert.Equal(t, 1.0, sum.Percentile5)

	sum, err = Summarize(f, m, 1)
	require.NoError(t, err)
	assert.Equal(t, -3.0, sum.Min)

	_, err = Summarize(f, m, 2)
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func BenchmarkResample(b *testing.B) {
	s := randomSet(b, 5000, 7)
	g := squareGrid(b, 200)
	r, err := NewResampler(g, interpolate.InverseDistance{Power: 2, Radius: 0.5})
	require.NoError(b, err)
	r.SetLogger(quiet)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if _, err := r.Resample(s); err != nil { b.Fatal(err) }
	}
}
