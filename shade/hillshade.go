package shade

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/gogrid"
	"github.com/phil-mansfield/gogrid/errs"
)

// Options controls hill shading.
type Options struct {
	// SmoothSigma is the width, in cells, of the Gaussian filter applied to
	// the topography before shading.
	SmoothSigma float64
	// ShadingFactor is the root the shading is raised to. Smaller factors
	// give less pronounced shading.
	ShadingFactor float64
	// Azimuth and Altitude give the direction of the light source in
	// degrees. Azimuth is measured clockwise from north.
	Azimuth, Altitude float64
	// VertExag exaggerates the topography before computing gradients.
	VertExag float64
	// Filter and Boundary control the smoothing applied before shading.
	Filter   Filter
	Boundary BoundaryCondition
	// Origin says which way rows run, and so where north is.
	Origin Origin
}

// Origin is the edge of an image which row 0 of a plane is drawn at.
type Origin int

const (
	// Lower draws row 0 at the bottom, so rows run northward. Grids with
	// ascending latitudes are laid out this way.
	Lower Origin = iota
	// Upper draws row 0 at the top, as images are stored. matplotlib's
	// LightSource.hillshade assumes this layout.
	Upper
)

// DefaultOptions returns the standard shading setup: a light source at
// azimuth 275 and altitude 145, a Gaussian smoothing sigma of 5 cells with
// mirrored edges, a shading factor of 0.2, and row 0 at the bottom.
func DefaultOptions() Options {
	return Options{
		SmoothSigma: 5, ShadingFactor: 0.2,
		Azimuth: 275, Altitude: 145, VertExag: 1,
		Filter: Gaussian, Boundary: Reflection, Origin: Lower,
	}
}

// Extent is the coordinate range covered by a plane, in the order used for
// placing images on maps: left, right, top, bottom. Top and Bottom are the
// row coordinates at the top and bottom edges of the drawn image.
type Extent struct {
	Left, Right, Top, Bottom float64
}

// HillShade holds the smoothed topography and the hill shading derived from
// it.
type HillShade struct {
	Rows, Cols int
	// Smooth is the smoothed topography.
	Smooth []float64
	// Bumps is the shading intensity in [0, 1]. NaN where the topography is
	// missing.
	Bumps []float64
	// Extent is only set by FieldHillShade.
	Extent Extent
}

// NewHillShade computes hill shading for a rows x cols topography with the
// given cell spacings along rows and columns.
func NewHillShade(
	topo []float64, rows, cols int, dRow, dCol float64, opt Options,
) (*HillShade, error) {
	if err := checkPlane(topo, rows, cols); err != nil { return nil, err }
	if !(dRow > 0) || !(dCol > 0) {
		return nil, errs.Validation(
			"cell spacings must be positive, got %g and %g", dRow, dCol,
		)
	} else if !(opt.ShadingFactor > 0) {
		return nil, errs.Validation(
			"shading factor must be positive, got %g", opt.ShadingFactor,
		)
	}

	if opt.Origin != Lower && opt.Origin != Upper {
		return nil, errs.Validation("unknown origin %d", opt.Origin)
	}

	smooth, err := Smooth(
		topo, rows, cols, opt.SmoothSigma, opt.Filter, opt.Boundary,
	)
	if err != nil { return nil, err }

	hs := &HillShade{Rows: rows, Cols: cols, Smooth: smooth}
	hs.Bumps = lightSource(smooth, rows, cols, dRow, dCol, opt)
	for i, b := range hs.Bumps {
		if !math.IsNaN(b) { hs.Bumps[i] = math.Pow(b, opt.ShadingFactor) }
	}
	return hs, nil
}

// FieldHillShade shades component c of a Field on a two dimensional grid.
// The first grid axis runs along rows, drawn vertically, and the second
// along columns. Gradients are taken per cell, not per coordinate unit.
// With the Lower origin the first axis points north and Extent.Top is its
// maximum. With Upper, row 0 is drawn at the top, so Extent.Top is the
// first axis's minimum.
func FieldHillShade(f *gogrid.Field, c int, opt Options) (*HillShade, error) {
	g := f.Grid()
	if g.Dims() != 2 {
		return nil, errs.Validation("hill shading needs a 2D grid, got %d axes", g.Dims())
	} else if c < 0 || c >= f.Components() {
		return nil, errs.Validation(
			"component %d requested from a field with %d components",
			c, f.Components(),
		)
	}

	rows, cols := g.Axis(0), g.Axis(1)
	hs, err := NewHillShade(f.Component(c), rows.Count, cols.Count, 1, 1, opt)
	if err != nil { return nil, err }
	hs.Extent = Extent{
		Left: cols.Min, Right: cols.Max, Top: rows.Max, Bottom: rows.Min,
	}
	if opt.Origin == Upper {
		hs.Extent.Top, hs.Extent.Bottom = rows.Min, rows.Max
	}
	return hs, nil
}

// lightSource returns the illumination of each cell by a distant light,
// rescaled to [0, 1].
func lightSource(
	z []float64, rows, cols int, dRow, dCol float64, opt Options,
) []float64 {
	az := (90 - opt.Azimuth) * math.Pi / 180
	alt := opt.Altitude * math.Pi / 180
	dir := [3]float64{
		math.Cos(az) * math.Cos(alt), math.Sin(az) * math.Cos(alt), math.Sin(alt),
	}

	exag := opt.VertExag
	if exag == 0 { exag = 1 }

	intensity := make([]float64, len(z))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			gr := gradient(z, rows, cols, r, c, true) * exag / dRow
			// Rows point south when row 0 is at the top.
			if opt.Origin == Upper { gr = -gr }
			gc := gradient(z, rows, cols, r, c, false) * exag / dCol

			n := [3]float64{-gc, -gr, 1}
			norm := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
			intensity[r*cols+c] = (n[0]*dir[0] + n[1]*dir[1] + n[2]*dir[2]) / norm
		}
	}

	lo, hi := math.Inf(+1), math.Inf(-1)
	for _, x := range intensity {
		if math.IsNaN(x) { continue }
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}

	// Flat topography is left unscaled.
	if hi-lo > 1e-6 {
		floats.AddConst(-lo, intensity)
		floats.Scale(1/(hi-lo), intensity)
	}
	for i, x := range intensity {
		if x < 0 {
			intensity[i] = 0
		} else if x > 1 {
			intensity[i] = 1
		}
	}
	return intensity
}

// gradient is the derivative of z at (r, c) along rows or columns in units
// of cells: central differences inside the plane, one-sided at the edges.
func gradient(z []float64, rows, cols, r, c int, alongRows bool) float64 {
	n, i, stride := cols, c, 1
	if alongRows { n, i, stride = rows, r, cols }
	if n == 1 { return 0 }

	at := func(j int) float64 { return z[r*cols+c+(j-i)*stride] }
	switch i {
	case 0: return at(1) - at(0)
	case n - 1: return at(n-1) - at(n-2)
	}
	return (at(i+1) - at(i-1)) / 2
}
