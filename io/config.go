/*package io reads the run files, sample tables and gridded output files used
by the gogrid command line tool.

Run files use the INI-like format understood by gcfg. An annotated example
can be printed with `gogrid example-config`.
*/
package io

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/geom"
	"github.com/phil-mansfield/gogrid/interpolate"
	"github.com/phil-mansfield/gogrid/shade"
)

const ExampleConfig = `[Grid]

#######################
# Required Parameters #
#######################

# One Min, Max and Count line per grid axis, in order. The last axis varies
# fastest in the output file. Cell centers run from Min to Max inclusive.
Min = 0
Max = 10
Count = 11

Min = 0
Max = 10
Count = 11

#######################
# Optional Parameters #
#######################

# Either cartesian (the default) or geographic. Geographic grids put
# longitude in degrees on the first axis and latitude on the second, and
# all distances are great-circle distances in km.
# System = cartesian

[Input]

#######################
# Required Parameters #
#######################

# Whitespace separated text table. Lines starting with # are ignored.
File = path/to/samples.txt

# Zero-indexed columns holding the coordinates (one line per grid axis, in
# the same order as the axes) and the measured values (one line per
# component).
CoordColumn = 0
CoordColumn = 1
ValueColumn = 2

#######################
# Optional Parameters #
#######################

# Column holding per-sample weights. Samples default to a weight of 1.
# Rows with a NaN or infinite coordinate, value or weight are kept but
# ignored.
# WeightColumn = 3

[Interpolator]

#######################
# Required Parameters #
#######################

# One of nearest, idw or polynomial.
Method = idw

#######################
# Optional Parameters #
#######################

# nearest: samples further away than MaxDistance leave the cell empty.
# Unset means no limit.
# MaxDistance = 2

# idw: samples are weighted by 1/d^Power within Radius (unset means no
# limit). Threshold is the effective sample count needed for full
# confidence.
# Power = 2
# Radius = 3
# Threshold = 4

# polynomial: a weighted least-squares fit of the given Order to all
# samples within Bandwidth of the cell center.
# Order = 1
# Bandwidth = 2

[Quality]

# Cells with a confidence at least this large are marked as valid. Cells
# below it, but with some support, are marked as extrapolated.
# MinConfidence = 0.5

[Output]

#######################
# Required Parameters #
#######################

# Binary grid file which the values, confidences and quality mask are
# written to.
File = path/to/output.grid

#######################
# Optional Parameters #
#######################

# Appends a hill shade plane built from the first value component. Only
# works for two-dimensional grids.
# HillShade = true
# SmoothSigma = 5
# ShadingFactor = 0.2
# Azimuth = 275
# Altitude = 145
# SmoothFilter sets the smoothing kernel: gaussian or tophat.
# SmoothFilter = gaussian
# SmoothBoundary sets how the grid is extended past its edges while
# smoothing: reflect, periodic, zero or extend.
# SmoothBoundary = reflect
# ImageOrigin = lower puts the first grid axis northward, with its first
# row at the bottom of the image. upper puts the first row at the top, as
# matplotlib's LightSource assumes.
# ImageOrigin = lower

# Writes a quick-look plot of the first component along ProfileAxis,
# passing through the cell with the indices given by ProfileCell (one line
# per axis, defaults to the center of the grid).
# ProfilePlot = path/to/profile.png
# ProfileAxis = 0
# ProfileCell = 5
# ProfileCell = 5

# Writes a histogram of the valid cells of the first component.
# HistPlot = path/to/hist.png
# HistMin = 0
# HistMax = 100
# HistBins = 50
# HistScale = linear

[Resample]

# Number of worker goroutines (defaults to GOMAXPROCS) and number of cells
# handed to a worker at once.
# Workers = 4
# ChunkSize = 4096`

type GridConfig struct {
	// Required
	Min, Max []float64 `validate:"min=1"`
	Count    []int     `validate:"min=1,dive,gte=1"`

	// Optional
	System string `validate:"oneof=cartesian geographic lonlat"`
}

type InputConfig struct {
	// Required
	File        string `validate:"required"`
	CoordColumn []int  `validate:"min=1,dive,gte=0"`
	ValueColumn []int  `validate:"min=1,dive,gte=0"`

	// Optional
	WeightColumn int `validate:"gte=-1"`
}

type InterpolatorConfig struct {
	// Required
	Method string `validate:"oneof=nearest idw polynomial"`

	// Optional
	MaxDistance float64 `validate:"gte=0"`
	Power       float64 `validate:"gte=0"`
	Radius      float64 `validate:"gte=0"`
	Threshold   float64 `validate:"gte=0"`
	Order       int     `validate:"gte=0,lte=8"`
	Bandwidth   float64 `validate:"gte=0"`
}

type QualityConfig struct {
	MinConfidence float64 `validate:"gte=0,lte=1"`
}

type OutputConfig struct {
	// Required
	File string `validate:"required"`

	// Optional
	HillShade      bool
	SmoothSigma    float64 `validate:"gte=0"`
	ShadingFactor  float64 `validate:"gt=0"`
	Azimuth        float64
	Altitude       float64
	SmoothFilter   string `validate:"oneof=gaussian tophat"`
	SmoothBoundary string `validate:"oneof=reflect periodic zero extend"`
	ImageOrigin    string `validate:"oneof=lower upper"`

	ProfilePlot string
	ProfileAxis int   `validate:"gte=0"`
	ProfileCell []int `validate:"dive,gte=0"`

	HistPlot         string
	HistMin, HistMax float64
	HistBins         int    `validate:"gte=1"`
	HistScale        string `validate:"oneof=linear log"`
}

type ResampleConfig struct {
	Workers   int `validate:"gte=0"`
	ChunkSize int `validate:"gte=1"`
}

// RunConfig is the contents of a run file. Each field is one section.
type RunConfig struct {
	Grid         GridConfig
	Input        InputConfig
	Interpolator InterpolatorConfig
	Quality      QualityConfig
	Output       OutputConfig
	Resample     ResampleConfig
}

var validate = validator.New()

// DefaultRunConfig returns a RunConfig holding the default value of every
// optional parameter.
func DefaultRunConfig() *RunConfig {
	con := &RunConfig{}
	con.Grid.System = "cartesian"
	con.Input.WeightColumn = -1
	con.Interpolator.Power = 2
	con.Interpolator.Order = 1
	con.Quality.MinConfidence = 0.5

	opt := shade.DefaultOptions()
	con.Output.SmoothSigma = opt.SmoothSigma
	con.Output.ShadingFactor = opt.ShadingFactor
	con.Output.Azimuth = opt.Azimuth
	con.Output.Altitude = opt.Altitude
	con.Output.SmoothFilter = "gaussian"
	con.Output.SmoothBoundary = "reflect"
	con.Output.ImageOrigin = "lower"
	con.Output.HistBins = 50
	con.Output.HistScale = "linear"

	con.Resample.ChunkSize = 4096
	return con
}

// ReadConfig reads and checks the run file fname.
func ReadConfig(fname string) (*RunConfig, error) {
	con := DefaultRunConfig()
	if err := gcfg.ReadFileInto(con, fname); err != nil {
		return nil, errors.Wrapf(err, "reading config file '%s'", fname)
	}
	if err := con.CheckInit(); err != nil {
		return nil, errors.Wrapf(err, "config file '%s'", fname)
	}
	return con, nil
}

// ParseConfig reads and checks a run file held in a string.
func ParseConfig(text string) (*RunConfig, error) {
	con := DefaultRunConfig()
	if err := gcfg.ReadStringInto(con, text); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := con.CheckInit(); err != nil { return nil, err }
	return con, nil
}

// CheckInit normalizes the names in con and returns an error wrapping
// errs.ErrValidation if any parameter is out of range or inconsistent with
// the others.
func (con *RunConfig) CheckInit() error {
	con.Grid.System = strings.ToLower(strings.TrimSpace(con.Grid.System))
	con.Interpolator.Method = strings.ToLower(strings.TrimSpace(con.Interpolator.Method))
	con.Output.HistScale = strings.ToLower(strings.TrimSpace(con.Output.HistScale))
	con.Output.SmoothFilter = strings.ToLower(strings.TrimSpace(con.Output.SmoothFilter))
	con.Output.SmoothBoundary = strings.ToLower(strings.TrimSpace(con.Output.SmoothBoundary))
	con.Output.ImageOrigin = strings.ToLower(strings.TrimSpace(con.Output.ImageOrigin))

	if err := validate.Struct(con); err != nil {
		return errs.Validation("%s", err.Error())
	}

	g := &con.Grid
	if len(g.Min) != len(g.Count) || len(g.Max) != len(g.Count) {
		return errs.Validation(
			"[Grid] has %d Min, %d Max and %d Count values, but they must match",
			len(g.Min), len(g.Max), len(g.Count),
		)
	} else if len(con.Input.CoordColumn) != len(g.Count) {
		return errs.Validation(
			"[Input] has %d CoordColumn values, but the grid has %d axes",
			len(con.Input.CoordColumn), len(g.Count),
		)
	}

	out := &con.Output
	if out.ProfilePlot != "" {
		if out.ProfileAxis >= len(g.Count) {
			return errs.Validation(
				"[Output] ProfileAxis = %d, but the grid has %d axes",
				out.ProfileAxis, len(g.Count),
			)
		} else if len(out.ProfileCell) != 0 && len(out.ProfileCell) != len(g.Count) {
			return errs.Validation(
				"[Output] has %d ProfileCell values, but the grid has %d axes",
				len(out.ProfileCell), len(g.Count),
			)
		}
	}
	if out.HistPlot != "" && !(out.HistMax > out.HistMin) {
		return errs.Validation(
			"[Output] HistMin = %g is not below HistMax = %g",
			out.HistMin, out.HistMax,
		)
	}

	if _, err := con.Interpolator.Interpolator(); err != nil { return err }
	return nil
}

// Grid builds the grid described by the [Grid] section.
func (con *GridConfig) Grid() (*geom.Grid, error) {
	system, err := geom.ParseCoordSystem(con.System)
	if err != nil { return nil, err }

	if len(con.Min) != len(con.Count) || len(con.Max) != len(con.Count) {
		return nil, errs.InvalidGrid("mismatched numbers of Min, Max and Count")
	}
	axes := make([]geom.Axis, len(con.Count))
	for i := range axes {
		axes[i] = geom.Axis{Min: con.Min[i], Max: con.Max[i], Count: con.Count[i]}
	}
	return geom.NewGrid(system, axes...)
}

// Interpolator builds the interpolator described by the [Interpolator]
// section. Zero distances mean that there is no limit.
func (con *InterpolatorConfig) Interpolator() (interpolate.Interpolator, error) {
	var intr interpolate.Interpolator
	switch strings.ToLower(con.Method) {
	case "nearest":
		intr = interpolate.NearestNeighbor{MaxDistance: unlimited(con.MaxDistance)}
	case "idw":
		intr = interpolate.InverseDistance{
			Power: con.Power, Radius: unlimited(con.Radius),
			Threshold: con.Threshold,
		}
	case "polynomial":
		intr = interpolate.LocalPolynomial{
			Order: con.Order, Bandwidth: con.Bandwidth,
			Threshold: con.Threshold,
		}
	default:
		return nil, errs.Validation("unrecognized interpolation method '%s'", con.Method)
	}

	if err := intr.Validate(); err != nil { return nil, err }
	return intr, nil
}

// ShadeOptions returns the hill shading options of the [Output] section.
func (con *OutputConfig) ShadeOptions() shade.Options {
	opt := shade.DefaultOptions()
	opt.SmoothSigma = con.SmoothSigma
	opt.ShadingFactor = con.ShadingFactor
	opt.Azimuth = con.Azimuth
	opt.Altitude = con.Altitude
	if f, ok := filters[con.SmoothFilter]; ok { opt.Filter = f }
	if b, ok := boundaries[con.SmoothBoundary]; ok { opt.Boundary = b }
	if con.ImageOrigin == "upper" { opt.Origin = shade.Upper }
	return opt
}

var filters = map[string]shade.Filter{
	"gaussian": shade.Gaussian, "tophat": shade.Tophat,
}

var boundaries = map[string]shade.BoundaryCondition{
	"reflect": shade.Reflection, "periodic": shade.Periodic,
	"zero": shade.ZeroPad, "extend": shade.Extension,
}

func unlimited(x float64) float64 {
	if x == 0 { return math.Inf(+1) }
	return x
}
