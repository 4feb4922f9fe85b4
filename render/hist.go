/*package render builds quick-look diagnostics for resampled fields: value
histograms, profiles along a grid axis, and the pyplot scripts which draw
them.

Everything here only queues plotting commands; nothing is drawn until
pyplot's Execute is called, which is left to the caller.
*/
package render

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/phil-mansfield/gogrid"
	"github.com/phil-mansfield/gogrid/errs"
)

// HistInfo describes the binning of a histogram. Scale is either "linear" or
// "log".
type HistInfo struct {
	Min, Max float64
	Bins     int
	Scale    string
}

// Hist is a histogram of one component of a Field over its Valid cells.
// Values outside [Min, Max) are counted in Under and Over.
type Hist struct {
	Info        HistInfo
	Centers     []float64
	Counts      []int
	Under, Over int
}

func (info *HistInfo) check() error {
	isLog := info.isLog()
	if info.Bins < 1 {
		return errs.Validation("histogram needs at least one bin, got %d", info.Bins)
	} else if !(info.Max > info.Min) {
		return errs.Validation(
			"histogram range [%g, %g] is empty", info.Min, info.Max,
		)
	} else if isLog && !(info.Min > 0) {
		return errs.Validation(
			"log histogram needs a positive minimum, got %g", info.Min,
		)
	} else if !isLog && strings.ToLower(info.Scale) != "linear" && info.Scale != "" {
		return errs.Validation("unrecognized histogram scale '%s'", info.Scale)
	}
	return nil
}

func (info *HistInfo) isLog() bool {
	return strings.ToLower(info.Scale) == "log"
}

// histEdges returns the Bins+1 bin edges of a histogram.
func histEdges(info *HistInfo) []float64 {
	edges := make([]float64, info.Bins+1)
	if info.isLog() {
		floats.LogSpan(edges, info.Min, info.Max)
	} else {
		floats.Span(edges, info.Min, info.Max)
	}
	edges[0], edges[info.Bins] = info.Min, info.Max
	return edges
}

// histCenters returns the centers of a histogram: arithmetic midpoints of
// linear bins and geometric midpoints of log bins.
func histCenters(info *HistInfo, edges []float64) []float64 {
	centers := make([]float64, info.Bins)
	for i := range centers {
		if info.isLog() {
			centers[i] = math.Sqrt(edges[i] * edges[i+1])
		} else {
			centers[i] = (edges[i] + edges[i+1]) / 2
		}
	}
	return centers
}

// NewHist bins component c of f over the cells that m marks as Valid.
func NewHist(f *gogrid.Field, m *gogrid.Mask, c int, info HistInfo) (*Hist, error) {
	if err := info.check(); err != nil { return nil, err }
	if m.Len() != f.Len() {
		return nil, errs.Validation(
			"mask has %d cells, but the field has %d", m.Len(), f.Len(),
		)
	} else if c < 0 || c >= f.Components() {
		return nil, errs.Validation(
			"component %d requested from a field with %d components",
			c, f.Components(),
		)
	}

	edges := histEdges(&info)
	h := &Hist{
		Info: info, Centers: histCenters(&info, edges),
		Counts: make([]int, info.Bins),
	}

	// stat.Histogram panics on values outside the edges.
	xs := make([]float64, 0, m.Count(gogrid.Valid))
	for i := 0; i < f.Len(); i++ {
		if m.At(i) != gogrid.Valid { continue }

		x := f.Value(i)[c]
		switch {
		case math.IsNaN(x): continue
		case x < info.Min: h.Under++
		case x >= info.Max: h.Over++
		default: xs = append(xs, x)
		}
	}
	sort.Float64s(xs)

	counts := stat.Histogram(nil, edges, xs, nil)
	for i := range counts { h.Counts[i] = int(counts[i]) }
	return h, nil
}

// Total returns the number of binned cells, excluding Under and Over.
func (h *Hist) Total() int {
	sum := 0
	for _, n := range h.Counts { sum += n }
	return sum
}
