package render

import (
	"fmt"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/phil-mansfield/gogrid"
)

// CurvePoints is the number of points used to draw spline curves.
const CurvePoints = 200

// PlotProfile queues a figure showing p and saves it to fname. Valid cells
// are drawn as black points with a spline through them, extrapolated cells
// as red points.
func PlotProfile(p *Profile, xLabel, yLabel, title, fname string) {
	plt.Figure(plt.FigSize(8, 6))

	if xs, ys, err := p.Curve(CurvePoints); err == nil {
		plt.Plot(xs, ys, "b", plt.Label("Spline"), plt.LW(2))
	}
	if xs, ys := p.Select(gogrid.Valid); len(xs) > 0 {
		plt.Plot(xs, ys, "ok", plt.Label("Valid"))
	}
	if xs, ys := p.Select(gogrid.Extrapolated); len(xs) > 0 {
		plt.Plot(xs, ys, "o", plt.C("r"), plt.Label("Extrapolated"))
	}

	if lo, hi := p.Range(); lo < hi {
		pad := (hi - lo) * 0.05
		plt.YLim(lo-pad, hi+pad)
	}
	if lo, hi := p.Coords[0], p.Coords[len(p.Coords)-1]; lo < hi {
		plt.XLim(lo, hi)
	}

	plt.Title(title)
	plt.XLabel(xLabel, plt.FontSize(16))
	plt.YLabel(yLabel, plt.FontSize(16))
	plt.Legend(plt.Loc("upper left"), plt.FrameOn(false))
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
}

// PlotHist queues a figure of h as a step curve and saves it to fname.
func PlotHist(h *Hist, xLabel, title, fname string) {
	plt.Figure(plt.FigSize(8, 6))

	xs, ys := h.Steps()
	plt.Plot(xs, ys, "k", plt.LW(2))
	if h.Info.isLog() { plt.XScale("log") }
	plt.XLim(h.Info.Min, h.Info.Max)

	plt.Title(fmt.Sprintf("%s (%d below, %d above)", title, h.Under, h.Over))
	plt.XLabel(xLabel, plt.FontSize(16))
	plt.YLabel("cells", plt.FontSize(16))
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
}

// Steps returns the outline of the histogram as a polyline.
func (h *Hist) Steps() (xs, ys []float64) {
	edges := histEdges(&h.Info)
	xs = make([]float64, 0, 2*len(h.Counts))
	ys = make([]float64, 0, 2*len(h.Counts))
	for i, n := range h.Counts {
		xs = append(xs, edges[i], edges[i+1])
		ys = append(ys, float64(n), float64(n))
	}
	return xs, ys
}
