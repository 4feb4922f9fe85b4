package interpolate

import (
	"math"

	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/sample"
)

// DefaultIDWThreshold is the effective sample count at which an
// InverseDistance estimate reaches full confidence.
const DefaultIDWThreshold = 4.0

// InverseDistance is an inverse distance weighted interpolator. Every usable
// sample within Radius of the query point gets the weight
//
//     w_i = weight_i / d_i^Power,
//
// and the estimate is the w-weighted mean of their values. A sample sitting
// exactly on the query point is returned as-is with full confidence.
//
// The confidence is min(1, n_eff / Threshold), where n_eff is the effective
// sample count (sum w)^2 / sum(w^2). A zero Threshold means
// DefaultIDWThreshold.
type InverseDistance struct {
	Power, Radius, Threshold float64
}

// NewInverseDistance returns an InverseDistance interpolator with the
// default threshold. Use math.Inf(+1) for an unbounded radius.
func NewInverseDistance(power, radius float64) (InverseDistance, error) {
	idw := InverseDistance{Power: power, Radius: radius}
	return idw, idw.Validate()
}

func (idw InverseDistance) Kind() Kind { return InverseDistanceKind }

func (idw InverseDistance) Validate() error {
	if !(idw.Power >= 0) || math.IsInf(idw.Power, 0) {
		return errs.Validation("IDW Power must be non-negative, got %g", idw.Power)
	} else if !(idw.Radius > 0) {
		return errs.Validation("IDW Radius must be positive, got %g", idw.Radius)
	} else if !(idw.Threshold >= 0) || math.IsInf(idw.Threshold, 0) {
		return errs.Validation(
			"IDW Threshold must be non-negative, got %g", idw.Threshold,
		)
	}
	return nil
}

func (idw InverseDistance) threshold() float64 {
	if idw.Threshold == 0 { return DefaultIDWThreshold }
	return idw.Threshold
}

func (idw InverseDistance) Estimate(
	s *sample.Set, queries [][]float64,
) ([]Estimate, error) {
	return estimate(idw, s, queries)
}

func (idw InverseDistance) EstimateWith(
	nb *Neighbors, queries [][]float64, out []Estimate,
) error {
	return estimateWith(idw, nb, queries, out)
}

func (idw InverseDistance) estimate(
	nb *Neighbors, q []float64, buf *workBuf, out *Estimate,
) {
	s := nb.set
	buf.nbs = nb.Within(q, idw.Radius, buf.nbs)
	nbs := buf.nbs
	if len(nbs) == 0 {
		out.empty(components(s))
		return
	}

	// Coincident samples short-circuit, lowest index first.
	exact, dMin := -1, math.Inf(+1)
	for _, n := range nbs {
		if n.Dist == 0 && (exact < 0 || n.Index < exact) { exact = n.Index }
		if n.Dist < dMin { dMin = n.Dist }
	}
	if exact >= 0 {
		out.exact(s.Value(exact))
		return
	}

	// Distances are measured in units of the closest one, which keeps the
	// weights finite for tiny separations.
	ws := buf.weights[:0]
	for _, n := range nbs {
		w := s.Weight(n.Index)
		if idw.Power != 0 { w *= math.Pow(dMin/n.Dist, idw.Power) }
		ws = append(ws, w)
	}
	buf.weights = ws

	out.init(s.Components())
	for k := range out.Value { out.Value[k] = 0 }
	sum := 0.0
	for i, n := range nbs {
		v := s.Value(n.Index)
		for k := range out.Value { out.Value[k] += ws[i] * v[k] }
		sum += ws[i]
	}
	if sum == 0 {
		out.empty(components(s))
		return
	}
	for k := range out.Value { out.Value[k] /= sum }

	out.Confidence = saturate(effectiveCount(ws) / idw.threshold())
}
