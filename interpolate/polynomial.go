package interpolate

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/geom"
	"github.com/phil-mansfield/gogrid/sample"
)

// MaxPolynomialOrder is the largest Order a LocalPolynomial accepts.
const MaxPolynomialOrder = 8

// LocalPolynomial is a loess-like interpolator. For every query point it fits
// a polynomial containing every monomial of total degree <= Order to the
// usable samples within Bandwidth, each weighted by its record weight times
// a Gaussian kernel with sigma = Bandwidth / 2, and reports the value of the
// fit at the query point.
//
// If fewer samples than free parameters lie within the bandwidth, or if the
// fit is singular, the estimate has zero confidence. Otherwise the
// confidence is min(1, n_eff / Threshold), where n_eff is the effective
// sample count of the kernel weights. A zero Threshold means twice the number
// of free parameters.
type LocalPolynomial struct {
	Order                int
	Bandwidth, Threshold float64
}

// NewLocalPolynomial returns a LocalPolynomial interpolator with the default
// threshold.
func NewLocalPolynomial(order int, bandwidth float64) (LocalPolynomial, error) {
	lp := LocalPolynomial{Order: order, Bandwidth: bandwidth}
	return lp, lp.Validate()
}

func (lp LocalPolynomial) Kind() Kind { return LocalPolynomialKind }

func (lp LocalPolynomial) Validate() error {
	if lp.Order < 0 || lp.Order > MaxPolynomialOrder {
		return errs.Validation(
			"polynomial Order must be in [0, %d], got %d",
			MaxPolynomialOrder, lp.Order,
		)
	} else if !(lp.Bandwidth > 0) || math.IsInf(lp.Bandwidth, 0) {
		return errs.Validation(
			"polynomial Bandwidth must be positive and finite, got %g",
			lp.Bandwidth,
		)
	} else if !(lp.Threshold >= 0) || math.IsInf(lp.Threshold, 0) {
		return errs.Validation(
			"polynomial Threshold must be non-negative, got %g", lp.Threshold,
		)
	}
	return nil
}

// Params returns the number of free parameters of the fit in dims
// dimensions, C(Order + dims, dims).
func (lp LocalPolynomial) Params(dims int) int {
	n := 1
	for i := 1; i <= dims; i++ {
		n = n * (lp.Order + i) / i
	}
	return n
}

func (lp LocalPolynomial) Estimate(
	s *sample.Set, queries [][]float64,
) ([]Estimate, error) {
	return estimate(lp, s, queries)
}

func (lp LocalPolynomial) EstimateWith(
	nb *Neighbors, queries [][]float64, out []Estimate,
) error {
	return estimateWith(lp, nb, queries, out)
}

func (lp LocalPolynomial) estimate(
	nb *Neighbors, q []float64, buf *workBuf, out *Estimate,
) {
	s := nb.set
	if nb.Len() == 0 {
		out.empty(components(s))
		return
	}

	if buf.exps == nil { buf.exps = monomials(len(q), lp.Order) }
	exps := buf.exps
	p := len(exps)

	buf.nbs = nb.Within(q, lp.Bandwidth, buf.nbs)
	nbs := buf.nbs
	if len(nbs) < p {
		out.empty(components(s))
		return
	}

	sigma := lp.Bandwidth / 2
	a := mat.NewDense(len(nbs), p, nil)
	b := mat.NewDense(len(nbs), s.Components(), nil)
	ws := buf.weights[:0]
	dx := make([]float64, len(q))

	for i, n := range nbs {
		z := n.Dist / sigma
		w := s.Weight(n.Index) * math.Exp(-z*z/2)
		ws = append(ws, w)
		sw := math.Sqrt(w)

		// Centering on the query point makes the intercept the estimate.
		lp.offsets(nb.metric, s.Coord(n.Index), q, dx)
		for j, e := range exps { a.Set(i, j, sw*monomial(dx, e)) }
		for k, v := range s.Value(n.Index) { b.Set(i, k, sw*v) }
	}
	buf.weights = ws

	var beta mat.Dense
	if err := beta.Solve(a, b); err != nil {
		out.empty(components(s))
		return
	}

	out.init(s.Components())
	for k := range out.Value {
		v := beta.At(0, k)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out.empty(components(s))
			return
		}
		out.Value[k] = v
	}

	threshold := lp.Threshold
	if threshold == 0 { threshold = 2 * float64(p) }
	out.Confidence = saturate(effectiveCount(ws) / threshold)
}

// offsets writes the position of x relative to q to dx, in units of the
// bandwidth. Under the haversine metric, longitude and latitude are projected
// onto the plane tangent to the sphere at q (in the metric's units), with
// longitude differences wrapped across the antimeridian.
func (lp LocalPolynomial) offsets(metric geom.Metric, x, q, dx []float64) {
	h, ok := metric.(geom.Haversine)
	if !ok {
		for k := range dx { dx[k] = (x[k] - q[k]) / lp.Bandwidth }
		return
	}

	const rad = math.Pi / 180
	dLon := math.Remainder(x[0]-q[0], 360)
	dx[0] = dLon * rad * h.Radius * math.Cos(q[1]*rad) / lp.Bandwidth
	dx[1] = (x[1] - q[1]) * rad * h.Radius / lp.Bandwidth
	for k := 2; k < len(dx); k++ { dx[k] = (x[k] - q[k]) / lp.Bandwidth }
}

func monomial(x []float64, e []int) float64 {
	prod := 1.0
	for k, n := range e {
		for ; n > 0; n-- { prod *= x[k] }
	}
	return prod
}

// monomials lists the exponent vectors of every monomial in dims variables
// with total degree <= order, ordered by degree. The constant term is first.
func monomials(dims, order int) [][]int {
	var out [][]int
	e := make([]int, dims)
	for deg := 0; deg <= order; deg++ {
		out = appendDegree(out, e, 0, deg)
	}
	return out
}

func appendDegree(out [][]int, e []int, k, left int) [][]int {
	if k == len(e)-1 {
		e[k] = left
		return append(out, append([]int(nil), e...))
	}
	for x := left; x >= 0; x-- {
		e[k] = x
		out = appendDegree(out, e, k+1, left-x)
	}
	return out
}
