package interpolate

import (
	"math"

	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/sample"
)

// NearestNeighbor assigns every query point the value of the closest usable
// sample. The confidence is 1 if that sample lies within MaxDistance and 0
// otherwise. Equally close samples are resolved in favor of the lowest
// record index.
type NearestNeighbor struct {
	MaxDistance float64
}

// NewNearestNeighbor returns a NearestNeighbor interpolator with the given
// maximum distance. Use math.Inf(+1) to accept samples at any distance.
func NewNearestNeighbor(maxDist float64) (NearestNeighbor, error) {
	nn := NearestNeighbor{MaxDistance: maxDist}
	return nn, nn.Validate()
}

func (nn NearestNeighbor) Kind() Kind { return NearestKind }

func (nn NearestNeighbor) Validate() error {
	if !(nn.MaxDistance > 0) {
		return errs.Validation(
			"nearest neighbor MaxDistance must be positive, got %g", nn.MaxDistance,
		)
	}
	return nil
}

func (nn NearestNeighbor) Estimate(
	s *sample.Set, queries [][]float64,
) ([]Estimate, error) {
	return estimate(nn, s, queries)
}

func (nn NearestNeighbor) EstimateWith(
	nb *Neighbors, queries [][]float64, out []Estimate,
) error {
	return estimateWith(nn, nb, queries, out)
}

func (nn NearestNeighbor) estimate(
	nb *Neighbors, q []float64, buf *workBuf, out *Estimate,
) {
	n, ok := nb.Nearest(q)
	if !ok || n.Dist > nn.MaxDistance || math.IsNaN(n.Dist) {
		out.empty(components(nb.set))
		return
	}
	out.exact(nb.set.Value(n.Index))
}
