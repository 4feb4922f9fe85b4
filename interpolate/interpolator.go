/*package interpolate estimates field values at arbitrary query points from a
sample.Set of scattered measurements.

There are exactly three strategies: NearestNeighbor, InverseDistance and
LocalPolynomial. All of them are stateless values which can be shared
between goroutines, and all of them report a confidence in [0, 1] next to
every estimate. A confidence of 0 means that no usable samples were close
enough to the query point and that the value is NaN.
*/
package interpolate

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/geom"
	"github.com/phil-mansfield/gogrid/sample"
)

// Kind identifies an interpolation strategy.
type Kind int

const (
	NearestKind Kind = iota
	InverseDistanceKind
	LocalPolynomialKind
)

func (k Kind) String() string {
	switch k {
	case NearestKind: return "nearest"
	case InverseDistanceKind: return "idw"
	case LocalPolynomialKind: return "polynomial"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Estimate is the value of a field at a single query point together with
// the confidence of that value.
type Estimate struct {
	Value      []float64
	Confidence float64
}

// Interpolator is the closed set of interpolation strategies. It cannot be
// implemented outside this package.
type Interpolator interface {
	// Kind returns the strategy implemented by the Interpolator.
	Kind() Kind
	// Validate returns an error wrapping errs.ErrValidation if the
	// Interpolator's parameters are unusable.
	Validate() error

	// Estimate evaluates the field described by s at every query point,
	// distances being Euclidean. The output is parallel to queries.
	Estimate(s *sample.Set, queries [][]float64) ([]Estimate, error)
	// EstimateWith evaluates the field at every query point using a
	// prebuilt Neighbors index and writes the results to out, which must
	// have the same length as queries.
	EstimateWith(nb *Neighbors, queries [][]float64, out []Estimate) error

	estimate(nb *Neighbors, q []float64, buf *workBuf, out *Estimate)
}

var (
	_ Interpolator = NearestNeighbor{}
	_ Interpolator = InverseDistance{}
	_ Interpolator = LocalPolynomial{}
)

// workBuf holds scratch space which is reused between queries of a single
// EstimateWith call.
type workBuf struct {
	nbs     []Neighbor
	weights []float64
	exps    [][]int
}

func estimate(
	intr Interpolator, s *sample.Set, queries [][]float64,
) ([]Estimate, error) {
	nb := NewNeighbors(s, geom.Euclidean{})
	out := make([]Estimate, len(queries))
	if err := intr.EstimateWith(nb, queries, out); err != nil {
		return nil, err
	}
	return out, nil
}

func estimateWith(
	intr Interpolator, nb *Neighbors, queries [][]float64, out []Estimate,
) error {
	if err := intr.Validate(); err != nil { return err }
	if len(out) != len(queries) {
		return errs.Validation(
			"len(out) = %d, but len(queries) = %d", len(out), len(queries),
		)
	}

	dims := nb.set.Dims()
	for i, q := range queries {
		if nb.set.Len() > 0 && len(q) != dims {
			return errs.Validation(
				"query %d has %d coordinates, but samples have %d",
				i, len(q), dims,
			)
		}
	}

	buf := &workBuf{}
	for i, q := range queries {
		intr.estimate(nb, q, buf, &out[i])
	}
	return nil
}

// components is the number of value components an Estimate carries. Empty
// sets still produce one (NaN) component.
func components(s *sample.Set) int {
	if s.Components() == 0 { return 1 }
	return s.Components()
}

func (e *Estimate) init(comps int) {
	if cap(e.Value) >= comps {
		e.Value = e.Value[:comps]
	} else {
		e.Value = make([]float64, comps)
	}
}

func (e *Estimate) empty(comps int) {
	e.init(comps)
	for i := range e.Value { e.Value[i] = math.NaN() }
	e.Confidence = 0
}

func (e *Estimate) exact(v []float64) {
	e.init(len(v))
	copy(e.Value, v)
	e.Confidence = 1
}

// effectiveCount returns Kish's effective sample count, (sum w)^2 / sum w^2.
// Weights are rescaled by their maximum first so that the squares cannot
// overflow.
func effectiveCount(ws []float64) float64 {
	max := 0.0
	for _, w := range ws {
		if w > max { max = w }
	}
	if max == 0 { return 0 }

	sum, sum2 := 0.0, 0.0
	for _, w := range ws {
		x := w / max
		sum += x
		sum2 += x * x
	}
	return sum * sum / sum2
}

func saturate(x float64) float64 {
	if x > 1 { return 1 }
	if x < 0 { return 0 }
	return x
}
