/*package sample contains the immutable container for scattered input
measurements which gets handed to the interpolators.

A Set is built once from a slice of Records and never changes afterwards.
Everything which looks like a modification (Filter, Valid) returns a new
Set, so a single Set can be read from any number of goroutines at once.
*/
package sample

import (
	"math"

	"github.com/phil-mansfield/gogrid/errs"
)

// Record is a single measurement: a coordinate vector, a value vector (a
// scalar is a one-component vector), a non-negative weight, and a flag
// marking whether the measurement should be used at all.
//
// The zero Weight is not a default: a Record with weight 0 is kept in the
// Set but never used by an interpolator. Use Point to get the default
// weight of 1.
type Record struct {
	Coord  []float64
	Value  []float64
	Weight float64
	Valid  bool
}

// Point returns a valid Record with the default weight of 1.
func Point(coord []float64, value ...float64) Record {
	return Record{Coord: coord, Value: value, Weight: 1, Valid: true}
}

// Set is an immutable sequence of Records which all share the same
// coordinate dimensionality and the same number of value components.
type Set struct {
	coords, vals, weights []float64
	valid                 []bool

	n, dims, comps, validN int
}

// FromRecords creates a Set from records. The records are copied, so the
// caller is free to reuse them afterwards. Weights are stored as given;
// records with weight 0 stay in the Set, keeping their index, but are
// skipped during interpolation. Point is the constructor which applies
// the default weight.
//
// An error wrapping errs.ErrValidation is returned if coordinate or value
// lengths are inconsistent, if any weight is negative or non-finite, or if
// a valid record has a non-finite coordinate or value.
func FromRecords(recs []Record) (*Set, error) {
	s := &Set{n: len(recs)}
	if len(recs) == 0 { return s, nil }

	s.dims, s.comps = len(recs[0].Coord), len(recs[0].Value)
	if s.dims == 0 {
		return nil, errs.Validation("record 0 has an empty coordinate")
	} else if s.comps == 0 {
		return nil, errs.Validation("record 0 has an empty value")
	}

	s.coords = make([]float64, 0, s.n*s.dims)
	s.vals = make([]float64, 0, s.n*s.comps)
	s.weights = make([]float64, s.n)
	s.valid = make([]bool, s.n)

	for i := range recs {
		r := &recs[i]
		if err := s.check(i, r); err != nil { return nil, err }

		s.coords = append(s.coords, r.Coord...)
		s.vals = append(s.vals, r.Value...)
		s.weights[i] = r.Weight
		s.valid[i] = r.Valid
		if r.Valid { s.validN++ }
	}

	return s, nil
}

func (s *Set) check(i int, r *Record) error {
	if len(r.Coord) != s.dims {
		return errs.Validation(
			"record %d has %d coordinates, but record 0 has %d",
			i, len(r.Coord), s.dims,
		)
	} else if len(r.Value) != s.comps {
		return errs.Validation(
			"record %d has %d value components, but record 0 has %d",
			i, len(r.Value), s.comps,
		)
	} else if r.Weight < 0 || math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) {
		return errs.Validation("record %d has weight %g", i, r.Weight)
	}

	if !r.Valid { return nil }

	for k, x := range r.Coord {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return errs.Validation("record %d has coordinate %d = %g", i, k, x)
		}
	}
	for k, v := range r.Value {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.Validation("record %d has value %d = %g", i, k, v)
		}
	}
	return nil
}

// Len returns the number of records, valid or not.
func (s *Set) Len() int { return s.n }

// ValidLen returns the number of valid records.
func (s *Set) ValidLen() int { return s.validN }

// Dims returns the coordinate dimensionality. An empty Set has zero
// dimensions.
func (s *Set) Dims() int { return s.dims }

// Components returns the number of value components per record.
func (s *Set) Components() int { return s.comps }

// Coord returns the coordinate of record i. The returned slice is shared
// with the Set and must not be modified.
func (s *Set) Coord(i int) []float64 {
	return s.coords[i*s.dims : (i+1)*s.dims : (i+1)*s.dims]
}

// Value returns the value of record i. The returned slice is shared with the
// Set and must not be modified.
func (s *Set) Value(i int) []float64 {
	return s.vals[i*s.comps : (i+1)*s.comps : (i+1)*s.comps]
}

func (s *Set) Weight(i int) float64 { return s.weights[i] }
func (s *Set) IsValid(i int) bool   { return s.valid[i] }

// Record returns a copy of record i.
func (s *Set) Record(i int) Record {
	return Record{
		Coord:  append([]float64(nil), s.Coord(i)...),
		Value:  append([]float64(nil), s.Value(i)...),
		Weight: s.weights[i],
		Valid:  s.valid[i],
	}
}

// Records returns copies of every record in order.
func (s *Set) Records() []Record {
	recs := make([]Record, s.n)
	for i := range recs { recs[i] = s.Record(i) }
	return recs
}

// Filter returns a new Set containing the records for which pred returns
// true, in their original order.
func (s *Set) Filter(pred func(Record) bool) *Set {
	out := &Set{dims: s.dims, comps: s.comps}
	for i := 0; i < s.n; i++ {
		r := s.Record(i)
		if !pred(r) { continue }

		out.coords = append(out.coords, r.Coord...)
		out.vals = append(out.vals, r.Value...)
		out.weights = append(out.weights, r.Weight)
		out.valid = append(out.valid, r.Valid)
		out.n++
		if r.Valid { out.validN++ }
	}
	if out.n == 0 { out.dims, out.comps = 0, 0 }
	return out
}

// Valid returns a new Set containing only the valid records.
func (s *Set) Valid() *Set {
	return s.Filter(func(r Record) bool { return r.Valid })
}

// BoundingBox returns the per-axis minimum and maximum coordinates of the
// valid records. It returns an error wrapping errs.ErrEmptyInput if there
// are no valid records.
func (s *Set) BoundingBox() (min, max []float64, err error) {
	if s.validN == 0 {
		return nil, nil, errs.EmptyInput("bounding box of a set with no valid records")
	}

	min, max = make([]float64, s.dims), make([]float64, s.dims)
	for k := range min {
		min[k], max[k] = math.Inf(+1), math.Inf(-1)
	}

	for i := 0; i < s.n; i++ {
		if !s.valid[i] { continue }
		for k, x := range s.Coord(i) {
			if x < min[k] { min[k] = x }
			if x > max[k] { max[k] = x }
		}
	}
	return min, max, nil
}
