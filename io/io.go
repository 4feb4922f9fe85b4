package io

import (
	"math"

	"github.com/phil-mansfield/table"
	"github.com/pkg/errors"

	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/sample"
)

// ReadSamples reads the sample table described by cfg. Rows with a
// non-finite coordinate or value, or with a weight which is negative or
// non-finite, are kept as invalid records so that record indices line up
// with the rows of the file.
func ReadSamples(cfg InputConfig) (*sample.Set, error) {
	dims, comps := len(cfg.CoordColumn), len(cfg.ValueColumn)
	if dims == 0 {
		return nil, errs.Validation("no coordinate columns given for '%s'", cfg.File)
	} else if comps == 0 {
		return nil, errs.Validation("no value columns given for '%s'", cfg.File)
	}

	colIdxs := make([]int, 0, dims+comps+1)
	colIdxs = append(colIdxs, cfg.CoordColumn...)
	colIdxs = append(colIdxs, cfg.ValueColumn...)
	hasWeight := cfg.WeightColumn >= 0
	if hasWeight { colIdxs = append(colIdxs, cfg.WeightColumn) }

	cols, err := table.ReadTable(cfg.File, colIdxs, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sample table '%s'", cfg.File)
	}

	return samplesFromColumns(cols, dims, comps, hasWeight)
}

// samplesFromColumns converts the columns read from a sample table into a
// Set. cols holds dims coordinate columns, then comps value columns, then
// an optional weight column.
func samplesFromColumns(
	cols [][]float64, dims, comps int, hasWeight bool,
) (*sample.Set, error) {
	if len(cols) == 0 { return sample.FromRecords(nil) }
	n := len(cols[0])

	recs := make([]sample.Record, n)
	for i := range recs {
		r := &recs[i]
		r.Coord, r.Value = make([]float64, dims), make([]float64, comps)
		r.Weight, r.Valid = 1, true

		for k := range r.Coord { r.Coord[k] = cols[k][i] }
		for k := range r.Value { r.Value[k] = cols[dims+k][i] }
		if hasWeight { r.Weight = cols[dims+comps][i] }

		if !finite(r.Coord) || !finite(r.Value) {
			r.Valid = false
		}
		if r.Weight < 0 || !finite([]float64{r.Weight}) {
			r.Weight, r.Valid = 0, false
		}
	}

	return sample.FromRecords(recs)
}

func finite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) { return false }
	}
	return true
}
