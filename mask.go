package gogrid

import (
	"fmt"

	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/geom"
)

// Quality classifies how far a grid cell's value can be trusted.
type Quality uint8

const (
	// Empty cells had no usable samples nearby. Their values are NaN.
	Empty Quality = iota
	// Extrapolated cells have a value, but its confidence is below the
	// requested minimum.
	Extrapolated
	// Valid cells have a confidence at or above the requested minimum.
	Valid
)

func (q Quality) String() string {
	switch q {
	case Empty: return "empty"
	case Extrapolated: return "extrapolated"
	case Valid: return "valid"
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// Mask holds one Quality per grid cell, in the same order as the Field it
// was computed from.
type Mask struct {
	grid  *geom.Grid
	cells []Quality
}

// Classify sorts the cells of f by confidence: 0 is Empty, values at or
// above minConf are Valid and everything in between is Extrapolated. It
// returns an error wrapping errs.ErrValidation if minConf is outside [0, 1].
func Classify(f *Field, minConf float64) (*Mask, error) {
	if !(minConf >= 0 && minConf <= 1) {
		return nil, errs.Validation(
			"minimum confidence must be in [0, 1], got %g", minConf,
		)
	}

	m := &Mask{grid: f.grid, cells: make([]Quality, f.Len())}
	for i, c := range f.conf {
		switch {
		case c == 0: m.cells[i] = Empty
		case c >= minConf: m.cells[i] = Valid
		default: m.cells[i] = Extrapolated
		}
	}
	return m, nil
}

// NewMask wraps an existing set of cell classifications. The slice is
// copied.
func NewMask(g *geom.Grid, cells []Quality) (*Mask, error) {
	if g == nil {
		return nil, errs.Validation("nil grid")
	} else if len(cells) != g.Len() {
		return nil, errs.Validation(
			"%d mask cells given for a grid of %d cells", len(cells), g.Len(),
		)
	}
	for i, q := range cells {
		if q > Valid { return nil, errs.Validation("mask cell %d is %s", i, q) }
	}
	return &Mask{grid: g, cells: append([]Quality(nil), cells...)}, nil
}

func (m *Mask) Grid() *geom.Grid   { return m.grid }
func (m *Mask) Len() int           { return len(m.cells) }
func (m *Mask) At(idx int) Quality { return m.cells[idx] }

// Cells returns a copy of every cell's classification.
func (m *Mask) Cells() []Quality { return append([]Quality(nil), m.cells...) }

// Count returns the number of cells with quality q.
func (m *Mask) Count(q Quality) int {
	n := 0
	for _, c := range m.cells {
		if c == q { n++ }
	}
	return n
}
