package io

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/phil-mansfield/gogrid"
	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/geom"
)

/*
The binary format used for gridded fields is as follows:
    |-- 1 --||-- ... 2 ... --||-- ... 3 ... --||-- 4 --||-- 5 --||-- 6 --|

    1 - (FieldHeader) Magic number, format version, and the shape of the
        grid and of the planes which follow.
    2 - ([]AxisInfo) Min, Max and Count of every grid axis, in order.
    3 - ([]float64) Values, Components per cell, in row-major cell order.
    4 - ([]float64) Confidence of every cell.
    5 - ([]uint8) Quality of every cell, only present if HasMask is set.
    6 - Extra planes. Each one is an int32 name length, the name, and one
        float64 per cell.

Everything is little endian.
*/

// Magic identifies gogrid field files.
var Magic = [4]byte{'G', 'G', 'R', 'D'}

const (
	// Version is the format version written by WriteField.
	Version int32 = 1

	maxDims      = 16
	maxExtra     = 64
	maxNameLen   = 1 << 10
	maxFileCells = 1 << 31
)

var end = binary.LittleEndian

type FieldHeader struct {
	Magic      [4]byte
	Version    int32
	Dims       int32
	Components int32
	System     int32
	HasMask    int32
	Extra      int32
}

type AxisInfo struct {
	Min, Max float64
	Count    int64
}

// Plane is an additional per-cell quantity stored next to a Field, such as
// a hill shade.
type Plane struct {
	Name   string
	Values []float64
}

// WriteField writes f, its mask m (which may be nil), and any extra planes
// to wr.
func WriteField(wr io.Writer, f *gogrid.Field, m *gogrid.Mask, extra ...Plane) error {
	if f == nil { return errs.Validation("nil field") }
	if m != nil && m.Len() != f.Len() {
		return errs.Validation(
			"mask has %d cells, but the field has %d", m.Len(), f.Len(),
		)
	}
	for _, p := range extra {
		if len(p.Values) != f.Len() {
			return errs.Validation(
				"plane '%s' has %d cells, but the field has %d",
				p.Name, len(p.Values), f.Len(),
			)
		} else if len(p.Name) > maxNameLen {
			return errs.Validation("plane name of length %d", len(p.Name))
		}
	}

	g := f.Grid()
	hd := FieldHeader{
		Magic: Magic, Version: Version,
		Dims: int32(g.Dims()), Components: int32(f.Components()),
		System: int32(g.System()), Extra: int32(len(extra)),
	}
	if m != nil { hd.HasMask = 1 }

	bw := bufio.NewWriter(wr)
	if err := binary.Write(bw, end, &hd); err != nil { return writeErr(err) }

	axes := make([]AxisInfo, g.Dims())
	for i := range axes {
		a := g.Axis(i)
		axes[i] = AxisInfo{Min: a.Min, Max: a.Max, Count: int64(a.Count)}
	}
	if err := binary.Write(bw, end, axes); err != nil { return writeErr(err) }

	vals := make([]float64, 0, f.Len()*f.Components())
	for i := 0; i < f.Len(); i++ { vals = append(vals, f.Value(i)...) }
	if err := binary.Write(bw, end, vals); err != nil { return writeErr(err) }
	if err := binary.Write(bw, end, f.Confidences()); err != nil {
		return writeErr(err)
	}

	if m != nil {
		cells := m.Cells()
		qs := make([]uint8, len(cells))
		for i := range cells { qs[i] = uint8(cells[i]) }
		if err := binary.Write(bw, end, qs); err != nil { return writeErr(err) }
	}

	for _, p := range extra {
		if err := binary.Write(bw, end, int32(len(p.Name))); err != nil {
			return writeErr(err)
		}
		if _, err := bw.WriteString(p.Name); err != nil { return writeErr(err) }
		if err := binary.Write(bw, end, p.Values); err != nil {
			return writeErr(err)
		}
	}

	if err := bw.Flush(); err != nil { return writeErr(err) }
	return nil
}

// ReadField reads a file written by WriteField. m is nil if no mask was
// stored.
func ReadField(rd io.Reader) (
	f *gogrid.Field, m *gogrid.Mask, extra []Plane, err error,
) {
	br := bufio.NewReader(rd)

	hd := FieldHeader{}
	if err := binary.Read(br, end, &hd); err != nil {
		return nil, nil, nil, readErr(err)
	}
	if err := hd.check(); err != nil { return nil, nil, nil, err }

	axisInfo := make([]AxisInfo, hd.Dims)
	if err := binary.Read(br, end, axisInfo); err != nil {
		return nil, nil, nil, readErr(err)
	}
	cells := int64(1)
	axes := make([]geom.Axis, hd.Dims)
	for i, a := range axisInfo {
		if a.Count < 1 || a.Count > maxFileCells {
			return nil, nil, nil, errs.Validation("axis %d has %d cells", i, a.Count)
		}
		cells *= a.Count
		if cells*int64(hd.Components) > maxFileCells {
			return nil, nil, nil, errs.Validation("field file has too many cells")
		}
		axes[i] = geom.Axis{Min: a.Min, Max: a.Max, Count: int(a.Count)}
	}

	g, err := geom.NewGrid(geom.CoordSystem(hd.System), axes...)
	if err != nil { return nil, nil, nil, err }

	vals := make([]float64, g.Len()*int(hd.Components))
	conf := make([]float64, g.Len())
	if err := binary.Read(br, end, vals); err != nil {
		return nil, nil, nil, readErr(err)
	}
	if err := binary.Read(br, end, conf); err != nil {
		return nil, nil, nil, readErr(err)
	}
	f, err = gogrid.NewField(g, int(hd.Components), vals, conf)
	if err != nil { return nil, nil, nil, err }

	if hd.HasMask != 0 {
		qs := make([]uint8, g.Len())
		if err := binary.Read(br, end, qs); err != nil {
			return nil, nil, nil, readErr(err)
		}
		cells := make([]gogrid.Quality, len(qs))
		for i := range qs { cells[i] = gogrid.Quality(qs[i]) }
		if m, err = gogrid.NewMask(g, cells); err != nil {
			return nil, nil, nil, err
		}
	}

	extra = make([]Plane, hd.Extra)
	for i := range extra {
		var n int32
		if err := binary.Read(br, end, &n); err != nil {
			return nil, nil, nil, readErr(err)
		} else if n < 0 || n > maxNameLen {
			return nil, nil, nil, errs.Validation("plane %d has a name of length %d", i, n)
		}

		name := make([]byte, n)
		if _, err := io.ReadFull(br, name); err != nil {
			return nil, nil, nil, readErr(err)
		}
		extra[i].Name = string(name)
		extra[i].Values = make([]float64, g.Len())
		if err := binary.Read(br, end, extra[i].Values); err != nil {
			return nil, nil, nil, readErr(err)
		}
	}

	return f, m, extra, nil
}

func (hd *FieldHeader) check() error {
	switch {
	case hd.Magic != Magic:
		return errs.Validation("not a gogrid field file (magic %q)", hd.Magic[:])
	case hd.Version != Version:
		return errs.Validation(
			"field file version %d, but only version %d is supported",
			hd.Version, Version,
		)
	case hd.Dims < 1 || hd.Dims > maxDims:
		return errs.Validation("field file has %d dimensions", hd.Dims)
	case hd.Components < 1:
		return errs.Validation("field file has %d components", hd.Components)
	case hd.Extra < 0 || hd.Extra > maxExtra:
		return errs.Validation("field file has %d extra planes", hd.Extra)
	}
	return nil
}

func writeErr(err error) error { return errors.Wrap(err, "writing field") }
func readErr(err error) error  { return errors.Wrap(err, "reading field") }
