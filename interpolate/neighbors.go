package interpolate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/phil-mansfield/gogrid/geom"
	"github.com/phil-mansfield/gogrid/sample"
)

// Neighbor is a sample index together with its distance from a query point.
type Neighbor struct {
	Index int
	Dist  float64
}

// Neighbors is a read-only spatial index over the usable records (valid and
// with positive weight) of a sample.Set. Euclidean metrics are served by a
// k-d tree, anything else by a linear scan. A Neighbors can be shared by any
// number of goroutines.
type Neighbors struct {
	set    *sample.Set
	metric geom.Metric
	ids    []int
	tree   *kdtree.Tree
}

// NewNeighbors builds an index over s using the given metric.
func NewNeighbors(s *sample.Set, metric geom.Metric) *Neighbors {
	nb := &Neighbors{set: s, metric: metric}
	for i := 0; i < s.Len(); i++ {
		if s.IsValid(i) && s.Weight(i) > 0 { nb.ids = append(nb.ids, i) }
	}

	if _, ok := metric.(geom.Euclidean); ok && len(nb.ids) > 0 {
		pts := make(points, len(nb.ids))
		for i, id := range nb.ids { pts[i] = point{s.Coord(id), id} }
		nb.tree = kdtree.New(pts, false)
	}
	return nb
}

// Set returns the indexed sample.Set.
func (nb *Neighbors) Set() *sample.Set { return nb.set }

// Metric returns the distance function used by the index.
func (nb *Neighbors) Metric() geom.Metric { return nb.metric }

// Len returns the number of usable samples in the index.
func (nb *Neighbors) Len() int { return len(nb.ids) }

// Within appends every usable sample at a distance of at most r from q to
// out and returns it. The result is ordered by coordinate, then by value,
// then by index, so it does not depend on the order of the records in the
// underlying Set.
func (nb *Neighbors) Within(q []float64, r float64, out []Neighbor) []Neighbor {
	out = out[:0]
	if len(nb.ids) == 0 { return out }

	if nb.tree != nil {
		keep := kdtree.NewDistKeeper(r * r)
		nb.tree.NearestSet(keep, point{q, -1})
		for _, c := range keep.Heap {
			if c.Comparable == nil { continue }
			d := math.Sqrt(c.Dist)
			if d > r { continue }
			out = append(out, Neighbor{c.Comparable.(point).idx, d})
		}
	} else {
		for _, id := range nb.ids {
			d := nb.metric.Distance(q, nb.set.Coord(id))
			if d <= r { out = append(out, Neighbor{id, d}) }
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return nb.canonicalLess(out[i].Index, out[j].Index)
	})
	return out
}

// Nearest returns the closest usable sample to q. If several samples are
// equally close, the one with the lowest index wins. ok is false if the
// index is empty.
func (nb *Neighbors) Nearest(q []float64) (n Neighbor, ok bool) {
	if len(nb.ids) == 0 { return Neighbor{-1, math.Inf(+1)}, false }

	if nb.tree != nil {
		_, d2 := nb.tree.Nearest(point{q, -1})
		keep := kdtree.NewDistKeeper(d2)
		nb.tree.NearestSet(keep, point{q, -1})

		n = Neighbor{-1, math.Sqrt(d2)}
		for _, c := range keep.Heap {
			if c.Comparable == nil || c.Dist > d2 { continue }
			idx := c.Comparable.(point).idx
			if n.Index < 0 || idx < n.Index { n.Index = idx }
		}
		return n, n.Index >= 0
	}

	n = Neighbor{-1, math.Inf(+1)}
	for _, id := range nb.ids {
		// ids are increasing, so strict comparison keeps the lowest index.
		d := nb.metric.Distance(q, nb.set.Coord(id))
		if d < n.Dist || n.Index < 0 { n = Neighbor{id, d} }
	}
	return n, true
}

func (nb *Neighbors) canonicalLess(i, j int) bool {
	if c := compareVecs(nb.set.Coord(i), nb.set.Coord(j)); c != 0 {
		return c < 0
	}
	if c := compareVecs(nb.set.Value(i), nb.set.Value(j)); c != 0 {
		return c < 0
	}
	if wi, wj := nb.set.Weight(i), nb.set.Weight(j); wi != wj {
		return wi < wj
	}
	return i < j
}

func compareVecs(a, b []float64) int {
	for k := range a {
		if a[k] < b[k] { return -1 }
		if a[k] > b[k] { return +1 }
	}
	return 0
}

///////////////////////
// k-d tree plumbing //
///////////////////////

type point struct {
	x   []float64
	idx int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.x[d] - c.(point).x[d]
}

func (p point) Dims() int { return len(p.x) }

// Distance returns the squared Euclidean distance.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	sum := 0.0
	for k := range p.x {
		d := p.x[k] - q.x[k]
		sum += d * d
	}
	return sum
}

type points []point

func (ps points) Index(i int) kdtree.Comparable         { return ps[i] }
func (ps points) Len() int                              { return len(ps) }
func (ps points) Slice(start, end int) kdtree.Interface { return ps[start:end] }
func (ps points) Pivot(d kdtree.Dim) int {
	p := plane{ps, d}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

type plane struct {
	points
	kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	return p.points[i].x[p.Dim] < p.points[j].x[p.Dim]
}
func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{p.points[start:end], p.Dim}
}
