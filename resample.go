package gogrid

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/geom"
	"github.com/phil-mansfield/gogrid/interpolate"
	"github.com/phil-mansfield/gogrid/sample"
)

// DefaultChunkSize is the number of grid cells handed to a worker at once.
const DefaultChunkSize = 1 << 12

// Resampler evaluates an Interpolator at every cell of a Grid. Cells are
// split into chunks of consecutive row-major indices which are handed out to
// a fixed pool of workers. Every chunk writes to its own range of the output
// Field, so the result does not depend on the chunk size or on the number of
// workers.
//
// The setters must not be called while a resample is running.
type Resampler struct {
	grid *geom.Grid
	intr interpolate.Interpolator

	workers, chunkSize int
	log                log.Interface
	progress           func(done, total int)
}

// workspace is the scratch space owned by a single worker.
type workspace struct {
	queries [][]float64
	out     []interpolate.Estimate
}

// NewResampler creates a Resampler which evaluates intr on g. It returns an
// error wrapping errs.ErrValidation if intr has invalid parameters.
func NewResampler(g *geom.Grid, intr interpolate.Interpolator) (*Resampler, error) {
	if g == nil {
		return nil, errs.Validation("nil grid")
	} else if intr == nil {
		return nil, errs.Validation("nil interpolator")
	}
	if err := intr.Validate(); err != nil { return nil, err }

	return &Resampler{
		grid: g, intr: intr,
		workers: runtime.GOMAXPROCS(0), chunkSize: DefaultChunkSize,
		log: log.Log,
	}, nil
}

// SetWorkers sets the size of the worker pool. Non-positive values select
// GOMAXPROCS.
func (r *Resampler) SetWorkers(n int) {
	if n <= 0 { n = runtime.GOMAXPROCS(0) }
	r.workers = n
}

// SetChunkSize sets the number of cells per chunk. Non-positive values
// select DefaultChunkSize, and values larger than the grid are capped at its
// size.
func (r *Resampler) SetChunkSize(n int) {
	if n <= 0 { n = DefaultChunkSize }
	r.chunkSize = n
}

// chunk returns the effective chunk size, never more than the grid's cells.
func (r *Resampler) chunk() int {
	if r.chunkSize > r.grid.Len() { return r.grid.Len() }
	return r.chunkSize
}

// ChunkSize returns the number of cells handed to a worker at once.
func (r *Resampler) ChunkSize() int { return r.chunk() }

// SetLogger replaces the logger, which defaults to apex/log's package-level
// logger.
func (r *Resampler) SetLogger(l log.Interface) { r.log = l }

// SetProgress installs a callback which is invoked after every finished
// chunk with the number of finished cells and the total number of cells.
// Calls are serialized.
func (r *Resampler) SetProgress(f func(done, total int)) { r.progress = f }

func (r *Resampler) Grid() *geom.Grid                       { return r.grid }
func (r *Resampler) Interpolator() interpolate.Interpolator { return r.intr }

// Chunks returns the number of chunks a resample will be split into.
func (r *Resampler) Chunks() int {
	size := r.chunk()
	return (r.grid.Len() + size - 1) / size
}

// Resample is ResampleContext with a background context.
func (r *Resampler) Resample(s *sample.Set) (*Field, error) {
	return r.ResampleContext(context.Background(), s)
}

// ResampleContext evaluates the interpolator at every grid cell. It returns
// an error wrapping errs.ErrValidation if the dimensionality of a non-empty
// s does not match the grid. Cancellation of ctx is noticed between chunks,
// and a cancelled resample returns no Field.
func (r *Resampler) ResampleContext(ctx context.Context, s *sample.Set) (*Field, error) {
	if s == nil {
		return nil, errs.Validation("nil sample set")
	} else if s.Len() > 0 && s.Dims() != r.grid.Dims() {
		return nil, errs.Validation(
			"samples have %d coordinates, but the grid has %d axes",
			s.Dims(), r.grid.Dims(),
		)
	}
	if err := r.intr.Validate(); err != nil { return nil, err }

	comps := s.Components()
	if comps == 0 { comps = 1 }

	n, chunks := r.grid.Len(), r.Chunks()
	workers := r.workers
	if workers > chunks { workers = chunks }

	logger := r.log.WithFields(log.Fields{
		"cells":        n,
		"chunks":       chunks,
		"workers":      workers,
		"interpolator": r.intr.Kind().String(),
		"system":       r.grid.System().String(),
	})
	logger.Debug("resampling")
	start := time.Now()

	nb := interpolate.NewNeighbors(s, r.grid.System().Metric())
	f := newField(r.grid, comps)

	ids := make(chan int, workers)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(ids)
		for c := 0; c < chunks; c++ {
			select {
			case ids <- c:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var (
		mu   sync.Mutex
		done int
	)

	for id := 0; id < workers; id++ {
		w := r.newWorkspace()
		g.Go(func() error {
			for c := range ids {
				if err := gctx.Err(); err != nil { return err }

				cells, err := r.resampleChunk(c, nb, w, f)
				if err != nil { return err }

				if r.progress != nil {
					mu.Lock()
					done += cells
					r.progress(done, n)
					mu.Unlock()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "resampling stopped")
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	logger.WithFields(log.Fields{
		"elapsed":  time.Since(start).String(),
		"covered":  f.Covered(),
		"alloc_mb": ms.Alloc >> 20,
	}).Info("resampled")

	return f, nil
}

func (r *Resampler) newWorkspace() *workspace {
	dims, size := r.grid.Dims(), r.chunk()
	w := &workspace{
		queries: make([][]float64, size),
		out:     make([]interpolate.Estimate, size),
	}
	buf := make([]float64, size*dims)
	for i := range w.queries { w.queries[i] = buf[i*dims : (i+1)*dims] }
	return w
}

// resampleChunk evaluates chunk c and writes it into f. It returns the
// number of cells in the chunk.
func (r *Resampler) resampleChunk(
	c int, nb *interpolate.Neighbors, w *workspace, f *Field,
) (int, error) {
	size := r.chunk()
	lo := c * size
	hi := lo + size
	if hi > r.grid.Len() { hi = r.grid.Len() }

	qs, out := w.queries[:hi-lo], w.out[:hi-lo]
	for i := range qs { r.grid.CoordsOf(lo+i, qs[i]) }

	if err := r.intr.EstimateWith(nb, qs, out); err != nil { return 0, err }

	for i := range out {
		copy(f.vals[(lo+i)*f.comps:(lo+i+1)*f.comps], out[i].Value)
		f.conf[lo+i] = out[i].Confidence
	}
	return hi - lo, nil
}

// Resample evaluates intr at every cell of g using default settings.
func Resample(s *sample.Set, g *geom.Grid, intr interpolate.Interpolator) (*Field, error) {
	r, err := NewResampler(g, intr)
	if err != nil { return nil, err }
	return r.Resample(s)
}
