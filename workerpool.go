package foam

import (
	"context"
	"runtime"
	"sync"

	"github.com/alitto/pond"
)

// ImageWorkerPool is a work-stealing thread pool used by image kernels to
// parallelize across pixels or pulses; no processor is ever invoked
// concurrently on the same ProcessedData, so callers only reach for this
// inside a single processor's own Process call. Sized at 2*NumCPU with a
// fixed minimum worker count, bound to a cancellable context.
type ImageWorkerPool struct {
	pool *pond.WorkerPool
}

// NewImageWorkerPool constructs a fixed-size pool sized at 2*NumCPU unless
// n is given explicitly (n <= 0 uses the default).
func NewImageWorkerPool(ctx context.Context, n int) *ImageWorkerPool {
	if n <= 0 {
		n = runtime.NumCPU() * 2
	}
	return &ImageWorkerPool{pool: pond.New(n, 0, pond.MinWorkers(n), pond.Context(ctx))}
}

// Stop drains and releases the pool.
func (w *ImageWorkerPool) Stop() {
	w.pool.StopAndWait()
}

// ParallelRows partitions [0, rows) across the pool and invokes fn(r) for
// every row, blocking until all rows complete. This is the per-pixel
// fused-multiply-add kernel shape, parallelized across the pulse/row axis.
func (w *ImageWorkerPool) ParallelRows(rows int, fn func(row int)) {
	var wg sync.WaitGroup
	wg.Add(rows)
	for r := 0; r < rows; r++ {
		row := r
		w.pool.Submit(func() {
			defer wg.Done()
			fn(row)
		})
	}
	wg.Wait()
}

// ParallelPulses invokes fn(idx) for every given pulse index across the
// pool, blocking until all complete. It is used for
// per-pulse image conditioning: materializing each pulse of interest's
// conditioned single-pulse image concurrently.
func (w *ImageWorkerPool) ParallelPulses(indices []int, fn func(idx int)) {
	var wg sync.WaitGroup
	wg.Add(len(indices))
	for _, i := range indices {
		idx := i
		w.pool.Submit(func() {
			defer wg.Done()
			fn(idx)
		})
	}
	wg.Wait()
}
