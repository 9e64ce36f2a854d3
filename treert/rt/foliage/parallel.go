package foliage

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// ParallelEvaluator fans the per-particle evaluation out over a reusable
// worker pool. Particles share nothing but the uniforms, so chunks need no
// locking; a WaitGroup is the per-frame barrier.
type ParallelEvaluator struct {
	pool    worker.DynamicWorkerPool
	workers int
	chunks  int

	closeOnce sync.Once
	closed    bool
}

const evaluatorQueueSize = 256

func NewParallelEvaluator(workers int) *ParallelEvaluator {
	if workers <= 0 {
		workers = max(runtime.NumCPU()-1, 1)
	}
	chunks := min(workers*4, evaluatorQueueSize)
	return &ParallelEvaluator{
		pool:    worker.NewDynamicWorkerPool(workers, evaluatorQueueSize, 1*time.Second),
		workers: workers,
		chunks:  chunks,
	}
}

func (e *ParallelEvaluator) Workers() int { return e.workers }

// EvaluateAll fills out with one Sample per particle of f's dataset using
// the uniforms from f's last Update.
func (e *ParallelEvaluator) EvaluateAll(f *Interpolator, out []Sample) []Sample {
	if e.closed {
		return f.EvaluateAll(out)
	}
	n := f.data.Len()
	if cap(out) < n {
		out = make([]Sample, n)
	}
	out = out[:n]
	u := f.uniforms

	chunk := (n + e.chunks - 1) / e.chunks
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		lo, hi := start, end
		id := taskID
		taskID++
		e.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for i := lo; i < hi; i++ {
					out[i] = Evaluate(f.Attributes(i), u)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return out
}

// Close retires every worker goroutine; later EvaluateAll calls run on the
// caller. Workers share one stop channel in the pool and can swallow each
// other's stop signal, so each worker is instead handed one task that ends
// its goroutine. The barrier keeps any worker from taking two.
func (e *ParallelEvaluator) Close() {
	e.closeOnce.Do(func() {
		e.closed = true

		var taken, release sync.WaitGroup
		taken.Add(e.workers)
		release.Add(1)
		for i := 0; i < e.workers; i++ {
			e.pool.SubmitTask(worker.Task{
				ID: -1 - i,
				Do: func() (any, error) {
					taken.Done()
					release.Wait()
					runtime.Goexit()
					return nil, nil
				},
			})
		}
		taken.Wait()
		release.Done()
		e.pool.Stop()
	})
}
