package lattice

import (
	"runtime"
	"sync"
)

// minRowsPerWorker keeps small viewports on one goroutine.
const minRowsPerWorker = 8

// parallelFor runs fn over [0, n) split into contiguous chunks. Each index is
// visited exactly once, so per-index work stays bit-identical to a serial run.
func parallelFor(n, minChunk int, fn func(start, end int)) {
	workers := runtime.GOMAXPROCS(0)
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
