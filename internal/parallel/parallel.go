// Package parallel splits independent per-item work across goroutines.
//
// It is used outside the training step only (decoding datasets); a training
// step itself always runs on one goroutine.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how For spreads work.
type Config struct {
	Workers  int // Upper bound on goroutines; <= 1 runs inline
	MinChunk int // Minimum items per goroutine
}

// Default uses one worker per CPU.
func Default() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		MinChunk: 256,
	}
}

// Sequential runs every item on the calling goroutine.
func Sequential() Config {
	return Config{Workers: 1}
}

// For calls f(i) for every i in [0, n). Each index is visited exactly once;
// f must only touch state owned by index i. For returns when all calls have
// finished.
func For(n int, cfg Config, f func(i int)) {
	if n <= 0 {
		return
	}
	chunk := max((n+max(cfg.Workers, 1)-1)/max(cfg.Workers, 1), cfg.MinChunk, 1)
	if cfg.Workers <= 1 || chunk >= n {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
