// Package parallel provides parallel execution utilities for batch
// circuit simulation.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinBatchSize int  // Minimum tapes per batch before spawning workers.
}

// DefaultConfig returns sensible defaults based on CPU count. Statevector
// runs are heavy relative to goroutine overhead, so even small batches
// are worth splitting.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinBatchSize: 2,
	}
}

// For executes f(i) for i in [0, n) with optional parallelism and returns
// the first error encountered. Iterations must be independent; writes to
// shared state belong to the caller, after For returns.
//
// Falls back to sequential execution if parallelism is disabled or n is
// too small.
func For(n int, f func(i int) error, cfg Config) error {
	if !cfg.Enabled || n < cfg.MinBatchSize {
		for i := 0; i < n; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, 1)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				if err := f(i); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					return
				}
			}
		}(start, end)
	}
	wg.Wait()
	return firstErr
}
