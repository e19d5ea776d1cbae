// Package parallel splits CPU kernel loops across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum scalar operations per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// Sequential returns a configuration that never spawns goroutines.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// For executes f(i) for i in [0, n), treating each index as one scalar operation.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	ForWork(n, 1, f, cfg)
}

// ForWork executes f(i) for i in [0, n) where each index costs roughly work
// scalar operations. Heavy items (a whole convolution plane) are split finely,
// light items (single elements) coarsely.
func ForWork(n, work int, f func(i int), cfg Config) {
	ForRange(n, work, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// ForRange splits [0, n) into contiguous chunks and runs f(start, end) on each.
// Chunks never hold fewer than cfg.MinChunkSize/work items.
func ForRange(n, work int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	minItems := minItemsPerChunk(work, cfg)
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*minItems {
		f(0, n)
		return
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, minItems)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ForBatch iterates the batch*channels pattern of NCHW kernels.
// work is the cost of one (b, c) plane.
func ForBatch(batch, channels, work int, f func(b, c int), cfg Config) {
	ForWork(batch*channels, work, func(k int) {
		f(k/channels, k%channels)
	}, cfg)
}

func minItemsPerChunk(work int, cfg Config) int {
	if work < 1 {
		work = 1
	}
	return max(1, (cfg.MinChunkSize+work-1)/work)
}
