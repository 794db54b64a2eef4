package sim

import (
	"github.com/dgravesa/go-parallel/parallel"
)

// MinParallelParticles is the population below which the force pass runs on the calling
// goroutine; spawning workers costs more than the work itself.
const MinParallelParticles = 100

// DefaultWorkers is the number of contiguous chunks the force pass is split into.
const DefaultWorkers = 16

// dispatch runs job over [0, n) either inline or as contiguous chunks on worker goroutines.
// It returns once every chunk is done.
func (s *System) dispatch(n int, job func(start, end int)) {
	if n == 0 {
		return
	}

	workers := s.params.Workers
	if !s.params.Multithreaded || workers <= 1 || n < MinParallelParticles {
		job(0, n)
		return
	}

	chunks := chunkBounds(n, workers)
	parallel.WithNumGoroutines(len(chunks)).For(len(chunks), func(c, _ int) {
		job(chunks[c][0], chunks[c][1])
	})
}

// chunkBounds splits [0, n) into at most workers contiguous [start, end) ranges.
func chunkBounds(n, workers int) [][2]int {
	per := n/workers + 1 // Integer division, add 1 to cover all
	chunks := make([][2]int, 0, workers)
	for start := 0; start < n; start += per {
		end := start + per
		if end > n {
			end = n
		}
		chunks = append(chunks, [2]int{start, end})
	}
	return chunks
}
