package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelizeCoversAllItems(t *testing.T) {
	const items = 1000
	var counter int64

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt64(&counter, 1)
		}
	})

	assert.Equal(t, int64(items), counter)
}

func TestParallelizeNoOverlap(t *testing.T) {
	const items = 257
	seen := make([]int32, items)

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})

	for i, n := range seen {
		assert.Equal(t, int32(1), n, "item %d visited %d times", i, n)
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) { called = true })
	assert.False(t, called)
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	var calls int64
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		atomic.AddInt64(&calls, 1)
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, int64(1), calls)
}
