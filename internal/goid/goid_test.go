package goid

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_StableWithinGoroutine(t *testing.T) {
	first := ID()
	second := ID()
	assert.Equal(t, first, second, "id must be stable for the same goroutine")
	assert.NotZero(t, first)
}

func TestID_DistinctAcrossGoroutines(t *testing.T) {
	const n = 8

	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- ID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		require.False(t, seen[id], "goroutine id %d reported twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.NotContains(t, seen, ID(), "child ids must differ from the parent id")
}
