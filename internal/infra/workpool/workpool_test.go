package workpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunKeepsIndexOrder(t *testing.T) {
	got := Run(context.Background(), 5, 3, func(_ context.Context, i int) int {
		time.Sleep(time.Duration(5-i) * time.Millisecond)
		return i * 10
	}, func(i int) int { return -1 })
	assert.Equal(t, []int{0, 10, 20, 30, 40}, got)
}

func TestRunBoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	Run(context.Background(), 8, 2, func(_ context.Context, i int) struct{} {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return struct{}{}
	}, func(int) struct{} { return struct{}{} })
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunCanceledSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	got := Run(ctx, 4, 1, func(inner context.Context, i int) string {
		if i == 1 {
			cancel()
			require.NoError(t, inner.Err(), "running item must not observe cancellation")
		}
		return "done"
	}, func(int) string { return "canceled" })
	assert.Equal(t, []string{"done", "done", "canceled", "canceled"}, got)
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	var km KeyedMutex
	var active atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("repo")
			defer unlock()
			assert.Equal(t, int32(1), active.Add(1))
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()
	assert.Empty(t, km.locks)
}
