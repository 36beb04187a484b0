package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Empty(t *testing.T) {
	results, err := Run[int](context.Background(), 3, nil)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestRun_BoundsInFlightAndPreservesOrder(t *testing.T) {
	const n, limit = 10, 3

	var inFlight, maxInFlight atomic.Int32
	tasks := make([]Task[int], n)
	for i := 0; i < n; i++ {
		tasks[i] = func(ctx context.Context) (int, error) {
			cur := inFlight.Add(1)
			for {
				prev := maxInFlight.Load()
				if cur <= prev || maxInFlight.CompareAndSwap(prev, cur) {
					break
				}
			}
			// task 0 finishes last, task 9 first among its wave
			time.Sleep(time.Duration(n-i) * 5 * time.Millisecond)
			inFlight.Add(-1)
			return i * 10, nil
		}
	}

	results, err := Run(context.Background(), limit, tasks)
	require.NoError(t, err)
	assert.LessOrEqual(t, maxInFlight.Load(), int32(limit))
	assert.Equal(t, int32(limit), maxInFlight.Load())

	for i, r := range results {
		assert.Equal(t, i*10, r)
	}
}

func TestRun_OutputOrderIndependentOfCompletion(t *testing.T) {
	const n = 10
	var mu sync.Mutex
	var completion []int

	tasks := make([]Task[string], n)
	for i := 0; i < n; i++ {
		tasks[i] = func(ctx context.Context) (string, error) {
			time.Sleep(time.Duration(n-i) * 3 * time.Millisecond)
			mu.Lock()
			completion = append(completion, i)
			mu.Unlock()
			return string(rune('a' + i)), nil
		}
	}

	results, err := Run(context.Background(), n, tasks)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}, results)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, n-1, completion[0], "task 9 should finish first")
	assert.Equal(t, 0, completion[n-1], "task 0 should finish last")
}

func TestRun_LimitAboveTaskCount(t *testing.T) {
	var started atomic.Int32
	release := make(chan struct{})

	tasks := make([]Task[int], 4)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (int, error) {
			started.Add(1)
			<-release
			return i, nil
		}
	}

	done := make(chan []int)
	go func() {
		res, _ := Run(context.Background(), 100, tasks)
		done <- res
	}()

	require.Eventually(t, func() bool { return started.Load() == 4 }, time.Second, time.Millisecond)
	close(release)
	assert.Equal(t, []int{0, 1, 2, 3}, <-done)
}

func TestRun_TaskErrorsAreReported(t *testing.T) {
	errBoom := errors.New("boom")
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 0, errBoom },
		func(ctx context.Context) (int, error) { return 3, nil },
	}

	results, err := Run(context.Background(), 1, tasks)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "task 1")
	assert.Equal(t, []int{1, 0, 3}, results)
}
