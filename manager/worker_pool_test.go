package manager

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_SubmitRunsEveryTask(t *testing.T) {
	wp := NewWorkerPool(4)
	defer wp.Close()

	var count atomic.Int64
	const n = 200
	done := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		err := wp.Submit(context.Background(), func() {
			count.Add(1)
			done <- struct{}{}
		})
		require.NoError(t, err)
	}

	for i := 0; i < n; i++ {
		<-done
	}
	assert.Equal(t, int64(n), count.Load())
}

func TestWorkerPool_DefaultsSizeWhenNonPositive(t *testing.T) {
	wp := NewWorkerPool(0)
	defer wp.Close()
	assert.Greater(t, wp.numWorkers, 0)
}

func TestWorkerPool_SubmitAfterCloseFails(t *testing.T) {
	wp := NewWorkerPool(1)
	wp.Close()
	err := wp.Submit(context.Background(), func() {})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestWorkerPool_SubmitRespectsContextCancellation(t *testing.T) {
	wp := NewWorkerPool(1)
	defer wp.Close()

	block := make(chan struct{})
	require.NoError(t, wp.Submit(context.Background(), func() { <-block }))

	// The single worker is now occupied; fill the queue so the next Submit
	// must wait on ctx instead of the buffered channel.
	for i := 0; i < 2; i++ {
		_ = wp.Submit(context.Background(), func() { <-block })
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := wp.Submit(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(block)
}
