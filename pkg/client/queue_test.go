package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineQueueServesInIssueOrder(t *testing.T) {
	q := newLineQueue()
	ctx := context.Background()

	first, err := q.acquire(ctx, "p1")
	require.NoError(t, err)

	order := make(chan int, 3)
	for i := 1; i <= 2; i++ {
		go func() {
			release, err := q.acquire(ctx, "p1")
			if err != nil {
				return
			}
			order <- i
			release()
		}()
		// le ticket i doit être pris avant le ticket i+1
		require.Eventually(t, func() bool { return q.pending("p1") == i+1 }, time.Second, time.Millisecond)
	}

	// une autre ligne n'attend pas
	other, err := q.acquire(ctx, "p2")
	require.NoError(t, err)
	other()

	assert.Empty(t, order)
	first()

	assert.Equal(t, 1, <-order)
	assert.Equal(t, 2, <-order)
	assert.Eventually(t, func() bool { return q.pending("p1") == 0 }, time.Second, time.Millisecond)
}

func TestLineQueueCancelledWaiterLeaves(t *testing.T) {
	q := newLineQueue()

	head, err := q.acquire(context.Background(), "p1")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := q.acquire(ctx, "p1")
		errc <- err
	}()
	require.Eventually(t, func() bool { return q.pending("p1") == 2 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.Equal(t, 1, q.pending("p1"))

	head()
	head()
	assert.Zero(t, q.pending("p1"))

	next, err := q.acquire(context.Background(), "p1")
	require.NoError(t, err)
	next()
}
