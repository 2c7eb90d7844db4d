package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sick-Day-Sports-Club/websitev1-sub000/pkg/async"
)

func TestGo(t *testing.T) {
	t.Parallel()

	f := async.Go(nil, context.Background(), 21, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	res, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, res)

	select {
	case <-f.Done():
	default:
		t.Fatal("Done not closed after Await")
	}
}

func TestGoCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called atomic.Bool
	_, err := async.Go(nil, ctx, 0, func(context.Context, int) (int, error) {
		called.Store(true)
		return 1, nil
	}).Await()
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called.Load())
}

func TestAwaitContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	f := async.Go(nil, context.Background(), 0, func(context.Context, int) (int, error) {
		<-release
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.AwaitContext(ctx)
	assert.ErrorIs(t, err, async.ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGroupWait(t *testing.T) {
	t.Parallel()

	var (
		g    async.Group
		done atomic.Int32
	)
	for range 5 {
		async.Go(&g, context.Background(), 0, func(context.Context, int) (struct{}, error) {
			time.Sleep(5 * time.Millisecond)
			done.Add(1)
			return struct{}{}, nil
		})
	}

	require.NoError(t, g.Wait(context.Background()))
	assert.EqualValues(t, 5, done.Load())
}

func TestGroupWaitTimeout(t *testing.T) {
	t.Parallel()

	var g async.Group
	release := make(chan struct{})
	defer close(release)

	async.Go(&g, context.Background(), 0, func(context.Context, int) (int, error) {
		<-release
		return 0, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, g.Wait(ctx), async.ErrTimeout)
}

func TestWaitAll(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	futures := []*async.Future[int]{
		async.Go(nil, context.Background(), 1, func(_ context.Context, n int) (int, error) { return n, nil }),
		async.Go(nil, context.Background(), 2, func(_ context.Context, n int) (int, error) { return n, boom }),
		async.Go(nil, context.Background(), 3, func(_ context.Context, n int) (int, error) { return n, nil }),
	}

	results, err := async.WaitAll(futures...)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2, 3}, results)
}
