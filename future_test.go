package dispatchcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureWait(t *testing.T) {
	f := newFuture()
	go f.settle("done", nil)

	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestFutureWaitContextCancel(t *testing.T) {
	f := newFuture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// The future is still joinable after an abandoned wait.
	f.settle("late", nil)
	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "late", v)
}

func TestFutureResult(t *testing.T) {
	f := newFuture()

	_, _, ok := f.Result()
	assert.False(t, ok)

	errBoom := errors.New("boom")
	f.settle(nil, errBoom)

	v, err, ok := f.Result()
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.ErrorIs(t, err, errBoom)
}

func TestFutureSettleOnce(t *testing.T) {
	f := newFuture()
	f.settle("first", nil)
	f.settle("second", errors.New("ignored"))

	v, err := f.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", v)
}

func TestFutureOnDone(t *testing.T) {
	f := newFuture()
	got := make(chan any, 1)
	f.OnDone(func(v any, err error) {
		got <- v
	})

	f.settle("cb", nil)
	select {
	case v := <-got:
		assert.Equal(t, "cb", v)
	case <-time.After(time.Second):
		t.Fatal("OnDone callback never ran")
	}
}
