package dispatchcache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	calls atomic.Int32
}

func (h *fakeHost) Dispatch(ctx context.Context, call Call) (any, error) {
	h.calls.Add(1)
	return call.Key(), nil
}

func TestAttachIndependentCaches(t *testing.T) {
	host := &fakeHost{}
	c1 := Attach(host)
	c2 := Attach(host)
	call := ActionCall{Name: "load"}
	ctx := context.Background()

	_, err := c1.Do(ctx, call)
	require.NoError(t, err)
	assert.False(t, c2.Has(call), "each attachment owns its own store")

	_, err = c2.Do(ctx, call)
	require.NoError(t, err)
	assert.EqualValues(t, 2, host.calls.Load())

	_, err = c1.Do(ctx, call)
	require.NoError(t, err)
	assert.EqualValues(t, 2, host.calls.Load(), "second call on c1 is a hit")
}

func TestInstaller(t *testing.T) {
	install := Installer(WithTimeout(time.Minute))
	host := &fakeHost{}

	c := install(host)
	require.NotNil(t, c)
	assert.Equal(t, time.Minute, c.timeout)

	_, err := c.Do(context.Background(), ActionCall{Name: "load"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, host.calls.Load())
}

func TestWrapAction(t *testing.T) {
	var calls atomic.Int32
	action := func(ctx context.Context, call Call) (any, error) {
		calls.Add(1)
		return "v", nil
	}
	wrapped := WrapAction(action)
	call := ActionCall{Name: "load", Payload: "p"}
	ctx := context.Background()

	v, err := wrapped(ctx, call)
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	_, err = wrapped(ctx, call)
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load(), "the wrapper caches across invocations")

	// A second wrapper gets its own fresh cache.
	other := WrapAction(action)
	_, err = other(ctx, call)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestContextCache(t *testing.T) {
	host := &fakeHost{}
	ctx := context.Background()

	_, ok := FromContext(ctx)
	assert.False(t, ok)

	ctx = WithCache(ctx, host)
	c, ok := FromContext(ctx)
	require.True(t, ok)

	call := ActionCall{Name: "load"}
	_, err := c.Do(ctx, call)
	require.NoError(t, err)
	_, err = c.Do(ctx, call)
	require.NoError(t, err)
	assert.EqualValues(t, 1, host.calls.Load())

	// A second context gets an independent cache.
	other, ok := FromContext(WithCache(context.Background(), host))
	require.True(t, ok)
	assert.False(t, other.Has(call))
}
