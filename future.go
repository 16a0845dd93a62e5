package dispatchcache

import (
	"context"
	"sync"
)

// Future is the asynchronous result of one underlying dispatch. It is
// settled exactly once; every caller that joined the same cache entry holds
// the same Future and observes the same outcome.
type Future struct {
	ch   chan struct{} // closed once settled
	val  any
	err  error
	once sync.Once
}

func newFuture() *Future {
	return &Future{ch: make(chan struct{})}
}

// settle completes the future. Duplicate calls are ignored. Writes to val
// and err happen before the close, so any reader that has observed Done()
// sees them without further synchronization.
func (f *Future) settle(v any, err error) {
	f.once.Do(func() {
		f.val = v
		f.err = err
		close(f.ch)
	})
}

// Done returns a channel that is closed when the future settles, for use in
// select statements.
func (f *Future) Done() <-chan struct{} {
	return f.ch
}

// Wait blocks until the future settles or ctx is done, whichever comes
// first. A ctx error abandons the wait only; the underlying dispatch keeps
// running and the future remains joinable.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.ch:
		return f.val, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome without blocking. The bool reports whether the
// future has settled; until then value and error are nil.
func (f *Future) Result() (any, error, bool) {
	select {
	case <-f.ch:
		return f.val, f.err, true
	default:
		return nil, nil, false
	}
}

// OnDone runs cb in its own goroutine once the future settles. If it has
// already settled, cb runs immediately.
func (f *Future) OnDone(cb func(any, error)) {
	go func() {
		<-f.ch
		cb(f.val, f.err)
	}()
}
