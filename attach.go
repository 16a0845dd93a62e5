package dispatchcache

import (
	"context"
	"sync"
)

// Host exposes the underlying dispatch capability a cache is attached to.
type Host interface {
	Dispatch(ctx context.Context, call Call) (any, error)
}

// Attach builds a cache over host's dispatch. Each Attach call produces an
// independent store; caches attached to the same host share nothing.
func Attach(host Host, opts ...Option) *Cache {
	return New(host.Dispatch, opts...)
}

// Installer captures options up front and returns a function awaiting the
// host, for plugin-style deferred installation.
func Installer(opts ...Option) func(Host) *Cache {
	return func(host Host) *Cache {
		return Attach(host, opts...)
	}
}

// WrapAction wraps a single dispatch-style action with ad-hoc caching. A
// fresh cache is attached on the wrapper's first invocation and reused for
// the wrapper's lifetime, so the host never has to pre-install anything.
func WrapAction(action DispatchFunc, opts ...Option) DispatchFunc {
	var (
		once  sync.Once
		cache *Cache
	)
	return func(ctx context.Context, call Call) (any, error) {
		once.Do(func() {
			cache = New(action, opts...)
		})
		return cache.Do(ctx, call)
	}
}

type ctxKey struct{}

// WithCache attaches a fresh cache over host's dispatch to ctx, scoping
// memoization to that context chain (one request, one job). The cache is
// discarded with the context; no eviction policy is needed beyond TTL.
func WithCache(ctx context.Context, host Host, opts ...Option) context.Context {
	return context.WithValue(ctx, ctxKey{}, Attach(host, opts...))
}

// FromContext returns the cache attached by WithCache, if any.
func FromContext(ctx context.Context) (*Cache, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Cache)
	return c, ok
}
