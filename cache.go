package dispatchcache

import (
	"context"
	"sync"
	"time"
)

// DispatchFunc is the wrapped asynchronous dispatch capability supplied by
// the host. The cache forwards the caller's Call unmodified and observes
// only the result.
type DispatchFunc func(ctx context.Context, call Call) (any, error)

type entry struct {
	value *Future
	// expiresAt is zero when the entry never expires.
	expiresAt time.Time
}

// Cache memoizes results of a DispatchFunc keyed by Call.Key(). Every
// independently constructed Cache owns its own store; nothing is shared
// between instances.
type Cache struct {
	dispatch DispatchFunc
	timeout  time.Duration
	observer Observer
	now      func() time.Time

	mu    sync.Mutex
	items map[string]*entry
}

// Option configures a Cache at construction time.
type Option func(*Cache)

// WithTimeout sets the default TTL applied to entries whose call does not
// define its own timeout. Zero means entries never expire.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

// WithObserver registers a hook notified of cache events. Nil disables it.
func WithObserver(o Observer) Option {
	return func(c *Cache) { c.observer = o }
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New returns a Cache wrapping dispatch with a fresh, empty store.
func New(dispatch DispatchFunc, opts ...Option) *Cache {
	c := &Cache{
		dispatch: dispatch,
		now:      time.Now,
		items:    make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resolveTimeout applies the precedence rules for a call's TTL: a timeout
// the call itself defines wins over the cache default, even when the
// defined value is zero. Zero means no expiration.
func (c *Cache) resolveTimeout(call Call) time.Duration {
	if d, ok := call.timeout(); ok {
		return d
	}
	return c.timeout
}

// Dispatch returns the cached future for the call's key, invoking the
// wrapped dispatch only when no live entry exists. The returned future is
// shared: concurrent calls for one key observed before the underlying
// dispatch settles all receive the same pending Future, so at most one
// dispatch is in flight per key.
//
// An entry whose deadline has strictly passed is evicted here before the
// lookup (lazy expiration). A dispatch that fails evicts its own entry
// before the error becomes observable, so the next call re-dispatches
// instead of replaying the failure.
func (c *Cache) Dispatch(ctx context.Context, call Call) *Future {
	key := call.Key()
	ttl := c.resolveTimeout(call)

	expired := false
	c.mu.Lock()
	if e, ok := c.items[key]; ok {
		if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
			delete(c.items, key)
			expired = true
		} else {
			c.mu.Unlock()
			c.observe(EventHit, key)
			return e.value
		}
	}

	f := newFuture()
	e := &entry{value: f}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.items[key] = e
	c.mu.Unlock()

	if expired {
		c.observe(EventExpire, key)
	}
	c.observe(EventMiss, key)

	go func() {
		v, err := c.dispatch(ctx, call)
		if err != nil {
			c.evictFailed(key, f)
		}
		f.settle(v, err)
	}()

	return f
}

// Do is the blocking form of Dispatch.
func (c *Cache) Do(ctx context.Context, call Call) (any, error) {
	return c.Dispatch(ctx, call).Wait(ctx)
}

// evictFailed removes the entry a failed dispatch created, but only if the
// key still maps to that dispatch's future. An entry recreated after an
// explicit Delete belongs to a newer dispatch and stays.
func (c *Cache) evictFailed(key string, f *Future) {
	c.mu.Lock()
	e, ok := c.items[key]
	evicted := ok && e.value == f
	if evicted {
		delete(c.items, key)
	}
	c.mu.Unlock()
	if evicted {
		c.observe(EventEvict, key)
	}
}

// Has reports raw presence of an entry for the call's key. No expiration
// check is performed: an expired entry that Dispatch has not yet swept is
// still reported as present.
func (c *Cache) Has(call Call) bool {
	key := call.Key()
	c.mu.Lock()
	_, ok := c.items[key]
	c.mu.Unlock()
	return ok
}

// Delete removes the entry for the call's key and reports whether an entry
// was removed. Deleting an in-flight entry does not stop the dispatch; it
// only prevents future callers from joining it.
func (c *Cache) Delete(call Call) bool {
	key := call.Key()
	c.mu.Lock()
	_, ok := c.items[key]
	delete(c.items, key)
	c.mu.Unlock()
	if ok {
		c.observe(EventEvict, key)
	}
	return ok
}

// Clear unconditionally empties the store.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]*entry)
	c.mu.Unlock()
	c.observe(EventClear, "")
}

// Len returns the number of stored entries. This may include expired
// entries that no Dispatch has touched since their deadline passed.
func (c *Cache) Len() int {
	c.mu.Lock()
	n := len(c.items)
	c.mu.Unlock()
	return n
}

func (c *Cache) observe(ev Event, key string) {
	if c.observer != nil {
		c.observer.On(EventData{Event: ev, Key: key})
	}
}
