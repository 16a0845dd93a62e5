package backed

import (
	"context"
	"runtime"
	"sync"
	"time"

	"tailscale.com/util/singleflight"

	"github.com/barrett370/dispatchcache"
)

// Key identifies one cacheable lookup. A key knows how to present itself as
// a dispatch call and how long its decoded result stays fresh. TTL zero or
// negative means the result never expires.
type Key interface {
	comparable
	Call() dispatchcache.Call
	TTL() time.Duration
}

// DecodeFunc converts the raw dispatch result into the typed value stored
// by the cache.
type DecodeFunc[V any] func(any) (V, error)

type item[V any] struct {
	value V
	// expiration is zero when the item never expires, else UnixNano.
	expiration int64
}

// Cache is a typed read-through cache over a dispatch function.
type Cache[K Key, V any] struct {
	*cache[K, V]
	// The indirection lets the janitor goroutine hold the inner cache
	// without keeping this handle reachable; see New.
}

type cache[K Key, V any] struct {
	dispatch dispatchcache.DispatchFunc
	decode   DecodeFunc[V]
	sf       singleflight.Group[K, V]
	now      func() time.Time
	janitor  *janitor[K, V]

	mu    sync.Mutex
	items map[K]item[V]
}

// New returns a Cache that fetches misses through dispatch and decodes raw
// results with decode. If cleanupInterval is positive, a background janitor
// sweeps expired items on that interval; otherwise items are only dropped
// lazily on Get. The janitor goroutine references only the inner cache, so
// when the returned handle is garbage collected its finalizer stops the
// janitor and the inner cache can be collected too.
func New[K Key, V any](dispatch dispatchcache.DispatchFunc, decode DecodeFunc[V], cleanupInterval time.Duration) *Cache[K, V] {
	c := &cache[K, V]{
		dispatch: dispatch,
		decode:   decode,
		now:      time.Now,
		items:    make(map[K]item[V]),
	}
	C := &Cache[K, V]{cache: c}
	if cleanupInterval > 0 {
		runJanitor(c, cleanupInterval)
		runtime.SetFinalizer(C, stopJanitor[K, V])
	}
	return C
}

// Get returns the cached value for key, dispatching key.Call() on a miss.
// Concurrent Gets for the same key share a single dispatch via the
// singleflight group. Only successfully decoded values are cached; an error
// from dispatch or decode is returned to every waiter and nothing is stored.
func (c *cache[K, V]) Get(ctx context.Context, key K) (V, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}

	v, err, _ := c.sf.Do(key, func() (V, error) {
		raw, err := c.dispatch(ctx, key.Call())
		if err != nil {
			var zero V
			return zero, err
		}
		v, err := c.decode(raw)
		if err != nil {
			var zero V
			return zero, err
		}
		c.set(key, v, key.TTL())
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}

func (c *cache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	it, ok := c.items[key]
	if ok && it.expiration > 0 && c.now().UnixNano() > it.expiration {
		delete(c.items, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		var zero V
		return zero, false
	}
	return it.value, true
}

func (c *cache[K, V]) set(key K, v V, ttl time.Duration) {
	var e int64
	if ttl > 0 {
		e = c.now().Add(ttl).UnixNano()
	}
	c.mu.Lock()
	c.items[key] = item[V]{value: v, expiration: e}
	c.mu.Unlock()
}

// Delete removes the cached value for key, if any. An in-flight dispatch
// for key is unaffected.
func (c *cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	_, ok := c.items[key]
	delete(c.items, key)
	c.mu.Unlock()
	return ok
}

// Flush drops every cached value.
func (c *cache[K, V]) Flush() {
	c.mu.Lock()
	c.items = make(map[K]item[V])
	c.mu.Unlock()
}

// Len returns the number of stored items, possibly including expired items
// the janitor has not yet swept.
func (c *cache[K, V]) Len() int {
	c.mu.Lock()
	n := len(c.items)
	c.mu.Unlock()
	return n
}

// deleteExpired removes every item whose deadline has passed.
func (c *cache[K, V]) deleteExpired() {
	now := c.now().UnixNano()
	c.mu.Lock()
	for k, it := range c.items {
		if it.expiration > 0 && now > it.expiration {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}

type janitor[K Key, V any] struct {
	interval time.Duration
	stop     chan struct{}
}

func (j *janitor[K, V]) run(c *cache[K, V]) {
	ticker := time.NewTicker(j.interval)
	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-j.stop:
			ticker.Stop()
			return
		}
	}
}

func runJanitor[K Key, V any](c *cache[K, V], interval time.Duration) {
	j := &janitor[K, V]{
		interval: interval,
		stop:     make(chan struct{}),
	}
	c.janitor = j
	go j.run(c)
}

func stopJanitor[K Key, V any](c *Cache[K, V]) {
	close(c.janitor.stop)
}
