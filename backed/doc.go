// Package backed provides a typed read-through view over a dispatch
// function: keys know the Call they dispatch and how long their result
// stays fresh, misses are collapsed through a singleflight group so
// concurrent lookups trigger one dispatch, and decoded values are cached
// with lazy TTL expiry. Unlike the root package, only settled successful
// values are cached; errors are returned to all concurrent waiters and
// never stored.
package backed
