// Package dispatchcache memoizes the results of an asynchronous dispatch
// function. Given a call identified by an action name and an optional
// payload, a Cache returns the previously computed result if one exists and
// has not expired, otherwise it invokes the wrapped dispatch exactly once
// and shares the pending result with every concurrent caller for the same
// key.
//
// Entries expire lazily: nothing sweeps the store in the background, an
// expired entry is evicted the next time Dispatch touches its key. A failed
// dispatch evicts its own entry before the error is delivered, so failures
// are never replayed from cache.
package dispatchcache
