package factory

import "sync/atomic"

// entry is one generation of a key: the value, its reference count and the
// finalizer state.
//
// The finalizer is either attached (owner points at the factory that
// produced the entry) or detached (owner is nil). The transition
// attached → detached happens once, under the owner's lock, when the
// factory is closed or the entry is unlisted. Detached entries never touch
// factory state again.
type entry[K comparable, V any] struct {
	key K
	val V

	// refs counts strong references (Refs and retention pins).
	// It only reaches zero under the owner's lock while attached.
	refs atomic.Int64

	owner atomic.Pointer[factory[K, V]]

	// Copied from Options at creation so that a detached entry can still
	// finalize without reaching back into its factory.
	onFinalize func(K, V)
	metrics    Metrics
	debug      bool
}

func newEntry[K comparable, V any](f *factory[K, V], key K, val V) *entry[K, V] {
	e := &entry[K, V]{
		key:        key,
		val:        val,
		onFinalize: f.opt.OnFinalize,
		metrics:    f.opt.Metrics,
		debug:      f.opt.Debug,
	}
	e.refs.Store(1)
	e.owner.Store(f)
	return e
}

// Key returns the entry key (part of retention.Node).
func (e *entry[K, V]) Key() K { return e.key }

// Value returns the cached value (part of retention.Node).
func (e *entry[K, V]) Value() V { return e.val }

// tryAcquire takes a reference unless the entry already reached zero.
func (e *entry[K, V]) tryAcquire() bool {
	for {
		n := e.refs.Load()
		if n <= 0 {
			return false
		}
		if e.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// acquire takes a reference on behalf of a caller that already holds one.
func (e *entry[K, V]) acquire() { e.refs.Add(1) }

// release drops one reference. Decrements that cannot reach zero are
// lock-free; the last one is serialized with lookups through the owner's
// lock so that removal from the store and the zero transition are atomic.
func (e *entry[K, V]) release() {
	for {
		n := e.refs.Load()
		if n <= 1 {
			break
		}
		if e.refs.CompareAndSwap(n, n-1) {
			return
		}
	}

	f := e.owner.Load()
	if f == nil {
		e.releaseDetached()
		return
	}
	f.mu.Lock()
	f.releaseLocked(e)
	f.unlock()
}

// releaseDetached drops a reference of an orphaned entry.
func (e *entry[K, V]) releaseDetached() {
	switch n := e.refs.Add(-1); {
	case n == 0:
		e.finalize(FinalizeOrphaned)
	case n < 0 && e.debug:
		panic("uniquefactory: reference count below zero")
	}
}

// orphan severs the back-reference to the factory. Caller holds the lock.
func (e *entry[K, V]) orphan() { e.owner.Store(nil) }

// finalize runs once, after the entry left the store (if it was listed)
// and outside any factory lock.
func (e *entry[K, V]) finalize(state FinalizeState) {
	if e.metrics != nil {
		e.metrics.Finalize(state)
	}
	if e.onFinalize != nil {
		e.onFinalize(e.key, e.val)
	}
}
