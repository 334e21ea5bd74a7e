package factory

import (
	"runtime"
	"sync/atomic"
)

// Ref is a strong reference to a value produced by a Factory.
//
// Each Ref owns exactly one count on its value. The value stays cached
// (and Get keeps returning it) while at least one Ref or retention pin
// exists. Call Release when done; Clone to hand out an independent
// reference. A Ref stays usable after the Factory that produced it was
// closed.
//
// A Ref that becomes unreachable without Release is released when the
// garbage collector reclaims it. Relying on this delays reclamation by an
// unpredictable amount and is reported at debug level.
type Ref[K comparable, V any] struct {
	h       *handle[K, V]
	cleanup runtime.Cleanup
}

// handle holds the per-Ref state the GC cleanup needs. It must not point
// back at its Ref, otherwise the Ref never becomes unreachable.
type handle[K comparable, V any] struct {
	e        *entry[K, V]
	released atomic.Bool
	log      Logger
}

// newRef wraps one already-taken count on e.
func newRef[K comparable, V any](e *entry[K, V], log Logger) *Ref[K, V] {
	r := &Ref[K, V]{h: &handle[K, V]{e: e, log: log}}
	r.cleanup = runtime.AddCleanup(r, collectHandle[K, V], r.h)
	return r
}

func collectHandle[K comparable, V any](h *handle[K, V]) {
	if h.released.Swap(true) {
		return
	}
	h.log.Debug("ref collected without Release", Fields{"key": h.e.key})
	h.e.release()
}

// Value returns the referenced value.
func (r *Ref[K, V]) Value() V {
	r.check()
	return r.h.e.val
}

// Key returns the key the value was produced for, as stored by the factory.
func (r *Ref[K, V]) Key() K {
	r.check()
	return r.h.e.key
}

// Clone returns a new, independent Ref to the same value.
func (r *Ref[K, V]) Clone() *Ref[K, V] {
	r.check()
	r.h.e.acquire()
	return newRef(r.h.e, r.h.log)
}

// Same reports whether r and o refer to the same value instance.
func (r *Ref[K, V]) Same(o *Ref[K, V]) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.h.e == o.h.e
}

// Release drops this reference. Releasing the last reference to a value
// finalizes it: it leaves the cache and Options.OnFinalize runs.
// Calling Release more than once is a no-op (a panic in Debug mode).
func (r *Ref[K, V]) Release() {
	if r.h.released.Swap(true) {
		if r.h.e.debug {
			panic("uniquefactory: Ref released twice")
		}
		return
	}
	r.cleanup.Stop()
	r.h.e.release()
}

// check enforces the use-after-release precondition in Debug mode.
func (r *Ref[K, V]) check() {
	if r.h.e.debug && r.h.released.Load() {
		panic("uniquefactory: use of released Ref")
	}
}
