package factory

import (
	"sync"

	"github.com/IvanBrykalov/uniquefactory/internal/util"
	"github.com/IvanBrykalov/uniquefactory/retention"
	"github.com/IvanBrykalov/uniquefactory/retention/nothing"
)

// factory is the Factory implementation: one lock, one store, one retainer.
// It must not be copied after New; every entry it hands out points back at
// this address until Close detaches it.
type factory[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu     sync.Mutex
	store  store[K, V]
	keep   retention.Retainer[K, V]
	closed bool
	// finalized under mu, callbacks pending until unlock
	dead []pending[K, V]

	opt Options[K, V]

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_          util.CacheLinePad
	hits       util.PaddedAtomicUint64
	misses     util.PaddedAtomicUint64
	creates    util.PaddedAtomicUint64
	createErrs util.PaddedAtomicUint64
	finalized  util.PaddedAtomicUint64
	orphaned   util.PaddedAtomicUint64
}

type pending[K comparable, V any] struct {
	e     *entry[K, V]
	state FinalizeState
}

// New constructs a factory with the provided Options.
// Defaults:
//   - nil Retention -> keep nothing
//   - nil Metrics   -> NoopMetrics
//   - nil Logger    -> NopLogger
//   - Equal set     -> hashed store (Hash defaults to a built-in scalar hash)
func New[K comparable, V any](opt Options[K, V]) Factory[K, V] {
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = NopLogger{}
	}
	if opt.Retention == nil {
		opt.Retention = nothing.New[K, V]()
	}

	f := &factory[K, V]{opt: opt}
	if opt.Equal != nil {
		hash := opt.Hash
		if hash == nil {
			hash = util.Sum64[K]
		}
		f.store = newHashedStore[K, V](hash, opt.Equal)
	} else {
		f.store = newMapStore[K, V]()
	}
	f.keep = opt.Retention.New(retentionHooks[K, V]{f: f})
	return f
}

// ---- Factory[K,V] implementation ----

// Get returns a reference to the live value for key, creating it on a miss.
func (f *factory[K, V]) Get(key K, create func() (V, error)) (*Ref[K, V], error) {
	if create == nil {
		panic("uniquefactory: nil create function")
	}
	return f.GetKeyed(key, func(K) (V, error) { return create() })
}

// GetKeyed is Get with a create function that receives the key.
func (f *factory[K, V]) GetKeyed(key K, create func(K) (V, error)) (*Ref[K, V], error) {
	if create == nil {
		panic("uniquefactory: nil create function")
	}

	f.mu.Lock()
	defer f.unlock()

	if f.closed {
		return nil, ErrClosed
	}
	e, err := f.lookupOrInsertLocked(key, create)
	if err != nil {
		return nil, err
	}
	// The caller's reference is taken before the retainer runs, so a
	// retention reset can never finalize the value being returned.
	f.keep.OnGet(e)
	f.opt.Metrics.Size(f.store.len(), f.keep.Len())
	return newRef(e, f.opt.Logger), nil
}

// Len returns the number of listed entries.
func (f *factory[K, V]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store.len()
}

// Stats returns a snapshot of the counters.
func (f *factory[K, V]) Stats() Stats {
	f.mu.Lock()
	live, retained := f.store.len(), f.keep.Len()
	f.mu.Unlock()
	return Stats{
		Hits:         f.hits.Load(),
		Misses:       f.misses.Load(),
		Creates:      f.creates.Load(),
		CreateErrors: f.createErrs.Load(),
		Finalized:    f.finalized.Load(),
		Orphaned:     f.orphaned.Load(),
		Live:         live,
		Retained:     retained,
	}
}

// Sweep unlists every entry whose key is no longer valid.
func (f *factory[K, V]) Sweep() int {
	if f.opt.Valid == nil {
		return 0
	}
	f.mu.Lock()
	defer f.unlock()

	n := 0
	for _, e := range f.store.entries() {
		if !f.opt.Valid(e.key) {
			f.unlistLocked(e)
			n++
		}
	}
	if n > 0 {
		f.opt.Metrics.Orphan(n)
		f.opt.Metrics.Size(f.store.len(), f.keep.Len())
	}
	return n
}

// Close releases retention pins, then detaches whatever is still alive.
func (f *factory[K, V]) Close() error {
	f.mu.Lock()
	defer f.unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	// Pins go first so that only values held by someone else are reported.
	f.keep.Clear()

	if n := f.store.len(); n > 0 {
		if f.opt.Debug {
			f.opt.Logger.Warn("unique factory is probably leaking memory: values were not released "+
				"when the factory was closed; they may belong to a legitimate long-lived cache",
				Fields{"live": n})
		}
		for _, e := range f.store.entries() {
			e.orphan()
		}
		f.orphaned.Add(uint64(n))
		f.opt.Metrics.Orphan(n)
	}
	f.store.clear()
	f.opt.Metrics.Size(0, 0)
	return nil
}

// ---- internals (mu held) ----

// lookupOrInsertLocked returns the entry for key with one reference taken
// for the caller, calling create exactly once on a miss. A failing or
// panicking create leaves the store untouched.
func (f *factory[K, V]) lookupOrInsertLocked(key K, create func(K) (V, error)) (*entry[K, V], error) {
	if e := f.store.lookup(key); e != nil {
		if f.opt.Valid == nil || f.opt.Valid(e.key) {
			if e.tryAcquire() {
				f.hits.Add(1)
				f.opt.Metrics.Hit()
				return e, nil
			}
		} else {
			f.unlistLocked(e)
			f.opt.Metrics.Orphan(1)
		}
	}

	f.misses.Add(1)
	f.opt.Metrics.Miss()

	v, err := create(key)
	if err != nil {
		f.createErrs.Add(1)
		f.opt.Metrics.CreateError()
		f.opt.Logger.Debug("create failed", Fields{"key": key, "err": err})
		return nil, &CreateError{Key: key, Err: err}
	}
	e := newEntry(f, key, v)
	f.store.insert(e)
	f.creates.Add(1)
	return e, nil
}

// unlistLocked drops e from the store and detaches it. Its holders keep the
// value; it finalizes as an orphan when they release it.
func (f *factory[K, V]) unlistLocked(e *entry[K, V]) {
	f.store.remove(e)
	e.orphan()
	f.orphaned.Add(1)
}

// releaseLocked drops one reference of e while mu is held.
func (f *factory[K, V]) releaseLocked(e *entry[K, V]) {
	n := e.refs.Add(-1)
	if n > 0 {
		return
	}
	if n < 0 {
		if e.debug {
			panic("uniquefactory: reference count below zero")
		}
		return
	}
	state := FinalizeOrphaned
	// Close may have detached e while we waited for the lock.
	if e.owner.Load() == f {
		f.store.remove(e)
		e.orphan()
		f.finalized.Add(1)
		state = FinalizeAttached
	}
	f.dead = append(f.dead, pending[K, V]{e: e, state: state})
}

// unlock releases mu and then runs the finalizers collected while it was
// held, so OnFinalize never runs under the lock.
func (f *factory[K, V]) unlock() {
	dead := f.dead
	f.dead = nil
	if len(dead) > 0 && !f.closed {
		f.opt.Metrics.Size(f.store.len(), f.keep.Len())
	}
	f.mu.Unlock()
	for _, p := range dead {
		p.e.finalize(p.state)
	}
}

// ---- retention hooks ----

// retentionHooks adapts entry reference counting to retention.Hooks.
type retentionHooks[K comparable, V any] struct{ f *factory[K, V] }

// Retain is only ever called with the caller's reference already taken.
func (h retentionHooks[K, V]) Retain(n retention.Node[K, V]) { n.(*entry[K, V]).acquire() }

// Release runs under the factory lock, so it must not go through
// entry.release (which would lock again).
func (h retentionHooks[K, V]) Release(n retention.Node[K, V]) {
	h.f.releaseLocked(n.(*entry[K, V]))
}
