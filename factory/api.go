package factory

// Factory is a memoizing constructor of shared, reference-counted values.
// All methods are safe for concurrent use by multiple goroutines.
//
// At most one live value exists per key. The factory itself never keeps a
// value alive (unless its retention policy pins it), so a value is
// reclaimed as soon as its last Ref is released.
type Factory[K comparable, V any] interface {
	// Get returns a reference to the live value for key, calling create
	// first if there is none. create runs under the factory lock, so
	// concurrent Gets for any key wait for it; it must not call back into
	// this factory.
	Get(key K, create func() (V, error)) (*Ref[K, V], error)

	// GetKeyed is Get with a create function that receives the key.
	GetKeyed(key K, create func(K) (V, error)) (*Ref[K, V], error)

	// Len returns the number of values currently reachable through the cache.
	Len() int

	// Stats returns a snapshot of the factory counters.
	Stats() Stats

	// Sweep drops every entry whose key no longer satisfies Options.Valid
	// and returns how many were dropped. Without Valid it does nothing.
	Sweep() int

	// Close releases the retention pins and detaches every value that is
	// still referenced; those values stay valid and finalize normally
	// later. Further Gets return ErrClosed. Close is idempotent.
	Close() error
}

// Stats is a point-in-time snapshot of factory counters.
type Stats struct {
	Hits         uint64 // Gets served by a live value
	Misses       uint64 // Gets that called create
	Creates      uint64 // successful creates
	CreateErrors uint64 // failed creates
	Finalized    uint64 // values finalized while attached
	Orphaned     uint64 // values detached by Close or key invalidation
	Live         int    // entries currently listed
	Retained     int    // pins held by the retention policy
}
