// Package retention defines how a factory may keep recently produced values
// alive beyond their external references.
//
// A factory never owns its values: the store only observes them. A retention
// policy is the one place where extra strong references may be held, to
// avoid rebuilding a value that is requested again shortly after its last
// holder released it.
package retention

// Node is the minimal view of a cached entry a retainer needs.
// Nodes are comparable and may be used as map keys; two nodes are equal
// exactly when they refer to the same entry (the same generation of a key).
type Node[K comparable, V any] interface {
	Key() K
	Value() V
}

// Hooks let a retainer pin and unpin entries. Implementations are provided
// by the factory.
//
// Concurrency: all hook calls happen under the factory lock.
type Hooks[K comparable, V any] interface {
	// Retain takes one additional strong reference on the node.
	Retain(Node[K, V])
	// Release drops one reference previously taken by Retain. Dropping the
	// last reference finalizes the entry; the finalize callback itself runs
	// after the factory lock is released.
	Release(Node[K, V])
}

// Retainer is a per-factory retention instance bound to factory hooks.
// All methods are invoked under the factory lock.
//
// Semantics:
//   - OnGet is called after every successful Get (hit or miss), after the
//     caller's own reference has been taken.
//   - Clear releases every reference the retainer holds. Factories call it
//     from Close before reporting entries that outlived them.
type Retainer[K comparable, V any] interface {
	OnGet(Node[K, V])
	Clear()
	Len() int
}

// Policy is a factory that creates a Retainer bound to a particular
// factory's hooks. The policy of a factory is fixed at construction.
type Policy[K comparable, V any] interface {
	New(Hooks[K, V]) Retainer[K, V]
}
