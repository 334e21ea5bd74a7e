// Package recent implements a least-recently-used retention policy.
//
// Unlike boundedset, which drops its whole working set when full, recent
// releases only the least recently returned value. It trades a little
// bookkeeping per Get for smoother retention under steady key churn.
package recent

import (
	lru "github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/IvanBrykalov/uniquefactory/retention"
)

// recent pins the size most recently returned values.
// simplelru is not goroutine-safe; the factory lock serializes all calls.
type recent[K comparable, V any] struct {
	h   retention.Hooks[K, V]
	lru *lru.LRU[retention.Node[K, V], struct{}]
}

type recentPolicy[K comparable, V any] struct {
	size int
}

// New returns a Policy keeping the size most recently returned values alive.
// A size below 1 is treated as 1.
func New[K comparable, V any](size int) retention.Policy[K, V] {
	if size < 1 {
		size = 1
	}
	return recentPolicy[K, V]{size: size}
}

// New implements retention.Policy.
func (p recentPolicy[K, V]) New(h retention.Hooks[K, V]) retention.Retainer[K, V] {
	r := &recent[K, V]{h: h}
	l, err := lru.NewLRU[retention.Node[K, V], struct{}](p.size, r.onEvict)
	if err != nil {
		// Only returned for a non-positive size, which New rules out.
		panic(err)
	}
	r.lru = l
	return r
}

// OnGet promotes n if pinned, otherwise pins it and lets the LRU evict
// (release) the oldest member when over capacity.
func (r *recent[K, V]) OnGet(n retention.Node[K, V]) {
	if _, ok := r.lru.Get(n); ok {
		return
	}
	r.h.Retain(n)
	r.lru.Add(n, struct{}{})
}

// Clear releases every pinned value.
func (r *recent[K, V]) Clear() { r.lru.Purge() }

// Len returns the number of pinned values.
func (r *recent[K, V]) Len() int { return r.lru.Len() }

func (r *recent[K, V]) onEvict(n retention.Node[K, V], _ struct{}) { r.h.Release(n) }
