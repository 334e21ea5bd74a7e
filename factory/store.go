package factory

import (
	"slices"
	"weak"
)

// store is the key → entry index. It holds weak pointers only: listing an
// entry never keeps it alive, its Refs and retention pins do.
//
// All methods are called with the factory lock held.
type store[K comparable, V any] interface {
	// lookup returns the entry listed for k, or nil.
	lookup(k K) *entry[K, V]
	// insert lists e under e.key. The caller removed any previous entry.
	insert(e *entry[K, V])
	// remove unlists e if, and only if, e itself is listed. A finalizer
	// therefore never removes a newer generation of the same key.
	remove(e *entry[K, V]) bool
	len() int
	// entries returns the listed entries that are still reachable.
	entries() []*entry[K, V]
	clear()
}

// mapStore indexes by the built-in equality of K.
type mapStore[K comparable, V any] struct {
	m map[K]weak.Pointer[entry[K, V]]
}

func newMapStore[K comparable, V any]() *mapStore[K, V] {
	return &mapStore[K, V]{m: make(map[K]weak.Pointer[entry[K, V]])}
}

func (s *mapStore[K, V]) lookup(k K) *entry[K, V] {
	wp, ok := s.m[k]
	if !ok {
		return nil
	}
	e := wp.Value()
	if e == nil {
		// Collected without passing through its finalizer; drop the stale slot.
		delete(s.m, k)
	}
	return e
}

func (s *mapStore[K, V]) insert(e *entry[K, V]) { s.m[e.key] = weak.Make(e) }

func (s *mapStore[K, V]) remove(e *entry[K, V]) bool {
	if wp, ok := s.m[e.key]; ok && wp == weak.Make(e) {
		delete(s.m, e.key)
		return true
	}
	return false
}

func (s *mapStore[K, V]) len() int { return len(s.m) }

func (s *mapStore[K, V]) entries() []*entry[K, V] {
	out := make([]*entry[K, V], 0, len(s.m))
	for _, wp := range s.m {
		if e := wp.Value(); e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (s *mapStore[K, V]) clear() { clear(s.m) }

// hashedStore indexes by a caller-defined hash and equality.
// Buckets are short slices; a good hash keeps them at length one.
type hashedStore[K comparable, V any] struct {
	hash    func(K) uint64
	equal   func(a, b K) bool
	buckets map[uint64][]weak.Pointer[entry[K, V]]
	n       int
}

func newHashedStore[K comparable, V any](hash func(K) uint64, equal func(a, b K) bool) *hashedStore[K, V] {
	return &hashedStore[K, V]{
		hash:    hash,
		equal:   equal,
		buckets: make(map[uint64][]weak.Pointer[entry[K, V]]),
	}
}

func (s *hashedStore[K, V]) lookup(k K) *entry[K, V] {
	for _, wp := range s.buckets[s.hash(k)] {
		if e := wp.Value(); e != nil && s.equal(e.key, k) {
			return e
		}
	}
	return nil
}

func (s *hashedStore[K, V]) insert(e *entry[K, V]) {
	h := s.hash(e.key)
	s.buckets[h] = append(s.buckets[h], weak.Make(e))
	s.n++
}

func (s *hashedStore[K, V]) remove(e *entry[K, V]) bool {
	h := s.hash(e.key)
	b := s.buckets[h]
	i := slices.Index(b, weak.Make(e))
	if i < 0 {
		return false
	}
	b = slices.Delete(b, i, i+1)
	if len(b) == 0 {
		delete(s.buckets, h)
	} else {
		s.buckets[h] = b
	}
	s.n--
	return true
}

func (s *hashedStore[K, V]) len() int { return s.n }

func (s *hashedStore[K, V]) entries() []*entry[K, V] {
	out := make([]*entry[K, V], 0, s.n)
	for _, b := range s.buckets {
		for _, wp := range b {
			if e := wp.Value(); e != nil {
				out = append(out, e)
			}
		}
	}
	return out
}

func (s *hashedStore[K, V]) clear() {
	clear(s.buckets)
	s.n = 0
}
