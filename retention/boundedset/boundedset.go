// Package boundedset implements the bounded working-set retention policy.
package boundedset

import "github.com/IvanBrykalov/uniquefactory/retention"

// set pins up to history recently returned values.
//
// Eviction is all-or-nothing: when the set is full, every pinned value is
// released before the new one is inserted. This keeps OnGet O(1) without
// any recency bookkeeping. Note the size check happens before the
// membership check, so re-getting an already pinned value on a full set
// still starts a new working set.
type set[K comparable, V any] struct {
	h       retention.Hooks[K, V]
	history int
	members map[retention.Node[K, V]]struct{}
}

type setPolicy[K comparable, V any] struct {
	history int
}

// New returns a Policy keeping up to history values alive.
// A history below 1 is treated as 1.
func New[K comparable, V any](history int) retention.Policy[K, V] {
	if history < 1 {
		history = 1
	}
	return setPolicy[K, V]{history: history}
}

// New implements retention.Policy.
func (p setPolicy[K, V]) New(h retention.Hooks[K, V]) retention.Retainer[K, V] {
	return &set[K, V]{
		h:       h,
		history: p.history,
		members: make(map[retention.Node[K, V]]struct{}, p.history),
	}
}

// OnGet starts over when full, then pins n unless it is already a member.
func (s *set[K, V]) OnGet(n retention.Node[K, V]) {
	if len(s.members) >= s.history {
		s.Clear()
	}
	if _, ok := s.members[n]; ok {
		return
	}
	s.h.Retain(n)
	s.members[n] = struct{}{}
}

// Clear releases every pinned value.
func (s *set[K, V]) Clear() {
	for n := range s.members {
		delete(s.members, n)
		s.h.Release(n)
	}
}

// Len returns the number of pinned values.
func (s *set[K, V]) Len() int { return len(s.members) }
