// Package nothing implements the keep-nothing retention policy.
package nothing

import "github.com/IvanBrykalov/uniquefactory/retention"

// nothing never pins a value: an entry lives exactly as long as its
// external references do.
type nothing[K comparable, V any] struct{}

type nothingPolicy[K comparable, V any] struct{}

// New returns the keep-nothing Policy. It is the factory default.
func New[K comparable, V any]() retention.Policy[K, V] { return nothingPolicy[K, V]{} }

// New implements retention.Policy. The hooks are not needed.
func (nothingPolicy[K, V]) New(retention.Hooks[K, V]) retention.Retainer[K, V] {
	return nothing[K, V]{}
}

func (nothing[K, V]) OnGet(retention.Node[K, V]) {}
func (nothing[K, V]) Clear()                     {}
func (nothing[K, V]) Len() int                   { return 0 }
