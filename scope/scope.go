// Copyright (c) 2026 The dax Authors
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scope implements the scoped tree value: a small, copy-on-write
// inheritance structure used to carry per-builder defaults (the info logger
// and the printCommand flag) down from a parent command builder to the
// children it spawns, without requiring the children to copy every field up
// front.
package scope

// Node is one point in a forest of parent-pointer nodes. A node with no
// value of its own defers to the nearest ancestor that has one.
//
// Node is not safe for concurrent use across the parent/child boundary;
// callers must finish mutating a node before spawning children from it
// concurrently.
type Node[T any] struct {
	parent *Node[T]
	value  T
	isSet  bool
}

// New creates a root node carrying v.
func New[T any](v T) *Node[T] {
	return &Node[T]{value: v, isSet: true}
}

// NewUnset creates a root node with no value of its own; GetValue on it
// returns the zero value of T until SetValue is called.
func NewUnset[T any]() *Node[T] {
	return &Node[T]{}
}

// CreateChild returns a fresh node whose parent is n. The child has no value
// of its own until SetValue is called on it, so GetValue walks up to n (or
// further) until an ancestor-or-self value is found.
func (n *Node[T]) CreateChild() *Node[T] {
	return &Node[T]{parent: n}
}

// GetValue returns the value of the nearest ancestor-or-self node that has
// one set. If no node in the chain has a value, it returns the zero value
// of T.
func (n *Node[T]) GetValue() T {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.isSet {
			return cur.value
		}
	}
	var zero T
	return zero
}

// SetValue sets n's own value, shadowing whatever its ancestors carry for
// n and for any descendant of n that has not also set its own value.
// It never affects siblings or ancestors.
func (n *Node[T]) SetValue(v T) {
	n.value = v
	n.isSet = true
}
