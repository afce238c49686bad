// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package skiplist

// Iterator is a bidirectional iterator over a Skiplist's entries in
// ascending key order. It is safe to use concurrently with writers
// (lock-free reads), but a single Iterator value is not safe for
// concurrent use by multiple goroutines. Prev is O(log n), an accepted
// cost since reverse iteration is rare.
type Iterator[V any] struct {
	list *Skiplist[V]
	node *Node[V]
}

// NewIterator returns an iterator positioned before the first entry;
// call Next or SeekToFirst before reading.
func NewIterator[V any](s *Skiplist[V]) *Iterator[V] {
	return &Iterator[V]{list: s}
}

// Valid reports whether the iterator is positioned at an entry.
func (it *Iterator[V]) Valid() bool { return it.node != nil }

// Key returns the current entry's key. Panics if !Valid.
func (it *Iterator[V]) Key() []byte {
	if it.node == nil {
		panic("skiplist: Key called on invalid iterator")
	}
	return it.node.key
}

// Value returns the current entry's value. Panics if !Valid.
func (it *Iterator[V]) Value() V {
	if it.node == nil {
		panic("skiplist: Value called on invalid iterator")
	}
	return it.node.value
}

// SeekToFirst positions the iterator at the smallest key.
func (it *Iterator[V]) SeekToFirst() {
	it.node = it.list.head[0].Load()
}

// SeekToLast positions the iterator at the largest key, or invalid if
// the list is empty.
func (it *Iterator[V]) SeekToLast() {
	it.node = it.list.findLast()
}

// Seek positions the iterator at the first entry with key >= target.
func (it *Iterator[V]) Seek(target []byte) {
	it.node = it.list.findGreaterOrEqual(target, nil)
}

// Next advances to the next entry in ascending order.
func (it *Iterator[V]) Next() {
	if it.node == nil {
		panic("skiplist: Next called on invalid iterator")
	}
	it.node = it.node.loadNext(0)
}

// Prev moves to the previous entry in ascending order, i.e. the next
// smaller key, by re-searching from the head.
func (it *Iterator[V]) Prev() {
	if it.node == nil {
		panic("skiplist: Prev called on invalid iterator")
	}
	it.node = it.list.findLessThan(it.node.key)
}
