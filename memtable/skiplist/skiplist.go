// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package skiplist

import (
	"sync/atomic"

	"golang.org/x/exp/rand"
)

// MaxHeight bounds a node's tower height.
const MaxHeight = 20

// branchingFactor is the per-level promotion probability's reciprocal:
// each level is entered with probability 1/4.
const branchingFactor = 4

// Node is a single skip-list entry. Its next-pointer tower is sized to
// exactly its height at allocation time, rather than always allocating
// MaxHeight pointers, so short towers (the common case) stay cheap.
type Node[V any] struct {
	key   []byte
	value V
	next  []atomic.Pointer[Node[V]]
}

// Key returns the node's key. The returned slice aliases arena memory
// and must not be retained beyond the skip list's lifetime without a
// copy.
func (n *Node[V]) Key() []byte { return n.key }

// Value returns the node's associated payload.
func (n *Node[V]) Value() V { return n.value }

func (n *Node[V]) loadNext(level int) *Node[V] { return n.next[level].Load() }

func (n *Node[V]) storeNext(level int, v *Node[V]) { n.next[level].Store(v) }

// Skiplist is a lock-free, append-only ordered index over byte-string
// keys generic in its associated value payload V (the memtable façade
// instantiates V with its own entry type). Insert requires a single
// writer; Contains/Get/iteration are lock-free for any number of
// concurrent readers.
type Skiplist[V any] struct {
	cmp    func(a, b []byte) int
	rng    *rand.Rand
	arena  arena
	height atomic.Int32 // current max live height, >= 1
	head   [MaxHeight]atomic.Pointer[Node[V]]
}

// New returns an empty Skiplist ordering keys with cmp (typically
// base.DefaultComparer.Compare), seeded with seed for reproducible
// level-promotion decisions in tests.
func New[V any](cmp func(a, b []byte) int, seed uint64) *Skiplist[V] {
	s := &Skiplist[V]{cmp: cmp, rng: rand.New(rand.NewSource(seed))}
	s.height.Store(1)
	return s
}

func (s *Skiplist[V]) curHeight() int { return int(s.height.Load()) }

// randomHeight draws a geometrically distributed height in [1, MaxHeight].
func (s *Skiplist[V]) randomHeight() int {
	h := 1
	for h < MaxHeight && s.rng.Intn(branchingFactor) == 0 {
		h++
	}
	return h
}

func (s *Skiplist[V]) nextAt(n *Node[V], level int) *Node[V] {
	if n == nil {
		return s.head[level].Load()
	}
	return n.loadNext(level)
}

// findGreaterOrEqual walks the tower from the top live level down,
// returning the first node with key >= target and, if prev is non-nil,
// filling prev[level] with the last node visited at each level strictly
// less than target.
func (s *Skiplist[V]) findGreaterOrEqual(target []byte, prev []*Node[V]) *Node[V] {
	var x *Node[V]
	level := s.curHeight() - 1
	for {
		next := s.nextAt(x, level)
		if next != nil && s.cmp(next.key, target) < 0 {
			x = next
			continue
		}
		if prev != nil {
			prev[level] = x
		}
		if level == 0 {
			return next
		}
		level--
	}
}

// findLessThan returns the last node strictly less than target, or nil
// if target is <= the first key. Used by the reverse iterator, which has
// no backward pointers to walk and so re-searches from the head instead.
func (s *Skiplist[V]) findLessThan(target []byte) *Node[V] {
	var x *Node[V]
	level := s.curHeight() - 1
	for {
		next := s.nextAt(x, level)
		if next != nil && s.cmp(next.key, target) < 0 {
			x = next
			continue
		}
		if level == 0 {
			return x
		}
		level--
	}
}

// findLast returns the last node in the list, or nil if empty.
func (s *Skiplist[V]) findLast() *Node[V] {
	var x *Node[V]
	level := s.curHeight() - 1
	for {
		next := s.nextAt(x, level)
		if next != nil {
			x = next
			continue
		}
		if level == 0 {
			return x
		}
		level--
	}
}

// Contains reports whether key is present.
func (s *Skiplist[V]) Contains(key []byte) bool {
	n := s.findGreaterOrEqual(key, nil)
	return n != nil && s.cmp(n.key, key) == 0
}

// Get returns the value stored for key, if present.
func (s *Skiplist[V]) Get(key []byte) (V, bool) {
	n := s.findGreaterOrEqual(key, nil)
	if n != nil && s.cmp(n.key, key) == 0 {
		return n.value, true
	}
	var zero V
	return zero, false
}

// Insert adds key with the given value. Inserting a key that already
// exists is a programmer-contract violation, so this panics rather than
// returning an error, matching block.Builder.Add's out-of-order panic.
// Insert must not be called concurrently with another Insert
// (single-writer contract); it is safe to call concurrently with any
// number of reads.
func (s *Skiplist[V]) Insert(key []byte, value V) {
	var prev [MaxHeight]*Node[V]
	next := s.findGreaterOrEqual(key, prev[:])
	if next != nil && s.cmp(next.key, key) == 0 {
		panic("skiplist: duplicate key inserted")
	}

	height := s.randomHeight()
	if height > s.curHeight() {
		for level := s.curHeight(); level < height; level++ {
			prev[level] = nil
		}
		s.height.Store(int32(height))
	}

	n := &Node[V]{
		key:   s.arena.copyBytes(key),
		value: value,
		next:  make([]atomic.Pointer[Node[V]], height),
	}

	for level := 0; level < height; level++ {
		if prev[level] == nil {
			n.storeNext(level, s.head[level].Load())
			s.head[level].Store(n)
		} else {
			n.storeNext(level, prev[level].loadNext(level))
			prev[level].storeNext(level, n)
		}
	}
}

// MemoryUsage returns the approximate number of key bytes retained by
// the arena backing this skip list.
func (s *Skiplist[V]) MemoryUsage() int64 { return s.arena.memoryUsage() }
