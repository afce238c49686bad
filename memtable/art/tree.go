// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package art

import (
	"bytes"

	"github.com/cockroachdb/errors"
)

// errRestart signals insertAttempt hit a transient concurrency conflict
// (a version mismatch, a locked node, or an obsoleted node) and must be
// retried from the root.
var errRestart = errors.New("art: restart from root")

// Tree is the optimistic-lock ART. Its zero value is an empty,
// ready-to-use tree. Keys must include a unique terminator (no key a
// prefix of another) — true of every InternalKey this module's memtable
// façade inserts, since every key ends in an 8-byte trailer.
type Tree struct {
	// top is a virtual node whose single "child" is root: the root slot
	// needs the same optimistic version-cell protection as any other
	// child slot, so it gets one, modeling the tree root as the lone
	// child of this otherwise-invisible header.
	top  header
	root artNode
}

// New returns an empty Tree.
func New() *Tree { return &Tree{} }

// Get returns the value associated with key, if present. Lock-free:
// any number of concurrent readers may call Get while Insert proceeds
// on other goroutines.
func (t *Tree) Get(key []byte) (any, bool) {
	for {
		v, ok, retry := t.getAttempt(key)
		if !retry {
			return v, ok
		}
	}
}

func (t *Tree) getAttempt(key []byte) (value any, found bool, retry bool) {
	parentVer, err := t.top.lock.rLock()
	if err != nil {
		return nil, false, true
	}
	cur := t.root
	if err := t.top.lock.checkVersion(parentVer); err != nil {
		return nil, false, true
	}

	depth := 0
	for {
		if cur == nil {
			return nil, false, false
		}
		if lf, ok := cur.(*leaf); ok {
			return lf.value, bytes.Equal(lf.key, key), false
		}

		h := headerOf(cur)
		ver, err := h.lock.rLock()
		if err != nil {
			return nil, false, true
		}

		matched, full := matchPrefix(h, cur, key, depth)
		if err := h.lock.checkVersion(ver); err != nil {
			return nil, false, true
		}
		if !full {
			return nil, false, false
		}
		depth += matched
		if depth >= len(key) {
			return nil, false, false
		}

		child := getChild(cur, key[depth])
		if err := h.lock.checkVersion(ver); err != nil {
			return nil, false, true
		}

		cur = child
		depth++
	}
}

// matchPrefix compares n's logical prefix (via h) against key starting
// at depth, returning the number of matching bytes and whether the
// entire prefix matched.
func matchPrefix(h *header, n artNode, key []byte, depth int) (matched int, full bool) {
	p := logicalPrefixBytes(h, n, depth)
	i := 0
	for i < len(p) && depth+i < len(key) && key[depth+i] == p[i] {
		i++
	}
	return i, i == len(p)
}

func longestCommonPrefix(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// Insert adds key with the given value, or overwrites the value of an
// existing identical key. It retries from the root whenever it observes
// a concurrent structural change, so it is safe to call from any number
// of concurrent writer goroutines.
func (t *Tree) Insert(key []byte, value any) {
	for t.insertAttempt(key, value) != nil {
		// Every non-nil error insertAttempt returns is errRestart, so
		// retrying from the root is always the right response.
	}
}

func (t *Tree) insertAttempt(key []byte, value any) error {
	depth := 0

	parentHeader := &t.top
	parentVer, err := parentHeader.lock.rLock()
	if err != nil {
		return errRestart
	}
	// slotIsRoot tracks whether the slot we're about to examine/replace
	// is the tree's root (t.root) or a keyed child of parentNode.
	slotIsRoot := true
	var parentNode artNode
	var slotKey byte

	getSlot := func() artNode {
		if slotIsRoot {
			return t.root
		}
		return getChild(parentNode, slotKey)
	}
	setSlot := func(n artNode) {
		if slotIsRoot {
			t.root = n
		} else {
			setChild(parentNode, slotKey, n)
		}
	}

	for {
		cur := getSlot()

		if cur == nil {
			if parentHeader.lock.lockAt(parentVer) != nil {
				return errRestart
			}
			setSlot(&leaf{key: append([]byte(nil), key...), value: value})
			parentHeader.lock.unlock()
			return nil
		}

		if lf, ok := cur.(*leaf); ok {
			if bytes.Equal(lf.key, key) {
				if parentHeader.lock.lockAt(parentVer) != nil {
					return errRestart
				}
				// Replace rather than mutate: leaves are immutable once
				// published, so a concurrent reader holding lf never sees
				// a half-written value.
				setSlot(&leaf{key: lf.key, value: value})
				parentHeader.lock.unlock()
				return nil
			}

			common := depth + longestCommonPrefix(lf.key[depth:], key[depth:])
			if parentHeader.lock.lockAt(parentVer) != nil {
				return errRestart
			}

			nn := newNode4()
			nn.prefixLen = common - depth
			copy(nn.prefix[:], key[depth:min(common, depth+maxPrefixLen)])

			newLeaf := &leaf{key: append([]byte(nil), key...), value: value}
			setChild(nn, lf.key[common], lf)
			setChild(nn, newLeaf.key[common], newLeaf)

			setSlot(nn)
			parentHeader.lock.unlock()
			return nil
		}

		h := headerOf(cur)
		curVer, err := h.lock.rLock()
		if err != nil {
			return errRestart
		}

		fullPrefix := logicalPrefixBytes(h, cur, depth)
		if err := h.lock.checkVersion(curVer); err != nil {
			return errRestart
		}

		matched := 0
		for matched < len(fullPrefix) && depth+matched < len(key) && key[depth+matched] == fullPrefix[matched] {
			matched++
		}

		if matched < len(fullPrefix) {
			// Partial prefix match: split cur's prefix.
			if parentHeader.lock.lockAt(parentVer) != nil {
				return errRestart
			}
			if err := h.lock.lockAt(curVer); err != nil {
				parentHeader.lock.unlock()
				return errRestart
			}

			splitNode := newNode4()
			splitNode.prefixLen = matched
			copy(splitNode.prefix[:], fullPrefix[:min(matched, maxPrefixLen)])

			oldByte := fullPrefix[matched]
			remainder := fullPrefix[matched+1:]
			h.prefixLen = len(remainder)
			h.prefix = [maxPrefixLen]byte{}
			copy(h.prefix[:], remainder[:min(len(remainder), maxPrefixLen)])

			newLeaf := &leaf{key: append([]byte(nil), key...), value: value}
			setChild(splitNode, oldByte, cur)
			if depth+matched < len(key) {
				setChild(splitNode, key[depth+matched], newLeaf)
			}

			setSlot(splitNode)
			h.lock.unlock()
			parentHeader.lock.unlock()
			return nil
		}

		depth += matched
		if depth >= len(key) {
			// key is a prefix of every key under cur: violates the
			// unique-terminator precondition.
			panic("art: key is a prefix of an existing key")
		}
		c := key[depth]
		child := getChild(cur, c)
		if err := h.lock.checkVersion(curVer); err != nil {
			return errRestart
		}

		if child != nil {
			parentHeader = h
			parentVer = curVer
			slotIsRoot = false
			parentNode = cur
			slotKey = c
			depth++
			continue
		}

		if err := h.lock.lockAt(curVer); err != nil {
			return errRestart
		}

		newLeaf := &leaf{key: append([]byte(nil), key...), value: value}
		if isFull(cur) {
			if parentHeader.lock.lockAt(parentVer) != nil {
				h.lock.unlock()
				return errRestart
			}
			grown := grow(cur)
			setChild(grown, c, newLeaf)
			setSlot(grown)
			h.lock.unlockObsolete()
			parentHeader.lock.unlock()
			return nil
		}

		setChild(cur, c, newLeaf)
		h.lock.unlock()
		return nil
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
