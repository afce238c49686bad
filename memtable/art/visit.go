// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package art

import (
	"bytes"
	"sort"
)

// Visit calls fn once for every leaf in the tree, in ascending key order,
// depth-first over each node's children sorted by key byte. It takes no
// locks beyond the ones momentarily needed to read a node's children
// list: callers that need a point-in-time snapshot (e.g. draining a
// frozen memtable into an SSTable) must ensure no concurrent writer is
// active, since Visit does not itself detect or retry on concurrent
// structural changes the way Get and Insert do.
func (t *Tree) Visit(fn func(key []byte, value any)) {
	visit(t.root, fn)
}

// VisitPrefixed calls fn once for every leaf whose key starts with
// prefix, in no particular order. Unlike Visit, it is lock-free and
// concurrency-safe against ongoing Insert calls: it walks with the same
// optimistic version checks Get uses and silently retries the whole
// walk from the root whenever it observes a concurrent structural
// change, so fn never sees a torn read, only possibly a stale-but-
// consistent snapshot of whatever was in the tree at some point during
// the call.
//
// This is how the memtable façade recovers a multi-version lookup (every
// leaf whose key shares a given user-key prefix) from a tree keyed by
// full internal keys, rather than adding a second index.
func (t *Tree) VisitPrefixed(prefix []byte, fn func(key []byte, value any)) {
	for {
		parentVer, err := t.top.lock.rLock()
		if err != nil {
			continue
		}
		root := t.root
		if err := t.top.lock.checkVersion(parentVer); err != nil {
			continue
		}
		if visitPrefixed(root, prefix, 0, fn) {
			return
		}
	}
}

// visitPrefixed descends from n (positioned at depth bytes into the key
// space) looking for the boundary where prefix is fully matched, then
// calls visit on every subtree hanging off that boundary. It returns
// false to signal the caller should restart the whole walk from the
// root after an optimistic-lock conflict.
func visitPrefixed(n artNode, prefix []byte, depth int, fn func(key []byte, value any)) bool {
	if n == nil {
		return true
	}
	if depth >= len(prefix) {
		visit(n, fn)
		return true
	}
	if lf, ok := n.(*leaf); ok {
		if len(lf.key) >= len(prefix) && bytes.Equal(lf.key[:len(prefix)], prefix) {
			fn(lf.key, lf.value)
		}
		return true
	}

	h := headerOf(n)
	ver, err := h.lock.rLock()
	if err != nil {
		return false
	}
	full := logicalPrefixBytes(h, n, depth)
	if err := h.lock.checkVersion(ver); err != nil {
		return false
	}

	remaining := prefix[depth:]
	cmpLen := len(full)
	if cmpLen > len(remaining) {
		cmpLen = len(remaining)
	}
	if !bytes.Equal(full[:cmpLen], remaining[:cmpLen]) {
		return true // cur's prefix diverges from the search prefix: no match below
	}

	next := depth + len(full)
	if next >= len(prefix) {
		visit(n, fn)
		return h.lock.checkVersion(ver) == nil
	}

	child := getChild(n, prefix[next])
	if err := h.lock.checkVersion(ver); err != nil {
		return false
	}
	return visitPrefixed(child, prefix, next+1, fn)
}

func visit(n artNode, fn func(key []byte, value any)) {
	if n == nil {
		return
	}
	if lf, ok := n.(*leaf); ok {
		fn(lf.key, lf.value)
		return
	}
	for _, child := range sortedChildren(n) {
		visit(child, fn)
	}
}

// sortedChildren returns n's non-nil children ordered by their key byte
// ascending. node256 and node48 are already byte-indexed; node4/node16
// store children in insertion order and must be sorted explicitly.
func sortedChildren(n artNode) []artNode {
	switch x := n.(type) {
	case *node4:
		return sortedByKeys(x.keys[:x.numChildren], x.children[:x.numChildren])
	case *node16:
		return sortedByKeys(x.keys[:x.numChildren], x.children[:x.numChildren])
	case *node48:
		out := make([]artNode, 0, x.numChildren)
		for c := 0; c < 256; c++ {
			if idx := x.index[byte(c)]; idx != 0 {
				out = append(out, x.children[idx-1])
			}
		}
		return out
	case *node256:
		out := make([]artNode, 0, x.numChildren)
		for _, c := range x.children {
			if c != nil {
				out = append(out, c)
			}
		}
		return out
	default:
		return nil
	}
}

func sortedByKeys(keys []byte, children []artNode) []artNode {
	idx := make([]int, len(keys))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return keys[idx[i]] < keys[idx[j]] })
	out := make([]artNode, len(idx))
	for i, j := range idx {
		out[i] = children[j]
	}
	return out
}
