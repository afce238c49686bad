// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "bytes"

// Comparer is the capability the core consumes to order user keys. The
// default, BytewiseComparer, orders keys lexicographically by byte value.
//
// A custom comparer is supplied by the caller; the engine only ever
// calls through this interface.
type Comparer struct {
	// Name is a stable identifier. This core neither persists nor
	// compares it (the façade is responsible for pinning a comparer per
	// database), so reading a table with a different comparer than it was
	// built with goes undetected.
	Name string

	// Compare returns <0, 0, >0 as a<b, a==b, a>b.
	Compare func(a, b []byte) int

	// FindShortestSeparator returns a shortest key s such that
	// start <= s < limit, appended to dst. It may simply return start
	// unchanged if no shorter separator exists.
	FindShortestSeparator func(dst, start, limit []byte) []byte

	// FindShortSuccessor returns a shortest key s such that s >= b,
	// appended to dst, used to close out an index block's final entry.
	FindShortSuccessor func(dst, b []byte) []byte

	// Split returns the length of key's prefix. The default, whole-key
	// comparer returns len(key). Nothing in this module calls it: filter
	// blocks are always built and probed over whole keys.
	Split func(key []byte) int
}

// DefaultComparer is the bytewise comparer, name "arisdb.BytewiseComparator".
var DefaultComparer = &Comparer{
	Name:                  "arisdb.BytewiseComparator",
	Compare:               bytes.Compare,
	FindShortestSeparator: bytewiseFindShortestSeparator,
	FindShortSuccessor:    bytewiseFindShortSuccessor,
	Split:                 func(key []byte) int { return len(key) },
}

func bytewiseFindShortestSeparator(dst, start, limit []byte) []byte {
	// Find the length of the common prefix.
	n := len(start)
	if len(limit) < n {
		n = len(limit)
	}
	i := 0
	for i < n && start[i] == limit[i] {
		i++
	}
	if i >= n {
		// One is a prefix of the other; no shorter separator exists.
		return append(dst, start...)
	}
	if start[i] < 0xff && start[i]+1 < limit[i] {
		dst = append(dst, start[:i+1]...)
		dst[len(dst)-1]++
		return dst
	}
	return append(dst, start...)
}

func bytewiseFindShortSuccessor(dst, b []byte) []byte {
	for i := 0; i < len(b); i++ {
		if c := b[i]; c != 0xff {
			dst = append(dst, b[:i+1]...)
			dst[len(dst)-1] = c + 1
			return dst
		}
	}
	// b is all 0xff, or empty: no shorter successor.
	return append(dst, b...)
}

// FilterPolicy is the capability the engine consumes for approximate
// membership tests.
type FilterPolicy interface {
	// Name is a stable identifier; the filter block is stored under a
	// meta-index key derived from it, so a reader configured with a
	// different name finds no filter block and reads without one.
	Name() string

	// CreateFilter builds a filter over the given (sorted) keys.
	CreateFilter(keys [][]byte) []byte

	// MayContain reports whether key might be present in filter. False
	// negatives are never allowed; false positives are bounded by the
	// policy's configured rate.
	MayContain(filter, key []byte) bool
}
