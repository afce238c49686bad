// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import (
	"bytes"

	"github.com/cockroachdb/errors"

	"github.com/Irumyuui/arisdb/internal/varint"
)

// DefaultRestartInterval is the number of entries between restart points.
const DefaultRestartInterval = 16

// Builder accumulates key/value entries in increasing key order into a
// single data block. Builder is not safe for concurrent use; callers must
// serialize Add calls, matching the "a writer cannot be used concurrently"
// contract common to every append-only builder in this package.
type Builder struct {
	cmp      func(a, b []byte) int
	interval int

	buf        bytes.Buffer
	restarts   []uint32
	lastKey    []byte
	sinceStart int
	finished   bool
	entries    int
}

// NewBuilder creates a Builder using cmp for ordering and restartInterval
// entries between restart points (0 or negative defaults to
// DefaultRestartInterval).
func NewBuilder(cmp func(a, b []byte) int, restartInterval int) *Builder {
	if restartInterval <= 0 {
		restartInterval = DefaultRestartInterval
	}
	b := &Builder{cmp: cmp, interval: restartInterval}
	b.Reset()
	return b
}

// Reset clears the builder for reuse. After Finish, only Reset is legal.
func (b *Builder) Reset() {
	b.buf.Reset()
	b.restarts = b.restarts[:0]
	b.restarts = append(b.restarts, 0)
	b.lastKey = b.lastKey[:0]
	b.sinceStart = 0
	b.finished = false
	b.entries = 0
}

// Empty reports whether any entries have been added since the last Reset.
func (b *Builder) Empty() bool { return b.entries == 0 }

// Entries returns the number of entries added since the last Reset.
func (b *Builder) Entries() int { return b.entries }

// Add appends a key/value pair. key must be >= the last key added (under
// the builder's comparator); violating this is a programmer-contract
// error and panics.
func (b *Builder) Add(key, value []byte) {
	if b.finished {
		panic("block: Add called after Finish")
	}
	if b.entries > 0 && b.cmp(key, b.lastKey) < 0 {
		panic("block: keys added out of order")
	}

	shared := 0
	if b.sinceStart < b.interval {
		shared = sharedPrefixLen(b.lastKey, key)
	} else {
		b.restarts = append(b.restarts, uint32(b.buf.Len()))
		b.sinceStart = 0
	}
	nonShared := key[shared:]

	var hdr [3 * varint.MaxLen64]byte
	tmp := varint.Put64(hdr[:0], uint64(shared))
	tmp = varint.Put64(tmp, uint64(len(nonShared)))
	tmp = varint.Put64(tmp, uint64(len(value)))
	b.buf.Write(tmp)
	b.buf.Write(nonShared)
	b.buf.Write(value)

	b.lastKey = append(b.lastKey[:0], key...)
	b.sinceStart++
	b.entries++
}

func sharedPrefixLen(a, b []byte) int {
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

// CurrentSizeEstimate returns an upper bound on the number of bytes the
// block would occupy if Finish were called now.
func (b *Builder) CurrentSizeEstimate() int {
	return b.buf.Len() + len(b.restarts)*4 + 4
}

// Finish appends the restart-offset tail and returns the finished block's
// bytes (not including the 5-byte compression/CRC trailer, which is added
// by the caller via WriteTrailer once the block's final position in the
// file is known). After Finish, only Reset is legal.
func (b *Builder) Finish() []byte {
	if b.finished {
		panic("block: Finish called twice")
	}
	b.finished = true
	for _, r := range b.restarts {
		var buf [4]byte
		putUint32LE(buf[:], r)
		b.buf.Write(buf[:])
	}
	var countBuf [4]byte
	putUint32LE(countBuf[:], uint32(len(b.restarts)))
	b.buf.Write(countBuf[:])
	return b.buf.Bytes()
}

func putUint32LE(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
	dst[3] = byte(v >> 24)
}

// ErrBuilderMisuse classifies a programmer-contract violation for call
// sites that report it as an error rather than panic. Builder itself
// never returns it: its own contract violations panic.
var ErrBuilderMisuse = errors.New("block: builder misused")
