// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "encoding/binary"

// ValuePointerSize is the fixed encoded size of a ValuePointer: file_id
// (u32) + offset (u64) + len (u64). Len is pinned project-wide to
// uint64 (rather than narrowed to u32) so a vlog entry is never
// artificially bounded to 4 GiB.
const ValuePointerSize = 4 + 8 + 8

// ValuePointer locates a value log entry: the segment that holds it, the
// byte offset of its encoded record, and the record's encoded length.
// Pointers are stable across the lifetime of their target vlog segment.
type ValuePointer struct {
	FileID uint32
	Offset uint64
	Len    uint64
}

// Encode appends the pointer's wire representation (big-endian, fixed
// width) to dst.
func (p ValuePointer) Encode(dst []byte) []byte {
	var buf [ValuePointerSize]byte
	binary.BigEndian.PutUint32(buf[0:4], p.FileID)
	binary.BigEndian.PutUint64(buf[4:12], p.Offset)
	binary.BigEndian.PutUint64(buf[12:20], p.Len)
	return append(dst, buf[:]...)
}

// DecodeValuePointer parses a ValuePointer from the front of buf.
func DecodeValuePointer(buf []byte) (ValuePointer, bool) {
	if len(buf) < ValuePointerSize {
		return ValuePointer{}, false
	}
	return ValuePointer{
		FileID: binary.BigEndian.Uint32(buf[0:4]),
		Offset: binary.BigEndian.Uint64(buf[4:12]),
		Len:    binary.BigEndian.Uint64(buf[12:20]),
	}, true
}

// IsZero reports whether p is the zero-value pointer (used as a tombstone
// sentinel in a memtable entry without a separate "present" flag when the
// entry's kind is already TypeDeleted).
func (p ValuePointer) IsZero() bool {
	return p == ValuePointer{}
}
