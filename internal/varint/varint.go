// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package varint implements the unsigned LEB128 codec used by every
// on-disk format in arisdb: internal keys, vlog entries, WAL records and
// SSTable blocks. It is bijective on uint64 and byte-for-byte identical to
// the canonical varint used by LevelDB, so table bytes stay portable.
package varint

import "github.com/cockroachdb/errors"

// MaxLen64 is the maximum number of bytes a uint64 can expand to.
const MaxLen64 = 10

// ErrInsufficientBytes is returned when the input ends mid-value.
var ErrInsufficientBytes = errors.New("varint: insufficient bytes")

// ErrOverflow is returned when more than MaxLen64 continuation bytes are seen.
var ErrOverflow = errors.New("varint: overflow")

// Len64 returns the number of bytes Put64 would write for v.
func Len64(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// Put64 appends the varint encoding of v to dst and returns the extended slice.
func Put64(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// AppendUvarint is an alias of Put64 matching encoding/binary's naming.
func AppendUvarint(dst []byte, v uint64) []byte { return Put64(dst, v) }

// Get64 decodes a uint64 from the front of buf, returning the value and the
// number of bytes consumed. A zero byte count signals an error: either
// ErrInsufficientBytes (buf ended before a terminating byte) or ErrOverflow
// (more than MaxLen64 continuation bytes).
func Get64(buf []byte) (v uint64, n int, err error) {
	var shift uint
	for i := 0; i < len(buf); i++ {
		if i == MaxLen64 {
			return 0, 0, ErrOverflow
		}
		b := buf[i]
		if b < 0x80 {
			v |= uint64(b) << shift
			return v, i + 1, nil
		}
		v |= uint64(b&0x7f) << shift
		shift += 7
	}
	return 0, 0, ErrInsufficientBytes
}

// Consume decodes a uint64 from the front of buf and returns the value
// along with the remaining, unconsumed bytes.
func Consume(buf []byte) (v uint64, rest []byte, err error) {
	v, n, err := Get64(buf)
	if err != nil {
		return 0, nil, err
	}
	return v, buf[n:], nil
}
