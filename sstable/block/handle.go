// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package block implements the SSTable data-block format: the
// prefix-compressed, restart-pointed entry sequence, its builder and
// reader, the 5-byte [compression_type|crc32] trailer every block
// carries, and the compression-type dispatch.
package block

import "github.com/Irumyuui/arisdb/internal/varint"

// Handle is a pointer to a block within an SSTable file: a byte offset
// and a size (excluding the 5-byte trailer).
type Handle struct {
	Offset uint64
	Size   uint64
}

// EncodeVarints writes the handle's varint(offset) || varint(size)
// encoding into the front of dst, which must have room for both varints
// (2*varint.MaxLen64 bytes always suffice), and returns the number of
// bytes written.
func (h Handle) EncodeVarints(dst []byte) int {
	buf := varint.Put64(dst[:0], h.Offset)
	buf = varint.Put64(buf, h.Size)
	return len(buf)
}

// Append is a convenience wrapper returning the extended slice instead of
// a byte count.
func (h Handle) Append(dst []byte) []byte {
	dst = varint.Put64(dst, h.Offset)
	return varint.Put64(dst, h.Size)
}

// DecodeHandle parses a Handle from the front of buf, returning the
// number of bytes consumed, or 0 on error.
func DecodeHandle(buf []byte) (Handle, int) {
	offset, n1, err := varint.Get64(buf)
	if err != nil {
		return Handle{}, 0
	}
	size, n2, err := varint.Get64(buf[n1:])
	if err != nil {
		return Handle{}, 0
	}
	return Handle{Offset: offset, Size: size}, n1 + n2
}

// TrailerLen is the fixed width of the per-block trailer: a 1-byte
// compression type tag followed by a 4-byte little-endian CRC32.
const TrailerLen = 5
