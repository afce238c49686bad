// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package wal implements the block-framed write-ahead log: a raw byte
// stream of fixed-size blocks, each holding one or more length-prefixed,
// CRC-protected records. A payload larger than a block is split across
// First/Middle*/Last records; a payload that would otherwise straddle a
// block boundary with fewer than recordHeaderLen bytes left in the block
// instead triggers zero padding to the next boundary.
//
// This is, byte for byte, the LevelDB/pebble "record" package format,
// generalized here to a 32 KiB block size (pebble itself defaults to the
// same constant).
package wal

// BlockSize is the canonical block size. A deployment could in principle
// parameterize it, but the chosen size would then need to be persisted
// out-of-band, so this module just hardcodes pebble's choice.
const BlockSize = 32 * 1024

// recordHeaderLen is len(u16 le) + type(u8) + crc32(u32 le).
const recordHeaderLen = 2 + 1 + 4

// recordType tags how a record's payload bytes relate to its logical
// record: a whole record (Full) or a fragment of one split across blocks.
type recordType uint8

const (
	recordFull recordType = iota + 1
	recordFirst
	recordMiddle
	recordLast
)

func (t recordType) String() string {
	switch t {
	case recordFull:
		return "Full"
	case recordFirst:
		return "First"
	case recordMiddle:
		return "Middle"
	case recordLast:
		return "Last"
	default:
		return "Unknown"
	}
}

func isValidRecordType(t recordType) bool {
	return t >= recordFull && t <= recordLast
}
