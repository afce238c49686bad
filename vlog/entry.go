// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package vlog implements the value-separation log: an append-only,
// segmented directory of NNNNNN.vlog files storing the large values
// that internal keys in an SSTable or memtable only point to via a
// base.ValuePointer.
package vlog

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/internal/crc"
)

// entryHeaderLen is key_len(4) + value_len(4) + meta(1).
const entryHeaderLen = 4 + 4 + 1

// entryCRCLen is the trailing CRC32 field.
const entryCRCLen = 4

// Entry is a single value-log record: a key/value pair tagged with a
// base.ValueType, matching the kind carried by the corresponding
// internal key. Keys are stored alongside values so a vlog can be
// garbage-collected independently of its owning SSTables (by replaying
// entries and re-checking liveness against the current index).
type Entry struct {
	Key   []byte
	Value []byte
	Meta  base.ValueType
}

// EncodedLen returns the number of bytes Encode will produce for e.
func (e Entry) EncodedLen() int {
	return entryHeaderLen + len(e.Key) + len(e.Value) + entryCRCLen
}

// Encode appends e's wire representation to dst:
// [key_len:u32][val_len:u32][meta:u8][key][val][crc32:u32], all
// big-endian, with the CRC covering every byte preceding it.
func (e Entry) Encode(dst []byte) []byte {
	start := len(dst)
	var hdr [entryHeaderLen]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(len(e.Key)))
	binary.BigEndian.PutUint32(hdr[4:8], uint32(len(e.Value)))
	hdr[8] = byte(e.Meta)
	dst = append(dst, hdr[:]...)
	dst = append(dst, e.Key...)
	dst = append(dst, e.Value...)

	sum := crc.Checksum(dst[start:])
	var crcBuf [entryCRCLen]byte
	binary.BigEndian.PutUint32(crcBuf[:], sum)
	return append(dst, crcBuf[:]...)
}

// DecodeEntry parses a single Entry from the front of buf, returning the
// entry and the number of bytes consumed. buf may contain trailing bytes
// belonging to later entries.
func DecodeEntry(buf []byte) (Entry, int, error) {
	if len(buf) < entryHeaderLen+entryCRCLen {
		return Entry{}, 0, base.Mark(errors.New("vlog: buffer shorter than entry header"), base.ErrValueLogCorrupted)
	}

	keyLen := binary.BigEndian.Uint32(buf[0:4])
	valLen := binary.BigEndian.Uint32(buf[4:8])
	meta := base.ValueType(buf[8])
	if !base.IsValidValueType(meta) {
		return Entry{}, 0, base.Mark(errors.Newf("vlog: invalid value type %d", errors.Safe(meta)), base.ErrValueLogCorrupted)
	}

	total := uint64(entryHeaderLen) + uint64(keyLen) + uint64(valLen) + entryCRCLen
	if total > uint64(len(buf)) {
		return Entry{}, 0, base.Mark(errors.New("vlog: entry length exceeds buffer"), base.ErrValueLogCorrupted)
	}

	keyStart := entryHeaderLen
	valStart := keyStart + int(keyLen)
	valEnd := valStart + int(valLen)

	wantCRC := binary.BigEndian.Uint32(buf[valEnd : valEnd+entryCRCLen])
	gotCRC := crc.Checksum(buf[:valEnd])
	if wantCRC != gotCRC {
		return Entry{}, 0, base.Mark(errors.New("vlog: entry checksum mismatch"), base.ErrValueLogCorrupted)
	}

	e := Entry{
		Key:   append([]byte(nil), buf[keyStart:valStart]...),
		Value: append([]byte(nil), buf[valStart:valEnd]...),
		Meta:  meta,
	}
	return e, valEnd + entryCRCLen, nil
}
