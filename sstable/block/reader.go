// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/internal/varint"
)

// restartFieldLen is the width of a restart offset / restart count field.
const restartFieldLen = 4

// Block is a parsed, decompressed data block: the raw entry bytes plus the
// location of the restart-point tail. Block itself does no copying; it
// borrows data for the lifetime of the block.
type Block struct {
	data          []byte
	restartOffset uint32
	restartCount  uint32
}

// NewBlock parses data (the output of Builder.Finish, post-decompression)
// into a Block, validating the restart-count tail.
func NewBlock(data []byte) (Block, error) {
	if len(data) < restartFieldLen {
		return Block{}, base.Mark(errors.New("block: data too short to contain a restart count"), base.ErrBlockCorrupted)
	}

	restartCount := binary.LittleEndian.Uint32(data[len(data)-restartFieldLen:])
	maxRestartsAllowed := uint32(len(data)-restartFieldLen) / restartFieldLen
	if restartCount > maxRestartsAllowed {
		return Block{}, base.Mark(errors.Newf("block: restart count %d exceeds maximum %d for block of %d bytes", errors.Safe(restartCount), errors.Safe(maxRestartsAllowed), errors.Safe(len(data))), base.ErrBlockCorrupted)
	}
	restartOffset := uint32(len(data)) - (1+restartCount)*restartFieldLen

	return Block{data: data, restartOffset: restartOffset, restartCount: restartCount}, nil
}

// RestartCount returns the number of restart points recorded in the block.
func (b Block) RestartCount() int { return int(b.restartCount) }

// Iter returns a fresh Iterator positioned before the first entry.
func (b Block) Iter(cmp func(a, b []byte) int) *Iterator {
	return &Iterator{
		cmp:           cmp,
		data:          b.data,
		restartOffset: b.restartOffset,
		restartCount:  b.restartCount,
		current:       b.restartOffset,
		restartIndex:  0,
	}
}

// Iterator walks the entries of a single data block in key order. It
// mirrors the block builder's restart-point scheme: seek uses the restart
// array as a coarse binary-searchable index, then linear-scans forward to
// the target.
//
// An Iterator is not safe for concurrent use; callers needing concurrent
// reads over one Block should each obtain their own Iterator via Block.Iter.
type Iterator struct {
	cmp  func(a, b []byte) int
	data []byte

	restartOffset uint32
	restartCount  uint32

	current      uint32
	restartIndex uint32

	key          []byte
	sharedLen    uint32
	nonSharedLen uint32
	keyOffset    uint32
	valueLen     uint32

	err error
}

// Valid reports whether the iterator is positioned at an entry.
func (it *Iterator) Valid() bool {
	return it.err == nil && it.current < it.restartOffset
}

// Error returns any corruption error encountered while parsing, which
// sticks until the iterator is repositioned via SeekToFirst/SeekToLast/Seek.
func (it *Iterator) Error() error { return it.err }

// Key returns the current entry's fully reconstructed user-visible key
// (shared prefix plus stored suffix). The returned slice is owned by the
// iterator and invalidated by the next positioning call.
func (it *Iterator) Key() []byte {
	return it.key
}

// Value returns the current entry's value bytes, borrowed from the
// underlying block data.
func (it *Iterator) Value() []byte {
	end := it.nextEntryOffset()
	start := end - it.valueLen
	return it.data[start:end]
}

func (it *Iterator) nextEntryOffset() uint32 {
	return it.keyOffset + it.nonSharedLen + it.valueLen
}

func (it *Iterator) restartPoint(index uint32) uint32 {
	off := it.restartOffset + index*restartFieldLen
	return binary.LittleEndian.Uint32(it.data[off : off+restartFieldLen])
}

func (it *Iterator) seekToRestartPoint(index uint32) {
	it.key = it.key[:0]
	it.restartIndex = index
	it.current = it.restartPoint(index)
}

// parseNextEntry decodes the entry at it.current, reconstructing the key
// and advancing restartIndex as needed. It reports whether an entry was
// parsed (false at end-of-block or on corruption, in which case Error()
// will be non-nil only for the corruption case).
func (it *Iterator) parseNextEntry() bool {
	if it.current >= it.restartOffset {
		it.current = it.restartOffset
		it.restartIndex = it.restartCount
		return false
	}

	p := it.data[it.current:]
	shared, n1, err := varint.Get64(p)
	if err != nil {
		it.corrupt()
		return false
	}
	p = p[n1:]
	nonShared, n2, err := varint.Get64(p)
	if err != nil {
		it.corrupt()
		return false
	}
	p = p[n2:]
	valueLen, n3, err := varint.Get64(p)
	if err != nil {
		it.corrupt()
		return false
	}

	offset := it.current + uint32(n1+n2+n3)
	if uint64(offset)+nonShared+valueLen > uint64(it.restartOffset) {
		it.corrupt()
		return false
	}

	if shared > uint64(len(it.key)) {
		it.corrupt()
		return false
	}
	it.keyOffset = offset
	it.sharedLen = uint32(shared)
	it.nonSharedLen = uint32(nonShared)
	it.valueLen = uint32(valueLen)

	// The shared prefix is carried over from the previous key, so it must
	// survive a reallocation when the buffer grows.
	keyLen := it.sharedLen + it.nonSharedLen
	if uint32(cap(it.key)) < keyLen {
		grown := make([]byte, keyLen)
		copy(grown, it.key[:it.sharedLen])
		it.key = grown
	} else {
		it.key = it.key[:keyLen]
	}
	copy(it.key[it.sharedLen:], it.data[it.keyOffset:it.keyOffset+it.nonSharedLen])

	for it.restartIndex+1 < it.restartCount && it.restartPoint(it.restartIndex+1) < it.current {
		it.restartIndex++
	}
	return true
}

func (it *Iterator) corrupt() {
	it.current = it.restartOffset
	it.restartIndex = it.restartCount
	it.err = base.Mark(errors.New("block: corrupt entry"), base.ErrBlockCorrupted)
}

// SeekToFirst positions the iterator at the block's first entry.
func (it *Iterator) SeekToFirst() {
	it.err = nil
	it.seekToRestartPoint(0)
	it.parseNextEntry()
}

// SeekToLast positions the iterator at the block's last entry. Panics if
// the block has no restart points (which cannot happen for a block built
// by Builder, since Finish always emits at least restart 0).
func (it *Iterator) SeekToLast() {
	it.err = nil
	if it.restartCount == 0 {
		panic("block: SeekToLast on block with no restart points")
	}
	it.seekToRestartPoint(it.restartCount - 1)
	for it.parseNextEntry() && it.nextEntryOffset() < it.restartOffset {
		it.current = it.nextEntryOffset()
	}
}

// Next advances to the following entry. The iterator must be Valid.
func (it *Iterator) Next() {
	if !it.Valid() {
		panic("block: Next called on invalid iterator")
	}
	it.current = it.nextEntryOffset()
	it.parseNextEntry()
}

// Prev moves to the preceding entry by rewinding to the covering restart
// point and linear-scanning forward. The iterator must be Valid.
func (it *Iterator) Prev() {
	if !it.Valid() {
		panic("block: Prev called on invalid iterator")
	}
	original := it.current
	for it.restartPoint(it.restartIndex) >= original {
		if it.restartIndex == 0 {
			it.current = it.restartOffset
			it.restartIndex = it.restartCount
			return
		}
		it.restartIndex--
	}

	it.seekToRestartPoint(it.restartIndex)
	for it.parseNextEntry() && it.nextEntryOffset() < original {
		it.current = it.nextEntryOffset()
	}
}

// Seek positions the iterator at the first entry whose key is >= target,
// using the restart array as a sparse binary-searchable index and then
// linear-scanning within the covering restart interval. If no such entry
// exists, the iterator becomes invalid.
func (it *Iterator) Seek(target []byte) {
	it.err = nil
	if it.restartCount == 0 {
		it.current = it.restartOffset
		it.restartIndex = it.restartCount
		return
	}

	left, right := uint32(0), it.restartCount-1
	for left < right {
		mid := (left + right + 1) / 2
		offset := it.restartPoint(mid)

		p := it.data[offset:]
		shared, n1, err := varint.Get64(p)
		if err != nil {
			it.corrupt()
			return
		}
		p = p[n1:]
		nonShared, n2, err := varint.Get64(p)
		if err != nil {
			it.corrupt()
			return
		}
		p = p[n2:]
		_, n3, err := varint.Get64(p)
		if err != nil {
			it.corrupt()
			return
		}
		if shared != 0 {
			it.corrupt()
			return
		}

		keyOffset := offset + uint32(n1+n2+n3)
		midKey := it.data[keyOffset : keyOffset+uint32(nonShared)]
		if it.cmp(midKey, target) < 0 {
			left = mid
		} else {
			right = mid - 1
		}
	}

	it.seekToRestartPoint(left)
	for {
		if !it.parseNextEntry() {
			return
		}
		if it.cmp(it.key, target) >= 0 {
			return
		}
		it.current = it.nextEntryOffset()
	}
}
