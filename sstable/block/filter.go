// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import "encoding/binary"

// FilterBaseLg governs how many bytes of data-block span share a single
// filter: one filter covers 1 << FilterBaseLg bytes (2 KiB).
const FilterBaseLg = 11

const filterBase = 1 << FilterBaseLg

// FilterPolicy is the narrow subset of base.FilterPolicy the filter block
// needs, kept local to avoid an import cycle with internal/base's
// comparator-focused package doc.
type FilterPolicy interface {
	Name() string
	CreateFilter(keys [][]byte) []byte
	MayContain(filter, key []byte) bool
}

// FilterBlockBuilder accumulates keys across a sequence of data blocks and
// buckets them into one Bloom filter per FilterBaseLg-sized span of file
// offset. Callers call AddKey for every key written to the current data
// block and StartBlock whenever a data block is flushed, passing the file
// offset at which the next data block will start.
type FilterBlockBuilder struct {
	policy        FilterPolicy
	keys          [][]byte
	filterOffsets []uint32
	buf           []byte
}

// NewFilterBlockBuilder returns a builder using policy to build each
// per-span filter.
func NewFilterBlockBuilder(policy FilterPolicy) *FilterBlockBuilder {
	return &FilterBlockBuilder{policy: policy}
}

// AddKey records key as belonging to the filter span currently being
// accumulated.
func (fb *FilterBlockBuilder) AddKey(key []byte) {
	fb.keys = append(fb.keys, append([]byte(nil), key...))
}

// StartBlock is called with the file offset at which the next data block
// starts. It closes out and emits a filter for every FilterBaseLg-sized
// span that lies wholly before the one containing blockOffset; the keys
// added so far go into the first of those filters.
func (fb *FilterBlockBuilder) StartBlock(blockOffset uint64) {
	filterIndex := blockOffset / filterBase
	for filterIndex > uint64(len(fb.filterOffsets)) {
		fb.generateFilter()
	}
}

func (fb *FilterBlockBuilder) generateFilter() {
	fb.filterOffsets = append(fb.filterOffsets, uint32(len(fb.buf)))
	if len(fb.keys) == 0 {
		return
	}
	filter := fb.policy.CreateFilter(fb.keys)
	fb.buf = append(fb.buf, filter...)
	fb.keys = fb.keys[:0]
}

// Finish closes out any pending filter span and returns the finished
// filter block: `[filters...] [filter_offsets:u32_le]* [filter_offsets_start:u32_le] [base_lg:u8]`.
func (fb *FilterBlockBuilder) Finish() []byte {
	if len(fb.keys) > 0 {
		fb.generateFilter()
	}

	filterOffsetsStart := uint32(len(fb.buf))
	for _, off := range fb.filterOffsets {
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], off)
		fb.buf = append(fb.buf, tmp[:]...)
	}
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], filterOffsetsStart)
	fb.buf = append(fb.buf, tmp[:]...)
	fb.buf = append(fb.buf, FilterBaseLg)
	return fb.buf
}

// FilterBlockReader answers MayContain queries against a finished filter
// block, given the file offset of the data block the key lookup is for.
type FilterBlockReader struct {
	policy FilterPolicy
	data   []byte

	baseLg       uint
	filterCount  int
	filterOffset int
}

// NewFilterBlockReader parses data (the raw, decompressed filter block).
// A malformed or too-short block degrades to an always-match reader,
// mirroring the conservative "return true" stance taken everywhere else a
// filter can't be consulted.
func NewFilterBlockReader(policy FilterPolicy, data []byte) *FilterBlockReader {
	r := &FilterBlockReader{policy: policy, data: data}
	if len(data) < 5 {
		return r
	}
	r.baseLg = uint(data[len(data)-1])
	start := binary.LittleEndian.Uint32(data[len(data)-5:])
	if start+5 > uint32(len(data)) {
		return r
	}
	r.filterOffset = int(start)
	r.filterCount = (len(data) - 5 - r.filterOffset) / 4
	return r
}

// MayContain reports whether key might be present in the data block
// starting at blockOffset. A false result is a guarantee of absence; a
// true result may be a false positive.
func (r *FilterBlockReader) MayContain(blockOffset uint64, key []byte) bool {
	index := blockOffset >> r.baseLg
	if index >= uint64(r.filterCount) {
		return true
	}

	off := r.filterOffset + int(index)*4
	start := binary.LittleEndian.Uint32(r.data[off : off+4])
	limit := binary.LittleEndian.Uint32(r.data[off+4 : off+8])
	if start == limit {
		return false
	}
	if start > limit || int(limit) > r.filterOffset {
		return true
	}
	return r.policy.MayContain(r.data[start:limit], key)
}
