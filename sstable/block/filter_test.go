// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Irumyuui/arisdb/sstable/block"
)

// hashSetFilterPolicy is a deterministic stand-in for a real Bloom filter,
// storing one 4-byte hash per key rather than a probabilistic bitset. It
// exists purely so filter-block boundary tests (span bucketing, empty
// spans) don't depend on Bloom false-positive variance.
type hashSetFilterPolicy struct{}

func (hashSetFilterPolicy) Name() string { return "test.HashSetFilter" }

func (hashSetFilterPolicy) CreateFilter(keys [][]byte) []byte {
	out := make([]byte, 0, len(keys)*4)
	for _, k := range keys {
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], fnv32(k))
		out = append(out, tmp[:]...)
	}
	return out
}

func (hashSetFilterPolicy) MayContain(filter, key []byte) bool {
	want := fnv32(key)
	for len(filter) >= 4 {
		if binary.LittleEndian.Uint32(filter[:4]) == want {
			return true
		}
		filter = filter[4:]
	}
	return false
}

func fnv32(data []byte) uint32 {
	h := uint32(2166136261)
	for _, b := range data {
		h ^= uint32(b)
		h *= 16777619
	}
	return h
}

func TestFilterBlockEmpty(t *testing.T) {
	b := block.NewFilterBlockBuilder(hashSetFilterPolicy{})
	data := b.Finish()
	require.Equal(t, []byte{0, 0, 0, 0, block.FilterBaseLg}, data)

	r := block.NewFilterBlockReader(hashSetFilterPolicy{}, data)
	require.True(t, r.MayContain(0, []byte("foo")))
	require.True(t, r.MayContain(100000, []byte("foo")))
}

func TestFilterBlockSingleChunk(t *testing.T) {
	b := block.NewFilterBlockBuilder(hashSetFilterPolicy{})
	b.StartBlock(100)
	b.AddKey([]byte("foo"))
	b.AddKey([]byte("bar"))
	b.AddKey([]byte("box"))
	b.StartBlock(200)
	b.AddKey([]byte("box"))
	b.StartBlock(300)
	b.AddKey([]byte("hello"))
	data := b.Finish()

	r := block.NewFilterBlockReader(hashSetFilterPolicy{}, data)
	require.True(t, r.MayContain(100, []byte("foo")))
	require.True(t, r.MayContain(100, []byte("bar")))
	require.True(t, r.MayContain(100, []byte("box")))
	require.True(t, r.MayContain(100, []byte("hello")))
	require.False(t, r.MayContain(100, []byte("missing")))
	require.False(t, r.MayContain(100, []byte("other")))
}

func TestFilterBlockMultiChunk(t *testing.T) {
	b := block.NewFilterBlockBuilder(hashSetFilterPolicy{})

	b.StartBlock(0)
	b.AddKey([]byte("foo"))
	b.StartBlock(2000)
	b.AddKey([]byte("bar"))

	b.StartBlock(3100)
	b.AddKey([]byte("box"))

	// Third filter span (covering offsets in [4096, 6144)) is empty.

	b.StartBlock(9000)
	b.AddKey([]byte("box"))
	b.AddKey([]byte("hello"))

	data := b.Finish()
	r := block.NewFilterBlockReader(hashSetFilterPolicy{}, data)

	require.True(t, r.MayContain(0, []byte("foo")))
	require.True(t, r.MayContain(2000, []byte("bar")))
	require.False(t, r.MayContain(0, []byte("box")))
	require.False(t, r.MayContain(0, []byte("hello")))

	require.True(t, r.MayContain(3100, []byte("box")))
	require.False(t, r.MayContain(3100, []byte("foo")))
	require.False(t, r.MayContain(3100, []byte("bar")))
	require.False(t, r.MayContain(3100, []byte("hello")))

	require.False(t, r.MayContain(4100, []byte("box")))
	require.False(t, r.MayContain(4100, []byte("foo")))
	require.False(t, r.MayContain(4100, []byte("bar")))
	require.False(t, r.MayContain(4100, []byte("hello")))

	require.True(t, r.MayContain(9000, []byte("box")))
	require.False(t, r.MayContain(9000, []byte("foo")))
	require.False(t, r.MayContain(9000, []byte("bar")))
	require.True(t, r.MayContain(9000, []byte("hello")))
}
