// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Irumyuui/arisdb/sstable/block"
)

func cmpBytes(a, b []byte) int { return bytes.Compare(a, b) }

// TestBuilderRestartOffsets is the canonical restart-point scenario: eight
// keys with a restart interval of 3 produce restarts at byte offsets
// [0, 18, 44] once values equal to the keys themselves are stored.
func TestBuilderRestartOffsets(t *testing.T) {
	inputs := []string{"a", "ab", "abc", "acd", "adc", "bcd", "bde", "eee"}

	b := block.NewBuilder(cmpBytes, 3)
	for _, s := range inputs {
		b.Add([]byte(s), []byte(s))
	}
	data := b.Finish()

	blk, err := block.NewBlock(data)
	require.NoError(t, err)
	require.Equal(t, 3, blk.RestartCount())
	require.Equal(t, []uint32{0, 18, 44}, decodeRestarts(t, data, blk.RestartCount()))
}

// decodeRestarts reads the restart-offset array out of a finished block's
// tail directly, independent of Iterator, as a sanity check on the raw
// byte layout Builder.Finish produces.
func decodeRestarts(t *testing.T, data []byte, count int) []uint32 {
	t.Helper()
	tailLen := (1 + count) * 4
	require.GreaterOrEqual(t, len(data), tailLen)
	tail := data[len(data)-tailLen : len(data)-4]
	out := make([]uint32, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(tail[i*4 : i*4+4])
	}
	return out
}

func TestIteratorRoundTrip(t *testing.T) {
	inputs := []string{"a", "ab", "abc", "acd", "adc", "bcd", "bde", "eee"}

	b := block.NewBuilder(cmpBytes, 3)
	for _, s := range inputs {
		b.Add([]byte(s), []byte(s))
	}
	data := b.Finish()

	blk, err := block.NewBlock(data)
	require.NoError(t, err)
	require.Equal(t, 3, blk.RestartCount())

	it := blk.Iter(cmpBytes)
	it.SeekToFirst()
	for _, s := range inputs {
		require.True(t, it.Valid())
		require.Equal(t, s, string(it.Key()))
		require.Equal(t, s, string(it.Value()))
		it.Next()
	}
	require.False(t, it.Valid())
}

func TestIteratorSeekToLast(t *testing.T) {
	inputs := []string{"a", "ab", "abc", "acd", "adc", "bcd", "bde", "eee"}
	b := block.NewBuilder(cmpBytes, 3)
	for _, s := range inputs {
		b.Add([]byte(s), []byte(s))
	}
	blk, err := block.NewBlock(b.Finish())
	require.NoError(t, err)

	it := blk.Iter(cmpBytes)
	it.SeekToLast()
	require.True(t, it.Valid())
	require.Equal(t, "eee", string(it.Key()))
}

func TestIteratorSeekAndPrev(t *testing.T) {
	inputs := []string{"a", "ab", "abc", "acd", "adc", "bcd", "bde", "eee"}
	b := block.NewBuilder(cmpBytes, 3)
	for _, s := range inputs {
		b.Add([]byte(s), []byte(s))
	}
	blk, err := block.NewBlock(b.Finish())
	require.NoError(t, err)

	it := blk.Iter(cmpBytes)

	it.Seek([]byte("abz"))
	require.True(t, it.Valid())
	require.Equal(t, "acd", string(it.Key()))

	it.Seek([]byte("zzz"))
	require.False(t, it.Valid())

	it.Seek([]byte("bde"))
	require.True(t, it.Valid())
	require.Equal(t, "bde", string(it.Key()))
	it.Prev()
	require.True(t, it.Valid())
	require.Equal(t, "bcd", string(it.Key()))
}

func TestIteratorSingleEntryBlock(t *testing.T) {
	b := block.NewBuilder(cmpBytes, 16)
	b.Add([]byte("only"), []byte("value"))
	blk, err := block.NewBlock(b.Finish())
	require.NoError(t, err)

	it := blk.Iter(cmpBytes)
	it.SeekToLast()
	require.True(t, it.Valid())
	require.Equal(t, "only", string(it.Key()))

	it.Seek([]byte("a"))
	require.True(t, it.Valid())
	require.Equal(t, "only", string(it.Key()))

	it.Seek([]byte("z"))
	require.False(t, it.Valid())
}
