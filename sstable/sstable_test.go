// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/sstable"
	"github.com/Irumyuui/arisdb/sstable/block"
	"github.com/Irumyuui/arisdb/sstable/bloom"
)

// fixtureComparer is the default bytewise comparer with a Split hook that
// treats the whole key as its own prefix, for test datasets whose keys
// carry no version suffix.
var fixtureComparer = func() *base.Comparer {
	c := *base.DefaultComparer
	c.Name = "arisdb.BytewiseComparator.fixture"
	c.Split = func(a []byte) int { return len(a) }
	return &c
}()

func buildTable(t *testing.T, n int, opts sstable.BuilderOptions) (*bytes.Buffer, []string) {
	t.Helper()
	var buf bytes.Buffer
	tb := sstable.NewTableBuilder(&buf, opts)

	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = fmt.Sprintf("key-%06d", i)
	}
	for _, k := range keys {
		require.NoError(t, tb.Add([]byte(k), []byte("value-"+k)))
	}
	require.NoError(t, tb.Finish())
	require.EqualValues(t, n, tb.EntriesCount())
	require.EqualValues(t, buf.Len(), tb.FileSize())
	return &buf, keys
}

func TestTableBuildAndIterate(t *testing.T) {
	buf, keys := buildTable(t, 500, sstable.BuilderOptions{BlockSize: 256})

	r, err := sstable.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()), sstable.ReaderOptions{})
	require.NoError(t, err)

	it := r.NewIter()
	it.SeekToFirst()
	for _, k := range keys {
		require.True(t, it.Valid())
		require.Equal(t, k, string(it.Key()))
		require.Equal(t, "value-"+k, string(it.Value()))
		it.Next()
	}
	require.False(t, it.Valid())
	require.NoError(t, it.Error())
}

func TestTableSeekToLastAndPrev(t *testing.T) {
	buf, keys := buildTable(t, 200, sstable.BuilderOptions{BlockSize: 256})

	r, err := sstable.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()), sstable.ReaderOptions{})
	require.NoError(t, err)

	it := r.NewIter()
	it.SeekToLast()
	require.True(t, it.Valid())
	require.Equal(t, keys[len(keys)-1], string(it.Key()))

	it.Prev()
	require.True(t, it.Valid())
	require.Equal(t, keys[len(keys)-2], string(it.Key()))
}

func TestTableGetWithBloomFilter(t *testing.T) {
	policy := bloom.NewPolicy(10)
	buf, keys := buildTable(t, 1000, sstable.BuilderOptions{
		BlockSize:    256,
		FilterPolicy: policy,
	})

	r, err := sstable.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()), sstable.ReaderOptions{
		FilterPolicy: policy,
	})
	require.NoError(t, err)

	for _, k := range []string{keys[0], keys[len(keys)/2], keys[len(keys)-1]} {
		v, ok, err := r.Get([]byte(k))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "value-"+k, string(v))
	}

	_, ok, err := r.Get([]byte("absent-key-zzz"))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTableSeekMidTable(t *testing.T) {
	buf, keys := buildTable(t, 300, sstable.BuilderOptions{BlockSize: 128})

	r, err := sstable.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()), sstable.ReaderOptions{})
	require.NoError(t, err)

	it := r.NewIter()
	target := keys[150]
	it.Seek([]byte(target))
	require.True(t, it.Valid())
	require.Equal(t, target, string(it.Key()))

	it.Seek([]byte("zzzzzzzz"))
	require.False(t, it.Valid())
}

func TestTableFixtureComparerSplit(t *testing.T) {
	require.Equal(t, 5, fixtureComparer.Split([]byte("hello")))

	var buf bytes.Buffer
	tb := sstable.NewTableBuilder(&buf, sstable.BuilderOptions{Comparer: fixtureComparer, BlockSize: 256})
	require.NoError(t, tb.Add([]byte("alpha"), []byte("1")))
	require.NoError(t, tb.Add([]byte("beta"), []byte("2")))
	require.NoError(t, tb.Finish())

	r, err := sstable.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()), sstable.ReaderOptions{Comparer: fixtureComparer})
	require.NoError(t, err)
	v, ok, err := r.Get([]byte("beta"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2", string(v))
}

func TestTableZstdCompression(t *testing.T) {
	var buf bytes.Buffer
	tb := sstable.NewTableBuilder(&buf, sstable.BuilderOptions{
		BlockSize:   256,
		Compression: block.CompressionZstd,
	})
	for i := 0; i < 50; i++ {
		k := fmt.Sprintf("k%04d", i)
		require.NoError(t, tb.Add([]byte(k), []byte(bytes.Repeat([]byte("v"), 40))))
	}
	require.NoError(t, tb.Finish())

	r, err := sstable.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()), sstable.ReaderOptions{})
	require.NoError(t, err)
	v, ok, err := r.Get([]byte("k0010"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, bytes.Repeat([]byte("v"), 40), v)
}
