// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package vlog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/vlog"
)

func TestBatchSingleEntryUsesPlainTag(t *testing.T) {
	b := vlog.NewBatch(7)
	b.Set([]byte("k1"), []byte("v1"))

	entries := b.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, base.TypeValue, entries[0].Meta)
	require.EqualValues(t, 7, b.SeqNum())
}

func TestBatchMultiEntryUsesGroupTags(t *testing.T) {
	b := vlog.NewBatch(9)
	b.Set([]byte("k1"), []byte("v1"))
	b.Set([]byte("k2"), []byte("v2"))
	b.Delete([]byte("k3"))

	entries := b.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, base.TypeBatchBegin, entries[0].Meta)
	require.Equal(t, base.TypeBatchMid, entries[1].Meta)
	require.Equal(t, base.TypeBatchEnd, entries[2].Meta)

	require.Equal(t, base.TypeValue, b.OpKind(0))
	require.Equal(t, base.TypeValue, b.OpKind(1))
	require.Equal(t, base.TypeDeleted, b.OpKind(2))
}

func TestBatchEntriesRoundTripThroughCodec(t *testing.T) {
	b := vlog.NewBatch(1)
	b.Set([]byte("alpha"), []byte("beta"))
	b.Set([]byte("gamma"), []byte("delta"))

	for _, e := range b.Entries() {
		buf := e.Encode(nil)
		got, n, err := vlog.DecodeEntry(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, e.Key, got.Key)
		require.Equal(t, e.Value, got.Value)
		require.Equal(t, e.Meta, got.Meta)
	}
}
