// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package vlog_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/vlog"
)

func TestSetRoundTripsAcrossSegments(t *testing.T) {
	dir := t.TempDir()
	set, err := vlog.Open(dir, vlog.Options{MaxFileSize: 256})
	require.NoError(t, err)
	defer set.Close()

	ctx := context.Background()
	var ptrs []base.ValuePointer
	var entries []vlog.Entry
	for i := 0; i < 100; i++ {
		e := vlog.Entry{
			Key:   []byte(fmt.Sprintf("key-%05d", i)),
			Value: []byte(fmt.Sprintf("value-%05d", i)),
			Meta:  base.TypeValue,
		}
		ptr, err := set.WriteEntry(ctx, e)
		require.NoError(t, err)
		ptrs = append(ptrs, ptr)
		entries = append(entries, e)
	}

	require.GreaterOrEqual(t, set.SegmentCount(), 2)

	for i, ptr := range ptrs {
		got, err := set.ReadEntry(ctx, ptr)
		require.NoError(t, err)
		require.Equal(t, entries[i].Key, got.Key)
		require.Equal(t, entries[i].Value, got.Value)
		require.Equal(t, entries[i].Meta, got.Meta)
	}
}

func TestSetReadUnknownFileID(t *testing.T) {
	dir := t.TempDir()
	set, err := vlog.Open(dir, vlog.Options{MaxFileSize: 1 << 20})
	require.NoError(t, err)
	defer set.Close()

	_, err = set.ReadEntry(context.Background(), base.ValuePointer{FileID: 999, Offset: 0, Len: 10})
	require.Error(t, err)
	require.ErrorIs(t, err, base.ErrValueLogFileNotFound)
}

func TestSetReopenResumesFromHighestSegment(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	set, err := vlog.Open(dir, vlog.Options{MaxFileSize: 128})
	require.NoError(t, err)
	var ptrs []base.ValuePointer
	for i := 0; i < 20; i++ {
		ptr, err := set.WriteEntry(ctx, vlog.Entry{
			Key: []byte("k"), Value: []byte(fmt.Sprintf("v%03d", i)), Meta: base.TypeValue,
		})
		require.NoError(t, err)
		ptrs = append(ptrs, ptr)
	}
	require.NoError(t, set.Close())

	reopened, err := vlog.Open(dir, vlog.Options{MaxFileSize: 128})
	require.NoError(t, err)
	defer reopened.Close()

	for i, ptr := range ptrs {
		got, err := reopened.ReadEntry(ctx, ptr)
		require.NoError(t, err)
		require.Equal(t, fmt.Sprintf("v%03d", i), string(got.Value))
	}
}
