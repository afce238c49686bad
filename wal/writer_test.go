// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package wal_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/cockroachdb/tokenbucket"
	"github.com/stretchr/testify/require"

	"github.com/Irumyuui/arisdb/internal/ioengine"
	"github.com/Irumyuui/arisdb/wal"
)

func TestWriterFullRecordExactlyFillsBlock(t *testing.T) {
	var buf bytes.Buffer
	w := wal.NewWriter(&buf, wal.WriterOptions{})

	payload := bytes.Repeat([]byte("x"), wal.BlockSize-7)
	require.NoError(t, w.Append(payload))
	require.Equal(t, wal.BlockSize, buf.Len())

	got := readAll(t, buf.Bytes())
	require.Equal(t, [][]byte{payload}, got.Payloads)
	require.NoError(t, got.Err)
}

func TestWriterSplitsAcrossBlockBoundary(t *testing.T) {
	var buf bytes.Buffer
	w := wal.NewWriter(&buf, wal.WriterOptions{})

	// BlockSize-7+1 bytes: a Full record would need BlockSize+1 bytes of
	// space, which doesn't fit; splits into First (fills block 1 exactly)
	// + Last (14 bytes incl. header in block 2).
	payload := bytes.Repeat([]byte("y"), wal.BlockSize-7+1)
	require.NoError(t, w.Append(payload))
	require.Equal(t, wal.BlockSize+8, buf.Len())

	got := readAll(t, buf.Bytes())
	require.Equal(t, [][]byte{payload}, got.Payloads)
	require.NoError(t, got.Err)
}

func TestWriterTwoPayloadsSplitScenario(t *testing.T) {
	// P1 = BlockSize-15 bytes, P2 = 14 bytes. After close: file is
	// exactly BlockSize+20 bytes; P2 is First(1B)+Last(13B).
	var buf bytes.Buffer
	w := wal.NewWriter(&buf, wal.WriterOptions{})

	p1 := bytes.Repeat([]byte("a"), wal.BlockSize-15)
	p2 := bytes.Repeat([]byte("b"), 14)
	require.NoError(t, w.Append(p1))
	require.NoError(t, w.Append(p2))

	require.Equal(t, wal.BlockSize+20, buf.Len())

	got := readAll(t, buf.Bytes())
	require.NoError(t, got.Err)
	require.Equal(t, [][]byte{p1, p2}, got.Payloads)
}

func TestWriterPadsShortBlockRemainder(t *testing.T) {
	var buf bytes.Buffer
	w := wal.NewWriter(&buf, wal.WriterOptions{})

	// Leave fewer than 7 bytes at the end of block 1: forces padding.
	require.NoError(t, w.Append(bytes.Repeat([]byte("c"), wal.BlockSize-7-3)))
	require.NoError(t, w.Append([]byte("short")))

	require.Equal(t, wal.BlockSize+12, buf.Len())

	got := readAll(t, buf.Bytes())
	require.NoError(t, got.Err)
	require.Len(t, got.Payloads, 2)
	require.Equal(t, []byte("short"), got.Payloads[1])
}

func TestSyncHonorsFsyncRateLimit(t *testing.T) {
	var tb tokenbucket.TokenBucket
	tb.Init(10000, 1)

	var buf bytes.Buffer
	w := wal.NewWriter(&buf, wal.WriterOptions{FsyncRateLimit: &tb})
	require.NoError(t, w.Append([]byte("payload")))

	// The bytes.Buffer sink has no Sync method, so this only exercises
	// the pacing path: the second call must wait for the bucket to refill
	// rather than erroring.
	require.NoError(t, w.Sync(context.Background()))
	require.NoError(t, w.Sync(context.Background()))

	// A zero-burst bucket can never fulfill, so a cancelled context must
	// surface rather than spinning.
	var empty tokenbucket.TokenBucket
	empty.Init(1, 0)
	blocked := wal.NewWriter(&buf, wal.WriterOptions{FsyncRateLimit: &empty})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, blocked.Sync(ctx))
}

func readAll(t *testing.T, data []byte) wal.ReadResult {
	t.Helper()
	return wal.ReadAll(context.Background(), ioengine.New(4), bytes.NewReader(data), int64(len(data)))
}
