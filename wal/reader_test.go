// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package wal_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/internal/ioengine"
	"github.com/Irumyuui/arisdb/wal"
)

func TestReadAllRecoversPrefixBeforeCorruption(t *testing.T) {
	var buf bytes.Buffer
	w := wal.NewWriter(&buf, wal.WriterOptions{})
	require.NoError(t, w.Append([]byte("one")))
	require.NoError(t, w.Append([]byte("two")))

	data := append([]byte(nil), buf.Bytes()...)
	// Flip a bit inside the second record's payload so its CRC fails.
	data[len(data)-1] ^= 0xff

	got := wal.ReadAll(context.Background(), ioengine.New(4), bytes.NewReader(data), int64(len(data)))
	require.Error(t, got.Err)
	require.ErrorIs(t, got.Err, base.ErrWALRecordCorrupted)
	require.Equal(t, [][]byte{[]byte("one")}, got.Payloads)
}

func TestReadAllEmptyFile(t *testing.T) {
	got := wal.ReadAll(context.Background(), ioengine.New(4), bytes.NewReader(nil), 0)
	require.NoError(t, got.Err)
	require.Empty(t, got.Payloads)
}

func TestReadAllRoundTripsManyPayloads(t *testing.T) {
	var buf bytes.Buffer
	w := wal.NewWriter(&buf, wal.WriterOptions{})

	var want [][]byte
	for i := 0; i < 200; i++ {
		p := bytes.Repeat([]byte{byte(i)}, (i%37)+1)
		require.NoError(t, w.Append(p))
		want = append(want, p)
	}

	got := wal.ReadAll(context.Background(), ioengine.New(8), bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, got.Err)
	if diff := pretty.Diff(want, got.Payloads); len(diff) > 0 {
		t.Fatalf("recovered payloads differ from written:\n%s", strings.Join(diff, "\n"))
	}
}
