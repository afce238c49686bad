// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package varint_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Irumyuui/arisdb/internal/varint"
)

func TestRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 129, 255, 256, 1 << 14, 1<<21 - 1,
		1 << 28, 1 << 35, 1 << 42, 1 << 49, 1 << 56, math.MaxUint32, math.MaxUint64}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		values = append(values, r.Uint64())
	}

	for _, v := range values {
		buf := varint.Put64(nil, v)
		require.Equal(t, varint.Len64(v), len(buf))
		got, n, err := varint.Get64(buf)
		require.NoError(t, err)
		require.Equal(t, len(buf), n)
		require.Equal(t, v, got)
	}
}

func TestInsufficientBytes(t *testing.T) {
	full := varint.Put64(nil, 1<<40)
	for i := 0; i < len(full)-1; i++ {
		_, _, err := varint.Get64(full[:i])
		require.ErrorIs(t, err, varint.ErrInsufficientBytes)
	}
}

func TestOverflow(t *testing.T) {
	buf := make([]byte, 11)
	for i := range buf {
		buf[i] = 0x80
	}
	_, _, err := varint.Get64(buf)
	require.ErrorIs(t, err, varint.ErrOverflow)
}

func TestCanonicalLengthTable(t *testing.T) {
	cases := []struct {
		v   uint64
		len int
	}{
		{0, 1}, {1<<7 - 1, 1}, {1 << 7, 2}, {1<<14 - 1, 2}, {1 << 14, 3},
		{1<<21 - 1, 3}, {1 << 21, 4}, {1<<28 - 1, 4}, {1 << 28, 5},
		{1<<63 - 1, 9}, {1 << 63, 10}, {math.MaxUint64, 10},
	}
	for _, c := range cases {
		require.Equal(t, c.len, varint.Len64(c.v), "v=%d", c.v)
	}
}
