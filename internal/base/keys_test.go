// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Irumyuui/arisdb/internal/base"
)

func TestInternalKeyRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		key := make([]byte, 1+r.Intn(40))
		r.Read(key)
		seq := base.SeqNum(r.Uint64() & uint64(base.MaxSeqNum))
		typ := base.ValueType(r.Intn(6))

		ik := base.MakeInternalKey(key, seq, typ)
		buf := ik.Encode(nil)
		require.Equal(t, ik.Size(), len(buf))

		got, err := base.DecodeInternalKey(buf)
		require.NoError(t, err)
		require.Equal(t, key, got.UserKey)
		require.Equal(t, seq, got.SeqNum())
		require.Equal(t, typ, got.Kind())
	}
}

func TestInternalKeyOrdering(t *testing.T) {
	cmp := base.DefaultComparer.Compare

	a := base.MakeInternalKey([]byte("a"), 5, base.TypeValue)
	b := base.MakeInternalKey([]byte("b"), 1, base.TypeValue)
	require.Less(t, base.Compare(cmp, a, b), 0)
	require.Greater(t, base.Compare(cmp, b, a), 0)

	// Same user key, higher sequence sorts first (newer wins).
	newer := base.MakeInternalKey([]byte("k"), 10, base.TypeValue)
	older := base.MakeInternalKey([]byte("k"), 3, base.TypeValue)
	require.Less(t, base.Compare(cmp, newer, older), 0)
	require.Equal(t, 0, base.Compare(cmp, newer, newer))
}

func TestLookupKeyRoundTrip(t *testing.T) {
	lk := base.LookupKey{UserKey: []byte("hello-world"), Seq: 42}
	buf := lk.Encode(nil)

	n, ik, err := base.DecodeLookupKey(buf)
	require.NoError(t, err)
	require.Equal(t, len(lk.UserKey), n)
	require.Equal(t, lk.UserKey, ik.UserKey)
	require.Equal(t, lk.Seq, ik.SeqNum())
}

func TestValuePointerRoundTrip(t *testing.T) {
	p := base.ValuePointer{FileID: 7, Offset: 123456, Len: 999}
	buf := p.Encode(nil)
	require.Equal(t, base.ValuePointerSize, len(buf))

	got, ok := base.DecodeValuePointer(buf)
	require.True(t, ok)
	require.Equal(t, p, got)
}

func TestFindShortestSeparator(t *testing.T) {
	c := base.DefaultComparer
	got := c.FindShortestSeparator(nil, []byte("abcdef"), []byte("abczzz"))
	require.True(t, string(got) >= "abcdef" && string(got) < "abczzz")

	got2 := c.FindShortSuccessor(nil, []byte("abc"))
	require.True(t, string(got2) >= "abc")
}
