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

func TestEntryEncodeDecode(t *testing.T) {
	e := vlog.Entry{Key: []byte("key"), Value: []byte("value"), Meta: base.TypeValue}

	encoded := e.Encode(nil)
	require.Equal(t, e.EncodedLen(), len(encoded))

	decoded, n, err := vlog.DecodeEntry(encoded)
	require.NoError(t, err)
	require.Equal(t, len(encoded), n)
	require.Equal(t, e.Key, decoded.Key)
	require.Equal(t, e.Value, decoded.Value)
	require.Equal(t, e.Meta, decoded.Meta)
}

func TestEntryDecodeTooShort(t *testing.T) {
	_, _, err := vlog.DecodeEntry([]byte("keyvalue"))
	require.Error(t, err)
}

func TestEntryDecodeBadCRC(t *testing.T) {
	e := vlog.Entry{Key: []byte("key"), Value: []byte("value"), Meta: base.TypeValue}
	encoded := e.Encode(nil)
	encoded[len(encoded)-1] ^= 0xff

	_, _, err := vlog.DecodeEntry(encoded)
	require.Error(t, err)
}

func TestEntryDecodeTrailingBytes(t *testing.T) {
	e1 := vlog.Entry{Key: []byte("a"), Value: []byte("1"), Meta: base.TypeValue}
	e2 := vlog.Entry{Key: []byte("b"), Value: []byte("2"), Meta: base.TypeDeleted}

	var buf []byte
	buf = e1.Encode(buf)
	buf = e2.Encode(buf)

	d1, n1, err := vlog.DecodeEntry(buf)
	require.NoError(t, err)
	require.Equal(t, e1.Key, d1.Key)

	d2, n2, err := vlog.DecodeEntry(buf[n1:])
	require.NoError(t, err)
	require.Equal(t, e2.Key, d2.Key)
	require.Equal(t, e2.Meta, d2.Meta)
	require.Equal(t, len(buf), n1+n2)
}
