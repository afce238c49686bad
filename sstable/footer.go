// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/sstable/block"
)

// footerLen is the fixed size of the trailing footer every table file
// carries: varint-encoded metaindex and index handles, zero-padded, then
// an 8-byte magic number.
const footerLen = 48

// magic is the fixed sentinel the last 8 bytes of a table file must
// hold. It is distinct from LevelDB's and RocksDB's table magics: this
// format carries neither a checksum-type byte nor a format version.
const magic = 1145141919810

// footer is the parsed form of a table's trailing 48 bytes.
type footer struct {
	metaIndexHandle block.Handle
	indexHandle     block.Handle
}

// encode serializes f into a fresh footerLen-byte slice.
func (f footer) encode() []byte {
	buf := make([]byte, 0, footerLen)
	buf = f.metaIndexHandle.Append(buf)
	buf = f.indexHandle.Append(buf)
	if len(buf) > footerLen-8 {
		panic("sstable: encoded handles overflow footer")
	}
	out := make([]byte, footerLen)
	copy(out, buf)
	binary.LittleEndian.PutUint64(out[footerLen-8:], magic)
	return out
}

// decodeFooter parses the final footerLen bytes of a table file.
func decodeFooter(buf []byte) (footer, error) {
	if len(buf) != footerLen {
		return footer{}, base.Mark(errors.Newf("sstable: footer must be exactly %d bytes, got %d", errors.Safe(footerLen), errors.Safe(len(buf))), base.ErrBlockCorrupted)
	}
	gotMagic := binary.LittleEndian.Uint64(buf[footerLen-8:])
	if gotMagic != magic {
		return footer{}, base.Mark(errors.Newf("sstable: bad footer magic %d", errors.Safe(gotMagic)), base.ErrBlockCorrupted)
	}

	rest := buf[:footerLen-8]
	metaHandle, n1 := block.DecodeHandle(rest)
	if n1 == 0 {
		return footer{}, base.Mark(errors.New("sstable: corrupt metaindex handle in footer"), base.ErrBlockCorrupted)
	}
	indexHandle, n2 := block.DecodeHandle(rest[n1:])
	if n2 == 0 {
		return footer{}, base.Mark(errors.New("sstable: corrupt index handle in footer"), base.ErrBlockCorrupted)
	}

	return footer{metaIndexHandle: metaHandle, indexHandle: indexHandle}, nil
}
