// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package block

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/internal/crc"
)

// Compression identifies the codec used to compress a block's payload.
// CompressionNone is the default; Snappy and Zstd are fully supported
// and selected per-table via BuilderOptions.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionSnappy
	CompressionZstd
)

// String implements fmt.Stringer.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionSnappy:
		return "snappy"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

var zstdEncoder, _ = zstd.NewWriter(nil)
var zstdDecoder, _ = zstd.NewReader(nil)

// Compress encodes raw using the given codec.
func Compress(raw []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return raw, nil
	case CompressionSnappy:
		return snappy.Encode(nil, raw), nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(raw, nil), nil
	default:
		return nil, errors.Newf("block: unknown compression type %d", errors.Safe(c))
	}
}

// Decompress reverses Compress.
func Decompress(compressed []byte, c Compression) ([]byte, error) {
	switch c {
	case CompressionNone:
		return compressed, nil
	case CompressionSnappy:
		return snappy.Decode(nil, compressed)
	case CompressionZstd:
		return zstdDecoder.DecodeAll(compressed, nil)
	default:
		return nil, errors.Newf("block: unknown compression type %d", errors.Safe(c))
	}
}

// WriteTrailer compresses raw with c, appends raw/compressed payload and
// the 5-byte trailer to dst, and returns the extended slice. The CRC
// covers the (compressed) payload bytes plus the leading compression-type
// byte of the trailer.
func WriteTrailer(dst []byte, raw []byte, c Compression) ([]byte, error) {
	payload, err := Compress(raw, c)
	if err != nil {
		return nil, err
	}
	dst = append(dst, payload...)

	d := crc.New()
	d.Write(payload)
	d.Write([]byte{byte(c)})
	sum := d.Sum32()

	dst = append(dst, byte(c))
	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], sum)
	return append(dst, crcBuf[:]...), nil
}

// ReadTrailer validates and strips the trailer from a buffer containing
// `payload || trailer`, returning the decompressed block bytes.
func ReadTrailer(buf []byte) ([]byte, error) {
	if len(buf) < TrailerLen {
		return nil, base.Mark(errors.Newf("block: buffer shorter than trailer (%d bytes)", errors.Safe(len(buf))), base.ErrBlockCorrupted)
	}
	payload := buf[:len(buf)-TrailerLen]
	trailer := buf[len(buf)-TrailerLen:]
	c := Compression(trailer[0])
	wantSum := binary.LittleEndian.Uint32(trailer[1:5])

	d := crc.New()
	d.Write(payload)
	d.Write(trailer[:1])
	if d.Sum32() != wantSum {
		return nil, base.Mark(errors.Newf("block: checksum mismatch"), base.ErrBlockCorrupted)
	}

	return Decompress(payload, c)
}
