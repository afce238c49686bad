// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package crc computes the CRC32 (Castagnoli) checksums that every framed
// on-disk unit in arisdb carries: WAL records, vlog entries and SSTable
// block trailers.
package crc

import "hash/crc32"

var table = crc32.MakeTable(crc32.Castagnoli)

// Checksum returns the CRC32C of b.
func Checksum(b []byte) uint32 {
	return crc32.Checksum(b, table)
}

// New returns a running CRC32C hash, useful when the checksum must be
// computed over several non-contiguous byte slices (header + key + value).
func New() *Digest {
	return &Digest{h: crc32.New(table)}
}

// Digest is a running CRC32C accumulator.
type Digest struct {
	h interface {
		Write([]byte) (int, error)
		Sum32() uint32
	}
}

// Write feeds more bytes into the running checksum.
func (d *Digest) Write(b []byte) { _, _ = d.h.Write(b) }

// Sum32 returns the checksum of all bytes written so far.
func (d *Digest) Sum32() uint32 { return d.h.Sum32() }
