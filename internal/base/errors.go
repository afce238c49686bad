// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "github.com/cockroachdb/errors"

// Sentinel error kinds. Every error surfaced across a package boundary
// wraps one of these with errors.Mark so callers can classify it with
// errors.Is regardless of the added context.
var (
	// ErrVarIntInsufficient mirrors varint.ErrInsufficientBytes at the
	// format-codec boundary, where callers decide whether EOF-mid-value
	// is a corruption signal (e.g. mid-vlog-entry) or benign (e.g. end of
	// a WAL stream).
	ErrVarIntInsufficient = errors.New("arisdb: varint decode hit insufficient bytes")
	// ErrVarIntOverflow mirrors varint.ErrOverflow.
	ErrVarIntOverflow = errors.New("arisdb: varint decode overflowed")

	// ErrValueLogFileNotFound: a ValuePointer referenced an unknown
	// vlog file id.
	ErrValueLogFileNotFound = errors.New("arisdb: value log file not found")
	// ErrValueLogCorrupted: CRC mismatch, length mismatch or invalid
	// meta tag while decoding a vlog entry.
	ErrValueLogCorrupted = errors.New("arisdb: value log entry corrupted")

	// ErrWALRecordCorrupted: CRC mismatch, invalid record type or an
	// impossible length while decoding a WAL record.
	ErrWALRecordCorrupted = errors.New("arisdb: WAL record corrupted")

	// ErrBlockCorrupted: an SSTable block failed its restart-count
	// sanity check or its trailer CRC.
	ErrBlockCorrupted = errors.New("arisdb: SSTable block corrupted")

	// ErrMemoryAlloc: an aligned-buffer allocation failed.
	ErrMemoryAlloc = errors.New("arisdb: memory allocation failed")
	// ErrAlignedBlockNotAligned: a caller-supplied buffer was not
	// page-aligned where alignment was required.
	ErrAlignedBlockNotAligned = errors.New("arisdb: buffer is not page-aligned")

	// ErrCancelled: an operation was cancelled at a suspension point; no
	// state was mutated.
	ErrCancelled = errors.New("arisdb: operation cancelled")

	// ErrKeyNotFound: a Get found no visible entry for the requested key
	// at or below the requested sequence number.
	ErrKeyNotFound = errors.New("arisdb: key not found")
)

// Mark wraps err with a sentinel kind while preserving err's own message
// and cause chain, so errors.Is(result, kind) holds without losing detail.
func Mark(err error, kind error) error {
	if err == nil {
		return nil
	}
	return errors.Mark(err, kind)
}
