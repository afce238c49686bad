// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package wal

import (
	"context"
	"encoding/binary"

	"github.com/cockroachdb/errors"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/internal/crc"
	"github.com/Irumyuui/arisdb/internal/ioengine"
)

// ReadResult is the outcome of reading a WAL stream to completion or to
// its first corruption: recovery stops at the first bad record rather
// than failing the whole read outright. Payloads holds every record
// fully reassembled before Err (if any) was encountered.
type ReadResult struct {
	Payloads [][]byte
	// Err is non-nil if the stream was truncated by corruption rather
	// than running cleanly to end-of-file. A clean EOF (mid-header,
	// all-zero padding shorter than recordHeaderLen) is not an error.
	Err error
}

// ReaderAt is the capability a Reader needs from its backing file: a
// byte length and random-access reads, so blocks can be decoded via the
// ioengine's bounded-concurrency fan-out instead of one read at a time.
type ReaderAt interface {
	ioengine.ReaderAt
}

// ReadAll reads every block of a file of size fileSize through r,
// decoding in parallel via eng, then linearly recombines records into
// payloads in file order. A CRC mismatch, impossible length, or unknown
// record type marks the stream as truncated from that point onward: the
// returned ReadResult carries every payload recovered before the fault
// plus the triggering error.
func ReadAll(ctx context.Context, eng *ioengine.Engine, r ReaderAt, fileSize int64) ReadResult {
	nBlocks := int((fileSize + BlockSize - 1) / BlockSize)
	spans := make([]ioengine.Span, nBlocks)
	for i := range spans {
		off := int64(i) * BlockSize
		length := int64(BlockSize)
		if off+length > fileSize {
			length = fileSize - off
		}
		spans[i] = ioengine.Span{Offset: off, Len: int(length)}
	}

	blocks, err := eng.ReadSpans(ctx, r, spans)
	if err != nil {
		return ReadResult{Err: err}
	}

	var (
		payloads [][]byte
		pending  []byte
		inFrag   bool
	)
	for _, block := range blocks {
		pos := 0
		for pos+recordHeaderLen <= len(block) {
			length := binary.LittleEndian.Uint16(block[pos : pos+2])
			typ := recordType(block[pos+2])
			wantCRC := binary.LittleEndian.Uint32(block[pos+3 : pos+7])

			if typ == 0 && length == 0 && wantCRC == 0 {
				// Zero padding to the next block boundary; not an error.
				break
			}
			if !isValidRecordType(typ) {
				return ReadResult{Payloads: payloads, Err: base.Mark(
					errors.Newf("wal: unknown record type %d", errors.Safe(typ)), base.ErrWALRecordCorrupted)}
			}
			payloadStart := pos + recordHeaderLen
			payloadEnd := payloadStart + int(length)
			if payloadEnd > len(block) {
				return ReadResult{Payloads: payloads, Err: base.Mark(
					errors.New("wal: record length exceeds block"), base.ErrWALRecordCorrupted)}
			}
			payload := block[payloadStart:payloadEnd]

			d := crc.New()
			d.Write(block[pos : pos+3])
			d.Write(payload)
			if d.Sum32() != wantCRC {
				return ReadResult{Payloads: payloads, Err: base.Mark(
					errors.New("wal: record checksum mismatch"), base.ErrWALRecordCorrupted)}
			}

			switch typ {
			case recordFull:
				if inFrag {
					return ReadResult{Payloads: payloads, Err: base.Mark(
						errors.New("wal: Full record while a fragment was pending"), base.ErrWALRecordCorrupted)}
				}
				payloads = append(payloads, append([]byte(nil), payload...))
			case recordFirst:
				if inFrag {
					return ReadResult{Payloads: payloads, Err: base.Mark(
						errors.New("wal: First record while a fragment was pending"), base.ErrWALRecordCorrupted)}
				}
				pending = append([]byte(nil), payload...)
				inFrag = true
			case recordMiddle:
				if !inFrag {
					return ReadResult{Payloads: payloads, Err: base.Mark(
						errors.New("wal: Middle record with no pending fragment"), base.ErrWALRecordCorrupted)}
				}
				pending = append(pending, payload...)
			case recordLast:
				if !inFrag {
					return ReadResult{Payloads: payloads, Err: base.Mark(
						errors.New("wal: Last record with no pending fragment"), base.ErrWALRecordCorrupted)}
				}
				pending = append(pending, payload...)
				payloads = append(payloads, pending)
				pending = nil
				inFrag = false
			}

			pos = payloadEnd
		}
	}

	return ReadResult{Payloads: payloads}
}
