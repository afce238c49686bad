// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package wal

import (
	"context"
	"encoding/binary"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/tokenbucket"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/internal/crc"
	"github.com/Irumyuui/arisdb/internal/metrics"
)

// WriterOptions configures a Writer.
type WriterOptions struct {
	// FsyncRateLimit, if non-nil, paces calls to Sync so a burst of small
	// appends each followed by an fsync can't starve other tenants of the
	// same disk. nil disables pacing (every append's caller decides
	// whether to Sync).
	FsyncRateLimit *tokenbucket.TokenBucket

	// Metrics receives append latency and byte-count samples. A nil
	// Metrics is a no-op.
	Metrics *metrics.Recorder
}

// Writer appends payloads to an underlying file as a stream of
// CRC-protected, block-framed records. It is not safe for concurrent
// use; whatever assembles a write path on top of it is responsible for
// serializing writers.
type Writer struct {
	w    io.Writer
	opts WriterOptions

	// blockOffset is the number of bytes already written into the
	// current BlockSize-sized block.
	blockOffset int
}

// NewWriter returns a Writer appending to w, which must already be
// positioned at the point appends should resume (typically end-of-file
// for a log being reopened, or the start of a fresh file).
func NewWriter(w io.Writer, opts WriterOptions) *Writer {
	return &Writer{w: w, opts: opts}
}

// Append writes payload as one or more records, padding the tail of the
// current block with zeroes first if fewer than recordHeaderLen bytes
// remain in it. On return, provided no error occurred, the writer is
// either mid-block or exactly at a block boundary — never has written a
// partial record header.
func (wr *Writer) Append(payload []byte) error {
	start := time.Now()
	total := len(payload)
	begin := true
	for {
		leftover := BlockSize - wr.blockOffset
		if leftover < recordHeaderLen {
			if leftover > 0 {
				if err := wr.writeRaw(make([]byte, leftover)); err != nil {
					return errors.Wrap(err, "wal: padding block")
				}
			}
			wr.blockOffset = 0
			leftover = BlockSize
		}

		avail := leftover - recordHeaderLen
		fragment := payload
		var typ recordType
		switch {
		case begin && len(payload) <= avail:
			typ = recordFull
		case begin:
			typ = recordFirst
			fragment = payload[:avail]
		case len(payload) <= avail:
			typ = recordLast
		default:
			typ = recordMiddle
			fragment = payload[:avail]
		}

		if err := wr.writeRecord(typ, fragment); err != nil {
			return err
		}
		payload = payload[len(fragment):]
		begin = false
		if len(payload) == 0 {
			wr.opts.Metrics.ObserveWALAppend(time.Since(start), total)
			return nil
		}
	}
}

func (wr *Writer) writeRecord(typ recordType, payload []byte) error {
	var hdr [recordHeaderLen]byte
	binary.LittleEndian.PutUint16(hdr[0:2], uint16(len(payload)))
	hdr[2] = byte(typ)

	d := crc.New()
	d.Write(hdr[0:3])
	d.Write(payload)
	binary.LittleEndian.PutUint32(hdr[3:7], d.Sum32())

	if err := wr.writeRaw(hdr[:]); err != nil {
		return errors.Wrap(err, "wal: writing record header")
	}
	if err := wr.writeRaw(payload); err != nil {
		return errors.Wrap(err, "wal: writing record payload")
	}
	wr.blockOffset += recordHeaderLen + len(payload)
	return nil
}

func (wr *Writer) writeRaw(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	_, err := wr.w.Write(b)
	return err
}

// Sync flushes the underlying file if it implements a Sync method,
// honoring the configured fsync rate limit (if any).
func (wr *Writer) Sync(ctx context.Context) error {
	if tb := wr.opts.FsyncRateLimit; tb != nil {
		for {
			fulfilled, tryAgainAfter := tb.TryToFulfill(1)
			if fulfilled {
				break
			}
			timer := time.NewTimer(tryAgainAfter)
			select {
			case <-ctx.Done():
				timer.Stop()
				return base.Mark(ctx.Err(), base.ErrCancelled)
			case <-timer.C:
			}
		}
	}
	type syncer interface{ Sync() error }
	if s, ok := wr.w.(syncer); ok {
		return s.Sync()
	}
	return nil
}
