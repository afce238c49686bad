// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package sstable implements the sorted-string-table format used to
// persist a flushed memtable: prefix-compressed data blocks, an optional
// Bloom-filter block, a meta-index block, an index block, and a fixed
// 48-byte footer.
//
// A TableBuilder consumes key/value pairs in increasing key order and
// writes them to an io.Writer. A Reader opens a completed table for
// point lookups and ordered iteration; it is safe for concurrent use,
// while a TableBuilder is not.
package sstable

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/sstable/block"
)

// metaIndexFilterKeyPrefix names the meta-index entry pointing at the
// filter block, following the filter policy's own Name().
const metaIndexFilterKeyPrefix = "filter."

// BuilderOptions configures a TableBuilder.
type BuilderOptions struct {
	Comparer        *base.Comparer
	FilterPolicy    block.FilterPolicy // nil disables the filter block
	BlockSize       int                // flush a data block once it reaches this size estimate
	RestartInterval int                // 0 defaults to block.DefaultRestartInterval
	Compression     block.Compression
}

func (o *BuilderOptions) ensureDefaults() {
	if o.Comparer == nil {
		o.Comparer = base.DefaultComparer
	}
	if o.BlockSize <= 0 {
		o.BlockSize = 4096
	}
	if o.RestartInterval <= 0 {
		o.RestartInterval = block.DefaultRestartInterval
	}
}

// TableBuilder assembles one table file from a stream of key/value pairs
// presented in non-decreasing key order. It is not safe for concurrent
// use, matching the "only one writer" contract common to every builder in
// this module.
type TableBuilder struct {
	opts BuilderOptions
	w    io.Writer

	offset  uint64
	closed  bool
	aborted bool

	dataBlock   *block.Builder
	indexBlock  *block.Builder
	filterBlock *block.FilterBlockBuilder

	lastKey       []byte
	entriesCount  uint64
	pendingEntry  bool
	pendingHandle block.Handle
}

// NewTableBuilder returns a TableBuilder writing to w, which must track no
// state of its own beyond sequential appends (a freshly created file, or
// a buffer).
func NewTableBuilder(w io.Writer, opts BuilderOptions) *TableBuilder {
	opts.ensureDefaults()

	tb := &TableBuilder{
		opts:       opts,
		w:          w,
		dataBlock:  block.NewBuilder(opts.Comparer.Compare, opts.RestartInterval),
		indexBlock: block.NewBuilder(opts.Comparer.Compare, 1),
	}
	if opts.FilterPolicy != nil {
		tb.filterBlock = block.NewFilterBlockBuilder(opts.FilterPolicy)
		tb.filterBlock.StartBlock(0)
	}
	return tb
}

// EntriesCount returns the number of entries added so far.
func (tb *TableBuilder) EntriesCount() uint64 { return tb.entriesCount }

// FileSize returns the number of bytes written so far.
func (tb *TableBuilder) FileSize() uint64 { return tb.offset }

// Add appends a key/value pair. key must be >= the last key added.
func (tb *TableBuilder) Add(key, value []byte) error {
	if tb.closed {
		panic("sstable: Add called after Finish or Abandon")
	}
	if tb.entriesCount > 0 && tb.opts.Comparer.Compare(key, tb.lastKey) < 0 {
		panic("sstable: keys added out of order")
	}

	if tb.pendingEntry {
		if !tb.dataBlock.Empty() {
			panic("sstable: pending index entry with a non-empty data block")
		}
		sep := tb.opts.Comparer.FindShortestSeparator(nil, tb.lastKey, key)
		var handleBuf [2 * 10]byte
		n := tb.pendingHandle.EncodeVarints(handleBuf[:])
		tb.indexBlock.Add(sep, handleBuf[:n])
		tb.pendingEntry = false
	}

	if tb.filterBlock != nil {
		tb.filterBlock.AddKey(key)
	}

	tb.lastKey = append(tb.lastKey[:0], key...)
	tb.entriesCount++
	tb.dataBlock.Add(key, value)

	if tb.dataBlock.CurrentSizeEstimate() >= tb.opts.BlockSize {
		return tb.flush()
	}
	return nil
}

func (tb *TableBuilder) flush() error {
	if tb.dataBlock.Empty() {
		return nil
	}
	if tb.pendingEntry {
		panic("sstable: flush with a pending index entry")
	}

	handle, err := tb.writeBlock(tb.dataBlock, tb.opts.Compression)
	if err != nil {
		return err
	}
	tb.pendingHandle = handle
	tb.dataBlock.Reset()
	tb.pendingEntry = true

	if tb.filterBlock != nil {
		tb.filterBlock.StartBlock(tb.offset)
	}
	return nil
}

// writeBlock finishes b, compresses and trailers the result, writes it to
// tb.w, and returns its Handle (offset/size excluding the trailer).
func (tb *TableBuilder) writeBlock(b *block.Builder, c block.Compression) (block.Handle, error) {
	raw := b.Finish()
	return tb.writeRaw(raw, c)
}

func (tb *TableBuilder) writeRaw(raw []byte, c block.Compression) (block.Handle, error) {
	out, err := block.WriteTrailer(nil, raw, c)
	if err != nil {
		return block.Handle{}, err
	}
	handle := block.Handle{Offset: tb.offset, Size: uint64(len(out) - block.TrailerLen)}
	if _, err := tb.w.Write(out); err != nil {
		return block.Handle{}, errors.Wrap(err, "sstable: writing block")
	}
	tb.offset += uint64(len(out))
	return handle, nil
}

// Finish flushes any pending data block, then writes the filter, meta
// index, index, and footer sections, sealing the table. After Finish,
// the TableBuilder must not be reused.
func (tb *TableBuilder) Finish() error {
	if tb.closed {
		panic("sstable: Finish called after Finish or Abandon")
	}
	if err := tb.flush(); err != nil {
		return err
	}
	tb.closed = true

	var filterHandle block.Handle
	if tb.filterBlock != nil {
		h, err := tb.writeRaw(tb.filterBlock.Finish(), block.CompressionNone)
		if err != nil {
			return err
		}
		filterHandle = h
	}

	metaBlock := block.NewBuilder(tb.opts.Comparer.Compare, 1)
	if tb.filterBlock != nil {
		var handleBuf [2 * 10]byte
		n := filterHandle.EncodeVarints(handleBuf[:])
		metaBlock.Add([]byte(metaIndexFilterKeyPrefix+tb.opts.FilterPolicy.Name()), handleBuf[:n])
	}
	metaHandle, err := tb.writeBlock(metaBlock, tb.opts.Compression)
	if err != nil {
		return err
	}

	if tb.pendingEntry {
		sep := tb.opts.Comparer.FindShortSuccessor(nil, tb.lastKey)
		var handleBuf [2 * 10]byte
		n := tb.pendingHandle.EncodeVarints(handleBuf[:])
		tb.indexBlock.Add(sep, handleBuf[:n])
		tb.pendingEntry = false
	}
	indexHandle, err := tb.writeBlock(tb.indexBlock, tb.opts.Compression)
	if err != nil {
		return err
	}

	foot := footer{metaIndexHandle: metaHandle, indexHandle: indexHandle}
	if _, err := tb.w.Write(foot.encode()); err != nil {
		return errors.Wrap(err, "sstable: writing footer")
	}
	tb.offset += footerLen
	return nil
}

// Abandon releases the builder without writing a footer. The partial
// bytes already written to w are not truncated; callers discarding a
// build should remove/truncate the underlying file themselves.
func (tb *TableBuilder) Abandon() {
	if tb.closed {
		panic("sstable: Abandon called after Finish or Abandon")
	}
	tb.closed = true
	tb.aborted = true
}
