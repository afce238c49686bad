// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/sstable/block"
)

// ReaderOptions configures a Reader. Comparer and FilterPolicy must match
// what the table was built with; a mismatch produces wrong results
// rather than a detected error, the same contract the builder exposes.
type ReaderOptions struct {
	Comparer     *base.Comparer
	FilterPolicy block.FilterPolicy
}

func (o *ReaderOptions) ensureDefaults() {
	if o.Comparer == nil {
		o.Comparer = base.DefaultComparer
	}
}

// Reader opens a completed table file for point lookups and iteration.
// A Reader is safe for concurrent use by multiple goroutines; each
// Iterator it produces is not.
type Reader struct {
	r    io.ReaderAt
	size int64
	opts ReaderOptions

	index        block.Block
	filter       *block.FilterBlockReader
	filterOffset uint64 // first data block offset the filter block covers
}

// NewReader parses the footer, index block, meta-index block, and (if
// present) filter block of a completed table.
func NewReader(r io.ReaderAt, size int64, opts ReaderOptions) (*Reader, error) {
	opts.ensureDefaults()
	if size < footerLen {
		return nil, base.Mark(errors.Newf("sstable: file of %d bytes too small to hold a footer", errors.Safe(size)), base.ErrBlockCorrupted)
	}

	footBuf := make([]byte, footerLen)
	if _, err := r.ReadAt(footBuf, size-footerLen); err != nil {
		return nil, errors.Wrap(err, "sstable: reading footer")
	}
	foot, err := decodeFooter(footBuf)
	if err != nil {
		return nil, err
	}

	indexRaw, err := readBlock(r, foot.indexHandle)
	if err != nil {
		return nil, errors.Wrap(err, "sstable: reading index block")
	}
	index, err := block.NewBlock(indexRaw)
	if err != nil {
		return nil, err
	}

	metaRaw, err := readBlock(r, foot.metaIndexHandle)
	if err != nil {
		return nil, errors.Wrap(err, "sstable: reading meta index block")
	}
	metaBlock, err := block.NewBlock(metaRaw)
	if err != nil {
		return nil, err
	}

	rd := &Reader{r: r, size: size, opts: opts, index: index}

	if opts.FilterPolicy != nil {
		it := metaBlock.Iter(opts.Comparer.Compare)
		want := []byte(metaIndexFilterKeyPrefix + opts.FilterPolicy.Name())
		it.Seek(want)
		if it.Valid() && string(it.Key()) == string(want) {
			handle, n := block.DecodeHandle(it.Value())
			if n == 0 {
				return nil, base.Mark(errors.New("sstable: corrupt filter handle in meta index"), base.ErrBlockCorrupted)
			}
			filterRaw, err := readBlock(r, handle)
			if err != nil {
				return nil, errors.Wrap(err, "sstable: reading filter block")
			}
			rd.filter = block.NewFilterBlockReader(opts.FilterPolicy, filterRaw)
		}
	}

	return rd, nil
}

// readBlock reads and decodes the block addressed by h, returning its
// decompressed, trailer-stripped bytes.
func readBlock(r io.ReaderAt, h block.Handle) ([]byte, error) {
	buf := make([]byte, h.Size+uint64(block.TrailerLen))
	if _, err := r.ReadAt(buf, int64(h.Offset)); err != nil {
		return nil, err
	}
	return block.ReadTrailer(buf)
}

// Get returns the value associated with key, and whether it was found.
// Get consults the filter block (if present) before touching the data
// block, so an absent key typically costs one index-block seek and one
// filter probe.
func (r *Reader) Get(key []byte) (value []byte, ok bool, err error) {
	indexIter := r.index.Iter(r.opts.Comparer.Compare)
	indexIter.Seek(key)
	if !indexIter.Valid() {
		return nil, false, indexIter.Error()
	}

	handle, n := block.DecodeHandle(indexIter.Value())
	if n == 0 {
		return nil, false, base.Mark(errors.New("sstable: corrupt data block handle in index"), base.ErrBlockCorrupted)
	}

	if r.filter != nil && !r.filter.MayContain(handle.Offset, key) {
		return nil, false, nil
	}

	raw, err := readBlock(r.r, handle)
	if err != nil {
		return nil, false, err
	}
	blk, err := block.NewBlock(raw)
	if err != nil {
		return nil, false, err
	}

	dataIter := blk.Iter(r.opts.Comparer.Compare)
	dataIter.Seek(key)
	if !dataIter.Valid() {
		return nil, false, dataIter.Error()
	}
	if r.opts.Comparer.Compare(dataIter.Key(), key) != 0 {
		return nil, false, nil
	}
	out := append([]byte(nil), dataIter.Value()...)
	return out, true, nil
}

// NewIter returns a fresh Iterator over the table's entries in key order.
func (r *Reader) NewIter() *Iterator {
	return &Iterator{r: r, indexIter: r.index.Iter(r.opts.Comparer.Compare)}
}
