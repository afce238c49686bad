// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package sstable

import (
	"github.com/cockroachdb/errors"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/sstable/block"
)

// Iterator walks a table's entries in key order, transparently crossing
// data-block boundaries by re-seeking into the index block. It is not
// safe for concurrent use; obtain one Iterator per goroutine via
// Reader.NewIter.
type Iterator struct {
	r         *Reader
	indexIter *block.Iterator
	dataIter  *block.Iterator
	err       error
}

// Valid reports whether the iterator is positioned at an entry.
func (it *Iterator) Valid() bool {
	return it.err == nil && it.dataIter != nil && it.dataIter.Valid()
}

// Error returns the first error encountered, if any.
func (it *Iterator) Error() error {
	if it.err != nil {
		return it.err
	}
	if it.dataIter != nil {
		return it.dataIter.Error()
	}
	return nil
}

// Key returns the current entry's key, valid until the next positioning
// call.
func (it *Iterator) Key() []byte { return it.dataIter.Key() }

// Value returns the current entry's value, valid until the next
// positioning call.
func (it *Iterator) Value() []byte { return it.dataIter.Value() }

// loadDataBlock decodes the data block addressed by the index iterator's
// current entry and points dataIter at it.
func (it *Iterator) loadDataBlock() bool {
	handle, n := block.DecodeHandle(it.indexIter.Value())
	if n == 0 {
		it.err = base.Mark(errors.New("sstable: corrupt data block handle in index"), base.ErrBlockCorrupted)
		return false
	}
	raw, err := readBlock(it.r.r, handle)
	if err != nil {
		it.err = err
		return false
	}
	blk, err := block.NewBlock(raw)
	if err != nil {
		it.err = err
		return false
	}
	it.dataIter = blk.Iter(it.r.opts.Comparer.Compare)
	return true
}

// SeekToFirst positions the iterator at the table's first entry.
func (it *Iterator) SeekToFirst() {
	it.err = nil
	it.indexIter.SeekToFirst()
	if !it.indexIter.Valid() {
		it.dataIter = nil
		return
	}
	if !it.loadDataBlock() {
		return
	}
	it.dataIter.SeekToFirst()
	it.skipEmptyForward()
}

// SeekToLast positions the iterator at the table's last entry.
func (it *Iterator) SeekToLast() {
	it.err = nil
	it.indexIter.SeekToLast()
	if !it.indexIter.Valid() {
		it.dataIter = nil
		return
	}
	if !it.loadDataBlock() {
		return
	}
	it.dataIter.SeekToLast()
	it.skipEmptyBackward()
}

// Seek positions the iterator at the first entry whose key is >= target.
func (it *Iterator) Seek(target []byte) {
	it.err = nil
	it.indexIter.Seek(target)
	if !it.indexIter.Valid() {
		it.dataIter = nil
		return
	}
	if !it.loadDataBlock() {
		return
	}
	it.dataIter.Seek(target)
	it.skipEmptyForward()
}

// Next advances to the next entry, crossing into the following data
// block as needed.
func (it *Iterator) Next() {
	it.dataIter.Next()
	it.skipEmptyForward()
}

// Prev moves to the preceding entry, crossing into the prior data block
// as needed.
func (it *Iterator) Prev() {
	it.dataIter.Prev()
	it.skipEmptyBackward()
}

// skipEmptyForward advances the index iterator (and reloads the data
// block) while the current data block is exhausted going forward.
func (it *Iterator) skipEmptyForward() {
	for it.err == nil && (it.dataIter == nil || !it.dataIter.Valid()) {
		if it.dataIter != nil && it.dataIter.Error() != nil {
			it.err = it.dataIter.Error()
			return
		}
		it.indexIter.Next()
		if !it.indexIter.Valid() {
			it.dataIter = nil
			return
		}
		if !it.loadDataBlock() {
			return
		}
		it.dataIter.SeekToFirst()
	}
}

// skipEmptyBackward is skipEmptyForward's mirror image for Prev/SeekToLast.
func (it *Iterator) skipEmptyBackward() {
	for it.err == nil && (it.dataIter == nil || !it.dataIter.Valid()) {
		if it.dataIter != nil && it.dataIter.Error() != nil {
			it.err = it.dataIter.Error()
			return
		}
		it.indexIter.Prev()
		if !it.indexIter.Valid() {
			it.dataIter = nil
			return
		}
		if !it.loadDataBlock() {
			return
		}
		it.dataIter.SeekToLast()
	}
}
