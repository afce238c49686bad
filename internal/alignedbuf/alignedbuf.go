// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package alignedbuf provides page-aligned (4096-byte) buffers suitable
// for O_DIRECT I/O. Rather than over-allocate and hand-roll pointer
// arithmetic to find an aligned interior slice, the buffer is backed by an
// anonymous mmap: the kernel always hands back whole, page-aligned pages,
// so alignment is free and exact.
package alignedbuf

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"

	"github.com/Irumyuui/arisdb/internal/base"
)

// PageSize is the alignment granularity.
const PageSize = 4096

// Buffer is a heap region whose backing capacity is rounded up to
// PageSize, while Len reports the originally requested size.
type Buffer struct {
	data []byte // mmap'd, capacity is a multiple of PageSize
	size int    // requested length
}

// Alloc reserves a buffer able to hold at least size bytes, rounding the
// backing allocation up to the next page boundary.
func Alloc(size int) (*Buffer, error) {
	if size < 0 {
		return nil, errors.Newf("alignedbuf: negative size %d", errors.Safe(size))
	}
	capacity := roundUp(size, PageSize)
	if capacity == 0 {
		capacity = PageSize
	}
	data, err := unix.Mmap(-1, 0, capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, base.Mark(errors.Wrap(err, "alignedbuf: mmap failed"), base.ErrMemoryAlloc)
	}
	return &Buffer{data: data, size: size}, nil
}

func roundUp(n, align int) int {
	if n%align == 0 {
		return n
	}
	return (n/align + 1) * align
}

// Bytes returns the requested-length view of the buffer.
func (b *Buffer) Bytes() []byte { return b.data[:b.size] }

// Len returns the requested size (not the page-rounded capacity).
func (b *Buffer) Len() int { return b.size }

// Cap returns the page-rounded backing capacity.
func (b *Buffer) Cap() int { return len(b.data) }

// Aligned reports whether the buffer's backing address is PageSize-aligned.
// Always true for buffers returned by Alloc; exposed so callers accepting
// externally-sourced buffers can validate them and fail with
// ErrAlignedBlockNotAligned otherwise.
func (b *Buffer) Aligned() bool {
	if len(b.data) == 0 {
		return true
	}
	return uintptrOf(b.data) % PageSize == 0
}

// Free releases the buffer's backing pages with the same mmap layout
// Alloc used. Using the buffer after Free is a use-after-free.
func (b *Buffer) Free() error {
	if b.data == nil {
		return nil
	}
	err := unix.Munmap(b.data)
	b.data = nil
	if err != nil {
		return errors.Wrap(err, "alignedbuf: munmap failed")
	}
	return nil
}
