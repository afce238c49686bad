// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package vlog

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"

	"github.com/Irumyuui/arisdb/internal/base"
	"github.com/Irumyuui/arisdb/internal/ioengine"
	"github.com/Irumyuui/arisdb/internal/logging"
	"github.com/Irumyuui/arisdb/internal/metrics"
)

// Options configures a Set.
type Options struct {
	// MaxFileSize seals the active segment and opens a fresh one once its
	// tail offset reaches this size.
	MaxFileSize int64
	// Engine performs the suspending reads/writes. A nil Engine gets a
	// default-concurrency one.
	Engine *ioengine.Engine

	// Metrics receives write/read latency and byte-count samples, plus
	// corruption events. A nil Metrics is a no-op.
	Metrics *metrics.Recorder
	// Logger receives a corruption report whenever ReadEntry's CRC check
	// fails. A nil Logger defaults to logging.Default.
	Logger logging.Logger
}

func (o *Options) ensureDefaults() {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = 1 << 30 // 1 GiB
	}
	if o.Engine == nil {
		o.Engine = ioengine.New(ioengine.DefaultConcurrency)
	}
	if o.Logger == nil {
		o.Logger = logging.Default
	}
}

// Set is a directory of vlog segments: exactly one Active segment (the
// writable tail) and zero or more Sealed segments (read-only). Writes and
// roll-over hold mu exclusively. A read holds mu for reading while it
// looks up its segment, and for the whole read when that segment is the
// active one; reads from sealed segments run without the lock.
type Set struct {
	dir  string
	opts Options

	mu     sync.RWMutex
	active *segment
	sealed *swiss.Map[uint32, *segment]
}

// Open scans dir for NNNNNN.vlog files, opens the highest-id file in
// append mode as the active segment, and opens every lower-id file
// read-only as a sealed segment. If dir is empty (or contains no vlog
// files), a fresh segment 0 is created active.
func Open(dir string, opts Options) (*Set, error) {
	opts.ensureDefaults()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "vlog: creating directory")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "vlog: reading directory")
	}

	var ids []uint32
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := parseSegmentFileName(e.Name()); ok {
			ids = append(ids, id)
		}
	}

	s := &Set{dir: dir, opts: opts, sealed: swiss.New[uint32, *segment](len(ids))}

	if len(ids) == 0 {
		active, err := createOrOpenActiveSegment(dir, 0)
		if err != nil {
			return nil, err
		}
		s.active = active
		return s, nil
	}

	maxID := ids[0]
	for _, id := range ids[1:] {
		if id > maxID {
			maxID = id
		}
	}
	for _, id := range ids {
		if id == maxID {
			continue
		}
		seg, err := openSegmentReadOnly(dir, id)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.sealed.Put(id, seg)
	}
	active, err := createOrOpenActiveSegment(dir, maxID)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.active = active
	return s, nil
}

// WriteEntry encodes entry and appends it to the active segment,
// returning the ValuePointer a caller should persist (typically in a WAL
// record) to retrieve it later. If the active segment crosses
// MaxFileSize afterwards, it is sealed and a fresh active segment is
// opened.
func (s *Set) WriteEntry(ctx context.Context, entry Entry) (base.ValuePointer, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded := entry.Encode(nil)
	offset := s.active.size

	if _, err := s.opts.Engine.WriteAt(ctx, s.active.f, encoded, offset); err != nil {
		return base.ValuePointer{}, errors.Wrap(err, "vlog: writing entry")
	}
	s.active.size += int64(len(encoded))
	s.opts.Metrics.ObserveVlogWrite(time.Since(start), len(encoded))

	ptr := base.ValuePointer{FileID: s.active.id, Offset: uint64(offset), Len: uint64(len(encoded))}

	if s.active.size >= s.opts.MaxFileSize {
		if err := s.rollActiveLocked(); err != nil {
			return ptr, err
		}
	}
	return ptr, nil
}

// rollActiveLocked seals the current active segment and opens the next
// one. Callers must hold mu for writing.
func (s *Set) rollActiveLocked() error {
	sealedID := s.active.id
	s.active.seal()
	s.sealed.Put(sealedID, s.active)

	next, err := createOrOpenActiveSegment(s.dir, sealedID+1)
	if err != nil {
		return errors.Wrap(err, "vlog: opening next active segment")
	}
	s.active = next
	return nil
}

// ReadEntry resolves ptr to either the active segment or a sealed one,
// reads its Len bytes at its Offset, and decodes + CRC-verifies the
// result.
func (s *Set) ReadEntry(ctx context.Context, ptr base.ValuePointer) (Entry, error) {
	start := time.Now()
	seg, unlock := s.resolveSegment(ptr.FileID)
	defer unlock()
	if seg == nil {
		return Entry{}, base.Mark(
			errors.Newf("vlog: no segment with file id %d", errors.Safe(ptr.FileID)),
			base.ErrValueLogFileNotFound)
	}

	buf, err := s.opts.Engine.ReadAt(ctx, seg.f, int64(ptr.Offset), int(ptr.Len))
	if err != nil {
		return Entry{}, errors.Wrap(err, "vlog: reading entry")
	}

	e, n, err := DecodeEntry(buf)
	if err != nil {
		s.reportCorruption(err.Error())
		return Entry{}, err
	}
	if n != len(buf) {
		s.reportCorruption("entry shorter than pointer length")
		return Entry{}, base.Mark(errors.New("vlog: entry shorter than pointer length"), base.ErrValueLogCorrupted)
	}
	s.opts.Metrics.ObserveVlogRead(time.Since(start), len(buf))
	return e, nil
}

// reportCorruption records a corruption event on both the metrics
// recorder and the logger, so an operator sees it in logs even without a
// metrics scrape in between.
func (s *Set) reportCorruption(detail string) {
	s.opts.Metrics.ObserveCorruption("vlog")
	logging.Corruption(s.opts.Logger, "vlog", detail)
}

// resolveSegment returns the segment for id plus an unlock func the
// caller must defer-call once done reading from it. The sealed map is
// looked up under the shared read lock, since rollActiveLocked inserts
// into it; a sealed segment's file is immutable, so reading it needs no
// lock once found. The active segment stays guarded by the shared read
// lock until unlock is called.
func (s *Set) resolveSegment(id uint32) (*segment, func()) {
	s.mu.RLock()
	if s.active != nil && s.active.id == id {
		seg := s.active
		return seg, s.mu.RUnlock
	}
	seg, ok := s.sealed.Get(id)
	s.mu.RUnlock()

	if ok {
		return seg, func() {}
	}
	return nil, func() {}
}

// ActiveFileID returns the id of the current writable segment.
func (s *Set) ActiveFileID() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active.id
}

// SegmentCount returns the number of segments (sealed plus the one
// active segment), mainly for tests and introspection tooling.
func (s *Set) SegmentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sealed.Len() + 1
}

// Close closes every open segment file.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if s.active != nil {
		if err := s.active.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.sealed != nil {
		s.sealed.All(func(_ uint32, seg *segment) bool {
			if err := seg.close(); err != nil && firstErr == nil {
				firstErr = err
			}
			return true
		})
	}
	return firstErr
}
