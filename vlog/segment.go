// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package vlog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
)

// segmentFilePattern matches the six-digit zero-padded vlog segment
// filename: NNNNNN.vlog.
var segmentFilePattern = regexp.MustCompile(`^(\d{6})\.vlog$`)

// segmentFileName returns the canonical filename for a given segment id.
func segmentFileName(id uint32) string {
	return fmt.Sprintf("%06d.vlog", id)
}

// parseSegmentFileName reports the segment id encoded in name, and
// whether name matches the NNNNNN.vlog pattern at all. Files that don't
// match are ignored by the directory scan.
func parseSegmentFileName(name string) (id uint32, ok bool) {
	m := segmentFilePattern.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// segment is a single vlog file: either the unique active tail (open for
// append) or a sealed, read-only predecessor.
type segment struct {
	id     uint32
	f      *os.File
	sealed bool
	// size is the number of bytes written to f, i.e. the offset the next
	// WriteEntry will land at while this segment is active.
	size int64
}

func openSegmentReadOnly(dir string, id uint32) (*segment, error) {
	path := filepath.Join(dir, segmentFileName(id))
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "vlog: opening sealed segment %d", id)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "vlog: stat sealed segment %d", id)
	}
	return &segment{id: id, f: f, sealed: true, size: fi.Size()}, nil
}

func createOrOpenActiveSegment(dir string, id uint32) (*segment, error) {
	path := filepath.Join(dir, segmentFileName(id))
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "vlog: opening active segment %d", id)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "vlog: stat active segment %d", id)
	}
	return &segment{id: id, f: f, size: fi.Size()}, nil
}

func (s *segment) seal() {
	s.sealed = true
}

func (s *segment) close() error {
	return s.f.Close()
}
