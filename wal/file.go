// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package wal

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/Irumyuui/arisdb/internal/ioengine"
)

// ReadFile opens path read-only and reads every record in it through
// eng. The file is closed before ReadFile returns, regardless of
// outcome.
func ReadFile(ctx context.Context, eng *ioengine.Engine, path string) ReadResult {
	f, err := os.Open(path)
	if err != nil {
		return ReadResult{Err: errors.Wrap(err, "wal: opening log file")}
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return ReadResult{Err: errors.Wrap(err, "wal: stat log file")}
	}
	return ReadAll(ctx, eng, f, fi.Size())
}
