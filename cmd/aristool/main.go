// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Command aristool is an offline inspector for arisdb's on-disk files: WAL
// segments, value-log directories, and SSTables. It reads files directly
// through the format codecs (there is no façade, compaction or recovery
// driver in this module) and prints what they decode.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
