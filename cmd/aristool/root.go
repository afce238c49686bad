// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import "github.com/spf13/cobra"

// newRootCmd wires up the dump/stat command tree, following the
// one-command-object-per-subsystem shape pebble's own tool command uses
// (see other_examples' tool/wal.go: a walT type holding both the cobra
// command and the config it closes over).
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "aristool",
		Short: "Offline inspector for arisdb WAL, vlog and SSTable files",
	}

	root.AddCommand(newWALCmd().Root)
	root.AddCommand(newVLogCmd().Root)
	root.AddCommand(newSSTableCmd().Root)
	root.AddCommand(newGrepCmd())
	return root
}
