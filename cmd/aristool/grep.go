// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ghemawat/stream"
	"github.com/spf13/cobra"
)

// newGrepCmd lets a dump's stdout be composed with further stream
// filtering from the shell: `aristool wal dump a.log | aristool grep
// foo`, unix-pipeline-style composition on top of ghemawat/stream.
func newGrepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grep <pattern>",
		Short: "filter stdin lines by regexp, piping dump output the unix way",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lines []string
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
			for scanner.Scan() {
				lines = append(lines, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return stream.ForEach(stream.Sequence(stream.Items(lines...), stream.Grep(args[0])), func(s string) {
				fmt.Fprintln(out, s)
			})
		},
	}
	return cmd
}
