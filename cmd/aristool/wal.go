// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ghemawat/stream"
	"github.com/spf13/cobra"

	"github.com/Irumyuui/arisdb/internal/ioengine"
	"github.com/Irumyuui/arisdb/wal"
)

// walT implements WAL-level tools: a cobra.Command tree plus the flag
// state its Run funcs close over.
type walT struct {
	Root *cobra.Command
	Dump *cobra.Command

	grep string
}

func newWALCmd() *walT {
	w := &walT{}
	w.Root = &cobra.Command{
		Use:   "wal",
		Short: "WAL introspection tools",
	}
	w.Dump = &cobra.Command{
		Use:   "dump <wal-file>...",
		Short: "print the payloads recovered from one or more WAL files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  w.runDump,
	}
	w.Dump.Flags().StringVar(&w.grep, "grep", "", "only print lines matching this regexp")
	w.Root.AddCommand(w.Dump)
	return w
}

func (w *walT) runDump(cmd *cobra.Command, args []string) error {
	eng := ioengine.New(ioengine.DefaultConcurrency)
	var lines []string

	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return err
		}

		result := wal.ReadAll(context.Background(), eng, f, fi.Size())
		f.Close()

		lines = append(lines, fmt.Sprintf("%s: %d payload(s) recovered", path, len(result.Payloads)))
		for i, payload := range result.Payloads {
			lines = append(lines, fmt.Sprintf("  [%d] %d bytes: %s", i, len(payload), previewBytes(payload)))
		}
		if result.Err != nil {
			lines = append(lines, fmt.Sprintf("  truncated: %s", result.Err))
		}
	}

	return runFiltered(cmd, lines, w.grep)
}

// runFiltered prints lines to cmd's output, optionally piping them
// through a ghemawat/stream Grep filter first.
func runFiltered(cmd *cobra.Command, lines []string, grep string) error {
	filters := []stream.Filter{stream.Items(lines...)}
	if grep != "" {
		filters = append(filters, stream.Grep(grep))
	}
	out := cmd.OutOrStdout()
	return stream.ForEach(stream.Sequence(filters...), func(s string) {
		fmt.Fprintln(out, s)
	})
}

// previewBytes renders a short, printable-safe preview of a payload for
// dump output: ASCII bytes verbatim, everything else as a hex escape.
func previewBytes(b []byte) string {
	const maxLen = 64
	truncated := false
	if len(b) > maxLen {
		b = b[:maxLen]
		truncated = true
	}
	out := make([]byte, 0, len(b)*2)
	for _, c := range b {
		if c >= 0x20 && c < 0x7f {
			out = append(out, c)
		} else {
			out = append(out, []byte(fmt.Sprintf("\\x%02x", c))...)
		}
	}
	if truncated {
		out = append(out, "..."...)
	}
	return string(out)
}
