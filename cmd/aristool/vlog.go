// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Irumyuui/arisdb/vlog"
)

// vlogSegmentName matches the value log's NNNNNN.vlog naming; kept local
// to the tool rather than exported from package vlog, since dump/stat
// only need to enumerate files, not the Set's write/read semantics.
var vlogSegmentName = regexp.MustCompile(`^(\d{6})\.vlog$`)

type vlogT struct {
	Root *cobra.Command
	Dump *cobra.Command
	Stat *cobra.Command

	grep string
}

func newVLogCmd() *vlogT {
	v := &vlogT{}
	v.Root = &cobra.Command{
		Use:   "vlog",
		Short: "value-log introspection tools",
	}
	v.Dump = &cobra.Command{
		Use:   "dump <vlog-dir>",
		Short: "print every entry decoded from a value-log directory, oldest segment first",
		Args:  cobra.ExactArgs(1),
		RunE:  v.runDump,
	}
	v.Dump.Flags().StringVar(&v.grep, "grep", "", "only print lines matching this regexp")
	v.Stat = &cobra.Command{
		Use:   "stat <vlog-dir>",
		Short: "print per-segment size table and a size sparkline",
		Args:  cobra.ExactArgs(1),
		RunE:  v.runStat,
	}
	v.Root.AddCommand(v.Dump, v.Stat)
	return v
}

// segmentFile is one NNNNNN.vlog file discovered in a directory listing.
type segmentFile struct {
	id   uint32
	path string
	size int64
}

func listSegments(dir string) ([]segmentFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var segs []segmentFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := vlogSegmentName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		id, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		segs = append(segs, segmentFile{id: uint32(id), path: filepath.Join(dir, e.Name()), size: info.Size()})
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].id < segs[j].id })
	return segs, nil
}

// runDump scans every segment in id order, decoding its entries one after
// another with the same vlog.DecodeEntry a live Set.ReadEntry uses, and
// stops a segment at the first entry that fails to decode.
func (v *vlogT) runDump(cmd *cobra.Command, args []string) error {
	segs, err := listSegments(args[0])
	if err != nil {
		return err
	}

	var lines []string
	for _, seg := range segs {
		buf, err := os.ReadFile(seg.path)
		if err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("%s (fid=%d, %d bytes)", seg.path, seg.id, seg.size))

		offset := 0
		for offset < len(buf) {
			entry, n, err := vlog.DecodeEntry(buf[offset:])
			if err != nil {
				lines = append(lines, fmt.Sprintf("  @%d: corrupted: %s", offset, err))
				break
			}
			lines = append(lines, fmt.Sprintf("  @%d: key=%q val_len=%d meta=%s",
				offset, entry.Key, len(entry.Value), entry.Meta))
			offset += n
		}
	}

	return runFiltered(cmd, lines, v.grep)
}

// runStat renders a per-segment size table plus an asciigraph sparkline
// of segment sizes, for a quick look at vlog growth and roll cadence.
func (v *vlogT) runStat(cmd *cobra.Command, args []string) error {
	segs, err := listSegments(args[0])
	if err != nil {
		return err
	}
	if len(segs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no vlog segments found")
		return nil
	}

	out := cmd.OutOrStdout()
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"segment", "file", "size (bytes)"})
	sizes := make([]float64, len(segs))
	for i, seg := range segs {
		table.Append([]string{fmt.Sprintf("%06d", seg.id), filepath.Base(seg.path), fmt.Sprintf("%d", seg.size)})
		sizes[i] = float64(seg.size)
	}
	table.Render()

	if len(sizes) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, asciigraph.Plot(sizes, asciigraph.Height(10), asciigraph.Caption("segment size (bytes) by segment id")))
	}
	return nil
}
