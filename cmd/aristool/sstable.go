// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Irumyuui/arisdb/sstable"
)

type sstableT struct {
	Root *cobra.Command
	Dump *cobra.Command
	Stat *cobra.Command

	grep string
}

func newSSTableCmd() *sstableT {
	s := &sstableT{}
	s.Root = &cobra.Command{
		Use:   "sstable",
		Short: "SSTable introspection tools",
	}
	s.Dump = &cobra.Command{
		Use:   "dump <table-file>",
		Short: "print every key/value entry in a table, in key order",
		Args:  cobra.ExactArgs(1),
		RunE:  s.runDump,
	}
	s.Dump.Flags().StringVar(&s.grep, "grep", "", "only print lines matching this regexp")
	s.Stat = &cobra.Command{
		Use:   "stat <table-file>",
		Short: "print a summary table: file size, entry count, key range",
		Args:  cobra.ExactArgs(1),
		RunE:  s.runStat,
	}
	s.Root.AddCommand(s.Dump, s.Stat)
	return s
}

func openTable(path string) (*sstable.Reader, *os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, 0, err
	}
	r, err := sstable.NewReader(f, fi.Size(), sstable.ReaderOptions{})
	if err != nil {
		f.Close()
		return nil, nil, 0, err
	}
	return r, f, fi.Size(), nil
}

func (s *sstableT) runDump(cmd *cobra.Command, args []string) error {
	r, f, _, err := openTable(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	var lines []string
	it := r.NewIter()
	for it.SeekToFirst(); it.Valid(); it.Next() {
		lines = append(lines, fmt.Sprintf("%q -> %d byte(s)", it.Key(), len(it.Value())))
	}
	if err := it.Error(); err != nil {
		return err
	}

	return runFiltered(cmd, lines, s.grep)
}

func (s *sstableT) runStat(cmd *cobra.Command, args []string) error {
	r, f, size, err := openTable(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	it := r.NewIter()
	var count int
	var first, last []byte
	for it.SeekToFirst(); it.Valid(); it.Next() {
		if first == nil {
			first = append([]byte(nil), it.Key()...)
		}
		last = append([]byte(nil), it.Key()...)
		count++
	}
	if err := it.Error(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"property", "value"})
	table.Append([]string{"file size (bytes)", fmt.Sprintf("%d", size)})
	table.Append([]string{"entries", fmt.Sprintf("%d", count)})
	table.Append([]string{"first key", fmt.Sprintf("%q", first)})
	table.Append([]string{"last key", fmt.Sprintf("%q", last)})
	table.Render()
	return nil
}
